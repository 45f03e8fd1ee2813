package text

import (
	"regexp"
	"strings"
)

// A IA externa às vezes devolve Markdown mesmo instruída a não usar.
// O widget renderiza texto puro, então todo resto de formatação precisa
// sair antes da exibição.
var (
	leadingBlanks = regexp.MustCompile(`(?m)^[ \t]+`)
	listBullets   = regexp.MustCompile(`(?m)^[-•●▪]\s*`)
	numberedLists = regexp.MustCompile(`(?m)^\d+\.\s+`)
	headings      = regexp.MustCompile(`#{1,6}\s`)
	codeMarks     = regexp.MustCompile("`{1,3}")
)

// Sanitize remove artefatos de rich-text da resposta da IA: negrito e
// itálico, marcadores de lista, listas numeradas, cabeçalhos e code
// fences, e apara espaços nas pontas. Idempotente — sanitizar duas
// vezes dá o mesmo resultado.
func Sanitize(s string) string {
	s = strings.ReplaceAll(s, "**", "")
	s = strings.ReplaceAll(s, "*", "")
	s = headings.ReplaceAllString(s, "")
	s = codeMarks.ReplaceAllString(s, "")

	// Marcadores de lista são ancorados no início da linha; remove até
	// estabilizar, senão um marcador escondido atrás de indentação (ou
	// de outro marcador) sobreviveria à primeira passada.
	for {
		out := leadingBlanks.ReplaceAllString(s, "")
		out = listBullets.ReplaceAllString(out, "")
		out = numberedLists.ReplaceAllString(out, "")
		if out == s {
			break
		}
		s = out
	}
	return strings.TrimSpace(s)
}
