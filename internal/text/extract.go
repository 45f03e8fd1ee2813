// Package text — análise pura do texto do visitante: extração de nome
// e classificação do sinal de gênero. Sem efeitos colaterais; tudo aqui
// é determinístico e coberto por testes de tabela.
package text

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"
)

// nameDenylist são palavras-placeholder que nunca são aceitas como nome.
var nameDenylist = map[string]bool{
	"bot":       true,
	"robô":      true,
	"robo":      true,
	"teste":     true,
	"test":      true,
	"admin":     true,
	"null":      true,
	"undefined": true,
}

// invalidNameChars rejeita dígitos e símbolos que não aparecem em nomes.
var invalidNameChars = regexp.MustCompile("[0-9_@#$%^&*+=<>/\\\\|{}\\[\\]~`]")

// namePatterns extraem o nome de frases conversacionais comuns.
// A ordem importa: o primeiro padrão que casa e passa na validação vence.
var namePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:me\s+chamo|meu\s+nome\s+[eé]|sou\s+[oa]?\s*|chamo\s*[-–]?\s*me)\s+([A-Za-zÀ-ÿ]+)`),
	regexp.MustCompile(`(?i)(?:pode\s+me\s+chamar\s+de|meu\s+nome\s*[eé:]\s*)([A-Za-zÀ-ÿ]+)`),
	regexp.MustCompile(`(?i)^([A-Za-zÀ-ÿ]{2,20})$`), // nome solto, token único
}

// genderMale e genderFemale são os marcadores reconhecidos, com limite
// de palavra. Quando os dois conjuntos casam na mesma frase, o masculino
// vence: os conjuntos são avaliados em ordem fixa (masculino primeiro).
var (
	genderMale   = regexp.MustCompile(`(?i)\b(homem|masculino|ele|cara|boy|man)\b`)
	genderFemale = regexp.MustCompile(`(?i)\b(mulher|feminino|ela|mina|girl|woman)\b`)
)

// IsValidName reporta se o texto, sozinho, serve como nome de exibição:
// 2 a 25 caracteres, sem dígitos nem símbolos, fora da denylist.
func IsValidName(s string) bool {
	t := strings.TrimSpace(s)
	n := len([]rune(t))
	if n < 2 || n > 25 {
		return false
	}
	if invalidNameChars.MatchString(t) {
		return false
	}
	return !nameDenylist[strings.ToLower(t)]
}

// ExtractName tenta extrair um nome do texto do visitante.
// Retorna o nome capitalizado e true, ou "" e false quando nenhum
// padrão casa ou o token capturado falha na validação.
func ExtractName(s string) (string, bool) {
	t := strings.TrimSpace(s)
	for _, pat := range namePatterns {
		m := pat.FindStringSubmatch(t)
		if m == nil || m[1] == "" {
			continue
		}
		candidate := strings.TrimSpace(m[1])
		if IsValidName(candidate) {
			return Capitalize(candidate), true
		}
	}
	return "", false
}

// ClassifyGender classifica o texto como sinal masculino, feminino ou
// não reconhecido. Match por palavra inteira, case-insensitive.
func ClassifyGender(s string) domain.Gender {
	switch {
	case genderMale.MatchString(s):
		return domain.GenderMale
	case genderFemale.MatchString(s):
		return domain.GenderFemale
	default:
		return domain.GenderUnknown
	}
}

// Capitalize normaliza um nome: primeira letra maiúscula, resto minúsculo.
func Capitalize(s string) string {
	runes := []rune(strings.ToLower(s))
	if len(runes) == 0 {
		return s
	}
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}
