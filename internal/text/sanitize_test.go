package text

import "testing"

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"negrito e itálico", "**Olá** *mundo*", "Olá mundo"},
		{"bullet no início da linha", "- item um\n- item dois", "item um\nitem dois"},
		{"bullet unicode", "• primeiro\n● segundo", "primeiro\nsegundo"},
		{"lista numerada", "1. primeiro\n2. segundo", "primeiro\nsegundo"},
		{"cabeçalho markdown", "## Planos disponíveis", "Planos disponíveis"},
		{"code fence", "```\ncódigo\n```", "código"},
		{"inline code", "use o plano `vitalicio`", "use o plano vitalicio"},
		{"espaços nas pontas", "  oi  ", "oi"},
		{"texto limpo passa intacto", "Oi! Tudo bem?", "Oi! Tudo bem?"},
		{"hífen no meio não é bullet", "plano custo-benefício", "plano custo-benefício"},
		{"bullet indentado", "  - item", "item"},
		{"bullet atrás de tab", "\t• oi", "oi"},
		{"marcadores numerados empilhados", "1. 2. item", "item"},
		{"vazio", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Sanitize(tt.input); got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	inputs := []string{
		"**Olá** *mundo*",
		"- a\n- b",
		"## título\ncorpo `code`",
		"texto já limpo",
		"  - item",
		"\t• oi",
		"1. 2. item",
		"- - duplo\n  3. indentado",
	}

	for _, in := range inputs {
		once := Sanitize(in)
		twice := Sanitize(once)
		if once != twice {
			t.Errorf("Sanitize não idempotente para %q: %q != %q", in, once, twice)
		}
	}
}
