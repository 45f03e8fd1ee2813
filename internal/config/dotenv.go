package config

import (
	"bufio"
	"os"
	"strings"
)

// LoadDotEnv carrega um arquivo .env pro ambiente do processo. Variáveis
// já setadas no ambiente têm precedência — rodar com OPENROUTER_API_KEY
// exportada ignora o valor do arquivo. Aceita o formato usual de dev:
// comentários, linhas vazias, prefixo "export" e valores entre aspas.
func LoadDotEnv(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err // sem .env é o caso normal em produção, quem chama decide
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		// Permite colar um .env no estilo "export KEY=valor" direto do shell.
		line = strings.TrimPrefix(line, "export ")

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if key != "" && os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}

	return scanner.Err()
}
