package config

import (
	"fmt"
	"os"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"

	"gopkg.in/yaml.v3"
)

// LoadCatalog returns the sales catalog (plans, upsells, payment links).
// With an empty path the compiled-in default is used; otherwise the YAML
// file fully replaces it. A file that exists but does not parse is a
// startup error — better to crash than to sell with a broken catalog.
func LoadCatalog(path string) (*domain.Catalog, error) {
	if path == "" {
		return domain.DefaultCatalog(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var cat domain.Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog file %s: %w", path, err)
	}

	if len(cat.Plans) == 0 {
		return nil, fmt.Errorf("catalog file %s has no plans", path)
	}
	if cat.WhatsAppNumber == "" {
		return nil, fmt.Errorf("catalog file %s has no whatsapp_number", path)
	}

	return &cat, nil
}
