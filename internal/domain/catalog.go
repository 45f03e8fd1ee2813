// Package domain — catalog.go define o catálogo estático da loja:
// planos, adicionais (upsells), links de pagamento e número de WhatsApp.
//
// O catálogo é dado de configuração imutável, injetado no serviço de
// funil na construção. Pode vir de um arquivo YAML (CATALOG_FILE) ou
// do default compilado abaixo.
package domain

// Plan é um plano de assinatura da vitrine. Somente leitura em runtime.
type Plan struct {
	ID       string   `json:"id" yaml:"id"`
	Name     string   `json:"name" yaml:"name"`
	Price    float64  `json:"price" yaml:"price"`
	Period   string   `json:"period" yaml:"period"`
	Icon     string   `json:"icon,omitempty" yaml:"icon"`
	Featured bool     `json:"featured" yaml:"featured"`
	Discount string   `json:"discount,omitempty" yaml:"discount"`
	Features []string `json:"features" yaml:"features"`
}

// Upsell é um adicional pago opcional oferecido junto do plano.
type Upsell struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name" yaml:"name"`
	Description string  `json:"description" yaml:"description"`
	Price       float64 `json:"price" yaml:"price"`
}

// Catalog agrupa tudo que o funil precisa para vender.
type Catalog struct {
	Plans   []Plan   `yaml:"plans"`
	Upsells []Upsell `yaml:"upsells"`

	// WhatsAppNumber é o número fixo de suporte (dígitos, com DDI)
	// usado no deep-link de hand-off.
	WhatsAppNumber string `yaml:"whatsapp_number"`

	// PaymentLinks mapeia plan id → link externo de pagamento.
	// Um plano sem entrada aqui é erro de configuração no checkout.
	PaymentLinks map[string]string `yaml:"payment_links"`

	// WinBackCoupon é o cupom oferecido na mensagem de retenção.
	WinBackCoupon string `yaml:"win_back_coupon"`
}

// PlanByID procura um plano pelo id. Retorna nil se não existir.
func (c *Catalog) PlanByID(id string) *Plan {
	for i := range c.Plans {
		if c.Plans[i].ID == id {
			return &c.Plans[i]
		}
	}
	return nil
}

// UpsellByID procura um adicional pelo id. Retorna nil se não existir.
func (c *Catalog) UpsellByID(id string) *Upsell {
	for i := range c.Upsells {
		if c.Upsells[i].ID == id {
			return &c.Upsells[i]
		}
	}
	return nil
}

// Total calcula o preço final: plano + adicionais selecionados.
// Sempre recalculado a partir do catálogo — nunca cacheado.
func (c *Catalog) Total(sel *Selection) float64 {
	var total float64
	if p := c.PlanByID(sel.PlanID); p != nil {
		total = p.Price
	}
	for id, on := range sel.UpsellIDs {
		if !on {
			continue
		}
		if u := c.UpsellByID(id); u != nil {
			total += u.Price
		}
	}
	return total
}

// DefaultCatalog retorna o catálogo compilado da CineflixPayment.
// Usado quando nenhum arquivo YAML é configurado.
func DefaultCatalog() *Catalog {
	return &Catalog{
		Plans: []Plan{
			{
				ID: "mensal", Name: "MENSAL", Price: 19.90, Period: "/mês", Icon: "📅",
				Features: []string{
					"Acesso por 30 dias",
					"Todos os filmes e séries",
					"Qualidade HD",
					"Download offline limitado",
				},
			},
			{
				ID: "trimestral", Name: "TRIMESTRAL", Price: 49.90, Period: "/3 meses", Icon: "📆",
				Discount: "ECONOMIA 17%",
				Features: []string{
					"Acesso por 90 dias",
					"Todos os filmes e séries",
					"Qualidade Full HD",
					"Download offline ilimitado",
				},
			},
			{
				ID: "anual", Name: "ANUAL", Price: 149.90, Period: "/ano", Icon: "🗓️",
				Discount: "ECONOMIA 37%",
				Features: []string{
					"Acesso por 365 dias",
					"Todos os filmes e séries",
					"Qualidade 4K Ultra HD",
					"Download offline ilimitado",
					"Conteúdo exclusivo",
				},
			},
			{
				ID: "vitalicio", Name: "APP VITALÍCIO", Price: 49.90, Period: "único", Icon: "🤖",
				Featured: true, Discount: "⚡ MELHOR OFERTA",
				Features: []string{
					"Acesso vitalício ao app",
					"Todos os filmes e séries",
					"Atualizações constantes",
					"Qualidade 4K Ultra HD",
					"Download offline ilimitado",
					"Somente para Android",
				},
			},
		},
		Upsells: []Upsell{
			{ID: "acesso_extra", Name: "+1 Acesso Extra", Description: "Assista em 2 telas simultâneas", Price: 9.90},
			{ID: "adultos_herois", Name: "Pacote Adultos + Heróis 2025", Description: "Conteúdo exclusivo + lançamentos", Price: 7.90},
			{ID: "combo_completo", Name: "COMBO COMPLETO", Description: "Todos os adicionais juntos", Price: 14.90},
		},
		WhatsAppNumber: "5598981465166",
		PaymentLinks: map[string]string{
			"mensal":     "https://pay.kirvano.com/90f879cc-111a-49df-aefe-6ec83ffcac37",
			"trimestral": "https://pay.kirvano.com/90f879cc-111a-49df-aefe-6ec83ffcac37",
			"anual":      "https://pay.kirvano.com/90f879cc-111a-49df-aefe-6ec83ffcac37",
			"vitalicio":  "https://pay.kirvano.com/90f879cc-111a-49df-aefe-6ec83ffcac37",
		},
		WinBackCoupon: "VOLTA10",
	}
}

// ============================================================
// Galeria — itens do catálogo de filmes/séries (colaborador externo)
// ============================================================

// CatalogItem é um item da resposta paginada do serviço de metadados
// de filmes. Filmes usam Title/ReleaseDate; séries Name/FirstAirDate.
type CatalogItem struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title,omitempty"`
	Name          string  `json:"name,omitempty"`
	PosterPath    string  `json:"poster_path,omitempty"`
	BackdropPath  string  `json:"backdrop_path,omitempty"`
	Overview      string  `json:"overview"`
	ReleaseDate   string  `json:"release_date,omitempty"`
	FirstAirDate  string  `json:"first_air_date,omitempty"`
	AverageRating float64 `json:"vote_average"`
}

// CatalogPage é uma página de resultados do colaborador de catálogo.
type CatalogPage struct {
	Page         int           `json:"page"`
	Results      []CatalogItem `json:"results"`
	TotalPages   int           `json:"total_pages"`
	TotalResults int           `json:"total_results"`
}
