package service

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"
)

// ============================================================
// ROTEADOR DE CHECKOUT
// ============================================================
//
// A regra de negócio é simples e binária:
//
//	com adicionais → WhatsApp (atendimento VIP, resumo pré-preenchido)
//	só o plano     → link de pagamento direto do catálogo
//
// Um plano sem link mapeado é erro de configuração e SOBE para o
// chamador. Cair silenciosamente no link de outro plano cobraria o
// visitante pelo produto errado.

// checkoutRouter decide a rota final da compra a partir da seleção.
type checkoutRouter struct {
	catalog *domain.Catalog
}

// routed é o resultado interno do roteamento: o destino mais a fala de
// confirmação que a Ashley manda antes do redirect.
type routed struct {
	route   domain.CheckoutRoute
	url     string
	total   float64
	message string
}

// route computes the checkout destination. Caller garante PlanID não
// vazio e plano existente.
func (r *checkoutRouter) route(sel *domain.Selection) (*routed, error) {
	plan := r.catalog.PlanByID(sel.PlanID)
	if plan == nil {
		return nil, &domain.ErrValidation{Field: "plan_id", Message: "unknown plan " + sel.PlanID}
	}

	total := r.catalog.Total(sel)

	// Nomes dos adicionais na ordem do catálogo, para o resumo sair
	// estável independente da ordem de seleção.
	var upsellNames []string
	for _, u := range r.catalog.Upsells {
		if sel.UpsellIDs[u.ID] {
			upsellNames = append(upsellNames, u.Name)
		}
	}

	if len(upsellNames) > 0 {
		summary := msgWhatsAppSummary(plan.Name, plan.Price, strings.Join(upsellNames, ", "), total)
		return &routed{
			route:   domain.RouteWhatsApp,
			url:     fmt.Sprintf("https://wa.me/%s?text=%s", r.catalog.WhatsAppNumber, encodeURIComponent(summary)),
			total:   total,
			message: msgCheckoutWhatsApp,
		}, nil
	}

	link, ok := r.catalog.PaymentLinks[plan.ID]
	if !ok || link == "" {
		return nil, &domain.ErrConfiguration{
			Key:     "payment_links." + plan.ID,
			Message: "plan has no payment link mapped",
		}
	}

	return &routed{
		route:   domain.RoutePayment,
		url:     link,
		total:   total,
		message: msgCheckoutPayment,
	}, nil
}

// encodeURIComponent codifica como o navegador: espaço vira %20, nunca
// '+', para o texto abrir certo no WhatsApp.
func encodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}
