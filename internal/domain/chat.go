// Package domain — chat.go define os tipos centrais da conversa da Ashley.
//
// ============================================================
// O FUNIL CONVERSACIONAL
// ============================================================
//
// A Ashley conduz o visitante por um funil de etapas (stages):
//
//	greeting → collecting_name → collecting_gender →
//	showing_recommendations → choosing_plan → choosing_upsells → checkout
//
// Dois desvios existem: win_back (sinal de abandono antes da compra)
// e free_chat (texto livre delegado para a IA externa).
//
// O estado de cada visitante vive numa sessão em memória — nada é
// persistido entre reloads da página, por desenho.
package domain

import "time"

// Stage é a etapa atual do funil. Só os handlers de transição do
// serviço de funil mudam esse valor.
type Stage string

const (
	StageGreeting         Stage = "greeting"
	StageCollectingName   Stage = "collecting_name"
	StageCollectingGender Stage = "collecting_gender"
	StageRecommendations  Stage = "showing_recommendations"
	StageChoosingPlan     Stage = "choosing_plan"
	StageChoosingUpsells  Stage = "choosing_upsells"
	StageCheckout         Stage = "checkout"
	StageWinBack          Stage = "win_back"
	StageFreeChat         Stage = "free_chat"
)

// Sender identifica quem enviou a mensagem do chat.
type Sender string

const (
	SenderBot  Sender = "bot"
	SenderUser Sender = "user"
)

// Gender é o sinal de preferência de conteúdo coletado no funil.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// ChatMessage é uma mensagem do transcript. Imutável depois de criada;
// a ordem de renderização é a ordem de inserção.
type ChatMessage struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	CreatedAt time.Time `json:"created_at"`
}

// VisitorProfile guarda o que a Ashley aprendeu sobre o visitante.
// Cada campo é preenchido uma única vez e nunca resetado na sessão.
type VisitorProfile struct {
	Name   string `json:"name,omitempty"`
	Gender Gender `json:"gender"`
}

// TranscriptEntry é um turno do histórico enviado à IA externa.
// Espelha o transcript do chat, mas desacoplado para ir verbatim
// no payload do completion.
type TranscriptEntry struct {
	Role    string `json:"role"` // "assistant" | "user"
	Content string `json:"content"`
}

// Selection é o estado de escolha do visitante: plano + adicionais.
// UpsellIDs tem semântica de conjunto com toggle — selecionar duas
// vezes volta ao estado desselecionado.
type Selection struct {
	PlanID    string          `json:"plan_id,omitempty"`
	UpsellIDs map[string]bool `json:"upsell_ids,omitempty"`
}

// SelectedUpsells retorna os ids marcados (ordem indiferente).
func (s *Selection) SelectedUpsells() []string {
	ids := make([]string, 0, len(s.UpsellIDs))
	for id, on := range s.UpsellIDs {
		if on {
			ids = append(ids, id)
		}
	}
	return ids
}

// ============================================================
// Eventos — entregues ao widget via WebSocket
// ============================================================

// EventType enumera os eventos que o widget recebe em tempo real.
type EventType string

const (
	EventTyping   EventType = "typing"   // indicador "Ashley está escrevendo..."
	EventMessage  EventType = "message"  // mensagem do bot entregue
	EventSpeak    EventType = "speak"    // narração por voz (best-effort no cliente)
	EventRedirect EventType = "redirect" // navegação para pagamento/WhatsApp
)

// Event é o envelope publicado no stream da sessão. Campos não usados
// pelo tipo do evento ficam zerados e são omitidos no JSON.
type Event struct {
	Type    EventType    `json:"type"`
	Active  bool         `json:"active,omitempty"`  // typing
	Message *ChatMessage `json:"message,omitempty"` // message
	Speech  *Speech      `json:"speech,omitempty"`  // speak
	URL     string       `json:"url,omitempty"`     // redirect
}

// Speech carrega o texto a narrar mais as dicas de voz que o cliente
// repassa para a capacidade de fala da plataforma.
type Speech struct {
	Text  string  `json:"text"`
	Lang  string  `json:"lang"`
	Rate  float64 `json:"rate"`
	Pitch float64 `json:"pitch"`
}

// ============================================================
// Completion — contrato com o serviço externo de IA
// ============================================================

// CompletionRequest é o payload enviado ao endpoint de completion.
type CompletionRequest struct {
	UserMessage         string            `json:"userMessage"`
	UserName            string            `json:"userName,omitempty"`
	UserGender          Gender            `json:"userGender,omitempty"`
	ConversationHistory []TranscriptEntry `json:"conversationHistory"`
	Stage               Stage             `json:"stage"`
}

// CompletionResponse é a resposta da IA. O campo Response pode vir
// vazio — o serviço substitui por um prompt padrão nesse caso.
type CompletionResponse struct {
	Response string `json:"response"`
}

// ============================================================
// Checkout — resultado do roteamento final
// ============================================================

// CheckoutRoute identifica para onde o visitante foi encaminhado.
type CheckoutRoute string

const (
	RoutePayment  CheckoutRoute = "payment"  // link direto de pagamento
	RouteWhatsApp CheckoutRoute = "whatsapp" // hand-off com resumo do pedido
)

// CheckoutResult é devolvido ao widget no confirm: para onde navegar,
// depois de quantos segundos (tempo para o visitante ler a confirmação).
type CheckoutResult struct {
	Route        CheckoutRoute `json:"route"`
	RedirectURL  string        `json:"redirect_url"`
	DelaySeconds int           `json:"delay_seconds"`
	Total        float64       `json:"total"`
}
