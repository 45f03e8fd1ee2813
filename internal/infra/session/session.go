// Package session guarda o estado vivo de cada conversa: perfil do
// visitante, etapa do funil, transcript e a fila de entrega. Tudo em
// memória — um reload da página recomeça do zero, por desenho.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/resilience"
	"github.com/cineflixpay/ashley-assistant-go/internal/queue"
)

// Session é o agregado de uma conversa. Os campos de estado do funil
// (Stage, Profile, Selection, CheckedOut) só podem ser lidos/escritos
// com o lock da sessão; o transcript tem os próprios appends
// serializados por esse mesmo lock via Append/Messages.
type Session struct {
	ID        string
	CreatedAt time.Time

	// Queue entrega as mensagens do bot com cadência. AIGate garante
	// no máximo UMA chamada de IA em voo por sessão.
	Queue  *queue.Delivery
	AIGate *resilience.Gate

	mu         sync.Mutex
	Stage      domain.Stage
	Profile    domain.VisitorProfile
	Selection  domain.Selection
	CheckedOut bool

	transcript []domain.ChatMessage
	history    []domain.TranscriptEntry

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a session in the greeting stage with its own lifecycle
// context. Queue is wired afterwards by the caller (the queue needs the
// session's Append as its delivery callback).
func New(id string) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		Stage:     domain.StageGreeting,
		Profile:   domain.VisitorProfile{Gender: domain.GenderUnknown},
		Selection: domain.Selection{UpsellIDs: make(map[string]bool)},
		AIGate:    resilience.NewGate(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Context is the session's lifecycle context. The delivery queue and
// anything else session-scoped must stop when it is cancelled.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Close cancels the session context. Idempotente.
func (s *Session) Close() {
	s.cancel()
}

// Lock / Unlock expõem o mutex da sessão para os handlers de transição
// do funil, que precisam de atualizações multi-campo atômicas.
func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// Append adds a message to the transcript and mirrors it into the AI
// conversation history. Safe for concurrent use; insertion order is
// render order.
func (s *Session) Append(msg domain.ChatMessage) {
	role := "user"
	if msg.Sender == domain.SenderBot {
		role = "assistant"
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, msg)
	s.history = append(s.history, domain.TranscriptEntry{Role: role, Content: msg.Text})
}

// Messages returns a copy of the transcript.
func (s *Session) Messages() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.transcript))
	copy(out, s.transcript)
	return out
}

// History returns a copy of the AI conversation history.
func (s *Session) History() []domain.TranscriptEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.TranscriptEntry, len(s.history))
	copy(out, s.history)
	return out
}
