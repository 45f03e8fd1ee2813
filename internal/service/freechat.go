package service

import (
	"context"
	"time"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/observability"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/session"
	"github.com/cineflixpay/ashley-assistant-go/internal/port"
	"github.com/cineflixpay/ashley-assistant-go/internal/queue"
	"github.com/cineflixpay/ashley-assistant-go/internal/text"

	"go.uber.org/zap"
)

// ============================================================
// FREE CHAT — fallback de IA para texto fora do script
// ============================================================
//
// Regras duras deste módulo:
//
//   - no máximo UMA chamada de IA em voo por sessão (gate da sessão);
//     a segunda tentativa é rejeitada na hora com conflito
//   - falha da IA NUNCA chega crua no visitante: vira exatamente uma
//     mensagem amigável fixa, sem tocar no estado do funil
//   - a resposta passa pelo sanitizador antes de entrar na fila

// FreeChatResponder delega turnos de conversa livre pra IA externa.
type FreeChatResponder struct {
	completion port.CompletionCaller
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewFreeChatResponder creates the AI fallback responder.
func NewFreeChatResponder(completion port.CompletionCaller, metrics *observability.Metrics, logger *zap.Logger) *FreeChatResponder {
	return &FreeChatResponder{
		completion: completion,
		metrics:    metrics,
		logger:     logger,
	}
}

// Respond envia o turno pra IA e enfileira a resposta tratada. history
// é o histórico SEM o turno atual — ele vai separado em UserMessage e o
// colaborador o anexa na montagem do prompt.
func (r *FreeChatResponder) Respond(ctx context.Context, sess *session.Session, input string, history []domain.TranscriptEntry) error {
	ctx, span := tracer.Start(ctx, "FreeChat.Respond")
	defer span.End()

	if !sess.AIGate.TryAcquire() {
		r.metrics.IncrAICall("rejected")
		return &domain.ErrConflict{Message: "a reply is already being generated"}
	}
	defer sess.AIGate.Release()

	sess.Lock()
	req := &domain.CompletionRequest{
		UserMessage:         input,
		UserName:            sess.Profile.Name,
		Stage:               sess.Stage,
		ConversationHistory: history,
	}
	if sess.Profile.Gender != domain.GenderUnknown {
		req.UserGender = sess.Profile.Gender
	}
	sess.Unlock()

	start := time.Now()
	resp, err := r.completion.Complete(ctx, req)
	r.metrics.RecordRequestDuration("ai_completion", time.Since(start))

	if err != nil {
		r.metrics.IncrAICall("error")
		r.metrics.IncrExternalError("completion")
		r.logger.Error("completion call failed",
			zap.String("session_id", sess.ID),
			zap.Error(err),
		)
		sess.Queue.Enqueue(queue.Item{Text: msgAIFallback})
		return nil
	}

	r.metrics.IncrAICall("success")
	reply := text.Sanitize(resp.Response)
	if reply == "" {
		reply = msgAIDefault
	}
	sess.Queue.Enqueue(queue.Item{Text: reply})
	return nil
}
