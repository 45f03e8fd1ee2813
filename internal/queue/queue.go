// Package queue — fila de entrega das mensagens do bot.
//
// ============================================================
// CADÊNCIA HUMANA
// ============================================================
//
// A Ashley não despeja texto: cada mensagem aparece depois de um
// indicador de digitação, e mensagens em sequência têm uma pausa
// entre elas. A fila garante isso com um único worker por sessão:
//
//	typing on → espera TypingDelay → typing off → mensagem
//	(pausa MessageGap se ainda houver itens pendentes)
//
// Enqueue nunca bloqueia; rajadas de N itens viram N entregas
// estritamente FIFO. O sleep é injetável para os testes rodarem em
// tempo virtual.
package queue

import (
	"context"
	"sync"
	"time"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"
	"github.com/cineflixpay/ashley-assistant-go/internal/port"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SleepFunc abstrai a espera entre eventos da entrega. A implementação
// real dorme de verdade; os testes injetam uma que retorna na hora.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep waits for d or until the context is cancelled.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Item é uma unidade de entrega. Text vira uma mensagem do bot;
// Speech, quando presente, é narrado junto (o texto falado pode
// diferir do exibido). RedirectURL, quando presente, publica um
// evento de navegação depois de RedirectDelay em vez de mensagem.
type Item struct {
	Text        string
	Speech      string
	RedirectURL string
}

// Config são os tempos de cadência da fila.
type Config struct {
	TypingDelay   time.Duration
	MessageGap    time.Duration
	RedirectDelay time.Duration
}

// Delivery é a fila de uma sessão. Um worker por vez drena os itens;
// um drain reentrante é no-op.
type Delivery struct {
	sessionID   string
	publisher   port.EventPublisher
	narrator    port.Narrator
	cfg         Config
	sleep       SleepFunc
	onDelivered func(domain.ChatMessage)
	logger      *zap.Logger
	ctx         context.Context

	mu       sync.Mutex
	pending  []Item
	draining bool
}

// NewDelivery creates the session's delivery queue. ctx is the session
// context: cancelling it aborts any in-flight drain. onDelivered runs
// for each bot message right before its event is published (transcript
// append lives there). sleep=nil uses the real clock.
func NewDelivery(
	ctx context.Context,
	sessionID string,
	publisher port.EventPublisher,
	narrator port.Narrator,
	cfg Config,
	sleep SleepFunc,
	onDelivered func(domain.ChatMessage),
	logger *zap.Logger,
) *Delivery {
	if sleep == nil {
		sleep = Sleep
	}
	return &Delivery{
		sessionID:   sessionID,
		publisher:   publisher,
		narrator:    narrator,
		cfg:         cfg,
		sleep:       sleep,
		onDelivered: onDelivered,
		logger:      logger,
		ctx:         ctx,
	}
}

// Enqueue appends items in order and wakes the drain worker if idle.
func (d *Delivery) Enqueue(items ...Item) {
	if len(items) == 0 {
		return
	}

	d.mu.Lock()
	d.pending = append(d.pending, items...)
	start := !d.draining
	if start {
		d.draining = true
	}
	d.mu.Unlock()

	if start {
		go d.drain()
	}
}

// Draining reports whether the worker is currently delivering.
func (d *Delivery) Draining() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draining
}

func (d *Delivery) drain() {
	for {
		d.mu.Lock()
		if len(d.pending) == 0 || d.ctx.Err() != nil {
			d.pending = nil
			d.draining = false
			d.mu.Unlock()
			return
		}
		item := d.pending[0]
		d.pending = d.pending[1:]
		d.mu.Unlock()

		if err := d.deliver(item); err != nil {
			// Sessão encerrada no meio da entrega: descarta o resto.
			d.logger.Debug("delivery aborted",
				zap.String("session_id", d.sessionID),
				zap.Error(err),
			)
			d.mu.Lock()
			d.pending = nil
			d.draining = false
			d.mu.Unlock()
			return
		}

		d.mu.Lock()
		more := len(d.pending) > 0
		d.mu.Unlock()
		if more {
			if err := d.sleep(d.ctx, d.cfg.MessageGap); err != nil {
				d.mu.Lock()
				d.pending = nil
				d.draining = false
				d.mu.Unlock()
				return
			}
		}
	}
}

func (d *Delivery) deliver(item Item) error {
	if item.RedirectURL != "" {
		if err := d.sleep(d.ctx, d.cfg.RedirectDelay); err != nil {
			return err
		}
		d.publisher.Publish(d.sessionID, domain.Event{
			Type: domain.EventRedirect,
			URL:  item.RedirectURL,
		})
		return nil
	}

	d.publisher.Publish(d.sessionID, domain.Event{Type: domain.EventTyping, Active: true})
	if err := d.sleep(d.ctx, d.cfg.TypingDelay); err != nil {
		d.publisher.Publish(d.sessionID, domain.Event{Type: domain.EventTyping})
		return err
	}
	d.publisher.Publish(d.sessionID, domain.Event{Type: domain.EventTyping})

	msg := domain.ChatMessage{
		ID:        uuid.NewString(),
		Text:      item.Text,
		Sender:    domain.SenderBot,
		CreatedAt: time.Now(),
	}
	if d.onDelivered != nil {
		d.onDelivered(msg)
	}
	d.publisher.Publish(d.sessionID, domain.Event{Type: domain.EventMessage, Message: &msg})

	if item.Speech != "" && d.narrator != nil {
		d.narrator.Speak(d.sessionID, item.Speech)
	}
	return nil
}
