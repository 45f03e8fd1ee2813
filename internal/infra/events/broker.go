// Package events distribui eventos de sessão em tempo real (typing,
// mensagem, fala, redirect) para os streams WebSocket conectados.
package events

import (
	"sync"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"

	"go.uber.org/zap"
)

const subscriberBuffer = 64

// Broker is an in-process publish/subscribe hub keyed by session ID.
// Publish never blocks the caller: a subscriber that cannot keep up has
// the event dropped, since the transcript endpoint remains the source
// of truth for missed messages.
type Broker struct {
	mu     sync.RWMutex
	subs   map[string]map[chan domain.Event]struct{}
	logger *zap.Logger
}

// NewBroker creates an empty broker.
func NewBroker(logger *zap.Logger) *Broker {
	return &Broker{
		subs:   make(map[string]map[chan domain.Event]struct{}),
		logger: logger,
	}
}

// Subscribe registers a listener for one session's events. The returned
// cancel func must be called when the listener goes away; it closes the
// channel.
func (b *Broker) Subscribe(sessionID string) (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, subscriberBuffer)

	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan domain.Event]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		set, ok := b.subs[sessionID]
		if !ok {
			return
		}
		if _, ok := set[ch]; !ok {
			return
		}
		delete(set, ch)
		if len(set) == 0 {
			delete(b.subs, sessionID)
		}
		close(ch)
	}
	return ch, cancel
}

// Publish fans the event out to every subscriber of the session.
// Non-blocking: full subscriber buffers drop the event.
func (b *Broker) Publish(sessionID string, ev domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs[sessionID] {
		select {
		case ch <- ev:
		default:
			b.logger.Warn("event dropped, slow subscriber",
				zap.String("session_id", sessionID),
				zap.String("event_type", string(ev.Type)),
			)
		}
	}
}

// DropSession closes and removes every subscriber of a session. Called
// when the session is evicted or abandoned.
func (b *Broker) DropSession(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs[sessionID] {
		close(ch)
	}
	delete(b.subs, sessionID)
}
