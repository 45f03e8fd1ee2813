package queue_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"
	"github.com/cineflixpay/ashley-assistant-go/internal/queue"

	"go.uber.org/zap"
)

// capturePublisher grava os eventos publicados em ordem.
type capturePublisher struct {
	mu     sync.Mutex
	events []domain.Event
}

func (p *capturePublisher) Publish(sessionID string, ev domain.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
}

func (p *capturePublisher) snapshot() []domain.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.Event, len(p.events))
	copy(out, p.events)
	return out
}

type captureNarrator struct {
	mu     sync.Mutex
	spoken []string
}

func (n *captureNarrator) Speak(sessionID, text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.spoken = append(n.spoken, text)
}

// instantSleep devolve na hora, registrando as durações pedidas.
func instantSleep(slept *[]time.Duration, mu *sync.Mutex) queue.SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		mu.Lock()
		*slept = append(*slept, d)
		mu.Unlock()
		return nil
	}
}

func testCfg() queue.Config {
	return queue.Config{
		TypingDelay:   4 * time.Second,
		MessageGap:    2 * time.Second,
		RedirectDelay: 3 * time.Second,
	}
}

func waitDelivered(t *testing.T, ch <-chan domain.ChatMessage, n int) []domain.ChatMessage {
	t.Helper()
	var out []domain.ChatMessage
	for i := 0; i < n; i++ {
		select {
		case msg := <-ch:
			out = append(out, msg)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for delivery %d of %d", i+1, n)
		}
	}
	return out
}

func TestDelivery_BurstIsFIFO(t *testing.T) {
	pub := &capturePublisher{}
	var slept []time.Duration
	var mu sync.Mutex

	delivered := make(chan domain.ChatMessage, 8)
	d := queue.NewDelivery(context.Background(), "sess-1", pub, nil, testCfg(),
		instantSleep(&slept, &mu),
		func(m domain.ChatMessage) { delivered <- m },
		zap.NewNop(),
	)

	d.Enqueue(
		queue.Item{Text: "primeira"},
		queue.Item{Text: "segunda"},
		queue.Item{Text: "terceira"},
	)

	msgs := waitDelivered(t, delivered, 3)
	for i, want := range []string{"primeira", "segunda", "terceira"} {
		if msgs[i].Text != want {
			t.Errorf("delivery %d = %q, want %q", i, msgs[i].Text, want)
		}
		if msgs[i].Sender != domain.SenderBot {
			t.Errorf("delivery %d sender = %q, want bot", i, msgs[i].Sender)
		}
		if msgs[i].ID == "" {
			t.Errorf("delivery %d has empty id", i)
		}
	}

	// Espera o worker terminar o pós-processamento da última entrega.
	deadline := time.Now().Add(2 * time.Second)
	for d.Draining() {
		if time.Now().After(deadline) {
			t.Fatal("queue still draining")
		}
		time.Sleep(5 * time.Millisecond)
	}

	// Cada mensagem: typing on, typing off, message. Ordem estrita.
	events := pub.snapshot()
	if len(events) != 9 {
		t.Fatalf("expected 9 events, got %d", len(events))
	}
	for i := 0; i < 3; i++ {
		base := i * 3
		if events[base].Type != domain.EventTyping || !events[base].Active {
			t.Errorf("event %d: expected typing on, got %+v", base, events[base])
		}
		if events[base+1].Type != domain.EventTyping || events[base+1].Active {
			t.Errorf("event %d: expected typing off, got %+v", base+1, events[base+1])
		}
		if events[base+2].Type != domain.EventMessage {
			t.Errorf("event %d: expected message, got %+v", base+2, events[base+2])
		}
	}

	// 3 esperas de digitação + 2 pausas entre mensagens.
	mu.Lock()
	defer mu.Unlock()
	var typing, gaps int
	for _, s := range slept {
		switch s {
		case 4 * time.Second:
			typing++
		case 2 * time.Second:
			gaps++
		}
	}
	if typing != 3 || gaps != 2 {
		t.Errorf("expected 3 typing waits and 2 gaps, got %d and %d", typing, gaps)
	}
}

func TestDelivery_EnqueueWhileDrainingAppends(t *testing.T) {
	pub := &capturePublisher{}
	var slept []time.Duration
	var mu sync.Mutex

	delivered := make(chan domain.ChatMessage, 8)
	d := queue.NewDelivery(context.Background(), "sess-2", pub, nil, testCfg(),
		instantSleep(&slept, &mu),
		func(m domain.ChatMessage) { delivered <- m },
		zap.NewNop(),
	)

	d.Enqueue(queue.Item{Text: "um"})
	d.Enqueue(queue.Item{Text: "dois"})

	msgs := waitDelivered(t, delivered, 2)
	if msgs[0].Text != "um" || msgs[1].Text != "dois" {
		t.Errorf("unexpected delivery order: %q, %q", msgs[0].Text, msgs[1].Text)
	}
}

func TestDelivery_SpeechGoesToNarrator(t *testing.T) {
	pub := &capturePublisher{}
	nar := &captureNarrator{}
	var slept []time.Duration
	var mu sync.Mutex

	delivered := make(chan domain.ChatMessage, 4)
	d := queue.NewDelivery(context.Background(), "sess-3", pub, nar, testCfg(),
		instantSleep(&slept, &mu),
		func(m domain.ChatMessage) { delivered <- m },
		zap.NewNop(),
	)

	d.Enqueue(
		queue.Item{Text: "sem narração"},
		queue.Item{Text: "🎧 com narração", Speech: "texto falado diferente"},
	)
	waitDelivered(t, delivered, 2)

	deadline := time.Now().Add(2 * time.Second)
	for d.Draining() {
		if time.Now().After(deadline) {
			t.Fatal("queue still draining")
		}
		time.Sleep(5 * time.Millisecond)
	}

	nar.mu.Lock()
	defer nar.mu.Unlock()
	if len(nar.spoken) != 1 || nar.spoken[0] != "texto falado diferente" {
		t.Errorf("unexpected narration: %v", nar.spoken)
	}
}

func TestDelivery_RedirectEvent(t *testing.T) {
	pub := &capturePublisher{}
	var slept []time.Duration
	var mu sync.Mutex

	delivered := make(chan domain.ChatMessage, 4)
	d := queue.NewDelivery(context.Background(), "sess-4", pub, nil, testCfg(),
		instantSleep(&slept, &mu),
		func(m domain.ChatMessage) { delivered <- m },
		zap.NewNop(),
	)

	d.Enqueue(
		queue.Item{Text: "🎉 Redirecionando pro pagamento seguro..."},
		queue.Item{RedirectURL: "https://pay.example.com/abc"},
	)
	waitDelivered(t, delivered, 1)

	deadline := time.Now().Add(2 * time.Second)
	for d.Draining() {
		if time.Now().After(deadline) {
			t.Fatal("queue still draining")
		}
		time.Sleep(5 * time.Millisecond)
	}

	events := pub.snapshot()
	last := events[len(events)-1]
	if last.Type != domain.EventRedirect || last.URL != "https://pay.example.com/abc" {
		t.Errorf("expected redirect event last, got %+v", last)
	}
}

func TestDelivery_CancelledContextStopsDrain(t *testing.T) {
	pub := &capturePublisher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := queue.NewDelivery(ctx, "sess-5", pub, nil, testCfg(), nil,
		func(m domain.ChatMessage) { t.Error("no delivery expected after cancel") },
		zap.NewNop(),
	)

	d.Enqueue(queue.Item{Text: "nunca entregue"})

	deadline := time.Now().Add(2 * time.Second)
	for d.Draining() {
		if time.Now().After(deadline) {
			t.Fatal("queue still draining after cancel")
		}
		time.Sleep(5 * time.Millisecond)
	}

	for _, ev := range pub.snapshot() {
		if ev.Type == domain.EventMessage {
			t.Errorf("unexpected message event after cancel: %+v", ev)
		}
	}
}
