// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

import (
	"context"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"
)

// CompletionCaller invokes the external AI text-completion collaborator
// used for free-form conversation turns.
type CompletionCaller interface {
	Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error)
}

// CatalogFetcher retrieves a page of movie/series metadata from the
// external catalog collaborator.
type CatalogFetcher interface {
	FetchPage(ctx context.Context, endpoint string, params map[string]string) (*domain.CatalogPage, error)
}

// EventPublisher pushes real-time events (typing, messages, speech,
// redirects) to whoever is watching a session's stream.
type EventPublisher interface {
	Publish(sessionID string, ev domain.Event)
}

// Narrator converts text to spoken audio on the visitor's device,
// best-effort. Implementations must silently no-op when speech is
// unavailable or disabled.
type Narrator interface {
	Speak(sessionID, text string)
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
