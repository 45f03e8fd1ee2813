// Package client contém os clientes HTTP dos colaboradores externos:
// o serviço de completion da IA e a API de catálogo de filmes. Todos
// passam por circuit breaker + retry com backoff.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("client")

// CompletionClient calls the external AI completion service that powers
// the free-chat turns.
type CompletionClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewCompletionClient creates a new CompletionClient.
func NewCompletionClient(httpClient *http.Client, baseURL string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *CompletionClient {
	return &CompletionClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		cb:         cb,
		cfg:        cfg,
	}
}

// Complete sends the visitor's message plus conversation context and
// returns the AI's reply.
func (c *CompletionClient) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	ctx, span := tracer.Start(ctx, "CompletionClient.Complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("chat.stage", string(req.Stage)),
		attribute.Int("chat.history_len", len(req.ConversationHistory)),
	)

	var completionResp domain.CompletionResponse

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			body, err := json.Marshal(req)
			if err != nil {
				return err
			}

			url := fmt.Sprintf("%s/functions/v1/ashley-chat", c.baseURL)
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
			if err != nil {
				return err
			}
			httpReq.Header.Set("Content-Type", "application/json")

			resp, err := c.httpClient.Do(httpReq)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("completion API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&completionResp)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return &completionResp, nil
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "completion", Err: err}
	}

	return result.(*domain.CompletionResponse), nil
}
