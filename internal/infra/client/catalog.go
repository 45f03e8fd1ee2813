package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/resilience"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
)

// CatalogClient calls the movie metadata API (TMDB-compatible) that
// feeds the recommendation gallery.
type CatalogClient struct {
	httpClient *http.Client
	baseURL    string
	token      string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
}

// NewCatalogClient creates a new CatalogClient. token é o Bearer token
// de leitura da API.
func NewCatalogClient(httpClient *http.Client, baseURL, token string, cb *gobreaker.CircuitBreaker, cfg resilience.Config) *CatalogClient {
	return &CatalogClient{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
		cb:         cb,
		cfg:        cfg,
	}
}

// FetchPage retrieves one page of results from the given endpoint
// (e.g. "/trending/movie/week"). Todos os requests pedem language=pt-BR;
// params adicionais vão por querystring.
func (c *CatalogClient) FetchPage(ctx context.Context, endpoint string, params map[string]string) (*domain.CatalogPage, error) {
	ctx, span := tracer.Start(ctx, "CatalogClient.FetchPage")
	defer span.End()
	span.SetAttributes(attribute.String("catalog.endpoint", endpoint))

	var page domain.CatalogPage

	result, err := c.cb.Execute(func() (any, error) {
		innerErr := resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			q := url.Values{}
			q.Set("language", "pt-BR")
			for k, v := range params {
				q.Set(k, v)
			}

			reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, endpoint, q.Encode())
			httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
			if err != nil {
				return err
			}
			httpReq.Header.Set("Accept", "application/json")
			httpReq.Header.Set("Authorization", "Bearer "+c.token)

			resp, err := c.httpClient.Do(httpReq)
			if err != nil {
				return err
			}
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("catalog API returned status %d", resp.StatusCode)
			}

			return json.NewDecoder(resp.Body).Decode(&page)
		})
		if innerErr != nil {
			return nil, innerErr
		}
		return &page, nil
	})

	if err != nil {
		return nil, &domain.ErrExternalService{Service: "catalog", Err: err}
	}

	return result.(*domain.CatalogPage), nil
}
