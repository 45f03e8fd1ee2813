package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"
	"github.com/cineflixpay/ashley-assistant-go/internal/handler"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/events"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/observability"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/session"
	"github.com/cineflixpay/ashley-assistant-go/internal/queue"
	"github.com/cineflixpay/ashley-assistant-go/internal/service"

	"go.uber.org/zap"
)

type stubCompletion struct{}

func (stubCompletion) Complete(ctx context.Context, req *domain.CompletionRequest) (*domain.CompletionResponse, error) {
	return &domain.CompletionResponse{Response: "ok"}, nil
}

type stubFetcher struct{}

func (stubFetcher) FetchPage(ctx context.Context, endpoint string, params map[string]string) (*domain.CatalogPage, error) {
	return &domain.CatalogPage{Page: 1, Results: []domain.CatalogItem{{ID: 7, Title: "Filme"}}}, nil
}

type stubCache struct {
	mu    sync.Mutex
	items map[string]*domain.CatalogPage
}

func (c *stubCache) Get(key string) (*domain.CatalogPage, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.items[key]
	return v, ok
}

func (c *stubCache) Set(key string, value *domain.CatalogPage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.items == nil {
		c.items = make(map[string]*domain.CatalogPage)
	}
	c.items[key] = value
}

func (c *stubCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	broker := events.NewBroker(logger)
	narrator := events.NewSpeechNarrator(broker, true)

	store := session.NewStore(time.Minute, nil, logger)
	t.Cleanup(store.Close)

	responder := service.NewFreeChatResponder(stubCompletion{}, metrics, logger)
	funnel := service.NewFunnel(store, broker, narrator, domain.DefaultCatalog(), responder,
		queue.Config{TypingDelay: time.Millisecond, MessageGap: time.Millisecond, RedirectDelay: 3 * time.Second},
		nil, metrics, logger)
	gallery := service.NewGalleryService(stubFetcher{}, &stubCache{}, metrics, logger)
	tokens := service.NewTokenManager("router-test-secret", time.Hour)

	return handler.NewRouter(funnel, gallery, tokens, broker, metrics, logger)
}

func startSession(t *testing.T, router http.Handler) (id, token string) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions", strings.NewReader("{}"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("POST /v1/sessions = %d, want 201 (%s)", rec.Code, rec.Body.String())
	}

	var resp struct {
		SessionID string `json:"session_id"`
		Token     string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode session response: %v", err)
	}
	if resp.SessionID == "" || resp.Token == "" {
		t.Fatalf("incomplete session response: %s", rec.Body.String())
	}
	return resp.SessionID, resp.Token
}

func TestHealthz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestStartSession_ReturnsToken(t *testing.T) {
	router := newTestRouter(t)
	startSession(t, router)
}

func TestSessionRoutes_RequireToken(t *testing.T) {
	router := newTestRouter(t)
	id, _ := startSession(t, router)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+id+"/messages",
		strings.NewReader(`{"text":"oi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("without token = %d, want 401", rec.Code)
	}
}

func TestSessionRoutes_RejectForeignToken(t *testing.T) {
	router := newTestRouter(t)
	idA, _ := startSession(t, router)
	_, tokenB := startSession(t, router)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+idA+"/messages",
		strings.NewReader(`{"text":"oi"}`))
	req.Header.Set("Authorization", "Bearer "+tokenB)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("foreign token = %d, want 401", rec.Code)
	}
}

func TestPostMessage_Accepted(t *testing.T) {
	router := newTestRouter(t)
	id, token := startSession(t, router)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+id+"/messages",
		strings.NewReader(`{"text":"Me chamo Lucas"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Errorf("POST messages = %d, want 202 (%s)", rec.Code, rec.Body.String())
	}
}

func TestPostMessage_EmptyTextIsUnprocessable(t *testing.T) {
	router := newTestRouter(t)
	id, token := startSession(t, router)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+id+"/messages",
		strings.NewReader(`{"text":"   "}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("empty text = %d, want 422", rec.Code)
	}
}

func TestToggleUpsell_ReturnsTotal(t *testing.T) {
	router := newTestRouter(t)
	id, token := startSession(t, router)

	planReq := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+id+"/plan",
		strings.NewReader(`{"plan_id":"mensal"}`))
	planReq.Header.Set("Authorization", "Bearer "+token)
	planRec := httptest.NewRecorder()
	router.ServeHTTP(planRec, planReq)
	if planRec.Code != http.StatusAccepted {
		t.Fatalf("POST plan = %d, want 202", planRec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+id+"/upsells/acesso_extra", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST upsell = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var resp struct {
		Total float64 `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode toggle response: %v", err)
	}
	if resp.Total < 29.79 || resp.Total > 29.81 {
		t.Errorf("total = %v, want 29.80", resp.Total)
	}
}

func TestConfirm_ReturnsCheckoutResult(t *testing.T) {
	router := newTestRouter(t)
	id, token := startSession(t, router)

	planReq := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+id+"/plan",
		strings.NewReader(`{"plan_id":"vitalicio"}`))
	planReq.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(httptest.NewRecorder(), planReq)

	req := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+id+"/confirm", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("POST confirm = %d, want 200 (%s)", rec.Code, rec.Body.String())
	}
	var result domain.CheckoutResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode checkout result: %v", err)
	}
	if result.Route != domain.RoutePayment {
		t.Errorf("route = %q, want payment", result.Route)
	}
	if result.DelaySeconds != 3 {
		t.Errorf("delay = %d, want 3", result.DelaySeconds)
	}

	// Segunda confirmação conflita.
	again := httptest.NewRequest(http.MethodPost, "/v1/sessions/"+id+"/confirm", nil)
	again.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, again)
	if rec.Code != http.StatusConflict {
		t.Errorf("second confirm = %d, want 409", rec.Code)
	}
}

func TestPlans_PublicRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/plans", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET plans = %d, want 200", rec.Code)
	}
	var resp struct {
		Plans   []domain.Plan   `json:"plans"`
		Upsells []domain.Upsell `json:"upsells"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode plans: %v", err)
	}
	if len(resp.Plans) != 4 || len(resp.Upsells) != 3 {
		t.Errorf("plans=%d upsells=%d, want 4 and 3", len(resp.Plans), len(resp.Upsells))
	}
}

func TestGallery_PublicRoute(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/gallery", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET gallery = %d, want 200", rec.Code)
	}
	var resp struct {
		Sections []struct {
			Key string `json:"key"`
		} `json:"sections"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode gallery: %v", err)
	}
	if len(resp.Sections) != 6 {
		t.Errorf("sections = %d, want 6", len(resp.Sections))
	}
}

func TestFunnelMetrics_Snapshot(t *testing.T) {
	router := newTestRouter(t)
	startSession(t, router)

	req := httptest.NewRequest(http.MethodGet, "/v1/metrics/funnel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET funnel metrics = %d, want 200", rec.Code)
	}
	var snapshot domain.FunnelMetrics
	if err := json.Unmarshal(rec.Body.Bytes(), &snapshot); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snapshot.SessionsStarted < 1 {
		t.Errorf("sessions_started = %d, want >= 1", snapshot.SessionsStarted)
	}
}

func TestUnknownSession_NotFound(t *testing.T) {
	router := newTestRouter(t)

	tokens := service.NewTokenManager("router-test-secret", time.Hour)
	token, err := tokens.Mint("00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("Mint: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost,
		"/v1/sessions/00000000-0000-0000-0000-000000000000/messages",
		strings.NewReader(`{"text":"oi"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("unknown session = %d, want 404", rec.Code)
	}
}
