package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/events"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/observability"
	"github.com/cineflixpay/ashley-assistant-go/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("handler")

// NewRouter creates the HTTP router with all routes and middleware.
// Routes follow the API contract consumed by the chat widget.
func NewRouter(
	funnel *service.Funnel,
	gallery *service.GalleryService,
	tokens *service.TokenManager,
	broker *events.Broker,
	metrics *observability.Metrics,
	logger *zap.Logger,
) http.Handler {
	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.TracingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Heartbeat("/ping"))

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler())
	r.Get("/readyz", readyzHandler())
	r.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {

		// =============================================
		// 1. 💬 Sessões do chat
		// POST /v1/sessions
		// =============================================
		r.Post("/sessions", startSessionHandler(funnel, tokens, logger))

		// Sub-rotas de sessão: todas exigem o token da própria sessão.
		r.Route("/sessions/{sessionId}", func(r chi.Router) {
			r.Use(SessionAuthMiddleware(tokens, logger))

			r.Post("/messages", postMessageHandler(funnel, logger))
			r.Get("/messages", getTranscriptHandler(funnel, logger))
			r.Post("/gender", selectGenderHandler(funnel, logger))
			r.Post("/plan", selectPlanHandler(funnel, logger))
			r.Post("/upsells/{upsellId}", toggleUpsellHandler(funnel, logger))
			r.Post("/confirm", confirmHandler(funnel, logger))
			r.Post("/abandon", abandonHandler(funnel, logger))
			r.Get("/events", eventsHandler(broker, logger))
		})

		// =============================================
		// 2. 🎬 Vitrine
		// GET /v1/gallery
		// GET /v1/plans
		// =============================================
		r.Get("/gallery", galleryHandler(gallery, logger))
		r.Get("/plans", plansHandler(funnel, logger))

		// =============================================
		// 3. 📊 Métricas do funil
		// GET /v1/metrics/funnel
		// =============================================
		r.Get("/metrics/funnel", funnelMetricsHandler(metrics, logger))
	})

	return r
}

// ============================================================
// 1. Sessões — criação e entrada de texto
// ============================================================

func startSessionHandler(funnel *service.Funnel, tokens *service.TokenManager, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sessions")
		defer span.End()

		// Corpo opcional: {"plan_id": "..."} quando o visitante chega
		// pelo CTA de um plano da vitrine.
		var req struct {
			PlanID string `json:"plan_id,omitempty"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		sess, err := funnel.StartSession(ctx, req.PlanID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("session.id", sess.ID))

		token, err := tokens.Mint(sess.ID)
		if err != nil {
			logger.Error("could not mint session token", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"session_id": sess.ID,
			"token":      token,
		})
	}
}

func postMessageHandler(funnel *service.Funnel, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sessions/{sessionId}/messages")
		defer span.End()

		sessionID := chi.URLParam(r, "sessionId")
		span.SetAttributes(attribute.String("session.id", sessionID))

		var req struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := funnel.HandleText(ctx, sessionID, req.Text); err != nil {
			handleServiceError(w, err, logger)
			return
		}

		// As respostas chegam pelo stream de eventos, no ritmo da fila.
		w.WriteHeader(http.StatusAccepted)
	}
}

func getTranscriptHandler(funnel *service.Funnel, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/sessions/{sessionId}/messages")
		defer span.End()

		sessionID := chi.URLParam(r, "sessionId")
		messages, err := funnel.Transcript(ctx, sessionID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		if messages == nil {
			messages = []domain.ChatMessage{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"messages": messages})
	}
}

// ============================================================
// 2. Transições por botão
// ============================================================

func selectGenderHandler(funnel *service.Funnel, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sessions/{sessionId}/gender")
		defer span.End()

		sessionID := chi.URLParam(r, "sessionId")

		var req struct {
			Gender string `json:"gender"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := funnel.SelectGender(ctx, sessionID, req.Gender); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func selectPlanHandler(funnel *service.Funnel, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sessions/{sessionId}/plan")
		defer span.End()

		sessionID := chi.URLParam(r, "sessionId")

		var req struct {
			PlanID string `json:"plan_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		if err := funnel.SelectPlan(ctx, sessionID, req.PlanID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func toggleUpsellHandler(funnel *service.Funnel, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sessions/{sessionId}/upsells/{upsellId}")
		defer span.End()

		sessionID := chi.URLParam(r, "sessionId")
		upsellID := chi.URLParam(r, "upsellId")

		total, err := funnel.ToggleUpsell(ctx, sessionID, upsellID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"total": total})
	}
}

func confirmHandler(funnel *service.Funnel, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sessions/{sessionId}/confirm")
		defer span.End()

		sessionID := chi.URLParam(r, "sessionId")

		result, err := funnel.Confirm(ctx, sessionID)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}
		span.SetAttributes(attribute.String("checkout.route", string(result.Route)))
		writeJSON(w, http.StatusOK, result)
	}
}

func abandonHandler(funnel *service.Funnel, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/sessions/{sessionId}/abandon")
		defer span.End()

		sessionID := chi.URLParam(r, "sessionId")

		// Sinal idempotente: fora da janela de retenção é ignorado.
		if err := funnel.Abandon(ctx, sessionID); err != nil {
			handleServiceError(w, err, logger)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// ============================================================
// 3. Stream de eventos — WebSocket
// ============================================================

func eventsHandler(broker *events.Broker, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := chi.URLParam(r, "sessionId")
		broker.ServeWS(w, r, sessionID)
	}
}

// ============================================================
// 4. Vitrine — galeria e planos
// ============================================================

func galleryHandler(gallery *service.GalleryService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "GET /v1/gallery")
		defer span.End()

		sections := gallery.Sections(ctx)
		writeJSON(w, http.StatusOK, map[string]any{"sections": sections})
	}
}

func plansHandler(funnel *service.Funnel, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, span := tracer.Start(r.Context(), "GET /v1/plans")
		defer span.End()

		catalog := funnel.Catalog()
		writeJSON(w, http.StatusOK, map[string]any{
			"plans":   catalog.Plans,
			"upsells": catalog.Upsells,
		})
	}
}

// ============================================================
// 5. Métricas & Health
// ============================================================

func healthzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		now := time.Now().Format(time.RFC3339)
		writeJSON(w, http.StatusOK, domain.HealthStatus{
			Status: "healthy",
			Services: []domain.ServiceHealth{
				{Name: "ashley-api", Status: "healthy", UptimePercent: 99.99, LastChecked: now},
			},
		})
	}
}

func readyzHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func funnelMetricsHandler(metrics *observability.Metrics, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := metrics.GetFunnelSnapshot()
		writeJSON(w, http.StatusOK, snapshot)
	}
}
