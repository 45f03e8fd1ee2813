package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cineflixpay/ashley-assistant-go/internal/config"
	"github.com/cineflixpay/ashley-assistant-go/internal/domain"
	"github.com/cineflixpay/ashley-assistant-go/internal/handler"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/cache"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/client"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/events"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/observability"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/resilience"
	"github.com/cineflixpay/ashley-assistant-go/internal/infra/session"
	"github.com/cineflixpay/ashley-assistant-go/internal/queue"
	"github.com/cineflixpay/ashley-assistant-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("typing_delay", cfg.TypingDelay),
		zap.Duration("message_gap", cfg.MessageGap),
		zap.Duration("session_ttl", cfg.SessionTTL),
		zap.Duration("cache_ttl", cfg.CacheTTL),
		zap.Bool("audio_enabled", cfg.AudioEnabled),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "ashley-assistant")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Catalog ---
	catalog, err := config.LoadCatalog(cfg.CatalogFile)
	if err != nil {
		logger.Fatal("failed to load catalog", zap.Error(err))
	}
	logger.Info("catalog loaded",
		zap.Int("plans", len(catalog.Plans)),
		zap.Int("upsells", len(catalog.Upsells)),
	)

	// --- Cache ---
	galleryCache := cache.New[*domain.CatalogPage](cfg.CacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
	}
	cb := resilience.NewCircuitBreaker("external-apis")

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	completionClient := client.NewCompletionClient(httpClient, cfg.CompletionAPIURL, cb, resilienceCfg)
	catalogClient := client.NewCatalogClient(httpClient, cfg.CatalogAPIURL, cfg.CatalogAPIToken, cb, resilienceCfg)

	// --- Events ---
	broker := events.NewBroker(logger)
	narrator := events.NewSpeechNarrator(broker, cfg.AudioEnabled)

	// --- Sessions ---
	store := session.NewStore(cfg.SessionTTL, func(sess *session.Session) {
		broker.DropSession(sess.ID)
	}, logger)
	defer store.Close()

	// --- Services ---
	tokens := service.NewTokenManager(cfg.JWTSecret, cfg.SessionTokenTTL)
	responder := service.NewFreeChatResponder(completionClient, metrics, logger)
	funnel := service.NewFunnel(store, broker, narrator, catalog, responder,
		queue.Config{
			TypingDelay:   cfg.TypingDelay,
			MessageGap:    cfg.MessageGap,
			RedirectDelay: cfg.RedirectDelay,
		},
		nil, metrics, logger)
	gallery := service.NewGalleryService(catalogClient, galleryCache, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(funnel, gallery, tokens, broker, metrics, logger)

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
