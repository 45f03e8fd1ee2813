package observability

import (
	"time"

	"github.com/cineflixpay/ashley-assistant-go/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the assistant.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	sessionsStarted   prometheus.Counter
	messagesDelivered *prometheus.CounterVec
	stageTransitions  *prometheus.CounterVec
	aiCalls           *prometheus.CounterVec
	checkouts         *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	externalErrors    *prometheus.CounterVec
	cacheHits         *prometheus.CounterVec
	cacheMisses       *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		sessionsStarted: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "ashley_sessions_started_total",
				Help: "Total chat sessions started.",
			},
		),
		messagesDelivered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ashley_messages_delivered_total",
				Help: "Total messages appended to transcripts.",
			},
			[]string{"sender"},
		),
		stageTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ashley_stage_transitions_total",
				Help: "Total funnel stage entries.",
			},
			[]string{"stage"},
		),
		aiCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ashley_ai_calls_total",
				Help: "Total AI completion calls by outcome.",
			},
			[]string{"status"},
		),
		checkouts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ashley_checkouts_total",
				Help: "Total confirmed checkouts by route.",
			},
			[]string{"route"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ashley_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		externalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ashley_external_errors_total",
				Help: "Total errors from external services.",
			},
			[]string{"service"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ashley_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ashley_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
	}
}

// IncrSessionStarted increments the session counter.
func (m *Metrics) IncrSessionStarted() {
	m.sessionsStarted.Inc()
}

// IncrMessageDelivered counts a transcript append by sender ("bot" | "user").
func (m *Metrics) IncrMessageDelivered(sender string) {
	m.messagesDelivered.WithLabelValues(sender).Inc()
}

// IncrStageTransition counts entry into a funnel stage.
func (m *Metrics) IncrStageTransition(stage string) {
	m.stageTransitions.WithLabelValues(stage).Inc()
}

// IncrAICall counts an AI completion attempt ("success" | "error" | "rejected").
func (m *Metrics) IncrAICall(status string) {
	m.aiCalls.WithLabelValues(status).Inc()
}

// IncrCheckout counts a confirmed checkout ("payment" | "whatsapp").
func (m *Metrics) IncrCheckout(route string) {
	m.checkouts.WithLabelValues(route).Inc()
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrExternalError increments the external error counter.
func (m *Metrics) IncrExternalError(service string) {
	m.externalErrors.WithLabelValues(service).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// GetFunnelSnapshot returns a snapshot of funnel metrics suitable for the
// GET /v1/metrics/funnel endpoint.
func (m *Metrics) GetFunnelSnapshot() *domain.FunnelMetrics {
	// Gather current values from Prometheus counters.
	// Note: Prometheus counters expose cumulative values.
	sessions := readCounter(m.sessionsStarted)
	delivered := getCounterValue(m.messagesDelivered, "bot") +
		getCounterValue(m.messagesDelivered, "user")
	aiSuccess := getCounterValue(m.aiCalls, "success")
	aiError := getCounterValue(m.aiCalls, "error")
	aiTotal := aiSuccess + aiError
	cacheHits := getCounterValue(m.cacheHits, "gallery")
	cacheMisses := getCounterValue(m.cacheMisses, "gallery")

	aiErrorRate := float64(0)
	cacheHitRate := float64(0)

	if aiTotal > 0 {
		aiErrorRate = aiError / aiTotal
	}
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.FunnelMetrics{
		SessionsStarted:   int64(sessions),
		MessagesDelivered: int64(delivered),
		AICalls:           int64(aiTotal),
		AIErrorRate:       aiErrorRate,
		CheckoutsPayment:  int64(getCounterValue(m.checkouts, "payment")),
		CheckoutsWhatsApp: int64(getCounterValue(m.checkouts, "whatsapp")),
		CacheHitRate:      cacheHitRate,
		Period:            "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

// readCounter extracts the current value from a plain Counter.
func readCounter(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
