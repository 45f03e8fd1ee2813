package domain

// ServiceHealth describes one dependency's health as seen by /healthz.
type ServiceHealth struct {
	Name          string  `json:"name"`
	Status        string  `json:"status"` // healthy | degraded | unhealthy
	LatencyMs     int64   `json:"latency_ms"`
	UptimePercent float64 `json:"uptime_percent"`
	LastChecked   string  `json:"last_checked"`
}

// HealthStatus is the aggregate health response.
type HealthStatus struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}

// FunnelMetrics is the snapshot served by GET /v1/metrics/funnel.
// Values are cumulative since process start.
type FunnelMetrics struct {
	SessionsStarted   int64   `json:"sessions_started"`
	MessagesDelivered int64   `json:"messages_delivered"`
	AICalls           int64   `json:"ai_calls"`
	AIErrorRate       float64 `json:"ai_error_rate"`
	CheckoutsPayment  int64   `json:"checkouts_payment"`
	CheckoutsWhatsApp int64   `json:"checkouts_whatsapp"`
	CacheHitRate      float64 `json:"cache_hit_rate"`
	Period            string  `json:"period"`
}
