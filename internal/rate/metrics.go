package rate

import "github.com/prometheus/client_golang/prometheus"

type guardMetrics struct {
	tokens     prometheus.Gauge
	retryAfter prometheus.Gauge
	lastStatus prometheus.Gauge
	cacheHits  prometheus.Counter
	blocked    prometheus.Counter
}

func newGuardMetrics(printer string) *guardMetrics {
	labels := prometheus.Labels{"printer": printer}
	return &guardMetrics{
		tokens: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "hp_instant_ink_guard_tokens",
			Help:        "Requests left in the printer rate-limit bucket",
			ConstLabels: labels,
		}),
		retryAfter: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "hp_instant_ink_guard_retry_after_seconds",
			Help:        "Last Retry-After sent by the printer",
			ConstLabels: labels,
		}),
		lastStatus: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "hp_instant_ink_guard_last_status_code",
			Help:        "Last HTTP status code returned by the printer",
			ConstLabels: labels,
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hp_instant_ink_guard_cache_hits_total",
			Help:        "Requests answered from the cached printer response",
			ConstLabels: labels,
		}),
		blocked: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "hp_instant_ink_guard_blocked_total",
			Help:        "Requests refused by the rate limit with no cached response",
			ConstLabels: labels,
		}),
	}
}

// Collectors exposes the guard's metrics for registration.
func (g *Guard) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		g.metrics.tokens,
		g.metrics.retryAfter,
		g.metrics.lastStatus,
		g.metrics.cacheHits,
		g.metrics.blocked,
	}
}
