package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// scrapeLogger forwards promhttp gather errors to zerolog.
type scrapeLogger struct {
	logger zerolog.Logger
}

func (l scrapeLogger) Println(v ...interface{}) {
	l.logger.Warn().Msg(fmt.Sprint(v...))
}

// MetricsHandler serves registry with at most one printer scrape in flight.
// A scrape that outlives timeout answers 503 instead of piling up behind a
// sleeping printer. The handler's own request counters land in registry.
func MetricsHandler(registry *prometheus.Registry, timeout time.Duration, logger zerolog.Logger) http.Handler {
	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		ErrorLog:            scrapeLogger{logger: logger},
		ErrorHandling:       promhttp.ContinueOnError,
		MaxRequestsInFlight: 1,
		Timeout:             timeout,
		Registry:            registry,
	})
	return promhttp.InstrumentMetricHandler(registry, handler)
}
