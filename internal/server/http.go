package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 5 * time.Second

// HTTPServer serves health, metrics, and dashboards for the exporter.
type HTTPServer struct {
	Server *http.Server
}

func NewHTTPServer(addr string, handler http.Handler) *HTTPServer {
	return &HTTPServer{Server: &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}}
}

const dashboardsPrefix = "/dashboards/"

// NewMux wires the exporter routes. scrapeTimeout bounds one /metrics
// request, printer round trip included.
func NewMux(registry *prometheus.Registry, dashboards map[string][]byte, scrapeTimeout time.Duration, logger zerolog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", HealthHandler)
	mux.Handle("/metrics", MetricsHandler(registry, scrapeTimeout, logger))
	mux.Handle(dashboardsPrefix, DashboardsHandler(dashboardsPrefix, dashboards))
	return mux
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *HTTPServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Server.Shutdown(shutdownCtx)
	}
}

// HealthHandler reports exporter liveness. It does not contact the printer;
// scrape_success carries printer health.
func HealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}
