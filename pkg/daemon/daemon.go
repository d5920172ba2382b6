// Package daemon hosts the HTTP surface of the exporter: the Prometheus
// scrape endpoint and a health check.
package daemon

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RunServer serves /metrics from the given registry until the listener
// fails. It blocks.
func RunServer(endpoint string, registry *prometheus.Registry) error {
	// Set up router
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.StripSlashes,
		middleware.Timeout(60*time.Second),
	)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		Registry: registry,
	}))

	// Launch server
	err := http.ListenAndServe(endpoint, router)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}
