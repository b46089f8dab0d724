// Package metrics exposes Prometheus instrumentation for the search and
// fetch orchestrators.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SearchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deepresearch_search_requests_total",
			Help: "Total number of search backend calls executed",
		},
		[]string{"backend", "outcome"},
	)

	SearchResultsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deepresearch_search_results_total",
			Help: "Total number of results returned by each backend",
		},
		[]string{"backend"},
	)

	SearchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deepresearch_search_duration_seconds",
			Help:    "Duration of search backend calls in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"backend"},
	)

	FetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "deepresearch_fetch_requests_total",
			Help: "Total number of content fetches executed",
		},
		[]string{"outcome"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "deepresearch_fetch_duration_seconds",
			Help:    "Duration of content fetches in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"domain"},
	)

	FetchBytesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "deepresearch_fetch_bytes_total",
			Help: "Total bytes downloaded across all content fetches",
		},
	)
)

// RecordSearch updates search metrics for one backend call.
func RecordSearch(backend string, results int, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	SearchRequestsTotal.WithLabelValues(backend, outcome).Inc()
	SearchResultsTotal.WithLabelValues(backend).Add(float64(results))
	SearchDuration.WithLabelValues(backend).Observe(d.Seconds())
}

// RecordFetch updates fetch metrics for one URL fetch.
func RecordFetch(domain string, bytes int, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	FetchRequestsTotal.WithLabelValues(outcome).Inc()
	FetchDuration.WithLabelValues(domain).Observe(d.Seconds())
	FetchBytesTotal.Add(float64(bytes))
}

// Server encapsulates an HTTP server exposing /metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on addr and serves the Prometheus handler.
func Start(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	s := &Server{srv: &http.Server{Addr: addr, Handler: mux}}
	go func() { _ = s.srv.ListenAndServe() }()
	return s
}

// Stop shuts the metrics server down.
func (s *Server) Stop() error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Close()
}
