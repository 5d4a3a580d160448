// Package metrics holds the Prometheus collectors of the service. Collectors
// live in a private registry served by Handler, not the global default.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	generations = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyloom_generations_total",
			Help: "Studio asset generations, partitioned by asset type and result.",
		},
		[]string{"type", "result"},
	)
	orphansSwept = promauto.With(registry).NewCounter(
		prometheus.CounterOpts{
			Name: "storyloom_orphaned_stories_swept_total",
			Help: "Orphaned story rows deleted by the sweeper.",
		},
	)
	writerRequests = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyloom_writer_requests_total",
			Help: "Generative text requests, partitioned by operation and result.",
		},
		[]string{"operation", "result"},
	)
	ledgerOps = promauto.With(registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "storyloom_ledger_operations_total",
			Help: "Key-value ledger mutations, partitioned by operation.",
		},
		[]string{"operation"},
	)
	httpDuration = promauto.With(registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storyloom_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
}

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultBusy    = "busy"
)

func Generation(assetType, result string) {
	generations.WithLabelValues(assetType, result).Inc()
}

func OrphansSwept(n int) {
	orphansSwept.Add(float64(n))
}

func WriterRequest(operation string, err error) {
	result := ResultSuccess
	if err != nil {
		result = ResultFailure
	}
	writerRequests.WithLabelValues(operation, result).Inc()
}

func LedgerOp(operation string) {
	ledgerOps.WithLabelValues(operation).Inc()
}

func ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unknown"
	}
	httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}
