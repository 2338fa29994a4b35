package metrics

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "petition"

var (
	UploadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "uploads_total", Help: "Upload lifecycle outcomes by target and final state."},
		[]string{"target", "outcome"},
	)
	RetryAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "retry_attempts_total", Help: "Retries scheduled after a retryable failure."},
		[]string{"operation"},
	)
	CompensationFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "compensation_failures_total", Help: "Orphaned objects whose compensating removal failed."},
		[]string{"operation"},
	)
	GeneratedDocuments = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "generated_documents_total", Help: "Petition generations by document type and outcome."},
		[]string{"doc_type", "outcome"},
	)
	AssemblyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assembly_duration_seconds",
			Help:      "Time spent assembling and serializing a petition.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "HTTP requests by method, route and status."},
		[]string{"method", "route", "status"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Requests rejected by the rate limiter."},
		[]string{"route"},
	)
)

var registerOnce sync.Once

// RegisterCollectors registers every collector on reg.
func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(
		UploadsTotal,
		RetryAttempts,
		CompensationFailures,
		GeneratedDocuments,
		AssemblyDuration,
		HTTPRequests,
		RateLimitRejected,
	)
}

// Handler exposes the default registry in Prometheus text format.
// Collectors are registered on first use.
func Handler() gin.HandlerFunc {
	registerOnce.Do(func() {
		RegisterCollectors(prometheus.DefaultRegisterer)
	})
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
