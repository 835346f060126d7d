// Package metrics provides Prometheus metrics for the pantry service.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pantry/internal/store"
	"pantry/internal/tenant"
)

var (
	// CompositionMutations counts recipe composition writes by operation and outcome.
	CompositionMutations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pantry",
			Subsystem: "composition",
			Name:      "mutations_total",
			Help:      "Total number of recipe composition mutations by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	// TenantRejections counts API requests refused because no customer was selected.
	TenantRejections = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pantry",
			Subsystem: "tenant",
			Name:      "rejections_total",
			Help:      "Total number of requests rejected for a missing customer selection",
		},
	)

	// AuditPublishFailures counts composition events that could not be delivered.
	AuditPublishFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pantry",
			Subsystem: "audit",
			Name:      "publish_failures_total",
			Help:      "Total number of composition events that failed to publish",
		},
	)

	// HTTPRequestsTotal tracks inbound HTTP requests.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pantry",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests",
		},
		[]string{"method", "status_code"},
	)

	// HTTPRequestDuration tracks inbound HTTP request duration.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pantry",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of inbound HTTP requests in seconds",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method"},
	)
)

// Outcome classifies an error for use as a metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, tenant.ErrUnauthenticated):
		return "unauthenticated"
	case errors.Is(err, store.ErrNotFound):
		return "not_found"
	case errors.Is(err, store.ErrValidation):
		return "invalid"
	case errors.Is(err, store.ErrConflict):
		return "conflict"
	case errors.Is(err, store.ErrInUse):
		return "in_use"
	default:
		return "error"
	}
}

// ObserveMutation records the outcome of a composition write.
func ObserveMutation(operation string, err error) {
	CompositionMutations.WithLabelValues(operation, Outcome(err)).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Instrument records request counts and durations for next.
func Instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		HTTPRequestsTotal.WithLabelValues(r.Method, strconv.Itoa(recorder.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method).Observe(time.Since(started).Seconds())
	})
}
