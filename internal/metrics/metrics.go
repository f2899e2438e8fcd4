//nolint:gochecknoglobals
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	submissionsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "memorial",
		Name:      "submissions_total",
		Help:      "Submissions handled, by outcome",
	}, []string{"kind", "outcome"})

	droppedMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "memorial",
		Name:      "attachments_dropped_total",
		Help:      "Uploaded files left out of a submission",
	}, []string{"kind", "reason"})

	notificationsMetric = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "memorial",
		Name:      "notifications_total",
		Help:      "Notification delivery attempts, by result",
	}, []string{"result"})

	httpRequestsDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "memorial",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "The latency of the HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method", "code"})
)

// Submission counts one intake outcome: accepted, rejected or failed.
func Submission(kind, outcome string) {
	submissionsMetric.With(prometheus.Labels{"kind": kind, "outcome": outcome}).Inc()
}

func AttachmentDropped(kind, reason string) {
	droppedMetric.With(prometheus.Labels{"kind": kind, "reason": reason}).Inc()
}

func Notification(result string) {
	notificationsMetric.With(prometheus.Labels{"result": result}).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware observes request latency labelled by chi route pattern.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		httpRequestsDuration.With(prometheus.Labels{
			"route":  route,
			"method": r.Method,
			"code":   strconv.Itoa(status),
		}).Observe(time.Since(start).Seconds())
	})
}
