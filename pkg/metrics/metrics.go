// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result labels.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sgmr_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
		},
		[]string{"method", "status"},
	)

	ClassifyDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sgmr_classify_duration_seconds",
			Help:    "Symptom classification latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		},
		[]string{"classifier", "result"},
	)

	CasesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sgmr_cases_created_total",
			Help: "Total number of cases persisted",
		},
	)

	ReviewsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sgmr_reviews_recorded_total",
			Help: "Total number of doctor reviews persisted",
		},
	)

	// kind: admin_notification, verified_reply
	Notifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sgmr_notifications_total",
			Help: "Total number of outbound messages by kind and result",
		},
		[]string{"kind", "result"},
	)
)

// ObserveHTTPRequest matches middleware.Observer.
func ObserveHTTPRequest(method, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, status).Observe(duration.Seconds())
}

// ObserveClassify records one classification call.
func ObserveClassify(classifier string, err error, duration time.Duration) {
	ClassifyDuration.WithLabelValues(classifier, result(err)).Observe(duration.Seconds())
}

// IncrementNotification counts one delivery attempt.
func IncrementNotification(kind string, err error) {
	Notifications.WithLabelValues(kind, result(err)).Inc()
}

func result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
