package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics for the application.
type Service struct {
	WorkflowOperations *prometheus.CounterVec
	OperationDuration  *prometheus.HistogramVec
	NotificationsSent  *prometheus.CounterVec
	NotificationsFail  *prometheus.CounterVec
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	EventsPublished    *prometheus.CounterVec
	StartupTimeSeconds prometheus.Gauge
}

const (
	ResultSuccess  = "success"
	ResultError    = "error"
	ResultRejected = "rejected"
)
