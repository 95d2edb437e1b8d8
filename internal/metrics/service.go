package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		WorkflowOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotmatch_workflow_operations_total",
			Help: "Workflow operations by name and result.",
		}, []string{"operation", "result"}),
		OperationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "slotmatch_workflow_operation_duration_seconds",
			Help:    "Duration of workflow operations including notification sends.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"operation"}),
		NotificationsSent: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotmatch_notifications_sent_total",
			Help: "Templated messages accepted by the messaging gateway, by kind.",
		}, []string{"kind"}),
		NotificationsFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotmatch_notifications_failed_total",
			Help: "Templated messages that failed to send, by kind.",
		}, []string{"kind"}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "slotmatch_slack_alerts_sent_total",
			Help: "The total number of admin alerts successfully posted to Slack.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "slotmatch_slack_alerts_failed_total",
			Help: "The total number of admin alerts that failed to post to Slack.",
		}),
		EventsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "slotmatch_workflow_events_published_total",
			Help: "Workflow events published, by type.",
		}, []string{"type"}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "slotmatch_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.WorkflowOperations,
		s.OperationDuration,
		s.NotificationsSent,
		s.NotificationsFail,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.EventsPublished,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncWorkflowOperation(operation, result string) {
	s.WorkflowOperations.WithLabelValues(operation, result).Inc()
}

func (s *Service) ObserveOperationDuration(operation string, seconds float64) {
	s.OperationDuration.WithLabelValues(operation).Observe(seconds)
}

func (s *Service) IncNotificationSent(kind string) {
	s.NotificationsSent.WithLabelValues(kind).Inc()
}

func (s *Service) IncNotificationFailed(kind string) {
	s.NotificationsFail.WithLabelValues(kind).Inc()
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) IncEventsPublished(eventType string) {
	s.EventsPublished.WithLabelValues(eventType).Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
