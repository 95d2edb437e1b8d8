package metrics

// Metrics defines the interface for collecting application metrics.
// This decouples the application from the specific metrics implementation (e.g., Prometheus).
type Metrics interface {
	IncWorkflowOperation(operation, result string)
	ObserveOperationDuration(operation string, seconds float64)
	IncNotificationSent(kind string)
	IncNotificationFailed(kind string)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	IncEventsPublished(eventType string)
	SetStartupTime(duration float64)
}

// MetricsStore keeps lifetime counters in the database so they survive restarts.
type MetricsStore interface {
	Increment(key string)
	Get(key string) (int, error)
	GetAll() (map[string]int, error)
}
