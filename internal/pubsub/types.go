package pubsub

import (
	"sync"

	"cloud.google.com/go/pubsub"
	"github.com/mauv0809/slot-matcher/internal/metrics"
)

type client struct {
	client   *pubsub.Client
	metrics  metrics.Metrics
	teardown func()
}

// InlineClient delivers messages to in-process handlers instead of a broker.
type InlineClient struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	metrics  metrics.Metrics
}

// EventType represents the type of event/message sent via pubsub. It doubles as the topic.
type EventType string

const (
	EventWorkflowCompleted EventType = "workflow-events"
)
