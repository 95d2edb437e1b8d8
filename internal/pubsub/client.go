package pubsub

import (
	"context"
	"fmt"

	"cloud.google.com/go/pubsub"
	"github.com/charmbracelet/log"
	"github.com/mauv0809/slot-matcher/internal/metrics"
	"github.com/vmihailenco/msgpack/v5"
)

// New connects to Google Cloud Pub/Sub for projectID.
func New(ctx context.Context, projectID string, metrics metrics.Metrics) (PubSubClient, error) {
	pubSubC, err := pubsub.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %w", err)
	}
	teardown := func() {
		pubSubC.Close()
	}

	return &client{
		client:   pubSubC,
		metrics:  metrics,
		teardown: teardown,
	}, nil
}

func (c *client) SendMessage(ctx context.Context, topic EventType, data any) error {
	msgpackData, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return err
	}
	message := &pubsub.Message{
		Data: msgpackData,
	}
	result := c.client.Topic(string(topic)).Publish(ctx, message)
	serverID, err := result.Get(ctx)
	if err != nil {
		log.Error("Failed to publish message", "error", err, "topic", topic)
		return err
	}
	c.metrics.IncEventsPublished(string(topic))
	log.Info("SendMessage", "serverID", serverID, "topic", topic)
	return nil
}

func (c *client) ProcessMessage(data []byte, returnValue any) error {
	return decode(data, returnValue)
}

func (c *client) Close() {
	c.teardown()
}

// NewInline creates a client that hands every message straight to the subscribed handlers.
func NewInline(metrics metrics.Metrics) *InlineClient {
	return &InlineClient{handlers: make(map[EventType][]Handler), metrics: metrics}
}

// Subscribe registers h for topic.
func (c *InlineClient) Subscribe(topic EventType, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[topic] = append(c.handlers[topic], h)
}

func (c *InlineClient) SendMessage(ctx context.Context, topic EventType, data any) error {
	msgpackData, err := msgpack.Marshal(data)
	if err != nil {
		log.Error("MessagePack marshal error", "error", err)
		return err
	}

	c.mu.RLock()
	handlers := c.handlers[topic]
	c.mu.RUnlock()

	var firstErr error
	for _, h := range handlers {
		if err := h(ctx, msgpackData); err != nil {
			log.Error("Inline handler failed", "error", err, "topic", topic)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	c.metrics.IncEventsPublished(string(topic))
	return firstErr
}

func (c *InlineClient) ProcessMessage(data []byte, returnValue any) error {
	return decode(data, returnValue)
}

func (c *InlineClient) Close() {}

func decode(data []byte, returnValue any) error {
	// Unmarshal the MessagePack data into the provided pointer struct
	err := msgpack.Unmarshal(data, returnValue)
	if err != nil {
		log.Error("MessagePack unmarshal error", "error", err)
		return err
	}
	return nil
}
