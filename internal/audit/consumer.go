package audit

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/slot-matcher/internal/metrics"
	"github.com/mauv0809/slot-matcher/internal/notifier"
	"github.com/mauv0809/slot-matcher/internal/pubsub"
)

// Consumer turns published workflow events into the audit log, persisted counters and
// admin alerts.
type Consumer struct {
	store    EventStore
	counters metrics.MetricsStore
	alerter  notifier.Alerter
	pubsub   pubsub.PubSubClient
}

func NewConsumer(store EventStore, counters metrics.MetricsStore, alerter notifier.Alerter, pubsubClient pubsub.PubSubClient) *Consumer {
	return &Consumer{store: store, counters: counters, alerter: alerter, pubsub: pubsubClient}
}

// HandleMessage decodes a msgpack payload and handles it. It fits pubsub.Handler.
func (c *Consumer) HandleMessage(ctx context.Context, data []byte) error {
	var e WorkflowEvent
	if err := c.pubsub.ProcessMessage(data, &e); err != nil {
		return fmt.Errorf("failed to decode workflow event: %w", err)
	}
	return c.Handle(ctx, e)
}

// Handle stores the event, counts it, and alerts the admins when it carries warnings or
// an error. An alert failure is logged but does not fail the event.
func (c *Consumer) Handle(ctx context.Context, e WorkflowEvent) error {
	if err := c.store.Append(ctx, e); err != nil {
		return err
	}

	result := "success"
	if e.Error != "" {
		result = "error"
	}
	c.counters.Increment("workflow_" + e.Type + "_" + result)
	if len(e.Warnings) > 0 {
		c.counters.Increment("workflow_warnings")
	}

	if !e.NeedsAttention() {
		return nil
	}
	err := c.alerter.SendAlert(ctx, notifier.Alert{
		Operation: e.Type,
		Date:      e.Date,
		Time:      e.Time,
		Message:   e.Message,
		Warnings:  e.Warnings,
		Error:     e.Error,
	})
	if err != nil {
		log.Error("Failed to alert admins", "event", e.ID, "type", e.Type, "error", err)
	}
	return nil
}
