package alimtalk

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/slot-matcher/internal/metrics"
	"github.com/mauv0809/slot-matcher/internal/notifier"
	"github.com/mauv0809/slot-matcher/internal/settings"
	"github.com/mauv0809/slot-matcher/internal/solapi"
)

var _ notifier.Notifier = (*Notifier)(nil)

// Notifier resolves a notification kind to its template id and delivers it through the
// messaging gateway. Template ids are read per send so admin overrides apply at once.
type Notifier struct {
	sender   solapi.Sender
	settings settings.Provider
	metrics  metrics.Metrics
}

func New(sender solapi.Sender, provider settings.Provider, metrics metrics.Metrics) *Notifier {
	return &Notifier{sender: sender, settings: provider, metrics: metrics}
}

func (n *Notifier) Notify(ctx context.Context, note notifier.Notification) error {
	kind := string(note.Kind)
	if err := n.notify(ctx, note); err != nil {
		n.metrics.IncNotificationFailed(kind)
		log.Error("Failed to send notification", "kind", kind, "to", note.To, "error", err)
		return err
	}
	n.metrics.IncNotificationSent(kind)
	return nil
}

func (n *Notifier) notify(ctx context.Context, note notifier.Notification) error {
	cfg, err := n.settings.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	templateID, ok := cfg.Templates.ByKey()[string(note.Kind)]
	if !ok || templateID == "" {
		return fmt.Errorf("no template configured for %s", note.Kind)
	}

	res, err := n.sender.Send(ctx, solapi.Message{
		To:          note.To,
		TemplateID:  templateID,
		Variables:   note.Variables,
		ScheduledAt: note.ScheduledAt,
	})
	if err != nil {
		return fmt.Errorf("failed to send %s: %w", note.Kind, err)
	}
	if !res.Success {
		return fmt.Errorf("failed to send %s: %s", note.Kind, res.Message)
	}
	log.Debug("Notification delivered", "kind", note.Kind, "templateId", templateID, "testMode", res.TestMode, "groupId", res.GroupID)
	return nil
}
