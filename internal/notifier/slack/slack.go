package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/slot-matcher/internal/metrics"
	"github.com/mauv0809/slot-matcher/internal/notifier"
	"github.com/mauv0809/slot-matcher/internal/slot"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client that we use.
// This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Alerter = &Notifier{}

// Notifier posts admin alerts and slot boards to a Slack channel.
// Without an API client every message is only logged.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier. An empty token yields a log-only notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	var api slackClient
	if token != "" {
		api = slack.New(token)
	}
	return NewNotifierWithAPI(api, channelID, metrics)
}

// NewNotifierWithAPI creates a new Notifier with a specific slack.Client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(ctx context.Context, message slack.Message, dryRun bool) (string, string, error) {
	if dryRun || s.api == nil {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", "dry-run-thread-ts", nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)

	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", s.channelID)
		return "", "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return channelID, timestamp, nil
}

func (s *Notifier) SendAlert(ctx context.Context, alert notifier.Alert) error {
	_, _, err := s.sendMessage(ctx, s.formatAlert(alert), false)
	return err
}

func (s *Notifier) SendSlotBoard(ctx context.Context, date string, slots []slot.Slot) error {
	_, _, err := s.sendMessage(ctx, s.formatSlotBoard(date, slots), false)
	return err
}

// FormatSlotBoardResponse formats the slot board for a slash command response.
func (s *Notifier) FormatSlotBoardResponse(date string, slots []slot.Slot) (any, error) {
	return s.formatSlotBoard(date, slots), nil
}

// formatAlert creates the Slack message for a workflow outcome that needs attention.
func (s *Notifier) formatAlert(alert notifier.Alert) slack.Message {
	blocks := make([]slack.Block, 0)

	title := "⚠️ 처리 중 경고가 있습니다"
	if alert.Error != "" {
		title = "🚨 처리 실패"
	}
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", title, true, false)))

	details := fmt.Sprintf("*%s* · %s %s", alert.Operation, alert.Date, alert.Time)
	if alert.Message != "" {
		details += "\n" + alert.Message
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", details, false, false), nil, nil))

	if len(alert.Warnings) > 0 {
		lines := make([]string, len(alert.Warnings))
		for i, w := range alert.Warnings {
			lines[i] = "• " + w
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), false, false), nil, nil))
	}

	if alert.Error != "" {
		blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", alert.Error, false, false)))
	}

	return slack.NewBlockMessage(blocks...)
}

var statusEmoji = map[slot.AdminStatus]string{
	slot.AdminEmpty:          "⚪",
	slot.AdminHostOnly:       "🟡",
	slot.AdminPending:        "🟠",
	slot.AdminFirstConfirmed: "🔵",
	slot.AdminMatchConfirmed: "🟢",
}

// formatSlotBoard lists every slot of a date with its admin status and applicants.
func (s *Notifier) formatSlotBoard(date string, slots []slot.Slot) slack.Message {
	blocks := make([]slack.Block, 0)

	headerText := fmt.Sprintf("📅 %s 슬롯 현황", notifier.FormatDate(date))
	blocks = append(blocks, slack.NewHeaderBlock(slack.NewTextBlockObject("plain_text", headerText, true, false)))

	if len(slots) == 0 {
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", "No slots for this date.", true, false), nil, nil))
		return slack.NewBlockMessage(blocks...)
	}

	for _, sl := range slots {
		var b strings.Builder
		fmt.Fprintf(&b, "%s *%s* %s", statusEmoji[sl.Status], sl.Time, sl.Status)
		if !sl.IsOpen {
			b.WriteString(" (closed)")
		}
		if sl.Host != nil {
			room := "비공개방"
			if sl.IsPublicRoom {
				room = "공개방"
			}
			fmt.Fprintf(&b, "\n> 호스트: %s (%d명, %s)", notifier.DisplayID(*sl.Host), sl.Host.Headcount(), room)
		}
		fmt.Fprintf(&b, "\n> 게스트: %d/%d", len(sl.ActiveGuests()), sl.MaxApplicants)
		for _, g := range sl.ActiveGuests() {
			fmt.Fprintf(&b, "\n> • %s %s", notifier.DisplayID(g), g.Status)
		}
		blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("mrkdwn", b.String(), false, false), nil, nil))
	}

	return slack.NewBlockMessage(blocks...)
}
