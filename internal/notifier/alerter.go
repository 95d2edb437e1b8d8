package notifier

import (
	"context"

	"github.com/mauv0809/slot-matcher/internal/slot"
)

// Alert is a workflow outcome the admin should look at.
type Alert struct {
	Operation string   `json:"operation"`
	Date      string   `json:"date"`
	Time      string   `json:"time"`
	Message   string   `json:"message"`
	Warnings  []string `json:"warnings,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Alerter reaches the admins, as opposed to Notifier which reaches the teams.
type Alerter interface {
	SendAlert(ctx context.Context, alert Alert) error
	SendSlotBoard(ctx context.Context, date string, slots []slot.Slot) error

	// For formatting responses for slash commands
	FormatSlotBoardResponse(date string, slots []slot.Slot) (any, error)
}
