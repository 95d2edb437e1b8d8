package audit

import "context"

// EventStore persists workflow events.
type EventStore interface {
	Append(ctx context.Context, e WorkflowEvent) error
	// List returns the newest events first; an empty date lists every date.
	List(ctx context.Context, date string, limit int) ([]WorkflowEvent, error)
}
