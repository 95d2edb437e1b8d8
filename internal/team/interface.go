package team

import "context"

// TeamStore persists teams and their members.
type TeamStore interface {
	// Create inserts the team and its members. A second host for the same slot
	// fails with ErrHostExists.
	Create(ctx context.Context, t *Team) error
	Get(ctx context.Context, id string) (*Team, error)
	ListByDate(ctx context.Context, date string) ([]Team, error)
	ListBySlot(ctx context.Context, date, time string) ([]Team, error)
	Update(ctx context.Context, id string, u Update) (*Team, error)
	UpdateMany(ctx context.Context, ids []string, u Update) ([]Team, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) (int64, error)
	DeleteSlot(ctx context.Context, date, time string) (int64, error)
}
