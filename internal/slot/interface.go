package slot

import "context"

// ConfigStore persists one DailyConfig row per date.
type ConfigStore interface {
	// Get returns nil without error when the date has no config yet.
	Get(ctx context.Context, date string) (*DailyConfig, error)
	Upsert(ctx context.Context, cfg DailyConfig) (*DailyConfig, error)
}
