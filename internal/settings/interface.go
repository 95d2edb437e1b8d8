package settings

import "context"

// SettingsStore is the admin_settings key/value table.
type SettingsStore interface {
	All(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

// Provider hands out the effective SystemConfig.
type Provider interface {
	Load(ctx context.Context) (SystemConfig, error)
}
