package slot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"
)

var _ ConfigStore = (*store)(nil)

type store struct {
	db  *sql.DB
	mu  sync.RWMutex
	now func() time.Time
}

// NewStore creates a DailyConfig store.
func NewStore(db *sql.DB) ConfigStore {
	return &store{db: db, now: time.Now}
}

func (s *store) Get(ctx context.Context, date string) (*DailyConfig, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		cfg              DailyConfig
		openRaw, slotRaw string
		updated          int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT date, open_times, max_applicants, slot_configs, updated_at FROM daily_config WHERE date = ?`,
		date).Scan(&cfg.Date, &openRaw, &cfg.MaxApplicants, &slotRaw, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily config: %w", err)
	}
	if err := json.Unmarshal([]byte(openRaw), &cfg.OpenTimes); err != nil {
		return nil, fmt.Errorf("failed to decode open times for %s: %w", date, err)
	}
	if err := json.Unmarshal([]byte(slotRaw), &cfg.SlotConfigs); err != nil {
		return nil, fmt.Errorf("failed to decode slot configs for %s: %w", date, err)
	}
	if cfg.OpenTimes == nil {
		cfg.OpenTimes = []string{}
	}
	if cfg.SlotConfigs == nil {
		cfg.SlotConfigs = map[string]SlotConfig{}
	}
	cfg.UpdatedAt = time.UnixMilli(updated)
	return &cfg, nil
}

func (s *store) Upsert(ctx context.Context, cfg DailyConfig) (*DailyConfig, error) {
	if err := ValidateDate(cfg.Date); err != nil {
		return nil, err
	}
	if cfg.OpenTimes == nil {
		cfg.OpenTimes = []string{}
	}
	if cfg.SlotConfigs == nil {
		cfg.SlotConfigs = map[string]SlotConfig{}
	}
	openRaw, err := json.Marshal(cfg.OpenTimes)
	if err != nil {
		return nil, fmt.Errorf("failed to encode open times: %w", err)
	}
	slotRaw, err := json.Marshal(cfg.SlotConfigs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode slot configs: %w", err)
	}
	cfg.UpdatedAt = s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO daily_config (date, open_times, max_applicants, slot_configs, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			open_times = excluded.open_times,
			max_applicants = excluded.max_applicants,
			slot_configs = excluded.slot_configs,
			updated_at = excluded.updated_at`,
		cfg.Date, string(openRaw), cfg.MaxApplicants, string(slotRaw), cfg.UpdatedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("failed to upsert daily config: %w", err)
	}
	return &cfg, nil
}
