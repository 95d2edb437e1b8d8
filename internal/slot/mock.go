package slot

import (
	"context"
	"sync"
)

var _ ConfigStore = (*MockConfigStore)(nil)

// MockConfigStore keeps configs in a map. It is safe for concurrent use.
type MockConfigStore struct {
	mu sync.Mutex

	Configs map[string]DailyConfig

	GetFunc    func(ctx context.Context, date string) (*DailyConfig, error)
	UpsertFunc func(ctx context.Context, cfg DailyConfig) (*DailyConfig, error)

	UpsertCalls []DailyConfig
}

func NewMockConfigStore(configs ...DailyConfig) *MockConfigStore {
	m := &MockConfigStore{Configs: make(map[string]DailyConfig)}
	for _, c := range configs {
		m.Configs[c.Date] = c
	}
	return m
}

func (m *MockConfigStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls = nil
}

func (m *MockConfigStore) Get(ctx context.Context, date string) (*DailyConfig, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, date)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cfg, ok := m.Configs[date]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (m *MockConfigStore) Upsert(ctx context.Context, cfg DailyConfig) (*DailyConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertCalls = append(m.UpsertCalls, cfg)
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, cfg)
	}
	m.Configs[cfg.Date] = cfg
	return &cfg, nil
}
