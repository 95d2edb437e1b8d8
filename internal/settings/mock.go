package settings

import (
	"context"
	"sync"
)

var _ Provider = (*MockProvider)(nil)

// MockProvider returns a fixed SystemConfig. It is safe for concurrent use.
type MockProvider struct {
	mu sync.Mutex

	Config   SystemConfig
	LoadFunc func(ctx context.Context) (SystemConfig, error)

	LoadCalls int
}

func NewMock(cfg SystemConfig) *MockProvider {
	return &MockProvider{Config: cfg}
}

func (m *MockProvider) Load(ctx context.Context) (SystemConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCalls++
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return m.Config, nil
}
