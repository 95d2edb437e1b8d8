package audit

import (
	"context"
	"sync"
)

var _ EventStore = (*MockStore)(nil)

// MockStore keeps events in memory. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	AppendFunc func(ctx context.Context, e WorkflowEvent) error
	Events     []WorkflowEvent
}

func NewMockStore() *MockStore {
	return &MockStore{}
}

func (m *MockStore) Append(ctx context.Context, e WorkflowEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AppendFunc != nil {
		if err := m.AppendFunc(ctx, e); err != nil {
			return err
		}
	}
	m.Events = append(m.Events, e)
	return nil
}

func (m *MockStore) List(ctx context.Context, date string, limit int) ([]WorkflowEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []WorkflowEvent{}
	for i := len(m.Events) - 1; i >= 0; i-- {
		if date == "" || m.Events[i].Date == date {
			out = append(out, m.Events[i])
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
