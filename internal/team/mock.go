package team

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

var _ TeamStore = (*MockStore)(nil)

// MockStore is a mock implementation of the TeamStore interface for testing.
// Unset funcs fall back to an in-memory slice so workflow tests can assert on the
// resulting state. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	Teams []Team

	CreateFunc     func(ctx context.Context, t *Team) error
	GetFunc        func(ctx context.Context, id string) (*Team, error)
	UpdateManyFunc func(ctx context.Context, ids []string, u Update) ([]Team, error)
	DeleteManyFunc func(ctx context.Context, ids []string) (int64, error)
	DeleteSlotFunc func(ctx context.Context, date, time string) (int64, error)

	CreateCalls     []*Team
	UpdateManyCalls []UpdateManyCall
	DeleteManyCalls [][]string
	DeleteSlotCalls []SlotCall
}

type UpdateManyCall struct {
	IDs    []string
	Update Update
}

type SlotCall struct {
	Date string
	Time string
}

// NewMock creates a new mock store seeded with teams.
func NewMock(teams ...Team) *MockStore {
	return &MockStore{Teams: teams}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = nil
	m.UpdateManyCalls = nil
	m.DeleteManyCalls = nil
	m.DeleteSlotCalls = nil
}

// Find returns the current in-memory copy of a team.
func (m *MockStore) Find(id string) (Team, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

func (m *MockStore) Create(ctx context.Context, t *Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, t)
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, t)
	}
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Role == RoleHost {
		for _, existing := range m.Teams {
			if existing.Date == t.Date && existing.Time == t.Time && existing.Role == RoleHost {
				return ErrHostExists
			}
		}
	}
	m.Teams = append(m.Teams, *t)
	return nil
}

func (m *MockStore) Get(ctx context.Context, id string) (*Team, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, id)
	}
	t, ok := m.Find(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &t, nil
}

func (m *MockStore) ListByDate(ctx context.Context, date string) ([]Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Team{}
	for _, t := range m.Teams {
		if t.Date == date {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MockStore) ListBySlot(ctx context.Context, date, time string) ([]Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Team{}
	for _, t := range m.Teams {
		if t.Date == date && t.Time == time {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *MockStore) Update(ctx context.Context, id string, u Update) (*Team, error) {
	teams, err := m.UpdateMany(ctx, []string{id}, u)
	if err != nil {
		return nil, err
	}
	if len(teams) == 0 {
		return nil, ErrNotFound
	}
	return &teams[0], nil
}

func (m *MockStore) UpdateMany(ctx context.Context, ids []string, u Update) ([]Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateManyCalls = append(m.UpdateManyCalls, UpdateManyCall{IDs: ids, Update: u})
	if m.UpdateManyFunc != nil {
		return m.UpdateManyFunc(ctx, ids, u)
	}
	if _, _, err := u.assignments(); err != nil {
		return nil, err
	}
	var out []Team
	for i, t := range m.Teams {
		if contains(ids, t.ID) {
			m.Teams[i] = u.Apply(t)
			out = append(out, m.Teams[i])
		}
	}
	return out, nil
}

func (m *MockStore) Delete(ctx context.Context, id string) error {
	n, err := m.DeleteMany(ctx, []string{id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MockStore) DeleteMany(ctx context.Context, ids []string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteManyCalls = append(m.DeleteManyCalls, ids)
	if m.DeleteManyFunc != nil {
		return m.DeleteManyFunc(ctx, ids)
	}
	var kept []Team
	var n int64
	for _, t := range m.Teams {
		if contains(ids, t.ID) {
			n++
			continue
		}
		kept = append(kept, t)
	}
	m.Teams = kept
	return n, nil
}

func (m *MockStore) DeleteSlot(ctx context.Context, date, time string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeleteSlotCalls = append(m.DeleteSlotCalls, SlotCall{Date: date, Time: time})
	if m.DeleteSlotFunc != nil {
		return m.DeleteSlotFunc(ctx, date, time)
	}
	var kept []Team
	var n int64
	for _, t := range m.Teams {
		if t.Date == date && t.Time == time {
			n++
			continue
		}
		kept = append(kept, t)
	}
	m.Teams = kept
	return n, nil
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
