package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

var _ Locker = (*Memory)(nil)

type entry struct {
	token   string
	expires time.Time
}

// Memory is a process-local Locker.
type Memory struct {
	mu   sync.Mutex
	held map[string]entry
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{held: make(map[string]entry), now: time.Now}
}

func (m *Memory) TryAcquire(ctx context.Context, key string, ttl time.Duration) (Release, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.held[key]; ok && now.Before(e.expires) {
		return nil, ErrLocked
	}
	token := uuid.NewString()
	m.held[key] = entry{token: token, expires: now.Add(ttl)}

	return func(context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if e, ok := m.held[key]; ok && e.token == token {
			delete(m.held, key)
		}
		return nil
	}, nil
}
