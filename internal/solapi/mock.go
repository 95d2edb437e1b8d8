package solapi

import (
	"context"
	"sync"
)

var _ Sender = (*Mock)(nil)

// Mock is a mock implementation of the Sender interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	SendFunc  func(ctx context.Context, msg Message) (*Result, error)
	SendCalls []Message
}

func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Send(ctx context.Context, msg Message) (*Result, error) {
	m.mu.Lock()
	m.SendCalls = append(m.SendCalls, msg)
	fn := m.SendFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, msg)
	}
	return &Result{Success: true, Message: "발송 성공"}, nil
}
