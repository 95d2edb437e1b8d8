package auth

import (
	"context"
	"sync"
	"time"
)

var _ Authenticator = (*Mock)(nil)

// Mock accepts ValidToken and rejects everything else unless the funcs are set.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	ValidToken string
	LoginFunc  func(ctx context.Context, password string) (*Token, error)
	VerifyFunc func(token string) (*Claims, error)

	LoginCalls  []string
	VerifyCalls []string
}

func NewMock(validToken string) *Mock {
	return &Mock{ValidToken: validToken}
}

func (m *Mock) Login(ctx context.Context, password string) (*Token, error) {
	m.mu.Lock()
	m.LoginCalls = append(m.LoginCalls, password)
	fn := m.LoginFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(ctx, password)
	}
	return &Token{Token: m.ValidToken, ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (m *Mock) Verify(token string) (*Claims, error) {
	m.mu.Lock()
	m.VerifyCalls = append(m.VerifyCalls, token)
	fn := m.VerifyFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(token)
	}
	if token == "" || token != m.ValidToken {
		return nil, ErrInvalidToken
	}
	return &Claims{Role: adminSubject}, nil
}
