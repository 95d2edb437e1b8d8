package auth

import "context"

// Authenticator checks the admin password and issues and verifies session tokens.
type Authenticator interface {
	Login(ctx context.Context, password string) (*Token, error)
	Verify(token string) (*Claims, error)
}
