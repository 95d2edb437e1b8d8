package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrInvalidCredentials = errors.New("invalid admin password")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNotConfigured      = errors.New("admin password is not configured")
)

const (
	issuer       = "slot-matcher"
	adminSubject = "admin"
)

// Claims are carried in admin session tokens.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Token is a signed session token handed out at login.
type Token struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
