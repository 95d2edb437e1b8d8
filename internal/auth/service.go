package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/mauv0809/slot-matcher/internal/settings"
	"golang.org/x/crypto/bcrypt"
)

var _ Authenticator = (*Service)(nil)

// Service reads the password hash from settings on every login, so a rotated hash
// applies without a restart.
type Service struct {
	settings settings.Provider
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

func NewService(provider settings.Provider, secret string, ttl time.Duration) *Service {
	return &Service{
		settings: provider,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Login(ctx context.Context, password string) (*Token, error) {
	cfg, err := s.settings.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if cfg.AdminPasswordHash == "" {
		return nil, ErrNotConfigured
	}
	if err := bcrypt.CompareHashAndPassword([]byte(cfg.AdminPasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			log.Warn("Admin login rejected")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to check password: %w", err)
	}
	return s.issue()
}

func (s *Service) issue() (*Token, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := Claims{
		Role: adminSubject,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   adminSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &Token{Token: signed, ExpiresAt: expires}, nil
}

func (s *Service) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !claims.VerifyExpiresAt(s.now(), true) {
		return nil, fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	if claims.Subject != adminSubject || !claims.VerifyIssuer(issuer, true) {
		return nil, fmt.Errorf("%w: unexpected subject", ErrInvalidToken)
	}
	return claims, nil
}
