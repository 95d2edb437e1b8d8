package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/mauv0809/slot-matcher/internal/settings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "0123456789abcdef"

func newTestService(t *testing.T, password string) *Service {
	t.Helper()
	cfg := settings.SystemConfig{}
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		cfg.AdminPasswordHash = string(hash)
	}
	return NewService(settings.NewMock(cfg), testSecret, 12*time.Hour)
}

func TestLoginAndVerify(t *testing.T) {
	s := newTestService(t, "secret")

	tok, err := s.Login(context.Background(), "secret")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Token)

	claims, err := s.Verify(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, "admin", claims.Role)
	assert.WithinDuration(t, tok.ExpiresAt, claims.ExpiresAt.Time, time.Second)
}

func TestLogin_Rejects(t *testing.T) {
	t.Run("wrong password", func(t *testing.T) {
		_, err := newTestService(t, "secret").Login(context.Background(), "guess")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
	t.Run("no password configured", func(t *testing.T) {
		_, err := newTestService(t, "").Login(context.Background(), "anything")
		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}

func TestVerify_Rejects(t *testing.T) {
	s := newTestService(t, "secret")
	tok, err := s.Login(context.Background(), "secret")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		later := NewService(settings.NewMock(settings.SystemConfig{}), testSecret, time.Hour).
			WithClock(func() time.Time { return time.Now().Add(13 * time.Hour) })
		_, err := later.Verify(tok.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("other secret", func(t *testing.T) {
		other := NewService(settings.NewMock(settings.SystemConfig{}), "fedcba9876543210", time.Hour)
		_, err := other.Verify(tok.Token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("none algorithm", func(t *testing.T) {
		unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Role: "admin"}).
			SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)
		_, err = s.Verify(unsigned)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
