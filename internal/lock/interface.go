package lock

import (
	"context"
	"errors"
	"time"
)

// ErrLocked is returned when another holder owns the key.
var ErrLocked = errors.New("resource is locked")

// Release gives the lock back. It is safe to call after the lock expired.
type Release func(ctx context.Context) error

// Locker hands out exclusive, expiring locks keyed by string.
type Locker interface {
	// TryAcquire never waits: it fails with ErrLocked when the key is held.
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (Release, error)
}
