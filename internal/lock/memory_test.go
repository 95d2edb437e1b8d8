package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_ExclusiveUntilReleased(t *testing.T) {
	m := NewMemory()

	release, err := m.TryAcquire(context.Background(), "2025-06-01 19:00", time.Minute)
	require.NoError(t, err)

	_, err = m.TryAcquire(context.Background(), "2025-06-01 19:00", time.Minute)
	assert.ErrorIs(t, err, ErrLocked)

	other, err := m.TryAcquire(context.Background(), "2025-06-01 20:00", time.Minute)
	require.NoError(t, err, "other keys are independent")
	require.NoError(t, other(context.Background()))

	require.NoError(t, release(context.Background()))
	again, err := m.TryAcquire(context.Background(), "2025-06-01 19:00", time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(context.Background()))
}

func TestMemory_ExpiredLockCanBeTaken(t *testing.T) {
	m := NewMemory()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	stale, err := m.TryAcquire(context.Background(), "k", time.Second)
	require.NoError(t, err)

	now = now.Add(2 * time.Second)
	fresh, err := m.TryAcquire(context.Background(), "k", time.Second)
	require.NoError(t, err)

	// The stale holder must not free the new holder's lock.
	require.NoError(t, stale(context.Background()))
	_, err = m.TryAcquire(context.Background(), "k", time.Second)
	assert.ErrorIs(t, err, ErrLocked)
	require.NoError(t, fresh(context.Background()))
}

func TestMemory_ConcurrentAcquireHasOneWinner(t *testing.T) {
	m := NewMemory()
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := m.TryAcquire(context.Background(), "k", time.Minute); err == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins.Load())
}
