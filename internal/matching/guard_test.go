package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mauv0809/slot-matcher/internal/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_RejectsConcurrentRun(t *testing.T) {
	g := NewGuard(lock.NewMemory(), time.Minute)

	entered := make(chan struct{})
	proceed := make(chan struct{})
	done := make(chan error)
	go func() {
		done <- g.Run(context.Background(), "2025-06-01", "19:00", OpFirstMatch, func(ctx context.Context) error {
			close(entered)
			<-proceed
			return nil
		})
	}()
	<-entered

	assert.Equal(t, StateInFlight, g.State("2025-06-01", "19:00").State)
	err := g.Run(context.Background(), "2025-06-01", "19:00", OpNextStep, func(ctx context.Context) error {
		t.Fatal("second run must not start")
		return nil
	})
	assert.ErrorIs(t, err, ErrInFlight)

	require.NoError(t, g.Run(context.Background(), "2025-06-01", "20:00", OpNextStep, func(ctx context.Context) error { return nil }),
		"other slots are independent")

	close(proceed)
	require.NoError(t, <-done)
	assert.Equal(t, StateIdle, g.State("2025-06-01", "19:00").State)
}

func TestGuard_ReleasesAfterError(t *testing.T) {
	g := NewGuard(lock.NewMemory(), time.Minute)
	boom := errors.New("boom")

	err := g.Run(context.Background(), "2025-06-01", "19:00", OpFinalMatch, func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)

	st := g.State("2025-06-01", "19:00")
	assert.Equal(t, StateError, st.State)
	assert.Equal(t, OpFinalMatch, st.Operation)
	assert.Equal(t, "boom", st.Error)

	require.NoError(t, g.Run(context.Background(), "2025-06-01", "19:00", OpFinalMatch, func(ctx context.Context) error { return nil }))
}

func TestGuard_UntouchedSlotIsIdle(t *testing.T) {
	g := NewGuard(lock.NewMemory(), time.Minute)
	assert.Equal(t, SlotState{State: StateIdle}, g.State("2025-06-01", "21:00"))
}
