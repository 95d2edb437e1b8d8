package matching

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/slot-matcher/internal/lock"
	"github.com/mauv0809/slot-matcher/internal/slot"
)

// Guard serializes operations per slot and remembers how the last one ended.
type Guard struct {
	locker lock.Locker
	ttl    time.Duration
	now    func() time.Time

	mu     sync.Mutex
	states map[string]SlotState
}

func NewGuard(locker lock.Locker, ttl time.Duration) *Guard {
	return &Guard{
		locker: locker,
		ttl:    ttl,
		now:    time.Now,
		states: make(map[string]SlotState),
	}
}

// Run executes fn while holding the slot lock. A second caller for the same slot
// gets ErrInFlight instead of waiting. The lock is released whatever fn returns.
func (g *Guard) Run(ctx context.Context, date, clock, operation string, fn func(ctx context.Context) error) error {
	key := slot.Key(date, clock)
	release, err := g.locker.TryAcquire(ctx, "slot:"+key, g.ttl)
	if errors.Is(err, lock.ErrLocked) {
		return fmt.Errorf("%w: %s", ErrInFlight, key)
	}
	if err != nil {
		return fmt.Errorf("failed to acquire slot lock: %w", err)
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			log.Warn("Failed to release slot lock", "slot", key, "error", err)
		}
	}()

	g.set(key, SlotState{State: StateInFlight, Operation: operation})
	err = fn(ctx)
	if err != nil {
		g.set(key, SlotState{State: StateError, Operation: operation, Error: err.Error()})
		return err
	}
	g.set(key, SlotState{State: StateIdle, Operation: operation})
	return nil
}

// State returns the request state of a slot; slots never touched are idle.
func (g *Guard) State(date, clock string) SlotState {
	g.mu.Lock()
	defer g.mu.Unlock()
	st, ok := g.states[slot.Key(date, clock)]
	if !ok {
		return SlotState{State: StateIdle}
	}
	return st
}

func (g *Guard) set(key string, st SlotState) {
	st.UpdatedAt = g.now()
	g.mu.Lock()
	g.states[key] = st
	g.mu.Unlock()
}
