package matching

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/slot-matcher/internal/audit"
	"github.com/mauv0809/slot-matcher/internal/notifier"
	"github.com/mauv0809/slot-matcher/internal/pubsub"
	"github.com/mauv0809/slot-matcher/internal/slot"
	"github.com/mauv0809/slot-matcher/internal/team"
	"github.com/mauv0809/slot-matcher/internal/validation"
)

var _ Workflow = (*Controller)(nil)

func New(d Deps) *Controller {
	return &Controller{
		teams:    d.Teams,
		slots:    d.Slots,
		settings: d.Settings,
		notifier: d.Notifier,
		pubsub:   d.PubSub,
		metrics:  d.Metrics,
		guard:    NewGuard(d.Locker, lockTTL),
		now:      time.Now,
	}
}

// WithClock replaces the clock used for reminder scheduling and refund windows.
func (c *Controller) WithClock(now func() time.Time) *Controller {
	c.now = now
	c.guard.now = now
	return c
}

func (c *Controller) RequestState(date, clock string) SlotState {
	return c.guard.State(date, clock)
}

// op is the body of an operation, run under the slot lock against a fresh slot.
type op func(ctx context.Context, sl *slot.Slot, out *Outcome) error

// run validates req, then re-reads the slot and runs fn under its lock. Every
// finished run is counted and published as a workflow event.
func (c *Controller) run(ctx context.Context, name, date, clock string, req any, fn op) (*Outcome, error) {
	start := time.Now()
	if err := validation.Struct(ctx, req); err != nil {
		c.metrics.IncWorkflowOperation(name, "invalid")
		return nil, err
	}

	out := &Outcome{}
	var teamIDs []string
	err := c.guard.Run(ctx, date, clock, name, func(ctx context.Context) error {
		sl, err := c.slots.Slot(ctx, date, clock)
		if err != nil {
			return fmt.Errorf("failed to load slot: %w", err)
		}
		for _, t := range sl.Teams() {
			teamIDs = append(teamIDs, t.ID)
		}
		return fn(ctx, sl, out)
	})
	c.metrics.ObserveOperationDuration(name, time.Since(start).Seconds())

	if errors.Is(err, ErrInFlight) {
		c.metrics.IncWorkflowOperation(name, "in_flight")
		return nil, err
	}

	ev := audit.WorkflowEvent{
		ID:        uuid.NewString(),
		Type:      name,
		Date:      date,
		Time:      clock,
		TeamIDs:   teamIDs,
		Message:   out.Message,
		Warnings:  out.Warnings,
		CreatedAt: c.now(),
	}
	if err != nil {
		ev.Error = err.Error()
		c.metrics.IncWorkflowOperation(name, "error")
		log.Error("Workflow operation failed", "operation", name, "slot", slot.Key(date, clock), "error", err)
	} else {
		c.metrics.IncWorkflowOperation(name, "success")
		log.Info("Workflow operation completed", "operation", name, "slot", slot.Key(date, clock), "warnings", len(out.Warnings))
	}
	c.publish(ctx, ev)

	if err != nil {
		return nil, err
	}
	return out, nil
}

// runForTeam looks up the team's slot first so the lock covers the right slot.
func (c *Controller) runForTeam(ctx context.Context, name, teamID string, req any, fn func(ctx context.Context, sl *slot.Slot, t *team.Team, out *Outcome) error) (*Outcome, error) {
	if err := validation.Struct(ctx, req); err != nil {
		c.metrics.IncWorkflowOperation(name, "invalid")
		return nil, err
	}
	t, err := c.teams.Get(ctx, teamID)
	if err != nil {
		c.metrics.IncWorkflowOperation(name, "error")
		return nil, err
	}
	return c.run(ctx, name, t.Date, t.Time, req, func(ctx context.Context, sl *slot.Slot, out *Outcome) error {
		current, ok := find(sl, teamID)
		if !ok {
			return fmt.Errorf("%w: %s", team.ErrNotFound, teamID)
		}
		return fn(ctx, sl, current, out)
	})
}

func (c *Controller) publish(ctx context.Context, ev audit.WorkflowEvent) {
	if c.pubsub == nil {
		return
	}
	if err := c.pubsub.SendMessage(context.WithoutCancel(ctx), pubsub.EventWorkflowCompleted, ev); err != nil {
		log.Error("Failed to publish workflow event", "operation", ev.Type, "error", err)
		return
	}
	c.metrics.IncEventsPublished(string(pubsub.EventWorkflowCompleted))
}

// send delivers n and turns a failure into a warning on out.
func (c *Controller) send(ctx context.Context, out *Outcome, n notifier.Notification) bool {
	if err := c.notifier.Notify(ctx, n); err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("%s 발송 실패 (%s): %v", n.Kind, n.To, err))
		return false
	}
	return true
}

// sendAll delivers every notification and reports whether all of them went out.
func (c *Controller) sendAll(ctx context.Context, out *Outcome, ns ...notifier.Notification) bool {
	ok := true
	for _, n := range ns {
		if !c.send(ctx, out, n) {
			ok = false
		}
	}
	return ok
}

// update checks the transition and writes u to t.
func (c *Controller) update(ctx context.Context, t *team.Team, u team.Update) (*team.Team, error) {
	if err := checkUpdate(*t, u); err != nil {
		return nil, err
	}
	updated, err := c.teams.Update(ctx, t.ID, u)
	if err != nil {
		return nil, fmt.Errorf("failed to update team %s: %w", t.ID, err)
	}
	return updated, nil
}

// updatePair applies the same update to both teams in one write.
func (c *Controller) updatePair(ctx context.Context, a, b *team.Team, u team.Update) error {
	if err := checkUpdate(*a, u); err != nil {
		return err
	}
	if err := checkUpdate(*b, u); err != nil {
		return err
	}
	if _, err := c.teams.UpdateMany(ctx, []string{a.ID, b.ID}, u); err != nil {
		return fmt.Errorf("failed to update teams: %w", err)
	}
	return nil
}

// dropOthers tells every other active guest they were not selected and removes all
// other guests from the slot. Failures only warn; the pair is already decided.
func (c *Controller) dropOthers(ctx context.Context, sl *slot.Slot, keep string, out *Outcome) int {
	var ids []string
	for _, g := range sl.Guests {
		if g.ID == keep {
			continue
		}
		ids = append(ids, g.ID)
		if g.Status != team.StatusCancelled {
			c.send(ctx, out, notifier.NotSelected(g))
		}
	}
	if len(ids) == 0 {
		return 0
	}
	n, err := c.teams.DeleteMany(ctx, ids)
	if err != nil {
		out.Warnings = append(out.Warnings, fmt.Sprintf("탈락 게스트 삭제 실패: %v", err))
		return 0
	}
	return int(n)
}

// pair returns the host and the guest it is matched with.
func pair(sl *slot.Slot) (*team.Team, *team.Team, error) {
	if sl.Host == nil {
		return nil, nil, ErrNoHost
	}
	guest, ok := sl.MatchedGuest()
	if !ok {
		return nil, nil, ErrNoMatch
	}
	return sl.Host, guest, nil
}

// counterpart returns the other side of the pair t belongs to.
func counterpart(sl *slot.Slot, t *team.Team) (*team.Team, error) {
	host, guest, err := pair(sl)
	if err != nil {
		return nil, err
	}
	switch t.ID {
	case host.ID:
		return guest, nil
	case guest.ID:
		return host, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrTeamNotInSlot, t.ID)
}

func find(sl *slot.Slot, id string) (*team.Team, bool) {
	if sl.Host != nil && sl.Host.ID == id {
		return sl.Host, true
	}
	return sl.Guest(id)
}

func (c *Controller) localNow() time.Time {
	return c.now().In(c.slots.Location())
}
