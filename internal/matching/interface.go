package matching

import (
	"context"
	"time"

	"github.com/mauv0809/slot-matcher/internal/slot"
)

// Slots is the read side the workflow needs from the slot service.
type Slots interface {
	Slot(ctx context.Context, date, clock string) (*slot.Slot, error)
	Location() *time.Location
}

// Workflow is the set of admin and booking operations on slots.
type Workflow interface {
	FirstMatch(ctx context.Context, req FirstMatchRequest) (*Outcome, error)
	NextStep(ctx context.Context, ref SlotRef) (*Outcome, error)
	ConfirmPayment(ctx context.Context, ref TeamRef) (*Outcome, error)
	ConfirmDecision(ctx context.Context, req DecisionRequest) (*Outcome, error)
	FinalMatch(ctx context.Context, req FinalMatchRequest) (*Outcome, error)
	CancelFirstMatch(ctx context.Context, ref SlotRef) (*Outcome, error)
	SetInfoPreference(ctx context.Context, req PreferenceRequest) (*Outcome, error)
	SetInfoExchangeStatus(ctx context.Context, req ExchangeRequest) (*Outcome, error)
	ResolvePublicRoom(ctx context.Context, ref SlotRef) (*Outcome, error)
	CancelPublicRoom(ctx context.Context, ref SlotRef) (*Outcome, error)
	VerifyTeam(ctx context.Context, ref TeamRef) (*Outcome, error)
	RejectVerification(ctx context.Context, ref TeamRef) (*Outcome, error)
	RemoveTeam(ctx context.Context, ref TeamRef) (*Outcome, error)
	CancelFinalMatch(ctx context.Context, ref TeamRef) (*Outcome, error)
	RegisterTeam(ctx context.Context, reg Registration) (*Outcome, error)

	RequestState(date, clock string) SlotState
}
