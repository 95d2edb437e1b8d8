package matching

import (
	"errors"
	"time"

	"github.com/mauv0809/slot-matcher/internal/lock"
	"github.com/mauv0809/slot-matcher/internal/metrics"
	"github.com/mauv0809/slot-matcher/internal/notifier"
	"github.com/mauv0809/slot-matcher/internal/pubsub"
	"github.com/mauv0809/slot-matcher/internal/settings"
	"github.com/mauv0809/slot-matcher/internal/team"
)

var (
	ErrInFlight              = errors.New("another operation is in progress for this slot")
	ErrInvalidTransition     = errors.New("invalid state transition")
	ErrPreferencesIncomplete = errors.New("호스트와 게스트 모두 정보 원함 / 정보 공개 여부를 설정해주세요")
	ErrAwaitingAnswers       = errors.New("양팀 모두 진행/중단 응답이 필요합니다")
	ErrNoHost                = errors.New("slot has no host team")
	ErrNoMatch               = errors.New("slot has no matched pair")
	ErrTeamNotInSlot         = errors.New("team is not part of this slot")
	ErrSlotUnavailable       = errors.New("slot is not accepting registrations")
)

// Operation names, also used as workflow event types and metric labels.
const (
	OpFirstMatch            = "first-match"
	OpNextStep              = "next-step"
	OpConfirmPayment        = "confirm-payment"
	OpConfirmDecision       = "confirm-decision"
	OpFinalMatch            = "final-match"
	OpCancelFirstMatch      = "cancel-first-match"
	OpSetInfoPreference     = "set-info-preference"
	OpSetInfoExchangeStatus = "set-info-exchange-status"
	OpResolvePublicRoom     = "resolve-public-room"
	OpCancelPublicRoom      = "cancel-public-room"
	OpVerifyTeam            = "verify-team"
	OpRejectVerification    = "reject-verification"
	OpRemoveTeam            = "remove-team"
	OpCancelFinalMatch      = "cancel-final-match"
	OpRegisterTeam          = "register-team"
)

const (
	reminderLead   = 24 * time.Hour
	decisionDelay  = 40 * time.Minute
	scheduleMargin = 10 * time.Minute
	refundWindow   = 48 * time.Hour
	lockTTL        = 2 * time.Minute
)

// Outcome is what an admin sees after an operation. Warnings carry the side effects that
// failed without undoing the state change.
type Outcome struct {
	Message   string     `json:"message"`
	Warnings  []string   `json:"warnings,omitempty"`
	Scheduled []string   `json:"scheduled,omitempty"`
	Skipped   []string   `json:"skipped,omitempty"`
	Team      *team.Team `json:"team,omitempty"`
}

// SlotRef addresses a slot.
type SlotRef struct {
	Date string `json:"date" validate:"required,slotdate"`
	Time string `json:"time" validate:"required,slottime"`
}

// TeamRef addresses a team; its slot is read from the store.
type TeamRef struct {
	TeamID string `json:"team_id" validate:"required"`
}

type FirstMatchRequest struct {
	Date    string `json:"date" validate:"required,slotdate"`
	Time    string `json:"time" validate:"required,slottime"`
	GuestID string `json:"guest_id" validate:"required"`
	// SkipInfoExchange sends a private room pair straight to final payment.
	SkipInfoExchange bool `json:"skip_info_exchange"`
}

type FinalMatchRequest struct {
	Date    string `json:"date" validate:"required,slotdate"`
	Time    string `json:"time" validate:"required,slottime"`
	GuestID string `json:"guest_id" validate:"required"`
}

type DecisionRequest struct {
	TeamID  string `json:"team_id" validate:"required"`
	Proceed bool   `json:"proceed"`
}

// PreferenceField is one of the negotiation answers an admin records for a team.
type PreferenceField string

const (
	FieldWantsInfo    PreferenceField = "wants_info"
	FieldSharesInfo   PreferenceField = "shares_info"
	FieldHasPaid      PreferenceField = "has_paid"
	FieldHasConfirmed PreferenceField = "has_confirmed"
)

type PreferenceRequest struct {
	TeamID string          `json:"team_id" validate:"required"`
	Field  PreferenceField `json:"field" validate:"required,oneof=wants_info shares_info has_paid has_confirmed"`
	// Value nil clears the answer.
	Value *bool `json:"value"`
}

type ExchangeRequest struct {
	TeamID string               `json:"team_id" validate:"required"`
	Status *team.ExchangeStatus `json:"status" validate:"omitempty,oneof=PENDING PROCEED STOP"`
}

// Registration is a team signing up for a slot.
type Registration struct {
	Date             string        `json:"date" validate:"required,slotdate"`
	Time             string        `json:"time" validate:"required,slottime"`
	Gender           team.Gender   `json:"gender" validate:"required,oneof=MALE FEMALE"`
	Phone            string        `json:"phone" validate:"required,phone"`
	RepresentativeID string        `json:"representative_id" validate:"max=40"`
	Intro            string        `json:"intro" validate:"max=500"`
	StudentIDURL     string        `json:"student_id_url" validate:"omitempty,url"`
	IsPublicRoom     bool          `json:"is_public_room"`
	Members          []team.Member `json:"members" validate:"required,min=1,max=4,dive"`
}

// RequestState tracks the latest operation per slot.
type RequestState string

const (
	StateIdle     RequestState = "IDLE"
	StateInFlight RequestState = "IN_FLIGHT"
	StateError    RequestState = "ERROR"
)

type SlotState struct {
	State     RequestState `json:"state"`
	Operation string       `json:"operation,omitempty"`
	Error     string       `json:"error,omitempty"`
	UpdatedAt time.Time    `json:"updated_at,omitempty"`
}

// Controller runs the matching workflow against the team store and the notifier.
type Controller struct {
	teams    team.TeamStore
	slots    Slots
	settings settings.Provider
	notifier notifier.Notifier
	pubsub   pubsub.PubSubClient
	metrics  metrics.Metrics
	guard    *Guard
	now      func() time.Time
}

// Deps groups the collaborators of a Controller.
type Deps struct {
	Teams    team.TeamStore
	Slots    Slots
	Settings settings.Provider
	Notifier notifier.Notifier
	Locker   lock.Locker
	PubSub   pubsub.PubSubClient
	Metrics  metrics.Metrics
}
