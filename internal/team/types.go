package team

import (
	"errors"
	"time"
)

var (
	ErrNotFound    = errors.New("team not found")
	ErrHostExists  = errors.New("slot already has a host team")
	ErrInvalidTeam = errors.New("invalid team")
)

// Role is the side a team takes in a slot.
type Role string

const (
	RoleHost  Role = "HOST"
	RoleGuest Role = "GUEST"
)

type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
)

// Status is the lifecycle state of a team within its slot.
type Status string

const (
	StatusPending           Status = "PENDING"
	StatusHostRegistered    Status = "HOST_REGISTERED"
	StatusMatchingRequested Status = "MATCHING_REQUESTED"
	StatusFirstConfirmed    Status = "FIRST_CONFIRMED"
	StatusMatchConfirmed    Status = "MATCH_CONFIRMED"
	StatusCancelled         Status = "CANCELLED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusHostRegistered, StatusMatchingRequested,
		StatusFirstConfirmed, StatusMatchConfirmed, StatusCancelled:
		return true
	}
	return false
}

// ProcessStep tracks a FIRST_CONFIRMED team through info exchange and payment.
type ProcessStep string

const (
	StepWaitingPayment ProcessStep = "WAITING_PAYMENT"
	StepWaitingConfirm ProcessStep = "WAITING_CONFIRM"
	StepWaitingOther   ProcessStep = "WAITING_OTHER"
	StepReadyForFinal  ProcessStep = "READY_FOR_FINAL"
	StepCompleted      ProcessStep = "COMPLETED"
	StepCancelled      ProcessStep = "CANCELLED"
)

func (p ProcessStep) Valid() bool {
	switch p {
	case StepWaitingPayment, StepWaitingConfirm, StepWaitingOther,
		StepReadyForFinal, StepCompleted, StepCancelled:
		return true
	}
	return false
}

// ExchangeStatus is a public-room team's answer after seeing the other team's handles.
type ExchangeStatus string

const (
	ExchangePending ExchangeStatus = "PENDING"
	ExchangeProceed ExchangeStatus = "PROCEED"
	ExchangeStop    ExchangeStatus = "STOP"
)

func (e ExchangeStatus) Valid() bool {
	return e == ExchangePending || e == ExchangeProceed || e == ExchangeStop
}

const MaxMembers = 4

type Member struct {
	ID         string `json:"id"`
	TeamID     string `json:"team_id"`
	Position   int    `json:"position"`
	Age        int    `json:"age" validate:"required,min=18,max=40"`
	University string `json:"university" validate:"required,max=50"`
	Department string `json:"department" validate:"required,max=50"`
	Instagram  string `json:"instagram,omitempty" validate:"max=40"`
}

type Team struct {
	ID                 string          `json:"id"`
	Date               string          `json:"date"`
	Time               string          `json:"time"`
	Role               Role            `json:"role"`
	Gender             Gender          `json:"gender"`
	Phone              string          `json:"phone"`
	RepresentativeID   string          `json:"representative_id"`
	Intro              string          `json:"intro"`
	StudentIDURL       string          `json:"student_id_url"`
	IsVerified         bool            `json:"is_verified"`
	Status             Status          `json:"status"`
	ProcessStep        *ProcessStep    `json:"process_step"`
	WantsInfo          *bool           `json:"wants_info"`
	SharesInfo         *bool           `json:"shares_info"`
	HasPaid            bool            `json:"has_paid"`
	HasConfirmed       *bool           `json:"has_confirmed"`
	IsPublicRoom       bool            `json:"is_public_room"`
	InfoExchangeStatus *ExchangeStatus `json:"info_exchange_status"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	Members            []Member        `json:"members"`
}

func (t *Team) IsHost() bool { return t.Role == RoleHost }

// Headcount is the number of people in the team, at least one.
func (t *Team) Headcount() int {
	if len(t.Members) == 0 {
		return 1
	}
	return len(t.Members)
}

// DisplayID returns the representative id, or fallback when none was given.
func (t *Team) DisplayID(fallback string) string {
	if t.RepresentativeID == "" {
		return fallback
	}
	return t.RepresentativeID
}

// Step returns the process step, or "" while none is set.
func (t *Team) Step() ProcessStep {
	if t.ProcessStep == nil {
		return ""
	}
	return *t.ProcessStep
}

// PreferencesSet reports whether both info-exchange answers are present.
func (t *Team) PreferencesSet() bool {
	return t.WantsInfo != nil && t.SharesInfo != nil
}

func (t *Team) Wants() bool  { return t.WantsInfo != nil && *t.WantsInfo }
func (t *Team) Shares() bool { return t.SharesInfo != nil && *t.SharesInfo }

func (t *Team) Exchange() ExchangeStatus {
	if t.InfoExchangeStatus == nil {
		return ""
	}
	return *t.InfoExchangeStatus
}
