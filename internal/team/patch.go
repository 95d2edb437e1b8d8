package team

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Field is one column of a partial update. The zero value leaves the column untouched;
// Null clears a nullable column.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func Set[T any](v T) Field[T] { return Field[T]{Set: true, Value: v} }

func Null[T any]() Field[T] { return Field[T]{Set: true, Null: true} }

// UnmarshalJSON is only invoked for keys present in the payload, so presence marks Set.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Update is a partial team update. Only Set fields are written.
type Update struct {
	Status             Field[Status]         `json:"status"`
	ProcessStep        Field[ProcessStep]    `json:"process_step"`
	WantsInfo          Field[bool]           `json:"wants_info"`
	SharesInfo         Field[bool]           `json:"shares_info"`
	HasPaid            Field[bool]           `json:"has_paid"`
	HasConfirmed       Field[bool]           `json:"has_confirmed"`
	IsVerified         Field[bool]           `json:"is_verified"`
	IsPublicRoom       Field[bool]           `json:"is_public_room"`
	InfoExchangeStatus Field[ExchangeStatus] `json:"info_exchange_status"`
	RepresentativeID   Field[string]         `json:"representative_id"`
	Intro              Field[string]         `json:"intro"`
}

// Empty reports whether the update would not touch any column.
func (u Update) Empty() bool {
	cols, _, _ := u.assignments()
	return len(cols) == 0
}

// ResetProcess clears every negotiation field and puts the team back to PENDING.
func ResetProcess() Update {
	return Update{
		Status:             Set(StatusPending),
		ProcessStep:        Null[ProcessStep](),
		WantsInfo:          Null[bool](),
		SharesInfo:         Null[bool](),
		HasPaid:            Set(false),
		HasConfirmed:       Null[bool](),
		InfoExchangeStatus: Null[ExchangeStatus](),
	}
}

// Apply returns a copy of t with the update applied in memory.
func (u Update) Apply(t Team) Team {
	if u.Status.Set {
		t.Status = u.Status.Value
	}
	if u.ProcessStep.Set {
		t.ProcessStep = ptrOrNil(u.ProcessStep)
	}
	if u.WantsInfo.Set {
		t.WantsInfo = ptrOrNil(u.WantsInfo)
	}
	if u.SharesInfo.Set {
		t.SharesInfo = ptrOrNil(u.SharesInfo)
	}
	if u.HasPaid.Set {
		t.HasPaid = u.HasPaid.Value
	}
	if u.HasConfirmed.Set {
		t.HasConfirmed = ptrOrNil(u.HasConfirmed)
	}
	if u.IsVerified.Set {
		t.IsVerified = u.IsVerified.Value
	}
	if u.IsPublicRoom.Set {
		t.IsPublicRoom = u.IsPublicRoom.Value
	}
	if u.InfoExchangeStatus.Set {
		t.InfoExchangeStatus = ptrOrNil(u.InfoExchangeStatus)
	}
	if u.RepresentativeID.Set {
		t.RepresentativeID = u.RepresentativeID.Value
	}
	if u.Intro.Set {
		t.Intro = u.Intro.Value
	}
	return t
}

func ptrOrNil[T any](f Field[T]) *T {
	if f.Null {
		return nil
	}
	v := f.Value
	return &v
}

// assignments turns the update into SQL column assignments, validating enum values
// and rejecting null on NOT NULL columns.
func (u Update) assignments() ([]string, []any, error) {
	var cols []string
	var args []any

	notNull := func(name string, set, null bool, value any) error {
		if !set {
			return nil
		}
		if null {
			return fmt.Errorf("%w: %s cannot be null", ErrInvalidTeam, name)
		}
		cols = append(cols, name+" = ?")
		args = append(args, value)
		return nil
	}
	nullable := func(name string, set, null bool, value any) {
		if !set {
			return
		}
		cols = append(cols, name+" = ?")
		if null {
			args = append(args, nil)
		} else {
			args = append(args, value)
		}
	}

	if u.Status.Set && !u.Status.Null && !u.Status.Value.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown status %q", ErrInvalidTeam, u.Status.Value)
	}
	if u.ProcessStep.Set && !u.ProcessStep.Null && !u.ProcessStep.Value.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown process step %q", ErrInvalidTeam, u.ProcessStep.Value)
	}
	if u.InfoExchangeStatus.Set && !u.InfoExchangeStatus.Null && !u.InfoExchangeStatus.Value.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown info exchange status %q", ErrInvalidTeam, u.InfoExchangeStatus.Value)
	}

	for _, err := range []error{
		notNull("status", u.Status.Set, u.Status.Null, string(u.Status.Value)),
		notNull("has_paid", u.HasPaid.Set, u.HasPaid.Null, u.HasPaid.Value),
		notNull("is_verified", u.IsVerified.Set, u.IsVerified.Null, u.IsVerified.Value),
		notNull("is_public_room", u.IsPublicRoom.Set, u.IsPublicRoom.Null, u.IsPublicRoom.Value),
		notNull("representative_id", u.RepresentativeID.Set, u.RepresentativeID.Null, u.RepresentativeID.Value),
		notNull("intro", u.Intro.Set, u.Intro.Null, u.Intro.Value),
	} {
		if err != nil {
			return nil, nil, err
		}
	}
	nullable("process_step", u.ProcessStep.Set, u.ProcessStep.Null, string(u.ProcessStep.Value))
	nullable("wants_info", u.WantsInfo.Set, u.WantsInfo.Null, u.WantsInfo.Value)
	nullable("shares_info", u.SharesInfo.Set, u.SharesInfo.Null, u.SharesInfo.Value)
	nullable("has_confirmed", u.HasConfirmed.Set, u.HasConfirmed.Null, u.HasConfirmed.Value)
	nullable("info_exchange_status", u.InfoExchangeStatus.Set, u.InfoExchangeStatus.Null, string(u.InfoExchangeStatus.Value))
	return cols, args, nil
}
