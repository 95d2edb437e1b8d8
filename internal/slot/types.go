package slot

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/mauv0809/slot-matcher/internal/team"
)

var (
	ErrInvalidDate   = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidTime   = errors.New("invalid time slot")
	ErrInvalidConfig = errors.New("invalid slot config")
)

// Times are the fixed meeting start times offered every day.
var Times = []string{"18:00", "19:00", "20:00", "21:00", "22:00", "23:00"}

const (
	DateLayout         = "2006-01-02"
	MaxApplicantsLimit = 10
)

// AdminStatus is the slot state shown on the admin board.
type AdminStatus string

const (
	AdminEmpty          AdminStatus = "EMPTY"
	AdminHostOnly       AdminStatus = "HOST_ONLY"
	AdminPending        AdminStatus = "PENDING"
	AdminFirstConfirmed AdminStatus = "FIRST_CONFIRMED"
	AdminMatchConfirmed AdminStatus = "MATCH_CONFIRMED"
)

// BookingStatus is the slot state shown to people registering.
type BookingStatus string

const (
	BookingAvailable      BookingStatus = "AVAILABLE"
	BookingHostRegistered BookingStatus = "HOST_REGISTERED"
	BookingFull           BookingStatus = "FULL"
	BookingClosed         BookingStatus = "CLOSED"
	BookingFirstConfirmed BookingStatus = "FIRST_CONFIRMED"
	BookingMatchConfirmed BookingStatus = "MATCH_CONFIRMED"
)

// SlotConfig overrides the daily defaults for one time slot. Nil means "use default".
type SlotConfig struct {
	MaxApplicants        *int `json:"max_applicants,omitempty"`
	MalePrice            *int `json:"male_price,omitempty"`
	FemalePrice          *int `json:"female_price,omitempty"`
	PublicRoomExtraPrice *int `json:"public_room_extra_price,omitempty"`
}

// DailyConfig is the per-date configuration row.
type DailyConfig struct {
	Date          string                `json:"date"`
	OpenTimes     []string              `json:"open_times"`
	MaxApplicants int                   `json:"max_applicants"`
	SlotConfigs   map[string]SlotConfig `json:"slot_configs"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// Defaults are the values used when neither the slot nor the day overrides them.
type Defaults struct {
	MaxApplicants        int
	MalePrice            int
	FemalePrice          int
	PublicRoomExtraPrice int
}

// Slot is derived from the teams sharing a date and time plus the day's config.
type Slot struct {
	Date                 string        `json:"date"`
	Time                 string        `json:"time"`
	Host                 *team.Team    `json:"host"`
	Guests               []team.Team   `json:"guests"`
	IsOpen               bool          `json:"is_open"`
	MaxApplicants        int           `json:"max_applicants"`
	MalePrice            int           `json:"male_price"`
	FemalePrice          int           `json:"female_price"`
	PublicRoomExtraPrice int           `json:"public_room_extra_price"`
	IsPublicRoom         bool          `json:"is_public_room"`
	Status               AdminStatus   `json:"status"`
	BookingStatus        BookingStatus `json:"booking_status"`
}

// Key identifies the slot for locking and logging.
func (s *Slot) Key() string { return Key(s.Date, s.Time) }

func Key(date, time string) string { return date + " " + time }

// ActiveGuests returns guests that have not been cancelled.
func (s *Slot) ActiveGuests() []team.Team {
	var out []team.Team
	for _, g := range s.Guests {
		if g.Status != team.StatusCancelled {
			out = append(out, g)
		}
	}
	return out
}

// AcceptedGuests is the number of applicants the slot can hold right now.
func (s *Slot) AcceptedGuests() int {
	return min(s.MaxApplicants, len(s.ActiveGuests()))
}

func (s *Slot) Full() bool {
	return len(s.ActiveGuests()) >= s.MaxApplicants
}

// Guest returns the guest with the given id.
func (s *Slot) Guest(id string) (*team.Team, bool) {
	for i := range s.Guests {
		if s.Guests[i].ID == id {
			return &s.Guests[i], true
		}
	}
	return nil, false
}

// MatchedGuest returns the guest paired with the host, if any.
func (s *Slot) MatchedGuest() (*team.Team, bool) {
	for i := range s.Guests {
		st := s.Guests[i].Status
		if st == team.StatusFirstConfirmed || st == team.StatusMatchConfirmed {
			return &s.Guests[i], true
		}
	}
	return nil, false
}

// Teams returns the host followed by the guests.
func (s *Slot) Teams() []team.Team {
	var out []team.Team
	if s.Host != nil {
		out = append(out, *s.Host)
	}
	return append(out, s.Guests...)
}

// PriceFor is the per-person price for a team of the given gender, including the
// public room surcharge when the host opened a public room.
func (s *Slot) PriceFor(g team.Gender) int {
	price := s.MalePrice
	if g == team.GenderFemale {
		price = s.FemalePrice
	}
	if s.IsPublicRoom {
		price += s.PublicRoomExtraPrice
	}
	return price
}

// StartsAt is the meeting start in loc.
func (s *Slot) StartsAt(loc *time.Location) (time.Time, error) {
	return StartsAt(s.Date, s.Time, loc)
}

func StartsAt(date, clock string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" 15:04", date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s %s", ErrInvalidTime, date, clock)
	}
	return t, nil
}

func ValidateDate(date string) error {
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	return nil
}

func ValidateTime(clock string) error {
	if !slices.Contains(Times, clock) {
		return fmt.Errorf("%w: %q", ErrInvalidTime, clock)
	}
	return nil
}
