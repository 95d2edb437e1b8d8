package slot

import (
	"slices"
	"time"

	"github.com/mauv0809/slot-matcher/internal/team"
)

// Derive builds every fixed slot of a date from its teams and config.
// teams must be ordered by creation time; cfg may be nil.
func Derive(date string, teams []team.Team, cfg *DailyConfig, d Defaults, now time.Time) []Slot {
	slots := make([]Slot, 0, len(Times))
	for _, clock := range Times {
		var atTime []team.Team
		for _, t := range teams {
			if t.Time == clock {
				atTime = append(atTime, t)
			}
		}
		slots = append(slots, DeriveOne(date, clock, atTime, cfg, d, now))
	}
	return slots
}

// DeriveOne builds a single slot. now carries the location meeting times are read in.
func DeriveOne(date, clock string, teams []team.Team, cfg *DailyConfig, d Defaults, now time.Time) Slot {
	s := Slot{
		Date:                 date,
		Time:                 clock,
		Guests:               []team.Team{},
		MaxApplicants:        d.MaxApplicants,
		MalePrice:            d.MalePrice,
		FemalePrice:          d.FemalePrice,
		PublicRoomExtraPrice: d.PublicRoomExtraPrice,
	}

	if cfg != nil {
		s.IsOpen = slices.Contains(cfg.OpenTimes, clock)
		if cfg.MaxApplicants > 0 {
			s.MaxApplicants = cfg.MaxApplicants
		}
		if sc, ok := cfg.SlotConfigs[clock]; ok {
			if sc.MaxApplicants != nil {
				s.MaxApplicants = *sc.MaxApplicants
			}
			if sc.MalePrice != nil {
				s.MalePrice = *sc.MalePrice
			}
			if sc.FemalePrice != nil {
				s.FemalePrice = *sc.FemalePrice
			}
			if sc.PublicRoomExtraPrice != nil {
				s.PublicRoomExtraPrice = *sc.PublicRoomExtraPrice
			}
		}
	}

	for i := range teams {
		t := teams[i]
		if t.Role == team.RoleHost && s.Host == nil {
			s.Host = &t
			continue
		}
		if t.Role == team.RoleGuest {
			s.Guests = append(s.Guests, t)
		}
	}
	if s.Host != nil {
		s.IsPublicRoom = s.Host.IsPublicRoom
	}

	s.Status = adminStatus(&s)
	s.BookingStatus = bookingStatus(&s, now)
	return s
}

func hasStatus(s *Slot, st team.Status) bool {
	if s.Host != nil && s.Host.Status == st {
		return true
	}
	for _, g := range s.Guests {
		if g.Status == st {
			return true
		}
	}
	return false
}

func adminStatus(s *Slot) AdminStatus {
	switch {
	case hasStatus(s, team.StatusMatchConfirmed):
		return AdminMatchConfirmed
	case hasStatus(s, team.StatusFirstConfirmed):
		return AdminFirstConfirmed
	case s.Host != nil && len(s.ActiveGuests()) == 0:
		return AdminHostOnly
	case len(s.ActiveGuests()) > 0:
		return AdminPending
	default:
		return AdminEmpty
	}
}

func bookingStatus(s *Slot, now time.Time) BookingStatus {
	switch {
	case hasStatus(s, team.StatusMatchConfirmed):
		return BookingMatchConfirmed
	case hasStatus(s, team.StatusFirstConfirmed):
		return BookingFirstConfirmed
	case !s.IsOpen || started(s, now):
		return BookingClosed
	case s.Host == nil:
		return BookingAvailable
	case s.Full():
		return BookingFull
	default:
		return BookingHostRegistered
	}
}

func started(s *Slot, now time.Time) bool {
	start, err := StartsAt(s.Date, s.Time, now.Location())
	if err != nil {
		return true
	}
	return !now.Before(start)
}
