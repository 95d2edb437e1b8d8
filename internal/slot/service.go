package slot

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/slot-matcher/internal/team"
)

// Service answers slot queries and applies slot settings changes.
type Service struct {
	teams    team.TeamStore
	configs  ConfigStore
	defaults Defaults
	loc      *time.Location
	now      func() time.Time
}

func NewService(teams team.TeamStore, configs ConfigStore, defaults Defaults, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{teams: teams, configs: configs, defaults: defaults, loc: loc, now: time.Now}
}

// WithClock replaces the time source. Used by tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) Defaults() Defaults { return s.defaults }

func (s *Service) Location() *time.Location { return s.loc }

func (s *Service) clock() time.Time { return s.now().In(s.loc) }

// Slots derives all slots of a date.
func (s *Service) Slots(ctx context.Context, date string) ([]Slot, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	teams, err := s.teams.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	cfg, err := s.configs.Get(ctx, date)
	if err != nil {
		return nil, err
	}
	return Derive(date, teams, cfg, s.defaults, s.clock()), nil
}

// Slot derives one slot, re-reading its teams.
func (s *Service) Slot(ctx context.Context, date, clock string) (*Slot, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	if err := ValidateTime(clock); err != nil {
		return nil, err
	}
	teams, err := s.teams.ListBySlot(ctx, date, clock)
	if err != nil {
		return nil, err
	}
	cfg, err := s.configs.Get(ctx, date)
	if err != nil {
		return nil, err
	}
	sl := DeriveOne(date, clock, teams, cfg, s.defaults, s.clock())
	return &sl, nil
}

// DailyConfig returns the stored config for a date, nil when none exists.
func (s *Service) DailyConfig(ctx context.Context, date string) (*DailyConfig, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	return s.configs.Get(ctx, date)
}

// UpsertDailyConfig stores a full config row, defaulting missing parts.
func (s *Service) UpsertDailyConfig(ctx context.Context, cfg DailyConfig) (*DailyConfig, error) {
	if cfg.MaxApplicants == 0 {
		cfg.MaxApplicants = s.defaults.MaxApplicants
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	cfg.OpenTimes = sortedTimes(cfg.OpenTimes)
	return s.configs.Upsert(ctx, cfg)
}

// ToggleOpen opens or closes a slot and returns the updated config.
func (s *Service) ToggleOpen(ctx context.Context, date, clock string) (*DailyConfig, error) {
	return s.modify(ctx, date, clock, func(cfg *DailyConfig) error {
		if i := slices.Index(cfg.OpenTimes, clock); i >= 0 {
			cfg.OpenTimes = slices.Delete(cfg.OpenTimes, i, i+1)
		} else {
			cfg.OpenTimes = append(cfg.OpenTimes, clock)
		}
		return nil
	})
}

// SetPrice sets the per-person price of one gender for a slot.
func (s *Service) SetPrice(ctx context.Context, date, clock string, gender team.Gender, price int) (*DailyConfig, error) {
	if price < 0 {
		return nil, fmt.Errorf("%w: price must not be negative", ErrInvalidConfig)
	}
	return s.modify(ctx, date, clock, func(cfg *DailyConfig) error {
		sc := cfg.SlotConfigs[clock]
		switch gender {
		case team.GenderMale:
			sc.MalePrice = &price
		case team.GenderFemale:
			sc.FemalePrice = &price
		default:
			return fmt.Errorf("%w: unknown gender %q", ErrInvalidConfig, gender)
		}
		cfg.SlotConfigs[clock] = sc
		return nil
	})
}

// SetMaxApplicants overrides the applicant cap of one slot.
func (s *Service) SetMaxApplicants(ctx context.Context, date, clock string, limit int) (*DailyConfig, error) {
	if limit < 1 || limit > MaxApplicantsLimit {
		return nil, fmt.Errorf("%w: max applicants must be between 1 and %d", ErrInvalidConfig, MaxApplicantsLimit)
	}
	return s.modify(ctx, date, clock, func(cfg *DailyConfig) error {
		sc := cfg.SlotConfigs[clock]
		sc.MaxApplicants = &limit
		cfg.SlotConfigs[clock] = sc
		return nil
	})
}

// SetPublicRoomExtraPrice sets the per-person public room surcharge of one slot.
func (s *Service) SetPublicRoomExtraPrice(ctx context.Context, date, clock string, price int) (*DailyConfig, error) {
	if price < 0 {
		return nil, fmt.Errorf("%w: surcharge must not be negative", ErrInvalidConfig)
	}
	return s.modify(ctx, date, clock, func(cfg *DailyConfig) error {
		sc := cfg.SlotConfigs[clock]
		sc.PublicRoomExtraPrice = &price
		cfg.SlotConfigs[clock] = sc
		return nil
	})
}

// modify is a read-modify-upsert of the date's config row.
func (s *Service) modify(ctx context.Context, date, clock string, fn func(*DailyConfig) error) (*DailyConfig, error) {
	if err := ValidateDate(date); err != nil {
		return nil, err
	}
	if err := ValidateTime(clock); err != nil {
		return nil, err
	}
	current, err := s.configs.Get(ctx, date)
	if err != nil {
		return nil, err
	}
	cfg := DailyConfig{Date: date, OpenTimes: []string{}, MaxApplicants: s.defaults.MaxApplicants}
	if current != nil {
		cfg = *current
		cfg.OpenTimes = slices.Clone(current.OpenTimes)
	}
	next := make(map[string]SlotConfig, len(cfg.SlotConfigs))
	for k, v := range cfg.SlotConfigs {
		next[k] = v
	}
	cfg.SlotConfigs = next

	if err := fn(&cfg); err != nil {
		return nil, err
	}
	cfg.OpenTimes = sortedTimes(cfg.OpenTimes)
	saved, err := s.configs.Upsert(ctx, cfg)
	if err != nil {
		return nil, err
	}
	log.Info("Updated slot config", "date", date, "time", clock)
	return saved, nil
}

// GuestNotificationData is what the host needs to hear about a new applicant.
type GuestNotificationData struct {
	HostTeam      *team.Team    `json:"hostTeam"`
	GuestMembers  []team.Member `json:"guestMembers"`
	GuestCount    int           `json:"guestCount"`
	MaxApplicants int           `json:"maxApplicants"`
}

func (s *Service) GuestNotificationData(ctx context.Context, guestID string) (*GuestNotificationData, error) {
	guest, err := s.teams.Get(ctx, guestID)
	if err != nil {
		return nil, err
	}
	sl, err := s.Slot(ctx, guest.Date, guest.Time)
	if err != nil {
		return nil, err
	}
	return &GuestNotificationData{
		HostTeam:      sl.Host,
		GuestMembers:  guest.Members,
		GuestCount:    len(sl.ActiveGuests()),
		MaxApplicants: sl.MaxApplicants,
	}, nil
}

func validateConfig(cfg DailyConfig) error {
	if err := ValidateDate(cfg.Date); err != nil {
		return err
	}
	if cfg.MaxApplicants < 1 || cfg.MaxApplicants > MaxApplicantsLimit {
		return fmt.Errorf("%w: max applicants must be between 1 and %d", ErrInvalidConfig, MaxApplicantsLimit)
	}
	for _, t := range cfg.OpenTimes {
		if err := ValidateTime(t); err != nil {
			return err
		}
	}
	for t := range cfg.SlotConfigs {
		if err := ValidateTime(t); err != nil {
			return err
		}
	}
	return nil
}

func sortedTimes(times []string) []string {
	out := slices.Clone(times)
	slices.Sort(out)
	return slices.Compact(out)
}
