package slot

import (
	"testing"
	"time"

	"github.com/mauv0809/slot-matcher/internal/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDefaults = Defaults{MaxApplicants: 3, MalePrice: 10000, FemalePrice: 5000, PublicRoomExtraPrice: 3000}

func at(date, clock string) time.Time {
	t, _ := time.Parse(DateLayout+" 15:04", date+" "+clock)
	return t
}

func mkTeam(id string, role team.Role, status team.Status) team.Team {
	return team.Team{ID: id, Date: "2025-06-01", Time: "19:00", Role: role, Status: status, Gender: team.GenderMale}
}

func intPtr(v int) *int { return &v }

func TestDeriveOne_AdminStatus(t *testing.T) {
	now := at("2025-05-30", "12:00")
	cfg := &DailyConfig{Date: "2025-06-01", OpenTimes: []string{"19:00"}, MaxApplicants: 3}

	tests := []struct {
		name  string
		teams []team.Team
		want  AdminStatus
	}{
		{"no teams", nil, AdminEmpty},
		{"host only", []team.Team{mkTeam("h", team.RoleHost, team.StatusHostRegistered)}, AdminHostOnly},
		{"guests applied", []team.Team{
			mkTeam("h", team.RoleHost, team.StatusHostRegistered),
			mkTeam("g", team.RoleGuest, team.StatusMatchingRequested),
		}, AdminPending},
		{"guests without host", []team.Team{mkTeam("g", team.RoleGuest, team.StatusMatchingRequested)}, AdminPending},
		{"cancelled guests do not count", []team.Team{
			mkTeam("h", team.RoleHost, team.StatusHostRegistered),
			mkTeam("g", team.RoleGuest, team.StatusCancelled),
		}, AdminHostOnly},
		{"first confirmed wins over pending", []team.Team{
			mkTeam("h", team.RoleHost, team.StatusFirstConfirmed),
			mkTeam("g1", team.RoleGuest, team.StatusFirstConfirmed),
			mkTeam("g2", team.RoleGuest, team.StatusMatchingRequested),
		}, AdminFirstConfirmed},
		{"match confirmed wins over everything", []team.Team{
			mkTeam("h", team.RoleHost, team.StatusMatchConfirmed),
			mkTeam("g1", team.RoleGuest, team.StatusMatchConfirmed),
		}, AdminMatchConfirmed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DeriveOne("2025-06-01", "19:00", tt.teams, cfg, testDefaults, now)
			assert.Equal(t, tt.want, s.Status)
		})
	}
}

func TestDeriveOne_BookingStatus(t *testing.T) {
	open := &DailyConfig{Date: "2025-06-01", OpenTimes: []string{"19:00"}, MaxApplicants: 2}
	before := at("2025-05-30", "12:00")
	host := mkTeam("h", team.RoleHost, team.StatusHostRegistered)
	guest := func(id string) team.Team { return mkTeam(id, team.RoleGuest, team.StatusMatchingRequested) }

	tests := []struct {
		name  string
		teams []team.Team
		cfg   *DailyConfig
		now   time.Time
		want  BookingStatus
	}{
		{"open and empty", nil, open, before, BookingAvailable},
		{"no config means closed", nil, nil, before, BookingClosed},
		{"already started", nil, open, at("2025-06-01", "19:00"), BookingClosed},
		{"host registered", []team.Team{host, guest("g1")}, open, before, BookingHostRegistered},
		{"full", []team.Team{host, guest("g1"), guest("g2")}, open, before, BookingFull},
		{"first confirmed shown even when closed", []team.Team{
			mkTeam("h", team.RoleHost, team.StatusFirstConfirmed),
		}, nil, before, BookingFirstConfirmed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DeriveOne("2025-06-01", "19:00", tt.teams, tt.cfg, testDefaults, tt.now)
			assert.Equal(t, tt.want, s.BookingStatus)
		})
	}
}

func TestDeriveOne_ConfigOverrides(t *testing.T) {
	cfg := &DailyConfig{
		Date:          "2025-06-01",
		OpenTimes:     []string{"19:00"},
		MaxApplicants: 4,
		SlotConfigs: map[string]SlotConfig{
			"19:00": {MaxApplicants: intPtr(2), FemalePrice: intPtr(7000), PublicRoomExtraPrice: intPtr(1000)},
		},
	}
	host := mkTeam("h", team.RoleHost, team.StatusHostRegistered)
	host.IsPublicRoom = true

	s := DeriveOne("2025-06-01", "19:00", []team.Team{host}, cfg, testDefaults, at("2025-05-01", "00:00"))
	assert.True(t, s.IsOpen)
	assert.Equal(t, 2, s.MaxApplicants)
	assert.Equal(t, 10000, s.MalePrice, "unset override keeps the default")
	assert.Equal(t, 7000, s.FemalePrice)
	assert.True(t, s.IsPublicRoom)
	assert.Equal(t, 11000, s.PriceFor(team.GenderMale))
	assert.Equal(t, 8000, s.PriceFor(team.GenderFemale))

	other := DeriveOne("2025-06-01", "20:00", nil, cfg, testDefaults, at("2025-05-01", "00:00"))
	assert.False(t, other.IsOpen)
	assert.Equal(t, 4, other.MaxApplicants, "daily default applies without a slot override")
}

func TestDerive_HostIsOldestHostTeam(t *testing.T) {
	teams := []team.Team{
		mkTeam("g1", team.RoleGuest, team.StatusMatchingRequested),
		mkTeam("h1", team.RoleHost, team.StatusHostRegistered),
		mkTeam("g2", team.RoleGuest, team.StatusMatchingRequested),
	}
	slots := Derive("2025-06-01", teams, nil, testDefaults, at("2025-05-01", "00:00"))
	require.Len(t, slots, len(Times))

	s := slots[1]
	require.Equal(t, "19:00", s.Time)
	require.NotNil(t, s.Host)
	assert.Equal(t, "h1", s.Host.ID)
	require.Len(t, s.Guests, 2)
	assert.Equal(t, "g1", s.Guests[0].ID)
	assert.Equal(t, AdminEmpty, slots[0].Status)
}

func TestSlotHelpers(t *testing.T) {
	s := Slot{MaxApplicants: 2, Guests: []team.Team{
		mkTeam("g1", team.RoleGuest, team.StatusMatchingRequested),
		mkTeam("g2", team.RoleGuest, team.StatusFirstConfirmed),
		mkTeam("g3", team.RoleGuest, team.StatusMatchingRequested),
		mkTeam("g4", team.RoleGuest, team.StatusCancelled),
	}}
	assert.Equal(t, 2, s.AcceptedGuests(), "accepted guests are capped by capacity")
	assert.True(t, s.Full())

	matched, ok := s.MatchedGuest()
	require.True(t, ok)
	assert.Equal(t, "g2", matched.ID)

	_, ok = s.Guest("nope")
	assert.False(t, ok)
}
