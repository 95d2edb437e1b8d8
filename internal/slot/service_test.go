package slot

import (
	"context"
	"testing"
	"time"

	"github.com/mauv0809/slot-matcher/internal/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(teams ...team.Team) (*Service, *MockConfigStore) {
	configs := NewMockConfigStore()
	svc := NewService(team.NewMock(teams...), configs, testDefaults, time.UTC).
		WithClock(func() time.Time { return at("2025-05-30", "12:00") })
	return svc, configs
}

func TestService_ToggleOpen(t *testing.T) {
	svc, configs := newTestService()
	ctx := context.Background()

	cfg, err := svc.ToggleOpen(ctx, "2025-06-01", "21:00")
	require.NoError(t, err)
	assert.Equal(t, []string{"21:00"}, cfg.OpenTimes)
	assert.Equal(t, 3, cfg.MaxApplicants, "a new row starts from the default cap")

	_, err = svc.ToggleOpen(ctx, "2025-06-01", "18:00")
	require.NoError(t, err)
	cfg, err = svc.ToggleOpen(ctx, "2025-06-01", "19:00")
	require.NoError(t, err)
	assert.Equal(t, []string{"18:00", "19:00", "21:00"}, cfg.OpenTimes, "open times stay sorted")

	cfg, err = svc.ToggleOpen(ctx, "2025-06-01", "18:00")
	require.NoError(t, err)
	assert.Equal(t, []string{"19:00", "21:00"}, cfg.OpenTimes)
	assert.Len(t, configs.UpsertCalls, 4)

	_, err = svc.ToggleOpen(ctx, "2025-06-01", "17:00")
	assert.ErrorIs(t, err, ErrInvalidTime)
	_, err = svc.ToggleOpen(ctx, "06/01", "19:00")
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestService_SlotSettings(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.SetPrice(ctx, "2025-06-01", "19:00", team.GenderFemale, 6000)
	require.NoError(t, err)
	_, err = svc.SetMaxApplicants(ctx, "2025-06-01", "19:00", 5)
	require.NoError(t, err)
	cfg, err := svc.SetPublicRoomExtraPrice(ctx, "2025-06-01", "19:00", 2000)
	require.NoError(t, err)

	sc := cfg.SlotConfigs["19:00"]
	require.NotNil(t, sc.FemalePrice)
	assert.Equal(t, 6000, *sc.FemalePrice)
	assert.Nil(t, sc.MalePrice)
	assert.Equal(t, 5, *sc.MaxApplicants)
	assert.Equal(t, 2000, *sc.PublicRoomExtraPrice)

	_, err = svc.SetMaxApplicants(ctx, "2025-06-01", "19:00", 0)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = svc.SetPrice(ctx, "2025-06-01", "19:00", team.GenderMale, -1)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	_, err = svc.SetPrice(ctx, "2025-06-01", "19:00", team.Gender("OTHER"), 1000)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestService_UpsertDailyConfig(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	cfg, err := svc.UpsertDailyConfig(ctx, DailyConfig{Date: "2025-06-01", OpenTimes: []string{"20:00", "18:00", "20:00"}})
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxApplicants)
	assert.Equal(t, []string{"18:00", "20:00"}, cfg.OpenTimes)

	_, err = svc.UpsertDailyConfig(ctx, DailyConfig{Date: "2025-06-01", OpenTimes: []string{"25:00"}})
	assert.ErrorIs(t, err, ErrInvalidTime)

	got, err := svc.DailyConfig(ctx, "2025-06-02")
	require.NoError(t, err)
	assert.Nil(t, got, "a date without config yields nil")
}

func TestService_GuestNotificationData(t *testing.T) {
	host := mkTeam("h", team.RoleHost, team.StatusHostRegistered)
	g1 := mkTeam("g1", team.RoleGuest, team.StatusMatchingRequested)
	g1.Members = []team.Member{{Age: 22, University: "KU", Department: "Law"}}
	g2 := mkTeam("g2", team.RoleGuest, team.StatusCancelled)
	g3 := mkTeam("g3", team.RoleGuest, team.StatusMatchingRequested)
	svc, configs := newTestService(host, g1, g2, g3)
	configs.Configs["2025-06-01"] = DailyConfig{Date: "2025-06-01", MaxApplicants: 4}

	data, err := svc.GuestNotificationData(context.Background(), "g1")
	require.NoError(t, err)
	require.NotNil(t, data.HostTeam)
	assert.Equal(t, "h", data.HostTeam.ID)
	assert.Equal(t, 2, data.GuestCount, "cancelled guests are not counted")
	assert.Equal(t, 4, data.MaxApplicants)
	assert.Len(t, data.GuestMembers, 1)

	_, err = svc.GuestNotificationData(context.Background(), "missing")
	assert.ErrorIs(t, err, team.ErrNotFound)
}
