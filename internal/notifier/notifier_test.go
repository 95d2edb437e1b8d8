package notifier

import (
	"testing"
	"time"

	"github.com/mauv0809/slot-matcher/internal/config"
	"github.com/mauv0809/slot-matcher/internal/team"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTeam(role team.Role, rep string, members ...team.Member) team.Team {
	return team.Team{
		ID:               "t-" + rep,
		Date:             "2025-06-01",
		Time:             "19:00",
		Role:             role,
		Gender:           team.GenderMale,
		Phone:            "01012345678",
		RepresentativeID: rep,
		Members:          members,
	}
}

func TestKindsMatchTemplateKeys(t *testing.T) {
	keys := config.TemplateKeys()
	kinds := Kinds()
	require.Len(t, kinds, len(keys))
	for i, k := range kinds {
		assert.Equal(t, keys[i], string(k))
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "6월 1일", FormatDate("2025-06-01"))
	assert.Equal(t, "12월 25일", FormatDate("2025-12-25"))
	assert.Equal(t, "soon", FormatDate("soon"))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "5,000", FormatAmount(5000))
	assert.Equal(t, "30,000", FormatAmount(30000))
	assert.Equal(t, "0", FormatAmount(0))
}

func TestDisplayIDFallbacks(t *testing.T) {
	assert.Equal(t, "호스트", DisplayID(testTeam(team.RoleHost, "")))
	assert.Equal(t, "게스트", DisplayID(testTeam(team.RoleGuest, "")))
	assert.Equal(t, "kim", DisplayID(testTeam(team.RoleGuest, "kim")))
}

func TestMemberFormatting(t *testing.T) {
	members := []team.Member{
		{Age: 23, University: "서울대", Department: "기계과", Instagram: "kim"},
		{Age: 24, University: "연세대", Department: "경영과"},
	}

	assert.Equal(t, "멤버1 (서울대 기계과) @kim\n멤버2 (연세대 경영과) @미입력", HandleLines(members))
	assert.Equal(t, "서울대 기계과 (23세, @kim)\n연세대 경영과 (24세, @미입력)", MemberLines(members))
	assert.Equal(t, "서울대 기계과 23세\n연세대 경영과 24세", ApplicantLines(members))
	assert.Equal(t, "정보 없음", MemberLines(nil))
}

func TestPositionGuide(t *testing.T) {
	assert.Equal(t, "현재 위치에서 대기해주세요.", PositionGuide(team.GenderFemale))
	assert.Equal(t, "지금 지하로 내려가주세요!", PositionGuide(team.GenderMale))
}

func TestBuilders(t *testing.T) {
	host := testTeam(team.RoleHost, "host1", team.Member{Age: 25, University: "A", Department: "B"})
	guest := testTeam(team.RoleGuest, "", team.Member{Age: 22, University: "C", Department: "D", Instagram: "cd"},
		team.Member{Age: 23, University: "E", Department: "F"})
	guest.Intro = "안녕하세요"

	t.Run("host new applicant", func(t *testing.T) {
		n := HostNewApplicant(host, guest, 2, 3)
		assert.Equal(t, KindHostNewApplicant, n.Kind)
		assert.Equal(t, map[string]string{
			"date":           "6월 1일",
			"time":           "19:00",
			"host_id":        "host1",
			"guest_id":       "게스트",
			"guest_info":     "C D 22세\nE F 23세",
			"guest_intro":    "안녕하세요",
			"curr_guest_num": "2",
			"max_guest_num":  "3",
		}, n.Variables)
	})

	t.Run("final payment request bills per person", func(t *testing.T) {
		n := FinalPaymentRequest(guest, 10000)
		assert.Equal(t, "10,000", n.Variables["amount"])
		assert.Equal(t, "2", n.Variables["num_people"])
		assert.Equal(t, "20,000", n.Variables["total_amount"])
		assert.Nil(t, n.ScheduledAt)
	})

	t.Run("public room first match carries the other team's handles", func(t *testing.T) {
		n := PublicRoomFirstMatch(host, guest)
		assert.Equal(t, "host1", n.Variables["id"])
		assert.Equal(t, "멤버1 (C D) @cd\n멤버2 (E F) @미입력", n.Variables["other_team_insta_info"])
	})

	t.Run("scheduled notifications", func(t *testing.T) {
		at := time.Date(2025, 5, 31, 19, 0, 0, 0, time.UTC)
		r := MatchReminder(host, at)
		require.NotNil(t, r.ScheduledAt)
		assert.True(t, at.Equal(*r.ScheduledAt))

		d := DecisionTime(guest, at)
		assert.Equal(t, map[string]string{"id": "게스트", "position_guide": "지금 지하로 내려가주세요!"}, d.Variables)
		require.NotNil(t, d.ScheduledAt)
	})

	t.Run("guest cancelled before first names the guest", func(t *testing.T) {
		n := GuestCancelledBeforeHostNotify(host, guest)
		assert.Equal(t, host.Phone, n.To)
		assert.Equal(t, "게스트", n.Variables["guest_id"])
	})

	t.Run("guest applied falls back for unnamed host", func(t *testing.T) {
		n := GuestApplied(guest, testTeam(team.RoleHost, ""))
		assert.Equal(t, "알수없음", n.Variables["host_id"])
	})
}
