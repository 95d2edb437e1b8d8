package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/mauv0809/slot-matcher/internal/team"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Korean)

const (
	hostFallback   = "호스트"
	guestFallback  = "게스트"
	noInstagram    = "미입력"
	noMemberInfo   = "정보 없음"
	noIntro        = "소개 없음"
	unknownHostID  = "알수없음"
	femaleGuide    = "현재 위치에서 대기해주세요."
	defaultGuide   = "지금 지하로 내려가주세요!"
	dateInputShape = "2006-01-02"
)

// FormatDate renders YYYY-MM-DD as "M월 D일". Unparseable input is returned as is.
func FormatDate(date string) string {
	d, err := time.Parse(dateInputShape, date)
	if err != nil {
		return date
	}
	return fmt.Sprintf("%d월 %d일", int(d.Month()), d.Day())
}

// FormatAmount renders a KRW amount with digit grouping, e.g. 10,000.
func FormatAmount(amount int) string {
	return printer.Sprintf("%d", amount)
}

// DisplayID is the team's representative id, or a role based fallback.
func DisplayID(t team.Team) string {
	if t.IsHost() {
		return t.DisplayID(hostFallback)
	}
	return t.DisplayID(guestFallback)
}

func instagram(m team.Member) string {
	if m.Instagram == "" {
		return noInstagram
	}
	return m.Instagram
}

// HandleLines lists members as "멤버N (univ major) @handle" for public rooms.
func HandleLines(members []team.Member) string {
	lines := make([]string, len(members))
	for i, m := range members {
		lines[i] = fmt.Sprintf("멤버%d (%s %s) @%s", i+1, m.University, m.Department, instagram(m))
	}
	return strings.Join(lines, "\n")
}

// MemberLines lists members as "univ major (age세, @handle)" for paid info delivery.
func MemberLines(members []team.Member) string {
	if len(members) == 0 {
		return noMemberInfo
	}
	lines := make([]string, len(members))
	for i, m := range members {
		lines[i] = fmt.Sprintf("%s %s (%d세, @%s)", m.University, m.Department, m.Age, instagram(m))
	}
	return strings.Join(lines, "\n")
}

// ApplicantLines lists members as "univ major age세" for the host's applicant alert.
func ApplicantLines(members []team.Member) string {
	if len(members) == 0 {
		return noMemberInfo
	}
	lines := make([]string, len(members))
	for i, m := range members {
		lines[i] = fmt.Sprintf("%s %s %d세", m.University, m.Department, m.Age)
	}
	return strings.Join(lines, "\n")
}

// PositionGuide is the meeting-room instruction sent with the decision prompt.
func PositionGuide(g team.Gender) string {
	if g == team.GenderFemale {
		return femaleGuide
	}
	return defaultGuide
}
