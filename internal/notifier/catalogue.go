package notifier

import (
	"strconv"
	"time"

	"github.com/mauv0809/slot-matcher/internal/team"
)

func slotNotification(kind Kind, t team.Team) Notification {
	return Notification{
		Kind: kind,
		To:   t.Phone,
		Variables: map[string]string{
			"date": FormatDate(t.Date),
			"time": t.Time,
		},
	}
}

func (n Notification) with(key, value string) Notification {
	n.Variables[key] = value
	return n
}

func (n Notification) at(when time.Time) Notification {
	n.ScheduledAt = &when
	return n
}

func HostRegistered(host team.Team) Notification {
	return slotNotification(KindHostRegistered, host).with("host_id", DisplayID(host))
}

func GuestApplied(guest, host team.Team) Notification {
	return slotNotification(KindGuestApplied, guest).
		with("host_id", host.DisplayID(unknownHostID)).
		with("guest_id", DisplayID(guest))
}

// HostNewApplicant tells the host about a verified guest; current counts active guests.
func HostNewApplicant(host, guest team.Team, current, capacity int) Notification {
	intro := guest.Intro
	if intro == "" {
		intro = noIntro
	}
	return slotNotification(KindHostNewApplicant, host).
		with("host_id", host.DisplayID(unknownHostID)).
		with("guest_id", DisplayID(guest)).
		with("guest_info", ApplicantLines(guest.Members)).
		with("guest_intro", intro).
		with("curr_guest_num", strconv.Itoa(current)).
		with("max_guest_num", strconv.Itoa(capacity))
}

func FirstMatchComplete(to, host, guest team.Team) Notification {
	return slotNotification(KindFirstMatchComplete, to).
		with("host_id", DisplayID(host)).
		with("guest_id", DisplayID(guest))
}

// PublicRoomFirstMatch sends the other team's handles to to.
func PublicRoomFirstMatch(to, other team.Team) Notification {
	return slotNotification(KindPublicRoomFirstMatch, to).
		with("id", DisplayID(to)).
		with("other_team_insta_info", HandleLines(other.Members))
}

func NotSelected(guest team.Team) Notification {
	return slotNotification(KindNotSelected, guest)
}

func PaymentRequest(t team.Team, amount int, link string) Notification {
	return slotNotification(KindPaymentRequest, t).
		with("fee", FormatAmount(amount)).
		with("payment_link", link)
}

// InfoDelivered sends the other team's member details to the payer.
func InfoDelivered(payer, other team.Team) Notification {
	return slotNotification(KindInfoDelivered, payer).with("member_info", MemberLines(other.Members))
}

func InfoDeniedContinue(t team.Team) Notification {
	return slotNotification(KindInfoDeniedContinue, t)
}

func WaitOtherTeam(t team.Team) Notification {
	return slotNotification(KindWaitOtherTeam, t)
}

// FinalPaymentRequest bills price per person for the whole team.
func FinalPaymentRequest(t team.Team, price int) Notification {
	n := t.Headcount()
	return slotNotification(KindFinalPaymentRequest, t).
		with("amount", FormatAmount(price)).
		with("num_people", strconv.Itoa(n)).
		with("total_amount", FormatAmount(price*n))
}

func FinalMatchComplete(to, host, guest team.Team) Notification {
	return slotNotification(KindFinalMatchComplete, to).
		with("host_id", DisplayID(host)).
		with("guest_id", DisplayID(guest))
}

func ProcessCancelled(t team.Team) Notification {
	return slotNotification(KindProcessCancelled, t)
}

func HostCancelledAll(t team.Team) Notification {
	return slotNotification(KindHostCancelledAll, t)
}

func GuestCancelledAfterFirst(guest team.Team) Notification {
	return slotNotification(KindGuestCancelledAfterFirst, guest)
}

func GuestCancelledHostNotify(host team.Team) Notification {
	return slotNotification(KindGuestCancelledHostNotify, host)
}

func GuestCancelledBeforeFirst(guest team.Team) Notification {
	return slotNotification(KindGuestCancelledBeforeFirst, guest)
}

func GuestCancelledBeforeHostNotify(host, guest team.Team) Notification {
	return slotNotification(KindGuestCancelledBeforeHostNotify, host).with("guest_id", DisplayID(guest))
}

func RefundGuide(t team.Team) Notification {
	return slotNotification(KindRefundGuide, t)
}

func NoRefundNotice(t team.Team) Notification {
	return slotNotification(KindNoRefundNotice, t)
}

func MatchReminder(t team.Team, at time.Time) Notification {
	return slotNotification(KindMatchReminder, t).at(at)
}

func StudentIDRejected(t team.Team) Notification {
	return slotNotification(KindStudentIDRejected, t)
}

// DecisionTime carries no date; the prompt only names the team and where to go.
func DecisionTime(t team.Team, at time.Time) Notification {
	return Notification{
		Kind: KindDecisionTime,
		To:   t.Phone,
		Variables: map[string]string{
			"id":             DisplayID(t),
			"position_guide": PositionGuide(t.Gender),
		},
	}.at(at)
}
