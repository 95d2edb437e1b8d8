package notifier

import (
	"context"
	"time"
)

// Kind names a business notification. Values match the template keys in config.
type Kind string

const (
	KindHostRegistered                 Kind = "HOST_REGISTERED"
	KindGuestApplied                   Kind = "GUEST_APPLIED"
	KindHostNewApplicant               Kind = "HOST_NEW_APPLICANT"
	KindFirstMatchComplete             Kind = "FIRST_MATCH_COMPLETE"
	KindPublicRoomFirstMatch           Kind = "PUBLIC_ROOM_FIRST_MATCH"
	KindNotSelected                    Kind = "NOT_SELECTED"
	KindPaymentRequest                 Kind = "PAYMENT_REQUEST"
	KindInfoDelivered                  Kind = "INFO_DELIVERED"
	KindInfoDeniedContinue             Kind = "INFO_DENIED_CONTINUE"
	KindWaitOtherTeam                  Kind = "WAIT_OTHER_TEAM"
	KindFinalPaymentRequest            Kind = "FINAL_PAYMENT_REQUEST"
	KindFinalMatchComplete             Kind = "FINAL_MATCH_COMPLETE"
	KindProcessCancelled               Kind = "PROCESS_CANCELLED"
	KindHostCancelledAll               Kind = "HOST_CANCELLED_ALL"
	KindGuestCancelledAfterFirst       Kind = "GUEST_CANCELLED_AFTER_FIRST"
	KindGuestCancelledHostNotify       Kind = "GUEST_CANCELLED_HOST_NOTIFY"
	KindGuestCancelledBeforeFirst      Kind = "GUEST_CANCELLED_BEFORE_FIRST"
	KindGuestCancelledBeforeHostNotify Kind = "GUEST_CANCELLED_BEFORE_HOST_NOTIFY"
	KindRefundGuide                    Kind = "REFUND_GUIDE"
	KindNoRefundNotice                 Kind = "NO_REFUND_NOTICE"
	KindMatchReminder                  Kind = "MATCH_REMINDER"
	KindStudentIDRejected              Kind = "STUDENT_ID_REJECTED"
	KindDecisionTime                   Kind = "DECISION_TIME"
)

// Kinds returns every kind in catalogue order.
func Kinds() []Kind {
	return []Kind{
		KindHostRegistered, KindGuestApplied, KindHostNewApplicant,
		KindFirstMatchComplete, KindPublicRoomFirstMatch, KindNotSelected,
		KindPaymentRequest, KindInfoDelivered, KindInfoDeniedContinue, KindWaitOtherTeam,
		KindFinalPaymentRequest, KindFinalMatchComplete,
		KindProcessCancelled, KindHostCancelledAll, KindGuestCancelledAfterFirst,
		KindGuestCancelledHostNotify, KindGuestCancelledBeforeFirst, KindGuestCancelledBeforeHostNotify,
		KindRefundGuide, KindNoRefundNotice, KindMatchReminder, KindStudentIDRejected,
		KindDecisionTime,
	}
}

// Notification is one templated message for one phone number.
// Variables are keyed by bare name; the gateway adds the #{} wrapping.
type Notification struct {
	Kind        Kind              `json:"kind"`
	To          string            `json:"to"`
	Variables   map[string]string `json:"variables"`
	ScheduledAt *time.Time        `json:"scheduled_at,omitempty"`
}

// Notifier delivers business notifications to teams.
// This decouples the workflow from the messaging provider.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}
