package matching

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mauv0809/slot-matcher/internal/notifier"
	"github.com/mauv0809/slot-matcher/internal/slot"
	"github.com/mauv0809/slot-matcher/internal/team"
)

// FinalMatch confirms the meeting between the host and a guest, removes everyone
// else and schedules the reminder and decision-time messages.
//
// The guest is usually the first-confirmed one; an unmatched guest may be final
// matched directly.
func (c *Controller) FinalMatch(ctx context.Context, req FinalMatchRequest) (*Outcome, error) {
	return c.run(ctx, OpFinalMatch, req.Date, req.Time, req, func(ctx context.Context, sl *slot.Slot, out *Outcome) error {
		if sl.Host == nil {
			return ErrNoHost
		}
		if sl.Status == slot.AdminMatchConfirmed {
			return fmt.Errorf("%w: slot %s is already final matched", ErrInvalidTransition, sl.Key())
		}
		guest, ok := sl.Guest(req.GuestID)
		if !ok || guest.Status == team.StatusCancelled {
			return fmt.Errorf("%w: %s", ErrTeamNotInSlot, req.GuestID)
		}
		if matched, ok := sl.MatchedGuest(); ok && matched.ID != guest.ID {
			return fmt.Errorf("%w: slot %s is first matched with another guest", ErrInvalidTransition, sl.Key())
		}
		host := sl.Host

		if err := c.updatePair(ctx, host, guest, team.Update{Status: team.Set(team.StatusMatchConfirmed)}); err != nil {
			return err
		}
		dropped := c.dropOthers(ctx, sl, guest.ID, out)

		c.sendAll(ctx, out,
			notifier.FinalMatchComplete(*host, *host, *guest),
			notifier.FinalMatchComplete(*guest, *host, *guest),
		)

		meeting, err := sl.StartsAt(c.slots.Location())
		if err != nil {
			return err
		}
		c.schedule(ctx, out, notifier.KindMatchReminder, meeting.Add(-reminderLead), func(at time.Time) []notifier.Notification {
			return []notifier.Notification{notifier.MatchReminder(*host, at), notifier.MatchReminder(*guest, at)}
		})
		c.schedule(ctx, out, notifier.KindDecisionTime, meeting.Add(decisionDelay), func(at time.Time) []notifier.Notification {
			return []notifier.Notification{notifier.DecisionTime(*host, at), notifier.DecisionTime(*guest, at)}
		})

		msg := fmt.Sprintf("최종 매칭이 완료되었습니다. (탈락 %d팀)", dropped)
		if len(out.Scheduled) > 0 {
			msg += fmt.Sprintf(" 예약 발송: %s.", strings.Join(out.Scheduled, ", "))
		}
		if len(out.Skipped) > 0 {
			msg += fmt.Sprintf(" 발송 시각이 지나 건너뜀: %s.", strings.Join(out.Skipped, ", "))
		}
		out.Message = msg
		return nil
	})
}

// schedule books a timed message unless it would go out within the next few minutes.
func (c *Controller) schedule(ctx context.Context, out *Outcome, kind notifier.Kind, at time.Time, build func(time.Time) []notifier.Notification) {
	if !at.After(c.now().Add(scheduleMargin)) {
		out.Skipped = append(out.Skipped, string(kind))
		return
	}
	if c.sendAll(ctx, out, build(at)...) {
		out.Scheduled = append(out.Scheduled, string(kind))
	}
}

// CancelFirstMatch removes every team in the slot.
func (c *Controller) CancelFirstMatch(ctx context.Context, ref SlotRef) (*Outcome, error) {
	return c.run(ctx, OpCancelFirstMatch, ref.Date, ref.Time, ref, func(ctx context.Context, sl *slot.Slot, out *Outcome) error {
		if len(sl.Teams()) == 0 {
			return fmt.Errorf("%w: slot %s is empty", ErrNoHost, sl.Key())
		}
		n, err := c.teams.DeleteSlot(ctx, sl.Date, sl.Time)
		if err != nil {
			return fmt.Errorf("failed to delete slot: %w", err)
		}
		out.Message = fmt.Sprintf("1차 매칭을 취소하고 슬롯을 비웠습니다. (%d팀 삭제)", n)
		return nil
	})
}

// CancelFinalMatch cancels a confirmed meeting on behalf of one team. Outside the
// refund window both teams get the refund guide; inside it the cancelling team is
// told there is no refund.
func (c *Controller) CancelFinalMatch(ctx context.Context, ref TeamRef) (*Outcome, error) {
	return c.runForTeam(ctx, OpCancelFinalMatch, ref.TeamID, ref, func(ctx context.Context, sl *slot.Slot, t *team.Team, out *Outcome) error {
		if sl.Status != slot.AdminMatchConfirmed {
			return fmt.Errorf("%w: slot %s is not final matched", ErrInvalidTransition, sl.Key())
		}
		other, err := counterpart(sl, t)
		if err != nil {
			return err
		}
		meeting, err := sl.StartsAt(c.slots.Location())
		if err != nil {
			return err
		}

		if meeting.Sub(c.now()) > refundWindow {
			c.sendAll(ctx, out, notifier.RefundGuide(*t), notifier.RefundGuide(*other))
			out.Message = "최종 매칭을 취소했습니다. 양팀에 환불 안내를 보냈습니다."
		} else {
			c.sendAll(ctx, out, notifier.NoRefundNotice(*t), notifier.RefundGuide(*other))
			out.Message = fmt.Sprintf("최종 매칭을 취소했습니다. %s 팀은 환불 불가 기간입니다.", notifier.DisplayID(*t))
		}

		if _, err := c.teams.DeleteSlot(ctx, sl.Date, sl.Time); err != nil {
			return fmt.Errorf("failed to delete slot: %w", err)
		}
		return nil
	})
}
