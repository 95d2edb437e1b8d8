package matching

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/slot-matcher/internal/notifier"
	"github.com/mauv0809/slot-matcher/internal/slot"
	"github.com/mauv0809/slot-matcher/internal/team"
	"github.com/mauv0809/slot-matcher/internal/validation"
)

// RegisterTeam signs a team up for a slot. The first team becomes the host; later
// teams apply as guests and are announced to the host once verified.
func (c *Controller) RegisterTeam(ctx context.Context, reg Registration) (*Outcome, error) {
	return c.run(ctx, OpRegisterTeam, reg.Date, reg.Time, reg, func(ctx context.Context, sl *slot.Slot, out *Outcome) error {
		switch sl.BookingStatus {
		case slot.BookingClosed, slot.BookingFull, slot.BookingFirstConfirmed, slot.BookingMatchConfirmed:
			return fmt.Errorf("%w: %s is %s", ErrSlotUnavailable, sl.Key(), sl.BookingStatus)
		}

		t := &team.Team{
			Date:             reg.Date,
			Time:             reg.Time,
			Gender:           reg.Gender,
			Phone:            validation.NormalizePhone(reg.Phone),
			RepresentativeID: reg.RepresentativeID,
			Intro:            reg.Intro,
			StudentIDURL:     reg.StudentIDURL,
			Members:          reg.Members,
		}
		if sl.Host == nil {
			t.Role = team.RoleHost
			t.Status = team.StatusHostRegistered
			t.IsPublicRoom = reg.IsPublicRoom
		} else {
			t.Role = team.RoleGuest
			t.Status = team.StatusMatchingRequested
		}
		for i := range t.Members {
			t.Members[i].Position = i + 1
		}

		if err := c.teams.Create(ctx, t); err != nil {
			return fmt.Errorf("failed to register team: %w", err)
		}
		out.Team = t

		if t.IsHost() {
			c.send(ctx, out, notifier.HostRegistered(*t))
			out.Message = "호스트로 등록되었습니다."
			return nil
		}
		out.Message = "매칭 신청이 완료되었습니다. 학생증 인증 후 호스트에게 전달됩니다."
		return nil
	})
}

// VerifyTeam marks the student id as checked. A verified guest is announced to the host.
func (c *Controller) VerifyTeam(ctx context.Context, ref TeamRef) (*Outcome, error) {
	return c.runForTeam(ctx, OpVerifyTeam, ref.TeamID, ref, func(ctx context.Context, sl *slot.Slot, t *team.Team, out *Outcome) error {
		updated, err := c.update(ctx, t, team.Update{IsVerified: team.Set(true)})
		if err != nil {
			return err
		}
		out.Team = updated
		out.Message = fmt.Sprintf("%s 팀을 인증했습니다.", notifier.DisplayID(*updated))

		if updated.IsHost() || sl.Host == nil {
			return nil
		}
		c.sendAll(ctx, out,
			notifier.GuestApplied(*updated, *sl.Host),
			notifier.HostNewApplicant(*sl.Host, *updated, len(sl.ActiveGuests()), sl.MaxApplicants),
		)
		return nil
	})
}

// RejectVerification tells the team its student id was rejected and removes it.
func (c *Controller) RejectVerification(ctx context.Context, ref TeamRef) (*Outcome, error) {
	return c.runForTeam(ctx, OpRejectVerification, ref.TeamID, ref, func(ctx context.Context, sl *slot.Slot, t *team.Team, out *Outcome) error {
		c.send(ctx, out, notifier.StudentIDRejected(*t))
		if err := c.teams.Delete(ctx, t.ID); err != nil {
			return fmt.Errorf("failed to delete team: %w", err)
		}
		if t.IsHost() && len(sl.Guests) > 0 {
			log.Warn("Rejected host leaves guests without a host", "slot", sl.Key(), "guests", len(sl.Guests))
		}
		out.Message = fmt.Sprintf("%s 팀의 학생증을 반려하고 삭제했습니다.", notifier.DisplayID(*t))
		return nil
	})
}

// RemoveTeam deletes a team on an admin's request. Removing the host empties the
// slot; removing the matched guest puts the host back to PENDING.
func (c *Controller) RemoveTeam(ctx context.Context, ref TeamRef) (*Outcome, error) {
	return c.runForTeam(ctx, OpRemoveTeam, ref.TeamID, ref, func(ctx context.Context, sl *slot.Slot, t *team.Team, out *Outcome) error {
		if t.IsHost() {
			for _, other := range sl.Teams() {
				if other.Status != team.StatusCancelled {
					c.send(ctx, out, notifier.HostCancelledAll(other))
				}
			}
			n, err := c.teams.DeleteSlot(ctx, sl.Date, sl.Time)
			if err != nil {
				return fmt.Errorf("failed to delete slot: %w", err)
			}
			out.Message = fmt.Sprintf("호스트가 삭제되어 슬롯을 비웠습니다. (%d팀 삭제)", n)
			return nil
		}

		matched := t.Status == team.StatusFirstConfirmed || t.Status == team.StatusMatchConfirmed
		slotMatched := sl.Status == slot.AdminFirstConfirmed || sl.Status == slot.AdminMatchConfirmed
		if sl.Host != nil {
			if matched || slotMatched {
				c.sendAll(ctx, out,
					notifier.GuestCancelledAfterFirst(*t),
					notifier.GuestCancelledHostNotify(*sl.Host),
				)
			} else {
				c.sendAll(ctx, out,
					notifier.GuestCancelledBeforeFirst(*t),
					notifier.GuestCancelledBeforeHostNotify(*sl.Host, *t),
				)
			}
		}

		if err := c.teams.Delete(ctx, t.ID); err != nil && !errors.Is(err, team.ErrNotFound) {
			return fmt.Errorf("failed to delete team: %w", err)
		}
		out.Message = fmt.Sprintf("%s 팀을 삭제했습니다.", notifier.DisplayID(*t))

		if matched && sl.Host != nil {
			if _, err := c.update(ctx, sl.Host, team.ResetProcess()); err != nil {
				out.Warnings = append(out.Warnings, fmt.Sprintf("호스트 상태 초기화 실패: %v", err))
				return nil
			}
			out.Message += " 호스트를 대기 상태로 되돌렸습니다."
		}
		return nil
	})
}
