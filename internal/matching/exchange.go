package matching

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/slot-matcher/internal/notifier"
	"github.com/mauv0809/slot-matcher/internal/slot"
	"github.com/mauv0809/slot-matcher/internal/team"
)

// FirstMatch pairs the host with one guest and drops every other guest.
//
// A public room pair is asked to exchange handles and answer PROCEED or STOP.
// A private room pair starts the info negotiation, unless SkipInfoExchange sends
// both teams straight to the final payment.
func (c *Controller) FirstMatch(ctx context.Context, req FirstMatchRequest) (*Outcome, error) {
	return c.run(ctx, OpFirstMatch, req.Date, req.Time, req, func(ctx context.Context, sl *slot.Slot, out *Outcome) error {
		if sl.Host == nil {
			return ErrNoHost
		}
		if sl.Status == slot.AdminFirstConfirmed || sl.Status == slot.AdminMatchConfirmed {
			return fmt.Errorf("%w: slot %s is already matched", ErrInvalidTransition, sl.Key())
		}
		guest, ok := sl.Guest(req.GuestID)
		if !ok || guest.Status == team.StatusCancelled {
			return fmt.Errorf("%w: %s", ErrTeamNotInSlot, req.GuestID)
		}
		host := sl.Host

		var u team.Update
		switch {
		case sl.IsPublicRoom:
			if req.SkipInfoExchange {
				log.Warn("Ignoring skip_info_exchange for public room", "slot", sl.Key())
			}
			u = team.ResetProcess()
			u.Status = team.Set(team.StatusFirstConfirmed)
			u.InfoExchangeStatus = team.Set(team.ExchangePending)
		case req.SkipInfoExchange:
			u = team.ResetProcess()
			u.Status = team.Set(team.StatusFirstConfirmed)
			u.ProcessStep = team.Set(team.StepReadyForFinal)
			u.WantsInfo = team.Set(false)
			u.SharesInfo = team.Set(false)
		default:
			u = team.ResetProcess()
			u.Status = team.Set(team.StatusFirstConfirmed)
		}
		if err := c.updatePair(ctx, host, guest, u); err != nil {
			return err
		}

		dropped := c.dropOthers(ctx, sl, guest.ID, out)

		switch {
		case sl.IsPublicRoom:
			c.sendAll(ctx, out,
				notifier.PublicRoomFirstMatch(*host, *guest),
				notifier.PublicRoomFirstMatch(*guest, *host),
			)
			out.Message = fmt.Sprintf("공개방 1차 매칭이 완료되었습니다. 양팀에 상대 인스타그램을 안내했습니다. (탈락 %d팀)", dropped)
		case req.SkipInfoExchange:
			c.sendAll(ctx, out,
				notifier.FinalPaymentRequest(*host, sl.PriceFor(host.Gender)),
				notifier.FinalPaymentRequest(*guest, sl.PriceFor(guest.Gender)),
			)
			out.Message = fmt.Sprintf("1차 매칭 후 정보 교환 없이 최종 결제를 요청했습니다. (탈락 %d팀)", dropped)
		default:
			c.sendAll(ctx, out,
				notifier.FirstMatchComplete(*host, *host, *guest),
				notifier.FirstMatchComplete(*guest, *host, *guest),
			)
			out.Message = fmt.Sprintf("1차 매칭이 완료되었습니다. (탈락 %d팀)", dropped)
		}
		return nil
	})
}

// stepFor decides where self goes once both teams answered the info questions.
func stepFor(self, other team.Team, amount int, link string) (team.ProcessStep, *notifier.Notification) {
	var n notifier.Notification
	switch {
	case self.Wants() && other.Shares():
		n = notifier.PaymentRequest(self, amount, link)
		return team.StepWaitingPayment, &n
	case self.Wants():
		n = notifier.InfoDeniedContinue(self)
		return team.StepWaitingConfirm, &n
	case other.Wants():
		n = notifier.WaitOtherTeam(self)
		return team.StepWaitingOther, &n
	}
	return team.StepCompleted, nil
}

// NextStep moves a first-confirmed private pair into payment or waiting steps based
// on their info answers. Nothing changes while either answer is missing.
func (c *Controller) NextStep(ctx context.Context, ref SlotRef) (*Outcome, error) {
	return c.run(ctx, OpNextStep, ref.Date, ref.Time, ref, func(ctx context.Context, sl *slot.Slot, out *Outcome) error {
		host, guest, err := pair(sl)
		if err != nil {
			return err
		}
		if guest.Status != team.StatusFirstConfirmed {
			return fmt.Errorf("%w: pair is not first confirmed", ErrInvalidTransition)
		}
		if !host.PreferencesSet() || !guest.PreferencesSet() {
			return ErrPreferencesIncomplete
		}
		if host.Step() != "" || guest.Step() != "" {
			return fmt.Errorf("%w: next step already taken", ErrInvalidTransition)
		}

		if !host.Wants() && !guest.Wants() {
			if err := c.updatePair(ctx, host, guest, team.Update{ProcessStep: team.Set(team.StepReadyForFinal)}); err != nil {
				return err
			}
			c.sendAll(ctx, out,
				notifier.FinalPaymentRequest(*host, sl.PriceFor(host.Gender)),
				notifier.FinalPaymentRequest(*guest, sl.PriceFor(guest.Gender)),
			)
			out.Message = "양팀 모두 정보를 원하지 않아 최종 결제를 요청했습니다."
			return nil
		}

		cfg, err := c.settings.Load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load settings: %w", err)
		}
		hostStep, hostMsg := stepFor(*host, *guest, cfg.PaymentAmountFirst, cfg.PaymentLinkFirst)
		guestStep, guestMsg := stepFor(*guest, *host, cfg.PaymentAmountFirst, cfg.PaymentLinkFirst)

		// Both checks run before either write.
		hostUpdate := team.Update{ProcessStep: team.Set(hostStep)}
		guestUpdate := team.Update{ProcessStep: team.Set(guestStep)}
		if err := checkUpdate(*host, hostUpdate); err != nil {
			return err
		}
		if err := checkUpdate(*guest, guestUpdate); err != nil {
			return err
		}
		if _, err := c.update(ctx, host, hostUpdate); err != nil {
			return err
		}
		if _, err := c.update(ctx, guest, guestUpdate); err != nil {
			return err
		}
		for _, n := range []*notifier.Notification{hostMsg, guestMsg} {
			if n != nil {
				c.send(ctx, out, *n)
			}
		}
		out.Message = fmt.Sprintf("다음 스텝을 진행했습니다. (호스트: %s, 게스트: %s)", hostStep, guestStep)
		return nil
	})
}

// ConfirmPayment records the first payment and delivers the other team's profile.
func (c *Controller) ConfirmPayment(ctx context.Context, ref TeamRef) (*Outcome, error) {
	return c.runForTeam(ctx, OpConfirmPayment, ref.TeamID, ref, func(ctx context.Context, sl *slot.Slot, t *team.Team, out *Outcome) error {
		other, err := counterpart(sl, t)
		if err != nil {
			return err
		}
		if t.Step() != team.StepWaitingPayment {
			return fmt.Errorf("%w: team %s is not waiting for payment", ErrInvalidTransition, t.ID)
		}
		if _, err := c.update(ctx, t, team.Update{
			HasPaid:     team.Set(true),
			ProcessStep: team.Set(team.StepWaitingConfirm),
		}); err != nil {
			return err
		}
		c.send(ctx, out, notifier.InfoDelivered(*t, *other))
		out.Message = fmt.Sprintf("%s 팀의 결제를 확인하고 상대 정보를 전달했습니다.", notifier.DisplayID(*t))
		return nil
	})
}

// ConfirmDecision records whether a team goes on after seeing (or being denied) the
// other team's info. Once both sides are through, both get the final payment request.
// Declining cancels the whole slot.
func (c *Controller) ConfirmDecision(ctx context.Context, req DecisionRequest) (*Outcome, error) {
	return c.runForTeam(ctx, OpConfirmDecision, req.TeamID, req, func(ctx context.Context, sl *slot.Slot, t *team.Team, out *Outcome) error {
		other, err := counterpart(sl, t)
		if err != nil {
			return err
		}
		if t.Step() != team.StepWaitingConfirm {
			return fmt.Errorf("%w: team %s is not waiting for a decision", ErrInvalidTransition, t.ID)
		}

		if !req.Proceed {
			return c.cancelPair(ctx, sl, t, other, out)
		}

		if _, err := c.update(ctx, t, team.Update{
			HasConfirmed: team.Set(true),
			ProcessStep:  team.Set(team.StepReadyForFinal),
		}); err != nil {
			return err
		}

		switch other.Step() {
		case team.StepReadyForFinal, team.StepWaitingOther, team.StepCompleted:
			if other.Step() != team.StepReadyForFinal {
				if _, err := c.update(ctx, other, team.Update{ProcessStep: team.Set(team.StepReadyForFinal)}); err != nil {
					return err
				}
			}
			c.sendAll(ctx, out,
				notifier.FinalPaymentRequest(*t, sl.PriceFor(t.Gender)),
				notifier.FinalPaymentRequest(*other, sl.PriceFor(other.Gender)),
			)
			out.Message = "양팀 모두 진행에 동의하여 최종 결제를 요청했습니다."
		default:
			out.Message = fmt.Sprintf("%s 팀의 진행 의사를 확인했습니다. 상대팀의 결정을 기다립니다.", notifier.DisplayID(*t))
		}
		return nil
	})
}

// SetInfoPreference records one negotiation answer for a first-confirmed team.
func (c *Controller) SetInfoPreference(ctx context.Context, req PreferenceRequest) (*Outcome, error) {
	return c.runForTeam(ctx, OpSetInfoPreference, req.TeamID, req, func(ctx context.Context, sl *slot.Slot, t *team.Team, out *Outcome) error {
		if t.Status != team.StatusFirstConfirmed {
			return fmt.Errorf("%w: team %s is not first confirmed", ErrInvalidTransition, t.ID)
		}
		value := team.Null[bool]()
		if req.Value != nil {
			value = team.Set(*req.Value)
		}
		var u team.Update
		switch req.Field {
		case FieldWantsInfo:
			u.WantsInfo = value
		case FieldSharesInfo:
			u.SharesInfo = value
		case FieldHasPaid:
			// has_paid is never null.
			u.HasPaid = team.Set(req.Value != nil && *req.Value)
		case FieldHasConfirmed:
			u.HasConfirmed = value
		}
		updated, err := c.update(ctx, t, u)
		if err != nil {
			return err
		}
		out.Team = updated
		out.Message = fmt.Sprintf("%s 값을 변경했습니다.", req.Field)
		return nil
	})
}

// SetInfoExchangeStatus records a public room team's PROCEED or STOP answer.
func (c *Controller) SetInfoExchangeStatus(ctx context.Context, req ExchangeRequest) (*Outcome, error) {
	return c.runForTeam(ctx, OpSetInfoExchangeStatus, req.TeamID, req, func(ctx context.Context, sl *slot.Slot, t *team.Team, out *Outcome) error {
		if !sl.IsPublicRoom {
			return fmt.Errorf("%w: slot %s is not a public room", ErrInvalidTransition, sl.Key())
		}
		if t.Status != team.StatusFirstConfirmed {
			return fmt.Errorf("%w: team %s is not first confirmed", ErrInvalidTransition, t.ID)
		}
		u := team.Update{InfoExchangeStatus: team.Null[team.ExchangeStatus]()}
		if req.Status != nil {
			u.InfoExchangeStatus = team.Set(*req.Status)
		}
		updated, err := c.update(ctx, t, u)
		if err != nil {
			return err
		}
		out.Team = updated
		out.Message = "정보 교환 응답을 변경했습니다."
		return nil
	})
}

// ResolvePublicRoom acts on both public room answers: any STOP cancels the slot,
// two PROCEEDs move the pair to the final payment.
func (c *Controller) ResolvePublicRoom(ctx context.Context, ref SlotRef) (*Outcome, error) {
	return c.run(ctx, OpResolvePublicRoom, ref.Date, ref.Time, ref, func(ctx context.Context, sl *slot.Slot, out *Outcome) error {
		if !sl.IsPublicRoom {
			return fmt.Errorf("%w: slot %s is not a public room", ErrInvalidTransition, sl.Key())
		}
		host, guest, err := pair(sl)
		if err != nil {
			return err
		}
		if host.Exchange() == team.ExchangeStop || guest.Exchange() == team.ExchangeStop {
			return c.cancelPair(ctx, sl, host, guest, out)
		}
		if host.Exchange() != team.ExchangeProceed || guest.Exchange() != team.ExchangeProceed {
			return ErrAwaitingAnswers
		}
		if err := c.updatePair(ctx, host, guest, team.Update{ProcessStep: team.Set(team.StepReadyForFinal)}); err != nil {
			return err
		}
		c.sendAll(ctx, out,
			notifier.FinalPaymentRequest(*host, sl.PriceFor(host.Gender)),
			notifier.FinalPaymentRequest(*guest, sl.PriceFor(guest.Gender)),
		)
		out.Message = "양팀 모두 진행을 선택하여 최종 결제를 요청했습니다."
		return nil
	})
}

// CancelPublicRoom ends a public room pair and frees the slot.
func (c *Controller) CancelPublicRoom(ctx context.Context, ref SlotRef) (*Outcome, error) {
	return c.run(ctx, OpCancelPublicRoom, ref.Date, ref.Time, ref, func(ctx context.Context, sl *slot.Slot, out *Outcome) error {
		if !sl.IsPublicRoom {
			return fmt.Errorf("%w: slot %s is not a public room", ErrInvalidTransition, sl.Key())
		}
		host, guest, err := pair(sl)
		if err != nil {
			return err
		}
		return c.cancelPair(ctx, sl, host, guest, out)
	})
}

// cancelPair notifies both teams that the process stopped and deletes the slot.
func (c *Controller) cancelPair(ctx context.Context, sl *slot.Slot, a, b *team.Team, out *Outcome) error {
	c.sendAll(ctx, out, notifier.ProcessCancelled(*a), notifier.ProcessCancelled(*b))
	n, err := c.teams.DeleteSlot(ctx, sl.Date, sl.Time)
	if err != nil {
		return fmt.Errorf("failed to delete slot: %w", err)
	}
	out.Message = fmt.Sprintf("매칭 프로세스를 중단하고 슬롯을 비웠습니다. (%d팀 삭제)", n)
	return nil
}
