package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/mauv0809/slot-matcher/internal/matching"
	"github.com/mauv0809/slot-matcher/internal/team"
)

// MatchingRequest is the body of POST /api/matching.
type MatchingRequest struct {
	Action           string               `json:"action"`
	Date             string               `json:"date"`
	Time             string               `json:"time"`
	GuestID          string               `json:"guestId"`
	TeamID           string               `json:"teamId"`
	Proceed          bool                 `json:"proceed"`
	SkipInfoExchange bool                 `json:"skipInfoExchange"`
	Field            string               `json:"field"`
	Value            *bool                `json:"value"`
	Status           *team.ExchangeStatus `json:"status"`
}

// MatchingHandler runs one workflow operation and returns its outcome.
func MatchingHandler(wf matching.Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req MatchingRequest
		if !decode(w, r, &req) {
			return
		}
		out, err := runMatching(r.Context(), wf, req)
		if err != nil {
			respondError(w, err)
			return
		}
		respondOK(w, out)
	}
}

func runMatching(ctx context.Context, wf matching.Workflow, req MatchingRequest) (*matching.Outcome, error) {
	ref := matching.SlotRef{Date: req.Date, Time: req.Time}
	teamRef := matching.TeamRef{TeamID: req.TeamID}

	switch req.Action {
	case matching.OpFirstMatch:
		return wf.FirstMatch(ctx, matching.FirstMatchRequest{
			Date: req.Date, Time: req.Time, GuestID: req.GuestID, SkipInfoExchange: req.SkipInfoExchange,
		})
	case matching.OpNextStep:
		return wf.NextStep(ctx, ref)
	case matching.OpConfirmPayment:
		return wf.ConfirmPayment(ctx, teamRef)
	case matching.OpConfirmDecision:
		return wf.ConfirmDecision(ctx, matching.DecisionRequest{TeamID: req.TeamID, Proceed: req.Proceed})
	case matching.OpFinalMatch:
		return wf.FinalMatch(ctx, matching.FinalMatchRequest{Date: req.Date, Time: req.Time, GuestID: req.GuestID})
	case matching.OpCancelFirstMatch:
		return wf.CancelFirstMatch(ctx, ref)
	case matching.OpSetInfoPreference:
		return wf.SetInfoPreference(ctx, matching.PreferenceRequest{
			TeamID: req.TeamID, Field: matching.PreferenceField(req.Field), Value: req.Value,
		})
	case matching.OpSetInfoExchangeStatus:
		return wf.SetInfoExchangeStatus(ctx, matching.ExchangeRequest{TeamID: req.TeamID, Status: req.Status})
	case matching.OpResolvePublicRoom:
		return wf.ResolvePublicRoom(ctx, ref)
	case matching.OpCancelPublicRoom:
		return wf.CancelPublicRoom(ctx, ref)
	case matching.OpVerifyTeam:
		return wf.VerifyTeam(ctx, teamRef)
	case matching.OpRejectVerification:
		return wf.RejectVerification(ctx, teamRef)
	case matching.OpRemoveTeam:
		return wf.RemoveTeam(ctx, teamRef)
	case matching.OpCancelFinalMatch:
		return wf.CancelFinalMatch(ctx, teamRef)
	}
	return nil, fmt.Errorf("%w: unknown action %q", errBadRequest, req.Action)
}
