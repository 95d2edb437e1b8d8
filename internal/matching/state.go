package matching

import (
	"fmt"

	"github.com/mauv0809/slot-matcher/internal/team"
)

var statusTransitions = map[team.Status][]team.Status{
	team.StatusPending: {
		team.StatusHostRegistered, team.StatusMatchingRequested,
		team.StatusFirstConfirmed, team.StatusMatchConfirmed, team.StatusCancelled,
	},
	team.StatusHostRegistered: {
		team.StatusFirstConfirmed, team.StatusMatchConfirmed, team.StatusPending, team.StatusCancelled,
	},
	team.StatusMatchingRequested: {
		team.StatusFirstConfirmed, team.StatusMatchConfirmed, team.StatusPending, team.StatusCancelled,
	},
	team.StatusFirstConfirmed: {
		team.StatusMatchConfirmed, team.StatusPending, team.StatusCancelled,
	},
	team.StatusMatchConfirmed: {
		team.StatusPending, team.StatusCancelled,
	},
}

// "" is a team that has not entered the negotiation yet.
var stepTransitions = map[team.ProcessStep][]team.ProcessStep{
	"": {
		team.StepWaitingPayment, team.StepWaitingConfirm, team.StepWaitingOther,
		team.StepReadyForFinal, team.StepCompleted, team.StepCancelled,
	},
	team.StepWaitingPayment: {team.StepWaitingConfirm, team.StepCancelled},
	team.StepWaitingConfirm: {team.StepReadyForFinal, team.StepCancelled},
	team.StepWaitingOther:   {team.StepReadyForFinal, team.StepCancelled},
	team.StepCompleted:      {team.StepReadyForFinal, team.StepCancelled},
	team.StepReadyForFinal:  {team.StepCompleted, team.StepCancelled},
}

// CanTransition reports whether a team may move from one status to another.
// Staying in the same status is always allowed; CANCELLED is terminal.
func CanTransition(from, to team.Status) bool {
	if from == to {
		return true
	}
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// CanStep reports whether a team may move between process steps. Clearing the
// step is always allowed.
func CanStep(from, to team.ProcessStep) bool {
	if from == to || to == "" {
		return true
	}
	for _, s := range stepTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// checkUpdate rejects an update that would move t through a forbidden transition.
func checkUpdate(t team.Team, u team.Update) error {
	status := t.Status
	if u.Status.Set {
		if !CanTransition(t.Status, u.Status.Value) {
			return fmt.Errorf("%w: team %s %s -> %s", ErrInvalidTransition, t.ID, t.Status, u.Status.Value)
		}
		status = u.Status.Value
	}
	if u.ProcessStep.Set && !u.ProcessStep.Null {
		to := u.ProcessStep.Value
		if status != team.StatusFirstConfirmed {
			return fmt.Errorf("%w: team %s cannot enter %s while %s", ErrInvalidTransition, t.ID, to, status)
		}
		if !CanStep(t.Step(), to) {
			return fmt.Errorf("%w: team %s step %s -> %s", ErrInvalidTransition, t.ID, stepName(t.Step()), to)
		}
	}
	return nil
}

func stepName(s team.ProcessStep) string {
	if s == "" {
		return "none"
	}
	return string(s)
}
