package conversation

import (
	"github.com/hvacops-nlq/server/internal/nlq/model"
)

// stateTransitions is the adjacency table of the conversation state machine.
// A transition absent here is rejected and the session falls back to the
// querying state instead of jumping arbitrarily.
var stateTransitions = map[model.StateTag][]model.StateTag{
	model.StateGreeting:     {model.StateGreeting, model.StateQuerying, model.StateClarifying},
	model.StateQuerying:     {model.StateQuerying, model.StateClarifying, model.StateFollowingUp, model.StateComparing},
	model.StateClarifying:   {model.StateQuerying, model.StateFollowingUp, model.StateClarifying},
	model.StateFollowingUp:  {model.StateQuerying, model.StateComparing, model.StateDrillingDown, model.StateFollowingUp},
	model.StateComparing:    {model.StateQuerying, model.StateFollowingUp, model.StateDrillingDown},
	model.StateDrillingDown: {model.StateQuerying, model.StateFollowingUp, model.StateComparing},
}

func transitionAllowed(from, to model.StateTag) bool {
	for _, next := range stateTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// desiredState maps the observable features of a turn onto a target state.
// A turn returning zero rows always moves the session to clarifying, from
// any state.
func desiredState(intent string, followUpCategory string, isFollowUp bool, resultCount int) model.StateTag {
	if resultCount == 0 {
		return model.StateClarifying
	}
	if intent == model.IntentGreeting {
		return model.StateGreeting
	}
	if !isFollowUp {
		return model.StateQuerying
	}
	switch followUpCategory {
	case "comparison":
		return model.StateComparing
	case "drill_down":
		return model.StateDrillingDown
	default:
		return model.StateFollowingUp
	}
}

// advance applies one turn to the state machine. Zero-result clarifying wins
// unconditionally; otherwise a transition not present in the adjacency table
// degrades to querying.
func advance(current model.StateTag, desired model.StateTag, resultCount int) model.StateTag {
	if current == "" {
		current = model.StateGreeting
	}
	if resultCount == 0 {
		return model.StateClarifying
	}
	if transitionAllowed(current, desired) {
		return desired
	}
	if transitionAllowed(current, model.StateQuerying) {
		return model.StateQuerying
	}
	return current
}
