package domain

import (
	"errors"
	"fmt"
)

// Action is a support-facing button that moves an incident forward.
type Action string

const (
	ActionAccept        Action = "accept"
	ActionStartProgress Action = "start_progress"
	ActionResolve       Action = "resolve"
	ActionReject        Action = "reject"

	// ActionAdminEdit marks status changes made through the admin edit form.
	ActionAdminEdit Action = "admin_edit"
)

// ErrActionNotAvailable is returned when an action is not offered for the current status.
var ErrActionNotAvailable = errors.New("action not available for current status")

var forwardActions = map[IncidentStatus]Action{
	StatusNew:        ActionAccept,
	StatusAccepted:   ActionStartProgress,
	StatusInProgress: ActionResolve,
}

var actionTargets = map[Action]IncidentStatus{
	ActionAccept:        StatusAccepted,
	ActionStartProgress: StatusInProgress,
	ActionResolve:       StatusResolved,
	ActionReject:        StatusRejected,
}

// ParseAction maps user input onto a workflow action.
func ParseAction(s string) (Action, error) {
	key := normalizeToken(s)
	for action := range actionTargets {
		if normalizeToken(string(action)) == key {
			return action, nil
		}
	}
	return "", fmt.Errorf("action %q: %w", s, ErrUnknownValue)
}

// IsTerminal reports whether no further action is offered.
func IsTerminal(status IncidentStatus) bool {
	return status == StatusResolved || status == StatusRejected
}

// NextAction returns the single forward action for status, if any.
func NextAction(status IncidentStatus) (Action, bool) {
	action, ok := forwardActions[status]
	return action, ok
}

// AvailableActions lists the buttons a support agent sees: the forward
// action followed by reject while the incident is not yet resolved.
func AvailableActions(status IncidentStatus) []Action {
	actions := []Action{}
	if next, ok := NextAction(status); ok {
		actions = append(actions, next)
	}
	if !IsTerminal(status) && isKnownStatus(status) {
		actions = append(actions, ActionReject)
	}
	return actions
}

// ApplyAction returns the status reached by performing action from current.
func ApplyAction(current IncidentStatus, action Action) (IncidentStatus, error) {
	for _, candidate := range AvailableActions(current) {
		if candidate == action {
			return actionTargets[action], nil
		}
	}
	return "", fmt.Errorf("%s from %q: %w", action, current, ErrActionNotAvailable)
}

func isKnownStatus(status IncidentStatus) bool {
	for _, s := range allStatuses {
		if s == status {
			return true
		}
	}
	return false
}
