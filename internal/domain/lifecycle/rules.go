package lifecycle

import (
	"fmt"

	"github.com/contentops/taskflow/internal/domain/task"
)

// The transition rule set. Approve, reject and post are anchored to one
// source status; a revision request is permitted from anywhere, including
// the terminal statuses, so a posted or completed task can still be
// pulled back for rework. Generic status changes stop at terminal
// statuses.
var permittedFrom = map[Action]map[task.Status]bool{
	ActionApprove: {
		task.StatusPendingClientApproval: true,
	},
	ActionReject: {
		task.StatusPendingClientApproval: true,
	},
	ActionPost: {
		task.StatusApproved: true,
	},
}

// canFire reports whether the action is permitted from the given status.
func canFire(from task.Status, a Action) bool {
	switch a {
	case ActionSetStatus:
		return !from.IsTerminal()
	case ActionRequestRevision:
		return true
	default:
		return permittedFrom[a][from]
	}
}

// checkFire returns an IllegalTransition error when the action is not
// permitted from the given status.
func checkFire(from task.Status, a Action) error {
	if !canFire(from, a) {
		return fmt.Errorf("%w: cannot %s from status %q", task.ErrIllegalTransition, a, from)
	}
	return nil
}
