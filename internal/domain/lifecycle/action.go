package lifecycle

// Action is an event that can move a task through the lifecycle.
type Action string

const (
	ActionSetStatus       Action = "SET_STATUS"
	ActionApprove         Action = "APPROVE"
	ActionReject          Action = "REJECT"
	ActionPost            Action = "POST"
	ActionRequestRevision Action = "REQUEST_REVISION"
)

// String returns the string representation of the action.
func (a Action) String() string {
	return string(a)
}
