package task

// Status represents a task's position in the content workflow lifecycle.
type Status string

const (
	StatusPending               Status = "pending"
	StatusAssignedToDepartment  Status = "assigned-to-department"
	StatusInProgress            Status = "in-progress"
	StatusPendingClientApproval Status = "pending-client-approval"
	StatusApproved              Status = "approved"
	StatusPosted                Status = "posted"
	StatusRevisionRequired      Status = "revision-required"
	StatusCompleted             Status = "completed"
)

var validStatuses = map[Status]bool{
	StatusPending:               true,
	StatusAssignedToDepartment:  true,
	StatusInProgress:            true,
	StatusPendingClientApproval: true,
	StatusApproved:              true,
	StatusPosted:                true,
	StatusRevisionRequired:      true,
	StatusCompleted:             true,
}

// Terminal for the normal flow. A later revision request may still pull a
// task out of these states; generic status changes may not.
var terminalStatuses = map[Status]bool{
	StatusPosted:    true,
	StatusCompleted: true,
}

var entryStatuses = map[Status]bool{
	StatusPending:              true,
	StatusAssignedToDepartment: true,
}

// IsTerminal returns true if the status ends the normal flow.
func (s Status) IsTerminal() bool {
	return terminalStatuses[s]
}

// IsEntry returns true if the status is valid for a freshly created task.
func (s Status) IsEntry() bool {
	return entryStatuses[s]
}

// IsValid returns true if the status is a known lifecycle status.
func (s Status) IsValid() bool {
	return validStatuses[s]
}

// String returns the string representation of the status.
func (s Status) String() string {
	return string(s)
}
