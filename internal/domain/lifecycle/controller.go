package lifecycle

import (
	"fmt"
	"strings"
	"time"

	"github.com/contentops/taskflow/internal/domain/task"
)

// AdInfo carries the paid-promotion details attached to a post action.
type AdInfo struct {
	Type task.AdType `json:"adType"`
	Cost float64     `json:"adCost"`
}

// Controller owns the legal status transitions for a single task. Every
// operation validates against the task's current state and returns one
// multi-field patch; on any error the returned fields are nil and nothing
// is written, so a transition never has a partial effect.
//
// The controller takes no locks. Concurrent writers are reconciled by the
// store's last-write-wins-per-field merge; the controller's contract is
// that each patch is internally consistent (e.g. a revision-required
// status always travels with its revision message).
type Controller struct {
	now func() time.Time
}

// NewController creates a Controller using the wall clock.
func NewController() *Controller {
	return &Controller{now: time.Now}
}

// NewControllerWithClock creates a Controller with an injected clock.
func NewControllerWithClock(now func() time.Time) *Controller {
	return &Controller{now: now}
}

func (c *Controller) stamp() string {
	return c.now().UTC().Format(time.RFC3339)
}

// SetStatus moves a task to an arbitrary non-terminal target status,
// stamping the derived timestamps for statuses that carry them.
func (c *Controller) SetStatus(t task.Task, to task.Status, actor task.Identity) (task.Fields, error) {
	if !to.IsValid() {
		return nil, fmt.Errorf("%w: unknown status %q", task.ErrValidation, to)
	}
	if err := checkFire(t.Status, ActionSetStatus); err != nil {
		return nil, err
	}

	fields := task.Fields{
		task.FieldStatus:      string(to),
		task.FieldLastUpdated: c.stamp(),
	}

	switch to {
	case task.StatusInProgress:
		// First entry only; a task cycling back through in-progress
		// after a revision keeps its original start time.
		if t.StartedAt == nil {
			fields[task.FieldStartedAt] = c.stamp()
		}
	case task.StatusPendingClientApproval:
		fields[task.FieldSubmittedAt] = c.stamp()
		fields[task.FieldSubmittedBy] = actor.Name
	case task.StatusCompleted:
		fields[task.FieldCompletedAt] = c.stamp()
	}

	return fields, nil
}

// Approve moves a task awaiting client approval to approved. Revision
// bookkeeping is left untouched.
func (c *Controller) Approve(t task.Task, actor task.Identity) (task.Fields, error) {
	if err := checkFire(t.Status, ActionApprove); err != nil {
		return nil, err
	}

	return task.Fields{
		task.FieldStatus:      string(task.StatusApproved),
		task.FieldApprovedAt:  c.stamp(),
		task.FieldApprovedBy:  actor.Name,
		task.FieldLastUpdated: c.stamp(),
	}, nil
}

// Reject sends a task awaiting client approval back for revision. The
// note is mandatory: a revision-required task must never be visible
// without its revision message.
func (c *Controller) Reject(t task.Task, note string, actor task.Identity) (task.Fields, error) {
	if err := checkFire(t.Status, ActionReject); err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, fmt.Errorf("%w: revision note is required", task.ErrValidation)
	}

	department := t.OriginalDepartment
	if department == "" {
		department = t.Department
	}

	return task.Fields{
		task.FieldStatus:               string(task.StatusRevisionRequired),
		task.FieldRevisionMessage:      note,
		task.FieldRevisionCount:        t.RevisionCount + 1,
		task.FieldRevisionRequestedBy:  actor.Name,
		task.FieldRevisionAcknowledged: false,
		task.FieldLastRevisionAt:       c.stamp(),
		task.FieldDepartment:           department,
		task.FieldLastUpdated:          c.stamp(),
	}, nil
}

// Post publishes an approved task. With ad info the ad type must be set
// and the cost positive; without it the task is recorded as run unpaid.
func (c *Controller) Post(t task.Task, ad *AdInfo, actor task.Identity) (task.Fields, error) {
	if err := checkFire(t.Status, ActionPost); err != nil {
		return nil, err
	}

	fields := task.Fields{
		task.FieldStatus:      string(task.StatusPosted),
		task.FieldPostedAt:    c.stamp(),
		task.FieldPostedBy:    actor.Name,
		task.FieldLastUpdated: c.stamp(),
	}

	if ad == nil {
		fields[task.FieldAdsRun] = false
		return fields, nil
	}
	if !ad.Type.IsValid() {
		return nil, fmt.Errorf("%w: ad type is required", task.ErrValidation)
	}
	if ad.Cost <= 0 {
		return nil, fmt.Errorf("%w: ad cost must be positive", task.ErrValidation)
	}

	fields[task.FieldAdsRun] = true
	fields[task.FieldAdType] = string(ad.Type)
	fields[task.FieldAdCost] = ad.Cost

	return fields, nil
}

// RequestRevision is the cross-department hand-off. The task's working
// ownership returns to the department and employee that produced the
// work, while the requesting identity is recorded both as the revision
// requester and on the shadow-visibility field so their dashboard keeps
// tracking the task after the hand-off.
//
// fallbackDepartment applies only when the task carries no
// originalDepartment; the controller never invents one. With both
// absent, the current department keeps the task.
func (c *Controller) RequestRevision(t task.Task, note string, from task.Identity, fallbackDepartment string) (task.Fields, error) {
	if err := checkFire(t.Status, ActionRequestRevision); err != nil {
		return nil, err
	}
	note = strings.TrimSpace(note)
	if note == "" {
		return nil, fmt.Errorf("%w: revision note is required", task.ErrValidation)
	}

	department := t.OriginalDepartment
	if department == "" {
		department = fallbackDepartment
	}
	if department == "" {
		department = t.Department
	}

	assignee := t.SubmittedBy
	if assignee == "" {
		assignee = t.AssignedTo
	}

	return task.Fields{
		task.FieldStatus:               string(task.StatusRevisionRequired),
		task.FieldRevisionMessage:      note,
		task.FieldRevisionCount:        t.RevisionCount + 1,
		task.FieldRevisionRequestedBy:  from.Name,
		task.FieldRevisionAcknowledged: false,
		task.FieldLastRevisionAt:       c.stamp(),
		task.FieldDepartment:           department,
		task.FieldAssignedTo:           assignee,
		task.FieldShadowAssignedTo:     from.Name,
		task.FieldLastUpdated:          c.stamp(),
	}, nil
}
