package view

import (
	"github.com/contentops/taskflow/internal/domain/task"
)

// OwnershipPredicate decides whether a task is visible to an identity.
// Each dashboard supplies its own; the engine carries one implementation
// of the pipeline regardless of which fields a dashboard matches on.
type OwnershipPredicate func(t task.Task, id task.Identity) bool

// PersonalOwnership matches tasks the employee currently works on, plus
// tasks they shadow after handing off a revision.
func PersonalOwnership(t task.Task, id task.Identity) bool {
	if id.Name == "" {
		return false
	}
	return t.AssignedTo == id.Name || t.ShadowAssignedTo == id.Name
}

// DepartmentOwnership matches tasks currently owned by the identity's
// department, plus tasks the employee shadows from another department.
func DepartmentOwnership(t task.Task, id task.Identity) bool {
	if id.Department != "" && t.Department == id.Department {
		return true
	}
	return id.Name != "" && t.ShadowAssignedTo == id.Name
}

// AllOwnership passes every task; used by overview dashboards.
func AllOwnership(task.Task, task.Identity) bool {
	return true
}
