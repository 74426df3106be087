// Package view derives the filtered, grouped and aggregated task
// projections the dashboards render. The engine is a pure function of
// its inputs: it is re-run on every incoming snapshot and never mutates
// shared state.
package view

import (
	"sort"
	"time"

	"github.com/contentops/taskflow/internal/clients"
	"github.com/contentops/taskflow/internal/domain/task"
)

// UnknownClient is the group bucket for tasks without a client name.
const UnknownClient = "Unknown Client"

// Query carries one dashboard's view parameters.
type Query struct {
	Identity task.Identity
	Window   Window
	// Month is the reference YYYY-MM for month windows; empty means the
	// current month.
	Month string
	// Status filters to one exact status; empty passes everything.
	Status task.Status
	// Owned is the dashboard's ownership predicate.
	Owned OwnershipPredicate
}

// Group is an ordered run of tasks sharing a client name.
type Group struct {
	Client string      `json:"client"`
	Tasks  []task.Task `json:"tasks"`
}

// View is the derived projection a dashboard consumes.
type View struct {
	// Tasks is the fully filtered, ordered task list.
	Tasks []task.Task `json:"tasks"`
	// Groups is Tasks grouped by client name in first-appearance order.
	Groups []Group `json:"groups"`
	// Counts holds per-status totals over the window-filtered set. They
	// are computed before the status filter applies, so selecting a
	// status never changes its own counter.
	Counts map[task.Status]int `json:"counts"`
	// Total is the window-filtered task count.
	Total int `json:"total"`
}

// Engine computes dashboard views.
type Engine struct {
	now func() time.Time
}

// NewEngine creates an Engine using the wall clock.
func NewEngine() *Engine {
	return &Engine{now: time.Now}
}

// NewEngineWithClock creates an Engine with an injected clock.
func NewEngineWithClock(now func() time.Time) *Engine {
	return &Engine{now: now}
}

// ComputeView runs the projection pipeline: ownership filter,
// active-client gate, time window, status filter, grouping and
// aggregation.
func (e *Engine) ComputeView(tasks map[string]task.Task, active clients.ActivitySet, q Query) View {
	owned := q.Owned
	if owned == nil {
		owned = AllOwnership
	}
	now := e.now()

	// Snapshot maps carry no order; establish a stable encounter order
	// by creation time so grouping is deterministic across recomputes.
	ordered := make([]task.Task, 0, len(tasks))
	for _, t := range tasks {
		ordered = append(ordered, t)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID < ordered[j].ID
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	windowed := make([]task.Task, 0, len(ordered))
	for _, t := range ordered {
		if !owned(t, q.Identity) {
			continue
		}
		// Tasks naming a client are gated on that client being active
		// in some registry; clientless tasks pass through ungated.
		if t.HasClient() && !active.Contains(t.ClientID) && !active.Contains(t.ClientName) {
			continue
		}
		if !inWindow(t.ReferenceDate(), q.Window, q.Month, now) {
			continue
		}
		windowed = append(windowed, t)
	}

	counts := make(map[task.Status]int)
	for _, t := range windowed {
		counts[t.Status]++
	}

	filtered := windowed
	if q.Status != "" {
		filtered = make([]task.Task, 0, len(windowed))
		for _, t := range windowed {
			if t.Status == q.Status {
				filtered = append(filtered, t)
			}
		}
	}

	return View{
		Tasks:  filtered,
		Groups: GroupByClient(filtered),
		Counts: counts,
		Total:  len(windowed),
	}
}

// GroupByClient buckets tasks by client name, preserving the order in
// which each client is first encountered. Tasks without a client name
// all land in the Unknown Client bucket; none are dropped.
func GroupByClient(tasks []task.Task) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, t := range tasks {
		name := t.ClientName
		if name == "" {
			name = UnknownClient
		}
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, Group{Client: name})
		}
		groups[i].Tasks = append(groups[i].Tasks, t)
	}
	return groups
}

// Flatten concatenates grouped tasks back into one list in group order.
func Flatten(groups []Group) []task.Task {
	var out []task.Task
	for _, g := range groups {
		out = append(out, g.Tasks...)
	}
	return out
}
