package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentops/taskflow/internal/clients"
	"github.com/contentops/taskflow/internal/domain/task"
)

func testEngine() *Engine {
	return NewEngineWithClock(func() time.Time { return testNow })
}

func taskMap(tasks ...task.Task) map[string]task.Task {
	m := make(map[string]task.Task, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t
	}
	return m
}

func activitySet(ids ...string) clients.ActivitySet {
	s := make(clients.ActivitySet)
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func TestComputeView_MonthWindow(t *testing.T) {
	e := testEngine()
	tasks := taskMap(task.Task{ID: "t1", AssignedTo: "dana", Deadline: "2024-03-15"})

	q := Query{
		Identity: task.Identity{Name: "dana"},
		Window:   WindowMonth,
		Month:    "2024-03",
		Owned:    PersonalOwnership,
	}
	v := e.ComputeView(tasks, nil, q)
	require.Len(t, v.Tasks, 1)

	q.Month = "2024-04"
	v = e.ComputeView(tasks, nil, q)
	assert.Empty(t, v.Tasks)
}

func TestComputeView_OwnershipFilter(t *testing.T) {
	e := testEngine()
	tasks := taskMap(
		task.Task{ID: "t1", AssignedTo: "dana", Deadline: "2024-03-15"},
		task.Task{ID: "t2", AssignedTo: "sam", Deadline: "2024-03-15"},
		task.Task{ID: "t3", AssignedTo: "sam", ShadowAssignedTo: "dana", Deadline: "2024-03-15"},
	)

	v := e.ComputeView(tasks, nil, Query{
		Identity: task.Identity{Name: "dana"},
		Window:   WindowMonth,
		Month:    "2024-03",
		Owned:    PersonalOwnership,
	})

	require.Len(t, v.Tasks, 2)
	var ids []string
	for _, taskItem := range v.Tasks {
		ids = append(ids, taskItem.ID)
	}
	// Shadow visibility keeps t3 on dana's dashboard after hand-off.
	assert.ElementsMatch(t, []string{"t1", "t3"}, ids)
}

func TestComputeView_ActiveClientGate(t *testing.T) {
	e := testEngine()
	tasks := taskMap(
		task.Task{ID: "t1", ClientID: "c1", Deadline: "2024-03-15"},
		task.Task{ID: "t2", ClientID: "c2", Deadline: "2024-03-15"},
		task.Task{ID: "t3", ClientName: "Acme", Deadline: "2024-03-15"},
		task.Task{ID: "t4", Deadline: "2024-03-15"}, // no client reference
	)
	active := activitySet("c1", "Acme")

	v := e.ComputeView(tasks, active, Query{Window: WindowMonth, Month: "2024-03"})

	var ids []string
	for _, taskItem := range v.Tasks {
		ids = append(ids, taskItem.ID)
	}
	// t2's client is inactive; t4 has no client and passes ungated.
	assert.ElementsMatch(t, []string{"t1", "t3", "t4"}, ids)
}

func TestComputeView_CountsIgnoreStatusFilter(t *testing.T) {
	e := testEngine()
	tasks := taskMap(
		task.Task{ID: "t1", Status: task.StatusInProgress, Deadline: "2024-03-10"},
		task.Task{ID: "t2", Status: task.StatusInProgress, Deadline: "2024-03-11"},
		task.Task{ID: "t3", Status: task.StatusApproved, Deadline: "2024-03-12"},
		task.Task{ID: "t4", Status: task.StatusRevisionRequired, Deadline: "2024-03-13"},
	)

	q := Query{Window: WindowMonth, Month: "2024-03"}
	unfiltered := e.ComputeView(tasks, nil, q)

	q.Status = task.StatusApproved
	filtered := e.ComputeView(tasks, nil, q)

	// Selecting a status narrows the list but never the counters.
	require.Len(t, filtered.Tasks, 1)
	assert.Equal(t, unfiltered.Counts, filtered.Counts)
	assert.Equal(t, 2, filtered.Counts[task.StatusInProgress])
	assert.Equal(t, 1, filtered.Counts[task.StatusApproved])
	assert.Equal(t, 1, filtered.Counts[task.StatusRevisionRequired])
	assert.Equal(t, 4, filtered.Total)
}

func TestComputeView_NoReferenceDateExcluded(t *testing.T) {
	e := testEngine()
	tasks := taskMap(task.Task{ID: "t1", Status: task.StatusPending})

	for _, w := range []Window{WindowDay, WindowWeek, WindowMonth} {
		v := e.ComputeView(tasks, nil, Query{Window: w, Month: "2024-03"})
		assert.Empty(t, v.Tasks, "window %s", w)
	}
}

func TestGroupByClient(t *testing.T) {
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tasks := []task.Task{
		{ID: "t1", ClientName: "Acme", CreatedAt: base},
		{ID: "t2", ClientName: "Globex", CreatedAt: base.Add(time.Minute)},
		{ID: "t3", ClientName: "Acme", CreatedAt: base.Add(2 * time.Minute)},
		{ID: "t4", CreatedAt: base.Add(3 * time.Minute)},
		{ID: "t5", CreatedAt: base.Add(4 * time.Minute)},
	}

	groups := GroupByClient(tasks)

	require.Len(t, groups, 3)
	assert.Equal(t, "Acme", groups[0].Client)
	assert.Equal(t, "Globex", groups[1].Client)
	assert.Equal(t, UnknownClient, groups[2].Client)
	assert.Len(t, groups[0].Tasks, 2)
	assert.Len(t, groups[2].Tasks, 2)
}

func TestGroupByClient_RoundTrip(t *testing.T) {
	tasks := []task.Task{
		{ID: "t1", ClientName: "Acme"},
		{ID: "t2"},
		{ID: "t3", ClientName: "Globex"},
		{ID: "t4", ClientName: "Acme"},
		{ID: "t5"},
	}

	flat := Flatten(GroupByClient(tasks))

	require.Len(t, flat, len(tasks))
	seen := make(map[string]bool)
	for _, taskItem := range flat {
		assert.False(t, seen[taskItem.ID], "task %s duplicated", taskItem.ID)
		seen[taskItem.ID] = true
	}
}

func TestComputeView_DeterministicOrder(t *testing.T) {
	e := testEngine()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tasks := taskMap(
		task.Task{ID: "b", CreatedAt: base.Add(time.Hour), Deadline: "2024-03-15"},
		task.Task{ID: "a", CreatedAt: base, Deadline: "2024-03-15"},
		task.Task{ID: "c", CreatedAt: base, Deadline: "2024-03-15"},
	)

	v := e.ComputeView(tasks, nil, Query{Window: WindowMonth, Month: "2024-03"})

	require.Len(t, v.Tasks, 3)
	assert.Equal(t, "a", v.Tasks[0].ID)
	assert.Equal(t, "c", v.Tasks[1].ID)
	assert.Equal(t, "b", v.Tasks[2].ID)
}
