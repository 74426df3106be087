package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentops/taskflow/internal/clients"
	"github.com/contentops/taskflow/internal/domain/task"
	"github.com/contentops/taskflow/internal/view"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakePatcher struct {
	patches []map[string]any
	err     error
}

func (f *fakePatcher) Patch(_ context.Context, _, _ string, fields map[string]any) error {
	if f.err != nil {
		return f.err
	}
	f.patches = append(f.patches, fields)
	return nil
}

func testTime(hour int) time.Time {
	return time.Date(2024, 3, 15, hour, 0, 0, 0, time.UTC)
}

func revisionTask(id string, count int) task.Task {
	return task.Task{
		ID:              id,
		AssignedTo:      "dana",
		Status:          task.StatusRevisionRequired,
		RevisionMessage: "fix the header",
		RevisionCount:   count,
	}
}

func taskMap(tasks ...task.Task) map[string]task.Task {
	m := make(map[string]task.Task, len(tasks))
	for _, t := range tasks {
		m[t.ID] = t
	}
	return m
}

func TestAlerts_CandidateSet(t *testing.T) {
	r := NewReconciler(&fakePatcher{}, "contentTasks", nopLogger{})
	dana := task.Identity{Name: "dana"}

	acknowledged := revisionTask("t2", 1)
	acknowledged.RevisionAcknowledged = true

	noMessage := revisionTask("t3", 1)
	noMessage.RevisionMessage = ""

	wrongStatus := revisionTask("t4", 1)
	wrongStatus.Status = task.StatusInProgress

	otherOwner := revisionTask("t5", 1)
	otherOwner.AssignedTo = "sam"

	tasks := taskMap(revisionTask("t1", 1), acknowledged, noMessage, wrongStatus, otherOwner)

	alerts := r.Alerts(tasks, nil, dana, view.PersonalOwnership)

	require.Len(t, alerts, 1)
	assert.Equal(t, "t1", alerts[0].ID)
}

func TestAlerts_InactiveClientGated(t *testing.T) {
	r := NewReconciler(&fakePatcher{}, "contentTasks", nopLogger{})

	gated := revisionTask("t1", 1)
	gated.ClientID = "c1"
	clientless := revisionTask("t2", 1)

	tasks := taskMap(gated, clientless)
	active := make(clients.ActivitySet) // c1 not active

	alerts := r.Alerts(tasks, active, task.Identity{Name: "dana"}, view.PersonalOwnership)

	require.Len(t, alerts, 1)
	assert.Equal(t, "t2", alerts[0].ID)
}

func TestAcknowledge_SuppressesInstantly(t *testing.T) {
	patcher := &fakePatcher{}
	r := NewReconciler(patcher, "contentTasks", nopLogger{})
	dana := task.Identity{Name: "dana"}
	tasks := taskMap(revisionTask("t1", 2))

	require.Len(t, r.Alerts(tasks, nil, dana, view.PersonalOwnership), 1)

	err := r.Acknowledge(context.Background(), tasks["t1"], dana)
	require.NoError(t, err)

	// Hidden before any remote confirmation lands in a snapshot.
	assert.Empty(t, r.Alerts(tasks, nil, dana, view.PersonalOwnership))

	// The remote write carries the acknowledger.
	require.Len(t, patcher.patches, 1)
	assert.Equal(t, true, patcher.patches[0][task.FieldRevisionAcknowledged])
	assert.Equal(t, "dana", patcher.patches[0][task.FieldAcknowledgedBy])
}

func TestAcknowledge_SuppressionIsPerIdentity(t *testing.T) {
	r := NewReconciler(&fakePatcher{}, "contentTasks", nopLogger{})
	shared := revisionTask("t1", 1)
	shared.ShadowAssignedTo = "morgan"
	tasks := taskMap(shared)

	require.NoError(t, r.Acknowledge(context.Background(), shared, task.Identity{Name: "dana"}))

	// morgan's session still shows the (remotely unconfirmed) alert.
	assert.Empty(t, r.Alerts(tasks, nil, task.Identity{Name: "dana"}, view.PersonalOwnership))
	assert.Len(t, r.Alerts(tasks, nil, task.Identity{Name: "morgan"}, view.PersonalOwnership), 1)
}

func TestAcknowledge_StoreFailureKeepsSuppression(t *testing.T) {
	patcher := &fakePatcher{err: task.ErrStoreUnavailable}
	r := NewReconciler(patcher, "contentTasks", nopLogger{})
	dana := task.Identity{Name: "dana"}
	tasks := taskMap(revisionTask("t1", 1))

	err := r.Acknowledge(context.Background(), tasks["t1"], dana)
	require.Error(t, err)
	assert.True(t, errors.Is(err, task.ErrStoreUnavailable))

	// Local suppression still applies; the user already dismissed it.
	assert.Empty(t, r.Alerts(tasks, nil, dana, view.PersonalOwnership))
}

func TestNewRevisionReappears(t *testing.T) {
	r := NewReconciler(&fakePatcher{}, "contentTasks", nopLogger{})
	dana := task.Identity{Name: "dana"}
	tasks := taskMap(revisionTask("t1", 2))

	require.NoError(t, r.Acknowledge(context.Background(), tasks["t1"], dana))
	assert.Empty(t, r.Alerts(tasks, nil, dana, view.PersonalOwnership))

	// A later snapshot carries a new revision for the same task.
	bumped := taskMap(revisionTask("t1", 3))
	r.Reconcile(bumped)

	alerts := r.Alerts(bumped, nil, dana, view.PersonalOwnership)
	require.Len(t, alerts, 1)
	assert.Equal(t, "t1", alerts[0].ID)
}

func TestReconcile_ClearsConfirmedSuppression(t *testing.T) {
	r := NewReconciler(&fakePatcher{}, "contentTasks", nopLogger{})
	dana := task.Identity{Name: "dana"}
	tasks := taskMap(revisionTask("t1", 1))

	require.NoError(t, r.Acknowledge(context.Background(), tasks["t1"], dana))

	confirmed := revisionTask("t1", 1)
	confirmed.RevisionAcknowledged = true
	r.Reconcile(taskMap(confirmed))

	// Suppression is gone but the remote flag now hides the alert.
	assert.Empty(t, r.Alerts(taskMap(confirmed), nil, dana, view.PersonalOwnership))
}

func TestAlerts_NewestRevisionFirst(t *testing.T) {
	r := NewReconciler(&fakePatcher{}, "contentTasks", nopLogger{})
	dana := task.Identity{Name: "dana"}

	older := revisionTask("t1", 1)
	olderAt := testTime(10)
	older.LastRevisionAt = &olderAt
	newer := revisionTask("t2", 1)
	newerAt := testTime(12)
	newer.LastRevisionAt = &newerAt

	alerts := r.Alerts(taskMap(older, newer), nil, dana, view.PersonalOwnership)

	require.Len(t, alerts, 2)
	assert.Equal(t, "t2", alerts[0].ID)
	assert.Equal(t, "t1", alerts[1].ID)
}
