package worker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/contentops/taskflow/internal/domain/task"
	"github.com/contentops/taskflow/internal/store"
)

func TestRefresher_InitialSnapshotBeforeStartReturns(t *testing.T) {
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Patch(context.Background(), "contentTasks", "t1", map[string]any{
		"title":  "March banner",
		"status": "pending",
	}))

	r := NewRefresher(mem, "contentTasks", nil, zap.NewNop())
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	tasks := r.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "March banner", tasks["t1"].Title)
	assert.Equal(t, task.StatusPending, tasks["t1"].Status)
}

func TestRefresher_TracksChanges(t *testing.T) {
	mem := store.NewMemoryStore()
	r := NewRefresher(mem, "contentTasks", nil, zap.NewNop())
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	assert.Empty(t, r.Tasks())

	require.NoError(t, mem.Patch(context.Background(), "contentTasks", "t1", map[string]any{
		"status": "in-progress",
	}))

	// MemoryStore delivers synchronously, so the new state is visible
	// as soon as Patch returns.
	assert.Equal(t, task.StatusInProgress, r.Tasks()["t1"].Status)
}

func TestRefresher_UnionsClientRegistries(t *testing.T) {
	mem := store.NewMemoryStore()
	require.NoError(t, mem.Patch(context.Background(), "clients", "c1", map[string]any{"name": "Acme"}))
	require.NoError(t, mem.Patch(context.Background(), "designClients", "c2", map[string]any{"name": "Globex"}))

	r := NewRefresher(mem, "contentTasks", []string{"clients", "designClients"}, zap.NewNop())
	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	activity := r.Activity()
	assert.True(t, activity.Contains("c1"))
	assert.True(t, activity.Contains("Globex"))

	// Retiring a client in one registry drops it without touching the other.
	require.NoError(t, mem.Patch(context.Background(), "clients", "c1", map[string]any{"inactive": true}))
	activity = r.Activity()
	assert.False(t, activity.Contains("c1"))
	assert.True(t, activity.Contains("c2"))
}

func TestRefresher_SnapshotHooks(t *testing.T) {
	mem := store.NewMemoryStore()
	r := NewRefresher(mem, "contentTasks", nil, zap.NewNop())

	var seen []map[string]task.Task
	r.OnSnapshot(func(tasks map[string]task.Task) {
		seen = append(seen, tasks)
	})

	require.NoError(t, r.Start(context.Background()))
	defer r.Stop()

	require.NoError(t, mem.Patch(context.Background(), "contentTasks", "t1", map[string]any{
		"status": "pending",
	}))

	// One delivery for the initial empty snapshot, one for the patch.
	require.Len(t, seen, 2)
	assert.Empty(t, seen[0])
	assert.Len(t, seen[1], 1)
}

func TestManager_StopsInReverseOrder(t *testing.T) {
	var order []string
	mk := func(name string) *fakeWorker {
		return &fakeWorker{name: name, onStop: func() { order = append(order, name) }}
	}

	m := NewManager(zap.NewNop())
	m.Register(mk("first"))
	m.Register(mk("second"))

	require.NoError(t, m.StartAll(context.Background()))
	m.StopAll()

	assert.Equal(t, []string{"second", "first"}, order)
}

type fakeWorker struct {
	name   string
	onStop func()
}

func (f *fakeWorker) Name() string                    { return f.name }
func (f *fakeWorker) Start(ctx context.Context) error { return nil }
func (f *fakeWorker) Stop()                           { f.onStop() }
