package worker

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/contentops/taskflow/internal/clients"
	"github.com/contentops/taskflow/internal/domain/task"
	"github.com/contentops/taskflow/internal/store"
)

// SnapshotHook runs after each task snapshot is applied, on the delivery
// goroutine, with the freshly decoded task set.
type SnapshotHook func(tasks map[string]task.Task)

// Refresher subscribes to the task collection and the client registries
// and maintains the current decoded state the services read. Each
// incoming snapshot replaces the previous one wholesale; decoded tasks
// are never mutated in place, so readers holding the returned maps see a
// consistent point-in-time view.
type Refresher struct {
	store             store.Store
	taskCollection    string
	clientCollections []string
	logger            *zap.Logger
	hooks             []SnapshotHook

	mu       sync.RWMutex
	tasks    map[string]task.Task
	registry map[string]store.Snapshot
	activity clients.ActivitySet

	unsubs []store.Unsubscribe
}

// NewRefresher creates a Refresher over the given collections.
func NewRefresher(s store.Store, taskCollection string, clientCollections []string, logger *zap.Logger) *Refresher {
	return &Refresher{
		store:             s,
		taskCollection:    taskCollection,
		clientCollections: clientCollections,
		logger:            logger,
		tasks:             make(map[string]task.Task),
		registry:          make(map[string]store.Snapshot),
		activity:          make(clients.ActivitySet),
	}
}

// OnSnapshot registers a hook invoked after every applied task snapshot.
// Must be called before Start.
func (r *Refresher) OnSnapshot(hook SnapshotHook) {
	r.hooks = append(r.hooks, hook)
}

// Name implements Worker.
func (r *Refresher) Name() string {
	return "snapshot-refresher"
}

// Start opens the subscriptions. The first snapshot of each collection
// is delivered before Start returns, so services see populated state
// immediately.
func (r *Refresher) Start(ctx context.Context) error {
	unsub, err := r.store.Subscribe(r.taskCollection, r.applyTasks)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", r.taskCollection, err)
	}
	r.unsubs = append(r.unsubs, unsub)

	for _, collection := range r.clientCollections {
		c := collection
		unsub, err := r.store.Subscribe(c, func(snap store.Snapshot) {
			r.applyClients(c, snap)
		})
		if err != nil {
			return fmt.Errorf("subscribe %s: %w", c, err)
		}
		r.unsubs = append(r.unsubs, unsub)
	}

	r.logger.Info("Snapshot subscriptions opened",
		zap.String("tasks", r.taskCollection),
		zap.Int("client_registries", len(r.clientCollections)))
	return nil
}

// Stop tears down the subscriptions. The last applied state stays
// readable so dashboards keep working from the final snapshot.
func (r *Refresher) Stop() {
	for _, unsub := range r.unsubs {
		unsub()
	}
	r.unsubs = nil
}

func (r *Refresher) applyTasks(snap store.Snapshot) {
	decoded := store.DecodeTasks(snap)

	r.mu.Lock()
	r.tasks = decoded
	r.mu.Unlock()

	for _, hook := range r.hooks {
		hook(decoded)
	}
}

func (r *Refresher) applyClients(collection string, snap store.Snapshot) {
	r.mu.Lock()
	r.registry[collection] = snap
	snaps := make([]store.Snapshot, 0, len(r.registry))
	for _, s := range r.registry {
		snaps = append(snaps, s)
	}
	r.activity = clients.BuildActivity(snaps...)
	r.mu.Unlock()
}

// Tasks returns the current decoded task snapshot. The returned map must
// not be mutated.
func (r *Refresher) Tasks() map[string]task.Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tasks
}

// Activity returns the current active-client set. The returned set must
// not be mutated.
func (r *Refresher) Activity() clients.ActivitySet {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activity
}
