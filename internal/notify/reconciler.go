// Package notify reconciles unacknowledged-revision alerts between the
// viewing session and the store's eventually-consistent state.
package notify

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/contentops/taskflow/internal/clients"
	"github.com/contentops/taskflow/internal/domain/task"
	"github.com/contentops/taskflow/internal/view"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Patcher is the store write surface the reconciler needs.
type Patcher interface {
	Patch(ctx context.Context, collection, id string, fields map[string]any) error
}

// Reconciler computes the alert set per viewing identity and applies the
// two-phase acknowledgement: an instant local suppression for the
// acknowledging session, then the remote patch. Other sessions may keep
// seeing the stale unacknowledged state until their next snapshot; an
// alert the user dismissed is never re-shown unless a genuinely new
// revision arrives.
type Reconciler struct {
	store      Patcher
	collection string
	now        func() time.Time
	logger     Logger

	mu sync.Mutex
	// suppressed[identity][taskID] holds the revision count observed at
	// acknowledgement time. A later snapshot with a higher count means a
	// new revision: the suppression is dropped and the alert reappears.
	suppressed map[string]map[string]int
}

// NewReconciler creates a Reconciler writing acknowledgements to the
// given task collection.
func NewReconciler(store Patcher, collection string, logger Logger) *Reconciler {
	return &Reconciler{
		store:      store,
		collection: collection,
		now:        time.Now,
		logger:     logger,
		suppressed: make(map[string]map[string]int),
	}
}

// Alerts returns the tasks that should currently show an
// unacknowledged-revision alert for the identity, newest revision first.
func (r *Reconciler) Alerts(tasks map[string]task.Task, active clients.ActivitySet, id task.Identity, owned view.OwnershipPredicate) []task.Task {
	if owned == nil {
		owned = view.AllOwnership
	}

	r.mu.Lock()
	local := r.suppressed[id.Name]
	alerts := make([]task.Task, 0)
	for _, t := range tasks {
		if !owned(t, id) {
			continue
		}
		if t.Status != task.StatusRevisionRequired || t.RevisionMessage == "" {
			continue
		}
		if t.RevisionAcknowledged {
			continue
		}
		if t.HasClient() && !active.Contains(t.ClientID) && !active.Contains(t.ClientName) {
			continue
		}
		if ackCount, ok := local[t.ID]; ok && t.RevisionCount <= ackCount {
			// Locally acknowledged; the remote write has not landed in
			// this snapshot yet.
			continue
		}
		alerts = append(alerts, t)
	}
	r.mu.Unlock()

	sort.Slice(alerts, func(i, j int) bool {
		ti, tj := alerts[i].LastRevisionAt, alerts[j].LastRevisionAt
		switch {
		case ti == nil:
			return false
		case tj == nil:
			return true
		case !ti.Equal(*tj):
			return ti.After(*tj)
		}
		return alerts[i].ID < alerts[j].ID
	})
	return alerts
}

// Acknowledge suppresses the alert locally and issues the remote
// acknowledgement write. The suppression takes effect before the patch
// is attempted, so the alert disappears for this identity even when the
// store write fails; the error is still surfaced for a retry.
func (r *Reconciler) Acknowledge(ctx context.Context, t task.Task, id task.Identity) error {
	r.mu.Lock()
	if r.suppressed[id.Name] == nil {
		r.suppressed[id.Name] = make(map[string]int)
	}
	r.suppressed[id.Name][t.ID] = t.RevisionCount
	r.mu.Unlock()

	fields := task.Fields{
		task.FieldRevisionAcknowledged: true,
		task.FieldAcknowledgedBy:       id.Name,
		task.FieldAcknowledgedAt:       r.now().UTC().Format(time.RFC3339),
		task.FieldLastUpdated:          r.now().UTC().Format(time.RFC3339),
	}
	if err := r.store.Patch(ctx, r.collection, t.ID, map[string]any(fields)); err != nil {
		r.logger.Error("Failed to write acknowledgement",
			"task_id", t.ID,
			"identity", id.Name,
			"error", err)
		return fmt.Errorf("acknowledge task %s: %w", t.ID, err)
	}

	r.logger.Info("Revision acknowledged",
		"task_id", t.ID,
		"identity", id.Name,
		"revision_count", t.RevisionCount)
	return nil
}

// Reconcile folds a fresh snapshot into the suppression state: entries
// confirmed by the remote acknowledgement flag are cleared, and entries
// superseded by a newer revision are dropped so the alert reappears.
func (r *Reconciler) Reconcile(tasks map[string]task.Task) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for identity, local := range r.suppressed {
		for taskID, ackCount := range local {
			t, ok := tasks[taskID]
			if !ok {
				continue
			}
			if t.RevisionAcknowledged || t.RevisionCount > ackCount {
				delete(local, taskID)
			}
		}
		if len(local) == 0 {
			delete(r.suppressed, identity)
		}
	}
}
