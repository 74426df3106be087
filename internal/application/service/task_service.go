package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/contentops/taskflow/internal/clients"
	"github.com/contentops/taskflow/internal/domain/lifecycle"
	"github.com/contentops/taskflow/internal/domain/task"
	"github.com/contentops/taskflow/internal/notify"
	"github.com/contentops/taskflow/internal/store"
	"github.com/contentops/taskflow/internal/view"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// StateSource supplies the current decoded snapshots maintained by the
// refresher worker.
type StateSource interface {
	Tasks() map[string]task.Task
	Activity() clients.ActivitySet
}

// CreateTaskParams carries the fields of the assignment action that
// creates a task.
type CreateTaskParams struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Department  string      `json:"department"`
	AssignedTo  string      `json:"assignedTo"`
	ClientID    string      `json:"clientId"`
	ClientName  string      `json:"clientName"`
	Deadline    string      `json:"deadline"`
	PostDate    string      `json:"postDate"`
	Status      task.Status `json:"status"`
}

// TaskService exposes the task workflow to the dashboards: creation,
// lifecycle transitions, derived views and revision alerts.
type TaskService interface {
	Create(ctx context.Context, params CreateTaskParams) (task.Task, error)
	Get(id string) (task.Task, error)

	SetStatus(ctx context.Context, id string, to task.Status, actor task.Identity) error
	Approve(ctx context.Context, id string, actor task.Identity) error
	Reject(ctx context.Context, id string, note string, actor task.Identity) error
	Post(ctx context.Context, id string, ad *lifecycle.AdInfo, actor task.Identity) error
	RequestRevision(ctx context.Context, id, note string, from task.Identity, fallbackDepartment string) error

	View(q view.Query) view.View
	Alerts(identity task.Identity, owned view.OwnershipPredicate) []task.Task
	Acknowledge(ctx context.Context, id string, identity task.Identity) error
}

type taskServiceImpl struct {
	state      StateSource
	store      store.Store
	collection string
	controller *lifecycle.Controller
	engine     *view.Engine
	reconciler *notify.Reconciler
	logger     Logger
	now        func() time.Time
}

// NewTaskService creates a new TaskService writing to the given task
// collection.
func NewTaskService(
	state StateSource,
	st store.Store,
	collection string,
	controller *lifecycle.Controller,
	engine *view.Engine,
	reconciler *notify.Reconciler,
	logger Logger,
) TaskService {
	return &taskServiceImpl{
		state:      state,
		store:      st,
		collection: collection,
		controller: controller,
		engine:     engine,
		reconciler: reconciler,
		logger:     logger,
		now:        time.Now,
	}
}

// Create assigns a new task. Status defaults to pending and must be an
// entry status; the creating department becomes the originalDepartment
// revisions will later route back to.
func (s *taskServiceImpl) Create(ctx context.Context, params CreateTaskParams) (task.Task, error) {
	title := strings.TrimSpace(params.Title)
	if title == "" {
		return task.Task{}, fmt.Errorf("%w: title is required", task.ErrValidation)
	}
	if params.Department == "" {
		return task.Task{}, fmt.Errorf("%w: department is required", task.ErrValidation)
	}
	status := params.Status
	if status == "" {
		status = task.StatusPending
	}
	if !status.IsEntry() {
		return task.Task{}, fmt.Errorf("%w: %q is not a valid initial status", task.ErrValidation, status)
	}

	id := uuid.NewString()
	now := s.now().UTC().Format(time.RFC3339)
	fields := task.Fields{
		task.FieldTitle:              title,
		task.FieldDescription:        params.Description,
		task.FieldDepartment:         params.Department,
		task.FieldOriginalDepartment: params.Department,
		task.FieldAssignedTo:         params.AssignedTo,
		task.FieldClientID:           params.ClientID,
		task.FieldClientName:         params.ClientName,
		task.FieldDeadline:           params.Deadline,
		task.FieldPostDate:           params.PostDate,
		task.FieldStatus:             string(status),
		task.FieldRevisionCount:      0,
		task.FieldCreatedAt:          now,
		task.FieldLastUpdated:        now,
	}

	if err := s.store.Patch(ctx, s.collection, id, fields); err != nil {
		s.logger.Error("Failed to create task", "error", err, "title", title)
		return task.Task{}, err
	}

	s.logger.Info("Task created",
		"task_id", id,
		"department", params.Department,
		"client", params.ClientName)

	return store.DecodeTask(id, store.Document(fields)), nil
}

// Get returns a task from the current snapshot.
func (s *taskServiceImpl) Get(id string) (task.Task, error) {
	t, ok := s.state.Tasks()[id]
	if !ok {
		return task.Task{}, fmt.Errorf("%w: %s", task.ErrNotFound, id)
	}
	return t, nil
}

func (s *taskServiceImpl) SetStatus(ctx context.Context, id string, to task.Status, actor task.Identity) error {
	return s.transition(ctx, id, lifecycle.ActionSetStatus, func(t task.Task) (task.Fields, error) {
		return s.controller.SetStatus(t, to, actor)
	})
}

func (s *taskServiceImpl) Approve(ctx context.Context, id string, actor task.Identity) error {
	return s.transition(ctx, id, lifecycle.ActionApprove, func(t task.Task) (task.Fields, error) {
		return s.controller.Approve(t, actor)
	})
}

func (s *taskServiceImpl) Reject(ctx context.Context, id string, note string, actor task.Identity) error {
	return s.transition(ctx, id, lifecycle.ActionReject, func(t task.Task) (task.Fields, error) {
		return s.controller.Reject(t, note, actor)
	})
}

func (s *taskServiceImpl) Post(ctx context.Context, id string, ad *lifecycle.AdInfo, actor task.Identity) error {
	return s.transition(ctx, id, lifecycle.ActionPost, func(t task.Task) (task.Fields, error) {
		return s.controller.Post(t, ad, actor)
	})
}

func (s *taskServiceImpl) RequestRevision(ctx context.Context, id, note string, from task.Identity, fallbackDepartment string) error {
	return s.transition(ctx, id, lifecycle.ActionRequestRevision, func(t task.Task) (task.Fields, error) {
		return s.controller.RequestRevision(t, note, from, fallbackDepartment)
	})
}

// transition resolves the task from the current snapshot, asks the
// controller for the patch, and writes it in one store call.
func (s *taskServiceImpl) transition(ctx context.Context, id string, action lifecycle.Action, fn func(task.Task) (task.Fields, error)) error {
	t, err := s.Get(id)
	if err != nil {
		return err
	}

	fields, err := fn(t)
	if err != nil {
		s.logger.Info("Transition rejected",
			"task_id", id,
			"action", action.String(),
			"status", t.Status.String(),
			"reason", err.Error())
		return err
	}

	if err := s.store.Patch(ctx, s.collection, id, fields); err != nil {
		s.logger.Error("Failed to write transition",
			"task_id", id,
			"action", action.String(),
			"error", err)
		return err
	}

	s.logger.Info("Transition applied",
		"task_id", id,
		"action", action.String(),
		"from", t.Status.String(),
		"to", fields[task.FieldStatus])
	return nil
}

// View computes a dashboard projection from the current snapshots.
func (s *taskServiceImpl) View(q view.Query) view.View {
	return s.engine.ComputeView(s.state.Tasks(), s.state.Activity(), q)
}

// Alerts returns the identity's current unacknowledged-revision alerts.
func (s *taskServiceImpl) Alerts(identity task.Identity, owned view.OwnershipPredicate) []task.Task {
	return s.reconciler.Alerts(s.state.Tasks(), s.state.Activity(), identity, owned)
}

// Acknowledge dismisses a revision alert for the identity.
func (s *taskServiceImpl) Acknowledge(ctx context.Context, id string, identity task.Identity) error {
	t, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.reconciler.Acknowledge(ctx, t, identity)
}
