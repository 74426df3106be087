package task

import "errors"

var (
	// ErrValidation is returned when a transition is missing a required
	// field (revision note, ad details). No write is attempted.
	ErrValidation = errors.New("validation failed")

	// ErrIllegalTransition is returned when an action is not valid from
	// the task's current status. The task is left unchanged.
	ErrIllegalTransition = errors.New("illegal status transition")

	// ErrNotFound is returned when a task id is absent from the current
	// snapshot.
	ErrNotFound = errors.New("task not found")

	// ErrStoreUnavailable is returned when a subscribe or patch against
	// the backing store fails. Non-fatal; callers keep operating on the
	// last good snapshot.
	ErrStoreUnavailable = errors.New("store unavailable")
)
