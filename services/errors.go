package services

import "fmt"

// Every rejected mutation surfaces one of these kinds so the calling layer
// can present an actionable message. Nothing is retried here; retry is the
// caller's responsibility.

type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

type NotFoundError struct {
	Entity string
	ID     uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// NoActiveSessionError -> close or pay requested on a table with nothing open.
type NoActiveSessionError struct {
	TableID uint
}

func (e *NoActiveSessionError) Error() string {
	return fmt.Sprintf("table %d has no active session", e.TableID)
}

// InvalidTransitionError -> the requested status is not one of the four
// recognized values. Between recognized values any transition is allowed.
type InvalidTransitionError struct {
	Status string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("unknown order status %q", e.Status)
}

// ConflictError -> the storage layer rejected a write that would violate the
// one-open-session-per-table invariant.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}
