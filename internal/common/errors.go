// Package common defines the sentinel errors shared across the task
// server's layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Account errors.
	ErrDuplicateUser      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// List errors.
	ErrListExists    = errors.New("list already exists")
	ErrListNotFound  = errors.New("list not found")
	ErrAlreadyMember = errors.New("already a member")
	ErrNotAMember    = errors.New("not a member")

	// Task errors.
	ErrTaskNotFound = errors.New("task not found")
	ErrEmptyText    = errors.New("empty task text")

	// ErrTaskAlreadyDone signals that a DONE request hit a task whose done
	// flag was already set. The operation is still a success on the wire;
	// the caller only uses this to pick the "already done" reply.
	ErrTaskAlreadyDone = errors.New("task already done")

	// ErrPersistence wraps a failed snapshot write. The in-memory mutation
	// is rolled back when this is returned.
	ErrPersistence = errors.New("persistence failure")
)
