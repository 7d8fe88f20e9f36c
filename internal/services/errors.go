package services

import (
	"errors"
	"fmt"
)

var (
	ErrSelfFollow       = errors.New("cannot follow yourself")
	ErrAlreadyFollowing = errors.New("already following")
	ErrNotFollowing     = errors.New("not following")
	// ErrTimeout is returned when a store call exceeds the configured timeout.
	ErrTimeout = errors.New("store call timed out")
)

// PersistenceError wraps an unexpected failure of the store.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
