package tree

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("node not found")
	ErrNotFolder      = errors.New("node is not a folder")
	ErrNotFile        = errors.New("node is not a file")
	ErrAlreadyExists  = errors.New("node already exists")
	ErrInvalidName    = errors.New("invalid node name")
	ErrInvalidMove    = errors.New("invalid move")
	ErrInvalidSort    = errors.New("invalid sort preference")
	ErrInvalidPattern = errors.New("invalid glob pattern")
	ErrNoDrag         = errors.New("no drag in progress")
)

// MoveError reports a rejected move together with the validation reason
type MoveError struct {
	ID     string
	Target string
	Reason MoveReason
}

func (e *MoveError) Error() string {
	return fmt.Sprintf("move %s to %q rejected: %s", e.ID, e.Target, e.Reason)
}

// Unwrap lets callers match unresolved moves with ErrNotFound and every other
// rejection with ErrInvalidMove.
func (e *MoveError) Unwrap() error {
	if e.Reason == ReasonNotFound {
		return ErrNotFound
	}
	return ErrInvalidMove
}

func notFoundID(id string) error {
	return fmt.Errorf("%w: id %s", ErrNotFound, id)
}

func notFoundPath(path string) error {
	return fmt.Errorf("%w: path %q", ErrNotFound, path)
}
