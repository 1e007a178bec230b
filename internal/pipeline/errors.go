package pipeline

import (
	"errors"
	"fmt"
)

var (
	ErrNilCandidate = errors.New("pipeline: step returned a nil candidate")
	ErrNoAction     = errors.New("pipeline: no action configured")
)

// Error is returned by Perform after compensation has run.
type Error struct {
	Op    string
	Stage string
	Cause error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%s failed at %s: %v", e.Op, e.Stage, e.Cause)
}

func (e *Error) Unwrap() error { return e.Cause }
