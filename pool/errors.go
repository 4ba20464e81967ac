package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrLessThanOne is reported when a pool is requested with fewer than
	// one worker.
	ErrLessThanOne = errors.New("pool: thread count must be at least one")

	// ErrPoolClosed is reported when a job is submitted after teardown began.
	ErrPoolClosed = errors.New("pool: submit on closed pool")

	// ErrNilJob is reported when a nil job is submitted.
	ErrNilJob = errors.New("pool: nil job")

	// ErrNilContext is returned by Shutdown when given a nil context.
	ErrNilContext = errors.New("pool: nil context")
)

// CreationErrorKind classifies why a pool could not be created.
type CreationErrorKind int

const (
	// LessThanOne means the requested thread count was zero or negative.
	LessThanOne CreationErrorKind = iota + 1
)

func (k CreationErrorKind) String() string {
	switch k {
	case LessThanOne:
		return "less than one"
	default:
		return fmt.Sprintf("CreationErrorKind(%d)", int(k))
	}
}

// CreationError is returned by New when the pool cannot be built.
// It matches ErrLessThanOne with errors.Is when Kind is LessThanOne.
type CreationError struct {
	Kind  CreationErrorKind
	Count int
}

func (e *CreationError) Error() string {
	return fmt.Sprintf("pool: cannot create pool with %d threads: %s", e.Count, e.Kind)
}

func (e *CreationError) Unwrap() error {
	if e.Kind == LessThanOne {
		return ErrLessThanOne
	}
	return nil
}

// PanicError describes a job that panicked on a worker. The worker recovers,
// records the fault and goes back to waiting for the next job.
type PanicError struct {
	WorkerID int
	Value    any
	Stack    []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("pool: job panicked on worker %d: %v", e.WorkerID, e.Value)
}

// Unwrap exposes the panic value when the job panicked with an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
