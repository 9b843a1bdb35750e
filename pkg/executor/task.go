package executor

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Task is one zero-argument unit of work. The returned value and error
// are delivered through the Handle issued at submission.
type Task func() (any, error)

// Handle is the future-like result channel for one submitted task. It is
// completed exactly once, by the worker that consumed the task or by
// Shutdown discarding it.
type Handle struct {
	id    uuid.UUID
	done  chan struct{}
	value any
	err   error
}

func newHandle() *Handle {
	return &Handle{id: uuid.New(), done: make(chan struct{})}
}

// ID returns the task's unique identifier, assigned at submission.
func (h *Handle) ID() uuid.UUID { return h.id }

// Done returns a channel closed once the task has finished or been
// discarded.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the task completes or ctx is cancelled, returning
// the task's value or its captured error.
func (h *Handle) Wait(ctx context.Context) (any, error) {
	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result blocks until the task completes and returns its value or its
// captured error. A task that panicked yields a *WorkerFaultError here;
// a task discarded by Shutdown yields ErrShutdown.
func (h *Handle) Result() (any, error) {
	<-h.done
	return h.value, h.err
}

// complete delivers the outcome. Must be called at most once.
func (h *Handle) complete(value any, err error) {
	h.value = value
	h.err = err
	close(h.done)
}

// WorkerFaultError wraps a panic that escaped a submitted task. The
// worker that caught it keeps running; the error is delivered only to
// the caller retrieving that task's result.
type WorkerFaultError struct {
	TaskID uuid.UUID
	Panic  any
	Stack  []byte
}

func (e *WorkerFaultError) Error() string {
	return fmt.Sprintf("executor: task %s panicked: %v", e.TaskID, e.Panic)
}
