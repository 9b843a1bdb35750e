package executor

import (
	"runtime"
	"sync/atomic"
)

// Scheduler fans submissions across N independent executors, picking the
// next one with an atomically incremented round-robin counter. It adds
// no queueing of its own.
type Scheduler struct {
	executors []*Executor
	next      atomic.Uint64
}

// NewScheduler creates numExecutors executors with threadsPer workers
// each. numExecutors below one resolves to one; threadsPer of zero or
// below resolves to the logical CPU count divided evenly across the
// executors (never below one thread).
func NewScheduler(numExecutors, threadsPer int) *Scheduler {
	if numExecutors < 1 {
		numExecutors = 1
	}
	if threadsPer <= 0 {
		threadsPer = runtime.NumCPU() / numExecutors
		if threadsPer < 1 {
			threadsPer = 1
		}
	}
	s := &Scheduler{executors: make([]*Executor, numExecutors)}
	for i := range s.executors {
		s.executors[i] = New(threadsPer)
	}
	return s
}

// Size returns the number of child executors.
func (s *Scheduler) Size() int { return len(s.executors) }

// Submit enqueues the task on the next executor in round-robin order.
func (s *Scheduler) Submit(task Task) (*Handle, error) {
	idx := (s.next.Add(1) - 1) % uint64(len(s.executors))
	return s.executors[idx].Submit(task)
}

// SubmitBatch enqueues one task per item, spread round-robin across the
// executors. Handles are returned in item order.
func (s *Scheduler) SubmitBatch(fn func(item any) (any, error), items []any) ([]*Handle, error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	handles := make([]*Handle, 0, len(items))
	for _, it := range items {
		it := it
		h, err := s.Submit(func() (any, error) { return fn(it) })
		if err != nil {
			return handles, err
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// WaitForAll blocks until every child executor is drained and idle.
func (s *Scheduler) WaitForAll() {
	for _, e := range s.executors {
		e.WaitForAll()
	}
}

// AllStats returns one stats record per child executor, in submission
// round-robin order.
func (s *Scheduler) AllStats() []Stats {
	stats := make([]Stats, len(s.executors))
	for i, e := range s.executors {
		stats[i] = e.Stats()
	}
	return stats
}

// Shutdown stops every child executor and joins their workers.
func (s *Scheduler) Shutdown() {
	for _, e := range s.executors {
		e.Shutdown()
	}
}
