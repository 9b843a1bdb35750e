package executor

import (
	"errors"
	"log"
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrShutdown is returned by Submit after Shutdown, and delivered to
	// handles whose tasks were queued but never started.
	ErrShutdown = errors.New("executor: shut down")

	// ErrNilTask is returned when Submit is handed a nil task.
	ErrNilTask = errors.New("executor: nil task")
)

// Stats is a point-in-time snapshot of an executor's counters. Completed
// count and cumulative time are monotonic; ActiveTasks is a live gauge
// that never exceeds Threads.
type Stats struct {
	Threads        int
	ActiveTasks    int
	CompletedTasks uint64
	TotalTime      time.Duration
	AvgTime        time.Duration
}

// item pairs a queued task with its handle. Owned by the queue until one
// worker pops it; never shared after that.
type item struct {
	task   Task
	handle *Handle
}

// Executor is a fixed pool of worker goroutines draining one FIFO queue.
type Executor struct {
	threads int

	mu    sync.Mutex
	cond  *sync.Cond
	queue []item
	stop  bool

	// active is the number of workers currently running a task. Updated
	// under mu so WaitForAll sees queue and gauge move together; read
	// without mu by Stats.
	active atomic.Int32

	completed   atomic.Uint64
	totalTimeNs atomic.Int64

	wg sync.WaitGroup
}

// New creates an executor and spawns its workers immediately. A thread
// count of zero or below resolves to the number of logical CPUs.
func New(threads int) *Executor {
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	e := &Executor{threads: threads}
	e.cond = sync.NewCond(&e.mu)
	e.wg.Add(threads)
	for i := 0; i < threads; i++ {
		go e.worker()
	}
	return e
}

// Threads returns the fixed worker count.
func (e *Executor) Threads() int { return e.threads }

// Submit enqueues a task and wakes one waiting worker. It never blocks.
// After Shutdown it fails with ErrShutdown.
func (e *Executor) Submit(task Task) (*Handle, error) {
	if task == nil {
		return nil, ErrNilTask
	}
	h := newHandle()
	e.mu.Lock()
	if e.stop {
		e.mu.Unlock()
		return nil, ErrShutdown
	}
	e.queue = append(e.queue, item{task: task, handle: h})
	e.cond.Signal()
	e.mu.Unlock()
	return h, nil
}

// SubmitBatch enqueues one task per item, applying fn to each. Handles
// are returned in item order. On ErrShutdown, no tasks were enqueued.
func (e *Executor) SubmitBatch(fn func(item any) (any, error), items []any) ([]*Handle, error) {
	if fn == nil {
		return nil, ErrNilTask
	}
	handles := make([]*Handle, 0, len(items))
	for _, it := range items {
		it := it
		h, err := e.Submit(func() (any, error) { return fn(it) })
		if err != nil {
			return handles, err
		}
		handles = append(handles, h)
	}
	return handles, nil
}

// WaitForAll blocks until the queue is empty and no worker is running a
// task. Shutdown discards queued tasks, so concurrent with one this still
// waits for the in-flight tasks to finish, never for the discarded ones.
func (e *Executor) WaitForAll() {
	e.mu.Lock()
	for len(e.queue) > 0 || e.active.Load() > 0 {
		e.cond.Wait()
	}
	e.mu.Unlock()
}

// Stats returns a snapshot of the executor's counters. AvgTime is zero
// until the first task completes.
func (e *Executor) Stats() Stats {
	completed := e.completed.Load()
	total := time.Duration(e.totalTimeNs.Load())
	var avg time.Duration
	if completed > 0 {
		avg = total / time.Duration(completed)
	}
	return Stats{
		Threads:        e.threads,
		ActiveTasks:    int(e.active.Load()),
		CompletedTasks: completed,
		TotalTime:      total,
		AvgTime:        avg,
	}
}

// Shutdown stops the pool: queued-but-unstarted tasks are discarded with
// ErrShutdown, a worker mid-task finishes that task, and all workers are
// joined before Shutdown returns. Idempotent.
func (e *Executor) Shutdown() {
	e.mu.Lock()
	if e.stop {
		e.mu.Unlock()
		e.wg.Wait()
		return
	}
	e.stop = true
	discarded := e.queue
	e.queue = nil
	e.cond.Broadcast()
	e.mu.Unlock()

	for _, it := range discarded {
		it.handle.complete(nil, ErrShutdown)
	}
	e.wg.Wait()
}

// worker is the loop run by each pool goroutine: wait for work or stop,
// pop one task, run it timed, record stats, signal completion.
func (e *Executor) worker() {
	defer e.wg.Done()
	for {
		e.mu.Lock()
		for !e.stop && len(e.queue) == 0 {
			e.cond.Wait()
		}
		if e.stop {
			e.mu.Unlock()
			return
		}
		it := e.queue[0]
		e.queue[0] = item{}
		e.queue = e.queue[1:]
		e.active.Add(1)
		e.mu.Unlock()

		start := time.Now()
		value, err := runTask(it.task, it.handle)
		elapsed := time.Since(start)

		e.totalTimeNs.Add(elapsed.Nanoseconds())
		e.completed.Add(1)
		it.handle.complete(value, err)

		// Completion must signal the condition variable too, or a pool
		// finishing its last task would leave WaitForAll blocked until
		// the next submission.
		e.mu.Lock()
		e.active.Add(-1)
		e.cond.Broadcast()
		e.mu.Unlock()
	}
}

// runTask executes one task with panic containment. A panic becomes a
// *WorkerFaultError for the handle; the worker survives.
func runTask(task Task, h *Handle) (value any, err error) {
	defer func() {
		if r := recover(); r != nil {
			fault := &WorkerFaultError{TaskID: h.ID(), Panic: r, Stack: debug.Stack()}
			log.Printf("executor: recovered task panic: %v", r)
			value, err = nil, fault
		}
	}()
	return task()
}
