// Package executor implements the runtime's fixed-size worker pools and
// the round-robin scheduler that load-balances across them.
//
// An Executor owns a fixed number of worker goroutines draining one FIFO
// queue guarded by a mutex and condition variable. Submit enqueues a task
// and wakes one waiter; the worker pops it, times the run, records the
// duration into the shared stats, and completes the task's Handle. A task
// is consumed by exactly one worker, and within one worker tasks run
// strictly sequentially; across workers there is no completion-order
// guarantee.
//
// A Scheduler fans submissions across N independent Executors with an
// atomically incremented round-robin counter, keeping per-executor load
// within one task of even.
//
// Failure semantics: a panic inside a task never kills the worker. It is
// captured as a *WorkerFaultError, logged, and surfaces only when the
// caller retrieves that task's result through its Handle. Shutdown lets
// in-flight tasks finish and fails queued-but-unstarted ones with
// ErrShutdown.
//
// Workers signal the queue's condition variable after finishing a task as
// well as on submission, so WaitForAll observes the pool going idle even
// when no further submissions arrive.
//
// # ELI12 (Explain Like I'm 12)
//
// Think of an Executor as a kitchen with a fixed crew of cooks and one
// ticket rail. Orders (tasks) go on the rail; whichever cook is free
// takes the next ticket, cooks it, and rings the bell for that order.
// The Scheduler is the host seating orders across several kitchens in
// turn so no single crew gets swamped.
package executor
