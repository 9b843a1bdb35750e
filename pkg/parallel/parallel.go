// Package parallel provides the synchronous fan-out/fan-in primitive:
// partition an index range into chunks, run each chunk on a pooled
// worker, join before returning.
//
// Small ranges run sequentially — below the minimum batch size the
// goroutine overhead outweighs the parallelism. The default chunk size
// is range/(4*cores), giving each core a few chunks to smooth out
// uneven work.
package parallel

import (
	"fmt"

	"github.com/forgeworks/nativert/pkg/cpu"
	"github.com/forgeworks/nativert/pkg/executor"
)

// defaultMinBatch is the range length below which For runs sequentially.
const defaultMinBatch = 200

// Submitter is the task-submission surface For fans out through. Both
// *executor.Executor and *executor.Scheduler satisfy it.
type Submitter interface {
	Submit(executor.Task) (*executor.Handle, error)
}

// Option customises one For call.
type Option func(*options)

type options struct {
	submitter Submitter
	chunkSize int
	minBatch  int
}

// WithSubmitter runs chunks on the given executor or scheduler instead
// of transient goroutines.
func WithSubmitter(s Submitter) Option {
	return func(o *options) { o.submitter = s }
}

// WithChunkSize overrides the computed chunk size.
func WithChunkSize(n int) Option {
	return func(o *options) { o.chunkSize = n }
}

// WithMinBatch overrides the sequential-fallback threshold.
func WithMinBatch(n int) Option {
	return func(o *options) { o.minBatch = n }
}

// For calls fn(i) for every i in [start, end), fanning chunks out across
// workers and joining before it returns. Iteration order within a chunk
// is sequential; across chunks it is not. A panic in fn fails the whole
// call with a *executor.WorkerFaultError-wrapped error; remaining chunks
// still run to completion before For returns.
func For(start, end int, fn func(i int), opts ...Option) error {
	if fn == nil {
		return fmt.Errorf("parallel: nil body")
	}
	if end <= start {
		return nil
	}
	o := options{minBatch: defaultMinBatch}
	for _, opt := range opts {
		opt(&o)
	}

	n := end - start
	if n < o.minBatch {
		for i := start; i < end; i++ {
			fn(i)
		}
		return nil
	}

	cores := cpu.Detect().Cores
	chunk := o.chunkSize
	if chunk <= 0 {
		chunk = n / (4 * cores)
		if chunk < 1 {
			chunk = 1
		}
	}

	if o.submitter != nil {
		return forSubmitter(start, end, chunk, fn, o.submitter)
	}
	return forGoroutines(start, end, chunk, fn)
}

// forSubmitter runs each chunk as a pooled task and joins on the
// handles.
func forSubmitter(start, end, chunk int, fn func(i int), sub Submitter) error {
	var handles []*executor.Handle
	for lo := start; lo < end; lo += chunk {
		hi := lo + chunk
		if hi > end {
			hi = end
		}
		lo, hi := lo, hi
		h, err := sub.Submit(func() (any, error) {
			for i := lo; i < hi; i++ {
				fn(i)
			}
			return nil, nil
		})
		if err != nil {
			// Join what was already submitted before reporting.
			waitAll(handles)
			return err
		}
		handles = append(handles, h)
	}

	var firstErr error
	for _, h := range handles {
		if _, err := h.Result(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// forGoroutines is the transient fan-out used when no pool is supplied.
func forGoroutines(start, end, chunk int, fn func(i int)) error {
	type result struct{ err error }
	nChunks := (end - start + chunk - 1) / chunk
	results := make(chan result, nChunks)

	for lo := start; lo < end; lo += chunk {
		hi := lo + chunk
		if hi > end {
			hi = end
		}
		go func(lo, hi int) {
			var err error
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("parallel: chunk [%d,%d) panicked: %v", lo, hi, r)
				}
				results <- result{err: err}
			}()
			for i := lo; i < hi; i++ {
				fn(i)
			}
		}(lo, hi)
	}

	var firstErr error
	for i := 0; i < nChunks; i++ {
		if r := <-results; r.err != nil && firstErr == nil {
			firstErr = r.err
		}
	}
	return firstErr
}

func waitAll(handles []*executor.Handle) {
	for _, h := range handles {
		_, _ = h.Result()
	}
}
