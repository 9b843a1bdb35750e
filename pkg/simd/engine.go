package simd

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/forgeworks/nativert/pkg/cpu"
	"github.com/forgeworks/nativert/pkg/memory"
)

// ErrNoManager is returned by the aligned-allocation helpers when the
// engine was built without a memory manager.
var ErrNoManager = errors.New("simd: no memory manager attached")

// scratchSize is the pooled scratch buffer size used by the string
// transform path. Strings longer than this get a one-off buffer.
const scratchSize = 4096

// PerfStats is a snapshot of the engine's batch-operation counters.
type PerfStats struct {
	Operations uint64
	TotalTime  time.Duration
	AvgTimeNs  int64
}

// Option customises an Engine.
type Option func(*Engine)

// WithMemoryManager attaches a manager the engine draws its scratch
// buffers from, keeping this layer's working memory observable and
// bounded.
func WithMemoryManager(mgr *memory.Manager) Option {
	return func(e *Engine) { e.mgr = mgr }
}

// WithForcedKernel pins the widest kernel the engine may use, ignoring
// detected capabilities. Items shorter than the forced kernel's width
// still fall through to scalar. Used by tests and the scalar-only
// configuration switch.
func WithForcedKernel(k Kernel) Option {
	return func(e *Engine) { e.forced = k }
}

// Engine dispatches batch transforms across the kernel chain chosen at
// construction.
type Engine struct {
	feat   cpu.Features
	forced Kernel
	chain  []transformer

	mgr     *memory.Manager
	scratch *memory.Pool

	ops    atomic.Uint64
	timeNs atomic.Int64
}

// New builds an engine for the given capability snapshot. The kernel
// chain is fixed here and never re-examined: wide when AVX2 is present,
// narrow when SSE4.2 or NEON is, scalar always.
func New(feat cpu.Features, opts ...Option) *Engine {
	e := &Engine{feat: feat}
	for _, opt := range opts {
		opt(e)
	}
	e.chain = buildChain(feat, e.forced)
	if e.mgr != nil {
		e.scratch = e.mgr.Pool(scratchSize)
	}
	return e
}

func buildChain(feat cpu.Features, forced Kernel) []transformer {
	switch forced {
	case KernelScalar:
		return []transformer{scalarTransform{}}
	case KernelNarrow:
		return []transformer{narrowTransform{}, scalarTransform{}}
	case KernelWide:
		return []transformer{wideTransform{}, narrowTransform{}, scalarTransform{}}
	}
	var chain []transformer
	if feat.HasAVX2 {
		chain = append(chain, wideTransform{})
	}
	if feat.HasSSE42 || feat.HasNEON {
		chain = append(chain, narrowTransform{})
	}
	return append(chain, scalarTransform{})
}

// Kernels returns the active chain, widest first. Always ends with
// KernelScalar.
func (e *Engine) Kernels() []Kernel {
	ks := make([]Kernel, len(e.chain))
	for i, t := range e.chain {
		ks[i] = t.kernel()
	}
	return ks
}

// pick returns the widest transformer whose block width fits n bytes.
func (e *Engine) pick(n int) transformer {
	for _, t := range e.chain {
		if n >= t.width() {
			return t
		}
	}
	return e.chain[len(e.chain)-1]
}

// TransformBatch transforms each item into a freshly allocated output
// slice, choosing the code path per item length. Input is not modified.
func (e *Engine) TransformBatch(items [][]byte) [][]byte {
	start := time.Now()
	out := make([][]byte, len(items))
	for i, src := range items {
		dst := make([]byte, len(src))
		e.pick(len(src)).transform(dst, src)
		out[i] = dst
	}
	e.record(start)
	return out
}

// TransformBatchInPlace transforms each item in place.
func (e *Engine) TransformBatchInPlace(items [][]byte) {
	start := time.Now()
	for _, it := range items {
		e.pick(len(it)).transform(it, it)
	}
	e.record(start)
}

// TransformBatchStrings transforms a batch of strings, drawing working
// buffers from the attached manager's scratch pool when one is present.
func (e *Engine) TransformBatchStrings(items []string) []string {
	start := time.Now()
	out := make([]string, len(items))
	for i, s := range items {
		var buf []byte
		pooled := e.scratch != nil && len(s) <= scratchSize
		if pooled {
			buf = e.scratch.Get()
		} else {
			buf = make([]byte, len(s))
		}
		dst := buf[:len(s)]
		e.pick(len(s)).transform(dst, []byte(s))
		out[i] = string(dst)
		if pooled {
			e.scratch.Put(buf)
		}
	}
	e.record(start)
	return out
}

// AlignedAlloc allocates a cache-line-aligned scratch buffer through the
// attached memory manager, keeping this layer's memory use tracked.
func (e *Engine) AlignedAlloc(size int) (memory.Block, []byte, error) {
	if e.mgr == nil {
		return memory.Block{}, nil, ErrNoManager
	}
	return e.mgr.Allocate(size)
}

// AlignedFree releases a buffer obtained from AlignedAlloc.
func (e *Engine) AlignedFree(b memory.Block) error {
	if e.mgr == nil {
		return ErrNoManager
	}
	return e.mgr.Release(b)
}

// PerfStats returns the engine's operation counters. AvgTimeNs is zero
// until the first batch completes.
func (e *Engine) PerfStats() PerfStats {
	ops := e.ops.Load()
	total := e.timeNs.Load()
	var avg int64
	if ops > 0 {
		avg = total / int64(ops)
	}
	return PerfStats{
		Operations: ops,
		TotalTime:  time.Duration(total),
		AvgTimeNs:  avg,
	}
}

func (e *Engine) record(start time.Time) {
	e.ops.Add(1)
	e.timeNs.Add(time.Since(start).Nanoseconds())
}
