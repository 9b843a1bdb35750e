// Package nativert provides the main API for embedding the NativeRT
// runtime in a host process.
//
// NativeRT is the native concurrency-and-memory runtime a higher-level
// content-synthesis host calls into: a fixed-size worker-pool task
// scheduler, a tracked and limited memory allocator with size-class
// pooling, and a CPU-capability-aware SIMD dispatch layer. The host's
// own layers — document synthesis, generation pipelines, an inference
// engine, the CLI — are collaborators that consume this runtime's
// task-submission and allocation interfaces; none of them live here.
//
// Architecture:
//   - Scheduler: round-robin façade over N independent worker pools
//   - Memory: tracked, ceiling-enforced, aligned allocator with pools
//   - SIMD: wide/narrow/scalar batch transforms chosen per CPU probe
//   - CPU: one-shot capability detection feeding the dispatch layer
//
// Example Usage:
//
//	rt, err := nativert.Open(nativert.DefaultConfig())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer rt.Close()
//
//	handle, err := rt.Submit(func() (any, error) {
//		return renderSection(doc), nil
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := handle.Result()
//
//	rt.WaitForAll()
//	for i, stats := range rt.ExecutorStats() {
//		fmt.Printf("executor %d: %d tasks, avg %s\n",
//			i, stats.CompletedTasks, stats.AvgTime)
//	}
//
// Lifecycle is explicit: Open wires the components, Close tears them
// down, and every operation on a closed runtime fails with ErrClosed.
// Runtimes are independent; tests routinely hold several at once.
package nativert

import (
	"errors"
	"fmt"
	"log"
	"sync/atomic"

	"github.com/forgeworks/nativert/pkg/config"
	"github.com/forgeworks/nativert/pkg/cpu"
	"github.com/forgeworks/nativert/pkg/executor"
	"github.com/forgeworks/nativert/pkg/memory"
	"github.com/forgeworks/nativert/pkg/parallel"
	"github.com/forgeworks/nativert/pkg/simd"
)

// ErrClosed is returned by every operation on a runtime after Close.
var ErrClosed = errors.New("nativert: runtime closed")

// Config sizes a runtime instance.
type Config struct {
	// NumExecutors is the number of independent worker pools behind the
	// scheduler. Below 1 resolves to 1.
	NumExecutors int

	// ThreadsPerExecutor is the worker count per pool. Zero or below
	// resolves to hardware concurrency divided across the pools.
	ThreadsPerExecutor int

	// MemoryLimit is the allocation ceiling in bytes; zero or below
	// disables the ceiling.
	MemoryLimit int64

	// PoolCapacity is the configured capacity of each size-class pool.
	// Zero or below resolves to the memory layer's default of 100.
	PoolCapacity int

	// DisableSIMD forces the scalar transform path. Output never
	// changes, only throughput.
	DisableSIMD bool
}

// DefaultConfig returns a single executor sized to the hardware and a
// 1GB memory ceiling.
func DefaultConfig() *Config {
	return &Config{
		NumExecutors:       1,
		ThreadsPerExecutor: 0,
		MemoryLimit:        1 << 30,
	}
}

// FromConfig converts a loaded file/env configuration into a runtime
// Config.
func FromConfig(cfg *config.Config) *Config {
	return &Config{
		NumExecutors:       cfg.Executor.NumExecutors,
		ThreadsPerExecutor: cfg.Executor.ThreadsPerExecutor,
		MemoryLimit:        cfg.MemoryLimitBytes(),
		PoolCapacity:       cfg.Memory.PoolCapacity,
		DisableSIMD:        cfg.SIMD.Disable,
	}
}

// CPUInfo is the host description handed to callers of CPUInfo, the
// embed-side equivalent of the get_cpu_info boundary call.
type CPUInfo struct {
	Arch          string
	Cores         int
	CacheLineSize int
	HasAVX        bool
	HasAVX2       bool
	HasFMA        bool
	HasSSE42      bool
	HasNEON       bool
}

// Runtime owns one scheduler, one memory manager, and one SIMD engine,
// wired together at Open.
type Runtime struct {
	cfg       Config
	features  cpu.Features
	scheduler *executor.Scheduler
	memory    *memory.Manager
	engine    *simd.Engine
	closed    atomic.Bool
}

// Open probes the CPU once and wires up the runtime components. The
// returned runtime is ready for submissions immediately.
func Open(cfg *Config) (*Runtime, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.NumExecutors < 1 {
		return nil, fmt.Errorf("nativert: num executors must be at least 1, got %d", cfg.NumExecutors)
	}

	feat := cpu.Detect()

	mgr := memory.NewManager(cfg.MemoryLimit)
	if cfg.PoolCapacity > 0 {
		mgr.SetPoolCapacity(cfg.PoolCapacity)
	}

	engineOpts := []simd.Option{simd.WithMemoryManager(mgr)}
	if cfg.DisableSIMD {
		engineOpts = append(engineOpts, simd.WithForcedKernel(simd.KernelScalar))
	}

	rt := &Runtime{
		cfg:       *cfg,
		features:  feat,
		scheduler: executor.NewScheduler(cfg.NumExecutors, cfg.ThreadsPerExecutor),
		memory:    mgr,
		engine:    simd.New(feat, engineOpts...),
	}

	log.Printf("nativert: runtime open (%s; %d executor(s), memory limit %d bytes)",
		feat.Summary(), cfg.NumExecutors, cfg.MemoryLimit)
	return rt, nil
}

// Submit enqueues one task through the round-robin scheduler and returns
// its handle. Never blocks; fails with ErrClosed after Close.
func (r *Runtime) Submit(task executor.Task) (*executor.Handle, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	return r.scheduler.Submit(task)
}

// SubmitBatch enqueues one task per item, spread across the executors.
func (r *Runtime) SubmitBatch(fn func(item any) (any, error), items []any) ([]*executor.Handle, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	return r.scheduler.SubmitBatch(fn, items)
}

// WaitForAll blocks until every executor's queue is drained and idle.
func (r *Runtime) WaitForAll() {
	if r.closed.Load() {
		return
	}
	r.scheduler.WaitForAll()
}

// ExecutorStats returns one record per executor.
func (r *Runtime) ExecutorStats() []executor.Stats {
	return r.scheduler.AllStats()
}

// Allocate draws a tracked, cache-line-aligned buffer from the memory
// manager.
func (r *Runtime) Allocate(size int) (memory.Block, []byte, error) {
	if r.closed.Load() {
		return memory.Block{}, nil, ErrClosed
	}
	return r.memory.Allocate(size)
}

// Release frees a tracked buffer by handle.
func (r *Runtime) Release(b memory.Block) error {
	if r.closed.Load() {
		return ErrClosed
	}
	return r.memory.Release(b)
}

// Pool returns the size-class pool for blockSize, creating it on first
// use.
func (r *Runtime) Pool(blockSize int) *memory.Pool {
	return r.memory.Pool(blockSize)
}

// MemoryStats returns the allocator's counters.
func (r *Runtime) MemoryStats() memory.Stats {
	return r.memory.Stats()
}

// CleanupUnused reclaims idle blocks past the age threshold; returns the
// number freed. Caller-triggered, never automatic.
func (r *Runtime) CleanupUnused() int {
	if r.closed.Load() {
		return 0
	}
	return r.memory.CleanupUnused()
}

// CPUInfo returns the capability snapshot the runtime was opened with.
func (r *Runtime) CPUInfo() CPUInfo {
	f := r.features
	return CPUInfo{
		Arch:          f.Arch,
		Cores:         f.Cores,
		CacheLineSize: f.CacheLineSize,
		HasAVX:        f.HasAVX,
		HasAVX2:       f.HasAVX2,
		HasFMA:        f.HasFMA,
		HasSSE42:      f.HasSSE42,
		HasNEON:       f.HasNEON,
	}
}

// TransformBatch runs the SIMD batch transform over items.
func (r *Runtime) TransformBatch(items [][]byte) ([][]byte, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	return r.engine.TransformBatch(items), nil
}

// TransformBatchStrings runs the SIMD batch transform over strings.
func (r *Runtime) TransformBatchStrings(items []string) ([]string, error) {
	if r.closed.Load() {
		return nil, ErrClosed
	}
	return r.engine.TransformBatchStrings(items), nil
}

// PerfStats returns the SIMD engine's operation counters.
func (r *Runtime) PerfStats() simd.PerfStats {
	return r.engine.PerfStats()
}

// ParallelFor partitions [start, end) into chunks and runs them across
// the runtime's executors, returning once every chunk finished.
func (r *Runtime) ParallelFor(start, end int, fn func(i int)) error {
	if r.closed.Load() {
		return ErrClosed
	}
	return parallel.For(start, end, fn, parallel.WithSubmitter(r.scheduler))
}

// Close shuts the scheduler down (in-flight tasks finish, queued ones
// are discarded) and tears down the memory manager. Idempotent.
func (r *Runtime) Close() error {
	if r.closed.Swap(true) {
		return nil
	}
	r.scheduler.Shutdown()
	if err := r.memory.Close(); err != nil {
		return err
	}
	log.Printf("nativert: runtime closed")
	return nil
}
