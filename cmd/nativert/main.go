// Package main provides the NativeRT CLI entry point.
package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/forgeworks/nativert/pkg/config"
	"github.com/forgeworks/nativert/pkg/cpu"
	"github.com/forgeworks/nativert/pkg/nativert"
)

var (
	version   = "0.1.0"
	commit    = "dev"
	buildTime = "unknown" // Set via ldflags: -X main.buildTime=$(date +%Y%m%d-%H%M%S)
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nativert",
		Short: "NativeRT - Native Concurrency & Memory Runtime",
		Long: `NativeRT is the native runtime layer for CPU-bound batch workloads:
a fixed-size worker-pool task scheduler, a tracked and limited memory
allocator with size-class pooling, and a CPU-capability-aware SIMD
dispatch layer.

Features:
  • Round-robin scheduling across independent worker pools
  • Tracked, aligned allocations with an enforced byte ceiling
  • Per-size-class free-list pooling
  • Runtime AVX2/SSE4.2/NEON detection with scalar fallback`,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("NativeRT v%s (%s) built %s\n", version, commit, buildTime)
		},
	})

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Show detected CPU capabilities and runtime defaults",
		RunE:  runInfo,
	}
	rootCmd.AddCommand(infoCmd)

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "Run a task and transform workload and print runtime stats",
		RunE:  runBench,
	}
	benchCmd.Flags().Int("tasks", config.GetEnvInt("NATIVERT_BENCH_TASKS", 1000), "Number of tasks to submit")
	benchCmd.Flags().Int("executors", config.GetEnvInt("NATIVERT_NUM_EXECUTORS", 2), "Number of executors")
	benchCmd.Flags().Int("threads", config.GetEnvInt("NATIVERT_THREADS_PER_EXECUTOR", 0), "Threads per executor (0 = auto)")
	benchCmd.Flags().Int("items", config.GetEnvInt("NATIVERT_BENCH_ITEMS", 10000), "Batch transform item count")
	rootCmd.AddCommand(benchCmd)

	memCmd := &cobra.Command{
		Use:   "memcheck",
		Short: "Exercise the tracked allocator and pools and print stats",
		RunE:  runMemcheck,
	}
	memCmd.Flags().String("limit", config.GetEnv("NATIVERT_MEMORY_LIMIT", "256MB"), "Allocation ceiling")
	memCmd.Flags().Int("rounds", 1000, "Pool get/put round trips")
	rootCmd.AddCommand(memCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runInfo(cmd *cobra.Command, args []string) error {
	feat := cpu.Detect()
	cfg := config.LoadFromEnv()

	fmt.Println("CPU:")
	fmt.Printf("  %s\n", feat.Summary())
	fmt.Println("Defaults:")
	fmt.Printf("  executors:            %d\n", cfg.Executor.NumExecutors)
	fmt.Printf("  threads per executor: %d (0 = %d cores)\n", cfg.Executor.ThreadsPerExecutor, feat.Cores)
	fmt.Printf("  memory limit:         %s\n", cfg.Memory.Limit)
	fmt.Printf("  simd:                 %v\n", !cfg.SIMD.Disable)
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	tasks, _ := cmd.Flags().GetInt("tasks")
	executors, _ := cmd.Flags().GetInt("executors")
	threads, _ := cmd.Flags().GetInt("threads")
	items, _ := cmd.Flags().GetInt("items")

	rt, err := nativert.Open(&nativert.Config{
		NumExecutors:       executors,
		ThreadsPerExecutor: threads,
		MemoryLimit:        0,
	})
	if err != nil {
		return err
	}
	defer rt.Close()

	fmt.Printf("Submitting %d tasks across %d executor(s)...\n", tasks, executors)
	start := time.Now()
	for i := 0; i < tasks; i++ {
		if _, err := rt.Submit(func() (any, error) {
			// Touch enough work that timing is non-zero.
			s := 0
			for j := 0; j < 1000; j++ {
				s += j
			}
			return s, nil
		}); err != nil {
			return err
		}
	}
	rt.WaitForAll()
	fmt.Printf("Tasks done in %s\n\n", time.Since(start))

	batch := make([][]byte, items)
	for i := range batch {
		batch[i] = randomASCII(16 + rand.Intn(80))
	}
	start = time.Now()
	if _, err := rt.TransformBatch(batch); err != nil {
		return err
	}
	fmt.Printf("Transformed %d items in %s\n\n", items, time.Since(start))

	for i, st := range rt.ExecutorStats() {
		fmt.Printf("executor %d: threads=%d completed=%d active=%d total=%s avg=%s\n",
			i, st.Threads, st.CompletedTasks, st.ActiveTasks, st.TotalTime, st.AvgTime)
	}
	perf := rt.PerfStats()
	fmt.Printf("simd: ops=%d avg=%dns\n", perf.Operations, perf.AvgTimeNs)
	return nil
}

func runMemcheck(cmd *cobra.Command, args []string) error {
	limitStr, _ := cmd.Flags().GetString("limit")
	rounds, _ := cmd.Flags().GetInt("rounds")

	limit, err := config.ParseMemorySize(limitStr)
	if err != nil {
		return fmt.Errorf("invalid --limit: %w", err)
	}

	rt, err := nativert.Open(&nativert.Config{NumExecutors: 1, MemoryLimit: limit})
	if err != nil {
		return err
	}
	defer rt.Close()

	sizes := []int{4 << 10, 64 << 10, 1 << 20}
	for _, size := range sizes {
		blk, _, err := rt.Allocate(size)
		if err != nil {
			fmt.Printf("allocate %s: %v\n", humanize.IBytes(uint64(size)), err)
			continue
		}
		defer rt.Release(blk)
	}

	// Pool round trips on one hot size class.
	pool := rt.Pool(64 << 10)
	for i := 0; i < rounds; i++ {
		buf := pool.Get()
		pool.Put(buf)
	}

	st := rt.MemoryStats()
	fmt.Println("Memory:")
	fmt.Printf("  total:   %s\n", humanize.IBytes(uint64(st.TotalAllocated)))
	fmt.Printf("  peak:    %s\n", humanize.IBytes(uint64(st.PeakAllocated)))
	fmt.Printf("  allocs:  %d  deallocs: %d  active blocks: %d\n",
		st.Allocations, st.Deallocations, st.ActiveBlocks)
	ps := pool.Stats()
	fmt.Printf("  pool[%s]: free=%d allocations=%d (over %d round trips)\n",
		humanize.IBytes(uint64(ps.BlockSize)), ps.FreeBlocks, ps.Allocations, rounds)
	return nil
}

func randomASCII(n int) []byte {
	const letters = "abcdefghijklmnopqrstuvwxyz -_0123456789"
	b := make([]byte, n)
	for i := range b {
		b[i] = letters[rand.Intn(len(letters))]
	}
	return b
}
