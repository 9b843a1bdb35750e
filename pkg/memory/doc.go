// Package memory implements the runtime's tracked, limited, aligned
// allocator with per-size-class reuse pools.
//
// A Manager hands out cache-line-aligned byte buffers, registers every
// allocation in a block table, and enforces a configurable byte ceiling.
// Allocations are identified by generation-checked Block handles rather
// than raw addresses, so a stale or double release is detected instead of
// corrupting the registry.
//
// For hot size classes, Pool keeps a free list of pre-sized buffers and
// recycles them up to twice its configured capacity before letting the
// garbage collector have them. A pool's lock is independent of the
// manager's registry lock, so pooled get/put traffic never contends with
// tracked allocations.
//
// # Usage
//
//	mgr := memory.NewManager(1 << 30) // 1 GiB ceiling
//	defer mgr.Close()
//
//	blk, buf, err := mgr.Allocate(4096)
//	if err != nil {
//	    // ceiling exceeded; recover, do not retry blindly
//	}
//	defer mgr.Release(blk)
//
//	pool := mgr.Pool(64 * 1024)
//	scratch := pool.Get()
//	defer pool.Put(scratch)
//
// Reclamation is caller-triggered: CleanupUnused frees blocks that were
// marked idle and have sat untouched past the idle threshold. Nothing in
// this package runs in the background.
package memory
