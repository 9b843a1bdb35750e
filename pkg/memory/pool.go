package memory

import "sync"

// DefaultPoolCapacity is the configured capacity of a size-class pool.
// The free list may grow to twice this before Put starts dropping
// buffers.
const DefaultPoolCapacity = 100

// Pool is a free list of same-size aligned buffers. It exists to keep
// hot size classes from churning the allocator: Get prefers a recycled
// buffer and only falls back to a fresh allocation when the list is
// empty, and Put keeps buffers up to 2x the configured capacity.
//
// The pool's lock is its own; pooled traffic never touches the owning
// Manager's registry lock.
type Pool struct {
	mu        sync.Mutex
	blockSize int
	capacity  int
	free      [][]byte

	// allocs counts OS-level allocations performed by Get, i.e. misses.
	allocs uint64
}

// PoolStats is a snapshot of one pool's state.
type PoolStats struct {
	BlockSize   int
	FreeBlocks  int
	Capacity    int
	Allocations uint64
}

// NewPool creates a pool of blockSize-byte buffers. The free list starts
// empty and fills as buffers are returned.
func NewPool(blockSize, capacity int) *Pool {
	if capacity <= 0 {
		capacity = DefaultPoolCapacity
	}
	return &Pool{blockSize: blockSize, capacity: capacity}
}

// BlockSize returns the size class this pool serves.
func (p *Pool) BlockSize() int { return p.blockSize }

// Get returns a blockSize-byte aligned buffer, recycled when possible.
// Contents are unspecified; callers must not assume zeroed memory.
func (p *Pool) Get() []byte {
	p.mu.Lock()
	if n := len(p.free); n > 0 {
		buf := p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
		p.mu.Unlock()
		return buf
	}
	p.allocs++
	p.mu.Unlock()
	return alignedSlice(p.blockSize, DefaultAlignment)
}

// Put returns a buffer to the free list. Buffers of the wrong size are
// dropped, as is anything beyond 2x the configured capacity.
func (p *Pool) Put(buf []byte) {
	if buf == nil || len(buf) != p.blockSize {
		return
	}
	p.mu.Lock()
	if len(p.free) < p.capacity*2 {
		p.free = append(p.free, buf)
	}
	p.mu.Unlock()
}

// Stats returns a snapshot of the pool's counters.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		BlockSize:   p.blockSize,
		FreeBlocks:  len(p.free),
		Capacity:    p.capacity,
		Allocations: p.allocs,
	}
}
