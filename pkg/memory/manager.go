package memory

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrLimitExceeded is returned when an allocation would push the
	// tracked total past the configured ceiling.
	ErrLimitExceeded = errors.New("memory: allocation limit exceeded")

	// ErrInvalidBlock is returned for a zero, stale, or already-released
	// block handle.
	ErrInvalidBlock = errors.New("memory: invalid or stale block handle")

	// ErrClosed is returned once the manager has been closed.
	ErrClosed = errors.New("memory: manager closed")

	// ErrBadSize is returned for a non-positive allocation size.
	ErrBadSize = errors.New("memory: size must be positive")

	// ErrBadAlignment is returned when alignment is not a power of two.
	ErrBadAlignment = errors.New("memory: alignment must be a power of two")
)

// idleThreshold is how long an idle block must sit untouched before
// CleanupUnused reclaims it.
const idleThreshold = 5 * time.Minute

// Block is a generation-checked handle to one tracked allocation. The
// zero Block is invalid and releasing it is a no-op.
type Block struct {
	index uint32
	gen   uint32
}

// Valid reports whether the handle refers to a slot that was ever issued.
// It does not prove the block is still live; Release answers that.
func (b Block) Valid() bool { return b.gen != 0 }

// slot is one entry in the block table. Slots are recycled through a free
// list; gen increments on every reuse so stale handles miscompare.
type slot struct {
	gen         uint32
	data        []byte
	size        int64
	allocatedAt time.Time
	inUse       bool
	live        bool
}

// Stats is a point-in-time snapshot of the manager's counters.
type Stats struct {
	TotalAllocated int64
	PeakAllocated  int64
	Allocations    uint64
	Deallocations  uint64
	ActiveBlocks   int
	Limit          int64
}

// Manager is the tracked allocator. All methods are safe for concurrent
// use. The registry lock covers the block table only; pools carry their
// own locks and the counters are atomics, so readers never contend with
// allocation traffic.
type Manager struct {
	mu        sync.Mutex
	slots     []slot
	freeSlots []uint32
	closed    bool

	total atomic.Int64
	peak  atomic.Int64

	allocations   atomic.Uint64
	deallocations atomic.Uint64

	limit    atomic.Int64
	tracking atomic.Bool

	// idleAfter is idleThreshold except in tests.
	idleAfter time.Duration

	poolsMu      sync.Mutex
	pools        map[int]*Pool
	poolCapacity int
}

// NewManager creates a manager with the given byte ceiling. A limit of
// zero or below disables the ceiling but keeps tracking on.
func NewManager(limit int64) *Manager {
	m := &Manager{
		pools:        make(map[int]*Pool),
		poolCapacity: DefaultPoolCapacity,
		idleAfter:    idleThreshold,
	}
	m.limit.Store(limit)
	m.tracking.Store(true)
	return m
}

// SetLimit replaces the byte ceiling. Existing allocations are never
// evicted; the new limit applies to subsequent Allocate calls.
func (m *Manager) SetLimit(limit int64) { m.limit.Store(limit) }

// Limit returns the current byte ceiling (<=0 means unlimited).
func (m *Manager) Limit() int64 { return m.limit.Load() }

// SetTracking toggles allocation tracking. With tracking off, Allocate
// hands out untracked aligned buffers: no registry entry, no ceiling, and
// a zero Block handle.
func (m *Manager) SetTracking(enabled bool) { m.tracking.Store(enabled) }

// Allocate returns a size-byte buffer aligned to DefaultAlignment along
// with its block handle. It fails with ErrLimitExceeded when the tracked
// total plus size would exceed the ceiling; the failure leaves no trace
// in the registry.
func (m *Manager) Allocate(size int) (Block, []byte, error) {
	return m.AllocateAligned(size, DefaultAlignment)
}

// AllocateAligned is Allocate with an explicit power-of-two alignment.
func (m *Manager) AllocateAligned(size, alignment int) (Block, []byte, error) {
	if size <= 0 {
		return Block{}, nil, ErrBadSize
	}
	if !validAlignment(alignment) {
		return Block{}, nil, ErrBadAlignment
	}
	if !m.tracking.Load() {
		return Block{}, alignedSlice(size, alignment), nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return Block{}, nil, ErrClosed
	}

	limit := m.limit.Load()
	if limit > 0 && m.total.Load()+int64(size) > limit {
		return Block{}, nil, fmt.Errorf("%w: %d + %d > %d",
			ErrLimitExceeded, m.total.Load(), size, limit)
	}

	data := alignedSlice(size, alignment)

	var idx uint32
	if n := len(m.freeSlots); n > 0 {
		idx = m.freeSlots[n-1]
		m.freeSlots = m.freeSlots[:n-1]
	} else {
		m.slots = append(m.slots, slot{})
		idx = uint32(len(m.slots) - 1)
	}
	s := &m.slots[idx]
	s.gen++
	s.data = data
	s.size = int64(size)
	s.allocatedAt = time.Now()
	s.inUse = true
	s.live = true

	total := m.total.Add(int64(size))
	for {
		peak := m.peak.Load()
		if total <= peak || m.peak.CompareAndSwap(peak, total) {
			break
		}
	}
	m.allocations.Add(1)

	return Block{index: idx, gen: s.gen}, data, nil
}

// Release frees a tracked block. Releasing the zero Block is a no-op;
// releasing a stale or already-freed handle returns ErrInvalidBlock.
func (m *Manager) Release(b Block) error {
	if !b.Valid() {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.lookup(b)
	if s == nil {
		return ErrInvalidBlock
	}
	m.freeSlot(b.index, s)
	return nil
}

// MarkIdle flags a block as no longer in use, making it eligible for
// CleanupUnused once it ages past the idle threshold.
func (m *Manager) MarkIdle(b Block) error {
	return m.setInUse(b, false)
}

// MarkInUse flags a block as in use again, exempting it from cleanup.
func (m *Manager) MarkInUse(b Block) error {
	return m.setInUse(b, true)
}

func (m *Manager) setInUse(b Block, inUse bool) error {
	if !b.Valid() {
		return ErrInvalidBlock
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s := m.lookup(b)
	if s == nil {
		return ErrInvalidBlock
	}
	s.inUse = inUse
	return nil
}

// CleanupUnused frees every block that is marked idle and older than the
// idle threshold, returning how many were reclaimed. It is a
// caller-triggered pass, never automatic.
func (m *Manager) CleanupUnused() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	freed := 0
	for i := range m.slots {
		s := &m.slots[i]
		if s.live && !s.inUse && now.Sub(s.allocatedAt) > m.idleAfter {
			m.freeSlot(uint32(i), s)
			freed++
		}
	}
	return freed
}

// CleanupAll unconditionally frees every outstanding block and returns
// how many were dropped.
func (m *Manager) CleanupAll() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cleanupAllLocked()
}

func (m *Manager) cleanupAllLocked() int {
	freed := 0
	for i := range m.slots {
		if m.slots[i].live {
			m.freeSlot(uint32(i), &m.slots[i])
			freed++
		}
	}
	return freed
}

// Close tears the manager down, dropping every outstanding block. Further
// Allocate calls fail with ErrClosed. Close is idempotent.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.cleanupAllLocked()
	m.closed = true
	return nil
}

// Stats returns a snapshot of the allocation counters. TotalAllocated is
// always the sum of the sizes of currently registered blocks.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	active := 0
	for i := range m.slots {
		if m.slots[i].live {
			active++
		}
	}
	m.mu.Unlock()

	return Stats{
		TotalAllocated: m.total.Load(),
		PeakAllocated:  m.peak.Load(),
		Allocations:    m.allocations.Load(),
		Deallocations:  m.deallocations.Load(),
		ActiveBlocks:   active,
		Limit:          m.limit.Load(),
	}
}

// SetPoolCapacity replaces the capacity given to size-class pools created
// from here on; existing pools keep theirs. Zero or below restores
// DefaultPoolCapacity.
func (m *Manager) SetPoolCapacity(capacity int) {
	if capacity <= 0 {
		capacity = DefaultPoolCapacity
	}
	m.poolsMu.Lock()
	m.poolCapacity = capacity
	m.poolsMu.Unlock()
}

// Pool returns the free-list pool for the given block size, creating it
// on first use. Pools are keyed by exact size and live until Close.
func (m *Manager) Pool(blockSize int) *Pool {
	m.poolsMu.Lock()
	defer m.poolsMu.Unlock()
	p, ok := m.pools[blockSize]
	if !ok {
		p = NewPool(blockSize, m.poolCapacity)
		m.pools[blockSize] = p
	}
	return p
}

// lookup resolves a handle to its live slot, or nil when the handle is
// out of range, stale, or already freed. Caller holds mu.
func (m *Manager) lookup(b Block) *slot {
	if int(b.index) >= len(m.slots) {
		return nil
	}
	s := &m.slots[b.index]
	if !s.live || s.gen != b.gen {
		return nil
	}
	return s
}

// freeSlot releases a live slot's memory and recycles the slot. Caller
// holds mu.
func (m *Manager) freeSlot(idx uint32, s *slot) {
	m.total.Add(-s.size)
	m.deallocations.Add(1)
	s.data = nil
	s.size = 0
	s.live = false
	s.inUse = false
	m.freeSlots = append(m.freeSlots, idx)
}
