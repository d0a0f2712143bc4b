package alloc

import (
	"fmt"
	"iter"

	"github.com/joshuapare/gcheap/heap"
	"github.com/joshuapare/gcheap/internal/format"
)

// UsedBytes returns the bytes consumed by the chain: every chunk's data plus
// one record per chunk. The empty heap consumes one record.
func (a *Allocator) UsedBytes() int {
	_, used := a.tail()
	return int(min(used, uint64(a.arena.Len())))
}

// TotalBytes returns the arena span, records included.
func (a *Allocator) TotalBytes() int { return a.arena.Len() }

// FreeBytes returns the bytes neither data nor records occupy yet.
func (a *Allocator) FreeBytes() int { return a.TotalBytes() - a.UsedBytes() }

// ChunkCount returns the number of records in the chain, or 0 for the empty
// heap (a single unallocated head).
func (a *Allocator) ChunkCount() int {
	n := 0
	for l := range a.chain() {
		if l.index == 0 && !l.desc.HasNext && !l.desc.Allocated {
			return 0
		}
		n++
	}
	return n
}

// LiveCount returns the number of allocated chunks.
func (a *Allocator) LiveCount() int {
	n := 0
	for l := range a.chain() {
		if l.desc.Allocated {
			n++
		}
	}
	return n
}

// LiveBytes returns the capacity of all allocated chunks.
func (a *Allocator) LiveBytes() int {
	var n uint64
	for l := range a.chain() {
		if l.desc.Allocated {
			n += l.desc.Bytes()
		}
	}
	return int(min(n, uint64(a.arena.Len())))
}

// Chunks iterates over every record in chain order.
func (a *Allocator) Chunks() iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		for l := range a.chain() {
			if !yield(a.chunkOf(l)) {
				return
			}
		}
	}
}

// Lookup resolves addr to the chunk whose data starts there.
func (a *Allocator) Lookup(addr heap.Addr) (Chunk, bool) {
	l, ok := a.lookup(addr)
	if !ok {
		return Chunk{}, false
	}
	return a.chunkOf(l), true
}

// AddrOf resolves chunk index i to the address of its first data byte.
func (a *Allocator) AddrOf(i int) (heap.Addr, bool) {
	l, ok := a.at(i)
	if !ok {
		return heap.NilAddr, false
	}
	return a.arena.AddrOf(l.off), true
}

// Bytes returns the full capacity of the allocated chunk at addr. The slice
// aliases arena memory and is invalidated by Release or a moving Grow.
func (a *Allocator) Bytes(addr heap.Addr) ([]byte, error) {
	l, ok := a.lookup(addr)
	if !ok || !l.desc.Allocated {
		return nil, fmt.Errorf("bytes %s: %w", addr, ErrInvalidPointer)
	}
	n, err := a.span(l)
	if err != nil {
		return nil, fmt.Errorf("bytes %s: %w", addr, err)
	}
	return a.arena.Slice(addr, n)
}

// ReadWord reads one candidate pointer from arena memory.
func (a *Allocator) ReadWord(addr heap.Addr) (uint64, error) {
	return a.arena.ReadWord(addr)
}

// WriteWord stores one word into arena memory.
func (a *Allocator) WriteWord(addr heap.Addr, v uint64) error {
	return a.arena.WriteWord(addr, v)
}

// ClearMarks resets the reachable flag on every record.
func (a *Allocator) ClearMarks() {
	for l := range a.chain() {
		if l.desc.Reachable {
			l.desc.Reachable = false
			a.store(l.index, l.desc)
		}
	}
}

// Mark sets the reachable flag on allocated chunk i. It reports true only
// when the flag was newly set.
func (a *Allocator) Mark(i int) bool {
	l, ok := a.at(i)
	if !ok || !l.desc.Allocated || l.desc.Reachable {
		return false
	}
	l.desc.Reachable = true
	a.store(i, l.desc)
	return true
}

// Stats returns a snapshot of the allocator counters.
func (a *Allocator) Stats() Stats { return a.stats }

// Record returns the raw packed record i, for dumps and verification.
func (a *Allocator) Record(i int) (uint32, bool) {
	if _, ok := a.at(i); !ok {
		return 0, false
	}
	return a.record(i).Encode(), true
}

// MaxChunkBytes is the largest capacity a single chunk can have. It exceeds
// the range of a 32-bit int.
const MaxChunkBytes uint64 = format.MaxUnits * format.Alignment
