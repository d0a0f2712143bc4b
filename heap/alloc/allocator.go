package alloc

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/gcheap/heap"
	"github.com/joshuapare/gcheap/internal/format"
)

// Allocator manages the descriptor chain of a single arena.
type Allocator struct {
	arena *heap.Arena
	log   *slog.Logger
	stats Stats
}

// New initialises the arena with an empty chain (one free record of size 0)
// and returns an allocator over it. Any previous contents of the record slot
// at Top are overwritten.
func New(arena *heap.Arena, cfg *Config) (*Allocator, error) {
	if arena == nil || arena.Bytes() == nil {
		return nil, fmt.Errorf("alloc: %w", heap.ErrClosed)
	}
	a := &Allocator{arena: arena}
	if cfg != nil && cfg.Logger != nil {
		a.log = cfg.Logger
	} else {
		a.log = defaultLogger()
	}
	a.store(0, format.Descriptor{})
	a.log.Debug("init", "base", arena.Base(), "top", arena.Top(), "bytes", arena.Len())
	return a, nil
}

// Arena returns the arena the allocator manages.
func (a *Allocator) Arena() *heap.Arena { return a.arena }

// Logger returns the logger chain mutations are traced to.
func (a *Allocator) Logger() *slog.Logger { return a.log }

// Alloc returns the address of a chunk holding at least n bytes.
//
// The whole chain is scanned for the smallest free chunk that fits; it is
// reused whole, without splitting. Otherwise a new chunk is appended at the
// tail if the arena has room for its data and its record.
func (a *Allocator) Alloc(n int) (heap.Addr, error) {
	a.stats.AllocCalls++

	if n < 0 {
		a.stats.Failures++
		return heap.NilAddr, fmt.Errorf("alloc %d bytes: %w", n, ErrNegativeSize)
	}
	units, ok := format.UnitsFor(n)
	if !ok {
		a.stats.Failures++
		return heap.NilAddr, fmt.Errorf("alloc %d bytes (max %d): %w", n, MaxChunkBytes, ErrSizeTooLarge)
	}

	var (
		best  link
		found bool
		last  link
		used  uint64
	)
	for l := range a.chain() {
		used += l.desc.Bytes() + format.DescriptorSize
		last = l
		if l.desc.Allocated || l.desc.Units < units {
			continue
		}
		if !found || l.desc.Units < best.desc.Units {
			best, found = l, true
		}
	}

	if found {
		best.desc.Allocated = true
		a.store(best.index, best.desc)
		a.stats.AllocReused++
		addr := a.arena.AddrOf(best.off)
		a.log.Debug("alloc reuse", "units", units, "chunk", best.index, "capacity", best.desc.Units, "addr", addr)
		return addr, nil
	}

	// A free zero-sized tail (the empty heap, or a record emptied by a merge)
	// is taken over in place; anything else needs a fresh record too.
	// Byte counts stay 64-bit: a unit count near MaxUnits spans more than a
	// 32-bit int.
	inPlace := !last.desc.Allocated && last.desc.Units == 0
	need := format.UnitBytes(units)
	if !inPlace {
		need += format.DescriptorSize
	}
	var free uint64
	if total := uint64(a.arena.Len()); used < total {
		free = total - used
	}
	if free < need {
		a.stats.Failures++
		a.log.Debug("alloc failed", "units", units, "need", need, "free", free)
		return heap.NilAddr, fmt.Errorf("alloc %d bytes (%d free): %w", n, free, ErrOutOfMemory)
	}

	a.stats.AllocAppended++
	rec := format.Descriptor{Allocated: true, Units: units}
	if inPlace {
		a.store(last.index, rec)
		addr := a.arena.AddrOf(last.off)
		a.log.Debug("alloc in place", "units", units, "chunk", last.index, "addr", addr)
		return addr, nil
	}

	last.desc.HasNext = true
	a.store(last.index, last.desc)
	a.store(last.index+1, rec)
	addr := a.arena.AddrOf(last.off + last.desc.Bytes())
	a.log.Debug("alloc append", "units", units, "chunk", last.index+1, "addr", addr)
	return addr, nil
}

// Grow resizes the chunk at addr to hold at least n bytes (realloc).
//
// If the chunk already holds n bytes addr is returned unchanged. Otherwise the
// chunk is provisionally freed so that the new allocation can see it, then
// Alloc is called; on success min(capacity, n) bytes are copied and the old
// chunk stays free. On failure the old record is restored exactly and the
// Alloc error is returned, so addr and its data remain valid. Stats.Failures
// counts such a failure once, in Alloc.
func (a *Allocator) Grow(addr heap.Addr, n int) (heap.Addr, error) {
	a.stats.GrowCalls++

	l, ok := a.lookup(addr)
	if !ok || !l.desc.Allocated {
		a.stats.Failures++
		return heap.NilAddr, fmt.Errorf("grow %s: %w", addr, ErrInvalidPointer)
	}
	if n < 0 {
		a.stats.Failures++
		return heap.NilAddr, fmt.Errorf("grow %s to %d bytes: %w", addr, n, ErrNegativeSize)
	}
	capacity, err := a.span(l)
	if err != nil {
		a.stats.Failures++
		return heap.NilAddr, fmt.Errorf("grow %s: %w", addr, err)
	}
	if n <= capacity {
		a.stats.GrowInPlace++
		return addr, nil
	}

	orig := l.desc
	provisional := orig
	provisional.Allocated = false
	a.store(l.index, provisional)

	newAddr, err := a.Alloc(n)
	if err != nil {
		// Alloc fails before mutating anything, so restoring this one
		// record returns the chain to its exact prior state.
		a.store(l.index, orig)
		a.log.Debug("grow failed", "addr", addr, "bytes", n, "err", err)
		return heap.NilAddr, fmt.Errorf("grow %s: %w", addr, err)
	}

	src, err := a.arena.Slice(addr, capacity)
	if err != nil {
		return heap.NilAddr, err
	}
	dst, err := a.arena.Slice(newAddr, min(capacity, n))
	if err != nil {
		return heap.NilAddr, err
	}
	copy(dst, src)
	a.log.Debug("grow moved", "from", addr, "to", newAddr, "copied", len(dst))
	return newAddr, nil
}

// Release frees the chunk at addr. Unknown addresses are ignored.
//
// A freed tail is removed from the chain (one chunk per call, never
// cascading). A freed head with successors is left alone. Any other chunk is
// merged with whichever chain neighbours are free.
func (a *Allocator) Release(addr heap.Addr) {
	a.stats.FreeCalls++

	l, ok := a.lookup(addr)
	if !ok {
		a.log.Debug("release ignored", "addr", addr)
		return
	}
	a.release(l)
}

func (a *Allocator) release(l link) {
	cur := l.desc
	cur.Allocated = false
	cur.Reachable = false
	i := l.index

	if !cur.HasNext {
		a.stats.Truncations++
		a.store(i, format.Descriptor{})
		if i == 0 {
			a.log.Debug("release reset", "chunk", i)
			return
		}
		prev := a.record(i - 1)
		prev.HasNext = false
		a.store(i-1, prev)
		a.log.Debug("release truncate", "chunk", i, "units", l.desc.Units)
		return
	}

	a.store(i, cur)
	if i == 0 {
		a.log.Debug("release head", "units", cur.Units)
		return
	}

	prev := a.record(i - 1)
	next := a.record(i + 1)

	switch {
	case prev.Allocated && next.Allocated:
		a.log.Debug("release", "chunk", i, "units", cur.Units)
		return

	case !prev.Allocated && !next.Allocated:
		a.stats.Merges++
		total := uint64(prev.Units) + uint64(cur.Units) + uint64(next.Units)
		if total > format.MaxUnits {
			a.stats.OverflowSplits++
			rem := total - format.MaxUnits
			prev.Units = format.MaxUnits
			next.Units = uint32(rem / 2)
			cur.Units = uint32(rem - rem/2)
		} else {
			prev.Units = uint32(total)
			cur.Units = 0
			next.Units = 0
		}
		a.store(i-1, prev)
		a.store(i, cur)
		a.store(i+1, next)
		a.log.Debug("release merge3", "chunk", i, "units", total)

	case !prev.Allocated:
		a.stats.Merges++
		prev.Units, cur.Units = mergeUnits(prev.Units, cur.Units, &a.stats)
		a.store(i-1, prev)
		a.store(i, cur)
		a.log.Debug("release merge prev", "chunk", i, "units", prev.Units)

	default:
		a.stats.Merges++
		next.Units, cur.Units = mergeUnits(next.Units, cur.Units, &a.stats)
		a.store(i, cur)
		a.store(i+1, next)
		a.log.Debug("release merge next", "chunk", i, "units", next.Units)
	}
}

// mergeUnits folds cur into into, capping at MaxUnits. It returns the new
// sizes of both; cur keeps whatever does not fit.
func mergeUnits(into, cur uint32, st *Stats) (uint32, uint32) {
	total := uint64(into) + uint64(cur)
	if total > format.MaxUnits {
		st.OverflowSplits++
		return format.MaxUnits, uint32(total - format.MaxUnits)
	}
	return uint32(total), 0
}
