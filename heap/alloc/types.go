package alloc

import (
	"log/slog"
	"math"

	"github.com/joshuapare/gcheap/heap"
	"github.com/joshuapare/gcheap/internal/format"
)

// Chunk is a resolved view of one record in the chain.
type Chunk struct {
	Index     int       // Position in the chain (0 = record at Top)
	Start     heap.Addr // First data byte
	End       heap.Addr // One past the last data byte
	Units     uint32    // Capacity in allocation units
	Allocated bool
	Reachable bool
	Tail      bool // Last record in the chain
}

// Size returns the capacity in bytes, saturating at math.MaxInt where the
// span does not fit an int.
func (c Chunk) Size() int {
	return int(min(format.UnitBytes(c.Units), math.MaxInt))
}

// Contains reports whether addr lies inside the chunk's data.
func (c Chunk) Contains(addr heap.Addr) bool {
	return addr >= c.Start && addr < c.End
}

// Config configures an Allocator.
type Config struct {
	// Logger receives debug traces of chain mutations.
	// Default: discard, or stderr when GCHEAP_LOG_ALLOC is set.
	Logger *slog.Logger
}

// Stats holds allocator counters.
type Stats struct {
	AllocCalls     int // Alloc() calls, including those made by Grow()
	AllocReused    int // Allocations served by an existing free chunk
	AllocAppended  int // Allocations that appended (or initialised) a tail chunk
	GrowCalls      int // Grow() calls
	GrowInPlace    int // Grow() calls answered by the current capacity
	FreeCalls      int // Release() calls
	Truncations    int // Tail chunks removed from the chain
	Merges         int // Coalescing operations
	OverflowSplits int // Merges capped at the maximum chunk size
	Failures       int // Calls that returned an error; a Grow failing inside Alloc counts once
}
