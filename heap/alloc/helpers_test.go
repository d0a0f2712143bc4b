package alloc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/gcheap/heap"
	"github.com/joshuapare/gcheap/heap/verify"
	"github.com/joshuapare/gcheap/internal/format"
)

// newTestAllocator returns an allocator over a fresh size-byte arena.
func newTestAllocator(t testing.TB, size int) *Allocator {
	t.Helper()
	arena, err := heap.New(make([]byte, size), nil)
	require.NoError(t, err)
	a, err := New(arena, nil)
	require.NoError(t, err)
	return a
}

// assertInvariants validates the chain stored in the arena.
func assertInvariants(t testing.TB, a *Allocator) {
	t.Helper()
	require.NoError(t, verify.AllInvariants(a.arena.Bytes()))
}

// mustAlloc allocates n bytes or fails the test.
func mustAlloc(t testing.TB, a *Allocator, n int) heap.Addr {
	t.Helper()
	addr, err := a.Alloc(n)
	require.NoError(t, err)
	return addr
}

// units allocates chunks of the given unit counts and returns their addresses.
func units(t testing.TB, a *Allocator, counts ...int) []heap.Addr {
	t.Helper()
	addrs := make([]heap.Addr, len(counts))
	for i, c := range counts {
		addrs[i] = mustAlloc(t, a, c*format.Alignment)
	}
	return addrs
}

// chunkAt returns chunk i of the chain.
func chunkAt(t testing.TB, a *Allocator, i int) Chunk {
	t.Helper()
	for c := range a.Chunks() {
		if c.Index == i {
			return c
		}
	}
	t.Fatalf("chunk %d not in chain", i)
	return Chunk{}
}

// freeUnits sums the capacity of every free chunk.
func freeUnits(a *Allocator) int {
	n := 0
	for c := range a.Chunks() {
		if !c.Allocated {
			n += int(c.Units)
		}
	}
	return n
}

// oversize returns a request one byte past MaxChunkBytes, skipping the test
// where int cannot express it.
func oversize(t testing.TB) int {
	t.Helper()
	n := MaxChunkBytes + 1
	if n > math.MaxInt {
		t.Skip("int cannot express a request past MaxChunkBytes")
	}
	return int(n)
}

// cost is the arena footprint of a chunk of n units: its data plus its record.
func cost(n int) int {
	return n*format.Alignment + format.DescriptorSize
}
