package alloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/gcheap/heap"
	"github.com/joshuapare/gcheap/internal/format"
)

func TestRelease_HeadAsTailResets(t *testing.T) {
	a := newTestAllocator(t, 1024)
	addr := mustAlloc(t, a, 100)

	a.Release(addr)
	assert.Equal(t, format.DescriptorSize, a.UsedBytes())
	assert.Equal(t, 0, a.ChunkCount())
	assertInvariants(t, a)

	again := mustAlloc(t, a, 16)
	assert.Equal(t, a.Arena().Base(), again)
}

func TestRelease_TailReclamation(t *testing.T) {
	a := newTestAllocator(t, 1024)
	addrs := units(t, a, 1, 2, 3)
	used := a.UsedBytes()

	a.Release(addrs[2])
	assert.Equal(t, used-cost(3), a.UsedBytes())
	assert.Equal(t, 2, a.ChunkCount())

	a.Release(addrs[1])
	assert.Equal(t, used-cost(3)-cost(2), a.UsedBytes())
	assert.Equal(t, 1, a.ChunkCount())
	assertInvariants(t, a)
}

func TestRelease_TruncatesOneChunkPerCall(t *testing.T) {
	a := newTestAllocator(t, 1024)
	addrs := units(t, a, 1, 2, 3)

	a.Release(addrs[1]) // middle chunk: both neighbours allocated
	used := a.UsedBytes()

	a.Release(addrs[2])
	assert.Equal(t, used-cost(3), a.UsedBytes(), "only the tail record is dropped")
	require.Equal(t, 2, a.ChunkCount())
	tail := chunkAt(t, a, 1)
	assert.True(t, tail.Tail)
	assert.False(t, tail.Allocated)
	assert.Equal(t, uint32(2), tail.Units)
	assertInvariants(t, a)

	// Releasing the lingering free tail reclaims it.
	a.Release(addrs[1])
	assert.Equal(t, 1, a.ChunkCount())
	assert.Equal(t, cost(1), a.UsedBytes())
	assertInvariants(t, a)
}

func TestRelease_HeadWithSuccessorsStays(t *testing.T) {
	a := newTestAllocator(t, 1024)
	addrs := units(t, a, 3, 1)
	used := a.UsedBytes()

	a.Release(addrs[0])
	assert.Equal(t, used, a.UsedBytes())
	assert.Equal(t, 2, a.ChunkCount())
	assert.Equal(t, 1, a.LiveCount())

	head := chunkAt(t, a, 0)
	assert.False(t, head.Allocated)
	assert.Equal(t, uint32(3), head.Units)
	assertInvariants(t, a)
}

func TestRelease_MergesIntoPrevious(t *testing.T) {
	a := newTestAllocator(t, 1024)
	addrs := units(t, a, 1, 2, 3, 1)

	a.Release(addrs[1])
	a.Release(addrs[2])

	assert.Equal(t, uint32(5), chunkAt(t, a, 1).Units)
	assert.Zero(t, chunkAt(t, a, 2).Units)
	assert.Equal(t, 1, a.Stats().Merges)

	c, ok := a.Lookup(addrs[1])
	require.True(t, ok)
	assert.Equal(t, 1, c.Index)
	_, ok = a.Lookup(addrs[2])
	assert.False(t, ok, "the emptied record's address now lies inside the merged chunk")
	assertInvariants(t, a)
}

func TestRelease_MergesIntoNext(t *testing.T) {
	a := newTestAllocator(t, 1024)
	addrs := units(t, a, 1, 2, 3, 1)

	a.Release(addrs[2])
	a.Release(addrs[1])

	assert.Zero(t, chunkAt(t, a, 1).Units)
	merged := chunkAt(t, a, 2)
	assert.Equal(t, uint32(5), merged.Units)
	assert.Equal(t, addrs[1], merged.Start, "the merged chunk starts where the freed one did")

	c, ok := a.Lookup(addrs[1])
	require.True(t, ok)
	assert.Equal(t, 2, c.Index)
	assertInvariants(t, a)
}

func TestRelease_MergesThreeWay(t *testing.T) {
	a := newTestAllocator(t, 1024)
	addrs := units(t, a, 1, 2, 3, 4, 1)

	a.Release(addrs[1])
	a.Release(addrs[3])
	a.Release(addrs[2])

	assert.Equal(t, uint32(2+3+4), chunkAt(t, a, 1).Units)
	assert.Zero(t, chunkAt(t, a, 2).Units)
	assert.Zero(t, chunkAt(t, a, 3).Units)
	assert.Equal(t, 5, a.ChunkCount(), "merging never removes records")

	addr := mustAlloc(t, a, 9*format.Alignment)
	assert.Equal(t, addrs[1], addr)
	assertInvariants(t, a)
}

func TestRelease_ConservesUnits(t *testing.T) {
	a := newTestAllocator(t, 4096)
	counts := []int{3, 1, 4, 1, 5, 9, 2, 6, 5, 3}
	addrs := units(t, a, counts...)
	total := func() int {
		n := 0
		for c := range a.Chunks() {
			n += int(c.Units)
		}
		return n
	}
	before := total()

	for _, i := range []int{1, 3, 2, 6, 7, 5} {
		a.Release(addrs[i])
		assert.Equal(t, before, total(), "releasing a non-tail chunk moves units, never loses them")
		assertInvariants(t, a)
	}
	assert.Equal(t, 1+4+1+9+2+6, freeUnits(a))
}

func TestRelease_UnknownAddressIgnored(t *testing.T) {
	a := newTestAllocator(t, 1024)
	addrs := units(t, a, 2, 2)
	before := append([]byte(nil), a.Arena().Bytes()...)

	for _, addr := range []heap.Addr{heap.NilAddr, addrs[0] + 16, addrs[1] + 32, a.Arena().End()} {
		a.Release(addr)
	}
	assert.Equal(t, before, a.Arena().Bytes())
	assert.Equal(t, 4, a.Stats().FreeCalls)
}

func TestRelease_ClearsMark(t *testing.T) {
	a := newTestAllocator(t, 1024)
	addrs := units(t, a, 1, 1, 1)
	require.True(t, a.Mark(1))

	a.Release(addrs[1])
	assert.False(t, chunkAt(t, a, 1).Reachable)
	assertInvariants(t, a)
}

func TestMergeUnits(t *testing.T) {
	tests := []struct {
		name          string
		into, cur     uint32
		wantInto      uint32
		wantCur       uint32
		wantOverflows int
	}{
		{"small", 3, 4, 7, 0, 0},
		{"exactly max", format.MaxUnits - 4, 4, format.MaxUnits, 0, 0},
		{"overflow", format.MaxUnits - 4, 10, format.MaxUnits, 6, 1},
		{"both max", format.MaxUnits, format.MaxUnits, format.MaxUnits, format.MaxUnits, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var st Stats
			into, cur := mergeUnits(tt.into, tt.cur, &st)
			assert.Equal(t, tt.wantInto, into)
			assert.Equal(t, tt.wantCur, cur)
			assert.Equal(t, tt.wantOverflows, st.OverflowSplits)
		})
	}
}

// Chunks near MaxUnits cannot be allocated in a test-sized arena, so the
// overflow cases are driven through hand-written records. Only the records
// are inspected; their data would lie far outside the block.
func TestRelease_ThreeWayOverflowSplits(t *testing.T) {
	a := newTestAllocator(t, 64)
	a.store(0, format.Descriptor{Allocated: true, HasNext: true, Units: 1})
	a.store(1, format.Descriptor{HasNext: true, Units: format.MaxUnits - 1})
	a.store(2, format.Descriptor{Allocated: true, HasNext: true, Units: 5})
	a.store(3, format.Descriptor{HasNext: true, Units: 7})
	a.store(4, format.Descriptor{Allocated: true, Units: 1})

	a.release(link{index: 2, desc: a.record(2)})

	prev, cur, next := a.record(1), a.record(2), a.record(3)
	assert.Equal(t, uint32(format.MaxUnits), prev.Units)
	assert.Equal(t, uint32(6), cur.Units)
	assert.Equal(t, uint32(5), next.Units)
	assert.False(t, cur.Allocated)
	assert.True(t, cur.HasNext)
	assert.Equal(t, uint64(format.MaxUnits-1+5+7),
		uint64(prev.Units)+uint64(cur.Units)+uint64(next.Units))
	assert.Equal(t, 1, a.Stats().OverflowSplits)
}

func TestRelease_TwoWayOverflowKeepsRemainder(t *testing.T) {
	a := newTestAllocator(t, 64)
	a.store(0, format.Descriptor{Allocated: true, HasNext: true, Units: 1})
	a.store(1, format.Descriptor{HasNext: true, Units: format.MaxUnits - 2})
	a.store(2, format.Descriptor{Allocated: true, HasNext: true, Units: 9})
	a.store(3, format.Descriptor{Allocated: true, Units: 1})

	a.release(link{index: 2, desc: a.record(2)})

	assert.Equal(t, uint32(format.MaxUnits), a.record(1).Units)
	assert.Equal(t, uint32(7), a.record(2).Units)
	assert.False(t, a.record(2).Allocated)
}
