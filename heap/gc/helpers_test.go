package gc

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/gcheap/heap"
	"github.com/joshuapare/gcheap/heap/alloc"
	"github.com/joshuapare/gcheap/heap/verify"
)

// newTestCollector builds an arena, an allocator and a 4 KiB stack, and
// records the stack base before anything is pushed.
func newTestCollector(t testing.TB, arenaSize int) (*Collector, *Stack) {
	t.Helper()
	arena, err := heap.New(make([]byte, arenaSize), nil)
	require.NoError(t, err)
	a, err := alloc.New(arena, nil)
	require.NoError(t, err)
	s, err := NewStack(4096, nil)
	require.NoError(t, err)
	c, err := New(a, s, nil)
	require.NoError(t, err)
	return c, s
}

func assertInvariants(t testing.TB, c *Collector) {
	t.Helper()
	require.NoError(t, verify.AllInvariants(c.Allocator().Arena().Bytes()))
}

func mustAlloc(t testing.TB, c *Collector, n int) heap.Addr {
	t.Helper()
	addr, err := c.Alloc(n)
	require.NoError(t, err)
	return addr
}

// root pushes addr onto the stack and returns the slot holding it.
func root(t testing.TB, s *Stack, addr heap.Addr) heap.Addr {
	t.Helper()
	slot, err := s.Push(uint64(addr))
	require.NoError(t, err)
	return slot
}

// link stores to in the first word of from's data.
func link(t testing.TB, c *Collector, from, to heap.Addr) {
	t.Helper()
	require.NoError(t, c.Allocator().WriteWord(from, uint64(to)))
}

func isLive(c *Collector, addr heap.Addr) bool {
	ch, ok := c.Allocator().Lookup(addr)
	return ok && ch.Allocated
}
