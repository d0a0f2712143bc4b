package gc

import (
	"slices"

	"github.com/joshuapare/gcheap/heap"
	"github.com/joshuapare/gcheap/heap/alloc"
	"github.com/joshuapare/gcheap/internal/format"
)

// marker holds the state of one mark phase.
type marker struct {
	alloc *alloc.Allocator

	// Chunk ranges in chain order. Zero-sized records are dropped, so starts
	// are strictly increasing and a binary search finds the one candidate.
	ranges []alloc.Chunk

	// Chunks marked but not yet scanned.
	work []alloc.Chunk

	scanned int
	marked  int
}

func newMarker(a *alloc.Allocator) *marker {
	m := &marker{alloc: a}
	for ch := range a.Chunks() {
		if ch.Units > 0 {
			m.ranges = append(m.ranges, ch)
		}
	}
	return m
}

// find returns the chunk whose data contains addr.
func (m *marker) find(addr heap.Addr) (alloc.Chunk, bool) {
	i, ok := slices.BinarySearchFunc(m.ranges, addr, func(ch alloc.Chunk, a heap.Addr) int {
		switch {
		case a < ch.Start:
			return 1
		case a >= ch.End:
			return -1
		}
		return 0
	})
	if !ok {
		return alloc.Chunk{}, false
	}
	return m.ranges[i], true
}

// candidate treats w as a possible address and marks what it points into.
func (m *marker) candidate(w uint64) {
	m.scanned++
	ch, ok := m.find(heap.Addr(w))
	if !ok || !ch.Allocated {
		return
	}
	if !m.alloc.Mark(ch.Index) {
		return
	}
	m.marked++
	m.work = append(m.work, ch)
}

// scanStack scans every word in [sp, base).
func (m *marker) scanStack(s StackMemory, base heap.Addr) {
	for addr := s.StackPointer(); addr < base; addr = addr.Add(format.WordSize) {
		w, err := s.ReadWord(addr)
		if err != nil {
			continue
		}
		m.candidate(w)
	}
}

// drain scans marked chunks until no new chunk is marked.
func (m *marker) drain() {
	for len(m.work) > 0 {
		ch := m.work[len(m.work)-1]
		m.work = m.work[:len(m.work)-1]
		for addr := ch.Start; addr.Add(format.WordSize) <= ch.End; addr = addr.Add(format.WordSize) {
			w, err := m.alloc.ReadWord(addr)
			if err != nil {
				break
			}
			m.candidate(w)
		}
	}
}
