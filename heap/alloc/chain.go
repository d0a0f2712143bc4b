package alloc

import (
	"fmt"
	"iter"

	"github.com/joshuapare/gcheap/heap"
	"github.com/joshuapare/gcheap/internal/format"
)

// link is one step of a chain walk.
type link struct {
	index int               // Record position (0 = Top)
	off   uint64            // Data offset of the chunk start, relative to Base
	desc  format.Descriptor // Decoded record
}

// slot returns the block offset of record i.
func (a *Allocator) slot(i int) int {
	return a.arena.Len() - format.DescriptorSize*(i+1)
}

// record decodes record i. Out-of-range slots decode as an empty tail so that
// walks over a damaged chain stop instead of running off the block.
func (a *Allocator) record(i int) format.Descriptor {
	d, err := format.Read(a.arena.Bytes(), a.slot(i))
	if err != nil {
		return format.Descriptor{}
	}
	return d
}

// store encodes d into record i. Every caller keeps Units within range, so a
// failure here means the chain itself is corrupt.
func (a *Allocator) store(i int, d format.Descriptor) {
	if err := format.Put(a.arena.Bytes(), a.slot(i), d); err != nil {
		panic(fmt.Sprintf("alloc: write record %d: %v", i, err))
	}
}

// chain walks every record from Top, accumulating data offsets.
func (a *Allocator) chain() iter.Seq[link] {
	return func(yield func(link) bool) {
		var off uint64
		for i := 0; a.slot(i) >= 0; i++ {
			d := a.record(i)
			if !yield(link{index: i, off: off, desc: d}) {
				return
			}
			if !d.HasNext {
				return
			}
			off += d.Bytes()
		}
	}
}

// tail returns the last record together with the bytes the chain consumes
// (data plus one record per chunk).
func (a *Allocator) tail() (last link, used uint64) {
	for l := range a.chain() {
		used += l.desc.Bytes() + format.DescriptorSize
		last = l
	}
	return last, used
}

// lookup resolves addr to the chunk starting there. Zero-sized records share
// their successor's start address and own no bytes, so they never match.
func (a *Allocator) lookup(addr heap.Addr) (link, bool) {
	off, ok := a.arena.Offset(addr)
	if !ok {
		return link{}, false
	}
	want := uint64(off)
	for l := range a.chain() {
		if l.off > want {
			break
		}
		if l.off == want && l.desc.Units > 0 {
			return l, true
		}
	}
	return link{}, false
}

// at resolves record i, reporting false past the tail.
func (a *Allocator) at(i int) (link, bool) {
	if i < 0 {
		return link{}, false
	}
	for l := range a.chain() {
		if l.index == i {
			return l, true
		}
	}
	return link{}, false
}

// span returns the capacity of l as a slice length, rejecting records that
// describe data past the end of the block.
func (a *Allocator) span(l link) (int, error) {
	n := l.desc.Bytes()
	if l.off+n > uint64(a.arena.Len()) {
		return 0, fmt.Errorf("chunk %d (%d bytes): %w", l.index, n, heap.ErrOutOfRange)
	}
	return int(n), nil
}

func (a *Allocator) chunkOf(l link) Chunk {
	start := a.arena.AddrOf(l.off)
	return Chunk{
		Index:     l.index,
		Start:     start,
		End:       start + heap.Addr(l.desc.Bytes()),
		Units:     l.desc.Units,
		Allocated: l.desc.Allocated,
		Reachable: l.desc.Reachable,
		Tail:      !l.desc.HasNext,
	}
}
