package gc

import (
	"fmt"

	"github.com/joshuapare/gcheap/heap"
	"github.com/joshuapare/gcheap/internal/format"
)

// DefaultStackBase is the address of the first byte of a Stack block when
// no base is given. It sits far above any DefaultBase arena.
const DefaultStackBase heap.Addr = 0x7FFF_0000_0000

// StackMemory is the root source scanned by Collect.
type StackMemory interface {
	// StackPointer returns the address of the lowest live word. The stack
	// grows toward lower addresses.
	StackPointer() heap.Addr

	// ReadWord returns the word stored at addr.
	ReadWord(addr heap.Addr) (uint64, error)
}

// Stack is a simulated call stack of 8-byte words that grows downward
// through its own block. Words are plain integers, so storing an arena
// address in a slot is what makes a chunk reachable.
type Stack struct {
	mem *heap.Arena
	sp  heap.Addr
}

// NewStack creates a stack of size bytes (rounded down to whole words).
// opts.Base places the block; the stack pointer starts at the block's end.
func NewStack(size int, opts *heap.Options) (*Stack, error) {
	size &^= format.WordSize - 1
	if size < format.WordSize {
		return nil, fmt.Errorf("stack of %d bytes: %w", size, heap.ErrArenaTooSmall)
	}
	o := heap.Options{Base: DefaultStackBase}
	if opts != nil && opts.Base != heap.NilAddr {
		o.Base = opts.Base
	}
	mem, err := heap.New(make([]byte, size), &o)
	if err != nil {
		return nil, err
	}
	return &Stack{mem: mem, sp: mem.End()}, nil
}

// StackPointer returns the address of the most recently pushed word, or the
// block end when the stack is empty.
func (s *Stack) StackPointer() heap.Addr { return s.sp }

// Limit returns the lowest address a push may reach.
func (s *Stack) Limit() heap.Addr { return s.mem.Base() }

// Depth returns the number of live words.
func (s *Stack) Depth() int { return int(s.mem.End()-s.sp) / format.WordSize }

// Push stores v in a new slot and returns the slot's address.
func (s *Stack) Push(v uint64) (heap.Addr, error) {
	next := s.sp.Add(-format.WordSize)
	if next < s.Limit() {
		return heap.NilAddr, fmt.Errorf("push at depth %d: %w", s.Depth(), ErrStackOverflow)
	}
	if err := s.mem.WriteWord(next, v); err != nil {
		return heap.NilAddr, err
	}
	s.sp = next
	return next, nil
}

// Pop removes the top slot and returns its value. The word stays in memory
// below the stack pointer, where it is no longer scanned.
func (s *Stack) Pop() (uint64, error) {
	if s.sp >= s.mem.End() {
		return 0, ErrStackUnderflow
	}
	v, err := s.mem.ReadWord(s.sp)
	if err != nil {
		return 0, err
	}
	s.sp = s.sp.Add(format.WordSize)
	return v, nil
}

// Set overwrites a live slot, e.g. to drop a root.
func (s *Stack) Set(slot heap.Addr, v uint64) error {
	if !s.live(slot) {
		return fmt.Errorf("set %s: %w", slot, ErrBadSlot)
	}
	return s.mem.WriteWord(slot, v)
}

// ReadWord returns the word in a live slot.
func (s *Stack) ReadWord(addr heap.Addr) (uint64, error) {
	if !s.live(addr) {
		return 0, fmt.Errorf("read %s: %w", addr, ErrBadSlot)
	}
	return s.mem.ReadWord(addr)
}

// Frame returns a marker for the current stack pointer, to be passed to Unwind.
func (s *Stack) Frame() heap.Addr { return s.sp }

// Unwind pops every slot pushed since frame was taken.
func (s *Stack) Unwind(frame heap.Addr) error {
	if frame < s.sp || frame > s.mem.End() {
		return fmt.Errorf("unwind to %s (sp %s): %w", frame, s.sp, ErrStackUnderflow)
	}
	s.sp = frame
	return nil
}

func (s *Stack) live(addr heap.Addr) bool {
	return addr >= s.sp && addr < s.mem.End() && (addr-s.mem.Base())%format.WordSize == 0
}
