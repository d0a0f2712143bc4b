package heap

import (
	"fmt"
	"math"

	"github.com/joshuapare/gcheap/internal/buf"
	"github.com/joshuapare/gcheap/internal/format"
	"github.com/joshuapare/gcheap/internal/memsource"
)

// DefaultBase is the virtual address of the first data byte when Options.Base is unset.
const DefaultBase Addr = 0x10000

// Options configures arena construction.
type Options struct {
	// Base is the virtual address assigned to the first byte of the block.
	// Must be 16-byte aligned and non-zero.
	// Default: DefaultBase
	Base Addr
}

// Arena is a caller-supplied (or platform-supplied) memory block.
type Arena struct {
	data    []byte
	base    Addr
	release func() error
}

// New adopts mem as the arena block. The arena does not copy mem; the caller
// must not touch it directly afterwards except through returned addresses.
func New(mem []byte, opts *Options) (*Arena, error) {
	base := DefaultBase
	if opts != nil && opts.Base != NilAddr {
		base = opts.Base
	}
	if !format.IsAligned(uint64(base)) {
		return nil, fmt.Errorf("base %s: %w", base, ErrMisalignedBase)
	}
	if len(mem) < format.DescriptorSize {
		return nil, fmt.Errorf("%d bytes: %w", len(mem), ErrArenaTooSmall)
	}
	if uint64(base) > math.MaxUint64-uint64(len(mem)) {
		return nil, fmt.Errorf("base %s + %d bytes: %w", base, len(mem), ErrOutOfRange)
	}
	return &Arena{data: mem, base: base}, nil
}

// Open obtains a size-byte block from the platform memory source and adopts it.
// Close must be called to return the block.
func Open(size int, opts *Options) (*Arena, error) {
	mem, release, err := memsource.Map(size)
	if err != nil {
		return nil, err
	}
	a, err := New(mem, opts)
	if err != nil {
		_ = release()
		return nil, err
	}
	a.release = release
	return a, nil
}

// Close releases a block obtained through Open. For caller-supplied blocks it
// only detaches the arena.
func (a *Arena) Close() error {
	if a.data == nil {
		return nil
	}
	a.data = nil
	if a.release != nil {
		err := a.release()
		a.release = nil
		return err
	}
	return nil
}

// Bytes returns the whole block. The slice aliases arena memory.
func (a *Arena) Bytes() []byte { return a.data }

// Len returns the block length in bytes.
func (a *Arena) Len() int { return len(a.data) }

// Base returns the address of the first data byte.
func (a *Arena) Base() Addr { return a.base }

// End returns the address one past the last byte of the block.
func (a *Arena) End() Addr { return a.base.Add(len(a.data)) }

// Top returns the address of the first descriptor record.
func (a *Arena) Top() Addr { return a.End().Add(-format.DescriptorSize) }

// Contains reports whether addr falls inside the block.
func (a *Arena) Contains(addr Addr) bool {
	return addr >= a.base && addr < a.End()
}

// Offset converts addr into a block offset. The range check runs on the full
// 64-bit address so that nothing outside the block can alias an offset.
func (a *Arena) Offset(addr Addr) (int, bool) {
	if !a.Contains(addr) {
		return 0, false
	}
	return int(addr - a.base), true
}

// AddrOf converts a block offset into an address.
func (a *Arena) AddrOf(off uint64) Addr { return a.base + Addr(off) }

// Slice returns n bytes of arena memory starting at addr.
func (a *Arena) Slice(addr Addr, n int) ([]byte, error) {
	if a.data == nil {
		return nil, ErrClosed
	}
	off, ok := a.Offset(addr)
	if !ok {
		return nil, fmt.Errorf("%s: %w", addr, ErrOutOfRange)
	}
	b, ok := buf.Slice(a.data, off, n)
	if !ok {
		return nil, fmt.Errorf("%s+%d: %w", addr, n, ErrOutOfRange)
	}
	return b, nil
}

// ReadWord reads the 8-byte little-endian word at addr.
func (a *Arena) ReadWord(addr Addr) (uint64, error) {
	b, err := a.Slice(addr, format.WordSize)
	if err != nil {
		return 0, err
	}
	return buf.U64LE(b), nil
}

// WriteWord stores v as an 8-byte little-endian word at addr.
func (a *Arena) WriteWord(addr Addr, v uint64) error {
	b, err := a.Slice(addr, format.WordSize)
	if err != nil {
		return err
	}
	buf.PutU64LE(b, v)
	return nil
}
