package heap

import "errors"

var (
	// ErrArenaTooSmall indicates a block that cannot hold even one descriptor record.
	ErrArenaTooSmall = errors.New("heap: arena smaller than one descriptor record")

	// ErrMisalignedBase indicates a base address off the allocation-unit boundary.
	ErrMisalignedBase = errors.New("heap: base address not 16-byte aligned")

	// ErrOutOfRange indicates an address or span outside the arena.
	ErrOutOfRange = errors.New("heap: address out of range")

	// ErrClosed indicates use of an arena after Close.
	ErrClosed = errors.New("heap: arena closed")
)
