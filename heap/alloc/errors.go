package alloc

import "errors"

var (
	// ErrOutOfMemory indicates that no free chunk fits and the arena has no room to append one.
	ErrOutOfMemory = errors.New("alloc: out of memory")

	// ErrSizeTooLarge indicates a request above the largest representable chunk.
	ErrSizeTooLarge = errors.New("alloc: size exceeds maximum chunk size")

	// ErrInvalidPointer indicates an address that does not start a live chunk.
	ErrInvalidPointer = errors.New("alloc: invalid pointer")

	// ErrNegativeSize indicates a negative byte count.
	ErrNegativeSize = errors.New("alloc: negative size")
)
