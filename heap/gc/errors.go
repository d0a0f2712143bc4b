package gc

import "errors"

var (
	// ErrNoStack indicates a collector was created without a root source.
	ErrNoStack = errors.New("gc: no stack")

	// ErrStackOverflow indicates a push below the stack block.
	ErrStackOverflow = errors.New("gc: stack overflow")

	// ErrStackUnderflow indicates a pop or unwind above the stack base.
	ErrStackUnderflow = errors.New("gc: stack underflow")

	// ErrBadSlot indicates a slot address outside the live stack or not word aligned.
	ErrBadSlot = errors.New("gc: bad stack slot")
)
