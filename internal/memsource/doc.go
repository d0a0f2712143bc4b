// Package memsource obtains the raw memory block an arena manages.
//
// On Unix the block is an anonymous private mapping so that it lives outside
// the Go heap, which is the closest a Go process gets to the bare block a
// freestanding allocator is handed at boot. Elsewhere a plain byte slice is
// used.
package memsource
