// Package alloc implements a best-fit allocator whose metadata lives inside
// the arena it manages, as a chain of packed descriptor records.
//
// # Overview
//
// Every chunk of user data is described by one 4-byte record. Records are
// stored back to back starting at the arena's Top and growing toward its
// Base; chunk data is laid out from Base upward in the same order:
//
//	Base                                          Top
//	 [ chunk 0 ][ chunk 1 ][ chunk 2 ]  ...  [r2][r1][r0]
//
// A chunk's address is never stored. It is the sum of the sizes of all
// chunks before it, so resolving an address (in either direction) walks the
// chain from Top and is O(chain length).
//
// # Allocator API
//
//   - Alloc(n): reuse the smallest free chunk that fits, else append a chunk
//   - Grow(addr, n): realloc; the original chunk is untouched on failure
//   - Release(addr): free, truncate a freed tail, coalesce with neighbours
//
// Introspection (UsedBytes, ChunkCount, Chunks, Lookup, Mark, ...) exists for
// the collector in heap/gc, which never touches records directly.
//
// # Record Layout
//
//	Bit     Field
//	0       allocated
//	1       has_next
//	2       reachable (collector mark)
//	3..31   size in 16-byte units (max 2^29-1)
//
// # Reuse and Coalescing
//
// Reuse is best-fit without splitting: an oversized free chunk is handed out
// whole. Chunks are only removed from the chain when the tail is freed, one
// chunk per Release. A freed interior chunk is merged with free neighbours in
// place, leaving zero-sized records behind; those records keep their slot
// until the chain is truncated past them.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. Callers must synchronize access
// externally.
//
// # Tracing
//
// Set GCHEAP_LOG_ALLOC=1 to trace every chain mutation to stderr when no
// logger is configured.
package alloc
