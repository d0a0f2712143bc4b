// Package heap owns the raw memory block managed by the allocator.
//
// # Overview
//
// An Arena is a single contiguous byte block plus two boundary markers:
//
//	Base()                                             Top()   End()
//	 |-- chunk 0 --|-- chunk 1 --|...   free   ...|rec 1|rec 0|
//	 data grows toward higher addresses ->  <- records grow down
//
// User data is laid out upward from Base. Descriptor records are stored
// downward from Top, which is the address of the first record. The packages
// below this one (alloc, gc) never keep raw pointers into the block; every
// location is an Addr, a virtual address that maps 1:1 onto an offset in the
// block.
//
// # Virtual Addresses
//
// Addresses are uint64 values starting at Options.Base (DefaultBase when
// unset). Because addresses are plain integers they can be written into arena
// memory and into a scanned stack, which is what the conservative collector
// in heap/gc relies on.
//
// # Thread Safety
//
// Arena is not thread-safe. Callers must serialise all access externally.
//
// # Related Packages
//
//   - github.com/joshuapare/gcheap/heap/alloc: descriptor chain and allocator
//   - github.com/joshuapare/gcheap/heap/gc: conservative mark-sweep collector
//   - github.com/joshuapare/gcheap/heap/verify: invariant checkers
package heap
