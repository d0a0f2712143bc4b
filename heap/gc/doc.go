// Package gc implements a conservative mark-sweep collector over an
// alloc.Allocator.
//
// Roots come from a StackMemory: every word between the current stack
// pointer and the stack base recorded by New is treated as a candidate
// address. A candidate that falls anywhere inside an allocated chunk (interior
// pointers included) marks that chunk, and the chunk's own words are then
// scanned the same way. Allocated chunks left unmarked are released.
//
// The collector only uses the allocator's public surface (Chunks, Mark,
// ClearMarks, ReadWord, Release); it never decodes records itself.
//
// Marking uses an explicit worklist, so the depth of a pointer chain costs
// heap memory rather than goroutine stack.
//
// A Collector is not thread-safe, and the stack it scans must not change
// while Collect runs.
package gc
