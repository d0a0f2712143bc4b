package gc

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/joshuapare/gcheap/heap"
	"github.com/joshuapare/gcheap/heap/alloc"
)

// Config configures a Collector.
type Config struct {
	// Logger receives one record per collection.
	// Default: the allocator's logger.
	Logger *slog.Logger
}

// Report summarises one collection.
type Report struct {
	Scanned    int // Candidate words examined, stack and heap
	Marked     int // Chunks found reachable
	Freed      int // Chunks released by the sweep
	FreedBytes int // Capacity of the released chunks
}

// Collector couples an allocator with the stack whose words are its roots.
type Collector struct {
	alloc *alloc.Allocator
	stack StackMemory
	base  heap.Addr
	log   *slog.Logger

	collections int
	total       Report
}

// New creates a collector and records the stack base: the stack pointer at
// this moment. Only words pushed after New are roots, so New belongs before
// any frame the program wants scanned, and the base is never re-captured.
func New(a *alloc.Allocator, stack StackMemory, cfg *Config) (*Collector, error) {
	if a == nil {
		return nil, fmt.Errorf("gc: %w", heap.ErrClosed)
	}
	if stack == nil {
		return nil, ErrNoStack
	}
	c := &Collector{
		alloc: a,
		stack: stack,
		base:  stack.StackPointer(),
	}
	if cfg != nil && cfg.Logger != nil {
		c.log = cfg.Logger
	} else {
		c.log = a.Logger()
	}
	c.log.Debug("gc init", "stack_base", c.base)
	return c, nil
}

// StackBase returns the stack pointer recorded by New.
func (c *Collector) StackBase() heap.Addr { return c.base }

// Allocator returns the allocator the collector sweeps.
func (c *Collector) Allocator() *alloc.Allocator { return c.alloc }

// Collections returns the number of collections that ran past the empty-heap check.
func (c *Collector) Collections() int { return c.collections }

// Totals returns the sum of every collection's report.
func (c *Collector) Totals() Report { return c.total }

// Collect runs one full mark-sweep cycle. It is a no-op when nothing is
// allocated.
func (c *Collector) Collect() Report {
	if c.alloc.LiveCount() == 0 {
		c.log.Debug("gc skipped", "reason", "empty heap")
		return Report{}
	}
	c.collections++

	c.alloc.ClearMarks()
	m := newMarker(c.alloc)
	m.scanStack(c.stack, c.base)
	m.drain()

	rep := Report{Scanned: m.scanned, Marked: m.marked}
	var victims []alloc.Chunk
	for ch := range c.alloc.Chunks() {
		if ch.Allocated && !ch.Reachable {
			victims = append(victims, ch)
		}
	}
	// Release never moves an allocated chunk, so the collected addresses
	// stay valid while earlier victims are freed.
	for _, ch := range victims {
		c.alloc.Release(ch.Start)
		rep.Freed++
		rep.FreedBytes += ch.Size()
	}
	c.alloc.ClearMarks()

	c.total.Scanned += rep.Scanned
	c.total.Marked += rep.Marked
	c.total.Freed += rep.Freed
	c.total.FreedBytes += rep.FreedBytes
	c.log.Debug("gc done",
		"scanned", rep.Scanned,
		"marked", rep.Marked,
		"freed", rep.Freed,
		"freed_bytes", rep.FreedBytes,
		"used", c.alloc.UsedBytes())
	return rep
}

// Alloc allocates n bytes, collecting once and retrying if the arena is full.
func (c *Collector) Alloc(n int) (heap.Addr, error) {
	addr, err := c.alloc.Alloc(n)
	if !errors.Is(err, alloc.ErrOutOfMemory) {
		return addr, err
	}
	c.log.Debug("gc alloc retry", "bytes", n)
	c.Collect()
	return c.alloc.Alloc(n)
}

// Grow resizes the chunk at addr, collecting once and retrying if the arena
// is full. The chunk at addr survives the collection only if a root still
// refers to it.
func (c *Collector) Grow(addr heap.Addr, n int) (heap.Addr, error) {
	got, err := c.alloc.Grow(addr, n)
	if !errors.Is(err, alloc.ErrOutOfMemory) {
		return got, err
	}
	c.log.Debug("gc grow retry", "addr", addr, "bytes", n)
	c.Collect()
	return c.alloc.Grow(addr, n)
}

// Release frees the chunk at addr immediately.
func (c *Collector) Release(addr heap.Addr) { c.alloc.Release(addr) }
