package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joshuapare/gcheap/heap"
	"github.com/joshuapare/gcheap/heap/alloc"
	"github.com/joshuapare/gcheap/heap/gc"
)

// stackSize is the simulated stack every session scans for roots.
const stackSize = 64 * 1024

// session owns one arena with its allocator, stack and collector.
type session struct {
	arena *heap.Arena
	alloc *alloc.Allocator
	stack *gc.Stack
	gc    *gc.Collector

	// Addresses in allocation order; ops refer to chunks by this index.
	addrs []heap.Addr
}

func newSession() (*session, error) {
	var (
		arena *heap.Arena
		err   error
	)
	if useMmap {
		arena, err = heap.Open(arenaSize, nil)
	} else {
		arena, err = heap.New(make([]byte, arenaSize), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create arena: %w", err)
	}

	logger := newLogger()
	a, err := alloc.New(arena, &alloc.Config{Logger: logger})
	if err != nil {
		_ = arena.Close()
		return nil, err
	}
	stack, err := gc.NewStack(stackSize, nil)
	if err != nil {
		_ = arena.Close()
		return nil, err
	}
	c, err := gc.New(a, stack, &gc.Config{Logger: logger})
	if err != nil {
		_ = arena.Close()
		return nil, err
	}
	return &session{arena: arena, alloc: a, stack: stack, gc: c}, nil
}

func (s *session) Close() error { return s.arena.Close() }

// op is one parsed script step.
type op struct {
	kind  byte // a, f, g, r, p, c
	index int
	size  int
}

// parseOp parses a script token:
//
//	a:N     allocate N bytes
//	f:I     release allocation I
//	g:I:N   grow allocation I to N bytes
//	r:I     push allocation I onto the stack as a root
//	p       pop the top stack slot
//	c       collect
func parseOp(tok string) (op, error) {
	parts := strings.Split(tok, ":")
	kind := parts[0]
	args := make([]int, 0, len(parts)-1)
	for _, p := range parts[1:] {
		n, err := strconv.Atoi(p)
		if err != nil {
			return op{}, fmt.Errorf("op %q: %w", tok, err)
		}
		args = append(args, n)
	}

	want := map[string]int{"a": 1, "f": 1, "g": 2, "r": 1, "p": 0, "c": 0}
	n, ok := want[kind]
	if !ok {
		return op{}, fmt.Errorf("op %q: unknown operation %q", tok, kind)
	}
	if len(args) != n {
		return op{}, fmt.Errorf("op %q: expected %d argument(s), got %d", tok, n, len(args))
	}

	o := op{kind: kind[0]}
	switch o.kind {
	case 'a':
		o.size = args[0]
	case 'f', 'r':
		o.index = args[0]
	case 'g':
		o.index, o.size = args[0], args[1]
	}
	return o, nil
}

func parseScript(tokens []string) ([]op, error) {
	ops := make([]op, 0, len(tokens))
	for _, tok := range tokens {
		o, err := parseOp(tok)
		if err != nil {
			return nil, err
		}
		ops = append(ops, o)
	}
	return ops, nil
}

// run applies ops in order and stops at the first failure.
func (s *session) run(ops []op) error {
	for i, o := range ops {
		if err := s.apply(o); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}
	return nil
}

func (s *session) apply(o op) error {
	switch o.kind {
	case 'a':
		addr, err := s.gc.Alloc(o.size)
		if err != nil {
			return err
		}
		s.addrs = append(s.addrs, addr)
		printVerbose("alloc %d -> #%d %s\n", o.size, len(s.addrs)-1, addr)

	case 'f':
		addr, err := s.addr(o.index)
		if err != nil {
			return err
		}
		s.gc.Release(addr)
		printVerbose("free #%d %s\n", o.index, addr)

	case 'g':
		addr, err := s.addr(o.index)
		if err != nil {
			return err
		}
		got, err := s.gc.Grow(addr, o.size)
		if err != nil {
			return err
		}
		s.addrs[o.index] = got
		printVerbose("grow #%d %s -> %s\n", o.index, addr, got)

	case 'r':
		addr, err := s.addr(o.index)
		if err != nil {
			return err
		}
		if _, err := s.stack.Push(uint64(addr)); err != nil {
			return err
		}
		printVerbose("root #%d %s\n", o.index, addr)

	case 'p':
		if _, err := s.stack.Pop(); err != nil {
			return err
		}

	case 'c':
		rep := s.gc.Collect()
		printVerbose("collect: marked %d, freed %d (%d bytes)\n", rep.Marked, rep.Freed, rep.FreedBytes)
	}
	return nil
}

func (s *session) addr(i int) (heap.Addr, error) {
	if i < 0 || i >= len(s.addrs) {
		return heap.NilAddr, fmt.Errorf("no allocation #%d (have %d)", i, len(s.addrs))
	}
	return s.addrs[i], nil
}
