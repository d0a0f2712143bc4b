package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	stressSize       int
	stressIterations int
	stressKeep       int
	stressInterval   time.Duration
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressSize, "size", 1<<12, "Bytes per allocation")
	cmd.Flags().IntVarP(&stressIterations, "iterations", "n", 100, "Number of allocations")
	cmd.Flags().IntVar(&stressKeep, "keep", 0, "Keep every Nth allocation rooted on the stack (0 = none)")
	cmd.Flags().DurationVar(&stressInterval, "interval", 0, "Pause between allocations")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Allocate in a loop through the collector",
		Long: `The stress command allocates fixed-size chunks in a loop through the
collector. Allocations are garbage unless --keep roots them, so the arena is
recycled by collections triggered on exhaustion.

Example:
  gcheapctl stress
  gcheapctl stress --size 256 -n 10000 --keep 50
  gcheapctl stress --interval 1s -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
	return cmd
}

type stressResult struct {
	Iterations  int `json:"iterations"`
	Kept        int `json:"kept"`
	Collections int `json:"collections"`
	Freed       int `json:"freed"`
	FreedBytes  int `json:"freed_bytes"`
	Chunks      int `json:"chunks"`
	Live        int `json:"live"`
	UsedBytes   int `json:"used_bytes"`
	TotalBytes  int `json:"total_bytes"`
}

func runStress() error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	res := stressResult{}
	for i := range stressIterations {
		addr, err := s.gc.Alloc(stressSize)
		if err != nil {
			return fmt.Errorf("iteration %d: %w", i, err)
		}
		res.Iterations++
		if stressKeep > 0 && i%stressKeep == 0 {
			if _, err := s.stack.Push(uint64(addr)); err != nil {
				return fmt.Errorf("iteration %d: %w", i, err)
			}
			res.Kept++
		}
		printVerbose("#%d %s used=%d live=%d\n", i, addr, s.alloc.UsedBytes(), s.alloc.LiveCount())
		if stressInterval > 0 {
			time.Sleep(stressInterval)
		}
	}

	totals := s.gc.Totals()
	res.Collections = s.gc.Collections()
	res.Freed = totals.Freed
	res.FreedBytes = totals.FreedBytes
	res.Chunks = s.alloc.ChunkCount()
	res.Live = s.alloc.LiveCount()
	res.UsedBytes = s.alloc.UsedBytes()
	res.TotalBytes = s.alloc.TotalBytes()

	if jsonOut {
		return printJSON(res)
	}
	printInfo("Iterations: %d (kept %d)\n", res.Iterations, res.Kept)
	printInfo("Collections: %d, freed %d chunk(s), %d bytes\n", res.Collections, res.Freed, res.FreedBytes)
	printInfo("Heap: %d/%d bytes used, %d chunk(s), %d live\n", res.UsedBytes, res.TotalBytes, res.Chunks, res.Live)
	return nil
}
