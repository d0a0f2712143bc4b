package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/gcheap/heap/printer"
)

var (
	dumpRecords bool
	dumpData    int
	dumpStats   bool
	dumpLive    bool
	dumpSummary bool
)

func init() {
	cmd := newDumpCmd()
	cmd.Flags().BoolVar(&dumpRecords, "records", false, "Show raw packed records")
	cmd.Flags().IntVar(&dumpData, "data", 0, "Show the first N bytes of each allocated chunk")
	cmd.Flags().BoolVar(&dumpStats, "stats", false, "Show allocator counters")
	cmd.Flags().BoolVar(&dumpLive, "live", false, "Hide free chunks")
	cmd.Flags().BoolVar(&dumpSummary, "summary", false, "Show totals only")
	rootCmd.AddCommand(cmd)
}

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [op...]",
		Short: "Run a workload script and print the descriptor chain",
		Long: `The dump command applies a workload script to a fresh arena and prints
every chunk of the resulting chain.

Script operations:
  a:N     allocate N bytes (through the collector)
  f:I     release allocation I
  g:I:N   grow allocation I to N bytes
  r:I     push allocation I onto the stack as a root
  p       pop the top stack slot
  c       collect

Example:
  gcheapctl dump a:64 a:128 a:32 f:1
  gcheapctl dump a:64 a:64 r:0 c --records
  gcheapctl dump a:4096 a:4096 --json --stats`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDump(args)
		},
	}
	return cmd
}

func runDump(args []string) error {
	ops, err := parseScript(args)
	if err != nil {
		return err
	}
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.run(ops); err != nil {
		return err
	}

	opts := printer.DefaultOptions()
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	opts.ShowRecords = dumpRecords
	opts.MaxDataBytes = dumpData
	opts.ShowStats = dumpStats
	opts.ShowFree = !dumpLive

	p := printer.New(s.alloc, os.Stdout, opts)
	if dumpSummary {
		return p.PrintSummary()
	}
	return p.PrintHeap()
}
