package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose   bool
	quiet     bool
	jsonOut   bool
	arenaSize int
	useMmap   bool
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

// defaultArenaSize is the arena used when --arena-size is not given (64 KiB).
const defaultArenaSize = 1 << 16

var rootCmd = &cobra.Command{
	Use:   "gcheapctl",
	Short: "Exercise and inspect a gcheap arena",
	Long: `gcheapctl drives a gcheap arena: it allocates through the conservative
collector, prints the descriptor chain, and validates chain invariants after
a scripted workload.`,
	Version: version,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and allocator tracing")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().IntVar(&arenaSize, "arena-size", defaultArenaSize, "Arena size in bytes")
	rootCmd.PersistentFlags().BoolVar(&useMmap, "mmap", false, "Back the arena with an anonymous mapping")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger returns the slog logger handed to the allocator and collector.
// Records are rendered by charmbracelet/log on stderr.
func newLogger() *slog.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return slog.New(log.NewWithOptions(os.Stderr, log.Options{
		Level:           level,
		Prefix:          "gcheapctl",
		ReportTimestamp: true,
	}))
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
