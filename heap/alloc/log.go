package alloc

import (
	"io"
	"log/slog"
	"os"
)

// Runtime trace flag, mirrors the allocator's debug printing.
var logAlloc = os.Getenv("GCHEAP_LOG_ALLOC") != ""

func defaultLogger() *slog.Logger {
	if logAlloc {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
