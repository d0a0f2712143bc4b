// Package printer renders the descriptor chain of an allocator for humans
// (text) and tools (JSON).
package printer

import (
	"fmt"
	"io"
	"iter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/joshuapare/gcheap/heap"
	"github.com/joshuapare/gcheap/heap/alloc"
)

const (
	DefaultMaxDataBytes = 0
	DefaultIndentSize   = 2
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs human-readable text format.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// IndentSize is the number of spaces before each chunk line (text format only).
	// Default: 2
	IndentSize int

	// ShowFree includes free and zero-sized chunks.
	// Default: true
	ShowFree bool

	// ShowRecords includes the raw packed record of each chunk.
	// Default: false
	ShowRecords bool

	// ShowStats appends the allocator counters.
	// Default: false
	ShowStats bool

	// MaxDataBytes is how many leading bytes of each allocated chunk to
	// show in hex. 0 disables the preview.
	// Default: 0
	MaxDataBytes int
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:       FormatText,
		IndentSize:   DefaultIndentSize,
		ShowFree:     true,
		ShowRecords:  false,
		ShowStats:    false,
		MaxDataBytes: DefaultMaxDataBytes,
	}
}

// Source is the read-only view of an allocator that the printer needs.
// *alloc.Allocator satisfies it.
type Source interface {
	Arena() *heap.Arena
	Chunks() iter.Seq[alloc.Chunk]
	Record(i int) (uint32, bool)
	Bytes(addr heap.Addr) ([]byte, error)
	UsedBytes() int
	TotalBytes() int
	FreeBytes() int
	ChunkCount() int
	LiveCount() int
	LiveBytes() int
	Stats() alloc.Stats
}

// Printer handles formatted output of a heap.
type Printer struct {
	opts   Options
	writer io.Writer
	src    Source
	num    *message.Printer
}

// New creates a new Printer.
//
// Example:
//
//	p := printer.New(a, os.Stdout, printer.DefaultOptions())
//	p.PrintHeap()
func New(src Source, w io.Writer, opts Options) *Printer {
	return &Printer{
		src:    src,
		writer: w,
		opts:   opts,
		num:    message.NewPrinter(language.English),
	}
}

// PrintHeap prints the arena summary followed by every chunk in chain order.
func (p *Printer) PrintHeap() error {
	switch p.opts.Format {
	case FormatText, "":
		return p.printHeapText()
	case FormatJSON:
		return p.printHeapJSON()
	default:
		return fmt.Errorf("unsupported format: %s", p.opts.Format)
	}
}

// PrintSummary prints only the arena totals.
func (p *Printer) PrintSummary() error {
	switch p.opts.Format {
	case FormatText, "":
		return p.printSummaryText()
	case FormatJSON:
		return p.writeJSON(p.summary())
	default:
		return fmt.Errorf("unsupported format: %s", p.opts.Format)
	}
}

// preview returns up to MaxDataBytes of an allocated chunk's data.
func (p *Printer) preview(c alloc.Chunk) []byte {
	if p.opts.MaxDataBytes <= 0 || !c.Allocated {
		return nil
	}
	b, err := p.src.Bytes(c.Start)
	if err != nil {
		return nil
	}
	return b[:min(len(b), p.opts.MaxDataBytes)]
}

func (p *Printer) visible(c alloc.Chunk) bool {
	return c.Allocated || p.opts.ShowFree
}
