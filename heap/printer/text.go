package printer

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/joshuapare/gcheap/heap/alloc"
)

func (p *Printer) printSummaryText() error {
	a := p.src.Arena()
	_, err := p.num.Fprintf(p.writer,
		"Heap %s..%s (%d bytes)\n"+
			"  Used: %d bytes, Free: %d bytes\n"+
			"  Chunks: %d, Live: %d (%d bytes)\n",
		a.Base(), a.End(), p.src.TotalBytes(),
		p.src.UsedBytes(), p.src.FreeBytes(),
		p.src.ChunkCount(), p.src.LiveCount(), p.src.LiveBytes())
	return err
}

func (p *Printer) printHeapText() error {
	if err := p.printSummaryText(); err != nil {
		return err
	}
	indent := strings.Repeat(" ", p.opts.IndentSize)
	for c := range p.src.Chunks() {
		if !p.visible(c) {
			continue
		}
		if err := p.printChunkText(indent, c); err != nil {
			return err
		}
	}
	if p.opts.ShowStats {
		return p.printStatsText(p.src.Stats())
	}
	return nil
}

func (p *Printer) printChunkText(indent string, c alloc.Chunk) error {
	state := "free"
	if c.Allocated {
		state = "used"
	}
	if c.Tail {
		state += ",tail"
	}
	line := p.num.Sprintf("%s#%-4d %s..%s %10d B  %s", indent, c.Index, c.Start, c.End, c.Size(), state)
	if p.opts.ShowRecords {
		if raw, ok := p.src.Record(c.Index); ok {
			line += fmt.Sprintf("  rec=0x%08X", raw)
		}
	}
	if data := p.preview(c); data != nil {
		line += "  " + hex.EncodeToString(data)
	}
	_, err := fmt.Fprintln(p.writer, line)
	return err
}

func (p *Printer) printStatsText(st alloc.Stats) error {
	_, err := p.num.Fprintf(p.writer,
		"Stats:\n"+
			"  Alloc: %d (reused %d, appended %d)\n"+
			"  Grow: %d (in place %d)\n"+
			"  Free: %d (truncations %d, merges %d, overflow splits %d)\n"+
			"  Failures: %d\n",
		st.AllocCalls, st.AllocReused, st.AllocAppended,
		st.GrowCalls, st.GrowInPlace,
		st.FreeCalls, st.Truncations, st.Merges, st.OverflowSplits,
		st.Failures)
	return err
}
