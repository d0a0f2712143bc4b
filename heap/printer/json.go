package printer

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/joshuapare/gcheap/heap/alloc"
)

// jsonSummary represents the arena totals in JSON format.
type jsonSummary struct {
	Base       string `json:"base"`
	End        string `json:"end"`
	TotalBytes int    `json:"total_bytes"`
	UsedBytes  int    `json:"used_bytes"`
	FreeBytes  int    `json:"free_bytes"`
	Chunks     int    `json:"chunks"`
	Live       int    `json:"live"`
	LiveBytes  int    `json:"live_bytes"`
}

// jsonChunk represents one chain record in JSON format.
type jsonChunk struct {
	Index     int    `json:"index"`
	Start     string `json:"start"`
	End       string `json:"end"`
	Bytes     int    `json:"bytes"`
	Allocated bool   `json:"allocated"`
	Tail      bool   `json:"tail,omitempty"`
	Record    string `json:"record,omitempty"`
	Data      string `json:"data,omitempty"`
}

// jsonHeap is the full dump.
type jsonHeap struct {
	jsonSummary
	ChunkList []jsonChunk  `json:"chunk_list"`
	Stats     *alloc.Stats `json:"stats,omitempty"`
}

func (p *Printer) summary() jsonSummary {
	a := p.src.Arena()
	return jsonSummary{
		Base:       a.Base().String(),
		End:        a.End().String(),
		TotalBytes: p.src.TotalBytes(),
		UsedBytes:  p.src.UsedBytes(),
		FreeBytes:  p.src.FreeBytes(),
		Chunks:     p.src.ChunkCount(),
		Live:       p.src.LiveCount(),
		LiveBytes:  p.src.LiveBytes(),
	}
}

func (p *Printer) printHeapJSON() error {
	out := jsonHeap{jsonSummary: p.summary(), ChunkList: []jsonChunk{}}
	for c := range p.src.Chunks() {
		if !p.visible(c) {
			continue
		}
		jc := jsonChunk{
			Index:     c.Index,
			Start:     c.Start.String(),
			End:       c.End.String(),
			Bytes:     c.Size(),
			Allocated: c.Allocated,
			Tail:      c.Tail,
		}
		if p.opts.ShowRecords {
			if raw, ok := p.src.Record(c.Index); ok {
				jc.Record = fmt.Sprintf("0x%08X", raw)
			}
		}
		if data := p.preview(c); data != nil {
			jc.Data = hex.EncodeToString(data)
		}
		out.ChunkList = append(out.ChunkList, jc)
	}
	if p.opts.ShowStats {
		st := p.src.Stats()
		out.Stats = &st
	}
	return p.writeJSON(out)
}

func (p *Printer) writeJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.writer, "%s\n", data)
	return err
}
