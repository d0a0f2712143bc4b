// Package verify provides validation functions for arena descriptor chains.
// These helpers are used in tests and by gcheapctl to ensure chain invariants
// are maintained after every mutation.
package verify

import (
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/joshuapare/gcheap/internal/format"
)

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Offset  int // Block offset of the offending record, or -1
	Details map[string]interface{}
}

func (e *ValidationError) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%X: %s", e.Type, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates every invariant that holds between operations.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(data []byte) error {
	if err := ChainStructure(data); err != nil {
		return err
	}
	if err := Capacity(data); err != nil {
		return err
	}
	if err := NoOverlap(data); err != nil {
		return err
	}
	if err := ChunkSizes(data); err != nil {
		return err
	}
	return NoMarks(data)
}

// Records decodes the chain stored at the end of data, in chain order.
func Records(data []byte) ([]format.Descriptor, error) {
	var recs []format.Descriptor
	for i := 0; ; i++ {
		off := len(data) - format.DescriptorSize*(i+1)
		if off < 0 {
			return recs, &ValidationError{
				Type:    "ChainStructure",
				Message: fmt.Sprintf("chain of %d records runs past the arena base without a tail", i),
				Offset:  -1,
			}
		}
		d, err := format.Read(data, off)
		if err != nil {
			return recs, &ValidationError{Type: "ChainStructure", Message: err.Error(), Offset: off}
		}
		recs = append(recs, d)
		if !d.HasNext {
			return recs, nil
		}
	}
}

// ChainStructure validates that the chain terminates in exactly one tail
// before reaching the data region it describes. A free tail with a non-zero
// size is legal: it lingers until released again.
func ChainStructure(data []byte) error {
	recs, err := Records(data)
	if err != nil {
		return err
	}
	var dataEnd uint64
	for _, d := range recs {
		dataEnd += d.Bytes()
	}
	recStart := len(data) - format.DescriptorSize*len(recs)
	if dataEnd > uint64(recStart) {
		return &ValidationError{
			Type:    "ChainStructure",
			Message: fmt.Sprintf("chunk data ends at 0x%X past the first record at 0x%X", dataEnd, recStart),
			Offset:  recStart,
		}
	}
	return nil
}

// Capacity validates that data plus one record per chunk fits the arena.
func Capacity(data []byte) error {
	recs, err := Records(data)
	if err != nil {
		return err
	}
	var used uint64
	for _, d := range recs {
		used += d.Bytes() + format.DescriptorSize
	}
	if used > uint64(len(data)) {
		return &ValidationError{
			Type:    "Capacity",
			Message: fmt.Sprintf("chain consumes %d bytes of a %d-byte arena", used, len(data)),
			Offset:  -1,
			Details: map[string]interface{}{
				"used":    used,
				"total":   len(data),
				"records": len(recs),
			},
		}
	}
	return nil
}

// NoOverlap validates that no two chunks, and no chunk and the record region,
// share an allocation unit. Ranges are tracked in unit space, which is exact
// because chunk boundaries always fall on unit boundaries.
func NoOverlap(data []byte) error {
	recs, err := Records(data)
	if err != nil {
		return err
	}
	occupied := roaring.New()
	unit := uint64(0)
	for i, d := range recs {
		if d.Units == 0 {
			continue
		}
		span := roaring.New()
		span.AddRange(unit, unit+uint64(d.Units))
		if occupied.Intersects(span) {
			return &ValidationError{
				Type:    "NoOverlap",
				Message: fmt.Sprintf("chunk %d overlaps an earlier chunk", i),
				Offset:  len(data) - format.DescriptorSize*(i+1),
			}
		}
		occupied.Or(span)
		unit += uint64(d.Units)
	}

	recStart := uint64(len(data) - format.DescriptorSize*len(recs))
	records := roaring.New()
	records.AddRange(recStart>>format.AlignmentShift, uint64(len(data)+format.AlignmentMask)>>format.AlignmentShift)
	if occupied.Intersects(records) {
		return &ValidationError{
			Type:    "NoOverlap",
			Message: fmt.Sprintf("chunk data reaches the record region at 0x%X", recStart),
			Offset:  int(recStart),
		}
	}
	return nil
}

// ChunkSizes validates that allocated chunks hold between MinUnits and MaxUnits.
func ChunkSizes(data []byte) error {
	recs, err := Records(data)
	if err != nil {
		return err
	}
	for i, d := range recs {
		if d.Allocated && (d.Units < format.MinUnits || d.Units > format.MaxUnits) {
			return &ValidationError{
				Type:    "ChunkSizes",
				Message: fmt.Sprintf("allocated chunk %d has %d units", i, d.Units),
				Offset:  len(data) - format.DescriptorSize*(i+1),
			}
		}
	}
	return nil
}

// NoMarks validates that no record carries a collector mark. It only holds
// outside a collection.
func NoMarks(data []byte) error {
	recs, err := Records(data)
	if err != nil {
		return err
	}
	for i, d := range recs {
		if d.Reachable {
			return &ValidationError{
				Type:    "NoMarks",
				Message: fmt.Sprintf("chunk %d still marked reachable", i),
				Offset:  len(data) - format.DescriptorSize*(i+1),
			}
		}
	}
	return nil
}
