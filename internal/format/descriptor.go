package format

import (
	"fmt"

	"github.com/joshuapare/gcheap/internal/buf"
)

// Descriptor is the unpacked form of one chunk header record.
type Descriptor struct {
	Allocated bool
	HasNext   bool
	Reachable bool
	Units     uint32
}

// Encode packs d into its 32-bit wire form. Units above MaxUnits are masked;
// use Put to have them rejected instead.
func (d Descriptor) Encode() uint32 {
	raw := (d.Units & MaxUnits) << sizeShift
	if d.Allocated {
		raw |= allocatedBit
	}
	if d.HasNext {
		raw |= hasNextBit
	}
	if d.Reachable {
		raw |= reachableBit
	}
	return raw
}

// Decode unpacks a raw record.
func Decode(raw uint32) Descriptor {
	return Descriptor{
		Allocated: raw&allocatedBit != 0,
		HasNext:   raw&hasNextBit != 0,
		Reachable: raw&reachableBit != 0,
		Units:     raw >> sizeShift,
	}
}

// Bytes returns the data capacity described by d.
func (d Descriptor) Bytes() uint64 {
	return UnitBytes(d.Units)
}

// String renders the record for debug output.
func (d Descriptor) String() string {
	state := "free"
	if d.Allocated {
		state = "used"
	}
	return fmt.Sprintf("%s units=%d next=%t mark=%t", state, d.Units, d.HasNext, d.Reachable)
}

// Read decodes the record stored at b[off:off+DescriptorSize].
func Read(b []byte, off int) (Descriptor, error) {
	rec, ok := buf.Slice(b, off, DescriptorSize)
	if !ok {
		return Descriptor{}, fmt.Errorf("descriptor at %d: %w", off, ErrTruncated)
	}
	return Decode(buf.U32LE(rec)), nil
}

// Put encodes d into b[off:off+DescriptorSize].
func Put(b []byte, off int, d Descriptor) error {
	if d.Units > MaxUnits {
		return fmt.Errorf("descriptor units %d: %w", d.Units, ErrSizeOverflow)
	}
	rec, ok := buf.Slice(b, off, DescriptorSize)
	if !ok {
		return fmt.Errorf("descriptor at %d: %w", off, ErrTruncated)
	}
	buf.PutU32LE(rec, d.Encode())
	return nil
}
