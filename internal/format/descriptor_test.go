package format

import (
	"encoding/binary"
	"errors"
	"testing"
)

func TestDescriptorBitLayout(t *testing.T) {
	d := Descriptor{Allocated: true, HasNext: false, Reachable: true, Units: 3}
	// units 3 << 3 = 0x18, allocated 0x1, reachable 0x4
	if got := d.Encode(); got != 0x1D {
		t.Fatalf("Encode = 0x%x, want 0x1d", got)
	}
	if got := Decode(0x1D); got != d {
		t.Fatalf("Decode = %+v, want %+v", got, d)
	}

	top := Descriptor{HasNext: true, Units: MaxUnits}
	raw := top.Encode()
	if raw != 0xFFFFFFFA {
		t.Fatalf("Encode(max) = 0x%x, want 0xfffffffa", raw)
	}
	if Decode(raw).Units != MaxUnits {
		t.Fatalf("max units did not survive packing")
	}
}

func TestReadPut(t *testing.T) {
	b := make([]byte, 8)
	d := Descriptor{Allocated: true, HasNext: true, Units: 42}
	if err := Put(b, 4, d); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if raw := binary.LittleEndian.Uint32(b[4:]); raw != d.Encode() {
		t.Fatalf("stored 0x%x, want 0x%x", raw, d.Encode())
	}
	got, err := Read(b, 4)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got != d {
		t.Fatalf("Read = %+v, want %+v", got, d)
	}
	if d.Bytes() != 42*Alignment {
		t.Fatalf("Bytes = %d", d.Bytes())
	}
}

func TestReadPutErrors(t *testing.T) {
	b := make([]byte, 6)
	if _, err := Read(b, 4); !errors.Is(err, ErrTruncated) {
		t.Fatalf("Read past end: %v, want ErrTruncated", err)
	}
	if err := Put(b, 4, Descriptor{}); !errors.Is(err, ErrTruncated) {
		t.Fatalf("Put past end: %v, want ErrTruncated", err)
	}
	if err := Put(b, 0, Descriptor{Units: MaxUnits + 1}); !errors.Is(err, ErrSizeOverflow) {
		t.Fatalf("Put oversize: %v, want ErrSizeOverflow", err)
	}
}

func TestUnitsFor(t *testing.T) {
	tests := []struct {
		n      int
		units  uint32
		wantOK bool
	}{
		{0, 1, true},
		{1, 1, true},
		{16, 1, true},
		{17, 2, true},
		{4096, 256, true},
		{MaxUnits * Alignment, MaxUnits, true},
		{MaxUnits*Alignment + 1, 0, false},
		{-1, 0, false},
	}
	for _, tt := range tests {
		units, ok := UnitsFor(tt.n)
		if ok != tt.wantOK || units != tt.units {
			t.Errorf("UnitsFor(%d) = %d,%v want %d,%v", tt.n, units, ok, tt.units, tt.wantOK)
		}
	}
}

func TestAlignHelpers(t *testing.T) {
	if !IsAligned(0x10000) || IsAligned(0x10008) {
		t.Fatalf("IsAligned mismatch")
	}
	if UnitBytes(3) != 48 {
		t.Fatalf("UnitBytes(3) = %d", UnitBytes(3))
	}
	if got := UnitBytes(MaxUnits); got != 1<<33-16 {
		t.Fatalf("UnitBytes(MaxUnits) = %d", got)
	}
}
