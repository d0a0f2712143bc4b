package format

// UnitsFor converts a byte count into allocation units, rounding up and
// clamping to MinUnits. ok is false when the result exceeds MaxUnits or n is
// negative.
//
// Example:
//
//	UnitsFor(0)  = 1
//	UnitsFor(16) = 1
//	UnitsFor(17) = 2
func UnitsFor(n int) (units uint32, ok bool) {
	if n < 0 {
		return 0, false
	}
	u := (uint64(n) + AlignmentMask) >> AlignmentShift
	if u > MaxUnits {
		return 0, false
	}
	if u < MinUnits {
		u = MinUnits
	}
	return uint32(u), true
}

// UnitBytes returns the byte span of the given number of units. The result
// is 64-bit wide because MaxUnits spans more than a 32-bit int can hold.
func UnitBytes(units uint32) uint64 {
	return uint64(units) << AlignmentShift
}

// IsAligned reports whether v sits on an allocation-unit boundary.
func IsAligned(v uint64) bool {
	return v&AlignmentMask == 0
}
