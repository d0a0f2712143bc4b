// Package format houses the packed on-arena representation of chunk
// descriptors together with the alignment arithmetic the allocator uses to
// turn byte counts into allocation units.
package format

const (
	// DescriptorSize is the size of one packed descriptor record in bytes.
	DescriptorSize = 4

	// AlignmentShift is log2 of Alignment.
	AlignmentShift = 4

	// Alignment is the allocation unit in bytes (the largest scalar alignment).
	Alignment = 1 << AlignmentShift

	// AlignmentMask masks the sub-unit bits of a byte count.
	AlignmentMask = Alignment - 1

	// MinUnits is the smallest capacity handed out for any request.
	MinUnits = 1

	// SizeBits is the width of the size field inside a descriptor.
	SizeBits = 29

	// MaxUnits is the largest capacity a single descriptor can express.
	MaxUnits = 1<<SizeBits - 1

	// WordSize is the width of a candidate pointer during conservative scans.
	WordSize = 8
)

// Descriptor bit layout (little-endian uint32):
//
//	Bit     Field
//	0       allocated
//	1       has_next (another record follows toward the arena base)
//	2       reachable (mark bit, only meaningful during collection)
//	3..31   size in allocation units
const (
	allocatedBit = 1 << 0
	hasNextBit   = 1 << 1
	reachableBit = 1 << 2
	sizeShift    = 3
)
