package heap

import "fmt"

// Addr is a virtual address inside an arena (or a scanned stack).
type Addr uint64

// NilAddr is never a valid arena address.
const NilAddr Addr = 0

// String renders the address in hex.
func (a Addr) String() string {
	return fmt.Sprintf("0x%X", uint64(a))
}

// Add returns a displaced by n bytes.
func (a Addr) Add(n int) Addr {
	return Addr(int64(a) + int64(n))
}
