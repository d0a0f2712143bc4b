//go:build !unix

package memsource

import "fmt"

// Map returns a Go-allocated block when anonymous mappings are not available.
func Map(size int) ([]byte, func() error, error) {
	if size <= 0 {
		return nil, nil, fmt.Errorf("memsource: invalid size %d", size)
	}
	return make([]byte, size), func() error { return nil }, nil
}
