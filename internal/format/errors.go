package format

import "errors"

var (
	// ErrTruncated indicates the buffer lacked the bytes required for a record.
	ErrTruncated = errors.New("format: truncated buffer")
	// ErrSizeOverflow indicates a size that does not fit the 29-bit size field.
	ErrSizeOverflow = errors.New("format: size exceeds descriptor field")
)
