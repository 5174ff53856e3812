package format

import "errors"

var (
	// ErrTruncated indicates a structure extends past the available bytes.
	ErrTruncated = errors.New("format: truncated structure")

	// ErrSignatureMismatch indicates a cell or header signature was wrong.
	ErrSignatureMismatch = errors.New("format: signature mismatch")
)
