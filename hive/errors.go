package hive

import "errors"

var (
	// ErrNotNode indicates a handle that does not reference a valid NK record.
	// Surfaced distinctly so callers can log and continue instead of aborting.
	ErrNotNode = errors.New("hive: handle does not reference an NK record")

	// ErrNotValue indicates a handle that does not reference a valid VK record.
	ErrNotValue = errors.New("hive: handle does not reference a VK record")

	// ErrNoCell indicates a cell reference that cannot be resolved (out of
	// bounds, free cell, or truncated).
	ErrNoCell = errors.New("hive: unresolvable cell reference")
)
