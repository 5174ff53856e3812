package hive

import (
	"fmt"

	"github.com/joshuapare/hivexml/internal/format"
)

// resolveRelCellPayload resolves a cell offset relative to the HBIN area
// (HCELL_INDEX) and returns just the payload bytes, skipping the 4-byte
// size header. Allocated cells store their size negated.
func resolveRelCellPayload(data []byte, rel uint32) ([]byte, error) {
	if rel == format.InvalidOffset {
		return nil, fmt.Errorf("%w: invalid offset 0xFFFFFFFF", ErrNoCell)
	}
	abs := format.HeaderSize + int(rel)
	if abs < format.HeaderSize || abs+format.CellHeaderSize > len(data) {
		return nil, fmt.Errorf("%w: offset 0x%X out of bounds", ErrNoCell, rel)
	}

	size := format.ReadI32(data, abs)
	if size >= 0 {
		return nil, fmt.Errorf("%w: cell at 0x%X is free", ErrNoCell, rel)
	}

	n := int(-size)
	if n < format.CellHeaderSize {
		return nil, fmt.Errorf("%w: cell at 0x%X too small (%d)", ErrNoCell, rel, n)
	}
	end := abs + n
	if end > len(data) {
		return nil, fmt.Errorf("%w: cell at 0x%X truncated", ErrNoCell, rel)
	}
	return data[abs+format.CellHeaderSize : end], nil
}

// cellLength returns the total allocated length of the cell at rel,
// including the 4-byte header.
func cellLength(data []byte, rel uint32) (int, error) {
	if rel == format.InvalidOffset {
		return 0, fmt.Errorf("%w: invalid offset 0xFFFFFFFF", ErrNoCell)
	}
	abs := format.HeaderSize + int(rel)
	if abs < format.HeaderSize || abs+format.CellHeaderSize > len(data) {
		return 0, fmt.Errorf("%w: offset 0x%X out of bounds", ErrNoCell, rel)
	}
	size := format.ReadI32(data, abs)
	if size >= 0 {
		return 0, fmt.Errorf("%w: cell at 0x%X is free", ErrNoCell, rel)
	}
	n := int(-size)
	if abs+n > len(data) {
		return 0, fmt.Errorf("%w: cell at 0x%X truncated", ErrNoCell, rel)
	}
	return n, nil
}
