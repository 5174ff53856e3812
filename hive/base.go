package hive

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/joshuapare/hivexml/internal/format"
)

// BaseBlock represents the 4KiB REGF / HBASE_BLOCK header at the start of
// the hive. Zero-copy: all accessors read directly from bb.raw.
type BaseBlock struct {
	raw []byte // len >= 4096
}

// ParseBaseBlock validates the signature and returns a header view.
func ParseBaseBlock(b []byte) (*BaseBlock, error) {
	if len(b) < format.HeaderSize {
		return nil, fmt.Errorf("regf header: %w (have %d, need %d)", format.ErrTruncated, len(b), format.HeaderSize)
	}
	if !bytes.Equal(b[format.REGFSignatureOffset:format.REGFSignatureOffset+format.REGFSignatureSize], format.REGFSignature) {
		return nil, fmt.Errorf("regf header: %w", format.ErrSignatureMismatch)
	}
	return &BaseBlock{raw: b[:format.HeaderSize]}, nil
}

// Sequence1 returns the primary sequence number.
func (bb *BaseBlock) Sequence1() uint32 { return format.ReadU32(bb.raw, format.REGFPrimarySeqOffset) }

// Sequence2 returns the secondary sequence number.
func (bb *BaseBlock) Sequence2() uint32 { return format.ReadU32(bb.raw, format.REGFSecondarySeqOffset) }

// IsClean returns true if Sequence1 equals Sequence2, indicating no pending writes.
func (bb *BaseBlock) IsClean() bool { return bb.Sequence1() == bb.Sequence2() }

// TimeStampFILETIME returns the header FILETIME at 0x0C, raw 64-bit (100ns since 1601).
func (bb *BaseBlock) TimeStampFILETIME() uint64 {
	return format.ReadU64(bb.raw, format.REGFTimeStampOffset)
}

// Major returns the major version number.
func (bb *BaseBlock) Major() uint32 { return format.ReadU32(bb.raw, format.REGFMajorVersionOffset) }

// Minor returns the minor version number.
func (bb *BaseBlock) Minor() uint32 { return format.ReadU32(bb.raw, format.REGFMinorVersionOffset) }

// RootCellOffset returns the NK root pointer RELATIVE TO 0x1000.
func (bb *BaseBlock) RootCellOffset() uint32 {
	return format.ReadU32(bb.raw, format.REGFRootCellOffset)
}

// DataSize returns the size of the hive data area (sum of HBIN sizes).
func (bb *BaseBlock) DataSize() uint32 { return format.ReadU32(bb.raw, format.REGFDataSizeOffset) }

// ValidateSanity rejects headers whose root pointer or data size cannot fit
// in the file. Checksum mismatches are tolerated: forensic inputs are often
// carved from disk images with stale checksums.
func (bb *BaseBlock) ValidateSanity(fileSize int) error {
	root := bb.RootCellOffset()
	if root == format.InvalidOffset {
		return errors.New("hive: header has no root cell")
	}
	if format.HeaderSize+int(root) >= fileSize {
		return fmt.Errorf("hive: root cell offset 0x%X beyond file size %d", root, fileSize)
	}
	if format.HeaderSize+int(bb.DataSize()) > fileSize {
		return fmt.Errorf("hive: data size %d beyond file size %d", bb.DataSize(), fileSize)
	}
	return nil
}
