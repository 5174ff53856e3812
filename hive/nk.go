package hive

import (
	"fmt"

	"github.com/joshuapare/hivexml/internal/format"
)

// NK is a zero-cost view over an "nk" (key node) cell payload.
// It does NOT own memory; it only points into the hive buffer.
type NK struct {
	buf []byte // payload only (starts with "nk")
}

// ParseNK wraps a cell payload as NK and validates the signature.
func ParseNK(payload []byte) (NK, error) {
	if len(payload) < format.NKFixedHeaderSize {
		return NK{}, fmt.Errorf("nk: %w (have %d, need %d)", format.ErrTruncated, len(payload), format.NKFixedHeaderSize)
	}
	if payload[0] != 'n' || payload[1] != 'k' {
		return NK{}, fmt.Errorf("nk: %w: %c%c", format.ErrSignatureMismatch, payload[0], payload[1])
	}
	return NK{buf: payload}, nil
}

// Flags returns the NK flags field.
func (n NK) Flags() uint16 {
	return format.ReadU16(n.buf, format.NKFlagsOffset)
}

// LastWriteFILETIME returns the last write timestamp as a raw FILETIME.
func (n NK) LastWriteFILETIME() uint64 {
	return format.ReadU64(n.buf, format.NKLastWriteOffset)
}

// SubkeyCount returns the stable subkey count.
func (n NK) SubkeyCount() uint32 {
	return format.ReadU32(n.buf, format.NKSubkeyCountOffset)
}

// SubkeyListOffsetRel returns the stable subkey list offset (HCELL_INDEX).
func (n NK) SubkeyListOffsetRel() uint32 {
	return format.ReadU32(n.buf, format.NKSubkeyListOffset)
}

// ValueCount returns CHILD_LIST.Count.
func (n NK) ValueCount() uint32 {
	return format.ReadU32(n.buf, format.NKValueCountOffset)
}

// ValueListOffsetRel returns CHILD_LIST.List (HCELL_INDEX).
func (n NK) ValueListOffsetRel() uint32 {
	return format.ReadU32(n.buf, format.NKValueListOffset)
}

// NameLength returns the key name length in bytes.
func (n NK) NameLength() uint16 {
	return format.ReadU16(n.buf, format.NKNameLenOffset)
}

// IsCompressedName returns true if the key name is 8-bit encoded (not UTF-16LE).
func (n NK) IsCompressedName() bool {
	return n.Flags()&format.NKFlagCompressedName != 0
}

// Name returns the raw key name bytes (Windows-1252 if compressed, UTF-16LE otherwise).
func (n NK) Name() []byte {
	nl := int(n.NameLength())
	if nl == 0 {
		return nil
	}
	end := format.NKNameOffset + nl
	if end > len(n.buf) {
		return nil
	}
	return n.buf[format.NKNameOffset:end]
}
