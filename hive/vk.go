package hive

import (
	"fmt"

	"github.com/joshuapare/hivexml/internal/format"
)

// VK is a zero-cost view over a "vk" (value key) cell payload.
type VK struct {
	buf []byte // payload starting at 'vk'
}

func ParseVK(payload []byte) (VK, error) {
	if len(payload) < format.VKFixedHeaderSize {
		return VK{}, fmt.Errorf("vk: %w (have %d, need %d)", format.ErrTruncated, len(payload), format.VKFixedHeaderSize)
	}
	if payload[0] != 'v' || payload[1] != 'k' {
		return VK{}, fmt.Errorf("vk: %w: %c%c", format.ErrSignatureMismatch, payload[0], payload[1])
	}
	// name slice bounds check happens in Name()
	return VK{buf: payload}, nil
}

func (v VK) Flags() uint16 { return format.ReadU16(v.buf, format.VKFlagsOffset) }
func (v VK) Type() uint32  { return format.ReadU32(v.buf, format.VKTypeOffset) }

func (v VK) NameLen() uint16 {
	return format.ReadU16(v.buf, format.VKNameLenOffset)
}

func (v VK) NameCompressed() bool {
	return v.Flags()&format.VKFlagNameCompressed != 0
}

// Name returns raw name bytes (Windows-1252 if compressed, UTF-16LE otherwise).
// A nil name means the node's default value.
func (v VK) Name() []byte {
	n := int(v.NameLen())
	end := format.VKNameOffset + n
	if n == 0 || end > len(v.buf) {
		return nil
	}
	return v.buf[format.VKNameOffset:end]
}

func (v VK) RawDataLen() uint32 {
	return format.ReadU32(v.buf, format.VKDataLenOffset)
}

// IsSmallData reports whether the data is stored inline in the DataOff field.
func (v VK) IsSmallData() bool {
	return (v.RawDataLen() & format.VKSmallDataMask) != 0
}

func (v VK) DataLen() int {
	if v.IsSmallData() {
		return int(v.RawDataLen() &^ format.VKSmallDataMask)
	}
	return int(v.RawDataLen())
}

func (v VK) DataOffsetRel() uint32 {
	return format.ReadU32(v.buf, format.VKDataOffOffset)
}

// Data returns the value bytes, handling inline (small), external, and
// big-data (DB) storage. hiveBuf must be the whole hive image, needed for
// following HCELL indexes.
func (v VK) Data(hiveBuf []byte) ([]byte, error) {
	n := v.DataLen()
	if n == 0 {
		return nil, nil
	}

	if v.IsSmallData() {
		if n > format.DWORDSize {
			return nil, fmt.Errorf("vk data: inline length %d exceeds 4", n)
		}
		// Inline in the 4-byte DataOff field; safe subslice of the header.
		raw := v.buf[format.VKDataOffOffset : format.VKDataOffOffset+format.DWORDSize]
		return raw[:n:n], nil
	}

	rel := v.DataOffsetRel()
	pl, err := resolveRelCellPayload(hiveBuf, rel)
	if err != nil {
		return nil, fmt.Errorf("vk data: %w", err)
	}

	// Values above one chunk are stored as DB (big data) records since hive
	// version 1.4.
	if n > format.DBChunkSize {
		return readBigData(hiveBuf, pl, n)
	}
	if len(pl) < n {
		return nil, fmt.Errorf("vk data: truncated external cell: have=%d need=%d", len(pl), n)
	}
	return pl[:n:n], nil
}

// readBigData stitches a value's bytes back together from a DB record's
// block list. Each block carries at most DBChunkSize bytes of data.
func readBigData(hiveBuf, dbPayload []byte, n int) ([]byte, error) {
	if len(dbPayload) < format.DBHeaderMinSize {
		return nil, fmt.Errorf("vk data: db: %w", format.ErrTruncated)
	}
	if dbPayload[0] != 'd' || dbPayload[1] != 'b' {
		return nil, fmt.Errorf("vk data: expected DB record for %d-byte value, got %c%c",
			n, dbPayload[0], dbPayload[1])
	}

	count := int(format.ReadU16(dbPayload, format.DBCountOffset))
	listRel := format.ReadU32(dbPayload, format.DBListOffset)
	listPl, err := resolveRelCellPayload(hiveBuf, listRel)
	if err != nil {
		return nil, fmt.Errorf("vk data: DB blocklist: %w", err)
	}
	if len(listPl) < count*format.DWORDSize {
		return nil, fmt.Errorf("vk data: DB blocklist too small for %d blocks", count)
	}

	out := make([]byte, 0, n)
	remaining := n
	for i := 0; i < count && remaining > 0; i++ {
		blockRel := format.ReadU32(listPl, i*format.DWORDSize)
		blockPl, err := resolveRelCellPayload(hiveBuf, blockRel)
		if err != nil {
			return nil, fmt.Errorf("vk data: DB block %d: %w", i, err)
		}
		take := remaining
		if take > format.DBChunkSize {
			take = format.DBChunkSize
		}
		if take > len(blockPl) {
			take = len(blockPl)
		}
		out = append(out, blockPl[:take]...)
		remaining -= take
	}
	if remaining > 0 {
		return nil, fmt.Errorf("vk data: DB blocks short by %d bytes", remaining)
	}
	return out, nil
}
