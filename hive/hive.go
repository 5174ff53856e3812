package hive

import (
	"fmt"
	"os"

	"github.com/joshuapare/hivexml/internal/format"
	"github.com/joshuapare/hivexml/internal/mmfile"
	"github.com/joshuapare/hivexml/pkg/types"
)

// OpenFlag adjusts how a hive is opened.
type OpenFlag uint32

const (
	// OpenDebug prints header diagnostics to stderr after opening.
	OpenDebug OpenFlag = 1 << iota
)

// Hive is the opened hive, backed by mmap (unix/windows) or a byte slice.
// All access is read-only.
type Hive struct {
	data    []byte
	size    int64
	base    *BaseBlock
	cleanup func() error
}

// Open maps the hive file at path read-only and validates its header.
func Open(path string, flags OpenFlag) (*Hive, error) {
	data, cleanup, err := mmfile.Map(path)
	if err != nil {
		return nil, err
	}
	h, err := OpenBytes(data, flags)
	if err != nil {
		_ = cleanup()
		return nil, err
	}
	h.cleanup = cleanup
	if flags&OpenDebug != 0 {
		fmt.Fprintf(os.Stderr,
			"hivexml: opened %s: version %d.%d, sequence %d/%d (clean=%v), root=0x%X, mtime=%s\n",
			path, h.base.Major(), h.base.Minor(),
			h.base.Sequence1(), h.base.Sequence2(), h.base.IsClean(),
			h.Root(), format.FiletimeToTime(h.LastModified()))
	}
	return h, nil
}

// OpenBytes wraps an in-memory hive image. The caller retains ownership of
// data; it must stay alive and unmodified for the lifetime of the Hive.
func OpenBytes(data []byte, _ OpenFlag) (*Hive, error) {
	bb, err := ParseBaseBlock(data)
	if err != nil {
		return nil, err
	}
	if err := bb.ValidateSanity(len(data)); err != nil {
		return nil, err
	}
	return &Hive{
		data: data,
		size: int64(len(data)),
		base: bb,
	}, nil
}

// Close releases the mapping, if any. The Hive must not be used afterwards.
func (h *Hive) Close() error {
	var err error
	if h.cleanup != nil {
		err = h.cleanup()
		h.cleanup = nil
	}
	h.data = nil
	h.base = nil
	return err
}

// Bytes returns the raw hive image.
func (h *Hive) Bytes() []byte { return h.data }

// Size returns the hive file size in bytes.
func (h *Hive) Size() int64 { return h.size }

// Root returns the handle of the root NK cell (absolute file offset).
func (h *Hive) Root() types.NodeID {
	if h == nil || h.base == nil {
		return 0
	}
	return types.NodeID(format.HeaderSize + h.base.RootCellOffset())
}

// LastModified returns the header last-write FILETIME. Zero means the field
// is absent or was never set.
func (h *Hive) LastModified() uint64 {
	if h == nil || h.base == nil {
		return 0
	}
	return h.base.TimeStampFILETIME()
}

// ResolveCellPayload resolves a relative cell offset and returns the payload
// bytes, skipping the 4-byte cell size header.
func (h *Hive) ResolveCellPayload(relOff uint32) ([]byte, error) {
	return resolveRelCellPayload(h.data, relOff)
}

// relOf converts an absolute-offset handle back to an HCELL_INDEX.
func relOf(abs uint32) (uint32, bool) {
	if abs < format.HeaderSize {
		return 0, false
	}
	return abs - format.HeaderSize, true
}

// nodeAt resolves and parses the NK record referenced by a handle.
// Returns ErrNotNode (wrapped) when the handle does not land on one.
func (h *Hive) nodeAt(id types.NodeID) (NK, error) {
	rel, ok := relOf(uint32(id))
	if !ok {
		return NK{}, fmt.Errorf("%w: offset 0x%X inside header", ErrNotNode, uint32(id))
	}
	payload, err := resolveRelCellPayload(h.data, rel)
	if err != nil {
		return NK{}, fmt.Errorf("%w: %v", ErrNotNode, err)
	}
	nk, err := ParseNK(payload)
	if err != nil {
		return NK{}, fmt.Errorf("%w: %v", ErrNotNode, err)
	}
	return nk, nil
}

// valueAt resolves and parses the VK record referenced by a handle.
// Returns ErrNotValue (wrapped) when the handle does not land on one.
func (h *Hive) valueAt(id types.ValueID) (VK, error) {
	rel, ok := relOf(uint32(id))
	if !ok {
		return VK{}, fmt.Errorf("%w: offset 0x%X inside header", ErrNotValue, uint32(id))
	}
	payload, err := resolveRelCellPayload(h.data, rel)
	if err != nil {
		return VK{}, fmt.Errorf("%w: %v", ErrNotValue, err)
	}
	vk, err := ParseVK(payload)
	if err != nil {
		return VK{}, fmt.Errorf("%w: %v", ErrNotValue, err)
	}
	return vk, nil
}

// NodeStructLength returns the on-disk size of the node's own descriptor:
// the fixed NK header plus the inline name. Used for provenance only.
func (h *Hive) NodeStructLength(id types.NodeID) (int, error) {
	nk, err := h.nodeAt(id)
	if err != nil {
		return 0, err
	}
	return format.NKFixedHeaderSize + int(nk.NameLength()), nil
}

// NodeTimestamp returns the node's last-write FILETIME, or 0 when the
// handle is invalid or the field is unset.
func (h *Hive) NodeTimestamp(id types.NodeID) uint64 {
	nk, err := h.nodeAt(id)
	if err != nil {
		return 0
	}
	return nk.LastWriteFILETIME()
}

// ValueStructLength returns the on-disk size of the value's descriptor:
// the fixed VK header plus the inline name. Used for provenance only.
func (h *Hive) ValueStructLength(id types.ValueID) (int, error) {
	vk, err := h.valueAt(id)
	if err != nil {
		return 0, err
	}
	return format.VKFixedHeaderSize + int(vk.NameLen()), nil
}

// ValueDataCellOffset returns the absolute file offset and total length
// (header included) of the out-of-line data cell backing a value. Inline
// (small) data has no data cell; both results are zero in that case.
func (h *Hive) ValueDataCellOffset(id types.ValueID) (uint32, int, error) {
	vk, err := h.valueAt(id)
	if err != nil {
		return 0, 0, err
	}
	if vk.DataLen() == 0 || vk.IsSmallData() {
		return 0, 0, nil
	}
	rel := vk.DataOffsetRel()
	n, err := cellLength(h.data, rel)
	if err != nil {
		return 0, 0, fmt.Errorf("hive: value data cell: %w", err)
	}
	return format.HeaderSize + rel, n, nil
}
