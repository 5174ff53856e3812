package hive

import (
	"encoding/binary"
	"fmt"

	"github.com/joshuapare/hivexml/internal/format"
	"github.com/joshuapare/hivexml/pkg/types"
)

// VisitFlag adjusts traversal behavior.
type VisitFlag uint32

const (
	// VisitSkipBad skips malformed subkeys and values instead of aborting
	// the traversal on the first one.
	VisitSkipBad VisitFlag = 1 << iota
)

// Visitor is the callback set invoked during a hive traversal. Nil callbacks
// are skipped. NodeStart/NodeEnd bracket each key; the value callbacks fire
// for that key's values strictly in between, one call per value, selected by
// the value's type tag and whether its text payload decoded cleanly.
//
// A non-nil error from any callback aborts the traversal and is returned
// from Visit.
type Visitor struct {
	NodeStart func(node types.NodeID, name string) error
	NodeEnd   func(node types.NodeID, name string) error

	// ValueString receives REG_SZ/REG_EXPAND_SZ/REG_LINK values whose
	// UTF-16LE payload decoded cleanly.
	ValueString func(node types.NodeID, value types.ValueID, typ types.RegType, length int, key, s string) error

	// ValueMultipleStrings receives REG_MULTI_SZ values that decoded cleanly.
	ValueMultipleStrings func(node types.NodeID, value types.ValueID, typ types.RegType, length int, key string, strs []string) error

	// ValueStringInvalid receives string-shaped values whose payload failed
	// UTF-16 decoding; raw holds the undecoded bytes.
	ValueStringInvalid func(node types.NodeID, value types.ValueID, typ types.RegType, length int, key string, raw []byte) error

	// ValueDWORD receives REG_DWORD and REG_DWORD_BE values (endianness
	// already applied).
	ValueDWORD func(node types.NodeID, value types.ValueID, typ types.RegType, length int, key string, v int32) error

	// ValueQWORD receives REG_QWORD values.
	ValueQWORD func(node types.NodeID, value types.ValueID, typ types.RegType, length int, key string, v int64) error

	// ValueBinary receives REG_BINARY values.
	ValueBinary func(node types.NodeID, value types.ValueID, typ types.RegType, length int, key string, raw []byte) error

	// ValueNone receives REG_NONE values.
	ValueNone func(node types.NodeID, value types.ValueID, typ types.RegType, length int, key string, raw []byte) error

	// ValueOther receives resource-descriptor and unrecognized type tags.
	ValueOther func(node types.NodeID, value types.ValueID, typ types.RegType, length int, key string, raw []byte) error
}

// Visit walks the hive tree depth-first starting at the root, invoking the
// visitor's callbacks. Subkeys are visited in subkey-list order after the
// node's values.
func Visit(h *Hive, vis *Visitor, flags VisitFlag) error {
	vs := &visitState{
		h:       h,
		vis:     vis,
		flags:   flags,
		visited: newBitmap(uint32(clampSize(h.Size()))),
	}
	if err := vs.visitNode(h.base.RootCellOffset()); err != nil {
		return fmt.Errorf("hive: visit: %w", err)
	}
	return nil
}

type visitState struct {
	h       *Hive
	vis     *Visitor
	flags   VisitFlag
	visited *bitmap
}

func (vs *visitState) skipBad() bool { return vs.flags&VisitSkipBad != 0 }

func (vs *visitState) visitNode(rel uint32) error {
	if vs.visited.isSet(rel) {
		// Reference loop in a corrupt hive; refuse to revisit.
		return nil
	}
	vs.visited.set(rel)

	payload, err := resolveRelCellPayload(vs.h.data, rel)
	if err != nil {
		if vs.skipBad() {
			return nil
		}
		return fmt.Errorf("node at 0x%X: %w", rel, err)
	}
	nk, err := ParseNK(payload)
	if err != nil {
		if vs.skipBad() {
			return nil
		}
		return fmt.Errorf("node at 0x%X: %w", rel, err)
	}

	id := types.NodeID(format.HeaderSize + rel)
	name := DecodeNodeName(nk)

	if vs.vis.NodeStart != nil {
		if err := vs.vis.NodeStart(id, name); err != nil {
			return err
		}
	}

	if err := vs.visitValues(id, nk); err != nil {
		return err
	}

	if nk.SubkeyCount() > 0 && nk.SubkeyListOffsetRel() != format.InvalidOffset {
		refs, err := subkeyListRefs(vs.h.data, nk.SubkeyListOffsetRel(), 0)
		if err != nil {
			if !vs.skipBad() {
				return fmt.Errorf("node %q: %w", name, err)
			}
		}
		for _, ref := range refs {
			if err := vs.visitNode(ref); err != nil {
				return err
			}
		}
	}

	if vs.vis.NodeEnd != nil {
		if err := vs.vis.NodeEnd(id, name); err != nil {
			return err
		}
	}
	return nil
}

func (vs *visitState) visitValues(node types.NodeID, nk NK) error {
	count := nk.ValueCount()
	if count == 0 || nk.ValueListOffsetRel() == format.InvalidOffset {
		return nil
	}
	listPayload, err := resolveRelCellPayload(vs.h.data, nk.ValueListOffsetRel())
	if err != nil {
		if vs.skipBad() {
			return nil
		}
		return fmt.Errorf("value list: %w", err)
	}
	refs, err := parseValueList(listPayload, count)
	if err != nil {
		if vs.skipBad() {
			return nil
		}
		return err
	}
	for _, ref := range refs {
		if err := vs.visitValue(node, ref); err != nil {
			return err
		}
	}
	return nil
}

func (vs *visitState) visitValue(node types.NodeID, rel uint32) error {
	payload, err := resolveRelCellPayload(vs.h.data, rel)
	if err != nil {
		if vs.skipBad() {
			return nil
		}
		return fmt.Errorf("value at 0x%X: %w", rel, err)
	}
	vk, err := ParseVK(payload)
	if err != nil {
		if vs.skipBad() {
			return nil
		}
		return fmt.Errorf("value at 0x%X: %w", rel, err)
	}

	id := types.ValueID(format.HeaderSize + rel)
	key := DecodeValueName(vk)
	typ := types.RegType(vk.Type())

	data, err := vk.Data(vs.h.data)
	if err != nil {
		if vs.skipBad() {
			return nil
		}
		return fmt.Errorf("value %q: %w", key, err)
	}
	length := len(data)

	switch typ {
	case types.REG_SZ, types.REG_EXPAND_SZ, types.REG_LINK:
		if s, ok := DecodeUTF16Strict(data); ok {
			if vs.vis.ValueString == nil {
				return nil
			}
			return vs.vis.ValueString(node, id, typ, length, key, s)
		}
		return vs.callInvalid(node, id, typ, length, key, data)

	case types.REG_MULTI_SZ:
		if strs, ok := DecodeMultiSZStrict(data); ok {
			if vs.vis.ValueMultipleStrings == nil {
				return nil
			}
			return vs.vis.ValueMultipleStrings(node, id, typ, length, key, strs)
		}
		return vs.callInvalid(node, id, typ, length, key, data)

	case types.REG_DWORD, types.REG_DWORD_BE:
		if length != format.DWORDSize {
			if vs.skipBad() {
				return nil
			}
			return fmt.Errorf("value %q: %s has length %d, want 4", key, typ, length)
		}
		var v int32
		if typ == types.REG_DWORD_BE {
			v = int32(binary.BigEndian.Uint32(data))
		} else {
			v = int32(binary.LittleEndian.Uint32(data))
		}
		if vs.vis.ValueDWORD == nil {
			return nil
		}
		return vs.vis.ValueDWORD(node, id, typ, length, key, v)

	case types.REG_QWORD:
		if length != format.QWORDSize {
			if vs.skipBad() {
				return nil
			}
			return fmt.Errorf("value %q: %s has length %d, want 8", key, typ, length)
		}
		if vs.vis.ValueQWORD == nil {
			return nil
		}
		return vs.vis.ValueQWORD(node, id, typ, length, key, int64(binary.LittleEndian.Uint64(data)))

	case types.REG_BINARY:
		if vs.vis.ValueBinary == nil {
			return nil
		}
		return vs.vis.ValueBinary(node, id, typ, length, key, data)

	case types.REG_NONE:
		if vs.vis.ValueNone == nil {
			return nil
		}
		return vs.vis.ValueNone(node, id, typ, length, key, data)

	default:
		if vs.vis.ValueOther == nil {
			return nil
		}
		return vs.vis.ValueOther(node, id, typ, length, key, data)
	}
}

func (vs *visitState) callInvalid(node types.NodeID, id types.ValueID, typ types.RegType, length int, key string, raw []byte) error {
	if vs.vis.ValueStringInvalid == nil {
		return nil
	}
	return vs.vis.ValueStringInvalid(node, id, typ, length, key, raw)
}

func clampSize(size int64) uint32 {
	switch {
	case size > 0xFFFFFFFF:
		return 0xFFFFFFFF
	case size < 0:
		return 0
	default:
		return uint32(size)
	}
}

// bitmap provides O(1) visited tracking for cell offsets using a bit array.
// Each bit represents one minimum-sized (4 byte) cell slot, replacing a
// map[uint32]bool at a fraction of the memory.
type bitmap struct {
	bits []uint64
}

func newBitmap(hiveSize uint32) *bitmap {
	numBits := (hiveSize + format.CellHeaderSize - 1) / format.CellHeaderSize
	numWords := (numBits + 63) / 64
	return &bitmap{bits: make([]uint64, numWords)}
}

func (b *bitmap) set(offset uint32) {
	bitIdx := offset / format.CellHeaderSize
	wordIdx := bitIdx / 64
	if int(wordIdx) >= len(b.bits) {
		return
	}
	b.bits[wordIdx] |= 1 << (bitIdx % 64)
}

func (b *bitmap) isSet(offset uint32) bool {
	bitIdx := offset / format.CellHeaderSize
	wordIdx := bitIdx / 64
	if int(wordIdx) >= len(b.bits) {
		return false
	}
	return b.bits[wordIdx]&(1<<(bitIdx%64)) != 0
}
