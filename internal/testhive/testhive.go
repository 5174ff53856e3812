// Package testhive builds small synthetic hive images in memory for tests.
// The images are structurally valid (REGF header, one HBIN, 8-byte aligned
// cells, li subkey lists) but make no attempt at checksum correctness, which
// the reader tolerates anyway.
package testhive

import (
	"strings"
	"time"
	"unicode/utf16"

	"github.com/joshuapare/hivexml/internal/format"
	"github.com/joshuapare/hivexml/pkg/types"
)

// Value describes one registry value to place under a key.
type Value struct {
	Name string
	Type types.RegType
	Data []byte

	// ForceExternal stores the data in its own cell even when it would fit
	// inline in the VK header.
	ForceExternal bool
}

// Key describes one registry key. Subkeys and values are emitted in the
// order given.
type Key struct {
	Name      string
	LastWrite time.Time
	Values    []Value
	Subkeys   []*Key

	// SubkeyListSig selects the subkey list record kind: "li" (default),
	// "lf" (name-prefix hints) or "lh" (hashed names, the common kind in
	// modern hives).
	SubkeyListSig string
}

// defaultLastWrite keeps images deterministic when a test does not care
// about timestamps.
var defaultLastWrite = time.Date(2021, time.March, 14, 9, 26, 53, 0, time.UTC)

// Build serializes the key tree into a complete hive image.
func Build(root *Key) []byte {
	b := &builder{}
	// Reserve the HBIN header; cell offsets are relative to the bin start.
	b.data = make([]byte, format.HBINHeaderSize)

	rootRel := b.writeKey(root)

	// Round the bin up to a page and mark the tail as one free cell.
	binSize := (len(b.data) + format.HBINAlignment - 1) &^ (format.HBINAlignment - 1)
	if free := binSize - len(b.data); free >= format.CellHeaderSize {
		tail := make([]byte, free)
		format.PutI32(tail, 0, int32(free))
		b.data = append(b.data, tail...)
	} else {
		b.data = append(b.data, make([]byte, free)...)
	}

	copy(b.data[format.HBINSignatureOffset:], format.HBINSignature)
	format.PutU32(b.data, format.HBINOffsetEchoOffset, 0)
	format.PutU32(b.data, format.HBINSizeOffset, uint32(binSize))

	hdr := make([]byte, format.HeaderSize)
	copy(hdr[format.REGFSignatureOffset:], format.REGFSignature)
	format.PutU32(hdr, format.REGFPrimarySeqOffset, 1)
	format.PutU32(hdr, format.REGFSecondarySeqOffset, 1)
	format.PutU64(hdr, format.REGFTimeStampOffset, format.TimeToFiletime(lastWrite(root)))
	format.PutU32(hdr, format.REGFMajorVersionOffset, 1)
	format.PutU32(hdr, format.REGFMinorVersionOffset, 5)
	format.PutU32(hdr, format.REGFFormatOffset, 1)
	format.PutU32(hdr, format.REGFRootCellOffset, rootRel)
	format.PutU32(hdr, format.REGFDataSizeOffset, uint32(binSize))

	return append(hdr, b.data...)
}

type builder struct {
	data []byte
}

// alloc appends a cell holding payload and returns its bin-relative offset.
func (b *builder) alloc(payload []byte) uint32 {
	size := format.CellHeaderSize + len(payload)
	size = (size + format.CellAlignmentMask) &^ format.CellAlignmentMask
	rel := uint32(len(b.data))
	cell := make([]byte, size)
	format.PutI32(cell, 0, int32(-size))
	copy(cell[format.CellHeaderSize:], payload)
	b.data = append(b.data, cell...)
	return rel
}

func lastWrite(k *Key) time.Time {
	if k.LastWrite.IsZero() {
		return defaultLastWrite
	}
	return k.LastWrite
}

// writeKey emits the whole subtree rooted at k bottom-up and returns the
// bin-relative offset of its NK cell.
func (b *builder) writeKey(k *Key) uint32 {
	subkeyList := uint32(format.InvalidOffset)
	if len(k.Subkeys) > 0 {
		refs := make([]uint32, len(k.Subkeys))
		for i, sk := range k.Subkeys {
			refs[i] = b.writeKey(sk)
		}
		subkeyList = b.writeSubkeyList(k, refs)
	}

	valueList := uint32(format.InvalidOffset)
	if len(k.Values) > 0 {
		refs := make([]uint32, len(k.Values))
		for i := range k.Values {
			refs[i] = b.writeValue(&k.Values[i])
		}
		list := make([]byte, len(refs)*format.DWORDSize)
		for i, ref := range refs {
			format.PutU32(list, i*format.DWORDSize, ref)
		}
		valueList = b.alloc(list)
	}

	name := []byte(k.Name)
	nk := make([]byte, format.NKFixedHeaderSize+len(name))
	copy(nk, format.NKSignature)
	format.PutU16(nk, format.NKFlagsOffset, format.NKFlagCompressedName)
	format.PutU64(nk, format.NKLastWriteOffset, format.TimeToFiletime(lastWrite(k)))
	format.PutU32(nk, format.NKSubkeyCountOffset, uint32(len(k.Subkeys)))
	format.PutU32(nk, format.NKVolSubkeyCountOffset, 0)
	format.PutU32(nk, format.NKSubkeyListOffset, subkeyList)
	format.PutU32(nk, format.NKVolSubkeyListOffset, format.InvalidOffset)
	format.PutU32(nk, format.NKValueCountOffset, uint32(len(k.Values)))
	format.PutU32(nk, format.NKValueListOffset, valueList)
	format.PutU32(nk, format.NKSecurityOffset, format.InvalidOffset)
	format.PutU32(nk, format.NKClassNameOffset, format.InvalidOffset)
	format.PutU16(nk, format.NKNameLenOffset, uint16(len(name)))
	copy(nk[format.NKNameOffset:], name)
	return b.alloc(nk)
}

// writeSubkeyList emits the subkey list cell for k referencing refs, which
// parallel k.Subkeys.
func (b *builder) writeSubkeyList(k *Key, refs []uint32) uint32 {
	sig := k.SubkeyListSig
	if sig == "" {
		sig = "li"
	}
	switch sig {
	case "li":
		list := make([]byte, format.IdxListOffset+len(refs)*format.LIEntrySize)
		copy(list, format.LISignature)
		format.PutU16(list, format.IdxCountOffset, uint16(len(refs)))
		for i, ref := range refs {
			format.PutU32(list, format.IdxListOffset+i*format.LIEntrySize, ref)
		}
		return b.alloc(list)

	case "lf", "lh":
		list := make([]byte, format.IdxListOffset+len(refs)*format.LFFHEntrySize)
		list[0], list[1] = sig[0], sig[1]
		format.PutU16(list, format.IdxCountOffset, uint16(len(refs)))
		for i, ref := range refs {
			off := format.IdxListOffset + i*format.LFFHEntrySize
			format.PutU32(list, off, ref)
			if sig == "lh" {
				format.PutU32(list, off+format.DWORDSize, lhHash(k.Subkeys[i].Name))
			} else {
				copy(list[off+format.DWORDSize:off+format.LFFHEntrySize], k.Subkeys[i].Name)
			}
		}
		return b.alloc(list)

	default:
		panic("testhive: unknown subkey list signature " + sig)
	}
}

// lhHash is the lh-list name hash: h = h*37 + upper(c) over the key name.
func lhHash(name string) uint32 {
	var h uint32
	for _, c := range strings.ToUpper(name) {
		h = h*37 + uint32(c)
	}
	return h
}

func (b *builder) writeValue(v *Value) uint32 {
	name := []byte(v.Name)
	vk := make([]byte, format.VKFixedHeaderSize+len(name))
	copy(vk, format.VKSignature)
	format.PutU16(vk, format.VKNameLenOffset, uint16(len(name)))
	format.PutU32(vk, format.VKTypeOffset, uint32(v.Type))
	if len(name) > 0 {
		format.PutU16(vk, format.VKFlagsOffset, format.VKFlagNameCompressed)
	}
	copy(vk[format.VKNameOffset:], name)

	switch {
	case len(v.Data) == 0:
		format.PutU32(vk, format.VKDataLenOffset, format.VKSmallDataMask)
		format.PutU32(vk, format.VKDataOffOffset, 0)
	case len(v.Data) <= format.DWORDSize && !v.ForceExternal:
		format.PutU32(vk, format.VKDataLenOffset, format.VKSmallDataMask|uint32(len(v.Data)))
		copy(vk[format.VKDataOffOffset:format.VKDataOffOffset+format.DWORDSize], v.Data)
	default:
		rel := b.alloc(v.Data)
		format.PutU32(vk, format.VKDataLenOffset, uint32(len(v.Data)))
		format.PutU32(vk, format.VKDataOffOffset, rel)
	}
	return b.alloc(vk)
}

// EncodeString encodes s as NUL-terminated UTF-16LE, the on-disk shape of
// REG_SZ/REG_EXPAND_SZ/REG_LINK data.
func EncodeString(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, 0, (len(units)+1)*2)
	for _, u := range units {
		out = append(out, byte(u), byte(u>>8))
	}
	return append(out, 0, 0)
}

// EncodeMultiSZ encodes a REG_MULTI_SZ list: each string NUL-terminated,
// plus the final empty-string terminator.
func EncodeMultiSZ(strs []string) []byte {
	var out []byte
	for _, s := range strs {
		out = append(out, EncodeString(s)...)
	}
	return append(out, 0, 0)
}

// EncodeDWORD encodes a little-endian REG_DWORD payload.
func EncodeDWORD(v uint32) []byte {
	out := make([]byte, format.DWORDSize)
	format.PutU32(out, 0, v)
	return out
}

// EncodeQWORD encodes a little-endian REG_QWORD payload.
func EncodeQWORD(v uint64) []byte {
	out := make([]byte, format.QWORDSize)
	format.PutU64(out, 0, v)
	return out
}
