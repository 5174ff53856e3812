// Package format houses low-level decoders for the Windows Registry hive file
// format. The goal is to keep the parsing focused, allocation-free where
// possible, and independent from the public API so higher-level packages can
// orchestrate the data in a more ergonomic form.
package format

var (
	// REGFSignature is the four-byte signature at the start of every hive file.
	REGFSignature = []byte{'r', 'e', 'g', 'f'}

	// HBINSignature is the four-byte signature at the beginning of each hive bin.
	HBINSignature = []byte{'h', 'b', 'i', 'n'}

	// NKSignature identifies an NK (Node Key) cell payload.
	NKSignature = []byte{'n', 'k'}

	// VKSignature identifies a VK (Value Key) cell payload.
	VKSignature = []byte{'v', 'k'}

	// LFSignature, LHSignature, and LISignature identify subkey list variants.
	// LF/LH include hashed names, while LI is a linear list without hashes.
	LFSignature = []byte{'l', 'f'}
	LHSignature = []byte{'l', 'h'}
	LISignature = []byte{'l', 'i'}

	// RISignature identifies an RI (indirect) subkey list record used when
	// a key has many subkeys. RI lists contain offsets to multiple LF/LH lists.
	RISignature = []byte{'r', 'i'}

	// DBSignature identifies a Big Data (DB) record for large registry values.
	DBSignature = []byte{'d', 'b'}
)

const (
	// HeaderSize is the size of the REGF header in bytes. In all observed hive
	// variants this is 4096 bytes (the size of a single memory page).
	HeaderSize = 4096

	// HBINHeaderSize is the size of the HBIN header in bytes.
	HBINHeaderSize = 0x20

	// CellHeaderSize is the number of bytes used by the cell header preceding
	// every allocation (free or in-use) within an HBIN.
	CellHeaderSize = 4

	// HiveDataBase is where the hive data starts (first HBIN).
	HiveDataBase = 0x1000

	// HBINAlignment is the required alignment of hive bins (4 KiB on disk).
	HBINAlignment = 0x1000

	// CellAlignment is the required alignment of cells within HBINs.
	CellAlignment = 8

	// CellAlignmentMask is the bitmask used for aligning to 8-byte boundaries.
	CellAlignmentMask = CellAlignment - 1

	// HBIN field offsets within the header structure.
	HBINSignatureOffset  = 0x00
	HBINSignatureSize    = 4
	HBINOffsetEchoOffset = 0x04
	HBINSizeOffset       = 0x08

	// InvalidOffset is a placeholder value used for unused/invalid offset fields.
	InvalidOffset = 0xFFFFFFFF

	// SignatureSize is the size of two-character cell signatures ("nk", "vk", ...).
	SignatureSize = 2

	// DWORDSize and QWORDSize are the widths of the two registry integer types.
	DWORDSize = 4
	QWORDSize = 8
)

// REGF field offsets within the 4 KiB base block.
const (
	REGFSignatureOffset    = 0x000 // 4 bytes, "regf"
	REGFSignatureSize      = 4
	REGFPrimarySeqOffset   = 0x004 // Sequence1 (uint32)
	REGFSecondarySeqOffset = 0x008 // Sequence2 (uint32)
	REGFTimeStampOffset    = 0x00C // uint64 LE, Windows FILETIME
	REGFMajorVersionOffset = 0x014 // uint32
	REGFMinorVersionOffset = 0x018 // uint32
	REGFTypeOffset         = 0x01C // uint32
	REGFFormatOffset       = 0x020 // uint32
	REGFRootCellOffset     = 0x024 // uint32 (HCELL index rel to 0x1000)
	REGFDataSizeOffset     = 0x028 // uint32 (sum of HBIN sizes)
	REGFClusterOffset      = 0x02C // uint32
)

// NK field offsets within the record structure (payload start == "nk").
const (
	NKSignatureOffset      = 0x00 // USHORT, "nk"
	NKFlagsOffset          = 0x02 // USHORT
	NKLastWriteOffset      = 0x04 // LARGE_INTEGER / FILETIME (8 bytes)
	NKLastWriteLen         = 8
	NKParentOffset         = 0x10 // ULONG HCELL_INDEX of parent
	NKSubkeyCountOffset    = 0x14 // ULONG stable subkey count
	NKVolSubkeyCountOffset = 0x18 // ULONG volatile subkey count
	NKSubkeyListOffset     = 0x1C // ULONG HCELL_INDEX to stable subkey list
	NKVolSubkeyListOffset  = 0x20 // ULONG HCELL_INDEX to volatile subkey list
	NKValueCountOffset     = 0x24 // DWORD value count (CHILD_LIST.Count)
	NKValueListOffset      = 0x28 // DWORD HCELL_INDEX to value list (CHILD_LIST.List)
	NKSecurityOffset       = 0x2C // DWORD HCELL_INDEX to SK
	NKClassNameOffset      = 0x30 // DWORD HCELL_INDEX to class data
	NKNameLenOffset        = 0x48 // USHORT name length (bytes!)
	NKClassLenOffset       = 0x4A // USHORT class length (bytes)
	NKNameOffset           = 0x4C // start of inline name

	// NKFlagCompressedName marks the key name as 8-bit (Windows-1252) rather
	// than UTF-16LE (KEY_COMP_NAME).
	NKFlagCompressedName = 0x20

	// NKFixedHeaderSize is the size of the fixed NK header before the name.
	NKFixedHeaderSize = NKNameOffset // 0x4C
	NKMinSize         = NKFixedHeaderSize
)

// VK field offsets within the record structure (payload start == "vk").
const (
	VKSignatureOffset = 0x00 // USHORT, "vk"
	VKNameLenOffset   = 0x02 // USHORT name length
	VKDataLenOffset   = 0x04 // ULONG data length, high bit = inline flag
	VKDataOffOffset   = 0x08 // ULONG data offset or inline data
	VKTypeOffset      = 0x0C // ULONG value type
	VKFlagsOffset     = 0x10 // USHORT flags
	VKNameOffset      = 0x14 // start of inline name

	// VKFlagNameCompressed marks the value name as 8-bit (Windows-1252).
	VKFlagNameCompressed = 0x0001

	// VKSmallDataMask is the high bit of the data length indicating the data
	// is stored inline in the DataOff field (at most 4 bytes).
	VKSmallDataMask = 0x8000_0000

	// VKFixedHeaderSize is the size of the fixed VK header before the name.
	VKFixedHeaderSize = VKNameOffset // 0x14
	VKMinSize         = VKFixedHeaderSize
)

// Subkey index list offsets (shared by lf/lh/li; ri uses the same header).
const (
	IdxSignatureOffset = 0x00 // USHORT signature
	IdxCountOffset     = 0x02 // USHORT entry count
	IdxListOffset      = 0x04 // entries begin here

	// LFFHEntrySize is the entry size in lf/lh lists: offset(4) + hash/hint(4).
	LFFHEntrySize = 8

	// LIEntrySize is the entry size in li/ri lists: offset(4) only.
	LIEntrySize = 4
)

// DB (big data) record offsets and constraints.
const (
	DBSignatureOffset = 0x00 // USHORT, "db"
	DBCountOffset     = 0x02 // USHORT, number of data blocks
	DBListOffset      = 0x04 // ULONG, HCELL_INDEX to blocklist cell
	DBHeaderMinSize   = 0x08

	// DBChunkSize is the amount of value data carried by each DB block.
	// Values above this size are split into chunks starting with hive
	// version 1.4; each block stores 16 KiB minus the cell header overhead.
	DBChunkSize = 16344
)
