package hive

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hivexml/internal/format"
)

// rawImage hand-assembles cells so tests can exercise layouts the regular
// builder never produces (DB records, corrupt cells).
type rawImage struct {
	data []byte
}

func newRawImage() *rawImage {
	return &rawImage{data: make([]byte, format.HeaderSize+format.HBINHeaderSize)}
}

func (r *rawImage) cell(payload []byte) uint32 {
	size := format.CellHeaderSize + len(payload)
	size = (size + format.CellAlignmentMask) &^ format.CellAlignmentMask
	rel := uint32(len(r.data) - format.HeaderSize)
	cell := make([]byte, size)
	format.PutI32(cell, 0, int32(-size))
	copy(cell[format.CellHeaderSize:], payload)
	r.data = append(r.data, cell...)
	return rel
}

func makeVK(rawDataLen, dataOff uint32) VK {
	buf := make([]byte, format.VKFixedHeaderSize)
	copy(buf, format.VKSignature)
	format.PutU32(buf, format.VKDataLenOffset, rawDataLen)
	format.PutU32(buf, format.VKDataOffOffset, dataOff)
	vk, err := ParseVK(buf)
	if err != nil {
		panic(err)
	}
	return vk
}

func TestVKInlineData(t *testing.T) {
	vk := makeVK(format.VKSmallDataMask|3, 0)
	format.PutU32(vk.buf, format.VKDataOffOffset, 0x00030201)

	require.True(t, vk.IsSmallData())
	require.Equal(t, 3, vk.DataLen())

	data, err := vk.Data(nil)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3}, data)
}

func TestVKInlineDataTooLong(t *testing.T) {
	vk := makeVK(format.VKSmallDataMask|9, 0)
	_, err := vk.Data(nil)
	require.Error(t, err)
}

func TestVKExternalData(t *testing.T) {
	img := newRawImage()
	payload := []byte("external!")
	rel := img.cell(payload)

	vk := makeVK(uint32(len(payload)), rel)
	data, err := vk.Data(img.data)
	require.NoError(t, err)
	require.Equal(t, payload, data)
}

func TestVKExternalDataTruncatedCell(t *testing.T) {
	img := newRawImage()
	rel := img.cell([]byte("abc"))

	vk := makeVK(100, rel)
	_, err := vk.Data(img.data)
	require.Error(t, err)
}

func TestVKBigData(t *testing.T) {
	img := newRawImage()

	n := format.DBChunkSize + 10
	want := bytes.Repeat([]byte{0xAA}, format.DBChunkSize)
	want = append(want, bytes.Repeat([]byte{0xBB}, 10)...)

	block1 := img.cell(want[:format.DBChunkSize])
	block2 := img.cell(want[format.DBChunkSize:])

	list := make([]byte, 2*format.DWORDSize)
	format.PutU32(list, 0, block1)
	format.PutU32(list, format.DWORDSize, block2)
	listRel := img.cell(list)

	db := make([]byte, format.DBHeaderMinSize)
	copy(db, format.DBSignature)
	format.PutU16(db, format.DBCountOffset, 2)
	format.PutU32(db, format.DBListOffset, listRel)
	dbRel := img.cell(db)

	vk := makeVK(uint32(n), dbRel)
	data, err := vk.Data(img.data)
	require.NoError(t, err)
	require.Equal(t, want, data)
}

func TestVKBigDataMissingRecord(t *testing.T) {
	img := newRawImage()
	// Plain cell where a DB record is required for this length.
	rel := img.cell(bytes.Repeat([]byte{1}, 64))

	vk := makeVK(uint32(format.DBChunkSize+1), rel)
	_, err := vk.Data(img.data)
	require.Error(t, err)
}

func TestVKBigDataShortBlocks(t *testing.T) {
	img := newRawImage()

	block := img.cell(bytes.Repeat([]byte{1}, 100))
	list := make([]byte, format.DWORDSize)
	format.PutU32(list, 0, block)
	listRel := img.cell(list)

	db := make([]byte, format.DBHeaderMinSize)
	copy(db, format.DBSignature)
	format.PutU16(db, format.DBCountOffset, 1)
	format.PutU32(db, format.DBListOffset, listRel)
	dbRel := img.cell(db)

	vk := makeVK(uint32(format.DBChunkSize+500), dbRel)
	_, err := vk.Data(img.data)
	require.Error(t, err)
}
