package hive

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hivexml/internal/format"
	"github.com/joshuapare/hivexml/internal/testhive"
	"github.com/joshuapare/hivexml/pkg/types"
)

func TestOpenBytesRejectsBadImages(t *testing.T) {
	t.Run("too small", func(t *testing.T) {
		_, err := OpenBytes(make([]byte, 100), 0)
		require.Error(t, err)
	})

	t.Run("bad signature", func(t *testing.T) {
		img := testhive.Build(&testhive.Key{Name: "Root"})
		copy(img, "nope")
		_, err := OpenBytes(img, 0)
		require.Error(t, err)
	})

	t.Run("root beyond file", func(t *testing.T) {
		img := testhive.Build(&testhive.Key{Name: "Root"})
		format.PutU32(img, format.REGFRootCellOffset, uint32(len(img)))
		_, err := OpenBytes(img, 0)
		require.Error(t, err)
	})
}

func TestOpenBytesHappyPath(t *testing.T) {
	mtime := time.Date(2019, time.July, 20, 3, 17, 0, 0, time.UTC)
	img := testhive.Build(&testhive.Key{Name: "Root", LastWrite: mtime})

	h, err := OpenBytes(img, 0)
	require.NoError(t, err)

	require.Greater(t, uint32(h.Root()), uint32(format.HeaderSize))
	require.Equal(t, format.TimeToFiletime(mtime), h.LastModified())
	require.Equal(t, int64(len(img)), h.Size())

	n, err := h.NodeStructLength(h.Root())
	require.NoError(t, err)
	require.Equal(t, format.NKFixedHeaderSize+len("Root"), n)

	require.Equal(t, format.TimeToFiletime(mtime), h.NodeTimestamp(h.Root()))
}

func TestNodeAccessorsRejectBadHandles(t *testing.T) {
	img := testhive.Build(&testhive.Key{Name: "Root"})
	h, err := OpenBytes(img, 0)
	require.NoError(t, err)

	_, err = h.NodeStructLength(types.NodeID(10))
	require.ErrorIs(t, err, ErrNotNode)

	// Offset past the image.
	_, err = h.NodeStructLength(types.NodeID(len(img) + 64))
	require.ErrorIs(t, err, ErrNotNode)

	require.EqualValues(t, 0, h.NodeTimestamp(types.NodeID(10)))

	_, err = h.ValueStructLength(types.ValueID(10))
	require.ErrorIs(t, err, ErrNotValue)

	// A node handle is not a value handle.
	_, err = h.ValueStructLength(types.ValueID(h.Root()))
	require.ErrorIs(t, err, ErrNotValue)
}

func TestValueDataCellOffset(t *testing.T) {
	img := testhive.Build(&testhive.Key{
		Name: "Root",
		Values: []testhive.Value{
			{Name: "Inline", Type: types.REG_DWORD, Data: testhive.EncodeDWORD(7)},
			{Name: "External", Type: types.REG_SZ, Data: testhive.EncodeString("hello")},
			{Name: "Empty", Type: types.REG_NONE},
		},
	})
	h, err := OpenBytes(img, 0)
	require.NoError(t, err)

	ids := map[string]types.ValueID{}
	vis := &Visitor{
		ValueDWORD: func(_ types.NodeID, id types.ValueID, _ types.RegType, _ int, key string, _ int32) error {
			ids[key] = id
			return nil
		},
		ValueString: func(_ types.NodeID, id types.ValueID, _ types.RegType, _ int, key, _ string) error {
			ids[key] = id
			return nil
		},
		ValueNone: func(_ types.NodeID, id types.ValueID, _ types.RegType, _ int, key string, _ []byte) error {
			ids[key] = id
			return nil
		},
	}
	require.NoError(t, Visit(h, vis, 0))
	require.Len(t, ids, 3)

	off, n, err := h.ValueDataCellOffset(ids["Inline"])
	require.NoError(t, err)
	require.EqualValues(t, 0, off)
	require.Zero(t, n)

	off, n, err = h.ValueDataCellOffset(ids["Empty"])
	require.NoError(t, err)
	require.EqualValues(t, 0, off)
	require.Zero(t, n)

	off, n, err = h.ValueDataCellOffset(ids["External"])
	require.NoError(t, err)
	require.Greater(t, off, uint32(format.HeaderSize))
	// Cell header plus the 12-byte payload, rounded up to 8.
	require.GreaterOrEqual(t, n, format.CellHeaderSize+len(testhive.EncodeString("hello")))

	vn, err := h.ValueStructLength(ids["External"])
	require.NoError(t, err)
	require.Equal(t, format.VKFixedHeaderSize+len("External"), vn)
}

func TestCloseIsIdempotent(t *testing.T) {
	img := testhive.Build(&testhive.Key{Name: "Root"})
	h, err := OpenBytes(img, 0)
	require.NoError(t, err)
	require.NoError(t, h.Close())
	require.NoError(t, h.Close())
}
