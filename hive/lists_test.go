package hive

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hivexml/internal/format"
)

// listPayload assembles an index list cell payload: 2-byte signature,
// 2-byte count, then entrySize-wide entries holding the given offsets
// (hash/hint fields zeroed, the reader ignores them).
func listPayload(sig string, entrySize int, offsets ...uint32) []byte {
	pl := make([]byte, format.IdxListOffset+len(offsets)*entrySize)
	pl[0], pl[1] = sig[0], sig[1]
	format.PutU16(pl, format.IdxCountOffset, uint16(len(offsets)))
	for i, off := range offsets {
		format.PutU32(pl, format.IdxListOffset+i*entrySize, off)
	}
	return pl
}

func TestSubkeyListRefsFlatKinds(t *testing.T) {
	for _, tc := range []struct {
		sig       string
		entrySize int
	}{
		{"lf", format.LFFHEntrySize},
		{"lh", format.LFFHEntrySize},
		{"li", format.LIEntrySize},
	} {
		t.Run(tc.sig, func(t *testing.T) {
			img := newRawImage()
			rel := img.cell(listPayload(tc.sig, tc.entrySize, 0x100, 0x200, 0x300))

			refs, err := subkeyListRefs(img.data, rel, 0)
			require.NoError(t, err)
			require.Equal(t, []uint32{0x100, 0x200, 0x300}, refs)
		})
	}
}

func TestSubkeyListRefsRIFlattens(t *testing.T) {
	img := newRawImage()
	lf := img.cell(listPayload("lf", format.LFFHEntrySize, 0x100, 0x200))
	li := img.cell(listPayload("li", format.LIEntrySize, 0x300))
	// Zero and invalid sublist entries are skipped.
	ri := img.cell(listPayload("ri", format.LIEntrySize, lf, 0, format.InvalidOffset, li))

	refs, err := subkeyListRefs(img.data, ri, 0)
	require.NoError(t, err)
	require.Equal(t, []uint32{0x100, 0x200, 0x300}, refs)
}

func TestSubkeyListRefsRIDepthLimit(t *testing.T) {
	img := newRawImage()
	// An ri list referencing itself recurses until the depth bound trips.
	self := uint32(len(img.data) - format.HeaderSize)
	rel := img.cell(listPayload("ri", format.LIEntrySize, self))
	require.Equal(t, self, rel)

	_, err := subkeyListRefs(img.data, rel, 0)
	require.Error(t, err)
	require.Contains(t, err.Error(), "nesting")
}

func TestSubkeyListRefsRejectsBadLists(t *testing.T) {
	t.Run("unknown signature", func(t *testing.T) {
		img := newRawImage()
		rel := img.cell(listPayload("xx", format.LIEntrySize, 0x100))
		_, err := subkeyListRefs(img.data, rel, 0)
		require.Error(t, err)
	})

	t.Run("count beyond payload", func(t *testing.T) {
		img := newRawImage()
		pl := listPayload("lf", format.LFFHEntrySize, 0x100)
		format.PutU16(pl, format.IdxCountOffset, 50)
		rel := img.cell(pl)
		_, err := subkeyListRefs(img.data, rel, 0)
		require.Error(t, err)
	})

	t.Run("unresolvable cell", func(t *testing.T) {
		img := newRawImage()
		_, err := subkeyListRefs(img.data, 0xF000, 0)
		require.Error(t, err)
	})
}
