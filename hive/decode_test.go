package hive

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/hivexml/internal/testhive"
)

func TestDecodeUTF16Strict(t *testing.T) {
	t.Run("ascii with terminator", func(t *testing.T) {
		s, ok := DecodeUTF16Strict(testhive.EncodeString("hello"))
		require.True(t, ok)
		require.Equal(t, "hello", s)
	})

	t.Run("no terminator", func(t *testing.T) {
		s, ok := DecodeUTF16Strict([]byte{'h', 0, 'i', 0})
		require.True(t, ok)
		require.Equal(t, "hi", s)
	})

	t.Run("surrogate pair", func(t *testing.T) {
		s, ok := DecodeUTF16Strict(testhive.EncodeString("\U0001F600"))
		require.True(t, ok)
		require.Equal(t, "\U0001F600", s)
	})

	t.Run("empty", func(t *testing.T) {
		s, ok := DecodeUTF16Strict(nil)
		require.True(t, ok)
		require.Equal(t, "", s)
	})

	t.Run("odd length", func(t *testing.T) {
		_, ok := DecodeUTF16Strict([]byte{'h', 0, 'i'})
		require.False(t, ok)
	})

	t.Run("unpaired high surrogate", func(t *testing.T) {
		_, ok := DecodeUTF16Strict([]byte{0x00, 0xD8, 'a', 0x00})
		require.False(t, ok)
	})

	t.Run("lone low surrogate", func(t *testing.T) {
		_, ok := DecodeUTF16Strict([]byte{0x00, 0xDC})
		require.False(t, ok)
	})

	t.Run("high surrogate at end", func(t *testing.T) {
		_, ok := DecodeUTF16Strict([]byte{'a', 0x00, 0x00, 0xD8, 0x00, 0x00})
		require.False(t, ok)
	})
}

func TestDecodeMultiSZStrict(t *testing.T) {
	t.Run("two entries", func(t *testing.T) {
		strs, ok := DecodeMultiSZStrict(testhive.EncodeMultiSZ([]string{"alpha", "beta"}))
		require.True(t, ok)
		require.Equal(t, []string{"alpha", "beta"}, strs)
	})

	t.Run("empty list", func(t *testing.T) {
		strs, ok := DecodeMultiSZStrict([]byte{0, 0})
		require.True(t, ok)
		require.Empty(t, strs)
	})

	t.Run("missing terminator", func(t *testing.T) {
		_, ok := DecodeMultiSZStrict([]byte{'a', 0})
		require.False(t, ok)
	})

	t.Run("odd length", func(t *testing.T) {
		_, ok := DecodeMultiSZStrict([]byte{'a', 0, 0})
		require.False(t, ok)
	})

	t.Run("bad entry", func(t *testing.T) {
		// Unpaired surrogate inside the first entry.
		_, ok := DecodeMultiSZStrict([]byte{0x00, 0xD8, 0x00, 0x00, 0x00, 0x00})
		require.False(t, ok)
	})
}

func TestDecodeCompressedName(t *testing.T) {
	require.Equal(t, "Software", decodeCompressedName([]byte("Software")))
	// 0xE9 is e-acute in Windows-1252.
	require.Equal(t, "café", decodeCompressedName([]byte{'c', 'a', 'f', 0xE9}))
}

func TestDecodeUTF16LELenient(t *testing.T) {
	require.Equal(t, "hi", decodeUTF16LELenient([]byte{'h', 0, 'i', 0}))
	// Trailing odd byte and lone surrogates become U+FFFD instead of failing.
	require.Equal(t, "h�", decodeUTF16LELenient([]byte{'h', 0, 'x'}))
	require.Equal(t, "�z", decodeUTF16LELenient([]byte{0x00, 0xDC, 'z', 0x00}))
}
