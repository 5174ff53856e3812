package hive

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// Name and value-text decoding.
//
// NK/VK names follow the same compression rule: the compressed flag means
// 8-bit Windows-1252, otherwise UTF-16LE. Value data of the string-shaped
// types (REG_SZ, REG_EXPAND_SZ, REG_LINK, REG_MULTI_SZ) is UTF-16LE and may
// fail to decode on corrupt or non-conformant input; the traversal reports
// that failure to the caller instead of papering over it, because forensic
// output must preserve the undecodable raw bytes.

const (
	surrogateMin = 0xD800
	surrogateLow = 0xDC00
	surrogateMax = 0xE000
	surrogateOff = 0x10000
)

func isASCII(b []byte) bool {
	for _, c := range b {
		if c >= 0x80 {
			return false
		}
	}
	return true
}

// decodeCompressedName decodes an 8-bit (Windows-1252) NK/VK name.
func decodeCompressedName(data []byte) string {
	if isASCII(data) {
		return string(data)
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		// Windows-1252 decoding cannot actually fail; keep the raw bytes.
		return string(data)
	}
	return string(decoded)
}

// decodeUTF16LELenient decodes UTF-16LE, substituting U+FFFD for unpaired
// surrogates and a trailing odd byte. Used for names, which the serializer
// re-encodes safely anyway.
func decodeUTF16LELenient(data []byte) string {
	var sb strings.Builder
	sb.Grow(len(data) / 2)
	for i := 0; i+1 < len(data); i += 2 {
		u := uint16(data[i]) | uint16(data[i+1])<<8
		switch {
		case u < surrogateMin || u >= surrogateMax:
			sb.WriteRune(rune(u))
		case u < surrogateLow && i+3 < len(data):
			lo := uint16(data[i+2]) | uint16(data[i+3])<<8
			if lo >= surrogateLow && lo < surrogateMax {
				r := surrogateOff + (rune(u)-surrogateMin)<<10 + (rune(lo) - surrogateLow)
				sb.WriteRune(r)
				i += 2
				continue
			}
			sb.WriteRune(utf8.RuneError)
		default:
			sb.WriteRune(utf8.RuneError)
		}
	}
	if len(data)%2 != 0 {
		sb.WriteRune(utf8.RuneError)
	}
	return sb.String()
}

// DecodeNodeName converts the raw name of an NK record into UTF-8.
func DecodeNodeName(nk NK) string {
	data := nk.Name()
	if len(data) == 0 {
		return ""
	}
	if nk.IsCompressedName() {
		return decodeCompressedName(data)
	}
	return decodeUTF16LELenient(data)
}

// DecodeValueName converts the raw name of a VK record into UTF-8.
// The empty string denotes the node's default value.
func DecodeValueName(vk VK) string {
	data := vk.Name()
	if len(data) == 0 {
		return ""
	}
	if vk.NameCompressed() {
		return decodeCompressedName(data)
	}
	return decodeUTF16LELenient(data)
}

// DecodeUTF16Strict decodes UTF-16LE value data into UTF-8, trimming one
// trailing NUL terminator. Returns ok=false on odd length or unpaired
// surrogates; callers then treat the value as an invalid-decode string and
// keep the raw bytes.
func DecodeUTF16Strict(data []byte) (string, bool) {
	if len(data)%2 != 0 {
		return "", false
	}
	// Trim null terminator
	if len(data) >= 2 && data[len(data)-2] == 0 && data[len(data)-1] == 0 {
		data = data[:len(data)-2]
	}

	var sb strings.Builder
	sb.Grow(len(data) / 2)
	for i := 0; i+1 < len(data); i += 2 {
		u := uint16(data[i]) | uint16(data[i+1])<<8
		if u < surrogateMin || u >= surrogateMax {
			sb.WriteRune(rune(u))
			continue
		}
		if u >= surrogateLow {
			return "", false // low surrogate with no preceding high
		}
		if i+3 >= len(data) {
			return "", false // high surrogate at end
		}
		lo := uint16(data[i+2]) | uint16(data[i+3])<<8
		if lo < surrogateLow || lo >= surrogateMax {
			return "", false
		}
		sb.WriteRune(surrogateOff + (rune(u)-surrogateMin)<<10 + (rune(lo) - surrogateLow))
		i += 2
	}
	return sb.String(), true
}

// DecodeMultiSZStrict splits REG_MULTI_SZ data (UTF-16LE strings separated
// by NUL, terminated by an empty string) and decodes each entry. Returns
// ok=false on odd length, a missing double-NUL terminator, or any entry
// that fails strict decoding.
func DecodeMultiSZStrict(data []byte) ([]string, bool) {
	if len(data)%2 != 0 {
		return nil, false
	}
	if len(data) < 2 || data[len(data)-1] != 0 || data[len(data)-2] != 0 {
		return nil, false
	}
	var result []string
	start := 0
	for i := 0; i+1 < len(data); i += 2 {
		if data[i] == 0 && data[i+1] == 0 {
			if i == start {
				break
			}
			s, ok := DecodeUTF16Strict(data[start:i])
			if !ok {
				return nil, false
			}
			result = append(result, s)
			start = i + 2
		}
	}
	return result, true
}
