package rar50

import (
	"strings"
	"unicode/utf8"
)

// Name is a rar50 filename. Names are stored as UTF-8 with forward slash
// as the path separator on every OS; Raw always holds the field as stored
// and Name the decoded form when Decoded is true.
type Name struct {
	Raw     []byte
	Name    string
	Decoded bool
}

// String returns the decoded name, or a byte-for-byte conversion of the
// raw field when no decoded form exists.
func (n Name) String() string {
	if n.Decoded {
		return n.Name
	}
	return string(n.Raw)
}

func newName(raw []byte) Name {
	name, ok := UnmapHighASCII(raw)
	return Name{Raw: raw, Name: name, Decoded: ok}
}

// High bytes that do not form valid UTF-8 on the origin filesystem are
// stored mapped into a private-use band and flagged with a sentinel.
const (
	mappedStringMark = 0xfffe
	mapCharStart     = 0xe000
)

// UnmapHighASCII decodes a stored name. Names that contain the sentinel
// code point have their mapped high bytes shifted back down to the
// original byte value, reinterpreted as a character; names without it
// pass through unchanged. ok is false when the field is not valid UTF-8.
func UnmapHighASCII(raw []byte) (name string, ok bool) {
	if !utf8.Valid(raw) {
		return "", false
	}

	s := string(raw)
	if !strings.ContainsRune(s, mappedStringMark) {
		return s, true
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for _, c := range s {
		switch {
		case c == mappedStringMark:
		case c >= mapCharStart+0x80 && c <= mapCharStart+0xff:
			sb.WriteRune(c - mapCharStart)
		default:
			sb.WriteRune(c)
		}
	}
	return sb.String(), true
}
