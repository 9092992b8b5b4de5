// Package rarmeta decodes the header structure of RAR archives without
// decompressing or decrypting any file data.
//
// Three incompatible generations of the format exist and each gets its own
// subpackage: rar14 (the flat MS-DOS era format), rar15 (the tagged-block
// format used by RAR 1.50 through 4.x) and rar50 (the vint-based format
// introduced with RAR 5). This package locates the archive signature,
// identifies the generation and offers a format-agnostic view over the
// decoded blocks; the subpackages expose the full per-format detail.
package rarmeta

// Format identifies the generation of the RAR format an archive uses.
type Format int

const (
	// FormatRar14 is the earliest format, produced by RAR 1.4x.
	FormatRar14 Format = iota

	// FormatRar15 is the tagged-block format used from RAR 1.50 to 4.x.
	FormatRar15

	// FormatRar50 is the vint-based format used by RAR 5 and later.
	FormatRar50
)

// Archive signatures. The rar14 marker is followed by two version bytes
// that are not part of the match.
var (
	sigRar14 = []byte("RE\x7e\x5e")
	sigRar15 = []byte("Rar!\x1a\x07\x00")
	sigRar50 = []byte("Rar!\x1a\x07\x01\x00")
)

// Signature returns the magic byte sequence of the format.
func (f Format) Signature() []byte {
	switch f {
	case FormatRar14:
		return append([]byte(nil), sigRar14...)
	case FormatRar15:
		return append([]byte(nil), sigRar15...)
	default:
		return append([]byte(nil), sigRar50...)
	}
}

// SignatureSize returns the byte length of the format's signature. The
// first block of an archive starts at the signature offset plus this size.
func (f Format) SignatureSize() uint64 {
	switch f {
	case FormatRar14:
		return 4
	case FormatRar15:
		return 7
	default:
		return 8
	}
}

func (f Format) String() string {
	switch f {
	case FormatRar14:
		return "RAR14"
	case FormatRar15:
		return "RAR15"
	case FormatRar50:
		return "RAR50"
	default:
		return "UNKNOWN"
	}
}
