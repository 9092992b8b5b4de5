package rarmeta

import (
	"bytes"
	"io"
)

// MaxSFXSize is the maximum size of a self-extracting (SFX) binary stub
// embedded before the archive signature, including the signature itself.
// A signature ending beyond this offset is not considered part of a valid
// RAR archive.
const MaxSFXSize = 0x200000

// SearchSignature scans the first MaxSFXSize bytes of r for the earliest
// RAR signature and returns the detected format and the absolute offset of
// the signature. found is false when no marker exists within the window;
// that is not an error. The reader is consumed, not repositioned: callers
// seek to offset + format.SignatureSize() before iterating blocks.
func SearchSignature(r io.Reader) (format Format, offset uint64, found bool, err error) {
	const chunkSize = 64 * 1024
	// Longest signature is 8 bytes; keep 7 bytes of overlap between chunks
	// so a marker straddling a read boundary is still seen.
	const overlap = 7

	lr := io.LimitReader(r, MaxSFXSize)
	buf := make([]byte, 0, chunkSize+overlap)
	var base uint64 // absolute offset of buf[0]

	for {
		start := len(buf)
		buf = buf[:start+chunkSize]
		n, rerr := io.ReadFull(lr, buf[start:])
		buf = buf[:start+n]

		if f, i, ok := findSignature(buf); ok {
			return f, base + uint64(i), true, nil
		}

		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			return 0, 0, false, nil
		}
		if rerr != nil {
			return 0, 0, false, rerr
		}

		if len(buf) > overlap {
			base += uint64(len(buf) - overlap)
			copy(buf, buf[len(buf)-overlap:])
			buf = buf[:overlap]
		}
	}
}

// findSignature returns the earliest signature match in buf.
func findSignature(buf []byte) (Format, int, bool) {
	best := -1
	var format Format
	for _, c := range []struct {
		f   Format
		sig []byte
	}{
		{FormatRar14, sigRar14},
		{FormatRar15, sigRar15},
		{FormatRar50, sigRar50},
	} {
		if i := bytes.Index(buf, c.sig); i >= 0 && (best < 0 || i < best) {
			best = i
			format = c.f
		}
	}
	if best < 0 {
		return 0, 0, false
	}
	return format, best, true
}

// ReadSignature reads an 8-byte marker at the current position of r and, if
// it starts with a known signature, seeks past the signature and returns the
// format. found is false for unrecognized markers, in which case the stream
// position is unspecified.
func ReadSignature(r io.ReadSeeker) (format Format, found bool, err error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, false, err
	}

	var marker [8]byte
	if _, err := io.ReadFull(r, marker[:]); err != nil {
		return 0, false, err
	}

	switch {
	case bytes.HasPrefix(marker[:], sigRar50):
		format = FormatRar50
	case bytes.HasPrefix(marker[:], sigRar15):
		format = FormatRar15
	case bytes.HasPrefix(marker[:], sigRar14):
		format = FormatRar14
	default:
		return 0, false, nil
	}

	if _, err := r.Seek(pos+int64(format.SignatureSize()), io.SeekStart); err != nil {
		return 0, false, err
	}
	return format, true, nil
}
