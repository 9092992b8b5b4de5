package parse

import "io"

// MaxVintBytes is the longest encoding a decoder will consume. A 10 byte
// run with every continuation bit set is accepted and truncated to the
// accumulated 64-bit value rather than rejected, matching how archive
// writers in the wild are handled by unrar.
const MaxVintBytes = 10

// DecodeVint decodes a little-endian base-128 variable-length integer from
// the start of b. Each byte contributes its low 7 bits; the high bit marks
// that another byte follows. It returns the value and the number of bytes
// consumed. An empty slice yields io.EOF; a slice that ends in the middle
// of a value yields io.ErrUnexpectedEOF.
func DecodeVint(b []byte) (uint64, int, error) {
	if len(b) == 0 {
		return 0, 0, io.EOF
	}
	var val uint64
	for i := 0; i < len(b) && i < MaxVintBytes; i++ {
		c := b[i]
		val |= uint64(c&0x7f) << (7 * i)
		if c&0x80 == 0 {
			return val, i + 1, nil
		}
	}
	if len(b) < MaxVintBytes {
		return 0, len(b), io.ErrUnexpectedEOF
	}
	return val, MaxVintBytes, nil
}

// ReadVint decodes a variable-length integer directly from r. It consumes at
// most MaxVintBytes bytes.
func ReadVint(r io.Reader) (uint64, int, error) {
	var val uint64
	for i := 0; i < MaxVintBytes; i++ {
		b, err := ReadU8(r)
		if err != nil {
			if err == io.EOF && i > 0 {
				err = io.ErrUnexpectedEOF
			}
			return 0, i, err
		}
		val |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return val, i + 1, nil
		}
	}
	return val, MaxVintBytes, nil
}
