package rarmeta

import (
	"io"

	"github.com/javi11/rarmeta/internal/parse"
)

// DecodeVint decodes a RAR5 variable-length integer from the start of b:
// little-endian base 128, low 7 bits of each byte carrying value bits and
// the high bit marking that another byte follows. It returns the value and
// the number of bytes consumed, at most 10. A run of 10 continuation bytes
// is truncated to the accumulated value rather than rejected.
func DecodeVint(b []byte) (value uint64, n int, err error) {
	return parse.DecodeVint(b)
}

// ReadVint decodes a RAR5 variable-length integer from r.
func ReadVint(r io.Reader) (value uint64, n int, err error) {
	return parse.ReadVint(r)
}
