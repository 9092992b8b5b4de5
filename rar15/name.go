package rar15

import "unicode/utf8"

// NameEncoding says how a rar15 filename was stored.
type NameEncoding int

const (
	// EncodingASCII: the name was stored in the archiver's OEM code page
	// but only uses characters in the ASCII range, so it decodes safely.
	EncodingASCII NameEncoding = iota

	// EncodingUnicode: the name field carries a byte-code program that
	// widens the stored name to Unicode.
	EncodingUnicode

	// EncodingOEM: the name uses the archiver's OEM code page and cannot
	// be decoded without knowing which code page that was.
	EncodingOEM
)

// Filename is a rar15 filename. Raw always holds the field as stored;
// Name holds the decoded form when Decoded is true. Decoding problems are
// never fatal: a name that cannot be decoded keeps its raw bytes.
type Filename struct {
	Raw      []byte
	Name     string
	Encoding NameEncoding
	Decoded  bool
}

// String returns the decoded name, or a byte-for-byte conversion of the
// raw field when no decoded form exists.
func (f Filename) String() string {
	if f.Decoded {
		return f.Name
	}
	return string(f.Raw)
}

func newFilename(raw []byte, unicode bool) Filename {
	if unicode {
		name, ok := DecodeFileName(raw)
		return Filename{Raw: raw, Name: name, Encoding: EncodingUnicode, Decoded: ok}
	}
	for _, c := range raw {
		if c >= 0x80 {
			return Filename{Raw: raw, Encoding: EncodingOEM}
		}
	}
	return Filename{Raw: raw, Name: string(raw), Encoding: EncodingASCII, Decoded: true}
}

// DecodeFileName decodes a rar15 filename field that carries the Unicode
// name program: the original narrow-encoded name, a 0x00 separator, then a
// decode program. The first program byte is a "high byte" used to widen
// narrow values; each following instruction byte packs four 2-bit opcodes,
// most significant pair first, one opcode per emitted character:
//
//	0: emit the next program byte.
//	1: emit the next program byte widened with the high byte.
//	2: emit the next two program bytes as a little-endian 16-bit value.
//	3: run copy from the original name, with an optional per-byte
//	   correction when the top bit of the length byte is set.
//
// A field without a separator (or with nothing after it) is plain text.
// ok is false when the field does not decode to valid characters; callers
// should fall back to the raw bytes.
func DecodeFileName(raw []byte) (name string, ok bool) {
	sep := -1
	for i, c := range raw {
		if c == 0 {
			sep = i
			break
		}
	}

	switch {
	case sep < 0:
		if !utf8.Valid(raw) {
			return "", false
		}
		return string(raw), true
	case sep == len(raw)-1:
		plain := raw[:sep]
		if !utf8.Valid(plain) {
			return "", false
		}
		return string(plain), true
	}

	narrow := raw[:sep]
	prog := raw[sep+1:]

	out := make([]rune, 0, len(narrow))
	push := func(v uint32) bool {
		// Surrogate halves are not valid scalar values.
		if v >= 0xd800 && v <= 0xdfff {
			return false
		}
		out = append(out, rune(v))
		return true
	}

	highByte := uint32(prog[0])
	pos := 1

	var flags byte
	counter := 0

	for pos < len(prog) {
		if counter%4 == 0 {
			flags = prog[pos]
			pos++
		}
		if pos >= len(prog) {
			break
		}

		switch (flags >> ((3 - (counter % 4)) * 2)) & 0x03 {
		case 0:
			if !push(uint32(prog[pos])) {
				return "", false
			}
			pos++
		case 1:
			if !push(uint32(prog[pos]) + highByte<<8) {
				return "", false
			}
			pos++
		case 2:
			if pos+1 < len(prog) {
				if !push(uint32(prog[pos]) + uint32(prog[pos+1])<<8) {
					return "", false
				}
				pos += 2
			}
		case 3:
			length := prog[pos]
			pos++

			if length&0x80 != 0 {
				if pos < len(prog) {
					correction := uint32(prog[pos])
					pos++

					for n := int(length&0x7f) + 2; n > 0 && len(out) < len(narrow); n-- {
						v := (uint32(narrow[len(out)])+correction)&0xff + highByte<<8
						if !push(v) {
							return "", false
						}
					}
				}
			} else {
				for n := int(length) + 2; n > 0 && len(out) < len(narrow); n-- {
					if !push(uint32(narrow[len(out)])) {
						return "", false
					}
				}
			}
		}

		counter++
	}

	return string(out), true
}
