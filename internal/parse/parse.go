// Package parse provides the low-level read primitives shared by the
// per-format header readers: fixed-width little-endian integers, bounded
// byte buffers and the RAR5 variable-length integer codec.
package parse

import (
	"encoding/binary"
	"io"
)

func ReadU8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func ReadU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func ReadU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func ReadU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

// ReadBytes reads exactly n bytes into a freshly allocated buffer.
func ReadBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// ReadUintN reads n little-endian bytes (0 <= n <= 8) as an unsigned integer.
func ReadUintN(r io.Reader, n int) (uint64, error) {
	buf, err := ReadBytes(r, n)
	if err != nil {
		return 0, err
	}
	var v uint64
	for i, b := range buf {
		v |= uint64(b) << (8 * i)
	}
	return v, nil
}

// StreamPosition returns the current absolute offset of a seekable stream.
func StreamPosition(r io.Seeker) (uint64, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	return uint64(pos), nil
}
