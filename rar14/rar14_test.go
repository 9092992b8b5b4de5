package rar14

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/javi11/rarmeta/internal/parse"
)

const signatureSize = 4

func dosRaw(year, month, day, hour, min, sec int) uint32 {
	return uint32(year-1980)<<25 |
		uint32(month)<<21 |
		uint32(day)<<16 |
		uint32(hour)<<11 |
		uint32(min)<<5 |
		uint32(sec/2)
}

type archiveBuilder struct {
	buf []byte
}

func newArchiveBuilder() *archiveBuilder {
	// The iterator starts after the signature; its content is irrelevant.
	return &archiveBuilder{buf: []byte("RE\x7e\x5e")}
}

func (b *archiveBuilder) u8(v uint8) *archiveBuilder {
	b.buf = append(b.buf, v)
	return b
}

func (b *archiveBuilder) u16(v uint16) *archiveBuilder {
	b.buf = binary.LittleEndian.AppendUint16(b.buf, v)
	return b
}

func (b *archiveBuilder) u32(v uint32) *archiveBuilder {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, v)
	return b
}

func (b *archiveBuilder) bytes(p []byte) *archiveBuilder {
	b.buf = append(b.buf, p...)
	return b
}

func (b *archiveBuilder) mainBlock(headerSize uint16, flags uint8) *archiveBuilder {
	return b.u16(headerSize + signatureSize).u8(flags)
}

func (b *archiveBuilder) fileBlock(name string, packed, unpacked uint32, headerSize uint16, flags, method uint8) *archiveBuilder {
	return b.
		u32(packed).
		u32(unpacked).
		u16(0x1234). // crc16
		u16(headerSize).
		u32(dosRaw(1995, 7, 1, 10, 30, 0)).
		u8(0x20). // attributes
		u8(flags).
		u8(1). // version byte
		u8(uint8(len(name))).
		u8(method).
		bytes([]byte(name))
}

func (b *archiveBuilder) iterator() *BlockIterator {
	return NewBlockIterator(bytes.NewReader(b.buf), signatureSize, uint64(len(b.buf)))
}

func TestBlockIterator(t *testing.T) {
	const fileName = "A.TXT"
	fileHeaderSize := uint16(21 + len(fileName))

	b := newArchiveBuilder().
		mainBlock(3, 0x09). // volume | solid
		fileBlock(fileName, 3, 9, fileHeaderSize, 0x02, 0x30).
		bytes([]byte{1, 2, 3}) // packed data

	it := b.iterator()

	block, err := it.Next()
	require.NoError(t, err)
	require.Equal(t, uint64(signatureSize), block.Position)
	require.Equal(t, uint16(3), block.HeaderSize)
	main, ok := block.Kind.(*MainBlock)
	require.True(t, ok)
	require.True(t, main.Flags.IsVolume())
	require.True(t, main.Flags.IsSolid())
	require.False(t, main.Flags.HasComment())

	next := block.Position + block.FullSize()
	block, err = it.Next()
	require.NoError(t, err)
	require.Equal(t, next, block.Position)
	file, ok := block.Kind.(*FileBlock)
	require.True(t, ok)
	require.Equal(t, fileName, file.Name())
	require.Equal(t, uint32(3), file.PackedDataSize)
	require.Equal(t, uint32(9), file.UnpackedDataSize)
	require.Equal(t, uint8(0x30), file.Method)
	require.True(t, file.Flags.SplitAfter())
	require.False(t, file.Flags.IsEncrypted())
	require.True(t, file.ModificationTime.Valid)
	require.Equal(t, uint64(3), block.DataSize())

	_, err = it.Next()
	require.ErrorIs(t, err, io.EOF)
	_, err = it.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestBlockIteratorZeroHeaderSize(t *testing.T) {
	it := newArchiveBuilder().mainBlock(0, 0).iterator()

	_, err := it.Next()
	require.ErrorIs(t, err, parse.ErrCorruptHeader)
	_, err = it.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestBlockIteratorHeaderPastEOF(t *testing.T) {
	it := newArchiveBuilder().mainBlock(500, 0).iterator()

	_, err := it.Next()
	require.ErrorIs(t, err, parse.ErrCorruptHeader)
	_, err = it.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestBlockIteratorDataPastEOF(t *testing.T) {
	const fileName = "A.TXT"
	fileHeaderSize := uint16(21 + len(fileName))

	// The header fits but the declared packed data runs past the file end.
	it := newArchiveBuilder().
		mainBlock(3, 0).
		fileBlock(fileName, 1000, 1000, fileHeaderSize, 0, 0x30).
		iterator()

	_, err := it.Next()
	require.NoError(t, err)
	_, err = it.Next()
	require.ErrorIs(t, err, parse.ErrCorruptHeader)
	_, err = it.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestMainBlockReadComment(t *testing.T) {
	comment := "HELLO"
	b := newArchiveBuilder().
		mainBlock(uint16(3+2+len(comment)), 0x02). // has comment
		u16(uint16(len(comment))).
		bytes([]byte(comment))

	r := bytes.NewReader(b.buf)
	it := NewBlockIterator(r, signatureSize, uint64(len(b.buf)))

	block, err := it.Next()
	require.NoError(t, err)
	main := block.Kind.(*MainBlock)
	require.True(t, main.Flags.HasComment())

	got, err := main.ReadComment(r)
	require.NoError(t, err)
	require.Equal(t, []byte(comment), got)
}

func TestMainBlockReadCommentAbsent(t *testing.T) {
	b := newArchiveBuilder().mainBlock(3, 0)
	r := bytes.NewReader(b.buf)
	it := NewBlockIterator(r, signatureSize, uint64(len(b.buf)))

	block, err := it.Next()
	require.NoError(t, err)
	main := block.Kind.(*MainBlock)

	got, err := main.ReadComment(r)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestFileBlockNameSeparators(t *testing.T) {
	f := &FileBlock{RawName: []byte(`DIR\SUB\A.TXT`)}
	require.Equal(t, "DIR/SUB/A.TXT", f.Name())
}
