package rar50

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/javi11/rarmeta/internal/parse"
)

const signatureSize = 8

func vint(v uint64) []byte {
	var out []byte
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		out = append(out, b)
		if v == 0 {
			return out
		}
	}
}

func u32le(v uint32) []byte { return binary.LittleEndian.AppendUint32(nil, v) }
func u64le(v uint64) []byte { return binary.LittleEndian.AppendUint64(nil, v) }

func cat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// record frames an extra area record: its size counts the type vint and
// the payload but not the size field itself.
func record(recordType uint64, payload []byte) []byte {
	inner := append(vint(recordType), payload...)
	return append(vint(uint64(len(inner))), inner...)
}

type archiveBuilder struct {
	buf []byte
}

func newArchiveBuilder() *archiveBuilder {
	return &archiveBuilder{buf: []byte("Rar!\x1a\x07\x01\x00")}
}

// block frames a header: CRC32, the stored size and the body. The stored
// size counts from the byte after its own field.
func (b *archiveBuilder) block(body []byte) *archiveBuilder {
	b.buf = binary.LittleEndian.AppendUint32(b.buf, 0xdeadbeef)
	b.buf = append(b.buf, vint(uint64(len(body)))...)
	b.buf = append(b.buf, body...)
	return b
}

func (b *archiveBuilder) bytes(p []byte) *archiveBuilder {
	b.buf = append(b.buf, p...)
	return b
}

func (b *archiveBuilder) iterator() *BlockIterator {
	return NewBlockIterator(bytes.NewReader(b.buf), signatureSize, uint64(len(b.buf)))
}

func mainBody(mainFlags uint64) []byte {
	return cat(vint(blockMain), vint(0), vint(mainFlags))
}

func endArchiveBody(endFlags uint64) []byte {
	return cat(vint(blockEndArchive), vint(0), vint(endFlags))
}

func TestBlockIterator(t *testing.T) {
	const name = "dir/file.txt"
	fileBody := cat(
		vint(blockFile),
		vint(0x02), // data area follows
		vint(5),    // data size
		vint(0x06), // modification time + crc32
		vint(16),   // unpacked size
		vint(0x20), // attributes
		u32le(1600000000),
		u32le(0xcafebabe),
		vint(0), // compression: store
		vint(1), // host: unix
		vint(uint64(len(name))),
		[]byte(name),
	)

	b := newArchiveBuilder().
		block(mainBody(0x01)).
		block(fileBody).
		bytes([]byte{1, 2, 3, 4, 5}). // packed data
		block(endArchiveBody(0)).
		bytes([]byte("trailing junk"))

	it := b.iterator()

	block, err := it.Next()
	require.NoError(t, err)
	require.Equal(t, uint64(signatureSize), block.Position)
	require.Equal(t, uint64(len(mainBody(0x01))+1+4), block.HeaderSize)
	main, ok := block.Kind.(*MainBlock)
	require.True(t, ok)
	require.True(t, main.Flags.IsVolume())
	require.False(t, main.Flags.HasVolumeNumber())

	next := block.Position + block.FullSize()
	block, err = it.Next()
	require.NoError(t, err)
	require.Equal(t, next, block.Position)
	require.Equal(t, uint64(5), block.DataSize())
	file, ok := block.Kind.(*FileBlock)
	require.True(t, ok)
	require.Equal(t, name, file.Name.String())
	require.Equal(t, uint64(16), file.UnpackedSize)
	require.Equal(t, uint32(0xcafebabe), file.DataCRC32)
	require.Equal(t, HostUnix, file.HostOS)
	require.Equal(t, MethodStore, file.Compression.Method())
	require.NotNil(t, file.ModificationTime)
	require.True(t, file.ModificationTime.Valid)

	block, err = it.Next()
	require.NoError(t, err)
	_, ok = block.Kind.(*EndArchiveBlock)
	require.True(t, ok)

	// Trailing bytes after the end archive block are not part of the
	// archive.
	_, err = it.Next()
	require.ErrorIs(t, err, io.EOF)
	_, err = it.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestBlockIteratorMainWithLocatorAndMetadata(t *testing.T) {
	extra := cat(
		record(mainRecordLocator, cat(vint(0x03), vint(1024), vint(2048))),
		record(mainRecordMetadata, cat(
			vint(0x03), // archive name + creation time, FILETIME
			vint(8),
			[]byte("orig.rar"),
			u64le(128166372003061629),
		)),
	)
	body := cat(
		vint(blockMain),
		vint(0x01), // extra area follows
		vint(uint64(len(extra))),
		vint(0),
		extra,
	)

	it := newArchiveBuilder().block(body).iterator()

	block, err := it.Next()
	require.NoError(t, err)
	main := block.Kind.(*MainBlock)

	require.NotNil(t, main.Locator)
	require.Equal(t, uint64(1024), main.Locator.QuickOpenOffset)
	require.Equal(t, uint64(2048), main.Locator.RecoveryRecordOffset)

	require.NotNil(t, main.Metadata)
	require.Equal(t, "orig.rar", main.Metadata.Name)
	require.NotNil(t, main.Metadata.CreationTime)
	require.Equal(t, "2007-02-22T17:00:00.3061629Z", main.Metadata.CreationTime.String())

	require.Empty(t, main.UnknownRecords)
}

func TestBlockIteratorFileExtraRecords(t *testing.T) {
	const name = "a"
	timeRecord := record(fileRecordTime, cat(
		vint(timeUsesUnixTime|timeHasMtime),
		u32le(1600000000),
	))
	extra := cat(
		timeRecord,
		record(0x77, []byte{0xaa, 0xbb}), // unknown type
		timeRecord,                       // duplicate, demoted to unknown
	)
	body := cat(
		vint(blockFile),
		vint(0x01), // extra area follows
		vint(uint64(len(extra))),
		vint(0), // file flags
		vint(0), // unpacked size
		vint(0), // attributes
		vint(0), // compression
		vint(0), // host
		vint(uint64(len(name))),
		[]byte(name),
		extra,
	)

	it := newArchiveBuilder().block(body).iterator()

	block, err := it.Next()
	require.NoError(t, err)
	file := block.Kind.(*FileBlock)

	require.NotNil(t, file.ExtendedTime)
	require.NotNil(t, file.ExtendedTime.ModificationTime)
	require.True(t, file.ExtendedTime.ModificationTime.Valid)
	require.Nil(t, file.ExtendedTime.CreationTime)

	require.Equal(t, []UnknownRecord{{Tag: 0x77}, {Tag: fileRecordTime}}, file.UnknownRecords)
}

func TestBlockIteratorServiceBlock(t *testing.T) {
	body := cat(
		vint(blockService),
		vint(0x02), // data area follows
		vint(2),    // data size
		vint(0x04), // crc32 present
		vint(2),    // unpacked size
		vint(0),    // attributes
		u32le(0x11223344),
		vint(0), // compression
		vint(0), // host
		vint(3),
		[]byte("CMT"),
	)

	it := newArchiveBuilder().
		block(body).
		bytes([]byte{'h', 'i'}).
		iterator()

	block, err := it.Next()
	require.NoError(t, err)
	svc, ok := block.Kind.(*ServiceBlock)
	require.True(t, ok)
	require.Equal(t, ServiceComment, svc.Type)
	require.Equal(t, []byte("CMT"), svc.RawType)
	require.Equal(t, uint32(0x11223344), svc.DataCRC32)
	require.Equal(t, uint64(2), block.DataSize())

	_, err = it.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestBlockIteratorCryptBlock(t *testing.T) {
	salt := bytes.Repeat([]byte{0x5a}, 16)
	check := bytes.Repeat([]byte{0xc3}, 12)
	body := cat(
		vint(blockCrypt),
		vint(0),                   // common flags
		vint(EncryptionAES256),    // encryption version
		vint(cryptHasPasswordCheck),
		[]byte{15}, // kdf count
		salt,
		check,
	)

	it := newArchiveBuilder().block(body).iterator()

	block, err := it.Next()
	require.NoError(t, err)
	crypt, ok := block.Kind.(*CryptBlock)
	require.True(t, ok)
	require.Equal(t, uint8(EncryptionAES256), crypt.EncryptionVersion)
	require.Equal(t, uint8(15), crypt.KdfCount)
	require.Equal(t, salt, crypt.Salt)
	require.Equal(t, check, crypt.CheckValue)
}

func TestBlockIteratorUnknownBlock(t *testing.T) {
	b := newArchiveBuilder().
		block(cat(vint(0x2a), vint(0x02), vint(3))). // unknown type with data
		bytes([]byte{1, 2, 3}).
		block(endArchiveBody(0))

	it := b.iterator()

	block, err := it.Next()
	require.NoError(t, err)
	unknown, ok := block.Kind.(*UnknownBlock)
	require.True(t, ok)
	require.Equal(t, uint64(0x2a), unknown.Tag)
	require.Equal(t, uint64(3), block.DataSize())

	// The unknown block is skipped by its declared sizes; the next block
	// still decodes.
	block, err = it.Next()
	require.NoError(t, err)
	_, ok = block.Kind.(*EndArchiveBlock)
	require.True(t, ok)
}

func TestBlockIteratorHeaderPastEOF(t *testing.T) {
	// The stored header size reaches past the end of the file.
	b := newArchiveBuilder()
	b.buf = binary.LittleEndian.AppendUint32(b.buf, 0)
	b.buf = append(b.buf, vint(9000)...)
	b.buf = append(b.buf, cat(vint(blockMain), vint(0), vint(0))...)

	it := b.iterator()
	_, err := it.Next()
	require.ErrorIs(t, err, parse.ErrCorruptHeader)
	_, err = it.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestBlockIteratorDataPastEOF(t *testing.T) {
	body := cat(
		vint(blockFile),
		vint(0x02),
		vint(10000), // declared data size past the end of the file
		vint(0),
		vint(0),
		vint(0),
		vint(0),
		vint(0),
		vint(1),
		[]byte("x"),
	)

	it := newArchiveBuilder().block(body).iterator()
	_, err := it.Next()
	require.ErrorIs(t, err, parse.ErrCorruptHeader)
	_, err = it.Next()
	require.ErrorIs(t, err, io.EOF)
}
