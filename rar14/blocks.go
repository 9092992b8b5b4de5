package rar14

import (
	"io"
	"strings"

	"github.com/javi11/rarmeta/internal/parse"
	"github.com/javi11/rarmeta/rartime"
)

// Block is one decoded RAR14 header: the placement fields common to both
// block types plus the kind-specific payload.
type Block struct {
	// Position is the absolute offset of the block in the file.
	Position uint64

	// HeaderSize is the size of the block header starting at Position.
	HeaderSize uint16

	// Kind holds the kind-specific fields: *MainBlock or *FileBlock.
	Kind BlockKind
}

// BlockKind is the kind-specific part of a Block.
type BlockKind interface {
	isBlockKind()
}

// DataSize returns the size of the data area following the header.
func (b *Block) DataSize() uint64 {
	if f, ok := b.Kind.(*FileBlock); ok {
		return uint64(f.PackedDataSize)
	}
	return 0
}

// FullSize returns the full size of the block, header and data area.
func (b *Block) FullSize() uint64 {
	return uint64(b.HeaderSize) + b.DataSize()
}

// MainBlock is located right after the signature and carries metadata for
// the whole archive.
type MainBlock struct {
	// Flags of the main header.
	Flags MainFlags

	position uint64
}

func (*MainBlock) isBlockKind() {}

// MainFlags are the RAR14 main header flags.
type MainFlags uint8

const (
	mainIsVolume      MainFlags = 0x01
	mainHasComment    MainFlags = 0x02
	mainIsLocked      MainFlags = 0x04
	mainIsSolid       MainFlags = 0x08
	mainCommentPacked MainFlags = 0x10
)

// IsVolume reports whether the archive is part of a multi-volume archive.
func (f MainFlags) IsVolume() bool { return f&mainIsVolume != 0 }

// HasComment reports whether the main header embeds an archive comment.
func (f MainFlags) HasComment() bool { return f&mainHasComment != 0 }

// IsLocked reports whether WinRAR will refuse to modify this archive.
func (f MainFlags) IsLocked() bool { return f&mainIsLocked != 0 }

// IsSolid reports whether the archive uses solid compression.
// https://en.wikipedia.org/wiki/Solid_compression
func (f MainFlags) IsSolid() bool { return f&mainIsSolid != 0 }

func (f MainFlags) commentPacked() bool { return f&mainCommentPacked != 0 }

const (
	mainSignatureSize    = 4
	mainHeaderFieldsSize = 3
)

func readMainBlock(r io.ReadSeeker) (*Block, error) {
	position, err := parse.StreamPosition(r)
	if err != nil {
		return nil, err
	}

	// The stored size counts from the signature, which the iterator has
	// already skipped.
	storedSize, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	headerSize := storedSize - mainSignatureSize

	flags, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}

	return &Block{
		Position:   position,
		HeaderSize: headerSize,
		Kind:       &MainBlock{Flags: MainFlags(flags), position: position},
	}, nil
}

// ReadComment reads the archive comment embedded in the main header, if
// any. The comment is not read eagerly with the block; r must be the same
// stream the block was decoded from. A packed comment is reported as nil:
// unpacking it requires the RAR decompressor, which is out of scope.
func (m *MainBlock) ReadComment(r io.ReadSeeker) ([]byte, error) {
	if !m.Flags.HasComment() {
		return nil, nil
	}

	if _, err := r.Seek(int64(m.position+mainHeaderFieldsSize), io.SeekStart); err != nil {
		return nil, err
	}

	size, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}

	if !m.Flags.commentPacked() {
		if size == 0 {
			return nil, nil
		}
		return parse.ReadBytes(r, int(size))
	}

	if size < 2 {
		return nil, nil
	}
	// Packed comment: only the unpacked size is recoverable here.
	if _, err := parse.ReadU16(r); err != nil {
		return nil, err
	}
	return nil, nil
}

// FileBlock describes one archived file.
type FileBlock struct {
	// Flags of the file header.
	Flags FileFlags

	// PackedDataSize is the size of the data area of the block.
	PackedDataSize uint32

	// UnpackedDataSize is the size of the file after unpacking.
	UnpackedDataSize uint32

	// CRC16 of the unpacked file.
	CRC16 uint16

	// ModificationTime of the file, DOS-encoded.
	ModificationTime rartime.Time

	// Attributes are the DOS attributes of the file.
	Attributes uint8

	// UnpackVersion is the format version needed to unpack the file.
	UnpackVersion uint8

	// Method is the compression method byte.
	Method uint8

	// RawName is the filename as stored, in an ANSI/OEM code page.
	RawName []byte
}

func (*FileBlock) isBlockKind() {}

// FileFlags are the RAR14 file header flags.
type FileFlags uint8

const (
	fileSplitBefore FileFlags = 0x01
	fileSplitAfter  FileFlags = 0x02
	fileEncrypted   FileFlags = 0x04
)

// SplitBefore reports whether the file continues from the previous volume.
func (f FileFlags) SplitBefore() bool { return f&fileSplitBefore != 0 }

// SplitAfter reports whether the file continues in the next volume.
func (f FileFlags) SplitAfter() bool { return f&fileSplitAfter != 0 }

// IsEncrypted reports whether the file data is encrypted with a password.
func (f FileFlags) IsEncrypted() bool { return f&fileEncrypted != 0 }

// Name returns the filename with DOS path separators normalized to forward
// slashes. DOS filenames only contain single-byte characters, so each byte
// maps directly to one character.
func (f *FileBlock) Name() string {
	var sb strings.Builder
	sb.Grow(len(f.RawName))
	for _, c := range f.RawName {
		if c == '\\' {
			sb.WriteByte('/')
			continue
		}
		sb.WriteRune(rune(c))
	}
	return sb.String()
}

func readFileBlock(r io.ReadSeeker) (*Block, error) {
	position, err := parse.StreamPosition(r)
	if err != nil {
		return nil, err
	}

	packedDataSize, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	unpackedDataSize, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	crc16, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	headerSize, err := parse.ReadU16(r)
	if err != nil {
		return nil, err
	}
	mtime, err := parse.ReadU32(r)
	if err != nil {
		return nil, err
	}
	attributes, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	flags, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	versionByte, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	unpackVersion := uint8(10)
	if versionByte == 2 {
		unpackVersion = 13
	}
	nameSize, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	method, err := parse.ReadU8(r)
	if err != nil {
		return nil, err
	}
	name, err := parse.ReadBytes(r, int(nameSize))
	if err != nil {
		return nil, err
	}

	return &Block{
		Position:   position,
		HeaderSize: headerSize,
		Kind: &FileBlock{
			Flags:            FileFlags(flags),
			PackedDataSize:   packedDataSize,
			UnpackedDataSize: unpackedDataSize,
			CRC16:            crc16,
			ModificationTime: rartime.DOS(mtime),
			Attributes:       attributes,
			UnpackVersion:    unpackVersion,
			Method:           method,
			RawName:          name,
		},
	}, nil
}
