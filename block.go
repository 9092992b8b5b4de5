package rarmeta

import (
	"github.com/javi11/rarmeta/rar14"
	"github.com/javi11/rarmeta/rar15"
	"github.com/javi11/rarmeta/rar50"
)

// BlockSize describes the placement of a block in the file, independent of
// the archive format.
type BlockSize interface {
	// Position of the block from the start of the file.
	Position() uint64

	// HeaderSize of the block's header from Position.
	HeaderSize() uint64

	// DataSize of the data contained within the block, starting at
	// Position + HeaderSize.
	DataSize() uint64

	// FullSize of the block from Position.
	FullSize() uint64
}

// Block wraps a decoded block of any format. Exactly one of Rar14, Rar15
// and Rar50 is non-nil, matching Format.
type Block struct {
	Format Format
	Rar14  *rar14.Block
	Rar15  *rar15.Block
	Rar50  *rar50.Block
}

var _ BlockSize = (*Block)(nil)

// Position returns the absolute offset of the block in the file.
func (b *Block) Position() uint64 {
	switch b.Format {
	case FormatRar14:
		return b.Rar14.Position
	case FormatRar15:
		return b.Rar15.Position
	default:
		return b.Rar50.Position
	}
}

// HeaderSize returns the size of the block header.
func (b *Block) HeaderSize() uint64 {
	switch b.Format {
	case FormatRar14:
		return uint64(b.Rar14.HeaderSize)
	case FormatRar15:
		return uint64(b.Rar15.HeaderSize)
	default:
		return b.Rar50.HeaderSize
	}
}

// DataSize returns the size of the data area following the header.
func (b *Block) DataSize() uint64 {
	switch b.Format {
	case FormatRar14:
		return b.Rar14.DataSize()
	case FormatRar15:
		return b.Rar15.DataSize()
	default:
		return b.Rar50.DataSize()
	}
}

// FullSize returns the full size of the block, header and data area.
func (b *Block) FullSize() uint64 {
	return b.HeaderSize() + b.DataSize()
}

// HashKind says which checksum protects a block header.
type HashKind int

const (
	// HashNone: the format stores no header checksum.
	HashNone HashKind = iota
	HashCRC16
	HashCRC32
)

// HeaderHash returns the checksum protecting the block header. RAR14
// headers carry none.
func (b *Block) HeaderHash() (HashKind, uint32) {
	switch b.Format {
	case FormatRar15:
		return HashCRC16, uint32(b.Rar15.HeaderCRC16)
	case FormatRar50:
		return HashCRC32, b.Rar50.HeaderCRC32
	default:
		return HashNone, 0
	}
}
