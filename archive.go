package rarmeta

import (
	"errors"
	"io"

	"github.com/javi11/rarmeta/rar14"
	"github.com/javi11/rarmeta/rar15"
	"github.com/javi11/rarmeta/rar50"
	"github.com/javi11/rarmeta/rartime"
)

// Sentinel errors surfaced by the high-level APIs.
var (
	// ErrNoSignature: no RAR signature was found in the search window.
	ErrNoSignature = errors.New("rar: no signature found")

	// ErrHeadersEncrypted: the block headers themselves are encrypted and
	// cannot be decoded without the password.
	ErrHeadersEncrypted = errors.New("rar: headers are password protected")
)

// Archive is an opened RAR file positioned past its signature.
type Archive struct {
	// Format detected from the signature.
	Format Format

	// SignatureOffset is where the signature starts; non-zero for
	// self-extracting archives.
	SignatureOffset uint64

	r        io.ReadSeeker
	fileSize uint64
}

// OpenReader locates the signature in r and returns an Archive ready for
// block iteration. fileSize must be the total length of the stream; it
// bounds every size declared by the headers. ErrNoSignature is returned
// when no signature exists in the first 2 MiB.
func OpenReader(r io.ReadSeeker, fileSize uint64) (*Archive, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	format, offset, found, err := SearchSignature(r)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNoSignature
	}

	return &Archive{
		Format:          format,
		SignatureOffset: offset,
		r:               r,
		fileSize:        fileSize,
	}, nil
}

// Blocks returns an iterator over the blocks of the archive. The iterator
// owns the stream position until exhausted.
func (a *Archive) Blocks() *BlockIterator {
	offset := a.SignatureOffset + uint64(a.Format.SignatureSize())

	it := &BlockIterator{format: a.Format}
	switch a.Format {
	case FormatRar14:
		it.rar14 = rar14.NewBlockIterator(a.r, offset, a.fileSize)
	case FormatRar15:
		it.rar15 = rar15.NewBlockIterator(a.r, offset, a.fileSize)
	default:
		it.rar50 = rar50.NewBlockIterator(a.r, offset, a.fileSize)
	}
	return it
}

// BlockIterator walks the blocks of an archive of any format, wrapping
// each one in the format-agnostic Block.
type BlockIterator struct {
	format Format
	rar14  *rar14.BlockIterator
	rar15  *rar15.BlockIterator
	rar50  *rar50.BlockIterator
}

// Next decodes the next block. It returns io.EOF at the end of the
// archive; any other error terminates the iteration.
func (it *BlockIterator) Next() (*Block, error) {
	switch it.format {
	case FormatRar14:
		b, err := it.rar14.Next()
		if err != nil {
			return nil, err
		}
		return &Block{Format: FormatRar14, Rar14: b}, nil
	case FormatRar15:
		b, err := it.rar15.Next()
		if err != nil {
			return nil, err
		}
		return &Block{Format: FormatRar15, Rar15: b}, nil
	default:
		b, err := it.rar50.Next()
		if err != nil {
			return nil, err
		}
		return &Block{Format: FormatRar50, Rar50: b}, nil
	}
}

// Entry summarizes one file header.
type Entry struct {
	// Name of the archived file.
	Name string

	// Position is the absolute offset of the file block.
	Position uint64

	// HeaderSize of the file block.
	HeaderSize uint64

	// DataOffset is where the packed data starts in this volume.
	DataOffset uint64

	// PackedSize of the data stored in this volume.
	PackedSize uint64

	// UnpackedSize of the file after decompression. For files split
	// across volumes every part reports the full size.
	UnpackedSize uint64

	// Stored reports whether the data is stored without compression.
	Stored bool

	// Encrypted reports whether the data is password-encrypted.
	Encrypted bool

	// SplitBefore and SplitAfter report whether the data continues from
	// the previous volume or into the next one.
	SplitBefore bool
	SplitAfter  bool

	// ModificationTime of the file; Valid is false when the archive
	// stored none or an undecodable one.
	ModificationTime rartime.Time
}

// The method byte shared by the legacy formats; 0x30 is "storing".
const legacyMethodStore = 0x30

// Entries walks the archive and returns one Entry per file block.
// ErrHeadersEncrypted is returned when the headers cannot be decoded
// without a password.
func (a *Archive) Entries() ([]Entry, error) {
	it := a.Blocks()

	var entries []Entry
	for {
		block, err := it.Next()
		if err == io.EOF {
			return entries, nil
		}
		if err != nil {
			return entries, err
		}

		switch b := block; b.Format {
		case FormatRar14:
			if f, ok := b.Rar14.Kind.(*rar14.FileBlock); ok {
				entries = append(entries, rar14Entry(b.Rar14, f))
			}
		case FormatRar15:
			if m, ok := b.Rar15.Kind.(*rar15.MainBlock); ok && m.Flags.HasPassword() {
				return entries, ErrHeadersEncrypted
			}
			if f, ok := b.Rar15.Kind.(*rar15.FileBlock); ok {
				entries = append(entries, rar15Entry(b.Rar15, f))
			}
		default:
			if _, ok := b.Rar50.Kind.(*rar50.CryptBlock); ok {
				return entries, ErrHeadersEncrypted
			}
			if f, ok := b.Rar50.Kind.(*rar50.FileBlock); ok {
				entries = append(entries, rar50Entry(b.Rar50, f))
			}
		}
	}
}

func rar14Entry(b *rar14.Block, f *rar14.FileBlock) Entry {
	return Entry{
		Name:             f.Name(),
		Position:         b.Position,
		HeaderSize:       uint64(b.HeaderSize),
		DataOffset:       b.Position + uint64(b.HeaderSize),
		PackedSize:       uint64(f.PackedDataSize),
		UnpackedSize:     uint64(f.UnpackedDataSize),
		Stored:           f.Method == legacyMethodStore,
		Encrypted:        f.Flags.IsEncrypted(),
		SplitBefore:      f.Flags.SplitBefore(),
		SplitAfter:       f.Flags.SplitAfter(),
		ModificationTime: f.ModificationTime,
	}
}

func rar15Entry(b *rar15.Block, f *rar15.FileBlock) Entry {
	return Entry{
		Name:             f.Name.String(),
		Position:         b.Position,
		HeaderSize:       uint64(b.HeaderSize),
		DataOffset:       b.Position + uint64(b.HeaderSize),
		PackedSize:       f.PackedDataSize,
		UnpackedSize:     f.UnpackedDataSize,
		Stored:           f.Method == legacyMethodStore,
		Encrypted:        f.Flags.IsEncrypted(),
		SplitBefore:      f.Flags.SplitBefore(),
		SplitAfter:       f.Flags.SplitAfter(),
		ModificationTime: f.ModificationTime,
	}
}

func rar50Entry(b *rar50.Block, f *rar50.FileBlock) Entry {
	e := Entry{
		Name:         f.Name.String(),
		Position:     b.Position,
		HeaderSize:   b.HeaderSize,
		DataOffset:   b.Position + b.HeaderSize,
		PackedSize:   b.StoredDataSize,
		UnpackedSize: f.UnpackedSize,
		Stored:       f.Compression.Method() == rar50.MethodStore,
		Encrypted:    f.Encryption != nil,
		SplitBefore:  b.Flags.SplitBefore(),
		SplitAfter:   b.Flags.SplitAfter(),
	}
	if f.Flags.UnknownUnpackedSize() {
		e.UnpackedSize = 0
	}
	if f.ExtendedTime != nil && f.ExtendedTime.ModificationTime != nil {
		e.ModificationTime = *f.ExtendedTime.ModificationTime
	} else if f.ModificationTime != nil {
		e.ModificationTime = *f.ModificationTime
	}
	return e
}
