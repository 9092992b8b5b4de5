// Package rar50 decodes archives in the RAR 5.0 format, used by RAR 5
// and later.
//
// Archives contain the signature followed by a sequence of blocks. Each
// block starts with a CRC32 of its header and a set of variable length
// integers: the header size, the block type and the flags. Blocks may
// carry an extra area of tagged records inside the header and a data area
// after it. The sequence normally starts with the main block, or with a
// crypt block when the headers are encrypted, and may finish with an end
// archive block; when that block is absent the sequence is bounded by the
// file size.
package rar50

import (
	"io"

	"github.com/javi11/rarmeta/internal/parse"
)

// BlockIterator walks the blocks of an archive in a single forward pass.
// It is not restartable: it owns the stream position until exhausted.
type BlockIterator struct {
	r        io.ReadSeeker
	fileSize uint64
	next     uint64
	done     bool
}

// NewBlockIterator returns an iterator over the blocks of an archive.
// offset must be the first byte after the signature and fileSize the total
// length of the file, which bounds every size declared by the headers.
func NewBlockIterator(r io.ReadSeeker, offset, fileSize uint64) *BlockIterator {
	return &BlockIterator{r: r, fileSize: fileSize, next: offset}
}

// Next decodes the next block. It returns io.EOF once the end archive
// block has been yielded or the end of the file is reached. Any other
// error terminates the iteration: a header size that cannot be trusted
// means no later offset can be located either.
func (it *BlockIterator) Next() (*Block, error) {
	if it.done || it.next == it.fileSize {
		it.done = true
		return nil, io.EOF
	}

	if _, err := it.r.Seek(int64(it.next), io.SeekStart); err != nil {
		it.done = true
		return nil, err
	}

	block, err := readBlock(it.r)
	if err != nil {
		it.done = true
		return nil, err
	}

	if block.HeaderSize == 0 ||
		block.Position+block.HeaderSize > it.fileSize ||
		block.Position+block.FullSize() > it.fileSize {
		it.done = true
		return nil, parse.ErrCorruptHeader
	}

	// Anything after the end archive block is not part of the archive.
	if _, ok := block.Kind.(*EndArchiveBlock); ok {
		it.done = true
	}

	it.next = block.Position + block.FullSize()
	return block, nil
}
