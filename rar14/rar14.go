// Package rar14 decodes archives compressed with RAR 1.4x.
//
// The RAR14 format was introduced in 1994 and only supported MS-DOS.
// Archives contain the signature, followed by the main block, followed by
// one or more file blocks; there is no end-of-archive marker, the sequence
// is bounded only by the file size. Filenames and comments are encoded
// using an ANSI/OEM code page and may contain characters outside the ASCII
// range.
package rar14

import (
	"io"

	"github.com/javi11/rarmeta/internal/parse"
)

// BlockIterator walks the blocks of a RAR14 archive in a single forward
// pass. It is not restartable: it owns the stream position until exhausted.
type BlockIterator struct {
	r           io.ReadSeeker
	fileSize    uint64
	next        uint64
	readMain    bool
	done        bool
}

// NewBlockIterator returns an iterator over the blocks of an archive.
// offset must be the first byte after the signature and fileSize the total
// length of the file, which bounds every size declared by the headers.
func NewBlockIterator(r io.ReadSeeker, offset, fileSize uint64) *BlockIterator {
	return &BlockIterator{r: r, fileSize: fileSize, next: offset}
}

// Next decodes the next block. It returns io.EOF once the end of the file
// is reached. Any other error terminates the iteration: a header size that
// cannot be trusted means no later offset can be located either.
func (it *BlockIterator) Next() (*Block, error) {
	if it.done || it.next == it.fileSize {
		it.done = true
		return nil, io.EOF
	}

	if _, err := it.r.Seek(int64(it.next), io.SeekStart); err != nil {
		it.done = true
		return nil, err
	}

	var (
		block *Block
		err   error
	)
	if !it.readMain {
		block, err = readMainBlock(it.r)
		it.readMain = true
	} else {
		block, err = readFileBlock(it.r)
	}
	if err != nil {
		it.done = true
		return nil, err
	}

	if block.HeaderSize == 0 ||
		block.Position+uint64(block.HeaderSize) > it.fileSize ||
		block.Position+block.FullSize() > it.fileSize {
		it.done = true
		return nil, parse.ErrCorruptHeader
	}

	it.next = block.Position + block.FullSize()
	return block, nil
}
