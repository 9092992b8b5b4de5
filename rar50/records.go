package rar50

import (
	"bytes"
	"io"

	"github.com/javi11/rarmeta/internal/parse"
)

// Record is one raw extra area record: its type tag and payload.
type Record struct {
	// Type tag of the record.
	Type uint64

	// Data is the record payload.
	Data []byte
}

// RecordIterator walks the records of a block's extra area. Each record
// starts with its size and type as vints; the size counts the type but not
// itself, so a record can be skipped without understanding its payload.
type RecordIterator struct {
	r    io.ReadSeeker
	end  uint64
	next uint64
}

// NewRecordIterator returns an iterator over the records of the extra
// area starting at the current stream position.
func NewRecordIterator(r io.ReadSeeker, extraAreaSize uint64) (*RecordIterator, error) {
	offset, err := parse.StreamPosition(r)
	if err != nil {
		return nil, err
	}
	return &RecordIterator{r: r, end: offset + extraAreaSize, next: offset}, nil
}

// Next reads the next record. It returns io.EOF once the extra area is
// exhausted.
func (it *RecordIterator) Next() (*Record, error) {
	if it.next >= it.end {
		return nil, io.EOF
	}

	if _, err := it.r.Seek(int64(it.next), io.SeekStart); err != nil {
		return nil, err
	}

	recordSize, sizeLen, err := parse.ReadVint(it.r)
	if err != nil {
		return nil, err
	}
	recordType, typeLen, err := parse.ReadVint(it.r)
	if err != nil {
		return nil, err
	}
	if recordSize < uint64(typeLen) {
		return nil, parse.ErrCorruptHeader
	}

	data, err := parse.ReadBytes(it.r, int(recordSize)-typeLen)
	if err != nil {
		return nil, err
	}

	it.next += recordSize + uint64(sizeLen)
	return &Record{Type: recordType, Data: data}, nil
}

// UnknownRecord preserves the tag of a record that was not decoded, either
// because its type is unknown or because its type already appeared in the
// same block.
type UnknownRecord struct {
	Tag uint64
}

// readRecords walks the extra area and hands each record to decode, which
// reports whether it consumed the record. Unconsumed records are collected
// by tag.
func readRecords(
	r io.ReadSeeker,
	extraAreaSize uint64,
	decode func(*Record) (bool, error),
) ([]UnknownRecord, error) {
	it, err := NewRecordIterator(r, extraAreaSize)
	if err != nil {
		return nil, err
	}

	var unknown []UnknownRecord
	for {
		record, err := it.Next()
		if err == io.EOF {
			return unknown, nil
		}
		if err != nil {
			return nil, err
		}

		consumed, err := decode(record)
		if err != nil {
			return nil, err
		}
		if !consumed {
			unknown = append(unknown, UnknownRecord{Tag: record.Type})
		}
	}
}

func recordReader(record *Record) *bytes.Reader {
	return bytes.NewReader(record.Data)
}
