package rar50

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/javi11/rarmeta/internal/parse"
)

func TestRecordIterator(t *testing.T) {
	area := cat(
		record(0x01, []byte{0xaa}),
		record(0x02, nil),
		record(0x4000, []byte{1, 2, 3}), // two-byte type vint
	)

	it, err := NewRecordIterator(bytes.NewReader(area), uint64(len(area)))
	require.NoError(t, err)

	rec, err := it.Next()
	require.NoError(t, err)
	require.Equal(t, uint64(0x01), rec.Type)
	require.Equal(t, []byte{0xaa}, rec.Data)

	rec, err = it.Next()
	require.NoError(t, err)
	require.Equal(t, uint64(0x02), rec.Type)
	require.Empty(t, rec.Data)

	rec, err = it.Next()
	require.NoError(t, err)
	require.Equal(t, uint64(0x4000), rec.Type)
	require.Equal(t, []byte{1, 2, 3}, rec.Data)

	_, err = it.Next()
	require.ErrorIs(t, err, io.EOF)
	_, err = it.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestRecordIteratorSizeSmallerThanType(t *testing.T) {
	// The declared record size cannot even cover the type field.
	area := cat(vint(1), vint(0x4000))

	it, err := NewRecordIterator(bytes.NewReader(area), uint64(len(area)))
	require.NoError(t, err)

	_, err = it.Next()
	require.ErrorIs(t, err, parse.ErrCorruptHeader)
}

func TestReadRecordsCollectsUnconsumed(t *testing.T) {
	area := cat(
		record(0x10, []byte{1}),
		record(0x20, []byte{2}),
		record(0x10, []byte{3}),
	)

	var consumed [][]byte
	unknown, err := readRecords(bytes.NewReader(area), uint64(len(area)), func(rec *Record) (bool, error) {
		if rec.Type == 0x10 {
			consumed = append(consumed, rec.Data)
			return true, nil
		}
		return false, nil
	})
	require.NoError(t, err)
	require.Equal(t, [][]byte{{1}, {3}}, consumed)
	require.Equal(t, []UnknownRecord{{Tag: 0x20}}, unknown)
}
