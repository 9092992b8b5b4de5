package rarmeta

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSearchSignatureAtStart(t *testing.T) {
	for _, tc := range []struct {
		format Format
		data   []byte
	}{
		{FormatRar14, []byte("RE\x7e\x5e\x01\x02")},
		{FormatRar15, []byte("Rar!\x1a\x07\x00junk")},
		{FormatRar50, []byte("Rar!\x1a\x07\x01\x00junk")},
	} {
		format, offset, found, err := SearchSignature(bytes.NewReader(tc.data))
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, tc.format, format)
		require.Equal(t, uint64(0), offset)
	}
}

func TestSearchSignatureAfterStub(t *testing.T) {
	// Self-extracting archives embed the signature after the executable.
	data := append(bytes.Repeat([]byte{'x'}, 1234), []byte("Rar!\x1a\x07\x01\x00")...)

	format, offset, found, err := SearchSignature(bytes.NewReader(data))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, FormatRar50, format)
	require.Equal(t, uint64(1234), offset)
}

func TestSearchSignatureAcrossChunkBoundary(t *testing.T) {
	// Place the signature so it straddles the 64 KiB read boundary.
	const pos = 64*1024 - 3
	data := bytes.Repeat([]byte{'x'}, pos)
	data = append(data, []byte("Rar!\x1a\x07\x00")...)
	data = append(data, bytes.Repeat([]byte{'y'}, 100)...)

	format, offset, found, err := SearchSignature(bytes.NewReader(data))
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, FormatRar15, format)
	require.Equal(t, uint64(pos), offset)
}

func TestSearchSignatureNotFound(t *testing.T) {
	_, _, found, err := SearchSignature(bytes.NewReader(bytes.Repeat([]byte{'x'}, 4096)))
	require.NoError(t, err)
	require.False(t, found)

	_, _, found, err = SearchSignature(bytes.NewReader(nil))
	require.NoError(t, err)
	require.False(t, found)
}

func TestSearchSignatureBeyondWindow(t *testing.T) {
	// A signature past the SFX search window is not found.
	data := append(bytes.Repeat([]byte{'x'}, MaxSFXSize), []byte("Rar!\x1a\x07\x00")...)

	_, _, found, err := SearchSignature(bytes.NewReader(data))
	require.NoError(t, err)
	require.False(t, found)
}

func TestReadSignature(t *testing.T) {
	data := []byte("Rar!\x1a\x07\x01\x00after")
	r := bytes.NewReader(data)

	format, found, err := ReadSignature(r)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, FormatRar50, format)

	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	require.Equal(t, int64(format.SignatureSize()), pos)
}

func TestReadSignatureRar14(t *testing.T) {
	// The rar14 marker carries two version bytes that are not part of the
	// signature; the stream ends up right after the four signature bytes.
	r := bytes.NewReader([]byte("RE\x7e\x5e\x01\x02\x03\x04"))

	format, found, err := ReadSignature(r)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, FormatRar14, format)

	pos, err := r.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	require.Equal(t, int64(4), pos)
}

func TestReadSignatureUnknownMarker(t *testing.T) {
	_, found, err := ReadSignature(bytes.NewReader([]byte("notanarchive")))
	require.NoError(t, err)
	require.False(t, found)
}
