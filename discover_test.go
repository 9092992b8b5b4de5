package rarmeta

import (
	"bytes"
	"io/fs"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// memFS is an in-memory FileSystem keyed by path.
type memFS map[string][]byte

func (m memFS) Stat(path string) (fs.FileInfo, error) {
	data, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return memFileInfo{name: path, size: int64(len(data))}, nil
}

func (m memFS) Open(path string) (fs.File, error) {
	data, ok := m[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return &memFile{Reader: bytes.NewReader(data), info: memFileInfo{name: path, size: int64(len(data))}}, nil
}

type memFile struct {
	*bytes.Reader
	info memFileInfo
}

func (f *memFile) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *memFile) Close() error               { return nil }

type memFileInfo struct {
	name string
	size int64
}

func (i memFileInfo) Name() string       { return i.name }
func (i memFileInfo) Size() int64        { return i.size }
func (i memFileInfo) Mode() fs.FileMode  { return 0 }
func (i memFileInfo) ModTime() time.Time { return time.Time{} }
func (i memFileInfo) IsDir() bool        { return false }
func (i memFileInfo) Sys() any           { return nil }

func TestDiscoverVolumesPartStyle(t *testing.T) {
	fsys := memFS{
		"show.part1.rar": nil,
		"show.part2.rar": nil,
		"show.part3.rar": nil,
		"show.part5.rar": nil, // gap at 4: not picked up
		"unrelated.rar":  nil,
	}

	vols, err := DiscoverVolumesFS(fsys, "show.part1.rar")
	require.NoError(t, err)
	require.Equal(t, []string{"show.part1.rar", "show.part2.rar", "show.part3.rar"}, vols)
}

func TestDiscoverVolumesPartStyleZeroPadded(t *testing.T) {
	fsys := memFS{
		"show.part01.rar": nil,
		"show.part02.rar": nil,
	}

	// The number width of the first volume is preserved.
	vols, err := DiscoverVolumesFS(fsys, "show.part01.rar")
	require.NoError(t, err)
	require.Equal(t, []string{"show.part01.rar", "show.part02.rar"}, vols)
}

func TestDiscoverVolumesPartStyleMissingFirst(t *testing.T) {
	_, err := DiscoverVolumesFS(memFS{}, "show.part1.rar")
	require.Error(t, err)
}

func TestDiscoverVolumesOldStyle(t *testing.T) {
	fsys := memFS{
		"movie.rar": nil,
		"movie.r00": nil,
		"movie.r01": nil,
		"movie.r03": nil, // gap at r02: not picked up
	}

	vols, err := DiscoverVolumesFS(fsys, "movie.rar")
	require.NoError(t, err)
	require.Equal(t, []string{"movie.rar", "movie.r00", "movie.r01"}, vols)
}

func TestDiscoverVolumesOldStyleSingle(t *testing.T) {
	fsys := memFS{"single.rar": nil}

	vols, err := DiscoverVolumesFS(fsys, "single.rar")
	require.NoError(t, err)
	require.Equal(t, []string{"single.rar"}, vols)
}

func TestDiscoverVolumesOldStyleMissing(t *testing.T) {
	_, err := DiscoverVolumesFS(memFS{}, "missing.rar")
	require.Error(t, err)
}

func TestDiscoverVolumesOtherExtension(t *testing.T) {
	// Paths that match neither naming scheme pass through untouched.
	vols, err := DiscoverVolumesFS(memFS{}, "archive.bin")
	require.NoError(t, err)
	require.Equal(t, []string{"archive.bin"}, vols)
}
