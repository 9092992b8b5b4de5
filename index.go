package rarmeta

import (
	"bytes"
	"fmt"
	"io"
	"sync"
)

// VolumeIndex holds the decoded file entries of one volume.
type VolumeIndex struct {
	Path            string
	Format          Format
	SignatureOffset uint64
	Entries         []Entry
}

// DataOffset returns where the data of the first file starts, which is
// also the total size of the headers preceding it. Zero when the volume
// contains no file entries.
func (v *VolumeIndex) DataOffset() uint64 {
	if len(v.Entries) == 0 {
		return 0
	}
	return v.Entries[0].DataOffset
}

// IndexVolumes decodes each volume in order. It stops at the first
// volume that fails.
func IndexVolumes(fsys FileSystem, paths []string) ([]*VolumeIndex, error) {
	res := make([]*VolumeIndex, 0, len(paths))
	for _, p := range paths {
		v, err := indexSingle(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		res = append(res, v)
	}
	return res, nil
}

// IndexVolumesParallel decodes the volumes concurrently, up to workers at
// a time; workers <= 0 means one per volume. The result keeps the input
// order. Any failure cancels the rest and reports the first error by
// input order.
func IndexVolumesParallel(fsys FileSystem, paths []string, workers int) ([]*VolumeIndex, error) {
	if len(paths) <= 1 || workers == 1 {
		return IndexVolumes(fsys, paths)
	}
	if workers <= 0 || workers > len(paths) {
		workers = len(paths)
	}

	res := make([]*VolumeIndex, len(paths))
	errs := make([]error, len(paths))
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup
	for i, p := range paths {
		i, p := i, p
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			v, err := indexSingle(fsys, p)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", p, err)
				return
			}
			res[i] = v
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return res, nil
}

func indexSingle(fsys FileSystem, path string) (*VolumeIndex, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	st, err := f.Stat()
	if err != nil {
		return nil, err
	}
	fileSize := uint64(st.Size())

	// Block iteration needs random access; buffer non-seekable files.
	rs, ok := f.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		rs = bytes.NewReader(data)
	}

	a, err := OpenReader(rs, fileSize)
	if err != nil {
		return nil, err
	}

	entries, err := a.Entries()
	if err != nil {
		return nil, err
	}

	return &VolumeIndex{
		Path:            path,
		Format:          a.Format,
		SignatureOffset: a.SignatureOffset,
		Entries:         entries,
	}, nil
}
