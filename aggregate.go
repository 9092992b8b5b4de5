package rarmeta

// AggregatedFilePart is one part of a possibly split file residing in a
// volume.
type AggregatedFilePart struct {
	Path         string `json:"path"`
	DataOffset   uint64 `json:"dataOffset"`
	PackedSize   uint64 `json:"packedSize"`
	UnpackedSize uint64 `json:"unpackedSize"`
	Stored       bool   `json:"stored"`
	Encrypted    bool   `json:"encrypted"`
}

// AggregatedFile groups all parts for a given file name across volumes.
type AggregatedFile struct {
	Name              string               `json:"name"`
	TotalPackedSize   uint64               `json:"totalPackedSize"`
	TotalUnpackedSize uint64               `json:"totalUnpackedSize"`
	Parts             []AggregatedFilePart `json:"parts"`
	AnyEncrypted      bool                 `json:"anyEncrypted"`
	AllStored         bool                 `json:"allStored"`
}

// AggregateFiles builds the aggregated file listing from per-volume
// indexes, preserving first-seen order.
func AggregateFiles(vs []*VolumeIndex) []AggregatedFile {
	m := make(map[string]*AggregatedFile)
	var order []string
	for _, v := range vs {
		for _, e := range v.Entries {
			if e.Name == "" {
				continue
			}
			ag, ok := m[e.Name]
			if !ok {
				ag = &AggregatedFile{Name: e.Name, AllStored: true}
				m[e.Name] = ag
				order = append(order, e.Name)
			}
			ag.Parts = append(ag.Parts, AggregatedFilePart{
				Path:         v.Path,
				DataOffset:   e.DataOffset,
				PackedSize:   e.PackedSize,
				UnpackedSize: e.UnpackedSize,
				Stored:       e.Stored,
				Encrypted:    e.Encrypted,
			})
			ag.TotalPackedSize += e.PackedSize
			// Every part reports the full unpacked size; take the first.
			if ag.TotalUnpackedSize == 0 && e.UnpackedSize > 0 {
				ag.TotalUnpackedSize = e.UnpackedSize
			}
			if e.Encrypted {
				ag.AnyEncrypted = true
			}
			if !e.Stored {
				ag.AllStored = false
			}
		}
	}
	out := make([]AggregatedFile, 0, len(order))
	for _, name := range order {
		out = append(out, *m[name])
	}
	return out
}

// ListFilesFS lists all files in the archive starting from the first
// volume, discovering and decoding the remaining volumes.
func ListFilesFS(fsys FileSystem, first string) ([]AggregatedFile, error) {
	vols, err := DiscoverVolumesFS(fsys, first)
	if err != nil {
		return nil, err
	}
	idx, err := IndexVolumesParallel(fsys, vols, 0)
	if err != nil {
		return nil, err
	}
	return AggregateFiles(idx), nil
}

// ListFiles is a convenience using the OS filesystem.
func ListFiles(first string) ([]AggregatedFile, error) { return ListFilesFS(defaultFS, first) }
