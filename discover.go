package rarmeta

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

// DiscoverVolumes finds all parts of a multi-volume archive given the
// path of the first volume. Both volume naming schemes are supported:
// the new `.partNN.rar` style and the old `.rar, .r00, .r01, ...` style.
func DiscoverVolumes(first string) ([]string, error) {
	return DiscoverVolumesFS(defaultFS, first)
}

var partPattern = regexp.MustCompile(`(?i)(?P<prefix>.*?)(?P<sep>[_.-]?)(?:part)(?P<num>\d+)(?P<suffix>\.rar)`)

// DiscoverVolumesFS works like DiscoverVolumes on the provided FileSystem,
// useful for virtual or in-memory volumes in tests.
func DiscoverVolumesFS(fsys FileSystem, first string) ([]string, error) {
	base := filepath.Base(first)

	if m := partPattern.FindStringSubmatch(base); m != nil {
		prefix, sep, num, suffix := m[1], m[2], m[3], m[4]
		width := len(num)
		dir := filepath.Dir(first)

		// Collect sequential part numbers until the first gap.
		var vols []string
		for i := 1; i < 10000; i++ {
			name := fmt.Sprintf("%s%spart%0*d%s", prefix, sep, width, i, suffix)
			p := filepath.Join(dir, name)
			if _, err := fsys.Stat(p); err != nil {
				if i == 1 {
					return nil, fmt.Errorf("first volume not found: %s", p)
				}
				break
			}
			vols = append(vols, p)
		}
		return vols, nil
	}

	if strings.HasSuffix(strings.ToLower(base), ".rar") {
		prefix := strings.TrimSuffix(first, filepath.Ext(first))
		dir := filepath.Dir(first)

		if _, err := fsys.Stat(first); err != nil {
			return nil, err
		}
		vols := []string{first}
		for i := 0; i < 1000; i++ {
			name := fmt.Sprintf("%s.r%02d", prefix, i)
			p := filepath.Join(dir, filepath.Base(name))
			if _, err := fsys.Stat(p); err != nil {
				break
			}
			vols = append(vols, p)
		}
		return vols, nil
	}

	return []string{first}, nil
}
