package wheel

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/rotisserie/eris"
)

// A wheel stored in a directory.
type Entry struct {
	Filename Filename
	Path     string
	Size     int64
	ModTime  time.Time
}

// Compare two versions. Versions that both parse as semantic versions are compared as such, anything else falls back to string order.
func CompareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}

	return strings.Compare(a, b)
}

// List the wheels stored in `dir`, ordered by normalized name and then by version. Files that are not valid wheel filenames are skipped.
func Inventory(dir string) ([]Entry, error) {
	names, err := List(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(names))
	for _, name := range names {
		parsed, err := ParseFilename(name)
		if err != nil {
			continue
		}

		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			return nil, eris.Wrapf(err, "failed to check '%s'", path)
		}

		entries = append(entries, Entry{
			Filename: parsed,
			Path:     path,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		ni := NormalizeName(entries[i].Filename.Distribution)
		nj := NormalizeName(entries[j].Filename.Distribution)
		if ni != nj {
			return ni < nj
		}
		return CompareVersions(entries[i].Filename.Version, entries[j].Filename.Version) < 0
	})

	return entries, nil
}
