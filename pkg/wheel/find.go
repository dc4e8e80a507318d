package wheel

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/samber/lo"
)

// The packaging tool did not leave any wheel in the output directory. This usually means the build itself failed.
type NoWheelError struct {
	// The directory that was searched.
	Dir string
	// The wheel that was expected.
	Expected string
}

var _ error = (*NoWheelError)(nil)

func (e *NoWheelError) Error() string {
	return fmt.Sprintf("expected wheel '%s' was not produced: no wheel found in '%s' (did the build fail?)", e.Expected, e.Dir)
}

// Wheels were produced, but none has the expected filename. This is a naming mismatch, not a build failure.
type MismatchError struct {
	// The directory that was searched.
	Dir string
	// The wheel that was expected.
	Expected string
	// Every wheel found in the directory.
	Found []string
	// The wheels whose normalized name and version match the package.
	Candidates []string
}

var _ error = (*MismatchError)(nil)

func (e *MismatchError) Error() string {
	msg := fmt.Sprintf("expected wheel '%s' not found in '%s'; the packaging tool produced: %s",
		e.Expected, e.Dir, strings.Join(e.Found, ", "))

	switch len(e.Candidates) {
	case 0:
		return msg
	case 1:
		return fmt.Sprintf("%s (naming mismatch: '%s' looks like the intended wheel, use --discover to relocate it)", msg, e.Candidates[0])
	default:
		return fmt.Sprintf("%s (naming mismatch: %d wheels match the package)", msg, len(e.Candidates))
	}
}

// List the wheel filenames in `dir`, sorted. A missing directory yields no wheels.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, eris.Wrapf(err, "failed to read '%s'", dir)
	}

	names := lo.FilterMap(entries, func(entry os.DirEntry, _ int) (string, bool) {
		return entry.Name(), !entry.IsDir() && strings.HasSuffix(entry.Name(), Extension)
	})
	sort.Strings(names)

	return names, nil
}

// Find the wheel built for `name` and `version` in `dir`.
//
// The exact [Basename] is required. When it is missing, the returned error is a [*NoWheelError] if no wheel exists at all, or a [*MismatchError] listing what was produced. With `discover` set, a single wheel whose normalized name and version match is accepted in place of the exact name.
func Find(dir, name, version string, discover bool) (string, error) {
	expected := Basename(name, version)
	expectedPath := filepath.Join(dir, expected)

	info, err := os.Stat(expectedPath)
	if err == nil && !info.IsDir() {
		return expectedPath, nil
	}
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return "", eris.Wrapf(err, "failed to check '%s'", expectedPath)
	}

	found, err := List(dir)
	if err != nil {
		return "", err
	}

	if len(found) == 0 {
		return "", &NoWheelError{Dir: dir, Expected: expected}
	}

	candidates := lo.Filter(found, func(item string, _ int) bool {
		parsed, err := ParseFilename(item)
		return err == nil && parsed.Matches(name, version)
	})

	if discover && len(candidates) == 1 {
		return filepath.Join(dir, candidates[0]), nil
	}

	return "", &MismatchError{
		Dir:        dir,
		Expected:   expected,
		Found:      found,
		Candidates: candidates,
	}
}
