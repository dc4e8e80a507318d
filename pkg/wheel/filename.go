package wheel

import (
	"fmt"
	"regexp"
	"strings"
)

// The file extension of wheel archives.
const Extension = ".whl"

// A parsed wheel filename: `{distribution}-{version}(-{build})?-{python}-{abi}-{platform}.whl`.
type Filename struct {
	// The distribution name, as written in the filename.
	Distribution string
	// The distribution version.
	Version string
	// The optional build tag. Empty if the filename has none.
	Build string
	// The Python tag.
	PythonTag Tag
	// The ABI tag.
	ABITag Tag
	// The platform tag.
	PlatformTag Tag
}

var separatorRuns = regexp.MustCompile(`[-_.]+`)

// Get the wheel filename for a package, exactly as `{name}-{version}-py3-none-any.whl`. No normalization is applied to either value.
func Basename(name, version string) string {
	return fmt.Sprintf("%s-%s-%s-%s-%s%s", name, version, Py3, NoABI, AnyPlatform, Extension)
}

// Normalize a distribution name the way wheel filenames do: lowercase, with runs of `-`, `_` and `.` collapsed into a single `_`.
func NormalizeName(name string) string {
	return separatorRuns.ReplaceAllString(strings.ToLower(name), "_")
}

// PEP 440 public and local versions, with the separator variants the standard accepts. `_` also stands for `-`, since wheel filenames escape it.
var pep440Version = regexp.MustCompile(`^v?(?:(\d+)!)?(\d+(?:\.\d+)*)` +
	`(?:[-_.]?(a|b|c|rc|alpha|beta|pre|preview)[-_.]?(\d+)?)?` +
	`(?:[-_](\d+)|[-_.]?(post|rev|r)[-_.]?(\d+)?)?` +
	`(?:[-_.]?(dev)[-_.]?(\d+)?)?` +
	`(?:\+([a-z0-9]+(?:[-_.][a-z0-9]+)*))?$`)

var preReleaseLabels = map[string]string{
	"a": "a", "alpha": "a",
	"b": "b", "beta": "b",
	"c": "rc", "rc": "rc", "pre": "rc", "preview": "rc",
}

// Strip leading zeros from a number. An empty number is `0`.
func canonicalNumber(n string) string {
	n = strings.TrimLeft(n, "0")
	if n == "" {
		return "0"
	}
	return n
}

// Get the canonical form of a version, so `1.0-beta` and `1.0b0` compare equal. Versions that are not valid PEP 440 are only lowercased with `-` replaced by `_`.
func normalizeVersion(version string) string {
	v := strings.ToLower(strings.TrimSpace(version))

	m := pep440Version.FindStringSubmatch(v)
	if m == nil {
		return strings.ReplaceAll(v, "-", "_")
	}

	var b strings.Builder
	if m[1] != "" && canonicalNumber(m[1]) != "0" {
		b.WriteString(canonicalNumber(m[1]) + "!")
	}

	release := strings.Split(m[2], ".")
	for i := range release {
		release[i] = canonicalNumber(release[i])
	}
	for len(release) > 1 && release[len(release)-1] == "0" {
		release = release[:len(release)-1]
	}
	b.WriteString(strings.Join(release, "."))

	if m[3] != "" {
		b.WriteString(preReleaseLabels[m[3]] + canonicalNumber(m[4]))
	}
	switch {
	case m[5] != "":
		b.WriteString(".post" + canonicalNumber(m[5]))
	case m[6] != "":
		b.WriteString(".post" + canonicalNumber(m[7]))
	}
	if m[8] != "" {
		b.WriteString(".dev" + canonicalNumber(m[9]))
	}
	if m[10] != "" {
		b.WriteString("+" + separatorRuns.ReplaceAllString(m[10], "."))
	}

	return b.String()
}

// Parse a wheel filename. Directories are not stripped; pass a base name.
func ParseFilename(name string) (Filename, error) {
	stem, ok := strings.CutSuffix(name, Extension)
	if !ok {
		return Filename{}, fmt.Errorf("'%s' is not a wheel filename", name)
	}

	parts := strings.Split(stem, "-")
	if len(parts) != 5 && len(parts) != 6 {
		return Filename{}, fmt.Errorf("'%s' does not have 5 or 6 dash-separated fields", name)
	}

	for _, part := range parts {
		if part == "" {
			return Filename{}, fmt.Errorf("'%s' has an empty field", name)
		}
	}

	fn := Filename{
		Distribution: parts[0],
		Version:      parts[1],
	}

	tags := parts[2:]
	if len(parts) == 6 {
		fn.Build = parts[2]
		if fn.Build[0] < '0' || fn.Build[0] > '9' {
			return Filename{}, fmt.Errorf("build tag of '%s' must start with a digit", name)
		}
		tags = parts[3:]
	}

	var err error
	if fn.PythonTag, err = ParseTag(tags[0]); err != nil {
		return Filename{}, err
	}
	if fn.ABITag, err = ParseTag(tags[1]); err != nil {
		return Filename{}, err
	}
	if fn.PlatformTag, err = ParseTag(tags[2]); err != nil {
		return Filename{}, err
	}

	return fn, nil
}

// Whether the wheel belongs to the given package, comparing normalized names and versions.
func (f Filename) Matches(name, version string) bool {
	return NormalizeName(f.Distribution) == NormalizeName(name) &&
		normalizeVersion(f.Version) == normalizeVersion(version)
}

// Get the compatibility tags as `{python}-{abi}-{platform}`.
func (f Filename) Tags() string {
	return fmt.Sprintf("%s-%s-%s", f.PythonTag, f.ABITag, f.PlatformTag)
}

// Get the printable representation of a [Filename], which is the filename itself.
func (f Filename) String() string {
	if f.Build == "" {
		return fmt.Sprintf("%s-%s-%s%s", f.Distribution, f.Version, f.Tags(), Extension)
	}

	return fmt.Sprintf("%s-%s-%s-%s%s", f.Distribution, f.Version, f.Build, f.Tags(), Extension)
}
