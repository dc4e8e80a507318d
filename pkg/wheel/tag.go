package wheel

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// A wheel compatibility tag. Compressed tag sets join several tags with `.` (i.e. `py2.py3`).
type Tag string

const (
	// Any Python 3 interpreter.
	Py3 Tag = "py3"
	// No ABI requirement. The wheel contains no compiled extension modules.
	NoABI Tag = "none"
	// Any platform.
	AnyPlatform Tag = "any"
)

// Convert a string to a [Tag].
func ParseTag(tag string) (Tag, error) {
	if tag == "" {
		return "", fmt.Errorf("empty compatibility tag")
	}

	for _, part := range strings.Split(tag, ".") {
		if part == "" {
			return "", fmt.Errorf("invalid compatibility tag: %s", tag)
		}

		valid := lo.EveryBy([]rune(part), func(r rune) bool {
			return r == '_' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
		})
		if !valid {
			return "", fmt.Errorf("invalid compatibility tag: %s", tag)
		}
	}

	return Tag(tag), nil
}

// Get the individual tags of a compressed tag set.
func (t Tag) Expand() []Tag {
	return lo.Map(strings.Split(string(t), "."), func(part string, _ int) Tag {
		return Tag(part)
	})
}

// Whether the tag set contains `other`.
func (t Tag) Contains(other Tag) bool {
	return lo.Contains(t.Expand(), other)
}

// Get the printable representation of a [Tag].
func (t Tag) String() string {
	return string(t)
}
