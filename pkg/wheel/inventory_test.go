package wheel

import (
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompareVersions(t *testing.T) {
	assert.Negative(t, CompareVersions("1.9.0", "1.10.0"))
	assert.Positive(t, CompareVersions("2.0", "1.10.0"))
	assert.Zero(t, CompareVersions("1.0.0", "1.0.0"))
	// Not semantic versions: string order.
	assert.Negative(t, CompareVersions("1.0.post1", "1.0.post2"))
}

func TestInventory(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"demo-1.10.0-py3-none-any.whl",
		"demo-1.9.0-py3-none-any.whl",
		"Alpha-0.1-py3-none-any.whl",
		"broken.whl",
		"notes.txt",
	} {
		writeFile(t, filepath.Join(dir, name), name)
	}

	entries, err := Inventory(dir)
	require.NoError(t, err)

	names := lo.Map(entries, func(e Entry, _ int) string { return e.Filename.String() })
	assert.Equal(t, []string{
		"Alpha-0.1-py3-none-any.whl",
		"demo-1.9.0-py3-none-any.whl",
		"demo-1.10.0-py3-none-any.whl",
	}, names)
	assert.Equal(t, int64(len("Alpha-0.1-py3-none-any.whl")), entries[0].Size)
}

func TestInventoryMissingDir(t *testing.T) {
	entries, err := Inventory(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}
