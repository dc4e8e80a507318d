package settings

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, content string) (Settings, []error) {
	t.Helper()
	return Parse(strings.NewReader(content))
}

func joinErrors(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

func TestParse(t *testing.T) {
	vars, errs := parse(t, `# package settings
PKG_NAME=demo
PKG_VERSION="1.2.3"
`)
	require.Nil(t, errs)
	assert.Equal(t, "demo", vars.PkgName)
	assert.Equal(t, "1.2.3", vars.PkgVersion)
	assert.Empty(t, vars.Extra)
}

func TestParseExportAndExtra(t *testing.T) {
	vars, errs := parse(t, `export PKG_NAME='demo'
BASE=1.2
export PKG_VERSION=${BASE}.3 PIP_INDEX_URL=https://example.com/simple
export PKG_NAME
`)
	require.Nil(t, errs, joinErrors(errs))
	assert.Equal(t, "demo", vars.PkgName)
	assert.Equal(t, "1.2.3", vars.PkgVersion)
	assert.Equal(t, map[string]string{
		"BASE":          "1.2",
		"PIP_INDEX_URL": "https://example.com/simple",
	}, vars.Extra)
	assert.Equal(t, []string{"BASE=1.2", "PIP_INDEX_URL=https://example.com/simple"}, vars.ExtraPairs())
}

func TestParseExpandsProcessEnvironment(t *testing.T) {
	t.Setenv("CI_VERSION", "9.9.9")
	t.Setenv("BASE", "0.0")

	vars, errs := parse(t, `PKG_NAME=demo-$CI_VERSION
BASE=1.2
PKG_VERSION=${CI_VERSION}
LOCAL=${BASE}.3
`)
	require.Nil(t, errs, joinErrors(errs))
	assert.Equal(t, "demo-9.9.9", vars.PkgName)
	assert.Equal(t, "9.9.9", vars.PkgVersion)
	// Assignments in the file shadow the environment, and only they are kept.
	assert.Equal(t, map[string]string{"BASE": "1.2", "LOCAL": "1.2.3"}, vars.Extra)
}

func TestParseMissingVersion(t *testing.T) {
	_, errs := parse(t, "PKG_NAME=demo\n")
	require.Len(t, errs, 1)
	assert.EqualError(t, errs[0], "variable 'PKG_VERSION' is required")
}

func TestParseReportsEveryProblem(t *testing.T) {
	_, errs := parse(t, `echo hello
build() { true; }
PKG_NAME=(a b)
`)
	msg := joinErrors(errs)
	assert.Contains(t, msg, "top-level command execution disallowed (line 1)")
	assert.Contains(t, msg, "function 'build' is not allowed")
	assert.Contains(t, msg, "variable 'PKG_NAME' must be a plain string (line 3)")
	assert.Contains(t, msg, "variable 'PKG_NAME' is required")
	assert.Contains(t, msg, "variable 'PKG_VERSION' is required")
}

func TestParseRejectsCommandSubstitution(t *testing.T) {
	_, errs := parse(t, "PKG_NAME=demo\nPKG_VERSION=$(git describe)\n")
	require.NotNil(t, errs)
	assert.Contains(t, joinErrors(errs), "failed to parse variable value for 'PKG_VERSION'")
}

func TestParseSyntaxError(t *testing.T) {
	_, errs := parse(t, "PKG_NAME=\"demo\n")
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "shell parser error")
}

func TestLoadMissingFile(t *testing.T) {
	_, errs := Load(filepath.Join(t.TempDir(), "settings.sh"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "failed to open settings file")
}
