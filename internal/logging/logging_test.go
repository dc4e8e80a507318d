package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer
	oldOutput, oldNoColor := Output, color.NoColor
	Output = &buf
	color.NoColor = true
	t.Cleanup(func() {
		Output = oldOutput
		color.NoColor = oldNoColor
		SetLevel(zerolog.InfoLevel)
		_ = Close()
	})

	return &buf
}

func TestLevels(t *testing.T) {
	buf := captureOutput(t)

	Debug("hidden")
	Info("building %s", "demo")
	Warn("careful")
	Err("failed: %w", errors.New("boom"))

	assert.Equal(t, "Info: building demo\nWarning: careful\nError: failed: boom\n", buf.String())

	buf.Reset()
	SetLevel(zerolog.DebugLevel)
	Debug("shown")
	assert.Equal(t, "Debug: shown\n", buf.String())
}

func TestOpenFile(t *testing.T) {
	captureOutput(t)
	dir := t.TempDir()

	path, err := OpenFile(dir)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, ".log"))

	Info("moved wheel to '%s'", "/wheels/demo.whl")
	Warn("careful")
	require.NoError(t, Close())

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	require.Len(t, lines, 2)

	var evt map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &evt))
	assert.Equal(t, "info", evt["level"])
	assert.Equal(t, "moved wheel to '/wheels/demo.whl'", evt["message"])
	assert.Contains(t, evt, "time")

	// Closed files stop receiving messages.
	Info("after close")
	after, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, after)
}
