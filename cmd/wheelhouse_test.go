package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	relerrors "github.com/prizm-build/wheelhouse/internal/errors"
	"github.com/prizm-build/wheelhouse/internal/logging"
	"github.com/prizm-build/wheelhouse/pkg/runner"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	shInterp "mvdan.cc/sh/v3/interp"
)

// Reset every flag of `cmd` and its subcommands, since cobra keeps flag state between executions.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// Execute the CLI with `args`, returning the command output and the log output.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	resetFlags(rootCmd)
	t.Setenv("HOME", t.TempDir())

	var out, logs bytes.Buffer
	prevOutput, prevNoColor := logging.Output, color.NoColor
	logging.Output = &logs
	color.NoColor = true
	t.Cleanup(func() {
		logging.Output = prevOutput
		color.NoColor = prevNoColor
	})

	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	return out.String(), logs.String(), err
}

func newProject(t *testing.T) string {
	t.Helper()

	project := filepath.Join(t.TempDir(), "project")
	require.NoError(t, os.MkdirAll(project, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(project, "settings.sh"), []byte("PKG_NAME=demo\nPKG_VERSION=1.2.3\n"), 0644))

	return project
}

// Stand in for the packaging tool and installer for the duration of a test.
func fakeTools(t *testing.T, installs *[]string) {
	t.Helper()

	execMiddlewares = []runner.ExecMiddleware{
		func(next shInterp.ExecHandlerFunc) shInterp.ExecHandlerFunc {
			return func(ctx context.Context, args []string) error {
				hc := shInterp.HandlerCtx(ctx)
				if len(args) > 1 && args[1] == "setup.py" {
					dist := filepath.Join(hc.Dir, "dist")
					if err := os.MkdirAll(dist, 0755); err != nil {
						return err
					}
					return os.WriteFile(filepath.Join(dist, "demo-1.2.3-py3-none-any.whl"), []byte("wheel"), 0644)
				}
				*installs = append(*installs, args[len(args)-1])
				return nil
			}
		},
	}
	t.Cleanup(func() { execMiddlewares = nil })
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "wheelhouse v")
}

func TestDryRun(t *testing.T) {
	project := newProject(t)

	_, logs, err := execute(t, "--dir", project, "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, logs, "planned actions for demo-1.2.3-py3-none-any.whl")
	assert.Contains(t, logs, "Run python3 setup.py sdist bdist_wheel")
	assert.NoDirExists(t, filepath.Join(filepath.Dir(project), "local_wheels"))
}

func TestReleaseAndList(t *testing.T) {
	project := newProject(t)
	var installs []string
	fakeTools(t, &installs)

	_, logs, err := execute(t, "-C", project)
	require.NoError(t, err)
	assert.Contains(t, logs, "Done: package 'demo' 1.2.3 released")

	wheelPath := filepath.Join(filepath.Dir(project), "local_wheels", "demo-1.2.3-py3-none-any.whl")
	assert.FileExists(t, wheelPath)
	assert.Equal(t, []string{wheelPath}, installs)

	out, _, err := execute(t, "list", "-C", project)
	require.NoError(t, err)
	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "1.2.3")
	assert.Contains(t, out, "py3-none-any")
}

func TestMissingSettings(t *testing.T) {
	project := t.TempDir()

	_, _, err := execute(t, "-C", project)
	require.Error(t, err)
	assert.Equal(t, 1, relerrors.ExitCode(err))

	stage, _ := relerrors.StageOf(err)
	assert.Equal(t, relerrors.StageConfig, stage)
}

func TestInvalidLogLevel(t *testing.T) {
	project := newProject(t)

	_, _, err := execute(t, "-C", project, "--log-level", "loud")
	assert.ErrorContains(t, err, "log.level")
}

func TestRecordAndHistory(t *testing.T) {
	project := newProject(t)
	var installs []string
	fakeTools(t, &installs)
	db := filepath.Join(t.TempDir(), "history.db")

	_, _, err := execute(t, "-C", project, "--history", "--history-db", db)
	require.NoError(t, err)

	out, _, err := execute(t, "history", "-C", project, "--history-db", db)
	require.NoError(t, err)
	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "SUCCEEDED")
}
