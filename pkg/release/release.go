package release

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prizm-build/wheelhouse/internal/env"
	relerrors "github.com/prizm-build/wheelhouse/internal/errors"
	"github.com/prizm-build/wheelhouse/internal/history"
	"github.com/prizm-build/wheelhouse/internal/logging"
	"github.com/prizm-build/wheelhouse/pkg/runner"
	"github.com/prizm-build/wheelhouse/pkg/settings"
	"github.com/prizm-build/wheelhouse/pkg/wheel"
)

const (
	// Intermediate directories of the packaging tool, removed before each build.
	BuildDir = "build"
	DistDir  = "dist"
	// The shared wheel directory, relative to the working directory.
	DefaultOutputDir = "../local_wheels"
	// The settings file, relative to the working directory.
	DefaultSettingsFile = "settings.sh"
)

// Options controls a release run.
type Options struct {
	// The project directory holding the packaging metadata. Defaults to the current directory.
	WorkDir string
	// The settings file. Relative paths are resolved against WorkDir.
	SettingsFile string
	// The shared wheel directory. Relative paths are resolved against WorkDir.
	OutputDir string

	BuildCommand   runner.Command
	InstallCommand runner.Command
	VerifyCommand  runner.Command

	// Accept a single normalized-name match when the exact wheel name is missing.
	Discover bool
	// Check the installed version after installing.
	Verify bool
	// Hide command output unless a command fails.
	Quiet bool
	// Only print the planned steps.
	DryRun bool

	Stdout io.Writer
	Stderr io.Writer
	// Passed to the command runner.
	ExecMiddlewares []runner.ExecMiddleware
	// Records the run when set.
	History history.Store
}

// Result describes a finished release.
type Result struct {
	Settings  settings.Settings
	OutputDir string
	// Absolute path of the relocated wheel. Empty for dry runs.
	Wheel  string
	SHA256 string
	Size   int64
	// The planned steps, in order.
	Plan []string
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(base, path)
}

func (opts *Options) setDefaults() error {
	if opts.WorkDir == "" {
		opts.WorkDir = "."
	}

	workDir, err := filepath.Abs(opts.WorkDir)
	if err != nil {
		return fmt.Errorf("failed to get absolute path of '%s': %w", opts.WorkDir, err)
	}
	opts.WorkDir = workDir

	if opts.SettingsFile == "" {
		opts.SettingsFile = DefaultSettingsFile
	}
	if opts.OutputDir == "" {
		opts.OutputDir = DefaultOutputDir
	}
	opts.SettingsFile = resolve(workDir, opts.SettingsFile)
	opts.OutputDir = resolve(workDir, opts.OutputDir)

	if len(opts.BuildCommand) == 0 {
		opts.BuildCommand = runner.DefaultBuildCommand
	}
	if len(opts.InstallCommand) == 0 {
		opts.InstallCommand = runner.DefaultInstallCommand
	}
	if len(opts.VerifyCommand) == 0 {
		opts.VerifyCommand = runner.DefaultVerifyCommand
	}

	return nil
}

// Every problem found in a settings file.
type SettingsError struct {
	Path string
	Errs []error
}

func (e *SettingsError) Error() string {
	msgs := make([]string, 0, len(e.Errs))
	for _, err := range e.Errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Sprintf("invalid settings file '%s': %s", e.Path, strings.Join(msgs, "; "))
}

func (e *SettingsError) Unwrap() []error {
	return e.Errs
}

// Load the package settings. Every problem in the file is reported in one error.
func LoadSettings(path string) (settings.Settings, error) {
	vars, errs := settings.Load(path)
	if errs != nil {
		return settings.Settings{}, relerrors.Wrap(relerrors.StageConfig, &SettingsError{Path: path, Errs: errs})
	}

	return vars, nil
}

// Describe the steps a release performs, in order.
func Plan(opts Options, vars settings.Settings) []string {
	basename := wheel.Basename(vars.PkgName, vars.PkgVersion)
	distPath := filepath.Join(opts.WorkDir, DistDir, basename)
	wheelPath := filepath.Join(opts.OutputDir, basename)

	plan := []string{
		fmt.Sprintf("Ensure directory exists: %s", opts.OutputDir),
		fmt.Sprintf("Remove %s and %s", filepath.Join(opts.WorkDir, BuildDir), filepath.Join(opts.WorkDir, DistDir)),
		fmt.Sprintf("Run %s", opts.BuildCommand),
		fmt.Sprintf("Move %s -> %s", distPath, wheelPath),
		fmt.Sprintf("Run %s", opts.InstallCommand.With(wheelPath)),
	}
	if opts.Verify {
		plan = append(plan, fmt.Sprintf("Check %s reports version %s", opts.VerifyCommand.With(vars.PkgName), vars.PkgVersion))
	}

	return plan
}

// Run the release pipeline: load settings, ensure the output directory, clean the build state, build, relocate the wheel and install it. Each step only starts after the previous one succeeded; the first failure stops the run and is returned as a [*relerrors.ReleaseError].
func Run(ctx context.Context, opts Options) (result *Result, err error) {
	startedAt := time.Now()

	if err := opts.setDefaults(); err != nil {
		return nil, relerrors.Wrap(relerrors.StageConfig, err)
	}

	// 1. Load configuration.
	logging.Info("loading settings from '%s'...", opts.SettingsFile)
	vars, err := LoadSettings(opts.SettingsFile)
	if err != nil {
		return nil, err
	}

	result = &Result{
		Settings:  vars,
		OutputDir: opts.OutputDir,
		Plan:      Plan(opts, vars),
	}

	if opts.DryRun {
		return result, nil
	}

	if opts.History != nil {
		defer func() {
			recordRun(opts.History, vars, result, err, startedAt)
		}()
	}

	run, err := runner.New(runner.Options{
		Dir:             opts.WorkDir,
		Env:             env.GetEnviron(&vars),
		Stdout:          opts.Stdout,
		Stderr:          opts.Stderr,
		Quiet:           opts.Quiet,
		ExecMiddlewares: opts.ExecMiddlewares,
	})
	if err != nil {
		return result, relerrors.Wrap(relerrors.StagePrepare, err)
	}

	// 2. Ensure output directory.
	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return result, relerrors.Errorf(relerrors.StagePrepare, "failed to create '%s': %w", opts.OutputDir, err)
	}

	// 3. Clean build state.
	for _, dir := range []string{BuildDir, DistDir} {
		if err := os.RemoveAll(filepath.Join(opts.WorkDir, dir)); err != nil {
			return result, relerrors.Errorf(relerrors.StageClean, "failed to remove '%s/': %w", dir, err)
		}
	}

	// 4. Produce artifacts.
	logging.Info("running '%s'...", opts.BuildCommand)
	if err := runner.RunBuild(ctx, run, opts.BuildCommand); err != nil {
		return result, err
	}

	// 5. Relocate artifact.
	distDir := filepath.Join(opts.WorkDir, DistDir)
	built, err := wheel.Find(distDir, vars.PkgName, vars.PkgVersion, opts.Discover)
	if err != nil {
		return result, relerrors.Wrap(relerrors.StageRelocate, err)
	}
	if filepath.Base(built) != wheel.Basename(vars.PkgName, vars.PkgVersion) {
		logging.Warn("'%s' was not produced, relocating '%s' instead", wheel.Basename(vars.PkgName, vars.PkgVersion), filepath.Base(built))
	}

	relocated, err := wheel.Move(built, opts.OutputDir)
	if err != nil {
		return result, relerrors.Wrap(relerrors.StageRelocate, err)
	}
	result.Wheel = relocated
	logging.Info("moved wheel to '%s'", relocated)

	result.SHA256, result.Size, err = digest(relocated)
	if err != nil {
		return result, relerrors.Wrap(relerrors.StageRelocate, err)
	}

	// 6. Install.
	logging.Info("installing '%s'...", filepath.Base(relocated))
	if err := runner.RunInstall(ctx, run, opts.InstallCommand, relocated); err != nil {
		return result, err
	}

	if opts.Verify {
		if err := runner.RunVerify(ctx, run, opts.VerifyCommand, vars.PkgName, vars.PkgVersion); err != nil {
			return result, err
		}
		logging.Debug("'%s' reports version '%s'", vars.PkgName, vars.PkgVersion)
	}

	return result, nil
}

func digest(path string) (string, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", 0, fmt.Errorf("failed to open '%s': %w", path, err)
	}
	defer file.Close()

	hash := sha256.New()
	size, err := io.Copy(hash, file)
	if err != nil {
		return "", 0, fmt.Errorf("failed to hash '%s': %w", path, err)
	}

	return hex.EncodeToString(hash.Sum(nil)), size, nil
}

func recordRun(store history.Store, vars settings.Settings, result *Result, runErr error, startedAt time.Time) {
	entry := history.Run{
		PkgName:    vars.PkgName,
		PkgVersion: vars.PkgVersion,
		Status:     history.StatusSucceeded,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
	}
	if result != nil {
		entry.Wheel = result.Wheel
		entry.SHA256 = result.SHA256
		entry.Size = result.Size
	}
	if runErr != nil {
		entry.Status = history.StatusFailed
		entry.Error = runErr.Error()
		if stage, ok := relerrors.StageOf(runErr); ok {
			entry.Stage = string(stage)
		}
	}

	if _, err := store.Record(context.Background(), entry); err != nil {
		logging.Warn("failed to record run: %w", err)
	}
}
