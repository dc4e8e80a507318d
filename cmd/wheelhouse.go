package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prizm-build/wheelhouse/internal/config"
	relerrors "github.com/prizm-build/wheelhouse/internal/errors"
	"github.com/prizm-build/wheelhouse/internal/history"
	"github.com/prizm-build/wheelhouse/internal/logging"
	"github.com/prizm-build/wheelhouse/pkg/release"
	"github.com/prizm-build/wheelhouse/pkg/runner"
	"github.com/prizm-build/wheelhouse/pkg/wheel"
	"github.com/spf13/cobra"
)

var cliOpts struct {
	workDir        string
	settingsFile   string
	outputDir      string
	buildCommand   string
	installCommand string
	verifyCommand  string
	discover       bool
	verify         bool
	quiet          bool
	dryRun         bool
	recordHistory  bool
	historyPath    string
	logDir         string
	logLevel       string
}

// Set by tests to stand in for the packaging tool and installer.
var execMiddlewares []runner.ExecMiddleware

var rootCmd = &cobra.Command{
	Use:   "wheelhouse",
	Short: "Build a Python package, move its wheel to a shared directory and install it",
	Long: `wheelhouse reads PKG_NAME and PKG_VERSION from a settings file, removes build/ and dist/,
runs the packaging tool, moves the resulting wheel into ../local_wheels and installs it.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSession(cmd)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&cliOpts.settingsFile, "settings", "s", "", "settings file defining PKG_NAME and PKG_VERSION (default \"settings.sh\")")
	flags.StringVar(&cliOpts.buildCommand, "build-cmd", "", "packaging command producing dist/")
	flags.StringVar(&cliOpts.installCommand, "install-cmd", "", "installer command; the wheel path is appended")
	flags.StringVar(&cliOpts.verifyCommand, "verify-cmd", "", "command printing the installed version; the package name is appended")
	flags.BoolVar(&cliOpts.discover, "discover", false, "relocate a single wheel matching the normalized name and PEP 440 version when the exact wheel name is missing")
	flags.BoolVar(&cliOpts.verify, "verify", false, "check the installed version after installing")
	flags.BoolVarP(&cliOpts.quiet, "quiet", "q", false, "hide command output unless a command fails")
	flags.BoolVarP(&cliOpts.dryRun, "dry-run", "n", false, "print the planned steps without running them")
	flags.BoolVar(&cliOpts.recordHistory, "history", false, "record the run in the history database")
	flags.StringVar(&cliOpts.logDir, "log-dir", "", "directory receiving a JSON log file per run")
	flags.StringVar(&cliOpts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	persistent := rootCmd.PersistentFlags()
	persistent.StringVarP(&cliOpts.workDir, "dir", "C", ".", "project directory")
	persistent.StringVarP(&cliOpts.outputDir, "output-dir", "o", "", "shared wheel directory (default \"../local_wheels\")")
	persistent.StringVar(&cliOpts.historyPath, "history-db", "", "history database path (default \""+history.DefaultPath+"\")")
}

// Load the configuration of the project directory and apply the flags that were set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, string, error) {
	workDir, err := filepath.Abs(cliOpts.workDir)
	if err != nil {
		return nil, "", err
	}

	cfg, err := config.Load(workDir)
	if err != nil {
		return nil, "", err
	}

	flags := cmd.Flags()
	overrides := []struct {
		flag   string
		target *string
		value  string
	}{
		{"settings", &cfg.Settings, cliOpts.settingsFile},
		{"output-dir", &cfg.OutputDir, cliOpts.outputDir},
		{"build-cmd", &cfg.BuildCommand, cliOpts.buildCommand},
		{"install-cmd", &cfg.InstallCommand, cliOpts.installCommand},
		{"verify-cmd", &cfg.VerifyCommand, cliOpts.verifyCommand},
		{"history-db", &cfg.History.Path, cliOpts.historyPath},
		{"log-dir", &cfg.Log.Dir, cliOpts.logDir},
		{"log-level", &cfg.Log.Level, cliOpts.logLevel},
	}
	for _, o := range overrides {
		if flags.Lookup(o.flag) != nil && flags.Changed(o.flag) {
			*o.target = o.value
		}
	}

	boolOverrides := []struct {
		flag   string
		target *bool
		value  bool
	}{
		{"discover", &cfg.Discover, cliOpts.discover},
		{"verify", &cfg.Verify, cliOpts.verify},
		{"quiet", &cfg.Quiet, cliOpts.quiet},
		{"history", &cfg.History.Enabled, cliOpts.recordHistory},
	}
	for _, o := range boolOverrides {
		if flags.Lookup(o.flag) != nil && flags.Changed(o.flag) {
			*o.target = o.value
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return cfg, workDir, nil
}

// Resolve the shared wheel directory against the project directory.
func outputDir(cfg *config.Config, workDir string) string {
	if filepath.IsAbs(cfg.OutputDir) {
		return cfg.OutputDir
	}
	return filepath.Join(workDir, cfg.OutputDir)
}

// Run a release session, returning the first error that stopped it.
func runSession(cmd *cobra.Command) error {
	cfg, workDir, err := loadConfig(cmd)
	if err != nil {
		return relerrors.Wrap(relerrors.StageConfig, err)
	}

	logging.SetLevel(cfg.LogLevel())
	if cfg.Log.Dir != "" {
		path, err := logging.OpenFile(cfg.Log.Dir)
		if err != nil {
			return relerrors.Wrap(relerrors.StageConfig, err)
		}
		defer logging.Close()
		logging.Debug("logging to '%s'", path)
	}

	var store history.Store
	if cfg.History.Enabled && !cliOpts.dryRun {
		store, err = history.Open(cfg.History.Path)
		if err != nil {
			return relerrors.Wrap(relerrors.StageConfig, err)
		}
		defer store.Close()
	}

	buildCmd, installCmd, verifyCmd := cfg.Commands()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := release.Run(ctx, release.Options{
		WorkDir:         workDir,
		SettingsFile:    cfg.Settings,
		OutputDir:       outputDir(cfg, workDir),
		BuildCommand:    buildCmd,
		InstallCommand:  installCmd,
		VerifyCommand:   verifyCmd,
		Discover:        cfg.Discover,
		Verify:          cfg.Verify,
		Quiet:           cfg.Quiet,
		DryRun:          cliOpts.dryRun,
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
		ExecMiddlewares: execMiddlewares,
		History:         store,
	})
	if err != nil {
		return err
	}

	if cliOpts.dryRun {
		logging.Info("planned actions for %s:", wheel.Basename(result.Settings.PkgName, result.Settings.PkgVersion))
		for _, step := range result.Plan {
			logging.Info("- %s", step)
		}
		return nil
	}

	logging.Success("package '%s' %s released to '%s'", result.Settings.PkgName, result.Settings.PkgVersion, result.Wheel)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.Err("%w", err)
		os.Exit(relerrors.ExitCode(err))
	}
}
