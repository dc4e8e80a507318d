package config

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/prizm-build/wheelhouse/pkg/runner"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// The tool config file looked up in the working directory.
const FileName = "wheelhouse.toml"

// Config describes all configuration options
type Config struct {
	Settings       string `default:"settings.sh" toml:"settings" env:"SETTINGS" usage:"Settings file defining PKG_NAME and PKG_VERSION"`
	OutputDir      string `default:"../local_wheels" toml:"output_dir" env:"OUTPUT_DIR" usage:"Shared directory receiving the built wheels"`
	BuildCommand   string `default:"python3 setup.py sdist bdist_wheel" toml:"build_command" env:"BUILD_COMMAND" usage:"Packaging command producing dist/"`
	InstallCommand string `default:"python3 -m pip install" toml:"install_command" env:"INSTALL_COMMAND" usage:"Installer command; the wheel path is appended"`
	VerifyCommand  string `default:"python3 -m pip show" toml:"verify_command" env:"VERIFY_COMMAND" usage:"Command printing the installed version; the package name is appended"`
	Discover       bool   `default:"false" toml:"discover" env:"DISCOVER" usage:"Accept a single normalized-name match when the exact wheel name is missing"`
	Verify         bool   `default:"false" toml:"verify" env:"VERIFY" usage:"Check the installed version after installing"`
	Quiet          bool   `default:"false" toml:"quiet" env:"QUIET" usage:"Hide command output unless a command fails"`
	Log            struct {
		Dir   string `toml:"dir" env:"DIR" usage:"Directory receiving a JSON log file per run"`
		Level string `default:"info" toml:"level" env:"LEVEL"`
	} `toml:"log" env:"LOG"`
	History struct {
		Enabled bool   `default:"false" toml:"enabled" env:"ENABLED" usage:"Record every run in the history database"`
		Path    string `default:"~/.wheelhouse/history.db" toml:"path" env:"PATH"`
	} `toml:"history" env:"HISTORY"`
}

var logLevels = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
}

// Loader initializes an empty config object and returns a new Loader reading the given files
func Loader(files ...string) (*Config, *aconfig.Loader) {
	cfg := Config{}
	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		SkipFlags: true,
		EnvPrefix: "WHEELHOUSE",
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
}

// Load the configuration for a release in `workDir`, reading wheelhouse.toml there when it exists
func Load(workDir string) (*Config, error) {
	var files []string

	path := filepath.Join(workDir, FileName)
	_, err := os.Stat(path)
	if err == nil {
		files = append(files, path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, eris.Wrapf(err, "failed to check %s", path)
	}

	cfg, loader := Loader(files...)
	if err := loader.Load(); err != nil {
		return nil, eris.Wrap(err, "failed to load configuration")
	}

	return cfg, nil
}

// Validate verifies that all config fields have valid values
func (cfg *Config) Validate() error {
	if cfg.Settings == "" {
		return eris.New("settings must not be empty")
	}
	if cfg.OutputDir == "" {
		return eris.New("output_dir must not be empty")
	}

	commands := map[string]string{
		"build_command":   cfg.BuildCommand,
		"install_command": cfg.InstallCommand,
		"verify_command":  cfg.VerifyCommand,
	}
	for name, line := range commands {
		if _, err := runner.ParseCommand(line); err != nil {
			return eris.Wrapf(err, "invalid value for %s", name)
		}
	}

	if _, ok := logLevels[cfg.Log.Level]; !ok {
		return eris.Errorf("invalid value for log.level: %s", cfg.Log.Level)
	}

	return nil
}

// LogLevel converts the .Log.Level field to a zerolog.Level
func (cfg *Config) LogLevel() zerolog.Level {
	return logLevels[cfg.Log.Level]
}

// Get the packaging, installer and verification commands. Only valid after [Config.Validate] succeeded.
func (cfg *Config) Commands() (build, install, verify runner.Command) {
	build, _ = runner.ParseCommand(cfg.BuildCommand)
	install, _ = runner.ParseCommand(cfg.InstallCommand)
	verify, _ = runner.ParseCommand(cfg.VerifyCommand)
	return build, install, verify
}
