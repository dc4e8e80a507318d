package runner

import (
	"bufio"
	"context"
	"strings"

	relerrors "github.com/prizm-build/wheelhouse/internal/errors"
)

// The default installer command. The wheel path is appended to it.
var DefaultInstallCommand = Command{"python3", "-m", "pip", "install"}

// The default verification command. The package name is appended to it.
var DefaultVerifyCommand = Command{"python3", "-m", "pip", "show"}

// Install the wheel at `wheelPath` into the active environment.
func RunInstall(ctx context.Context, r *Runner, installCmd Command, wheelPath string) error {
	return r.Run(ctx, relerrors.StageInstall, installCmd.With(wheelPath), "Installing wheel...")
}

// Check that the installer reports `name` as installed at `version`. The verify command must print a `Version:` line, as `pip show` does.
func RunVerify(ctx context.Context, r *Runner, verifyCmd Command, name, version string) error {
	output, err := r.Output(ctx, relerrors.StageVerify, verifyCmd.With(name))
	if err != nil {
		return err
	}

	installed, ok := parseShowVersion(output)
	if !ok {
		return relerrors.Errorf(relerrors.StageVerify, "'%s' did not report a version for '%s'", verifyCmd.With(name), name)
	}
	if installed != version {
		return relerrors.Errorf(relerrors.StageVerify, "'%s' is installed at version '%s', expected '%s'", name, installed, version)
	}

	return nil
}

// Get the value of the first `Version:` line of `pip show` output.
func parseShowVersion(output string) (string, bool) {
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		value, ok := strings.CutPrefix(scanner.Text(), "Version:")
		if ok {
			return strings.TrimSpace(value), true
		}
	}

	return "", false
}
