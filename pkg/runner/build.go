package runner

import (
	"context"

	relerrors "github.com/prizm-build/wheelhouse/internal/errors"
)

// The default packaging command. It produces a source distribution and a wheel in `dist/`.
var DefaultBuildCommand = Command{"python3", "setup.py", "sdist", "bdist_wheel"}

// Run the packaging tool in the runner's working directory.
func RunBuild(ctx context.Context, r *Runner, buildCmd Command) error {
	return r.Run(ctx, relerrors.StageBuild, buildCmd, "Building source distribution and wheel...")
}
