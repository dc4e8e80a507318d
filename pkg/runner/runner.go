package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	relerrors "github.com/prizm-build/wheelhouse/internal/errors"
	"github.com/rotisserie/eris"
	shExpand "mvdan.cc/sh/v3/expand"
	shInterp "mvdan.cc/sh/v3/interp"
	shSyntax "mvdan.cc/sh/v3/syntax"
)

// Wraps the handler that starts external programs. Tests use this to stand in for the packaging tool and installer.
type ExecMiddleware = func(next shInterp.ExecHandlerFunc) shInterp.ExecHandlerFunc

// Runner options.
type Options struct {
	// The working directory of every command.
	Dir string
	// The command environment. Defaults to the process environment.
	Env shExpand.Environ
	// Where command output goes. Default to the process stdout and stderr.
	Stdout io.Writer
	Stderr io.Writer
	// Capture command output and only show it when the command fails.
	Quiet bool
	// Exec handler middlewares, outermost first.
	ExecMiddlewares []ExecMiddleware
}

// Runs external commands through the shell interpreter.
type Runner struct {
	opts Options
}

// Create a new [Runner].
func New(opts Options) (*Runner, error) {
	if opts.Dir == "" {
		opts.Dir = "."
	}

	absDir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path of '%s': %w", opts.Dir, err)
	}
	opts.Dir = absDir

	if opts.Env == nil {
		opts.Env = shExpand.ListEnviron(os.Environ()...)
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}

	return &Runner{opts: opts}, nil
}

// Get the absolute working directory of the runner.
func (r *Runner) Dir() string {
	return r.opts.Dir
}

// Run `cmd` as part of `stage`. `what` describes the command for the quiet-mode spinner.
func (r *Runner) Run(ctx context.Context, stage relerrors.Stage, cmd Command, what string) error {
	if !r.opts.Quiet {
		return r.run(ctx, stage, cmd, r.opts.Stdout, r.opts.Stderr)
	}

	var captured bytes.Buffer
	stop := startSpinner(what)
	err := r.run(ctx, stage, cmd, &captured, &captured)
	stop()

	if err != nil {
		// Show what the command said, since it was hidden until now.
		_, _ = io.Copy(r.opts.Stderr, &captured)
	}

	return err
}

// Run `cmd` as part of `stage`, returning its standard output. Standard error is passed through, or captured in quiet mode.
func (r *Runner) Output(ctx context.Context, stage relerrors.Stage, cmd Command) (string, error) {
	var stdout bytes.Buffer
	var stderr bytes.Buffer

	errWriter := r.opts.Stderr
	if r.opts.Quiet {
		errWriter = &stderr
	}

	err := r.run(ctx, stage, cmd, &stdout, errWriter)
	if err != nil && r.opts.Quiet {
		_, _ = io.Copy(r.opts.Stderr, &stderr)
	}

	return stdout.String(), err
}

func (r *Runner) run(ctx context.Context, stage relerrors.Stage, cmd Command, stdout, stderr io.Writer) error {
	if len(cmd) == 0 {
		return relerrors.Errorf(stage, "no command configured")
	}

	script, err := shSyntax.NewParser().Parse(strings.NewReader(cmd.Script()), cmd[0])
	if err != nil {
		return relerrors.Wrap(stage, eris.Wrapf(err, "failed to parse command '%s'", cmd))
	}

	// Set up interpreter options.
	var interpOpts []shInterp.RunnerOption
	interpOpts = append(interpOpts, shInterp.Dir(r.opts.Dir))
	interpOpts = append(interpOpts, shInterp.StdIO(nil, stdout, stderr))
	interpOpts = append(interpOpts, shInterp.Env(r.opts.Env))
	interpOpts = append(interpOpts, shInterp.Params("-e"))
	if len(r.opts.ExecMiddlewares) != 0 {
		interpOpts = append(interpOpts, shInterp.ExecHandlers(r.opts.ExecMiddlewares...))
	}

	interp, err := shInterp.New(interpOpts...)
	if err != nil {
		return relerrors.Wrap(stage, eris.Wrap(err, "failed to create wheelhouse interpreter"))
	}

	err = interp.Run(ctx, script)
	if err == nil {
		return nil
	}

	if status, ok := shInterp.IsExitStatus(err); ok {
		return relerrors.CommandFailed(stage, int(status), fmt.Errorf("'%s' exited with status %d", cmd, status))
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return relerrors.Wrap(stage, eris.Wrapf(ctxErr, "'%s' was interrupted", cmd))
	}

	return relerrors.Wrap(stage, eris.Wrapf(err, "failed to run '%s'", cmd))
}
