package errors

import (
	"errors"
	"fmt"
)

// A step of the release pipeline.
type Stage string

const (
	StageConfig   Stage = "config"
	StagePrepare  Stage = "prepare"
	StageClean    Stage = "clean"
	StageBuild    Stage = "build"
	StageRelocate Stage = "relocate"
	StageInstall  Stage = "install"
	StageVerify   Stage = "verify"
)

// An error raised by one stage of a release, printed specially by the wheelhouse CLI.
type ReleaseError struct {
	// The stage that failed.
	Stage Stage
	// The exit status of the failed external command, or `0` if the failure happened inside wheelhouse.
	Code int
	err  error
}

func (e *ReleaseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.err.Error())
}

func (e *ReleaseError) Unwrap() error {
	return e.err
}

// Create a new [ReleaseError] for `stage`, accepting the same remaining arguments as [fmt.Errorf].
func Errorf(stage Stage, format string, a ...any) *ReleaseError {
	return &ReleaseError{Stage: stage, err: fmt.Errorf(format, a...)}
}

// Attach `stage` to `err`. Errors that already carry a stage are returned unchanged. A `nil` error stays `nil`.
func Wrap(stage Stage, err error) error {
	if err == nil {
		return nil
	}

	var relErr *ReleaseError
	if errors.As(err, &relErr) {
		return err
	}

	return &ReleaseError{Stage: stage, err: err}
}

// Create a [ReleaseError] for an external command that exited with `code`.
func CommandFailed(stage Stage, code int, err error) *ReleaseError {
	return &ReleaseError{Stage: stage, Code: code, err: err}
}

// Get the stage that produced `err`, if any.
func StageOf(err error) (Stage, bool) {
	var relErr *ReleaseError
	if errors.As(err, &relErr) {
		return relErr.Stage, true
	}

	return "", false
}

// Get the process exit status for `err`: the failed command's exit status if there is one, `1` for any other error, `0` for `nil`.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}

	var relErr *ReleaseError
	if errors.As(err, &relErr) && relErr.Code != 0 {
		return relErr.Code
	}

	return 1
}
