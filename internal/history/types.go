package history

import (
	"context"
	"time"
)

// Run status values.
const (
	StatusSucceeded = "SUCCEEDED"
	StatusFailed    = "FAILED"
)

// Store persists release runs.
type Store interface {
	Record(ctx context.Context, run Run) (Run, error)
	Recent(ctx context.Context, limit int) ([]Run, error)
	Close() error
}

// Run is one invocation of the release pipeline.
type Run struct {
	ID         string
	PkgName    string
	PkgVersion string
	// Absolute path of the relocated wheel. Empty if the run failed before relocation.
	Wheel  string
	SHA256 string
	Size   int64
	Status string
	// The stage that failed. Empty for successful runs.
	Stage      string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Duration of the run.
func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
