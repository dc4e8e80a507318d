package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultPath is used when no database path is configured.
const DefaultPath = "~/.wheelhouse/history.db"

// Fixed-width UTC timestamps keep text ordering chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Open creates a SQLite-backed history store, creating the database and its directory if needed.
func Open(dbPath string) (Store, error) {
	resolved, err := ResolvePath(dbPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", resolved)
	if err != nil {
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schemaV1); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &store{db: db}, nil
}

type store struct {
	db *sql.DB
}

// ResolvePath expands a leading `~` and cleans the path. An empty path resolves to DefaultPath.
func ResolvePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		p = DefaultPath
	}
	if strings.HasPrefix(p, "~/") || p == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home dir: %w", err)
		}
		if p == "~" {
			p = home
		} else {
			p = filepath.Join(home, p[2:])
		}
	}
	return filepath.Clean(p), nil
}

func (s *store) Record(ctx context.Context, run Run) (Run, error) {
	if run.PkgName == "" {
		return Run{}, errors.New("package name is required")
	}
	if run.Status == "" {
		return Run{}, errors.New("status is required")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (
			run_uuid, pkg_name, pkg_version, wheel, sha256, size,
			status, stage, error, started_at, finished_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.ID, run.PkgName, run.PkgVersion, run.Wheel, run.SHA256, run.Size,
		run.Status, run.Stage, run.Error,
		run.StartedAt.UTC().Format(timeLayout), run.FinishedAt.UTC().Format(timeLayout))
	if err != nil {
		return Run{}, fmt.Errorf("failed to record run: %w", err)
	}

	return run, nil
}

func (s *store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT run_uuid, pkg_name, pkg_version, COALESCE(wheel, ''), COALESCE(sha256, ''), COALESCE(size, 0),
		       status, COALESCE(stage, ''), COALESCE(error, ''), started_at, finished_at
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []Run
	for rows.Next() {
		var run Run
		var started, finished string
		if err := rows.Scan(&run.ID, &run.PkgName, &run.PkgVersion, &run.Wheel, &run.SHA256, &run.Size,
			&run.Status, &run.Stage, &run.Error, &started, &finished); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if run.StartedAt, err = time.Parse(timeLayout, started); err != nil {
			return nil, fmt.Errorf("failed to parse start time of run %s: %w", run.ID, err)
		}
		if run.FinishedAt, err = time.Parse(timeLayout, finished); err != nil {
			return nil, fmt.Errorf("failed to parse finish time of run %s: %w", run.ID, err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (s *store) Close() error {
	return s.db.Close()
}
