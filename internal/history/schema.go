package history

const schemaV1 = `
CREATE TABLE IF NOT EXISTS runs (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    run_uuid     TEXT UNIQUE NOT NULL,
    pkg_name     TEXT NOT NULL,
    pkg_version  TEXT NOT NULL,
    wheel        TEXT,
    sha256       TEXT,
    size         INTEGER DEFAULT 0,
    status       TEXT NOT NULL,
    stage        TEXT,
    error        TEXT,
    started_at   TEXT NOT NULL,
    finished_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC);
CREATE INDEX IF NOT EXISTS idx_runs_pkg ON runs(pkg_name, pkg_version);
`
