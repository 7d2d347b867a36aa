package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    source         TEXT NOT NULL,
    created_at     DATETIME NOT NULL,
    story_count    INTEGER NOT NULL DEFAULT 0,
    skipped_rows   INTEGER NOT NULL DEFAULT 0,
    total_votes    INTEGER NOT NULL DEFAULT 0,
    total_comments INTEGER NOT NULL DEFAULT 0,
    quiet          INTEGER NOT NULL DEFAULT 0,
    balanced       INTEGER NOT NULL DEFAULT 0,
    buzzing        INTEGER NOT NULL DEFAULT 0,
    excluded       INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);

CREATE TABLE IF NOT EXISTS run_stories (
    run_id      INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    rank        INTEGER NOT NULL,
    title       TEXT NOT NULL,
    url         TEXT NOT NULL DEFAULT '',
    domain      TEXT NOT NULL DEFAULT '',
    votes       INTEGER NOT NULL DEFAULT 0,
    comments    INTEGER NOT NULL DEFAULT 0,
    ratio       REAL NOT NULL DEFAULT 0,
    level       INTEGER NOT NULL DEFAULT 0,
    level_valid BOOLEAN NOT NULL DEFAULT 1,
    PRIMARY KEY (run_id, rank)
);

CREATE INDEX IF NOT EXISTS idx_run_stories_run ON run_stories(run_id);

CREATE TABLE IF NOT EXISTS alerted_stories (
    url        TEXT PRIMARY KEY,
    title      TEXT NOT NULL,
    alerted_at DATETIME NOT NULL
);
`
