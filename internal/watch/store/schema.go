package store

// schema is the fixed DDL for the five tables spec.md §3/§4.11
// requires: write-ahead journaling and foreign-key enforcement are
// turned on by the connection string in Open, not here.
//
// Grounded on internal/storage/sqlite/schema.go's embedded-SQL-string
// shape and its cascade/unique-index conventions.
const schema = `
CREATE TABLE IF NOT EXISTS repos (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	full_name TEXT NOT NULL UNIQUE,
	url TEXT NOT NULL,
	default_branch TEXT,
	license TEXT,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS tracked (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	repo_id INTEGER NOT NULL REFERENCES repos(id) ON DELETE CASCADE,
	target_kind TEXT NOT NULL,
	paths TEXT NOT NULL DEFAULT '[]',
	enabled INTEGER NOT NULL DEFAULT 1,
	poll_interval_hours INTEGER NOT NULL DEFAULT 24,
	UNIQUE(repo_id, target_kind)
);

CREATE TABLE IF NOT EXISTS snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	repo_id INTEGER NOT NULL REFERENCES repos(id) ON DELETE CASCADE,
	head_commit_id TEXT NOT NULL,
	observed_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS changes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	repo_id INTEGER NOT NULL REFERENCES repos(id) ON DELETE CASCADE,
	from_commit TEXT NOT NULL,
	to_commit TEXT NOT NULL,
	target_kind TEXT NOT NULL,
	diff_stats TEXT,
	created_at TEXT NOT NULL,
	drift INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	change_id INTEGER NOT NULL REFERENCES changes(id) ON DELETE CASCADE,
	session_dir TEXT NOT NULL,
	status TEXT NOT NULL DEFAULT 'pending',
	exit_code INTEGER,
	started_at TEXT,
	finished_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_tracked_repo ON tracked(repo_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_repo ON snapshots(repo_id, id);
CREATE INDEX IF NOT EXISTS idx_changes_repo ON changes(repo_id, id);
CREATE INDEX IF NOT EXISTS idx_sessions_change ON sessions(change_id);
CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
`
