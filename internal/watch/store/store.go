// Package store implements the Watch Store (spec.md §4.11): a
// durable, transactional SQLite-backed relational store for Repo,
// Tracked, Snapshot, Change, and Session rows, with write-ahead
// journaling, foreign-key enforcement, and prepared operations that
// return mapped domain values.
//
// Grounded on internal/storage/sqlite/sqlite.go: the
// "?_journal_mode=WAL&_foreign_keys=ON" connection string, the lazily
// opened/reused/deterministically closed *sql.DB, and the
// allowed-field-allowlist pattern against SQL injection (used here for
// Tracked's mutable fields).
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"scout/internal/artifact"
)

// Store is the Watch Store's connection handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if absent) the SQLite database at path with
// WAL journaling and foreign-key enforcement, and applies the schema.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_foreign_keys=ON", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening store at %s: %w", path, err)
	}
	db.SetMaxOpenConns(1) // one writer at a time, spec.md §4.11

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema to %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying connection deterministically.
func (s *Store) Close() error {
	return s.db.Close()
}

// Repo is the domain value for a repos row.
type Repo struct {
	ID            int64
	FullName      string
	URL           string
	DefaultBranch string
	License       string
	CreatedAt     time.Time
}

// UpsertRepo inserts a Repo by full_name; if one already exists
// (full_name is unique) its url is updated and the row is returned.
func (s *Store) UpsertRepo(ctx context.Context, fullName, url, defaultBranch, license string) (Repo, error) {
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO repos (full_name, url, default_branch, license, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(full_name) DO UPDATE SET url = excluded.url`,
		fullName, url, nullableString(defaultBranch), nullableString(license), now.Format(time.RFC3339))
	if err != nil {
		return Repo{}, fmt.Errorf("upserting repo %s: %w", fullName, err)
	}
	return s.GetRepoByFullName(ctx, fullName)
}

// GetRepoByFullName loads a Repo by its unique full_name.
func (s *Store) GetRepoByFullName(ctx context.Context, fullName string) (Repo, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, full_name, url, default_branch, license, created_at FROM repos WHERE full_name = ?`, fullName)
	return scanRepo(row)
}

func scanRepo(row *sql.Row) (Repo, error) {
	var r Repo
	var defaultBranch, license sql.NullString
	var createdAt string
	if err := row.Scan(&r.ID, &r.FullName, &r.URL, &defaultBranch, &license, &createdAt); err != nil {
		return Repo{}, fmt.Errorf("scanning repo: %w", err)
	}
	r.DefaultBranch = defaultBranch.String
	r.License = license.String
	r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return r, nil
}

// Tracked is the domain value for a tracked row.
type Tracked struct {
	ID                int64
	RepoID            int64
	TargetKind        artifact.Kind
	Paths             []string
	Enabled           bool
	PollIntervalHours int
}

// UpsertTracked inserts or updates a Tracked row for (repo_id, target_kind).
func (s *Store) UpsertTracked(ctx context.Context, repoID int64, kind artifact.Kind, paths []string, enabled bool, pollIntervalHours int) (Tracked, error) {
	pathsJSON, err := json.Marshal(paths)
	if err != nil {
		return Tracked{}, fmt.Errorf("marshaling tracked paths: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tracked (repo_id, target_kind, paths, enabled, poll_interval_hours)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(repo_id, target_kind) DO UPDATE SET
			paths = excluded.paths, enabled = excluded.enabled, poll_interval_hours = excluded.poll_interval_hours`,
		repoID, string(kind), string(pathsJSON), boolToInt(enabled), pollIntervalHours)
	if err != nil {
		return Tracked{}, fmt.Errorf("upserting tracked repo_id=%d kind=%s: %w", repoID, kind, err)
	}
	return s.GetTracked(ctx, repoID, kind)
}

// GetTracked loads a Tracked row by (repo_id, target_kind).
func (s *Store) GetTracked(ctx context.Context, repoID int64, kind artifact.Kind) (Tracked, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, repo_id, target_kind, paths, enabled, poll_interval_hours FROM tracked WHERE repo_id = ? AND target_kind = ?`, repoID, string(kind))
	return scanTracked(row)
}

func scanTracked(row *sql.Row) (Tracked, error) {
	var t Tracked
	var kind, pathsJSON string
	var enabled int
	if err := row.Scan(&t.ID, &t.RepoID, &kind, &pathsJSON, &enabled, &t.PollIntervalHours); err != nil {
		return Tracked{}, fmt.Errorf("scanning tracked: %w", err)
	}
	t.TargetKind = artifact.Kind(kind)
	t.Enabled = enabled != 0
	_ = json.Unmarshal([]byte(pathsJSON), &t.Paths)
	return t, nil
}

// ListAllTracked lists every Tracked row for fullName regardless of
// enabled state, for the `watch list` command.
func (s *Store) ListAllTracked(ctx context.Context, fullName string) ([]Tracked, error) {
	repo, err := s.GetRepoByFullName(ctx, fullName)
	if err != nil {
		return nil, fmt.Errorf("looking up repo %s: %w", fullName, err)
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, repo_id, target_kind, paths, enabled, poll_interval_hours FROM tracked WHERE repo_id = ?`, repo.ID)
	if err != nil {
		return nil, fmt.Errorf("listing tracked rows for %s: %w", fullName, err)
	}
	defer rows.Close()

	var tracked []Tracked
	for rows.Next() {
		var t Tracked
		var kind, pathsJSON string
		var enabled int
		if err := rows.Scan(&t.ID, &t.RepoID, &kind, &pathsJSON, &enabled, &t.PollIntervalHours); err != nil {
			return nil, fmt.Errorf("scanning tracked row: %w", err)
		}
		t.TargetKind = artifact.Kind(kind)
		t.Enabled = enabled != 0
		_ = json.Unmarshal([]byte(pathsJSON), &t.Paths)
		tracked = append(tracked, t)
	}
	return tracked, rows.Err()
}

// ListEnabledTracked lists every enabled Tracked row joined with its
// Repo's full_name, for the Change Detector's batch driver.
func (s *Store) ListEnabledTracked(ctx context.Context) ([]Tracked, map[int64]Repo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, repo_id, target_kind, paths, enabled, poll_interval_hours FROM tracked WHERE enabled = 1`)
	if err != nil {
		return nil, nil, fmt.Errorf("listing enabled tracked rows: %w", err)
	}
	defer rows.Close()

	var tracked []Tracked
	repoIDs := make(map[int64]bool)
	for rows.Next() {
		var t Tracked
		var kind, pathsJSON string
		var enabled int
		if err := rows.Scan(&t.ID, &t.RepoID, &kind, &pathsJSON, &enabled, &t.PollIntervalHours); err != nil {
			return nil, nil, fmt.Errorf("scanning tracked row: %w", err)
		}
		t.TargetKind = artifact.Kind(kind)
		t.Enabled = enabled != 0
		_ = json.Unmarshal([]byte(pathsJSON), &t.Paths)
		tracked = append(tracked, t)
		repoIDs[t.RepoID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	repos := make(map[int64]Repo, len(repoIDs))
	for id := range repoIDs {
		repoRow := s.db.QueryRowContext(ctx, `SELECT id, full_name, url, default_branch, license, created_at FROM repos WHERE id = ?`, id)
		repo, err := scanRepo(repoRow)
		if err != nil {
			return nil, nil, err
		}
		repos[id] = repo
	}
	return tracked, repos, nil
}

// Snapshot is the domain value for a snapshots row.
type Snapshot struct {
	ID           int64
	RepoID       int64
	HeadCommitID string
	ObservedAt   time.Time
}

// AppendSnapshot appends a new Snapshot row for repoID.
func (s *Store) AppendSnapshot(ctx context.Context, repoID int64, headCommitID string) (Snapshot, error) {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, `INSERT INTO snapshots (repo_id, head_commit_id, observed_at) VALUES (?, ?, ?)`, repoID, headCommitID, now.Format(time.RFC3339))
	if err != nil {
		return Snapshot{}, fmt.Errorf("appending snapshot for repo_id=%d: %w", repoID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{ID: id, RepoID: repoID, HeadCommitID: headCommitID, ObservedAt: now}, nil
}

// LatestSnapshot returns the max-id Snapshot for repoID, or
// (Snapshot{}, false, nil) if none exists yet.
func (s *Store) LatestSnapshot(ctx context.Context, repoID int64) (Snapshot, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, repo_id, head_commit_id, observed_at FROM snapshots WHERE repo_id = ? ORDER BY id DESC LIMIT 1`, repoID)
	var snap Snapshot
	var observedAt string
	if err := row.Scan(&snap.ID, &snap.RepoID, &snap.HeadCommitID, &observedAt); err != nil {
		if err == sql.ErrNoRows {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, fmt.Errorf("loading latest snapshot for repo_id=%d: %w", repoID, err)
	}
	snap.ObservedAt, _ = time.Parse(time.RFC3339, observedAt)
	return snap, true, nil
}

// DiffStats mirrors internal/git.DiffStats for JSON persistence in
// changes.diff_stats.
type DiffStats struct {
	FilesChanged int `json:"files_changed"`
	Insertions   int `json:"insertions"`
	Deletions    int `json:"deletions"`
}

// Change is the domain value for a changes row.
type Change struct {
	ID         int64
	RepoID     int64
	FromCommit string
	ToCommit   string
	TargetKind artifact.Kind
	DiffStats  *DiffStats
	CreatedAt  time.Time
	Drift      bool
}

// AppendChange appends a new Change row.
func (s *Store) AppendChange(ctx context.Context, repoID int64, from, to string, kind artifact.Kind, stats *DiffStats, drift bool) (Change, error) {
	now := time.Now().UTC()
	var statsJSON sql.NullString
	if stats != nil {
		data, err := json.Marshal(stats)
		if err != nil {
			return Change{}, fmt.Errorf("marshaling diff stats: %w", err)
		}
		statsJSON = sql.NullString{String: string(data), Valid: true}
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO changes (repo_id, from_commit, to_commit, target_kind, diff_stats, created_at, drift)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		repoID, from, to, string(kind), statsJSON, now.Format(time.RFC3339), boolToInt(drift))
	if err != nil {
		return Change{}, fmt.Errorf("appending change for repo_id=%d: %w", repoID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Change{}, err
	}
	return Change{ID: id, RepoID: repoID, FromCommit: from, ToCommit: to, TargetKind: kind, DiffStats: stats, CreatedAt: now, Drift: drift}, nil
}

// Session is the domain value for a sessions row.
type Session struct {
	ID         int64
	ChangeID   int64
	SessionDir string
	Status     artifact.SessionStatus
	ExitCode   *int
	StartedAt  *time.Time
	FinishedAt *time.Time
}

// AppendSession appends a new Session row in pending state.
func (s *Store) AppendSession(ctx context.Context, changeID int64, sessionDir string) (Session, error) {
	res, err := s.db.ExecContext(ctx, `INSERT INTO sessions (change_id, session_dir, status) VALUES (?, ?, ?)`, changeID, sessionDir, string(artifact.SessionPending))
	if err != nil {
		return Session{}, fmt.Errorf("appending session for change_id=%d: %w", changeID, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Session{}, err
	}
	return Session{ID: id, ChangeID: changeID, SessionDir: sessionDir, Status: artifact.SessionPending}, nil
}

// ErrNonMonotonicTransition is returned when a caller attempts to move
// a Session backward or skip required states (spec.md §4.11).
var ErrNonMonotonicTransition = fmt.Errorf("session status transition is not monotonic")

// TransitionSession moves a Session to next, recording exit code and
// timestamps as appropriate, rejecting any non-monotonic transition.
func (s *Store) TransitionSession(ctx context.Context, sessionID int64, next artifact.SessionStatus, exitCode *int) (Session, error) {
	current, err := s.GetSessionByID(ctx, sessionID)
	if err != nil {
		return Session{}, err
	}
	if !current.Status.CanTransitionTo(next) {
		return Session{}, fmt.Errorf("%w: session %d %s -> %s", ErrNonMonotonicTransition, sessionID, current.Status, next)
	}

	now := time.Now().UTC()
	switch next {
	case artifact.SessionRunning:
		_, err = s.db.ExecContext(ctx, `UPDATE sessions SET status = ?, started_at = ? WHERE id = ?`, string(next), now.Format(time.RFC3339), sessionID)
	default:
		_, err = s.db.ExecContext(ctx, `UPDATE sessions SET status = ?, exit_code = ?, finished_at = ? WHERE id = ?`, string(next), exitCode, now.Format(time.RFC3339), sessionID)
	}
	if err != nil {
		return Session{}, fmt.Errorf("transitioning session %d to %s: %w", sessionID, next, err)
	}
	return s.GetSessionByID(ctx, sessionID)
}

// GetSessionByID loads a Session by id.
func (s *Store) GetSessionByID(ctx context.Context, id int64) (Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, change_id, session_dir, status, exit_code, started_at, finished_at FROM sessions WHERE id = ?`, id)
	return scanSession(row)
}

// GetSessionByDir loads a Session by its directory path, used by
// internal/session's idempotence check.
func (s *Store) GetSessionByDir(ctx context.Context, dir string) (Session, bool, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, change_id, session_dir, status, exit_code, started_at, finished_at FROM sessions WHERE session_dir = ?`, dir)
	sess, err := scanSession(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return Session{}, false, nil
		}
		return Session{}, false, err
	}
	return sess, true, nil
}

func scanSession(row *sql.Row) (Session, error) {
	var sess Session
	var status string
	var exitCode sql.NullInt64
	var startedAt, finishedAt sql.NullString
	if err := row.Scan(&sess.ID, &sess.ChangeID, &sess.SessionDir, &status, &exitCode, &startedAt, &finishedAt); err != nil {
		return Session{}, err
	}
	sess.Status = artifact.SessionStatus(status)
	if exitCode.Valid {
		v := int(exitCode.Int64)
		sess.ExitCode = &v
	}
	if startedAt.Valid {
		t, _ := time.Parse(time.RFC3339, startedAt.String)
		sess.StartedAt = &t
	}
	if finishedAt.Valid {
		t, _ := time.Parse(time.RFC3339, finishedAt.String)
		sess.FinishedAt = &t
	}
	return sess, nil
}

// PendingSessions lists every Session row in the pending state.
func (s *Store) PendingSessions(ctx context.Context) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, change_id, session_dir, status, exit_code, started_at, finished_at FROM sessions WHERE status = ?`, string(artifact.SessionPending))
	if err != nil {
		return nil, fmt.Errorf("listing pending sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		var status string
		var exitCode sql.NullInt64
		var startedAt, finishedAt sql.NullString
		if err := rows.Scan(&sess.ID, &sess.ChangeID, &sess.SessionDir, &status, &exitCode, &startedAt, &finishedAt); err != nil {
			return nil, err
		}
		sess.Status = artifact.SessionStatus(status)
		if exitCode.Valid {
			v := int(exitCode.Int64)
			sess.ExitCode = &v
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// TerminalSessions lists every Session row whose status is success,
// failure, or skipped and whose finished_at is older than olderThan,
// for the cleanup command's session-pruning pass.
func (s *Store) TerminalSessions(ctx context.Context, olderThan time.Time) ([]Session, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, change_id, session_dir, status, exit_code, started_at, finished_at FROM sessions WHERE status IN (?, ?, ?) AND finished_at IS NOT NULL AND finished_at < ?`,
		string(artifact.SessionSuccess), string(artifact.SessionFailure), string(artifact.SessionSkipped), olderThan.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("listing terminal sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		sess, status, exitCode, startedAt, finishedAt, err := scanSessionRow(rows)
		if err != nil {
			return nil, err
		}
		sess.Status = artifact.SessionStatus(status)
		if exitCode.Valid {
			v := int(exitCode.Int64)
			sess.ExitCode = &v
		}
		if startedAt.Valid {
			t, _ := time.Parse(time.RFC3339, startedAt.String)
			sess.StartedAt = &t
		}
		if finishedAt.Valid {
			t, _ := time.Parse(time.RFC3339, finishedAt.String)
			sess.FinishedAt = &t
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

func scanSessionRow(rows *sql.Rows) (Session, string, sql.NullInt64, sql.NullString, sql.NullString, error) {
	var sess Session
	var status string
	var exitCode sql.NullInt64
	var startedAt, finishedAt sql.NullString
	err := rows.Scan(&sess.ID, &sess.ChangeID, &sess.SessionDir, &status, &exitCode, &startedAt, &finishedAt)
	return sess, status, exitCode, startedAt, finishedAt, err
}

// DeleteSession removes a Session row by id, used once its directory
// has been pruned from disk.
func (s *Store) DeleteSession(ctx context.Context, sessionID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID)
	if err != nil {
		return fmt.Errorf("deleting session %d: %w", sessionID, err)
	}
	return nil
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
