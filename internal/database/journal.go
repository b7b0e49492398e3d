package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/jimmyjon121/Doc-Creator-sub009/internal/model"
)

// Journal provides SQLite-based storage for crawl session metadata.
// It manages the connection and provides methods for recording and
// querying past crawls.
//
// Design decision: We use a single database file shared by all crawl
// sessions rather than one file per session. History queries span
// sessions, and a single file keeps backup and pruning trivial.
type Journal struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Journal behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default journal options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a Journal at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned.
func Open(dbDir string, opts Options) (*Journal, error) {
	dbPath := filepath.Join(dbDir, "doccrawl.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("journal not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check journal path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create journal directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	// SQLite only supports one writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	j := &Journal{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := j.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

// createTables creates the journal schema if it doesn't exist.
func (j *Journal) createTables() error {
	schema := `
	-- Crawl sessions record one row per invocation
	CREATE TABLE IF NOT EXISTS crawl_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		started_at DATETIME NOT NULL,
		finished_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		seeds INTEGER NOT NULL DEFAULT 0,
		requested INTEGER NOT NULL DEFAULT 0,
		fetched INTEGER NOT NULL DEFAULT 0,
		cached INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		pages INTEGER NOT NULL DEFAULT 0,
		errors INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_started ON crawl_sessions(started_at);

	-- Page visits record per-URL outcomes, metadata only
	CREATE TABLE IF NOT EXISTS page_visits (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id INTEGER NOT NULL REFERENCES crawl_sessions(id),
		url TEXT NOT NULL,
		second_level INTEGER NOT NULL DEFAULT 0,
		from_cache INTEGER NOT NULL DEFAULT 0,
		content_length INTEGER NOT NULL DEFAULT 0,
		fetched_at DATETIME NOT NULL,
		UNIQUE(session_id, url)
	);

	CREATE INDEX IF NOT EXISTS idx_visits_session ON page_visits(session_id);
	CREATE INDEX IF NOT EXISTS idx_visits_url ON page_visits(url);
	CREATE INDEX IF NOT EXISTS idx_visits_fetched ON page_visits(fetched_at);
	`

	_, err := j.db.ExecContext(context.Background(), schema)
	return err
}

// Session summarizes one recorded crawl session.
type Session struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Seeds      int
	Requested  int
	Fetched    int
	Cached     int
	Failed     int
	Pages      int
	Errors     int
}

// Visit records one page outcome within a session.
type Visit struct {
	ID            int64
	SessionID     int64
	URL           string
	SecondLevel   bool
	FromCache     bool
	ContentLength int
	FetchedAt     time.Time
}

// SaveCrawlResult records a completed crawl as a session row plus one
// visit row per page. Only metadata is stored; page content never
// touches the journal. Returns the new session ID.
func (j *Journal) SaveCrawlResult(ctx context.Context, result *model.CrawlResult) (int64, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after Commit is a no-op

	res, err := tx.ExecContext(ctx, `
	INSERT INTO crawl_sessions (started_at, seeds, requested, fetched, cached, failed, pages, errors)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.StartedAt.UTC().Format("2006-01-02 15:04:05"),
		result.Seeds,
		result.Stats.Requested,
		result.Stats.Fetched,
		result.Stats.Cached,
		result.Stats.Failed,
		len(result.Pages),
		len(result.Errors),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert session: %w", err)
	}

	sessionID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get session id: %w", err)
	}

	for _, page := range result.Pages {
		_, err := tx.ExecContext(ctx, `
		INSERT INTO page_visits (session_id, url, second_level, from_cache, content_length, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id, url) DO NOTHING
		`,
			sessionID,
			page.URL,
			page.SecondLevel,
			page.FromCache,
			len(page.Content),
			page.FetchedAt.UTC().Format("2006-01-02 15:04:05"),
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert visit: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	return sessionID, nil
}

// RecentSessions returns the most recent crawl sessions, newest first.
func (j *Journal) RecentSessions(ctx context.Context, limit int) ([]Session, error) {
	rows, err := j.db.QueryContext(ctx, `
	SELECT id, started_at, finished_at, seeds, requested, fetched, cached, failed, pages, errors
	FROM crawl_sessions
	ORDER BY started_at DESC, id DESC
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var s Session
		var started, finished string

		if err := rows.Scan(&s.ID, &started, &finished, &s.Seeds,
			&s.Requested, &s.Fetched, &s.Cached, &s.Failed, &s.Pages, &s.Errors); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		s.StartedAt = parseTimestamp(started)
		s.FinishedAt = parseTimestamp(finished)
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// SessionVisits returns all page visits recorded for a session.
func (j *Journal) SessionVisits(ctx context.Context, sessionID int64) ([]Visit, error) {
	rows, err := j.db.QueryContext(ctx, `
	SELECT id, session_id, url, second_level, from_cache, content_length, fetched_at
	FROM page_visits
	WHERE session_id = ?
	ORDER BY id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		var fetched string

		if err := rows.Scan(&v.ID, &v.SessionID, &v.URL, &v.SecondLevel,
			&v.FromCache, &v.ContentLength, &fetched); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}

		v.FetchedAt = parseTimestamp(fetched)
		visits = append(visits, v)
	}

	return visits, rows.Err()
}

// HasRecentVisit reports whether a URL was visited within the specified
// duration, across all sessions.
func (j *Journal) HasRecentVisit(ctx context.Context, url string, within time.Duration) (bool, error) {
	// SQLite datetime modifier format
	modifier := fmt.Sprintf("-%d seconds", int(within.Seconds()))

	var count int
	err := j.db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM page_visits
	WHERE url = ? AND fetched_at > datetime('now', ?)
	`, url, modifier).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check recent visit: %w", err)
	}

	return count > 0, nil
}

// PurgeBefore deletes sessions that started before the given time, along
// with their visits. Returns the number of sessions removed.
func (j *Journal) PurgeBefore(ctx context.Context, t time.Time) (int64, error) {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback after Commit is a no-op

	cutoff := t.UTC().Format("2006-01-02 15:04:05")

	if _, err := tx.ExecContext(ctx, `
	DELETE FROM page_visits
	WHERE session_id IN (SELECT id FROM crawl_sessions WHERE started_at < ?)
	`, cutoff); err != nil {
		return 0, fmt.Errorf("failed to purge visits: %w", err)
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM crawl_sessions WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge sessions: %w", err)
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged sessions: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	return removed, nil
}

// Session returns a single session by ID, or nil if it does not exist.
func (j *Journal) Session(ctx context.Context, id int64) (*Session, error) {
	var s Session
	var started, finished string

	err := j.db.QueryRowContext(ctx, `
	SELECT id, started_at, finished_at, seeds, requested, fetched, cached, failed, pages, errors
	FROM crawl_sessions
	WHERE id = ?
	`, id).Scan(&s.ID, &started, &finished, &s.Seeds,
		&s.Requested, &s.Fetched, &s.Cached, &s.Failed, &s.Pages, &s.Errors)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	s.StartedAt = parseTimestamp(started)
	s.FinishedAt = parseTimestamp(finished)

	return &s, nil
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple
// formats. SQLite may return timestamps in different formats depending on
// configuration. If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
