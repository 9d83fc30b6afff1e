// Package journal keeps a SQLite ledger of every file the monitor processed.
//
// The ledger outlives a single run, unlike the in-memory processed set, and
// backs the `spimrelay history` command.
//
// Architecture:
//   - Database file: <user cache dir>/spimrelay/journal.db by default
//   - WAL mode: the history command can read while a monitor writes
//   - Schema: one transfers table, indexed by time and source
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/mschirtzinger/spimrelay/internal/monitor"
)

// Status values stored for each transfer.
const (
	StatusCopied = "copied"
	StatusFailed = "failed"
)

// Entry is one recorded processing result.
type Entry struct {
	ID          int64     `json:"id"`
	Source      string    `json:"source"`
	Destination string    `json:"destination,omitempty"`
	Trigger     string    `json:"trigger"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	RecordedAt  time.Time `json:"recorded_at"`
}

// EntryFromResult converts a monitor result into a journal entry.
func EntryFromResult(res monitor.Result) Entry {
	e := Entry{
		Source:      res.Source,
		Destination: res.Destination,
		Trigger:     string(res.Trigger),
		Status:      StatusCopied,
		RecordedAt:  res.At,
	}
	if res.Err != nil {
		e.Status = StatusFailed
		e.Error = res.Err.Error()
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}
	return e
}

// Journal wraps the SQLite connection holding the transfer ledger.
type Journal struct {
	conn   *sql.DB
	path   string
	logger *log.Logger
}

// DefaultPath returns the journal location under the user cache directory.
func DefaultPath() (string, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate cache directory: %w", err)
	}
	return filepath.Join(dir, "spimrelay", "journal.db"), nil
}

// Open creates a journal connection at the specified path.
//
// The parent directory is created if needed. The caller MUST call Close()
// when done, and InitSchema() before the first write.
func Open(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping journal: %w", err)
	}

	conn.SetMaxOpenConns(4)
	conn.SetMaxIdleConns(2)
	conn.SetConnMaxLifetime(5 * time.Minute)

	j := &Journal{
		conn:   conn,
		path:   path,
		logger: log.New(os.Stderr, "[journal] ", log.LstdFlags),
	}

	if _, err := j.conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = j.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return j, nil
}

// dsn builds a SQLite URI for path. The path is escaped so '?' and '#' stay
// part of the file name. Pragmas in the URI apply to every pooled connection.
func dsn(path string) string {
	u := url.URL{
		Scheme:   "file",
		OmitHost: true,
		Path:     filepath.ToSlash(path),
		RawQuery: "_pragma=busy_timeout(5000)",
	}
	return u.String()
}

// SetLogger replaces the logger used to report write failures from Observe.
func (j *Journal) SetLogger(logger *log.Logger) {
	if logger != nil {
		j.logger = logger
	}
}

// Path returns the database file location.
func (j *Journal) Path() string {
	return j.path
}

// Close closes the journal connection after a WAL checkpoint.
func (j *Journal) Close() error {
	if j.conn == nil {
		return nil
	}

	if _, err := j.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		j.logger.Printf("Warning: failed to checkpoint WAL: %v", err)
	}

	if err := j.conn.Close(); err != nil {
		return fmt.Errorf("failed to close journal: %w", err)
	}

	j.conn = nil
	return nil
}

// InitSchema creates the transfers table if it doesn't exist.
// It is idempotent.
func (j *Journal) InitSchema() error {
	return j.InitSchemaContext(context.Background())
}

// InitSchemaContext creates the schema with context support.
func (j *Journal) InitSchemaContext(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS transfers (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		source TEXT NOT NULL,
		destination TEXT NOT NULL DEFAULT '',
		trigger TEXT NOT NULL,
		status TEXT NOT NULL,  -- copied, failed
		error TEXT NOT NULL DEFAULT '',
		recorded_at INTEGER NOT NULL  -- unix nanoseconds
	);

	CREATE INDEX IF NOT EXISTS idx_transfers_recorded ON transfers(recorded_at);
	CREATE INDEX IF NOT EXISTS idx_transfers_source ON transfers(source);
	CREATE INDEX IF NOT EXISTS idx_transfers_status ON transfers(status);
	`

	if _, err := j.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}

	return nil
}

// Record appends an entry and returns its ID.
func (j *Journal) Record(e Entry) (int64, error) {
	return j.RecordContext(context.Background(), e)
}

// RecordContext appends an entry with context support.
func (j *Journal) RecordContext(ctx context.Context, e Entry) (int64, error) {
	if e.Source == "" {
		return 0, fmt.Errorf("source is required")
	}
	if e.Status != StatusCopied && e.Status != StatusFailed {
		return 0, fmt.Errorf("invalid status: %q", e.Status)
	}
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now()
	}

	query := `
	INSERT INTO transfers (source, destination, trigger, status, error, recorded_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	res, err := j.conn.ExecContext(ctx, query,
		e.Source,
		e.Destination,
		e.Trigger,
		e.Status,
		e.Error,
		e.RecordedAt.UnixNano(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to record transfer of %s: %w", e.Source, err)
	}

	return res.LastInsertId()
}

// Observe records a monitor result. Write failures are logged, never
// returned, so a broken journal cannot stall the monitor.
func (j *Journal) Observe(res monitor.Result) {
	if _, err := j.Record(EntryFromResult(res)); err != nil {
		j.logger.Printf("Error: %v", err)
	}
}

// Recent returns entries recorded at or after since, newest first.
// A zero since returns all entries; limit <= 0 means no limit.
func (j *Journal) Recent(since time.Time, limit int) ([]Entry, error) {
	return j.RecentContext(context.Background(), since, limit)
}

// RecentContext returns recent entries with context support.
func (j *Journal) RecentContext(ctx context.Context, since time.Time, limit int) ([]Entry, error) {
	var sinceNanos int64
	if !since.IsZero() {
		sinceNanos = since.UnixNano()
	}
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	query := `
	SELECT id, source, destination, trigger, status, error, recorded_at
	FROM transfers
	WHERE recorded_at >= ?
	ORDER BY recorded_at DESC, id DESC
	LIMIT ?
	`

	rows, err := j.conn.QueryContext(ctx, query, sinceNanos, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transfers: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var recordedAt int64
		if err := rows.Scan(&e.ID, &e.Source, &e.Destination, &e.Trigger, &e.Status, &e.Error, &recordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transfer: %w", err)
		}
		e.RecordedAt = time.Unix(0, recordedAt)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transfers: %w", err)
	}

	return entries, nil
}

// Counts returns the number of copied and failed entries.
func (j *Journal) Counts() (copied, failed int, err error) {
	return j.CountsContext(context.Background())
}

// CountsContext returns entry counts with context support.
func (j *Journal) CountsContext(ctx context.Context) (copied, failed int, err error) {
	query := `
	SELECT
		COALESCE(SUM(CASE WHEN status = 'copied' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0)
	FROM transfers
	`

	if err := j.conn.QueryRowContext(ctx, query).Scan(&copied, &failed); err != nil {
		return 0, 0, fmt.Errorf("failed to count transfers: %w", err)
	}
	return copied, failed, nil
}

// ExportJSONL writes entries recorded at or after since to w, one JSON
// object per line, oldest first. It returns the number of lines written.
func (j *Journal) ExportJSONL(ctx context.Context, w io.Writer, since time.Time) (int, error) {
	entries, err := j.RecentContext(ctx, since, 0)
	if err != nil {
		return 0, err
	}

	enc := json.NewEncoder(w)
	for i := len(entries) - 1; i >= 0; i-- {
		if err := enc.Encode(entries[i]); err != nil {
			return len(entries) - 1 - i, fmt.Errorf("failed to write entry %d: %w", entries[i].ID, err)
		}
	}
	return len(entries), nil
}
