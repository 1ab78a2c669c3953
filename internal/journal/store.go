package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"winnow/internal/config"
)

// Store persists the job journal in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the journal database under the log dir.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.LogDir, "journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create records a freshly started job.
func (s *Store) Create(ctx context.Context, id, sourcePath string) (*Entry, error) {
	now := time.Now().UTC()
	entry := &Entry{
		ID:         id,
		SourcePath: sourcePath,
		Status:     StatusStarted,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err := s.execWithRetry(ctx,
		`INSERT INTO jobs (id, source_path, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		entry.ID, entry.SourcePath, string(entry.Status), formatTime(now), formatTime(now))
	if err != nil {
		return nil, fmt.Errorf("create journal entry: %w", err)
	}
	return entry, nil
}

// SetStatus transitions a job, optionally recording a destination path or an
// error message alongside the terminal state.
func (s *Store) SetStatus(ctx context.Context, id string, status Status, destinationPath, errorMessage string) error {
	err := s.execWithRetry(ctx,
		`UPDATE jobs SET status = ?, destination_path = ?, error_message = ?, updated_at = ? WHERE id = ?`,
		string(status), destinationPath, errorMessage, formatTime(time.Now().UTC()), id)
	if err != nil {
		return fmt.Errorf("set journal status: %w", err)
	}
	return nil
}

// UpdateProgress records the latest progress tick for a running job.
func (s *Store) UpdateProgress(ctx context.Context, id string, percent float64, task string) error {
	err := s.execWithRetry(ctx,
		`UPDATE jobs SET progress_percent = ?, progress_task = ?, updated_at = ? WHERE id = ?`,
		percent, task, formatTime(time.Now().UTC()), id)
	if err != nil {
		return fmt.Errorf("update journal progress: %w", err)
	}
	return nil
}

// Get fetches one journal entry by job ID.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source_path, destination_path, status, progress_percent, progress_task, error_message, created_at, updated_at
		 FROM jobs WHERE id = ?`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("journal entry %s not found", id)
	}
	return entry, err
}

// List returns journal entries, newest first, capped at limit (0 = all).
func (s *Store) List(ctx context.Context, limit int) ([]*Entry, error) {
	query := `SELECT id, source_path, destination_path, status, progress_percent, progress_task, error_message, created_at, updated_at
	          FROM jobs ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry     Entry
		status    string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&entry.ID, &entry.SourcePath, &entry.DestinationPath, &status,
		&entry.ProgressPercent, &entry.ProgressTask, &entry.ErrorMessage, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	entry.Status = Status(status)
	entry.CreatedAt = parseTime(createdAt)
	entry.UpdatedAt = parseTime(updatedAt)
	return &entry, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(value string) time.Time {
	parsed, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}
	}
	return parsed
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		_, lastErr = s.db.ExecContext(ctx, query, args...)
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
