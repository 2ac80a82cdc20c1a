package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/Jeff-411/book-extractor/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/Jeff-411/book-extractor/internal/core/domain"
	"github.com/Jeff-411/book-extractor/internal/core/ports/driven"
)

// Store is a SQLite-backed job history store.
type Store struct {
	db   *sql.DB
	path string
}

var _ driven.HistoryStore = (*Store)(nil)

// NewStore opens (creating if needed) the history database at dbPath and
// applies pending migrations.
func NewStore(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, fmt.Errorf("%w: history database path is empty", domain.ErrInvalidInput)
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_history.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== History ====================

// Save stores a finished job. Saving the same job ID again replaces it.
func (s *Store) Save(ctx context.Context, entry domain.HistoryEntry) error {
	if entry.JobID == "" {
		return fmt.Errorf("%w: job ID is empty", domain.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO jobs (id, archive_path, target_directory, kind, state, file_count,
			error_category, error_message, requested_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			archive_path = excluded.archive_path,
			target_directory = excluded.target_directory,
			kind = excluded.kind,
			state = excluded.state,
			file_count = excluded.file_count,
			error_category = excluded.error_category,
			error_message = excluded.error_message,
			requested_at = excluded.requested_at,
			finished_at = excluded.finished_at
	`, entry.JobID, entry.ArchivePath,
		nullString(entry.TargetDirectory), nullString(string(entry.Kind)),
		string(entry.State), entry.FileCount,
		nullString(entry.ErrorCategory), nullString(entry.ErrorMessage),
		formatTime(entry.RequestedAt), formatNullableTime(entry.FinishedAt))

	if err != nil {
		return fmt.Errorf("saving job %s: %w", entry.JobID, err)
	}
	return nil
}

// Get retrieves a job by ID. Returns domain.ErrNotFound if absent.
func (s *Store) Get(ctx context.Context, jobID string) (*domain.HistoryEntry, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, archive_path, target_directory, kind, state, file_count,
			error_category, error_message, requested_at, finished_at
		FROM jobs WHERE id = ?
	`, jobID)

	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: job %s", domain.ErrNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning job: %w", err)
	}
	return entry, nil
}

// Recent returns up to limit jobs, most recently finished first.
func (s *Store) Recent(ctx context.Context, limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, archive_path, target_directory, kind, state, file_count,
			error_category, error_message, requested_at, finished_at
		FROM jobs
		ORDER BY finished_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying jobs: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry //nolint:prealloc // size unknown from query
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning job: %w", err)
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating jobs: %w", err)
	}

	return entries, nil
}

// ==================== Helper Functions ====================

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (*domain.HistoryEntry, error) {
	var entry domain.HistoryEntry
	var target, kind, category, message, finishedAt sql.NullString
	var state, requestedAt string

	if err := sc.Scan(&entry.JobID, &entry.ArchivePath, &target, &kind, &state,
		&entry.FileCount, &category, &message, &requestedAt, &finishedAt); err != nil {
		return nil, err
	}

	entry.TargetDirectory = target.String
	entry.Kind = domain.ContentKind(kind.String)
	entry.State = domain.JobState(state)
	entry.ErrorCategory = category.String
	entry.ErrorMessage = message.String
	if t, err := time.Parse(time.RFC3339, requestedAt); err == nil {
		entry.RequestedAt = t
	}
	entry.FinishedAt = parseNullableTime(finishedAt)

	return &entry, nil
}

// formatTime formats t as RFC3339 in UTC so stored values sort as text.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// formatNullableTime formats a time to RFC3339 string, or returns nil for zero time.
func formatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

// parseNullableTime parses a nullable RFC3339 string to time.Time.
// Returns zero time if the string is empty or invalid.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
