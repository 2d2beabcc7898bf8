// Package store persists the practice session journal in SQLite.
// The pure-Go modernc driver keeps the binary cgo-free.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"scales/internal/logging"

	_ "modernc.org/sqlite"
)

// timeLayout is fixed-width so lexical order matches chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SessionRecord is one generated practice session.
type SessionRecord struct {
	ID           string
	Pattern      string
	TemplateName string
	Language     string
	FilePath     string
	CreatedAt    time.Time
}

// PatternCount is the number of journaled sessions for one pattern.
type PatternCount struct {
	Pattern string
	Count   int
}

// History is the SQLite-backed session journal.
type History struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewHistory opens (or creates) the journal at path. ":memory:" is accepted.
func NewHistory(path string) (*History, error) {
	timer := logging.StartTimer(logging.CategoryStore, "NewHistory")
	defer timer.Stop()

	logging.Store("Opening session history at path: %s", path)

	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			logging.StoreError("Failed to create directory %s: %v", dir, err)
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		logging.StoreError("Failed to open database at %s: %v", path, err)
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}

	h := &History{db: db, dbPath: path}
	if err := h.initialize(); err != nil {
		logging.StoreError("Failed to initialize schema: %v", err)
		db.Close()
		return nil, err
	}
	logging.StoreDebug("Session history schema initialized")
	return h, nil
}

func (h *History) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS practice_sessions (
		id TEXT PRIMARY KEY,
		pattern TEXT NOT NULL,
		template_name TEXT NOT NULL,
		language TEXT NOT NULL,
		file_path TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_practice_sessions_pattern ON practice_sessions(pattern);
	CREATE INDEX IF NOT EXISTS idx_practice_sessions_created ON practice_sessions(created_at);
	`
	if _, err := h.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create practice_sessions table: %w", err)
	}
	return nil
}

// Record appends one session. Re-recording the same id is a no-op.
func (h *History) Record(ctx context.Context, rec SessionRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if rec.ID == "" {
		return fmt.Errorf("session record has no id")
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	logging.StoreDebug("Recording session: id=%s pattern=%s template=%q", rec.ID, rec.Pattern, rec.TemplateName)

	_, err := h.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO practice_sessions (id, pattern, template_name, language, file_path, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Pattern, rec.TemplateName, rec.Language, rec.FilePath,
		rec.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		logging.StoreError("Failed to record session %s: %v", rec.ID, err)
		return fmt.Errorf("failed to record session: %w", err)
	}
	return nil
}

// Recent returns up to limit sessions, newest first. A non-positive limit means 20.
func (h *History) Recent(ctx context.Context, limit int) ([]SessionRecord, error) {
	timer := logging.StartTimer(logging.CategoryStore, "Recent")
	defer timer.Stop()

	h.mu.RLock()
	defer h.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := h.db.QueryContext(ctx,
		`SELECT id, pattern, template_name, language, file_path, created_at
		 FROM practice_sessions
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		logging.StoreError("Failed to query recent sessions: %v", err)
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		var created string
		if err := rows.Scan(&rec.ID, &rec.Pattern, &rec.TemplateName, &rec.Language, &rec.FilePath, &created); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		rec.CreatedAt, err = time.Parse(timeLayout, created)
		if err != nil {
			logging.StoreDebug("Unparseable created_at %q for %s: %v", created, rec.ID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	logging.StoreDebug("Retrieved %d recent sessions (limit=%d)", len(out), limit)
	return out, nil
}

// CountByPattern returns journaled session counts, most practiced first.
func (h *History) CountByPattern(ctx context.Context) ([]PatternCount, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	rows, err := h.db.QueryContext(ctx,
		`SELECT pattern, COUNT(*) AS n
		 FROM practice_sessions
		 GROUP BY pattern
		 ORDER BY n DESC, pattern ASC`,
	)
	if err != nil {
		logging.StoreError("Failed to count sessions: %v", err)
		return nil, fmt.Errorf("failed to count sessions: %w", err)
	}
	defer rows.Close()

	var out []PatternCount
	for rows.Next() {
		var pc PatternCount
		if err := rows.Scan(&pc.Pattern, &pc.Count); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		out = append(out, pc)
	}
	return out, rows.Err()
}

// Path returns the database path.
func (h *History) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	logging.StoreDebug("Closing session history: %s", h.dbPath)
	return h.db.Close()
}
