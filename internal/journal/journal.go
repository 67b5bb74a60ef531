// Package journal is the merge-report ledger, backed by SQLite.
//
// Every merge — dry run or real, successful or not — can be recorded so
// hosts can answer "what happened to this spec and when". The journal is
// bookkeeping only: it never participates in merge decisions, and the
// server keeps working when it is unavailable.
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Config holds journal configuration.
type Config struct {
	DataDir string
}

// DefaultConfig stores the journal database under ~/.specmerge.
func DefaultConfig() Config {
	home, _ := os.UserHomeDir()
	return Config{DataDir: filepath.Join(home, ".specmerge")}
}

// Entry is one recorded merge report.
type Entry struct {
	ID        string `json:"id"`
	Change    string `json:"change"`
	Domain    string `json:"domain"`
	Added     int    `json:"added"`
	Modified  int    `json:"modified"`
	Removed   int    `json:"removed"`
	Conflicts int    `json:"conflicts"`
	Diverged  bool   `json:"diverged"`
	Forced    bool   `json:"forced"`
	DryRun    bool   `json:"dry_run"`
	Success   bool   `json:"success"`
	Detail    string `json:"detail,omitempty"` // JSON-encoded full report
	CreatedAt string `json:"created_at"`
}

// Store is the SQLite-backed journal.
type Store struct {
	db *sql.DB
}

// New opens (or creates) the journal database with WAL mode and runs
// migrations.
func New(cfg Config) (*Store, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return nil, fmt.Errorf("journal: create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", filepath.Join(cfg.DataDir, "journal.db"))
	if err != nil {
		return nil, fmt.Errorf("journal: open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return nil, fmt.Errorf("journal: pragma %q: %w", p, err)
		}
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("journal: migration: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS merge_reports (
			id         TEXT PRIMARY KEY,
			change_id  TEXT NOT NULL,
			domain     TEXT NOT NULL,
			added      INTEGER NOT NULL,
			modified   INTEGER NOT NULL,
			removed    INTEGER NOT NULL,
			conflicts  INTEGER NOT NULL,
			diverged   INTEGER NOT NULL,
			forced     INTEGER NOT NULL,
			dry_run    INTEGER NOT NULL,
			success    INTEGER NOT NULL,
			detail     TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
		CREATE INDEX IF NOT EXISTS idx_merge_reports_domain
			ON merge_reports(domain, created_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}
	return nil
}

// Record inserts a new entry, assigning its id and timestamp.
func (s *Store) Record(e *Entry) error {
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC().Format(time.RFC3339)

	_, err := s.db.Exec(`
		INSERT INTO merge_reports
			(id, change_id, domain, added, modified, removed, conflicts,
			 diverged, forced, dry_run, success, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Change, e.Domain, e.Added, e.Modified, e.Removed, e.Conflicts,
		boolInt(e.Diverged), boolInt(e.Forced), boolInt(e.DryRun), boolInt(e.Success),
		e.Detail, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("journal: record merge report: %w", err)
	}
	return nil
}

// Recent returns the newest entries, optionally filtered by domain.
// limit <= 0 defaults to 20.
func (s *Store) Recent(domain string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, change_id, domain, added, modified, removed, conflicts,
		       diverged, forced, dry_run, success, detail, created_at
		FROM merge_reports`
	args := []any{}
	if domain != "" {
		query += " WHERE domain = ?"
		args = append(args, domain)
	}
	query += " ORDER BY created_at DESC, id LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("journal: query merge reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []Entry
	for rows.Next() {
		var e Entry
		var diverged, forced, dryRun, success int
		if err := rows.Scan(
			&e.ID, &e.Change, &e.Domain, &e.Added, &e.Modified, &e.Removed,
			&e.Conflicts, &diverged, &forced, &dryRun, &success,
			&e.Detail, &e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("journal: scan merge report: %w", err)
		}
		e.Diverged = diverged != 0
		e.Forced = forced != 0
		e.DryRun = dryRun != 0
		e.Success = success != 0
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal: iterate merge reports: %w", err)
	}
	return result, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
