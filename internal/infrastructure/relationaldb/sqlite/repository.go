// Package sqlite provides a SQLite implementation of the fact, snapshot,
// watch-list, ownership, charter capital and audit stores.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/dchaplinsky/edrdr/internal/domain/entities"
	"github.com/dchaplinsky/edrdr/internal/infrastructure/config"
)

// timeNow returns the current time (can be mocked in tests).
var timeNow = time.Now

// Repository implements the storage ports using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- Registry publications
	CREATE TABLE IF NOT EXISTS revisions (
		id INTEGER PRIMARY KEY,
		dataset_id TEXT NOT NULL DEFAULT '',
		created TIMESTAMP NOT NULL,
		imported INTEGER NOT NULL DEFAULT 0,
		ignored INTEGER NOT NULL DEFAULT 0,
		url TEXT NOT NULL DEFAULT ''
	);

	-- Company attribute versions, one row per content hash
	CREATE TABLE IF NOT EXISTS company_records (
		company_id INTEGER NOT NULL,
		hash TEXT NOT NULL,
		name TEXT NOT NULL,
		short_name TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		profile TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		PRIMARY KEY (company_id, hash)
	);
	CREATE TABLE IF NOT EXISTS company_record_revisions (
		company_id INTEGER NOT NULL,
		hash TEXT NOT NULL,
		revision_id INTEGER NOT NULL,
		PRIMARY KEY (company_id, hash, revision_id),
		FOREIGN KEY (company_id, hash) REFERENCES company_records(company_id, hash) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_company_record_revisions_rev ON company_record_revisions(revision_id);

	-- Person versions attached to companies
	CREATE TABLE IF NOT EXISTS persons (
		company_id INTEGER NOT NULL,
		hash TEXT NOT NULL,
		role TEXT NOT NULL,
		names TEXT NOT NULL DEFAULT '[]',
		addresses TEXT NOT NULL DEFAULT '[]',
		countries TEXT NOT NULL DEFAULT '[]',
		raw_record TEXT NOT NULL DEFAULT '',
		share TEXT NOT NULL DEFAULT '',
		bo_is_absent INTEGER NOT NULL DEFAULT 0,
		was_dereferenced INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (company_id, hash)
	);
	CREATE TABLE IF NOT EXISTS person_revisions (
		company_id INTEGER NOT NULL,
		hash TEXT NOT NULL,
		revision_id INTEGER NOT NULL,
		PRIMARY KEY (company_id, hash, revision_id),
		FOREIGN KEY (company_id, hash) REFERENCES persons(company_id, hash) ON DELETE CASCADE
	);
	CREATE INDEX IF NOT EXISTS idx_person_revisions_rev ON person_revisions(revision_id);

	-- Derived snapshot flags, one record per (company, revision)
	CREATE TABLE IF NOT EXISTS snapshots (
		company_id INTEGER NOT NULL,
		revision_id INTEGER NOT NULL,
		computed_at TIMESTAMP NOT NULL,
		data TEXT NOT NULL,
		PRIMARY KEY (company_id, revision_id)
	);
	CREATE INDEX IF NOT EXISTS idx_snapshots_revision ON snapshots(revision_id);

	-- Politically exposed persons associated with companies
	CREATE TABLE IF NOT EXISTS watch_list (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		company_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		years TEXT NOT NULL DEFAULT '[]',
		url TEXT NOT NULL DEFAULT '',
		from_declaration INTEGER NOT NULL DEFAULT 0,
		role TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_watch_list_company ON watch_list(company_id);

	-- Company owned by company
	CREATE TABLE IF NOT EXISTS ownership_links (
		company_id INTEGER NOT NULL,
		owner_id INTEGER NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (company_id, owner_id)
	);

	-- Declared charter capital per company
	CREATE TABLE IF NOT EXISTS charter_capital (
		company_id INTEGER PRIMARY KEY,
		amount REAL NOT NULL
	);

	-- Audit log (tracks all actions)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		company_id INTEGER,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_company ON audit_log(company_id);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// inTx runs fn inside a transaction, rolling back on error.
func (r *Repository) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("marshaling list: %w", err)
	}
	return string(data), nil
}

func decodeList(data string) ([]string, error) {
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, fmt.Errorf("unmarshaling list: %w", err)
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}

// parseRevisionSet parses a group_concat of revision ids.
func parseRevisionSet(s string) ([]entities.RevisionID, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]entities.RevisionID, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parsing revision set %q: %w", s, err)
		}
		out = append(out, entities.RevisionID(id))
	}
	slices.Sort(out)
	return out, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
