package store

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Current schema version
const SchemaVersion = "2"

// SQLite is a SQLite-backed store.
type SQLite struct {
	mu     sync.Mutex
	db     *sql.DB
	logger *slog.Logger
}

// SQLiteOption configures a SQLite store.
type SQLiteOption func(*SQLite)

// WithLogger sets the logger that receives migration records.
func WithLogger(l *slog.Logger) SQLiteOption {
	return func(s *SQLite) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewSQLite creates a new SQLite store at the given path.
func NewSQLite(path string, opts ...SQLiteOption) (*SQLite, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	// Create tables if not exists
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scripts (
			name TEXT PRIMARY KEY,
			source TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS metadata (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	s := &SQLite{db: db, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(s)
	}

	// Check/set schema version (use unlocked versions since we're in init)
	version, err := s.getMetadataUnlocked("schema_version")
	if err != nil {
		db.Close()
		return nil, err
	}

	if version == "" || version == "1" {
		// New DB or migrate from v1 to v2: add version and run tables
		s.logger.Debug("migrating store", "path", path, "from", version, "to", SchemaVersion)
		if err := s.migrateToV2(); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate to v2: %w", err)
		}
		if err := s.setMetadataUnlocked("schema_version", SchemaVersion); err != nil {
			db.Close()
			return nil, err
		}
	} else if version != SchemaVersion {
		db.Close()
		return nil, fmt.Errorf("unsupported schema version: %s (expected %s)", version, SchemaVersion)
	}

	return s, nil
}

// migrateToV2 creates the version history and run tables. Scripts saved
// by a v1 store become version 1 of their history.
func (s *SQLite) migrateToV2() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS script_versions (
			name TEXT NOT NULL,
			version INTEGER NOT NULL,
			source TEXT NOT NULL,
			ts INTEGER NOT NULL,
			PRIMARY KEY (name, version)
		);
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			script TEXT NOT NULL,
			ok INTEGER NOT NULL,
			output TEXT NOT NULL,
			duration INTEGER NOT NULL,
			ts INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS runs_script ON runs (script, id);
	`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(`
		INSERT OR IGNORE INTO script_versions (name, version, source, ts)
		SELECT name, 1, source, ? FROM scripts
	`, time.Now().UnixNano())
	return err
}

// GetScript retrieves the latest version of a script.
func (s *SQLite) GetScript(name string) (*Script, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		source  string
		version sql.NullInt64
		ts      sql.NullInt64
	)
	err := s.db.QueryRow(`
		SELECT s.source, v.version, v.ts FROM scripts s
		LEFT JOIN script_versions v ON v.name = s.name
		WHERE s.name = ? ORDER BY v.version DESC LIMIT 1
	`, name).Scan(&source, &version, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	sc := &Script{Name: name, Source: source, Version: int(version.Int64)}
	if ts.Valid {
		sc.Updated = time.Unix(0, ts.Int64)
	}
	return sc, nil
}

// PutScript stores a script and appends it to the version history unless
// the source is unchanged.
func (s *SQLite) PutScript(name, source string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO scripts (name, source) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET source = excluded.source
	`, name, source)
	if err != nil {
		return err
	}
	var latest string
	err = tx.QueryRow(`
		SELECT source FROM script_versions WHERE name = ? ORDER BY version DESC LIMIT 1
	`, name).Scan(&latest)
	switch {
	case err == nil && latest == source:
		// Same source as the latest version: nothing new to record.
		return tx.Commit()
	case err != nil && !errors.Is(err, sql.ErrNoRows):
		return err
	}
	_, err = tx.Exec(`
		INSERT INTO script_versions (name, version, source, ts)
		SELECT ?, COALESCE(MAX(version), 0) + 1, ?, ? FROM script_versions WHERE name = ?
	`, name, source, time.Now().UnixNano(), name)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteScript removes a script with its versions and runs.
func (s *SQLite) DeleteScript(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, q := range []string{
		"DELETE FROM scripts WHERE name = ?",
		"DELETE FROM script_versions WHERE name = ?",
		"DELETE FROM runs WHERE script = ?",
	} {
		if _, err := tx.Exec(q, name); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Scripts lists the stored script names.
func (s *SQLite) Scripts() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows, err := s.db.Query("SELECT name FROM scripts ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AddRun appends a run record.
func (s *SQLite) AddRun(r Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Ts.IsZero() {
		r.Ts = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO runs (script, ok, output, duration, ts) VALUES (?, ?, ?, ?, ?)
	`, r.Script, r.OK, r.Output, int64(r.Duration), r.Ts.UnixNano())
	return err
}

// Runs returns the latest runs of a script, newest first.
func (s *SQLite) Runs(script string, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT ok, output, duration, ts FROM runs
		WHERE script = ? ORDER BY id DESC LIMIT ?
	`, script, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var (
			r            Run
			duration, ts int64
		)
		if err := rows.Scan(&r.OK, &r.Output, &duration, &ts); err != nil {
			return nil, err
		}
		r.Script = script
		r.Duration = time.Duration(duration)
		r.Ts = time.Unix(0, ts)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetHistory returns the saved versions of a script, newest first.
func (s *SQLite) GetHistory(name string, limit int) ([]VersionEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.Query(`
		SELECT version, source, ts FROM script_versions
		WHERE name = ? ORDER BY version DESC LIMIT ?
	`, name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []VersionEntry
	for rows.Next() {
		var (
			e  VersionEntry
			ts int64
		)
		if err := rows.Scan(&e.Version, &e.Source, &ts); err != nil {
			return nil, err
		}
		e.Ts = time.Unix(0, ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// GetMetadata retrieves a metadata value by key.
func (s *SQLite) GetMetadata(key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getMetadataUnlocked(key)
}

// getMetadataUnlocked retrieves metadata without locking (caller must hold lock).
func (s *SQLite) getMetadataUnlocked(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetMetadata stores a metadata value by key.
func (s *SQLite) SetMetadata(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setMetadataUnlocked(key, value)
}

// setMetadataUnlocked stores metadata without locking (caller must hold lock).
func (s *SQLite) setMetadataUnlocked(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}
