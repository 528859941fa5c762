package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pyphon-test.db")
	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("Failed to create SQLite store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

// testScripts exercises the Store contract shared by every implementation.
func testScripts(t *testing.T, s Store) {
	got, err := s.GetScript("missing")
	if err != nil {
		t.Fatalf("GetScript failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for missing script, got %+v", got)
	}

	if err := s.PutScript("b", "print(1)"); err != nil {
		t.Fatalf("PutScript failed: %v", err)
	}
	if err := s.PutScript("a", "x = 1"); err != nil {
		t.Fatalf("PutScript failed: %v", err)
	}

	got, err = s.GetScript("b")
	if err != nil {
		t.Fatalf("GetScript failed: %v", err)
	}
	if got == nil || got.Source != "print(1)" || got.Version != 1 {
		t.Errorf("expected v1 'print(1)', got %+v", got)
	}

	names, err := s.Scripts()
	if err != nil {
		t.Fatalf("Scripts failed: %v", err)
	}
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("expected [a b], got %v", names)
	}

	if err := s.DeleteScript("b"); err != nil {
		t.Fatalf("DeleteScript failed: %v", err)
	}
	got, err = s.GetScript("b")
	if err != nil {
		t.Fatalf("GetScript after delete failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}
}

func testRuns(t *testing.T, s Store) {
	for i, ok := range []bool{true, false, true} {
		err := s.AddRun(Run{Script: "job", OK: ok, Output: string(rune('a' + i)), Duration: time.Duration(i) * time.Millisecond})
		if err != nil {
			t.Fatalf("AddRun failed: %v", err)
		}
	}
	if err := s.AddRun(Run{Script: "other", OK: true}); err != nil {
		t.Fatalf("AddRun failed: %v", err)
	}

	runs, err := s.Runs("job", 2)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].Output != "c" || !runs[0].OK || runs[0].Duration != 2*time.Millisecond {
		t.Errorf("runs[0]: unexpected %+v", runs[0])
	}
	if runs[1].Output != "b" || runs[1].OK {
		t.Errorf("runs[1]: unexpected %+v", runs[1])
	}
	if runs[0].Ts.IsZero() {
		t.Error("expected a timestamp on recorded runs")
	}

	runs, err = s.Runs("job", 0)
	if err != nil {
		t.Fatalf("Runs failed: %v", err)
	}
	if len(runs) != 3 {
		t.Errorf("expected 3 runs without limit, got %d", len(runs))
	}

	if err := s.PutScript("job", "pass"); err != nil {
		t.Fatalf("PutScript failed: %v", err)
	}
	if err := s.DeleteScript("job"); err != nil {
		t.Fatalf("DeleteScript failed: %v", err)
	}
	runs, _ = s.Runs("job", 0)
	if len(runs) != 0 {
		t.Errorf("expected runs removed with the script, got %d", len(runs))
	}
	runs, _ = s.Runs("other", 0)
	if len(runs) != 1 {
		t.Errorf("expected other runs untouched, got %d", len(runs))
	}
}

func testVersioning(t *testing.T, s interface {
	Store
	HistoryStore
}) {
	s.PutScript("X", "first")
	s.PutScript("X", "second")
	// Same source is a no-op
	s.PutScript("X", "second")

	got, _ := s.GetScript("X")
	if got == nil || got.Source != "second" || got.Version != 2 {
		t.Errorf("expected v2 'second', got %+v", got)
	}

	entries, err := s.GetHistory("X", 0)
	if err != nil {
		t.Fatalf("GetHistory failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Version != 2 || entries[0].Source != "second" {
		t.Errorf("entry[0]: expected v2 'second', got v%d '%s'", entries[0].Version, entries[0].Source)
	}
	if entries[1].Version != 1 || entries[1].Source != "first" {
		t.Errorf("entry[1]: expected v1 'first', got v%d '%s'", entries[1].Version, entries[1].Source)
	}
	if entries[0].Ts.IsZero() {
		t.Error("expected non-zero timestamp")
	}

	entries, _ = s.GetHistory("X", 1)
	if len(entries) != 1 || entries[0].Version != 2 {
		t.Fatalf("expected only v2 with limit, got %+v", entries)
	}

	entries, _ = s.GetHistory("nope", 0)
	if len(entries) != 0 {
		t.Errorf("expected no entries for nonexistent, got %v", entries)
	}

	s.DeleteScript("X")
	entries, _ = s.GetHistory("X", 0)
	if len(entries) != 0 {
		t.Errorf("expected 0 after delete, got %d", len(entries))
	}
}

func testMetadata(t *testing.T, s Store) {
	v, err := s.GetMetadata("__prelude__")
	if err != nil {
		t.Fatalf("GetMetadata failed: %v", err)
	}
	if v != "" {
		t.Errorf("expected empty metadata, got %q", v)
	}
	if err := s.SetMetadata("__prelude__", "def f():\n  pass\n"); err != nil {
		t.Fatalf("SetMetadata failed: %v", err)
	}
	v, _ = s.GetMetadata("__prelude__")
	if v != "def f():\n  pass\n" {
		t.Errorf("unexpected metadata %q", v)
	}
}

func TestMemoryStore(t *testing.T) {
	t.Run("scripts", func(t *testing.T) { testScripts(t, NewMemory()) })
	t.Run("runs", func(t *testing.T) { testRuns(t, NewMemory()) })
	t.Run("versioning", func(t *testing.T) { testVersioning(t, NewMemory()) })
	t.Run("metadata", func(t *testing.T) { testMetadata(t, NewMemory()) })
}

func TestSQLiteStore(t *testing.T) {
	t.Run("scripts", func(t *testing.T) {
		s, _ := newSQLite(t)
		testScripts(t, s)
	})
	t.Run("runs", func(t *testing.T) {
		s, _ := newSQLite(t)
		testRuns(t, s)
	})
	t.Run("versioning", func(t *testing.T) {
		s, _ := newSQLite(t)
		testVersioning(t, s)
	})
	t.Run("metadata", func(t *testing.T) {
		s, _ := newSQLite(t)
		testMetadata(t, s)
	})
}

func TestSQLitePersistence(t *testing.T) {
	s, path := newSQLite(t)
	if err := s.PutScript("hello", "print('world')"); err != nil {
		t.Fatalf("PutScript failed: %v", err)
	}
	s.Close()

	s2, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("Failed to reopen SQLite store: %v", err)
	}
	defer s2.Close()

	got, err := s2.GetScript("hello")
	if err != nil {
		t.Fatalf("GetScript after reopen failed: %v", err)
	}
	if got == nil || got.Source != "print('world')" {
		t.Errorf("expected source after reopen, got %+v", got)
	}
	version, _ := s2.GetMetadata("schema_version")
	if version != SchemaVersion {
		t.Errorf("expected schema version %s, got %q", SchemaVersion, version)
	}
}

func TestSQLiteMigrationV1toV2(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pyphon-migrate-test.db")

	// Create a v1 database manually
	db, err := sql.Open(driverName, path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE scripts (name TEXT PRIMARY KEY, source TEXT NOT NULL);
		CREATE TABLE metadata (key TEXT PRIMARY KEY, value TEXT NOT NULL);
		INSERT INTO metadata (key, value) VALUES ('schema_version', '1');
		INSERT INTO scripts (name, source) VALUES ('old', 'x = 1');
	`)
	db.Close()
	if err != nil {
		t.Fatalf("seed v1 database: %v", err)
	}

	s, err := NewSQLite(path)
	if err != nil {
		t.Fatalf("NewSQLite after migration: %v", err)
	}
	defer s.Close()

	got, err := s.GetScript("old")
	if err != nil {
		t.Fatalf("GetScript after migration: %v", err)
	}
	if got == nil || got.Source != "x = 1" || got.Version != 1 {
		t.Errorf("expected v1 'x = 1' after migration, got %+v", got)
	}

	s.PutScript("old", "x = 2")
	entries, _ := s.GetHistory("old", 0)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries after update, got %d", len(entries))
	}
}

func TestSQLiteRejectsNewerSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pyphon-future.db")
	db, err := sql.Open(driverName, path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	_, err = db.Exec(`
		CREATE TABLE metadata (key TEXT PRIMARY KEY, value TEXT NOT NULL);
		INSERT INTO metadata (key, value) VALUES ('schema_version', '99');
	`)
	db.Close()
	if err != nil {
		t.Fatalf("seed database: %v", err)
	}

	if _, err := NewSQLite(path); err == nil {
		t.Fatal("expected an error for an unsupported schema version")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("database file should be left in place: %v", err)
	}
}
