package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindSourceFiles(t *testing.T) {
	files, err := findSourceFiles("testdata")
	if err != nil {
		t.Fatalf("findSourceFiles failed: %v", err)
	}
	want := []string{
		filepath.Join("testdata", "bad_indent.py"),
		filepath.Join("testdata", "fib.py"),
		filepath.Join("testdata", "shapes.py"),
	}
	if strings.Join(files, ",") != strings.Join(want, ",") {
		t.Errorf("expected %v, got %v", want, files)
	}
}

func TestReportTestdata(t *testing.T) {
	files, err := findSourceFiles("testdata")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	s := report(&buf, files)
	if s.failed != 0 {
		t.Errorf("unexpected failures:\n%s", buf.String())
	}
	if s.passed != 2 || s.expectedErr != 1 {
		t.Errorf("expected 2 passed and 1 expected error, got %+v", s)
	}
}

func TestReportFailures(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.py")
	accepted := filepath.Join(dir, "accepted.py")
	os.WriteFile(broken, []byte("x = (1,\ny = 2\n)\n)\n"), 0o644)
	os.WriteFile(accepted, []byte(expectMarker+"\nx = 1\n"), 0o644)

	var buf bytes.Buffer
	s := report(&buf, []string{broken, accepted, filepath.Join(dir, "missing.py")})
	if s.failed != 3 {
		t.Errorf("expected 3 failures, got %+v\n%s", s, buf.String())
	}
	if !strings.Contains(buf.String(), "parser accepted it") {
		t.Errorf("expected the accepted marker file to be reported:\n%s", buf.String())
	}
}
