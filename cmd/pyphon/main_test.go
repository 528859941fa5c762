package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCLI invokes the CLI in-process with stdin read from a file holding input.
func runCLI(t *testing.T, input string, args ...string) (string, string, int) {
	t.Helper()
	dir := t.TempDir()
	stdinPath := filepath.Join(dir, "stdin")
	if err := os.WriteFile(stdinPath, []byte(input), 0o644); err != nil {
		t.Fatalf("failed to write stdin: %v", err)
	}
	stdin, err := os.Open(stdinPath)
	if err != nil {
		t.Fatalf("failed to open stdin: %v", err)
	}
	defer stdin.Close()

	var stdout, stderr bytes.Buffer
	args = append([]string{"-config", filepath.Join(dir, "missing.yml")}, args...)
	code := run(args, stdin, &stdout, &stderr)
	return stdout.String(), stderr.String(), code
}

func TestEvalFlag(t *testing.T) {
	out, errOut, code := runCLI(t, "", "-e", "1 + 2")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "3\n" {
		t.Errorf("expected 3, got %q", out)
	}
}

func TestEvalFlagError(t *testing.T) {
	_, errOut, code := runCLI(t, "", "-e", "1 / 0")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut, "ZeroDivisionError: division by zero") {
		t.Errorf("unexpected stderr %q", errOut)
	}
}

func TestFileThenEval(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prog.py")
	src := "def greet(name):\n    return 'hi ' + name\nprint('loaded')\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}
	out, errOut, code := runCLI(t, "", "-f", path, "-e", "greet('bob')")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "loaded\n'hi bob'\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestPipedInput(t *testing.T) {
	out, errOut, code := runCLI(t, "for i in range(3):\n    print(i * i)\n")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "0\n1\n4\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestPipedSyntaxError(t *testing.T) {
	_, errOut, code := runCLI(t, "x = (1,\n")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(errOut, "SyntaxError") {
		t.Errorf("unexpected stderr %q", errOut)
	}
}

func TestSavedScriptWorkflow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "scripts.db")

	if _, errOut, code := runCLI(t, "print('SAVED_SCRIPT_RAN')\n", "-db", db, "-save", "hello"); code != 0 {
		t.Fatalf("save: exit %d: %s", code, errOut)
	}

	out, errOut, code := runCLI(t, "", "-db", db, "-list")
	if code != 0 {
		t.Fatalf("list: exit %d: %s", code, errOut)
	}
	if out != "hello\n" {
		t.Errorf("expected the saved script listed, got %q", out)
	}

	out, errOut, code = runCLI(t, "", "-db", db, "-run", "hello")
	if code != 0 {
		t.Fatalf("run: exit %d: %s", code, errOut)
	}
	if !strings.Contains(out, "SAVED_SCRIPT_RAN") {
		t.Errorf("expected script output, got %q", out)
	}

	out, _, code = runCLI(t, "", "-db", db, "-history", "hello")
	if code != 0 || !strings.Contains(out, "ok") {
		t.Errorf("expected one ok run in history, got %q (exit %d)", out, code)
	}

	if _, errOut, code := runCLI(t, "", "-db", db, "-delete", "hello"); code != 0 {
		t.Fatalf("delete: exit %d: %s", code, errOut)
	}
	out, _, _ = runCLI(t, "", "-db", db, "-list")
	if out != "" {
		t.Errorf("expected no scripts after delete, got %q", out)
	}
}

func TestSaveRejectsSyntaxError(t *testing.T) {
	db := filepath.Join(t.TempDir(), "scripts.db")
	_, errOut, code := runCLI(t, "def f(:\n", "-db", db, "-save", "broken")
	if code != 1 || !strings.Contains(errOut, "SyntaxError") {
		t.Errorf("expected a syntax error, got exit %d: %q", code, errOut)
	}
}

func TestRunMissingScript(t *testing.T) {
	_, errOut, code := runCLI(t, "", "-run", "nope")
	if code != 1 || !strings.Contains(errOut, "script not found") {
		t.Errorf("expected not found, got exit %d: %q", code, errOut)
	}
}

func TestCheckTranscripts(t *testing.T) {
	dir := t.TempDir()
	good := ">>> x = 2\n>>> x * 21\n42\n"
	bad := ">>> 'a'\n'b'\n"
	if err := os.WriteFile(filepath.Join(dir, "good.txt"), []byte(good), 0o644); err != nil {
		t.Fatal(err)
	}

	out, errOut, code := runCLI(t, "", "-check", dir)
	if code != 0 {
		t.Fatalf("exit %d: %s%s", code, out, errOut)
	}
	if !strings.Contains(out, "OK   ") || !strings.Contains(out, "Passed: 1") {
		t.Errorf("unexpected output %q", out)
	}

	if err := os.WriteFile(filepath.Join(dir, "bad.txt"), []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	out, _, code = runCLI(t, "", "-check", dir)
	if code != 1 {
		t.Errorf("expected exit 1 with a failing transcript, got %d", code)
	}
	if !strings.Contains(out, "FAIL ") || !strings.Contains(out, "Failed: 1") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestNeedsMore(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		want  bool
	}{
		{"simple statement", []string{"x = 1"}, false},
		{"open header", []string{"def f():"}, true},
		{"growing suite", []string{"def f():", "    return 1"}, true},
		{"blank ends suite", []string{"def f():", "    return 1", ""}, false},
		{"open bracket", []string{"x = [1,"}, true},
		{"one-line compound", []string{"if True: print(1)"}, false},
		{"real error", []string{"x = )"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := strings.Join(tt.lines, "\n") + "\n"
			if got := needsMore(tt.lines, src); got != tt.want {
				t.Errorf("needsMore(%q) = %v, want %v", src, got, tt.want)
			}
		})
	}
}
