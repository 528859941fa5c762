// pyphon-check: Syntax checker for .py files.
//
// Parses each file with the pyphon parser without running it. A file whose
// first line is "# EXPECT: SyntaxError" is expected to be rejected.
//
// Usage:
//
//	pyphon-check FILE [FILE...]
//	pyphon-check --dir DIR
package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"nickandperla.net/pyphon/pkg/pyphon"
)

const expectMarker = "# EXPECT: SyntaxError"

// checkResult holds the outcome of checking a single file.
type checkResult struct {
	path         string
	err          error
	expectsError bool
}

// checkFile parses a file and returns its syntax error, if any.
func checkFile(path string) checkResult {
	content, err := os.ReadFile(path)
	if err != nil {
		return checkResult{path: path, err: fmt.Errorf("read error: %w", err)}
	}
	src := string(content)
	first, _, _ := strings.Cut(src, "\n")
	return checkResult{
		path:         path,
		err:          pyphon.CheckSyntax(src),
		expectsError: strings.TrimSpace(first) == expectMarker,
	}
}

// findSourceFiles recursively finds all .py files under dir.
func findSourceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".py") {
			files = append(files, path)
		}
		return nil
	})
	sort.Strings(files)
	return files, err
}

// summary counts the outcomes of a check run.
type summary struct {
	passed, expectedErr, failed int
}

func report(w io.Writer, files []string) summary {
	var s summary
	for _, f := range files {
		result := checkFile(f)
		switch {
		case result.expectsError && result.err != nil:
			s.expectedErr++
			fmt.Fprintf(w, "OK   %s (expected error: %v)\n", f, result.err)
		case result.expectsError:
			s.failed++
			fmt.Fprintf(w, "FAIL %s\n     expected a syntax error, parser accepted it\n", f)
		case result.err != nil:
			s.failed++
			fmt.Fprintf(w, "FAIL %s\n     %v\n", f, result.err)
		default:
			s.passed++
			fmt.Fprintf(w, "OK   %s\n", f)
		}
	}

	fmt.Fprintf(w, "\n--- Summary ---\n")
	fmt.Fprintf(w, "Passed:          %d\n", s.passed)
	fmt.Fprintf(w, "Expected errors: %d\n", s.expectedErr)
	fmt.Fprintf(w, "Failed:          %d\n", s.failed)
	fmt.Fprintf(w, "Total:           %d\n", len(files))
	return s
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: pyphon-check [--dir DIR] FILE [FILE...]")
		os.Exit(1)
	}

	var files []string
	for i := 1; i < len(os.Args); i++ {
		if os.Args[i] == "--dir" {
			if i+1 >= len(os.Args) {
				fmt.Fprintln(os.Stderr, "Error: --dir requires an argument")
				os.Exit(1)
			}
			i++
			found, err := findSourceFiles(os.Args[i])
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error scanning directory %s: %v\n", os.Args[i], err)
				os.Exit(1)
			}
			files = append(files, found...)
		} else {
			files = append(files, os.Args[i])
		}
	}

	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "No .py files found")
		os.Exit(1)
	}

	if s := report(os.Stdout, files); s.failed > 0 {
		os.Exit(1)
	}
}
