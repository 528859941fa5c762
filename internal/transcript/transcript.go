// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package transcript checks interactive session transcripts.
//
// A transcript is a text file in doctest form: a line starting with ">>> "
// begins an example, lines starting with "... " continue it, and the lines
// that follow up to the next example or blank line are the expected output.
// Lines starting with "#" between examples are comments. All examples of a
// file run in order on one runtime, so bindings carry over.
package transcript

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"nickandperla.net/pyphon/pkg/pyphon"
)

// Example is one interactive input and the output it should produce.
type Example struct {
	Source string
	Want   string
	Line   int // line of the ">>>" prompt
}

// Transcript is a parsed transcript file.
type Transcript struct {
	Name     string
	Examples []Example
}

// Failure is an example whose output differed from the expected text.
type Failure struct {
	Example
	Got string
}

// Result summarizes checking one transcript.
type Result struct {
	Name     string
	Passed   int
	Failures []Failure
}

// OK reports whether every example passed.
func (r *Result) OK() bool {
	return len(r.Failures) == 0
}

const (
	prompt       = ">>>"
	continuation = "..."
)

// Parse reads a transcript.
func Parse(name string, r io.Reader) (*Transcript, error) {
	t := &Transcript{Name: name}
	sc := bufio.NewScanner(r)
	var (
		cur     *Example
		src     []string
		want    []string
		inWant  bool
		lineNum int
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Source = strings.Join(src, "\n") + "\n"
		cur.Want = strings.Join(want, "\n")
		t.Examples = append(t.Examples, *cur)
		cur, src, want, inWant = nil, nil, nil, false
	}
	for sc.Scan() {
		lineNum++
		line := strings.TrimRight(sc.Text(), " \t\r")
		switch {
		case strings.HasPrefix(line, prompt):
			flush()
			cur = &Example{Line: lineNum}
			src = []string{strip(line, prompt)}
		case strings.HasPrefix(line, continuation) && cur != nil && !inWant:
			src = append(src, strip(line, continuation))
		case line == "":
			flush()
		case cur == nil:
			if !strings.HasPrefix(line, "#") {
				return nil, fmt.Errorf("%s:%d: text outside of an example", name, lineNum)
			}
		default:
			inWant = true
			want = append(want, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	flush()
	return t, nil
}

// strip removes a prompt and the single space that follows it.
func strip(line, p string) string {
	rest := strings.TrimPrefix(line, p)
	return strings.TrimPrefix(rest, " ")
}

// ParseFile reads the transcript at path.
func ParseFile(path string) (*Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(path, f)
}

// Check runs every example on a fresh runtime built with opts. The output
// of an example is what it printed followed by the repr of its value, or
// by the formatted error when it failed.
func (t *Transcript) Check(ctx context.Context, opts ...pyphon.Option) (*Result, error) {
	var out bytes.Buffer
	opts = append(opts[:len(opts):len(opts)], pyphon.WithOutput(&out))
	rt := pyphon.New(opts...)
	defer rt.Close()
	if err := rt.Err(); err != nil {
		return nil, err
	}

	res := &Result{Name: t.Name}
	for _, ex := range t.Examples {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		out.Reset()
		text, _ := rt.Run(ctx, ex.Source, pyphon.Interact)
		got := out.String()
		if text != "" {
			got += text + "\n"
		}
		got = strings.TrimRight(got, "\n")
		if got == ex.Want {
			res.Passed++
			continue
		}
		res.Failures = append(res.Failures, Failure{Example: ex, Got: got})
	}
	return res, nil
}

// CheckFiles parses and checks transcripts concurrently, at most limit at a
// time (unlimited when limit <= 0). Results are in the order of paths.
func CheckFiles(ctx context.Context, paths []string, limit int, opts ...pyphon.Option) ([]*Result, error) {
	results := make([]*Result, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			t, err := ParseFile(path)
			if err != nil {
				return err
			}
			res, err := t.Check(ctx, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Report writes a diff-style description of a failure.
func (f *Failure) Report(w io.Writer, name string) {
	fmt.Fprintf(w, "%s:%d: example failed\n", name, f.Line)
	for _, line := range strings.Split(strings.TrimRight(f.Source, "\n"), "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
	fmt.Fprintf(w, "  want:\n%s\n  got:\n%s\n", indent(f.Want), indent(f.Got))
}

func indent(s string) string {
	if s == "" {
		return "    (nothing)"
	}
	return "    " + strings.ReplaceAll(s, "\n", "\n    ")
}
