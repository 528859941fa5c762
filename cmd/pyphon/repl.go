package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"

	"nickandperla.net/pyphon/pkg/pyphon"
)

const (
	primaryPrompt   = ">>> "
	secondaryPrompt = "... "
)

func printBanner(w io.Writer) {
	fmt.Fprintln(w, "pyphon REPL (Ctrl+D to exit, Ctrl+C to cancel input)")
}

// runREPL reads statements from the terminal until EOF. Line history is
// kept in historyPath when it is set.
func runREPL(rt *pyphon.Runtime, historyPath string, stdout, stderr io.Writer, logger *slog.Logger) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	line.SetMultiLineMode(true)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			if _, err := line.ReadHistory(f); err != nil {
				logger.Warn("failed to read history", "path", historyPath, "error", err)
			}
			f.Close()
		}
		defer saveHistory(line, historyPath, logger)
	}

	printBanner(stdout)

	var pending []string
	for {
		prompt := primaryPrompt
		if len(pending) > 0 {
			prompt = secondaryPrompt
		}
		text, err := line.Prompt(prompt)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			pending = pending[:0]
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(stdout)
			return nil
		case err != nil:
			return err
		}
		if strings.TrimSpace(text) != "" {
			line.AppendHistory(text)
		}

		pending = append(pending, text)
		src := strings.Join(pending, "\n") + "\n"
		if strings.TrimSpace(src) == "" {
			pending = pending[:0]
			continue
		}
		if needsMore(pending, src) {
			continue
		}
		pending = pending[:0]
		evalInput(rt, src, stdout, stderr)
	}
}

// needsMore reports whether the buffered lines form an unfinished entry.
// Input that cannot parse yet waits for more lines, and a compound
// statement waits for a blank line so that its suite can keep growing.
func needsMore(lines []string, src string) bool {
	if err := pyphon.CheckSyntax(src); err != nil {
		return pyphon.IsIncomplete(err)
	}
	first := strings.TrimSpace(lines[0])
	last := lines[len(lines)-1]
	return strings.HasSuffix(first, ":") && strings.TrimSpace(last) != ""
}

// evalInput runs one REPL entry. Ctrl+C while it runs cancels the entry.
func evalInput(rt *pyphon.Runtime, src string, stdout, stderr io.Writer) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	text, err := rt.Interact(ctx, src)
	switch {
	case pyphon.IsInterrupt(err):
		fmt.Fprintln(stderr, "Interrupted")
	case err != nil:
		fmt.Fprintln(stderr, err)
	case text != "":
		fmt.Fprintln(stdout, text)
	}
}

func saveHistory(line *liner.State, path string, logger *slog.Logger) {
	f, err := os.Create(path)
	if err != nil {
		logger.Warn("failed to save history", "path", path, "error", err)
		return
	}
	defer f.Close()
	if _, err := line.WriteHistory(f); err != nil {
		logger.Warn("failed to save history", "path", path, "error", err)
	}
}
