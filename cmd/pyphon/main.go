// Command pyphon is the pyphon interpreter CLI.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"golang.org/x/term"

	"nickandperla.net/pyphon/internal/config"
	"nickandperla.net/pyphon/internal/transcript"
	"nickandperla.net/pyphon/pkg/pyphon"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin *os.File, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("pyphon", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		evalStr    = fs.String("e", "", "Evaluate pyphon source and print its value")
		file       = fs.String("f", "", "Execute pyphon file")
		configPath = fs.String("config", config.DefaultPath(), "Configuration file")
		dbPath     = fs.String("db", "", "SQLite database path for saved scripts")
		noPrelude  = fs.Bool("no-prelude", false, "Disable the prelude")
		recursion  = fs.Int("recursion-limit", 0, "Maximum call depth")
		logLevel   = fs.String("log-level", "", "Log level: debug, info, warn or error")
		check      = fs.Bool("check", false, "Check the transcript files given as arguments")
		save       = fs.String("save", "", "Save the -f file (or stdin) as a named script")
		runName    = fs.String("run", "", "Run a saved script")
		list       = fs.Bool("list", false, "List saved scripts")
		history    = fs.String("history", "", "Show the run history of a saved script")
		del        = fs.String("delete", "", "Delete a saved script")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *dbPath != "" {
		cfg.Database = *dbPath
	}
	if *recursion > 0 {
		cfg.RecursionLimit = *recursion
	}
	logger := cfg.Logger(stderr)

	opts, err := runtimeOptions(cfg, logger, *noPrelude)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if *check {
		return checkTranscripts(ctx, fs.Args(), stdout, stderr, opts)
	}

	storeOpt := pyphon.WithMemoryStore()
	if cfg.Database != "" {
		storeOpt = pyphon.WithSQLiteStore(cfg.Database)
	}
	rt := pyphon.New(append(opts, storeOpt, pyphon.WithOutput(stdout))...)
	defer rt.Close()
	if err := rt.Err(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	switch {
	case *list:
		names, err := rt.Scripts()
		if err != nil {
			return fail(stderr, err)
		}
		for _, name := range names {
			fmt.Fprintln(stdout, name)
		}
		return 0

	case *history != "":
		runs, err := rt.History(*history, 20)
		if err != nil {
			return fail(stderr, err)
		}
		for _, r := range runs {
			status := "ok"
			if !r.OK {
				status = "failed"
			}
			fmt.Fprintf(stdout, "%s  %-6s  %v\n", r.Ts.Format("2006-01-02 15:04:05"), status, r.Duration)
		}
		return 0

	case *del != "":
		return fail(stderr, rt.DeleteScript(*del))

	case *save != "":
		src, err := readSource(*file, stdin)
		if err != nil {
			return fail(stderr, err)
		}
		return fail(stderr, rt.SaveScript(*save, src))

	case *runName != "":
		return fail(stderr, rt.RunScript(ctx, *runName))
	}

	// -f runs first so that -e can inspect what the file defined.
	if *file != "" {
		src, err := os.ReadFile(*file)
		if err != nil {
			return fail(stderr, err)
		}
		if err := rt.Exec(ctx, string(src)); err != nil {
			return fail(stderr, err)
		}
	}
	if *evalStr != "" {
		text, ok := rt.Run(ctx, *evalStr, pyphon.Interact)
		if !ok {
			fmt.Fprintf(stderr, "%s\n", text)
			return 1
		}
		if text != "" {
			fmt.Fprintln(stdout, text)
		}
	}
	if *file != "" || *evalStr != "" {
		return 0
	}

	if !term.IsTerminal(int(stdin.Fd())) {
		// Piped input runs as a single program.
		src, err := io.ReadAll(stdin)
		if err != nil {
			return fail(stderr, fmt.Errorf("read stdin: %w", err))
		}
		return fail(stderr, rt.Exec(ctx, string(src)))
	}

	stop()
	if err := runREPL(rt, cfg.HistoryFile, stdout, stderr, logger); err != nil {
		return fail(stderr, err)
	}
	return 0
}

// runtimeOptions returns the interpreter options shared by the shell and the
// transcript checker. The script store is chosen by the caller.
func runtimeOptions(cfg *config.Config, logger *slog.Logger, noPrelude bool) ([]pyphon.Option, error) {
	opts := []pyphon.Option{pyphon.WithLogger(logger)}
	if cfg.RecursionLimit > 0 {
		opts = append(opts, pyphon.WithRecursionLimit(cfg.RecursionLimit))
	}
	switch {
	case noPrelude:
		opts = append(opts, pyphon.WithNoPrelude())
	case cfg.Prelude != "":
		src, err := os.ReadFile(cfg.Prelude)
		if err != nil {
			return nil, fmt.Errorf("read prelude: %w", err)
		}
		opts = append(opts, pyphon.WithPrelude(string(src)))
	}
	return opts, nil
}

func readSource(path string, stdin io.Reader) (string, error) {
	if path == "" {
		src, err := io.ReadAll(stdin)
		return string(src), err
	}
	src, err := os.ReadFile(path)
	return string(src), err
}

func checkTranscripts(ctx context.Context, args []string, stdout, stderr io.Writer, opts []pyphon.Option) int {
	paths, err := expandPaths(args)
	if err != nil {
		return fail(stderr, err)
	}
	if len(paths) == 0 {
		fmt.Fprintln(stderr, "No transcript files found")
		return 1
	}

	results, err := transcript.CheckFiles(ctx, paths, runtime.GOMAXPROCS(0), opts...)
	if err != nil {
		return fail(stderr, err)
	}

	passed, failed := 0, 0
	for _, res := range results {
		if res.OK() {
			passed++
			fmt.Fprintf(stdout, "OK   %s (%d examples)\n", res.Name, res.Passed)
			continue
		}
		failed++
		fmt.Fprintf(stdout, "FAIL %s\n", res.Name)
		for _, f := range res.Failures {
			f.Report(stdout, res.Name)
		}
	}

	fmt.Fprintf(stdout, "\n--- Summary ---\n")
	fmt.Fprintf(stdout, "Passed: %d\n", passed)
	fmt.Fprintf(stdout, "Failed: %d\n", failed)
	fmt.Fprintf(stdout, "Total:  %d\n", len(results))
	if failed > 0 {
		return 1
	}
	return 0
}

// expandPaths replaces directories by the .txt transcripts beneath them.
func expandPaths(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && filepath.Ext(path) == ".txt" {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// fail prints err and returns the exit status for it.
func fail(stderr io.Writer, err error) int {
	if err == nil {
		return 0
	}
	if pyphon.IsInterrupt(err) || errors.Is(err, context.Canceled) {
		fmt.Fprintln(stderr, "Interrupted")
		return 130
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return 1
}
