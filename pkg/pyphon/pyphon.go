package pyphon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"nickandperla.net/pyphon/internal/eval"
	"nickandperla.net/pyphon/internal/parser"
	"nickandperla.net/pyphon/internal/value"
)

// Mode selects how Run treats its source.
type Mode int

const (
	// Execute parses a program and runs it for its side effects.
	Execute Mode = iota
	// Evaluate parses a single expression and renders its value.
	Evaluate
	// Interact runs a program and renders its trailing expression, if any.
	Interact
)

func (m Mode) String() string {
	switch m {
	case Execute:
		return "execute"
	case Evaluate:
		return "evaluate"
	case Interact:
		return "interact"
	}
	return "unknown"
}

// ErrNoStore is returned by script operations on a Runtime without a store.
var ErrNoStore = errors.New("no script store configured")

// ErrNotFound is returned when a named script does not exist.
var ErrNotFound = errors.New("script not found")

// Runtime is the pyphon interpreter runtime. Globals persist across calls.
// A Runtime must not be used from more than one goroutine at a time.
type Runtime struct {
	evaluator      *eval.Evaluator
	store          Store
	logger         *slog.Logger
	outputWriter   func(text string) error
	capture        *strings.Builder // tees print output while a saved script runs
	prelude        string           // Custom prelude source (if empty, uses DefaultPrelude)
	noPrelude      bool             // If true, skip loading prelude
	recursionLimit int
	err            error
}

// New creates a new pyphon runtime with the given options.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	}

	for _, opt := range opts {
		opt(r)
	}

	evalOpts := []eval.Option{eval.WithOutputWriter(r.write)}
	if r.recursionLimit > 0 {
		evalOpts = append(evalOpts, eval.WithRecursionLimit(r.recursionLimit))
	}
	r.evaluator = eval.New(evalOpts...)

	if !r.noPrelude {
		r.loadPrelude()
	}

	return r
}

// loadPrelude evaluates the prelude into the builtins namespace. A prelude
// saved in the store overrides the configured one.
func (r *Runtime) loadPrelude() {
	prelude, origin := r.prelude, "custom"
	if prelude == "" {
		prelude, origin = DefaultPrelude, "default"
	}
	if r.store != nil {
		if src, err := r.store.GetMetadata(PreludeKey); err == nil && strings.TrimSpace(src) != "" {
			prelude, origin = src, "store"
		}
	}

	start := time.Now()
	prog, err := parser.ParseProgram(prelude)
	if err == nil {
		err = r.evaluator.ExecBuiltins(context.Background(), prog)
	}
	if err != nil {
		r.err = fmt.Errorf("load %s prelude: %w", origin, wrap(err))
		r.logger.Warn("prelude failed to load", "origin", origin, "error", err)
		return
	}
	r.logger.Debug("prelude loaded", "origin", origin, "duration", time.Since(start))
}

// Err reports a failure while opening the store or loading the prelude.
func (r *Runtime) Err() error {
	return r.err
}

func (r *Runtime) write(text string) error {
	if r.capture != nil {
		r.capture.WriteString(text)
	}
	if r.outputWriter != nil {
		return r.outputWriter(text)
	}
	_, err := fmt.Fprint(os.Stdout, text)
	return err
}

// Eval parses src as a single expression and returns the repr of its value.
func (r *Runtime) Eval(ctx context.Context, src string) (string, error) {
	defer r.trace(Evaluate, time.Now())
	x, err := parser.ParseExpression(src)
	if err != nil {
		return "", wrap(err)
	}
	v, err := r.evaluator.Eval(ctx, x)
	if err != nil {
		return "", wrap(err)
	}
	return value.Repr(v), nil
}

// Exec parses src as a program and executes it.
func (r *Runtime) Exec(ctx context.Context, src string) error {
	defer r.trace(Execute, time.Now())
	prog, err := parser.ParseProgram(src)
	if err != nil {
		return wrap(err)
	}
	return wrap(r.evaluator.Exec(ctx, prog))
}

// Interact executes src and returns the repr of its trailing expression
// statement. Nothing is returned for None or when the program does not end
// with an expression.
func (r *Runtime) Interact(ctx context.Context, src string) (string, error) {
	defer r.trace(Interact, time.Now())
	prog, err := parser.ParseProgram(src)
	if err != nil {
		return "", wrap(err)
	}
	v, err := r.evaluator.Interact(ctx, prog)
	if err != nil {
		return "", wrap(err)
	}
	if v == nil || v == value.None {
		return "", nil
	}
	return value.Repr(v), nil
}

// Run executes src in the given mode. On failure the text is the formatted
// error and ok is false.
func (r *Runtime) Run(ctx context.Context, src string, mode Mode) (text string, ok bool) {
	var err error
	switch mode {
	case Evaluate:
		text, err = r.Eval(ctx, src)
	case Interact:
		text, err = r.Interact(ctx, src)
	default:
		err = r.Exec(ctx, src)
	}
	if err != nil {
		return err.Error(), false
	}
	return text, true
}

func (r *Runtime) trace(mode Mode, start time.Time) {
	r.logger.Debug("run finished", "mode", mode, "duration", time.Since(start))
}

// Reset discards every global binding. Builtins and the prelude remain.
func (r *Runtime) Reset() {
	r.evaluator.Reset()
}

// Globals returns the names bound in the top-level namespace.
func (r *Runtime) Globals() []string {
	return r.evaluator.Globals().Names()
}

// Close releases resources.
func (r *Runtime) Close() error {
	if r.store != nil {
		return r.store.Close()
	}
	return nil
}

// SaveScript stores src under name after checking that it parses.
func (r *Runtime) SaveScript(name, src string) error {
	if r.store == nil {
		return ErrNoStore
	}
	if err := CheckSyntax(src); err != nil {
		return err
	}
	if err := r.store.PutScript(name, src); err != nil {
		return fmt.Errorf("save script %s: %w", name, err)
	}
	return nil
}

// LoadScript returns the source saved under name.
func (r *Runtime) LoadScript(name string) (string, error) {
	if r.store == nil {
		return "", ErrNoStore
	}
	s, err := r.store.GetScript(name)
	if err != nil {
		return "", fmt.Errorf("load script %s: %w", name, err)
	}
	if s == nil {
		return "", fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return s.Source, nil
}

// DeleteScript removes a saved script and its run history.
func (r *Runtime) DeleteScript(name string) error {
	if r.store == nil {
		return ErrNoStore
	}
	if err := r.store.DeleteScript(name); err != nil {
		return fmt.Errorf("delete script %s: %w", name, err)
	}
	return nil
}

// Scripts lists the saved script names.
func (r *Runtime) Scripts() ([]string, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	return r.store.Scripts()
}

// RunScript executes a saved script and records the run in its history.
func (r *Runtime) RunScript(ctx context.Context, name string) error {
	src, err := r.LoadScript(name)
	if err != nil {
		return err
	}

	var out strings.Builder
	r.capture = &out
	start := time.Now()
	runErr := r.Exec(ctx, src)
	r.capture = nil

	rec := Run{Script: name, OK: runErr == nil, Output: out.String(), Duration: time.Since(start)}
	if runErr != nil {
		rec.Output += runErr.Error() + "\n"
	}
	if err := r.store.AddRun(rec); err != nil {
		r.logger.Warn("failed to record run", "script", name, "error", err)
	}
	return runErr
}

// History returns the latest runs of a saved script, newest first.
func (r *Runtime) History(name string, limit int) ([]Run, error) {
	if r.store == nil {
		return nil, ErrNoStore
	}
	return r.store.Runs(name, limit)
}

// Error is a syntax or runtime error reported by the runtime.
type Error struct {
	Kind    string // e.g. "SyntaxError", "NameError"
	Message string
	Line    int
	Err     error
}

func (e *Error) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Kind)
	if e.Message != "" {
		sb.WriteString(": ")
		sb.WriteString(e.Message)
	}
	if e.Line > 0 {
		fmt.Fprintf(&sb, " (line %d)", e.Line)
	}
	return sb.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// wrap converts parser and evaluator errors into *Error.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	var se *parser.SyntaxError
	if errors.As(err, &se) {
		return &Error{Kind: "SyntaxError", Message: se.Msg, Line: se.Line, Err: err}
	}
	var ee *eval.Error
	if errors.As(err, &ee) {
		return &Error{Kind: ee.Kind(), Message: ee.Message(), Line: ee.Line, Err: err}
	}
	return err
}

// CheckSyntax parses src as a program without running it.
func CheckSyntax(src string) error {
	_, err := parser.ParseProgram(src)
	return wrap(err)
}

// IsIncomplete reports whether err is a syntax error caused by input that
// ended early, so that more lines could complete it.
func IsIncomplete(err error) bool {
	return parser.IsIncomplete(err)
}

// IsInterrupt reports whether err is a run aborted by its context.
func IsInterrupt(err error) bool {
	return eval.IsInterrupt(err)
}
