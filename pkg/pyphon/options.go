// Package pyphon provides the public API for the pyphon interpreter.
package pyphon

import (
	"io"
	"log/slog"

	"nickandperla.net/pyphon/internal/store"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithSQLiteStore configures SQLite persistence for scripts at the given path.
// A store that cannot be opened is reported by Runtime.Err.
func WithSQLiteStore(path string) Option {
	return func(r *Runtime) {
		s, err := store.NewSQLite(path, store.WithLogger(r.logger))
		if err != nil {
			r.err = err
			return
		}
		r.store = s
	}
}

// WithMemoryStore configures an in-memory store (for testing).
func WithMemoryStore() Option {
	return func(r *Runtime) {
		r.store = store.NewMemory()
	}
}

// WithStore sets a custom store.
func WithStore(s Store) Option {
	return func(r *Runtime) {
		r.store = s
	}
}

// WithOutputWriter sets the output writer for print.
func WithOutputWriter(writer func(text string) error) Option {
	return func(r *Runtime) {
		r.outputWriter = writer
	}
}

// WithOutput sets the io.Writer for output.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) {
		r.outputWriter = func(text string) error {
			_, err := io.WriteString(w, text)
			return err
		}
	}
}

// WithPrelude sets a custom prelude source to be loaded on startup.
// If not set, DefaultPrelude is used.
func WithPrelude(source string) Option {
	return func(r *Runtime) {
		r.prelude = source
	}
}

// WithNoPrelude disables loading the prelude.
func WithNoPrelude() Option {
	return func(r *Runtime) {
		r.noPrelude = true
	}
}

// WithRecursionLimit sets the maximum depth of nested function calls.
func WithRecursionLimit(n int) Option {
	return func(r *Runtime) {
		r.recursionLimit = n
	}
}

// WithLogger sets the structured logger. Options that open resources log
// through it, so it should be given first.
func WithLogger(l *slog.Logger) Option {
	return func(r *Runtime) {
		if l != nil {
			r.logger = l
		}
	}
}

// Store interface for custom stores.
type Store = store.Store

// Run is one recorded execution of a saved script.
type Run = store.Run
