// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package eval implements the pyphon tree-walking evaluator.
//
// Statement execution returns a Signal (Normal, Return, Break or Raise)
// that every enclosing construct inspects; no Go panic is used for the
// language's control flow.
package eval

import (
	"context"
	"errors"
	"fmt"

	"nickandperla.net/pyphon/internal/ast"
	"nickandperla.net/pyphon/internal/value"
)

// DefaultRecursionLimit bounds nested function calls.
const DefaultRecursionLimit = 1000

// OutputWriter receives the text printed by the program.
type OutputWriter func(text string) error

// Evaluator interprets pyphon programs. Globals persist across calls.
type Evaluator struct {
	builtins       *value.Namespace
	globals        *value.Namespace
	outputWriter   OutputWriter
	recursionLimit int
	ids            map[value.Value]int64
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithOutputWriter sets the sink for print.
func WithOutputWriter(w OutputWriter) Option {
	return func(e *Evaluator) { e.outputWriter = w }
}

// WithRecursionLimit sets the maximum depth of nested function calls.
func WithRecursionLimit(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.recursionLimit = n
		}
	}
}

// New creates a new Evaluator with the native builtins installed.
func New(opts ...Option) *Evaluator {
	e := &Evaluator{
		builtins:       value.NewNamespace(),
		globals:        value.NewNamespace(),
		recursionLimit: DefaultRecursionLimit,
		ids:            make(map[value.Value]int64),
		outputWriter: func(text string) error {
			fmt.Print(text)
			return nil
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.installBuiltins()
	e.globals.Set("__name__", value.Str("__main__"))
	return e
}

// Builtins returns the namespace consulted after globals.
func (e *Evaluator) Builtins() *value.Namespace {
	return e.builtins
}

// Globals returns the module namespace of the top-level frame.
func (e *Evaluator) Globals() *value.Namespace {
	return e.globals
}

// Reset discards every global binding.
func (e *Evaluator) Reset() {
	e.globals = value.NewNamespace()
	e.globals.Set("__name__", value.Str("__main__"))
}

// Exec runs a program in the top-level frame, whose locals are the globals.
func (e *Evaluator) Exec(ctx context.Context, prog *ast.Suite) error {
	_, err := e.run(ctx, prog, e.globals, false)
	return err
}

// ExecBuiltins runs a program whose top-level bindings become builtins.
// It is used to load the prelude.
func (e *Evaluator) ExecBuiltins(ctx context.Context, prog *ast.Suite) error {
	_, err := e.run(ctx, prog, e.builtins, false)
	return err
}

// Interact runs a program and returns the value of its final statement
// when that statement is an expression; otherwise it returns nil.
func (e *Evaluator) Interact(ctx context.Context, prog *ast.Suite) (value.Value, error) {
	return e.run(ctx, prog, e.globals, true)
}

// Eval evaluates a single expression in the top-level frame.
func (e *Evaluator) Eval(ctx context.Context, x ast.Expr) (value.Value, error) {
	ex := e.execution(ctx)
	f := &Frame{Locals: e.globals, Globals: e.globals}
	v, sig := ex.evaluate(x, f)
	if sig != nil {
		return nil, ex.escaped(*sig)
	}
	return v, nil
}

// Call invokes a callable value with positional arguments.
func (e *Evaluator) Call(ctx context.Context, fn value.Value, args ...value.Value) (value.Value, error) {
	ex := e.execution(ctx)
	v, sig := ex.call(fn, args, 0)
	if sig != nil {
		return nil, ex.escaped(*sig)
	}
	return v, nil
}

func (e *Evaluator) run(ctx context.Context, prog *ast.Suite, ns *value.Namespace, interactive bool) (value.Value, error) {
	ex := e.execution(ctx)
	f := &Frame{Locals: ns, Globals: ns}
	stmts := prog.Stmts
	var last *ast.ExprStmt
	if interactive && len(stmts) > 0 {
		if es, ok := stmts[len(stmts)-1].(*ast.ExprStmt); ok {
			last = es
			stmts = stmts[:len(stmts)-1]
		}
	}
	for _, st := range stmts {
		if sig := ex.exec(st, f); sig.Kind != Normal {
			return nil, ex.escaped(sig)
		}
	}
	if last == nil {
		return nil, nil
	}
	if sig := ex.checkpoint(last.Line); sig != nil {
		return nil, ex.escaped(*sig)
	}
	v, sig := ex.evaluate(last.X, f)
	if sig != nil {
		return nil, ex.escaped(*sig)
	}
	return v, nil
}

func (e *Evaluator) execution(ctx context.Context) *execution {
	if ctx == nil {
		ctx = context.Background()
	}
	return &execution{Evaluator: e, ctx: ctx}
}

// Error is an exception that escaped every handler.
type Error struct {
	Exception value.Value
	Line      int
	cause     error
}

// Kind returns the exception class name, e.g. "ValueError".
func (e *Error) Kind() string {
	if inst, ok := e.Exception.(*value.Instance); ok {
		return inst.Class.Name
	}
	return "Exception"
}

// Message returns the exception's display text.
func (e *Error) Message() string {
	return value.StrOf(e.Exception)
}

func (e *Error) Error() string {
	msg := e.Message()
	if msg == "" {
		return e.Kind()
	}
	return e.Kind() + ": " + msg
}

// Unwrap returns the context error for an interrupted run.
func (e *Error) Unwrap() error {
	return e.cause
}

// IsInterrupt reports whether err is a cancelled run.
func IsInterrupt(err error) bool {
	var ee *Error
	return errors.As(err, &ee) && ee.Kind() == value.Interrupt.Name
}

// escaped converts a signal leaving the top-level frame into an error.
func (x *execution) escaped(sig Signal) error {
	switch sig.Kind {
	case Raise:
		err := &Error{Exception: sig.Value, Line: sig.Line}
		if inst, ok := sig.Value.(*value.Instance); ok && inst.Class == value.Interrupt {
			err.cause = x.ctx.Err()
		}
		return err
	case Return:
		return &Error{Exception: value.NewException(value.RuntimeError, value.Str("'return' outside function")), Line: sig.Line}
	case Break:
		return &Error{Exception: value.NewException(value.RuntimeError, value.Str("'break' outside loop")), Line: sig.Line}
	}
	return nil
}
