// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"context"

	"nickandperla.net/pyphon/internal/ast"
	"nickandperla.net/pyphon/internal/value"
)

// SignalKind is how a statement finished.
type SignalKind int

const (
	Normal SignalKind = iota
	Return
	Break
	Raise
)

func (k SignalKind) String() string {
	switch k {
	case Normal:
		return "Normal"
	case Return:
		return "Return"
	case Break:
		return "Break"
	case Raise:
		return "Raise"
	}
	return "UNKNOWN"
}

// Signal is the control-flow outcome of executing a statement. Value is
// the returned value for Return and the exception for Raise.
type Signal struct {
	Kind  SignalKind
	Value value.Value
	Line  int

	// user is set once a Raise has left a function defined outside the
	// builtins, so Line already points into user source.
	user bool
}

// Frame pairs the locals of one call with its module globals.
type Frame struct {
	Locals  *value.Namespace
	Globals *value.Namespace
}

// execution is the state of one top-level run.
type execution struct {
	*Evaluator
	ctx         context.Context
	depth       int // active function calls
	nesting     int // active expression evaluations
	handling    []value.Value // exceptions being handled, innermost last
	interrupted bool
	grace       int // iterations left to finally suites after an interrupt
}

// finallyGrace bounds the loop iterations and calls that finally suites
// may run once the run has been interrupted.
const finallyGrace = 100000

// checkpoint raises Interrupt once the context is done. Later statements
// pass so that finally suites can run.
func (x *execution) checkpoint(line int) *Signal {
	if x.interrupted {
		return nil
	}
	if x.ctx.Err() != nil {
		x.interrupted = true
		x.grace = finallyGrace
		return x.interrupt(line)
	}
	return nil
}

// iteration is the checkpoint of loops and calls. After an interrupt it
// raises Interrupt again once the grace is spent.
func (x *execution) iteration(line int) *Signal {
	if !x.interrupted {
		return x.checkpoint(line)
	}
	if x.grace > 0 {
		x.grace--
		return nil
	}
	return x.interrupt(line)
}

func (x *execution) interrupt(line int) *Signal {
	return &Signal{Kind: Raise, Value: value.NewException(value.Interrupt, value.Str(x.ctx.Err().Error())), Line: line}
}

func isInterrupt(v value.Value) bool {
	inst, ok := v.(*value.Instance)
	return ok && inst.Class == value.Interrupt
}

// raise turns a Go error from the value layer into a Raise signal.
func (x *execution) raise(err error, line int) *Signal {
	var exc value.Value
	switch err := err.(type) {
	case *value.Error:
		arg := err.Arg
		if arg == nil {
			arg = value.Str(err.Msg)
		}
		exc = value.NewException(err.Class, arg)
	case *Error:
		exc = err.Exception
	default:
		exc = value.NewException(value.RuntimeError, value.Str(err.Error()))
	}
	return &Signal{Kind: Raise, Value: exc, Line: line}
}

// raisef builds a Raise signal of class cls.
func (x *execution) raisef(line int, cls *value.Class, format string, args ...any) *Signal {
	return x.raise(value.Errorf(cls, format, args...), line)
}

func (x *execution) execSuite(s *ast.Suite, f *Frame) Signal {
	if s == nil {
		return Signal{}
	}
	for _, st := range s.Stmts {
		if sig := x.exec(st, f); sig.Kind != Normal {
			return sig
		}
	}
	return Signal{}
}

func (x *execution) exec(st ast.Stmt, f *Frame) Signal {
	if sig := x.checkpoint(st.Pos()); sig != nil {
		return *sig
	}
	switch st := st.(type) {
	case *ast.ExprStmt:
		if _, sig := x.evaluate(st.X, f); sig != nil {
			return *sig
		}
	case *ast.Assign:
		v, sig := x.evaluate(st.Value, f)
		if sig != nil {
			return *sig
		}
		if sig := x.assign(st.Target, v, f); sig != nil {
			return *sig
		}
	case *ast.AugAssign:
		if sig := x.augAssign(st, f); sig != nil {
			return *sig
		}
	case *ast.Pass:
	case *ast.Break:
		return Signal{Kind: Break, Line: st.Line}
	case *ast.Return:
		var v value.Value = value.None
		if st.Value != nil {
			var sig *Signal
			if v, sig = x.evaluate(st.Value, f); sig != nil {
				return *sig
			}
		}
		return Signal{Kind: Return, Value: v, Line: st.Line}
	case *ast.Raise:
		return x.execRaise(st, f)
	case *ast.If:
		t, sig := x.evaluate(st.Test, f)
		if sig != nil {
			return *sig
		}
		if value.Truthy(t) {
			return x.execSuite(st.Then, f)
		}
		return x.execSuite(st.Else, f)
	case *ast.While:
		return x.execWhile(st, f)
	case *ast.For:
		return x.execFor(st, f)
	case *ast.TryExcept:
		return x.execTryExcept(st, f)
	case *ast.TryFinally:
		return x.execTryFinally(st, f)
	case *ast.Def:
		f.Locals.Set(st.Name, &value.Function{
			Name:    st.Name,
			Params:  st.Params,
			Body:    st.Body,
			Globals: f.Globals,
			Line:    st.Line,
		})
	case *ast.Class:
		return x.execClass(st, f)
	default:
		return *x.raisef(st.Pos(), value.RuntimeError, "unsupported statement %T", st)
	}
	return Signal{}
}

// loopBody runs one iteration and reports whether the loop must stop,
// along with the signal to propagate (Normal after a break).
func (x *execution) loopBody(body *ast.Suite, f *Frame) (Signal, bool) {
	sig := x.execSuite(body, f)
	switch sig.Kind {
	case Break:
		return Signal{}, true
	case Return, Raise:
		return sig, true
	}
	return Signal{}, false
}

func (x *execution) execWhile(st *ast.While, f *Frame) Signal {
	for {
		if sig := x.iteration(st.Line); sig != nil {
			return *sig
		}
		t, sig := x.evaluate(st.Test, f)
		if sig != nil {
			return *sig
		}
		if !value.Truthy(t) {
			break
		}
		if out, stop := x.loopBody(st.Body, f); stop {
			return out
		}
	}
	return x.execSuite(st.Else, f)
}

func (x *execution) execFor(st *ast.For, f *Frame) Signal {
	it, sig := x.evaluate(st.Iter, f)
	if sig != nil {
		return *sig
	}
	step := func(v value.Value) (Signal, bool) {
		if sig := x.iteration(st.Line); sig != nil {
			return *sig, true
		}
		if sig := x.assign(st.Target, v, f); sig != nil {
			return *sig, true
		}
		return x.loopBody(st.Body, f)
	}
	if l, ok := it.(*value.List); ok {
		// Lists are iterated by live index so appends during the loop are seen.
		for i := 0; i < len(l.Elts); i++ {
			if out, stop := step(l.Elts[i]); stop {
				return out
			}
		}
	} else {
		elts, err := value.Iterate(it)
		if err != nil {
			return *x.raise(err, st.Line)
		}
		for _, v := range elts {
			if out, stop := step(v); stop {
				return out
			}
		}
	}
	return x.execSuite(st.Else, f)
}

func (x *execution) execRaise(st *ast.Raise, f *Frame) Signal {
	if st.Value == nil {
		if n := len(x.handling); n > 0 {
			return Signal{Kind: Raise, Value: x.handling[n-1], Line: st.Line}
		}
		return *x.raisef(st.Line, value.RuntimeError, "No active exception to reraise")
	}
	v, sig := x.evaluate(st.Value, f)
	if sig != nil {
		return *sig
	}
	if cls, ok := v.(*value.Class); ok {
		inst, sig := x.call(cls, nil, st.Line)
		if sig != nil {
			return *sig
		}
		v = inst
	}
	return Signal{Kind: Raise, Value: v, Line: st.Line}
}

func (x *execution) execTryExcept(st *ast.TryExcept, f *Frame) Signal {
	sig := x.execSuite(st.Body, f)
	switch sig.Kind {
	case Normal:
		return x.execSuite(st.Else, f)
	case Return, Break:
		return sig
	}
	exc := sig.Value
	if isInterrupt(exc) {
		return sig
	}
	for _, h := range st.Handlers {
		if h.Type != nil {
			sel, esig := x.evaluate(h.Type, f)
			if esig != nil {
				return *esig
			}
			ok, err := value.IsInstance(exc, sel)
			if err != nil {
				return *x.raisef(h.Line, value.TypeError, "catching classes that do not inherit from BaseException is not allowed")
			}
			if !ok {
				continue
			}
		}
		if h.Name != "" {
			f.Locals.Set(h.Name, exc)
		}
		x.handling = append(x.handling, exc)
		out := x.execSuite(h.Body, f)
		x.handling = x.handling[:len(x.handling)-1]
		return out
	}
	return sig
}

// execTryFinally runs the finally suite whatever the body did. A non-Normal
// outcome of the finally suite replaces the body's, except that an
// interrupt keeps propagating.
func (x *execution) execTryFinally(st *ast.TryFinally, f *Frame) Signal {
	sig := x.execSuite(st.Body, f)
	fin := x.execSuite(st.Finally, f)
	if fin.Kind == Normal || (sig.Kind == Raise && isInterrupt(sig.Value)) {
		return sig
	}
	return fin
}

func (x *execution) execClass(st *ast.Class, f *Frame) Signal {
	var super *value.Class
	if st.Super != nil {
		sv, sig := x.evaluate(st.Super, f)
		if sig != nil {
			return *sig
		}
		cls, ok := sv.(*value.Class)
		if !ok {
			return *x.raisef(st.Line, value.TypeError, "bases must be types, not %s", value.TypeName(sv))
		}
		if cls.New != nil && cls != value.ObjectType {
			return *x.raisef(st.Line, value.TypeError, "type '%s' is not an acceptable base type", cls.Name)
		}
		super = cls
	}
	cls := value.NewClass(st.Name, super)
	body := &Frame{Locals: cls.Dict, Globals: f.Globals}
	if sig := x.execSuite(st.Body, body); sig.Kind == Raise {
		return sig
	}
	f.Locals.Set(st.Name, cls)
	return Signal{}
}
