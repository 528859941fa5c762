// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"nickandperla.net/pyphon/internal/ast"
	"nickandperla.net/pyphon/internal/value"
)

// lookup resolves a name through locals, globals and builtins.
func (x *execution) lookup(name string, f *Frame) (value.Value, bool) {
	if v, ok := f.Locals.Get(name); ok {
		return v, true
	}
	if v, ok := f.Globals.Get(name); ok {
		return v, true
	}
	return x.builtins.Get(name)
}

func literal(v any) value.Value {
	switch v := v.(type) {
	case bool:
		return value.Bool(v)
	case int64:
		return value.Int(v)
	case float64:
		return value.Float(v)
	case string:
		return value.Str(v)
	}
	return value.None
}

// maxNesting bounds the depth of expression evaluation in one run,
// counting the frames of every active call.
const maxNesting = 100000

// evaluate computes an expression. A non-nil signal is always a Raise.
func (x *execution) evaluate(e ast.Expr, f *Frame) (value.Value, *Signal) {
	if x.nesting >= maxNesting {
		return nil, x.raisef(e.Pos(), value.RecursionError, "maximum recursion depth exceeded")
	}
	x.nesting++
	v, sig := x.evaluateNode(e, f)
	x.nesting--
	return v, sig
}

func (x *execution) evaluateNode(e ast.Expr, f *Frame) (value.Value, *Signal) {
	switch e := e.(type) {
	case *ast.Literal:
		return literal(e.Value), nil
	case *ast.Name:
		if v, ok := x.lookup(e.Name, f); ok {
			return v, nil
		}
		return nil, x.raisef(e.Line, value.NameError, "name '%s' is not defined", e.Name)
	case *ast.Unary:
		v, sig := x.evaluate(e.X, f)
		if sig != nil {
			return nil, sig
		}
		if e.Op == ast.Not {
			return value.Bool(!value.Truthy(v)), nil
		}
		r, err := value.Unary(e.Op, v)
		if err != nil {
			return nil, x.raise(err, e.Line)
		}
		return r, nil
	case *ast.Binary:
		return x.binary(e, f)
	case *ast.IfExpr:
		t, sig := x.evaluate(e.Test, f)
		if sig != nil {
			return nil, sig
		}
		if value.Truthy(t) {
			return x.evaluate(e.Then, f)
		}
		return x.evaluate(e.Else, f)
	case *ast.Call:
		fn, sig := x.evaluate(e.Fn, f)
		if sig != nil {
			return nil, sig
		}
		args, sig := x.evaluateAll(e.Args, f)
		if sig != nil {
			return nil, sig
		}
		return x.call(fn, args, e.Line)
	case *ast.Index:
		c, sig := x.evaluate(e.X, f)
		if sig != nil {
			return nil, sig
		}
		k, sig := x.evaluate(e.Index, f)
		if sig != nil {
			return nil, sig
		}
		v, err := value.GetItem(c, k)
		if err != nil {
			return nil, x.raise(err, e.Line)
		}
		return v, nil
	case *ast.Attr:
		o, sig := x.evaluate(e.X, f)
		if sig != nil {
			return nil, sig
		}
		v, err := value.GetAttr(o, e.Name)
		if err != nil {
			return nil, x.raise(err, e.Line)
		}
		return v, nil
	case *ast.Tuple:
		elts, sig := x.evaluateAll(e.Elts, f)
		if sig != nil {
			return nil, sig
		}
		return value.NewTuple(elts...), nil
	case *ast.List:
		elts, sig := x.evaluateAll(e.Elts, f)
		if sig != nil {
			return nil, sig
		}
		return value.NewList(elts...), nil
	case *ast.Set:
		elts, sig := x.evaluateAll(e.Elts, f)
		if sig != nil {
			return nil, sig
		}
		s := value.NewSet()
		for _, v := range elts {
			if err := s.Add(v); err != nil {
				return nil, x.raise(err, e.Line)
			}
		}
		return s, nil
	case *ast.Dict:
		d := value.NewDict()
		for i := 0; i+1 < len(e.Elts); i += 2 {
			k, sig := x.evaluate(e.Elts[i], f)
			if sig != nil {
				return nil, sig
			}
			v, sig := x.evaluate(e.Elts[i+1], f)
			if sig != nil {
				return nil, sig
			}
			if err := d.Set(k, v); err != nil {
				return nil, x.raise(err, e.Line)
			}
		}
		return d, nil
	}
	return nil, x.raisef(e.Pos(), value.RuntimeError, "unsupported expression %T", e)
}

func (x *execution) evaluateAll(exprs []ast.Expr, f *Frame) ([]value.Value, *Signal) {
	out := make([]value.Value, len(exprs))
	for i, e := range exprs {
		v, sig := x.evaluate(e, f)
		if sig != nil {
			return nil, sig
		}
		out[i] = v
	}
	return out, nil
}

// binary evaluates and/or with short-circuiting and every other binary
// operator through the value dispatch tables.
func (x *execution) binary(e *ast.Binary, f *Frame) (value.Value, *Signal) {
	a, sig := x.evaluate(e.X, f)
	if sig != nil {
		return nil, sig
	}
	switch e.Op {
	case ast.And:
		if !value.Truthy(a) {
			return a, nil
		}
		return x.evaluate(e.Y, f)
	case ast.Or:
		if value.Truthy(a) {
			return a, nil
		}
		return x.evaluate(e.Y, f)
	}
	b, sig := x.evaluate(e.Y, f)
	if sig != nil {
		return nil, sig
	}
	if v, sig, ok := x.dunder(e.Op, a, b, e.Line); ok {
		return v, sig
	}
	v, err := value.Binary(e.Op, a, b)
	if err != nil {
		return nil, x.raise(err, e.Line)
	}
	return v, nil
}

var dunders = map[ast.Op]string{
	ast.Add: "__add__", ast.Sub: "__sub__", ast.Mul: "__mul__",
	ast.Div: "__truediv__", ast.Mod: "__mod__", ast.Eq: "__eq__",
	ast.Lt: "__lt__", ast.Gt: "__gt__", ast.Le: "__le__", ast.Ge: "__ge__",
}

// dunder dispatches an operator to a method defined on the left operand's
// class, when it is an instance that defines one.
func (x *execution) dunder(op ast.Op, a, b value.Value, line int) (value.Value, *Signal, bool) {
	inst, ok := a.(*value.Instance)
	if !ok {
		return nil, nil, false
	}
	name := dunders[op]
	if op == ast.Ne {
		name = "__eq__"
	}
	if name == "" {
		return nil, nil, false
	}
	m, ok := inst.Class.Lookup(name)
	if !ok {
		return nil, nil, false
	}
	v, sig := x.call(m, []value.Value{a, b}, line)
	if sig == nil && op == ast.Ne {
		v = value.Bool(!value.Truthy(v))
	}
	return v, sig, true
}

// call invokes a callable with positional arguments.
func (x *execution) call(fn value.Value, args []value.Value, line int) (value.Value, *Signal) {
	switch fn := fn.(type) {
	case *value.Function:
		return x.callFunction(fn, args, line)
	case *value.Builtin:
		v, err := fn.Fn(args)
		if err != nil {
			return nil, x.raise(err, line)
		}
		return v, nil
	case *value.BoundMethod:
		return x.call(fn.Fn, append([]value.Value{fn.Self}, args...), line)
	case *value.Class:
		return x.instantiate(fn, args, line)
	}
	return nil, x.raisef(line, value.TypeError, "'%s' object is not callable", value.TypeName(fn))
}

func (x *execution) callFunction(fn *value.Function, args []value.Value, line int) (value.Value, *Signal) {
	if len(args) != len(fn.Params) {
		return nil, x.raise(value.CheckArgs(fn.Name, args, len(fn.Params), len(fn.Params)), line)
	}
	if x.depth >= x.recursionLimit {
		return nil, x.raisef(line, value.RecursionError, "maximum recursion depth exceeded")
	}
	if sig := x.iteration(line); sig != nil {
		return nil, sig
	}
	x.depth++
	defer func() { x.depth-- }()

	locals := value.NewNamespace()
	for i, p := range fn.Params {
		locals.Set(p, args[i])
	}
	sig := x.execSuite(fn.Body, &Frame{Locals: locals, Globals: fn.Globals})
	switch sig.Kind {
	case Return:
		return sig.Value, nil
	case Raise:
		if fn.Globals != x.builtins {
			sig.user = true
		} else if !sig.user {
			// Report builtins failures at the caller's line.
			sig.Line = line
		}
		return nil, &sig
	case Break:
		return nil, x.raisef(sig.Line, value.RuntimeError, "'break' outside loop")
	}
	return value.None, nil
}

// instantiate calls a class: builtin types use their native constructor,
// other classes create an instance and run __init__ when defined.
func (x *execution) instantiate(cls *value.Class, args []value.Value, line int) (value.Value, *Signal) {
	if cls.New != nil {
		v, err := cls.New(args)
		if err != nil {
			return nil, x.raise(err, line)
		}
		return v, nil
	}
	inst := value.NewInstance(cls)
	if cls.IsException() {
		inst.Attrs.Set("args", value.NewTuple(args...))
	}
	init, ok := cls.Lookup("__init__")
	if !ok {
		if len(args) > 0 && !cls.IsException() {
			return nil, x.raisef(line, value.TypeError, "%s() takes no arguments", cls.Name)
		}
		return inst, nil
	}
	if _, sig := x.call(init, append([]value.Value{inst}, args...), line); sig != nil {
		return nil, sig
	}
	return inst, nil
}

// assign binds v to a target: a name, index, attribute or a tuple/list of
// targets that destructures v.
func (x *execution) assign(target ast.Expr, v value.Value, f *Frame) *Signal {
	switch t := target.(type) {
	case *ast.Name:
		f.Locals.Set(t.Name, v)
	case *ast.Index:
		c, sig := x.evaluate(t.X, f)
		if sig != nil {
			return sig
		}
		k, sig := x.evaluate(t.Index, f)
		if sig != nil {
			return sig
		}
		if err := value.SetItem(c, k, v); err != nil {
			return x.raise(err, t.Line)
		}
	case *ast.Attr:
		o, sig := x.evaluate(t.X, f)
		if sig != nil {
			return sig
		}
		if err := value.SetAttr(o, t.Name, v); err != nil {
			return x.raise(err, t.Line)
		}
	case *ast.Tuple:
		return x.unpack(t.Elts, v, f, t.Line)
	case *ast.List:
		return x.unpack(t.Elts, v, f, t.Line)
	default:
		return x.raisef(target.Pos(), value.RuntimeError, "cannot assign to %s", target)
	}
	return nil
}

func (x *execution) unpack(targets []ast.Expr, v value.Value, f *Frame, line int) *Signal {
	elts, err := value.Iterate(v)
	if err != nil {
		return x.raisef(line, value.TypeError, "cannot unpack non-iterable %s object", value.TypeName(v))
	}
	switch {
	case len(elts) > len(targets):
		return x.raisef(line, value.ValueError, "too many values to unpack (expected %d)", len(targets))
	case len(elts) < len(targets):
		return x.raisef(line, value.ValueError, "not enough values to unpack (expected %d, got %d)", len(targets), len(elts))
	}
	for i, t := range targets {
		if sig := x.assign(t, elts[i], f); sig != nil {
			return sig
		}
	}
	return nil
}

// augAssign applies += or -=. The container and key of an index target and
// the object of an attribute target are evaluated once. A list extended
// with += is updated in place.
func (x *execution) augAssign(st *ast.AugAssign, f *Frame) *Signal {
	rhs, sig := x.evaluate(st.Value, f)
	if sig != nil {
		return sig
	}
	switch t := st.Target.(type) {
	case *ast.Name:
		cur, ok := x.lookup(t.Name, f)
		if !ok {
			return x.raisef(t.Line, value.NameError, "name '%s' is not defined", t.Name)
		}
		v, sig := x.augment(st.Op, cur, rhs, st.Line)
		if sig != nil {
			return sig
		}
		f.Locals.Set(t.Name, v)
	case *ast.Index:
		c, sig := x.evaluate(t.X, f)
		if sig != nil {
			return sig
		}
		k, sig := x.evaluate(t.Index, f)
		if sig != nil {
			return sig
		}
		cur, err := value.GetItem(c, k)
		if err != nil {
			return x.raise(err, t.Line)
		}
		v, sig := x.augment(st.Op, cur, rhs, st.Line)
		if sig != nil {
			return sig
		}
		if err := value.SetItem(c, k, v); err != nil {
			return x.raise(err, t.Line)
		}
	case *ast.Attr:
		o, sig := x.evaluate(t.X, f)
		if sig != nil {
			return sig
		}
		cur, err := value.GetAttr(o, t.Name)
		if err != nil {
			return x.raise(err, t.Line)
		}
		v, sig := x.augment(st.Op, cur, rhs, st.Line)
		if sig != nil {
			return sig
		}
		if err := value.SetAttr(o, t.Name, v); err != nil {
			return x.raise(err, t.Line)
		}
	default:
		return x.raisef(st.Line, value.RuntimeError, "cannot assign to %s", st.Target)
	}
	return nil
}

func (x *execution) augment(op ast.Op, cur, rhs value.Value, line int) (value.Value, *Signal) {
	if l, ok := cur.(*value.List); ok && op == ast.Add {
		elts, err := value.Iterate(rhs)
		if err != nil {
			return nil, x.raise(err, line)
		}
		if err := l.Extend(elts); err != nil {
			return nil, x.raise(err, line)
		}
		return l, nil
	}
	if v, sig, ok := x.dunder(op, cur, rhs, line); ok {
		return v, sig
	}
	v, err := value.Binary(op, cur, rhs)
	if err != nil {
		return nil, x.raise(err, line)
	}
	return v, nil
}
