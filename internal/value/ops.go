// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

import (
	"math"
	"strings"

	"nickandperla.net/pyphon/internal/ast"
)

// Truthy reports the truth value of v. None, False, numeric zero and
// empty collections are false.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case NoneValue:
		return false
	case Bool:
		return bool(v)
	case Int:
		return v != 0
	case Float:
		return v != 0
	case Str:
		return v != ""
	case *Tuple:
		return len(v.Elts) > 0
	case *List:
		return len(v.Elts) > 0
	case *Set:
		return v.Len() > 0
	case *Dict:
		return v.Len() > 0
	}
	return true
}

// number converts numeric variants (including bools) for arithmetic.
func number(v Value) (i int64, f float64, isFloat, ok bool) {
	switch v := v.(type) {
	case Bool:
		if v {
			return 1, 1, false, true
		}
		return 0, 0, false, true
	case Int:
		return int64(v), float64(v), false, true
	case Float:
		return 0, float64(v), true, true
	}
	return 0, 0, false, false
}

func isNumber(v Value) bool {
	_, _, _, ok := number(v)
	return ok
}

// MaxNesting bounds how deeply nested containers are compared.
const MaxNesting = 1000

func nestingError() error {
	return Errorf(RecursionError, "maximum recursion depth exceeded in comparison")
}

// Equal reports structural equality for numbers, strings and collections
// and identity for everything else. Containers nested deeper than
// MaxNesting, as cyclic ones are, raise RecursionError.
func Equal(a, b Value) (bool, error) {
	return equal(a, b, 0)
}

func equal(a, b Value, depth int) (bool, error) {
	if isNumber(a) && isNumber(b) {
		ai, af, aFloat, _ := number(a)
		bi, bf, bFloat, _ := number(b)
		if aFloat || bFloat {
			return af == bf, nil
		}
		return ai == bi, nil
	}
	switch a := a.(type) {
	case Str:
		b, ok := b.(Str)
		return ok && a == b, nil
	case *Tuple:
		b, ok := b.(*Tuple)
		if !ok || a == b {
			return ok, nil
		}
		return equalElts(a.Elts, b.Elts, depth)
	case *List:
		b, ok := b.(*List)
		if !ok || a == b {
			return ok, nil
		}
		return equalElts(a.Elts, b.Elts, depth)
	case *Set:
		b, ok := b.(*Set)
		if !ok || a.Len() != b.Len() {
			return false, nil
		}
		for _, e := range a.Elts() {
			if in, _ := b.Contains(e); !in {
				return false, nil
			}
		}
		return true, nil
	case *Dict:
		b, ok := b.(*Dict)
		if !ok || a == b {
			return ok, nil
		}
		if a.Len() != b.Len() {
			return false, nil
		}
		if depth >= MaxNesting {
			return false, nestingError()
		}
		for _, e := range a.t.entries {
			bv, found, _ := b.Get(e.key)
			if !found {
				return false, nil
			}
			if eq, err := equal(e.val, bv, depth+1); err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case *BoundMethod:
		b, ok := b.(*BoundMethod)
		return ok && a.Fn == b.Fn && Is(a.Self, b.Self), nil
	}
	return a == b, nil
}

func equalElts(a, b []Value, depth int) (bool, error) {
	if len(a) != len(b) {
		return false, nil
	}
	if depth >= MaxNesting {
		return false, nestingError()
	}
	for i := range a {
		if eq, err := equal(a[i], b[i], depth+1); err != nil || !eq {
			return false, err
		}
	}
	return true, nil
}

// Is implements the identity operator. None, True and False are
// singletons; ints, floats and strings are interned, so values of the same
// kind and content are identical; everything else compares by reference.
func Is(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	return a == b
}

// Compare orders numbers, strings, tuples and lists. It returns -1, 0 or 1.
func Compare(op ast.Op, a, b Value) (int, error) {
	return compare(op, a, b, 0)
}

func compare(op ast.Op, a, b Value, depth int) (int, error) {
	if isNumber(a) && isNumber(b) {
		ai, af, aFloat, _ := number(a)
		bi, bf, bFloat, _ := number(b)
		if aFloat || bFloat {
			switch {
			case af < bf:
				return -1, nil
			case af > bf:
				return 1, nil
			}
			return 0, nil
		}
		switch {
		case ai < bi:
			return -1, nil
		case ai > bi:
			return 1, nil
		}
		return 0, nil
	}
	switch a := a.(type) {
	case Str:
		if b, ok := b.(Str); ok {
			return strings.Compare(string(a), string(b)), nil
		}
	case *Tuple:
		if b, ok := b.(*Tuple); ok {
			return compareElts(op, a.Elts, b.Elts, depth)
		}
	case *List:
		if b, ok := b.(*List); ok {
			return compareElts(op, a.Elts, b.Elts, depth)
		}
	}
	return 0, Errorf(TypeError, "'%s' not supported between instances of '%s' and '%s'",
		op, TypeName(a), TypeName(b))
}

func compareElts(op ast.Op, a, b []Value, depth int) (int, error) {
	if depth >= MaxNesting {
		return 0, nestingError()
	}
	for i := 0; i < len(a) && i < len(b); i++ {
		eq, err := equal(a[i], b[i], depth+1)
		if err != nil {
			return 0, err
		}
		if eq {
			continue
		}
		return compare(op, a[i], b[i], depth+1)
	}
	switch {
	case len(a) < len(b):
		return -1, nil
	case len(a) > len(b):
		return 1, nil
	}
	return 0, nil
}

// Contains implements `x in container`.
func Contains(container, x Value) (bool, error) {
	switch c := container.(type) {
	case Str:
		s, ok := x.(Str)
		if !ok {
			return false, Errorf(TypeError, "'in <string>' requires string as left operand, not %s", TypeName(x))
		}
		return strings.Contains(string(c), string(s)), nil
	case *Tuple:
		return containsElt(c.Elts, x)
	case *List:
		return containsElt(c.Elts, x)
	case *Set:
		return c.Contains(x)
	case *Dict:
		_, ok, err := c.Get(x)
		return ok, err
	}
	return false, Errorf(TypeError, "argument of type '%s' is not iterable", TypeName(container))
}

func containsElt(elts []Value, x Value) (bool, error) {
	for _, e := range elts {
		if Is(e, x) {
			return true, nil
		}
		if eq, err := Equal(e, x); err != nil || eq {
			return eq, err
		}
	}
	return false, nil
}

// Binary applies a binary operator other than and/or.
func Binary(op ast.Op, a, b Value) (Value, error) {
	switch op {
	case ast.Eq, ast.Ne:
		eq, err := Equal(a, b)
		if err != nil {
			return nil, err
		}
		return Bool(eq == (op == ast.Eq)), nil
	case ast.Is:
		return Bool(Is(a, b)), nil
	case ast.In:
		ok, err := Contains(b, a)
		return Bool(ok), err
	case ast.Lt, ast.Gt, ast.Le, ast.Ge:
		c, err := Compare(op, a, b)
		if err != nil {
			return nil, err
		}
		switch op {
		case ast.Lt:
			return Bool(c < 0), nil
		case ast.Gt:
			return Bool(c > 0), nil
		case ast.Le:
			return Bool(c <= 0), nil
		}
		return Bool(c >= 0), nil
	}
	if fn, ok := binaryOps[opKey{op, a.Kind(), b.Kind()}]; ok {
		return fn(a, b)
	}
	return nil, Errorf(TypeError, "unsupported operand type(s) for %s: '%s' and '%s'",
		op, TypeName(a), TypeName(b))
}

// Unary applies unary minus or plus.
func Unary(op ast.Op, v Value) (Value, error) {
	i, f, isFloat, ok := number(v)
	if !ok {
		return nil, Errorf(TypeError, "bad operand type for unary %s: '%s'", op, TypeName(v))
	}
	switch {
	case op == ast.Neg && isFloat:
		return Float(-f), nil
	case op == ast.Neg:
		return Int(-i), nil
	case isFloat:
		return Float(f), nil
	}
	return Int(i), nil
}

type opKey struct {
	op   ast.Op
	x, y Kind
}

type binaryFunc func(a, b Value) (Value, error)

// binaryOps is the arithmetic dispatch table keyed by operator and the
// kinds of both operands.
var binaryOps = map[opKey]binaryFunc{}

func register(op ast.Op, x, y Kind, fn binaryFunc) {
	binaryOps[opKey{op, x, y}] = fn
}

func init() {
	numeric := []Kind{BoolKind, IntKind, FloatKind}
	for _, x := range numeric {
		for _, y := range numeric {
			register(ast.Add, x, y, arith(func(a, b int64) (Value, error) { return Int(a + b), nil },
				func(a, b float64) (Value, error) { return Float(a + b), nil }))
			register(ast.Sub, x, y, arith(func(a, b int64) (Value, error) { return Int(a - b), nil },
				func(a, b float64) (Value, error) { return Float(a - b), nil }))
			register(ast.Mul, x, y, arith(func(a, b int64) (Value, error) { return Int(a * b), nil },
				func(a, b float64) (Value, error) { return Float(a * b), nil }))
			register(ast.Div, x, y, arith(intDiv, floatDiv))
			register(ast.Mod, x, y, arith(intMod, floatMod))
		}
	}

	register(ast.Add, StrKind, StrKind, func(a, b Value) (Value, error) {
		if err := checkLength(len(a.(Str)) + len(b.(Str))); err != nil {
			return nil, err
		}
		return a.(Str) + b.(Str), nil
	})
	register(ast.Add, ListKind, ListKind, func(a, b Value) (Value, error) {
		elts, err := concat(a.(*List).Elts, b.(*List).Elts)
		if err != nil {
			return nil, err
		}
		return NewList(elts...), nil
	})
	register(ast.Add, TupleKind, TupleKind, func(a, b Value) (Value, error) {
		elts, err := concat(a.(*Tuple).Elts, b.(*Tuple).Elts)
		if err != nil {
			return nil, err
		}
		return NewTuple(elts...), nil
	})
	register(ast.Sub, SetKind, SetKind, func(a, b Value) (Value, error) {
		out := NewSet()
		other := b.(*Set)
		for _, e := range a.(*Set).Elts() {
			if in, _ := other.Contains(e); !in {
				if err := out.Add(e); err != nil {
					return nil, err
				}
			}
		}
		return out, nil
	})
	register(ast.Mod, StrKind, TupleKind, func(a, b Value) (Value, error) {
		return Format(string(a.(Str)), b.(*Tuple).Elts)
	})

	for _, n := range []Kind{BoolKind, IntKind} {
		for _, seq := range []Kind{StrKind, ListKind, TupleKind} {
			register(ast.Mul, seq, n, repeat)
			register(ast.Mul, n, seq, func(a, b Value) (Value, error) { return repeat(b, a) })
		}
	}
	for _, k := range []Kind{NoneKind, BoolKind, IntKind, FloatKind, StrKind, ListKind, SetKind,
		DictKind, FunctionKind, BuiltinKind, ClassKind, InstanceKind, MethodKind} {
		register(ast.Mod, StrKind, k, func(a, b Value) (Value, error) {
			return Format(string(a.(Str)), []Value{b})
		})
	}
}

func arith(ints func(a, b int64) (Value, error), floats func(a, b float64) (Value, error)) binaryFunc {
	return func(a, b Value) (Value, error) {
		ai, af, aFloat, _ := number(a)
		bi, bf, bFloat, _ := number(b)
		if aFloat || bFloat {
			return floats(af, bf)
		}
		return ints(ai, bi)
	}
}

func intDiv(a, b int64) (Value, error) {
	if b == 0 {
		return nil, Errorf(ZeroDivisionError, "division by zero")
	}
	return Float(float64(a) / float64(b)), nil
}

func floatDiv(a, b float64) (Value, error) {
	if b == 0 {
		return nil, Errorf(ZeroDivisionError, "float division by zero")
	}
	return Float(a / b), nil
}

// intMod takes the sign of the divisor.
func intMod(a, b int64) (Value, error) {
	if b == 0 {
		return nil, Errorf(ZeroDivisionError, "integer division or modulo by zero")
	}
	r := a % b
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return Int(r), nil
}

func floatMod(a, b float64) (Value, error) {
	if b == 0 {
		return nil, Errorf(ZeroDivisionError, "float modulo")
	}
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return Float(r), nil
}

// MaxLength bounds the length of strings and sequences built by
// concatenation and repetition.
const MaxLength = 1 << 24

func checkLength(n int) error {
	if n > MaxLength {
		return Errorf(ValueError, "sequence too long (%d > %d)", n, MaxLength)
	}
	return nil
}

func concat(a, b []Value) ([]Value, error) {
	if err := checkLength(len(a) + len(b)); err != nil {
		return nil, err
	}
	out := make([]Value, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...), nil
}

// Extend appends elts to l in place.
func (l *List) Extend(elts []Value) error {
	if err := checkLength(len(l.Elts) + len(elts)); err != nil {
		return err
	}
	l.Elts = append(l.Elts, elts...)
	return nil
}

func repeat(seq, count Value) (Value, error) {
	n, _, _, _ := number(count)
	if n < 0 {
		n = 0
	}
	var size int
	switch s := seq.(type) {
	case Str:
		size = len(s)
	case *List:
		size = len(s.Elts)
	case *Tuple:
		size = len(s.Elts)
	default:
		return nil, Errorf(TypeError, "can't multiply sequence by non-int of type '%s'", TypeName(count))
	}
	if size > 0 && n > int64(MaxLength/size) {
		return nil, Errorf(ValueError, "repeated sequence too long (%d * %d > %d)", size, n, MaxLength)
	}
	switch s := seq.(type) {
	case Str:
		return Str(strings.Repeat(string(s), int(n))), nil
	case *List:
		return NewList(repeatElts(s.Elts, int(n))...), nil
	}
	return NewTuple(repeatElts(seq.(*Tuple).Elts, int(n))...), nil
}

func repeatElts(elts []Value, n int) []Value {
	if len(elts) == 0 {
		return nil
	}
	out := make([]Value, 0, len(elts)*n)
	for i := 0; i < n; i++ {
		out = append(out, elts...)
	}
	return out
}
