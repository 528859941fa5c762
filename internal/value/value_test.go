package value

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nickandperla.net/pyphon/internal/ast"
)

func TestRepr(t *testing.T) {
	d := NewDict()
	require.NoError(t, d.Set(Str("a"), Int(1)))
	require.NoError(t, d.Set(Int(2), NewTuple(Float(1.5))))
	s := NewSet()
	require.NoError(t, s.Add(Int(1)))

	tests := []struct {
		v    Value
		want string
	}{
		{None, "None"},
		{True, "True"},
		{Int(-3), "-3"},
		{Float(2), "2.0"},
		{Float(0.1), "0.1"},
		{Float(1e20), "1e+20"},
		{Float(math.Inf(-1)), "-inf"},
		{Str("it's"), `"it's"`},
		{Str("a\nb"), `'a\nb'`},
		{NewTuple(), "()"},
		{NewTuple(Int(1)), "(1,)"},
		{NewList(Int(1), Str("x")), "[1, 'x']"},
		{NewSet(), "set()"},
		{s, "{1}"},
		{NewDict(), "{}"},
		{d, "{'a': 1, 2: (1.5,)}"},
		{IntType, "<class 'int'>"},
		{NewException(ValueError, Str("x")), "ValueError('x')"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Repr(tc.v))
	}
}

func TestReprRecursive(t *testing.T) {
	l := NewList(Int(1))
	l.Elts = append(l.Elts, l)
	assert.Equal(t, "[1, [...]]", Repr(l))
}

func TestStrOf(t *testing.T) {
	assert.Equal(t, "abc", StrOf(Str("abc")))
	assert.Equal(t, "['abc']", StrOf(NewList(Str("abc"))))
	assert.Equal(t, "boom", StrOf(NewException(ValueError, Str("boom"))))
	assert.Equal(t, "'boom'", StrOf(NewException(KeyError, Str("boom"))))
	assert.Equal(t, "", StrOf(NewException(KeyError)))
}

func TestTruthy(t *testing.T) {
	falsy := []Value{None, False, Int(0), Float(0), Str(""), NewTuple(), NewList(), NewSet(), NewDict()}
	for _, v := range falsy {
		assert.False(t, Truthy(v), Repr(v))
	}
	truthy := []Value{True, Int(-1), Float(0.5), Str(" "), NewTuple(None), NewList(None), IntType, NewInstance(ObjectType)}
	for _, v := range truthy {
		assert.True(t, Truthy(v), Repr(v))
	}
}

func TestEqual(t *testing.T) {
	equal := func(a, b Value) bool {
		t.Helper()
		eq, err := Equal(a, b)
		require.NoError(t, err)
		return eq
	}
	a := NewList(Int(1), NewTuple(Str("x")))
	b := NewList(Int(1), NewTuple(Str("x")))
	assert.True(t, equal(a, b))
	assert.False(t, Is(a, b))
	assert.True(t, equal(Int(1), Float(1)))
	assert.True(t, equal(True, Int(1)))
	assert.False(t, equal(Str("1"), Int(1)))
	assert.False(t, equal(NewList(), NewTuple()))

	s1, s2 := NewSet(), NewSet()
	require.NoError(t, s1.Add(Int(1)))
	require.NoError(t, s1.Add(Int(2)))
	require.NoError(t, s2.Add(Int(2)))
	require.NoError(t, s2.Add(Int(1)))
	assert.True(t, equal(s1, s2))

	i1, i2 := NewInstance(ObjectType), NewInstance(ObjectType)
	assert.False(t, equal(i1, i2))
	assert.True(t, equal(i1, i1))
}

func TestEqualCyclic(t *testing.T) {
	a, b := NewList(), NewList()
	a.Elts = append(a.Elts, a)
	b.Elts = append(b.Elts, b)

	eq, err := Equal(a, a)
	require.NoError(t, err)
	assert.True(t, eq)

	for _, op := range []ast.Op{ast.Eq, ast.Ne, ast.Lt, ast.In} {
		_, err = Binary(op, a, b)
		var ve *Error
		require.ErrorAs(t, err, &ve, "%s", op)
		assert.Equal(t, RecursionError, ve.Class)
	}

	d1, d2 := NewDict(), NewDict()
	require.NoError(t, d1.Set(Str("k"), d1))
	require.NoError(t, d2.Set(Str("k"), d2))
	_, err = Equal(d1, d2)
	require.Error(t, err)

	_, err = call(t, a, "index", b)
	require.Error(t, err)
}

func TestEqualDeepButFinite(t *testing.T) {
	nest := func(n int) Value {
		var v Value = Int(0)
		for i := 0; i < n; i++ {
			v = NewList(v)
		}
		return v
	}
	eq, err := Equal(nest(MaxNesting-1), nest(MaxNesting-1))
	require.NoError(t, err)
	assert.True(t, eq)
	_, err = Equal(nest(MaxNesting+10), nest(MaxNesting+10))
	require.Error(t, err)
}

func TestHashKey(t *testing.T) {
	k1, err := HashKey(Int(1))
	require.NoError(t, err)
	k2, err := HashKey(Float(1))
	require.NoError(t, err)
	k3, err := HashKey(True)
	require.NoError(t, err)
	assert.Equal(t, k1, k2)
	assert.Equal(t, k1, k3)

	t1, err := HashKey(NewTuple(Str("a"), Int(1)))
	require.NoError(t, err)
	t2, err := HashKey(NewTuple(Str("a"), Int(1)))
	require.NoError(t, err)
	assert.Equal(t, t1, t2)

	for _, v := range []Value{NewList(), NewDict(), NewSet(), NewTuple(NewList())} {
		_, err := HashKey(v)
		var ve *Error
		require.True(t, errors.As(err, &ve), Repr(v))
		assert.Equal(t, TypeError, ve.Class)
	}
}

func TestDictOrder(t *testing.T) {
	d := NewDict()
	for _, k := range []string{"c", "a", "b"} {
		require.NoError(t, d.Set(Str(k), Str(k+k)))
	}
	require.NoError(t, d.Set(Str("a"), Int(0)))
	assert.Equal(t, "{'c': 'cc', 'a': 0, 'b': 'bb'}", Repr(d))

	ok, err := d.Delete(Str("c"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "['a', 'b']", Repr(NewList(d.Keys()...)))

	v, ok, err := d.Get(Str("b"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Str("bb"), v)

	require.NoError(t, d.Set(Int(1), Str("one")))
	v, ok, err = d.Get(Float(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Str("one"), v)
}

func TestBinary(t *testing.T) {
	tests := []struct {
		op   ast.Op
		a, b Value
		want string
	}{
		{ast.Add, Int(1), Int(2), "3"},
		{ast.Add, Int(1), Float(0.5), "1.5"},
		{ast.Div, Int(7), Int(2), "3.5"},
		{ast.Div, Int(6), Int(3), "2.0"},
		{ast.Mod, Int(-7), Int(3), "2"},
		{ast.Mod, Int(7), Int(-3), "-2"},
		{ast.Sub, True, True, "0"},
		{ast.Add, Str("a"), Str("b"), "'ab'"},
		{ast.Add, NewList(Int(1)), NewList(Int(2)), "[1, 2]"},
		{ast.Add, NewTuple(Int(1)), NewTuple(), "(1,)"},
		{ast.Mul, Str("ab"), Int(2), "'abab'"},
		{ast.Mul, Int(2), NewList(None), "[None, None]"},
		{ast.Mul, Str("ab"), Int(-1), "''"},
		{ast.Mod, Str("%d%%"), Int(5), "'5%'"},
		{ast.Mod, Str("%-4s|%5.2f"), NewTuple(Str("x"), Float(3.14159)), "'x   | 3.14'"},
		{ast.Lt, Int(1), Float(1.5), "True"},
		{ast.Lt, Str("abc"), Str("abd"), "True"},
		{ast.Ge, NewTuple(Int(1), Int(2)), NewTuple(Int(1)), "True"},
		{ast.Eq, NewList(Int(1)), NewList(Int(1)), "True"},
		{ast.Ne, Int(1), Str("1"), "True"},
		{ast.In, Str("b"), Str("abc"), "True"},
		{ast.In, Int(3), NewList(Int(1)), "False"},
		{ast.Is, None, None, "True"},
	}
	for _, tc := range tests {
		got, err := Binary(tc.op, tc.a, tc.b)
		require.NoError(t, err, "%s %s %s", Repr(tc.a), tc.op, Repr(tc.b))
		assert.Equal(t, tc.want, Repr(got), "%s %s %s", Repr(tc.a), tc.op, Repr(tc.b))
	}
}

func TestBinaryErrors(t *testing.T) {
	tests := []struct {
		op    ast.Op
		a, b  Value
		class *Class
		msg   string
	}{
		{ast.Add, Int(1), Str("a"), TypeError, "unsupported operand type(s) for +: 'int' and 'str'"},
		{ast.Sub, NewList(), NewList(), TypeError, "unsupported operand type(s) for -: 'list' and 'list'"},
		{ast.Lt, Int(1), Str("a"), TypeError, "'<' not supported between instances of 'int' and 'str'"},
		{ast.Div, Int(1), Int(0), ZeroDivisionError, "division by zero"},
		{ast.In, Int(1), Int(2), TypeError, "argument of type 'int' is not iterable"},
		{ast.Mod, Str("%d %d"), NewTuple(Int(1)), TypeError, "not enough arguments for format string"},
		{ast.Mod, Str("%d"), NewTuple(Int(1), Int(2)), TypeError, "not all arguments converted during string formatting"},
	}
	for _, tc := range tests {
		_, err := Binary(tc.op, tc.a, tc.b)
		var ve *Error
		require.True(t, errors.As(err, &ve), "%s %s %s: %v", Repr(tc.a), tc.op, Repr(tc.b), err)
		assert.Equal(t, tc.class, ve.Class)
		assert.Equal(t, tc.msg, ve.Msg)
	}
}

func TestSequenceTooLong(t *testing.T) {
	big := NewList(make([]Value, MaxLength/2+1)...)
	tests := []struct {
		name string
		op   ast.Op
		a, b Value
	}{
		{"list repeat", ast.Mul, NewList(Int(0)), Int(9999999999999)},
		{"repeat list", ast.Mul, Int(MaxLength + 1), NewList(Int(0))},
		{"str repeat", ast.Mul, Str("ab"), Int(4611686018427387904)},
		{"tuple repeat", ast.Mul, NewTuple(Int(1), Int(2)), Int(MaxLength)},
		{"list concat", ast.Add, big, big},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Binary(tc.op, tc.a, tc.b)
			var ve *Error
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, ValueError, ve.Class)
		})
	}

	v, err := Binary(ast.Mul, Str("ab"), Int(3))
	require.NoError(t, err)
	assert.Equal(t, Str("ababab"), v)
	v, err = Binary(ast.Mul, NewList(), Int(9999999999999))
	require.NoError(t, err)
	assert.Equal(t, 0, len(v.(*List).Elts))

	half := Str(strings.Repeat("x", MaxLength/2+1))
	_, err = Binary(ast.Add, half, half)
	require.Error(t, err)

	l := NewList(big.Elts...)
	require.Error(t, l.Extend(big.Elts))
	assert.Len(t, l.Elts, MaxLength/2+1)
}

func TestUnary(t *testing.T) {
	v, err := Unary(ast.Neg, Float(2))
	require.NoError(t, err)
	assert.Equal(t, Float(-2), v)
	v, err = Unary(ast.Neg, True)
	require.NoError(t, err)
	assert.Equal(t, Int(-1), v)
	_, err = Unary(ast.Neg, Str("x"))
	assert.Error(t, err)
}

func TestIsInstance(t *testing.T) {
	exc := NewException(KeyError, Str("k"))
	ok, err := IsInstance(exc, LookupError)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = IsInstance(exc, NewTuple(ValueError, Exception))
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = IsInstance(True, IntType)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = IsInstance(Int(1), BoolType)
	require.NoError(t, err)
	assert.False(t, ok)
	_, err = IsInstance(Int(1), Int(1))
	assert.Error(t, err)
}

func TestGetItem(t *testing.T) {
	l := NewList(Int(10), Int(20), Int(30))
	v, err := GetItem(l, Int(-1))
	require.NoError(t, err)
	assert.Equal(t, Int(30), v)

	_, err = GetItem(l, Int(3))
	require.Error(t, err)
	assert.Equal(t, "IndexError: list index out of range", err.Error())

	v, err = GetItem(Str("héllo"), Int(1))
	require.NoError(t, err)
	assert.Equal(t, Str("é"), v)

	_, err = GetItem(NewDict(), Str("k"))
	require.Error(t, err)
	assert.Equal(t, "KeyError: 'k'", err.Error())

	require.NoError(t, SetItem(l, Int(0), Int(5)))
	assert.Equal(t, "[5, 20, 30]", Repr(l))
	assert.Error(t, SetItem(NewTuple(Int(1)), Int(0), Int(2)))
}

// call invokes a bound builtin method looked up on v.
func call(t *testing.T, v Value, name string, args ...Value) (Value, error) {
	t.Helper()
	m, err := GetAttr(v, name)
	require.NoError(t, err)
	bm, ok := m.(*BoundMethod)
	require.True(t, ok, "%s is %T", name, m)
	return bm.Fn.(*Builtin).Fn(append([]Value{bm.Self}, args...))
}

func TestListMethods(t *testing.T) {
	l := NewList(Int(3), Int(1))
	_, err := call(t, l, "append", Int(2))
	require.NoError(t, err)
	_, err = call(t, l, "sort")
	require.NoError(t, err)
	assert.Equal(t, "[1, 2, 3]", Repr(l))

	v, err := call(t, l, "pop")
	require.NoError(t, err)
	assert.Equal(t, Int(3), v)
	v, err = call(t, l, "index", Int(2))
	require.NoError(t, err)
	assert.Equal(t, Int(1), v)

	_, err = call(t, l, "remove", Int(9))
	assert.Error(t, err)
	_, err = call(t, NewList(), "pop")
	assert.Error(t, err)

	_, err = call(t, NewList(Int(1), Str("a")), "sort")
	assert.Error(t, err)
}

func TestDictMethods(t *testing.T) {
	d := NewDict()
	require.NoError(t, d.Set(Str("a"), Int(1)))
	v, err := call(t, d, "get", Str("b"), Int(0))
	require.NoError(t, err)
	assert.Equal(t, Int(0), v)

	v, err = call(t, d, "setdefault", Str("b"), Int(2))
	require.NoError(t, err)
	assert.Equal(t, Int(2), v)

	v, err = call(t, d, "items")
	require.NoError(t, err)
	assert.Equal(t, "[('a', 1), ('b', 2)]", Repr(v))

	_, err = call(t, d, "pop", Str("zz"))
	assert.Error(t, err)
}

func TestStrMethods(t *testing.T) {
	tests := []struct {
		recv string
		name string
		args []Value
		want string
	}{
		{"Hello", "upper", nil, "'HELLO'"},
		{"  x ", "strip", nil, "'x'"},
		{"a b  c", "split", nil, "['a', 'b', 'c']"},
		{",", "join", []Value{NewList(Str("a"), Str("b"))}, "'a,b'"},
		{"héllo", "find", []Value{Str("l")}, "2"},
		{"{} and {0}", "format", []Value{Int(1)}, "'1 and 1'"},
		{"abc", "startswith", []Value{Str("ab")}, "True"},
		{"123", "isdigit", nil, "True"},
	}
	for _, tc := range tests {
		v, err := call(t, Str(tc.recv), tc.name, tc.args...)
		require.NoError(t, err, tc.name)
		assert.Equal(t, tc.want, Repr(v), tc.name)
	}
}

func TestConstructors(t *testing.T) {
	v, err := IntType.New([]Value{Str(" 42 ")})
	require.NoError(t, err)
	assert.Equal(t, Int(42), v)

	v, err = IntType.New([]Value{Float(-2.7)})
	require.NoError(t, err)
	assert.Equal(t, Int(-2), v)

	_, err = IntType.New([]Value{Str("x")})
	assert.Error(t, err)

	v, err = FloatType.New([]Value{Str("1.5")})
	require.NoError(t, err)
	assert.Equal(t, Float(1.5), v)

	v, err = ListType.New([]Value{Str("ab")})
	require.NoError(t, err)
	assert.Equal(t, "['a', 'b']", Repr(v))

	v, err = DictType.New([]Value{NewList(NewTuple(Str("k"), Int(1)))})
	require.NoError(t, err)
	assert.Equal(t, "{'k': 1}", Repr(v))

	v, err = TypeType.New([]Value{NewList()})
	require.NoError(t, err)
	assert.Equal(t, ListType, v)
}

func TestSetAttrOnBuiltinClass(t *testing.T) {
	for _, cls := range []*Class{ObjectType, IntType, BaseException, KeyError, Interrupt} {
		err := SetAttr(cls, "tag", Int(1))
		var ve *Error
		require.ErrorAs(t, err, &ve, cls.Name)
		assert.Equal(t, TypeError, ve.Class)
		assert.False(t, cls.Dict.Has("tag"))
	}

	user := NewClass("E", KeyError)
	require.NoError(t, SetAttr(user, "tag", Int(1)))
	v, err := GetAttr(user, "tag")
	require.NoError(t, err)
	assert.Equal(t, Int(1), v)
}

func TestNamespace(t *testing.T) {
	ns := NewNamespace()
	ns.Set("b", Int(1))
	ns.Set("a", Int(2))
	ns.Set("b", Int(3))
	assert.Equal(t, []string{"b", "a"}, ns.Names())

	c := ns.Clone()
	c.Set("c", Int(4))
	assert.False(t, ns.Has("c"))

	ns.Delete("b")
	assert.Equal(t, []string{"a"}, ns.Names())
	assert.Equal(t, 1, ns.Len())
}
