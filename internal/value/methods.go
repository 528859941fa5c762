// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"nickandperla.net/pyphon/internal/ast"
)

// CheckArgs validates the number of arguments passed to a builtin.
func CheckArgs(name string, args []Value, min, max int) error {
	n := len(args)
	if n >= min && (max < 0 || n <= max) {
		return nil
	}
	plural := func(k int) string {
		if k == 1 {
			return "argument"
		}
		return "arguments"
	}
	switch {
	case min == max:
		return Errorf(TypeError, "%s() takes exactly %d %s (%d given)", name, min, plural(min), n)
	case n < min:
		return Errorf(TypeError, "%s() takes at least %d %s (%d given)", name, min, plural(min), n)
	}
	return Errorf(TypeError, "%s() takes at most %d %s (%d given)", name, max, plural(max), n)
}

// method registers a builtin method on a builtin type. The receiver is
// args[0] and is not counted against min and max.
func method(cls *Class, name string, min, max int, fn NativeFunc) {
	cls.Dict.Set(name, &Builtin{Name: name, Fn: func(args []Value) (Value, error) {
		if len(args) == 0 || !TypeOf(args[0]).IsSubclass(cls) {
			return nil, Errorf(TypeError, "descriptor '%s' requires a '%s' object", name, cls.Name)
		}
		if err := CheckArgs(name, args[1:], min, max); err != nil {
			return nil, err
		}
		return fn(args)
	}})
}

func init() {
	initConstructors()
	initListMethods()
	initDictMethods()
	initSetMethods()
	initStrMethods()
	initTupleMethods()
}

func initConstructors() {
	ObjectType.New = func(args []Value) (Value, error) {
		if err := CheckArgs("object", args, 0, 0); err != nil {
			return nil, err
		}
		return NewInstance(ObjectType), nil
	}
	TypeType.New = func(args []Value) (Value, error) {
		if err := CheckArgs("type", args, 1, 1); err != nil {
			return nil, err
		}
		return TypeOf(args[0]), nil
	}
	NoneType.New = func(args []Value) (Value, error) {
		if err := CheckArgs("NoneType", args, 0, 0); err != nil {
			return nil, err
		}
		return None, nil
	}
	IntType.New = func(args []Value) (Value, error) {
		if err := CheckArgs("int", args, 0, 1); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return Int(0), nil
		}
		return ToInt(args[0])
	}
	BoolType.New = func(args []Value) (Value, error) {
		if err := CheckArgs("bool", args, 0, 1); err != nil {
			return nil, err
		}
		return Bool(len(args) == 1 && Truthy(args[0])), nil
	}
	FloatType.New = func(args []Value) (Value, error) {
		if err := CheckArgs("float", args, 0, 1); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return Float(0), nil
		}
		return ToFloat(args[0])
	}
	StrType.New = func(args []Value) (Value, error) {
		if err := CheckArgs("str", args, 0, 1); err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return Str(""), nil
		}
		return Str(StrOf(args[0])), nil
	}
	TupleType.New = func(args []Value) (Value, error) {
		elts, err := optionalIterable("tuple", args)
		if err != nil {
			return nil, err
		}
		if t, ok := args0(args).(*Tuple); ok {
			return t, nil
		}
		return NewTuple(elts...), nil
	}
	ListType.New = func(args []Value) (Value, error) {
		elts, err := optionalIterable("list", args)
		if err != nil {
			return nil, err
		}
		return NewList(elts...), nil
	}
	SetType.New = func(args []Value) (Value, error) {
		elts, err := optionalIterable("set", args)
		if err != nil {
			return nil, err
		}
		s := NewSet()
		for _, e := range elts {
			if err := s.Add(e); err != nil {
				return nil, err
			}
		}
		return s, nil
	}
	DictType.New = func(args []Value) (Value, error) {
		if err := CheckArgs("dict", args, 0, 1); err != nil {
			return nil, err
		}
		d := NewDict()
		if len(args) == 0 {
			return d, nil
		}
		return d, dictUpdate(d, args[0])
	}
	FunctionType.New = cannotCreate(FunctionType)
	BuiltinType.New = cannotCreate(BuiltinType)
	MethodType.New = cannotCreate(MethodType)
}

func cannotCreate(cls *Class) NativeFunc {
	return func([]Value) (Value, error) {
		return nil, Errorf(TypeError, "cannot create '%s' instances", cls.Name)
	}
}

func args0(args []Value) Value {
	if len(args) == 0 {
		return nil
	}
	return args[0]
}

func optionalIterable(name string, args []Value) ([]Value, error) {
	if err := CheckArgs(name, args, 0, 1); err != nil {
		return nil, err
	}
	if len(args) == 0 {
		return nil, nil
	}
	return Iterate(args[0])
}

// ToInt converts v as int(v) does.
func ToInt(v Value) (Value, error) {
	switch v := v.(type) {
	case Int:
		return v, nil
	case Bool:
		if v {
			return Int(1), nil
		}
		return Int(0), nil
	case Float:
		f := float64(v)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, Errorf(ValueError, "cannot convert float %s to integer", FormatFloat(f))
		}
		return Int(int64(f)), nil
	case Str:
		s := strings.TrimSpace(string(v))
		n, err := strconv.ParseInt(strings.ReplaceAll(s, "_", ""), 10, 64)
		if err != nil || s == "" || strings.HasPrefix(s, "_") {
			return nil, Errorf(ValueError, "invalid literal for int() with base 10: %s", Quote(string(v)))
		}
		return Int(n), nil
	}
	return nil, Errorf(TypeError, "int() argument must be a string or a number, not '%s'", TypeName(v))
}

// ToFloat converts v as float(v) does.
func ToFloat(v Value) (Value, error) {
	switch v := v.(type) {
	case Int:
		return Float(v), nil
	case Bool:
		if v {
			return Float(1), nil
		}
		return Float(0), nil
	case Float:
		return v, nil
	case Str:
		s := strings.ToLower(strings.TrimSpace(string(v)))
		switch s {
		case "inf", "+inf", "infinity":
			return Float(math.Inf(1)), nil
		case "-inf", "-infinity":
			return Float(math.Inf(-1)), nil
		case "nan":
			return Float(math.NaN()), nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, Errorf(ValueError, "could not convert string to float: %s", Quote(string(v)))
		}
		return Float(f), nil
	}
	return nil, Errorf(TypeError, "float() argument must be a string or a number, not '%s'", TypeName(v))
}

// dictUpdate copies entries from a dict or an iterable of pairs.
func dictUpdate(d *Dict, src Value) error {
	if other, ok := src.(*Dict); ok {
		for _, e := range other.t.entries {
			if err := d.Set(e.key, e.val); err != nil {
				return err
			}
		}
		return nil
	}
	items, err := Iterate(src)
	if err != nil {
		return err
	}
	for i, item := range items {
		pair, err := Iterate(item)
		if err != nil {
			return Errorf(TypeError, "cannot convert dictionary update sequence element #%d to a sequence", i)
		}
		if len(pair) != 2 {
			return Errorf(ValueError, "dictionary update sequence element #%d has length %d; 2 is required", i, len(pair))
		}
		if err := d.Set(pair[0], pair[1]); err != nil {
			return err
		}
	}
	return nil
}

// SortValues sorts elts in place in ascending order.
func SortValues(elts []Value) error {
	var err error
	sort.SliceStable(elts, func(i, j int) bool {
		if err != nil {
			return false
		}
		c, cerr := Compare(ast.Lt, elts[i], elts[j])
		if cerr != nil {
			err = cerr
			return false
		}
		return c < 0
	})
	return err
}

func initListMethods() {
	method(ListType, "append", 1, 1, func(args []Value) (Value, error) {
		l := args[0].(*List)
		l.Elts = append(l.Elts, args[1])
		return None, nil
	})
	method(ListType, "extend", 1, 1, func(args []Value) (Value, error) {
		l := args[0].(*List)
		elts, err := Iterate(args[1])
		if err != nil {
			return nil, err
		}
		if err := l.Extend(elts); err != nil {
			return nil, err
		}
		return None, nil
	})
	method(ListType, "insert", 2, 2, func(args []Value) (Value, error) {
		l := args[0].(*List)
		n, ok := args[1].(Int)
		if !ok {
			return nil, Errorf(TypeError, "list indices must be integers, not %s", TypeName(args[1]))
		}
		i := int(n)
		if i < 0 {
			i += len(l.Elts)
		}
		i = max(0, min(i, len(l.Elts)))
		l.Elts = append(l.Elts, nil)
		copy(l.Elts[i+1:], l.Elts[i:])
		l.Elts[i] = args[2]
		return None, nil
	})
	method(ListType, "pop", 0, 1, func(args []Value) (Value, error) {
		l := args[0].(*List)
		if len(l.Elts) == 0 {
			return nil, Errorf(IndexError, "pop from empty list")
		}
		i := len(l.Elts) - 1
		if len(args) == 2 {
			var err error
			if i, err = index(args[1], len(l.Elts), "pop"); err != nil {
				return nil, err
			}
		}
		v := l.Elts[i]
		l.Elts = append(l.Elts[:i], l.Elts[i+1:]...)
		return v, nil
	})
	method(ListType, "remove", 1, 1, func(args []Value) (Value, error) {
		l := args[0].(*List)
		for i, e := range l.Elts {
			eq, err := Equal(e, args[1])
			if err != nil {
				return nil, err
			}
			if eq {
				l.Elts = append(l.Elts[:i], l.Elts[i+1:]...)
				return None, nil
			}
		}
		return nil, Errorf(ValueError, "list.remove(x): x not in list")
	})
	method(ListType, "index", 1, 1, func(args []Value) (Value, error) {
		return indexOf(args[0].(*List).Elts, args[1], "list")
	})
	method(ListType, "count", 1, 1, func(args []Value) (Value, error) {
		return countOf(args[0].(*List).Elts, args[1])
	})
	method(ListType, "reverse", 0, 0, func(args []Value) (Value, error) {
		elts := args[0].(*List).Elts
		for i, j := 0, len(elts)-1; i < j; i, j = i+1, j-1 {
			elts[i], elts[j] = elts[j], elts[i]
		}
		return None, nil
	})
	method(ListType, "sort", 0, 0, func(args []Value) (Value, error) {
		return None, SortValues(args[0].(*List).Elts)
	})
}

func indexOf(elts []Value, x Value, what string) (Value, error) {
	for i, e := range elts {
		eq, err := Equal(e, x)
		if err != nil {
			return nil, err
		}
		if eq {
			return Int(i), nil
		}
	}
	if what == "list" {
		return nil, Errorf(ValueError, "%s is not in list", Repr(x))
	}
	return nil, Errorf(ValueError, "%s.index(x): x not in %s", what, what)
}

func countOf(elts []Value, x Value) (Value, error) {
	n := 0
	for _, e := range elts {
		eq, err := Equal(e, x)
		if err != nil {
			return nil, err
		}
		if eq {
			n++
		}
	}
	return Int(n), nil
}

func initDictMethods() {
	method(DictType, "keys", 0, 0, func(args []Value) (Value, error) {
		return NewList(args[0].(*Dict).Keys()...), nil
	})
	method(DictType, "values", 0, 0, func(args []Value) (Value, error) {
		return NewList(args[0].(*Dict).Values()...), nil
	})
	method(DictType, "items", 0, 0, func(args []Value) (Value, error) {
		d := args[0].(*Dict)
		out := make([]Value, 0, d.Len())
		for _, e := range d.t.entries {
			out = append(out, NewTuple(e.key, e.val))
		}
		return NewList(out...), nil
	})
	method(DictType, "get", 1, 2, func(args []Value) (Value, error) {
		v, ok, err := args[0].(*Dict).Get(args[1])
		if err != nil {
			return nil, err
		}
		if ok {
			return v, nil
		}
		if len(args) == 3 {
			return args[2], nil
		}
		return None, nil
	})
	method(DictType, "pop", 1, 2, func(args []Value) (Value, error) {
		d := args[0].(*Dict)
		v, ok, err := d.Get(args[1])
		if err != nil {
			return nil, err
		}
		if !ok {
			if len(args) == 3 {
				return args[2], nil
			}
			return nil, keyError(args[1])
		}
		_, err = d.Delete(args[1])
		return v, err
	})
	method(DictType, "setdefault", 1, 2, func(args []Value) (Value, error) {
		d := args[0].(*Dict)
		v, ok, err := d.Get(args[1])
		if err != nil || ok {
			return v, err
		}
		def := None
		if len(args) == 3 {
			def = args[2]
		}
		return def, d.Set(args[1], def)
	})
	method(DictType, "update", 1, 1, func(args []Value) (Value, error) {
		return None, dictUpdate(args[0].(*Dict), args[1])
	})
	method(DictType, "clear", 0, 0, func(args []Value) (Value, error) {
		args[0].(*Dict).Clear()
		return None, nil
	})
	method(DictType, "copy", 0, 0, func(args []Value) (Value, error) {
		return args[0].(*Dict).Copy(), nil
	})
}

func initSetMethods() {
	method(SetType, "add", 1, 1, func(args []Value) (Value, error) {
		return None, args[0].(*Set).Add(args[1])
	})
	method(SetType, "remove", 1, 1, func(args []Value) (Value, error) {
		ok, err := args[0].(*Set).Remove(args[1])
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, keyError(args[1])
		}
		return None, nil
	})
	method(SetType, "discard", 1, 1, func(args []Value) (Value, error) {
		_, err := args[0].(*Set).Remove(args[1])
		return None, err
	})
	method(SetType, "pop", 0, 0, func(args []Value) (Value, error) {
		s := args[0].(*Set)
		if s.Len() == 0 {
			return nil, Errorf(KeyError, "pop from an empty set")
		}
		v := s.t.entries[0].key
		_, err := s.Remove(v)
		return v, err
	})
	method(SetType, "clear", 0, 0, func(args []Value) (Value, error) {
		args[0].(*Set).Clear()
		return None, nil
	})
	method(SetType, "copy", 0, 0, func(args []Value) (Value, error) {
		return args[0].(*Set).Copy(), nil
	})
	method(SetType, "union", 0, -1, func(args []Value) (Value, error) {
		out := args[0].(*Set).Copy()
		for _, other := range args[1:] {
			elts, err := Iterate(other)
			if err != nil {
				return nil, err
			}
			for _, e := range elts {
				if err := out.Add(e); err != nil {
					return nil, err
				}
			}
		}
		return out, nil
	})
	method(SetType, "intersection", 0, -1, func(args []Value) (Value, error) {
		out := args[0].(*Set).Copy()
		for _, other := range args[1:] {
			elts, err := Iterate(other)
			if err != nil {
				return nil, err
			}
			keep := NewSet()
			for _, e := range elts {
				if in, err := out.Contains(e); err != nil {
					return nil, err
				} else if in {
					if err := keep.Add(e); err != nil {
						return nil, err
					}
				}
			}
			out = keep
		}
		return out, nil
	})
}

func strArg(name string, v Value) (string, error) {
	s, ok := v.(Str)
	if !ok {
		return "", Errorf(TypeError, "%s() argument must be str, not %s", name, TypeName(v))
	}
	return string(s), nil
}

// strFunc registers a str method taking only string arguments.
func strFunc(name string, min, max int, fn func(s string, args []string) (Value, error)) {
	method(StrType, name, min, max, func(args []Value) (Value, error) {
		strs := make([]string, 0, len(args)-1)
		for _, a := range args[1:] {
			s, err := strArg(name, a)
			if err != nil {
				return nil, err
			}
			strs = append(strs, s)
		}
		return fn(string(args[0].(Str)), strs)
	})
}

func initStrMethods() {
	strFunc("upper", 0, 0, func(s string, _ []string) (Value, error) {
		return Str(strings.ToUpper(s)), nil
	})
	strFunc("lower", 0, 0, func(s string, _ []string) (Value, error) {
		return Str(strings.ToLower(s)), nil
	})
	trim := func(name string, cut func(string, string) string, space func(string) string) {
		strFunc(name, 0, 1, func(s string, args []string) (Value, error) {
			if len(args) == 1 {
				return Str(cut(s, args[0])), nil
			}
			return Str(space(s)), nil
		})
	}
	trim("strip", strings.Trim, strings.TrimSpace)
	trim("lstrip", strings.TrimLeft, func(s string) string { return strings.TrimLeftFunc(s, unicode.IsSpace) })
	trim("rstrip", strings.TrimRight, func(s string) string { return strings.TrimRightFunc(s, unicode.IsSpace) })
	strFunc("split", 0, 1, func(s string, args []string) (Value, error) {
		var parts []string
		if len(args) == 0 {
			parts = strings.Fields(s)
		} else {
			if args[0] == "" {
				return nil, Errorf(ValueError, "empty separator")
			}
			parts = strings.Split(s, args[0])
		}
		out := make([]Value, len(parts))
		for i, p := range parts {
			out[i] = Str(p)
		}
		return NewList(out...), nil
	})
	method(StrType, "join", 1, 1, func(args []Value) (Value, error) {
		elts, err := Iterate(args[1])
		if err != nil {
			return nil, err
		}
		parts := make([]string, len(elts))
		for i, e := range elts {
			s, ok := e.(Str)
			if !ok {
				return nil, Errorf(TypeError, "sequence item %d: expected str instance, %s found", i, TypeName(e))
			}
			parts[i] = string(s)
		}
		return Str(strings.Join(parts, string(args[0].(Str)))), nil
	})
	strFunc("startswith", 1, 1, func(s string, args []string) (Value, error) {
		return Bool(strings.HasPrefix(s, args[0])), nil
	})
	strFunc("endswith", 1, 1, func(s string, args []string) (Value, error) {
		return Bool(strings.HasSuffix(s, args[0])), nil
	})
	strFunc("replace", 2, 2, func(s string, args []string) (Value, error) {
		return Str(strings.ReplaceAll(s, args[0], args[1])), nil
	})
	strFunc("find", 1, 1, func(s string, args []string) (Value, error) {
		i := strings.Index(s, args[0])
		if i < 0 {
			return Int(-1), nil
		}
		return Int(len([]rune(s[:i]))), nil
	})
	strFunc("count", 1, 1, func(s string, args []string) (Value, error) {
		if args[0] == "" {
			return Int(len([]rune(s)) + 1), nil
		}
		return Int(strings.Count(s, args[0])), nil
	})
	strFunc("isdigit", 0, 0, func(s string, _ []string) (Value, error) {
		if s == "" {
			return False, nil
		}
		for _, r := range s {
			if !unicode.IsDigit(r) {
				return False, nil
			}
		}
		return True, nil
	})
	method(StrType, "format", 0, -1, func(args []Value) (Value, error) {
		return formatBraces(string(args[0].(Str)), args[1:])
	})
}

// formatBraces substitutes positional {} and {n} fields.
func formatBraces(s string, args []Value) (Value, error) {
	var sb strings.Builder
	auto := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '{' && i+1 < len(s) && s[i+1] == '{':
			sb.WriteByte('{')
			i++
		case c == '}' && i+1 < len(s) && s[i+1] == '}':
			sb.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return nil, Errorf(ValueError, "Single '{' encountered in format string")
			}
			field := s[i+1 : i+end]
			n := auto
			if field == "" {
				auto++
			} else {
				k, err := strconv.Atoi(field)
				if err != nil {
					return nil, Errorf(ValueError, "unsupported format field %s", Quote(field))
				}
				n = k
			}
			if n >= len(args) {
				return nil, Errorf(IndexError, "Replacement index %d out of range for positional args tuple", n)
			}
			sb.WriteString(StrOf(args[n]))
			i += end
		default:
			sb.WriteByte(c)
		}
	}
	return Str(sb.String()), nil
}

func initTupleMethods() {
	method(TupleType, "index", 1, 1, func(args []Value) (Value, error) {
		return indexOf(args[0].(*Tuple).Elts, args[1], "tuple")
	})
	method(TupleType, "count", 1, 1, func(args []Value) (Value, error) {
		return countOf(args[0].(*Tuple).Elts, args[1])
	})
}
