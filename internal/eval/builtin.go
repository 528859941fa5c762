package eval

import (
	"strings"

	"nickandperla.net/pyphon/internal/value"
)

// BuiltinFunc is the signature for native builtin functions.
type BuiltinFunc func(e *Evaluator, args []value.Value) (value.Value, error)

// maxRange bounds the list built by range.
const maxRange = 1 << 24

// getBuiltin returns the native builtin for the given name, or nil if not found.
func getBuiltin(name string) BuiltinFunc {
	switch name {
	case "print":
		return builtinPrint
	case "len":
		return builtinLen
	case "range":
		return builtinRange
	case "repr":
		return builtinRepr
	case "isinstance":
		return builtinIsInstance
	case "sorted":
		return builtinSorted
	case "id":
		return builtinID
	case "hasattr":
		return builtinHasAttr
	case "getattr":
		return builtinGetAttr
	case "setattr":
		return builtinSetAttr
	case "enumerate":
		return builtinEnumerate
	case "callable":
		return builtinCallable
	}
	return nil
}

var builtinNames = []string{
	"print", "len", "range", "repr", "isinstance", "sorted",
	"id", "hasattr", "getattr", "setattr", "enumerate", "callable",
}

// installBuiltins binds the builtin types, the exception hierarchy and the
// native functions in the builtins namespace.
func (e *Evaluator) installBuiltins() {
	for _, cls := range value.Types() {
		e.builtins.Set(cls.Name, cls)
	}
	for _, cls := range value.Exceptions() {
		e.builtins.Set(cls.Name, cls)
	}
	for _, name := range builtinNames {
		fn := getBuiltin(name)
		e.builtins.Set(name, &value.Builtin{
			Name: name,
			Fn:   func(args []value.Value) (value.Value, error) { return fn(e, args) },
		})
	}
	e.builtins.Set("None", value.None)
	e.builtins.Set("True", value.True)
	e.builtins.Set("False", value.False)
}

func builtinPrint(e *Evaluator, args []value.Value) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = value.StrOf(a)
	}
	if e.outputWriter != nil {
		if err := e.outputWriter(strings.Join(parts, " ") + "\n"); err != nil {
			return nil, err
		}
	}
	return value.None, nil
}

func builtinLen(e *Evaluator, args []value.Value) (value.Value, error) {
	if err := value.CheckArgs("len", args, 1, 1); err != nil {
		return nil, err
	}
	n, err := value.Len(args[0])
	if err != nil {
		return nil, err
	}
	return value.Int(n), nil
}

func builtinRange(e *Evaluator, args []value.Value) (value.Value, error) {
	if err := value.CheckArgs("range", args, 1, 3); err != nil {
		return nil, err
	}
	bounds := make([]int64, len(args))
	for i, a := range args {
		switch a := a.(type) {
		case value.Int:
			bounds[i] = int64(a)
		case value.Bool:
			if a {
				bounds[i] = 1
			}
		default:
			return nil, value.Errorf(value.TypeError, "range() integer argument expected, got %s", value.TypeName(a))
		}
	}
	start, stop, step := int64(0), bounds[0], int64(1)
	if len(bounds) > 1 {
		start, stop = bounds[0], bounds[1]
	}
	if len(bounds) > 2 {
		step = bounds[2]
	}
	if step == 0 {
		return nil, value.Errorf(value.ValueError, "range() arg 3 must not be zero")
	}
	var n int64
	if step > 0 && start < stop {
		n = (stop - start + step - 1) / step
	} else if step < 0 && start > stop {
		n = (start - stop - step - 1) / -step
	}
	if n > maxRange {
		return nil, value.Errorf(value.ValueError, "range() too large")
	}
	elts := make([]value.Value, n)
	for i := range elts {
		elts[i] = value.Int(start + int64(i)*step)
	}
	return value.NewList(elts...), nil
}

func builtinRepr(e *Evaluator, args []value.Value) (value.Value, error) {
	if err := value.CheckArgs("repr", args, 1, 1); err != nil {
		return nil, err
	}
	return value.Str(value.Repr(args[0])), nil
}

func builtinIsInstance(e *Evaluator, args []value.Value) (value.Value, error) {
	if err := value.CheckArgs("isinstance", args, 2, 2); err != nil {
		return nil, err
	}
	ok, err := value.IsInstance(args[0], args[1])
	if err != nil {
		return nil, err
	}
	return value.Bool(ok), nil
}

func builtinSorted(e *Evaluator, args []value.Value) (value.Value, error) {
	if err := value.CheckArgs("sorted", args, 1, 1); err != nil {
		return nil, err
	}
	elts, err := value.Iterate(args[0])
	if err != nil {
		return nil, err
	}
	if err := value.SortValues(elts); err != nil {
		return nil, err
	}
	return value.NewList(elts...), nil
}

// builtinID numbers objects in the order they are first asked about.
// Scalars share an id when they are the same value.
func builtinID(e *Evaluator, args []value.Value) (value.Value, error) {
	if err := value.CheckArgs("id", args, 1, 1); err != nil {
		return nil, err
	}
	if id, ok := e.ids[args[0]]; ok {
		return value.Int(id), nil
	}
	id := int64(len(e.ids) + 1)
	e.ids[args[0]] = id
	return value.Int(id), nil
}

func attrName(fn string, v value.Value) (string, error) {
	s, ok := v.(value.Str)
	if !ok {
		return "", value.Errorf(value.TypeError, "%s(): attribute name must be string", fn)
	}
	return string(s), nil
}

func builtinHasAttr(e *Evaluator, args []value.Value) (value.Value, error) {
	if err := value.CheckArgs("hasattr", args, 2, 2); err != nil {
		return nil, err
	}
	name, err := attrName("hasattr", args[1])
	if err != nil {
		return nil, err
	}
	return value.Bool(value.HasAttr(args[0], name)), nil
}

func builtinGetAttr(e *Evaluator, args []value.Value) (value.Value, error) {
	if err := value.CheckArgs("getattr", args, 2, 3); err != nil {
		return nil, err
	}
	name, err := attrName("getattr", args[1])
	if err != nil {
		return nil, err
	}
	v, err := value.GetAttr(args[0], name)
	if err != nil && len(args) == 3 {
		return args[2], nil
	}
	return v, err
}

func builtinSetAttr(e *Evaluator, args []value.Value) (value.Value, error) {
	if err := value.CheckArgs("setattr", args, 3, 3); err != nil {
		return nil, err
	}
	name, err := attrName("setattr", args[1])
	if err != nil {
		return nil, err
	}
	if err := value.SetAttr(args[0], name, args[2]); err != nil {
		return nil, err
	}
	return value.None, nil
}

func builtinEnumerate(e *Evaluator, args []value.Value) (value.Value, error) {
	if err := value.CheckArgs("enumerate", args, 1, 1); err != nil {
		return nil, err
	}
	elts, err := value.Iterate(args[0])
	if err != nil {
		return nil, err
	}
	out := make([]value.Value, len(elts))
	for i, v := range elts {
		out[i] = value.NewTuple(value.Int(i), v)
	}
	return value.NewList(out...), nil
}

func builtinCallable(e *Evaluator, args []value.Value) (value.Value, error) {
	if err := value.CheckArgs("callable", args, 1, 1); err != nil {
		return nil, err
	}
	switch args[0].(type) {
	case *value.Function, *value.Builtin, *value.BoundMethod, *value.Class:
		return value.True, nil
	}
	return value.False, nil
}
