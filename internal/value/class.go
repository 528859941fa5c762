// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

import (
	"fmt"
)

// Class is a user-defined class, an exception class or a builtin type.
// Builtin types have a native constructor in New and cannot be subclassed.
type Class struct {
	Name  string
	Super *Class // nil only for object
	Dict  *Namespace
	New   NativeFunc

	builtin bool // shared by every runtime, so its Dict is read-only
}

// NewClass creates a class whose superclass is super, or object when nil.
func NewClass(name string, super *Class) *Class {
	if super == nil && ObjectType != nil {
		super = ObjectType
	}
	return &Class{Name: name, Super: super, Dict: NewNamespace()}
}

// Lookup finds name in the class or its superclass chain.
func (c *Class) Lookup(name string) (Value, bool) {
	for k := c; k != nil; k = k.Super {
		if v, ok := k.Dict.Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

// IsSubclass reports whether c is other or derives from it.
func (c *Class) IsSubclass(other *Class) bool {
	for k := c; k != nil; k = k.Super {
		if k == other {
			return true
		}
	}
	return false
}

// IsException reports whether instances of c can be raised as exceptions.
func (c *Class) IsException() bool {
	return c.IsSubclass(BaseException)
}

// Error is a runtime failure raised from Go code. The evaluator turns it
// into an instance of Class with Msg as its single argument.
type Error struct {
	Class *Class
	Msg   string
	Arg   Value // exception argument; a Str of Msg when nil
}

func (e *Error) Error() string {
	return e.Class.Name + ": " + e.Msg
}

// keyError reports a missing mapping key, keeping the key as the argument.
func keyError(key Value) *Error {
	return &Error{Class: KeyError, Msg: Repr(key), Arg: key}
}

// Errorf creates an *Error of class cls.
func Errorf(cls *Class, format string, args ...any) *Error {
	return &Error{Class: cls, Msg: fmt.Sprintf(format, args...)}
}

func newType(name string, super *Class) *Class {
	return &Class{Name: name, Super: super, Dict: NewNamespace(), builtin: true}
}

// Builtin types.
var (
	ObjectType   = newType("object", nil)
	TypeType     = newType("type", ObjectType)
	NoneType     = newType("NoneType", ObjectType)
	IntType      = newType("int", ObjectType)
	BoolType     = newType("bool", IntType)
	FloatType    = newType("float", ObjectType)
	StrType      = newType("str", ObjectType)
	TupleType    = newType("tuple", ObjectType)
	ListType     = newType("list", ObjectType)
	SetType      = newType("set", ObjectType)
	DictType     = newType("dict", ObjectType)
	FunctionType = newType("function", ObjectType)
	BuiltinType  = newType("builtin_function_or_method", ObjectType)
	MethodType   = newType("method", ObjectType)
)

// Exception classes.
var (
	BaseException     = newType("BaseException", ObjectType)
	Exception         = newType("Exception", BaseException)
	TypeError         = newType("TypeError", Exception)
	NameError         = newType("NameError", Exception)
	AttributeError    = newType("AttributeError", Exception)
	ValueError        = newType("ValueError", Exception)
	ArithmeticError   = newType("ArithmeticError", Exception)
	ZeroDivisionError = newType("ZeroDivisionError", ArithmeticError)
	LookupError       = newType("LookupError", Exception)
	KeyError          = newType("KeyError", LookupError)
	IndexError        = newType("IndexError", LookupError)
	RuntimeError      = newType("RuntimeError", Exception)
	RecursionError    = newType("RecursionError", RuntimeError)
	StopIteration     = newType("StopIteration", Exception)
	AssertionError    = newType("AssertionError", Exception)

	// Interrupt aborts a cancelled run. No except clause matches it.
	Interrupt = newType("Interrupt", BaseException)
)

// Types lists the builtin types bound by name in the builtins namespace.
func Types() []*Class {
	return []*Class{
		ObjectType, TypeType, IntType, BoolType, FloatType, StrType,
		TupleType, ListType, SetType, DictType,
	}
}

// Exceptions lists the exception classes bound by name in the builtins
// namespace. Interrupt is not among them.
func Exceptions() []*Class {
	return []*Class{
		BaseException, Exception, TypeError, NameError, AttributeError,
		ValueError, ArithmeticError, ZeroDivisionError, LookupError,
		KeyError, IndexError, RuntimeError, RecursionError, StopIteration,
		AssertionError,
	}
}

// TypeOf returns the class of v.
func TypeOf(v Value) *Class {
	switch v := v.(type) {
	case NoneValue:
		return NoneType
	case Bool:
		return BoolType
	case Int:
		return IntType
	case Float:
		return FloatType
	case Str:
		return StrType
	case *Tuple:
		return TupleType
	case *List:
		return ListType
	case *Set:
		return SetType
	case *Dict:
		return DictType
	case *Function:
		return FunctionType
	case *Builtin:
		return BuiltinType
	case *Class:
		return TypeType
	case *Instance:
		return v.Class
	case *BoundMethod:
		return MethodType
	}
	return ObjectType
}

// TypeName returns the name of v's class.
func TypeName(v Value) string {
	return TypeOf(v).Name
}

// IsInstance reports whether v is an instance of classinfo, a class or a
// tuple of classes.
func IsInstance(v Value, classinfo Value) (bool, error) {
	switch ci := classinfo.(type) {
	case *Class:
		return TypeOf(v).IsSubclass(ci), nil
	case *Tuple:
		for _, e := range ci.Elts {
			ok, err := IsInstance(v, e)
			if err != nil || ok {
				return ok, err
			}
		}
		return false, nil
	}
	return false, Errorf(TypeError, "isinstance() arg 2 must be a type or tuple of types")
}

// NewException builds an exception instance with args bound as a tuple.
func NewException(cls *Class, args ...Value) *Instance {
	inst := NewInstance(cls)
	inst.Attrs.Set("args", NewTuple(args...))
	return inst
}

// ExceptionMessage returns the display text of an exception instance.
func ExceptionMessage(inst *Instance) string {
	args, ok := inst.Attrs.Get("args")
	if !ok {
		return ""
	}
	t, ok := args.(*Tuple)
	if !ok {
		return StrOf(args)
	}
	switch len(t.Elts) {
	case 0:
		return ""
	case 1:
		if inst.Class.IsSubclass(KeyError) {
			return Repr(t.Elts[0])
		}
		return StrOf(t.Elts[0])
	}
	return Repr(t)
}
