// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package value defines the runtime values of pyphon.
//
// Value is a closed set of variants tagged by Kind. Scalars (None, Bool,
// Int, Float, Str) are Go values; every composite, callable, class and
// instance is a pointer, so aliasing and identity are observable.
package value

import (
	"nickandperla.net/pyphon/internal/ast"
)

// Kind tags a value variant.
type Kind int

const (
	NoneKind Kind = iota
	BoolKind
	IntKind
	FloatKind
	StrKind
	TupleKind
	ListKind
	SetKind
	DictKind
	FunctionKind
	BuiltinKind
	ClassKind
	InstanceKind
	MethodKind
)

// Value is any pyphon runtime value.
type Value interface {
	Kind() Kind
}

// NoneValue is the type of the None singleton.
type NoneValue struct{}

// Bool is True or False.
type Bool bool

// Int is a machine integer.
type Int int64

// Float is a machine float.
type Float float64

// Str is an immutable string.
type Str string

// None is the only NoneValue.
var None Value = NoneValue{}

const (
	True  = Bool(true)
	False = Bool(false)
)

// Tuple is an immutable sequence.
type Tuple struct {
	Elts []Value
}

// List is a mutable sequence.
type List struct {
	Elts []Value
}

// Set is an insertion-ordered set of hashable values.
type Set struct {
	t table
}

// Dict is an insertion-ordered mapping from hashable keys to values.
type Dict struct {
	t table
}

// Function is a user-defined function. Globals is the module namespace
// current when the def statement ran.
type Function struct {
	Name    string
	Params  []string
	Body    *ast.Suite
	Globals *Namespace
	Line    int
}

// NativeFunc implements a builtin. Methods receive their receiver as
// args[0]. A returned *Error is raised as an instance of its class.
type NativeFunc func(args []Value) (Value, error)

// Builtin is a function implemented in Go.
type Builtin struct {
	Name string
	Fn   NativeFunc
}

// Instance is an object of a user-defined or exception class.
type Instance struct {
	Class *Class
	Attrs *Namespace
}

// BoundMethod pairs a receiver with the function found on its class.
type BoundMethod struct {
	Self Value
	Fn   Value // *Function or *Builtin
}

func (NoneValue) Kind() Kind    { return NoneKind }
func (Bool) Kind() Kind         { return BoolKind }
func (Int) Kind() Kind          { return IntKind }
func (Float) Kind() Kind        { return FloatKind }
func (Str) Kind() Kind          { return StrKind }
func (*Tuple) Kind() Kind       { return TupleKind }
func (*List) Kind() Kind        { return ListKind }
func (*Set) Kind() Kind         { return SetKind }
func (*Dict) Kind() Kind        { return DictKind }
func (*Function) Kind() Kind    { return FunctionKind }
func (*Builtin) Kind() Kind     { return BuiltinKind }
func (*Class) Kind() Kind       { return ClassKind }
func (*Instance) Kind() Kind    { return InstanceKind }
func (*BoundMethod) Kind() Kind { return MethodKind }

// NewTuple returns a tuple holding elts.
func NewTuple(elts ...Value) *Tuple {
	return &Tuple{Elts: elts}
}

// NewList returns a list holding elts.
func NewList(elts ...Value) *List {
	return &List{Elts: elts}
}

// NewSet returns an empty set.
func NewSet() *Set {
	return &Set{t: newTable()}
}

// NewDict returns an empty dict.
func NewDict() *Dict {
	return &Dict{t: newTable()}
}

// NewInstance returns an instance of cls with no attributes.
func NewInstance(cls *Class) *Instance {
	return &Instance{Class: cls, Attrs: NewNamespace()}
}

// Len returns the number of members of the set.
func (s *Set) Len() int { return s.t.len() }

// Add inserts v. It fails for unhashable values.
func (s *Set) Add(v Value) error {
	return s.t.set(v, None)
}

// Contains reports whether v is a member.
func (s *Set) Contains(v Value) (bool, error) {
	_, ok, err := s.t.get(v)
	return ok, err
}

// Remove deletes v and reports whether it was present.
func (s *Set) Remove(v Value) (bool, error) {
	return s.t.remove(v)
}

// Elts returns the members in insertion order.
func (s *Set) Elts() []Value { return s.t.keys() }

// Clear removes every member.
func (s *Set) Clear() { s.t = newTable() }

// Len returns the number of entries.
func (d *Dict) Len() int { return d.t.len() }

// Get returns the value stored under k.
func (d *Dict) Get(k Value) (Value, bool, error) {
	return d.t.get(k)
}

// Set stores v under k, keeping the position of an existing key.
func (d *Dict) Set(k, v Value) error {
	return d.t.set(k, v)
}

// Delete removes k and reports whether it was present.
func (d *Dict) Delete(k Value) (bool, error) {
	return d.t.remove(k)
}

// Keys returns the keys in insertion order.
func (d *Dict) Keys() []Value { return d.t.keys() }

// Values returns the values in insertion order.
func (d *Dict) Values() []Value { return d.t.values() }

// Clear removes every entry.
func (d *Dict) Clear() { d.t = newTable() }

// Copy returns a shallow copy.
func (d *Dict) Copy() *Dict {
	return &Dict{t: d.t.clone()}
}

// Copy returns a shallow copy.
func (s *Set) Copy() *Set {
	return &Set{t: s.t.clone()}
}
