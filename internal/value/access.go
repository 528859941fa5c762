// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

// Len returns the length of a string or collection.
func Len(v Value) (int, error) {
	switch v := v.(type) {
	case Str:
		return len([]rune(string(v))), nil
	case *Tuple:
		return len(v.Elts), nil
	case *List:
		return len(v.Elts), nil
	case *Set:
		return v.Len(), nil
	case *Dict:
		return v.Len(), nil
	}
	return 0, Errorf(TypeError, "object of type '%s' has no len()", TypeName(v))
}

// Iterate returns a snapshot of v's elements in iteration order: sequence
// order for str, tuple and list; insertion order for dict keys and sets.
func Iterate(v Value) ([]Value, error) {
	switch v := v.(type) {
	case Str:
		runes := []rune(string(v))
		out := make([]Value, len(runes))
		for i, r := range runes {
			out[i] = Str(string(r))
		}
		return out, nil
	case *Tuple:
		return append([]Value(nil), v.Elts...), nil
	case *List:
		return append([]Value(nil), v.Elts...), nil
	case *Set:
		return v.Elts(), nil
	case *Dict:
		return v.Keys(), nil
	}
	return nil, Errorf(TypeError, "'%s' object is not iterable", TypeName(v))
}

// index normalizes a possibly negative sequence index.
func index(idx Value, n int, what string) (int, error) {
	var i int64
	switch idx := idx.(type) {
	case Int:
		i = int64(idx)
	case Bool:
		if idx {
			i = 1
		}
	default:
		return 0, Errorf(TypeError, "%s indices must be integers, not %s", what, TypeName(idx))
	}
	if i < 0 {
		i += int64(n)
	}
	if i < 0 || i >= int64(n) {
		return 0, Errorf(IndexError, "%s index out of range", what)
	}
	return int(i), nil
}

// GetItem implements container[key].
func GetItem(container, key Value) (Value, error) {
	switch c := container.(type) {
	case Str:
		runes := []rune(string(c))
		i, err := index(key, len(runes), "string")
		if err != nil {
			return nil, err
		}
		return Str(string(runes[i])), nil
	case *Tuple:
		i, err := index(key, len(c.Elts), "tuple")
		if err != nil {
			return nil, err
		}
		return c.Elts[i], nil
	case *List:
		i, err := index(key, len(c.Elts), "list")
		if err != nil {
			return nil, err
		}
		return c.Elts[i], nil
	case *Dict:
		v, ok, err := c.Get(key)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, keyError(key)
		}
		return v, nil
	}
	return nil, Errorf(TypeError, "'%s' object is not subscriptable", TypeName(container))
}

// SetItem implements container[key] = v.
func SetItem(container, key, v Value) error {
	switch c := container.(type) {
	case *List:
		i, err := index(key, len(c.Elts), "list assignment")
		if err != nil {
			return err
		}
		c.Elts[i] = v
		return nil
	case *Dict:
		return c.Set(key, v)
	}
	return Errorf(TypeError, "'%s' object does not support item assignment", TypeName(container))
}

// GetAttr implements v.name. Functions found on a class are bound to the
// receiver when looked up through an instance or a builtin value.
func GetAttr(v Value, name string) (Value, error) {
	switch o := v.(type) {
	case *Instance:
		if a, ok := o.Attrs.Get(name); ok {
			return a, nil
		}
		if name == "__class__" {
			return o.Class, nil
		}
		if a, ok := o.Class.Lookup(name); ok {
			return bind(v, a), nil
		}
	case *Class:
		if a, ok := o.Lookup(name); ok {
			return a, nil
		}
		switch name {
		case "__name__":
			return Str(o.Name), nil
		case "__base__":
			if o.Super == nil {
				return None, nil
			}
			return o.Super, nil
		}
	case *Function:
		if name == "__name__" {
			return Str(o.Name), nil
		}
	case *Builtin:
		if name == "__name__" {
			return Str(o.Name), nil
		}
	default:
		if a, ok := TypeOf(v).Lookup(name); ok {
			return bind(v, a), nil
		}
	}
	return nil, Errorf(AttributeError, "'%s' object has no attribute '%s'", TypeName(v), name)
}

func bind(self, fn Value) Value {
	switch fn.(type) {
	case *Function, *Builtin:
		return &BoundMethod{Self: self, Fn: fn}
	}
	return fn
}

// SetAttr implements v.name = x for instances and classes.
func SetAttr(v Value, name string, x Value) error {
	switch o := v.(type) {
	case *Instance:
		o.Attrs.Set(name, x)
		return nil
	case *Class:
		if o.builtin {
			return Errorf(TypeError, "cannot set '%s' attribute of immutable type '%s'", name, o.Name)
		}
		o.Dict.Set(name, x)
		return nil
	}
	return Errorf(AttributeError, "'%s' object has no attribute '%s'", TypeName(v), name)
}

// HasAttr reports whether GetAttr would succeed.
func HasAttr(v Value, name string) bool {
	_, err := GetAttr(v, name)
	return err == nil
}
