// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

// Namespace maps names to values and remembers insertion order.
// Execution is single-threaded, so it is not safe for concurrent use.
type Namespace struct {
	names []string
	store map[string]Value
}

// NewNamespace creates a new empty namespace.
func NewNamespace() *Namespace {
	return &Namespace{
		store: make(map[string]Value),
	}
}

// Get retrieves a value by name.
func (n *Namespace) Get(name string) (Value, bool) {
	v, ok := n.store[name]
	return v, ok
}

// Set binds name to v.
func (n *Namespace) Set(name string, v Value) {
	if _, ok := n.store[name]; !ok {
		n.names = append(n.names, name)
	}
	n.store[name] = v
}

// Has returns true if the name exists in the namespace.
func (n *Namespace) Has(name string) bool {
	_, ok := n.store[name]
	return ok
}

// Delete removes a binding.
func (n *Namespace) Delete(name string) {
	if _, ok := n.store[name]; !ok {
		return
	}
	delete(n.store, name)
	for i, s := range n.names {
		if s == name {
			n.names = append(n.names[:i], n.names[i+1:]...)
			break
		}
	}
}

// Names returns the bound names in insertion order.
func (n *Namespace) Names() []string {
	return append([]string(nil), n.names...)
}

// Len returns the number of bindings.
func (n *Namespace) Len() int {
	return len(n.names)
}

// Clone creates a shallow copy of the namespace.
func (n *Namespace) Clone() *Namespace {
	clone := NewNamespace()
	for _, name := range n.names {
		clone.Set(name, n.store[name])
	}
	return clone
}
