// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HashKey returns the key under which v is stored in dicts and sets.
// Numbers that compare equal share a key, so 1, 1.0 and True collide.
// Lists, dicts and sets are unhashable.
func HashKey(v Value) (string, error) {
	switch v := v.(type) {
	case NoneValue:
		return "N", nil
	case Bool:
		if v {
			return "n1", nil
		}
		return "n0", nil
	case Int:
		return "n" + strconv.FormatInt(int64(v), 10), nil
	case Float:
		f := float64(v)
		if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
			return "n" + strconv.FormatInt(int64(f), 10), nil
		}
		return "f" + strconv.FormatFloat(f, 'g', -1, 64), nil
	case Str:
		return "s" + string(v), nil
	case *Tuple:
		var sb strings.Builder
		sb.WriteString("t")
		for _, e := range v.Elts {
			k, err := HashKey(e)
			if err != nil {
				return "", err
			}
			sb.WriteString(strconv.Itoa(len(k)))
			sb.WriteByte(':')
			sb.WriteString(k)
		}
		return sb.String(), nil
	case *List, *Dict, *Set:
		return "", Errorf(TypeError, "unhashable type: '%s'", TypeName(v))
	}
	return fmt.Sprintf("p%p", v), nil
}

type entry struct {
	key, val Value
	hash     string
}

// table is the ordered hash table behind Dict and Set.
type table struct {
	entries []entry
	index   map[string]int
}

func newTable() table {
	return table{index: make(map[string]int)}
}

func (t *table) len() int { return len(t.entries) }

func (t *table) get(k Value) (Value, bool, error) {
	h, err := HashKey(k)
	if err != nil {
		return nil, false, err
	}
	if t.index == nil {
		return nil, false, nil
	}
	i, ok := t.index[h]
	if !ok {
		return nil, false, nil
	}
	return t.entries[i].val, true, nil
}

func (t *table) set(k, v Value) error {
	h, err := HashKey(k)
	if err != nil {
		return err
	}
	if t.index == nil {
		t.index = make(map[string]int)
	}
	if i, ok := t.index[h]; ok {
		t.entries[i].val = v
		return nil
	}
	t.index[h] = len(t.entries)
	t.entries = append(t.entries, entry{key: k, val: v, hash: h})
	return nil
}

func (t *table) remove(k Value) (bool, error) {
	h, err := HashKey(k)
	if err != nil {
		return false, err
	}
	i, ok := t.index[h]
	if !ok {
		return false, nil
	}
	delete(t.index, h)
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	for j := i; j < len(t.entries); j++ {
		t.index[t.entries[j].hash] = j
	}
	return true, nil
}

func (t *table) keys() []Value {
	out := make([]Value, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.key
	}
	return out
}

func (t *table) values() []Value {
	out := make([]Value, len(t.entries))
	for i, e := range t.entries {
		out[i] = e.val
	}
	return out
}

func (t *table) clone() table {
	c := table{
		entries: append([]entry(nil), t.entries...),
		index:   make(map[string]int, len(t.entries)),
	}
	for i, e := range c.entries {
		c.index[e.hash] = i
	}
	return c
}
