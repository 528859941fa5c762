// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

import (
	"math"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Repr returns the source-like representation of v. Literal forms read
// back to an equal value.
func Repr(v Value) string {
	var sb strings.Builder
	writeRepr(&sb, v, map[Value]bool{})
	return sb.String()
}

// StrOf returns the display text of v as print shows it.
func StrOf(v Value) string {
	switch v := v.(type) {
	case Str:
		return string(v)
	case *Instance:
		if v.Class.IsException() {
			return ExceptionMessage(v)
		}
	}
	return Repr(v)
}

func writeRepr(sb *strings.Builder, v Value, seen map[Value]bool) {
	switch v := v.(type) {
	case NoneValue:
		sb.WriteString("None")
	case Bool:
		if v {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case Int:
		sb.WriteString(strconv.FormatInt(int64(v), 10))
	case Float:
		sb.WriteString(FormatFloat(float64(v)))
	case Str:
		sb.WriteString(Quote(string(v)))
	case *Tuple:
		if seen[v] {
			sb.WriteString("(...)")
			return
		}
		seen[v] = true
		defer delete(seen, v)
		sb.WriteByte('(')
		writeElts(sb, v.Elts, seen)
		if len(v.Elts) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	case *List:
		if seen[v] {
			sb.WriteString("[...]")
			return
		}
		seen[v] = true
		defer delete(seen, v)
		sb.WriteByte('[')
		writeElts(sb, v.Elts, seen)
		sb.WriteByte(']')
	case *Set:
		if v.Len() == 0 {
			sb.WriteString("set()")
			return
		}
		sb.WriteByte('{')
		writeElts(sb, v.Elts(), seen)
		sb.WriteByte('}')
	case *Dict:
		if seen[v] {
			sb.WriteString("{...}")
			return
		}
		seen[v] = true
		defer delete(seen, v)
		sb.WriteByte('{')
		for i, e := range v.t.entries {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeRepr(sb, e.key, seen)
			sb.WriteString(": ")
			writeRepr(sb, e.val, seen)
		}
		sb.WriteByte('}')
	case *Function:
		sb.WriteString("<function " + v.Name + ">")
	case *Builtin:
		sb.WriteString("<built-in function " + v.Name + ">")
	case *Class:
		sb.WriteString("<class '" + v.Name + "'>")
	case *Instance:
		if v.Class.IsException() {
			sb.WriteString(v.Class.Name)
			args, _ := v.Attrs.Get("args")
			if t, ok := args.(*Tuple); ok && len(t.Elts) != 1 {
				writeRepr(sb, t, seen)
			} else if ok {
				sb.WriteByte('(')
				writeRepr(sb, t.Elts[0], seen)
				sb.WriteByte(')')
			} else {
				sb.WriteString("()")
			}
			return
		}
		sb.WriteString("<" + v.Class.Name + " object>")
	case *BoundMethod:
		sb.WriteString("<bound method " + TypeName(v.Self) + "." + callableName(v.Fn) + ">")
	default:
		sb.WriteString("<?>")
	}
}

func writeElts(sb *strings.Builder, elts []Value, seen map[Value]bool) {
	for i, e := range elts {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeRepr(sb, e, seen)
	}
}

func callableName(v Value) string {
	switch f := v.(type) {
	case *Function:
		return f.Name
	case *Builtin:
		return f.Name
	}
	return "?"
}

// FormatFloat renders f the way repr does: always with a fraction or an
// exponent so the text reads back as a float.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	}
	if a := math.Abs(f); a != 0 && (a >= 1e16 || a < 1e-4) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// Quote returns s as a string literal, preferring single quotes.
func Quote(s string) string {
	q := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		q = '"'
	}
	var sb strings.Builder
	sb.WriteByte(q)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size
		switch {
		case r == rune(q) || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r == utf8.RuneError && size == 1:
			sb.WriteString(`\x`)
			sb.WriteString(hex2(s[i-1]))
		case r < 0x80 && !unicode.IsPrint(r):
			sb.WriteString(`\x`)
			sb.WriteString(hex2(byte(r)))
		case r <= 0xffff && !unicode.IsPrint(r):
			sb.WriteString(`\u`)
			h := strconv.FormatInt(int64(r), 16)
			sb.WriteString(strings.Repeat("0", 4-len(h)) + h)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte(q)
	return sb.String()
}

func hex2(b byte) string {
	const digits = "0123456789abcdef"
	return string([]byte{digits[b>>4], digits[b&0xf]})
}
