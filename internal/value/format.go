// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

import (
	"fmt"
	"strings"
)

// Format implements printf-style `format % args` for the conversions
// s r d i f e g x o c with optional flags, width and precision.
func Format(format string, args []Value) (Value, error) {
	var sb strings.Builder
	next := 0
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			sb.WriteByte(c)
			continue
		}
		i++
		start := i
		for i < len(format) && strings.IndexByte("-+ 0#", format[i]) >= 0 {
			i++
		}
		for i < len(format) && (format[i] >= '0' && format[i] <= '9' || format[i] == '.') {
			i++
		}
		if i >= len(format) {
			return nil, Errorf(ValueError, "incomplete format")
		}
		spec, verb := format[start:i], format[i]
		if verb == '%' {
			sb.WriteByte('%')
			continue
		}
		if next >= len(args) {
			return nil, Errorf(TypeError, "not enough arguments for format string")
		}
		arg := args[next]
		next++
		s, err := convert(spec, verb, arg)
		if err != nil {
			return nil, err
		}
		sb.WriteString(s)
	}
	if next < len(args) {
		return nil, Errorf(TypeError, "not all arguments converted during string formatting")
	}
	return Str(sb.String()), nil
}

func convert(spec string, verb byte, arg Value) (string, error) {
	switch verb {
	case 's':
		return fmt.Sprintf("%"+spec+"s", StrOf(arg)), nil
	case 'r':
		return fmt.Sprintf("%"+spec+"s", Repr(arg)), nil
	case 'd', 'i', 'x', 'X', 'o':
		i, f, isFloat, ok := number(arg)
		if !ok {
			return "", Errorf(TypeError, "%%%c format: a number is required, not %s", verb, TypeName(arg))
		}
		if isFloat {
			i = int64(f)
		}
		if verb == 'i' {
			verb = 'd'
		}
		return fmt.Sprintf("%"+spec+string(verb), i), nil
	case 'f', 'F', 'e', 'E', 'g', 'G':
		_, f, _, ok := number(arg)
		if !ok {
			return "", Errorf(TypeError, "must be real number, not %s", TypeName(arg))
		}
		return fmt.Sprintf("%"+spec+string(verb), f), nil
	case 'c':
		switch a := arg.(type) {
		case Int:
			return fmt.Sprintf("%"+spec+"c", rune(a)), nil
		case Str:
			if len([]rune(string(a))) == 1 {
				return fmt.Sprintf("%"+spec+"s", string(a)), nil
			}
		}
		return "", Errorf(TypeError, "%%c requires int or char")
	}
	return "", Errorf(ValueError, "unsupported format character '%c'", verb)
}
