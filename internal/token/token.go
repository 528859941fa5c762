// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines pyphon tokens and their literal decoding.
package token

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Kind classifies a token.
type Kind int

const (
	EOF Kind = iota
	NEWLINE
	INDENT
	DEDENT
	NAME
	KEYWORD
	NUMBER
	STRING
	OP
	ILLEGAL // Text holds the tokenizing error message
)

// String returns the string representation of a token kind.
func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case NEWLINE:
		return "NEWLINE"
	case INDENT:
		return "INDENT"
	case DEDENT:
		return "DEDENT"
	case NAME:
		return "NAME"
	case KEYWORD:
		return "KEYWORD"
	case NUMBER:
		return "NUMBER"
	case STRING:
		return "STRING"
	case OP:
		return "OP"
	case ILLEGAL:
		return "ILLEGAL"
	}
	return "UNKNOWN"
}

var keywords = map[string]bool{
	"and": true, "as": true, "break": true, "class": true, "def": true,
	"elif": true, "else": true, "except": true, "False": true, "finally": true,
	"for": true, "if": true, "in": true, "is": true, "None": true, "not": true,
	"or": true, "pass": true, "raise": true, "return": true, "True": true,
	"try": true, "while": true,
}

// IsKeyword returns true if s is a reserved word.
func IsKeyword(s string) bool {
	return keywords[s]
}

// Operators lists the operator and punctuation set, longest first.
var Operators = []string{
	"<=", ">=", "==", "!=", "+=", "-=",
	"<", ">", "=", "+", "-", "*", "/", "%",
	"(", ")", "[", "]", "{", "}", ",", ":", ".", ";",
}

// Token is an immutable lexeme with the line it started on.
type Token struct {
	Kind Kind
	Text string
	Line int
}

// String renders the token for diagnostics, e.g. NAME(a) or OP(+).
func (t Token) String() string {
	switch t.Kind {
	case EOF, NEWLINE, INDENT, DEDENT:
		return t.Kind.String()
	}
	return fmt.Sprintf("%s(%s)", t.Kind, t.Text)
}

// Is reports whether the token is the given operator or keyword.
func (t Token) Is(text string) bool {
	return (t.Kind == OP || t.Kind == KEYWORD) && t.Text == text
}

// IsName returns true for identifiers (not keywords).
func (t Token) IsName() bool { return t.Kind == NAME }

// IsNumber returns true for numeric literals.
func (t Token) IsNumber() bool { return t.Kind == NUMBER }

// IsString returns true for string literals.
func (t Token) IsString() bool { return t.Kind == STRING }

// IsFloat reports whether a numeric literal has float form.
func (t Token) IsFloat() bool {
	if t.Kind != NUMBER || isPrefixedInt(t.Text) {
		return false
	}
	return strings.ContainsAny(t.Text, ".eE")
}

func isPrefixedInt(s string) bool {
	if len(s) < 2 || s[0] != '0' {
		return false
	}
	switch s[1] {
	case 'x', 'X', 'o', 'O', 'b', 'B':
		return true
	}
	return false
}

// Int decodes an integer literal.
func (t Token) Int() (int64, error) {
	text := strings.ReplaceAll(t.Text, "_", "")
	if isPrefixedInt(text) {
		return strconv.ParseInt(text, 0, 64)
	}
	return strconv.ParseInt(text, 10, 64)
}

// Float decodes a numeric literal as a float.
func (t Token) Float() (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(t.Text, "_", ""), 64)
}

// StringValue strips the quotes of a string literal and decodes its
// backslash escapes. Unknown escapes are kept verbatim.
func (t Token) StringValue() string {
	s := t.Text
	q := 1
	if len(s) >= 6 && (strings.HasPrefix(s, `"""`) || strings.HasPrefix(s, `'''`)) {
		q = 3
	}
	if len(s) < 2*q {
		return ""
	}
	return Unescape(s[q : len(s)-q])
}

// Unescape decodes backslash escapes.
func Unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '0':
			sb.WriteByte(0)
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'v':
			sb.WriteByte('\v')
		case '\\', '\'', '"':
			sb.WriteByte(s[i])
		case '\n':
			// line continuation inside a string
		case 'x':
			if r, ok := hexRune(s, i+1, 2); ok {
				sb.WriteRune(r)
				i += 2
			} else {
				sb.WriteString(`\x`)
			}
		case 'u':
			if r, ok := hexRune(s, i+1, 4); ok {
				sb.WriteRune(r)
				i += 4
			} else {
				sb.WriteString(`\u`)
			}
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

func hexRune(s string, start, n int) (rune, bool) {
	if start+n > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(s[start:start+n], 16, 32)
	if err != nil || !utf8.ValidRune(rune(v)) {
		return 0, false
	}
	return rune(v), true
}
