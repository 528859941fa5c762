// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package parser

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"nickandperla.net/pyphon/internal/ast"
)

func TestParseExpressionPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 + 2 * 3", "(1 + (2 * 3))"},
		{"(1 + 2) * 3", "((1 + 2) * 3)"},
		{"1 - 2 - 3", "((1 - 2) - 3)"},
		{"-x * 2", "((-x) * 2)"},
		{"not a or b and c", "((not a) or (b and c))"},
		{"a < b < c", "((a < b) < c)"},
		{"a not in b", "(not (a in b))"},
		{"a is not None", "(not (a is None))"},
		{"x if c else y", "(x if c else y)"},
		{"a if b else c if d else e", "(a if b else (c if d else e))"},
		{"f(1, 2)(3)", "f(1, 2)(3)"},
		{"a.b[1].c", "a.b[1].c"},
		{"d[1, 2]", "d[(1, 2)]"},
		{"(1,)", "(1,)"},
		{"()", "()"},
		{"1, 2, 3", "(1, 2, 3)"},
		{"[1, 2,]", "[1, 2]"},
		{"{}", "{}"},
		{"{1: 2, 3: 4}", "{1: 2, 3: 4}"},
		{"{1, 2}", "{1, 2}"},
		{"{1}", "{1}"},
		{"'a' 'b'", `"ab"`},
		{"0x1f + 0o17 + 0b11", "((31 + 15) + 3)"},
		{"1.5e3", "1500"},
		{"None, True, False", "(None, True, False)"},
	}
	for _, tt := range tests {
		x, err := ParseExpression(tt.src)
		if err != nil {
			t.Errorf("ParseExpression(%q) error: %v", tt.src, err)
			continue
		}
		if got := x.String(); got != tt.want {
			t.Errorf("ParseExpression(%q) = %s, want %s", tt.src, got, tt.want)
		}
	}
}

func TestParseExpressionLiteralTypes(t *testing.T) {
	tests := []struct {
		src  string
		want any
	}{
		{"42", int64(42)},
		{"1_000", int64(1000)},
		{"2.5", 2.5},
		{".5", 0.5},
		{`"a\tb"`, "a\tb"},
		{`'''x
y'''`, "x\ny"},
		{"True", true},
		{"None", nil},
	}
	for _, tt := range tests {
		x, err := ParseExpression(tt.src)
		if err != nil {
			t.Fatalf("ParseExpression(%q) error: %v", tt.src, err)
		}
		lit, ok := x.(*ast.Literal)
		if !ok {
			t.Fatalf("ParseExpression(%q) = %T, want *ast.Literal", tt.src, x)
		}
		if diff := cmp.Diff(tt.want, lit.Value); diff != "" {
			t.Errorf("ParseExpression(%q) value mismatch (-want +got):\n%s", tt.src, diff)
		}
	}
}

func TestParseProgram(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"empty", "", "{pass}"},
		{"blank lines and comments", "\n# c\n\n", "{pass}"},
		{"semicolons", "a = 1; b = 2\n", "{a = 1; b = 2}"},
		{"parallel assignment", "a, b = 1, 2", "{(a, b) = (1, 2)}"},
		{"nested target", "a, (b, c) = 0, a", "{(a, (b, c)) = (0, a)}"},
		{"aug assign", "x += 1\ny -= 2", "{x += 1; y -= 2}"},
		{"if elif else", "if a:\n  x\nelif b:\n  y\nelse:\n  z\n",
			"{if a {x} else {if b {y} else {z}}}"},
		{"single line suite", "if a: b; c\n", "{if a {b; c}}"},
		{"while else", "while x:\n    break\nelse:\n    y\n", "{while x {break} else {y}}"},
		{"for over tuple", "for i in 1, 2, 3:\n    print(i)\n", "{for i in (1, 2, 3) {print(i)}}"},
		{"for unpacking", "for k, v in d:\n  pass\n", "{for (k, v) in d {pass}}"},
		{"def", "def f(): return 1", "{def f() {return 1}}"},
		{"def params", "def f(a, b,):\n  return a, b\n", "{def f(a, b) {return (a, b)}}"},
		{"bare return", "def f():\n  return\n", "{def f() {return}}"},
		{"class", "class A(B):\n  x = 1\n", "{class A(B) {x = 1}}"},
		{"class no base", "class A:\n  pass\n", "{class A {pass}}"},
		{"try except", "try:\n  a\nexcept E as e:\n  b\nexcept:\n  c\n",
			"{try {a} except E as e {b} except {c}}"},
		{"except comma form", "try:\n  a\nexcept E, e:\n  b\n", "{try {a} except E as e {b}}"},
		{"try else", "try:\n  a\nexcept:\n  b\nelse:\n  c\n", "{try {a} except {b} else {c}}"},
		{"try finally", "try:\n  a\nfinally:\n  b\n", "{try {a} finally {b}}"},
		{"try except finally", "try:\n  a\nexcept:\n  b\nfinally:\n  c\n",
			"{try {try {a} except {b}} finally {c}}"},
		{"raise", "raise ValueError('x')\nraise\n", "{raise ValueError(\"x\"); raise}"},
		{"bracket continuation", "x = [1,\n  2,\n     3]\n", "{x = [1, 2, 3]}"},
		{"backslash continuation", "x = 1 + \\\n  2\n", "{x = (1 + 2)}"},
		{"nested blocks", "def f(n):\n  while n:\n    if n: break\n  return n\n",
			"{def f(n) {while n {if n {break}}; return n}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := ParseProgram(tt.src)
			if err != nil {
				t.Fatalf("ParseProgram error: %v", err)
			}
			if got := s.String(); got != tt.want {
				t.Errorf("ParseProgram(%q)\n got %s\nwant %s", tt.src, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		msg  string
		line int
	}{
		{"bare except not last", "try:\n  a\nexcept:\n  b\nexcept E:\n  c\n", "default 'except:' must be last", 5},
		{"break outside loop", "break\n", "'break' outside loop", 1},
		{"break in def in loop", "while 1:\n  def f():\n    break\n", "'break' outside loop", 3},
		{"return outside function", "return 1\n", "'return' outside function", 1},
		{"return in class body", "class A:\n  return\n", "'return' outside function", 2},
		{"missing colon", "if x\n  y\n", "expected ':'", 1},
		{"unexpected indent", "a\n  b\n", "unexpected indent", 2},
		{"bad dedent", "if a:\n    b\n  c\n", "unindent does not match", 3},
		{"assign to literal", "1 = x\n", "cannot assign to 1", 1},
		{"assign to call", "f() = 1\n", "cannot assign to f()", 1},
		{"aug assign tuple", "a, b += 1\n", "cannot assign to", 1},
		{"duplicate param", "def f(a, a): pass\n", "duplicate argument 'a'", 1},
		{"try alone", "try:\n  a\nb\n", "expected 'except' or 'finally'", 3},
		{"stray else", "else:\n  a\n", "'else' without a matching block", 1},
		{"illegal char", "x = 1 $ 2\n", "unexpected character '$'", 1},
		{"unterminated string", "x = 'abc\n", "unterminated string literal", 1},
		{"trailing operator", "x = 1 +\n", "invalid syntax", 1},
		{"expected block", "if a:\nb\n", "expected an indented block", 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseProgram(tt.src)
			if err == nil {
				t.Fatalf("ParseProgram(%q) succeeded, want error", tt.src)
			}
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("error is %T, want *SyntaxError", err)
			}
			if !strings.Contains(se.Msg, tt.msg) {
				t.Errorf("Msg = %q, want it to contain %q", se.Msg, tt.msg)
			}
			if se.Line != tt.line {
				t.Errorf("Line = %d, want %d", se.Line, tt.line)
			}
		})
	}
}

func TestIsIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"if x:\n", true},
		{"def f(a,\n", true},
		{"x = [1, 2,\n", true},
		{"print(\n", true},
		{"s = '''abc\n", true},
		{"x = {1: 2,\n", true},
		{"x = 1 +\n", false},
		{"x = 'abc\n", false},
		{"x = )\n", false},
		{"try:\n  a\n", true},
		{"def f():\n  x = 1 +\n\n", false},
		{"def f(a):\n  return (a +\n", true},
	}
	for _, tt := range tests {
		_, err := ParseProgram(tt.src)
		if err == nil {
			t.Fatalf("ParseProgram(%q) succeeded, want error", tt.src)
		}
		if got := IsIncomplete(err); got != tt.want {
			t.Errorf("IsIncomplete(%q) = %v, want %v (err: %v)", tt.src, got, tt.want, err)
		}
	}
}

func TestNestingLimit(t *testing.T) {
	nested := func(open, close string, n int) string {
		return "x = " + strings.Repeat(open, n) + "1" + strings.Repeat(close, n) + "\n"
	}
	if _, err := ParseProgram(nested("(", ")", 150)); err != nil {
		t.Fatalf("150 nested parentheses: %v", err)
	}
	for _, src := range []string{
		nested("(", ")", 100000),
		nested("[", "]", 300),
		nested("f(", ")", 300),
		"x = " + strings.Repeat("-", 100000) + "1\n",
		"x = " + strings.Repeat("not ", 100000) + "1\n",
	} {
		_, err := ParseProgram(src)
		var se *SyntaxError
		if !errors.As(err, &se) || !strings.Contains(se.Msg, "too many nested expressions") {
			t.Errorf("ParseProgram(%.20q...) = %v, want a nesting error", src, err)
			continue
		}
		if IsIncomplete(err) {
			t.Errorf("nesting error for %.20q... reported as incomplete", src)
		}
	}
}

func TestParseExpressionRejectsTrailingInput(t *testing.T) {
	for _, src := range []string{"1 2", "a = 1", "x)"} {
		if _, err := ParseExpression(src); err == nil {
			t.Errorf("ParseExpression(%q) succeeded, want error", src)
		}
	}
}
