// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package ast defines the pyphon syntax tree.
//
// The tree is built once by the parser and never mutated afterwards. Nodes
// own their children and keep no parent pointers.
package ast

import (
	"strconv"
	"strings"
)

// Node is implemented by every expression and statement.
type Node interface {
	// Pos returns the line the node started on.
	Pos() int
	// String renders the node in a fully parenthesized source-like form.
	String() string
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// Op identifies a unary or binary operator.
type Op int

const (
	Or Op = iota
	And
	Not
	Neg
	Positive
	Lt
	Gt
	Le
	Ge
	Eq
	Ne
	In
	Is
	Add
	Sub
	Mul
	Div
	Mod
)

var opText = [...]string{
	Or: "or", And: "and", Not: "not", Neg: "-", Positive: "+",
	Lt: "<", Gt: ">", Le: "<=", Ge: ">=", Eq: "==", Ne: "!=",
	In: "in", Is: "is", Add: "+", Sub: "-", Mul: "*", Div: "/", Mod: "%",
}

func (o Op) String() string {
	if int(o) < len(opText) {
		return opText[o]
	}
	return "?"
}

// Literal is a constant: nil (None), bool, int64, float64 or string.
type Literal struct {
	Line  int
	Value any
}

// Name is a variable reference.
type Name struct {
	Line int
	Name string
}

// Unary applies not, - or + to X.
type Unary struct {
	Line int
	Op   Op
	X    Expr
}

// Binary applies a binary operator. And/Or short-circuit.
type Binary struct {
	Line int
	Op   Op
	X, Y Expr
}

// IfExpr is the ternary `Then if Test else Else`.
type IfExpr struct {
	Line             int
	Test, Then, Else Expr
}

// Call invokes Fn with positional arguments.
type Call struct {
	Line int
	Fn   Expr
	Args []Expr
}

// Index is X[Index].
type Index struct {
	Line  int
	X     Expr
	Index Expr
}

// Attr is X.Name.
type Attr struct {
	Line int
	X    Expr
	Name string
}

// Tuple is a tuple display.
type Tuple struct {
	Line int
	Elts []Expr
}

// List is a list display.
type List struct {
	Line int
	Elts []Expr
}

// Set is a set display.
type Set struct {
	Line int
	Elts []Expr
}

// Dict is a dict display; Elts alternates key and value.
type Dict struct {
	Line int
	Elts []Expr
}

func (e *Literal) Pos() int { return e.Line }
func (e *Name) Pos() int    { return e.Line }
func (e *Unary) Pos() int   { return e.Line }
func (e *Binary) Pos() int  { return e.Line }
func (e *IfExpr) Pos() int  { return e.Line }
func (e *Call) Pos() int    { return e.Line }
func (e *Index) Pos() int   { return e.Line }
func (e *Attr) Pos() int    { return e.Line }
func (e *Tuple) Pos() int   { return e.Line }
func (e *List) Pos() int    { return e.Line }
func (e *Set) Pos() int     { return e.Line }
func (e *Dict) Pos() int    { return e.Line }

func (*Literal) exprNode() {}
func (*Name) exprNode()    {}
func (*Unary) exprNode()   {}
func (*Binary) exprNode()  {}
func (*IfExpr) exprNode()  {}
func (*Call) exprNode()    {}
func (*Index) exprNode()   {}
func (*Attr) exprNode()    {}
func (*Tuple) exprNode()   {}
func (*List) exprNode()    {}
func (*Set) exprNode()     {}
func (*Dict) exprNode()    {}

func (e *Literal) String() string {
	switch v := e.Value.(type) {
	case nil:
		return "None"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case string:
		return strconv.Quote(v)
	}
	return "?"
}

func (e *Name) String() string { return e.Name }

func (e *Unary) String() string {
	if e.Op == Not {
		return "(not " + e.X.String() + ")"
	}
	return "(" + e.Op.String() + e.X.String() + ")"
}

func (e *Binary) String() string {
	return "(" + e.X.String() + " " + e.Op.String() + " " + e.Y.String() + ")"
}

func (e *IfExpr) String() string {
	return "(" + e.Then.String() + " if " + e.Test.String() + " else " + e.Else.String() + ")"
}

func (e *Call) String() string {
	return e.Fn.String() + "(" + join(e.Args) + ")"
}

func (e *Index) String() string { return e.X.String() + "[" + e.Index.String() + "]" }
func (e *Attr) String() string  { return e.X.String() + "." + e.Name }

func (e *Tuple) String() string {
	if len(e.Elts) == 1 {
		return "(" + e.Elts[0].String() + ",)"
	}
	return "(" + join(e.Elts) + ")"
}

func (e *List) String() string { return "[" + join(e.Elts) + "]" }
func (e *Set) String() string  { return "{" + join(e.Elts) + "}" }

func (e *Dict) String() string {
	var sb strings.Builder
	sb.WriteString("{")
	for i := 0; i+1 < len(e.Elts); i += 2 {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.Elts[i].String())
		sb.WriteString(": ")
		sb.WriteString(e.Elts[i+1].String())
	}
	sb.WriteString("}")
	return sb.String()
}

func join(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}
