// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package ast

import (
	"strings"
)

// Suite is a non-empty block of statements.
type Suite struct {
	Stmts []Stmt
}

// PassSuite returns a suite holding a single pass statement.
func PassSuite(line int) *Suite {
	return &Suite{Stmts: []Stmt{&Pass{Line: line}}}
}

// Pos returns the line of the first statement.
func (s *Suite) Pos() int {
	if len(s.Stmts) == 0 {
		return 0
	}
	return s.Stmts[0].Pos()
}

func (s *Suite) String() string {
	parts := make([]string, len(s.Stmts))
	for i, st := range s.Stmts {
		parts[i] = st.String()
	}
	return "{" + strings.Join(parts, "; ") + "}"
}

// If is if/elif/else; elif chains nest in Else.
type If struct {
	Line int
	Test Expr
	Then *Suite
	Else *Suite // may be nil
}

// While runs Body while Test holds; Else runs unless the loop broke.
type While struct {
	Line int
	Test Expr
	Body *Suite
	Else *Suite
}

// For binds each element of Iter to Target; Else runs unless the loop broke.
type For struct {
	Line   int
	Target Expr
	Iter   Expr
	Body   *Suite
	Else   *Suite
}

// TryFinally always runs Finally when control leaves Body.
type TryFinally struct {
	Line    int
	Body    *Suite
	Finally *Suite
}

// ExceptClause handles an exception matching Type (any when nil).
type ExceptClause struct {
	Line int
	Type Expr   // may be nil
	Name string // may be empty
	Body *Suite
}

// TryExcept tests Handlers in order; Else runs when Body raised nothing.
type TryExcept struct {
	Line     int
	Body     *Suite
	Handlers []*ExceptClause
	Else     *Suite
}

// Def defines a function.
type Def struct {
	Line   int
	Name   string
	Params []string
	Body   *Suite
}

// Class defines a class with an optional single superclass.
type Class struct {
	Line  int
	Name  string
	Super Expr // may be nil
	Body  *Suite
}

// Pass does nothing.
type Pass struct {
	Line int
}

// Break leaves the innermost loop.
type Break struct {
	Line int
}

// Return leaves the current function; Value may be nil.
type Return struct {
	Line  int
	Value Expr
}

// Raise raises Value, or re-raises the handled exception when nil.
type Raise struct {
	Line  int
	Value Expr
}

// Assign binds Value to Target (name, index, attribute, tuple or list).
type Assign struct {
	Line   int
	Target Expr
	Value  Expr
}

// AugAssign is Target += Value or Target -= Value.
type AugAssign struct {
	Line   int
	Op     Op // Add or Sub
	Target Expr
	Value  Expr
}

// ExprStmt evaluates X for its side effects.
type ExprStmt struct {
	Line int
	X    Expr
}

func (s *If) Pos() int         { return s.Line }
func (s *While) Pos() int      { return s.Line }
func (s *For) Pos() int        { return s.Line }
func (s *TryFinally) Pos() int { return s.Line }
func (s *TryExcept) Pos() int  { return s.Line }
func (s *Def) Pos() int        { return s.Line }
func (s *Class) Pos() int      { return s.Line }
func (s *Pass) Pos() int       { return s.Line }
func (s *Break) Pos() int      { return s.Line }
func (s *Return) Pos() int     { return s.Line }
func (s *Raise) Pos() int      { return s.Line }
func (s *Assign) Pos() int     { return s.Line }
func (s *AugAssign) Pos() int  { return s.Line }
func (s *ExprStmt) Pos() int   { return s.Line }

func (*If) stmtNode()         {}
func (*While) stmtNode()      {}
func (*For) stmtNode()        {}
func (*TryFinally) stmtNode() {}
func (*TryExcept) stmtNode()  {}
func (*Def) stmtNode()        {}
func (*Class) stmtNode()      {}
func (*Pass) stmtNode()       {}
func (*Break) stmtNode()      {}
func (*Return) stmtNode()     {}
func (*Raise) stmtNode()      {}
func (*Assign) stmtNode()     {}
func (*AugAssign) stmtNode()  {}
func (*ExprStmt) stmtNode()   {}

func withElse(s string, els *Suite) string {
	if els == nil {
		return s
	}
	return s + " else " + els.String()
}

func (s *If) String() string {
	return withElse("if "+s.Test.String()+" "+s.Then.String(), s.Else)
}

func (s *While) String() string {
	return withElse("while "+s.Test.String()+" "+s.Body.String(), s.Else)
}

func (s *For) String() string {
	return withElse("for "+s.Target.String()+" in "+s.Iter.String()+" "+s.Body.String(), s.Else)
}

func (s *TryFinally) String() string {
	return "try " + s.Body.String() + " finally " + s.Finally.String()
}

func (c *ExceptClause) String() string {
	var sb strings.Builder
	sb.WriteString("except")
	if c.Type != nil {
		sb.WriteString(" " + c.Type.String())
	}
	if c.Name != "" {
		sb.WriteString(" as " + c.Name)
	}
	sb.WriteString(" " + c.Body.String())
	return sb.String()
}

func (s *TryExcept) String() string {
	var sb strings.Builder
	sb.WriteString("try " + s.Body.String())
	for _, h := range s.Handlers {
		sb.WriteString(" " + h.String())
	}
	return withElse(sb.String(), s.Else)
}

func (s *Def) String() string {
	return "def " + s.Name + "(" + strings.Join(s.Params, ", ") + ") " + s.Body.String()
}

func (s *Class) String() string {
	head := "class " + s.Name
	if s.Super != nil {
		head += "(" + s.Super.String() + ")"
	}
	return head + " " + s.Body.String()
}

func (s *Pass) String() string  { return "pass" }
func (s *Break) String() string { return "break" }

func (s *Return) String() string {
	if s.Value == nil {
		return "return"
	}
	return "return " + s.Value.String()
}

func (s *Raise) String() string {
	if s.Value == nil {
		return "raise"
	}
	return "raise " + s.Value.String()
}

func (s *Assign) String() string { return s.Target.String() + " = " + s.Value.String() }

func (s *AugAssign) String() string {
	return s.Target.String() + " " + s.Op.String() + "= " + s.Value.String()
}

func (s *ExprStmt) String() string { return s.X.String() }
