// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package parser

import (
	"strings"

	"nickandperla.net/pyphon/internal/ast"
	"nickandperla.net/pyphon/internal/token"
)

// startsExpr reports whether the current token can begin an expression.
func (p *Parser) startsExpr() bool {
	t := p.cur()
	switch t.Kind {
	case token.NAME, token.NUMBER, token.STRING:
		return true
	case token.OP:
		switch t.Text {
		case "(", "[", "{", "-", "+":
			return true
		}
	case token.KEYWORD:
		switch t.Text {
		case "not", "None", "True", "False":
			return true
		}
	}
	return false
}

// testlist parses test (',' test)* [','] as a tuple when a comma is present.
func (p *Parser) testlist() (ast.Expr, error) {
	return p.list(p.test)
}

// exprlist is testlist restricted to arithmetic expressions, so that a for
// target stops before 'in'.
func (p *Parser) exprlist() (ast.Expr, error) {
	return p.list(p.arith)
}

func (p *Parser) list(item func() (ast.Expr, error)) (ast.Expr, error) {
	line := p.cur().Line
	x, err := item()
	if err != nil {
		return nil, err
	}
	if !p.at(",") {
		return x, nil
	}
	elts := []ast.Expr{x}
	for p.at(",") {
		p.advance()
		if !p.startsExpr() {
			break
		}
		e, err := item()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
	}
	return &ast.Tuple{Line: line, Elts: elts}, nil
}

// test parses the conditional expression, the lowest precedence level.
func (p *Parser) test() (ast.Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()
	x, err := p.orTest()
	if err != nil {
		return nil, err
	}
	if !p.at("if") {
		return x, nil
	}
	line := p.advance().Line
	cond, err := p.orTest()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("else"); err != nil {
		return nil, err
	}
	els, err := p.test()
	if err != nil {
		return nil, err
	}
	return &ast.IfExpr{Line: line, Test: cond, Then: x, Else: els}, nil
}

func (p *Parser) orTest() (ast.Expr, error) {
	x, err := p.andTest()
	if err != nil {
		return nil, err
	}
	for p.at("or") {
		line := p.advance().Line
		y, err := p.andTest()
		if err != nil {
			return nil, err
		}
		x = &ast.Binary{Line: line, Op: ast.Or, X: x, Y: y}
	}
	return x, nil
}

func (p *Parser) andTest() (ast.Expr, error) {
	x, err := p.notTest()
	if err != nil {
		return nil, err
	}
	for p.at("and") {
		line := p.advance().Line
		y, err := p.notTest()
		if err != nil {
			return nil, err
		}
		x = &ast.Binary{Line: line, Op: ast.And, X: x, Y: y}
	}
	return x, nil
}

func (p *Parser) notTest() (ast.Expr, error) {
	if p.at("not") {
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		line := p.advance().Line
		x, err := p.notTest()
		if err != nil {
			return nil, err
		}
		return &ast.Unary{Line: line, Op: ast.Not, X: x}, nil
	}
	return p.comparison()
}

var compOps = map[string]ast.Op{
	"<": ast.Lt, ">": ast.Gt, "<=": ast.Le, ">=": ast.Ge,
	"==": ast.Eq, "!=": ast.Ne, "in": ast.In, "is": ast.Is,
}

// compOp consumes a comparison operator. negate is set for 'not in' and
// 'is not', which wrap the positive comparison in Not.
func (p *Parser) compOp() (op ast.Op, negate, ok bool) {
	t := p.cur()
	if t.Is("not") && p.peek().Is("in") {
		p.advance()
		p.advance()
		return ast.In, true, true
	}
	if t.Kind != token.OP && t.Kind != token.KEYWORD {
		return 0, false, false
	}
	op, ok = compOps[t.Text]
	if !ok {
		return 0, false, false
	}
	p.advance()
	if op == ast.Is && p.at("not") {
		p.advance()
		negate = true
	}
	return op, negate, true
}

// comparison is left-associative and non-chaining: a < b < c compares the
// boolean result of a < b with c.
func (p *Parser) comparison() (ast.Expr, error) {
	x, err := p.arith()
	if err != nil {
		return nil, err
	}
	for {
		line := p.cur().Line
		op, negate, ok := p.compOp()
		if !ok {
			return x, nil
		}
		y, err := p.arith()
		if err != nil {
			return nil, err
		}
		x = &ast.Binary{Line: line, Op: op, X: x, Y: y}
		if negate {
			x = &ast.Unary{Line: line, Op: ast.Not, X: x}
		}
	}
}

func (p *Parser) arith() (ast.Expr, error) {
	x, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.at("+") || p.at("-") {
		t := p.advance()
		y, err := p.term()
		if err != nil {
			return nil, err
		}
		op := ast.Add
		if t.Text == "-" {
			op = ast.Sub
		}
		x = &ast.Binary{Line: t.Line, Op: op, X: x, Y: y}
	}
	return x, nil
}

func (p *Parser) term() (ast.Expr, error) {
	x, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.at("*") || p.at("/") || p.at("%") {
		t := p.advance()
		y, err := p.factor()
		if err != nil {
			return nil, err
		}
		var op ast.Op
		switch t.Text {
		case "*":
			op = ast.Mul
		case "/":
			op = ast.Div
		default:
			op = ast.Mod
		}
		x = &ast.Binary{Line: t.Line, Op: op, X: x, Y: y}
	}
	return x, nil
}

func (p *Parser) factor() (ast.Expr, error) {
	if p.at("-") || p.at("+") {
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer p.leave()
		t := p.advance()
		x, err := p.factor()
		if err != nil {
			return nil, err
		}
		op := ast.Neg
		if t.Text == "+" {
			op = ast.Positive
		}
		return &ast.Unary{Line: t.Line, Op: op, X: x}, nil
	}
	return p.postfix()
}

// postfix parses a primary followed by calls, subscripts and attributes.
func (p *Parser) postfix() (ast.Expr, error) {
	x, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.cur()
		switch {
		case t.Is("("):
			p.advance()
			args, err := p.sequence(")")
			if err != nil {
				return nil, err
			}
			x = &ast.Call{Line: t.Line, Fn: x, Args: args}
		case t.Is("["):
			p.advance()
			p.nest++
			idx, err := p.testlist()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect("]"); err != nil {
				return nil, err
			}
			p.nest--
			x = &ast.Index{Line: t.Line, X: x, Index: idx}
		case t.Is("."):
			p.advance()
			name, err := p.expectName()
			if err != nil {
				return nil, err
			}
			x = &ast.Attr{Line: t.Line, X: x, Name: name}
		default:
			return x, nil
		}
	}
}

// sequence parses comma-separated tests up to and including the closing
// bracket; a trailing comma is allowed.
func (p *Parser) sequence(closing string) ([]ast.Expr, error) {
	p.nest++
	var elts []ast.Expr
	for !p.at(closing) {
		e, err := p.test()
		if err != nil {
			return nil, err
		}
		elts = append(elts, e)
		if !p.at(",") {
			break
		}
		p.advance()
	}
	if _, err := p.expect(closing); err != nil {
		return nil, err
	}
	p.nest--
	return elts, nil
}

func (p *Parser) primary() (ast.Expr, error) {
	t := p.cur()
	switch t.Kind {
	case token.NAME:
		p.advance()
		return &ast.Name{Line: t.Line, Name: t.Text}, nil
	case token.NUMBER:
		p.advance()
		return p.number(t)
	case token.STRING:
		var sb strings.Builder
		for p.atKind(token.STRING) {
			sb.WriteString(p.advance().StringValue())
		}
		return &ast.Literal{Line: t.Line, Value: sb.String()}, nil
	case token.KEYWORD:
		switch t.Text {
		case "None":
			p.advance()
			return &ast.Literal{Line: t.Line}, nil
		case "True", "False":
			p.advance()
			return &ast.Literal{Line: t.Line, Value: t.Text == "True"}, nil
		}
	case token.OP:
		switch t.Text {
		case "(":
			return p.paren()
		case "[":
			p.advance()
			elts, err := p.sequence("]")
			if err != nil {
				return nil, err
			}
			return &ast.List{Line: t.Line, Elts: elts}, nil
		case "{":
			return p.brace()
		}
	}
	return nil, p.errorf(t, "invalid syntax: unexpected %s", describe(t))
}

func (p *Parser) number(t token.Token) (ast.Expr, error) {
	if t.IsFloat() {
		f, err := t.Float()
		if err != nil {
			return nil, p.errorf(t, "invalid number literal '%s'", t.Text)
		}
		return &ast.Literal{Line: t.Line, Value: f}, nil
	}
	n, err := t.Int()
	if err != nil {
		return nil, p.errorf(t, "invalid number literal '%s'", t.Text)
	}
	return &ast.Literal{Line: t.Line, Value: n}, nil
}

// paren parses (), a parenthesized expression, or a tuple display.
func (p *Parser) paren() (ast.Expr, error) {
	line := p.advance().Line
	p.nest++
	if p.at(")") {
		p.advance()
		p.nest--
		return &ast.Tuple{Line: line}, nil
	}
	x, err := p.testlist()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	p.nest--
	if tup, ok := x.(*ast.Tuple); ok {
		tup.Line = line
	}
	return x, nil
}

// brace parses a dict or set display. {} is an empty dict.
func (p *Parser) brace() (ast.Expr, error) {
	line := p.advance().Line
	p.nest++
	if p.at("}") {
		p.advance()
		p.nest--
		return &ast.Dict{Line: line}, nil
	}
	first, err := p.test()
	if err != nil {
		return nil, err
	}
	if !p.at(":") {
		elts := []ast.Expr{first}
		if p.at(",") {
			p.advance()
			rest, err := p.sequence("}")
			if err != nil {
				return nil, err
			}
			p.nest--
			return &ast.Set{Line: line, Elts: append(elts, rest...)}, nil
		}
		if _, err := p.expect("}"); err != nil {
			return nil, err
		}
		p.nest--
		return &ast.Set{Line: line, Elts: elts}, nil
	}

	var elts []ast.Expr
	key := first
	for {
		if _, err := p.expect(":"); err != nil {
			return nil, err
		}
		val, err := p.test()
		if err != nil {
			return nil, err
		}
		elts = append(elts, key, val)
		if !p.at(",") {
			break
		}
		p.advance()
		if p.at("}") {
			break
		}
		if key, err = p.test(); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect("}"); err != nil {
		return nil, err
	}
	p.nest--
	return &ast.Dict{Line: line, Elts: elts}, nil
}
