// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package parser

import (
	"nickandperla.net/pyphon/internal/ast"
	"nickandperla.net/pyphon/internal/token"
)

// statement parses one compound statement or one line of simple statements.
func (p *Parser) statement() ([]ast.Stmt, error) {
	t := p.cur()
	switch {
	case t.Kind == token.INDENT:
		return nil, p.errorf(t, "unexpected indent")
	case t.Kind == token.DEDENT:
		return nil, p.errorf(t, "unexpected dedent")
	case t.Kind == token.KEYWORD:
		var s ast.Stmt
		var err error
		switch t.Text {
		case "if":
			p.advance()
			s, err = p.ifRest(t.Line)
		case "while":
			s, err = p.whileStmt()
		case "for":
			s, err = p.forStmt()
		case "try":
			s, err = p.tryStmt()
		case "def":
			s, err = p.defStmt()
		case "class":
			s, err = p.classStmt()
		case "elif", "else", "except", "finally":
			return nil, p.errorf(t, "'%s' without a matching block", t.Text)
		default:
			return p.simpleLine()
		}
		if err != nil {
			return nil, err
		}
		return []ast.Stmt{s}, nil
	}
	return p.simpleLine()
}

// simpleLine parses simple statements separated by ';' up to NEWLINE.
func (p *Parser) simpleLine() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for {
		s, err := p.simple()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, s)
		if !p.at(";") {
			break
		}
		p.advance()
		if p.atKind(token.NEWLINE) {
			break
		}
	}
	if !p.atKind(token.NEWLINE) {
		return nil, p.errorf(p.cur(), "invalid syntax: unexpected %s", describe(p.cur()))
	}
	p.advance()
	return stmts, nil
}

func (p *Parser) simple() (ast.Stmt, error) {
	t := p.cur()
	switch {
	case t.Is("pass"):
		p.advance()
		return &ast.Pass{Line: t.Line}, nil
	case t.Is("break"):
		if p.loops == 0 {
			return nil, p.errorf(t, "'break' outside loop")
		}
		p.advance()
		return &ast.Break{Line: t.Line}, nil
	case t.Is("return"):
		if p.funcs == 0 {
			return nil, p.errorf(t, "'return' outside function")
		}
		p.advance()
		s := &ast.Return{Line: t.Line}
		if p.startsExpr() {
			v, err := p.testlist()
			if err != nil {
				return nil, err
			}
			s.Value = v
		}
		return s, nil
	case t.Is("raise"):
		p.advance()
		s := &ast.Raise{Line: t.Line}
		if p.startsExpr() {
			v, err := p.test()
			if err != nil {
				return nil, err
			}
			s.Value = v
		}
		return s, nil
	}

	x, err := p.testlist()
	if err != nil {
		return nil, err
	}
	switch {
	case p.at("="):
		if err := p.checkTarget(x, true); err != nil {
			return nil, err
		}
		p.advance()
		v, err := p.testlist()
		if err != nil {
			return nil, err
		}
		return &ast.Assign{Line: t.Line, Target: x, Value: v}, nil
	case p.at("+=") || p.at("-="):
		op := ast.Add
		if p.at("-=") {
			op = ast.Sub
		}
		if err := p.checkTarget(x, false); err != nil {
			return nil, err
		}
		p.advance()
		v, err := p.testlist()
		if err != nil {
			return nil, err
		}
		return &ast.AugAssign{Line: t.Line, Op: op, Target: x, Value: v}, nil
	}
	return &ast.ExprStmt{Line: t.Line, X: x}, nil
}

// checkTarget rejects expressions that cannot be assigned to. Tuple and
// list targets are only allowed for plain assignment.
func (p *Parser) checkTarget(x ast.Expr, unpack bool) error {
	switch x := x.(type) {
	case *ast.Name, *ast.Index, *ast.Attr:
		return nil
	case *ast.Tuple:
		if unpack && len(x.Elts) > 0 {
			for _, e := range x.Elts {
				if err := p.checkTarget(e, true); err != nil {
					return err
				}
			}
			return nil
		}
	case *ast.List:
		if unpack && len(x.Elts) > 0 {
			for _, e := range x.Elts {
				if err := p.checkTarget(e, true); err != nil {
					return err
				}
			}
			return nil
		}
	}
	return &SyntaxError{Msg: "cannot assign to " + x.String(), Token: x.String(), Line: x.Pos()}
}

// ifRest parses the remainder of an if or elif header; elif nests in Else.
func (p *Parser) ifRest(line int) (ast.Stmt, error) {
	test, err := p.test()
	if err != nil {
		return nil, err
	}
	then, err := p.block()
	if err != nil {
		return nil, err
	}
	s := &ast.If{Line: line, Test: test, Then: then}
	switch t := p.cur(); {
	case t.Is("elif"):
		p.advance()
		nested, err := p.ifRest(t.Line)
		if err != nil {
			return nil, err
		}
		s.Else = &ast.Suite{Stmts: []ast.Stmt{nested}}
	case t.Is("else"):
		p.advance()
		if s.Else, err = p.block(); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// block parses ':' followed by a suite.
func (p *Parser) block() (*ast.Suite, error) {
	if _, err := p.expect(":"); err != nil {
		return nil, err
	}
	return p.ParseSuite()
}

// loopBody parses a loop body with break permitted.
func (p *Parser) loopBody() (*ast.Suite, error) {
	p.loops++
	defer func() { p.loops-- }()
	return p.block()
}

func (p *Parser) elseBlock() (*ast.Suite, error) {
	if !p.at("else") {
		return nil, nil
	}
	p.advance()
	return p.block()
}

func (p *Parser) whileStmt() (ast.Stmt, error) {
	line := p.advance().Line
	test, err := p.test()
	if err != nil {
		return nil, err
	}
	body, err := p.loopBody()
	if err != nil {
		return nil, err
	}
	els, err := p.elseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.While{Line: line, Test: test, Body: body, Else: els}, nil
}

func (p *Parser) forStmt() (ast.Stmt, error) {
	line := p.advance().Line
	target, err := p.exprlist()
	if err != nil {
		return nil, err
	}
	if err := p.checkTarget(target, true); err != nil {
		return nil, err
	}
	if _, err := p.expect("in"); err != nil {
		return nil, err
	}
	iter, err := p.testlist()
	if err != nil {
		return nil, err
	}
	body, err := p.loopBody()
	if err != nil {
		return nil, err
	}
	els, err := p.elseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.For{Line: line, Target: target, Iter: iter, Body: body, Else: els}, nil
}

// tryStmt parses try/except/else/finally. A statement with both handlers
// and finally becomes TryFinally wrapping TryExcept.
func (p *Parser) tryStmt() (ast.Stmt, error) {
	line := p.advance().Line
	body, err := p.block()
	if err != nil {
		return nil, err
	}

	var handlers []*ast.ExceptClause
	for p.at("except") {
		t := p.advance()
		if n := len(handlers); n > 0 && handlers[n-1].Type == nil {
			return nil, p.errorf(t, "default 'except:' must be last")
		}
		h := &ast.ExceptClause{Line: t.Line}
		if !p.at(":") {
			if h.Type, err = p.test(); err != nil {
				return nil, err
			}
			if p.at("as") || p.at(",") {
				p.advance()
				if h.Name, err = p.expectName(); err != nil {
					return nil, err
				}
			}
		}
		if h.Body, err = p.block(); err != nil {
			return nil, err
		}
		handlers = append(handlers, h)
	}

	var els *ast.Suite
	if len(handlers) > 0 {
		if els, err = p.elseBlock(); err != nil {
			return nil, err
		}
	}

	var fin *ast.Suite
	if p.at("finally") {
		p.advance()
		if fin, err = p.block(); err != nil {
			return nil, err
		}
	}

	if len(handlers) == 0 && fin == nil {
		return nil, p.errorf(p.cur(), "expected 'except' or 'finally' block")
	}

	var s ast.Stmt
	if len(handlers) > 0 {
		s = &ast.TryExcept{Line: line, Body: body, Handlers: handlers, Else: els}
		if fin == nil {
			return s, nil
		}
		body = &ast.Suite{Stmts: []ast.Stmt{s}}
	}
	return &ast.TryFinally{Line: line, Body: body, Finally: fin}, nil
}

// functionBody parses a def or class body: return is allowed only for def,
// and loops of the enclosing scope do not extend into it.
func (p *Parser) functionBody(isFunc bool) (*ast.Suite, error) {
	loops, funcs := p.loops, p.funcs
	p.loops = 0
	if isFunc {
		p.funcs++
	} else {
		p.funcs = 0
	}
	defer func() { p.loops, p.funcs = loops, funcs }()
	return p.block()
}

func (p *Parser) defStmt() (ast.Stmt, error) {
	line := p.advance().Line
	name, err := p.expectName()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect("("); err != nil {
		return nil, err
	}
	p.nest++
	var params []string
	seen := map[string]bool{}
	for !p.at(")") {
		t := p.cur()
		param, err := p.expectName()
		if err != nil {
			return nil, err
		}
		if seen[param] {
			return nil, p.errorf(t, "duplicate argument '%s' in function definition", param)
		}
		seen[param] = true
		params = append(params, param)
		if !p.at(",") {
			break
		}
		p.advance()
	}
	if _, err := p.expect(")"); err != nil {
		return nil, err
	}
	p.nest--
	body, err := p.functionBody(true)
	if err != nil {
		return nil, err
	}
	return &ast.Def{Line: line, Name: name, Params: params, Body: body}, nil
}

func (p *Parser) classStmt() (ast.Stmt, error) {
	line := p.advance().Line
	name, err := p.expectName()
	if err != nil {
		return nil, err
	}
	var super ast.Expr
	if p.at("(") {
		p.advance()
		if !p.at(")") {
			if super, err = p.test(); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(")"); err != nil {
			return nil, err
		}
	}
	body, err := p.functionBody(false)
	if err != nil {
		return nil, err
	}
	return &ast.Class{Line: line, Name: name, Super: super, Body: body}, nil
}
