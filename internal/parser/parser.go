// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package parser implements a recursive-descent parser for pyphon with one
// token of lookahead.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"nickandperla.net/pyphon/internal/ast"
	"nickandperla.net/pyphon/internal/scanner"
	"nickandperla.net/pyphon/internal/token"
)

// SyntaxError reports a tokenizing or parsing failure.
type SyntaxError struct {
	Msg   string
	Token string // offending token text
	Line  int

	incomplete bool
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// IsIncomplete reports whether err was caused by input ending too early,
// i.e. more lines could still turn it into a valid program.
func IsIncomplete(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se) && se.incomplete
}

// Parser consumes a token slice through a single cursor.
type Parser struct {
	toks  []token.Token
	pos   int
	nest  int // open brackets in the current expression
	depth int // nested expressions being parsed
	loops int // enclosing loops of the current function body
	funcs int // enclosing function bodies
}

// maxDepth bounds the nesting of parenthesized, bracketed and unary
// expressions.
const maxDepth = 200

// enter descends one expression level. Callers pair it with leave.
func (p *Parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return p.errorf(p.cur(), "too many nested expressions")
	}
	return nil
}

func (p *Parser) leave() {
	p.depth--
}

// New tokenizes src and returns a parser positioned at its first token.
func New(src string) *Parser {
	return &Parser{toks: scanner.Tokenize(src)}
}

// ParseProgram parses src as a complete program.
func ParseProgram(src string) (*ast.Suite, error) {
	return New(src).ParseProgram()
}

// ParseExpression parses src as a single expression (a bare tuple is allowed).
func ParseExpression(src string) (ast.Expr, error) {
	return New(strings.TrimSpace(src)).ParseExpression()
}

// ParseProgram parses statements up to EOF. An empty program is a single pass.
func (p *Parser) ParseProgram() (*ast.Suite, error) {
	var stmts []ast.Stmt
	for !p.atKind(token.EOF) {
		if p.atKind(token.NEWLINE) {
			p.advance()
			continue
		}
		ss, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, ss...)
	}
	if len(stmts) == 0 {
		return ast.PassSuite(p.cur().Line), nil
	}
	return &ast.Suite{Stmts: stmts}, nil
}

// ParseExpression parses one expression followed by the end of input.
func (p *Parser) ParseExpression() (ast.Expr, error) {
	x, err := p.testlist()
	if err != nil {
		return nil, err
	}
	for p.atKind(token.NEWLINE) {
		p.advance()
	}
	if !p.atKind(token.EOF) {
		return nil, p.errorf(p.cur(), "unexpected %s after expression", describe(p.cur()))
	}
	return x, nil
}

// ParseSuite parses the block following a compound statement header's colon:
// either a simple statement line or NEWLINE INDENT statement+ DEDENT.
func (p *Parser) ParseSuite() (*ast.Suite, error) {
	if !p.atKind(token.NEWLINE) {
		stmts, err := p.simpleLine()
		if err != nil {
			return nil, err
		}
		return &ast.Suite{Stmts: stmts}, nil
	}
	p.advance()
	if !p.atKind(token.INDENT) {
		return nil, p.errorf(p.cur(), "expected an indented block")
	}
	p.advance()
	var stmts []ast.Stmt
	for !p.atKind(token.DEDENT) {
		if p.atKind(token.EOF) {
			return nil, p.errorf(p.cur(), "unexpected end of input in block")
		}
		ss, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, ss...)
	}
	p.advance()
	return &ast.Suite{Stmts: stmts}, nil
}

// Cursor primitives.

func (p *Parser) cur() token.Token {
	if p.pos >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos]
}

func (p *Parser) peek() token.Token {
	if p.pos+1 >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+1]
}

func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) at(text string) bool {
	return p.cur().Is(text)
}

func (p *Parser) atKind(k token.Kind) bool {
	return p.cur().Kind == k
}

func (p *Parser) expect(text string) (token.Token, error) {
	if !p.at(text) {
		return token.Token{}, p.errorf(p.cur(), "expected '%s' but found %s", text, describe(p.cur()))
	}
	return p.advance(), nil
}

func (p *Parser) expectName() (string, error) {
	if !p.atKind(token.NAME) {
		return "", p.errorf(p.cur(), "expected a name but found %s", describe(p.cur()))
	}
	return p.advance().Text, nil
}

func (p *Parser) errorf(t token.Token, format string, args ...any) *SyntaxError {
	msg := fmt.Sprintf(format, args...)
	if t.Kind == token.ILLEGAL {
		msg = t.Text
	}
	return &SyntaxError{
		Msg:        msg,
		Token:      t.Text,
		Line:       t.Line,
		incomplete: p.endsEarly(t),
	}
}

// endsEarly reports whether t sits at the end of input in a position where
// more source could follow: an open bracket or a block still to be indented.
func (p *Parser) endsEarly(t token.Token) bool {
	switch t.Kind {
	case token.EOF:
		return true
	case token.ILLEGAL:
		return strings.HasPrefix(t.Text, "unterminated triple-quoted") && p.onlySyntheticAfter()
	case token.NEWLINE, token.DEDENT:
		return p.nest > 0 && p.onlySyntheticAfter()
	}
	return false
}

func (p *Parser) onlySyntheticAfter() bool {
	for _, t := range p.toks[p.pos+1:] {
		switch t.Kind {
		case token.NEWLINE, token.DEDENT, token.EOF:
		default:
			return false
		}
	}
	return true
}

func describe(t token.Token) string {
	switch t.Kind {
	case token.EOF:
		return "end of input"
	case token.NEWLINE:
		return "end of line"
	case token.INDENT:
		return "unexpected indent"
	case token.DEDENT:
		return "dedent"
	}
	return "'" + t.Text + "'"
}
