// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner provides an indentation-aware tokenizer for pyphon.
package scanner

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"nickandperla.net/pyphon/internal/token"
)

// Scanner tokenizes pyphon source rune-by-rune, synthesizing NEWLINE,
// INDENT, DEDENT and EOF tokens.
type Scanner struct {
	src     []rune
	pos     int
	line    int // Current line number (1-based)
	indents []int
	pending []token.Token
	peeked  *token.Token

	depth       int  // open bracket nesting; newlines are ignored while > 0
	atLineStart bool // next rune begins a logical line
	lineTokens  bool // the current logical line produced a token
}

// New creates a new Scanner from source text.
func New(src string) *Scanner {
	src = strings.ReplaceAll(src, "\r\n", "\n")
	return &Scanner{
		src:         []rune(src),
		line:        1,
		indents:     []int{0},
		atLineStart: true,
	}
}

// NewFromReader creates a new Scanner from an io.Reader.
func NewFromReader(r io.Reader) (*Scanner, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return New(string(b)), nil
}

// Tokenize returns the complete token stream of src, ending with EOF.
// It never fails: malformed input yields ILLEGAL tokens.
func Tokenize(src string) []token.Token {
	s := New(src)
	var toks []token.Token
	for {
		t := s.Next()
		toks = append(toks, t)
		if t.Kind == token.EOF {
			return toks
		}
	}
}

// Line returns the current line number (1-based).
func (s *Scanner) Line() int {
	return s.line
}

// Peek returns the next token without consuming it.
func (s *Scanner) Peek() token.Token {
	if s.peeked == nil {
		t := s.Next()
		s.peeked = &t
	}
	return *s.peeked
}

// Next returns the next token. After the end of input it keeps returning EOF.
func (s *Scanner) Next() token.Token {
	if s.peeked != nil {
		t := *s.peeked
		s.peeked = nil
		return t
	}
	if len(s.pending) > 0 {
		return s.pop()
	}

	for {
		if s.atLineStart && s.depth == 0 {
			if !s.indentation() {
				continue
			}
			if len(s.pending) > 0 {
				return s.pop()
			}
		}

		s.skipSpace()

		if s.eof() {
			return s.end()
		}

		r := s.src[s.pos]
		switch {
		case r == '#':
			s.skipComment()
			continue
		case r == '\\' && s.peekAt(1) == '\n':
			s.pos += 2
			s.line++
			continue
		case r == '\n':
			s.pos++
			s.line++
			if s.depth > 0 {
				continue
			}
			s.atLineStart = true
			if s.lineTokens {
				s.lineTokens = false
				return token.Token{Kind: token.NEWLINE, Line: s.line - 1}
			}
			continue
		}

		s.lineTokens = true
		switch {
		case isDigit(r) || (r == '.' && isDigit(s.peekAt(1))):
			return s.number()
		case r == '\'' || r == '"':
			return s.quoted(r)
		case r == '_' || unicode.IsLetter(r):
			return s.name()
		}
		return s.operator()
	}
}

func (s *Scanner) pop() token.Token {
	t := s.pending[0]
	s.pending = s.pending[1:]
	return t
}

func (s *Scanner) eof() bool {
	return s.pos >= len(s.src)
}

func (s *Scanner) peekAt(n int) rune {
	if s.pos+n >= len(s.src) {
		return 0
	}
	return s.src[s.pos+n]
}

// indentation measures the leading whitespace of a logical line and queues
// INDENT/DEDENT tokens. It returns false when the line was blank or a
// comment and has been skipped entirely.
func (s *Scanner) indentation() bool {
	width := 0
measure:
	for !s.eof() {
		switch s.src[s.pos] {
		case ' ':
			width++
		case '\t':
			width = (width/8 + 1) * 8
		case '\f', '\r':
		default:
			break measure
		}
		s.pos++
	}
	if s.eof() {
		s.atLineStart = false
		return true
	}
	switch s.src[s.pos] {
	case '\n':
		s.pos++
		s.line++
		return false
	case '#':
		s.skipComment()
		if !s.eof() {
			s.pos++
			s.line++
		}
		return false
	}
	s.atLineStart = false

	top := s.indents[len(s.indents)-1]
	switch {
	case width > top:
		s.indents = append(s.indents, width)
		s.pending = append(s.pending, token.Token{Kind: token.INDENT, Line: s.line})
	case width < top:
		for len(s.indents) > 1 && s.indents[len(s.indents)-1] > width {
			s.indents = s.indents[:len(s.indents)-1]
			s.pending = append(s.pending, token.Token{Kind: token.DEDENT, Line: s.line})
		}
		if s.indents[len(s.indents)-1] != width {
			s.pending = append(s.pending, token.Token{
				Kind: token.ILLEGAL,
				Text: "unindent does not match any outer indentation level",
				Line: s.line,
			})
		}
	}
	return true
}

// end emits the closing NEWLINE, the DEDENTs of open blocks and finally EOF.
func (s *Scanner) end() token.Token {
	if s.lineTokens {
		s.lineTokens = false
		return token.Token{Kind: token.NEWLINE, Line: s.line}
	}
	if len(s.indents) > 1 {
		s.indents = s.indents[:len(s.indents)-1]
		return token.Token{Kind: token.DEDENT, Line: s.line}
	}
	return token.Token{Kind: token.EOF, Line: s.line}
}

func (s *Scanner) skipSpace() {
	for !s.eof() {
		switch s.src[s.pos] {
		case ' ', '\t', '\f', '\r':
			s.pos++
		default:
			return
		}
	}
}

func (s *Scanner) skipComment() {
	for !s.eof() && s.src[s.pos] != '\n' {
		s.pos++
	}
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func (s *Scanner) number() token.Token {
	start := s.pos
	if s.src[s.pos] == '0' {
		switch unicode.ToLower(s.peekAt(1)) {
		case 'x', 'o', 'b':
			s.pos += 2
			for !s.eof() && (isHexDigit(s.src[s.pos]) || s.src[s.pos] == '_') {
				s.pos++
			}
			return s.emit(token.NUMBER, start)
		}
	}
	s.digits()
	if !s.eof() && s.src[s.pos] == '.' {
		s.pos++
		s.digits()
	}
	if !s.eof() && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
		next := s.peekAt(1)
		if isDigit(next) || ((next == '+' || next == '-') && isDigit(s.peekAt(2))) {
			s.pos += 2
			s.digits()
		}
	}
	return s.emit(token.NUMBER, start)
}

func (s *Scanner) digits() {
	for !s.eof() && (isDigit(s.src[s.pos]) || s.src[s.pos] == '_') {
		s.pos++
	}
}

// quoted scans a quoted literal, leaving escapes undecoded.
func (s *Scanner) quoted(quote rune) token.Token {
	start, line := s.pos, s.line
	triple := s.peekAt(1) == quote && s.peekAt(2) == quote
	if triple {
		s.pos += 3
	} else {
		s.pos++
	}
	for !s.eof() {
		r := s.src[s.pos]
		switch {
		case r == '\\':
			if s.peekAt(1) == '\n' {
				s.line++
			}
			s.pos += 2
			continue
		case r == '\n':
			if !triple {
				return token.Token{Kind: token.ILLEGAL, Text: "unterminated string literal", Line: line}
			}
			s.line++
		case r == quote:
			if !triple {
				s.pos++
				return token.Token{Kind: token.STRING, Text: string(s.src[start:s.pos]), Line: line}
			}
			if s.peekAt(1) == quote && s.peekAt(2) == quote {
				s.pos += 3
				return token.Token{Kind: token.STRING, Text: string(s.src[start:s.pos]), Line: line}
			}
		}
		s.pos++
	}
	if s.pos > len(s.src) {
		s.pos = len(s.src)
	}
	if triple {
		return token.Token{Kind: token.ILLEGAL, Text: "unterminated triple-quoted string literal", Line: line}
	}
	return token.Token{Kind: token.ILLEGAL, Text: "unterminated string literal", Line: line}
}

func (s *Scanner) name() token.Token {
	start := s.pos
	for !s.eof() {
		r := s.src[s.pos]
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		s.pos++
	}
	text := string(s.src[start:s.pos])
	if token.IsKeyword(text) {
		return token.Token{Kind: token.KEYWORD, Text: text, Line: s.line}
	}
	return token.Token{Kind: token.NAME, Text: text, Line: s.line}
}

func (s *Scanner) operator() token.Token {
	rest := string(s.src[s.pos:min(s.pos+2, len(s.src))])
	for _, op := range token.Operators {
		if !strings.HasPrefix(rest, op) {
			continue
		}
		s.pos += len(op)
		switch op {
		case "(", "[", "{":
			s.depth++
		case ")", "]", "}":
			if s.depth > 0 {
				s.depth--
			}
		}
		return token.Token{Kind: token.OP, Text: op, Line: s.line}
	}
	r := s.src[s.pos]
	s.pos++
	return token.Token{Kind: token.ILLEGAL, Text: fmt.Sprintf("unexpected character %q", r), Line: s.line}
}

func (s *Scanner) emit(kind token.Kind, start int) token.Token {
	return token.Token{Kind: kind, Text: string(s.src[start:s.pos]), Line: s.line}
}
