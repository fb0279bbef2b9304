package parser

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/gosuda/stargate/ast"
)

type TokenKind int

const (
	EOF TokenKind = iota
	Illegal
	Ident
	Keyword
	Int
	Float
	String
	Op
)

func (k TokenKind) String() string {
	switch k {
	case EOF:
		return "end of input"
	case Illegal:
		return "illegal token"
	case Ident:
		return "identifier"
	case Keyword:
		return "keyword"
	case Int:
		return "integer"
	case Float:
		return "float"
	case String:
		return "string"
	case Op:
		return "operator"
	default:
		return "unknown"
	}
}

// Token is one lexeme. For strings Lit holds the raw text between the
// quotes, escapes and interpolation markers untouched.
type Token struct {
	Kind          TokenKind
	Lit           string
	Quote         byte
	Offset        int
	End           int
	Pos           ast.Pos
	NewlineBefore bool
	Err           *Error
}

func (t Token) is(kind TokenKind, lit string) bool {
	return t.Kind == kind && t.Lit == lit
}

func (t Token) describe() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case String:
		return fmt.Sprintf("string %q", t.Lit)
	default:
		return fmt.Sprintf("%s %q", t.Kind, t.Lit)
	}
}

var keywords = map[string]struct{}{
	"let": {}, "fn": {}, "class": {}, "extends": {}, "new": {}, "this": {},
	"return": {}, "if": {}, "else": {}, "while": {}, "for": {}, "in": {},
	"print": {}, "exec": {}, "script": {}, "use": {}, "assert": {}, "exit": {},
	"true": {}, "false": {}, "none": {}, "break": {}, "continue": {},
}

func IsKeyword(word string) bool {
	_, ok := keywords[word]
	return ok
}

// Keywords returns the reserved words, sorted.
func Keywords() []string {
	out := make([]string, 0, len(keywords))
	for k := range keywords {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Lexer scans source text on demand. It can be repositioned to any
// offset with Reset, which the parser uses for lookahead and to re-read
// raw command arguments.
type Lexer struct {
	src  string
	off  int
	line int
	col  int
}

func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

func (l *Lexer) Source() string {
	return l.src
}

func (l *Lexer) Offset() int {
	return l.off
}

// Reset moves the scanner to offset, recomputing the line and column.
func (l *Lexer) Reset(offset int) {
	if offset < 0 {
		offset = 0
	}
	if offset > len(l.src) {
		offset = len(l.src)
	}
	l.off = 0
	l.line = 1
	l.col = 1
	for l.off < offset {
		l.advance()
	}
}

func (l *Lexer) pos() ast.Pos {
	return ast.Pos{Line: l.line, Col: l.col}
}

func (l *Lexer) peekByte(n int) byte {
	if l.off+n >= len(l.src) {
		return 0
	}
	return l.src[l.off+n]
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.off:])
	l.off += size
	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return r
}

// skipSpace skips whitespace and comments, reporting whether a newline
// was crossed.
func (l *Lexer) skipSpace() bool {
	newline := false
	for l.off < len(l.src) {
		c := l.src[l.off]
		switch {
		case c == '\n':
			newline = true
			l.advance()
		case c == ' ' || c == '\t' || c == '\r':
			l.advance()
		case c == '#':
			for l.off < len(l.src) && l.src[l.off] != '\n' {
				l.advance()
			}
		default:
			return newline
		}
	}
	return newline
}

func (l *Lexer) Next() Token {
	newline := l.skipSpace()
	start := l.off
	pos := l.pos()
	tok := Token{Offset: start, Pos: pos, NewlineBefore: newline || start == 0}
	if l.off >= len(l.src) {
		tok.Kind = EOF
		tok.End = l.off
		return tok
	}
	c := l.src[l.off]
	switch {
	case isIdentStart(c):
		l.scanIdent()
		tok.Lit = l.src[start:l.off]
		tok.Kind = Ident
		if IsKeyword(tok.Lit) {
			tok.Kind = Keyword
		}
	case isDigit(c):
		tok.Kind = Int
		for l.off < len(l.src) && isDigit(l.src[l.off]) {
			l.advance()
		}
		if l.peekByte(0) == '.' && isDigit(l.peekByte(1)) {
			tok.Kind = Float
			l.advance()
			for l.off < len(l.src) && isDigit(l.src[l.off]) {
				l.advance()
			}
		}
		tok.Lit = l.src[start:l.off]
	case c == '"' || c == '\'':
		return l.scanString(tok, c)
	default:
		if two := l.src[l.off:min(l.off+2, len(l.src))]; len(two) == 2 {
			switch two {
			case "==", "!=", "<=", ">=", "&&", "||":
				l.advance()
				l.advance()
				tok.Kind = Op
				tok.Lit = two
				tok.End = l.off
				return tok
			}
		}
		if strings.IndexByte("+-*/%<>!=|.,;:(){}[]", c) < 0 {
			r := l.advance()
			tok.Kind = Illegal
			tok.Lit = string(r)
			tok.Err = &Error{Kind: LexError, Pos: pos, Msg: fmt.Sprintf("unexpected character %q", r)}
			tok.End = l.off
			return tok
		}
		l.advance()
		tok.Kind = Op
		tok.Lit = string(c)
	}
	tok.End = l.off
	return tok
}

// scanIdent accepts a hyphen inside an identifier only when a letter or
// underscore follows it, so list-directory is one word but x-1 is not.
func (l *Lexer) scanIdent() {
	l.advance()
	for l.off < len(l.src) {
		c := l.src[l.off]
		if isIdentStart(c) || isDigit(c) {
			l.advance()
			continue
		}
		if c == '-' && isIdentStart(l.peekByte(1)) {
			l.advance()
			continue
		}
		return
	}
}

func (l *Lexer) scanString(tok Token, quote byte) Token {
	l.advance()
	bodyStart := l.off
	for l.off < len(l.src) {
		c := l.src[l.off]
		if c == '\\' {
			l.advance()
			if l.off < len(l.src) {
				l.advance()
			}
			continue
		}
		if c == quote {
			tok.Kind = String
			tok.Quote = quote
			tok.Lit = l.src[bodyStart:l.off]
			l.advance()
			tok.End = l.off
			return tok
		}
		l.advance()
	}
	tok.Kind = Illegal
	tok.Lit = string(quote)
	tok.End = l.off
	tok.Err = &Error{Kind: LexError, Pos: tok.Pos, Msg: "unterminated string", Incomplete: true}
	return tok
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
