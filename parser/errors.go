package parser

import (
	"errors"
	"fmt"

	"github.com/gosuda/stargate/ast"
)

type ErrorKind int

const (
	LexError ErrorKind = iota
	ParseError
)

func (k ErrorKind) String() string {
	if k == LexError {
		return "LexError"
	}
	return "ParseError"
}

// Error is returned by the lexer and parser. Incomplete reports that the
// input ended before the construct was closed, so more input may fix it.
type Error struct {
	Kind       ErrorKind
	Pos        ast.Pos
	Msg        string
	Incomplete bool
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.Msg)
}

// IsIncomplete reports whether err is a front-end error caused by
// premature end of input.
func IsIncomplete(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Incomplete
}
