package sgruntime

import (
	"errors"
	"fmt"

	"github.com/gosuda/stargate/ast"
	"github.com/gosuda/stargate/command"
)

type ErrorKind int

const (
	NameError ErrorKind = iota
	TypeError
	IndexError
	PropertyError
	ArithmeticError
	CommandError
	CommandNotFound
	CommandTimeout
	ParseError
	AssertionFailure
)

func (k ErrorKind) String() string {
	switch k {
	case NameError:
		return "NameError"
	case TypeError:
		return "TypeError"
	case IndexError:
		return "IndexError"
	case PropertyError:
		return "PropertyError"
	case ArithmeticError:
		return "ArithmeticError"
	case CommandError:
		return "CommandError"
	case CommandNotFound:
		return "CommandNotFound"
	case CommandTimeout:
		return "CommandTimeout"
	case ParseError:
		return "ParseError"
	case AssertionFailure:
		return "AssertionFailure"
	default:
		return "Error"
	}
}

// Error is a runtime failure. Pos is zero when the failing statement is
// unknown, for example inside a host callback.
type Error struct {
	Kind ErrorKind
	Msg  string
	Pos  ast.Pos
	Err  error
}

func (e *Error) Error() string {
	if e.Pos.Line > 0 {
		return fmt.Sprintf("%s at %s: %s", e.Kind, e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func typeErrorf(format string, args ...any) *Error {
	return newError(TypeError, format, args...)
}

// KindOf reports the runtime error kind of err, if it is one.
func KindOf(err error) (ErrorKind, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return 0, false
}

// withPos stamps pos on err unless an inner statement already did.
func withPos(err error, pos ast.Pos) error {
	var re *Error
	if errors.As(err, &re) && re.Pos.Line == 0 {
		re.Pos = pos
	}
	return err
}

func fromCommandError(err error) error {
	var ce *command.Error
	if !errors.As(err, &ce) {
		return &Error{Kind: CommandError, Msg: err.Error(), Err: err}
	}
	kind := CommandError
	switch ce.Kind {
	case command.NotFound:
		kind = CommandNotFound
	case command.Timeout:
		kind = CommandTimeout
	case command.Malformed:
		kind = ParseError
	}
	return &Error{Kind: kind, Msg: ce.Error(), Err: ce}
}
