package command

import (
	"fmt"
	"strings"
)

type ErrorKind int

const (
	Failed ErrorKind = iota
	NotFound
	Timeout
	Malformed
)

func (k ErrorKind) String() string {
	switch k {
	case Failed:
		return "CommandError"
	case NotFound:
		return "CommandNotFound"
	case Timeout:
		return "CommandTimeout"
	case Malformed:
		return "ParseError"
	default:
		return "CommandError"
	}
}

type Error struct {
	Kind     ErrorKind
	Name     string
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case NotFound:
		return fmt.Sprintf("command not found: %s", e.Name)
	case Timeout:
		return fmt.Sprintf("command %s timed out", e.Name)
	case Malformed:
		return fmt.Sprintf("command %s produced malformed output: %v", e.Name, e.Err)
	}
	msg := fmt.Sprintf("command %s exited with code %d", e.Name, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + s
	} else if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}
