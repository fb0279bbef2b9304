// Package command runs external commands for the interpreter and turns
// their structured output into an order-preserving tree.
package command

import (
	"context"
	"fmt"
)

// Invocation describes one command run. Input, when non-nil, is written
// to the process stdin. Structured requests machine-readable output.
// Dir overrides the executor's working directory when set.
type Invocation struct {
	Name       string
	Args       []string
	Input      []byte
	Structured bool
	Dir        string
}

func (inv Invocation) String() string {
	return fmt.Sprintf("%s %v", inv.Name, inv.Args)
}

// Result is the outcome of a successful run. Data is the decoded tree
// when the invocation was structured.
type Result struct {
	Data     any
	Raw      []byte
	ExitCode int
}

// Executor is implemented by anything that can run an Invocation.
type Executor interface {
	Execute(ctx context.Context, inv Invocation) (*Result, error)
}

// Func adapts a plain function to Executor.
type Func func(ctx context.Context, inv Invocation) (*Result, error)

func (f Func) Execute(ctx context.Context, inv Invocation) (*Result, error) {
	return f(ctx, inv)
}
