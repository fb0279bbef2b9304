package stargate

import (
	"context"

	"github.com/gosuda/stargate/ast"
	"github.com/gosuda/stargate/parser"
	sgruntime "github.com/gosuda/stargate/runtime"
)

// Compile parses src and returns an interpreter ready to run it.
func Compile(src string, opts ...sgruntime.Option) (*ast.Program, *sgruntime.Interpreter, error) {
	program, err := parser.ParseProgram(src)
	if err != nil {
		return nil, nil, err
	}
	return program, sgruntime.New(opts...), nil
}

// Parse only returns the AST program for tooling use.
func Parse(src string) (*ast.Program, error) {
	return parser.ParseProgram(src)
}

// RunSource parses and runs a whole script, returning its exit code.
func RunSource(ctx context.Context, src string, opts ...sgruntime.Option) (int, error) {
	program, it, err := Compile(src, opts...)
	if err != nil {
		return 1, err
	}
	return it.Run(ctx, program)
}
