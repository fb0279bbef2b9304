package sgruntime

import (
	"context"
	"log/slog"
	"time"

	"github.com/gosuda/stargate/ast"
	"github.com/gosuda/stargate/command"
)

// runCommand sends inv to the executor under the interpreter's context
// and timeout, translating failures into runtime errors.
func (it *Interpreter) runCommand(inv command.Invocation) (*command.Result, error) {
	ctx := it.ctx
	if it.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, it.timeout)
		defer cancel()
	}
	if inv.Dir == "" {
		inv.Dir = it.workDir
	}
	start := time.Now()
	res, err := it.executor.Execute(ctx, inv)
	it.logger.Debug("command",
		slog.String("name", inv.Name),
		slog.Any("args", inv.Args),
		slog.Bool("stdin", inv.Input != nil),
		slog.Duration("elapsed", time.Since(start)),
	)
	if err != nil {
		return nil, fromCommandError(err)
	}
	if res == nil {
		res = &command.Result{}
	}
	return res, nil
}

// evalCommand runs a command expression. input, when non-nil, is sent to
// the command as JSON.
func (it *Interpreter) evalCommand(ex ast.CommandExpr, env *Env, input *Value) (Value, error) {
	inv := command.Invocation{Name: ex.Name, Structured: true}
	for _, arg := range ex.Args {
		if arg.Expr == nil {
			inv.Args = append(inv.Args, arg.Text)
			continue
		}
		v, err := it.evalExpr(arg.Expr, env)
		if err != nil {
			return None, err
		}
		if v.kind == ListKind {
			for _, item := range v.List().Items {
				inv.Args = append(inv.Args, Display(item))
			}
			continue
		}
		inv.Args = append(inv.Args, Display(v))
	}
	if input != nil {
		data, err := ToJSON(*input, "")
		if err != nil {
			return None, err
		}
		inv.Input = data
	}
	res, err := it.runCommand(inv)
	if err != nil {
		return None, err
	}
	return fromTree(res.Data), nil
}

func (it *Interpreter) evalPipeline(ex ast.PipelineExpr, env *Env) (Value, error) {
	input, err := it.evalExpr(ex.Input, env)
	if err != nil {
		return None, err
	}
	if cmd, ok := ex.Target.(ast.CommandExpr); ok {
		return it.evalCommand(cmd, env, &input)
	}
	target, err := it.evalExpr(ex.Target, env)
	if err != nil {
		return None, err
	}
	if target.kind != ClosureKind {
		return None, typeErrorf("pipeline target must be a closure or command, got %s", target.kind)
	}
	return it.callClosure(target.Closure(), []Value{input})
}
