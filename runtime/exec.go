package sgruntime

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/gosuda/stargate/ast"
	"github.com/gosuda/stargate/command"
	"github.com/gosuda/stargate/parser"
)

func (it *Interpreter) runBlock(block *ast.Block, env *Env) (execResult, error) {
	if block == nil {
		return execResult{kind: resultNone}, nil
	}
	return it.runStatements(block.Statements, NewEnv(env))
}

func (it *Interpreter) runStatements(stmts []ast.Statement, env *Env) (execResult, error) {
	for _, stmt := range stmts {
		if err := it.ctx.Err(); err != nil {
			return execResult{}, err
		}
		res, err := it.runStatement(stmt, env)
		if err != nil {
			return execResult{}, withPos(err, stmt.Position())
		}
		if res.kind != resultNone {
			return res, nil
		}
	}
	return execResult{kind: resultNone}, nil
}

func (it *Interpreter) runStatement(stmt ast.Statement, env *Env) (execResult, error) {
	switch s := stmt.(type) {
	case ast.LetStmt:
		v, err := it.evalExpr(s.Value, env)
		if err != nil {
			return execResult{}, err
		}
		env.Define(s.Name, v)
		return execResult{kind: resultNone}, nil
	case ast.AssignStmt:
		return execResult{kind: resultNone}, it.assign(s, env)
	case ast.ExprStmt:
		_, err := it.evalExpr(s.Expr, env)
		return execResult{kind: resultNone}, err
	case ast.PrintStmt:
		v, err := it.evalExpr(s.Value, env)
		if err != nil {
			return execResult{}, err
		}
		it.emit(Display(v))
		return execResult{kind: resultNone}, nil
	case ast.IfStmt:
		for _, br := range s.Branches {
			ok, err := it.evalCondition(br.Cond, env, "if")
			if err != nil {
				return execResult{}, err
			}
			if ok {
				return it.runBlock(br.Body, env)
			}
		}
		return it.runBlock(s.Else, env)
	case ast.WhileStmt:
		for {
			ok, err := it.evalCondition(s.Cond, env, "while")
			if err != nil {
				return execResult{}, err
			}
			if !ok {
				return execResult{kind: resultNone}, nil
			}
			res, err := it.runBlock(s.Body, env)
			if err != nil {
				return execResult{}, err
			}
			switch res.kind {
			case resultBreak:
				return execResult{kind: resultNone}, nil
			case resultReturn, resultExit:
				return res, nil
			}
		}
	case ast.ForStmt:
		return it.runFor(s, env)
	case ast.BreakStmt:
		return execResult{kind: resultBreak}, nil
	case ast.ContinueStmt:
		return execResult{kind: resultContinue}, nil
	case ast.FuncDecl:
		fn := &Closure{Name: s.Name, Params: s.Params, Block: s.Body, Env: env}
		env.Define(s.Name, ClosureVal(fn))
		if s.HasAnnotation("test") {
			it.tests.register(s.Name, fn)
		}
		return execResult{kind: resultNone}, nil
	case ast.ClassDecl:
		it.defineClass(s, env)
		return execResult{kind: resultNone}, nil
	case ast.ReturnStmt:
		if s.Value == nil {
			return execResult{kind: resultReturn, value: None}, nil
		}
		v, err := it.evalExpr(s.Value, env)
		if err != nil {
			return execResult{}, err
		}
		return execResult{kind: resultReturn, value: v}, nil
	case ast.ExecStmt:
		return execResult{kind: resultNone}, it.runExec(s, env)
	case ast.ScriptStmt:
		return it.runScript(s, env)
	case ast.UseStmt:
		return execResult{kind: resultNone}, it.use(s.Module, env)
	case ast.AssertStmt:
		ok, err := it.evalCondition(s.Cond, env, "assert")
		if err != nil {
			return execResult{}, err
		}
		if ok {
			return execResult{kind: resultNone}, nil
		}
		msg := "assertion failed"
		if s.Message != nil {
			m, err := it.evalExpr(s.Message, env)
			if err != nil {
				return execResult{}, err
			}
			msg = Display(m)
		}
		return execResult{}, newError(AssertionFailure, "%s", msg)
	case ast.ExitStmt:
		code := 0
		if s.Code != nil {
			v, err := it.evalExpr(s.Code, env)
			if err != nil {
				return execResult{}, err
			}
			c, err := exitCode(v)
			if err != nil {
				return execResult{}, err
			}
			code = c
		}
		return execResult{kind: resultExit, code: code}, nil
	default:
		return execResult{}, fmt.Errorf("unsupported statement %T", stmt)
	}
}

func exitCode(v Value) (int, error) {
	switch v.kind {
	case SmallIntKind:
		return int(v.i), nil
	case NumberKind:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return 0, typeErrorf("exit code must be finite, got %s", formatNumber(v.f))
		}
		return int(v.f), nil
	case BoolKind:
		if v.b {
			return 0, nil
		}
		return 1, nil
	case NoneKind:
		return 0, nil
	default:
		return 0, typeErrorf("exit code must be a number, got %s", v.kind)
	}
}

func (it *Interpreter) evalCondition(e ast.Expr, env *Env, construct string) (bool, error) {
	v, err := it.evalExpr(e, env)
	if err != nil {
		return false, err
	}
	if v.kind != BoolKind {
		return false, typeErrorf("%s condition must be bool, got %s", construct, v.kind)
	}
	return v.b, nil
}

func (it *Interpreter) assign(s ast.AssignStmt, env *Env) error {
	switch target := s.Target.(type) {
	case ast.Ident:
		v, err := it.evalExpr(s.Value, env)
		if err != nil {
			return err
		}
		if !env.Assign(target.Name, v) {
			return it.nameError(target.Name, env, "cannot assign to undeclared variable %q (use let)")
		}
		return nil
	case ast.IndexExpr:
		obj, err := it.evalExpr(target.Object, env)
		if err != nil {
			return err
		}
		idx, err := it.evalExpr(target.Index, env)
		if err != nil {
			return err
		}
		v, err := it.evalExpr(s.Value, env)
		if err != nil {
			return err
		}
		return setIndex(obj, idx, v)
	case ast.PropertyExpr:
		obj, err := it.evalExpr(target.Object, env)
		if err != nil {
			return err
		}
		v, err := it.evalExpr(s.Value, env)
		if err != nil {
			return err
		}
		switch obj.kind {
		case InstanceKind:
			in := obj.Instance()
			if in.native != nil {
				return newError(PropertyError, "%s has read-only properties", in.Class)
			}
			in.Fields.PutStr(target.Name, v)
			return nil
		case DictKind:
			obj.Dict().PutStr(target.Name, v)
			return nil
		default:
			return typeErrorf("cannot set property %q on %s", target.Name, obj.kind)
		}
	default:
		return typeErrorf("invalid assignment target")
	}
}

func setIndex(obj, idx, v Value) error {
	switch obj.kind {
	case ListKind:
		l := obj.List()
		i, err := normalizeIndex(idx, len(l.Items))
		if err != nil {
			return err
		}
		l.Items[i] = v
		return nil
	case DictKind:
		return obj.Dict().Put(idx, v)
	case InstanceKind:
		if idx.kind != StringKind {
			return typeErrorf("instance field name must be a string, got %s", idx.kind)
		}
		obj.Instance().Fields.PutStr(idx.s, v)
		return nil
	default:
		return typeErrorf("%s does not support index assignment", obj.kind)
	}
}

func (it *Interpreter) runFor(s ast.ForStmt, env *Env) (execResult, error) {
	iter, err := it.evalExpr(s.Iter, env)
	if err != nil {
		return execResult{}, err
	}
	pairs, err := iterPairs(iter, s.Key != "")
	if err != nil {
		return execResult{}, err
	}
	for _, p := range pairs {
		scope := NewEnv(env)
		if s.Key != "" {
			scope.Define(s.Key, p[0])
		}
		scope.Define(s.Value, p[1])
		res, err := it.runStatements(s.Body.Statements, scope)
		if err != nil {
			return execResult{}, err
		}
		switch res.kind {
		case resultBreak:
			return execResult{kind: resultNone}, nil
		case resultReturn, resultExit:
			return res, nil
		}
	}
	return execResult{kind: resultNone}, nil
}

// iterPairs materializes loop items as (key, value) pairs. Single-variable
// loops use only the value: elements for sequences, keys for dicts.
func iterPairs(v Value, keyed bool) ([][2]Value, error) {
	var out [][2]Value
	indexed := func(items []Value) {
		for i, item := range items {
			out = append(out, [2]Value{Int(int32(i)), item})
		}
	}
	switch v.kind {
	case ListKind:
		indexed(append([]Value(nil), v.List().Items...))
	case SetKind:
		indexed(v.Set().Items())
	case StringKind:
		chars := []Value{}
		for _, r := range v.s {
			chars = append(chars, Str(string(r)))
		}
		indexed(chars)
	case DictKind:
		v.Dict().Each(func(k, val Value) bool {
			if keyed {
				out = append(out, [2]Value{k, val})
			} else {
				out = append(out, [2]Value{None, k})
			}
			return true
		})
	case ObjectKind:
		o := v.Object()
		if o.IsMap() && keyed {
			for _, k := range o.Keys() {
				val, _ := o.Get(k)
				out = append(out, [2]Value{Str(k), val})
			}
			break
		}
		indexed(o.Items())
	case InstanceKind:
		if !keyed {
			return nil, typeErrorf("cannot iterate over instance without key, value")
		}
		v.Instance().Fields.Each(func(k, val Value) bool {
			out = append(out, [2]Value{k, val})
			return true
		})
	case NoneKind:
	default:
		return nil, typeErrorf("cannot iterate over %s", v.kind)
	}
	return out, nil
}

func (it *Interpreter) runExec(s ast.ExecStmt, env *Env) error {
	v, err := it.evalExpr(s.Command, env)
	if err != nil {
		return err
	}
	if v.kind != StringKind {
		return typeErrorf("exec expects a command string, got %s", v.kind)
	}
	words := strings.Fields(v.s)
	if len(words) == 0 {
		return typeErrorf("exec expects a non-empty command")
	}
	res, err := it.runCommand(command.Invocation{Name: words[0], Args: words[1:]})
	if err != nil {
		return err
	}
	if text := strings.TrimRight(string(res.Raw), "\n"); text != "" {
		it.emit(text)
	}
	return nil
}

func (it *Interpreter) runScript(s ast.ScriptStmt, env *Env) (execResult, error) {
	v, err := it.evalExpr(s.Path, env)
	if err != nil {
		return execResult{}, err
	}
	if v.kind != StringKind {
		return execResult{}, typeErrorf("script expects a path string, got %s", v.kind)
	}
	path := v.s
	if it.workDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(it.workDir, path)
	}
	src, err := it.loadScript(path)
	if err != nil {
		return execResult{}, newError(NameError, "cannot load script %s: %v", v.s, err)
	}
	prog, err := parser.ParseProgram(src)
	if err != nil {
		var pe *parser.Error
		if errors.As(err, &pe) {
			return execResult{}, &Error{Kind: ParseError, Msg: fmt.Sprintf("%s: %s", v.s, pe.Error()), Pos: s.Pos, Err: err}
		}
		return execResult{}, err
	}
	res, err := it.runStatements(prog.Statements, it.globals)
	if err != nil {
		return execResult{}, err
	}
	if res.kind == resultExit {
		return res, nil
	}
	return execResult{kind: resultNone}, nil
}

func (it *Interpreter) use(module string, env *Env) error {
	switch module {
	case "ut":
		env.Define("ut", InstanceVal(it.tests.module()))
		return nil
	default:
		return newError(NameError, "unknown module %q", module)
	}
}
