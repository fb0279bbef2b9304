package sgruntime

import (
	"context"
	"slices"
	"sort"

	"github.com/gosuda/stargate/ast"
	"github.com/gosuda/stargate/parser"
)

// Complete evaluates src as an expression and lists the members that may
// follow a dot: keys for maps, dicts and instances, methods otherwise.
// A command or pipeline runs once so its output keys can be listed; plain
// function and method calls are not evaluated.
func (it *Interpreter) Complete(ctx context.Context, src string) ([]string, error) {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return nil, err
	}
	switch expr.(type) {
	case ast.CallExpr, ast.MethodCall:
		return nil, nil
	}
	it.ctx = ctx
	defer func() { it.ctx = context.Background() }()
	v, err := it.evalExpr(expr, it.globals)
	if err != nil {
		return nil, err
	}
	var out []string
	switch v.kind {
	case DictKind:
		for _, k := range v.Dict().Keys() {
			if k.kind == StringKind {
				out = append(out, k.s)
			}
		}
	case ObjectKind:
		if v.Object().IsMap() {
			out = v.Object().Keys()
		} else {
			out = it.methodNames(v)
		}
	case InstanceKind:
		for _, k := range v.Instance().Fields.Keys() {
			out = append(out, k.s)
		}
		out = append(out, it.methodNames(v)...)
	case NoneKind, StringKind, SmallIntKind, NumberKind, BoolKind, ListKind, SetKind, ClosureKind:
		out = it.methodNames(v)
	default:
		out = it.methodNames(v)
	}
	sort.Strings(out)
	return out, nil
}

// Names lists every name bound in the root scope plus the built-in
// functions, sorted.
func (it *Interpreter) Names() []string {
	names := append(it.globals.Names(), BuiltinNames()...)
	sort.Strings(names)
	return slices.Compact(names)
}
