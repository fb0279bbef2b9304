package sgruntime

import (
	"fmt"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/gosuda/stargate/ast"
)

func (it *Interpreter) evalExpr(e ast.Expr, env *Env) (Value, error) {
	switch ex := e.(type) {
	case ast.IntLit:
		return IntOrNum(ex.Value), nil
	case ast.FloatLit:
		return Num(ex.Value), nil
	case ast.StringLit:
		return Str(ex.Value), nil
	case ast.BoolLit:
		return Bool(ex.Value), nil
	case ast.NoneLit:
		return None, nil
	case ast.InterpString:
		var b strings.Builder
		for _, part := range ex.Parts {
			v, err := it.evalExpr(part, env)
			if err != nil {
				return None, err
			}
			b.WriteString(Display(v))
		}
		return Str(b.String()), nil
	case ast.Ident:
		if v, ok := env.Get(ex.Name); ok {
			return v, nil
		}
		if fn, ok := builtinFunction(ex.Name); ok {
			return ClosureVal(&Closure{Name: ex.Name, builtin: func(args []Value) (Value, error) {
				return fn(it, args)
			}}), nil
		}
		return None, it.nameError(ex.Name, env, "undefined variable %q")
	case ast.ThisExpr:
		for cur := env; cur != nil; cur = cur.parent {
			if cur.self != nil {
				return InstanceVal(cur.self), nil
			}
		}
		return None, newError(NameError, "this used outside of a method")
	case ast.UnaryExpr:
		v, err := it.evalExpr(ex.Operand, env)
		if err != nil {
			return None, err
		}
		return evalUnary(ex.Op, v)
	case ast.BinaryExpr:
		left, err := it.evalExpr(ex.Left, env)
		if err != nil {
			return None, err
		}
		right, err := it.evalExpr(ex.Right, env)
		if err != nil {
			return None, err
		}
		return evalBinary(ex.Op, left, right)
	case ast.LogicalExpr:
		left, err := it.evalExpr(ex.Left, env)
		if err != nil {
			return None, err
		}
		if left.kind != BoolKind {
			return None, typeErrorf("left operand of %s must be bool, got %s", ex.Op, left.kind)
		}
		if (ex.Op == "&&" && !left.b) || (ex.Op == "||" && left.b) {
			return left, nil
		}
		right, err := it.evalExpr(ex.Right, env)
		if err != nil {
			return None, err
		}
		if right.kind != BoolKind {
			return None, typeErrorf("right operand of %s must be bool, got %s", ex.Op, right.kind)
		}
		return right, nil
	case ast.ListLit:
		items := make([]Value, 0, len(ex.Items))
		for _, item := range ex.Items {
			v, err := it.evalExpr(item, env)
			if err != nil {
				return None, err
			}
			items = append(items, v)
		}
		return ListOf(items...), nil
	case ast.DictLit:
		d := NewDict()
		for _, entry := range ex.Entries {
			k, err := it.evalDictKey(entry.Key, env)
			if err != nil {
				return None, err
			}
			v, err := it.evalExpr(entry.Value, env)
			if err != nil {
				return None, err
			}
			if err := d.Put(k, v); err != nil {
				return None, err
			}
		}
		return DictVal(d), nil
	case ast.SetLit:
		s := NewSet()
		for _, item := range ex.Items {
			v, err := it.evalExpr(item, env)
			if err != nil {
				return None, err
			}
			if err := s.Add(v); err != nil {
				return None, err
			}
		}
		return SetVal(s), nil
	case ast.ClosureLit:
		return ClosureVal(&Closure{Params: ex.Params, Body: ex.Body, Block: ex.Block, Env: env}), nil
	case ast.NewExpr:
		in, err := it.instantiate(ex.Class)
		if err != nil {
			return None, err
		}
		return InstanceVal(in), nil
	case ast.IndexExpr:
		obj, err := it.evalExpr(ex.Object, env)
		if err != nil {
			return None, err
		}
		idx, err := it.evalExpr(ex.Index, env)
		if err != nil {
			return None, err
		}
		return indexValue(obj, idx)
	case ast.SliceExpr:
		return it.evalSlice(ex, env)
	case ast.PropertyExpr:
		obj, err := it.evalExpr(ex.Object, env)
		if err != nil {
			return None, err
		}
		return it.property(obj, ex.Name)
	case ast.MethodCall:
		recv, err := it.evalExpr(ex.Receiver, env)
		if err != nil {
			return None, err
		}
		args, err := it.evalArgs(ex.Args, env)
		if err != nil {
			return None, err
		}
		return it.callMethod(recv, ex.Name, args)
	case ast.CallExpr:
		callee, err := it.evalExpr(ex.Callee, env)
		if err != nil {
			return None, err
		}
		args, err := it.evalArgs(ex.Args, env)
		if err != nil {
			return None, err
		}
		if callee.kind != ClosureKind {
			return None, typeErrorf("%s is not callable", callee.kind)
		}
		return it.callClosure(callee.Closure(), args)
	case ast.CommandExpr:
		return it.evalCommand(ex, env, nil)
	case ast.PipelineExpr:
		return it.evalPipeline(ex, env)
	default:
		return None, fmt.Errorf("unsupported expression %T", e)
	}
}

// evalDictKey treats a bare identifier key that is not bound as its own
// name, so {name: "x"} works like {"name": "x"}.
func (it *Interpreter) evalDictKey(e ast.Expr, env *Env) (Value, error) {
	if id, ok := e.(ast.Ident); ok {
		if v, ok := env.Get(id.Name); ok {
			return v, nil
		}
		return Str(id.Name), nil
	}
	return it.evalExpr(e, env)
}

func (it *Interpreter) evalArgs(exprs []ast.Expr, env *Env) ([]Value, error) {
	args := make([]Value, 0, len(exprs))
	for _, a := range exprs {
		v, err := it.evalExpr(a, env)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return args, nil
}

// nameError builds a NameError for name, suggesting the closest visible
// names.
func (it *Interpreter) nameError(name string, env *Env, format string) error {
	err := newError(NameError, format, name)
	candidates := env.Names()
	ranks := fuzzy.RankFindFold(name, candidates)
	if len(ranks) == 0 {
		for _, c := range candidates {
			if fuzzy.MatchFold(c, name) {
				err.Msg += fmt.Sprintf(" (did you mean %q?)", c)
				return err
			}
		}
		return err
	}
	best := ranks[0]
	for _, r := range ranks[1:] {
		if r.Distance < best.Distance {
			best = r
		}
	}
	err.Msg += fmt.Sprintf(" (did you mean %q?)", best.Target)
	return err
}

func indexValue(obj, idx Value) (Value, error) {
	switch obj.kind {
	case ListKind:
		items := obj.List().Items
		i, err := normalizeIndex(idx, len(items))
		if err != nil {
			return None, err
		}
		return items[i], nil
	case StringKind:
		rs := []rune(obj.s)
		i, err := normalizeIndex(idx, len(rs))
		if err != nil {
			return None, err
		}
		return Str(string(rs[i])), nil
	case DictKind:
		v, ok, err := obj.Dict().Get(idx)
		if err != nil {
			return None, err
		}
		if !ok {
			return None, newError(PropertyError, "key %s not found in dict", Display(idx))
		}
		return v, nil
	case ObjectKind:
		o := obj.Object()
		if o.IsArray() {
			items := o.Items()
			i, err := normalizeIndex(idx, len(items))
			if err != nil {
				return None, err
			}
			return items[i], nil
		}
		if idx.kind != StringKind {
			return None, typeErrorf("object key must be a string, got %s", idx.kind)
		}
		v, ok := o.Get(idx.s)
		if !ok {
			return None, newError(PropertyError, "key %q not found in object", idx.s)
		}
		return v, nil
	case InstanceKind:
		if idx.kind != StringKind {
			return None, typeErrorf("instance field name must be a string, got %s", idx.kind)
		}
		v, ok := obj.Instance().Fields.GetStr(idx.s)
		if !ok {
			return None, newError(PropertyError, "%s has no field %q", obj.Instance().Class, idx.s)
		}
		return v, nil
	case NoneKind, NumberKind, SmallIntKind, BoolKind, SetKind, ClosureKind:
		return None, typeErrorf("%s is not indexable", obj.kind)
	default:
		return None, typeErrorf("%s is not indexable", obj.kind)
	}
}

// normalizeIndex resolves negative indices against n and bounds-checks.
func normalizeIndex(idx Value, n int) (int, error) {
	i, err := indexInt(idx)
	if err != nil {
		return 0, err
	}
	orig := i
	if i < 0 {
		i += n
	}
	if i < 0 || i >= n {
		return 0, newError(IndexError, "index %d out of range for length %d", orig, n)
	}
	return i, nil
}

func indexInt(v Value) (int, error) {
	switch v.kind {
	case SmallIntKind:
		return int(v.i), nil
	case NumberKind:
		if v.f != float64(int64(v.f)) {
			return 0, typeErrorf("index must be an integer, got %s", formatNumber(v.f))
		}
		return int(v.f), nil
	default:
		return 0, typeErrorf("index must be an integer, got %s", v.kind)
	}
}

func (it *Interpreter) evalSlice(ex ast.SliceExpr, env *Env) (Value, error) {
	obj, err := it.evalExpr(ex.Object, env)
	if err != nil {
		return None, err
	}
	bound := func(e ast.Expr, def int) (int, error) {
		if e == nil {
			return def, nil
		}
		v, err := it.evalExpr(e, env)
		if err != nil {
			return 0, err
		}
		return indexInt(v)
	}
	var n int
	switch obj.kind {
	case ListKind:
		n = obj.List().Len()
	case StringKind:
		n = len([]rune(obj.s))
	case ObjectKind:
		if !obj.Object().IsArray() {
			return None, typeErrorf("cannot slice a non-array object")
		}
		n = obj.Object().Len()
	default:
		return None, typeErrorf("%s does not support slicing", obj.kind)
	}
	lo, err := bound(ex.Low, 0)
	if err != nil {
		return None, err
	}
	hi, err := bound(ex.High, n)
	if err != nil {
		return None, err
	}
	lo, hi = clampRange(lo, hi, n)
	switch obj.kind {
	case StringKind:
		return Str(string([]rune(obj.s)[lo:hi])), nil
	case ObjectKind:
		return ListOf(append([]Value(nil), obj.Object().Items()[lo:hi]...)...), nil
	default:
		return ListOf(append([]Value(nil), obj.List().Items[lo:hi]...)...), nil
	}
}

func clampRange(lo, hi, n int) (int, int) {
	if lo < 0 {
		lo += n
	}
	if hi < 0 {
		hi += n
	}
	lo = max(0, min(lo, n))
	hi = max(0, min(hi, n))
	if hi < lo {
		hi = lo
	}
	return lo, hi
}

func (it *Interpreter) property(obj Value, name string) (Value, error) {
	switch obj.kind {
	case InstanceKind:
		in := obj.Instance()
		if in.native != nil {
			return in.native.property(name)
		}
		if v, ok := in.Fields.GetStr(name); ok {
			return v, nil
		}
		if m, ok := it.findMethod(in.Class, name); ok {
			return ClosureVal(it.bindMethod(in, m)), nil
		}
		return None, newError(PropertyError, "%s has no property %q", in.Class, name)
	case ObjectKind:
		o := obj.Object()
		if v, ok := o.Get(name); ok {
			return v, nil
		}
		if name == "length" || name == "len" {
			return Int(int32(o.Len())), nil
		}
		return None, it.propertyError(name, o.Keys(), "object has no key %q")
	case DictKind:
		if v, ok := obj.Dict().GetStr(name); ok {
			return v, nil
		}
		keys := []string{}
		for _, k := range obj.Dict().Keys() {
			keys = append(keys, Display(k))
		}
		return None, it.propertyError(name, keys, "dict has no key %q")
	case ListKind:
		if name == "length" || name == "len" || name == "size" {
			return Int(int32(obj.List().Len())), nil
		}
	case StringKind:
		if name == "length" || name == "len" {
			return Int(int32(len([]rune(obj.s)))), nil
		}
	case SetKind:
		if name == "length" || name == "len" || name == "size" {
			return Int(int32(obj.Set().Len())), nil
		}
	case NoneKind, SmallIntKind, NumberKind, BoolKind, ClosureKind:
	}
	return None, newError(PropertyError, "%s has no property %q", obj.kind, name)
}

func (it *Interpreter) propertyError(name string, keys []string, format string) error {
	err := newError(PropertyError, format, name)
	if matches := fuzzy.FindFold(name, keys); len(matches) > 0 {
		err.Msg += fmt.Sprintf(" (did you mean %q?)", matches[0])
	}
	return err
}
