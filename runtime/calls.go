package sgruntime

import (
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

func (it *Interpreter) callClosure(fn *Closure, args []Value) (Value, error) {
	if fn.builtin != nil {
		return fn.builtin(args)
	}
	if len(args) != len(fn.Params) {
		return None, typeErrorf("%s expects %d argument(s), got %d", closureName(fn), len(fn.Params), len(args))
	}
	if it.depth >= maxCallDepth {
		return None, typeErrorf("maximum call depth %d exceeded", maxCallDepth)
	}
	it.depth++
	defer func() { it.depth-- }()
	it.logger.Debug("push call frame", slog.String("fn", closureName(fn)), slog.Int("depth", it.depth))

	var scope *Env
	if fn.Self != nil {
		scope = newMethodEnv(fn.Env, fn.Self)
	} else {
		scope = NewEnv(fn.Env)
	}
	for i, p := range fn.Params {
		scope.Define(p, args[i])
	}
	if fn.Block == nil {
		return it.evalExpr(fn.Body, scope)
	}
	res, err := it.runStatements(fn.Block.Statements, scope)
	if err != nil {
		return None, err
	}
	switch res.kind {
	case resultReturn:
		return res.value, nil
	case resultBreak, resultContinue:
		return None, typeErrorf("break or continue outside of a loop in %s", closureName(fn))
	case resultExit:
		return None, &ExitSignal{Code: res.code}
	}
	return None, nil
}

// callValue invokes fn, which must be a closure, with args.
func (it *Interpreter) callValue(fn Value, args ...Value) (Value, error) {
	if fn.kind != ClosureKind {
		return None, typeErrorf("%s is not callable", fn.kind)
	}
	return it.callClosure(fn.Closure(), args)
}

func closureName(fn *Closure) string {
	if fn.Name != "" {
		return fn.Name
	}
	return "closure"
}

type builtinFunc func(it *Interpreter, args []Value) (Value, error)

var builtins map[string]builtinFunc

func init() {
	builtins = map[string]builtinFunc{
		"len":    builtinLen,
		"str":    builtinStr,
		"int":    builtinInt,
		"float":  builtinFloat,
		"bool":   builtinBool,
		"type":   builtinType,
		"keys":   builtinKeys,
		"values": builtinValues,
		"range":  builtinRange,
		"cd":     builtinCd,
	}
}

func builtinFunction(name string) (builtinFunc, bool) {
	fn, ok := builtins[name]
	return fn, ok
}

// BuiltinNames lists the names of the built-in functions.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	return names
}

func arity(name string, args []Value, n int) error {
	if len(args) != n {
		return typeErrorf("%s expects %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

func builtinLen(_ *Interpreter, args []Value) (Value, error) {
	if err := arity("len", args, 1); err != nil {
		return None, err
	}
	n, err := lengthOf(args[0])
	if err != nil {
		return None, err
	}
	return Int(int32(n)), nil
}

func lengthOf(v Value) (int, error) {
	switch v.kind {
	case StringKind:
		return len([]rune(v.s)), nil
	case ListKind:
		return v.List().Len(), nil
	case DictKind:
		return v.Dict().Len(), nil
	case SetKind:
		return v.Set().Len(), nil
	case ObjectKind:
		return v.Object().Len(), nil
	case InstanceKind:
		return v.Instance().Fields.Len(), nil
	case NoneKind, SmallIntKind, NumberKind, BoolKind, ClosureKind:
		return 0, typeErrorf("%s has no length", v.kind)
	default:
		return 0, typeErrorf("%s has no length", v.kind)
	}
}

func builtinStr(_ *Interpreter, args []Value) (Value, error) {
	if err := arity("str", args, 1); err != nil {
		return None, err
	}
	return Str(Display(args[0])), nil
}

func builtinInt(_ *Interpreter, args []Value) (Value, error) {
	if err := arity("int", args, 1); err != nil {
		return None, err
	}
	v := args[0]
	switch v.kind {
	case SmallIntKind:
		return v, nil
	case NumberKind:
		if math.IsNaN(v.f) || math.IsInf(v.f, 0) {
			return None, typeErrorf("cannot convert %s to int", formatNumber(v.f))
		}
		return IntOrNum(int64(math.Trunc(v.f))), nil
	case StringKind:
		s := strings.TrimSpace(v.s)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return IntOrNum(n), nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return IntOrNum(int64(math.Trunc(f))), nil
		}
		return None, typeErrorf("cannot convert %q to int", v.s)
	case BoolKind:
		if v.b {
			return Int(1), nil
		}
		return Int(0), nil
	default:
		return None, typeErrorf("cannot convert %s to int", v.kind)
	}
}

func builtinFloat(_ *Interpreter, args []Value) (Value, error) {
	if err := arity("float", args, 1); err != nil {
		return None, err
	}
	v := args[0]
	switch v.kind {
	case SmallIntKind, NumberKind:
		return Num(v.Float()), nil
	case StringKind:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return None, typeErrorf("cannot convert %q to float", v.s)
		}
		return Num(f), nil
	default:
		return None, typeErrorf("cannot convert %s to float", v.kind)
	}
}

// builtinBool is the only truthiness coercion in the language.
func builtinBool(_ *Interpreter, args []Value) (Value, error) {
	if err := arity("bool", args, 1); err != nil {
		return None, err
	}
	return Bool(truthy(args[0])), nil
}

func truthy(v Value) bool {
	switch v.kind {
	case NoneKind:
		return false
	case BoolKind:
		return v.b
	case SmallIntKind:
		return v.i != 0
	case NumberKind:
		return v.f != 0 && !math.IsNaN(v.f)
	case StringKind:
		return v.s != ""
	case ListKind:
		return v.List().Len() > 0
	case DictKind:
		return v.Dict().Len() > 0
	case SetKind:
		return v.Set().Len() > 0
	case ObjectKind:
		return v.Object().Data() != nil
	case InstanceKind, ClosureKind:
		return true
	default:
		return true
	}
}

func builtinType(_ *Interpreter, args []Value) (Value, error) {
	if err := arity("type", args, 1); err != nil {
		return None, err
	}
	return Str(typeName(args[0])), nil
}

func typeName(v Value) string {
	if v.kind == InstanceKind {
		return v.Instance().Class
	}
	return v.kind.String()
}

func builtinKeys(_ *Interpreter, args []Value) (Value, error) {
	if err := arity("keys", args, 1); err != nil {
		return None, err
	}
	return keysOf(args[0])
}

func keysOf(v Value) (Value, error) {
	switch v.kind {
	case DictKind:
		return ListOf(v.Dict().Keys()...), nil
	case InstanceKind:
		return ListOf(v.Instance().Fields.Keys()...), nil
	case ObjectKind:
		var out []Value
		for _, k := range v.Object().Keys() {
			out = append(out, Str(k))
		}
		return ListOf(out...), nil
	default:
		return None, typeErrorf("%s has no keys", v.kind)
	}
}

func builtinValues(_ *Interpreter, args []Value) (Value, error) {
	if err := arity("values", args, 1); err != nil {
		return None, err
	}
	v := args[0]
	switch v.kind {
	case DictKind:
		return ListOf(v.Dict().Values()...), nil
	case InstanceKind:
		return ListOf(v.Instance().Fields.Values()...), nil
	case ObjectKind:
		o := v.Object()
		if o.IsArray() {
			return ListOf(o.Items()...), nil
		}
		var out []Value
		for _, k := range o.Keys() {
			val, _ := o.Get(k)
			out = append(out, val)
		}
		return ListOf(out...), nil
	default:
		return None, typeErrorf("%s has no values", v.kind)
	}
}

func builtinRange(_ *Interpreter, args []Value) (Value, error) {
	bounds := make([]int, 0, 3)
	for _, a := range args {
		n, err := indexInt(a)
		if err != nil {
			return None, typeErrorf("range expects integers, got %s", a.kind)
		}
		bounds = append(bounds, n)
	}
	start, stop, step := 0, 0, 1
	switch len(bounds) {
	case 1:
		stop = bounds[0]
	case 2:
		start, stop = bounds[0], bounds[1]
	case 3:
		start, stop, step = bounds[0], bounds[1], bounds[2]
	default:
		return None, typeErrorf("range expects 1 to 3 arguments, got %d", len(args))
	}
	if step == 0 {
		return None, newError(ArithmeticError, "range step must not be zero")
	}
	var out []Value
	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		out = append(out, IntOrNum(int64(i)))
	}
	return ListOf(out...), nil
}

func builtinCd(it *Interpreter, args []Value) (Value, error) {
	if len(args) == 0 {
		home, err := os.UserHomeDir()
		if err != nil {
			return None, newError(NameError, "cannot resolve home directory: %v", err)
		}
		args = []Value{Str(home)}
	}
	if err := arity("cd", args, 1); err != nil {
		return None, err
	}
	if args[0].kind != StringKind {
		return None, typeErrorf("cd expects a path string, got %s", args[0].kind)
	}
	dir := args[0].s
	if !filepath.IsAbs(dir) {
		base := it.workDir
		if base == "" {
			base, _ = os.Getwd()
		}
		dir = filepath.Join(base, dir)
	}
	st, err := os.Stat(dir)
	if err != nil {
		return None, newError(NameError, "cd: %v", err)
	}
	if !st.IsDir() {
		return None, typeErrorf("cd: %s is not a directory", dir)
	}
	it.workDir = filepath.Clean(dir)
	return Str(it.workDir), nil
}

// WorkDir reports the directory commands run in. Empty means the process
// working directory.
func (it *Interpreter) WorkDir() string {
	return it.workDir
}
