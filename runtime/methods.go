package sgruntime

import (
	"slices"
	"sort"
	"strings"

	"github.com/gosuda/stargate/command"
)

type methodFunc func(it *Interpreter, recv Value, args []Value) (Value, error)

var (
	stringMethods    map[string]methodFunc
	listMethods      map[string]methodFunc
	dictMethods      map[string]methodFunc
	setMethods       map[string]methodFunc
	objectMethods    map[string]methodFunc
	universalMethods map[string]methodFunc
)

func init() {
	stringMethods = map[string]methodFunc{
		"trim":          strFunc(strings.TrimSpace),
		"trim_start":    strFunc(func(s string) string { return strings.TrimLeft(s, " \t\r\n") }),
		"trim_left":     strFunc(func(s string) string { return strings.TrimLeft(s, " \t\r\n") }),
		"trim_end":      strFunc(func(s string) string { return strings.TrimRight(s, " \t\r\n") }),
		"trim_right":    strFunc(func(s string) string { return strings.TrimRight(s, " \t\r\n") }),
		"upper":         strFunc(strings.ToUpper),
		"to_uppercase":  strFunc(strings.ToUpper),
		"lower":         strFunc(strings.ToLower),
		"to_lowercase":  strFunc(strings.ToLower),
		"len":           lenMethod,
		"length":        lenMethod,
		"contains":      strPredicate(strings.Contains),
		"starts_with":   strPredicate(strings.HasPrefix),
		"ends_with":     strPredicate(strings.HasSuffix),
		"replace":       stringReplace,
		"split":         stringSplit,
		"slice":         stringSlice,
		"repeat":        stringRepeat,
		"chars":         stringChars,
		"lines":         stringLines,
		"is_empty":      isEmptyMethod,
		"index_of":      stringIndexOf,
		"parse_int":     func(it *Interpreter, recv Value, _ []Value) (Value, error) { return builtinInt(it, []Value{recv}) },
		"parse_float":   func(it *Interpreter, recv Value, _ []Value) (Value, error) { return builtinFloat(it, []Value{recv}) },
	}

	listMethods = map[string]methodFunc{
		"append":   listAppend,
		"push":     listAppend,
		"insert":   listInsert,
		"remove":   listRemove,
		"pop":      listPop,
		"clear":    listClear,
		"size":     lenMethod,
		"len":      lenMethod,
		"length":   lenMethod,
		"is_empty": isEmptyMethod,
		"contains": listContains,
		"index_of": listIndexOf,
		"join":     listJoin,
		"reverse":  listReverse,
		"sort":     listSort,
		"first":    listFirst,
		"last":     listLast,
		"map":      seqMap,
		"filter":   seqFilter,
		"reduce":   seqReduce,
	}

	dictMethods = map[string]methodFunc{
		"keys":     func(_ *Interpreter, recv Value, _ []Value) (Value, error) { return keysOf(recv) },
		"values":   func(_ *Interpreter, recv Value, _ []Value) (Value, error) { return ListOf(recv.Dict().Values()...), nil },
		"items":    dictItems,
		"get":      dictGet,
		"has":      dictHas,
		"contains": dictHas,
		"remove":   dictRemove,
		"size":     lenMethod,
		"len":      lenMethod,
		"is_empty": isEmptyMethod,
		"map":      dictMap,
		"filter":   dictFilter,
	}

	setMethods = map[string]methodFunc{
		"add":                  setAdd,
		"insert":               setAdd,
		"remove":               setRemove,
		"contains":             setContains,
		"size":                 lenMethod,
		"len":                  lenMethod,
		"is_empty":             isEmptyMethod,
		"clear":                setClear,
		"union":                setAlgebra(func(inA, inB bool) bool { return inA || inB }),
		"intersection":         setAlgebra(func(inA, inB bool) bool { return inA && inB }),
		"difference":           setAlgebra(func(inA, inB bool) bool { return inA && !inB }),
		"symmetric_difference": setAlgebra(func(inA, inB bool) bool { return inA != inB }),
		"is_subset":            setRelation(func(a, b *Set) (bool, error) { return subset(a, b) }),
		"is_superset":          setRelation(func(a, b *Set) (bool, error) { return subset(b, a) }),
		"is_disjoint":          setRelation(disjoint),
		"to_list":              func(_ *Interpreter, recv Value, _ []Value) (Value, error) { return ListOf(recv.Set().Sorted()...), nil },
	}

	objectMethods = map[string]methodFunc{
		"keys":    func(_ *Interpreter, recv Value, _ []Value) (Value, error) { return keysOf(recv) },
		"len":     lenMethod,
		"length":  lenMethod,
		"size":    lenMethod,
		"entries": func(_ *Interpreter, recv Value, _ []Value) (Value, error) { return ListOf(recv.Object().Items()...), nil },
		"files":   objectSelect(command.Files),
		"dirs":    objectSelect(command.Dirs),
		"paths":   objectPaths,
		"to_list": func(_ *Interpreter, recv Value, _ []Value) (Value, error) { return ListOf(recv.Object().Items()...), nil },
		"to_dict": objectToDict,
		"to_json": objectToJSON,
		"get":     objectGet,
		"has":     objectHas,
		"map":     seqMap,
		"filter":  seqFilter,
		"reduce":  seqReduce,
	}

	universalMethods = map[string]methodFunc{
		"apply": func(it *Interpreter, recv Value, args []Value) (Value, error) {
			if err := methodArity("apply", args, 1); err != nil {
				return None, err
			}
			return it.callValue(args[0], recv)
		},
		"type":      func(_ *Interpreter, recv Value, _ []Value) (Value, error) { return Str(typeName(recv)), nil },
		"to_string": func(_ *Interpreter, recv Value, _ []Value) (Value, error) { return Str(Display(recv)), nil },
		"is_none":   func(_ *Interpreter, recv Value, _ []Value) (Value, error) { return Bool(recv.kind == NoneKind), nil },
		"unwrap_or": func(_ *Interpreter, recv Value, args []Value) (Value, error) {
			if err := methodArity("unwrap_or", args, 1); err != nil {
				return None, err
			}
			if recv.kind == NoneKind {
				return args[0], nil
			}
			return recv, nil
		},
	}
}

func methodTable(k ValueKind) map[string]methodFunc {
	switch k {
	case StringKind:
		return stringMethods
	case ListKind:
		return listMethods
	case DictKind:
		return dictMethods
	case SetKind:
		return setMethods
	case ObjectKind:
		return objectMethods
	case NoneKind, SmallIntKind, NumberKind, BoolKind, InstanceKind, ClosureKind:
		return nil
	default:
		return nil
	}
}

// methodNames lists the methods callable on v, sorted.
func (it *Interpreter) methodNames(v Value) []string {
	var names []string
	for name := range methodTable(v.kind) {
		names = append(names, name)
	}
	for name := range universalMethods {
		names = append(names, name)
	}
	if v.kind == InstanceKind {
		in := v.Instance()
		if in.native != nil {
			names = append(names, in.native.members()...)
		} else if chain, err := it.lineage(in.Class); err == nil {
			for _, def := range chain {
				for _, m := range def.decl.Methods {
					names = append(names, m.Name)
				}
			}
		}
	}
	sort.Strings(names)
	return slices.Compact(names)
}

func (it *Interpreter) callMethod(recv Value, name string, args []Value) (Value, error) {
	if recv.kind == InstanceKind {
		in := recv.Instance()
		if in.native != nil {
			return in.native.call(name, args)
		}
		if m, ok := it.findMethod(in.Class, name); ok {
			return it.callClosure(it.bindMethod(in, m), args)
		}
		if f, ok := in.Fields.GetStr(name); ok && f.kind == ClosureKind {
			return it.callClosure(f.Closure(), args)
		}
	}
	if recv.kind == DictKind {
		if f, ok := recv.Dict().GetStr(name); ok && f.kind == ClosureKind {
			return it.callClosure(f.Closure(), args)
		}
	}
	if fn, ok := methodTable(recv.kind)[name]; ok {
		return fn(it, recv, args)
	}
	if fn, ok := universalMethods[name]; ok {
		return fn(it, recv, args)
	}
	return None, it.propertyError(name, it.methodNames(recv), typeName(recv)+" has no method %q")
}

func methodArity(name string, args []Value, n int) error {
	if len(args) != n {
		return typeErrorf("%s() expects %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

func argString(name string, v Value) (string, error) {
	if v.kind != StringKind {
		return "", typeErrorf("%s() expects a string argument, got %s", name, v.kind)
	}
	return v.s, nil
}

func lenMethod(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("len", args, 0); err != nil {
		return None, err
	}
	n, err := lengthOf(recv)
	if err != nil {
		return None, err
	}
	return Int(int32(n)), nil
}

func isEmptyMethod(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("is_empty", args, 0); err != nil {
		return None, err
	}
	n, err := lengthOf(recv)
	if err != nil {
		return None, err
	}
	return Bool(n == 0), nil
}

// string

func strFunc(fn func(string) string) methodFunc {
	return func(_ *Interpreter, recv Value, args []Value) (Value, error) {
		if len(args) != 0 {
			return None, typeErrorf("string method expects no arguments, got %d", len(args))
		}
		return Str(fn(recv.s)), nil
	}
}

func strPredicate(fn func(s, sub string) bool) methodFunc {
	return func(_ *Interpreter, recv Value, args []Value) (Value, error) {
		if len(args) != 1 {
			return None, typeErrorf("string predicate expects 1 argument, got %d", len(args))
		}
		sub, err := argString("string predicate", args[0])
		if err != nil {
			return None, err
		}
		return Bool(fn(recv.s, sub)), nil
	}
}

func stringReplace(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("replace", args, 2); err != nil {
		return None, err
	}
	from, err := argString("replace", args[0])
	if err != nil {
		return None, err
	}
	return Str(strings.ReplaceAll(recv.s, from, Display(args[1]))), nil
}

func stringSplit(_ *Interpreter, recv Value, args []Value) (Value, error) {
	var parts []string
	switch len(args) {
	case 0:
		parts = strings.Fields(recv.s)
	case 1:
		sep, err := argString("split", args[0])
		if err != nil {
			return None, err
		}
		parts = strings.Split(recv.s, sep)
	default:
		return None, typeErrorf("split() expects at most 1 argument, got %d", len(args))
	}
	out := make([]Value, 0, len(parts))
	for _, p := range parts {
		out = append(out, Str(p))
	}
	return ListOf(out...), nil
}

func stringSlice(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("slice", args, 2); err != nil {
		return None, err
	}
	lo, err := indexInt(args[0])
	if err != nil {
		return None, err
	}
	hi, err := indexInt(args[1])
	if err != nil {
		return None, err
	}
	rs := []rune(recv.s)
	if lo < 0 || hi > len(rs) || lo > hi {
		return None, newError(IndexError, "slice indices out of bounds: start=%d, end=%d, length=%d", lo, hi, len(rs))
	}
	return Str(string(rs[lo:hi])), nil
}

func stringRepeat(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("repeat", args, 1); err != nil {
		return None, err
	}
	n, err := indexInt(args[0])
	if err != nil {
		return None, err
	}
	if n < 0 {
		return None, typeErrorf("repeat() count must not be negative")
	}
	return Str(strings.Repeat(recv.s, n)), nil
}

func stringChars(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("chars", args, 0); err != nil {
		return None, err
	}
	var out []Value
	for _, r := range recv.s {
		out = append(out, Str(string(r)))
	}
	return ListOf(out...), nil
}

func stringLines(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("lines", args, 0); err != nil {
		return None, err
	}
	var out []Value
	for _, line := range strings.Split(strings.TrimRight(recv.s, "\n"), "\n") {
		out = append(out, Str(strings.TrimSuffix(line, "\r")))
	}
	if recv.s == "" {
		out = nil
	}
	return ListOf(out...), nil
}

func stringIndexOf(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("index_of", args, 1); err != nil {
		return None, err
	}
	sub, err := argString("index_of", args[0])
	if err != nil {
		return None, err
	}
	i := strings.Index(recv.s, sub)
	if i < 0 {
		return Int(-1), nil
	}
	return Int(int32(len([]rune(recv.s[:i])))), nil
}

// list

func listAppend(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("append", args, 1); err != nil {
		return None, err
	}
	l := recv.List()
	l.Items = append(l.Items, args[0])
	return recv, nil
}

func listInsert(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("insert", args, 2); err != nil {
		return None, err
	}
	l := recv.List()
	i, err := indexInt(args[0])
	if err != nil {
		return None, err
	}
	if i < 0 {
		i += len(l.Items)
	}
	if i < 0 || i > len(l.Items) {
		return None, newError(IndexError, "index %d out of bounds for insert (list length: %d)", i, len(l.Items))
	}
	l.Items = slices.Insert(l.Items, i, args[1])
	return recv, nil
}

func listRemove(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("remove", args, 1); err != nil {
		return None, err
	}
	l := recv.List()
	i, err := normalizeIndex(args[0], len(l.Items))
	if err != nil {
		return None, err
	}
	l.Items = slices.Delete(l.Items, i, i+1)
	return recv, nil
}

func listPop(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("pop", args, 0); err != nil {
		return None, err
	}
	l := recv.List()
	if len(l.Items) == 0 {
		return None, newError(IndexError, "cannot pop from empty list")
	}
	last := l.Items[len(l.Items)-1]
	l.Items = l.Items[:len(l.Items)-1]
	return last, nil
}

func listClear(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("clear", args, 0); err != nil {
		return None, err
	}
	recv.List().Items = nil
	return recv, nil
}

func listContains(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("contains", args, 1); err != nil {
		return None, err
	}
	for _, item := range recv.List().Items {
		if Equal(item, args[0]) {
			return Bool(true), nil
		}
	}
	return Bool(false), nil
}

func listIndexOf(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("index_of", args, 1); err != nil {
		return None, err
	}
	for i, item := range recv.List().Items {
		if Equal(item, args[0]) {
			return Int(int32(i)), nil
		}
	}
	return Int(-1), nil
}

func listJoin(_ *Interpreter, recv Value, args []Value) (Value, error) {
	sep := ""
	switch len(args) {
	case 0:
	case 1:
		s, err := argString("join", args[0])
		if err != nil {
			return None, err
		}
		sep = s
	default:
		return None, typeErrorf("join() expects at most 1 argument, got %d", len(args))
	}
	parts := make([]string, 0, recv.List().Len())
	for _, item := range recv.List().Items {
		parts = append(parts, Display(item))
	}
	return Str(strings.Join(parts, sep)), nil
}

func listReverse(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("reverse", args, 0); err != nil {
		return None, err
	}
	items := slices.Clone(recv.List().Items)
	slices.Reverse(items)
	return ListOf(items...), nil
}

// listSort returns a sorted copy. Numbers and strings sort naturally;
// mixed lists fall back to display order.
func listSort(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("sort", args, 0); err != nil {
		return None, err
	}
	items := slices.Clone(recv.List().Items)
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.IsNumeric() && b.IsNumeric() {
			return a.Float() < b.Float()
		}
		return Display(a) < Display(b)
	})
	return ListOf(items...), nil
}

func listFirst(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("first", args, 0); err != nil {
		return None, err
	}
	if items := recv.List().Items; len(items) > 0 {
		return items[0], nil
	}
	return None, nil
}

func listLast(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("last", args, 0); err != nil {
		return None, err
	}
	if items := recv.List().Items; len(items) > 0 {
		return items[len(items)-1], nil
	}
	return None, nil
}

func seqItems(recv Value) []Value {
	if recv.kind == ObjectKind {
		return recv.Object().Items()
	}
	return slices.Clone(recv.List().Items)
}

func seqMap(it *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("map", args, 1); err != nil {
		return None, err
	}
	items := seqItems(recv)
	out := make([]Value, 0, len(items))
	for _, item := range items {
		v, err := it.callValue(args[0], item)
		if err != nil {
			return None, err
		}
		out = append(out, v)
	}
	return ListOf(out...), nil
}

func seqFilter(it *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("filter", args, 1); err != nil {
		return None, err
	}
	var out []Value
	for _, item := range seqItems(recv) {
		keep, err := it.callPredicate(args[0], item)
		if err != nil {
			return None, err
		}
		if keep {
			out = append(out, item)
		}
	}
	return ListOf(out...), nil
}

func seqReduce(it *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("reduce", args, 2); err != nil {
		return None, err
	}
	acc := args[0]
	for _, item := range seqItems(recv) {
		v, err := it.callValue(args[1], acc, item)
		if err != nil {
			return None, err
		}
		acc = v
	}
	return acc, nil
}

func (it *Interpreter) callPredicate(fn Value, args ...Value) (bool, error) {
	v, err := it.callValue(fn, args...)
	if err != nil {
		return false, err
	}
	if v.kind != BoolKind {
		return false, typeErrorf("filter predicate must return bool, got %s", v.kind)
	}
	return v.b, nil
}

// dict

func dictItems(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("items", args, 0); err != nil {
		return None, err
	}
	var out []Value
	recv.Dict().Each(func(k, v Value) bool {
		out = append(out, ListOf(k, v))
		return true
	})
	return ListOf(out...), nil
}

func dictGet(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return None, typeErrorf("get() expects 1 or 2 arguments, got %d", len(args))
	}
	v, ok, err := recv.Dict().Get(args[0])
	if err != nil {
		return None, err
	}
	if !ok {
		if len(args) == 2 {
			return args[1], nil
		}
		return None, nil
	}
	return v, nil
}

func dictHas(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("has", args, 1); err != nil {
		return None, err
	}
	_, ok, err := recv.Dict().Get(args[0])
	return Bool(ok), err
}

func dictRemove(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("remove", args, 1); err != nil {
		return None, err
	}
	v, _, err := recv.Dict().Remove(args[0])
	return v, err
}

func dictMap(it *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("map", args, 1); err != nil {
		return None, err
	}
	out := NewDict()
	var callErr error
	recv.Dict().Each(func(k, v Value) bool {
		var mapped Value
		mapped, callErr = it.callValue(args[0], v)
		if callErr != nil {
			return false
		}
		callErr = out.Put(k, mapped)
		return callErr == nil
	})
	if callErr != nil {
		return None, callErr
	}
	return DictVal(out), nil
}

func dictFilter(it *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("filter", args, 1); err != nil {
		return None, err
	}
	fn := args[0]
	two := fn.kind == ClosureKind && len(fn.Closure().Params) == 2
	out := NewDict()
	var callErr error
	recv.Dict().Each(func(k, v Value) bool {
		var keep bool
		if two {
			keep, callErr = it.callPredicate(fn, k, v)
		} else {
			keep, callErr = it.callPredicate(fn, v)
		}
		if callErr != nil {
			return false
		}
		if keep {
			callErr = out.Put(k, v)
		}
		return callErr == nil
	})
	if callErr != nil {
		return None, callErr
	}
	return DictVal(out), nil
}

// set

func setAdd(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("add", args, 1); err != nil {
		return None, err
	}
	return recv, recv.Set().Add(args[0])
}

func setRemove(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("remove", args, 1); err != nil {
		return None, err
	}
	_, err := recv.Set().Remove(args[0])
	return recv, err
}

func setContains(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("contains", args, 1); err != nil {
		return None, err
	}
	ok, err := recv.Set().Contains(args[0])
	return Bool(ok), err
}

func setClear(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("clear", args, 0); err != nil {
		return None, err
	}
	recv.Set().Clear()
	return recv, nil
}

func setArg(name string, args []Value) (*Set, error) {
	if err := methodArity(name, args, 1); err != nil {
		return nil, err
	}
	if args[0].kind != SetKind {
		return nil, typeErrorf("%s() expects a set, got %s", name, args[0].kind)
	}
	return args[0].Set(), nil
}

// setAlgebra builds a new set from the members of both operands that
// satisfy keep, preserving first-seen order.
func setAlgebra(keep func(inA, inB bool) bool) methodFunc {
	return func(_ *Interpreter, recv Value, args []Value) (Value, error) {
		other, err := setArg("set operation", args)
		if err != nil {
			return None, err
		}
		a := recv.Set()
		out := NewSet()
		for _, pass := range [][]Value{a.Items(), other.Items()} {
			for _, v := range pass {
				inA, err := a.Contains(v)
				if err != nil {
					return None, err
				}
				inB, err := other.Contains(v)
				if err != nil {
					return None, err
				}
				if keep(inA, inB) {
					if err := out.Add(v); err != nil {
						return None, err
					}
				}
			}
		}
		return SetVal(out), nil
	}
}

func setRelation(rel func(a, b *Set) (bool, error)) methodFunc {
	return func(_ *Interpreter, recv Value, args []Value) (Value, error) {
		other, err := setArg("set relation", args)
		if err != nil {
			return None, err
		}
		ok, err := rel(recv.Set(), other)
		return Bool(ok), err
	}
}

func subset(a, b *Set) (bool, error) {
	for _, v := range a.Items() {
		ok, err := b.Contains(v)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func disjoint(a, b *Set) (bool, error) {
	for _, v := range a.Items() {
		ok, err := b.Contains(v)
		if err != nil || ok {
			return false, err
		}
	}
	return true, nil
}

// object

func objectSelect(sel func(tree any) []any) methodFunc {
	return func(_ *Interpreter, recv Value, args []Value) (Value, error) {
		if len(args) != 0 {
			return None, typeErrorf("expects no arguments, got %d", len(args))
		}
		return ListOf(treeValues(sel(recv.Object().Data()))...), nil
	}
}

func objectPaths(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("paths", args, 0); err != nil {
		return None, err
	}
	var out []Value
	for _, p := range command.Paths(recv.Object().Data()) {
		out = append(out, Str(p))
	}
	return ListOf(out...), nil
}

func objectToDict(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("to_dict", args, 0); err != nil {
		return None, err
	}
	o := recv.Object()
	if !o.IsMap() {
		return None, typeErrorf("to_dict() needs a map object")
	}
	d := NewDict()
	for _, k := range o.Keys() {
		v, _ := o.Get(k)
		d.PutStr(k, v)
	}
	return DictVal(d), nil
}

func objectToJSON(_ *Interpreter, recv Value, args []Value) (Value, error) {
	indent := ""
	if len(args) == 1 && truthy(args[0]) {
		indent = "  "
	}
	b, err := ToJSON(recv, indent)
	if err != nil {
		return None, err
	}
	return Str(string(b)), nil
}

func objectGet(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return None, typeErrorf("get() expects 1 or 2 arguments, got %d", len(args))
	}
	key, err := argString("get", args[0])
	if err != nil {
		return None, err
	}
	if v, ok := recv.Object().Get(key); ok {
		return v, nil
	}
	if len(args) == 2 {
		return args[1], nil
	}
	return None, nil
}

func objectHas(_ *Interpreter, recv Value, args []Value) (Value, error) {
	if err := methodArity("has", args, 1); err != nil {
		return None, err
	}
	key, err := argString("has", args[0])
	if err != nil {
		return None, err
	}
	_, ok := recv.Object().Get(key)
	return Bool(ok), nil
}
