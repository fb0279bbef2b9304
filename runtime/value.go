package sgruntime

import (
	"math"

	"github.com/gosuda/stargate/ast"
)

type ValueKind int

const (
	NoneKind ValueKind = iota
	StringKind
	SmallIntKind
	NumberKind
	BoolKind
	ListKind
	DictKind
	SetKind
	ObjectKind
	InstanceKind
	ClosureKind
)

func (k ValueKind) String() string {
	switch k {
	case NoneKind:
		return "none"
	case StringKind:
		return "string"
	case SmallIntKind:
		return "int"
	case NumberKind:
		return "number"
	case BoolKind:
		return "bool"
	case ListKind:
		return "list"
	case DictKind:
		return "dict"
	case SetKind:
		return "set"
	case ObjectKind:
		return "object"
	case InstanceKind:
		return "instance"
	case ClosureKind:
		return "closure"
	default:
		return "unknown"
	}
}

// Value is the closed set of runtime values. Containers, objects,
// instances and closures are shared by reference.
type Value struct {
	kind ValueKind
	s    string
	i    int32
	f    float64
	b    bool
	ref  any
}

var None = Value{kind: NoneKind}

func Str(v string) Value {
	return Value{kind: StringKind, s: v}
}

func Int(v int32) Value {
	return Value{kind: SmallIntKind, i: v}
}

func Num(v float64) Value {
	return Value{kind: NumberKind, f: v}
}

func Bool(v bool) Value {
	return Value{kind: BoolKind, b: v}
}

// IntOrNum returns a SmallInt when v fits in 32 bits, a Number otherwise.
func IntOrNum(v int64) Value {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return Int(int32(v))
	}
	return Num(float64(v))
}

func ListVal(l *List) Value {
	return Value{kind: ListKind, ref: l}
}

func ListOf(items ...Value) Value {
	return ListVal(NewList(items...))
}

func DictVal(d *Dict) Value {
	return Value{kind: DictKind, ref: d}
}

func SetVal(s *Set) Value {
	return Value{kind: SetKind, ref: s}
}

func ObjectVal(o *Object) Value {
	return Value{kind: ObjectKind, ref: o}
}

func InstanceVal(in *Instance) Value {
	return Value{kind: InstanceKind, ref: in}
}

func ClosureVal(c *Closure) Value {
	return Value{kind: ClosureKind, ref: c}
}

func (v Value) Kind() ValueKind {
	return v.kind
}

func (v Value) IsNone() bool {
	return v.kind == NoneKind
}

func (v Value) Str() string {
	return v.s
}

func (v Value) Int() int32 {
	return v.i
}

func (v Value) Float() float64 {
	if v.kind == SmallIntKind {
		return float64(v.i)
	}
	return v.f
}

func (v Value) Bool() bool {
	return v.b
}

func (v Value) IsNumeric() bool {
	return v.kind == SmallIntKind || v.kind == NumberKind
}

func (v Value) List() *List {
	l, _ := v.ref.(*List)
	return l
}

func (v Value) Dict() *Dict {
	d, _ := v.ref.(*Dict)
	return d
}

func (v Value) Set() *Set {
	s, _ := v.ref.(*Set)
	return s
}

func (v Value) Object() *Object {
	o, _ := v.ref.(*Object)
	return o
}

func (v Value) Instance() *Instance {
	in, _ := v.ref.(*Instance)
	return in
}

func (v Value) Closure() *Closure {
	c, _ := v.ref.(*Closure)
	return c
}

// String returns the canonical display form.
func (v Value) String() string {
	return Display(v)
}

// Instance is an object created by `new`. Fields is fully materialized
// at creation and never consults the class again.
type Instance struct {
	Class  string
	Fields *Dict
	native nativeObject
}

// Closure is a function value. Name is empty for anonymous closures;
// Self is set for methods bound to an instance.
type Closure struct {
	Name   string
	Params []string
	Body   ast.Expr
	Block  *ast.Block
	Env    *Env
	Self   *Instance
	// builtin implements host-provided callables such as ut methods.
	builtin func(args []Value) (Value, error)
}
