package sgruntime

import (
	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/gosuda/stargate/command"
)

// Object wraps a structured-output tree as produced by command.Decode.
type Object struct {
	data any
}

func NewObject(data any) *Object {
	return &Object{data: data}
}

func (o *Object) Data() any {
	return o.data
}

func (o *Object) IsArray() bool {
	_, ok := o.data.([]any)
	return ok
}

func (o *Object) IsMap() bool {
	_, ok := o.data.(*linkedhashmap.Map)
	return ok
}

func (o *Object) Len() int {
	switch t := o.data.(type) {
	case []any:
		return len(t)
	case *linkedhashmap.Map:
		return t.Size()
	case string:
		return len([]rune(t))
	default:
		return 0
	}
}

func (o *Object) Keys() []string {
	m, ok := o.data.(*linkedhashmap.Map)
	if !ok {
		return nil
	}
	out := make([]string, 0, m.Size())
	for _, k := range m.Keys() {
		out = append(out, k.(string))
	}
	return out
}

func (o *Object) Get(key string) (Value, bool) {
	m, ok := o.data.(*linkedhashmap.Map)
	if !ok {
		return None, false
	}
	raw, ok := m.Get(key)
	if !ok {
		return None, false
	}
	return fromTree(raw), true
}

// Items returns the element values of an array object, or the adapter's
// best-effort entries for any other shape.
func (o *Object) Items() []Value {
	arr, ok := o.data.([]any)
	if !ok {
		arr = command.Entries(o.data)
	}
	return treeValues(arr)
}

func treeValues(arr []any) []Value {
	out := make([]Value, 0, len(arr))
	for _, item := range arr {
		out = append(out, fromTree(item))
	}
	return out
}

// fromTree converts a decoded tree node: scalars become plain values and
// arrays or maps stay wrapped as objects.
func fromTree(node any) Value {
	switch t := node.(type) {
	case nil:
		return None
	case string:
		return Str(t)
	case bool:
		return Bool(t)
	case int64:
		return IntOrNum(t)
	case int:
		return IntOrNum(int64(t))
	case float64:
		return Num(t)
	case []any, *linkedhashmap.Map:
		return ObjectVal(NewObject(t))
	default:
		return None
	}
}

// toTree converts a value to the tree form used for JSON encoding and
// object equality.
func toTree(v Value) (any, error) {
	switch v.kind {
	case NoneKind:
		return nil, nil
	case StringKind:
		return v.s, nil
	case SmallIntKind:
		return int64(v.i), nil
	case NumberKind:
		return v.f, nil
	case BoolKind:
		return v.b, nil
	case ListKind:
		return listTree(v.List().Items)
	case SetKind:
		return listTree(v.Set().Items())
	case DictKind:
		return dictTree(v.Dict())
	case ObjectKind:
		return v.Object().data, nil
	case InstanceKind:
		return dictTree(v.Instance().Fields)
	case ClosureKind:
		return nil, typeErrorf("cannot convert closure to structured data")
	default:
		return nil, typeErrorf("cannot convert %s to structured data", v.kind)
	}
}

func listTree(items []Value) (any, error) {
	out := make([]any, 0, len(items))
	for _, item := range items {
		t, err := toTree(item)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

func dictTree(d *Dict) (any, error) {
	m := linkedhashmap.New()
	var err error
	d.Each(func(k, val Value) bool {
		var t any
		t, err = toTree(val)
		if err != nil {
			return false
		}
		m.Put(Display(k), t)
		return true
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func treeEqual(a, b any) bool {
	switch at := a.(type) {
	case []any:
		bt, ok := b.([]any)
		if !ok || len(at) != len(bt) {
			return false
		}
		for i := range at {
			if !treeEqual(at[i], bt[i]) {
				return false
			}
		}
		return true
	case *linkedhashmap.Map:
		bt, ok := b.(*linkedhashmap.Map)
		if !ok || at.Size() != bt.Size() {
			return false
		}
		it := at.Iterator()
		for it.Next() {
			other, ok := bt.Get(it.Key())
			if !ok || !treeEqual(it.Value(), other) {
				return false
			}
		}
		return true
	default:
		return Equal(fromTree(a), fromTree(b))
	}
}
