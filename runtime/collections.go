package sgruntime

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

type List struct {
	Items []Value
}

func NewList(items ...Value) *List {
	return &List{Items: items}
}

func (l *List) Len() int {
	return len(l.Items)
}

type dictEntry struct {
	key Value
	val Value
}

// Dict is an insertion-ordered map. Keys are stored under their hash key
// so that equal values share one slot.
type Dict struct {
	m *linkedhashmap.Map
}

func NewDict() *Dict {
	return &Dict{m: linkedhashmap.New()}
}

func (d *Dict) Len() int {
	return d.m.Size()
}

func (d *Dict) Get(key Value) (Value, bool, error) {
	h, err := hashKey(key)
	if err != nil {
		return None, false, err
	}
	raw, ok := d.m.Get(h)
	if !ok {
		return None, false, nil
	}
	return raw.(dictEntry).val, true, nil
}

// GetStr looks up a string key; string keys are always hashable.
func (d *Dict) GetStr(key string) (Value, bool) {
	v, ok, _ := d.Get(Str(key))
	return v, ok
}

// Put inserts or replaces. A replaced key keeps its original position.
func (d *Dict) Put(key, val Value) error {
	h, err := hashKey(key)
	if err != nil {
		return err
	}
	if raw, ok := d.m.Get(h); ok {
		e := raw.(dictEntry)
		e.val = val
		d.m.Put(h, e)
		return nil
	}
	d.m.Put(h, dictEntry{key: key, val: val})
	return nil
}

func (d *Dict) PutStr(key string, val Value) {
	_ = d.Put(Str(key), val)
}

func (d *Dict) Remove(key Value) (Value, bool, error) {
	h, err := hashKey(key)
	if err != nil {
		return None, false, err
	}
	raw, ok := d.m.Get(h)
	if !ok {
		return None, false, nil
	}
	d.m.Remove(h)
	return raw.(dictEntry).val, true, nil
}

// Each visits entries in insertion order until fn returns false.
func (d *Dict) Each(fn func(k, v Value) bool) {
	it := d.m.Iterator()
	for it.Next() {
		e := it.Value().(dictEntry)
		if !fn(e.key, e.val) {
			return
		}
	}
}

func (d *Dict) Keys() []Value {
	out := make([]Value, 0, d.Len())
	d.Each(func(k, _ Value) bool {
		out = append(out, k)
		return true
	})
	return out
}

func (d *Dict) Values() []Value {
	out := make([]Value, 0, d.Len())
	d.Each(func(_, v Value) bool {
		out = append(out, v)
		return true
	})
	return out
}

func (d *Dict) Copy() *Dict {
	cp := NewDict()
	d.Each(func(k, v Value) bool {
		_ = cp.Put(k, v)
		return true
	})
	return cp
}

// Set holds unique values by value equality, remembering insertion order.
type Set struct {
	m *linkedhashmap.Map
}

func NewSet() *Set {
	return &Set{m: linkedhashmap.New()}
}

func (s *Set) Len() int {
	return s.m.Size()
}

func (s *Set) Add(v Value) error {
	h, err := hashKey(v)
	if err != nil {
		return err
	}
	if _, ok := s.m.Get(h); !ok {
		s.m.Put(h, v)
	}
	return nil
}

func (s *Set) Contains(v Value) (bool, error) {
	h, err := hashKey(v)
	if err != nil {
		return false, err
	}
	_, ok := s.m.Get(h)
	return ok, nil
}

func (s *Set) Remove(v Value) (bool, error) {
	h, err := hashKey(v)
	if err != nil {
		return false, err
	}
	_, ok := s.m.Get(h)
	s.m.Remove(h)
	return ok, nil
}

func (s *Set) Clear() {
	s.m.Clear()
}

func (s *Set) Items() []Value {
	out := make([]Value, 0, s.Len())
	it := s.m.Iterator()
	for it.Next() {
		out = append(out, it.Value().(Value))
	}
	return out
}

// Sorted returns the members ordered by their display form.
func (s *Set) Sorted() []Value {
	items := s.Items()
	sort.SliceStable(items, func(i, j int) bool {
		return Display(items[i]) < Display(items[j])
	})
	return items
}

func (s *Set) Copy() *Set {
	cp := NewSet()
	it := s.m.Iterator()
	for it.Next() {
		cp.m.Put(it.Key(), it.Value())
	}
	return cp
}

// hashKey derives the storage key for dict keys and set members. Numbers
// that compare equal share a key regardless of SmallInt or Number kind.
func hashKey(v Value) (string, error) {
	var b strings.Builder
	if err := writeHashKey(&b, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeHashKey(b *strings.Builder, v Value) error {
	switch v.kind {
	case NoneKind:
		b.WriteString("z")
	case StringKind:
		b.WriteString("s")
		b.WriteString(strconv.Quote(v.s))
	case SmallIntKind:
		b.WriteString("n")
		b.WriteString(strconv.FormatInt(int64(v.i), 10))
	case NumberKind:
		b.WriteString("n")
		if v.f == math.Trunc(v.f) && math.Abs(v.f) < 1<<62 {
			b.WriteString(strconv.FormatInt(int64(v.f), 10))
		} else {
			b.WriteString(strconv.FormatFloat(v.f, 'g', -1, 64))
		}
	case BoolKind:
		b.WriteString("b")
		b.WriteString(strconv.FormatBool(v.b))
	case ListKind:
		b.WriteString("l[")
		for _, item := range v.List().Items {
			if err := writeHashKey(b, item); err != nil {
				return err
			}
			b.WriteString(",")
		}
		b.WriteString("]")
	case DictKind:
		keys := []string{}
		var err error
		v.Dict().Each(func(k, val Value) bool {
			var kb strings.Builder
			if err = writeHashKey(&kb, k); err != nil {
				return false
			}
			kb.WriteString("=")
			if err = writeHashKey(&kb, val); err != nil {
				return false
			}
			keys = append(keys, kb.String())
			return true
		})
		if err != nil {
			return err
		}
		sort.Strings(keys)
		b.WriteString("d{")
		b.WriteString(strings.Join(keys, ","))
		b.WriteString("}")
	case SetKind:
		keys := []string{}
		it := v.Set().m.Iterator()
		for it.Next() {
			keys = append(keys, it.Key().(string))
		}
		sort.Strings(keys)
		b.WriteString("e{")
		b.WriteString(strings.Join(keys, ","))
		b.WriteString("}")
	case ObjectKind:
		b.WriteString("o")
		b.WriteString(Display(v))
	case InstanceKind:
		in := v.Instance()
		b.WriteString("i")
		b.WriteString(in.Class)
		return writeHashKey(b, DictVal(in.Fields))
	case ClosureKind:
		return typeErrorf("unhashable value of type closure")
	default:
		return typeErrorf("unhashable value of type %s", v.kind)
	}
	return nil
}
