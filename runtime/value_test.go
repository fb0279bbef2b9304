package sgruntime

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/stargate/command"
)

func TestIntOrNumPromotes(t *testing.T) {
	assert.Equal(t, SmallIntKind, IntOrNum(math.MaxInt32).Kind())
	big := IntOrNum(math.MaxInt32 + 1)
	assert.Equal(t, NumberKind, big.Kind())
	assert.Equal(t, float64(math.MaxInt32+1), big.Float())
	assert.Equal(t, SmallIntKind, IntOrNum(math.MinInt32).Kind())
	assert.Equal(t, NumberKind, IntOrNum(math.MinInt32-1).Kind())
}

func TestDisplay(t *testing.T) {
	d := NewDict()
	d.PutStr("b", Int(1))
	d.PutStr("a", ListOf(Str("x"), None))
	s := NewSet()
	require.NoError(t, s.Add(Int(3)))
	require.NoError(t, s.Add(Int(1)))

	cases := []struct {
		v    Value
		want string
	}{
		{None, "none"},
		{Str("hi"), "hi"},
		{Int(-4), "-4"},
		{Num(2.5), "2.5"},
		{Num(3), "3"},
		{Num(1e21), "1e+21"},
		{Num(math.NaN()), "NaN"},
		{Num(math.Inf(-1)), "-inf"},
		{Bool(true), "true"},
		{ListOf(Int(1), Str("a")), "[1, a]"},
		{DictVal(d), "{b: 1, a: [x, none]}"},
		{SetVal(s), "{1, 3}"},
		{ClosureVal(&Closure{Name: "f"}), "<fn f>"},
		{ClosureVal(&Closure{Params: []string{"a", "b"}}), "<closure |a, b|>"},
		{InstanceVal(&Instance{Class: "Dog", Fields: NewDict()}), "<Dog instance>"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Display(tc.v))
	}
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(Int(2), Num(2)))
	assert.False(t, Equal(Int(2), Str("2")))
	assert.True(t, Equal(None, None))
	assert.True(t, Equal(ListOf(Int(1), ListOf(Str("a"))), ListOf(Num(1), ListOf(Str("a")))))
	assert.False(t, Equal(ListOf(Int(1)), ListOf(Int(1), Int(2))))
	assert.False(t, Equal(Num(math.NaN()), Num(math.NaN())))

	a, b := NewDict(), NewDict()
	a.PutStr("x", Int(1))
	a.PutStr("y", Int(2))
	b.PutStr("y", Int(2))
	b.PutStr("x", Int(1))
	assert.True(t, Equal(DictVal(a), DictVal(b)))

	fn := &Closure{Name: "f"}
	assert.True(t, Equal(ClosureVal(fn), ClosureVal(fn)))
	assert.False(t, Equal(ClosureVal(fn), ClosureVal(&Closure{Name: "f"})))
}

func TestDictOrderAndKeys(t *testing.T) {
	d := NewDict()
	require.NoError(t, d.Put(Str("b"), Int(1)))
	require.NoError(t, d.Put(Int(1), Str("int key")))
	require.NoError(t, d.Put(Str("a"), Int(2)))
	require.NoError(t, d.Put(Str("b"), Int(3)))
	assert.Equal(t, "{b: 3, 1: int key, a: 2}", Display(DictVal(d)))

	v, ok, err := d.Get(Num(1.0))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "int key", v.Str())

	removed, ok, err := d.Remove(Str("b"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, int32(3), removed.Int())
	assert.Equal(t, 2, d.Len())

	cp := d.Copy()
	cp.PutStr("c", None)
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, 3, cp.Len())

	err = d.Put(ClosureVal(&Closure{}), Int(1))
	kind, ok := KindOf(err)
	require.True(t, ok)
	assert.Equal(t, TypeError, kind)
}

func TestSetMembership(t *testing.T) {
	s := NewSet()
	require.NoError(t, s.Add(Int(2)))
	require.NoError(t, s.Add(Num(2)))
	require.NoError(t, s.Add(Str("2")))
	require.NoError(t, s.Add(ListOf(Int(1))))
	assert.Equal(t, 3, s.Len())

	ok, err := s.Contains(ListOf(Num(1)))
	require.NoError(t, err)
	assert.True(t, ok)

	removed, err := s.Remove(Str("2"))
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = s.Remove(Str("2"))
	require.NoError(t, err)
	assert.False(t, removed)

	cp := s.Copy()
	cp.Clear()
	assert.Equal(t, 2, s.Len())
	assert.Zero(t, cp.Len())
}

func TestArithmetic(t *testing.T) {
	cases := []struct {
		op   string
		l, r Value
		want Value
	}{
		{"+", Int(2), Int(3), Int(5)},
		{"-", Int(2), Num(0.5), Num(1.5)},
		{"*", Int(math.MaxInt32), Int(2), Num(2 * float64(math.MaxInt32))},
		{"/", Int(7), Int(2), Num(3.5)},
		{"/", Int(6), Int(3), Num(2)},
		{"%", Int(7), Int(3), Int(1)},
		{"%", Num(7.5), Int(2), Num(1.5)},
		{"+", Str("n="), Int(4), Str("n=4")},
		{"+", None, Str("x"), Str("x")},
		{"+", ListOf(Int(1)), ListOf(Int(2)), ListOf(Int(1), Int(2))},
		{"*", Str("ab"), Int(3), Str("ababab")},
		{"==", Int(1), Num(1), Bool(true)},
		{"!=", Str("a"), Str("b"), Bool(true)},
		{"<", Str("apple"), Str("banana"), Bool(true)},
		{">=", Num(2), Int(2), Bool(true)},
		{"<", Num(math.NaN()), Int(1), Bool(false)},
	}
	for _, tc := range cases {
		got, err := evalBinary(tc.op, tc.l, tc.r)
		require.NoError(t, err, "%s %s %s", Display(tc.l), tc.op, Display(tc.r))
		assert.Equal(t, tc.want.Kind(), got.Kind(), "%s %s %s", Display(tc.l), tc.op, Display(tc.r))
		assert.True(t, Equal(tc.want, got), "%s %s %s = %s", Display(tc.l), tc.op, Display(tc.r), Display(got))
	}
}

func TestArithmeticErrors(t *testing.T) {
	cases := []struct {
		op   string
		l, r Value
		kind ErrorKind
	}{
		{"/", Int(1), Int(0), ArithmeticError},
		{"%", Int(1), Num(0), ArithmeticError},
		{"-", Str("a"), Int(1), TypeError},
		{"<", Int(1), Str("a"), TypeError},
		{"*", Str("a"), Int(-1), TypeError},
		{"+", Bool(true), Int(1), TypeError},
	}
	for _, tc := range cases {
		_, err := evalBinary(tc.op, tc.l, tc.r)
		kind, ok := KindOf(err)
		require.True(t, ok, "%s %s %s", Display(tc.l), tc.op, Display(tc.r))
		assert.Equal(t, tc.kind, kind)
	}

	_, err := evalUnary("!", Int(1))
	kind, _ := KindOf(err)
	assert.Equal(t, TypeError, kind)

	v, err := evalUnary("-", Int(math.MinInt32))
	require.NoError(t, err)
	assert.Equal(t, NumberKind, v.Kind())
}

func TestObjectTree(t *testing.T) {
	tree, err := command.Decode([]byte(`{"entries": [{"name": "a", "size": 3}], "ok": true}`))
	require.NoError(t, err)
	obj := NewObject(tree)
	assert.True(t, obj.IsMap())
	assert.Equal(t, []string{"entries", "ok"}, obj.Keys())

	entries, ok := obj.Get("entries")
	require.True(t, ok)
	assert.Equal(t, ObjectKind, entries.Kind())
	assert.Equal(t, 1, entries.Object().Len())

	ok2, _ := obj.Get("ok")
	assert.Equal(t, Bool(true), ok2)

	raw, err := ToJSON(ObjectVal(obj), "")
	require.NoError(t, err)
	assert.Equal(t, `{"entries":[{"name":"a","size":3}],"ok":true}`, string(raw))
	assert.Equal(t, `{"entries":[{"name":"a","size":3}],"ok":true}`, Display(ObjectVal(obj)))
}

func TestToJSONKeepsDictOrder(t *testing.T) {
	d := NewDict()
	d.PutStr("z", ListOf(Int(1), Num(1.5), None))
	d.PutStr("a", Bool(false))
	raw, err := ToJSON(DictVal(d), "")
	require.NoError(t, err)
	assert.Equal(t, `{"z":[1,1.5,null],"a":false}`, string(raw))

	_, err = ToJSON(ClosureVal(&Closure{}), "")
	assert.Error(t, err)
}

func TestEnvScoping(t *testing.T) {
	root := NewEnv(nil)
	root.Define("x", Int(1))
	child := NewEnv(root)
	child.Define("y", Int(2))

	v, ok := child.Get("x")
	require.True(t, ok)
	assert.Equal(t, Int(1), v)

	assert.True(t, child.Assign("x", Int(5)))
	v, _ = root.Get("x")
	assert.Equal(t, Int(5), v)
	assert.False(t, child.Assign("missing", Int(0)))

	child.Define("x", Str("shadow"))
	v, _ = child.Get("x")
	assert.Equal(t, "shadow", v.Str())
	v, _ = root.Get("x")
	assert.Equal(t, Int(5), v)

	assert.Same(t, root, child.Root())
	assert.ElementsMatch(t, []string{"x", "y"}, child.Names())

	self := &Instance{Class: "P", Fields: NewDict()}
	self.Fields.PutStr("name", Str("p"))
	method := newMethodEnv(root, self)
	v, ok = method.Get("name")
	require.True(t, ok)
	assert.Equal(t, "p", v.Str())
	assert.True(t, method.Assign("name", Str("q")))
	got, _ := self.Fields.GetStr("name")
	assert.Equal(t, "q", got.Str())
}

func TestFromTreeKeepsScalarsPlain(t *testing.T) {
	assert.Equal(t, SmallIntKind, fromTree(int64(42)).Kind())
	assert.Equal(t, "box", fromTree("box").Str())
	assert.Equal(t, NumberKind, fromTree(1.5).Kind())
	assert.True(t, fromTree(nil).IsNone())
	assert.Equal(t, ObjectKind, fromTree([]any{int64(1)}).Kind())

	sum, err := evalBinary("+", fromTree(int64(42)), Int(1))
	require.NoError(t, err)
	assert.True(t, Equal(Int(43), sum))
}
