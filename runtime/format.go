package sgruntime

import (
	"math"
	"strconv"
	"strings"
)

// Display is the one canonical value-to-text conversion, shared by print,
// interpolation and string concatenation.
func Display(v Value) string {
	switch v.kind {
	case NoneKind:
		return "none"
	case StringKind:
		return v.s
	case SmallIntKind:
		return strconv.FormatInt(int64(v.i), 10)
	case NumberKind:
		return formatNumber(v.f)
	case BoolKind:
		return strconv.FormatBool(v.b)
	case ListKind:
		return "[" + joinDisplay(v.List().Items) + "]"
	case DictKind:
		var b strings.Builder
		b.WriteString("{")
		first := true
		v.Dict().Each(func(k, val Value) bool {
			if !first {
				b.WriteString(", ")
			}
			first = false
			b.WriteString(Display(k))
			b.WriteString(": ")
			b.WriteString(Display(val))
			return true
		})
		b.WriteString("}")
		return b.String()
	case SetKind:
		return "{" + joinDisplay(v.Set().Sorted()) + "}"
	case ObjectKind:
		raw, err := encodeTree(v.Object().data, "")
		if err != nil {
			return "<object>"
		}
		return string(raw)
	case InstanceKind:
		return "<" + v.Instance().Class + " instance>"
	case ClosureKind:
		c := v.Closure()
		if c.Name != "" {
			return "<fn " + c.Name + ">"
		}
		return "<closure |" + strings.Join(c.Params, ", ") + "|>"
	default:
		return "<unknown>"
	}
}

func joinDisplay(items []Value) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = Display(item)
	}
	return strings.Join(parts, ", ")
}

func formatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	}
	abs := math.Abs(f)
	if abs != 0 && (abs >= 1e21 || abs < 1e-7) {
		return strconv.FormatFloat(f, 'e', -1, 64)
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Equal is value equality: numbers compare across SmallInt and Number,
// containers compare structurally and closures by identity.
func Equal(a, b Value) bool {
	if a.IsNumeric() && b.IsNumeric() {
		if a.kind == SmallIntKind && b.kind == SmallIntKind {
			return a.i == b.i
		}
		return a.Float() == b.Float()
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case NoneKind:
		return true
	case StringKind:
		return a.s == b.s
	case BoolKind:
		return a.b == b.b
	case ListKind:
		al, bl := a.List(), b.List()
		if al == bl {
			return true
		}
		if len(al.Items) != len(bl.Items) {
			return false
		}
		for i := range al.Items {
			if !Equal(al.Items[i], bl.Items[i]) {
				return false
			}
		}
		return true
	case DictKind:
		return dictEqual(a.Dict(), b.Dict())
	case SetKind:
		as, bs := a.Set(), b.Set()
		if as.Len() != bs.Len() {
			return false
		}
		for _, item := range as.Items() {
			if ok, _ := bs.Contains(item); !ok {
				return false
			}
		}
		return true
	case ObjectKind:
		return treeEqual(a.Object().data, b.Object().data)
	case InstanceKind:
		ai, bi := a.Instance(), b.Instance()
		if ai == bi {
			return true
		}
		return ai.Class == bi.Class && dictEqual(ai.Fields, bi.Fields)
	case ClosureKind:
		return a.Closure() == b.Closure()
	default:
		return false
	}
}

func dictEqual(a, b *Dict) bool {
	if a == b {
		return true
	}
	if a.Len() != b.Len() {
		return false
	}
	equal := true
	a.Each(func(k, v Value) bool {
		other, ok, err := b.Get(k)
		if err != nil || !ok || !Equal(v, other) {
			equal = false
			return false
		}
		return true
	})
	return equal
}
