package sgruntime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// ToJSON encodes v as JSON, keeping dict and object key order. indent ""
// produces compact output.
func ToJSON(v Value, indent string) ([]byte, error) {
	tree, err := toTree(v)
	if err != nil {
		return nil, err
	}
	return encodeTree(tree, indent)
}

func encodeTree(node any, indent string) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeTree(&buf, node, indent, 0); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeTree(buf *bytes.Buffer, node any, indent string, depth int) error {
	newline := func(d int) {
		if indent == "" {
			return
		}
		buf.WriteByte('\n')
		for i := 0; i < d; i++ {
			buf.WriteString(indent)
		}
	}
	switch t := node.(type) {
	case []any:
		if len(t) == 0 {
			buf.WriteString("[]")
			return nil
		}
		buf.WriteByte('[')
		for i, item := range t {
			if i > 0 {
				buf.WriteByte(',')
			}
			newline(depth + 1)
			if err := writeTree(buf, item, indent, depth+1); err != nil {
				return err
			}
		}
		newline(depth)
		buf.WriteByte(']')
		return nil
	case *linkedhashmap.Map:
		if t.Size() == 0 {
			buf.WriteString("{}")
			return nil
		}
		buf.WriteByte('{')
		it := t.Iterator()
		first := true
		for it.Next() {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			newline(depth + 1)
			key, err := marshalScalar(fmt.Sprint(it.Key()))
			if err != nil {
				return err
			}
			buf.Write(key)
			buf.WriteByte(':')
			if indent != "" {
				buf.WriteByte(' ')
			}
			if err := writeTree(buf, it.Value(), indent, depth+1); err != nil {
				return err
			}
		}
		newline(depth)
		buf.WriteByte('}')
		return nil
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			buf.WriteString("null")
			return nil
		}
	}
	raw, err := marshalScalar(node)
	if err != nil {
		return err
	}
	buf.Write(raw)
	return nil
}

func marshalScalar(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
