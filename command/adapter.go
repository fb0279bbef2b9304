package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"
)

// Decode parses structured command output into a tree whose maps are
// *linkedhashmap.Map with string keys in document order, arrays are []any
// and scalars are string, int64, float64, bool or nil. Empty output
// decodes to nil. Several concatenated documents (JSON lines) decode to
// an array of documents.
func Decode(raw []byte) (any, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var docs []any
	for {
		v, err := decodeValue(dec)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, v)
	}
	if len(docs) == 1 {
		return docs[0], nil
	}
	return docs, nil
}

func decodeValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			m := linkedhashmap.New()
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("object key is %T, not string", keyTok)
				}
				v, err := decodeValue(dec)
				if err != nil {
					return nil, unexpectedEOF(err)
				}
				m.Put(key, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, unexpectedEOF(err)
			}
			return m, nil
		case '[':
			arr := []any{}
			for dec.More() {
				v, err := decodeValue(dec)
				if err != nil {
					return nil, unexpectedEOF(err)
				}
				arr = append(arr, v)
			}
			if _, err := dec.Token(); err != nil {
				return nil, unexpectedEOF(err)
			}
			return arr, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", t)
		}
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i, nil
		}
		f, err := t.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", t.String())
		}
		return f, nil
	default:
		return t, nil
	}
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

var entryKeys = []string{"entries", "results", "files", "items", "data", "processes", "users", "lines"}

var pathKeys = []string{"path", "file", "filepath", "filename", "name"}

// Entries extracts the list of records from a tree. It never fails: an
// unrecognized shape yields nil.
func Entries(tree any) []any {
	switch t := tree.(type) {
	case []any:
		return t
	case *linkedhashmap.Map:
		for _, key := range entryKeys {
			if v, ok := t.Get(key); ok {
				if arr, ok := v.([]any); ok {
					return arr
				}
			}
		}
		for _, key := range pathKeys {
			if _, ok := t.Get(key); ok {
				return []any{t}
			}
		}
		it := t.Iterator()
		for it.Next() {
			if found := Entries(it.Value()); len(found) > 0 {
				return found
			}
		}
	}
	return nil
}

// Files returns the entries that are not directory-like.
func Files(tree any) []any {
	var out []any
	for _, e := range Entries(tree) {
		if !isDirEntry(e) {
			out = append(out, e)
		}
	}
	return out
}

// Dirs returns the directory-like entries.
func Dirs(tree any) []any {
	var out []any
	for _, e := range Entries(tree) {
		if isDirEntry(e) {
			out = append(out, e)
		}
	}
	return out
}

func isDirEntry(e any) bool {
	m, ok := e.(*linkedhashmap.Map)
	if !ok {
		return false
	}
	if v, ok := m.Get("type"); ok {
		if s, ok := v.(string); ok {
			switch strings.ToLower(s) {
			case "directory", "dir":
				return true
			}
		}
	}
	if v, ok := m.Get("is_dir"); ok {
		if b, ok := v.(bool); ok && b {
			return true
		}
	}
	return false
}

// Paths extracts file paths from the file-like entries of a tree.
func Paths(tree any) []string {
	if s, ok := tree.(string); ok {
		return []string{s}
	}
	var out []string
	for _, e := range Files(tree) {
		switch t := e.(type) {
		case string:
			out = append(out, t)
		case *linkedhashmap.Map:
			for _, key := range pathKeys {
				if v, ok := t.Get(key); ok {
					if s, ok := v.(string); ok {
						out = append(out, s)
						break
					}
				}
			}
		}
	}
	return out
}
