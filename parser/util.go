package parser

import (
	"fmt"
	"strings"
)

// scanCommandEnd returns the offset where the raw arguments of a command
// starting at off end: a newline, ';', '|', a closing ')' or '}' at depth
// zero, a comment, or EOF.
func scanCommandEnd(src string, off int) int {
	depth := 0
	var quote byte
	for i := off; i < len(src); i++ {
		c := src[i]
		if quote != 0 {
			if c == '\\' {
				i++
				continue
			}
			if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '"', '\'':
			quote = c
		case '(', '{':
			depth++
		case ')', '}':
			if depth == 0 {
				return i
			}
			depth--
		case '\n', ';', '#':
			if depth == 0 {
				return i
			}
		case '|':
			if depth == 0 && (i+1 >= len(src) || src[i+1] != '|') {
				return i
			}
			i++
		}
	}
	return len(src)
}

// splitArgs splits raw command text on whitespace. Quoted words lose their
// quotes; {expr} groups are kept whole, braces included.
func splitArgs(raw string) ([]string, error) {
	var (
		words   []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		depth   int
		escaped bool
	)
	flush := func() {
		if inWord {
			words = append(words, cur.String())
			cur.Reset()
			inWord = false
		}
	}
	for _, r := range raw {
		if quote != 0 {
			if escaped {
				cur.WriteRune(r)
				escaped = false
				continue
			}
			if r == '\\' {
				escaped = true
				continue
			}
			if r == quote {
				quote = 0
				continue
			}
			cur.WriteRune(r)
			continue
		}
		if depth > 0 {
			cur.WriteRune(r)
			switch r {
			case '{':
				depth++
			case '}':
				depth--
			}
			continue
		}
		switch {
		case r == ' ' || r == '\t' || r == '\r':
			flush()
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == '{' && !inWord:
			depth = 1
			inWord = true
			cur.WriteRune(r)
		default:
			inWord = true
			cur.WriteRune(r)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated quote in command arguments")
	}
	if depth > 0 {
		return nil, fmt.Errorf("unterminated {expression} in command arguments")
	}
	flush()
	return words, nil
}
