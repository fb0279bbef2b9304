package parser

import (
	"strings"

	"github.com/gosuda/stargate/ast"
)

// parseStringLiteral splits a string token into literal and {expr} runs
// and parses every expression run on its own.
func parseStringLiteral(tok Token) (ast.Expr, error) {
	runs := splitInterpolation(tok.Lit)
	if len(runs) == 0 {
		return ast.StringLit{Pos: tok.Pos, Value: ""}, nil
	}
	if len(runs) == 1 && !runs[0].expr {
		return ast.StringLit{Pos: tok.Pos, Value: runs[0].text}, nil
	}
	parts := make([]ast.Expr, 0, len(runs))
	for _, r := range runs {
		if !r.expr {
			parts = append(parts, ast.StringLit{Pos: tok.Pos, Value: r.text})
			continue
		}
		e, err := ParseExpr(r.text)
		if err != nil {
			if pe, ok := err.(*Error); ok {
				return nil, &Error{Kind: pe.Kind, Pos: tok.Pos, Msg: "in interpolation {" + r.text + "}: " + pe.Msg}
			}
			return nil, err
		}
		parts = append(parts, e)
	}
	return ast.InterpString{Pos: tok.Pos, Parts: parts}, nil
}

type strRun struct {
	text string
	expr bool
}

func splitInterpolation(raw string) []strRun {
	var runs []strRun
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			runs = append(runs, strRun{text: lit.String()})
			lit.Reset()
		}
	}
	rs := []rune(raw)
	for i := 0; i < len(rs); i++ {
		r := rs[i]
		if r == '\\' && i+1 < len(rs) {
			i++
			lit.WriteString(decodeEscape(rs[i]))
			continue
		}
		if r != '{' {
			lit.WriteRune(r)
			continue
		}
		end, ok := matchBrace(rs, i)
		if !ok {
			// no closing brace: the rest of the string is plain text
			lit.WriteString(string(rs[i:]))
			break
		}
		inner := strings.TrimSpace(string(rs[i+1 : end]))
		if inner == "" {
			lit.WriteString(string(rs[i : end+1]))
			i = end
			continue
		}
		flush()
		runs = append(runs, strRun{text: inner, expr: true})
		i = end
	}
	flush()
	return runs
}

// matchBrace finds the '}' closing the '{' at open, skipping nested
// braces and quoted strings inside the expression.
func matchBrace(rs []rune, open int) (int, bool) {
	depth := 0
	var quote rune
	for i := open; i < len(rs); i++ {
		r := rs[i]
		if quote != 0 {
			if r == '\\' {
				i++
				continue
			}
			if r == quote {
				quote = 0
			}
			continue
		}
		switch r {
		case '"', '\'':
			quote = r
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func decodeEscape(r rune) string {
	switch r {
	case 'n':
		return "\n"
	case 'r':
		return "\r"
	case 't':
		return "\t"
	case '0':
		return "\x00"
	case '\\', '"', '\'', '{', '}':
		return string(r)
	default:
		return "\\" + string(r)
	}
}
