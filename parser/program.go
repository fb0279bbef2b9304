package parser

import (
	"github.com/gosuda/stargate/ast"
)

// ParseProgram parses a whole script. Parsing stops at the first error.
func ParseProgram(src string) (*ast.Program, error) {
	p := newParser(src)
	return p.parseProgram()
}

// ParseExpr parses exactly one expression, as used by the REPL
// completion hook and by string interpolation.
func ParseExpr(src string) (ast.Expr, error) {
	p := newParser(src)
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.isOp(";") {
		p.advance()
	}
	if p.tok.Kind != EOF {
		return nil, p.errorf("unexpected %s after expression", p.tok.describe())
	}
	return e, nil
}
