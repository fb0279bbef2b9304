package parser

import (
	"fmt"
	"strings"

	"github.com/gosuda/stargate/ast"
)

type Parser struct {
	lex   *Lexer
	tok   Token
	depth int
}

func newParser(src string) *Parser {
	p := &Parser{lex: NewLexer(src)}
	p.tok = p.lex.Next()
	return p
}

// advance consumes the current token. An illegal token is sticky so the
// lexer error surfaces at the next expectation.
func (p *Parser) advance() Token {
	t := p.tok
	if t.Kind != Illegal {
		p.tok = p.lex.Next()
	}
	return t
}

func (p *Parser) mark() Token {
	return p.tok
}

func (p *Parser) restore(t Token) {
	p.tok = t
	p.lex.Reset(t.End)
}

func (p *Parser) errorf(format string, args ...any) error {
	if p.tok.Kind == Illegal && p.tok.Err != nil {
		return p.tok.Err
	}
	return &Error{
		Kind:       ParseError,
		Pos:        p.tok.Pos,
		Msg:        fmt.Sprintf(format, args...),
		Incomplete: p.tok.Kind == EOF,
	}
}

func (p *Parser) isOp(lit string) bool {
	return p.tok.is(Op, lit)
}

func (p *Parser) isKeyword(kw string) bool {
	return p.tok.is(Keyword, kw)
}

func (p *Parser) expectOp(lit string) (Token, error) {
	if !p.isOp(lit) {
		return Token{}, p.errorf("expected %q, found %s", lit, p.tok.describe())
	}
	return p.advance(), nil
}

func (p *Parser) expectIdent(what string) (Token, error) {
	if p.tok.Kind != Ident {
		return Token{}, p.errorf("expected %s, found %s", what, p.tok.describe())
	}
	return p.advance(), nil
}

// endStatement accepts ';', or an implicit end at a newline, '}' or EOF.
func (p *Parser) endStatement() error {
	if p.isOp(";") {
		p.advance()
		return nil
	}
	if p.tok.Kind == EOF || p.isOp("}") || p.tok.NewlineBefore {
		return nil
	}
	return p.errorf("expected ';' or newline, found %s", p.tok.describe())
}

func (p *Parser) atStatementEnd() bool {
	return p.tok.Kind == EOF || p.isOp(";") || p.isOp("}") || p.tok.NewlineBefore
}

func (p *Parser) parseProgram() (*ast.Program, error) {
	prog := &ast.Program{}
	for {
		for p.isOp(";") {
			p.advance()
		}
		if p.tok.Kind == EOF {
			return prog, nil
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
}

func (p *Parser) parseBlock() (*ast.Block, error) {
	if _, err := p.expectOp("{"); err != nil {
		return nil, err
	}
	block := &ast.Block{}
	for {
		for p.isOp(";") {
			p.advance()
		}
		if p.isOp("}") {
			p.advance()
			return block, nil
		}
		if p.tok.Kind == EOF || p.tok.Kind == Illegal {
			return nil, p.errorf("expected '}' to close block, found %s", p.tok.describe())
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Statements = append(block.Statements, stmt)
	}
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	pos := p.tok.Pos
	if p.tok.Kind == Keyword {
		switch p.tok.Lit {
		case "let":
			return p.parseLet()
		case "fn":
			return p.parseFunc(nil)
		case "class":
			return p.parseClass()
		case "if":
			return p.parseIf()
		case "while":
			p.advance()
			cond, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			return ast.WhileStmt{Pos: pos, Cond: cond, Body: body}, nil
		case "for":
			return p.parseFor()
		case "return":
			p.advance()
			var value ast.Expr
			if !p.atStatementEnd() {
				v, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				value = v
			}
			return ast.ReturnStmt{Pos: pos, Value: value}, p.endStatement()
		case "print":
			p.advance()
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return ast.PrintStmt{Pos: pos, Value: v}, p.endStatement()
		case "exec":
			p.advance()
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return ast.ExecStmt{Pos: pos, Command: v}, p.endStatement()
		case "script":
			p.advance()
			v, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			return ast.ScriptStmt{Pos: pos, Path: v}, p.endStatement()
		case "use":
			p.advance()
			name, err := p.expectIdent("module name")
			if err != nil {
				return nil, err
			}
			return ast.UseStmt{Pos: pos, Module: name.Lit}, p.endStatement()
		case "assert":
			p.advance()
			cond, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			stmt := ast.AssertStmt{Pos: pos, Cond: cond}
			if p.isOp(",") {
				p.advance()
				msg, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				stmt.Message = msg
			}
			return stmt, p.endStatement()
		case "exit":
			p.advance()
			stmt := ast.ExitStmt{Pos: pos}
			if !p.atStatementEnd() {
				code, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				stmt.Code = code
			}
			return stmt, p.endStatement()
		case "break":
			p.advance()
			return ast.BreakStmt{Pos: pos}, p.endStatement()
		case "continue":
			p.advance()
			return ast.ContinueStmt{Pos: pos}, p.endStatement()
		}
	}
	if p.isOp("[") {
		if annotations, ok := p.tryAnnotations(); ok {
			return p.parseFunc(annotations)
		}
	}
	return p.parseSimpleStatement()
}

// tryAnnotations reads a run of [name] markers followed by fn. The
// parser is rewound when the brackets turn out to be a list literal.
func (p *Parser) tryAnnotations() ([]string, bool) {
	m := p.mark()
	var names []string
	for p.isOp("[") {
		p.advance()
		if p.tok.Kind != Ident {
			p.restore(m)
			return nil, false
		}
		names = append(names, p.advance().Lit)
		if !p.isOp("]") {
			p.restore(m)
			return nil, false
		}
		p.advance()
	}
	if !p.isKeyword("fn") {
		p.restore(m)
		return nil, false
	}
	return names, true
}

func (p *Parser) parseSimpleStatement() (ast.Statement, error) {
	pos := p.tok.Pos
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if p.isOp("=") {
		switch expr.(type) {
		case ast.Ident, ast.IndexExpr, ast.PropertyExpr:
		default:
			return nil, p.errorf("invalid assignment target")
		}
		p.advance()
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		return ast.AssignStmt{Pos: pos, Target: expr, Value: value}, p.endStatement()
	}
	return ast.ExprStmt{Pos: pos, Expr: expr}, p.endStatement()
}

func (p *Parser) parseLet() (ast.Statement, error) {
	pos := p.advance().Pos
	name, err := p.expectIdent("variable name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expectOp("="); err != nil {
		return nil, err
	}
	value, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	return ast.LetStmt{Pos: pos, Name: name.Lit, Value: value}, p.endStatement()
}

func (p *Parser) parseParams() ([]string, error) {
	if _, err := p.expectOp("("); err != nil {
		return nil, err
	}
	params := []string{}
	for !p.isOp(")") {
		name, err := p.expectIdent("parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, name.Lit)
		if p.isOp(",") {
			p.advance()
			continue
		}
		if !p.isOp(")") {
			return nil, p.errorf("expected ',' or ')' in parameter list, found %s", p.tok.describe())
		}
	}
	p.advance()
	return params, nil
}

func (p *Parser) parseFunc(annotations []string) (ast.Statement, error) {
	pos := p.advance().Pos
	name, err := p.expectIdent("function name")
	if err != nil {
		return nil, err
	}
	params, err := p.parseParams()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.FuncDecl{Pos: pos, Name: name.Lit, Params: params, Body: body, Annotations: annotations}, nil
}

func (p *Parser) parseClass() (ast.Statement, error) {
	pos := p.advance().Pos
	name, err := p.expectIdent("class name")
	if err != nil {
		return nil, err
	}
	decl := ast.ClassDecl{Pos: pos, Name: name.Lit}
	if p.isKeyword("extends") {
		p.advance()
		parent, err := p.expectIdent("parent class name")
		if err != nil {
			return nil, err
		}
		decl.Parent = parent.Lit
	}
	if _, err := p.expectOp("{"); err != nil {
		return nil, err
	}
	for {
		for p.isOp(";") {
			p.advance()
		}
		if p.isOp("}") {
			p.advance()
			return decl, nil
		}
		switch {
		case p.isKeyword("fn"):
			p.advance()
			mname, err := p.expectIdent("method name")
			if err != nil {
				return nil, err
			}
			params, err := p.parseParams()
			if err != nil {
				return nil, err
			}
			body, err := p.parseBlock()
			if err != nil {
				return nil, err
			}
			decl.Methods = append(decl.Methods, ast.MethodDecl{Name: mname.Lit, Params: params, Body: body})
		case p.isKeyword("let") || p.tok.Kind == Ident:
			if p.isKeyword("let") {
				p.advance()
			}
			fname, err := p.expectIdent("field name")
			if err != nil {
				return nil, err
			}
			field := ast.FieldDecl{Name: fname.Lit}
			if p.isOp("=") {
				p.advance()
				def, err := p.parseExpr()
				if err != nil {
					return nil, err
				}
				field.Default = def
			}
			if err := p.endStatement(); err != nil {
				return nil, err
			}
			decl.Fields = append(decl.Fields, field)
		default:
			return nil, p.errorf("expected field or method in class %s, found %s", decl.Name, p.tok.describe())
		}
	}
}

func (p *Parser) parseIf() (ast.Statement, error) {
	pos := p.advance().Pos
	stmt := ast.IfStmt{Pos: pos}
	for {
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		body, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Branches = append(stmt.Branches, ast.IfBranch{Cond: cond, Body: body})
		if !p.isKeyword("else") {
			return stmt, nil
		}
		p.advance()
		if p.isKeyword("if") {
			p.advance()
			continue
		}
		els, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		stmt.Else = els
		return stmt, nil
	}
}

func (p *Parser) parseFor() (ast.Statement, error) {
	pos := p.advance().Pos
	first, err := p.expectIdent("loop variable")
	if err != nil {
		return nil, err
	}
	stmt := ast.ForStmt{Pos: pos, Value: first.Lit}
	if p.isOp(",") {
		p.advance()
		second, err := p.expectIdent("loop variable")
		if err != nil {
			return nil, err
		}
		stmt.Key = first.Lit
		stmt.Value = second.Lit
	}
	if !p.isKeyword("in") {
		return nil, p.errorf("expected 'in' after loop variables, found %s", p.tok.describe())
	}
	p.advance()
	iter, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	stmt.Iter = iter
	stmt.Body = body
	return stmt, nil
}

func isCommandName(name string) bool {
	return strings.Contains(name, "-")
}
