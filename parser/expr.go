package parser

import (
	"strconv"

	"github.com/gosuda/stargate/ast"
)

const maxExprDepth = 256

func opPrecedence(op string) int {
	switch op {
	case "|":
		return 1
	case "||":
		return 2
	case "&&":
		return 3
	case "==", "!=":
		return 4
	case "<", "<=", ">", ">=":
		return 5
	case "+", "-":
		return 6
	case "*", "/", "%":
		return 7
	default:
		return 0
	}
}

func (p *Parser) parseExpr() (ast.Expr, error) {
	return p.parse(1)
}

func (p *Parser) parse(minPrec int) (ast.Expr, error) {
	p.depth++
	if p.depth > maxExprDepth {
		return nil, p.errorf("expression nesting too deep near %s", p.tok.describe())
	}
	defer func() { p.depth-- }()

	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.tok
		if tok.Kind != Op {
			break
		}
		// a '-' starting a new line begins a new statement
		if tok.Lit == "-" && tok.NewlineBefore {
			break
		}
		prec := opPrecedence(tok.Lit)
		if prec == 0 || prec < minPrec {
			break
		}
		p.advance()
		if tok.Lit == "|" {
			target, err := p.parsePipelineTarget()
			if err != nil {
				return nil, err
			}
			left = ast.PipelineExpr{Pos: tok.Pos, Input: left, Target: target}
			continue
		}
		right, err := p.parse(prec + 1)
		if err != nil {
			return nil, err
		}
		switch tok.Lit {
		case "&&", "||":
			left = ast.LogicalExpr{Pos: tok.Pos, Op: tok.Lit, Left: left, Right: right}
		default:
			left = ast.BinaryExpr{Pos: tok.Pos, Op: tok.Lit, Left: left, Right: right}
		}
	}
	return left, nil
}

// parsePipelineTarget reads the right side of '|'. A command name starts
// a command invocation; anything else is an expression that must yield a
// closure at run time.
func (p *Parser) parsePipelineTarget() (ast.Expr, error) {
	if p.tok.Kind == Ident && isCommandName(p.tok.Lit) {
		return p.parseCommand(false)
	}
	return p.parse(opPrecedence("|") + 1)
}

func (p *Parser) parseUnary() (ast.Expr, error) {
	if p.isOp("!") || p.isOp("-") {
		tok := p.advance()
		p.depth++
		defer func() { p.depth-- }()
		if p.depth > maxExprDepth {
			return nil, p.errorf("expression nesting too deep near %s", p.tok.describe())
		}
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return ast.UnaryExpr{Pos: tok.Pos, Op: tok.Lit, Operand: operand}, nil
	}
	prim, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	return p.parsePostfix(prim)
}

func (p *Parser) parsePostfix(left ast.Expr) (ast.Expr, error) {
	for {
		switch {
		case p.isOp("."):
			dot := p.advance()
			name, err := p.expectMember()
			if err != nil {
				return nil, err
			}
			if p.isOp("(") && !p.tok.NewlineBefore {
				args, err := p.parseCallArgs()
				if err != nil {
					return nil, err
				}
				left = ast.MethodCall{Pos: dot.Pos, Receiver: left, Name: name, Args: args}
				continue
			}
			left = ast.PropertyExpr{Pos: dot.Pos, Object: left, Name: name}
		case p.isOp("[") && !p.tok.NewlineBefore:
			open := p.advance()
			idx, err := p.parseIndexSuffix(open.Pos, left)
			if err != nil {
				return nil, err
			}
			left = idx
		case p.isOp("(") && !p.tok.NewlineBefore:
			open := p.tok
			args, err := p.parseCallArgs()
			if err != nil {
				return nil, err
			}
			left = ast.CallExpr{Pos: open.Pos, Callee: left, Args: args}
		default:
			return left, nil
		}
	}
}

// expectMember accepts identifiers and keywords after '.', so fields such
// as obj.new or obj.in still resolve.
func (p *Parser) expectMember() (string, error) {
	if p.tok.Kind == Ident || p.tok.Kind == Keyword {
		return p.advance().Lit, nil
	}
	if p.tok.Kind == Int {
		return p.advance().Lit, nil
	}
	return "", p.errorf("expected property name after '.', found %s", p.tok.describe())
}

func (p *Parser) parseIndexSuffix(pos ast.Pos, obj ast.Expr) (ast.Expr, error) {
	var low ast.Expr
	if !p.isOp(":") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		low = e
		if p.isOp("]") {
			p.advance()
			return ast.IndexExpr{Pos: pos, Object: obj, Index: low}, nil
		}
	}
	if _, err := p.expectOp(":"); err != nil {
		return nil, err
	}
	var high ast.Expr
	if !p.isOp("]") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		high = e
	}
	if _, err := p.expectOp("]"); err != nil {
		return nil, err
	}
	return ast.SliceExpr{Pos: pos, Object: obj, Low: low, High: high}, nil
}

func (p *Parser) parseCallArgs() ([]ast.Expr, error) {
	if _, err := p.expectOp("("); err != nil {
		return nil, err
	}
	args := []ast.Expr{}
	for !p.isOp(")") {
		arg, err := p.parseCallArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.isOp(",") {
			p.advance()
			continue
		}
		if !p.isOp(")") {
			return nil, p.errorf("expected ',' or ')' in argument list, found %s", p.tok.describe())
		}
	}
	p.advance()
	return args, nil
}

// parseCallArg also accepts the shorthand closure forms `x: expr` and
// `acc, x: expr`.
func (p *Parser) parseCallArg() (ast.Expr, error) {
	if p.tok.Kind == Ident && !isCommandName(p.tok.Lit) {
		m := p.mark()
		var params []string
		for p.tok.Kind == Ident {
			params = append(params, p.advance().Lit)
			if !p.isOp(",") {
				break
			}
			p.advance()
		}
		if p.isOp(":") {
			p.advance()
			body, err := p.parse(opPrecedence("|") + 1)
			if err != nil {
				return nil, err
			}
			return ast.ClosureLit{Pos: m.Pos, Params: params, Body: body}, nil
		}
		p.restore(m)
	}
	return p.parseExpr()
}

func (p *Parser) parsePrimary() (ast.Expr, error) {
	tok := p.tok
	switch tok.Kind {
	case Int:
		p.advance()
		v, err := strconv.ParseInt(tok.Lit, 10, 64)
		if err != nil {
			f, ferr := strconv.ParseFloat(tok.Lit, 64)
			if ferr != nil {
				return nil, &Error{Kind: ParseError, Pos: tok.Pos, Msg: "invalid integer " + strconv.Quote(tok.Lit)}
			}
			return ast.FloatLit{Pos: tok.Pos, Value: f}, nil
		}
		return ast.IntLit{Pos: tok.Pos, Value: v}, nil
	case Float:
		p.advance()
		f, err := strconv.ParseFloat(tok.Lit, 64)
		if err != nil {
			return nil, &Error{Kind: ParseError, Pos: tok.Pos, Msg: "invalid float " + strconv.Quote(tok.Lit)}
		}
		return ast.FloatLit{Pos: tok.Pos, Value: f}, nil
	case String:
		p.advance()
		return parseStringLiteral(tok)
	case Keyword:
		switch tok.Lit {
		case "true", "false":
			p.advance()
			return ast.BoolLit{Pos: tok.Pos, Value: tok.Lit == "true"}, nil
		case "none":
			p.advance()
			return ast.NoneLit{Pos: tok.Pos}, nil
		case "this":
			p.advance()
			return ast.ThisExpr{Pos: tok.Pos}, nil
		case "new":
			p.advance()
			name, err := p.expectIdent("class name")
			if err != nil {
				return nil, err
			}
			if p.isOp("(") && !p.tok.NewlineBefore {
				p.advance()
				if _, err := p.expectOp(")"); err != nil {
					return nil, err
				}
			}
			return ast.NewExpr{Pos: tok.Pos, Class: name.Lit}, nil
		}
	case Ident:
		if isCommandName(tok.Lit) {
			return p.parseCommand(false)
		}
		p.advance()
		if tok.Lit == "set" && p.tok.Offset == tok.End && (p.isOp("{") || p.isOp("(")) {
			closer := "}"
			if p.isOp("(") {
				closer = ")"
			}
			p.advance()
			items, err := p.parseExprList(closer)
			if err != nil {
				return nil, err
			}
			return ast.SetLit{Pos: tok.Pos, Items: items}, nil
		}
		return ast.Ident{Pos: tok.Pos, Name: tok.Lit}, nil
	case Op:
		switch tok.Lit {
		case "(":
			p.advance()
			if p.tok.Kind == Ident && isCommandName(p.tok.Lit) {
				return p.parseCommand(true)
			}
			inner, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if _, err := p.expectOp(")"); err != nil {
				return nil, err
			}
			return inner, nil
		case "[":
			p.advance()
			items, err := p.parseExprList("]")
			if err != nil {
				return nil, err
			}
			return ast.ListLit{Pos: tok.Pos, Items: items}, nil
		case "{":
			return p.parseBraceLiteral()
		case "|", "||":
			return p.parseClosure()
		}
	}
	return nil, p.errorf("unexpected %s", tok.describe())
}

func (p *Parser) parseExprList(closer string) ([]ast.Expr, error) {
	items := []ast.Expr{}
	for !p.isOp(closer) {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		items = append(items, e)
		if p.isOp(",") {
			p.advance()
			continue
		}
		if !p.isOp(closer) {
			return nil, p.errorf("expected ',' or %q, found %s", closer, p.tok.describe())
		}
	}
	p.advance()
	return items, nil
}

// parseBraceLiteral handles {} (empty dict), {k: v, ...} and {a, b, ...}
// (set).
func (p *Parser) parseBraceLiteral() (ast.Expr, error) {
	open := p.advance()
	if p.isOp("}") {
		p.advance()
		return ast.DictLit{Pos: open.Pos}, nil
	}
	first, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if !p.isOp(":") {
		items := []ast.Expr{first}
		if p.isOp(",") {
			p.advance()
			rest, err := p.parseExprList("}")
			if err != nil {
				return nil, err
			}
			items = append(items, rest...)
		} else if _, err := p.expectOp("}"); err != nil {
			return nil, err
		}
		return ast.SetLit{Pos: open.Pos, Items: items}, nil
	}
	dict := ast.DictLit{Pos: open.Pos}
	key := first
	for {
		if _, err := p.expectOp(":"); err != nil {
			return nil, err
		}
		value, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		dict.Entries = append(dict.Entries, ast.DictEntry{Key: key, Value: value})
		if p.isOp(",") {
			p.advance()
		}
		if p.isOp("}") {
			p.advance()
			return dict, nil
		}
		key, err = p.parseExpr()
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) parseClosure() (ast.Expr, error) {
	open := p.advance()
	params := []string{}
	if open.Lit == "|" {
		for !p.isOp("|") {
			name, err := p.expectIdent("closure parameter")
			if err != nil {
				return nil, err
			}
			params = append(params, name.Lit)
			if p.isOp(",") {
				p.advance()
				continue
			}
			if !p.isOp("|") {
				return nil, p.errorf("expected ',' or '|' in closure parameters, found %s", p.tok.describe())
			}
		}
		p.advance()
	}
	if p.isOp("{") {
		block, err := p.parseBlock()
		if err != nil {
			return nil, err
		}
		return ast.ClosureLit{Pos: open.Pos, Params: params, Block: block}, nil
	}
	body, err := p.parse(opPrecedence("|") + 1)
	if err != nil {
		return nil, err
	}
	return ast.ClosureLit{Pos: open.Pos, Params: params, Body: body}, nil
}

// parseCommand reads a command name and its raw argument words. The words
// are re-scanned from the source so that paths and flags need not be
// valid tokens.
func (p *Parser) parseCommand(parens bool) (ast.Expr, error) {
	name := p.tok
	src := p.lex.Source()
	end := scanCommandEnd(src, name.End)
	words, err := splitArgs(src[name.End:end])
	if err != nil {
		return nil, &Error{Kind: ParseError, Pos: name.Pos, Msg: err.Error(), Incomplete: end == len(src)}
	}
	cmd := ast.CommandExpr{Pos: name.Pos, Name: name.Lit}
	for _, w := range words {
		arg := ast.CommandArg{Text: w}
		if len(w) >= 2 && w[0] == '{' && w[len(w)-1] == '}' {
			e, err := ParseExpr(w[1 : len(w)-1])
			if err != nil {
				return nil, err
			}
			arg.Expr = e
		}
		cmd.Args = append(cmd.Args, arg)
	}
	p.lex.Reset(end)
	p.tok = p.lex.Next()
	if parens {
		if _, err := p.expectOp(")"); err != nil {
			return nil, err
		}
	}
	return cmd, nil
}
