package parser

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gosuda/stargate/ast"
)

func lexAll(src string) []Token {
	l := NewLexer(src)
	var out []Token
	for {
		tok := l.Next()
		out = append(out, tok)
		if tok.Kind == EOF || tok.Kind == Illegal {
			return out
		}
	}
}

func TestLexerTokens(t *testing.T) {
	toks := lexAll("let list-dir = 1.5 # note\n'a' >= x-1")
	kinds := make([]TokenKind, 0, len(toks))
	lits := make([]string, 0, len(toks))
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
		lits = append(lits, tok.Lit)
	}
	assert.Equal(t, []TokenKind{Keyword, Ident, Op, Float, String, Op, Ident, Op, Int, EOF}, kinds)
	assert.Equal(t, []string{"let", "list-dir", "=", "1.5", "a", ">=", "x", "-", "1", ""}, lits)

	str := toks[4]
	assert.True(t, str.NewlineBefore)
	assert.Equal(t, byte('\''), str.Quote)
	assert.Equal(t, ast.Pos{Line: 2, Col: 1}, str.Pos)
}

func TestLexerErrors(t *testing.T) {
	toks := lexAll(`print "open`)
	last := toks[len(toks)-1]
	require.Equal(t, Illegal, last.Kind)
	require.NotNil(t, last.Err)
	assert.True(t, last.Err.Incomplete)
	assert.Equal(t, LexError, last.Err.Kind)

	toks = lexAll("a @ b")
	last = toks[len(toks)-1]
	require.Equal(t, Illegal, last.Kind)
	assert.False(t, last.Err.Incomplete)
	assert.Contains(t, last.Err.Msg, "unexpected character")
}

func TestLexerReset(t *testing.T) {
	l := NewLexer("a\nbb cc")
	l.Reset(5)
	tok := l.Next()
	assert.Equal(t, "cc", tok.Lit)
	assert.Equal(t, ast.Pos{Line: 2, Col: 4}, tok.Pos)
}

func TestKeywordsSorted(t *testing.T) {
	kws := Keywords()
	assert.Contains(t, kws, "extends")
	assert.True(t, IsKeyword("none"))
	assert.False(t, IsKeyword("print_all"))
	for i := 1; i < len(kws); i++ {
		assert.Less(t, kws[i-1], kws[i])
	}
}

func mustExpr(t *testing.T, src string) ast.Expr {
	t.Helper()
	e, err := ParseExpr(src)
	require.NoError(t, err, src)
	return e
}

func TestPrecedence(t *testing.T) {
	e := mustExpr(t, "1 + 2 * 3")
	bin, ok := e.(ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "+", bin.Op)
	assert.Equal(t, ast.IntLit{Pos: ast.Pos{Line: 1, Col: 1}, Value: 1}, bin.Left)
	right, ok := bin.Right.(ast.BinaryExpr)
	require.True(t, ok)
	assert.Equal(t, "*", right.Op)

	e = mustExpr(t, "a || b && !c")
	or, ok := e.(ast.LogicalExpr)
	require.True(t, ok)
	assert.Equal(t, "||", or.Op)
	and, ok := or.Right.(ast.LogicalExpr)
	require.True(t, ok)
	assert.Equal(t, "&&", and.Op)
	assert.IsType(t, ast.UnaryExpr{}, and.Right)

	e = mustExpr(t, "(1 - 2) - 3")
	outer := e.(ast.BinaryExpr)
	assert.IsType(t, ast.BinaryExpr{}, outer.Left)
	assert.IsType(t, ast.IntLit{}, outer.Right)

	e = mustExpr(t, "1 < 2 == true")
	eq := e.(ast.BinaryExpr)
	assert.Equal(t, "==", eq.Op)
}

func TestPostfixChains(t *testing.T) {
	e := mustExpr(t, "xs.map(x: x * 2).filter(x: x > 2)[0]")
	idx, ok := e.(ast.IndexExpr)
	require.True(t, ok)
	filter, ok := idx.Object.(ast.MethodCall)
	require.True(t, ok)
	assert.Equal(t, "filter", filter.Name)
	mapCall, ok := filter.Receiver.(ast.MethodCall)
	require.True(t, ok)
	require.Len(t, mapCall.Args, 1)
	fn, ok := mapCall.Args[0].(ast.ClosureLit)
	require.True(t, ok)
	assert.Equal(t, []string{"x"}, fn.Params)
	assert.NotNil(t, fn.Body)

	e = mustExpr(t, "xs.reduce(0, acc, x: acc + x)")
	call := e.(ast.MethodCall)
	require.Len(t, call.Args, 2)
	assert.IsType(t, ast.IntLit{}, call.Args[0])
	assert.Equal(t, []string{"acc", "x"}, call.Args[1].(ast.ClosureLit).Params)

	e = mustExpr(t, "obj.new")
	assert.Equal(t, "new", e.(ast.PropertyExpr).Name)

	e = mustExpr(t, "f(1)(2)")
	outerCall := e.(ast.CallExpr)
	assert.IsType(t, ast.CallExpr{}, outerCall.Callee)
}

func TestSlices(t *testing.T) {
	s := mustExpr(t, "xs[1:]").(ast.SliceExpr)
	assert.NotNil(t, s.Low)
	assert.Nil(t, s.High)

	s = mustExpr(t, "xs[:-1]").(ast.SliceExpr)
	assert.Nil(t, s.Low)
	assert.IsType(t, ast.UnaryExpr{}, s.High)

	s = mustExpr(t, "xs[:]").(ast.SliceExpr)
	assert.Nil(t, s.Low)
	assert.Nil(t, s.High)
}

func TestBraceLiterals(t *testing.T) {
	d := mustExpr(t, "{a: 1, b: 2,}").(ast.DictLit)
	require.Len(t, d.Entries, 2)
	assert.Equal(t, "a", d.Entries[0].Key.(ast.Ident).Name)

	assert.Empty(t, mustExpr(t, "{}").(ast.DictLit).Entries)

	s := mustExpr(t, "{1, 2, 3}").(ast.SetLit)
	assert.Len(t, s.Items, 3)

	s = mustExpr(t, "{7}").(ast.SetLit)
	assert.Len(t, s.Items, 1)

	s = mustExpr(t, "set{}").(ast.SetLit)
	assert.Empty(t, s.Items)

	s = mustExpr(t, "set(1, 2)").(ast.SetLit)
	assert.Len(t, s.Items, 2)

	assert.IsType(t, ast.Ident{}, mustExpr(t, "set"))
}

func TestClosureLiterals(t *testing.T) {
	c := mustExpr(t, "|a, b| a + b").(ast.ClosureLit)
	assert.Equal(t, []string{"a", "b"}, c.Params)
	assert.NotNil(t, c.Body)

	c = mustExpr(t, "|| { return 1 }").(ast.ClosureLit)
	assert.Empty(t, c.Params)
	require.NotNil(t, c.Block)
	assert.Len(t, c.Block.Statements, 1)
}

func TestStringInterpolation(t *testing.T) {
	e := mustExpr(t, `"x={x + 1}!"`)
	is, ok := e.(ast.InterpString)
	require.True(t, ok)
	require.Len(t, is.Parts, 3)
	assert.Equal(t, "x=", is.Parts[0].(ast.StringLit).Value)
	assert.IsType(t, ast.BinaryExpr{}, is.Parts[1])
	assert.Equal(t, "!", is.Parts[2].(ast.StringLit).Value)

	assert.Equal(t, "{}", mustExpr(t, `"{}"`).(ast.StringLit).Value)
	assert.Equal(t, "{x}\n", mustExpr(t, `"\{x\}\n"`).(ast.StringLit).Value)
	assert.Equal(t, "", mustExpr(t, `''`).(ast.StringLit).Value)

	nested := mustExpr(t, `"{d['k']}"`).(ast.InterpString)
	require.Len(t, nested.Parts, 1)
	assert.IsType(t, ast.IndexExpr{}, nested.Parts[0])

	assert.Equal(t, "a { b", mustExpr(t, `"a { b"`).(ast.StringLit).Value)
	assert.Equal(t, "{", mustExpr(t, `"{"`).(ast.StringLit).Value)
	assert.Equal(t, "{oops", mustExpr(t, `"{oops"`).(ast.StringLit).Value)

	open := mustExpr(t, `"n={n} {rest"`).(ast.InterpString)
	require.Len(t, open.Parts, 3)
	assert.IsType(t, ast.Ident{}, open.Parts[1])
	assert.Equal(t, " {rest", open.Parts[2].(ast.StringLit).Value)

	_, err := ParseExpr(`"{1 +}"`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in interpolation")
}

func TestCommands(t *testing.T) {
	cmd, ok := mustExpr(t, `run-it "a b" {n + 1} --flag=x ./path/to`).(ast.CommandExpr)
	require.True(t, ok)
	assert.Equal(t, "run-it", cmd.Name)
	texts := make([]string, 0, len(cmd.Args))
	for _, a := range cmd.Args {
		texts = append(texts, a.Text)
	}
	assert.Equal(t, []string{"a b", "{n + 1}", "--flag=x", "./path/to"}, texts)
	assert.Nil(t, cmd.Args[0].Expr)
	assert.IsType(t, ast.BinaryExpr{}, cmd.Args[1].Expr)

	pipe, ok := mustExpr(t, "list-directory /tmp --all | count-lines -n").(ast.PipelineExpr)
	require.True(t, ok)
	in := pipe.Input.(ast.CommandExpr)
	assert.Len(t, in.Args, 2)
	target := pipe.Target.(ast.CommandExpr)
	assert.Equal(t, "count-lines", target.Name)

	pipe = mustExpr(t, "[1, 2] | |xs| xs.len()").(ast.PipelineExpr)
	assert.IsType(t, ast.ListLit{}, pipe.Input)
	assert.IsType(t, ast.ClosureLit{}, pipe.Target)

	grouped := mustExpr(t, "(git-status --short).lines()").(ast.MethodCall)
	assert.IsType(t, ast.CommandExpr{}, grouped.Receiver)

	_, err := ParseProgram(`run-it "open`)
	require.Error(t, err)
	assert.True(t, IsIncomplete(err))
}

func TestStatements(t *testing.T) {
	prog, err := ParseProgram(`
let a = 1; let b = 2
a = a + b
[test]
fn check(x, y) { return x == y }
class Dog extends Animal {
    name = "rex"
    let legs = 4
    fn speak() { return "woof" }
}
for k, v in {a: 1} { print k }
for x in [1] { continue }
while false { break }
if a > 1 { print 1 } else if a > 0 { print 2 } else { print 3 }
use ut
assert a == 3, "sum"
exit
`)
	require.NoError(t, err)
	types := make([]string, 0, len(prog.Statements))
	for _, st := range prog.Statements {
		types = append(types, strings.TrimPrefix(fmt.Sprintf("%T", st), "ast."))
	}
	assert.Equal(t, []string{
		"LetStmt", "LetStmt", "AssignStmt", "FuncDecl", "ClassDecl", "ForStmt", "ForStmt",
		"WhileStmt", "IfStmt", "UseStmt", "AssertStmt", "ExitStmt",
	}, types)

	fn := prog.Statements[3].(ast.FuncDecl)
	assert.True(t, fn.HasAnnotation("test"))
	assert.Equal(t, []string{"x", "y"}, fn.Params)

	class := prog.Statements[4].(ast.ClassDecl)
	assert.Equal(t, "Animal", class.Parent)
	require.Len(t, class.Fields, 2)
	assert.Equal(t, "legs", class.Fields[1].Name)
	require.Len(t, class.Methods, 1)
	assert.Equal(t, "speak", class.Methods[0].Name)

	loop := prog.Statements[5].(ast.ForStmt)
	assert.Equal(t, "k", loop.Key)
	assert.Equal(t, "v", loop.Value)
	single := prog.Statements[6].(ast.ForStmt)
	assert.Empty(t, single.Key)

	ifs := prog.Statements[8].(ast.IfStmt)
	assert.Len(t, ifs.Branches, 2)
	assert.NotNil(t, ifs.Else)

	assert.NotNil(t, prog.Statements[10].(ast.AssertStmt).Message)
	assert.Nil(t, prog.Statements[11].(ast.ExitStmt).Code)
}

func TestListLiteralIsNotAnnotation(t *testing.T) {
	prog, err := ParseProgram("[x]\nprint 1")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)
	es := prog.Statements[0].(ast.ExprStmt)
	assert.IsType(t, ast.ListLit{}, es.Expr)
}

func TestLeadingMinusStartsStatement(t *testing.T) {
	prog, err := ParseProgram("let x = 5\n-1\nprint x")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 3)
	assert.IsType(t, ast.IntLit{}, prog.Statements[0].(ast.LetStmt).Value)
	assert.IsType(t, ast.UnaryExpr{}, prog.Statements[1].(ast.ExprStmt).Expr)

	prog, err = ParseProgram("let y = 5 -\n1")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)
	assert.IsType(t, ast.BinaryExpr{}, prog.Statements[0].(ast.LetStmt).Value)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		src        string
		incomplete bool
		pos        ast.Pos
	}{
		{"let = 3", false, ast.Pos{Line: 1, Col: 5}},
		{"fn f() {", true, ast.Pos{Line: 1, Col: 9}},
		{"print (1 +", true, ast.Pos{Line: 1, Col: 11}},
		{"let a = 1 let b = 2", false, ast.Pos{Line: 1, Col: 11}},
		{"1 = 2", false, ast.Pos{Line: 1, Col: 3}},
		{"class A { 42 }", false, ast.Pos{Line: 1, Col: 11}},
		{"for x of xs {}", false, ast.Pos{Line: 1, Col: 7}},
	}
	for _, tc := range cases {
		_, err := ParseProgram(tc.src)
		require.Error(t, err, tc.src)
		var pe *Error
		require.ErrorAs(t, err, &pe, tc.src)
		assert.Equal(t, tc.incomplete, pe.Incomplete, tc.src)
		assert.Equal(t, tc.pos, pe.Pos, tc.src)
	}

	_, err := ParseExpr("1 2")
	assert.Error(t, err)

	deep := strings.Repeat("(", 300) + "1" + strings.Repeat(")", 300)
	_, err = ParseExpr(deep)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too deep")
}
