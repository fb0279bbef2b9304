package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gosuda/stargate/ast"
	"github.com/gosuda/stargate/parser"
)

func main() {
	depth := flag.Int("depth", 2, "how many levels of nested blocks to print")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: sg-ast [-depth n] <script.sg | ->")
		os.Exit(2)
	}

	src, err := read(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	prog, err := parser.ParseProgram(src)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("stmts=%d\n", len(prog.Statements))
	dump(os.Stdout, prog.Statements, 0, *depth)
}

func read(path string) (string, error) {
	var b []byte
	var err error
	if path == "-" {
		b, err = io.ReadAll(os.Stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	return string(b), err
}

func dump(w io.Writer, stmts []ast.Statement, level, max int) {
	pad := strings.Repeat("  ", level)
	for _, st := range stmts {
		pos := st.Position()
		switch s := st.(type) {
		case ast.LetStmt:
			fmt.Fprintf(w, "%s%s Let %s = %T\n", pad, pos, s.Name, s.Value)
		case ast.AssignStmt:
			fmt.Fprintf(w, "%s%s Assign %T = %T\n", pad, pos, s.Target, s.Value)
		case ast.IfStmt:
			fmt.Fprintf(w, "%s%s If branches=%d else=%v\n", pad, pos, len(s.Branches), s.Else != nil)
			if level < max {
				for _, br := range s.Branches {
					dump(w, br.Body.Statements, level+1, max)
				}
				if s.Else != nil {
					dump(w, s.Else.Statements, level+1, max)
				}
			}
		case ast.WhileStmt:
			fmt.Fprintf(w, "%s%s While cond=%T\n", pad, pos, s.Cond)
			if level < max {
				dump(w, s.Body.Statements, level+1, max)
			}
		case ast.ForStmt:
			fmt.Fprintf(w, "%s%s For key=%q value=%q iter=%T\n", pad, pos, s.Key, s.Value, s.Iter)
			if level < max {
				dump(w, s.Body.Statements, level+1, max)
			}
		case ast.FuncDecl:
			fmt.Fprintf(w, "%s%s Func %s(%s) annotations=%v\n", pad, pos, s.Name, strings.Join(s.Params, ", "), s.Annotations)
			if level < max {
				dump(w, s.Body.Statements, level+1, max)
			}
		case ast.ClassDecl:
			fmt.Fprintf(w, "%s%s Class %s parent=%q fields=%d methods=%d\n", pad, pos, s.Name, s.Parent, len(s.Fields), len(s.Methods))
			if level < max {
				for _, m := range s.Methods {
					fmt.Fprintf(w, "%s  method %s(%s)\n", pad, m.Name, strings.Join(m.Params, ", "))
				}
			}
		case ast.ExprStmt:
			fmt.Fprintf(w, "%s%s Expr %T\n", pad, pos, s.Expr)
		default:
			fmt.Fprintf(w, "%s%s %T\n", pad, pos, st)
		}
	}
}
