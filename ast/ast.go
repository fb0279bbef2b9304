package ast

import "fmt"

type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

type Program struct {
	Statements []Statement
}

type Statement interface {
	isStatement()
	Position() Pos
}

type Expr interface {
	isExpr()
	Position() Pos
}

type Block struct {
	Statements []Statement
}

type LetStmt struct {
	Pos   Pos
	Name  string
	Value Expr
}

func (LetStmt) isStatement() {}
func (s LetStmt) Position() Pos { return s.Pos }

// AssignStmt targets an Ident, IndexExpr or PropertyExpr.
type AssignStmt struct {
	Pos    Pos
	Target Expr
	Value  Expr
}

func (AssignStmt) isStatement() {}
func (s AssignStmt) Position() Pos { return s.Pos }

type IfStmt struct {
	Pos      Pos
	Branches []IfBranch
	Else     *Block
}

func (IfStmt) isStatement() {}
func (s IfStmt) Position() Pos { return s.Pos }

type IfBranch struct {
	Cond Expr
	Body *Block
}

type WhileStmt struct {
	Pos  Pos
	Cond Expr
	Body *Block
}

func (WhileStmt) isStatement() {}
func (s WhileStmt) Position() Pos { return s.Pos }

// ForStmt iterates Iter. Key is empty for single-variable loops.
type ForStmt struct {
	Pos   Pos
	Key   string
	Value string
	Iter  Expr
	Body  *Block
}

func (ForStmt) isStatement() {}
func (s ForStmt) Position() Pos { return s.Pos }

type BreakStmt struct {
	Pos Pos
}

func (BreakStmt) isStatement() {}
func (s BreakStmt) Position() Pos { return s.Pos }

type ContinueStmt struct {
	Pos Pos
}

func (ContinueStmt) isStatement() {}
func (s ContinueStmt) Position() Pos { return s.Pos }

type FuncDecl struct {
	Pos         Pos
	Name        string
	Params      []string
	Body        *Block
	Annotations []string
}

func (FuncDecl) isStatement() {}
func (s FuncDecl) Position() Pos { return s.Pos }

func (s FuncDecl) HasAnnotation(name string) bool {
	for _, a := range s.Annotations {
		if a == name {
			return true
		}
	}
	return false
}

type ClassDecl struct {
	Pos     Pos
	Name    string
	Parent  string
	Fields  []FieldDecl
	Methods []MethodDecl
}

func (ClassDecl) isStatement() {}
func (s ClassDecl) Position() Pos { return s.Pos }

type FieldDecl struct {
	Name    string
	Default Expr
}

type MethodDecl struct {
	Name   string
	Params []string
	Body   *Block
}

type ReturnStmt struct {
	Pos   Pos
	Value Expr
}

func (ReturnStmt) isStatement() {}
func (s ReturnStmt) Position() Pos { return s.Pos }

type PrintStmt struct {
	Pos   Pos
	Value Expr
}

func (PrintStmt) isStatement() {}
func (s PrintStmt) Position() Pos { return s.Pos }

// ExecStmt runs Command as a raw command line and prints its text output.
type ExecStmt struct {
	Pos     Pos
	Command Expr
}

func (ExecStmt) isStatement() {}
func (s ExecStmt) Position() Pos { return s.Pos }

// ScriptStmt loads another script into the root scope.
type ScriptStmt struct {
	Pos  Pos
	Path Expr
}

func (ScriptStmt) isStatement() {}
func (s ScriptStmt) Position() Pos { return s.Pos }

type UseStmt struct {
	Pos    Pos
	Module string
}

func (UseStmt) isStatement() {}
func (s UseStmt) Position() Pos { return s.Pos }

type AssertStmt struct {
	Pos     Pos
	Cond    Expr
	Message Expr
}

func (AssertStmt) isStatement() {}
func (s AssertStmt) Position() Pos { return s.Pos }

type ExitStmt struct {
	Pos  Pos
	Code Expr
}

func (ExitStmt) isStatement() {}
func (s ExitStmt) Position() Pos { return s.Pos }

type ExprStmt struct {
	Pos  Pos
	Expr Expr
}

func (ExprStmt) isStatement() {}
func (s ExprStmt) Position() Pos { return s.Pos }

type IntLit struct {
	Pos   Pos
	Value int64
}

func (IntLit) isExpr() {}
func (e IntLit) Position() Pos { return e.Pos }

type FloatLit struct {
	Pos   Pos
	Value float64
}

func (FloatLit) isExpr() {}
func (e FloatLit) Position() Pos { return e.Pos }

type StringLit struct {
	Pos   Pos
	Value string
}

func (StringLit) isExpr() {}
func (e StringLit) Position() Pos { return e.Pos }

// InterpString concatenates the display form of each part.
type InterpString struct {
	Pos   Pos
	Parts []Expr
}

func (InterpString) isExpr() {}
func (e InterpString) Position() Pos { return e.Pos }

type BoolLit struct {
	Pos   Pos
	Value bool
}

func (BoolLit) isExpr() {}
func (e BoolLit) Position() Pos { return e.Pos }

type NoneLit struct {
	Pos Pos
}

func (NoneLit) isExpr() {}
func (e NoneLit) Position() Pos { return e.Pos }

type Ident struct {
	Pos  Pos
	Name string
}

func (Ident) isExpr() {}
func (e Ident) Position() Pos { return e.Pos }

type ThisExpr struct {
	Pos Pos
}

func (ThisExpr) isExpr() {}
func (e ThisExpr) Position() Pos { return e.Pos }

type BinaryExpr struct {
	Pos   Pos
	Op    string
	Left  Expr
	Right Expr
}

func (BinaryExpr) isExpr() {}
func (e BinaryExpr) Position() Pos { return e.Pos }

// LogicalExpr is && or ||; Right is evaluated only when needed.
type LogicalExpr struct {
	Pos   Pos
	Op    string
	Left  Expr
	Right Expr
}

func (LogicalExpr) isExpr() {}
func (e LogicalExpr) Position() Pos { return e.Pos }

type UnaryExpr struct {
	Pos     Pos
	Op      string
	Operand Expr
}

func (UnaryExpr) isExpr() {}
func (e UnaryExpr) Position() Pos { return e.Pos }

type CallExpr struct {
	Pos    Pos
	Callee Expr
	Args   []Expr
}

func (CallExpr) isExpr() {}
func (e CallExpr) Position() Pos { return e.Pos }

type MethodCall struct {
	Pos      Pos
	Receiver Expr
	Name     string
	Args     []Expr
}

func (MethodCall) isExpr() {}
func (e MethodCall) Position() Pos { return e.Pos }

type PropertyExpr struct {
	Pos    Pos
	Object Expr
	Name   string
}

func (PropertyExpr) isExpr() {}
func (e PropertyExpr) Position() Pos { return e.Pos }

type IndexExpr struct {
	Pos    Pos
	Object Expr
	Index  Expr
}

func (IndexExpr) isExpr() {}
func (e IndexExpr) Position() Pos { return e.Pos }

// SliceExpr is obj[Low:High]; a nil bound means the start or end.
type SliceExpr struct {
	Pos    Pos
	Object Expr
	Low    Expr
	High   Expr
}

func (SliceExpr) isExpr() {}
func (e SliceExpr) Position() Pos { return e.Pos }

type ListLit struct {
	Pos   Pos
	Items []Expr
}

func (ListLit) isExpr() {}
func (e ListLit) Position() Pos { return e.Pos }

type DictLit struct {
	Pos     Pos
	Entries []DictEntry
}

func (DictLit) isExpr() {}
func (e DictLit) Position() Pos { return e.Pos }

type DictEntry struct {
	Key   Expr
	Value Expr
}

type SetLit struct {
	Pos   Pos
	Items []Expr
}

func (SetLit) isExpr() {}
func (e SetLit) Position() Pos { return e.Pos }

// ClosureLit has either an expression Body or a Block.
type ClosureLit struct {
	Pos    Pos
	Params []string
	Body   Expr
	Block  *Block
}

func (ClosureLit) isExpr() {}
func (e ClosureLit) Position() Pos { return e.Pos }

type NewExpr struct {
	Pos   Pos
	Class string
}

func (NewExpr) isExpr() {}
func (e NewExpr) Position() Pos { return e.Pos }

// CommandExpr invokes an external command. Args are raw words; a word
// wrapped in braces is evaluated as an expression.
type CommandExpr struct {
	Pos  Pos
	Name string
	Args []CommandArg
}

func (CommandExpr) isExpr() {}
func (e CommandExpr) Position() Pos { return e.Pos }

type CommandArg struct {
	Text string
	Expr Expr
}

type PipelineExpr struct {
	Pos    Pos
	Input  Expr
	Target Expr
}

func (PipelineExpr) isExpr() {}
func (e PipelineExpr) Position() Pos { return e.Pos }
