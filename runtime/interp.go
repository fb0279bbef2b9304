package sgruntime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gosuda/stargate/ast"
	"github.com/gosuda/stargate/command"
	"github.com/gosuda/stargate/parser"
)

const maxCallDepth = 2000

// Output is one printed line, as delivered to an output hook.
type Output struct {
	Text    string `json:"text"`
	NewLine bool   `json:"newline"`
}

// CommandExecutor runs external commands on behalf of scripts.
type CommandExecutor interface {
	Execute(ctx context.Context, inv command.Invocation) (*command.Result, error)
}

// ExitSignal is returned by Exec when the script runs an exit statement.
type ExitSignal struct {
	Code int
}

func (e *ExitSignal) Error() string {
	return fmt.Sprintf("exit %d", e.Code)
}

type Option func(*Interpreter)

func WithOutput(w io.Writer) Option {
	return func(it *Interpreter) { it.out = w }
}

func WithExecutor(e CommandExecutor) Option {
	return func(it *Interpreter) { it.executor = e }
}

func WithLogger(l *slog.Logger) Option {
	return func(it *Interpreter) {
		if l != nil {
			it.logger = l
		}
	}
}

// WithScriptLoader sets how `script "path"` statements read source.
func WithScriptLoader(load func(path string) (string, error)) Option {
	return func(it *Interpreter) { it.loadScript = load }
}

// WithTimeout bounds every command invocation. Zero leaves the bound to
// the executor.
func WithTimeout(d time.Duration) Option {
	return func(it *Interpreter) { it.timeout = d }
}

// WithWorkDir sets the directory reported and changed by the cd builtin.
func WithWorkDir(dir string) Option {
	return func(it *Interpreter) { it.workDir = dir }
}

// Interpreter evaluates programs against one root environment. It is not
// safe for concurrent use.
type Interpreter struct {
	globals    *Env
	classes    map[string]*classDef
	tests      *TestRegistry
	executor   CommandExecutor
	out        io.Writer
	hook       func(Output)
	logger     *slog.Logger
	loadScript func(path string) (string, error)
	timeout    time.Duration
	workDir    string
	ctx        context.Context
	depth      int
}

type resultKind int

const (
	resultNone resultKind = iota
	resultReturn
	resultBreak
	resultContinue
	resultExit
)

type execResult struct {
	kind  resultKind
	value Value
	code  int
}

func New(opts ...Option) *Interpreter {
	it := &Interpreter{
		globals:    NewEnv(nil),
		classes:    map[string]*classDef{},
		out:        os.Stdout,
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		loadScript: readScriptFile,
		ctx:        context.Background(),
	}
	it.tests = newTestRegistry(it)
	for _, opt := range opts {
		opt(it)
	}
	if it.executor == nil {
		it.executor = unavailableExecutor{}
	}
	return it
}

func readScriptFile(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

type unavailableExecutor struct{}

func (unavailableExecutor) Execute(_ context.Context, inv command.Invocation) (*command.Result, error) {
	return nil, &command.Error{Kind: command.NotFound, Name: inv.Name, Err: fmt.Errorf("no command executor configured")}
}

// SetOutputHook routes printed lines to fn instead of the output writer.
func (it *Interpreter) SetOutputHook(fn func(Output)) {
	it.hook = fn
}

func (it *Interpreter) SetExecutor(e CommandExecutor) {
	it.executor = e
}

func (it *Interpreter) Tests() *TestRegistry {
	return it.tests
}

// Define binds a host value in the root scope.
func (it *Interpreter) Define(name string, v Value) {
	it.globals.Define(name, v)
}

func (it *Interpreter) Lookup(name string) (Value, bool) {
	return it.globals.Get(name)
}

// Globals returns a snapshot of the root scope.
func (it *Interpreter) Globals() map[string]Value {
	cp := make(map[string]Value, len(it.globals.vars))
	for k, v := range it.globals.vars {
		cp[k] = v
	}
	return cp
}

func (it *Interpreter) emit(text string) {
	if it.hook != nil {
		it.hook(Output{Text: text, NewLine: true})
		return
	}
	fmt.Fprintln(it.out, text)
}

// Run executes a whole script and returns the process exit code. Tests
// registered but never run are run after the last top-level statement.
func (it *Interpreter) Run(ctx context.Context, prog *ast.Program) (int, error) {
	it.ctx = ctx
	defer func() { it.ctx = context.Background() }()

	res, err := it.runStatements(prog.Statements, it.globals)
	if err != nil {
		var exit *ExitSignal
		if errors.As(err, &exit) {
			return exit.Code, nil
		}
		return 1, err
	}
	switch res.kind {
	case resultExit:
		return res.code, nil
	case resultBreak, resultContinue:
		return 1, newError(TypeError, "break or continue outside of a loop")
	}
	if it.tests.pending() {
		if err := it.tests.Run(); err != nil {
			var exit *ExitSignal
			if errors.As(err, &exit) {
				return exit.Code, nil
			}
			return 1, err
		}
		if it.tests.Failed() > 0 {
			return 1, nil
		}
	}
	return 0, nil
}

// Exec runs statements in the persistent root scope, as the REPL does
// for each entry. The value of a trailing expression statement is
// returned; an exit statement yields *ExitSignal.
func (it *Interpreter) Exec(ctx context.Context, prog *ast.Program) (Value, error) {
	it.ctx = ctx
	defer func() { it.ctx = context.Background() }()

	stmts := prog.Statements
	var last *ast.ExprStmt
	if n := len(stmts); n > 0 {
		if es, ok := stmts[n-1].(ast.ExprStmt); ok {
			last = &es
			stmts = stmts[:n-1]
		}
	}
	res, err := it.runStatements(stmts, it.globals)
	if err != nil {
		return None, err
	}
	if res.kind == resultExit {
		return None, &ExitSignal{Code: res.code}
	}
	if res.kind != resultNone {
		return None, nil
	}
	if last == nil {
		return None, nil
	}
	v, err := it.evalExpr(last.Expr, it.globals)
	if err != nil {
		return None, withPos(err, last.Pos)
	}
	return v, nil
}

// EvalExpr parses and evaluates a single expression in the root scope.
func (it *Interpreter) EvalExpr(ctx context.Context, src string) (Value, error) {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return None, err
	}
	it.ctx = ctx
	defer func() { it.ctx = context.Background() }()
	return it.evalExpr(expr, it.globals)
}
