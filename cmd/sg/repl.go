package main

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/gosuda/stargate/ast"
	"github.com/gosuda/stargate/command"
	"github.com/gosuda/stargate/parser"
	sgruntime "github.com/gosuda/stargate/runtime"
)

const helpText = `Enter statements or expressions; values are echoed.
  :vars    list variables
  :jobs    list background jobs
  :help    show this help
  :quit    leave the shell
A command line ending in '&' runs in the background.
Unfinished input (open braces, strings) continues on the next line.`

// reply is the outcome of one REPL entry.
type reply struct {
	lines []string
	err   error
	quit  bool
	code  int
}

// session is the REPL state shared by the plain and TUI front ends.
type session struct {
	it      *sgruntime.Interpreter
	jobs    *jobTable
	starter starter
}

func newSession(app appConfig, opts ...sgruntime.Option) *session {
	base := []sgruntime.Option{
		sgruntime.WithLogger(app.logger),
		sgruntime.WithTimeout(app.cfg.CommandTimeout),
	}
	if app.proc != nil {
		base = append(base, sgruntime.WithExecutor(app.proc))
	}
	s := &session{
		it:   sgruntime.New(append(base, opts...)...),
		jobs: newJobTable(app.logger),
	}
	if app.proc != nil {
		s.starter = processStarter{proc: app.proc}
	}
	return s
}

// incomplete reports whether src needs more lines before it can run.
func (s *session) incomplete(src string) bool {
	_, err := parser.ParseProgram(src)
	return parser.IsIncomplete(err)
}

func (s *session) eval(ctx context.Context, src string) reply {
	line := strings.TrimSpace(src)
	switch {
	case line == "":
		return reply{}
	case strings.HasPrefix(line, ":"):
		return s.meta(line)
	case strings.HasSuffix(line, "&") && !strings.HasSuffix(line, "&&"):
		return s.background(ctx, strings.TrimSpace(strings.TrimSuffix(line, "&")))
	}
	prog, err := parser.ParseProgram(src)
	if err != nil {
		return reply{err: err}
	}
	v, err := s.it.Exec(ctx, prog)
	var exit *sgruntime.ExitSignal
	if errors.As(err, &exit) {
		return reply{quit: true, code: exit.Code}
	}
	if err != nil {
		return reply{err: err}
	}
	if v.IsNone() {
		return reply{}
	}
	return reply{lines: []string{sgruntime.Display(v)}}
}

func (s *session) meta(line string) reply {
	fields := strings.Fields(line)
	switch strings.ToLower(fields[0]) {
	case ":quit", ":q", ":exit":
		return reply{quit: true}
	case ":help", ":h":
		return reply{lines: strings.Split(helpText, "\n")}
	case ":jobs":
		jobs := s.jobs.list()
		if len(jobs) == 0 {
			return reply{lines: []string{"no jobs"}}
		}
		return reply{lines: jobs}
	case ":vars":
		globals := s.it.Globals()
		names := make([]string, 0, len(globals))
		for name := range globals {
			names = append(names, name)
		}
		sort.Strings(names)
		lines := make([]string, 0, len(names))
		for _, name := range names {
			v := globals[name]
			lines = append(lines, fmt.Sprintf("%s: %s = %s", name, v.Kind(), sgruntime.Display(v)))
		}
		if len(lines) == 0 {
			lines = append(lines, "no variables")
		}
		return reply{lines: lines}
	default:
		return reply{err: fmt.Errorf("unknown command %s, type :help", fields[0])}
	}
}

// background starts a single command without waiting for it.
func (s *session) background(ctx context.Context, src string) reply {
	expr, err := parser.ParseExpr(src)
	if err != nil {
		return reply{err: err}
	}
	cmd, ok := expr.(ast.CommandExpr)
	if !ok {
		return reply{err: fmt.Errorf("only commands can run in the background")}
	}
	inv := command.Invocation{Name: cmd.Name, Dir: s.it.WorkDir()}
	for _, arg := range cmd.Args {
		if arg.Expr == nil {
			inv.Args = append(inv.Args, arg.Text)
			continue
		}
		v, err := s.it.EvalExpr(ctx, strings.TrimSuffix(strings.TrimPrefix(arg.Text, "{"), "}"))
		if err != nil {
			return reply{err: err}
		}
		inv.Args = append(inv.Args, sgruntime.Display(v))
	}
	if s.starter == nil {
		return reply{err: errors.New("no command executor configured")}
	}
	j, err := s.jobs.start(s.starter, inv)
	if err != nil {
		return reply{err: err}
	}
	return reply{lines: []string{fmt.Sprintf("[%d] %d", j.id, j.pid)}}
}

// complete returns full-line candidates for the word under the cursor at
// the end of line, best match first.
func (s *session) complete(ctx context.Context, line string) []string {
	start := strings.LastIndexFunc(line, func(r rune) bool {
		return !(r == '_' || r == '.' || r == '-' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z')
	}) + 1
	head, word := line[:start], line[start:]
	if strings.HasPrefix(word, ".") {
		if open := openParen(head); open >= 0 {
			head, word = head[:open], head[open:]+word
		}
	}

	var prefix, partial string
	var candidates []string
	if dot := strings.LastIndex(word, "."); dot > 0 {
		prefix, partial = word[:dot+1], word[dot+1:]
		members, err := s.it.Complete(ctx, word[:dot])
		if err != nil {
			return nil
		}
		candidates = members
	} else {
		partial = word
		candidates = append(s.it.Names(), parser.Keywords()...)
	}
	out := make([]string, 0, len(candidates))
	for _, c := range rankCandidates(partial, candidates) {
		out = append(out, head+prefix+c)
	}
	return out
}

// openParen returns the index of the '(' matching the ')' that ends head,
// or -1.
func openParen(head string) int {
	if !strings.HasSuffix(head, ")") {
		return -1
	}
	depth := 0
	for i := len(head) - 1; i >= 0; i-- {
		switch head[i] {
		case ')':
			depth++
		case '(':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// rankCandidates keeps the candidates matching partial, closest first.
func rankCandidates(partial string, candidates []string) []string {
	if partial == "" {
		out := append([]string(nil), candidates...)
		sort.Strings(out)
		return out
	}
	ranks := fuzzy.RankFindFold(partial, candidates)
	sort.SliceStable(ranks, func(i, j int) bool {
		pi := strings.HasPrefix(ranks[i].Target, partial)
		pj := strings.HasPrefix(ranks[j].Target, partial)
		if pi != pj {
			return pi
		}
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].Target < ranks[j].Target
	})
	out := make([]string, 0, len(ranks))
	seen := map[string]struct{}{}
	for _, r := range ranks {
		if _, ok := seen[r.Target]; ok {
			continue
		}
		seen[r.Target] = struct{}{}
		out = append(out, r.Target)
	}
	return out
}
