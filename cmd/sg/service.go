package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	sgruntime "github.com/gosuda/stargate/runtime"
)

// runWorker owns the session for the TUI. Printed lines stream back as
// evalOutputMsg before the entry's evalDoneMsg.
func runWorker(app appConfig, requests <-chan workerRequest, events chan<- tea.Msg) {
	defer close(events)
	wd, _ := os.Getwd()
	s := newSession(app, sgruntime.WithScriptLoader(scriptLoader(wd)))
	s.it.SetOutputHook(func(out sgruntime.Output) {
		events <- evalOutputMsg{out: out}
	})

	for req := range requests {
		if req.complete {
			events <- completionMsg{line: req.src, candidates: s.complete(context.Background(), req.src)}
			continue
		}
		r := s.eval(context.Background(), req.src)
		events <- evalDoneMsg{reply: r}
		if r.quit {
			return
		}
	}
}
