package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	sgruntime "github.com/gosuda/stargate/runtime"
)

const contPrompt = "... "

func runPlain(app appConfig) (int, error) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	hist := app.cfg.HistoryFile
	if f, err := os.Open(hist); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}
	defer func() {
		if hist == "" {
			return
		}
		_ = os.MkdirAll(filepath.Dir(hist), 0o755)
		if f, err := os.Create(hist); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	wd, _ := os.Getwd()
	s := newSession(app, sgruntime.WithScriptLoader(scriptLoader(wd)), sgruntime.WithOutput(os.Stdout))
	ln.SetCompleter(func(line string) []string {
		return s.complete(context.Background(), line)
	})

	for {
		src, ok := readEntry(ln, s, app.cfg.Prompt)
		if !ok {
			fmt.Println()
			return 0, nil
		}
		if strings.TrimSpace(src) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(src, "\n", " "))

		r := s.eval(context.Background(), src)
		for _, line := range r.lines {
			fmt.Println(line)
		}
		if r.err != nil {
			fmt.Fprintln(os.Stderr, errStyle.Render(r.err.Error()))
		}
		if r.quit {
			return r.code, nil
		}
	}
}

// readEntry reads lines until the buffered source parses or fails for a
// reason other than running out of input. Ctrl+C drops the buffer.
func readEntry(ln *liner.State, s *session, prompt string) (string, bool) {
	var b strings.Builder
	for {
		p := prompt
		if b.Len() > 0 {
			p = contPrompt
		}
		line, err := ln.Prompt(p)
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if errors.Is(err, io.EOF) {
			if b.Len() > 0 {
				return b.String(), true
			}
			return "", false
		}
		if err != nil {
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !s.incomplete(src) {
			return src, true
		}
	}
}
