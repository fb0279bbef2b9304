package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"

	"github.com/gosuda/stargate/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("sg", flag.ContinueOnError)
	configPath := fs.String("config", "", "config file (default ~/.config/stargate/config.yaml)")
	inline := fs.String("e", "", "evaluate source text instead of a script file")
	tui := fs.Bool("tui", false, "use the full-screen REPL")
	verbose := fs.Bool("v", false, "log debug records to stderr")
	timeout := fs.Duration("timeout", 0, "per-command timeout, overrides the config")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: sg [flags] [script.sg | -]\n")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	if *timeout > 0 {
		cfg.CommandTimeout = *timeout
	}
	if *verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	if *tui {
		cfg.TUI = true
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	app := appConfig{cfg: cfg, proc: cfg.Executor(logger), logger: logger}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch {
	case *inline != "":
		wd, _ := os.Getwd()
		return runSource(ctx, app, *inline, wd, os.Stderr)
	case fs.NArg() == 1:
		path := fs.Arg(0)
		src, err := loadScript(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		return runSource(ctx, app, src, filepath.Dir(path), os.Stderr)
	case !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd()):
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		wd, _ := os.Getwd()
		return runSource(ctx, app, string(src), wd, os.Stderr)
	}
	stop()

	if cfg.TUI {
		m := newModel(app)
		final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "tui: %v\n", err)
			return 1
		}
		if fm, ok := final.(model); ok {
			return fm.exitCode
		}
		return 0
	}
	code, err := runPlain(app)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return code
}
