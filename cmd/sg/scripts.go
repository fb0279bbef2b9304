package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gosuda/stargate"
	sgruntime "github.com/gosuda/stargate/runtime"
)

// scriptLoader resolves relative `script` paths against base, the
// directory of the script being run.
func scriptLoader(base string) func(path string) (string, error) {
	return func(path string) (string, error) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}

func loadScript(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load script: %w", err)
	}
	return string(b), nil
}

// runSource runs a complete script and reports errors on stderr in the
// `<Kind> at line:col: msg` form.
func runSource(ctx context.Context, app appConfig, src, base string, stderr io.Writer) int {
	opts := []sgruntime.Option{
		sgruntime.WithLogger(app.logger),
		sgruntime.WithTimeout(app.cfg.CommandTimeout),
		sgruntime.WithScriptLoader(scriptLoader(base)),
	}
	if app.proc != nil {
		opts = append(opts, sgruntime.WithExecutor(app.proc))
	}
	code, err := stargate.RunSource(ctx, src, opts...)
	if err != nil {
		fmt.Fprintln(stderr, errStyle.Render(err.Error()))
	}
	return code
}
