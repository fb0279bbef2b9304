package command

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"time"
)

const (
	DefaultTimeout        = 30 * time.Second
	DefaultStructuredFlag = "--obj"
)

// Process runs commands as child processes. When Multiplexer is set,
// commands are run as subcommands of that binary: `<mux> <name> args`.
type Process struct {
	Multiplexer    string
	SearchPaths    []string
	StructuredFlag string
	// ObjectNative commands already speak structured output and never get
	// the structured flag.
	ObjectNative []string
	Timeout      time.Duration
	Dir          string
	Env          []string
	Logger       *slog.Logger
}

func (p *Process) logger() *slog.Logger {
	if p.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p.Logger
}

func (p *Process) timeout() time.Duration {
	if p.Timeout <= 0 {
		return DefaultTimeout
	}
	return p.Timeout
}

func (p *Process) structuredFlag() string {
	if p.StructuredFlag == "" {
		return DefaultStructuredFlag
	}
	return p.StructuredFlag
}

// LookPath resolves name against SearchPaths first, then PATH.
func (p *Process) LookPath(name string) (string, error) {
	for _, dir := range p.SearchPaths {
		candidate := filepath.Join(dir, name)
		if st, err := os.Stat(candidate); err == nil && !st.IsDir() && st.Mode()&0o111 != 0 {
			return candidate, nil
		}
	}
	return exec.LookPath(name)
}

// command builds the exec.Cmd for inv without starting it.
func (p *Process) command(ctx context.Context, inv Invocation) (*exec.Cmd, error) {
	args := slices.Clone(inv.Args)
	if inv.Structured && !slices.Contains(p.ObjectNative, inv.Name) && !slices.Contains(args, p.structuredFlag()) {
		args = append([]string{p.structuredFlag()}, args...)
	}
	bin := inv.Name
	if p.Multiplexer != "" {
		bin = p.Multiplexer
		args = append([]string{inv.Name}, args...)
	}
	path, err := p.LookPath(bin)
	if err != nil {
		return nil, &Error{Kind: NotFound, Name: inv.Name, Err: err}
	}
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Dir = p.Dir
	if inv.Dir != "" {
		cmd.Dir = inv.Dir
	}
	if len(p.Env) > 0 {
		cmd.Env = append(os.Environ(), p.Env...)
	}
	if inv.Input != nil {
		cmd.Stdin = bytes.NewReader(inv.Input)
	}
	cmd.WaitDelay = time.Second
	return cmd, nil
}

func (p *Process) Execute(ctx context.Context, inv Invocation) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	cmd, err := p.command(ctx, inv)
	if err != nil {
		return nil, err
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	p.logger().Debug("command finished",
		slog.String("name", inv.Name),
		slog.Any("args", inv.Args),
		slog.Bool("structured", inv.Structured),
		slog.Duration("elapsed", time.Since(start)),
	)
	if runErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, &Error{Kind: Timeout, Name: inv.Name, ExitCode: -1, Stderr: stderr.String(), Err: ctx.Err()}
		}
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			return nil, &Error{Kind: Failed, Name: inv.Name, ExitCode: exitErr.ExitCode(), Stderr: stderr.String(), Err: runErr}
		}
		if errors.Is(runErr, exec.ErrNotFound) || errors.Is(runErr, os.ErrNotExist) {
			return nil, &Error{Kind: NotFound, Name: inv.Name, Err: runErr}
		}
		return nil, &Error{Kind: Failed, Name: inv.Name, ExitCode: -1, Stderr: stderr.String(), Err: runErr}
	}

	res := &Result{Raw: stdout.Bytes()}
	if !inv.Structured {
		return res, nil
	}
	data, err := Decode(res.Raw)
	if err != nil {
		return nil, &Error{Kind: Malformed, Name: inv.Name, Err: err}
	}
	res.Data = data
	return res, nil
}

// Start launches inv without waiting for it. Output goes to the given
// writers; the caller owns reaping through Wait.
func (p *Process) Start(inv Invocation, stdout, stderr io.Writer) (*exec.Cmd, error) {
	cmd, err := p.command(context.Background(), inv)
	if err != nil {
		return nil, err
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	if err := cmd.Start(); err != nil {
		return nil, &Error{Kind: Failed, Name: inv.Name, ExitCode: -1, Err: err}
	}
	return cmd, nil
}
