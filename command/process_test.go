package command

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/emirpasic/gods/maps/linkedhashmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helperEnv = "STARGATE_COMMAND_HELPER=1"

// TestMain turns the test binary into a multiplexer of fake commands
// when it is re-executed by a Process under test.
func TestMain(m *testing.M) {
	if os.Getenv("STARGATE_COMMAND_HELPER") == "1" {
		os.Exit(helperMain(os.Args[1:]))
	}
	os.Exit(m.Run())
}

func helperMain(args []string) int {
	if len(args) == 0 {
		return 2
	}
	name, rest := args[0], args[1:]
	switch name {
	case "echo-args":
		b, _ := json.Marshal(map[string]any{"args": rest})
		fmt.Println(string(b))
	case "cat-input":
		_, _ = io.Copy(os.Stdout, os.Stdin)
	case "print-dir":
		wd, _ := os.Getwd()
		fmt.Print(wd)
	case "fail":
		fmt.Fprint(os.Stderr, "boom")
		return 3
	case "hang":
		time.Sleep(10 * time.Second)
	case "garbage":
		fmt.Print("{not json")
	default:
		fmt.Fprintf(os.Stderr, "unknown helper %s", name)
		return 127
	}
	return 0
}

func helperProcess(t *testing.T) *Process {
	t.Helper()
	self, err := os.Executable()
	require.NoError(t, err)
	return &Process{Multiplexer: self, Env: []string{helperEnv}, Timeout: 5 * time.Second}
}

func TestExecuteAddsStructuredFlag(t *testing.T) {
	p := helperProcess(t)
	res, err := p.Execute(context.Background(), Invocation{Name: "echo-args", Args: []string{"-l", "/tmp"}, Structured: true})
	require.NoError(t, err)
	m := res.Data.(*linkedhashmap.Map)
	args, _ := m.Get("args")
	assert.Equal(t, []any{"--obj", "-l", "/tmp"}, args)

	res, err = p.Execute(context.Background(), Invocation{Name: "echo-args", Args: []string{"--obj"}, Structured: true})
	require.NoError(t, err)
	args, _ = res.Data.(*linkedhashmap.Map).Get("args")
	assert.Equal(t, []any{"--obj"}, args)

	p.StructuredFlag = "--json"
	p.ObjectNative = []string{"cat-input"}
	res, err = p.Execute(context.Background(), Invocation{Name: "echo-args", Structured: true})
	require.NoError(t, err)
	args, _ = res.Data.(*linkedhashmap.Map).Get("args")
	assert.Equal(t, []any{"--json"}, args)
}

func TestExecuteRawAndInput(t *testing.T) {
	p := helperProcess(t)
	p.ObjectNative = []string{"cat-input"}

	res, err := p.Execute(context.Background(), Invocation{Name: "cat-input", Input: []byte(`[1, {"k": "v"}]`), Structured: true})
	require.NoError(t, err)
	arr, ok := res.Data.([]any)
	require.True(t, ok)
	assert.Len(t, arr, 2)

	res, err = p.Execute(context.Background(), Invocation{Name: "cat-input", Input: []byte("plain text")})
	require.NoError(t, err)
	assert.Nil(t, res.Data)
	assert.Equal(t, "plain text", string(res.Raw))
}

func TestExecuteWorkingDirectory(t *testing.T) {
	p := helperProcess(t)
	dir := t.TempDir()
	res, err := p.Execute(context.Background(), Invocation{Name: "print-dir", Dir: dir})
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(dir)
	got, _ := filepath.EvalSymlinks(string(res.Raw))
	assert.Equal(t, want, got)
}

func TestExecuteErrors(t *testing.T) {
	p := helperProcess(t)

	_, err := p.Execute(context.Background(), Invocation{Name: "fail"})
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, Failed, ce.Kind)
	assert.Equal(t, 3, ce.ExitCode)
	assert.Equal(t, "boom", ce.Stderr)

	_, err = p.Execute(context.Background(), Invocation{Name: "garbage", Structured: true})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, Malformed, ce.Kind)

	p.Timeout = 100 * time.Millisecond
	start := time.Now()
	_, err = p.Execute(context.Background(), Invocation{Name: "hang"})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, Timeout, ce.Kind)
	assert.Less(t, time.Since(start), 5*time.Second)

	missing := &Process{SearchPaths: []string{t.TempDir()}}
	_, err = missing.Execute(context.Background(), Invocation{Name: "stargate-no-such-command"})
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, NotFound, ce.Kind)
}

func TestLookPathPrefersSearchPaths(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "sg-tool")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "not-exec"), []byte("x"), 0o644))

	p := &Process{SearchPaths: []string{dir}}
	got, err := p.LookPath("sg-tool")
	require.NoError(t, err)
	assert.Equal(t, bin, got)

	_, err = p.LookPath("not-exec")
	assert.Error(t, err)
}

func TestStartRunsInBackground(t *testing.T) {
	p := helperProcess(t)
	var out bytes.Buffer
	cmd, err := p.Start(Invocation{Name: "echo-args", Args: []string{"x"}}, &out, io.Discard)
	require.NoError(t, err)
	require.NoError(t, cmd.Wait())
	assert.JSONEq(t, `{"args":["x"]}`, out.String())

	_, err = (&Process{}).Start(Invocation{Name: "stargate-no-such-command"}, io.Discard, io.Discard)
	var ce *Error
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, NotFound, ce.Kind)
}
