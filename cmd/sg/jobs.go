package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gosuda/stargate/command"
)

type jobState int

const (
	jobRunning jobState = iota
	jobDone
	jobFailed
)

func (s jobState) String() string {
	switch s {
	case jobRunning:
		return "running"
	case jobDone:
		return "done"
	case jobFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// syncBuffer collects a background job's output while it runs.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Len()
}

type job struct {
	id      int
	inv     command.Invocation
	pid     int
	started time.Time
	out     syncBuffer

	state    jobState
	exitCode int
	elapsed  time.Duration
}

// jobTable tracks commands started with a trailing '&'. Jobs are reaped
// by their own goroutine.
type jobTable struct {
	mu     sync.Mutex
	next   int
	jobs   []*job
	logger *slog.Logger
}

func newJobTable(logger *slog.Logger) *jobTable {
	return &jobTable{next: 1, logger: logger}
}

type starter interface {
	StartJob(inv command.Invocation, j *job) (wait func() (int, error), err error)
}

type processStarter struct {
	proc *command.Process
}

func (s processStarter) StartJob(inv command.Invocation, j *job) (func() (int, error), error) {
	cmd, err := s.proc.Start(inv, &j.out, &j.out)
	if err != nil {
		return nil, err
	}
	j.pid = cmd.Process.Pid
	return func() (int, error) {
		err := cmd.Wait()
		return cmd.ProcessState.ExitCode(), err
	}, nil
}

func (t *jobTable) start(st starter, inv command.Invocation) (*job, error) {
	t.mu.Lock()
	j := &job{id: t.next, inv: inv, started: time.Now()}
	t.next++
	t.mu.Unlock()

	wait, err := st.StartJob(inv, j)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	t.jobs = append(t.jobs, j)
	t.mu.Unlock()

	go func() {
		code, err := wait()
		t.mu.Lock()
		defer t.mu.Unlock()
		j.exitCode = code
		j.elapsed = time.Since(j.started)
		j.state = jobDone
		if err != nil || code != 0 {
			j.state = jobFailed
		}
		t.logger.Debug("job finished", slog.Int("id", j.id), slog.String("cmd", inv.Name), slog.Int("exit", code))
	}()
	return j, nil
}

// list renders one line per job, oldest first.
func (t *jobTable) list() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.jobs))
	for _, j := range t.jobs {
		line := fmt.Sprintf("[%d] %-7s pid %d  %s %s", j.id, j.state, j.pid, j.inv.Name, strings.Join(j.inv.Args, " "))
		if j.state != jobRunning {
			line += fmt.Sprintf("  (exit %d, %s, %d bytes)", j.exitCode, j.elapsed.Round(time.Millisecond), j.out.Len())
		}
		out = append(out, strings.TrimRight(line, " "))
	}
	return out
}
