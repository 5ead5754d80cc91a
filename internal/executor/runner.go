package executor

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"
)

const (
	DefaultTimeout        = 5 * time.Minute
	DefaultMaxOutputBytes = 1 << 20

	truncationMarker = "\n... (output truncated)"
	waitDelay        = 2 * time.Second
)

// RunOutput is what a finished (or abandoned) process left behind.
type RunOutput struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
	Err       error
}

// Runner starts one process from an argument vector. There is no shell
// between the runner and the program: argv[0] is resolved on PATH and every
// other token reaches the program as a single argument.
type Runner struct {
	Timeout        time.Duration
	MaxOutputBytes int
}

// ErrTimeout marks a process killed because it ran past the runner timeout.
var ErrTimeout = errors.New("command timed out")

// Run blocks until the process exits, the timeout fires or ctx is cancelled.
// Cancellation is reported as ctx.Err(); the timeout as ErrTimeout.
func (r Runner) Run(ctx context.Context, argv []string) RunOutput {
	if len(argv) == 0 {
		return RunOutput{ExitCode: -1, Err: errors.New("empty command")}
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	limit := r.MaxOutputBytes
	if limit <= 0 {
		limit = DefaultMaxOutputBytes
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	setProcessGroup(cmd)
	cmd.Cancel = func() error { return killProcessGroup(cmd) }
	cmd.WaitDelay = waitDelay

	stdout := &cappedBuffer{limit: limit}
	stderr := &cappedBuffer{limit: limit}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	err := cmd.Run()
	out := RunOutput{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Truncated: stdout.truncated || stderr.truncated,
	}

	switch {
	case err == nil:
		return out
	case ctx.Err() != nil:
		out.ExitCode = -1
		out.Err = ctx.Err()
	case errors.Is(runCtx.Err(), context.DeadlineExceeded):
		out.ExitCode = -1
		out.Err = fmt.Errorf("%w after %s", ErrTimeout, timeout)
	default:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
		} else {
			out.ExitCode = -1
		}
		out.Err = err
	}
	return out
}

// cappedBuffer keeps the first limit bytes and silently drops the rest, so
// a chatty tool never blocks on a full pipe.
type cappedBuffer struct {
	mu        sync.Mutex
	buf       strings.Builder
	limit     int
	truncated bool
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	room := b.limit - b.buf.Len()
	switch {
	case room <= 0:
		b.truncated = len(p) > 0 || b.truncated
	case len(p) > room:
		b.buf.Write(p[:room])
		b.truncated = true
	default:
		b.buf.Write(p)
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.truncated {
		return b.buf.String() + truncationMarker
	}
	return b.buf.String()
}
