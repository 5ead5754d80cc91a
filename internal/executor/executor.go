// Package executor is the only place that starts external processes. It
// validates the target against the chosen tool, builds the argument vector,
// passes it through the security engine and runs it without a shell.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"lume/internal/domain"
	"lume/internal/security"
	"lume/internal/target"
)

// Recorder receives execution outcomes for metrics.
type Recorder interface {
	ObserveExecution(tool string, kind domain.ResultKind, d time.Duration)
	ObserveBlocked(tool string)
}

// ErrInterrupted is returned by confirmation handlers when the user aborts
// the prompt (Ctrl-C) rather than answering it.
var ErrInterrupted = errors.New("interrupted")

type Config struct {
	Timeout        time.Duration
	MaxOutputBytes int
}

type Executor struct {
	runner   Runner
	security domain.SecurityEngine
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// New returns an executor. sec may be nil, in which case every command that
// passes validation runs without a policy check; rec may be nil.
func New(cfg Config, sec domain.SecurityEngine, rec Recorder, logger *slog.Logger) *Executor {
	return &Executor{
		runner:   Runner{Timeout: cfg.Timeout, MaxOutputBytes: cfg.MaxOutputBytes},
		security: sec,
		recorder: rec,
		logger:   logger,
		now:      time.Now,
	}
}

// Execute runs one plugin against one target. Every failure is reported in
// the returned result; nothing is returned as a Go error.
func (e *Executor) Execute(ctx context.Context, p domain.Plugin, t domain.Target, hints domain.Hints, dryRun bool) domain.ExecutionResult {
	res := domain.ExecutionResult{Tool: p.Name(), DryRun: dryRun, ReturnCode: -1}

	if t.Value == "" {
		return e.fail(res, domain.ResultInvalidTarget, "no target (IP, CIDR, domain or URL) found in instruction")
	}
	if !p.ValidateTarget(t.Value) {
		return e.fail(res, domain.ResultInvalidTarget, fmt.Sprintf("invalid target %q for %s", t.Value, p.Name()))
	}

	argv, err := p.BuildCommand(t.Value, hints)
	if err != nil {
		return e.fail(res, domain.ResultBuildFailed, err.Error())
	}
	if err := target.ValidateCommandTemplate(argv); err != nil {
		return e.fail(res, domain.ResultBuildFailed, "unsafe command: "+err.Error())
	}
	display, err := security.Join(argv)
	if err != nil {
		return e.fail(res, domain.ResultBuildFailed, "render command: "+err.Error())
	}
	res.Argv = argv
	res.Command = display

	scoped := t
	if w, ok := p.(domain.Widener); ok {
		scoped = w.ScanTarget(t, hints)
	}

	action := domain.ActionAllow
	if e.security != nil {
		action, err = e.security.Check(ctx, p.Name(), scoped, argv)
		if err != nil {
			return e.fail(res, domain.ResultBlocked, "security check: "+err.Error())
		}
	}
	if action == domain.ActionBlock {
		if e.recorder != nil {
			e.recorder.ObserveBlocked(p.Name())
		}
		return e.fail(res, domain.ResultBlocked, "command blocked by security policy")
	}

	if dryRun {
		res.Success = true
		res.Kind = domain.ResultOK
		res.ReturnCode = 0
		return res
	}

	if action == domain.ActionConfirm {
		ok, err := e.security.RequestConfirmation(ctx, p.Name(), display)
		switch {
		case errors.Is(err, ErrInterrupted) || ctx.Err() != nil:
			return e.fail(res, domain.ResultInterrupted, "interrupted")
		case err != nil:
			return e.fail(res, domain.ResultDeclined, "confirmation failed: "+err.Error())
		case !ok:
			return e.fail(res, domain.ResultDeclined, "execution cancelled by user")
		}
	}

	e.logger.Info("executing", "tool", p.Name(), "command", display, "run_id", domain.RunIDFrom(ctx))
	start := e.now()
	out := e.runner.Run(ctx, argv)
	res.Duration = e.now().Sub(start)
	res.Output = out.Stdout
	res.Truncated = out.Truncated
	res.ReturnCode = out.ExitCode

	switch {
	case out.Err == nil:
		res.Success = true
		res.Kind = domain.ResultOK
		res.ReturnCode = 0
		if out.Stderr != "" && res.Output == "" {
			res.Output = out.Stderr
		}
	case errors.Is(out.Err, context.Canceled):
		res.Kind = domain.ResultInterrupted
		res.Error = "interrupted"
	case errors.Is(out.Err, ErrTimeout):
		res.Kind = domain.ResultTimeout
		res.Error = out.Err.Error()
	case isExitError(out.Err):
		res.Kind = domain.ResultExitFailure
		res.Error = strings.TrimSpace(out.Stderr)
		if res.Error == "" {
			res.Error = fmt.Sprintf("%s exited with status %d", argv[0], out.ExitCode)
		}
	default:
		res.Kind = domain.ResultLaunchFailure
		res.Error = out.Err.Error()
	}

	e.logger.Debug("execution finished", "tool", p.Name(), "kind", res.Kind, "code", res.ReturnCode, "duration", res.Duration)
	if e.recorder != nil {
		e.recorder.ObserveExecution(p.Name(), res.Kind, res.Duration)
	}
	return res
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

func (e *Executor) fail(res domain.ExecutionResult, kind domain.ResultKind, msg string) domain.ExecutionResult {
	res.Success = false
	res.Kind = kind
	res.Error = msg
	e.logger.Debug("execution rejected", "tool", res.Tool, "kind", kind, "reason", msg)
	return res
}
