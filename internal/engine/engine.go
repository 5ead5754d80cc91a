// Package engine turns one natural-language instruction into at most one
// tool execution: optional normalization, resolution, execution, then the
// history, audit and metrics side effects.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"lume/internal/domain"
	"lume/internal/intent"
	"lume/internal/normalize"
	"lume/internal/plugin"
	"lume/internal/rules"
)

// Executor runs a resolved plugin.
type Executor interface {
	Execute(ctx context.Context, p domain.Plugin, t domain.Target, hints domain.Hints, dryRun bool) domain.ExecutionResult
}

type HistoryWriter interface {
	Append(e domain.HistoryEntry)
}

type ExecutionRecorder interface {
	RecordExecution(ctx context.Context, rec domain.ExecutionRecord) error
}

type ResolutionRecorder interface {
	ObserveResolution(stage, tool string)
}

// Config holds the engine's collaborators. Rules, Registry, Executor and
// Logger are required.
type Config struct {
	Rules    *rules.Table
	Registry *plugin.Registry
	Executor Executor
	Analyzer normalize.Analyzer // nil leaves the normalizer unavailable
	History  HistoryWriter
	Audit    ExecutionRecorder
	Metrics  ResolutionRecorder
	Logger   *slog.Logger
}

type Engine struct {
	rules      *rules.Table
	scorer     *intent.Scorer
	registry   *plugin.Registry
	executor   Executor
	normalizer *normalize.Normalizer
	history    HistoryWriter
	audit      ExecutionRecorder
	metrics    ResolutionRecorder
	logger     *slog.Logger
	newRunID   func() string
}

// New wires the engine and checks that every tool the rule table, the
// scorer or the fallback can select has a registered plugin.
func New(cfg Config) (*Engine, error) {
	if cfg.Rules == nil || cfg.Registry == nil || cfg.Executor == nil || cfg.Logger == nil {
		return nil, errors.New("engine: rules, registry, executor and logger are required")
	}
	if err := CheckConsistency(cfg.Rules, cfg.Registry); err != nil {
		return nil, err
	}

	e := &Engine{
		rules:    cfg.Rules,
		scorer:   intent.NewScorer(cfg.Logger),
		registry: cfg.Registry,
		executor: cfg.Executor,
		history:  cfg.History,
		audit:    cfg.Audit,
		metrics:  cfg.Metrics,
		logger:   cfg.Logger,
		newRunID: uuid.NewString,
	}
	e.normalizer = normalize.New(cfg.Analyzer, e.Parses, cfg.Logger)
	return e, nil
}

// CheckConsistency verifies rule tools and templates against the registry.
func CheckConsistency(table *rules.Table, reg *plugin.Registry) error {
	var errs []error
	for _, r := range table.Rules() {
		p, err := reg.Get(r.Tool)
		if err != nil {
			errs = append(errs, fmt.Errorf("rule %s: %w", r.Name, err))
			continue
		}
		argv := table.Template(r.Name)
		if len(argv) > 0 && argv[0] != p.Template()[0] {
			errs = append(errs, fmt.Errorf("rule %s: template runs %q but plugin %s runs %q",
				r.Name, argv[0], r.Tool, p.Template()[0]))
		}
	}
	for _, tool := range append(intent.Tools(), FallbackTool) {
		if !reg.Has(tool) {
			errs = append(errs, fmt.Errorf("%w: %s has no plugin", plugin.ErrUnknownTool, tool))
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) Registry() *plugin.Registry { return e.registry }
func (e *Engine) Rules() *rules.Table        { return e.rules }
func (e *Engine) NormalizerAvailable() bool  { return e.normalizer.Available() }

// RunOptions selects how Run treats one instruction.
type RunOptions struct {
	DryRun              bool
	Explain             bool // implies DryRun
	Normalize           bool
	NormalizeConfidence float64
}

// Outcome is everything the caller needs to report one run.
type Outcome struct {
	RunID         string
	Input         string
	Resolution    Resolution
	Normalization *domain.NormalizationMeta
	Explanation   domain.Explanation
	Result        *domain.ExecutionResult // nil when unresolved
}

// Run processes one instruction end to end. Pipeline failures are reported
// in the outcome; Run itself does not fail.
func (e *Engine) Run(ctx context.Context, instruction string, opts RunOptions) Outcome {
	out := Outcome{RunID: e.newRunID(), Input: instruction}
	ctx = domain.WithRunID(ctx, out.RunID)
	log := e.logger.With("run_id", out.RunID)

	text := instruction
	if opts.Normalize {
		canonical, meta, err := e.normalizer.Normalize(instruction, opts.NormalizeConfidence)
		switch {
		case errors.Is(err, normalize.ErrUnavailable):
			log.Info("normalizer unavailable, using raw instruction")
		case err != nil:
			log.Warn("normalization failed, using raw instruction", "err", err)
		}
		out.Normalization = &meta
		if canonical != "" {
			text = canonical
		}
	}

	out.Resolution = e.Resolve(text)
	if e.metrics != nil {
		e.metrics.ObserveResolution(string(out.Resolution.Stage), out.Resolution.Tool)
	}
	if !out.Resolution.Resolved() {
		log.Info("instruction not understood", "instruction", instruction)
		return out
	}

	res := e.execute(ctx, &out, opts.DryRun || opts.Explain)
	out.Result = &res

	if res.Success && !res.DryRun && e.history != nil {
		entry := domain.HistoryEntry{
			Command: res.Command,
			Target:  out.Resolution.Target.Value,
			Summary: out.Explanation.Summary,
		}
		if out.Normalization != nil && out.Normalization.Used {
			entry.Normalization = out.Normalization
		}
		e.history.Append(entry)
	}
	e.record(ctx, log, out)
	return out
}

func (e *Engine) execute(ctx context.Context, out *Outcome, dryRun bool) domain.ExecutionResult {
	r := out.Resolution
	p, err := e.registry.Get(r.Tool)
	if err != nil {
		return domain.ExecutionResult{Tool: r.Tool, Kind: domain.ResultBuildFailed, Error: err.Error(), DryRun: dryRun, ReturnCode: -1}
	}
	out.Explanation = explain(p, r)
	return e.executor.Execute(ctx, p, r.Target, r.Hints, dryRun)
}

// explain prefers the matched rule's wording over the plugin's.
func explain(p domain.Plugin, r Resolution) domain.Explanation {
	ex := p.Explain(r.Target.Value)
	if r.Rule != nil {
		if r.Rule.Summary != "" {
			ex.Summary = r.Rule.Summary
		}
		if r.Rule.Impact != "" {
			ex.Impact = r.Rule.Impact
		}
		if r.Rule.Warning != "" {
			ex.Warning = r.Rule.Warning
		}
	}
	return ex
}

func (e *Engine) record(ctx context.Context, log *slog.Logger, out Outcome) {
	if e.audit == nil || out.Result == nil {
		return
	}
	res := out.Result
	err := e.audit.RecordExecution(ctx, domain.ExecutionRecord{
		RunID:       out.RunID,
		Instruction: out.Input,
		Stage:       string(out.Resolution.Stage),
		Tool:        out.Resolution.Tool,
		Confidence:  out.Resolution.Confidence,
		Target:      out.Resolution.Target.Value,
		Command:     res.Command,
		Kind:        res.Kind,
		DryRun:      res.DryRun,
		ReturnCode:  res.ReturnCode,
		Duration:    res.Duration,
		Error:       res.Error,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		log.Warn("audit record failed", "err", err)
	}
}
