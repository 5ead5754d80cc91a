package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"lume/internal/config"
	"lume/internal/display"
	"lume/internal/engine"
	"lume/internal/executor"
	"lume/internal/history"
	"lume/internal/metrics"
	"lume/internal/normalize"
	"lume/internal/plugin"
	"lume/internal/rules"
	"lume/internal/security"
	"lume/internal/store"
)

// app holds everything one invocation needs.
type app struct {
	cfg     *config.Config
	engine  *engine.Engine
	history *history.Log
	store   *store.SQLiteStore
	metrics *metrics.Metrics
	printer *display.Printer
	logger  *slog.Logger
}

type appOptions struct {
	out         io.Writer
	color       bool
	normalize   bool // load the language analyzer
	interactive bool // allow confirmation prompts on stdin
}

func newApp(cfg *config.Config, logger *slog.Logger, opts appOptions) (*app, error) {
	if err := os.MkdirAll(cfg.General.StateDir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	table, err := rules.Load(cfg.Rules.Path, logger)
	if err != nil {
		return nil, err
	}
	reg, err := plugin.NewDefaultRegistry(plugin.Options{Wordlists: cfg.Wordlists}, logger)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, printer: display.New(opts.out, opts.color), logger: logger}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	engCfg := engine.Config{Rules: table, Registry: reg, Logger: logger}

	var auditLog security.AuditLogger
	if cfg.Audit.Enabled {
		st, err := store.NewSQLiteStore(cfg.Audit.DBPath, logger)
		if err != nil {
			logger.Warn("audit store unavailable, continuing without it", "path", cfg.Audit.DBPath, "err", err)
		} else {
			a.store = st
			auditLog = st
			engCfg.Audit = st
		}
	}

	var recorder executor.Recorder
	if cfg.Metrics.Enabled {
		m, err := metrics.New()
		if err != nil {
			return nil, fmt.Errorf("metrics: %w", err)
		}
		a.metrics = m
		recorder = m
		engCfg.Metrics = m
	}

	if cfg.History.Enabled {
		a.history = history.New(cfg.History.Path, logger)
		engCfg.History = a.history
	}

	var confirm security.ConfirmFunc
	if opts.interactive {
		confirm = display.NewPrompter(nil, os.Stderr).Confirm
	}
	sec, err := security.NewEngine(cfg.Security, confirm, auditLog, logger)
	if err != nil {
		return nil, fmt.Errorf("security: %w", err)
	}

	engCfg.Executor = executor.New(executor.Config{
		Timeout:        time.Duration(cfg.Executor.TimeoutSeconds) * time.Second,
		MaxOutputBytes: cfg.Executor.MaxOutputBytes,
	}, sec, recorder, logger)

	if opts.normalize {
		an, err := normalize.NewProseAnalyzer()
		if err != nil {
			logger.Warn("language analyzer unavailable", "err", err)
		} else {
			engCfg.Analyzer = an
		}
	}

	a.engine, err = engine.New(engCfg)
	if err != nil {
		return nil, fmt.Errorf("inconsistent rules and plugins: %w", err)
	}
	ok = true
	return a, nil
}

// flushMetrics rewrites the textfile after a run.
func (a *app) flushMetrics() {
	if a.metrics == nil {
		return
	}
	if err := a.metrics.WriteTextfile(a.cfg.Metrics.TextfilePath); err != nil {
		a.logger.Warn("write metrics textfile", "path", a.cfg.Metrics.TextfilePath, "err", err)
	}
}

func (a *app) Close() error {
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// errNoHistory is returned when history is requested but disabled.
var errNoHistory = errors.New("history is disabled (history.enabled = false)")

func (a *app) showHistory(limit int) error {
	if a.history == nil {
		return errNoHistory
	}
	entries, err := a.history.Read(limit)
	if err != nil {
		return fmt.Errorf("read history: %w", err)
	}
	a.printer.History(entries)
	return nil
}
