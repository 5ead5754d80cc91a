package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"lume/internal/config"
	"lume/internal/domain"
	"lume/internal/engine"
)

var (
	version    = "0.1.0"
	logger     = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	configPath string // overridable via --config flag
	verbose    bool
	noColor    bool
)

const (
	exitOK          = 0
	exitFailure     = 1
	exitInterrupted = 130

	defaultHistoryLimit = 10
)

// exitError carries a process exit code out of a cobra RunE. A nil err means
// the failure was already reported to the user.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func main() {
	os.Exit(exitCode(newRootCmd().Execute()))
}

func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(os.Stderr, "Error:", ee.err)
		}
		return ee.code
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	return exitFailure
}

type rootFlags struct {
	dryRun              bool
	explain             bool
	history             int
	listTools           bool
	listPlugins         bool
	pluginInfo          string
	normalize           bool
	normalizeConfidence float64
}

func newRootCmd() *cobra.Command {
	var f rootFlags
	root := &cobra.Command{
		Use:   "lume [instruction]",
		Short: "Translate plain-English security instructions into tool commands",
		Long: `lume maps an instruction such as "scan ports on 192.168.1.1" to one
security tool invocation, shows the command, asks for confirmation when the
policy requires it and runs it without a shell.`,
		Example: `  lume scan ports on 192.168.1.1
  lume --dry-run find admin page on example.com
  lume --explain brute force ssh on 10.0.0.5
  lume --normalize could you look for weak ftp logins at 10.0.0.7
  lume --history 5`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoot(cmd, args, &f)
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.json (default: ~/.lume/config.json)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	fl := root.Flags()
	fl.BoolVarP(&f.dryRun, "dry-run", "n", false, "show the command without running it")
	fl.BoolVarP(&f.explain, "explain", "e", false, "explain what would run and why, without running it")
	fl.IntVar(&f.history, "history", 0, "show the last N history entries")
	fl.Lookup("history").NoOptDefVal = fmt.Sprint(defaultHistoryLimit)
	fl.BoolVar(&f.listTools, "list-tools", false, "list the rule table")
	fl.BoolVar(&f.listPlugins, "list-plugins", false, "list the available tool plugins")
	fl.StringVar(&f.pluginInfo, "plugin-info", "", "show details for one plugin")
	fl.BoolVar(&f.normalize, "normalize", false, "rewrite loosely phrased instructions before matching")
	fl.Float64Var(&f.normalizeConfidence, "normalize-confidence", 0, "minimum normalizer confidence, 0-1 (default from config)")

	root.AddCommand(initCmd())
	root.AddCommand(configCmd())
	root.AddCommand(doctorCmd())
	root.AddCommand(auditCmd())
	root.AddCommand(versionCmd())
	return root
}

// resolveConfigPath returns the config path from --config flag or default.
func resolveConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return config.DefaultConfigPath()
}

// setup loads the config and installs the configured logger.
func setup() (*config.Config, func(), error) {
	path := resolveConfigPath()
	cfg, found, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, nil, err
	}
	log, cleanup, err := newLogger(cfg.General, verbose)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger = log
	if !found {
		logger.Debug("config not found, using defaults", "path", path)
	}
	return cfg, cleanup, nil
}

// isHistoryRequest matches a bare "history" or any instruction asking to
// show, view, display or see it ("please show my history").
func isHistoryRequest(instruction string) bool {
	s := strings.ToLower(strings.TrimSpace(instruction))
	if s == "history" {
		return true
	}
	if !strings.Contains(s, "history") {
		return false
	}
	for _, verb := range []string{"show", "view", "display", "see"} {
		if strings.Contains(s, verb) {
			return true
		}
	}
	return false
}

func runRoot(cmd *cobra.Command, args []string, f *rootFlags) error {
	instruction := strings.TrimSpace(strings.Join(args, " "))
	wantHistory := cmd.Flags().Changed("history") || isHistoryRequest(instruction)
	informational := wantHistory || f.listTools || f.listPlugins || f.pluginInfo != ""
	if instruction == "" && !informational {
		_ = cmd.Help()
		return &exitError{code: exitFailure}
	}
	if f.normalizeConfidence < 0 || f.normalizeConfidence > 1 {
		return fmt.Errorf("--normalize-confidence must be between 0 and 1, got %v", f.normalizeConfidence)
	}

	cfg, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()

	normalizeOn := (f.normalize || cfg.Normalizer.Enabled) && !informational
	a, err := newApp(cfg, logger, appOptions{
		out:         cmd.OutOrStdout(),
		color:       !noColor,
		normalize:   normalizeOn,
		interactive: true,
	})
	if err != nil {
		return err
	}
	defer a.Close()

	switch {
	case f.listTools:
		a.printer.Rules(a.engine.Rules())
		return nil
	case f.listPlugins:
		a.printer.Plugins(a.engine.Registry().Plugins())
		return nil
	case f.pluginInfo != "":
		p, err := a.engine.Registry().Get(strings.ToLower(f.pluginInfo))
		if err != nil {
			return err
		}
		a.printer.PluginInfo(p)
		return nil
	case wantHistory:
		limit := f.history
		if limit <= 0 {
			limit = defaultHistoryLimit
		}
		return a.showHistory(limit)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	confidence := f.normalizeConfidence
	if confidence == 0 {
		confidence = cfg.Normalizer.Confidence
	}
	out := a.engine.Run(ctx, instruction, engine.RunOptions{
		DryRun:              f.dryRun,
		Explain:             f.explain,
		Normalize:           normalizeOn,
		NormalizeConfidence: confidence,
	})
	a.printer.Outcome(out, f.explain)
	a.flushMetrics()
	return outcomeError(out)
}

// outcomeError maps a run to the process exit code. The printer has
// already reported the details.
func outcomeError(o engine.Outcome) error {
	switch {
	case !o.Resolution.Resolved() || o.Result == nil:
		return &exitError{code: exitFailure}
	case o.Result.Kind == domain.ResultInterrupted:
		return &exitError{code: exitInterrupted}
	case o.Result.Kind == domain.ResultDeclined:
		// answering no at the prompt is not a failure
		return nil
	case !o.Result.Success:
		return &exitError{code: exitFailure}
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "lume %s\n", version)
		},
	}
}
