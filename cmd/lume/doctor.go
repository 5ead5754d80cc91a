package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"lume/internal/config"
	"lume/internal/domain"
	"lume/internal/engine"
	"lume/internal/normalize"
	"lume/internal/plugin"
	"lume/internal/rules"
	"lume/internal/store"
)

type doctor struct {
	out                    io.Writer
	passed, failed, warned int
}

func (d *doctor) pass(check, detail string) {
	fmt.Fprintf(d.out, "  [PASS] %-20s %s\n", check, detail)
	d.passed++
}

func (d *doctor) fail(check, detail string) {
	fmt.Fprintf(d.out, "  [FAIL] %-20s %s\n", check, detail)
	d.failed++
}

func (d *doctor) warn(check, detail string) {
	fmt.Fprintf(d.out, "  [WARN] %-20s %s\n", check, detail)
	d.warned++
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Run diagnostic checks on your lume installation",
		Long: `Verifies the configuration, the rule table against the plugins, the tool
binaries, wordlists, state directory, audit database and language analyzer.
Reports pass/fail for each check.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			d := &doctor{out: cmd.OutOrStdout()}
			fmt.Fprintf(d.out, "lume doctor v%s\n", version)
			fmt.Fprintf(d.out, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n\n")

			cfgPath := resolveConfigPath()
			cfg, found, err := config.LoadOrDefault(cfgPath)
			switch {
			case err != nil:
				d.fail("Config", err.Error())
				return d.summary()
			case found:
				d.pass("Config", cfgPath)
			default:
				d.warn("Config", fmt.Sprintf("not found at %s, using defaults", cfgPath))
			}

			d.checkStateDir(cfg.General.StateDir)
			reg := d.checkRules(cfg)
			if reg != nil {
				d.checkBinaries(reg)
			}
			d.checkWordlists(cfg.Wordlists)

			if cfg.Audit.Enabled {
				d.checkDatabase(cfg.Audit.DBPath)
			} else {
				d.warn("Audit database", "disabled")
			}

			if _, err := normalize.NewProseAnalyzer(); err != nil {
				d.warn("Normalizer", "language analyzer unavailable: "+err.Error())
			} else {
				d.pass("Normalizer", "language analyzer loaded")
			}

			if cfg.General.LogFile != "" {
				if err := os.MkdirAll(filepath.Dir(cfg.General.LogFile), 0o755); err != nil {
					d.warn("Log file", fmt.Sprintf("cannot create log directory: %v", err))
				} else {
					d.pass("Log file", cfg.General.LogFile)
				}
			}

			return d.summary()
		},
	}
}

func (d *doctor) summary() error {
	fmt.Fprintf(d.out, "\n━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	fmt.Fprintf(d.out, "Results: %d passed, %d warnings, %d failed\n", d.passed, d.warned, d.failed)
	if d.failed > 0 {
		return fmt.Errorf("%d check(s) failed", d.failed)
	}
	if d.warned > 0 {
		fmt.Fprintf(d.out, "\nlume should work but some tools or features may be unavailable.\n")
	} else {
		fmt.Fprintf(d.out, "\nAll checks passed.\n")
	}
	return nil
}

func (d *doctor) checkStateDir(dir string) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		d.fail("State directory", err.Error())
		return
	}
	f, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		d.fail("State directory", "not writable: "+err.Error())
		return
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	d.pass("State directory", dir)
}

func (d *doctor) checkRules(cfg *config.Config) *plugin.Registry {
	table, err := rules.Load(cfg.Rules.Path, logger)
	if err != nil {
		d.fail("Rule table", err.Error())
		return nil
	}
	src := "built-in"
	if cfg.Rules.Path != "" {
		src = cfg.Rules.Path
	}
	d.pass("Rule table", fmt.Sprintf("%d rules (%s)", len(table.Rules()), src))

	reg, err := plugin.NewDefaultRegistry(plugin.Options{Wordlists: cfg.Wordlists}, logger)
	if err != nil {
		d.fail("Plugins", err.Error())
		return nil
	}
	if err := engine.CheckConsistency(table, reg); err != nil {
		d.fail("Rules vs plugins", err.Error())
	} else {
		d.pass("Rules vs plugins", "every rule has a matching plugin")
	}
	return reg
}

func (d *doctor) checkBinaries(reg *plugin.Registry) {
	for _, p := range reg.Plugins() {
		bin := p.Template()[0]
		if desc, ok := p.(domain.Describer); ok && desc.Info().Binary != "" {
			bin = desc.Info().Binary
		}
		if path, err := exec.LookPath(bin); err != nil {
			d.warn("Tool: "+p.Name(), bin+" not found on PATH")
		} else {
			d.pass("Tool: "+p.Name(), path)
		}
	}
}

func (d *doctor) checkWordlists(w config.WordlistsConfig) {
	lists := []struct {
		name       string
		candidates []string
	}{
		{"directory", w.Directory},
		{"dns", w.DNS},
		{"common", w.Common},
		{"users", w.Users},
		{"passwords", w.Passwords},
	}
	for _, l := range lists {
		found := ""
		for _, c := range l.candidates {
			if plugin.FileExists(c) {
				found = c
				break
			}
		}
		if found == "" {
			d.warn("Wordlist: "+l.name, fmt.Sprintf("none of %d candidates exist", len(l.candidates)))
		} else {
			d.pass("Wordlist: "+l.name, found)
		}
	}
}

func (d *doctor) checkDatabase(path string) {
	st, err := store.NewSQLiteStore(path, logger)
	if err != nil {
		d.fail("Audit database", err.Error())
		return
	}
	_ = st.Close()
	d.pass("Audit database", path)
}
