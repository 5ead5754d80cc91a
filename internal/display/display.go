// Package display renders pipeline outcomes, listings and the confirmation
// prompt for the terminal.
package display

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"lume/internal/domain"
	"lume/internal/engine"
	"lume/internal/rules"
)

// Printer writes styled output to one writer.
type Printer struct {
	out   io.Writer
	st    styles
	title cases.Caser
}

// New returns a printer for out. Colors are disabled when color is false or
// out is not a terminal.
func New(out io.Writer, color bool) *Printer {
	r := lipgloss.NewRenderer(out)
	if !color || !IsTerminal(out) {
		r.SetColorProfile(termenv.Ascii)
	}
	return &Printer{out: out, st: newStyles(r), title: cases.Title(language.English)}
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w any) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (p *Printer) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(p.out, format, args...)
}

func (p *Printer) field(label, value string) {
	if value == "" {
		return
	}
	p.printf("%s %s\n", p.st.label.Render(fmt.Sprintf("%-12s", label+":")), p.st.value.Render(value))
}

// Outcome reports one engine run.
func (p *Printer) Outcome(o engine.Outcome, explain bool) {
	if n := o.Normalization; n != nil {
		if n.Used {
			p.printf("%s %s (intent %s, confidence %.2f)\n",
				p.st.label.Render("Normalized:"), n.NormalizedText, n.Intent, n.Confidence)
		} else if n.FallbackReason != "" {
			p.printf("%s\n", p.st.muted.Render("Normalization skipped: "+n.FallbackReason))
		}
	}

	r := o.Resolution
	if !r.Resolved() {
		p.printf("%s\n", p.st.failure.Render("Could not understand the instruction."))
		p.printf("%s\n", p.st.muted.Render(`Try phrasing such as "scan ports on 192.168.1.1" or run with --list-tools.`))
		return
	}

	if explain {
		p.printf("%s\n", p.st.title.Render("Explanation"))
		p.field("Tool", r.Tool)
		p.field("Stage", string(r.Stage))
		p.field("Confidence", fmt.Sprintf("%d%%", r.Confidence))
		p.field("Target", r.Target.Value)
		if r.Rule != nil {
			p.field("Rule", r.Rule.Name)
		}
		if r.Intent != nil {
			p.field("Reasoning", r.Intent.Reasoning)
		}
	}
	if o.Result != nil {
		p.Result(*o.Result, o.Explanation, explain)
	}
}

// Result reports one executor call.
func (p *Printer) Result(res domain.ExecutionResult, ex domain.Explanation, explain bool) {
	if res.Command != "" {
		p.printf("%s\n", p.st.command.Render(res.Command))
	}

	switch {
	case res.Success && res.DryRun:
		if explain {
			p.explanation(ex)
		} else {
			p.printf("%s\n", p.st.warning.Render("Dry run: command not executed."))
		}
	case res.Success:
		if res.Output != "" {
			p.printf("%s", ensureNewline(res.Output))
		}
		if res.Truncated {
			p.printf("%s\n", p.st.warning.Render("Output was truncated."))
		}
		p.printf("%s %s\n", p.st.success.Render("Done"), p.st.muted.Render(res.Duration.Round(time.Millisecond).String()))
		p.explanation(ex)
	case res.Kind == domain.ResultDeclined:
		p.printf("%s %s\n", p.st.warning.Render(kindLabel(res.Kind)+":"), res.Error)
	default:
		p.printf("%s %s\n", p.st.failure.Render(kindLabel(res.Kind)+":"), res.Error)
		if res.Output != "" {
			p.printf("%s", ensureNewline(res.Output))
		}
	}
}

func (p *Printer) explanation(ex domain.Explanation) {
	p.field("Summary", ex.Summary)
	p.field("Impact", ex.Impact)
	if ex.Warning != "" {
		p.printf("%s %s\n", p.st.warning.Render(fmt.Sprintf("%-12s", "Warning:")), ex.Warning)
	}
}

func kindLabel(k domain.ResultKind) string {
	switch k {
	case domain.ResultInvalidTarget:
		return "Invalid target"
	case domain.ResultBuildFailed:
		return "Cannot build command"
	case domain.ResultBlocked:
		return "Blocked"
	case domain.ResultDeclined:
		return "Cancelled"
	case domain.ResultExitFailure:
		return "Command failed"
	case domain.ResultLaunchFailure:
		return "Cannot start command"
	case domain.ResultTimeout:
		return "Timed out"
	case domain.ResultInterrupted:
		return "Interrupted"
	}
	return "Error"
}

// History lists history entries oldest first.
func (p *Printer) History(entries []domain.HistoryEntry) {
	if len(entries) == 0 {
		p.printf("%s\n", p.st.muted.Render("No history yet."))
		return
	}
	p.printf("%s\n", p.st.title.Render("History"))
	for _, e := range entries {
		p.printf("%s %s\n", p.st.label.Render(e.Timestamp.Format("2006-01-02 15:04:05")), p.st.value.Render(e.Command))
		if e.Target != "" {
			p.printf("    target: %s\n", e.Target)
		}
		if e.Summary != "" {
			p.printf("    %s\n", e.Summary)
		}
		if n := e.Normalization; n != nil && n.Used {
			p.printf("    %s\n", p.st.muted.Render(fmt.Sprintf("normalized from %q (%.2f)", n.OriginalInput, n.Confidence)))
		}
	}
}

// Rules lists the rule table in match order.
func (p *Printer) Rules(t *rules.Table) {
	p.printf("%s\n", p.st.title.Render("Rules"))
	for _, r := range t.Rules() {
		p.printf("%s %s\n", p.st.header.Render(r.Name), p.st.label.Render("-> "+r.Tool))
		if r.Description != "" {
			p.printf("    %s\n", r.Description)
		}
		p.printf("    %s %s\n", p.st.label.Render("patterns:"), strings.Join(r.Patterns, ", "))
	}
}

// Plugins lists registered plugins with their binary and accepted targets.
func (p *Printer) Plugins(plugins []domain.Plugin) {
	p.printf("%s\n", p.st.title.Render("Plugins"))
	for _, pl := range plugins {
		info := infoOf(pl)
		p.printf("%-12s %-12s %s\n", p.title.String(pl.Name()), info.Binary, p.st.muted.Render(targetList(info.Targets)))
	}
}

// PluginInfo prints everything a plugin exposes about itself.
func (p *Printer) PluginInfo(pl domain.Plugin) {
	info := infoOf(pl)
	p.printf("%s\n", p.st.title.Render(p.title.String(pl.Name())))
	p.field("Binary", info.Binary)
	p.field("Description", info.Description)
	p.field("Template", strings.Join(pl.Template(), " "))
	p.field("Targets", targetList(info.Targets))
	if len(info.Options) > 0 {
		p.printf("%s\n", p.st.header.Render("Options"))
		for _, o := range info.Options {
			p.printf("  - %s\n", o)
		}
	}
	if len(info.Examples) > 0 {
		p.printf("%s\n", p.st.header.Render("Examples"))
		for _, ex := range info.Examples {
			p.printf("  %s\n", ex)
		}
	}
}

func infoOf(pl domain.Plugin) domain.PluginInfo {
	if d, ok := pl.(domain.Describer); ok {
		return d.Info()
	}
	tmpl := pl.Template()
	return domain.PluginInfo{Binary: tmpl[0]}
}

func targetList(ts []domain.TargetType) string {
	names := make([]string, 0, len(ts))
	for _, t := range ts {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// Executions lists audit rows newest first.
func (p *Printer) Executions(recs []domain.ExecutionRecord) {
	if len(recs) == 0 {
		p.printf("%s\n", p.st.muted.Render("No recorded executions."))
		return
	}
	p.printf("%s\n", p.st.title.Render("Executions"))
	for _, r := range recs {
		kind := string(r.Kind)
		if r.DryRun {
			kind += " (dry)"
		}
		style := p.st.success
		if r.Kind != domain.ResultOK {
			style = p.st.failure
		}
		p.printf("%s %s %-10s %s rc=%d %s\n",
			p.st.label.Render(r.CreatedAt.Local().Format("2006-01-02 15:04:05")),
			shortID(r.RunID), r.Tool, style.Render(kind), r.ReturnCode,
			p.st.muted.Render(r.Duration.Round(time.Millisecond).String()))
		if r.Command != "" {
			p.printf("    %s\n", r.Command)
		}
	}
}

// AuditTrail lists the security decisions of one run.
func (p *Printer) AuditTrail(runID string, entries []domain.AuditEntry) {
	p.printf("%s\n", p.st.title.Render("Run "+runID))
	if len(entries) == 0 {
		p.printf("%s\n", p.st.muted.Render("No security decisions recorded."))
		return
	}
	for _, e := range entries {
		p.printf("%-16s %-10s %s\n", e.Action, e.Result, e.Command)
		if e.Details != "" {
			p.printf("    %s\n", p.st.muted.Render(e.Details))
		}
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
