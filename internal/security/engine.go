package security

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	"lume/internal/config"
	"lume/internal/domain"
)

// ConfirmFunc asks the operator a yes/no question.
type ConfirmFunc func(ctx context.Context, question string) (bool, error)

// AuditLogger persists audit entries.
type AuditLogger interface {
	LogAudit(ctx context.Context, entry domain.AuditEntry) error
}

// verdict is the outcome of one gate. A zero verdict means the gate had
// no opinion and the next one runs.
type verdict struct {
	action domain.SecurityAction
	reason string
	set    bool
}

func decide(action domain.SecurityAction, reason string) verdict {
	return verdict{action: action, reason: reason, set: true}
}

// gate inspects a rendered command. line is empty when argv could not be
// rendered.
type gate func(req *checkRequest) verdict

type checkRequest struct {
	tool   string
	target domain.Target
	argv   []string
	line   string
}

// Engine gates built commands before execution. Gates run in order:
// argv round trip, target scope, blacklist, whitelist, confirm patterns,
// then the default policy.
type Engine struct {
	policy    string
	auditOn   bool
	confirmFn ConfirmFunc
	audit     AuditLogger
	logger    *slog.Logger
	gates     []gate
}

var _ domain.SecurityEngine = (*Engine)(nil)

func NewEngine(cfg config.SecurityConfig, confirmFn ConfirmFunc, audit AuditLogger, logger *slog.Logger) (*Engine, error) {
	scope, err := NewScope(cfg.Scope.Allow, cfg.Scope.Deny)
	if err != nil {
		return nil, err
	}
	deny, err := newPatternSet("blacklist", cfg.Blacklist)
	if err != nil {
		return nil, err
	}
	allow, err := newPatternSet("whitelist", cfg.Whitelist)
	if err != nil {
		return nil, err
	}
	ask, err := newPatternSet("confirm", cfg.ConfirmPatterns)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		policy:    cfg.DefaultPolicy,
		auditOn:   cfg.AuditLog,
		confirmFn: confirmFn,
		audit:     audit,
		logger:    logger,
	}
	e.gates = []gate{
		roundTripGate,
		func(req *checkRequest) verdict {
			if ok, why := scope.Permits(req.target); !ok {
				return decide(domain.ActionBlock, "scope: "+why)
			}
			return verdict{}
		},
		deny.gate(domain.ActionBlock),
		allow.gate(domain.ActionAllow),
		ask.gate(domain.ActionConfirm),
		e.policyGate,
	}
	return e, nil
}

// Check returns the action for argv. Blocks are decisions, not errors.
func (e *Engine) Check(ctx context.Context, toolName string, target domain.Target, argv []string) (domain.SecurityAction, error) {
	req := &checkRequest{tool: toolName, target: target, argv: argv}
	if line, err := Join(argv); err == nil {
		req.line = line
	}

	for _, g := range e.gates {
		v := g(req)
		if !v.set {
			continue
		}
		e.record(ctx, req, v)
		return v.action, nil
	}
	return domain.ActionConfirm, nil
}

func (e *Engine) record(ctx context.Context, req *checkRequest, v verdict) {
	shown := req.line
	if shown == "" {
		shown = fmt.Sprint(req.argv)
	}
	switch v.action {
	case domain.ActionBlock:
		e.logger.Warn("command blocked", "tool", req.tool, "command", shown, "reason", v.reason)
		e.write(ctx, "command_blocked", req.tool, shown, "blocked", v.reason)
	case domain.ActionAllow:
		e.logger.Debug("command allowed", "tool", req.tool, "reason", v.reason)
		e.write(ctx, "command_allowed", req.tool, shown, "allowed", v.reason)
	case domain.ActionConfirm:
		// audited once the operator answers
		e.logger.Info("command needs confirmation", "tool", req.tool, "command", shown, "reason", v.reason)
	}
}

func roundTripGate(req *checkRequest) verdict {
	line, err := Join(req.argv)
	if err == nil {
		err = Verify(req.argv, line)
	}
	if err != nil {
		return decide(domain.ActionBlock, "argv verification: "+err.Error())
	}
	return verdict{}
}

func (e *Engine) policyGate(*checkRequest) verdict {
	switch e.policy {
	case "allow":
		return decide(domain.ActionAllow, "default policy: allow")
	case "deny":
		return decide(domain.ActionBlock, "default policy: deny")
	default:
		return decide(domain.ActionConfirm, "default policy: ask")
	}
}

// RequestConfirmation prompts through the ConfirmFunc and audits the answer.
// Without a ConfirmFunc the command is denied.
func (e *Engine) RequestConfirmation(ctx context.Context, toolName string, command string) (bool, error) {
	if e.confirmFn == nil {
		e.write(ctx, "confirm_no", toolName, command, "denied", "no confirmation handler")
		return false, nil
	}

	ok, err := e.confirmFn(ctx, fmt.Sprintf("Tool: %s\nCommand: %s\n\nRun this command?", toolName, command))
	switch {
	case err != nil:
		e.write(ctx, "confirm_no", toolName, command, "denied", "confirmation error: "+err.Error())
		return false, err
	case ok:
		e.write(ctx, "confirm_yes", toolName, command, "confirmed", "user confirmed")
	default:
		e.write(ctx, "confirm_no", toolName, command, "denied", "user denied")
	}
	return ok, nil
}

func (e *Engine) write(ctx context.Context, action, toolName, command, result, details string) {
	if !e.auditOn || e.audit == nil {
		return
	}
	entry := domain.AuditEntry{
		RunID:    domain.RunIDFrom(ctx),
		Action:   action,
		ToolName: toolName,
		Command:  command,
		Result:   result,
		Details:  details,
	}
	if err := e.audit.LogAudit(ctx, entry); err != nil {
		e.logger.Warn("audit write failed", "action", action, "err", err)
	}
}

// patternSet is a named list of command patterns. Entries without regex
// metacharacters match as case-insensitive substrings.
type patternSet struct {
	name string
	res  []*regexp.Regexp
}

func newPatternSet(name string, patterns []string) (*patternSet, error) {
	ps := &patternSet{name: name}
	for _, p := range patterns {
		expr := p
		if !looksLikeRegex(p) {
			expr = `(?i)` + regexp.QuoteMeta(p)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", name, p, err)
		}
		ps.res = append(ps.res, re)
	}
	return ps, nil
}

func (ps *patternSet) gate(action domain.SecurityAction) gate {
	return func(req *checkRequest) verdict {
		for _, re := range ps.res {
			if re.MatchString(req.line) {
				return decide(action, ps.name+" match: "+re.String())
			}
		}
		return verdict{}
	}
}

func looksLikeRegex(s string) bool {
	for _, c := range s {
		switch c {
		case '(', ')', '[', ']', '{', '}', '|', '^', '$', '.', '*', '+', '?', '\\':
			return true
		}
	}
	return false
}
