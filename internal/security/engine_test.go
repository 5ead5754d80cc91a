package security

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"

	"lume/internal/config"
	"lume/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// recordingAudit keeps audit entries in memory.
type recordingAudit struct {
	entries []domain.AuditEntry
}

func (r *recordingAudit) LogAudit(ctx context.Context, entry domain.AuditEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func defaultTestCfg() config.SecurityConfig {
	return config.SecurityConfig{
		DefaultPolicy:   "ask",
		Blacklist:       []string{`(^|\s)0\.0\.0\.0/0(\s|$)`},
		Whitelist:       []string{"whatweb"},
		ConfirmPatterns: []string{"msfconsole", "hydra"},
		AuditLog:        true,
	}
}

func mustEngine(t *testing.T, cfg config.SecurityConfig, confirmResult bool) (*Engine, *recordingAudit) {
	t.Helper()
	confirmFn := func(ctx context.Context, q string) (bool, error) {
		return confirmResult, nil
	}
	audit := &recordingAudit{}
	e, err := NewEngine(cfg, confirmFn, audit, testLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e, audit
}

func ipTarget(s string) domain.Target { return domain.Target{Value: s, Type: domain.TargetIP} }

// --- Check: argv verification ---

func TestCheck_MetacharactersStayInsideOneToken(t *testing.T) {
	e, _ := mustEngine(t, defaultTestCfg(), true)
	argv := []string{"nikto", "-h", "http://a.com/;id&&whoami|sh"}

	action, err := e.Check(context.Background(), "nikto", domain.Target{Value: argv[2], Type: domain.TargetURL}, argv)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if action == domain.ActionBlock {
		t.Fatalf("inert token should not be blocked, got %v", action)
	}
}

// --- Check: Scope ---

func TestCheck_ScopeDenyBlocks(t *testing.T) {
	cfg := defaultTestCfg()
	cfg.Scope.Deny = []string{"10.0.0.0/8"}
	e, audit := mustEngine(t, cfg, true)

	action, _ := e.Check(context.Background(), "nmap", ipTarget("10.1.2.3"), []string{"nmap", "-sV", "10.1.2.3"})
	if action != domain.ActionBlock {
		t.Fatalf("expected block for denied network, got %v", action)
	}
	if len(audit.entries) != 1 || audit.entries[0].Result != "blocked" {
		t.Fatalf("expected one blocked audit entry, got %+v", audit.entries)
	}
}

func TestCheck_ScopeAllowOutsideBlocks(t *testing.T) {
	cfg := defaultTestCfg()
	cfg.Scope.Allow = []string{"192.168.0.0/16"}
	e, _ := mustEngine(t, cfg, true)

	action, _ := e.Check(context.Background(), "nmap", ipTarget("8.8.8.8"), []string{"nmap", "8.8.8.8"})
	if action != domain.ActionBlock {
		t.Fatalf("expected block outside allowed scope, got %v", action)
	}
}

// --- Check: Blacklist ---

func TestCheck_BlacklistBlocks(t *testing.T) {
	e, _ := mustEngine(t, defaultTestCfg(), false)
	target := domain.Target{Value: "0.0.0.0/0", Type: domain.TargetCIDR}

	action, err := e.Check(context.Background(), "nmap", target, []string{"nmap", "-sn", "0.0.0.0/0"})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if action != domain.ActionBlock {
		t.Fatalf("expected block, got %v", action)
	}
}

func TestCheck_BlacklistOverridesWhitelist(t *testing.T) {
	cfg := defaultTestCfg()
	cfg.Whitelist = []string{"nmap"}
	e, _ := mustEngine(t, cfg, false)
	target := domain.Target{Value: "0.0.0.0/0", Type: domain.TargetCIDR}

	action, _ := e.Check(context.Background(), "nmap", target, []string{"nmap", "0.0.0.0/0"})
	if action != domain.ActionBlock {
		t.Fatalf("blacklist should override whitelist, got %v", action)
	}
}

// --- Check: Whitelist / Confirm / Default ---

func TestCheck_WhitelistAllows(t *testing.T) {
	e, _ := mustEngine(t, defaultTestCfg(), false)
	action, _ := e.Check(context.Background(), "whatweb", domain.Target{Value: "example.com", Type: domain.TargetDomain}, []string{"whatweb", "example.com"})
	if action != domain.ActionAllow {
		t.Fatalf("expected allow, got %v", action)
	}
}

func TestCheck_ConfirmPattern(t *testing.T) {
	cfg := defaultTestCfg()
	cfg.DefaultPolicy = "allow"
	e, _ := mustEngine(t, cfg, false)
	action, _ := e.Check(context.Background(), "hydra", ipTarget("10.0.0.5"), []string{"hydra", "-l", "root", "-p", "password", "10.0.0.5", "ssh"})
	if action != domain.ActionConfirm {
		t.Fatalf("expected confirm, got %v", action)
	}
}

func TestCheck_DefaultPolicies(t *testing.T) {
	cases := map[string]domain.SecurityAction{
		"allow": domain.ActionAllow,
		"deny":  domain.ActionBlock,
		"ask":   domain.ActionConfirm,
	}
	for policy, want := range cases {
		cfg := defaultTestCfg()
		cfg.DefaultPolicy = policy
		e, _ := mustEngine(t, cfg, false)
		action, _ := e.Check(context.Background(), "nmap", ipTarget("10.0.0.1"), []string{"nmap", "-sV", "-T4", "10.0.0.1"})
		if action != want {
			t.Errorf("policy %q: expected %v, got %v", policy, want, action)
		}
	}
}

// --- RequestConfirmation ---

func TestRequestConfirmation_Approved(t *testing.T) {
	e, audit := mustEngine(t, defaultTestCfg(), true)
	ctx := domain.WithRunID(context.Background(), "run-1")
	ok, err := e.RequestConfirmation(ctx, "nmap", "nmap -sV 10.0.0.1")
	if err != nil || !ok {
		t.Fatalf("expected approval, got %v %v", ok, err)
	}
	if len(audit.entries) != 1 || audit.entries[0].Action != "confirm_yes" {
		t.Fatalf("expected confirm_yes audit entry, got %+v", audit.entries)
	}
	if audit.entries[0].RunID != "run-1" {
		t.Fatalf("expected run id from context, got %q", audit.entries[0].RunID)
	}
}

func TestRequestConfirmation_Denied(t *testing.T) {
	e, _ := mustEngine(t, defaultTestCfg(), false)
	ok, err := e.RequestConfirmation(context.Background(), "nmap", "nmap 10.0.0.1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("expected denial")
	}
}

func TestRequestConfirmation_NoHandler(t *testing.T) {
	e, err := NewEngine(defaultTestCfg(), nil, nil, testLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	ok, err := e.RequestConfirmation(context.Background(), "nmap", "nmap 10.0.0.1")
	if err != nil || ok {
		t.Fatalf("expected silent denial without handler, got %v %v", ok, err)
	}
}

func TestRequestConfirmation_HandlerError(t *testing.T) {
	want := errors.New("interrupted")
	confirmFn := func(ctx context.Context, q string) (bool, error) { return false, want }
	e, err := NewEngine(defaultTestCfg(), confirmFn, nil, testLogger())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	ok, err := e.RequestConfirmation(context.Background(), "nmap", "nmap 10.0.0.1")
	if ok || !errors.Is(err, want) {
		t.Fatalf("expected handler error to propagate, got %v %v", ok, err)
	}
}

// --- NewEngine ---

func TestNewEngine_InvalidBlacklistPattern(t *testing.T) {
	cfg := defaultTestCfg()
	cfg.Blacklist = []string{"([unclosed"}
	if _, err := NewEngine(cfg, nil, nil, testLogger()); err == nil {
		t.Fatal("expected error for invalid regex")
	}
}

func TestNewEngine_InvalidScope(t *testing.T) {
	cfg := defaultTestCfg()
	cfg.Scope.Deny = []string{"10.0.0.0/99"}
	if _, err := NewEngine(cfg, nil, nil, testLogger()); err == nil {
		t.Fatal("expected error for invalid scope CIDR")
	}
}

func TestNewEngine_InvalidPatternNamesSet(t *testing.T) {
	cfg := defaultTestCfg()
	cfg.ConfirmPatterns = []string{"(unclosed"}
	_, err := NewEngine(cfg, nil, nil, testLogger())
	if err == nil {
		t.Fatal("expected error for invalid confirm pattern")
	}
	if !strings.Contains(err.Error(), "confirm") {
		t.Fatalf("error should name the pattern set, got %v", err)
	}
}

func TestCheck_AllowPolicyIsAudited(t *testing.T) {
	cfg := defaultTestCfg()
	cfg.DefaultPolicy = "allow"
	e, audit := mustEngine(t, cfg, false)
	ctx := domain.WithRunID(context.Background(), "run-7")

	action, _ := e.Check(ctx, "nmap", ipTarget("10.0.0.1"), []string{"nmap", "-F", "10.0.0.1"})
	if action != domain.ActionAllow {
		t.Fatalf("expected allow, got %v", action)
	}
	if len(audit.entries) != 1 {
		t.Fatalf("expected one audit entry, got %+v", audit.entries)
	}
	got := audit.entries[0]
	if got.Action != "command_allowed" || got.Command != "nmap -F 10.0.0.1" || got.RunID != "run-7" {
		t.Fatalf("unexpected audit entry: %+v", got)
	}
}
