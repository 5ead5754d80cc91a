package rules

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lume/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func mustBuiltin(t *testing.T) *Table {
	t.Helper()
	tbl, err := Load("", testLogger())
	if err != nil {
		t.Fatalf("load builtin rules: %v", err)
	}
	return tbl
}

// --- Builtin table ---

func TestBuiltin_Matches(t *testing.T) {
	tbl := mustBuiltin(t)
	cases := map[string]string{
		"scan ports on 192.168.1.1":                        "port-scan",
		"scan ports on 192.168.1.1 fast":                   "port-scan",
		"find admin page on example.com":                   "directory-enumeration",
		"brute force ssh on 10.0.0.5":                      "ssh-brute-force",
		"test sql injection on http://target.com/page?id=1": "sql-injection",
		"find subdomains of example.com":                   "subdomain-enumeration",
		"check eternalblue on 10.0.0.9":                    "eternalblue-check",
		"detect os on 10.0.0.1":                            "os-detection",
		"scan web vulnerabilities on http://a.com":         "web-vulnerability-scan",
		"scan vulnerabilities on 10.0.0.1":                 "vulnerability-scripts",
		"scan network for hosts on 10.0.0.0/24":            "network-discovery",
		"identify web technologies on example.com":         "web-technology",
		"brute force ftp on 10.0.0.2":                      "ftp-brute-force",
		"find directories on http://a.com":                 "directory-enumeration",
	}
	for in, want := range cases {
		r := tbl.Match(in)
		if r == nil {
			t.Errorf("%q: expected rule %q, got no match", in, want)
			continue
		}
		if r.Name != want {
			t.Errorf("%q: expected rule %q, got %q", in, want, r.Name)
		}
	}
}

func TestBuiltin_NoMatch(t *testing.T) {
	tbl := mustBuiltin(t)
	if r := tbl.Match("just some text"); r != nil {
		t.Fatalf("expected no match, got %q", r.Name)
	}
}

func TestBuiltin_CaseInsensitive(t *testing.T) {
	tbl := mustBuiltin(t)
	r := tbl.Match("SCAN PORTS ON 10.0.0.1")
	if r == nil || r.Tool != "nmap" {
		t.Fatalf("expected nmap rule, got %+v", r)
	}
}

func TestBuiltin_RuleHints(t *testing.T) {
	tbl := mustBuiltin(t)
	r := tbl.Match("brute force ssh on 10.0.0.5")
	if r.Hints.Service != "ssh" {
		t.Fatalf("expected ssh service hint, got %+v", r.Hints)
	}
	r = tbl.Match("find subdomains of example.com")
	if r.Hints.Mode != "dns" {
		t.Fatalf("expected dns mode hint, got %+v", r.Hints)
	}
}

func TestBuiltin_TemplatesParsed(t *testing.T) {
	tbl := mustBuiltin(t)
	for _, r := range tbl.Rules() {
		argv := tbl.Template(r.Name)
		if len(argv) == 0 {
			t.Errorf("%s: no template tokens", r.Name)
		}
	}
	msf := tbl.Template("eternalblue-check")
	if len(msf) != 4 || !strings.Contains(msf[3], "RHOSTS {target}") {
		t.Fatalf("quoted console script should stay one token, got %q", msf)
	}
}

func TestBuiltin_Tools(t *testing.T) {
	tbl := mustBuiltin(t)
	tools := tbl.Tools()
	want := []string{"nmap", "metasploit", "nikto", "sqlmap", "hydra", "whatweb", "gobuster"}
	if len(tools) != len(want) {
		t.Fatalf("expected %v, got %v", want, tools)
	}
	for i := range want {
		if tools[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, tools)
		}
	}
}

// --- Ordering ---

func TestMatch_FirstRuleWins(t *testing.T) {
	tbl, err := New([]domain.Rule{
		{Name: "broad", Tool: "nmap", Patterns: []string{"scan"}, Command: "nmap {target}"},
		{Name: "narrow", Tool: "nikto", Patterns: []string{"scan web"}, Command: "nikto -h {target}"},
	}, testLogger())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	r := tbl.Match("scan web server on a.com")
	if r.Name != "broad" {
		t.Fatalf("declaration order should win, got %q", r.Name)
	}
}

func TestMatch_ReturnsCopy(t *testing.T) {
	tbl := mustBuiltin(t)
	r := tbl.Match("scan ports on 10.0.0.1")
	r.Tool = "tampered"
	if again := tbl.Match("scan ports on 10.0.0.1"); again.Tool != "nmap" {
		t.Fatal("table must stay read-only")
	}
}

// --- Validation ---

func TestNew_Empty(t *testing.T) {
	if _, err := New(nil, testLogger()); err == nil {
		t.Fatal("expected error for empty table")
	}
}

func TestNew_InvalidRules(t *testing.T) {
	cases := map[string]domain.Rule{
		"bad regex":      {Name: "a", Tool: "nmap", Patterns: []string{"("}, Command: "nmap {target}"},
		"no tool":        {Name: "b", Patterns: []string{"x"}, Command: "nmap {target}"},
		"no patterns":    {Name: "c", Tool: "nmap", Command: "nmap {target}"},
		"no placeholder": {Name: "d", Tool: "nmap", Patterns: []string{"x"}, Command: "nmap 10.0.0.1"},
		"shell list":     {Name: "e", Tool: "nmap", Patterns: []string{"x"}, Command: "nmap {target}; id"},
		"substitution":   {Name: "f", Tool: "nmap", Patterns: []string{"x"}, Command: "nmap $(cat t) {target}"},
		"empty command":  {Name: "g", Tool: "nmap", Patterns: []string{"x"}},
	}
	for name, r := range cases {
		if _, err := New([]domain.Rule{r}, testLogger()); err == nil {
			t.Errorf("%s: expected validation error", name)
		}
	}
}

func TestNew_DuplicateNames(t *testing.T) {
	r := domain.Rule{Name: "dup", Tool: "nmap", Patterns: []string{"x"}, Command: "nmap {target}"}
	if _, err := New([]domain.Rule{r, r}, testLogger()); err == nil {
		t.Fatal("expected duplicate name error")
	}
}

// --- Loader ---

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	content := `version: 1
rules:
  - name: custom
    tool: whatweb
    patterns: ['what runs on']
    command: 'whatweb -a 3 {target}'
    description: Aggressive fingerprint
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	tbl, err := Load(path, testLogger())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	r := tbl.Match("what runs on example.com")
	if r == nil || r.Name != "custom" {
		t.Fatalf("expected custom rule, got %+v", r)
	}
	if got := tbl.Template("custom"); len(got) != 4 || got[2] != "3" {
		t.Fatalf("unexpected template %q", got)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), testLogger()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestParse_FutureVersion(t *testing.T) {
	if _, err := Parse([]byte("version: 2\nrules: []\n")); err == nil {
		t.Fatal("expected error for unsupported version")
	}
}
