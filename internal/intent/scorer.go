// Package intent implements the keyword-weighted heuristic that picks a tool
// when no rule in the table matched an instruction.
package intent

import (
	"fmt"
	"log/slog"
	"strings"

	"lume/internal/domain"
)

// Weights applied per keyword hit.
const (
	WordWeight      = 30
	SubstringWeight = 15

	// MinConfidence is the floor below which a scored intent is not trusted.
	MinConfidence = 40
)

type keywordSet struct {
	name     string
	keywords []string
}

// toolKeywords is in declaration order; ties on score go to the earlier tool.
var toolKeywords = []keywordSet{
	{"nmap", []string{"nmap", "port", "scan", "host", "network", "service", "open"}},
	{"gobuster", []string{"gobuster", "directory", "dir", "path", "page", "admin", "hidden", "subdomain", "dns"}},
	{"nikto", []string{"nikto", "web", "vulnerability", "vuln", "server", "misconfiguration"}},
	{"sqlmap", []string{"sqlmap", "sql", "injection", "sqli", "database", "db"}},
	{"hydra", []string{"hydra", "brute", "force", "password", "crack", "login", "auth"}},
	{"metasploit", []string{"metasploit", "msf", "exploit", "eternalblue", "ms17", "smb"}},
	{"whatweb", []string{"whatweb", "technology", "tech", "cms", "framework", "identify", "fingerprint"}},
}

// Action labels. The first family with any hit wins.
const (
	ActionScan     = "scan"
	ActionFind     = "find"
	ActionExploit  = "exploit"
	ActionBrute    = "brute"
	ActionIdentify = "identify"
)

var actionKeywords = []keywordSet{
	{ActionScan, []string{"scan", "check", "test", "examine", "probe", "analyze"}},
	{ActionFind, []string{"find", "discover", "locate", "search", "enumerate", "list"}},
	{ActionExploit, []string{"exploit", "attack", "hack", "penetrate"}},
	{ActionBrute, []string{"brute", "crack", "force", "guess"}},
	{ActionIdentify, []string{"identify", "detect", "fingerprint", "recognize"}},
}

// override redirects the raw winner to a more specific tool.
type override struct {
	tool       string
	confidence int
	words      []string
}

var (
	urlOverrides = []override{
		{"gobuster", 70, []string{"web", "site", "page", "directory", "admin"}},
		{"sqlmap", 80, []string{"sql", "injection", "database"}},
		{"nikto", 75, []string{"vuln", "vulnerability", "security"}},
	}
	domainOverrides = []override{
		{"gobuster", 80, []string{"subdomain", "dns"}},
		{"whatweb", 80, []string{"tech", "cms", "framework", "identify"}},
	}
	bruteOverride   = override{"hydra", 85, []string{"ssh", "ftp", "login", "password"}}
	exploitOverride = override{"metasploit", 90, []string{"smb", "eternalblue", "ms17"}}
)

// Scorer is stateless between calls.
type Scorer struct {
	logger *slog.Logger
}

func NewScorer(logger *slog.Logger) *Scorer {
	return &Scorer{logger: logger}
}

// Tools returns the tool names the scorer can choose, in tie-break order.
func Tools() []string {
	out := make([]string, len(toolKeywords))
	for i, ks := range toolKeywords {
		out[i] = ks.name
	}
	return out
}

// Score classifies instruction. It reports false when no tool keyword matched
// at all. The caller applies MinConfidence.
func (s *Scorer) Score(instruction string, t domain.Target) (domain.Intent, bool) {
	lower := strings.ToLower(strings.TrimSpace(instruction))
	words := wordSet(lower)

	scores := scoreTools(lower, words)
	action := detectAction(lower, words)

	best, confidence := "", 0
	for _, ks := range toolKeywords {
		if sc, ok := scores[ks.name]; ok && sc > confidence {
			best, confidence = ks.name, sc
		}
	}
	if best == "" {
		return domain.Intent{}, false
	}

	tool, conf, redirected := applyContext(best, confidence, t.Type, action, lower)
	if conf <= 0 {
		return domain.Intent{}, false
	}

	in := domain.Intent{
		Tool:       tool,
		Confidence: conf,
		Target:     t.Value,
		TargetType: t.Type,
		Action:     action,
		Reasoning:  reasoning(tool, scores, action, redirected),
	}
	s.logger.Debug("heuristic intent", "tool", in.Tool, "confidence", in.Confidence,
		"raw_tool", best, "raw_score", confidence, "action", action)
	return in, true
}

func wordSet(s string) map[string]bool {
	fields := strings.Fields(s)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

// scoreTools only returns tools with at least one hit.
func scoreTools(lower string, words map[string]bool) map[string]int {
	scores := make(map[string]int)
	for _, ks := range toolKeywords {
		score := 0
		for _, kw := range ks.keywords {
			switch {
			case words[kw]:
				score += WordWeight
			case strings.Contains(lower, kw):
				score += SubstringWeight
			}
		}
		if score > 0 {
			scores[ks.name] = score
		}
	}
	return scores
}

func detectAction(lower string, words map[string]bool) string {
	for _, ks := range actionKeywords {
		for _, kw := range ks.keywords {
			if words[kw] || strings.Contains(lower, kw) {
				return ks.name
			}
		}
	}
	return ""
}

// applyContext runs the override rules in a fixed order. A URL override only
// fires when the raw winner is the network scanner.
func applyContext(tool string, conf int, tt domain.TargetType, action, lower string) (string, int, bool) {
	redirected := false
	apply := func(o override) bool {
		if !containsAny(lower, o.words) {
			return false
		}
		tool, conf, redirected = o.tool, o.confidence, true
		return true
	}

	if tt == domain.TargetURL && tool == "nmap" {
		for _, o := range urlOverrides {
			if apply(o) {
				break
			}
		}
	}
	if tt == domain.TargetDomain {
		for _, o := range domainOverrides {
			if apply(o) {
				break
			}
		}
	}
	if action == ActionBrute {
		apply(bruteOverride)
	}
	if action == ActionExploit {
		apply(exploitOverride)
	}
	return tool, conf, redirected
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func reasoning(tool string, scores map[string]int, action string, redirected bool) string {
	var reasons []string
	if _, ok := scores[tool]; ok {
		reasons = append(reasons, fmt.Sprintf("matched %s keywords", tool))
	}
	if redirected {
		reasons = append(reasons, "target context")
	}
	if action != "" {
		reasons = append(reasons, fmt.Sprintf("detected %q action", action))
	}
	if len(reasons) == 0 {
		return "default choice"
	}
	return strings.Join(reasons, ", ")
}
