package plugin

import (
	"fmt"
	"net/url"
	"strings"

	"lume/internal/config"
	"lume/internal/domain"
	"lume/internal/target"
)

// Enumeration modes and wordlist selectors.
const (
	ModeDir        = "dir"
	ModeDNS        = "dns"
	WordlistCommon = "common"
)

// Gobuster enumerates directories on web servers or subdomains of a domain.
type Gobuster struct {
	wordlists config.WordlistsConfig
	exists    func(string) bool
}

func (g *Gobuster) Name() string { return "gobuster" }

func (g *Gobuster) Template() []string {
	return []string{"gobuster", "dir", "-u", PlaceholderTarget, "-w", PlaceholderWordlist, "-t", "50"}
}

func (g *Gobuster) ValidateTarget(t string) bool {
	return target.ValidateURL(t) || target.ValidateDomain(t)
}

func (g *Gobuster) BuildCommand(t string, hints domain.Hints) ([]string, error) {
	mode := hints.Mode
	if mode == "" {
		mode = ModeDir
	}

	var tmpl, candidates []string
	switch mode {
	case ModeDir:
		tmpl = g.Template()
		candidates = g.wordlists.Directory
		if !target.ValidateURL(t) {
			t = "http://" + t
		}
	case ModeDNS:
		tmpl = []string{"gobuster", "dns", "-d", PlaceholderTarget, "-w", PlaceholderWordlist, "-t", "50"}
		candidates = g.wordlists.DNS
		if u, err := url.Parse(t); err == nil && u.Host != "" {
			t = u.Hostname()
		}
	default:
		return nil, fmt.Errorf("gobuster: unknown mode %q", mode)
	}

	switch {
	case hints.Wordlist == WordlistCommon:
		candidates = append(append([]string(nil), g.wordlists.Common...), candidates...)
	case strings.HasPrefix(hints.Wordlist, "/"):
		candidates = []string{hints.Wordlist}
	}
	wl, err := pickWordlist("gobuster "+mode, candidates, g.exists)
	if err != nil {
		return nil, err
	}

	return Fill(tmpl, map[string]string{PlaceholderTarget: t, PlaceholderWordlist: wl})
}

func (g *Gobuster) Explain(t string) domain.Explanation {
	if target.ValidateURL(t) {
		return domain.Explanation{
			Summary: "Enumerated directories and files on the web server",
			Impact:  "Discovered hidden paths, admin panels and unlinked content",
			Warning: "Directory brute forcing generates heavy traffic and is easily logged.",
		}
	}
	return domain.Explanation{
		Summary: "Enumerated subdomains or web paths for the target domain",
		Impact:  "Expanded the known attack surface with additional hosts or paths",
		Warning: "Brute-force enumeration generates heavy traffic and is easily logged.",
	}
}

func (g *Gobuster) Info() domain.PluginInfo {
	return domain.PluginInfo{
		Binary:      "gobuster",
		Description: "Directory and DNS subdomain brute forcer",
		Targets:     []domain.TargetType{domain.TargetURL, domain.TargetDomain},
		Options:     []string{"dir mode (default)", "dns mode (subdomain, dns)", "common wordlist (common)"},
		Examples:    []string{"find admin page on example.com", "find subdomains of example.com", "find directories on http://example.com with common wordlist"},
	}
}
