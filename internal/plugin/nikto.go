package plugin

import (
	"lume/internal/domain"
	"lume/internal/target"
)

// Nikto scans web servers for known issues.
type Nikto struct{}

func (n *Nikto) Name() string { return "nikto" }

func (n *Nikto) Template() []string {
	return []string{"nikto", "-h", PlaceholderTarget}
}

func (n *Nikto) ValidateTarget(t string) bool {
	return target.ValidateURL(t) || target.ValidateIP(t) || target.ValidateDomain(t)
}

func (n *Nikto) BuildCommand(t string, _ domain.Hints) ([]string, error) {
	return Fill(n.Template(), map[string]string{PlaceholderTarget: t})
}

func (n *Nikto) Explain(string) domain.Explanation {
	return domain.Explanation{
		Summary: "Scanned the web server for known vulnerabilities",
		Impact:  "Detected outdated software, dangerous files and server misconfigurations",
		Warning: "Web vulnerability scans are noisy and will appear in server logs.",
	}
}

func (n *Nikto) Info() domain.PluginInfo {
	return domain.PluginInfo{
		Binary:      "nikto",
		Description: "Web server vulnerability scanner",
		Targets:     []domain.TargetType{domain.TargetURL, domain.TargetIP, domain.TargetDomain},
		Examples:    []string{"scan web vulnerabilities on http://example.com"},
	}
}
