package plugin

import (
	"fmt"
	"strings"

	"lume/internal/domain"
	"lume/internal/target"
)

// Scan types understood by the network scanner.
const (
	ScanFast       = "fast"
	ScanAggressive = "aggressive"
	ScanOS         = "os"
	ScanVuln       = "vuln"
	ScanNetwork    = "network"
)

// Nmap is the network scanner.
type Nmap struct{}

var _ domain.Widener = (*Nmap)(nil)

func (n *Nmap) Name() string { return "nmap" }

func (n *Nmap) Template() []string {
	return []string{"nmap", "-sV", "-T4", PlaceholderTarget}
}

func (n *Nmap) ValidateTarget(t string) bool {
	return target.ValidateIP(t) || target.ValidateCIDR(t) || target.ValidateDomain(t)
}

func (n *Nmap) BuildCommand(t string, hints domain.Hints) ([]string, error) {
	var tmpl []string
	switch hints.Scan {
	case "":
		tmpl = n.Template()
	case ScanFast:
		tmpl = []string{"nmap", "-F", "-T4", PlaceholderTarget}
	case ScanAggressive:
		tmpl = []string{"nmap", "-A", "-T4", PlaceholderTarget}
	case ScanOS:
		tmpl = []string{"nmap", "-O", PlaceholderTarget}
	case ScanVuln:
		tmpl = []string{"nmap", "--script", "vuln", PlaceholderTarget}
	case ScanNetwork:
		t = sweepRange(t)
		tmpl = []string{"nmap", "-sn", PlaceholderTarget}
	default:
		return nil, fmt.Errorf("nmap: unknown scan type %q", hints.Scan)
	}
	return Fill(tmpl, map[string]string{PlaceholderTarget: t})
}

// ScanTarget reports the /24 a host sweep expands a bare address into.
func (n *Nmap) ScanTarget(t domain.Target, hints domain.Hints) domain.Target {
	if hints.Scan != ScanNetwork || strings.Contains(t.Value, "/") {
		return t
	}
	widened := domain.Target{Value: sweepRange(t.Value), Type: t.Type}
	if t.Type == domain.TargetIP {
		widened.Type = domain.TargetCIDR
	}
	return widened
}

func sweepRange(t string) string {
	if strings.Contains(t, "/") {
		return t
	}
	return t + "/24"
}

func (n *Nmap) Explain(t string) domain.Explanation {
	return domain.Explanation{
		Summary: "Performed a service and version scan on the target",
		Impact:  "Identified open ports and detected running network services for further analysis",
		Warning: "Port scanning may trigger IDS/IPS systems. Ensure you have authorization.",
	}
}

func (n *Nmap) Info() domain.PluginInfo {
	return domain.PluginInfo{
		Binary:      "nmap",
		Description: "Network scanner: port, service, OS and vulnerability-script scans",
		Targets:     []domain.TargetType{domain.TargetIP, domain.TargetCIDR, domain.TargetDomain},
		Options:     []string{"fast (-F)", "aggressive (-A)", "os (-O)", "vuln (--script vuln)", "network (-sn, /24 by default)"},
		Examples:    []string{"scan ports on 192.168.1.1", "quick scan 10.0.0.5", "find live hosts on 10.0.0.0/24"},
	}
}
