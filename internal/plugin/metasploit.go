package plugin

import (
	"lume/internal/domain"
	"lume/internal/target"
)

// Metasploit runs the MS17-010 check module non-interactively.
type Metasploit struct{}

func (m *Metasploit) Name() string { return "metasploit" }

func (m *Metasploit) Template() []string {
	return []string{"msfconsole", "-q", "-x", "use exploit/windows/smb/ms17_010_eternalblue; set RHOSTS " + PlaceholderTarget + "; check; exit"}
}

// ValidateTarget only accepts bare hosts: the target is spliced into a console
// script where ';' separates commands.
func (m *Metasploit) ValidateTarget(t string) bool {
	return target.ValidateIP(t) || target.ValidateDomain(t)
}

func (m *Metasploit) BuildCommand(t string, _ domain.Hints) ([]string, error) {
	return Fill(m.Template(), map[string]string{PlaceholderTarget: t})
}

func (m *Metasploit) Explain(string) domain.Explanation {
	return domain.Explanation{
		Summary: "Checked the target for the MS17-010 EternalBlue vulnerability",
		Impact:  "A vulnerable host allows unauthenticated remote code execution over SMB",
		Warning: "Exploit modules can crash unpatched systems. Only run with written authorization.",
	}
}

func (m *Metasploit) Info() domain.PluginInfo {
	return domain.PluginInfo{
		Binary:      "msfconsole",
		Description: "Metasploit console running the EternalBlue check module",
		Targets:     []domain.TargetType{domain.TargetIP, domain.TargetDomain},
		Examples:    []string{"check eternalblue on 10.0.0.9"},
	}
}
