package plugin

import (
	"lume/internal/domain"
	"lume/internal/target"
)

// SQLMap tests URL parameters for SQL injection.
type SQLMap struct{}

func (s *SQLMap) Name() string { return "sqlmap" }

func (s *SQLMap) Template() []string {
	return []string{"sqlmap", "-u", PlaceholderTarget, "--batch", "--banner"}
}

// ValidateTarget accepts URLs, anything carrying query parameters, and domains.
func (s *SQLMap) ValidateTarget(t string) bool {
	if target.ContainsShellMeta(t) && !target.ValidateURL(t) {
		return false
	}
	return target.ValidateURL(t) || target.HasQuery(t) || target.ValidateDomain(t)
}

func (s *SQLMap) BuildCommand(t string, _ domain.Hints) ([]string, error) {
	return Fill(s.Template(), map[string]string{PlaceholderTarget: t})
}

func (s *SQLMap) Explain(string) domain.Explanation {
	return domain.Explanation{
		Summary: "Tested the target URL for SQL injection",
		Impact:  "Identified injectable parameters and fingerprinted the database banner",
		Warning: "SQL injection testing can alter or damage data. Only test systems you are authorized to.",
	}
}

func (s *SQLMap) Info() domain.PluginInfo {
	return domain.PluginInfo{
		Binary:      "sqlmap",
		Description: "Automatic SQL injection tester",
		Targets:     []domain.TargetType{domain.TargetURL, domain.TargetDomain},
		Examples:    []string{"test sql injection on http://target.com/page?id=1"},
	}
}
