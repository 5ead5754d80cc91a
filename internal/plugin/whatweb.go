package plugin

import (
	"lume/internal/domain"
	"lume/internal/target"
)

// WhatWeb fingerprints web technologies.
type WhatWeb struct{}

func (w *WhatWeb) Name() string { return "whatweb" }

func (w *WhatWeb) Template() []string {
	return []string{"whatweb", PlaceholderTarget}
}

func (w *WhatWeb) ValidateTarget(t string) bool {
	return target.ValidateURL(t) || target.ValidateIP(t) || target.ValidateDomain(t)
}

func (w *WhatWeb) BuildCommand(t string, _ domain.Hints) ([]string, error) {
	return Fill(w.Template(), map[string]string{PlaceholderTarget: t})
}

func (w *WhatWeb) Explain(string) domain.Explanation {
	return domain.Explanation{
		Summary: "Identified the technologies used by the website",
		Impact:  "Revealed the CMS, frameworks and server software with version hints",
		Warning: "Fingerprinting requests are logged by the web server.",
	}
}

func (w *WhatWeb) Info() domain.PluginInfo {
	return domain.PluginInfo{
		Binary:      "whatweb",
		Description: "Web technology fingerprinter",
		Targets:     []domain.TargetType{domain.TargetURL, domain.TargetIP, domain.TargetDomain},
		Examples:    []string{"identify web technologies on example.com"},
	}
}
