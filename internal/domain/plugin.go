package domain

// Hints are option selectors derived from instruction keywords or fixed by a rule.
// Empty fields mean "use the tool default".
type Hints struct {
	Scan     string `yaml:"scan,omitempty" json:"scan,omitempty"`         // nmap: fast | aggressive | os | vuln | network
	Mode     string `yaml:"mode,omitempty" json:"mode,omitempty"`         // gobuster: dir | dns
	Wordlist string `yaml:"wordlist,omitempty" json:"wordlist,omitempty"` // gobuster: common, or an explicit path
	Service  string `yaml:"service,omitempty" json:"service,omitempty"`   // hydra: ssh | ftp | http-post-form
}

// Merge returns h with every non-empty field of o applied on top.
func (h Hints) Merge(o Hints) Hints {
	if o.Scan != "" {
		h.Scan = o.Scan
	}
	if o.Mode != "" {
		h.Mode = o.Mode
	}
	if o.Wordlist != "" {
		h.Wordlist = o.Wordlist
	}
	if o.Service != "" {
		h.Service = o.Service
	}
	return h
}

// IsZero reports whether no hint is set.
func (h Hints) IsZero() bool { return h == Hints{} }

// Explanation is the human-readable description of what a command does.
type Explanation struct {
	Summary string
	Impact  string
	Warning string
}

// Plugin wraps one external security tool.
// Execution is not part of the interface: every plugin runs through the
// shared executor so the argv-only invocation path cannot be bypassed.
type Plugin interface {
	Name() string
	// Template is the fixed default token list, with {target} as placeholder.
	Template() []string
	ValidateTarget(target string) bool
	BuildCommand(target string, hints Hints) ([]string, error)
	Explain(target string) Explanation
}

// PluginInfo is optional descriptive metadata a plugin may expose.
type PluginInfo struct {
	Binary      string
	Description string
	Targets     []TargetType
	Options     []string
	Examples    []string
}

// Describer is implemented by plugins that expose PluginInfo.
type Describer interface {
	Info() PluginInfo
}

// Widener is implemented by plugins whose command covers more than the
// target they were given. ScanTarget returns what the command will actually
// touch; the security engine checks scope against it.
type Widener interface {
	ScanTarget(t Target, hints Hints) Target
}
