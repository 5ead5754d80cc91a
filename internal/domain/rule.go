package domain

// Rule maps trigger patterns to a tool. Rules are matched in table order,
// so more specific rules must be declared before broader ones.
type Rule struct {
	Name        string   `yaml:"name" json:"name"`
	Tool        string   `yaml:"tool" json:"tool"`
	Patterns    []string `yaml:"patterns" json:"patterns"`
	Command     string   `yaml:"command" json:"command"` // token template, e.g. "nmap -sV -T4 {target}"
	Hints       Hints    `yaml:"hints,omitempty" json:"hints,omitempty"`
	Description string   `yaml:"description" json:"description"`
	Warning     string   `yaml:"warning,omitempty" json:"warning,omitempty"`
	Summary     string   `yaml:"summary,omitempty" json:"summary,omitempty"`
	Impact      string   `yaml:"impact,omitempty" json:"impact,omitempty"`
}

// RuleSet is the on-disk shape of a rule table.
type RuleSet struct {
	Version int    `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}
