// Package rules holds the rule table and the fast matcher that runs first on
// every instruction.
package rules

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"lume/internal/domain"
	"lume/internal/security"
	"lume/internal/target"
)

// PlaceholderTarget must appear in every command template.
const PlaceholderTarget = "{target}"

// Table is an ordered, read-only rule set with patterns compiled at load time.
type Table struct {
	rules    []domain.Rule
	patterns [][]*regexp.Regexp
	argv     [][]string
	logger   *slog.Logger
}

// New validates rules and compiles their patterns. Order is preserved.
func New(rules []domain.Rule, logger *slog.Logger) (*Table, error) {
	if len(rules) == 0 {
		return nil, errors.New("rule table is empty")
	}

	t := &Table{
		rules:    make([]domain.Rule, len(rules)),
		patterns: make([][]*regexp.Regexp, len(rules)),
		argv:     make([][]string, len(rules)),
		logger:   logger,
	}
	copy(t.rules, rules)

	seen := make(map[string]bool, len(rules))
	var errs []string
	for i := range t.rules {
		r := &t.rules[i]
		if r.Name == "" {
			r.Name = fmt.Sprintf("rule-%d", i+1)
		}
		if seen[r.Name] {
			errs = append(errs, fmt.Sprintf("%s: duplicate rule name", r.Name))
		}
		seen[r.Name] = true

		if r.Tool == "" {
			errs = append(errs, fmt.Sprintf("%s: tool is required", r.Name))
		}
		if len(r.Patterns) == 0 {
			errs = append(errs, fmt.Sprintf("%s: at least one pattern is required", r.Name))
		}
		for _, p := range r.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				errs = append(errs, fmt.Sprintf("%s: pattern %q: %v", r.Name, p, err))
				continue
			}
			t.patterns[i] = append(t.patterns[i], re)
		}

		argv, err := parseTemplate(r.Command)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: command: %v", r.Name, err))
			continue
		}
		t.argv[i] = argv
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid rule table:\n  - %s", strings.Join(errs, "\n  - "))
	}
	logger.Debug("rule table loaded", "rules", len(t.rules))
	return t, nil
}

// parseTemplate splits a command template into tokens and checks it is a
// plain argument vector containing the target placeholder.
func parseTemplate(command string) ([]string, error) {
	if strings.TrimSpace(command) == "" {
		return nil, errors.New("template is empty")
	}
	argv, err := security.Split(command)
	if err != nil {
		return nil, err
	}
	if err := target.ValidateCommandTemplate(argv); err != nil {
		return nil, err
	}
	for _, tok := range argv {
		if strings.Contains(tok, PlaceholderTarget) {
			return argv, nil
		}
	}
	return nil, fmt.Errorf("template has no %s placeholder", PlaceholderTarget)
}

// Match returns the first rule with a pattern matching the lowercased
// instruction, or nil.
func (t *Table) Match(instruction string) *domain.Rule {
	lower := strings.ToLower(instruction)
	for i := range t.rules {
		for _, re := range t.patterns[i] {
			if re.MatchString(lower) {
				t.logger.Debug("rule matched", "rule", t.rules[i].Name, "pattern", re.String())
				r := t.rules[i]
				return &r
			}
		}
	}
	return nil
}

// Rules returns a copy of the table in declaration order.
func (t *Table) Rules() []domain.Rule {
	out := make([]domain.Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Template returns the parsed token template of the named rule.
func (t *Table) Template(name string) []string {
	for i := range t.rules {
		if t.rules[i].Name == name {
			return append([]string(nil), t.argv[i]...)
		}
	}
	return nil
}

// Tools returns the distinct tools referenced by the table, in first-use order.
func (t *Table) Tools() []string {
	seen := make(map[string]bool)
	var tools []string
	for _, r := range t.rules {
		if !seen[r.Tool] {
			seen[r.Tool] = true
			tools = append(tools, r.Tool)
		}
	}
	return tools
}
