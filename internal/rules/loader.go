package rules

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"lume/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var builtinRules []byte

// Parse decodes a YAML rule set.
func Parse(data []byte) ([]domain.Rule, error) {
	var set domain.RuleSet
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("parse rules: %w", err)
	}
	if set.Version > 1 {
		return nil, fmt.Errorf("unsupported rule table version %d", set.Version)
	}
	return set.Rules, nil
}

// Builtin returns the rule table compiled into the binary.
func Builtin() ([]domain.Rule, error) {
	return Parse(builtinRules)
}

// Load builds a Table from path, or from the built-in rules when path is empty.
func Load(path string, logger *slog.Logger) (*Table, error) {
	if path == "" {
		rs, err := Builtin()
		if err != nil {
			return nil, fmt.Errorf("builtin rules: %w", err)
		}
		return New(rs, logger)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	logger.Info("loaded rule table", "path", path, "rules", len(rs))
	return New(rs, logger)
}
