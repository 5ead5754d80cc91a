package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Config is the root configuration for lume.
type Config struct {
	General    GeneralConfig    `json:"general"`
	Executor   ExecutorConfig   `json:"executor"`
	Rules      RulesConfig      `json:"rules"`
	Normalizer NormalizerConfig `json:"normalizer"`
	History    HistoryConfig    `json:"history"`
	Audit      AuditConfig      `json:"audit"`
	Metrics    MetricsConfig    `json:"metrics"`
	Security   SecurityConfig   `json:"security"`
	Wordlists  WordlistsConfig  `json:"wordlists"`
}

type GeneralConfig struct {
	StateDir  string          `json:"stateDir"`
	LogLevel  string          `json:"logLevel"`
	LogFile   string          `json:"logFile,omitempty"` // optional rotated log file
	LogRotate LogRotateConfig `json:"logRotate"`
}

type LogRotateConfig struct {
	MaxSizeMB  int  `json:"maxSizeMB"`
	MaxBackups int  `json:"maxBackups"`
	MaxAgeDays int  `json:"maxAgeDays"`
	Compress   bool `json:"compress"`
}

type ExecutorConfig struct {
	TimeoutSeconds int `json:"timeoutSeconds"`
	MaxOutputBytes int `json:"maxOutputBytes"` // 0 = unlimited
}

// RulesConfig points at an optional rule table that replaces the built-in one.
type RulesConfig struct {
	Path string `json:"path,omitempty"`
}

type NormalizerConfig struct {
	Enabled    bool    `json:"enabled"`
	Confidence float64 `json:"confidence"`
}

type HistoryConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

type AuditConfig struct {
	Enabled bool   `json:"enabled"`
	DBPath  string `json:"dbPath"`
}

// MetricsConfig enables a Prometheus textfile written after every run,
// for pickup by a node exporter textfile collector.
type MetricsConfig struct {
	Enabled      bool   `json:"enabled"`
	TextfilePath string `json:"textfilePath,omitempty"`
}

type SecurityConfig struct {
	DefaultPolicy   string      `json:"defaultPolicy"` // "allow" | "deny" | "ask"
	Blacklist       []string    `json:"blacklist"`
	Whitelist       []string    `json:"whitelist"`
	ConfirmPatterns []string    `json:"confirmPatterns"`
	Scope           ScopeConfig `json:"scope"`
	AuditLog        bool        `json:"auditLog"`
}

// ScopeConfig restricts IP and CIDR targets. An empty Allow list allows everything not denied.
type ScopeConfig struct {
	Allow []string `json:"allow,omitempty"`
	Deny  []string `json:"deny,omitempty"`
}

// WordlistsConfig holds ordered candidate paths; the first file present on disk is used.
type WordlistsConfig struct {
	Directory []string `json:"directory"`
	DNS       []string `json:"dns"`
	Common    []string `json:"common"`
	Users     []string `json:"users"`
	Passwords []string `json:"passwords"`
}

// DefaultConfigDir returns the default state directory (~/.lume).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lume"
	}
	return filepath.Join(home, ".lume")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// ErrNotFound is returned by Load when the config file does not exist.
var ErrNotFound = errors.New("config file not found")

func Load(path string) (*Config, error) {
	path = ExpandPath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}
	cfg.expandPaths()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// LoadOrDefault loads path, falling back to defaults when the file is absent.
// Parse and validation errors are still returned.
func LoadOrDefault(path string) (*Config, bool, error) {
	cfg, err := Load(path)
	if errors.Is(err, ErrNotFound) {
		cfg = Defaults()
		cfg.expandPaths()
		return cfg, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

func (c *Config) expandPaths() {
	c.General.StateDir = ExpandPath(c.General.StateDir)
	c.General.LogFile = ExpandPath(c.General.LogFile)
	c.Rules.Path = ExpandPath(c.Rules.Path)
	c.History.Path = ExpandPath(c.History.Path)
	c.Audit.DBPath = ExpandPath(c.Audit.DBPath)
	c.Metrics.TextfilePath = ExpandPath(c.Metrics.TextfilePath)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		hasDefault := len(groups) >= 3 && groups[2] != ""

		val, exists := os.LookupEnv(groups[1])
		if !exists || val == "" {
			if hasDefault {
				return groups[2]
			}
			return match
		}
		return val
	})
}

func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

// Validate checks that the config has valid values.
func Validate(cfg *Config) error {
	var errs []string

	switch cfg.General.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "general.logLevel must be one of: debug, info, warn, error")
	}
	if cfg.Executor.TimeoutSeconds < 1 || cfg.Executor.TimeoutSeconds > 86400 {
		errs = append(errs, "executor.timeoutSeconds must be between 1 and 86400")
	}
	if cfg.Executor.MaxOutputBytes < 0 {
		errs = append(errs, "executor.maxOutputBytes must be >= 0")
	}
	if cfg.Normalizer.Confidence < 0 || cfg.Normalizer.Confidence > 1 {
		errs = append(errs, "normalizer.confidence must be between 0 and 1")
	}
	if cfg.History.Enabled && cfg.History.Path == "" {
		errs = append(errs, "history.path is required when history is enabled")
	}
	if cfg.Audit.Enabled && cfg.Audit.DBPath == "" {
		errs = append(errs, "audit.dbPath is required when audit is enabled")
	}
	if cfg.Metrics.Enabled && cfg.Metrics.TextfilePath == "" {
		errs = append(errs, "metrics.textfilePath is required when metrics are enabled")
	}

	switch cfg.Security.DefaultPolicy {
	case "allow", "deny", "ask":
	default:
		errs = append(errs, "security.defaultPolicy must be one of: allow, deny, ask")
	}
	for _, c := range cfg.Security.Scope.Allow {
		if _, _, err := net.ParseCIDR(c); err != nil {
			errs = append(errs, fmt.Sprintf("security.scope.allow: invalid CIDR %q", c))
		}
	}
	for _, c := range cfg.Security.Scope.Deny {
		if _, _, err := net.ParseCIDR(c); err != nil {
			errs = append(errs, fmt.Sprintf("security.scope.deny: invalid CIDR %q", c))
		}
	}

	if len(cfg.Wordlists.Directory) == 0 {
		errs = append(errs, "wordlists.directory must list at least one path")
	}
	if len(cfg.Wordlists.DNS) == 0 {
		errs = append(errs, "wordlists.dns must list at least one path")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

// ExpandPath resolves ~/ to the user's home directory.
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
