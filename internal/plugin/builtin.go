package plugin

import (
	"log/slog"

	"lume/internal/config"
	"lume/internal/domain"
)

// Options configures the built-in plugins.
type Options struct {
	Wordlists config.WordlistsConfig
	// Exists checks wordlist candidates; defaults to FileExists.
	Exists func(path string) bool
}

// Builtins returns the built-in plugins in declaration order. The order is
// also the heuristic scorer's tie-break order.
func Builtins(opts Options) []domain.Plugin {
	if opts.Exists == nil {
		opts.Exists = FileExists
	}
	return []domain.Plugin{
		&Nmap{},
		&Gobuster{wordlists: opts.Wordlists, exists: opts.Exists},
		&Nikto{},
		&SQLMap{},
		&Hydra{wordlists: opts.Wordlists, exists: opts.Exists},
		&Metasploit{},
		&WhatWeb{},
	}
}

// NewDefaultRegistry builds a registry holding every built-in plugin.
func NewDefaultRegistry(opts Options, logger *slog.Logger) (*Registry, error) {
	r := NewRegistry(logger)
	for _, p := range Builtins(opts) {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}
