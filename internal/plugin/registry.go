// Package plugin implements the command builders for each supported external
// tool and the registry that holds them.
package plugin

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"lume/internal/domain"
	"lume/internal/target"
)

// ErrUnknownTool is returned when no plugin is registered under a name.
var ErrUnknownTool = errors.New("unknown tool")

// Registry holds plugins keyed by name and remembers registration order.
// It is constructed explicitly and passed to its users; tests build their own.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]domain.Plugin
	order   []string
	logger  *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		plugins: make(map[string]domain.Plugin),
		logger:  logger,
	}
}

// Register adds p. Names must be unique and the plugin's template must be a
// plain token vector.
func (r *Registry) Register(p domain.Plugin) error {
	name := p.Name()
	if name == "" {
		return errors.New("plugin name is empty")
	}
	if err := target.ValidateCommandTemplate(p.Template()); err != nil {
		return fmt.Errorf("plugin %s: template: %w", name, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("plugin %s already registered", name)
	}
	r.plugins[name] = p
	r.order = append(r.order, name)
	r.logger.Debug("registered plugin", "name", name)
	return nil
}

// Get returns the named plugin or an error wrapping ErrUnknownTool.
func (r *Registry) Get(name string) (domain.Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %s)", ErrUnknownTool, name, strings.Join(r.order, ", "))
	}
	return p, nil
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.plugins[name]
	return ok
}

// Names returns plugin names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// Plugins returns the registered plugins in registration order.
func (r *Registry) Plugins() []domain.Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Plugin, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.plugins[n])
	}
	return out
}
