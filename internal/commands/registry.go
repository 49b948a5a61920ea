// Package commands provides command registration and execution functionality for calcshell.
// Command packages add themselves to a compiled-in plugin catalog from their init functions;
// a Registry turns that catalog into handlers bound to one session's ledger.
package commands

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"calcshell/internal/ledger"
	"calcshell/internal/logger"
	"calcshell/pkg/calctypes"
)

// Plugin is one entry of the plugin catalog: a command name and the constructor that builds
// its handler for a ledger. The constructed value is checked for the Executor and
// UsageProvider capabilities when the registry is populated.
type Plugin struct {
	Name string
	New  func(l *ledger.Ledger) any
}

var (
	catalogMu sync.RWMutex
	catalog   []Plugin
)

// RegisterPlugin adds a plugin to the global catalog. It is meant to be called from init.
func RegisterPlugin(p Plugin) {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	catalog = append(catalog, p)
}

// Plugins returns a copy of the global catalog in registration order.
func Plugins() []Plugin {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	out := make([]Plugin, len(catalog))
	copy(out, catalog)
	return out
}

// NormalizeName trims and lower-cases a command name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Registry manages command registration and lookup for one session.
// It provides thread-safe registration and retrieval of handlers by name.
type Registry struct {
	mu       sync.RWMutex
	ledger   *ledger.Ledger
	plugins  []Plugin
	handlers map[string]calctypes.Handler
	order    []string
	log      *log.Logger
}

// NewRegistry creates an empty registry that will build plugins for l.
func NewRegistry(l *ledger.Ledger, plugins []Plugin) *Registry {
	return &Registry{
		ledger:   l,
		plugins:  plugins,
		handlers: make(map[string]calctypes.Handler),
		log:      logger.NewComponentLogger("registry"),
	}
}

// NewDefaultRegistry creates a registry over the global plugin catalog.
func NewDefaultRegistry(l *ledger.Ledger) *Registry {
	return NewRegistry(l, Plugins())
}

// RegisterAll runs discovery over the registry's plugins and returns how many were
// registered. A plugin that cannot be built or lacks a capability is skipped with a
// diagnostic. Calling it again rebuilds every handler; same-named entries are replaced.
func (r *Registry) RegisterAll() int {
	registered := 0
	for _, p := range r.plugins {
		if p.New == nil {
			r.log.Warn("Skipping plugin without constructor", "command", p.Name)
			continue
		}
		if err := r.Register(p.Name, p.New(r.ledger)); err != nil {
			r.log.Warn("Skipping plugin", "command", p.Name, "error", err)
			continue
		}
		registered++
	}
	r.log.Debug("Plugins registered", "count", registered, "commands", r.ListNames())
	return registered
}

// Register binds candidate to name after checking that it can execute and describe its usage.
// A later registration under the same name replaces the earlier one and keeps its position.
func (r *Registry) Register(name string, candidate any) error {
	name = NormalizeName(name)
	if name == "" {
		return fmt.Errorf("command name cannot be empty")
	}
	if _, ok := candidate.(calctypes.Executor); !ok {
		return fmt.Errorf("command %s does not implement Execute", name)
	}
	if _, ok := candidate.(calctypes.UsageProvider); !ok {
		return fmt.Errorf("command %s does not implement Usage", name)
	}
	handler := candidate.(calctypes.Handler)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		r.log.Debug("Replacing command", "command", name)
	} else {
		r.order = append(r.order, name)
	}
	r.handlers[name] = handler
	return nil
}

// Create returns the handler registered under name.
func (r *Registry) Create(name string) (calctypes.Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handler, exists := r.handlers[NormalizeName(name)]
	if !exists {
		return nil, fmt.Errorf("%w: %s", calctypes.ErrUnknownCommand, name)
	}
	return handler, nil
}

// IsValidCommand checks if a command exists in the registry.
func (r *Registry) IsValidCommand(name string) bool {
	_, err := r.Create(name)
	return err == nil
}

// ListNames returns the registered names in discovery order.
// The returned slice is a copy and can be safely modified.
func (r *Registry) ListNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Describe returns a one-line description of a command for menus: its Description when it
// has one, otherwise the first line of its usage text.
func (r *Registry) Describe(name string) string {
	handler, err := r.Create(name)
	if err != nil {
		return ""
	}
	if d, ok := handler.(calctypes.Describer); ok {
		return d.Description()
	}
	usage, _, _ := strings.Cut(handler.Usage(), "\n")
	return usage
}

// Execute runs a command by name with the provided arguments.
// Returns ErrUnknownCommand if the command is not registered.
func (r *Registry) Execute(name string, args []string) (string, error) {
	handler, err := r.Create(name)
	if err != nil {
		return "", err
	}
	logger.CommandExecution(NormalizeName(name), args)
	return handler.Execute(args)
}
