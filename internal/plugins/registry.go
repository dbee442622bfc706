package plugins

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"ircstat/internal/providers"
)

type RegistryInterface interface {
	Register(name string, factory Factory) error
	Names() []string
	Load(deps Deps, blacklist []string) []Plugin
}

type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry holding the built-in plugins.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	for name, factory := range map[string]Factory{
		"Totals":   NewTotalsPlugin,
		"Highbrow": NewHighbrowPlugin,
		"Activity": NewActivityPlugin,
	} {
		r.factories[name] = factory
	}
	return r
}

func (r *Registry) Register(name string, factory Factory) error {
	if name == "" || factory == nil {
		return fmt.Errorf("plugin registration needs a name and a factory")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.factories[name]; ok {
		return fmt.Errorf("plugin %q already registered", name)
	}
	r.factories[name] = factory
	return nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Load builds every registered plugin whose name is not blacklisted, sorted
// by name. Blacklist entries match names case-insensitively.
func (r *Registry) Load(deps Deps, blacklist []string) []Plugin {
	blocked := make(map[string]bool, len(blacklist))
	for _, name := range blacklist {
		blocked[strings.ToLower(name)] = true
	}

	var loaded []Plugin
	for _, name := range r.Names() {
		if blocked[strings.ToLower(name)] {
			delete(blocked, strings.ToLower(name))
			if deps.Logger != nil {
				deps.Logger.Infof(providers.TypeApp, "Plugin %s is blacklisted", name)
			}
			continue
		}

		r.mu.RLock()
		factory := r.factories[name]
		r.mu.RUnlock()

		loaded = append(loaded, factory(deps))
	}

	if deps.Logger != nil {
		for name := range blocked {
			deps.Logger.Warnf(providers.TypeApp, "Blacklisted plugin %s does not exist", name)
		}
	}
	return loaded
}
