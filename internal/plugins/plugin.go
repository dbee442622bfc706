// Package plugins holds the metric plugins and the static registry that
// builds them.
package plugins

import (
	"reflect"
	"strings"

	"ircstat/internal/graphs"
	"ircstat/internal/identity"
	"ircstat/internal/models"
	"ircstat/internal/providers"
)

// Plugin inspects one event at a time and emits counter deltas through the
// scope it is handed. Implementations keep no per-conversation state.
type Plugin interface {
	Name() string
	ProcessMessage(scope *models.Scope, e *models.Event) error
	Graphs() []graphs.Request
}

// Deps are what a factory may hand to the plugin it builds.
type Deps struct {
	Resolver identity.ResolverInterface
	Logger   providers.Logger
}

type Factory func(deps Deps) Plugin

// NameOf derives a plugin name from its type, dropping a "Plugin" suffix.
func NameOf(p any) string {
	t := reflect.TypeOf(p)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	return strings.TrimSuffix(t.Name(), "Plugin")
}
