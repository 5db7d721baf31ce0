package gateway

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a configured gateway instance for one provider.
type Factory func(Config) (Gateway, error)

var registry = struct {
	sync.RWMutex
	factories map[string]Factory
}{factories: make(map[string]Factory)}

// Register makes a provider adapter available under a name. Adapters call
// it from an init function, following the database/sql driver convention.
// Registering the same name twice panics: it is a programming error, not a
// runtime condition.
func Register(name string, factory Factory) {
	registry.Lock()
	defer registry.Unlock()
	if factory == nil {
		panic("gateway: Register factory is nil")
	}
	if _, dup := registry.factories[name]; dup {
		panic(fmt.Sprintf("gateway: Register called twice for provider %q", name))
	}
	registry.factories[name] = factory
}

// New constructs a gateway for a registered provider name. An unknown name
// is a ConfigurationError, the same class as any other bad construction
// input.
func New(name string, config Config) (Gateway, error) {
	registry.RLock()
	factory, ok := registry.factories[name]
	registry.RUnlock()
	if !ok {
		return nil, &ConfigurationError{Provider: name, Reason: "names no registered provider"}
	}
	return factory(config)
}

// Providers lists the registered provider names, sorted.
func Providers() []string {
	registry.RLock()
	defer registry.RUnlock()
	names := make([]string, 0, len(registry.factories))
	for name := range registry.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
