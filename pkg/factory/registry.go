package factory

import (
	"sort"
	"strings"
	"sync"

	"github.com/inercia/go-anthropic-mock/pkg/llm"
)

// BackendConstructor creates the backend of a provider
type BackendConstructor func(config llm.ClientConfig) (llm.Backend, error)

// providerRegistry holds all registered backend constructors
type providerRegistry struct {
	mu        sync.RWMutex
	providers map[string]BackendConstructor
}

var globalRegistry = &providerRegistry{
	providers: make(map[string]BackendConstructor),
}

// RegisterProvider registers a backend constructor under a case-insensitive name
func RegisterProvider(name string, constructor BackendConstructor) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.providers[strings.ToLower(name)] = constructor
}

// GetProvider returns a backend constructor by name
func GetProvider(name string) (BackendConstructor, bool) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	constructor, exists := globalRegistry.providers[strings.ToLower(name)]
	return constructor, exists
}

// ListProviders returns all registered provider names, sorted
func ListProviders() []string {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	names := make([]string, 0, len(globalRegistry.providers))
	for name := range globalRegistry.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
