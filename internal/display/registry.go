package display

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages display providers and handles backend detection
type Registry struct {
	providers []registration
	mu        sync.RWMutex
}

type registration struct {
	provider Provider
	priority int
}

var globalRegistry = &Registry{}

// Register adds a display provider to the global registry. Called from
// init() functions in backend-specific packages. Higher priority providers
// are tried first; package init order is irrelevant.
func Register(provider Provider, priority int) {
	globalRegistry.mu.Lock()
	defer globalRegistry.mu.Unlock()
	globalRegistry.providers = append(globalRegistry.providers, registration{provider, priority})
	sort.SliceStable(globalRegistry.providers, func(i, j int) bool {
		return globalRegistry.providers[i].priority > globalRegistry.providers[j].priority
	})
}

// Detect returns the first available display provider.
func Detect() (Provider, error) {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	for _, r := range globalRegistry.providers {
		if r.provider.IsAvailable() {
			return r.provider, nil
		}
	}

	return nil, fmt.Errorf("no compatible display server detected (tried %d providers)", len(globalRegistry.providers))
}

// GetProvider returns a specific provider by backend name, or nil.
func GetProvider(name string) Provider {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()

	for _, r := range globalRegistry.providers {
		if r.provider.GetDisplayInfo().Name == name {
			return r.provider
		}
	}
	return nil
}
