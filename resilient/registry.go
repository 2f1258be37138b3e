package resilient

import (
	"fmt"
	"sync"

	"github.com/orrery/resilient/engine"
)

// Registry is a static, name-keyed lookup of Engines, adapted from
// controlplane's PolicyProvider: instead of resolving a PolicyKey to an
// EffectivePolicy, it resolves a name to an already-built *Engine, falling
// back to a configured default Engine when the name is unregistered.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]*engine.Engine
	fallback *engine.Engine
}

// NewRegistry builds a Registry. fallback may be nil, in which case Get
// returns an error for unregistered names instead of a default Engine.
func NewRegistry(fallback *engine.Engine) *Registry {
	return &Registry{engines: make(map[string]*engine.Engine), fallback: fallback}
}

// Register associates name with eng, replacing any prior registration.
func (r *Registry) Register(name string, eng *engine.Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[name] = eng
}

// Get resolves name to its registered Engine, or the Registry's fallback.
func (r *Registry) Get(name string) (*engine.Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if eng, ok := r.engines[name]; ok {
		return eng, nil
	}
	if r.fallback != nil {
		return r.fallback, nil
	}
	return nil, fmt.Errorf("resilient: no engine registered for %q", name)
}
