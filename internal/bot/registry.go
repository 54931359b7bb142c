package bot

import "sync"

// Registry holds registered modules in registration order.
type Registry struct {
	mu      sync.Mutex
	modules []Module
}

// NewRegistry creates an empty module registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a module to the registry.
func (r *Registry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules = append(r.modules, m)
}

// Modules returns a snapshot of the registered modules.
func (r *Registry) Modules() []Module {
	r.mu.Lock()
	defer r.mu.Unlock()

	modules := make([]Module, len(r.modules))
	copy(modules, r.modules)
	return modules
}

var globalRegistry = NewRegistry()

// Register adds a module to the global registry. Module packages call this
// from init so that a blank import is enough to enable them.
func Register(m Module) {
	globalRegistry.Register(m)
}

// Modules returns a snapshot of the global registry.
func Modules() []Module {
	return globalRegistry.Modules()
}

// ResetGlobalRegistry clears the global registry. Intended for tests.
func ResetGlobalRegistry() {
	globalRegistry = NewRegistry()
}
