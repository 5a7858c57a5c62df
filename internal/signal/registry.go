package signal

import "sort"

// Registry holds a named collection of providers for lookup and enumeration.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]Provider)}
}

// Register adds a provider, keyed by its ID. Re-registering an ID replaces
// the previous provider.
func (r *Registry) Register(p Provider) {
	r.providers[p.ID()] = p
}

// Get retrieves a provider by ID. The second return value indicates whether
// it was found.
func (r *Registry) Get(id string) (Provider, bool) {
	p, ok := r.providers[id]
	return p, ok
}

// List returns all registered provider IDs, sorted.
func (r *Registry) List() []string {
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// All returns the providers in List order.
func (r *Registry) All() []Provider {
	ids := r.List()
	providers := make([]Provider, len(ids))
	for i, id := range ids {
		providers[i] = r.providers[id]
	}
	return providers
}
