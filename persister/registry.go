package persister

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mevdschee/insertorder/cache"
)

// Registry maps entity names to persisters. It is filled at boot time and
// read during flushes.
type Registry struct {
	mu         sync.RWMutex
	persisters map[string]*Persister
	templates  *cache.Cache
}

// NewRegistry creates an empty registry with its own template cache
func NewRegistry() (*Registry, error) {
	templates, err := cache.New(cache.DefaultSize)
	if err != nil {
		return nil, err
	}
	return &Registry{
		persisters: make(map[string]*Persister),
		templates:  templates,
	}, nil
}

// Register validates p and adds it to the registry
func (r *Registry) Register(p *Persister) error {
	if p.EntityName == "" {
		return ErrNoEntityName
	}
	if p.Table == "" {
		return fmt.Errorf("%w: %s", ErrNoTable, p.EntityName)
	}
	for property, d := range p.Associations {
		if d == nil || Unwrap(d) == nil {
			return fmt.Errorf("%w: %s.%s", ErrNilAssociation, p.EntityName, property)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.persisters[p.EntityName]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateEntity, p.EntityName)
	}
	p.templates = r.templates
	r.persisters[p.EntityName] = p
	return nil
}

// Lookup returns the persister registered for name
func (r *Registry) Lookup(name string) (*Persister, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.persisters[name]
	return p, ok
}

// Names returns the registered entity names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.persisters))
	for name := range r.persisters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close releases the template cache
func (r *Registry) Close() {
	r.templates.Close()
}
