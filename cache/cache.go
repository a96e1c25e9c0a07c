package cache

import (
	"github.com/maypok86/otter"
)

// DefaultSize is the number of statement templates kept when no size is given
const DefaultSize = 4096

// Cache wraps Otter cache for generated SQL statement templates
type Cache struct {
	store otter.Cache[string, string]
}

// New creates a new cache with the specified max size
func New(maxSize int) (*Cache, error) {
	if maxSize <= 0 {
		maxSize = DefaultSize
	}
	store, err := otter.MustBuilder[string, string](maxSize).Build()
	if err != nil {
		return nil, err
	}
	return &Cache{store: store}, nil
}

// Get retrieves a cached template by key
func (c *Cache) Get(key string) (string, bool) {
	return c.store.Get(key)
}

// Set stores a template under key
func (c *Cache) Set(key, sql string) {
	c.store.Set(key, sql)
}

// GetOrBuild returns the cached template for key, building and storing it on a miss
func (c *Cache) GetOrBuild(key string, build func() string) string {
	if sql, ok := c.store.Get(key); ok {
		return sql
	}
	sql := build()
	c.store.Set(key, sql)
	return sql
}

// Delete removes an entry from the cache
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// Close stops the cache maintenance goroutines
func (c *Cache) Close() {
	c.store.Close()
}
