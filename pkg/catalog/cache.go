// Package catalog resolves object references against database metadata.
//
// There is no process-wide state: callers construct a Cache with a capacity,
// hand it to a Resolver together with a Lookup, and own both for as long as
// they need them.
package catalog

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Key identifies a cached object. Build it with NewKey so that names compare
// the way the database does.
type Key struct {
	Schema string
	Name   string
}

// NewKey normalises schema and name into a cache key.
func NewKey(schema, name string) Key {
	return Key{Schema: Normalize(schema), Name: Normalize(name)}
}

func (k Key) String() string {
	if k.Schema == "" {
		return k.Name
	}
	return k.Schema + "." + k.Name
}

// Normalize upper-cases an ordinary identifier. A delimited identifier loses
// its quotes and keeps its case, with doubled quotes collapsed.
func Normalize(name string) string {
	if len(name) >= 2 && name[0] == '"' && name[len(name)-1] == '"' {
		return strings.ReplaceAll(name[1:len(name)-1], `""`, `"`)
	}
	return strings.ToUpper(name)
}

// Cache is a bounded least-recently-used map keyed by (schema, name). It is
// safe for concurrent use.
type Cache[V any] struct {
	entries *lru.Cache[Key, V]
}

// NewCache creates a cache holding at most size entries.
func NewCache[V any](size int) (*Cache[V], error) {
	entries, err := lru.New[Key, V](size)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Cache[V]{entries: entries}, nil
}

// Get returns the value cached for schema and name.
func (c *Cache[V]) Get(schema, name string) (V, bool) {
	return c.entries.Get(NewKey(schema, name))
}

// Put stores value, evicting the least recently used entry when full.
// It reports whether an eviction happened.
func (c *Cache[V]) Put(schema, name string, value V) bool {
	return c.entries.Add(NewKey(schema, name), value)
}

// Remove drops one entry.
func (c *Cache[V]) Remove(schema, name string) {
	c.entries.Remove(NewKey(schema, name))
}

// RemoveSchema drops every entry of a schema.
func (c *Cache[V]) RemoveSchema(schema string) {
	want := Normalize(schema)
	for _, k := range c.entries.Keys() {
		if k.Schema == want {
			c.entries.Remove(k)
		}
	}
}

// Len returns the number of cached entries.
func (c *Cache[V]) Len() int {
	return c.entries.Len()
}

// Purge empties the cache.
func (c *Cache[V]) Purge() {
	c.entries.Purge()
}
