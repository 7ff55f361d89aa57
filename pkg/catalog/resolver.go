package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlscope/pkg/document"
)

// Naming is the object naming convention in effect.
type Naming int32

// Naming modes. SQL naming fills a missing schema from the default schema;
// system naming searches the library list.
const (
	NamingSQL Naming = iota
	NamingSystem
)

func (n Naming) String() string {
	if n == NamingSystem {
		return "system"
	}
	return "sql"
}

// ParseNaming parses "sql" or "system".
func ParseNaming(s string) (Naming, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sql":
		return NamingSQL, nil
	case "system":
		return NamingSystem, nil
	}
	return NamingSQL, fmt.Errorf("invalid naming %q: expected sql or system", s)
}

// MarshalText implements encoding.TextMarshaler.
func (n Naming) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *Naming) UnmarshalText(text []byte) error {
	parsed, err := ParseNaming(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// ObjectInfo describes a catalog object.
type ObjectInfo struct {
	Schema string `json:"schema"`
	Name   string `json:"name"`
	Kind   string `json:"kind"`
	// Source is where the object is defined, such as a file path.
	Source string `json:"source,omitempty"`
}

// Lookup finds objects by schema and name. An empty schema matches any
// schema.
type Lookup interface {
	FindObjects(ctx context.Context, schema, name string) ([]ObjectInfo, error)
}

// Resolution is a cached lookup outcome. Misses are cached too.
type Resolution struct {
	Object ObjectInfo
	Found  bool
}

// Resolver resolves object references through a Lookup and a cache.
type Resolver struct {
	lookup        Lookup
	cache         *Cache[Resolution]
	naming        Naming
	defaultSchema string
	libraryList   []string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithNaming sets the naming mode.
func WithNaming(n Naming) Option {
	return func(r *Resolver) { r.naming = n }
}

// WithDefaultSchema sets the schema used for unqualified names under SQL
// naming.
func WithDefaultSchema(schema string) Option {
	return func(r *Resolver) { r.defaultSchema = schema }
}

// WithLibraryList sets the libraries searched for unqualified names under
// system naming, in order.
func WithLibraryList(libs []string) Option {
	return func(r *Resolver) { r.libraryList = append([]string(nil), libs...) }
}

// NewResolver creates a resolver. cache may be shared between resolvers
// that use the same lookup.
func NewResolver(lookup Lookup, cache *Cache[Resolution], opts ...Option) *Resolver {
	r := &Resolver{lookup: lookup, cache: cache}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve finds the object a reference names. References to common table
// expressions and references without a name never resolve.
func (r *Resolver) Resolve(ctx context.Context, ref document.ObjectRef) (ObjectInfo, bool, error) {
	if ref.CTE || ref.Object.Name == "" {
		return ObjectInfo{}, false, nil
	}
	for _, schema := range r.candidateSchemas(ref.Object.Schema) {
		res, err := r.find(ctx, schema, ref.Object.Name)
		if err != nil {
			return ObjectInfo{}, false, err
		}
		if res.Found {
			return res.Object, true, nil
		}
	}
	return ObjectInfo{}, false, nil
}

// ResolveAll resolves every reference. The result is keyed by the index of
// the reference in refs; unresolved references have no entry.
func (r *Resolver) ResolveAll(ctx context.Context, refs []document.ObjectRef) (map[int]ObjectInfo, error) {
	out := make(map[int]ObjectInfo, len(refs))
	for i, ref := range refs {
		obj, ok, err := r.Resolve(ctx, ref)
		if err != nil {
			return nil, fmt.Errorf("resolve %s: %w", ref.Object.Name, err)
		}
		if ok {
			out[i] = obj
		}
	}
	return out, nil
}

func (r *Resolver) candidateSchemas(schema string) []string {
	if schema != "" {
		return []string{schema}
	}
	if r.naming == NamingSystem && len(r.libraryList) > 0 {
		return r.libraryList
	}
	return []string{r.defaultSchema}
}

func (r *Resolver) find(ctx context.Context, schema, name string) (Resolution, error) {
	if r.cache != nil {
		if res, ok := r.cache.Get(schema, name); ok {
			return res, nil
		}
	}

	objects, err := r.lookup.FindObjects(ctx, Normalize(schema), Normalize(name))
	if err != nil {
		return Resolution{}, fmt.Errorf("lookup %s: %w", NewKey(schema, name), err)
	}

	var res Resolution
	if len(objects) > 0 {
		res = Resolution{Object: objects[0], Found: true}
	}
	if r.cache != nil {
		r.cache.Put(schema, name, res)
	}
	return res, nil
}
