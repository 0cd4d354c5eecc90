package generator

import (
	"context"
	"fmt"
	"sort"
)

// KindTable is the child kind generating a migration for one table
const KindTable = "table"

// ChildGenerator generates the artifact of one named child
type ChildGenerator interface {
	Generate(ctx context.Context, g *Generator, name string) (string, error)
}

// ChildGeneratorFunc adapts a function to ChildGenerator
type ChildGeneratorFunc func(ctx context.Context, g *Generator, name string) (string, error)

// Generate calls fn
func (fn ChildGeneratorFunc) Generate(ctx context.Context, g *Generator, name string) (string, error) {
	return fn(ctx, g, name)
}

// Registry maps child kind names to their generators
type Registry struct {
	kinds map[string]ChildGenerator
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]ChildGenerator)}
}

// DefaultRegistry returns a registry with every built-in child kind
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(KindTable, ChildGeneratorFunc(func(ctx context.Context, g *Generator, name string) (string, error) {
		return g.GenerateTable(ctx, name)
	}))
	return r
}

// Register adds or replaces the generator for kind
func (r *Registry) Register(kind string, cg ChildGenerator) {
	r.kinds[kind] = cg
}

// Lookup returns the generator registered for kind
func (r *Registry) Lookup(kind string) (ChildGenerator, error) {
	cg, ok := r.kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q (supported: %v)", ErrUnsupportedChildKind, kind, r.Kinds())
	}
	return cg, nil
}

// Kinds returns the registered kind names in sorted order
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.kinds))
	for kind := range r.kinds {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
