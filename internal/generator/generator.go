// Package generator drives the migration pipeline for one table or for every
// table of a schema.
//
// All work runs sequentially on the single catalog session handed to the
// Generator; tables are never generated concurrently.
package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tordrt/migrationgen/internal/db"
	"github.com/tordrt/migrationgen/internal/migration"
	"github.com/tordrt/migrationgen/internal/schema"
)

// Sink stores a rendered migration and returns its location
type Sink interface {
	Write(d *migration.Descriptor) (string, error)
}

// Generator builds and writes migrations from a catalog
type Generator struct {
	catalog  db.Catalog
	sink     Sink
	clock    Clock
	registry *Registry
	logger   *slog.Logger
}

// Option configures a Generator
type Option func(*Generator)

// WithClock replaces the timestamp source
func WithClock(c Clock) Option {
	return func(g *Generator) { g.clock = c }
}

// WithRegistry replaces the child kind registry
func WithRegistry(r *Registry) Option {
	return func(g *Generator) { g.registry = r }
}

// WithLogger sets the logger used for progress events
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// New creates a Generator reading from catalog and writing to sink
func New(catalog db.Catalog, sink Sink, opts ...Option) *Generator {
	g := &Generator{
		catalog:  catalog,
		sink:     sink,
		clock:    NewMonotonicClock(),
		registry: DefaultRegistry(),
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateTable writes the migration of one table and returns its path
func (g *Generator) GenerateTable(ctx context.Context, name string) (string, error) {
	ts := g.clock.NowMillis()
	g.logger.Debug("introspecting table", "table", name, "timestamp", ts)

	table, err := schema.BuildTable(ctx, g.catalog, name)
	if err != nil {
		if errors.Is(err, schema.ErrMalformed) {
			return "", fmt.Errorf("%w: %w", ErrModel, err)
		}
		return "", fmt.Errorf("%w: %w", ErrIntrospection, err)
	}

	d := migration.NewDescriptor(table, ts)

	path, err := g.sink.Write(d)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrArtifactWrite, err)
	}

	g.logger.Info("generated migration",
		"table", name,
		"class", d.ClassName,
		"columns", len(table.Columns),
		"uniques", len(table.Uniques),
		"path", path)

	return path, nil
}

// GenerateChild writes the migration of a named child of the given kind
func (g *Generator) GenerateChild(ctx context.Context, kind, name string) (string, error) {
	cg, err := g.registry.Lookup(kind)
	if err != nil {
		return "", err
	}
	return cg.Generate(ctx, g, name)
}

// GenerateAll writes one migration per table of the schema, in catalog order,
// skipping the tables named in exclude.
//
// Generation stops at the first failing table. The paths written before the
// failure are returned together with the error.
func (g *Generator) GenerateAll(ctx context.Context, exclude []string) ([]string, error) {
	names, err := g.catalog.TableNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIntrospection, err)
	}

	names = filterExcludedTables(names, exclude)
	g.logger.Debug("generating schema", "tables", len(names))

	paths := make([]string, 0, len(names))
	for _, name := range names {
		path, err := g.GenerateTable(ctx, name)
		if err != nil {
			return paths, fmt.Errorf("failed to generate table %s: %w", name, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

func filterExcludedTables(names, excludeList []string) []string {
	if len(excludeList) == 0 {
		return names
	}

	excludeSet := make(map[string]bool)
	for _, tableName := range excludeList {
		excludeSet[tableName] = true
	}

	filtered := make([]string, 0, len(names))
	for _, name := range names {
		if !excludeSet[name] {
			filtered = append(filtered, name)
		}
	}
	return filtered
}
