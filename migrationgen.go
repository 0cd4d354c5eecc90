// Package migrationgen generates TypeORM migrations from a live MySQL or
// MariaDB schema.
//
// For every table the generator reads the column and index catalog and writes
// one migration class that recreates the table in up() and drops it in down().
// Files are named <timestampMillis>-<PascalCaseTable>.ts.
//
// # Quick Start
//
//	paths, err := migrationgen.GenerateAll(ctx, &migrationgen.Options{
//		Username:  "root",
//		Host:      "127.0.0.1",
//		Port:      3306,
//		Database:  "shop",
//		OutputDir: "src/migrations",
//	})
//
// A single table:
//
//	path, err := migrationgen.GenerateTable(ctx, "users", opts)
//
// Tables are generated one after another over a single database session.
// Generation stops at the first failure; artifacts written before it remain.
package migrationgen

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/afero"
	"github.com/tordrt/migrationgen/internal/config"
	"github.com/tordrt/migrationgen/internal/db"
	"github.com/tordrt/migrationgen/internal/formatter"
	"github.com/tordrt/migrationgen/internal/generator"
)

// Errors reported by the generation functions, for use with errors.Is
var (
	ErrConnection           = generator.ErrConnection
	ErrIntrospection        = generator.ErrIntrospection
	ErrModel                = generator.ErrModel
	ErrUnsupportedChildKind = generator.ErrUnsupportedChildKind
	ErrArtifactWrite        = generator.ErrArtifactWrite
)

// KindTable is the default child kind
const KindTable = generator.KindTable

// Options configures a generation run.
type Options struct {
	// Connection credentials. Port defaults to 3306 and Host to 127.0.0.1.
	Username string
	Password string
	Host     string
	Port     int
	// Database is the schema to introspect
	Database string

	// OutputDir is the existing directory receiving the migration files
	OutputDir string

	// ExcludeTables lists tables skipped by GenerateAll.
	// Example: []string{"migrations", "typeorm_metadata"}
	ExcludeTables []string

	// Fs is the file system artifacts are written to. Defaults to the OS file system.
	Fs afero.Fs

	// Logger receives progress events. Defaults to discarding them.
	Logger *slog.Logger
}

// GenerateAll writes one migration per table of the schema, in catalog order.
// It returns the paths written, including those written before a failure.
func GenerateAll(ctx context.Context, opts *Options) ([]string, error) {
	var paths []string
	err := run(ctx, opts, func(g *generator.Generator) error {
		var err error
		paths, err = g.GenerateAll(ctx, opts.ExcludeTables)
		return err
	})
	return paths, err
}

// GenerateTable writes the migration of a single table
func GenerateTable(ctx context.Context, name string, opts *Options) (string, error) {
	return GenerateChild(ctx, KindTable, name, opts)
}

// GenerateChild writes the migration of a named child of the given kind.
// An unsupported kind is rejected before connecting.
func GenerateChild(ctx context.Context, kind, name string, opts *Options) (string, error) {
	if _, err := generator.DefaultRegistry().Lookup(kind); err != nil {
		return "", err
	}

	var path string
	err := run(ctx, opts, func(g *generator.Generator) error {
		var err error
		path, err = g.GenerateChild(ctx, kind, name)
		return err
	})
	return path, err
}

// run owns the database session of one generation run. The session is
// released on every return path.
func run(ctx context.Context, opts *Options, fn func(g *generator.Generator) error) error {
	if opts == nil {
		return fmt.Errorf("options are required")
	}

	cfg := opts.config()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}

	f, err := formatter.NewTypeORMFormatter()
	if err != nil {
		return err
	}

	client, err := db.NewMySQLClient(ctx, cfg.MySQL())
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConnection, err)
	}
	defer func() {
		if cerr := client.Close(); cerr != nil {
			logger.Warn("failed to close MySQL connection", "error", cerr)
		}
	}()

	logger.Debug("connected", "host", cfg.Host, "port", cfg.Port, "database", cfg.Database)

	g := generator.New(
		db.NewMySQLCatalog(client, cfg.Database),
		formatter.NewArtifactWriter(fs, cfg.OutputDirectory, f),
		generator.WithLogger(logger),
	)

	return fn(g)
}

func (o *Options) config() *config.Config {
	cfg := &config.Config{
		Username:        o.Username,
		Password:        o.Password,
		Host:            o.Host,
		Port:            o.Port,
		Database:        o.Database,
		OutputDirectory: o.OutputDir,
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 3306
	}
	return cfg
}
