package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/tordrt/migrationgen/internal/db"
)

var (
	// ErrCatalog marks failures of catalog queries
	ErrCatalog = errors.New("catalog query failed")
	// ErrMalformed marks catalog rows that cannot be normalized
	ErrMalformed = errors.New("malformed catalog row")
)

// BuildTable reads the columns and indexes of one table from the catalog and
// normalizes them into a Table
func BuildTable(ctx context.Context, catalog db.Catalog, name string) (*Table, error) {
	table := &Table{Name: name}

	columnRows, err := catalog.Columns(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalog, err)
	}

	// Columns already flagged primary or unique
	indexed := make(map[string]bool)
	seen := make(map[string]bool, len(columnRows))

	for _, row := range columnRows {
		col, err := BuildColumn(row)
		if err != nil {
			return nil, fmt.Errorf("%w: table %s: %w", ErrMalformed, name, err)
		}
		if seen[col.Name] {
			return nil, fmt.Errorf("%w: table %s: duplicate column %s", ErrMalformed, name, col.Name)
		}
		seen[col.Name] = true

		if col.indexed() {
			indexed[col.Name] = true
		}
		table.Columns = append(table.Columns, col)
	}

	indexRows, err := catalog.Indexes(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCatalog, err)
	}

	table.Uniques = BuildUniques(GroupIndexes(indexRows), indexed)

	return table, nil
}
