package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/stephenafamo/scan"
	"github.com/stephenafamo/scan/stdscan"
)

// ColumnRow is one row of SHOW COLUMNS
type ColumnRow struct {
	Field   string         `db:"Field"`
	Type    string         `db:"Type"`
	Null    string         `db:"Null"`
	Key     string         `db:"Key"`
	Default sql.NullString `db:"Default"`
	Extra   string         `db:"Extra"`
}

// IndexRow is one column of one index, as reported by the catalog
type IndexRow struct {
	KeyName    string `db:"Key_name"`
	ColumnName string `db:"Column_name"`
	SeqInIndex int    `db:"Seq_in_index"`
}

// Catalog reads raw structure metadata from the active schema
type Catalog interface {
	TableNames(ctx context.Context) ([]string, error)
	Columns(ctx context.Context, table string) ([]ColumnRow, error)
	Indexes(ctx context.Context, table string) ([]IndexRow, error)
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// MySQLCatalog reads the catalog of one MySQL schema over a single session
type MySQLCatalog struct {
	conn       queryer
	schemaName string
}

// NewMySQLCatalog creates a catalog reader bound to the client's session
func NewMySQLCatalog(client *MySQLClient, schemaName string) *MySQLCatalog {
	return &MySQLCatalog{
		conn:       client.GetConn(),
		schemaName: schemaName,
	}
}

// TableNames returns the base tables of the schema in name order
func (c *MySQLCatalog) TableNames(ctx context.Context) ([]string, error) {
	query := `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ? AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`

	tables, err := stdscan.All(ctx, c.conn, scan.SingleColumnMapper[string], query, c.schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}

	return tables, nil
}

// Columns describes the columns of a table in ordinal order
func (c *MySQLCatalog) Columns(ctx context.Context, table string) ([]ColumnRow, error) {
	quoted, err := QuoteIdentifier(table)
	if err != nil {
		return nil, err
	}

	rows, err := stdscan.All(ctx, c.conn, scan.StructMapper[ColumnRow](), "SHOW COLUMNS FROM "+quoted)
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", table, err)
	}

	return rows, nil
}

// showIndexRow is the subset of SHOW INDEX read by the catalog. Column_name
// is NULL for functional key parts.
type showIndexRow struct {
	KeyName    string         `db:"Key_name"`
	ColumnName sql.NullString `db:"Column_name"`
	SeqInIndex int            `db:"Seq_in_index"`
}

// Indexes lists index columns of a table in the order the server reports
// them: indexes in table definition order, columns by position within the
// index. Functional key parts are skipped.
func (c *MySQLCatalog) Indexes(ctx context.Context, table string) ([]IndexRow, error) {
	quoted, err := QuoteIdentifier(table)
	if err != nil {
		return nil, err
	}

	// SHOW INDEX returns more columns than we read, and which ones varies
	// between MySQL and MariaDB versions
	ctx = context.WithValue(ctx, scan.CtxKeyAllowUnknownColumns, true)

	rows, err := stdscan.All(ctx, c.conn, scan.StructMapper[showIndexRow](), "SHOW INDEX FROM "+quoted)
	if err != nil {
		return nil, fmt.Errorf("failed to list indexes of %s: %w", table, err)
	}

	indexes := make([]IndexRow, 0, len(rows))
	for _, row := range rows {
		if !row.ColumnName.Valid {
			continue
		}
		indexes = append(indexes, IndexRow{
			KeyName:    row.KeyName,
			ColumnName: row.ColumnName.String,
			SeqInIndex: row.SeqInIndex,
		})
	}

	return indexes, nil
}
