// Package migration turns a normalized table into the ordered steps of a
// create/drop migration.
package migration

import "github.com/tordrt/migrationgen/internal/schema"

// StepKind identifies the operation performed by a Step
type StepKind string

const (
	StepCreateTable StepKind = "createTable"
	StepDropIndex   StepKind = "dropIndex"
	StepDropTable   StepKind = "dropTable"
)

// Symbols imported by every migration
var baseImports = []string{"MigrationInterface", "QueryRunner", "Table", "TableColumn"}

const uniqueImport = "TableUnique"

// Step is one operation of the up or down direction
type Step struct {
	Kind StepKind
	// Table is set for create steps
	Table *schema.Table
	// TableName is the table the step operates on
	TableName string
	// IndexName is set for drop-index steps
	IndexName string
}

// Descriptor is a complete migration for one table
type Descriptor struct {
	ClassName string
	Timestamp int64
	TableName string
	Imports   []string
	Up        []Step
	Down      []Step
}

// NewDescriptor builds the migration for table as generated at ts
func NewDescriptor(table *schema.Table, ts int64) *Descriptor {
	d := &Descriptor{
		ClassName: ClassName(table.Name, ts),
		Timestamp: ts,
		TableName: table.Name,
	}

	d.Imports = append(d.Imports, baseImports...)
	if len(table.Uniques) > 0 {
		d.Imports = append(d.Imports, uniqueImport)
	}

	d.Up = []Step{{Kind: StepCreateTable, Table: table, TableName: table.Name}}

	for _, unique := range table.Uniques {
		d.Down = append(d.Down, Step{Kind: StepDropIndex, TableName: table.Name, IndexName: unique.Name})
	}
	d.Down = append(d.Down, Step{Kind: StepDropTable, TableName: table.Name})

	return d
}
