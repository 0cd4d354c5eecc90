package schema

// Table represents a database table ready to be rendered as a migration
type Table struct {
	Name    string
	Columns []Column
	Uniques []Unique
}

// Column represents a normalized table column.
// Optional attributes are nil/empty when the catalog did not report them.
type Column struct {
	Name               string
	Type               string
	Length             *string
	Enum               []string
	Unsigned           bool
	Zerofill           bool
	IsPrimary          bool
	IsUnique           bool
	IsNullable         bool
	IsGenerated        bool
	GenerationStrategy *string
	Default            *string
	OnUpdate           *string
}

// IndexGroup is the ordered list of columns participating in one index
type IndexGroup struct {
	Name    string
	Columns []string
}

// Unique represents an explicit unique constraint
type Unique struct {
	Name        string
	ColumnNames []string
}
