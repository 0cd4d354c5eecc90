package mocks

import (
	"context"
	"fmt"

	"github.com/tordrt/migrationgen/internal/db"
)

// MockTable is the catalog content of one table
type MockTable struct {
	Columns []db.ColumnRow
	Indexes []db.IndexRow
}

// MockCatalog is an in-memory implementation of db.Catalog.
// Tables are listed in the order of Names.
type MockCatalog struct {
	Names  []string
	Tables map[string]MockTable

	// Fail makes any query touching the named table return an error
	Fail map[string]error
	// ListErr is returned by TableNames when set
	ListErr error

	// Calls records every query in the order it was issued
	Calls []string
}

// TableNames returns the mock table names
func (m *MockCatalog) TableNames(_ context.Context) ([]string, error) {
	m.Calls = append(m.Calls, "tables")
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	return m.Names, nil
}

// Columns returns the mock columns of a table
func (m *MockCatalog) Columns(_ context.Context, table string) ([]db.ColumnRow, error) {
	m.Calls = append(m.Calls, "columns:"+table)
	t, err := m.lookup(table)
	if err != nil {
		return nil, err
	}
	return t.Columns, nil
}

// Indexes returns the mock indexes of a table
func (m *MockCatalog) Indexes(_ context.Context, table string) ([]db.IndexRow, error) {
	m.Calls = append(m.Calls, "indexes:"+table)
	t, err := m.lookup(table)
	if err != nil {
		return nil, err
	}
	return t.Indexes, nil
}

func (m *MockCatalog) lookup(table string) (MockTable, error) {
	if err, ok := m.Fail[table]; ok {
		return MockTable{}, err
	}
	t, ok := m.Tables[table]
	if !ok {
		return MockTable{}, fmt.Errorf("table %s doesn't exist", table)
	}
	return t, nil
}
