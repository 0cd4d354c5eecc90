package schema

import "github.com/tordrt/migrationgen/internal/db"

// GroupIndexes groups index rows by index name. Groups keep the order in
// which their names were first seen and rows keep their order within a group.
func GroupIndexes(rows []db.IndexRow) []IndexGroup {
	var groups []IndexGroup
	positions := make(map[string]int)

	for _, row := range rows {
		pos, ok := positions[row.KeyName]
		if !ok {
			pos = len(groups)
			positions[row.KeyName] = pos
			groups = append(groups, IndexGroup{Name: row.KeyName})
		}
		groups[pos].Columns = append(groups[pos].Columns, row.ColumnName)
	}

	return groups
}

// BuildUniques turns index groups into explicit unique constraints.
//
// A single-column group whose column is already flagged primary or unique is
// skipped, so a primary key is never declared again as a unique constraint.
// Groups spanning several columns are always kept.
func BuildUniques(groups []IndexGroup, indexed map[string]bool) []Unique {
	var uniques []Unique

	for _, group := range groups {
		if len(group.Columns) == 0 {
			continue
		}
		if len(group.Columns) > 1 || !indexed[group.Columns[0]] {
			columns := make([]string, len(group.Columns))
			copy(columns, group.Columns)
			uniques = append(uniques, Unique{Name: group.Name, ColumnNames: columns})
		}
	}

	return uniques
}
