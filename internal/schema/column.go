package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tordrt/migrationgen/internal/db"
)

const (
	keyPrimary = "PRI"
	keyUnique  = "UNI"

	extraAutoIncrement = "auto_increment"

	// CurrentTimestamp is the expression emitted for timestamp defaults and
	// on-update clauses
	CurrentTimestamp = "CURRENT_TIMESTAMP"
	// NullDefault is the expression emitted when a column has no default
	NullDefault = "NULL"
	// StrategyIncrement is the generation strategy of auto_increment columns
	StrategyIncrement = "increment"
)

var (
	rgxCurrentTimestamp = regexp.MustCompile(`(?i)^current_timestamp(\(\d*\))?$`)
	rgxOnUpdate         = regexp.MustCompile(`(?i)\bon update current_timestamp\b`)
)

// BuildColumn normalizes one SHOW COLUMNS row
func BuildColumn(row db.ColumnRow) (Column, error) {
	if row.Field == "" {
		return Column{}, fmt.Errorf("column with type %q has no name", row.Type)
	}

	col := Column{Name: row.Field}

	typ, err := parseColumnType(row.Type)
	if err != nil {
		return Column{}, fmt.Errorf("column %s: %w", row.Field, err)
	}
	col.Type = typ.base
	col.Unsigned = typ.unsigned
	col.Zerofill = typ.zerofill

	if typ.hasArg {
		if typ.base == "enum" {
			values, err := extractEnumValues(typ.arg)
			if err != nil {
				return Column{}, fmt.Errorf("column %s: %w", row.Field, err)
			}
			col.Enum = values
		} else {
			length := typ.arg
			col.Length = &length
		}
	}

	switch row.Key {
	case keyPrimary:
		col.IsPrimary = true
	case keyUnique:
		col.IsUnique = true
	}

	if row.Extra == extraAutoIncrement {
		strategy := StrategyIncrement
		col.IsGenerated = true
		col.GenerationStrategy = &strategy
	}

	if rgxOnUpdate.MatchString(row.Extra) {
		onUpdate := CurrentTimestamp
		col.OnUpdate = &onUpdate
	}

	def := defaultExpression(row)
	col.Default = &def

	col.IsNullable = row.Null == "YES"

	return col, nil
}

// indexed reports whether the column already carries a key flag that an
// index of its own would duplicate
func (c Column) indexed() bool {
	return c.IsPrimary || c.IsUnique
}

func defaultExpression(row db.ColumnRow) string {
	if !row.Default.Valid {
		return NullDefault
	}

	value := row.Default.String
	if rgxCurrentTimestamp.MatchString(value) {
		return CurrentTimestamp
	}
	if isNumericLiteral(value) {
		return value
	}

	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	return `"` + escaped + `"`
}

func isNumericLiteral(s string) bool {
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	// Decimal defaults such as 0.00; reject Inf/NaN spellings that ParseFloat accepts
	if _, err := strconv.ParseFloat(s, 64); err == nil {
		return strings.IndexFunc(s, func(r rune) bool {
			return (r < '0' || r > '9') && r != '.' && r != '-' && r != '+' && r != 'e' && r != 'E'
		}) == -1
	}
	return false
}

type columnType struct {
	base     string
	arg      string
	hasArg   bool
	unsigned bool
	zerofill bool
}

// parseColumnType splits a raw type such as "int(10) unsigned" or
// "enum('a','b')" into its base, parenthesized argument and modifiers
func parseColumnType(raw string) (columnType, error) {
	var typ columnType

	rest := raw
	if open := strings.Index(raw, "("); open != -1 {
		end := strings.LastIndex(raw, ")")
		if end < open {
			return typ, fmt.Errorf("unterminated type argument: %s", raw)
		}
		typ.base = raw[:open]
		typ.arg = raw[open+1 : end]
		typ.hasArg = true
		rest = raw[end+1:]
	} else {
		fields := strings.Fields(raw)
		if len(fields) == 0 {
			return typ, fmt.Errorf("empty column type")
		}
		typ.base = fields[0]
		rest = strings.TrimPrefix(strings.TrimSpace(raw), fields[0])
	}

	for _, modifier := range strings.Fields(rest) {
		switch strings.ToLower(modifier) {
		case "unsigned":
			typ.unsigned = true
		case "zerofill":
			typ.zerofill = true
		}
	}

	typ.base = strings.TrimSpace(typ.base)
	if typ.base == "" {
		return typ, fmt.Errorf("missing base type: %s", raw)
	}

	return typ, nil
}

// extractEnumValues parses the argument of an enum type, e.g. 'a','b','it''s'
func extractEnumValues(list string) ([]string, error) {
	var values []string

	i := 0
	for {
		if i >= len(list) || list[i] != '\'' {
			return nil, fmt.Errorf("invalid enum value list: %s", list)
		}
		i++

		var value strings.Builder
		closed := false
		for i < len(list) {
			ch := list[i]
			if ch == '\'' {
				if i+1 < len(list) && list[i+1] == '\'' {
					value.WriteByte('\'')
					i += 2
					continue
				}
				closed = true
				i++
				break
			}
			value.WriteByte(ch)
			i++
		}
		if !closed {
			return nil, fmt.Errorf("unterminated enum value in list: %s", list)
		}
		values = append(values, value.String())

		if i == len(list) {
			return values, nil
		}
		if list[i] != ',' {
			return nil, fmt.Errorf("invalid enum value list: %s", list)
		}
		i++
	}
}
