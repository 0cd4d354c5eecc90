package db

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxIdentifierLength is the MySQL limit for table names
const maxIdentifierLength = 64

// QuoteIdentifier validates a table name and wraps it in backticks so it can
// be interpolated into statements that do not accept placeholders.
func QuoteIdentifier(name string) (string, error) {
	if name == "" {
		return "", fmt.Errorf("table name cannot be empty")
	}
	if !utf8.ValidString(name) {
		return "", fmt.Errorf("table name is not valid UTF-8: %q", name)
	}
	if utf8.RuneCountInString(name) > maxIdentifierLength {
		return "", fmt.Errorf("table name exceeds %d characters: %s", maxIdentifierLength, name)
	}
	if strings.ContainsRune(name, 0) {
		return "", fmt.Errorf("table name contains a NUL byte: %q", name)
	}

	return "`" + strings.ReplaceAll(name, "`", "``") + "`", nil
}
