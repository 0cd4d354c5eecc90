package migration

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const classPrefix = "Create"

// PascalCase converts a table name such as "user_accounts" to "UserAccounts".
// Words are split on any non alphanumeric character. A word written entirely
// in upper case is lowered first so "ORDER_ITEMS" becomes "OrderItems".
func PascalCase(name string) string {
	words := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	titler := cases.Title(language.Und, cases.NoLower)

	var b strings.Builder
	for _, word := range words {
		if strings.ToUpper(word) == word {
			word = strings.ToLower(word)
		}
		b.WriteString(titler.String(word))
	}
	return b.String()
}

// ClassName returns the migration class name for a table generated at ts
func ClassName(table string, ts int64) string {
	return classPrefix + PascalCase(table) + strconv.FormatInt(ts, 10)
}

// FileName returns the artifact name for a table generated at ts
func FileName(table string, ts int64, ext string) string {
	return strconv.FormatInt(ts, 10) + "-" + PascalCase(table) + ext
}
