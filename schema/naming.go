package schema

import (
	"strings"
	"unicode"

	pluralizer "github.com/gertd/go-pluralize"
)

var pluralizeClient = pluralizer.NewClient()

// tableNameFor derives the default table name for a struct type: snake_case,
// pluralized.
func tableNameFor(structName string) string {
	return pluralizeClient.Plural(toSnakeCase(structName))
}

// toSnakeCase converts Go field and type names to snake_case column names.
// Acronym runs collapse (UserID -> user_id, HTTPCode -> http_code).
func toSnakeCase(name string) string {
	if name == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(name) + 4)

	runes := []rune(name)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			if unicode.IsLower(prev) || unicode.IsDigit(prev) {
				b.WriteByte('_')
			} else if unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
