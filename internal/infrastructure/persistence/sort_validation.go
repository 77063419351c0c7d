package persistence

import (
	"strings"
)

// ValidateSortOrder normalizes a sort direction to "asc" or "desc".
// Anything other than a case-insensitive "desc" is ascending.
func ValidateSortOrder(direction string) string {
	if strings.EqualFold(strings.TrimSpace(direction), "desc") {
		return "desc"
	}
	return "asc"
}

// ValidateSortField maps a public sort field to its column through the
// whitelist. Empty and unknown fields return defaultColumn.
func ValidateSortField(field string, columns map[string]string, defaultColumn string) string {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" {
		return defaultColumn
	}
	if column, ok := columns[trimmed]; ok {
		return column
	}
	return defaultColumn
}

// SortColumns builds an identity whitelist for fields whose public name is
// the column name.
func SortColumns(fields ...string) map[string]string {
	m := make(map[string]string, len(fields))
	for _, f := range fields {
		m[f] = f
	}
	return m
}
