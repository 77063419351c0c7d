package shared

import (
	"strings"
	"unicode"
)

// CamelToSnake converts "defaultCurrencyCode" to "default_currency_code".
// Input that is already snake_case is returned unchanged.
func CamelToSnake(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SnakeToCamel converts "default_currency_code" to "defaultCurrencyCode".
func SnakeToCamel(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	upper := false
	for _, r := range s {
		if r == '_' {
			upper = true
			continue
		}
		if upper && unicode.IsLower(r) {
			r = unicode.ToUpper(r)
		} else if upper {
			b.WriteByte('_')
		}
		upper = false
		b.WriteRune(r)
	}
	if upper {
		b.WriteByte('_')
	}
	return b.String()
}

// NormalizeKeys returns a copy of values with every key in snake_case.
// When both spellings of a key are present the snake_case one wins.
func NormalizeKeys(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		snake := CamelToSnake(k)
		if _, exists := out[snake]; exists && snake != k {
			continue
		}
		out[snake] = v
	}
	return out
}
