package crud

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Helpers for hooks that inspect raw input before it is decoded. Input comes
// from JSON bodies (float64, json.Number), forms and query strings (string)
// or Go callers (typed values), so each helper accepts all of them.

// Flag reports whether values[key] holds a true boolean.
func Flag(values map[string]any, key string) bool {
	switch v := values[key].(type) {
	case bool:
		return v
	case *bool:
		return v != nil && *v
	case string:
		b, _ := strconv.ParseBool(strings.TrimSpace(v))
		return b
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	}
	return false
}

// ID reads an integer id from values[key]. ok is false when the key is
// absent, nil or not an integer.
func ID(values map[string]any, key string) (int64, bool) {
	return toInt64(values[key])
}

func toInt64(raw any) (int64, bool) {
	switch v := raw.(type) {
	case int64:
		return v, true
	case *int64:
		if v == nil {
			return 0, false
		}
		return *v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	}
	return 0, false
}

// Int reads an integer from values[key], returning def when it is absent or
// not an integer.
func Int(values map[string]any, key string, def int) int {
	if n, ok := toInt64(values[key]); ok {
		return int(n)
	}
	return def
}

// Money reads a decimal from values[key]. present is false when the key is
// absent; an explicit nil yields (nil, true, nil).
func Money(values map[string]any, key string) (d *decimal.Decimal, present bool, err error) {
	raw, present := values[key]
	if !present || raw == nil {
		return nil, present, nil
	}
	var v decimal.Decimal
	switch x := raw.(type) {
	case decimal.Decimal:
		v = x
	case *decimal.Decimal:
		if x == nil {
			return nil, true, nil
		}
		v = *x
	case string:
		v, err = decimal.NewFromString(strings.TrimSpace(x))
	case float64:
		v = decimal.NewFromFloat(x)
	case int:
		v = decimal.NewFromInt(int64(x))
	case int64:
		v = decimal.NewFromInt(x)
	case json.Number:
		v, err = decimal.NewFromString(x.String())
	default:
		err = fmt.Errorf("unsupported type %T", raw)
	}
	if err != nil {
		return nil, true, errInvalidValue
	}
	return &v, true, nil
}
