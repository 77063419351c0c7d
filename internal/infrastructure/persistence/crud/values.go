package crud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"gorm.io/gorm/schema"
)

var errInvalidValue = errors.New("Invalid value.")

// normalizeInput copies values with snake_case keys.
func normalizeInput(values map[string]any) map[string]any {
	if values == nil {
		return map[string]any{}
	}
	return shared.NormalizeKeys(values)
}

// columnField returns the writable schema field for a column, or nil.
func columnField(sch *schema.Schema, column string, creating bool) *schema.Field {
	f, ok := sch.FieldsByDBName[column]
	if !ok {
		return nil
	}
	if creating && !f.Creatable || !creating && !f.Updatable {
		return nil
	}
	return f
}

// decodeRow builds a new *T from column values. Keys that are not columns
// are ignored; values that cannot be converted to the column type produce a
// validation error keyed by column.
func decodeRow[T any](ctx context.Context, sch *schema.Schema, values map[string]any) (*T, error) {
	row := new(T)
	rv := reflect.ValueOf(row).Elem()
	errs := map[string]string{}

	for column, v := range values {
		f := columnField(sch, column, true)
		if f == nil || f.PrimaryKey {
			continue
		}
		val, err := convertValue(f, v)
		if err != nil {
			errs[column] = err.Error()
			continue
		}
		f.ReflectValueOf(ctx, rv).Set(val)
	}
	if len(errs) > 0 {
		return nil, shared.NewValidation("One or more fields are invalid.", errs)
	}
	return row, nil
}

// updateMap converts column values into a typed column map for
// gorm's Updates.
func updateMap(sch *schema.Schema, values map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(values))
	errs := map[string]string{}

	for column, v := range values {
		f := columnField(sch, column, false)
		if f == nil || f.PrimaryKey {
			continue
		}
		val, err := convertValue(f, v)
		if err != nil {
			errs[column] = err.Error()
			continue
		}
		out[column] = val.Interface()
	}
	if len(errs) > 0 {
		return nil, shared.NewValidation("One or more fields are invalid.", errs)
	}
	return out, nil
}

// convertValue converts an input value (typically decoded from JSON) into
// the Go type of field f.
func convertValue(f *schema.Field, v any) (reflect.Value, error) {
	target := reflect.New(f.FieldType)
	if v == nil {
		if !nullable(f.FieldType) {
			return reflect.Value{}, fmt.Errorf("%s cannot be null.", f.DBName)
		}
		return target.Elem(), nil
	}

	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(f.FieldType) {
		return rv, nil
	}
	if rv.Kind() == reflect.Ptr && !rv.IsNil() && rv.Elem().Type().AssignableTo(f.FieldType) {
		return rv.Elem(), nil
	}

	if s, ok := v.(string); ok {
		if val, handled, err := parseScalar(f.FieldType, s); handled {
			if err != nil {
				return reflect.Value{}, err
			}
			return val, nil
		}
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return reflect.Value{}, errInvalidValue
	}
	if err := json.Unmarshal(raw, target.Interface()); err != nil {
		if f.IndirectFieldType.Kind() == reflect.String {
			return stringValue(f.FieldType, strings.Trim(string(raw), `"`)), nil
		}
		return reflect.Value{}, errInvalidValue
	}
	return target.Elem(), nil
}

func nullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Map, reflect.Interface:
		return true
	}
	return false
}

var timeType = reflect.TypeOf(time.Time{})

// parseScalar handles string input for bool, numeric and time columns, which
// arrive as strings from query strings and form posts. handled is false for
// every other type.
func parseScalar(t reflect.Type, s string) (reflect.Value, bool, error) {
	base := t
	if base.Kind() == reflect.Ptr {
		base = base.Elem()
	}

	var parsed reflect.Value
	switch {
	case base == timeType:
		ts, err := parseTime(s)
		if err != nil {
			return reflect.Value{}, true, errInvalidValue
		}
		parsed = reflect.ValueOf(ts)
	case base.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return reflect.Value{}, true, errInvalidValue
		}
		parsed = reflect.ValueOf(b).Convert(base)
	case base.Kind() >= reflect.Int && base.Kind() <= reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return reflect.Value{}, true, errInvalidValue
		}
		parsed = reflect.ValueOf(n).Convert(base)
	case base.Kind() >= reflect.Uint && base.Kind() <= reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return reflect.Value{}, true, errInvalidValue
		}
		parsed = reflect.ValueOf(n).Convert(base)
	case base.Kind() == reflect.Float32 || base.Kind() == reflect.Float64:
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return reflect.Value{}, true, errInvalidValue
		}
		parsed = reflect.ValueOf(n).Convert(base)
	default:
		return reflect.Value{}, false, nil
	}

	if t.Kind() == reflect.Ptr {
		ptr := reflect.New(base)
		ptr.Elem().Set(parsed)
		return ptr, true, nil
	}
	return parsed, true, nil
}

func stringValue(t reflect.Type, s string) reflect.Value {
	if t.Kind() == reflect.Ptr {
		ptr := reflect.New(t.Elem())
		ptr.Elem().SetString(s)
		return ptr
	}
	v := reflect.New(t).Elem()
	v.SetString(s)
	return v
}

// parseTime accepts RFC 3339 timestamps and plain dates.
func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}

// operand converts a query operand for column field f: strings from query
// strings and numbers from JSON become the column's Go type, pointers are
// dereferenced and nil stays nil. Unknown columns pass the value through.
func operand(f *schema.Field, v any) (any, error) {
	if v == nil || f == nil {
		return v, nil
	}
	val, err := convertValue(f, v)
	if err != nil {
		return nil, err
	}
	if val.Kind() == reflect.Ptr {
		if val.IsNil() {
			return nil, nil
		}
		val = val.Elem()
	}
	return val.Interface(), nil
}
