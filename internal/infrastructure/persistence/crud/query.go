package crud

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/cmlibra71/keenan-group-channels/internal/infrastructure/persistence"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike escapes LIKE wildcards so v matches literally.
func escapeLike(v string) string {
	return likeEscaper.Replace(v)
}

// filterClauses turns whitelisted filters into where expressions. Keys are
// visited in sorted order so the generated SQL is stable.
func (s *Service[T]) filterClauses(filters map[string]shared.FilterValue) ([]clause.Expression, error) {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var exprs []clause.Expression
	errs := map[string]string{}
	for _, key := range keys {
		column, ok := s.cfg.FilterColumns[shared.FilterField(key)]
		if !ok {
			continue
		}
		f := filters[key]
		col := s.column(column)
		field := s.sch.LookUpField(column)

		if f.Type == shared.FilterIn {
			items, ok := sliceValues(f.Value)
			if !ok {
				continue
			}
			values := make([]any, 0, len(items))
			for _, item := range items {
				v, err := operand(field, item)
				if err != nil {
					errs[key] = err.Error()
					break
				}
				values = append(values, v)
			}
			exprs = append(exprs, clause.IN{Column: col, Values: values})
			continue
		}

		if f.Type == shared.FilterLike {
			pattern := "%" + escapeLike(fmt.Sprint(f.Value)) + "%"
			exprs = append(exprs, clause.Expr{SQL: `? LIKE ? ESCAPE '\'`, Vars: []any{col, pattern}})
			continue
		}

		v, err := operand(field, f.Value)
		if err != nil {
			errs[key] = err.Error()
			continue
		}
		switch f.Type {
		case shared.FilterMin:
			exprs = append(exprs, clause.Gte{Column: col, Value: v})
		case shared.FilterMax:
			exprs = append(exprs, clause.Lte{Column: col, Value: v})
		default:
			exprs = append(exprs, clause.Eq{Column: col, Value: v})
		}
	}

	if len(errs) > 0 {
		return nil, shared.NewBadRequest("One or more filters are invalid.", errs)
	}
	return exprs, nil
}

// sliceValues returns the elements of a slice or array; any other value
// reports false. Byte slices are not lists.
func sliceValues(v any) ([]any, bool) {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil, false
	}
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	if rv.Type().Elem().Kind() == reflect.Uint8 {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// order applies the requested sort. An empty field uses the default sort and
// a field outside the whitelist sorts by id. Rows tie-break on the primary
// key so pages are stable.
func (s *Service[T]) order(db *gorm.DB, field string, dir shared.SortDirection) *gorm.DB {
	pkName := s.sch.PrioritizedPrimaryField.DBName
	column := s.cfg.DefaultSort
	if strings.TrimSpace(field) != "" {
		column = persistence.ValidateSortField(field, s.cfg.SortColumns, pkName)
	}
	desc := persistence.ValidateSortOrder(string(dir)) == "desc"

	db = db.Order(clause.OrderByColumn{Column: s.column(column), Desc: desc})
	if column != pkName {
		db = db.Order(clause.OrderByColumn{Column: s.pk(), Desc: desc})
	}
	return db
}

// preload eager-loads the named includes. Unknown names are ignored.
func (s *Service[T]) preload(db *gorm.DB, names []string) *gorm.DB {
	for _, name := range names {
		inc, ok := s.include(name)
		if !ok {
			continue
		}
		if inc.Scope != nil {
			db = db.Preload(inc.Association, inc.Scope)
		} else {
			db = db.Preload(inc.Association)
		}
	}
	return db
}

func (s *Service[T]) include(name string) (Include, bool) {
	name = strings.TrimSpace(name)
	for _, inc := range s.cfg.Includes {
		if inc.Name == name {
			return inc, true
		}
	}
	return Include{}, false
}
