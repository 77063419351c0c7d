package crud

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type fkCheck struct {
	field    string
	resource string
	value    any
}

// validateForeignKeys checks that every referenced row exists. References
// to the same table and column are resolved with one IN query.
func (s *Service[T]) validateForeignKeys(ctx context.Context, tx *gorm.DB, values map[string]any) error {
	if len(s.cfg.ForeignKeys) == 0 {
		return nil
	}

	type target struct{ table, column string }
	var order []target
	groups := map[target][]fkCheck{}
	errs := map[string]string{}

	for _, fk := range s.cfg.ForeignKeys {
		raw, ok := values[fk.Field]
		if !ok {
			continue
		}
		v, err := operand(s.sch.LookUpField(fk.Field), raw)
		if err != nil {
			errs[fk.Field] = fmt.Sprintf("%s with ID %v does not exist.", fk.ResourceName, raw)
			continue
		}
		if v == nil {
			continue
		}
		t := target{fk.Table, fk.Column}
		if _, seen := groups[t]; !seen {
			order = append(order, t)
		}
		groups[t] = append(groups[t], fkCheck{field: fk.Field, resource: fk.ResourceName, value: v})
	}

	for _, t := range order {
		checks := groups[t]
		ids := make([]any, len(checks))
		for i, c := range checks {
			ids[i] = c.value
		}

		var found []int64
		err := tx.WithContext(ctx).Table(t.table).
			Where(clause.IN{Column: clause.Column{Name: t.column}, Values: ids}).
			Pluck(t.column, &found).Error
		if err != nil {
			return fmt.Errorf("check %s references: %w", t.table, err)
		}

		exists := make(map[string]bool, len(found))
		for _, id := range found {
			exists[strconv.FormatInt(id, 10)] = true
		}
		for _, c := range checks {
			if exists[fmt.Sprint(c.value)] {
				continue
			}
			errs[c.field] = fmt.Sprintf("%s with ID %v does not exist.", c.resource, c.value)
		}
	}

	if len(errs) > 0 {
		return shared.NewValidation("One or more referenced resources do not exist.", errs)
	}
	return nil
}

// validateUnique rejects values that would duplicate an existing row under
// any unique constraint. excludeID, when non-zero, is the row being updated.
// Nil values compare with IS NULL.
func (s *Service[T]) validateUnique(ctx context.Context, tx *gorm.DB, values map[string]any, excludeID int64) error {
	for _, u := range s.cfg.UniqueConstraints {
		var conds []clause.Expression
		missing := false
		for _, field := range u.Fields {
			raw, ok := values[field]
			if !ok {
				missing = true
				continue
			}
			v, err := operand(s.sch.LookUpField(field), raw)
			if err != nil {
				return shared.NewValidation("One or more fields are invalid.", map[string]string{field: err.Error()})
			}
			conds = append(conds, clause.Eq{Column: s.column(field), Value: v})
		}
		if len(conds) == 0 || u.Composite && missing {
			continue
		}
		if excludeID != 0 {
			conds = append(conds, clause.Neq{Column: s.pk(), Value: excludeID})
		}

		var n int64
		q := tx.WithContext(ctx).Model(new(T))
		for _, c := range conds {
			q = q.Where(c)
		}
		if err := q.Count(&n).Error; err != nil {
			return fmt.Errorf("check unique %s: %w", strings.Join(u.Fields, ","), err)
		}
		if n > 0 {
			return shared.NewConflict(u.Message)
		}
	}
	return nil
}

// checkDependencies refuses deletion while dependent rows reference id.
func (s *Service[T]) checkDependencies(ctx context.Context, tx *gorm.DB, id int64) error {
	for _, d := range s.cfg.Dependencies {
		var n int64
		err := tx.WithContext(ctx).Table(d.Table).
			Where(clause.Eq{Column: clause.Column{Name: d.ForeignKey}, Value: id}).
			Count(&n).Error
		if err != nil {
			return fmt.Errorf("count %s dependents: %w", d.Table, err)
		}
		if n == 0 {
			continue
		}
		count := strconv.FormatInt(n, 10)
		if d.Message != "" {
			return shared.NewConflict(strings.Replace(d.Message, "{count}", count, 1))
		}
		return shared.NewConflict(fmt.Sprintf("Cannot delete %s because it has %s %s(s) associated with it.",
			s.cfg.ResourceName, count, d.ResourceName))
	}
	return nil
}
