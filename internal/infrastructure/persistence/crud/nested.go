package crud

import (
	"context"
	"fmt"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Parent describes the row that owns a nested resource.
type Parent struct {
	Table        string
	ResourceName string
	// ForeignKey is the child column referencing the parent's id.
	ForeignKey string
}

// NestedService scopes a Service to rows owned by one parent, as in
// /products/{id}/images. The plain Service methods stay available.
type NestedService[T any] struct {
	*Service[T]
	parent Parent
}

// NewNested returns a service for T rows owned by parent.
func NewNested[T any](db *gorm.DB, cfg Config, parent Parent, hooks Hooks[T]) (*NestedService[T], error) {
	base, err := New(db, cfg, hooks)
	if err != nil {
		return nil, err
	}
	if _, ok := base.sch.FieldsByDBName[parent.ForeignKey]; !ok {
		return nil, fmt.Errorf("model %T has no column %q", *new(T), parent.ForeignKey)
	}
	return &NestedService[T]{Service: base, parent: parent}, nil
}

// MustNewNested is NewNested that panics on a malformed model.
func MustNewNested[T any](db *gorm.DB, cfg Config, parent Parent, hooks Hooks[T]) *NestedService[T] {
	s, err := NewNested(db, cfg, parent, hooks)
	if err != nil {
		panic(err)
	}
	return s
}

// Parent returns the parent description.
func (s *NestedService[T]) Parent() Parent { return s.parent }

// ParentScope restricts a query to children of parentID.
func (s *NestedService[T]) ParentScope(parentID int64) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{Column: s.column(s.parent.ForeignKey), Value: parentID})
	}
}

// ValidateParent returns NotFound when the parent row does not exist.
func (s *NestedService[T]) ValidateParent(ctx context.Context, db *gorm.DB, parentID int64) error {
	var n int64
	err := db.WithContext(ctx).Table(s.parent.Table).
		Where(clause.Eq{Column: clause.Column{Name: "id"}, Value: parentID}).
		Count(&n).Error
	if err != nil {
		return fmt.Errorf("check %s %d: %w", s.parent.Table, parentID, err)
	}
	if n == 0 {
		return shared.NewNotFound(s.parent.ResourceName, parentID)
	}
	return nil
}

// ListForParent returns one page of the parent's children.
func (s *NestedService[T]) ListForParent(ctx context.Context, parentID int64, opts shared.ListOptions, scopes ...Scope) (*shared.Page[T], error) {
	db := s.db.WithContext(ctx)
	if err := s.ValidateParent(ctx, db, parentID); err != nil {
		return nil, err
	}
	return s.list(db, opts, append([]Scope{s.ParentScope(parentID)}, scopes...)...)
}

// GetByIDForParent returns a child by id; children of other parents are
// reported as not found.
func (s *NestedService[T]) GetByIDForParent(ctx context.Context, parentID, id int64, includes ...string) (*T, error) {
	return s.getForParent(s.db.WithContext(ctx), parentID, id, includes...)
}

// GetByIDForParentTx is GetByIDForParent inside tx.
func (s *NestedService[T]) GetByIDForParentTx(tx *gorm.DB, parentID, id int64) (*T, error) {
	return s.getForParent(tx, parentID, id)
}

func (s *NestedService[T]) getForParent(db *gorm.DB, parentID, id int64, includes ...string) (*T, error) {
	return s.take(db.Scopes(s.NotDeleted, s.ParentScope(parentID)), id, includes...)
}

// CreateForParent creates a child of parentID in its own transaction.
func (s *NestedService[T]) CreateForParent(ctx context.Context, parentID int64, values map[string]any) (*T, error) {
	var created *T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = s.CreateForParentTx(ctx, tx, parentID, values)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateForParentTx validates the parent, forces the parent foreign key and
// runs the create flow inside tx.
func (s *NestedService[T]) CreateForParentTx(ctx context.Context, tx *gorm.DB, parentID int64, values map[string]any) (*T, error) {
	if err := s.ValidateParent(ctx, tx, parentID); err != nil {
		return nil, err
	}
	values = normalizeInput(values)
	values[s.parent.ForeignKey] = parentID
	return s.CreateTx(ctx, tx, values)
}

// CreateManyForParent creates several children in one transaction; either
// all rows are created or none.
func (s *NestedService[T]) CreateManyForParent(ctx context.Context, parentID int64, rows []map[string]any) ([]*T, error) {
	var created []*T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = s.CreateManyForParentTx(ctx, tx, parentID, rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateManyForParentTx is CreateManyForParent inside tx.
func (s *NestedService[T]) CreateManyForParentTx(ctx context.Context, tx *gorm.DB, parentID int64, rows []map[string]any) ([]*T, error) {
	if err := s.ValidateParent(ctx, tx, parentID); err != nil {
		return nil, err
	}
	created := make([]*T, 0, len(rows))
	for _, values := range rows {
		values = normalizeInput(values)
		values[s.parent.ForeignKey] = parentID
		row, err := s.CreateTx(ctx, tx, values)
		if err != nil {
			return nil, err
		}
		created = append(created, row)
	}
	return created, nil
}

// UpdateForParent updates a child of parentID in its own transaction.
func (s *NestedService[T]) UpdateForParent(ctx context.Context, parentID, id int64, values map[string]any) (*T, error) {
	var updated *T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		updated, err = s.UpdateForParentTx(ctx, tx, parentID, id, values)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateForParentTx runs the update flow for a child inside tx. The parent
// foreign key is visible to validation and hooks but never rewritten, and
// updated_at is always refreshed.
func (s *NestedService[T]) UpdateForParentTx(ctx context.Context, tx *gorm.DB, parentID, id int64, values map[string]any) (*T, error) {
	existing, err := s.getForParent(tx, parentID, id)
	if err != nil {
		return nil, err
	}
	values = normalizeInput(values)
	values[s.parent.ForeignKey] = parentID
	if _, ok := s.sch.FieldsByDBName[s.cfg.Timestamps.Updated]; ok {
		values[s.cfg.Timestamps.Updated] = s.now()
	}
	return s.update(ctx, tx, id, existing, values, s.parent.ForeignKey)
}

// DeleteForParent deletes a child of parentID in its own transaction.
func (s *NestedService[T]) DeleteForParent(ctx context.Context, parentID, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.DeleteForParentTx(ctx, tx, parentID, id)
	})
}

// DeleteForParentTx is DeleteForParent inside tx.
func (s *NestedService[T]) DeleteForParentTx(ctx context.Context, tx *gorm.DB, parentID, id int64) error {
	existing, err := s.getForParent(tx, parentID, id)
	if err != nil {
		return err
	}
	return s.delete(ctx, tx, id, existing)
}
