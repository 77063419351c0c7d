package crud

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/cmlibra71/keenan-group-channels/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Scope narrows a query, as accepted by gorm's Scopes.
type Scope = func(*gorm.DB) *gorm.DB

// Service implements list, get, create, update and delete for model T as
// described by a Config. Every write runs in a transaction; the *Tx variants
// join a transaction owned by the caller.
type Service[T any] struct {
	db    *gorm.DB
	cfg   Config
	hooks Hooks[T]
	sch   *schema.Schema
	now   func() time.Time
}

// New parses T's schema and returns a service for it. A nil hooks value
// installs NoHooks.
func New[T any](db *gorm.DB, cfg Config, hooks Hooks[T]) (*Service[T], error) {
	if hooks == nil {
		hooks = NoHooks[T]{}
	}
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(new(T)); err != nil {
		return nil, fmt.Errorf("parse model %T: %w", *new(T), err)
	}
	if stmt.Schema.PrioritizedPrimaryField == nil {
		return nil, fmt.Errorf("model %T has no primary key", *new(T))
	}
	return &Service[T]{
		db:    db,
		cfg:   cfg.withDefaults(),
		hooks: hooks,
		sch:   stmt.Schema,
		now:   time.Now,
	}, nil
}

// MustNew is New for package-level wiring; it panics on a malformed model.
func MustNew[T any](db *gorm.DB, cfg Config, hooks Hooks[T]) *Service[T] {
	s, err := New(db, cfg, hooks)
	if err != nil {
		panic(err)
	}
	return s
}

// Config returns the resource configuration with defaults applied.
func (s *Service[T]) Config() Config { return s.cfg }

// Table returns the model's table name.
func (s *Service[T]) Table() string { return s.sch.Table }

// DB returns the underlying handle bound to ctx.
func (s *Service[T]) DB(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

// Now returns the service clock. Tests replace it through SetClock.
func (s *Service[T]) Now() time.Time { return s.now() }

// SetClock replaces the clock used for updated_at and deleted_at.
func (s *Service[T]) SetClock(now func() time.Time) { s.now = now }

// Transaction runs fn in a transaction on the service's database.
func (s *Service[T]) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(fn)
}

// Query starts a query on T's table that excludes soft-deleted rows.
func (s *Service[T]) Query(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(new(T)).Scopes(s.NotDeleted)
}

// NotDeleted is a scope excluding soft-deleted rows. It is a no-op for
// resources without soft delete.
func (s *Service[T]) NotDeleted(db *gorm.DB) *gorm.DB {
	sd := s.cfg.SoftDelete
	if sd == nil {
		return db
	}
	return db.Where(clause.Eq{Column: s.column(sd.Column), Value: !sd.DeletedValue})
}

// Column returns a table-qualified column for use in clauses.
func (s *Service[T]) Column(name string) clause.Column { return s.column(name) }

func (s *Service[T]) column(name string) clause.Column {
	return clause.Column{Table: s.sch.Table, Name: name}
}

func (s *Service[T]) pk() clause.Column {
	return s.column(s.sch.PrioritizedPrimaryField.DBName)
}

// List returns one page of rows matching opts and the extra scopes.
func (s *Service[T]) List(ctx context.Context, opts shared.ListOptions, scopes ...Scope) (*shared.Page[T], error) {
	return s.list(s.db.WithContext(ctx), opts, scopes...)
}

func (s *Service[T]) list(db *gorm.DB, opts shared.ListOptions, scopes ...Scope) (*shared.Page[T], error) {
	opts = opts.Normalized()
	where, err := s.filterClauses(opts.Filters)
	if err != nil {
		return nil, err
	}

	base := func() *gorm.DB {
		q := db.Model(new(T)).Scopes(s.NotDeleted).Scopes(scopes...)
		for _, expr := range where {
			q = q.Where(expr)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count %s: %w", s.sch.Table, err)
	}

	rows := make([]T, 0)
	q := s.order(base(), opts.Sort, opts.Direction).Limit(opts.Limit).Offset(opts.Offset())
	if err := s.preload(q, opts.Includes).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", s.sch.Table, err)
	}

	return &shared.Page[T]{
		Data:       rows,
		Pagination: shared.Pagination{Page: opts.Page, Limit: opts.Limit, Total: total},
	}, nil
}

// Count returns the number of live rows matching scopes.
func (s *Service[T]) Count(ctx context.Context, scopes ...Scope) (int64, error) {
	var n int64
	if err := s.Query(ctx).Scopes(scopes...).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("count %s: %w", s.sch.Table, err)
	}
	return n, nil
}

// Sum adds up column over live rows matching scopes; no rows sums to zero.
func (s *Service[T]) Sum(ctx context.Context, column string, scopes ...Scope) (decimal.Decimal, error) {
	var total decimal.Decimal
	row := s.Query(ctx).Scopes(scopes...).Select("COALESCE(SUM(?), 0)", s.column(column)).Row()
	if err := row.Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("sum %s.%s: %w", s.sch.Table, column, err)
	}
	return total, nil
}

// GetByID returns a live row by id with the requested includes loaded.
func (s *Service[T]) GetByID(ctx context.Context, id int64, includes ...string) (*T, error) {
	return s.find(s.db.WithContext(ctx), id, includes...)
}

// GetByIDTx is GetByID inside tx.
func (s *Service[T]) GetByIDTx(tx *gorm.DB, id int64, includes ...string) (*T, error) {
	return s.find(tx, id, includes...)
}

func (s *Service[T]) find(db *gorm.DB, id int64, includes ...string) (*T, error) {
	return s.take(db.Scopes(s.NotDeleted), id, includes...)
}

func (s *Service[T]) take(db *gorm.DB, id int64, includes ...string) (*T, error) {
	row := new(T)
	q := db.Where(clause.Eq{Column: s.pk(), Value: id})
	if err := s.preload(q, includes).Take(row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFound(s.cfg.ResourceName, id)
		}
		return nil, fmt.Errorf("get %s %d: %w", s.sch.Table, id, err)
	}
	return row, nil
}

// Create validates values and inserts a row in its own transaction.
func (s *Service[T]) Create(ctx context.Context, values map[string]any) (*T, error) {
	var created *T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		created, err = s.CreateTx(ctx, tx, values)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// CreateTx runs the create flow inside tx: foreign keys, unique
// constraints, BeforeCreate, insert, AfterCreate.
func (s *Service[T]) CreateTx(ctx context.Context, tx *gorm.DB, values map[string]any) (*T, error) {
	values = normalizeInput(values)

	if err := s.validateForeignKeys(ctx, tx, values); err != nil {
		return nil, err
	}
	if err := s.validateUnique(ctx, tx, values, 0); err != nil {
		return nil, err
	}
	if err := s.hooks.BeforeCreate(ctx, tx, values); err != nil {
		return nil, err
	}

	row, err := decodeRow[T](ctx, s.sch, values)
	if err != nil {
		return nil, err
	}
	if err := tx.Create(row).Error; err != nil {
		return nil, fmt.Errorf("create %s: %w", s.sch.Table, err)
	}

	created, err := s.take(tx, s.idOf(ctx, row))
	if err != nil {
		return nil, err
	}
	if err := s.hooks.AfterCreate(ctx, tx, created); err != nil {
		return nil, err
	}
	return created, nil
}

// Update applies values to a live row in its own transaction.
func (s *Service[T]) Update(ctx context.Context, id int64, values map[string]any) (*T, error) {
	var updated *T
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		updated, err = s.UpdateTx(ctx, tx, id, values)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// UpdateTx runs the update flow inside tx. updated_at is set to now unless
// values carries it.
func (s *Service[T]) UpdateTx(ctx context.Context, tx *gorm.DB, id int64, values map[string]any) (*T, error) {
	existing, err := s.find(tx, id)
	if err != nil {
		return nil, err
	}
	return s.update(ctx, tx, id, existing, normalizeInput(values))
}

// update writes values over existing. Columns named in omit take part in
// validation and hooks but are not written.
func (s *Service[T]) update(ctx context.Context, tx *gorm.DB, id int64, existing *T, values map[string]any, omit ...string) (*T, error) {
	if err := s.validateForeignKeys(ctx, tx, values); err != nil {
		return nil, err
	}
	if err := s.validateUnique(ctx, tx, values, id); err != nil {
		return nil, err
	}
	if err := s.hooks.BeforeUpdate(ctx, tx, values, existing); err != nil {
		return nil, err
	}
	s.touch(values)
	for _, col := range omit {
		delete(values, col)
	}

	changes, err := updateMap(s.sch, values)
	if err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		res := tx.Model(new(T)).Where(clause.Eq{Column: s.pk(), Value: id}).Updates(changes)
		if res.Error != nil {
			return nil, fmt.Errorf("update %s %d: %w", s.sch.Table, id, res.Error)
		}
	}

	updated, err := s.take(tx, id)
	if err != nil {
		return nil, err
	}
	if err := s.hooks.AfterUpdate(ctx, tx, updated, existing); err != nil {
		return nil, err
	}
	return updated, nil
}

// touch sets the updated timestamp unless the caller supplied one.
func (s *Service[T]) touch(values map[string]any) {
	col := s.cfg.Timestamps.Updated
	if _, ok := s.sch.FieldsByDBName[col]; !ok {
		return
	}
	if _, ok := values[col]; !ok {
		values[col] = s.now()
	}
}

// Delete removes a live row in its own transaction, softly when the
// resource is configured for it.
func (s *Service[T]) Delete(ctx context.Context, id int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.DeleteTx(ctx, tx, id)
	})
}

// DeleteTx runs the delete flow inside tx: dependency checks, BeforeDelete,
// delete, AfterDelete.
func (s *Service[T]) DeleteTx(ctx context.Context, tx *gorm.DB, id int64) error {
	existing, err := s.find(tx, id)
	if err != nil {
		return err
	}
	return s.delete(ctx, tx, id, existing)
}

func (s *Service[T]) delete(ctx context.Context, tx *gorm.DB, id int64, existing *T) error {
	if err := s.checkDependencies(ctx, tx, id); err != nil {
		return err
	}
	if err := s.hooks.BeforeDelete(ctx, tx, existing); err != nil {
		return err
	}

	where := clause.Eq{Column: s.pk(), Value: id}
	if sd := s.cfg.SoftDelete; sd != nil {
		changes := map[string]any{sd.Column: sd.DeletedValue}
		if sd.DeletedAtColumn != "" {
			changes[sd.DeletedAtColumn] = s.now()
		}
		if err := tx.Model(new(T)).Where(where).Updates(changes).Error; err != nil {
			return fmt.Errorf("soft delete %s %d: %w", s.sch.Table, id, err)
		}
	} else if err := tx.Where(where).Delete(new(T)).Error; err != nil {
		return fmt.Errorf("delete %s %d: %w", s.sch.Table, id, err)
	}

	return s.hooks.AfterDelete(ctx, tx, existing)
}

// IDOf returns the primary key of row.
func (s *Service[T]) IDOf(ctx context.Context, row *T) int64 {
	return s.idOf(ctx, row)
}

func (s *Service[T]) idOf(ctx context.Context, row *T) int64 {
	v, _ := s.sch.PrioritizedPrimaryField.ValueOf(ctx, reflect.ValueOf(row).Elem())
	switch id := v.(type) {
	case int64:
		return id
	case int:
		return int64(id)
	case int32:
		return int64(id)
	case uint:
		return int64(id)
	case uint64:
		return int64(id)
	}
	return 0
}
