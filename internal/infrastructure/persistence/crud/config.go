// Package crud implements a declaratively configured CRUD service over GORM
// models: filtered and paginated listing, foreign-key and uniqueness
// validation, delete-dependency checks, soft delete, eager-loaded includes and
// lifecycle hooks. Resource services embed Service or NestedService and only
// describe their table.
package crud

import (
	"context"

	"gorm.io/gorm"
)

// ForeignKey declares that values[Field] must reference an existing row of
// Table.Column. Nil and absent values are never checked. Optional marks
// nullable columns.
type ForeignKey struct {
	Table        string
	Column       string // defaults to "id"
	ResourceName string
	Field        string
	Optional     bool
}

// Unique declares a uniqueness rule over one or more columns.
//
// A non-composite rule checks whichever of Fields are present in the input;
// a composite rule is skipped unless every field is present.
type Unique struct {
	Fields    []string
	Message   string
	Composite bool
}

// Dependency blocks deletion while rows of Table reference the resource
// through ForeignKey. "{count}" in Message is replaced with the row count.
type Dependency struct {
	Table        string
	ForeignKey   string
	ResourceName string
	Message      string
}

// Include maps a public include name to a GORM association of the model.
type Include struct {
	Name        string
	Association string
	// Scope optionally orders or filters the preloaded rows.
	Scope func(*gorm.DB) *gorm.DB
}

// SoftDelete marks rows deleted instead of removing them.
type SoftDelete struct {
	Column          string
	DeletedValue    bool
	DeletedAtColumn string
}

// Timestamps names the column refreshed on every update.
type Timestamps struct {
	Updated string
}

// Config describes one resource table.
type Config struct {
	ResourceName string
	DefaultSort  string

	// SortColumns and FilterColumns map public field names to columns.
	// Unknown sort fields fall back to the id column; unknown filters are
	// ignored.
	SortColumns   map[string]string
	FilterColumns map[string]string

	SoftDelete        *SoftDelete
	Timestamps        Timestamps
	ForeignKeys       []ForeignKey
	UniqueConstraints []Unique
	Dependencies      []Dependency
	Includes          []Include
}

func (c Config) withDefaults() Config {
	if c.DefaultSort == "" {
		c.DefaultSort = "id"
	}
	if c.Timestamps.Updated == "" {
		c.Timestamps.Updated = "updated_at"
	}
	for i := range c.ForeignKeys {
		if c.ForeignKeys[i].Column == "" {
			c.ForeignKeys[i].Column = "id"
		}
	}
	return c
}

// Hooks customise the write path of a Service. Every hook runs inside the
// transaction of the operation and receives it as tx; returning an error
// rolls the operation back.
//
// BeforeCreate and BeforeUpdate may modify values in place. Keys are
// snake_case column names; keys that are not columns of the table are dropped
// after the hook returns.
type Hooks[T any] interface {
	BeforeCreate(ctx context.Context, tx *gorm.DB, values map[string]any) error
	AfterCreate(ctx context.Context, tx *gorm.DB, created *T) error
	BeforeUpdate(ctx context.Context, tx *gorm.DB, values map[string]any, existing *T) error
	AfterUpdate(ctx context.Context, tx *gorm.DB, updated, previous *T) error
	BeforeDelete(ctx context.Context, tx *gorm.DB, existing *T) error
	AfterDelete(ctx context.Context, tx *gorm.DB, deleted *T) error
}

// NoHooks implements Hooks with no-ops. Embed it and override what you need.
type NoHooks[T any] struct{}

func (NoHooks[T]) BeforeCreate(context.Context, *gorm.DB, map[string]any) error     { return nil }
func (NoHooks[T]) AfterCreate(context.Context, *gorm.DB, *T) error                  { return nil }
func (NoHooks[T]) BeforeUpdate(context.Context, *gorm.DB, map[string]any, *T) error { return nil }
func (NoHooks[T]) AfterUpdate(context.Context, *gorm.DB, *T, *T) error              { return nil }
func (NoHooks[T]) BeforeDelete(context.Context, *gorm.DB, *T) error                 { return nil }
func (NoHooks[T]) AfterDelete(context.Context, *gorm.DB, *T) error                  { return nil }
