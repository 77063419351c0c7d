// Package models contains the GORM models for the commerce schema.
//
// Column names are snake_case and identical to the JSON field names, so a
// model serialises straight into the admin API representation. Nullable
// columns and columns with a database default other than the Go zero value
// are pointers; prices use shopspring/decimal; jsonb columns use
// gorm.io/datatypes; Postgres arrays use lib/pq array types.
//
// The authoritative schema lives in migrations/. AutoMigrate over All() is
// only used to build throwaway sqlite databases in tests.
package models
