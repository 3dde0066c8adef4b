// Package repository holds the raw scoresheet records.
package repository

import (
	"context"

	"github.com/okian/polo/internal/domain/model"
)

// Draft is a validated record that has not been assigned an id yet.
type Draft struct {
	Clock  string
	Number string
	Team   model.Team
	Kind   model.EventKind
}

// Store provides read/write access to the raw records.
type Store interface {
	// Add assigns a fresh, strictly increasing id to d and stores it.
	Add(ctx context.Context, d Draft) (model.Record, error)

	// Delete removes the record with id. Returns false if it does not exist.
	Delete(ctx context.Context, id int64) bool

	// SetNumber replaces the player number of record id. Returns false if it
	// does not exist.
	SetNumber(ctx context.Context, id int64, number string) bool

	// Get returns the record with id.
	Get(ctx context.Context, id int64) (model.Record, bool)

	// List returns a copy of all records in id order.
	List(ctx context.Context) []model.Record

	// Replace swaps the whole record set, e.g. on restore.
	Replace(ctx context.Context, records []model.Record) error

	// Reset removes every record.
	Reset(ctx context.Context)

	// Len returns the number of stored records.
	Len(ctx context.Context) int
}
