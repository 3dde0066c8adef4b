// Package persistence saves and restores the match snapshot so a restart (or a
// closed browser tab) does not lose the scoresheet.
package persistence

import (
	"context"

	"github.com/okian/polo/internal/domain/model"
)

// Store persists one match snapshot.
type Store interface {
	// Load returns the saved snapshot. ok is false when nothing was saved.
	Load(ctx context.Context) (snap model.Snapshot, ok bool, err error)
	// Save replaces the saved snapshot.
	Save(ctx context.Context, snap model.Snapshot) error
	// Clear removes the saved snapshot.
	Clear(ctx context.Context) error
}

// NopStore keeps nothing. Used when no snapshot path is configured.
type NopStore struct{}

func (NopStore) Load(context.Context) (model.Snapshot, bool, error) { return model.Snapshot{}, false, nil }
func (NopStore) Save(context.Context, model.Snapshot) error          { return nil }
func (NopStore) Clear(context.Context) error                         { return nil }
