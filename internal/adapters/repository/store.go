// Package repository persists the occupancy frequency table.
package repository

import (
	"context"

	"github.com/okian/busyspot/internal/domain/model"
)

// Store provides read/write access to the persisted frequency table.
type Store interface {
	// Save replaces the stored table. Readers see either the old or the new table, never a mix.
	Save(ctx context.Context, snap model.Snapshot) error
	// Load returns the current table.
	// Returns ErrNotFound if none was ever saved and ErrCorrupt if it cannot be decoded.
	Load(ctx context.Context) (model.Snapshot, error)
}
