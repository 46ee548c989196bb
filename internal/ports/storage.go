// Package ports defines the interfaces (driven and driving ports)
// for the timer application following hexagonal architecture principles.
// These interfaces define the contracts between the core and
// external infrastructure.
package ports

import (
	"context"

	"github.com/xvierd/pomo/internal/domain"
)

// StateStore persists the restore DTO between runs.
// This is a driven port (implemented by adapters).
type StateStore interface {
	// Load returns the persisted state, or nil if nothing was saved yet.
	Load(ctx context.Context) (*domain.PersistedState, error)

	// Save replaces the persisted state.
	Save(ctx context.Context, state *domain.PersistedState) error

	// Update reads the current state (nil if none) and writes the state fn
	// returns, with no other write in between. The written state's Revision
	// is set to one past the current one. Nothing is written if fn fails.
	Update(ctx context.Context, fn func(current *domain.PersistedState) (*domain.PersistedState, error)) error

	// Close releases the underlying storage.
	Close() error
}
