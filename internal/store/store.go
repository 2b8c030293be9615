// Package store defines the persistence contract for lists and their items.
// Backends live in subpackages: memstore, jsonstore and sqlitestore.
package store

import (
	"context"
	"errors"

	"github.com/Makepad-fr/tada/internal/model"
)

// ErrDuplicateID is returned by Create when the id is already taken.
var ErrDuplicateID = errors.New("list id already exists")

// Store persists lists keyed by id. Implementations must be safe for
// concurrent use; Append on one list must assign gap-free positions.
type Store interface {
	// Create registers an empty list. Returns ErrDuplicateID if id exists.
	Create(ctx context.Context, id model.ListID) error

	// Append adds d at the end of the list and returns the stored item.
	// Returns *model.NotFoundError if the list does not exist.
	Append(ctx context.Context, id model.ListID, d model.Draft) (model.Item, error)

	// Get returns a snapshot of the list in insertion order.
	// Returns *model.NotFoundError if the list does not exist.
	Get(ctx context.Context, id model.ListID) (model.List, error)

	// Close releases any resources held by the store.
	Close() error
}

// Backend names accepted by configuration.
const (
	BackendMemory = "memory"
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// Backends lists every backend name.
var Backends = []string{BackendMemory, BackendJSON, BackendSQLite}
