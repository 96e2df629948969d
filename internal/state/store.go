package state

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/sheetwatch/internal/config"
)

// Store loads and saves the StateRecord.
type Store interface {
	// Load returns the persisted record, or an empty one when nothing usable
	// is stored.
	Load(ctx context.Context) Record
	// Save replaces the persisted record atomically.
	Save(ctx context.Context, r Record) error
	// Location describes where the record lives, for logging.
	Location() string
	Close() error
}

// Open returns the store selected by backend at path.
func Open(backend config.StateBackend, path string) (Store, error) {
	switch backend {
	case config.StateBackendJSON, "":
		return NewJSONStore(path), nil
	case config.StateBackendSQLite:
		return NewSQLiteStore(path)
	default:
		return nil, fmt.Errorf("unknown state backend %q", backend)
	}
}
