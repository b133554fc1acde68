package storage

import (
	"context"

	"github.com/google/uuid"

	"github.com/nakamago/pilgrimage/pkg/catalog"
	"github.com/nakamago/pilgrimage/pkg/state"
)

// Storage persists session snapshots and serves the built-in location
// catalog. Sessions are stored whole: handlers load a snapshot, apply
// one action and save it back.
type Storage interface {
	Ping(ctx context.Context) error
	Close() error

	// SaveSession persists the full session snapshot.
	SaveSession(ctx context.Context, id uuid.UUID, s *state.Session) error

	// LoadSession returns (nil, nil) when the session does not exist.
	LoadSession(ctx context.Context, id uuid.UUID) (*state.Session, error)

	DeleteSession(ctx context.Context, id uuid.UUID) error

	// GetCatalog returns the built-in location catalog.
	GetCatalog(ctx context.Context) (*catalog.Catalog, error)
}
