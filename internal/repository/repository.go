package repository

import (
	"context"
	"errors"

	"github.com/sugat009/ecommerce-site-with-graphql/internal/schema"
)

// ErrCorruptSnapshot is returned when a saved snapshot cannot be decoded.
var ErrCorruptSnapshot = errors.New("corrupt session snapshot")

// SnapshotRepository defines persistence for whole-session state snapshots.
type SnapshotRepository interface {
	// Get retrieves the snapshot saved for a session.
	Get(ctx context.Context, sessionID string) (schema.Snapshot, error)

	// Save persists a snapshot, overwriting any earlier one for the session.
	Save(ctx context.Context, sessionID string, snap schema.Snapshot) error

	// Delete removes the snapshot saved for a session.
	Delete(ctx context.Context, sessionID string) error
}
