package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sugat009/ecommerce-site-with-graphql/internal/schema"
	"github.com/sugat009/ecommerce-site-with-graphql/pkg/breaker"
	apperrors "github.com/sugat009/ecommerce-site-with-graphql/pkg/errors"
)

// DefaultSaveTimeout bounds a single snapshot save.
const DefaultSaveTimeout = 2 * time.Second

// SnapshotSaver persists the session snapshot after every mutation and loads
// it back at startup. Calls go through a circuit breaker.
type SnapshotSaver struct {
	repo      SnapshotRepository
	sessionID string
	breaker   *breaker.Breaker
	timeout   time.Duration
	logger    *slog.Logger
}

// NewSnapshotSaver creates a saver for one session.
func NewSnapshotSaver(repo SnapshotRepository, sessionID string, b *breaker.Breaker, logger *slog.Logger) *SnapshotSaver {
	return &SnapshotSaver{
		repo:      repo,
		sessionID: sessionID,
		breaker:   b,
		timeout:   DefaultSaveTimeout,
		logger:    logger,
	}
}

// OnMutation saves snap.
func (s *SnapshotSaver) OnMutation(ctx context.Context, m schema.Mutation, snap schema.Snapshot) error {
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		return s.repo.Save(ctx, s.sessionID, snap)
	})
	if err != nil {
		if errors.Is(err, breaker.ErrOpen) {
			return apperrors.Unavailable("snapshot store", err)
		}
		return fmt.Errorf("save snapshot after %s: %w", m, err)
	}

	s.logger.DebugContext(ctx, "session snapshot saved",
		slog.String("session_id", s.sessionID),
		slog.String("mutation", string(m)),
	)
	return nil
}

// Load returns the saved snapshot for the session. found is false when
// nothing was saved.
func (s *SnapshotSaver) Load(ctx context.Context) (snap schema.Snapshot, found bool, err error) {
	err = s.breaker.Execute(ctx, func(ctx context.Context) error {
		var getErr error
		snap, getErr = s.repo.Get(ctx, s.sessionID)
		if errors.Is(getErr, apperrors.ErrNotFound) {
			return nil
		}
		if getErr == nil {
			found = true
		}
		return getErr
	})
	if err != nil {
		return schema.Snapshot{}, false, fmt.Errorf("load snapshot for session %s: %w", s.sessionID, err)
	}
	return snap, found, nil
}

// Discard deletes the saved snapshot for the session.
func (s *SnapshotSaver) Discard(ctx context.Context) error {
	return s.breaker.Execute(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, s.sessionID)
	})
}
