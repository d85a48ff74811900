package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sugat009/ecommerce-site-with-graphql/internal/repository"
	"github.com/sugat009/ecommerce-site-with-graphql/internal/schema"
	apperrors "github.com/sugat009/ecommerce-site-with-graphql/pkg/errors"
)

const keyPrefix = "cartstate:session:"

// Key returns the Redis key holding a session's snapshot.
func Key(sessionID string) string {
	return keyPrefix + sessionID
}

// SnapshotRepository implements repository.SnapshotRepository using Redis.
type SnapshotRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSnapshotRepository creates a new Redis-backed snapshot repository. Every
// save refreshes the TTL.
func NewSnapshotRepository(client *redis.Client, ttl time.Duration) *SnapshotRepository {
	return &SnapshotRepository{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a session snapshot from Redis.
func (r *SnapshotRepository) Get(ctx context.Context, sessionID string) (schema.Snapshot, error) {
	data, err := r.client.Get(ctx, Key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return schema.Snapshot{}, apperrors.NotFound("session snapshot", sessionID)
		}
		return schema.Snapshot{}, fmt.Errorf("redis get snapshot: %w", err)
	}

	var snap schema.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return schema.Snapshot{}, fmt.Errorf("%w: %v", repository.ErrCorruptSnapshot, err)
	}
	return snap, nil
}

// Save persists a session snapshot to Redis with the configured TTL.
func (r *SnapshotRepository) Save(ctx context.Context, sessionID string, snap schema.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	if err := r.client.Set(ctx, Key(sessionID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set snapshot: %w", err)
	}
	return nil
}

// Delete removes a session snapshot from Redis.
func (r *SnapshotRepository) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, Key(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis del snapshot: %w", err)
	}
	return nil
}
