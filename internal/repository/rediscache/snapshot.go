package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"rental-mngt-admin/internal/logger"
	"rental-mngt-admin/internal/repository"
)

const keyPrefix = "rental-mngt-admin:snapshot:"

// commander is the subset of *redis.Client used by the snapshot repository.
type commander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

type snapshotRepository struct {
	rdb commander
	ttl time.Duration
}

func NewSnapshotRepository(rdb *redis.Client, ttl time.Duration) repository.SnapshotRepository {
	return newSnapshotRepository(rdb, ttl)
}

func newSnapshotRepository(rdb commander, ttl time.Duration) *snapshotRepository {
	return &snapshotRepository{rdb: rdb, ttl: ttl}
}

func (r *snapshotRepository) Load(ctx context.Context, name string, dest any) (bool, error) {
	data, err := r.rdb.Get(ctx, keyPrefix+name).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read snapshot %s: %w", name, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode snapshot %s: %w", name, err)
	}
	logger.Debug("Snapshot loaded", "name", name, "bytes", len(data))
	return true, nil
}

func (r *snapshotRepository) Save(ctx context.Context, name string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %s: %w", name, err)
	}
	if err := r.rdb.Set(ctx, keyPrefix+name, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write snapshot %s: %w", name, err)
	}
	return nil
}
