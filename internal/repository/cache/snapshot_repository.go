package cache

import (
	"context"
	"fmt"

	"github.com/farm-geo-service/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type snapshotRepository struct {
	client *redis.Client
	logger *zap.Logger
}

// NewSnapshotRepository хранит снапшоты сторов в Redis без TTL
func NewSnapshotRepository(redis *Redis) repository.SnapshotRepository {
	return &snapshotRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *snapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to load snapshot", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("snapshot load error: %w", err)
	}

	return data, nil
}

func (r *snapshotRepository) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, key, data, 0).Err(); err != nil {
		r.logger.Error("Failed to save snapshot", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("snapshot save error: %w", err)
	}

	r.logger.Debug("Snapshot saved", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}
