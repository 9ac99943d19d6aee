package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/farm-geo-service/internal/domain/repository"
	"go.uber.org/zap"
)

type snapshotRepository struct {
	db     *DB
	logger *zap.Logger
}

// NewSnapshotRepository хранит снапшоты в таблице snapshots (key -> jsonb)
func NewSnapshotRepository(db *DB) repository.SnapshotRepository {
	return &snapshotRepository{
		db:     db,
		logger: db.logger,
	}
}

func (r *snapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	const query = `SELECT data FROM snapshots WHERE key = $1`

	var data []byte
	err := r.db.GetContext(ctx, &data, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("failed to load snapshot", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}

	return data, nil
}

func (r *snapshotRepository) Save(ctx context.Context, key string, data []byte) error {
	const query = `
		INSERT INTO snapshots (key, data, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE
		SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, key, string(data)); err != nil {
		r.logger.Error("failed to save snapshot", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}

	r.logger.Debug("snapshot saved", zap.String("key", key), zap.Int("bytes", len(data)))
	return nil
}
