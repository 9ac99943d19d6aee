package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/farm-geo-service/internal/domain/repository"
)

// Flusher - стор, который копит изменения в памяти и сбрасывает их по требованию
type Flusher interface {
	Name() string
	Flush(ctx context.Context) error
}

// loadSnapshot читает коллекцию из хранилища; отсутствующий ключ - пустая коллекция
func loadSnapshot[T any](ctx context.Context, repo repository.SnapshotRepository, key string) ([]T, error) {
	data, err := repo.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return items, nil
}

// saveSnapshot перезаписывает коллекцию целиком
func saveSnapshot[T any](ctx context.Context, repo repository.SnapshotRepository, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", key, err)
	}
	return repo.Save(ctx, key, data)
}

// dedupeLastWins схлопывает дубликаты id: позиция первого вхождения, значение последнего
func dedupeLastWins[T any](items []T, id func(T) int64) []T {
	out := make([]T, 0, len(items))
	index := make(map[int64]int, len(items))
	for _, item := range items {
		if i, ok := index[id(item)]; ok {
			out[i] = item
			continue
		}
		index[id(item)] = len(out)
		out = append(out, item)
	}
	return out
}
