package memory

import (
	"context"
	"sync"

	"github.com/farm-geo-service/internal/domain/repository"
)

type snapshotRepository struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewSnapshotRepository возвращает процессное хранилище снапшотов.
// Используется по умолчанию (STORAGE_BACKEND=memory) и в тестах.
func NewSnapshotRepository() repository.SnapshotRepository {
	return &snapshotRepository{
		data: make(map[string][]byte),
	}
}

func (r *snapshotRepository) Load(_ context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, ok := r.data[key]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (r *snapshotRepository) Save(_ context.Context, key string, data []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.data[key] = append([]byte(nil), data...)
	return nil
}
