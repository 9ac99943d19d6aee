package repository

import "context"

// SnapshotRepository - key-value хранилище снапшотов коллекций.
// Каждый стор пишет свою коллекцию целиком под одним ключом.
type SnapshotRepository interface {
	// Load возвращает сохранённый снапшот; nil без ошибки, если ключ отсутствует
	Load(ctx context.Context, key string) ([]byte, error)

	// Save перезаписывает снапшот целиком
	Save(ctx context.Context, key string, data []byte) error
}
