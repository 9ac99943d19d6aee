package repository

import (
	"context"
	"time"

	"github.com/farm-geo-service/internal/domain"
)

// CacheRepository определяет методы для работы с кешем
type CacheRepository interface {
	// Get получает значение из кеша по ключу
	Get(ctx context.Context, key string) ([]byte, error)

	// Set сохраняет значение в кеше с TTL
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete удаляет значение из кеша
	Delete(ctx context.Context, key string) error

	// Exists проверяет существование ключа
	Exists(ctx context.Context, key string) (bool, error)

	// GetSuggestions получает подсказки поиска из кеша
	GetSuggestions(ctx context.Context, query string, limit int) ([]domain.SearchSuggestion, error)

	// SetSuggestions сохраняет подсказки поиска в кеше
	SetSuggestions(ctx context.Context, query string, limit int, suggestions []domain.SearchSuggestion, ttl time.Duration) error
}
