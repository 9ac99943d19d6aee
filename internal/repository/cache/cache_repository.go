package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/domain/repository"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const suggestionsKeyPrefix = "search:suggestions"

type cacheRepository struct {
	client *redis.Client
	logger *zap.Logger
}

func NewCacheRepository(redis *Redis) repository.CacheRepository {
	return &cacheRepository{
		client: redis.Client(),
		logger: redis.logger,
	}
}

func (r *cacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		r.logger.Error("Failed to get from cache", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("cache get error: %w", err)
	}

	r.logger.Debug("Cache hit", zap.String("key", key))
	return val, nil
}

func (r *cacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	err := r.client.Set(ctx, key, value, ttl).Err()
	if err != nil {
		r.logger.Error("Failed to set cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache set error: %w", err)
	}

	r.logger.Debug("Cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}

func (r *cacheRepository) Delete(ctx context.Context, key string) error {
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		r.logger.Error("Failed to delete from cache", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("cache delete error: %w", err)
	}

	r.logger.Debug("Cache deleted", zap.String("key", key))
	return nil
}

func (r *cacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	val, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		r.logger.Error("Failed to check cache existence", zap.String("key", key), zap.Error(err))
		return false, fmt.Errorf("cache exists error: %w", err)
	}

	return val > 0, nil
}

// SuggestionsKey строит ключ кеша подсказок; запрос нормализуется к нижнему регистру
func SuggestionsKey(query string, limit int) string {
	return fmt.Sprintf("%s:%d:%s", suggestionsKeyPrefix, limit, strings.ToLower(strings.TrimSpace(query)))
}

// GetSuggestions получает подсказки поиска из кеша; nil, nil при промахе
func (r *cacheRepository) GetSuggestions(ctx context.Context, query string, limit int) ([]domain.SearchSuggestion, error) {
	data, err := r.Get(ctx, SuggestionsKey(query, limit))
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil // Cache miss
	}

	var suggestions []domain.SearchSuggestion
	if err := json.Unmarshal(data, &suggestions); err != nil {
		r.logger.Error("Failed to unmarshal suggestions from cache", zap.Error(err))
		return nil, fmt.Errorf("unmarshal suggestions: %w", err)
	}

	return suggestions, nil
}

// SetSuggestions сохраняет подсказки поиска в кеше
func (r *cacheRepository) SetSuggestions(ctx context.Context, query string, limit int, suggestions []domain.SearchSuggestion, ttl time.Duration) error {
	data, err := json.Marshal(suggestions)
	if err != nil {
		r.logger.Error("Failed to marshal suggestions", zap.Error(err))
		return fmt.Errorf("marshal suggestions: %w", err)
	}

	return r.Set(ctx, SuggestionsKey(query, limit), data, ttl)
}
