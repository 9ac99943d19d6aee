package usecase

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/domain/repository"
)

// Searcher - прямое геокодирование для строки поиска
type Searcher interface {
	Suggest(ctx context.Context, query string) []domain.SearchSuggestion
}

// SearchUseCase - best-effort поиск мест: любая ошибка превращается в пустой список
type SearchUseCase struct {
	geocodingRepo  repository.GeocodingRepository
	cacheRepo      repository.CacheRepository
	logger         *zap.Logger
	cacheTTL       time.Duration
	limit          int
	minQueryLength int
}

// NewSearchUseCase - создание нового SearchUseCase. cacheRepo может быть nil.
func NewSearchUseCase(
	geocodingRepo repository.GeocodingRepository,
	cacheRepo repository.CacheRepository,
	logger *zap.Logger,
	cacheTTL time.Duration,
	limit int,
	minQueryLength int,
) *SearchUseCase {
	return &SearchUseCase{
		geocodingRepo:  geocodingRepo,
		cacheRepo:      cacheRepo,
		logger:         logger,
		cacheTTL:       cacheTTL,
		limit:          limit,
		minQueryLength: minQueryLength,
	}
}

// MinQueryLength - минимальная длина запроса (в символах после trim)
func (uc *SearchUseCase) MinQueryLength() int {
	return uc.minQueryLength
}

// Suggest возвращает до limit подсказок; короткий запрос не уходит в сеть
func (uc *SearchUseCase) Suggest(ctx context.Context, query string) []domain.SearchSuggestion {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < uc.minQueryLength {
		return []domain.SearchSuggestion{}
	}

	if uc.cacheRepo != nil {
		cached, err := uc.cacheRepo.GetSuggestions(ctx, query, uc.limit)
		if err != nil {
			uc.logger.Warn("Failed to read search cache", zap.String("query", query), zap.Error(err))
		} else if cached != nil {
			uc.logger.Debug("Search cache hit", zap.String("query", query))
			return cached
		}
	}

	suggestions, err := uc.geocodingRepo.Search(ctx, query, uc.limit)
	if err != nil {
		uc.logger.Warn("Search failed, returning no suggestions", zap.String("query", query), zap.Error(err))
		return []domain.SearchSuggestion{}
	}
	if len(suggestions) > uc.limit {
		suggestions = suggestions[:uc.limit]
	}

	if uc.cacheRepo != nil {
		if err := uc.cacheRepo.SetSuggestions(ctx, query, uc.limit, suggestions, uc.cacheTTL); err != nil {
			uc.logger.Warn("Failed to write search cache", zap.String("query", query), zap.Error(err))
		}
	}

	return suggestions
}
