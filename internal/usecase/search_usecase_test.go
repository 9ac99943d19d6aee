package usecase_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/usecase"
)

var bandungSuggestions = []domain.SearchSuggestion{
	{Lat: "-6.9175", Lon: "107.6191", DisplayName: "Bandung, Jawa Barat, Indonesia"},
	{Lat: "-6.8168", Lon: "107.6179", DisplayName: "Lembang, Bandung Barat, Indonesia"},
}

func TestSearchUseCase_Suggest(t *testing.T) {
	ctx := context.Background()
	ttl := 10 * time.Minute

	t.Run("short query skips network", func(t *testing.T) {
		geocoding := &MockGeocodingRepository{}
		uc := usecase.NewSearchUseCase(geocoding, nil, zap.NewNop(), ttl, 5, 3)

		assert.Empty(t, uc.Suggest(ctx, "  ba  "))
		assert.NotNil(t, uc.Suggest(ctx, "ab"))
		geocoding.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("cache miss fetches and stores", func(t *testing.T) {
		geocoding := &MockGeocodingRepository{}
		cache := &MockCacheRepository{}
		cache.On("GetSuggestions", ctx, "bandung", 5).Return(nil, nil)
		geocoding.On("Search", ctx, "bandung", 5).Return(bandungSuggestions, nil)
		cache.On("SetSuggestions", ctx, "bandung", 5, bandungSuggestions, ttl).Return(nil)

		uc := usecase.NewSearchUseCase(geocoding, cache, zap.NewNop(), ttl, 5, 3)
		result := uc.Suggest(ctx, " bandung ")

		assert.Equal(t, bandungSuggestions, result)
		geocoding.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("cache hit skips geocoder", func(t *testing.T) {
		geocoding := &MockGeocodingRepository{}
		cache := &MockCacheRepository{}
		cache.On("GetSuggestions", ctx, "bandung", 5).Return(bandungSuggestions, nil)

		uc := usecase.NewSearchUseCase(geocoding, cache, zap.NewNop(), ttl, 5, 3)
		assert.Equal(t, bandungSuggestions, uc.Suggest(ctx, "bandung"))
		geocoding.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("geocoder failure yields empty list", func(t *testing.T) {
		geocoding := &MockGeocodingRepository{}
		cache := &MockCacheRepository{}
		cache.On("GetSuggestions", ctx, "bandung", 5).Return(nil, stderrors.New("redis down"))
		geocoding.On("Search", ctx, "bandung", 5).Return(nil, stderrors.New("status 429"))

		uc := usecase.NewSearchUseCase(geocoding, cache, zap.NewNop(), ttl, 5, 3)
		result := uc.Suggest(ctx, "bandung")

		assert.NotNil(t, result)
		assert.Empty(t, result)
		cache.AssertNotCalled(t, "SetSuggestions", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("results are capped at limit", func(t *testing.T) {
		geocoding := &MockGeocodingRepository{}
		geocoding.On("Search", ctx, "bandung", 1).Return(bandungSuggestions, nil)

		uc := usecase.NewSearchUseCase(geocoding, nil, zap.NewNop(), ttl, 1, 3)
		assert.Len(t, uc.Suggest(ctx, "bandung"), 1)
	})
}
