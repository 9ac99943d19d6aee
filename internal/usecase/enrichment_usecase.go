package usecase

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/domain/repository"
)

// Enricher - получение адреса и высоты для координаты.
// Никогда не возвращает ошибку: сбои заменяются сентинелами.
type Enricher interface {
	Enrich(ctx context.Context, point domain.Coordinate) domain.Enrichment
}

// EnrichmentUseCase объединяет обратное геокодирование и высоту в один вызов
type EnrichmentUseCase struct {
	geocodingRepo repository.GeocodingRepository
	elevationRepo repository.ElevationRepository
	logger        *zap.Logger
}

// NewEnrichmentUseCase - создание нового EnrichmentUseCase
func NewEnrichmentUseCase(
	geocodingRepo repository.GeocodingRepository,
	elevationRepo repository.ElevationRepository,
	logger *zap.Logger,
) *EnrichmentUseCase {
	return &EnrichmentUseCase{
		geocodingRepo: geocodingRepo,
		elevationRepo: elevationRepo,
		logger:        logger,
	}
}

// ReverseGeocode возвращает display name точки, "Address not found" при пустом
// результате или ответе не 200 и "Failed to load", если ответа нет вовсе
func (uc *EnrichmentUseCase) ReverseGeocode(ctx context.Context, lat, lng float64) string {
	name, err := uc.geocodingRepo.ReverseGeocode(ctx, lat, lng)
	if err != nil {
		uc.logger.Warn("Reverse geocoding failed",
			zap.Float64("lat", lat),
			zap.Float64("lng", lng),
			zap.Error(err))
		return domain.AddressFailed
	}
	if name == "" {
		return domain.AddressNotFound
	}
	return name
}

// Elevation возвращает высоту точки; 0 при отсутствии результата или ошибке
func (uc *EnrichmentUseCase) Elevation(ctx context.Context, lat, lng float64) float64 {
	elevation, found, err := uc.elevationRepo.Elevation(ctx, lat, lng)
	if err != nil {
		uc.logger.Warn("Elevation lookup failed",
			zap.Float64("lat", lat),
			zap.Float64("lng", lng),
			zap.Error(err))
		return 0
	}
	if !found {
		return 0
	}
	return elevation
}

// Enrich запускает оба запроса параллельно; каждый выполняется даже при сбое другого
func (uc *EnrichmentUseCase) Enrich(ctx context.Context, point domain.Coordinate) domain.Enrichment {
	var (
		wg     sync.WaitGroup
		result domain.Enrichment
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		result.Address = uc.ReverseGeocode(ctx, point.Lat, point.Lng)
	}()
	go func() {
		defer wg.Done()
		result.Elevation = uc.Elevation(ctx, point.Lat, point.Lng)
	}()
	wg.Wait()

	uc.logger.Debug("Enrichment completed",
		zap.Float64("lat", point.Lat),
		zap.Float64("lng", point.Lng),
		zap.String("address", result.Address),
		zap.Float64("elevation", result.Elevation))

	return result
}
