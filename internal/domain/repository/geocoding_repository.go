package repository

import (
	"context"

	"github.com/farm-geo-service/internal/domain"
)

// GeocodingRepository определяет методы прямого и обратного геокодирования
type GeocodingRepository interface {
	// ReverseGeocode возвращает display name для координаты.
	// Пустая строка без ошибки означает, что адрес не найден.
	ReverseGeocode(ctx context.Context, lat, lng float64) (string, error)

	// Search выполняет прямое геокодирование, не более limit результатов
	Search(ctx context.Context, query string, limit int) ([]domain.SearchSuggestion, error)
}

// ElevationRepository определяет методы получения высоты над уровнем моря
type ElevationRepository interface {
	// Elevation возвращает высоту в метрах; found=false, если датасет не дал результата
	Elevation(ctx context.Context, lat, lng float64) (elevation float64, found bool, err error)
}
