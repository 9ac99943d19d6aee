package repository

import (
	"context"

	"github.com/farm-geo-service/internal/domain"
)

// RoutingRepository определяет методы для работы с сервисом маршрутизации
type RoutingRepository interface {
	// Route строит маршрут от origin до destination для профиля (driving-car, driving-hgv).
	// Ошибка оборачивает errors.ErrRouteUnavailable, если маршрут не получен.
	Route(ctx context.Context, origin, destination domain.Coordinate, profile string) (*domain.Route, error)
}
