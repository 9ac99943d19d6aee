package usecase

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/domain/repository"
	"github.com/farm-geo-service/internal/pkg/errors"
	"github.com/farm-geo-service/internal/pkg/geo"
	"github.com/farm-geo-service/internal/usecase/dto"
)

// RoutingUseCase рассчитывает маршрут от склада до склада или участка и пишет его в историю
type RoutingUseCase struct {
	routingRepo repository.RoutingRepository
	warehouses  *WarehouseUseCase
	areas       *AreaUseCase
	history     *RouteHistoryUseCase
	logger      *zap.Logger
}

// NewRoutingUseCase - создание нового RoutingUseCase
func NewRoutingUseCase(
	routingRepo repository.RoutingRepository,
	warehouses *WarehouseUseCase,
	areas *AreaUseCase,
	history *RouteHistoryUseCase,
	logger *zap.Logger,
) *RoutingUseCase {
	return &RoutingUseCase{
		routingRepo: routingRepo,
		warehouses:  warehouses,
		areas:       areas,
		history:     history,
		logger:      logger,
	}
}

type routeEndpoint struct {
	name  string
	point domain.Coordinate
}

// ComputeRoute строит маршрут origin -> destination. Точка назначения участка - центроид его вершин.
// При сбое сервиса маршрутизации возвращает ErrRouteUnavailable, история не меняется.
func (uc *RoutingUseCase) ComputeRoute(ctx context.Context, req dto.ComputeRouteRequest) (*domain.RouteHistory, error) {
	vehicle := domain.Vehicle(req.Vehicle)
	profile, err := vehicle.Profile()
	if err != nil {
		return nil, errors.ErrInvalidVehicle.WithDetails(map[string]interface{}{"vehicle": req.Vehicle})
	}

	from, err := uc.warehouses.Get(req.FromWarehouseID)
	if err != nil {
		return nil, err
	}

	to, err := uc.destination(req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	route, err := uc.routingRepo.Route(ctx, from.Coordinate(), to.point, profile)
	if err != nil {
		uc.logger.Error("Route calculation failed",
			zap.Int64("from", req.FromWarehouseID),
			zap.Int64("to", req.ToID),
			zap.String("profile", profile),
			zap.Error(err))
		return nil, errors.ErrRouteUnavailable
	}

	entry := uc.history.AddRoute(domain.RouteHistory{
		FromWarehouseID:   from.ID,
		ToWarehouseID:     req.ToID,
		FromWarehouseName: from.Name,
		ToWarehouseName:   to.name,
		Vehicle:           vehicle,
		Distance:          route.Distance,
		Duration:          route.Duration,
		Coordinates:       route.Coordinates,
		IsFarm:            req.IsFarm,
	})

	uc.logger.Info("Route calculated",
		zap.Int64("from", from.ID),
		zap.Int64("to", req.ToID),
		zap.Bool("is_farm", req.IsFarm),
		zap.String("vehicle", req.Vehicle),
		zap.Float64("distance_m", route.Distance),
		zap.Float64("straight_km", geo.HaversineDistance(from.Lat, from.Lng, to.point.Lat, to.point.Lng)),
		zap.Float64("duration_s", route.Duration),
		zap.Duration("took", time.Since(start)))

	return &entry, nil
}

func (uc *RoutingUseCase) destination(req dto.ComputeRouteRequest) (*routeEndpoint, error) {
	if req.IsFarm {
		area, err := uc.areas.Get(req.ToID)
		if err != nil {
			return nil, errors.ErrDestinationNotFound.WithDetails(map[string]interface{}{"toId": req.ToID, "isFarm": true})
		}
		if len(area.Points) == 0 {
			return nil, errors.ErrDestinationNotFound.WithDetails(map[string]interface{}{"toId": req.ToID, "reason": "area has no points"})
		}
		return &routeEndpoint{name: area.Name, point: domain.Centroid(area.Points)}, nil
	}

	if req.ToID == req.FromWarehouseID {
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"toId": "destination must differ from origin"})
	}
	w, err := uc.warehouses.Get(req.ToID)
	if err != nil {
		return nil, errors.ErrDestinationNotFound.WithDetails(map[string]interface{}{"toId": req.ToID, "isFarm": false})
	}
	return &routeEndpoint{name: w.Name, point: w.Coordinate()}, nil
}
