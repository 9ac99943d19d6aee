package dto

import (
	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/pkg/geo"
)

// ComputeRouteRequest - маршрут от склада до склада или участка (isFarm=true)
type ComputeRouteRequest struct {
	FromWarehouseID int64  `json:"fromWarehouseId" validate:"required"`
	ToID            int64  `json:"toId" validate:"required"`
	Vehicle         string `json:"vehicle" validate:"required,oneof=motorcycle car truck"`
	IsFarm          bool   `json:"isFarm"`
}

// RouteLookupRequest - точный поиск маршрута в истории
type RouteLookupRequest struct {
	From    int64  `query:"from" validate:"required"`
	To      int64  `query:"to" validate:"required"`
	Vehicle string `query:"vehicle" validate:"required,oneof=motorcycle car truck"`
	IsFarm  bool   `query:"isFarm"`
}

// RouteResponse - запись истории плюс геометрия в encoded polyline для карты
type RouteResponse struct {
	domain.RouteHistory
	Polyline string `json:"polyline"`
}

func NewRouteResponse(r domain.RouteHistory) RouteResponse {
	return RouteResponse{
		RouteHistory: r,
		Polyline:     geo.EncodePolyline(r.Coordinates),
	}
}

// KnownDistance - маршрут, затрагивающий склад, с точки зрения этого склада
type KnownDistance struct {
	RouteID   int64          `json:"routeId"`
	Direction string         `json:"direction"` // outbound | inbound
	OtherID   int64          `json:"otherId"`
	OtherName string         `json:"otherName"`
	IsFarm    bool           `json:"isFarm"`
	Vehicle   domain.Vehicle `json:"vehicle"`
	Distance  float64        `json:"distance"`
	Duration  float64        `json:"duration"`
	CreatedAt int64          `json:"createdAt"`
}

func NewKnownDistances(warehouseID int64, routes []domain.RouteHistory) []KnownDistance {
	out := make([]KnownDistance, 0, len(routes))
	for _, r := range routes {
		kd := KnownDistance{
			RouteID:   r.ID,
			IsFarm:    r.IsFarm,
			Vehicle:   r.Vehicle,
			Distance:  r.Distance,
			Duration:  r.Duration,
			CreatedAt: r.CreatedAt,
		}
		if r.FromWarehouseID == warehouseID {
			kd.Direction = "outbound"
			kd.OtherID = r.ToWarehouseID
			kd.OtherName = r.ToWarehouseName
		} else {
			kd.Direction = "inbound"
			kd.OtherID = r.FromWarehouseID
			kd.OtherName = r.FromWarehouseName
		}
		out = append(out, kd)
	}
	return out
}
