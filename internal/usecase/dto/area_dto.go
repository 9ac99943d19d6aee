package dto

import (
	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/pkg/geo"
)

// BoundsDTO - два противоположных угла прямоугольника
type BoundsDTO struct {
	SouthWest domain.Coordinate `json:"southWest"`
	NorthEast domain.Coordinate `json:"northEast"`
}

// DrawAreaRequest - нарисованный прямоугольник: либо четыре угла, либо bounds
type DrawAreaRequest struct {
	Points []domain.Coordinate `json:"points,omitempty" validate:"omitempty,len=4"`
	Bounds *BoundsDTO          `json:"bounds,omitempty"`
}

// Corners возвращает четыре вершины прямоугольника; nil, если не передано ни то, ни другое
func (r DrawAreaRequest) Corners() []domain.Coordinate {
	if len(r.Points) == 4 {
		return r.Points
	}
	if r.Bounds != nil {
		return domain.RectangleCorners(r.Bounds.SouthWest, r.Bounds.NorthEast)
	}
	return nil
}

// PointRequest - новая позиция вершины или точка на ребре
type PointRequest struct {
	Point domain.Coordinate `json:"point"`
}

// UpdateAreaFieldRequest - правка одного текстового поля участка
type UpdateAreaFieldRequest struct {
	Field string `json:"field" validate:"required,oneof=name varieties harvestDate"`
	Value string `json:"value"`
}

// AreaResponse - участок с отформатированными площадью и адресом
type AreaResponse struct {
	domain.FarmArea
	AreaFormatted    string             `json:"areaFormatted"`
	AddressFormatted string             `json:"addressFormatted,omitempty"`
	Errors           domain.FieldErrors `json:"errors,omitempty"`
}

func NewAreaResponse(area domain.FarmArea, fieldErrors domain.FieldErrors) AreaResponse {
	resp := AreaResponse{
		FarmArea:      area,
		AreaFormatted: geo.FormatArea(area.Area),
	}
	if area.Address != nil {
		resp.AddressFormatted = geo.FormatAddress(*area.Address)
	}
	if len(fieldErrors) > 0 {
		resp.Errors = fieldErrors
	}
	return resp
}

// ValidationResponse - результат явной валидации сущности
type ValidationResponse struct {
	Valid  bool               `json:"valid"`
	Errors domain.FieldErrors `json:"errors"`
}
