package dto

import (
	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/pkg/geo"
)

// AddWarehouseRequest - клик по карте в режиме размещения склада
type AddWarehouseRequest struct {
	Lat float64 `json:"lat" validate:"min=-90,max=90"`
	Lng float64 `json:"lng" validate:"min=-180,max=180"`
}

// UpdateWarehouseRequest - частичное обновление; capacity проверяется только при валидации
type UpdateWarehouseRequest struct {
	Name      *string  `json:"name,omitempty"`
	Capacity  *int     `json:"capacity,omitempty"`
	Location  *string  `json:"location,omitempty"`
	Elevation *float64 `json:"elevation,omitempty"`
	Lat       *float64 `json:"lat,omitempty" validate:"omitempty,min=-90,max=90"`
	Lng       *float64 `json:"lng,omitempty" validate:"omitempty,min=-180,max=180"`
}

func (r UpdateWarehouseRequest) ToDomain() domain.WarehouseUpdate {
	return domain.WarehouseUpdate{
		Name:      r.Name,
		Capacity:  r.Capacity,
		Location:  r.Location,
		Elevation: r.Elevation,
		Lat:       r.Lat,
		Lng:       r.Lng,
	}
}

type WarehouseResponse struct {
	domain.Warehouse
	LocationFormatted string             `json:"locationFormatted,omitempty"`
	Errors            domain.FieldErrors `json:"errors,omitempty"`
}

func NewWarehouseResponse(w domain.Warehouse, fieldErrors domain.FieldErrors) WarehouseResponse {
	resp := WarehouseResponse{
		Warehouse:         w,
		LocationFormatted: geo.FormatAddress(w.Location),
	}
	if len(fieldErrors) > 0 {
		resp.Errors = fieldErrors
	}
	return resp
}
