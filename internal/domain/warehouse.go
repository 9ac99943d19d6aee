package domain

const DefaultWarehouseCapacity = 1000

// Warehouse - склад, поставленный на карту одним кликом
type Warehouse struct {
	ID        int64   `json:"id"`
	Name      string  `json:"name"`
	Capacity  int     `json:"capacity"`
	Elevation float64 `json:"elevation"`
	Location  string  `json:"location"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

func (w *Warehouse) Coordinate() Coordinate {
	return Coordinate{Lat: w.Lat, Lng: w.Lng}
}

// NeedsEnrichment - ни адрес, ни высота ещё не заполнены
func (w *Warehouse) NeedsEnrichment() bool {
	return w.Location == "" && w.Elevation == 0
}

// WarehouseUpdate - частичное обновление; nil означает "не менять"
type WarehouseUpdate struct {
	Name      *string  `json:"name,omitempty"`
	Capacity  *int     `json:"capacity,omitempty"`
	Location  *string  `json:"location,omitempty"`
	Elevation *float64 `json:"elevation,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lng       *float64 `json:"lng,omitempty"`
}
