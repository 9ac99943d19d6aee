package domain

import (
	"fmt"
	"strconv"
)

// Sentinel addresses. "Not found" means the lookup succeeded with no result,
// "failed" means the lookup itself could not be performed.
const (
	AddressNotFound = "Address not found"
	AddressFailed   = "Failed to load"
)

// Enrichment - адрес и высота, полученные для координаты
type Enrichment struct {
	Address   string  `json:"address"`
	Elevation float64 `json:"elevation"`
}

// SearchSuggestion - подсказка прямого геокодирования (формат Nominatim)
type SearchSuggestion struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Coordinate разбирает строковые координаты подсказки
func (s SearchSuggestion) Coordinate() (Coordinate, error) {
	lat, err := strconv.ParseFloat(s.Lat, 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("invalid suggestion lat %q: %w", s.Lat, err)
	}
	lng, err := strconv.ParseFloat(s.Lon, 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("invalid suggestion lon %q: %w", s.Lon, err)
	}
	return Coordinate{Lat: lat, Lng: lng}, nil
}
