package dto

import "github.com/farm-geo-service/internal/domain"

type SearchRequest struct {
	Query string `query:"q"`
}

type SearchResponse struct {
	Query       string                    `json:"query"`
	Suggestions []domain.SearchSuggestion `json:"suggestions"`
}

type ReverseGeocodeRequest struct {
	Lat float64 `query:"lat" validate:"min=-90,max=90"`
	Lng float64 `query:"lng" validate:"min=-180,max=180"`
}

type EnrichmentResponse struct {
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	Address          string  `json:"address"`
	AddressFormatted string  `json:"addressFormatted"`
	Elevation        float64 `json:"elevation"`
}

// TypeQueryRequest - новое значение строки поиска в сессии
type TypeQueryRequest struct {
	Query string `json:"query"`
}

// SelectSuggestionRequest - выбор подсказки; отрицательный index означает Enter
type SelectSuggestionRequest struct {
	Index int `json:"index"`
}
