package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/usecase"
)

func TestEnrichmentUseCase_Enrich(t *testing.T) {
	ctx := context.Background()
	point := domain.Coordinate{Lat: -6.9, Lng: 107.6}

	tests := []struct {
		name         string
		address      string
		geocodeErr   error
		elevation    float64
		found        bool
		elevationErr error
		expected     domain.Enrichment
	}{
		{
			name:      "both lookups succeed",
			address:   "Jl. Merdeka, Bandung",
			elevation: 768,
			found:     true,
			expected:  domain.Enrichment{Address: "Jl. Merdeka, Bandung", Elevation: 768},
		},
		{
			name:      "empty geocode result",
			address:   "",
			elevation: 12,
			found:     true,
			expected:  domain.Enrichment{Address: domain.AddressNotFound, Elevation: 12},
		},
		{
			name:       "geocode failure does not block elevation",
			geocodeErr: errors.New("timeout"),
			elevation:  640,
			found:      true,
			expected:   domain.Enrichment{Address: domain.AddressFailed, Elevation: 640},
		},
		{
			name:     "elevation not found",
			address:  "Lembang",
			found:    false,
			expected: domain.Enrichment{Address: "Lembang", Elevation: 0},
		},
		{
			name:         "elevation failure",
			address:      "Lembang",
			elevationErr: errors.New("status 503"),
			expected:     domain.Enrichment{Address: "Lembang", Elevation: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			geocoding := &MockGeocodingRepository{}
			elevation := &MockElevationRepository{}
			geocoding.On("ReverseGeocode", mock.Anything, point.Lat, point.Lng).Return(tt.address, tt.geocodeErr)
			elevation.On("Elevation", mock.Anything, point.Lat, point.Lng).Return(tt.elevation, tt.found, tt.elevationErr)

			uc := usecase.NewEnrichmentUseCase(geocoding, elevation, zap.NewNop())
			result := uc.Enrich(ctx, point)

			assert.Equal(t, tt.expected, result)
			geocoding.AssertExpectations(t)
			elevation.AssertExpectations(t)
		})
	}
}
