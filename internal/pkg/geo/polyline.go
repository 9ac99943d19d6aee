package geo

import (
	"fmt"

	"github.com/twpayne/go-polyline"

	"github.com/farm-geo-service/internal/domain"
)

// DecodePolyline декодирует Google encoded polyline (точность 1e5) в последовательность [lat, lng]
func DecodePolyline(encoded string) ([]domain.Coordinate, error) {
	if encoded == "" {
		return nil, fmt.Errorf("empty polyline")
	}

	coords, rest, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("failed to decode polyline: %w", err)
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("failed to decode polyline: %d trailing bytes", len(rest))
	}

	points := make([]domain.Coordinate, len(coords))
	for i, coord := range coords {
		points[i] = domain.Coordinate{Lat: coord[0], Lng: coord[1]}
	}
	return points, nil
}

// EncodePolyline кодирует последовательность точек обратно в polyline (точность 1e5)
func EncodePolyline(points []domain.Coordinate) string {
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Lat, p.Lng}
	}
	return string(polyline.EncodeCoords(coords))
}
