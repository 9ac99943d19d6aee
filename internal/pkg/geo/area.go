package geo

import (
	"fmt"
	"math"

	"github.com/farm-geo-service/internal/domain"
)

// EarthRadiusMeters - экваториальный радиус WGS84, используется как радиус сферы
const EarthRadiusMeters = 6378137.0

func toRad(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// Area вычисляет площадь замкнутого кольца на сфере (м²) через сферический избыток.
// Последняя точка соединяется с первой. Для менее чем 3 точек возвращает 0.
// Приближение для отображения на карте, не для геодезии.
func Area(points []domain.Coordinate) float64 {
	if len(points) < 3 {
		return 0
	}

	var sum float64
	for i := range points {
		p1 := points[i]
		p2 := points[(i+1)%len(points)]
		sum += toRad(p2.Lng-p1.Lng) * (2 + math.Sin(toRad(p1.Lat)) + math.Sin(toRad(p2.Lat)))
	}

	return math.Abs(sum * EarthRadiusMeters * EarthRadiusMeters / 2)
}

// FormatArea форматирует площадь: км² от 1 000 000 м², га от 10 000 м², иначе целые м²
func FormatArea(area float64) string {
	switch {
	case area >= 1_000_000:
		return fmt.Sprintf("%.2f km²", area/1_000_000)
	case area >= 10_000:
		return fmt.Sprintf("%.2f ha", area/10_000)
	default:
		return fmt.Sprintf("%.0f m²", area)
	}
}
