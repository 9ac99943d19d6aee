package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-kml"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/pkg/geo"
)

// ExportUseCase выгружает участки и склады в GeoJSON и KML
type ExportUseCase struct {
	areas      *AreaUseCase
	warehouses *WarehouseUseCase
	logger     *zap.Logger
}

// NewExportUseCase - создание нового ExportUseCase
func NewExportUseCase(areas *AreaUseCase, warehouses *WarehouseUseCase, logger *zap.Logger) *ExportUseCase {
	return &ExportUseCase{
		areas:      areas,
		warehouses: warehouses,
		logger:     logger,
	}
}

// AreasGeoJSON - FeatureCollection полигонов; кольцо замкнуто, координаты [lng, lat]
func (uc *ExportUseCase) AreasGeoJSON() ([]byte, error) {
	areas := uc.areas.List()
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(areas))}

	for _, area := range areas {
		polygon, err := geom.NewPolygon(geom.XY).SetCoords([][]geom.Coord{closedRing(area.Points)})
		if err != nil {
			uc.logger.Error("Failed to build polygon", zap.Int64("id", area.ID), zap.Error(err))
			return nil, fmt.Errorf("build polygon %d: %w", area.ID, err)
		}

		properties := map[string]interface{}{
			"name":          area.Name,
			"varieties":     area.Varieties,
			"harvestDate":   area.HarvestDate,
			"color":         area.Color,
			"area":          area.Area,
			"areaFormatted": geo.FormatArea(area.Area),
		}
		if area.Address != nil {
			properties["address"] = *area.Address
		}
		if area.Elevation != nil {
			properties["elevation"] = *area.Elevation
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			ID:         strconv.FormatInt(area.ID, 10),
			Geometry:   polygon,
			Properties: properties,
		})
	}

	return json.Marshal(fc)
}

// WarehousesGeoJSON - FeatureCollection точек складов
func (uc *ExportUseCase) WarehousesGeoJSON() ([]byte, error) {
	warehouses := uc.warehouses.List()
	fc := &geojson.FeatureCollection{Features: make([]*geojson.Feature, 0, len(warehouses))}

	for _, w := range warehouses {
		point, err := geom.NewPoint(geom.XY).SetCoords(geom.Coord{w.Lng, w.Lat})
		if err != nil {
			return nil, fmt.Errorf("build point %d: %w", w.ID, err)
		}

		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       strconv.FormatInt(w.ID, 10),
			Geometry: point,
			Properties: map[string]interface{}{
				"name":      w.Name,
				"capacity":  w.Capacity,
				"location":  w.Location,
				"elevation": w.Elevation,
			},
		})
	}

	return json.Marshal(fc)
}

// AreasKML - KML-документ: стиль на цвет палитры и Placemark с полигоном на участок
func (uc *ExportUseCase) AreasKML() ([]byte, error) {
	areas := uc.areas.List()

	children := []kml.Element{kml.Name("Farm areas")}
	styled := make(map[string]bool)
	for _, area := range areas {
		styleID := styleIDForColor(area.Color)
		if styled[styleID] {
			continue
		}
		styled[styleID] = true

		fill := parseHexColor(area.Color)
		outline := fill
		fill.A = 0x66
		children = append(children, kml.SharedStyle(styleID,
			kml.LineStyle(kml.Color(outline), kml.Width(2)),
			kml.PolyStyle(kml.Color(fill)),
		))
	}

	for _, area := range areas {
		ring := closedRing(area.Points)
		coords := make([]kml.Coordinate, len(ring))
		for i, c := range ring {
			coords[i] = kml.Coordinate{Lon: c[0], Lat: c[1]}
		}

		children = append(children, kml.Placemark(
			kml.Name(area.Name),
			kml.Description(areaDescription(area)),
			kml.StyleURL("#"+styleIDForColor(area.Color)),
			kml.Polygon(
				kml.OuterBoundaryIs(
					kml.LinearRing(kml.Coordinates(coords...)),
				),
			),
		))
	}

	var buf bytes.Buffer
	if err := kml.KML(kml.Document(children...)).WriteIndent(&buf, "", "  "); err != nil {
		uc.logger.Error("Failed to write KML", zap.Error(err))
		return nil, fmt.Errorf("write kml: %w", err)
	}
	return buf.Bytes(), nil
}

func areaDescription(area domain.FarmArea) string {
	parts := []string{
		"Varieties: " + area.Varieties,
		"Harvest: " + area.HarvestDate,
		"Area: " + geo.FormatArea(area.Area),
	}
	if area.Address != nil {
		parts = append(parts, "Address: "+geo.FormatAddress(*area.Address))
	}
	if area.Elevation != nil {
		parts = append(parts, fmt.Sprintf("Elevation: %.0f m", *area.Elevation))
	}
	return strings.Join(parts, "\n")
}

// closedRing переводит точки в [lng, lat] и замыкает кольцо
func closedRing(points []domain.Coordinate) []geom.Coord {
	ring := make([]geom.Coord, 0, len(points)+1)
	for _, p := range points {
		ring = append(ring, geom.Coord{p.Lng, p.Lat})
	}
	if len(points) > 0 && points[0] != points[len(points)-1] {
		ring = append(ring, geom.Coord{points[0].Lng, points[0].Lat})
	}
	return ring
}

func styleIDForColor(hex string) string {
	return "area-" + strings.TrimPrefix(strings.ToLower(hex), "#")
}

// parseHexColor разбирает "#rrggbb"; некорректное значение даёт серый
func parseHexColor(hex string) color.RGBA {
	gray := color.RGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xff}
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return gray
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return gray
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}
