package domain

// PolygonColors - палитра для новых участков, назначается по модулю количества
var PolygonColors = []string{
	"#22c55e",
	"#3b82f6",
	"#eab308",
	"#ef4444",
	"#8b5cf6",
	"#ec4899",
	"#06b6d4",
	"#f97316",
}

// ColorForIndex выбирает цвет для участка, создаваемого при count существующих
func ColorForIndex(count int) string {
	return PolygonColors[count%len(PolygonColors)]
}

// Editable fields of a farm area
const (
	FieldName        = "name"
	FieldVarieties   = "varieties"
	FieldHarvestDate = "harvestDate"
	FieldCapacity    = "capacity"
)

// FarmArea - нарисованный пользователем участок (полигон)
type FarmArea struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Varieties   string       `json:"varieties"`
	HarvestDate string       `json:"harvestDate"`
	Points      []Coordinate `json:"points"`
	Color       string       `json:"color"`
	Area        float64      `json:"area"`
	Elevation   *float64     `json:"elevation,omitempty"`
	Address     *string      `json:"address,omitempty"`
}

// NeedsEnrichment - не загружен адрес или высота
func (a *FarmArea) NeedsEnrichment() bool {
	return a.Elevation == nil || a.Address == nil
}

// Clone возвращает глубокую копию, чтобы наружу не утекали срезы стора
func (a FarmArea) Clone() FarmArea {
	out := a
	out.Points = append([]Coordinate(nil), a.Points...)
	if a.Elevation != nil {
		v := *a.Elevation
		out.Elevation = &v
	}
	if a.Address != nil {
		v := *a.Address
		out.Address = &v
	}
	return out
}

// FieldErrors - сообщения валидации по именам полей
type FieldErrors map[string]string

// RectangleCorners раскладывает прямоугольник по двум противоположным углам
// в четыре вершины: NW, NE, SE, SW
func RectangleCorners(a, b Coordinate) []Coordinate {
	north, south := a.Lat, b.Lat
	if south > north {
		north, south = south, north
	}
	west, east := a.Lng, b.Lng
	if west > east {
		west, east = east, west
	}
	return []Coordinate{
		{Lat: north, Lng: west},
		{Lat: north, Lng: east},
		{Lat: south, Lng: east},
		{Lat: south, Lng: west},
	}
}
