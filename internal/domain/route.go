package domain

import "fmt"

type Vehicle string

const (
	VehicleMotorcycle Vehicle = "motorcycle"
	VehicleCar        Vehicle = "car"
	VehicleTruck      Vehicle = "truck"
)

// Routing profiles. Upstream has no motorcycle profile, so motorcycles route as cars.
const (
	ProfileDrivingCar = "driving-car"
	ProfileDrivingHGV = "driving-hgv"
)

// Profile возвращает профиль маршрутизации для типа транспорта
func (v Vehicle) Profile() (string, error) {
	switch v {
	case VehicleMotorcycle, VehicleCar:
		return ProfileDrivingCar, nil
	case VehicleTruck:
		return ProfileDrivingHGV, nil
	default:
		return "", fmt.Errorf("unknown vehicle %q", string(v))
	}
}

// Route - результат запроса к сервису маршрутизации
type Route struct {
	Coordinates []Coordinate `json:"coordinates"`
	Distance    float64      `json:"distance"` // meters
	Duration    float64      `json:"duration"` // seconds
}

// RouteHistory - сохранённый рассчитанный маршрут.
// ToWarehouseID ссылается на участок, когда IsFarm=true.
type RouteHistory struct {
	ID                int64        `json:"id"`
	FromWarehouseID   int64        `json:"fromWarehouseId"`
	ToWarehouseID     int64        `json:"toWarehouseId"`
	FromWarehouseName string       `json:"fromWarehouseName"`
	ToWarehouseName   string       `json:"toWarehouseName"`
	Vehicle           Vehicle      `json:"vehicle"`
	Distance          float64      `json:"distance"`
	Duration          float64      `json:"duration"`
	CreatedAt         int64        `json:"createdAt"`
	Coordinates       []Coordinate `json:"coordinates"`
	IsFarm            bool         `json:"isFarm,omitempty"`
}

// SameKey - совпадает ключ (from, to, vehicle) в запрошенном направлении.
// Участки и склады нумеруются независимо, поэтому вид назначения входит в ключ.
func (r *RouteHistory) SameKey(fromID, toID int64, vehicle Vehicle, isFarm bool) bool {
	return r.FromWarehouseID == fromID && r.ToWarehouseID == toID && r.Vehicle == vehicle && r.IsFarm == isFarm
}

// TouchesWarehouse - склад id на любом из концов маршрута; назначение-участок не считается
func (r *RouteHistory) TouchesWarehouse(id int64) bool {
	return r.FromWarehouseID == id || (!r.IsFarm && r.ToWarehouseID == id)
}
