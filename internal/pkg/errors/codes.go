package errors

import "net/http"

var (
	ErrAreaNotFound = New(
		"AREA_NOT_FOUND",
		"Farm area not found",
		http.StatusNotFound,
	)

	ErrWarehouseNotFound = New(
		"WAREHOUSE_NOT_FOUND",
		"Warehouse not found",
		http.StatusNotFound,
	)

	ErrDestinationNotFound = New(
		"DESTINATION_NOT_FOUND",
		"Route destination not found",
		http.StatusNotFound,
	)

	ErrRouteNotFound = New(
		"ROUTE_NOT_FOUND",
		"Route not found in history",
		http.StatusNotFound,
	)

	ErrRouteUnavailable = New(
		"ROUTE_UNAVAILABLE",
		"Failed to calculate route. Please try again.",
		http.StatusBadGateway,
	)

	ErrValidationFailed = New(
		"VALIDATION_FAILED",
		"One or more fields are invalid",
		http.StatusUnprocessableEntity,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidVertexIndex = New(
		"INVALID_VERTEX_INDEX",
		"Vertex or edge index out of range",
		http.StatusBadRequest,
	)

	ErrInvalidVehicle = New(
		"INVALID_VEHICLE",
		"Invalid vehicle type",
		http.StatusBadRequest,
	)

	ErrInvalidField = New(
		"INVALID_FIELD",
		"Field cannot be edited",
		http.StatusBadRequest,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrSearchSessionNotFound = New(
		"SEARCH_SESSION_NOT_FOUND",
		"Search session not found or expired",
		http.StatusNotFound,
	)

	ErrStorageError = New(
		"STORAGE_ERROR",
		"Storage operation failed",
		http.StatusInternalServerError,
	)

	ErrNoSensorData = New(
		"NO_SENSOR_DATA",
		"No sensor reading received yet",
		http.StatusNotFound,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
