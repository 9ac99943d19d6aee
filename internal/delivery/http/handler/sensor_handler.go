package handler

import (
	"github.com/gofiber/fiber/v2"

	"github.com/farm-geo-service/internal/pkg/errors"
	"github.com/farm-geo-service/internal/pkg/utils"
	"github.com/farm-geo-service/internal/telemetry"
)

var errNoReading = errors.New("NO_SENSOR_DATA", "No sensor reading received yet", fiber.StatusNotFound)

// SensorHandler отдаёт данные ленты телеметрии
type SensorHandler struct {
	feed *telemetry.Feed
}

func NewSensorHandler(feed *telemetry.Feed) *SensorHandler {
	return &SensorHandler{feed: feed}
}

// Latest godoc
// @Summary Последнее показание датчиков
// @Tags Sensors
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=domain.SensorReading}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/sensors/latest [get]
func (h *SensorHandler) Latest(c *fiber.Ctx) error {
	reading, ok := h.feed.Latest()
	if !ok {
		return utils.SendError(c, errNoReading)
	}
	return utils.SendSuccess(c, reading, nil)
}

// Status godoc
// @Summary Состояние ленты телеметрии
// @Tags Sensors
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=telemetry.Status}
// @Router /api/v1/sensors/status [get]
func (h *SensorHandler) Status(c *fiber.Ctx) error {
	return utils.SendSuccess(c, h.feed.Status(), nil)
}
