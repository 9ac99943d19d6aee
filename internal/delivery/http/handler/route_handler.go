package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/pkg/errors"
	"github.com/farm-geo-service/internal/pkg/utils"
	"github.com/farm-geo-service/internal/pkg/validator"
	"github.com/farm-geo-service/internal/usecase"
	"github.com/farm-geo-service/internal/usecase/dto"
)

// RouteHandler - расчёт маршрутов и история
type RouteHandler struct {
	routingUC *usecase.RoutingUseCase
	historyUC *usecase.RouteHistoryUseCase
	logger    *zap.Logger
}

// NewRouteHandler - создание нового RouteHandler
func NewRouteHandler(routingUC *usecase.RoutingUseCase, historyUC *usecase.RouteHistoryUseCase, logger *zap.Logger) *RouteHandler {
	return &RouteHandler{
		routingUC: routingUC,
		historyUC: historyUC,
		logger:    logger,
	}
}

// Compute godoc
// @Summary Рассчитать маршрут
// @Description Маршрут от склада до склада или участка (isFarm=true, точка назначения - центроид). Запись с той же тройкой (from, to, vehicle) заменяется.
// @Tags Routes
// @Accept json
// @Produce json
// @Param request body dto.ComputeRouteRequest true "Параметры маршрута"
// @Success 201 {object} utils.SuccessResponse{data=dto.RouteResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Failure 502 {object} utils.ErrorResponse
// @Router /api/v1/routes [post]
func (h *RouteHandler) Compute(c *fiber.Ctx) error {
	var req dto.ComputeRouteRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"body": err.Error()}))
	}
	if err := validator.Validate(&req); err != nil {
		if _, profileErr := domain.Vehicle(req.Vehicle).Profile(); req.Vehicle != "" && profileErr != nil {
			return utils.SendError(c, errors.ErrInvalidVehicle.WithDetails(map[string]interface{}{"vehicle": req.Vehicle}))
		}
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(validator.FieldErrors(err)))
	}

	entry, err := h.routingUC.ComputeRoute(c.UserContext(), req)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendCreated(c, dto.NewRouteResponse(*entry))
}

// List godoc
// @Summary История маршрутов
// @Tags Routes
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]dto.RouteResponse}
// @Router /api/v1/routes [get]
func (h *RouteHandler) List(c *fiber.Ctx) error {
	routes := h.historyUC.List()
	result := make([]dto.RouteResponse, 0, len(routes))
	for _, r := range routes {
		result = append(result, dto.NewRouteResponse(r))
	}
	return utils.SendSuccess(c, result, &utils.Meta{Total: len(result)})
}

// Lookup godoc
// @Summary Найти маршрут в истории
// @Description Точное совпадение ключа (from, to, vehicle, isFarm) с учётом направления
// @Tags Routes
// @Produce json
// @Param from query int true "ID склада отправления"
// @Param to query int true "ID склада или участка назначения"
// @Param vehicle query string true "motorcycle | car | truck"
// @Param isFarm query bool false "Назначение - участок"
// @Success 200 {object} utils.SuccessResponse{data=dto.RouteResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/routes/lookup [get]
func (h *RouteHandler) Lookup(c *fiber.Ctx) error {
	var req dto.RouteLookupRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"query": err.Error()}))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(validator.FieldErrors(err)))
	}

	route, err := h.historyUC.GetRoute(req.From, req.To, domain.Vehicle(req.Vehicle), req.IsFarm)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.NewRouteResponse(*route), nil)
}

// Clear godoc
// @Summary Очистить историю маршрутов
// @Tags Routes
// @Success 204
// @Router /api/v1/routes [delete]
func (h *RouteHandler) Clear(c *fiber.Ctx) error {
	h.historyUC.ClearRoutes()
	h.logger.Info("Route history cleared")
	return c.SendStatus(fiber.StatusNoContent)
}
