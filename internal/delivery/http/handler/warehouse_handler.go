package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/pkg/errors"
	"github.com/farm-geo-service/internal/pkg/utils"
	"github.com/farm-geo-service/internal/usecase"
	"github.com/farm-geo-service/internal/usecase/dto"
)

// WarehouseHandler - обработчик запросов по складам
type WarehouseHandler struct {
	warehouseUC *usecase.WarehouseUseCase
	historyUC   *usecase.RouteHistoryUseCase
	exportUC    *usecase.ExportUseCase
	logger      *zap.Logger
}

// NewWarehouseHandler - создание нового WarehouseHandler
func NewWarehouseHandler(
	warehouseUC *usecase.WarehouseUseCase,
	historyUC *usecase.RouteHistoryUseCase,
	exportUC *usecase.ExportUseCase,
	logger *zap.Logger,
) *WarehouseHandler {
	return &WarehouseHandler{
		warehouseUC: warehouseUC,
		historyUC:   historyUC,
		exportUC:    exportUC,
		logger:      logger,
	}
}

// List godoc
// @Summary Список складов
// @Tags Warehouses
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]dto.WarehouseResponse}
// @Router /api/v1/warehouses [get]
func (h *WarehouseHandler) List(c *fiber.Ctx) error {
	warehouses := h.warehouseUC.List()
	result := make([]dto.WarehouseResponse, 0, len(warehouses))
	for _, w := range warehouses {
		result = append(result, dto.NewWarehouseResponse(w, h.warehouseUC.Errors(w.ID)))
	}
	return utils.SendSuccess(c, result, &utils.Meta{Total: len(result)})
}

// Get godoc
// @Summary Склад по ID
// @Tags Warehouses
// @Produce json
// @Param id path int true "ID склада"
// @Success 200 {object} utils.SuccessResponse{data=dto.WarehouseResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/warehouses/{id} [get]
func (h *WarehouseHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	w, err := h.warehouseUC.Get(id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.NewWarehouseResponse(*w, h.warehouseUC.Errors(id)), nil)
}

// Add godoc
// @Summary Поставить склад
// @Description Создаёт склад в точке клика: имя "Warehouse N", ёмкость 1000
// @Tags Warehouses
// @Accept json
// @Produce json
// @Param request body dto.AddWarehouseRequest true "Точка"
// @Success 201 {object} utils.SuccessResponse{data=dto.WarehouseResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/warehouses [post]
func (h *WarehouseHandler) Add(c *fiber.Ctx) error {
	var req dto.AddWarehouseRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	w := h.warehouseUC.AddAtPoint(req.Lat, req.Lng)
	return utils.SendCreated(c, dto.NewWarehouseResponse(*w, nil))
}

// Update godoc
// @Summary Изменить склад
// @Description Частичное обновление: переданные поля заменяются, остальные остаются
// @Tags Warehouses
// @Accept json
// @Produce json
// @Param id path int true "ID склада"
// @Param request body dto.UpdateWarehouseRequest true "Изменения"
// @Success 200 {object} utils.SuccessResponse{data=dto.WarehouseResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/warehouses/{id} [patch]
func (h *WarehouseHandler) Update(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.UpdateWarehouseRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	w, err := h.warehouseUC.Update(id, req.ToDomain())
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.NewWarehouseResponse(*w, h.warehouseUC.Errors(id)), nil)
}

// Validate godoc
// @Summary Проверить склад перед сохранением
// @Tags Warehouses
// @Produce json
// @Param id path int true "ID склада"
// @Success 200 {object} utils.SuccessResponse{data=dto.ValidationResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/warehouses/{id}/validate [post]
func (h *WarehouseHandler) Validate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	ok, fieldErrors, err := h.warehouseUC.Validate(id)
	if err != nil {
		return utils.SendError(c, err)
	}
	if !ok {
		return utils.SendError(c, validationFailed(fieldErrors))
	}
	return utils.SendSuccess(c, dto.ValidationResponse{Valid: true, Errors: fieldErrors}, nil)
}

// Enrich godoc
// @Summary Загрузить адрес и высоту склада
// @Tags Warehouses
// @Produce json
// @Param id path int true "ID склада"
// @Success 200 {object} utils.SuccessResponse{data=dto.WarehouseResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/warehouses/{id}/enrich [post]
func (h *WarehouseHandler) Enrich(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	w, err := h.warehouseUC.FetchEnrichment(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.NewWarehouseResponse(*w, h.warehouseUC.Errors(id)), nil)
}

// Select godoc
// @Summary Выбрать склад
// @Tags Warehouses
// @Produce json
// @Param id path int true "ID склада"
// @Success 200 {object} utils.SuccessResponse{data=dto.WarehouseResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/warehouses/{id}/select [post]
func (h *WarehouseHandler) Select(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	w, err := h.warehouseUC.Select(id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.NewWarehouseResponse(*w, h.warehouseUC.Errors(id)), nil)
}

// Selected godoc
// @Summary Выбранный склад
// @Tags Warehouses
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.WarehouseResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/warehouses/selected [get]
func (h *WarehouseHandler) Selected(c *fiber.Ctx) error {
	w := h.warehouseUC.Selected()
	if w == nil {
		return utils.SendError(c, errors.ErrWarehouseNotFound.WithDetails(map[string]interface{}{"selected": "none"}))
	}
	return utils.SendSuccess(c, dto.NewWarehouseResponse(*w, h.warehouseUC.Errors(w.ID)), nil)
}

// Delete godoc
// @Summary Удалить склад
// @Description Удаляет склад и все маршруты, где он является концом
// @Tags Warehouses
// @Param id path int true "ID склада"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/warehouses/{id} [delete]
func (h *WarehouseHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := h.warehouseUC.Delete(id); err != nil {
		return utils.SendError(c, err)
	}
	if removed := h.historyUC.RemoveWarehouse(id); removed > 0 {
		h.logger.Info("Routes of deleted warehouse removed", zap.Int64("id", id), zap.Int("routes", removed))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// KnownDistances godoc
// @Summary Известные маршруты склада
// @Description Маршруты из истории, где склад является началом или концом
// @Tags Warehouses
// @Produce json
// @Param id path int true "ID склада"
// @Success 200 {object} utils.SuccessResponse{data=[]dto.KnownDistance}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/warehouses/{id}/routes [get]
func (h *WarehouseHandler) KnownDistances(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	if _, err := h.warehouseUC.Get(id); err != nil {
		return utils.SendError(c, err)
	}

	result := dto.NewKnownDistances(id, h.historyUC.GetRoutesFromWarehouse(id))
	return utils.SendSuccess(c, result, &utils.Meta{Total: len(result)})
}

// ExportGeoJSON godoc
// @Summary Экспорт складов в GeoJSON
// @Tags Export
// @Produce json
// @Success 200 {object} map[string]interface{} "FeatureCollection"
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/warehouses/export.geojson [get]
func (h *WarehouseHandler) ExportGeoJSON(c *fiber.Ctx) error {
	data, err := h.exportUC.WarehousesGeoJSON()
	if err != nil {
		return utils.SendError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/geo+json")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="warehouses.geojson"`)
	return c.Send(data)
}
