package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/pkg/errors"
	"github.com/farm-geo-service/internal/pkg/utils"
	"github.com/farm-geo-service/internal/usecase"
	"github.com/farm-geo-service/internal/usecase/dto"
)

// AreaHandler - обработчик запросов редактора участков
type AreaHandler struct {
	areaUC    *usecase.AreaUseCase
	historyUC *usecase.RouteHistoryUseCase
	exportUC  *usecase.ExportUseCase
	logger    *zap.Logger
}

// NewAreaHandler - создание нового AreaHandler
func NewAreaHandler(
	areaUC *usecase.AreaUseCase,
	historyUC *usecase.RouteHistoryUseCase,
	exportUC *usecase.ExportUseCase,
	logger *zap.Logger,
) *AreaHandler {
	return &AreaHandler{
		areaUC:    areaUC,
		historyUC: historyUC,
		exportUC:  exportUC,
		logger:    logger,
	}
}

// List godoc
// @Summary Список участков
// @Description Возвращает все нарисованные участки в порядке создания
// @Tags Areas
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=[]dto.AreaResponse}
// @Router /api/v1/areas [get]
func (h *AreaHandler) List(c *fiber.Ctx) error {
	areas := h.areaUC.List()
	result := make([]dto.AreaResponse, 0, len(areas))
	for _, area := range areas {
		result = append(result, dto.NewAreaResponse(area, h.areaUC.Errors(area.ID)))
	}
	return utils.SendSuccess(c, result, &utils.Meta{Total: len(result)})
}

// Get godoc
// @Summary Участок по ID
// @Tags Areas
// @Produce json
// @Param id path int true "ID участка"
// @Success 200 {object} utils.SuccessResponse{data=dto.AreaResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/areas/{id} [get]
func (h *AreaHandler) Get(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	area, err := h.areaUC.Get(id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.NewAreaResponse(*area, h.areaUC.Errors(id)), nil)
}

// Draw godoc
// @Summary Нарисовать участок
// @Description Создаёт участок из прямоугольника: четыре угла в points или два противоположных угла в bounds. Координаты - пары [lat, lng].
// @Tags Areas
// @Accept json
// @Produce json
// @Param request body dto.DrawAreaRequest true "Прямоугольник"
// @Success 201 {object} utils.SuccessResponse{data=dto.AreaResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/areas [post]
func (h *AreaHandler) Draw(c *fiber.Ctx) error {
	var req dto.DrawAreaRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	corners := req.Corners()
	if corners == nil {
		return utils.SendError(c, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"points": "either 4 points or bounds are required",
		}))
	}

	area, err := h.areaUC.DrawRectangle(corners)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendCreated(c, dto.NewAreaResponse(*area, nil))
}

// UpdateField godoc
// @Summary Изменить поле участка
// @Description Меняет name, varieties или harvestDate. Непустое значение снимает ошибку валидации этого поля.
// @Tags Areas
// @Accept json
// @Produce json
// @Param id path int true "ID участка"
// @Param request body dto.UpdateAreaFieldRequest true "Поле и значение"
// @Success 200 {object} utils.SuccessResponse{data=dto.AreaResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/areas/{id} [patch]
func (h *AreaHandler) UpdateField(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.UpdateAreaFieldRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	area, err := h.areaUC.UpdateField(id, req.Field, req.Value)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.NewAreaResponse(*area, h.areaUC.Errors(id)), nil)
}

// UpdatePoint godoc
// @Summary Переместить вершину
// @Tags Areas
// @Accept json
// @Produce json
// @Param id path int true "ID участка"
// @Param index path int true "Индекс вершины"
// @Param request body dto.PointRequest true "Новая позиция [lat, lng]"
// @Success 200 {object} utils.SuccessResponse{data=dto.AreaResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/areas/{id}/points/{index} [put]
func (h *AreaHandler) UpdatePoint(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	index, err := paramIndex(c, "index")
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.PointRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	area, err := h.areaUC.UpdatePoint(id, index, req.Point)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.NewAreaResponse(*area, h.areaUC.Errors(id)), nil)
}

// InsertVertex godoc
// @Summary Добавить вершину на ребро
// @Description Вставляет точку между вершинами index и index+1; последнее ребро замыкает кольцо
// @Tags Areas
// @Accept json
// @Produce json
// @Param id path int true "ID участка"
// @Param index path int true "Индекс ребра"
// @Param request body dto.PointRequest true "Новая вершина [lat, lng]"
// @Success 200 {object} utils.SuccessResponse{data=dto.AreaResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/areas/{id}/edges/{index} [post]
func (h *AreaHandler) InsertVertex(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}
	index, err := paramIndex(c, "index")
	if err != nil {
		return utils.SendError(c, err)
	}

	var req dto.PointRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	area, err := h.areaUC.InsertVertex(id, index, req.Point)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.NewAreaResponse(*area, h.areaUC.Errors(id)), nil)
}

// Validate godoc
// @Summary Проверить участок перед сохранением
// @Description 200 если все обязательные поля заполнены, иначе 422 с ошибками по полям
// @Tags Areas
// @Produce json
// @Param id path int true "ID участка"
// @Success 200 {object} utils.SuccessResponse{data=dto.ValidationResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /api/v1/areas/{id}/validate [post]
func (h *AreaHandler) Validate(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	ok, fieldErrors, err := h.areaUC.Validate(id)
	if err != nil {
		return utils.SendError(c, err)
	}
	if !ok {
		return utils.SendError(c, validationFailed(fieldErrors))
	}
	return utils.SendSuccess(c, dto.ValidationResponse{Valid: true, Errors: fieldErrors}, nil)
}

// Enrich godoc
// @Summary Загрузить адрес и высоту участка
// @Description Однократно: уже обогащённый участок или участок с запросом в полёте возвращается как есть
// @Tags Areas
// @Produce json
// @Param id path int true "ID участка"
// @Success 200 {object} utils.SuccessResponse{data=dto.AreaResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/areas/{id}/enrich [post]
func (h *AreaHandler) Enrich(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	area, err := h.areaUC.FetchEnrichment(c.UserContext(), id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.NewAreaResponse(*area, h.areaUC.Errors(id)), nil)
}

// Select godoc
// @Summary Выбрать участок
// @Tags Areas
// @Produce json
// @Param id path int true "ID участка"
// @Success 200 {object} utils.SuccessResponse{data=dto.AreaResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/areas/{id}/select [post]
func (h *AreaHandler) Select(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	area, err := h.areaUC.Select(id)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, dto.NewAreaResponse(*area, h.areaUC.Errors(id)), nil)
}

// Selected godoc
// @Summary Выбранный участок
// @Tags Areas
// @Produce json
// @Success 200 {object} utils.SuccessResponse{data=dto.AreaResponse}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/areas/selected [get]
func (h *AreaHandler) Selected(c *fiber.Ctx) error {
	area := h.areaUC.Selected()
	if area == nil {
		return utils.SendError(c, errors.ErrAreaNotFound.WithDetails(map[string]interface{}{"selected": "none"}))
	}
	return utils.SendSuccess(c, dto.NewAreaResponse(*area, h.areaUC.Errors(area.ID)), nil)
}

// Delete godoc
// @Summary Удалить участок
// @Description Удаляет участок, его ошибки валидации и маршруты до него
// @Tags Areas
// @Param id path int true "ID участка"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/areas/{id} [delete]
func (h *AreaHandler) Delete(c *fiber.Ctx) error {
	id, err := paramID(c, "id")
	if err != nil {
		return utils.SendError(c, err)
	}

	if err := h.areaUC.Delete(id); err != nil {
		return utils.SendError(c, err)
	}
	if removed := h.historyUC.RemoveArea(id); removed > 0 {
		h.logger.Info("Routes to deleted area removed", zap.Int64("id", id), zap.Int("routes", removed))
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ExportGeoJSON godoc
// @Summary Экспорт участков в GeoJSON
// @Tags Export
// @Produce json
// @Success 200 {object} map[string]interface{} "FeatureCollection"
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/areas/export.geojson [get]
func (h *AreaHandler) ExportGeoJSON(c *fiber.Ctx) error {
	data, err := h.exportUC.AreasGeoJSON()
	if err != nil {
		return utils.SendError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/geo+json")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="areas.geojson"`)
	return c.Send(data)
}

// ExportKML godoc
// @Summary Экспорт участков в KML
// @Tags Export
// @Produce application/vnd.google-earth.kml+xml
// @Success 200 {string} string "KML document"
// @Failure 500 {object} utils.ErrorResponse
// @Router /api/v1/areas/export.kml [get]
func (h *AreaHandler) ExportKML(c *fiber.Ctx) error {
	data, err := h.exportUC.AreasKML()
	if err != nil {
		return utils.SendError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/vnd.google-earth.kml+xml")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="areas.kml"`)
	return c.Send(data)
}
