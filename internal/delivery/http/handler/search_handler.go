package handler

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/pkg/errors"
	"github.com/farm-geo-service/internal/pkg/geo"
	"github.com/farm-geo-service/internal/pkg/utils"
	"github.com/farm-geo-service/internal/pkg/validator"
	"github.com/farm-geo-service/internal/usecase"
	"github.com/farm-geo-service/internal/usecase/dto"
)

// SearchHandler - поиск мест, обратное геокодирование и сессии строки поиска
type SearchHandler struct {
	searchUC     usecase.Searcher
	enrichmentUC usecase.Enricher
	sessions     *usecase.SearchSessionManager
	logger       *zap.Logger
}

// NewSearchHandler - создание нового SearchHandler
func NewSearchHandler(
	searchUC usecase.Searcher,
	enrichmentUC usecase.Enricher,
	sessions *usecase.SearchSessionManager,
	logger *zap.Logger,
) *SearchHandler {
	return &SearchHandler{
		searchUC:     searchUC,
		enrichmentUC: enrichmentUC,
		sessions:     sessions,
		logger:       logger,
	}
}

// Search godoc
// @Summary Поиск мест
// @Description Прямое геокодирование, до 5 подсказок. Запрос короче 3 символов и любая ошибка upstream дают пустой список.
// @Tags Search
// @Produce json
// @Param q query string true "Поисковый запрос"
// @Success 200 {object} utils.SuccessResponse{data=dto.SearchResponse}
// @Router /api/v1/search [get]
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	var req dto.SearchRequest
	req.Query = c.Query("q")

	suggestions := h.searchUC.Suggest(c.UserContext(), req.Query)
	return utils.SendSuccess(c, dto.SearchResponse{
		Query:       req.Query,
		Suggestions: suggestions,
	}, &utils.Meta{Total: len(suggestions)})
}

// ReverseGeocode godoc
// @Summary Адрес и высота точки
// @Description Предпросмотр обогащения: сбой геокодера даёт "Failed to load", пустой результат - "Address not found", сбой высоты - 0
// @Tags Search
// @Produce json
// @Param lat query number true "Широта"
// @Param lng query number true "Долгота"
// @Success 200 {object} utils.SuccessResponse{data=dto.EnrichmentResponse}
// @Failure 400 {object} utils.ErrorResponse
// @Router /api/v1/geo/reverse [get]
func (h *SearchHandler) ReverseGeocode(c *fiber.Ctx) error {
	var req dto.ReverseGeocodeRequest
	if err := c.QueryParser(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{"query": err.Error()}))
	}
	if err := validator.Validate(&req); err != nil {
		return utils.SendError(c, errors.ErrInvalidCoordinates.WithDetails(validator.FieldErrors(err)))
	}

	result := h.enrichmentUC.Enrich(c.UserContext(), domain.Coordinate{Lat: req.Lat, Lng: req.Lng})
	return utils.SendSuccess(c, dto.EnrichmentResponse{
		Lat:              req.Lat,
		Lng:              req.Lng,
		Address:          result.Address,
		AddressFormatted: geo.FormatAddress(result.Address),
		Elevation:        result.Elevation,
	}, nil)
}

// CreateSession godoc
// @Summary Открыть сессию строки поиска
// @Description Серверная строка поиска с debounce; состояние читается через GET
// @Tags Search
// @Produce json
// @Success 201 {object} utils.SuccessResponse{data=usecase.SessionView}
// @Router /api/v1/search/sessions [post]
func (h *SearchHandler) CreateSession(c *fiber.Ctx) error {
	return utils.SendCreated(c, h.sessions.Create())
}

// GetSession godoc
// @Summary Состояние сессии поиска
// @Tags Search
// @Produce json
// @Param id path string true "ID сессии"
// @Success 200 {object} utils.SuccessResponse{data=usecase.SessionView}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/search/sessions/{id} [get]
func (h *SearchHandler) GetSession(c *fiber.Ctx) error {
	view, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, view, nil)
}

// TypeQuery godoc
// @Summary Ввод в строку поиска
// @Description Сбрасывает ожидающий поиск; новый запрос уходит после паузы debounce
// @Tags Search
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body dto.TypeQueryRequest true "Текущее значение строки"
// @Success 200 {object} utils.SuccessResponse{data=usecase.SessionView}
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/search/sessions/{id}/query [put]
func (h *SearchHandler) TypeQuery(c *fiber.Ctx) error {
	var req dto.TypeQueryRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	view, err := h.sessions.Type(c.Params("id"), req.Query)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, view, nil)
}

// SelectSuggestion godoc
// @Summary Выбрать подсказку
// @Description index < 0 - Enter: выбирается первая подсказка, если список не пуст. Координаты выбора возвращаются в navigation.
// @Tags Search
// @Accept json
// @Produce json
// @Param id path string true "ID сессии"
// @Param request body dto.SelectSuggestionRequest true "Индекс подсказки"
// @Success 200 {object} utils.SuccessResponse{data=usecase.SessionView}
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/search/sessions/{id}/select [post]
func (h *SearchHandler) SelectSuggestion(c *fiber.Ctx) error {
	var req dto.SelectSuggestionRequest
	if err := parseBody(c, &req); err != nil {
		return utils.SendError(c, err)
	}

	view, err := h.sessions.Select(c.Params("id"), req.Index)
	if err != nil {
		return utils.SendError(c, err)
	}
	return utils.SendSuccess(c, view, nil)
}

// CloseSession godoc
// @Summary Закрыть сессию поиска
// @Tags Search
// @Param id path string true "ID сессии"
// @Success 204
// @Failure 404 {object} utils.ErrorResponse
// @Router /api/v1/search/sessions/{id} [delete]
func (h *SearchHandler) CloseSession(c *fiber.Ctx) error {
	if err := h.sessions.Close(c.Params("id")); err != nil {
		return utils.SendError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
