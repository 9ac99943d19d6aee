package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/domain/repository"
	"github.com/farm-geo-service/internal/pkg/errors"
	"github.com/farm-geo-service/internal/pkg/geo"
)

const harvestDateLayout = "2006-01-02"

// AreaUseCase владеет коллекцией нарисованных участков.
// Все изменения синхронны и помечают стор грязным; запись в хранилище
// выполняет Flush (воркер снапшотов или остановка сервиса).
type AreaUseCase struct {
	mu         sync.Mutex
	flushMu    sync.Mutex
	areas      []domain.FarmArea
	errors     map[int64]domain.FieldErrors
	inFlight   map[int64]struct{}
	selectedID int64
	dirty      bool
	// loadFailed - снапшот не прочитан, запись поверх него запрещена
	loadFailed bool

	snapshots repository.SnapshotRepository
	enricher  Enricher
	queue     *EnrichmentQueue
	ids       *idSource
	key       string
	logger    *zap.Logger
}

// NewAreaUseCase - создание нового AreaUseCase
func NewAreaUseCase(
	snapshots repository.SnapshotRepository,
	enricher Enricher,
	queue *EnrichmentQueue,
	key string,
	logger *zap.Logger,
) *AreaUseCase {
	return &AreaUseCase{
		errors:    make(map[int64]domain.FieldErrors),
		inFlight:  make(map[int64]struct{}),
		snapshots: snapshots,
		enricher:  enricher,
		queue:     queue,
		ids:       newIDSource(nil),
		key:       key,
		logger:    logger,
	}
}

func (uc *AreaUseCase) Name() string {
	return "areas"
}

// Hydrate загружает участки из снапшота. Дубликаты id схлопываются (побеждает последний),
// площадь пересчитывается, участки без адреса и высоты ставятся в очередь обогащения.
func (uc *AreaUseCase) Hydrate(ctx context.Context) error {
	stored, err := loadSnapshot[domain.FarmArea](ctx, uc.snapshots, uc.key)
	if err != nil {
		uc.logger.Error("Failed to load areas snapshot", zap.String("key", uc.key), zap.Error(err))
		uc.mu.Lock()
		uc.loadFailed = true
		uc.mu.Unlock()
		return fmt.Errorf("hydrate areas: %w", err)
	}

	areas := dedupeLastWins(stored, func(a domain.FarmArea) int64 { return a.ID })
	for i := range areas {
		areas[i].Area = geo.Area(areas[i].Points)
		uc.ids.observe(areas[i].ID)
	}

	uc.mu.Lock()
	uc.areas = areas
	uc.errors = make(map[int64]domain.FieldErrors)
	uc.selectedID = 0
	uc.dirty = len(areas) != len(stored)
	uc.loadFailed = false
	pending := uc.pendingEnrichmentLocked()
	uc.mu.Unlock()

	for _, id := range pending {
		uc.queue.Enqueue(EnrichmentJob{Kind: KindArea, ID: id})
	}

	uc.logger.Info("Areas hydrated",
		zap.Int("stored", len(stored)),
		zap.Int("loaded", len(areas)),
		zap.Int("pending_enrichment", len(pending)))
	return nil
}

// List возвращает копию коллекции в порядке создания
func (uc *AreaUseCase) List() []domain.FarmArea {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	out := make([]domain.FarmArea, len(uc.areas))
	for i := range uc.areas {
		out[i] = uc.areas[i].Clone()
	}
	return out
}

func (uc *AreaUseCase) Get(id int64) (*domain.FarmArea, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexLocked(id)
	if i < 0 {
		return nil, errors.ErrAreaNotFound
	}
	area := uc.areas[i].Clone()
	return &area, nil
}

// DrawRectangle создаёт участок по четырём углам прямоугольника
func (uc *AreaUseCase) DrawRectangle(corners []domain.Coordinate) (*domain.FarmArea, error) {
	if len(corners) != 4 {
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{
			"points": "rectangle requires exactly 4 corners",
		})
	}
	if err := checkCoordinates(corners...); err != nil {
		return nil, err
	}

	now := time.Now()
	id := uc.ids.Next()
	points := append([]domain.Coordinate(nil), corners...)

	uc.mu.Lock()
	n := len(uc.areas)
	area := domain.FarmArea{
		ID:          id,
		Name:        fmt.Sprintf("Area %d", n+1),
		Varieties:   fmt.Sprintf("Varieties %d", n+1),
		HarvestDate: now.AddDate(0, 1, 0).Format(harvestDateLayout),
		Points:      points,
		Color:       domain.ColorForIndex(n),
		Area:        geo.Area(points),
	}
	uc.areas = append(uc.areas, area)
	uc.dirty = true
	uc.mu.Unlock()

	uc.queue.Enqueue(EnrichmentJob{Kind: KindArea, ID: id})

	uc.logger.Info("Area drawn",
		zap.Int64("id", id),
		zap.String("name", area.Name),
		zap.Float64("area_m2", area.Area))

	out := area.Clone()
	return &out, nil
}

// UpdatePoint заменяет одну вершину и пересчитывает площадь
func (uc *AreaUseCase) UpdatePoint(id int64, index int, point domain.Coordinate) (*domain.FarmArea, error) {
	if err := checkCoordinates(point); err != nil {
		return nil, err
	}
	return uc.mutatePoints(id, func(points []domain.Coordinate) ([]domain.Coordinate, error) {
		if index < 0 || index >= len(points) {
			return nil, errors.ErrInvalidVertexIndex
		}
		points[index] = point
		return points, nil
	})
}

// InsertVertex вставляет точку на ребро edgeIndex (между вершинами edgeIndex и edgeIndex+1)
func (uc *AreaUseCase) InsertVertex(id int64, edgeIndex int, point domain.Coordinate) (*domain.FarmArea, error) {
	if err := checkCoordinates(point); err != nil {
		return nil, err
	}
	return uc.mutatePoints(id, func(points []domain.Coordinate) ([]domain.Coordinate, error) {
		if edgeIndex < 0 || edgeIndex >= len(points) {
			return nil, errors.ErrInvalidVertexIndex
		}
		out := make([]domain.Coordinate, 0, len(points)+1)
		out = append(out, points[:edgeIndex+1]...)
		out = append(out, point)
		out = append(out, points[edgeIndex+1:]...)
		return out, nil
	})
}

// checkCoordinates отклоняет точки вне диапазона широты и долготы
func checkCoordinates(points ...domain.Coordinate) error {
	for i, p := range points {
		if !geo.ValidateCoordinates(p.Lat, p.Lng) {
			return errors.ErrInvalidCoordinates.WithDetails(map[string]interface{}{
				"index": i,
				"lat":   p.Lat,
				"lng":   p.Lng,
			})
		}
	}
	return nil
}

func (uc *AreaUseCase) mutatePoints(id int64, fn func([]domain.Coordinate) ([]domain.Coordinate, error)) (*domain.FarmArea, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexLocked(id)
	if i < 0 {
		return nil, errors.ErrAreaNotFound
	}

	points, err := fn(append([]domain.Coordinate(nil), uc.areas[i].Points...))
	if err != nil {
		return nil, err
	}

	uc.areas[i].Points = points
	uc.areas[i].Area = geo.Area(points)
	uc.dirty = true

	out := uc.areas[i].Clone()
	return &out, nil
}

// UpdateField меняет name, varieties или harvestDate.
// Непустое значение снимает ошибку валидации этого поля.
func (uc *AreaUseCase) UpdateField(id int64, field, value string) (*domain.FarmArea, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexLocked(id)
	if i < 0 {
		return nil, errors.ErrAreaNotFound
	}

	switch field {
	case domain.FieldName:
		uc.areas[i].Name = value
	case domain.FieldVarieties:
		uc.areas[i].Varieties = value
	case domain.FieldHarvestDate:
		uc.areas[i].HarvestDate = value
	default:
		return nil, errors.ErrInvalidField.WithDetails(map[string]interface{}{"field": field})
	}
	uc.dirty = true

	if strings.TrimSpace(value) != "" {
		uc.clearErrorLocked(id, field)
	}

	out := uc.areas[i].Clone()
	return &out, nil
}

// Validate проверяет обязательные поля и запоминает ошибки по id
func (uc *AreaUseCase) Validate(id int64) (bool, domain.FieldErrors, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexLocked(id)
	if i < 0 {
		return false, nil, errors.ErrAreaNotFound
	}

	area := uc.areas[i]
	fieldErrors := domain.FieldErrors{}
	if strings.TrimSpace(area.Name) == "" {
		fieldErrors[domain.FieldName] = "Area name is required"
	}
	if strings.TrimSpace(area.Varieties) == "" {
		fieldErrors[domain.FieldVarieties] = "Varieties name is required"
	}
	if strings.TrimSpace(area.HarvestDate) == "" {
		fieldErrors[domain.FieldHarvestDate] = "Harvest date is required"
	}

	if len(fieldErrors) == 0 {
		delete(uc.errors, id)
		return true, domain.FieldErrors{}, nil
	}

	uc.errors[id] = fieldErrors
	return false, copyFieldErrors(fieldErrors), nil
}

// Errors возвращает последние ошибки валидации участка
func (uc *AreaUseCase) Errors(id int64) domain.FieldErrors {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return copyFieldErrors(uc.errors[id])
}

// Delete удаляет участок вместе с ошибками валидации и выбором
func (uc *AreaUseCase) Delete(id int64) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexLocked(id)
	if i < 0 {
		return errors.ErrAreaNotFound
	}

	uc.areas = append(uc.areas[:i], uc.areas[i+1:]...)
	delete(uc.errors, id)
	if uc.selectedID == id {
		uc.selectedID = 0
	}
	uc.dirty = true

	uc.logger.Info("Area deleted", zap.Int64("id", id))
	return nil
}

// Select отмечает участок выбранным
func (uc *AreaUseCase) Select(id int64) (*domain.FarmArea, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexLocked(id)
	if i < 0 {
		return nil, errors.ErrAreaNotFound
	}
	uc.selectedID = id

	out := uc.areas[i].Clone()
	return &out, nil
}

// Selected возвращает выбранный участок или nil
func (uc *AreaUseCase) Selected() *domain.FarmArea {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexLocked(uc.selectedID)
	if uc.selectedID == 0 || i < 0 {
		return nil
	}
	out := uc.areas[i].Clone()
	return &out
}

// FetchEnrichment загружает адрес и высоту по первой вершине.
// Ничего не делает, если участок уже обогащён или запрос для него уже выполняется.
// Если участок удалён, пока шёл запрос, результат отбрасывается.
func (uc *AreaUseCase) FetchEnrichment(ctx context.Context, id int64) (*domain.FarmArea, error) {
	uc.mu.Lock()
	i := uc.indexLocked(id)
	if i < 0 {
		uc.mu.Unlock()
		return nil, errors.ErrAreaNotFound
	}
	_, busy := uc.inFlight[id]
	if busy || !uc.areas[i].NeedsEnrichment() || len(uc.areas[i].Points) == 0 {
		out := uc.areas[i].Clone()
		uc.mu.Unlock()
		return &out, nil
	}
	uc.inFlight[id] = struct{}{}
	anchor := uc.areas[i].Points[0]
	uc.mu.Unlock()

	result := uc.enricher.Enrich(ctx, anchor)

	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inFlight, id)

	i = uc.indexLocked(id)
	if i < 0 {
		uc.logger.Debug("Area deleted during enrichment, dropping result", zap.Int64("id", id))
		return nil, errors.ErrAreaNotFound
	}

	address := result.Address
	elevation := result.Elevation
	uc.areas[i].Address = &address
	uc.areas[i].Elevation = &elevation
	uc.dirty = true

	out := uc.areas[i].Clone()
	return &out, nil
}

// Dirty - есть изменения, ещё не записанные в хранилище
func (uc *AreaUseCase) Dirty() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.dirty
}

// Flush записывает коллекцию целиком, если она менялась с прошлой записи
func (uc *AreaUseCase) Flush(ctx context.Context) error {
	uc.flushMu.Lock()
	defer uc.flushMu.Unlock()

	uc.mu.Lock()
	if !uc.dirty {
		uc.mu.Unlock()
		return nil
	}
	if uc.loadFailed {
		uc.mu.Unlock()
		return errors.ErrStorageError.WithDetails(map[string]interface{}{
			"key":    uc.key,
			"reason": "snapshot was not loaded",
		})
	}
	snapshot := make([]domain.FarmArea, len(uc.areas))
	for i := range uc.areas {
		snapshot[i] = uc.areas[i].Clone()
	}
	uc.dirty = false
	uc.mu.Unlock()

	if err := saveSnapshot(ctx, uc.snapshots, uc.key, snapshot); err != nil {
		uc.mu.Lock()
		uc.dirty = true
		uc.mu.Unlock()
		uc.logger.Error("Failed to flush areas", zap.String("key", uc.key), zap.Error(err))
		return errors.ErrStorageError.WithDetails(map[string]interface{}{"key": uc.key})
	}

	uc.logger.Debug("Areas flushed", zap.Int("count", len(snapshot)))
	return nil
}

func (uc *AreaUseCase) indexLocked(id int64) int {
	for i := range uc.areas {
		if uc.areas[i].ID == id {
			return i
		}
	}
	return -1
}

func (uc *AreaUseCase) clearErrorLocked(id int64, field string) {
	fieldErrors, ok := uc.errors[id]
	if !ok {
		return
	}
	delete(fieldErrors, field)
	if len(fieldErrors) == 0 {
		delete(uc.errors, id)
	}
}

func (uc *AreaUseCase) pendingEnrichmentLocked() []int64 {
	var ids []int64
	for i := range uc.areas {
		if uc.areas[i].NeedsEnrichment() {
			ids = append(ids, uc.areas[i].ID)
		}
	}
	return ids
}

func copyFieldErrors(in domain.FieldErrors) domain.FieldErrors {
	out := make(domain.FieldErrors, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
