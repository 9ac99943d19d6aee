package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/domain/repository"
	"github.com/farm-geo-service/internal/pkg/errors"
)

// WarehouseUseCase владеет коллекцией складов; жизненный цикл тот же, что у участков
type WarehouseUseCase struct {
	mu         sync.Mutex
	flushMu    sync.Mutex
	warehouses []domain.Warehouse
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

// NewWarehouseUseCase - создание нового WarehouseUseCase
func NewWarehouseUseCase(
	snapshots repository.SnapshotRepository,
	enricher Enricher,
	queue *EnrichmentQueue,
	key string,
	logger *zap.Logger,
) *WarehouseUseCase {
	return &WarehouseUseCase{
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

func (uc *WarehouseUseCase) Name() string {
	return "warehouses"
}

// Hydrate загружает склады из снапшота (дубликаты id - побеждает последний)
func (uc *WarehouseUseCase) Hydrate(ctx context.Context) error {
	stored, err := loadSnapshot[domain.Warehouse](ctx, uc.snapshots, uc.key)
	if err != nil {
		uc.logger.Error("Failed to load warehouses snapshot", zap.String("key", uc.key), zap.Error(err))
		uc.mu.Lock()
		uc.loadFailed = true
		uc.mu.Unlock()
		return fmt.Errorf("hydrate warehouses: %w", err)
	}

	warehouses := dedupeLastWins(stored, func(w domain.Warehouse) int64 { return w.ID })
	for i := range warehouses {
		uc.ids.observe(warehouses[i].ID)
	}

	uc.mu.Lock()
	uc.warehouses = warehouses
	uc.errors = make(map[int64]domain.FieldErrors)
	uc.selectedID = 0
	uc.dirty = len(warehouses) != len(stored)
	uc.loadFailed = false
	var pending []int64
	for i := range uc.warehouses {
		if uc.warehouses[i].NeedsEnrichment() {
			pending = append(pending, uc.warehouses[i].ID)
		}
	}
	uc.mu.Unlock()

	for _, id := range pending {
		uc.queue.Enqueue(EnrichmentJob{Kind: KindWarehouse, ID: id})
	}

	uc.logger.Info("Warehouses hydrated",
		zap.Int("stored", len(stored)),
		zap.Int("loaded", len(warehouses)),
		zap.Int("pending_enrichment", len(pending)))
	return nil
}

func (uc *WarehouseUseCase) List() []domain.Warehouse {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return append([]domain.Warehouse{}, uc.warehouses...)
}

func (uc *WarehouseUseCase) Get(id int64) (*domain.Warehouse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexLocked(id)
	if i < 0 {
		return nil, errors.ErrWarehouseNotFound
	}
	w := uc.warehouses[i]
	return &w, nil
}

// AddAtPoint ставит склад в точку клика с ёмкостью по умолчанию
func (uc *WarehouseUseCase) AddAtPoint(lat, lng float64) *domain.Warehouse {
	id := uc.ids.Next()

	uc.mu.Lock()
	w := domain.Warehouse{
		ID:       id,
		Name:     fmt.Sprintf("Warehouse %d", len(uc.warehouses)+1),
		Capacity: domain.DefaultWarehouseCapacity,
		Lat:      lat,
		Lng:      lng,
	}
	uc.warehouses = append(uc.warehouses, w)
	uc.dirty = true
	uc.mu.Unlock()

	uc.queue.Enqueue(EnrichmentJob{Kind: KindWarehouse, ID: id})

	uc.logger.Info("Warehouse added",
		zap.Int64("id", id),
		zap.String("name", w.Name),
		zap.Float64("lat", lat),
		zap.Float64("lng", lng))

	return &w
}

// Update применяет частичное обновление. Непустое имя снимает ошибку name,
// любое переданное значение capacity снимает ошибку capacity.
func (uc *WarehouseUseCase) Update(id int64, update domain.WarehouseUpdate) (*domain.Warehouse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexLocked(id)
	if i < 0 {
		return nil, errors.ErrWarehouseNotFound
	}

	w := &uc.warehouses[i]
	if update.Name != nil {
		w.Name = *update.Name
	}
	if update.Capacity != nil {
		w.Capacity = *update.Capacity
	}
	if update.Location != nil {
		w.Location = *update.Location
	}
	if update.Elevation != nil {
		w.Elevation = *update.Elevation
	}
	if update.Lat != nil {
		w.Lat = *update.Lat
	}
	if update.Lng != nil {
		w.Lng = *update.Lng
	}
	uc.dirty = true

	if update.Name != nil && strings.TrimSpace(*update.Name) != "" {
		uc.clearErrorLocked(id, domain.FieldName)
	}
	if update.Capacity != nil {
		uc.clearErrorLocked(id, domain.FieldCapacity)
	}

	out := *w
	return &out, nil
}

// Validate: имя не пустое, ёмкость больше нуля
func (uc *WarehouseUseCase) Validate(id int64) (bool, domain.FieldErrors, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexLocked(id)
	if i < 0 {
		return false, nil, errors.ErrWarehouseNotFound
	}

	w := uc.warehouses[i]
	fieldErrors := domain.FieldErrors{}
	if strings.TrimSpace(w.Name) == "" {
		fieldErrors[domain.FieldName] = "Warehouse name is required"
	}
	if w.Capacity <= 0 {
		fieldErrors[domain.FieldCapacity] = "Capacity must be greater than 0"
	}

	if len(fieldErrors) == 0 {
		delete(uc.errors, id)
		return true, domain.FieldErrors{}, nil
	}

	uc.errors[id] = fieldErrors
	return false, copyFieldErrors(fieldErrors), nil
}

func (uc *WarehouseUseCase) Errors(id int64) domain.FieldErrors {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	return copyFieldErrors(uc.errors[id])
}

func (uc *WarehouseUseCase) Delete(id int64) error {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexLocked(id)
	if i < 0 {
		return errors.ErrWarehouseNotFound
	}

	uc.warehouses = append(uc.warehouses[:i], uc.warehouses[i+1:]...)
	delete(uc.errors, id)
	if uc.selectedID == id {
		uc.selectedID = 0
	}
	uc.dirty = true

	uc.logger.Info("Warehouse deleted", zap.Int64("id", id))
	return nil
}

func (uc *WarehouseUseCase) Select(id int64) (*domain.Warehouse, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexLocked(id)
	if i < 0 {
		return nil, errors.ErrWarehouseNotFound
	}
	uc.selectedID = id

	w := uc.warehouses[i]
	return &w, nil
}

func (uc *WarehouseUseCase) Selected() *domain.Warehouse {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	i := uc.indexLocked(uc.selectedID)
	if uc.selectedID == 0 || i < 0 {
		return nil
	}
	w := uc.warehouses[i]
	return &w
}

// FetchEnrichment загружает адрес и высоту, только пока оба поля пусты
// и для склада нет запроса в полёте
func (uc *WarehouseUseCase) FetchEnrichment(ctx context.Context, id int64) (*domain.Warehouse, error) {
	uc.mu.Lock()
	i := uc.indexLocked(id)
	if i < 0 {
		uc.mu.Unlock()
		return nil, errors.ErrWarehouseNotFound
	}
	_, busy := uc.inFlight[id]
	if busy || !uc.warehouses[i].NeedsEnrichment() {
		w := uc.warehouses[i]
		uc.mu.Unlock()
		return &w, nil
	}
	uc.inFlight[id] = struct{}{}
	point := uc.warehouses[i].Coordinate()
	uc.mu.Unlock()

	result := uc.enricher.Enrich(ctx, point)

	uc.mu.Lock()
	defer uc.mu.Unlock()
	delete(uc.inFlight, id)

	i = uc.indexLocked(id)
	if i < 0 {
		uc.logger.Debug("Warehouse deleted during enrichment, dropping result", zap.Int64("id", id))
		return nil, errors.ErrWarehouseNotFound
	}

	uc.warehouses[i].Location = result.Address
	uc.warehouses[i].Elevation = result.Elevation
	uc.dirty = true

	w := uc.warehouses[i]
	return &w, nil
}

func (uc *WarehouseUseCase) Dirty() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.dirty
}

// Flush записывает коллекцию целиком, если она менялась с прошлой записи
func (uc *WarehouseUseCase) Flush(ctx context.Context) error {
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
	snapshot := append([]domain.Warehouse{}, uc.warehouses...)
	uc.dirty = false
	uc.mu.Unlock()

	if err := saveSnapshot(ctx, uc.snapshots, uc.key, snapshot); err != nil {
		uc.mu.Lock()
		uc.dirty = true
		uc.mu.Unlock()
		uc.logger.Error("Failed to flush warehouses", zap.String("key", uc.key), zap.Error(err))
		return errors.ErrStorageError.WithDetails(map[string]interface{}{"key": uc.key})
	}

	uc.logger.Debug("Warehouses flushed", zap.Int("count", len(snapshot)))
	return nil
}

func (uc *WarehouseUseCase) indexLocked(id int64) int {
	for i := range uc.warehouses {
		if uc.warehouses[i].ID == id {
			return i
		}
	}
	return -1
}

func (uc *WarehouseUseCase) clearErrorLocked(id int64, field string) {
	fieldErrors, ok := uc.errors[id]
	if !ok {
		return
	}
	delete(fieldErrors, field)
	if len(fieldErrors) == 0 {
		delete(uc.errors, id)
	}
}
