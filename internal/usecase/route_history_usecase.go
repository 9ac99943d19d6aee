package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/domain/repository"
	"github.com/farm-geo-service/internal/pkg/errors"
)

// RouteHistoryUseCase - кеш рассчитанных маршрутов.
// На ключ (from, to, vehicle, isFarm) в запрошенном направлении хранится не больше одной записи.
type RouteHistoryUseCase struct {
	mu      sync.Mutex
	flushMu sync.Mutex
	routes  []domain.RouteHistory
	dirty   bool
	// loadFailed - снапшот не прочитан, запись поверх него запрещена
	loadFailed bool

	snapshots repository.SnapshotRepository
	ids       *idSource
	key       string
	logger    *zap.Logger
}

// NewRouteHistoryUseCase - создание нового RouteHistoryUseCase
func NewRouteHistoryUseCase(snapshots repository.SnapshotRepository, key string, logger *zap.Logger) *RouteHistoryUseCase {
	return &RouteHistoryUseCase{
		snapshots: snapshots,
		ids:       newIDSource(nil),
		key:       key,
		logger:    logger,
	}
}

func (uc *RouteHistoryUseCase) Name() string {
	return "route_history"
}

// Hydrate загружает историю; дубликаты id схлопываются (побеждает последний)
func (uc *RouteHistoryUseCase) Hydrate(ctx context.Context) error {
	stored, err := loadSnapshot[domain.RouteHistory](ctx, uc.snapshots, uc.key)
	if err != nil {
		uc.logger.Error("Failed to load route history snapshot", zap.String("key", uc.key), zap.Error(err))
		uc.mu.Lock()
		uc.loadFailed = true
		uc.mu.Unlock()
		return fmt.Errorf("hydrate route history: %w", err)
	}

	routes := dedupeLastWins(stored, func(r domain.RouteHistory) int64 { return r.ID })
	for i := range routes {
		uc.ids.observe(routes[i].ID)
	}

	uc.mu.Lock()
	uc.routes = routes
	uc.dirty = len(routes) != len(stored)
	uc.loadFailed = false
	uc.mu.Unlock()

	uc.logger.Info("Route history hydrated", zap.Int("routes", len(routes)))
	return nil
}

// AddRoute заменяет запись с тем же ключом на её месте или добавляет новую в конец
func (uc *RouteHistoryUseCase) AddRoute(entry domain.RouteHistory) domain.RouteHistory {
	if entry.ID == 0 {
		entry.ID = uc.ids.Next()
	} else {
		uc.ids.observe(entry.ID)
	}
	if entry.CreatedAt == 0 {
		entry.CreatedAt = time.Now().UnixMilli()
	}
	entry.Coordinates = append([]domain.Coordinate(nil), entry.Coordinates...)

	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.dirty = true
	for i := range uc.routes {
		if uc.routes[i].SameKey(entry.FromWarehouseID, entry.ToWarehouseID, entry.Vehicle, entry.IsFarm) {
			uc.routes[i] = entry
			return cloneRoute(entry)
		}
	}
	uc.routes = append(uc.routes, entry)
	return cloneRoute(entry)
}

// GetRoute - точный поиск по ключу; isFarm - назначение участок, а не склад
func (uc *RouteHistoryUseCase) GetRoute(fromID, toID int64, vehicle domain.Vehicle, isFarm bool) (*domain.RouteHistory, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	for i := range uc.routes {
		if uc.routes[i].SameKey(fromID, toID, vehicle, isFarm) {
			r := cloneRoute(uc.routes[i])
			return &r, nil
		}
	}
	return nil, errors.ErrRouteNotFound
}

// GetRoutesFromWarehouse возвращает маршруты, где склад id встречается на любом конце
func (uc *RouteHistoryUseCase) GetRoutesFromWarehouse(id int64) []domain.RouteHistory {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	out := []domain.RouteHistory{}
	for i := range uc.routes {
		if uc.routes[i].TouchesWarehouse(id) {
			out = append(out, cloneRoute(uc.routes[i]))
		}
	}
	return out
}

func (uc *RouteHistoryUseCase) List() []domain.RouteHistory {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	out := make([]domain.RouteHistory, len(uc.routes))
	for i := range uc.routes {
		out[i] = cloneRoute(uc.routes[i])
	}
	return out
}

// ClearRoutes очищает историю
func (uc *RouteHistoryUseCase) ClearRoutes() {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	uc.routes = nil
	uc.dirty = true
}

// RemoveWarehouse удаляет маршруты удалённого склада (на любом конце)
func (uc *RouteHistoryUseCase) RemoveWarehouse(id int64) int {
	return uc.removeWhere(func(r *domain.RouteHistory) bool {
		return r.TouchesWarehouse(id)
	})
}

// RemoveArea удаляет маршруты, ведущие к удалённому участку
func (uc *RouteHistoryUseCase) RemoveArea(id int64) int {
	return uc.removeWhere(func(r *domain.RouteHistory) bool {
		return r.IsFarm && r.ToWarehouseID == id
	})
}

func (uc *RouteHistoryUseCase) removeWhere(match func(*domain.RouteHistory) bool) int {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	kept := uc.routes[:0]
	removed := 0
	for i := range uc.routes {
		if match(&uc.routes[i]) {
			removed++
			continue
		}
		kept = append(kept, uc.routes[i])
	}
	uc.routes = kept
	if removed > 0 {
		uc.dirty = true
	}
	return removed
}

func (uc *RouteHistoryUseCase) Dirty() bool {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.dirty
}

// Flush записывает историю целиком, если она менялась
func (uc *RouteHistoryUseCase) Flush(ctx context.Context) error {
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
	snapshot := make([]domain.RouteHistory, len(uc.routes))
	for i := range uc.routes {
		snapshot[i] = cloneRoute(uc.routes[i])
	}
	uc.dirty = false
	uc.mu.Unlock()

	if err := saveSnapshot(ctx, uc.snapshots, uc.key, snapshot); err != nil {
		uc.mu.Lock()
		uc.dirty = true
		uc.mu.Unlock()
		uc.logger.Error("Failed to flush route history", zap.String("key", uc.key), zap.Error(err))
		return errors.ErrStorageError.WithDetails(map[string]interface{}{"key": uc.key})
	}

	uc.logger.Debug("Route history flushed", zap.Int("count", len(snapshot)))
	return nil
}

func cloneRoute(r domain.RouteHistory) domain.RouteHistory {
	r.Coordinates = append([]domain.Coordinate(nil), r.Coordinates...)
	return r
}
