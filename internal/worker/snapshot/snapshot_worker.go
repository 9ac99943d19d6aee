package snapshot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/usecase"
	"github.com/farm-geo-service/internal/worker"
)

const finalFlushTimeout = 5 * time.Second

// SnapshotWorker периодически сбрасывает грязные сторы в хранилище
type SnapshotWorker struct {
	*worker.BaseWorker
	stores   []usecase.Flusher
	interval time.Duration
}

// NewSnapshotWorker создает новый SnapshotWorker
func NewSnapshotWorker(interval time.Duration, logger *zap.Logger, stores ...usecase.Flusher) *SnapshotWorker {
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	return &SnapshotWorker{
		BaseWorker: worker.NewBaseWorker("snapshot-flusher", logger),
		stores:     stores,
		interval:   interval,
	}
}

// Start сбрасывает сторы каждые interval; при остановке выполняет финальную запись
func (w *SnapshotWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting snapshot worker",
		zap.Duration("interval", w.interval),
		zap.Int("stores", len(w.stores)))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.FlushAll(ctx)

		case <-w.StopChan():
			w.finalFlush()
			return nil

		case <-ctx.Done():
			w.finalFlush()
			return ctx.Err()
		}
	}
}

// FlushAll сбрасывает каждый стор; ошибка одного не мешает остальным
func (w *SnapshotWorker) FlushAll(ctx context.Context) int {
	failed := 0
	for _, store := range w.stores {
		if err := store.Flush(ctx); err != nil {
			failed++
			w.Logger().Error("Snapshot flush failed",
				zap.String("store", store.Name()),
				zap.Error(err))
		}
	}
	return failed
}

func (w *SnapshotWorker) finalFlush() {
	ctx, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
	defer cancel()

	if failed := w.FlushAll(ctx); failed > 0 {
		w.Logger().Error("Final flush incomplete", zap.Int("failed_stores", failed))
		return
	}
	w.Logger().Info("Final flush completed")
}
