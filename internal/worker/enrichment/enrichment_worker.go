package enrichment

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	apperrors "github.com/farm-geo-service/internal/pkg/errors"
	"github.com/farm-geo-service/internal/usecase"
	"github.com/farm-geo-service/internal/worker"
)

const jobTimeout = 30 * time.Second

// AreaEnricher - участок с защищённой загрузкой адреса и высоты
type AreaEnricher interface {
	FetchEnrichment(ctx context.Context, id int64) (*domain.FarmArea, error)
}

// WarehouseEnricher - склад с защищённой загрузкой адреса и высоты
type WarehouseEnricher interface {
	FetchEnrichment(ctx context.Context, id int64) (*domain.Warehouse, error)
}

// EnrichmentWorker разбирает очередь обогащения и вызывает FetchEnrichment нужного стора
type EnrichmentWorker struct {
	*worker.BaseWorker
	queue      *usecase.EnrichmentQueue
	areas      AreaEnricher
	warehouses WarehouseEnricher
}

// NewEnrichmentWorker создает новый EnrichmentWorker
func NewEnrichmentWorker(
	queue *usecase.EnrichmentQueue,
	areas AreaEnricher,
	warehouses WarehouseEnricher,
	logger *zap.Logger,
) *EnrichmentWorker {
	return &EnrichmentWorker{
		BaseWorker: worker.NewBaseWorker("enrichment", logger),
		queue:      queue,
		areas:      areas,
		warehouses: warehouses,
	}
}

// Start обрабатывает задания по одному до остановки воркера или очереди
func (w *EnrichmentWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Starting enrichment worker", zap.Int("pending", w.queue.Len()))

	for {
		select {
		case <-w.StopChan():
			logger.Info("Worker stopped", zap.Int("pending", w.queue.Len()))
			return nil

		case <-w.queue.Done():
			logger.Info("Enrichment queue stopped")
			return nil

		case <-ctx.Done():
			return ctx.Err()

		case job := <-w.queue.Jobs():
			w.process(ctx, job)
		}
	}
}

func (w *EnrichmentWorker) process(ctx context.Context, job usecase.EnrichmentJob) {
	jobCtx, cancel := context.WithTimeout(ctx, jobTimeout)
	defer cancel()

	logger := w.Logger().With(zap.String("kind", string(job.Kind)), zap.Int64("id", job.ID))
	start := time.Now()

	var err error
	switch job.Kind {
	case usecase.KindArea:
		_, err = w.areas.FetchEnrichment(jobCtx, job.ID)
	case usecase.KindWarehouse:
		_, err = w.warehouses.FetchEnrichment(jobCtx, job.ID)
	default:
		logger.Warn("Unknown enrichment job kind, skipping")
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrAreaNotFound), errors.Is(err, apperrors.ErrWarehouseNotFound):
		logger.Debug("Entity deleted before enrichment, skipping")
	case err != nil:
		logger.Error("Enrichment job failed", zap.Error(err))
	default:
		logger.Debug("Enrichment job processed", zap.Duration("took", time.Since(start)))
	}
}
