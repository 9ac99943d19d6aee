package usecase

import (
	"sync"

	"go.uber.org/zap"
)

// EntityKind - тип сущности, для которой запрошено обогащение
type EntityKind string

const (
	KindArea      EntityKind = "area"
	KindWarehouse EntityKind = "warehouse"
)

// EnrichmentJob - запрос на обогащение одной сущности
type EnrichmentJob struct {
	Kind EntityKind
	ID   int64
}

// EnrichmentQueue - ограниченная очередь заданий обогащения.
// Сторы ставят задания, воркер обогащения их разбирает.
type EnrichmentQueue struct {
	jobs     chan EnrichmentJob
	stopChan chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

// NewEnrichmentQueue создает очередь заданной ёмкости
func NewEnrichmentQueue(size int, logger *zap.Logger) *EnrichmentQueue {
	if size <= 0 {
		size = 100
	}
	return &EnrichmentQueue{
		jobs:     make(chan EnrichmentJob, size),
		stopChan: make(chan struct{}),
		logger:   logger,
	}
}

// Enqueue не блокирует: при заполненной или остановленной очереди задание отбрасывается.
// Сущность останется без обогащения и будет поставлена снова при следующей загрузке или по запросу.
func (q *EnrichmentQueue) Enqueue(job EnrichmentJob) bool {
	if q == nil {
		return false
	}

	select {
	case <-q.stopChan:
		return false
	default:
	}

	select {
	case q.jobs <- job:
		return true
	default:
		q.logger.Warn("Enrichment queue full, dropping job",
			zap.String("kind", string(job.Kind)),
			zap.Int64("id", job.ID))
		return false
	}
}

// Jobs возвращает канал заданий для воркера
func (q *EnrichmentQueue) Jobs() <-chan EnrichmentJob {
	return q.jobs
}

// Done закрывается при остановке очереди
func (q *EnrichmentQueue) Done() <-chan struct{} {
	return q.stopChan
}

// Stop прекращает приём новых заданий
func (q *EnrichmentQueue) Stop() {
	q.stopOnce.Do(func() {
		close(q.stopChan)
	})
}

// Len - количество ожидающих заданий
func (q *EnrichmentQueue) Len() int {
	return len(q.jobs)
}
