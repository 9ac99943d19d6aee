package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/usecase"
)

func TestEnrichmentQueue(t *testing.T) {
	t.Run("drops jobs when full", func(t *testing.T) {
		q := usecase.NewEnrichmentQueue(1, zap.NewNop())

		assert.True(t, q.Enqueue(usecase.EnrichmentJob{Kind: usecase.KindArea, ID: 1}))
		assert.False(t, q.Enqueue(usecase.EnrichmentJob{Kind: usecase.KindArea, ID: 2}))
		assert.Equal(t, 1, q.Len())

		job := <-q.Jobs()
		assert.Equal(t, int64(1), job.ID)
	})

	t.Run("rejects jobs after stop", func(t *testing.T) {
		q := usecase.NewEnrichmentQueue(4, zap.NewNop())
		q.Stop()
		q.Stop()

		assert.False(t, q.Enqueue(usecase.EnrichmentJob{Kind: usecase.KindWarehouse, ID: 1}))
		select {
		case <-q.Done():
		default:
			t.Fatal("done channel should be closed")
		}
	})

	t.Run("nil queue is a no-op", func(t *testing.T) {
		var q *usecase.EnrichmentQueue
		assert.False(t, q.Enqueue(usecase.EnrichmentJob{Kind: usecase.KindArea, ID: 1}))
	})
}
