package enrichment_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/pkg/errors"
	"github.com/farm-geo-service/internal/usecase"
	"github.com/farm-geo-service/internal/worker/enrichment"
)

// MockAreaEnricher is a mock of AreaEnricher
type MockAreaEnricher struct {
	mock.Mock
}

func (m *MockAreaEnricher) FetchEnrichment(ctx context.Context, id int64) (*domain.FarmArea, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FarmArea), args.Error(1)
}

// MockWarehouseEnricher is a mock of WarehouseEnricher
type MockWarehouseEnricher struct {
	mock.Mock
}

func (m *MockWarehouseEnricher) FetchEnrichment(ctx context.Context, id int64) (*domain.Warehouse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Warehouse), args.Error(1)
}

func TestEnrichmentWorker_DispatchesByKind(t *testing.T) {
	queue := usecase.NewEnrichmentQueue(10, zap.NewNop())
	areas := &MockAreaEnricher{}
	warehouses := &MockWarehouseEnricher{}

	processed := make(chan struct{}, 3)
	signal := func(mock.Arguments) { processed <- struct{}{} }

	areas.On("FetchEnrichment", mock.Anything, int64(1)).Run(signal).Return(&domain.FarmArea{ID: 1}, nil)
	areas.On("FetchEnrichment", mock.Anything, int64(2)).Run(signal).Return(nil, errors.ErrAreaNotFound)
	warehouses.On("FetchEnrichment", mock.Anything, int64(3)).Run(signal).Return(&domain.Warehouse{ID: 3}, nil)

	queue.Enqueue(usecase.EnrichmentJob{Kind: usecase.KindArea, ID: 1})
	queue.Enqueue(usecase.EnrichmentJob{Kind: usecase.KindArea, ID: 2})
	queue.Enqueue(usecase.EnrichmentJob{Kind: usecase.KindWarehouse, ID: 3})

	w := enrichment.NewEnrichmentWorker(queue, areas, warehouses, zap.NewNop())
	done := make(chan error, 1)
	go func() {
		done <- w.Start(context.Background())
	}()

	for i := 0; i < 3; i++ {
		select {
		case <-processed:
		case <-time.After(time.Second):
			t.Fatalf("only %d of 3 jobs processed", i)
		}
	}

	require.NoError(t, w.Stop())
	require.NoError(t, <-done)
	areas.AssertExpectations(t)
	warehouses.AssertExpectations(t)
}

func TestEnrichmentWorker_StopsWithQueue(t *testing.T) {
	queue := usecase.NewEnrichmentQueue(1, zap.NewNop())
	w := enrichment.NewEnrichmentWorker(queue, &MockAreaEnricher{}, &MockWarehouseEnricher{}, zap.NewNop())

	done := make(chan error, 1)
	go func() {
		done <- w.Start(context.Background())
	}()

	queue.Stop()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop with the queue")
	}
}
