package snapshot_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/worker/snapshot"
)

type countingStore struct {
	mu      sync.Mutex
	name    string
	flushes int
	err     error
}

func (s *countingStore) Name() string {
	return s.name
}

func (s *countingStore) Flush(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return s.err
}

func (s *countingStore) Flushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushes
}

func TestSnapshotWorker_FlushesPeriodically(t *testing.T) {
	areas := &countingStore{name: "areas"}
	warehouses := &countingStore{name: "warehouses"}
	w := snapshot.NewSnapshotWorker(10*time.Millisecond, zap.NewNop(), areas, warehouses)

	done := make(chan error, 1)
	go func() {
		done <- w.Start(context.Background())
	}()

	require.Eventually(t, func() bool {
		return areas.Flushes() >= 2 && warehouses.Flushes() >= 2
	}, time.Second, 5*time.Millisecond)

	before := areas.Flushes()
	require.NoError(t, w.Stop())
	require.NoError(t, <-done)

	assert.GreaterOrEqual(t, areas.Flushes(), before+1)
	assert.True(t, w.IsStopped())
}

func TestSnapshotWorker_FinalFlushOnStop(t *testing.T) {
	store := &countingStore{name: "route_history"}
	w := snapshot.NewSnapshotWorker(time.Hour, zap.NewNop(), store)

	done := make(chan error, 1)
	go func() {
		done <- w.Start(context.Background())
	}()

	require.NoError(t, w.Stop())
	require.NoError(t, <-done)
	assert.Equal(t, 1, store.Flushes())
}

func TestSnapshotWorker_FailureDoesNotStopOthers(t *testing.T) {
	broken := &countingStore{name: "areas", err: errors.New("storage down")}
	healthy := &countingStore{name: "warehouses"}
	w := snapshot.NewSnapshotWorker(time.Hour, zap.NewNop(), broken, healthy)

	failed := w.FlushAll(context.Background())

	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, healthy.Flushes())
}
