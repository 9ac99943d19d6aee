package usecase_test

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/pkg/errors"
	"github.com/farm-geo-service/internal/pkg/geo"
	"github.com/farm-geo-service/internal/repository/memory"
	"github.com/farm-geo-service/internal/usecase"
)

const testAreasKey = "smartfarm-land"

func newAreaUseCase(t *testing.T, enricher usecase.Enricher) (*usecase.AreaUseCase, *usecase.EnrichmentQueue) {
	t.Helper()
	queue := usecase.NewEnrichmentQueue(10, zap.NewNop())
	uc := usecase.NewAreaUseCase(memory.NewSnapshotRepository(), enricher, queue, testAreasKey, zap.NewNop())
	return uc, queue
}

func TestAreaUseCase_DrawRectangle(t *testing.T) {
	uc, queue := newAreaUseCase(t, newStubEnricher("x", 1))

	area, err := uc.DrawRectangle(bandungRectangle)
	require.NoError(t, err)

	assert.NotZero(t, area.ID)
	assert.Equal(t, "Area 1", area.Name)
	assert.Equal(t, "Varieties 1", area.Varieties)
	assert.Equal(t, time.Now().AddDate(0, 1, 0).Format("2006-01-02"), area.HarvestDate)
	assert.Equal(t, domain.PolygonColors[0], area.Color)
	assert.InDelta(t, 1.23e6, area.Area, 0.02e6)
	assert.Equal(t, "1.23 km²", geo.FormatArea(area.Area))
	assert.Nil(t, area.Address)
	assert.Nil(t, area.Elevation)

	job := <-queue.Jobs()
	assert.Equal(t, usecase.EnrichmentJob{Kind: usecase.KindArea, ID: area.ID}, job)

	second, err := uc.DrawRectangle(bandungRectangle)
	require.NoError(t, err)
	assert.Equal(t, "Area 2", second.Name)
	assert.Equal(t, domain.PolygonColors[1], second.Color)
	assert.NotEqual(t, area.ID, second.ID)
	assert.True(t, uc.Dirty())

	_, err = uc.DrawRectangle(bandungRectangle[:3])
	assert.ErrorIs(t, err, errors.ErrInvalidRequest)
}

func TestAreaUseCase_EditPoints(t *testing.T) {
	uc, _ := newAreaUseCase(t, newStubEnricher("x", 1))
	area, err := uc.DrawRectangle(bandungRectangle)
	require.NoError(t, err)

	t.Run("update point recomputes area", func(t *testing.T) {
		updated, err := uc.UpdatePoint(area.ID, 2, domain.Coordinate{Lat: -6.92, Lng: 106.92})
		require.NoError(t, err)
		assert.Equal(t, domain.Coordinate{Lat: -6.92, Lng: 106.92}, updated.Points[2])
		assert.Greater(t, updated.Area, area.Area)
	})

	t.Run("insert vertex after edge start", func(t *testing.T) {
		mid := domain.Coordinate{Lat: -6.9, Lng: 106.905}
		updated, err := uc.InsertVertex(area.ID, 0, mid)
		require.NoError(t, err)
		require.Len(t, updated.Points, 5)
		assert.Equal(t, mid, updated.Points[1])
		assert.Equal(t, bandungRectangle[1], updated.Points[2])
	})

	t.Run("closing edge inserts at the end", func(t *testing.T) {
		current, err := uc.Get(area.ID)
		require.NoError(t, err)
		last := len(current.Points) - 1

		updated, err := uc.InsertVertex(area.ID, last, domain.Coordinate{Lat: -6.905, Lng: 106.9})
		require.NoError(t, err)
		assert.Equal(t, domain.Coordinate{Lat: -6.905, Lng: 106.9}, updated.Points[len(updated.Points)-1])
	})

	t.Run("out of range index", func(t *testing.T) {
		_, err := uc.UpdatePoint(area.ID, 42, domain.Coordinate{})
		assert.ErrorIs(t, err, errors.ErrInvalidVertexIndex)

		_, err = uc.InsertVertex(area.ID, -1, domain.Coordinate{})
		assert.ErrorIs(t, err, errors.ErrInvalidVertexIndex)
	})

	t.Run("unknown area", func(t *testing.T) {
		_, err := uc.UpdatePoint(1, 0, domain.Coordinate{})
		assert.ErrorIs(t, err, errors.ErrAreaNotFound)
	})

	t.Run("out of range coordinates", func(t *testing.T) {
		before, err := uc.Get(area.ID)
		require.NoError(t, err)

		_, err = uc.UpdatePoint(area.ID, 0, domain.Coordinate{Lat: 95, Lng: 106.9})
		assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)

		_, err = uc.InsertVertex(area.ID, 0, domain.Coordinate{Lat: -6.9, Lng: 200})
		assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)

		after, err := uc.Get(area.ID)
		require.NoError(t, err)
		assert.Equal(t, before.Points, after.Points)

		corners := append([]domain.Coordinate{}, bandungRectangle...)
		corners[3] = domain.Coordinate{Lat: -91, Lng: 106.9}
		_, err = uc.DrawRectangle(corners)
		assert.ErrorIs(t, err, errors.ErrInvalidCoordinates)
	})
}

func TestAreaUseCase_ValidateAndUpdateField(t *testing.T) {
	uc, _ := newAreaUseCase(t, newStubEnricher("x", 1))
	area, err := uc.DrawRectangle(bandungRectangle)
	require.NoError(t, err)

	_, err = uc.UpdateField(area.ID, domain.FieldName, "")
	require.NoError(t, err)
	_, err = uc.UpdateField(area.ID, domain.FieldVarieties, "  ")
	require.NoError(t, err)

	ok, fieldErrors, err := uc.Validate(area.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Area name is required", fieldErrors[domain.FieldName])
	assert.Equal(t, "Varieties name is required", fieldErrors[domain.FieldVarieties])
	assert.NotContains(t, fieldErrors, domain.FieldHarvestDate)

	updated, err := uc.UpdateField(area.ID, domain.FieldName, "North field")
	require.NoError(t, err)
	assert.Equal(t, "North field", updated.Name)

	remaining := uc.Errors(area.ID)
	assert.NotContains(t, remaining, domain.FieldName)
	assert.Contains(t, remaining, domain.FieldVarieties)

	_, err = uc.UpdateField(area.ID, "color", "#000000")
	assert.ErrorIs(t, err, errors.ErrInvalidField)

	_, err = uc.UpdateField(area.ID, domain.FieldVarieties, "Arabica")
	require.NoError(t, err)
	ok, fieldErrors, err = uc.Validate(area.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, fieldErrors)
	assert.Empty(t, uc.Errors(area.ID))
}

func TestAreaUseCase_DeleteAndSelect(t *testing.T) {
	uc, _ := newAreaUseCase(t, newStubEnricher("x", 1))
	area, err := uc.DrawRectangle(bandungRectangle)
	require.NoError(t, err)

	_, err = uc.Select(area.ID)
	require.NoError(t, err)
	require.NotNil(t, uc.Selected())

	_, err = uc.UpdateField(area.ID, domain.FieldName, "")
	require.NoError(t, err)
	_, _, err = uc.Validate(area.ID)
	require.NoError(t, err)
	require.NotEmpty(t, uc.Errors(area.ID))

	require.NoError(t, uc.Delete(area.ID))

	assert.Nil(t, uc.Selected())
	assert.Empty(t, uc.Errors(area.ID))
	assert.Empty(t, uc.List())
	assert.ErrorIs(t, uc.Delete(area.ID), errors.ErrAreaNotFound)
}

func TestAreaUseCase_FetchEnrichment(t *testing.T) {
	ctx := context.Background()

	t.Run("fills address and elevation once", func(t *testing.T) {
		enricher := newStubEnricher("Jl. Merdeka, Bandung", 768)
		uc, _ := newAreaUseCase(t, enricher)
		area, err := uc.DrawRectangle(bandungRectangle)
		require.NoError(t, err)

		enriched, err := uc.FetchEnrichment(ctx, area.ID)
		require.NoError(t, err)
		require.NotNil(t, enriched.Address)
		require.NotNil(t, enriched.Elevation)
		assert.Equal(t, "Jl. Merdeka, Bandung", *enriched.Address)
		assert.Equal(t, 768.0, *enriched.Elevation)

		_, err = uc.FetchEnrichment(ctx, area.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, enricher.Calls())
	})

	t.Run("stored area with address only is completed", func(t *testing.T) {
		repo := memory.NewSnapshotRepository()
		addr := "Jl. Merdeka, Bandung"
		data, err := json.Marshal([]domain.FarmArea{{ID: 9, Name: "Tea", Points: bandungRectangle, Address: &addr}})
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, testAreasKey, data))

		enricher := newStubEnricher("Lembang", 1200)
		queue := usecase.NewEnrichmentQueue(10, zap.NewNop())
		uc := usecase.NewAreaUseCase(repo, enricher, queue, testAreasKey, zap.NewNop())
		require.NoError(t, uc.Hydrate(ctx))
		assert.Equal(t, 1, queue.Len())

		enriched, err := uc.FetchEnrichment(ctx, 9)
		require.NoError(t, err)
		require.NotNil(t, enriched.Elevation)
		assert.Equal(t, 1200.0, *enriched.Elevation)
		assert.Equal(t, 1, enricher.Calls())
	})

	t.Run("concurrent request is skipped while in flight", func(t *testing.T) {
		enricher := newStubEnricher("Lembang", 1200)
		enricher.gate = make(chan struct{})
		uc, _ := newAreaUseCase(t, enricher)
		area, err := uc.DrawRectangle(bandungRectangle)
		require.NoError(t, err)

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = uc.FetchEnrichment(ctx, area.ID)
		}()
		<-enricher.called

		pending, err := uc.FetchEnrichment(ctx, area.ID)
		require.NoError(t, err)
		assert.Nil(t, pending.Address)

		close(enricher.gate)
		wg.Wait()
		assert.Equal(t, 1, enricher.Calls())
	})

	t.Run("deleted area drops the result", func(t *testing.T) {
		enricher := newStubEnricher("Lembang", 1200)
		enricher.gate = make(chan struct{})
		uc, _ := newAreaUseCase(t, enricher)
		area, err := uc.DrawRectangle(bandungRectangle)
		require.NoError(t, err)

		errCh := make(chan error, 1)
		go func() {
			_, err := uc.FetchEnrichment(ctx, area.ID)
			errCh <- err
		}()
		<-enricher.called

		require.NoError(t, uc.Delete(area.ID))
		close(enricher.gate)

		assert.ErrorIs(t, <-errCh, errors.ErrAreaNotFound)
		assert.Empty(t, uc.List())
	})
}

func TestAreaUseCase_FlushAndHydrate(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip through snapshot", func(t *testing.T) {
		repo := memory.NewSnapshotRepository()
		uc := usecase.NewAreaUseCase(repo, newStubEnricher("x", 1), nil, testAreasKey, zap.NewNop())
		area, err := uc.DrawRectangle(bandungRectangle)
		require.NoError(t, err)

		require.NoError(t, uc.Flush(ctx))
		assert.False(t, uc.Dirty())

		restored := usecase.NewAreaUseCase(repo, newStubEnricher("x", 1), nil, testAreasKey, zap.NewNop())
		require.NoError(t, restored.Hydrate(ctx))

		areas := restored.List()
		require.Len(t, areas, 1)
		assert.Equal(t, area.ID, areas[0].ID)
		assert.Equal(t, area.Points, areas[0].Points)
		assert.InDelta(t, area.Area, areas[0].Area, 1e-6)
	})

	t.Run("duplicate ids keep first position and last value", func(t *testing.T) {
		repo := memory.NewSnapshotRepository()
		stored := []domain.FarmArea{
			{ID: 1, Name: "old", Points: bandungRectangle},
			{ID: 2, Name: "second", Points: bandungRectangle},
			{ID: 1, Name: "new", Points: bandungRectangle},
		}
		data, err := json.Marshal(stored)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, testAreasKey, data))

		queue := usecase.NewEnrichmentQueue(10, zap.NewNop())
		uc := usecase.NewAreaUseCase(repo, newStubEnricher("x", 1), queue, testAreasKey, zap.NewNop())
		require.NoError(t, uc.Hydrate(ctx))

		areas := uc.List()
		require.Len(t, areas, 2)
		assert.Equal(t, "new", areas[0].Name)
		assert.Equal(t, "second", areas[1].Name)
		assert.InDelta(t, 1.23e6, areas[0].Area, 0.02e6)
		assert.True(t, uc.Dirty())
		assert.Equal(t, 2, queue.Len())

		next, err := uc.DrawRectangle(bandungRectangle)
		require.NoError(t, err)
		assert.Greater(t, next.ID, int64(2))
	})

	t.Run("missing key hydrates empty", func(t *testing.T) {
		uc, _ := newAreaUseCase(t, newStubEnricher("x", 1))
		require.NoError(t, uc.Hydrate(ctx))
		assert.Empty(t, uc.List())
		assert.False(t, uc.Dirty())
	})

	t.Run("failed flush keeps store dirty", func(t *testing.T) {
		uc := usecase.NewAreaUseCase(failingSnapshotRepository{}, newStubEnricher("x", 1), nil, testAreasKey, zap.NewNop())
		_, err := uc.DrawRectangle(bandungRectangle)
		require.NoError(t, err)

		err = uc.Flush(ctx)
		assert.ErrorIs(t, err, errors.ErrStorageError)
		assert.True(t, uc.Dirty())
	})

	t.Run("unread snapshot is never overwritten", func(t *testing.T) {
		inner := memory.NewSnapshotRepository()
		saved := []domain.FarmArea{{ID: 7, Name: "North field", Points: bandungRectangle}}
		data, err := json.Marshal(saved)
		require.NoError(t, err)
		require.NoError(t, inner.Save(ctx, testAreasKey, data))

		repo := newUnreadableSnapshotRepository(inner)
		uc := usecase.NewAreaUseCase(repo, newStubEnricher("x", 1), nil, testAreasKey, zap.NewNop())
		require.Error(t, uc.Hydrate(ctx))

		_, err = uc.DrawRectangle(bandungRectangle)
		require.NoError(t, err)

		err = uc.Flush(ctx)
		assert.ErrorIs(t, err, errors.ErrStorageError)
		assert.True(t, uc.Dirty())

		raw, err := inner.Load(ctx, testAreasKey)
		require.NoError(t, err)
		assert.JSONEq(t, string(data), string(raw))

		repo.Recover()
		require.NoError(t, uc.Hydrate(ctx))
		areas := uc.List()
		require.Len(t, areas, 1)
		assert.Equal(t, "North field", areas[0].Name)

		_, err = uc.DrawRectangle(bandungRectangle)
		require.NoError(t, err)
		require.NoError(t, uc.Flush(ctx))
		assert.False(t, uc.Dirty())
	})
}
