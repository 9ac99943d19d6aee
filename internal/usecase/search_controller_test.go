package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/pkg/errors"
	"github.com/farm-geo-service/internal/usecase"
)

const testDebounce = 20 * time.Millisecond

func waitVisible(t *testing.T, c *usecase.SearchController) {
	t.Helper()
	require.Eventually(t, func() bool {
		return c.Snapshot().Visible
	}, time.Second, 5*time.Millisecond)
}

func TestSearchController_DebounceKeepsLastQuery(t *testing.T) {
	searcher := newStubSearcher(map[string][]domain.SearchSuggestion{"bandung": bandungSuggestions})
	c := usecase.NewSearchController(searcher, testDebounce, 3, nil, zap.NewNop())
	defer c.Close()

	c.Type("ban")
	c.Type("band")
	c.Type("bandung")
	assert.Equal(t, usecase.SearchDebouncing, c.Snapshot().State)

	waitVisible(t, c)

	snapshot := c.Snapshot()
	assert.Equal(t, "bandung", snapshot.Query)
	assert.Equal(t, usecase.SearchIdle, snapshot.State)
	assert.Equal(t, bandungSuggestions, snapshot.Suggestions)
	assert.Equal(t, []string{"bandung"}, searcher.Queries())
}

func TestSearchController_ShortQueryClears(t *testing.T) {
	searcher := newStubSearcher(map[string][]domain.SearchSuggestion{"bandung": bandungSuggestions})
	c := usecase.NewSearchController(searcher, testDebounce, 3, nil, zap.NewNop())
	defer c.Close()

	c.Type("bandung")
	waitVisible(t, c)

	c.Type("ba")
	snapshot := c.Snapshot()
	assert.False(t, snapshot.Visible)
	assert.Empty(t, snapshot.Suggestions)
	assert.Equal(t, usecase.SearchIdle, snapshot.State)

	time.Sleep(3 * testDebounce)
	assert.Equal(t, []string{"bandung"}, searcher.Queries())
}

func TestSearchController_InFlightSearchIsSuperseded(t *testing.T) {
	searcher := newStubSearcher(map[string][]domain.SearchSuggestion{
		"bandung": bandungSuggestions,
		"lembang": bandungSuggestions[1:],
	})
	searcher.delay = 100 * time.Millisecond
	c := usecase.NewSearchController(searcher, testDebounce, 3, nil, zap.NewNop())
	defer c.Close()

	c.Type("bandung")
	require.Eventually(t, func() bool {
		return c.Snapshot().State == usecase.SearchSearching
	}, time.Second, 5*time.Millisecond)

	c.Type("lembang")
	waitVisible(t, c)

	assert.Equal(t, bandungSuggestions[1:], c.Snapshot().Suggestions)
}

func TestSearchController_SelectAndSubmit(t *testing.T) {
	var navigated []domain.Coordinate
	searcher := newStubSearcher(map[string][]domain.SearchSuggestion{"bandung": bandungSuggestions})
	c := usecase.NewSearchController(searcher, testDebounce, 3, func(target domain.Coordinate, _ domain.SearchSuggestion) {
		navigated = append(navigated, target)
	}, zap.NewNop())
	defer c.Close()

	_, ok, err := c.Submit()
	require.NoError(t, err)
	assert.False(t, ok)

	c.Type("bandung")
	waitVisible(t, c)

	target, err := c.Select(1)
	require.NoError(t, err)
	assert.Equal(t, domain.Coordinate{Lat: -6.8168, Lng: 107.6179}, *target)

	snapshot := c.Snapshot()
	assert.Equal(t, "Lembang, Bandung Barat, Indonesia", snapshot.Query)
	assert.False(t, snapshot.Visible)

	target, ok, err = c.Submit()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.Coordinate{Lat: -6.9175, Lng: 107.6191}, *target)
	assert.Len(t, navigated, 2)

	_, err = c.Select(9)
	assert.ErrorIs(t, err, errors.ErrInvalidRequest)
}

func TestSearchSessionManager(t *testing.T) {
	searcher := newStubSearcher(map[string][]domain.SearchSuggestion{"bandung": bandungSuggestions})
	m := usecase.NewSearchSessionManager(searcher, testDebounce, 3, time.Minute, zap.NewNop())
	defer m.CloseAll()

	session := m.Create()
	require.NotEmpty(t, session.ID)

	_, err := m.Type(session.ID, "bandung")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		view, err := m.Get(session.ID)
		return err == nil && view.Visible
	}, time.Second, 5*time.Millisecond)

	view, err := m.Select(session.ID, -1)
	require.NoError(t, err)
	require.NotNil(t, view.Navigation)
	assert.Equal(t, -6.9175, view.Navigation.Lat)
	assert.Equal(t, "Bandung, Jawa Barat, Indonesia", view.Query)

	assert.Equal(t, 0, m.Prune(time.Now()))
	assert.Equal(t, 1, m.Prune(time.Now().Add(2*time.Minute)))

	_, err = m.Get(session.ID)
	assert.ErrorIs(t, err, errors.ErrSearchSessionNotFound)
	assert.ErrorIs(t, m.Close(session.ID), errors.ErrSearchSessionNotFound)
}
