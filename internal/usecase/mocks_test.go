package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/domain/repository"
)

// MockGeocodingRepository is a mock of GeocodingRepository
type MockGeocodingRepository struct {
	mock.Mock
}

func (m *MockGeocodingRepository) ReverseGeocode(ctx context.Context, lat, lng float64) (string, error) {
	args := m.Called(ctx, lat, lng)
	return args.String(0), args.Error(1)
}

func (m *MockGeocodingRepository) Search(ctx context.Context, query string, limit int) ([]domain.SearchSuggestion, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchSuggestion), args.Error(1)
}

// MockElevationRepository is a mock of ElevationRepository
type MockElevationRepository struct {
	mock.Mock
}

func (m *MockElevationRepository) Elevation(ctx context.Context, lat, lng float64) (float64, bool, error) {
	args := m.Called(ctx, lat, lng)
	return args.Get(0).(float64), args.Bool(1), args.Error(2)
}

// MockRoutingRepository is a mock of RoutingRepository
type MockRoutingRepository struct {
	mock.Mock
}

func (m *MockRoutingRepository) Route(ctx context.Context, origin, destination domain.Coordinate, profile string) (*domain.Route, error) {
	args := m.Called(ctx, origin, destination, profile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Route), args.Error(1)
}

// MockCacheRepository is a mock of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) GetSuggestions(ctx context.Context, query string, limit int) ([]domain.SearchSuggestion, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SearchSuggestion), args.Error(1)
}

func (m *MockCacheRepository) SetSuggestions(ctx context.Context, query string, limit int, suggestions []domain.SearchSuggestion, ttl time.Duration) error {
	args := m.Called(ctx, query, limit, suggestions, ttl)
	return args.Error(0)
}

// stubEnricher отдаёт фиксированный результат и считает вызовы.
// Если задан gate, Enrich ждёт его закрытия.
type stubEnricher struct {
	mu     sync.Mutex
	calls  int
	result domain.Enrichment
	gate   chan struct{}
	called chan struct{}
}

func newStubEnricher(address string, elevation float64) *stubEnricher {
	return &stubEnricher{
		result: domain.Enrichment{Address: address, Elevation: elevation},
		called: make(chan struct{}, 16),
	}
}

func (s *stubEnricher) Enrich(_ context.Context, _ domain.Coordinate) domain.Enrichment {
	s.mu.Lock()
	s.calls++
	gate := s.gate
	s.mu.Unlock()

	s.called <- struct{}{}
	if gate != nil {
		<-gate
	}
	return s.result
}

func (s *stubEnricher) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// failingSnapshotRepository всегда отказывает в записи
type failingSnapshotRepository struct{}

func (failingSnapshotRepository) Load(context.Context, string) ([]byte, error) {
	return nil, nil
}

func (failingSnapshotRepository) Save(context.Context, string, []byte) error {
	return errors.New("disk full")
}

// unreadableSnapshotRepository хранит снапшоты, но Load отказывает, пока не вызван Recover
type unreadableSnapshotRepository struct {
	mu     sync.Mutex
	inner  repository.SnapshotRepository
	broken bool
}

func newUnreadableSnapshotRepository(inner repository.SnapshotRepository) *unreadableSnapshotRepository {
	return &unreadableSnapshotRepository{inner: inner, broken: true}
}

func (r *unreadableSnapshotRepository) Load(ctx context.Context, key string) ([]byte, error) {
	r.mu.Lock()
	broken := r.broken
	r.mu.Unlock()
	if broken {
		return nil, errors.New("connection reset by peer")
	}
	return r.inner.Load(ctx, key)
}

func (r *unreadableSnapshotRepository) Save(ctx context.Context, key string, data []byte) error {
	return r.inner.Save(ctx, key, data)
}

func (r *unreadableSnapshotRepository) Recover() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broken = false
}

// stubSearcher - синхронный Searcher для контроллера поиска
type stubSearcher struct {
	mu      sync.Mutex
	queries []string
	results map[string][]domain.SearchSuggestion
	delay   time.Duration
}

func newStubSearcher(results map[string][]domain.SearchSuggestion) *stubSearcher {
	return &stubSearcher{results: results}
}

func (s *stubSearcher) Suggest(ctx context.Context, query string) []domain.SearchSuggestion {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return []domain.SearchSuggestion{}
		}
	}
	return s.results[query]
}

func (s *stubSearcher) Queries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

var bandungRectangle = []domain.Coordinate{
	{Lat: -6.9, Lng: 106.9},
	{Lat: -6.9, Lng: 106.91},
	{Lat: -6.91, Lng: 106.91},
	{Lat: -6.91, Lng: 106.9},
}
