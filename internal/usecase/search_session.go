package usecase

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/pkg/errors"
)

// SearchSession - строка поиска одного клиента карты
type SearchSession struct {
	ID         string
	controller *SearchController

	mu         sync.Mutex
	lastActive time.Time
	navigation *domain.Coordinate
}

// SessionView - состояние сессии для ответа API
type SessionView struct {
	ID         string             `json:"id"`
	Navigation *domain.Coordinate `json:"navigation,omitempty"`
	SearchSnapshot
}

func (s *SearchSession) touch() {
	s.mu.Lock()
	s.lastActive = time.Now()
	s.mu.Unlock()
}

func (s *SearchSession) view() SessionView {
	s.mu.Lock()
	nav := s.navigation
	s.mu.Unlock()
	return SessionView{ID: s.ID, Navigation: nav, SearchSnapshot: s.controller.Snapshot()}
}

// SearchSessionManager держит SearchController на каждую сессию клиента
type SearchSessionManager struct {
	mu       sync.Mutex
	sessions map[string]*SearchSession
	searcher Searcher
	debounce time.Duration
	minLen   int
	idleTTL  time.Duration
	logger   *zap.Logger
}

// NewSearchSessionManager - создание менеджера сессий поиска
func NewSearchSessionManager(searcher Searcher, debounce time.Duration, minLen int, idleTTL time.Duration, logger *zap.Logger) *SearchSessionManager {
	return &SearchSessionManager{
		sessions: make(map[string]*SearchSession),
		searcher: searcher,
		debounce: debounce,
		minLen:   minLen,
		idleTTL:  idleTTL,
		logger:   logger,
	}
}

// Create открывает новую сессию; заодно закрывает простаивающие
func (m *SearchSessionManager) Create() SessionView {
	m.Prune(time.Now())

	session := &SearchSession{
		ID:         uuid.NewString(),
		lastActive: time.Now(),
	}
	session.controller = NewSearchController(m.searcher, m.debounce, m.minLen,
		func(target domain.Coordinate, _ domain.SearchSuggestion) {
			session.mu.Lock()
			session.navigation = &target
			session.mu.Unlock()
		}, m.logger)

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	return session.view()
}

func (m *SearchSessionManager) get(id string) (*SearchSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[id]
	if !ok {
		return nil, errors.ErrSearchSessionNotFound
	}
	session.touch()
	return session, nil
}

func (m *SearchSessionManager) Get(id string) (SessionView, error) {
	session, err := m.get(id)
	if err != nil {
		return SessionView{}, err
	}
	return session.view(), nil
}

// Type - нажатие клавиши в сессии
func (m *SearchSessionManager) Type(id, query string) (SessionView, error) {
	session, err := m.get(id)
	if err != nil {
		return SessionView{}, err
	}
	session.controller.Type(query)
	return session.view(), nil
}

// Select выбирает подсказку; index < 0 означает Enter
func (m *SearchSessionManager) Select(id string, index int) (SessionView, error) {
	session, err := m.get(id)
	if err != nil {
		return SessionView{}, err
	}
	if index < 0 {
		if _, _, err := session.controller.Submit(); err != nil {
			return SessionView{}, err
		}
	} else if _, err := session.controller.Select(index); err != nil {
		return SessionView{}, err
	}
	return session.view(), nil
}

func (m *SearchSessionManager) Close(id string) error {
	m.mu.Lock()
	session, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if !ok {
		return errors.ErrSearchSessionNotFound
	}
	session.controller.Close()
	return nil
}

// Prune закрывает сессии, простаивающие дольше idleTTL
func (m *SearchSessionManager) Prune(now time.Time) int {
	m.mu.Lock()
	var stale []*SearchSession
	for id, session := range m.sessions {
		session.mu.Lock()
		idle := now.Sub(session.lastActive)
		session.mu.Unlock()
		if idle > m.idleTTL {
			stale = append(stale, session)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, session := range stale {
		session.controller.Close()
	}
	if len(stale) > 0 {
		m.logger.Debug("Pruned idle search sessions", zap.Int("count", len(stale)))
	}
	return len(stale)
}

// CloseAll останавливает все сессии при остановке сервиса
func (m *SearchSessionManager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*SearchSession)
	m.mu.Unlock()

	for _, session := range sessions {
		session.controller.Close()
	}
}
