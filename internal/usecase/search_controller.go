package usecase

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
	"github.com/farm-geo-service/internal/pkg/errors"
)

// SearchState - состояние строки поиска
type SearchState string

const (
	SearchIdle       SearchState = "idle"
	SearchDebouncing SearchState = "debouncing"
	SearchSearching  SearchState = "searching"
)

// NavigateFunc вызывается при выборе подсказки
type NavigateFunc func(target domain.Coordinate, suggestion domain.SearchSuggestion)

// SearchSnapshot - наблюдаемое состояние контроллера
type SearchSnapshot struct {
	Query       string                    `json:"query"`
	State       SearchState               `json:"state"`
	Visible     bool                      `json:"visible"`
	Suggestions []domain.SearchSuggestion `json:"suggestions"`
}

// SearchController - поиск по мере ввода с debounce.
// Каждое нажатие отменяет ожидающий таймер и запрос в полёте (побеждает последнее).
type SearchController struct {
	mu          sync.Mutex
	searcher    Searcher
	debounce    time.Duration
	minLen      int
	onNavigate  NavigateFunc
	logger      *zap.Logger
	timer       *time.Timer
	cancel      context.CancelFunc
	seq         uint64
	query       string
	state       SearchState
	visible     bool
	suggestions []domain.SearchSuggestion
}

// NewSearchController - создание контроллера; onNavigate может быть nil
func NewSearchController(
	searcher Searcher,
	debounce time.Duration,
	minLen int,
	onNavigate NavigateFunc,
	logger *zap.Logger,
) *SearchController {
	return &SearchController{
		searcher:    searcher,
		debounce:    debounce,
		minLen:      minLen,
		onNavigate:  onNavigate,
		logger:      logger,
		state:       SearchIdle,
		suggestions: []domain.SearchSuggestion{},
	}
}

// Type обрабатывает новое значение строки поиска
func (c *SearchController) Type(query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.query = query
	c.resetLocked()

	trimmed := strings.TrimSpace(query)
	if utf8.RuneCountInString(trimmed) < c.minLen {
		c.suggestions = []domain.SearchSuggestion{}
		c.visible = false
		return
	}

	c.state = SearchDebouncing
	seq := c.seq
	c.timer = time.AfterFunc(c.debounce, func() {
		c.fire(seq, trimmed)
	})
}

func (c *SearchController) fire(seq uint64, query string) {
	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.state = SearchSearching
	c.mu.Unlock()

	suggestions := c.searcher.Suggest(ctx, query)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if seq != c.seq {
		c.logger.Debug("Dropping stale search result", zap.String("query", query))
		return
	}
	if suggestions == nil {
		suggestions = []domain.SearchSuggestion{}
	}
	c.suggestions = suggestions
	c.visible = true
	c.state = SearchIdle
	c.cancel = nil
}

// Select выбирает подсказку по индексу, вызывает навигацию и подставляет display name в строку
func (c *SearchController) Select(index int) (*domain.Coordinate, error) {
	c.mu.Lock()
	if index < 0 || index >= len(c.suggestions) {
		c.mu.Unlock()
		return nil, errors.ErrInvalidRequest.WithDetails(map[string]interface{}{"index": "no such suggestion"})
	}
	suggestion := c.suggestions[index]
	target, err := suggestion.Coordinate()
	if err != nil {
		c.mu.Unlock()
		c.logger.Warn("Suggestion has malformed coordinates", zap.Error(err))
		return nil, errors.ErrInvalidCoordinates
	}

	c.resetLocked()
	c.query = suggestion.DisplayName
	c.visible = false
	onNavigate := c.onNavigate
	c.mu.Unlock()

	if onNavigate != nil {
		onNavigate(target, suggestion)
	}
	return &target, nil
}

// Submit - нажатие Enter: выбирает первую подсказку, если список не пуст
func (c *SearchController) Submit() (*domain.Coordinate, bool, error) {
	c.mu.Lock()
	empty := len(c.suggestions) == 0
	c.mu.Unlock()

	if empty {
		return nil, false, nil
	}
	target, err := c.Select(0)
	if err != nil {
		return nil, false, err
	}
	return target, true, nil
}

// Snapshot возвращает текущее состояние
func (c *SearchController) Snapshot() SearchSnapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return SearchSnapshot{
		Query:       c.query,
		State:       c.state,
		Visible:     c.visible,
		Suggestions: append([]domain.SearchSuggestion{}, c.suggestions...),
	}
}

// Close останавливает таймер и отменяет запрос в полёте
func (c *SearchController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
}

// resetLocked отменяет ожидающий поиск и делает все колбэки в полёте устаревшими
func (c *SearchController) resetLocked() {
	c.seq++
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.state = SearchIdle
}
