package telemetry

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/farm-geo-service/internal/domain"
)

// Handler получает каждое новое показание датчиков
type Handler func(reading domain.SensorReading)

// Status - состояние подключения ленты телеметрии
type Status struct {
	Connected    bool       `json:"connected"`
	LastReceived *time.Time `json:"lastReceived,omitempty"`
	LastError    string     `json:"lastError,omitempty"`
	Subscribers  int        `json:"subscribers"`
}

// Feed - лента показаний датчиков. Создаётся явно и передаётся тем, кому нужна;
// жизненный цикл задаётся Connect/Close.
type Feed struct {
	mu           sync.RWMutex
	connected    bool
	handlers     map[uint64]Handler
	nextID       uint64
	latest       *domain.SensorReading
	lastReceived time.Time
	lastError    string
	logger       *zap.Logger
}

// Subscription - хендл подписки; Unsubscribe можно вызывать повторно
type Subscription struct {
	id   uint64
	feed *Feed
	once sync.Once
}

// NewFeed - создание новой ленты телеметрии
func NewFeed(logger *zap.Logger) *Feed {
	return &Feed{
		handlers: make(map[uint64]Handler),
		logger:   logger,
	}
}

// Connect открывает ленту для публикаций
func (f *Feed) Connect() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.connected = true
	f.lastError = ""
	f.logger.Info("Telemetry feed connected")
}

// Close отключает ленту и снимает всех подписчиков. Последнее показание сохраняется.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.connected {
		return
	}
	f.connected = false
	f.handlers = make(map[uint64]Handler)
	f.logger.Info("Telemetry feed closed")
}

// Subscribe регистрирует обработчик показаний
func (f *Feed) Subscribe(handler Handler) (*Subscription, error) {
	if handler == nil {
		return nil, fmt.Errorf("telemetry: nil handler")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.connected {
		return nil, fmt.Errorf("telemetry: feed is not connected")
	}
	f.nextID++
	f.handlers[f.nextID] = handler
	return &Subscription{id: f.nextID, feed: f}, nil
}

// Unsubscribe снимает подписку
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.feed.mu.Lock()
		delete(s.feed.handlers, s.id)
		s.feed.mu.Unlock()
	})
}

// Publish запоминает показание и раздаёт его подписчикам.
// На закрытой ленте показание отбрасывается.
func (f *Feed) Publish(reading domain.SensorReading) bool {
	f.mu.Lock()
	if !f.connected {
		f.mu.Unlock()
		return false
	}
	r := reading
	f.latest = &r
	f.lastReceived = time.Now()
	handlers := make([]Handler, 0, len(f.handlers))
	for _, h := range f.handlers {
		handlers = append(handlers, h)
	}
	f.mu.Unlock()

	for _, h := range handlers {
		h(reading)
	}
	return true
}

// ReportError фиксирует ошибку транспорта для Status
func (f *Feed) ReportError(err error) {
	if err == nil {
		return
	}
	f.mu.Lock()
	f.lastError = err.Error()
	f.mu.Unlock()
}

// Latest возвращает последнее полученное показание
func (f *Feed) Latest() (domain.SensorReading, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.latest == nil {
		return domain.SensorReading{}, false
	}
	return *f.latest, true
}

func (f *Feed) Status() Status {
	f.mu.RLock()
	defer f.mu.RUnlock()

	status := Status{
		Connected:   f.connected,
		LastError:   f.lastError,
		Subscribers: len(f.handlers),
	}
	if !f.lastReceived.IsZero() {
		t := f.lastReceived
		status.LastReceived = &t
	}
	return status
}
