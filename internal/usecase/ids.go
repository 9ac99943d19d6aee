package usecase

import (
	"sync"
	"time"
)

// idSource выдаёт id на основе текущего времени в миллисекундах.
// Два вызова в одну миллисекунду получают разные значения.
type idSource struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func newIDSource(now func() time.Time) *idSource {
	if now == nil {
		now = time.Now
	}
	return &idSource{now: now}
}

func (s *idSource) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.now().UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

// observe не даёт выдать id, уже существующий в загруженном снапшоте
func (s *idSource) observe(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id > s.last {
		s.last = id
	}
}
