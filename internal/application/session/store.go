package session

import (
	"sync"

	"github.com/baechuer/real-time-ressys/services/listing-service/internal/domain"
)

// Store holds the visitor-wide session. Only the Gate writes to it.
type Store struct {
	mu     sync.RWMutex
	cur    domain.Session
	subs   map[int]func(domain.Session)
	nextID int
}

func NewStore() *Store {
	return &Store{subs: make(map[int]func(domain.Session))}
}

func (s *Store) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cur
}

// Subscribe calls fn after every change. The returned func unsubscribes.
func (s *Store) Subscribe(fn func(domain.Session)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) set(v domain.Session) {
	s.mu.Lock()
	s.cur = v
	fns := make([]func(domain.Session), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
