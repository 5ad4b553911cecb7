package inmemory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/anirudh-hegde/scribe/models"
)

type entry struct {
	sess      *models.Session
	expiresAt time.Time
}

// Store keeps sessions in process memory. Expired entries are dropped lazily
// on access and swept when new sessions are created. Sessions are stored and
// returned as copies, so callers never share a struct with the store or with
// each other.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]entry
	ttl      time.Duration
}

func NewStore(ttl time.Duration) *Store {
	return &Store{sessions: make(map[string]entry), ttl: ttl}
}

func (s *Store) Create(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	s.sweepLocked()
	s.sessions[sess.ID] = entry{sess: sess.Clone(), expiresAt: time.Now().Add(s.ttl)}
	return nil
}

func (s *Store) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, models.ErrSessionNotFound
	}
	if time.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, models.ErrSessionNotFound
	}
	return e.sess.Clone(), nil
}

func (s *Store) Save(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[sess.ID]; !ok {
		return models.ErrSessionNotFound
	}
	s.sessions[sess.ID] = entry{sess: sess.Clone(), expiresAt: time.Now().Add(s.ttl)}
	return nil
}

func (s *Store) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *Store) sweepLocked() {
	now := time.Now()
	for id, e := range s.sessions {
		if now.After(e.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
