package memory

import (
	"context"
	"sync"
	"time"

	"github.com/ydm-hris/attendance-gateway-go/internal/domain/auth"
)

type sessionStoreImpl struct {
	mu       sync.RWMutex
	sessions map[string]auth.Session
}

// NewSessionStore returns a process-local session store. Sessions are lost
// on restart.
func NewSessionStore() auth.SessionStore {
	return &sessionStoreImpl{sessions: make(map[string]auth.Session)}
}

func (s *sessionStoreImpl) Save(ctx context.Context, session auth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
	return nil
}

func (s *sessionStoreImpl) Get(ctx context.Context, id string) (auth.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return auth.Session{}, auth.ErrSessionNotFound
	}
	return session, nil
}

func (s *sessionStoreImpl) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return auth.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *sessionStoreImpl) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	deleted := 0
	for id, session := range s.sessions {
		if session.IsExpired(now) {
			delete(s.sessions, id)
			deleted++
		}
	}
	return deleted, nil
}
