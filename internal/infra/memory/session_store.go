package memory

import (
	"sync"
	"time"

	"quizboard-service/internal/game"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*game.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*game.Session),
	}
}

func (s *SessionStore) Put(session *game.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
}

func (s *SessionStore) Get(sessionID string) (*game.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// Reap ends and drops sessions idle for longer than idle. It returns the removed ids.
func (s *SessionStore) Reap(now time.Time, idle time.Duration) []string {
	s.mu.Lock()
	var stale []*game.Session
	for id, session := range s.sessions {
		if now.Sub(session.LastActive()) > idle {
			stale = append(stale, session)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	ids := make([]string, 0, len(stale))
	for _, session := range stale {
		session.End()
		ids = append(ids, session.ID())
	}
	return ids
}
