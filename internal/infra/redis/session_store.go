package redis

import (
	"context"
	"sync"
	"time"

	"quizboard-service/internal/game"

	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions hold live timers, so they stay in process; Redis only carries a
// liveness marker per session (value: quiz id) so other tooling can see
// which games are running.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	sessions map[string]*game.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*game.Session),
	}
}

func (s *SessionStore) Put(session *game.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID()] = session
	// best-effort liveness marker
	_ = s.client.Set(context.Background(), s.key(session.ID()), session.QuizID(), s.ttl).Err()
}

// Get refreshes the liveness marker on every hit.
func (s *SessionStore) Get(sessionID string) (*game.Session, bool) {
	s.mu.RLock()
	session, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok && s.ttl > 0 {
		_ = s.client.Expire(context.Background(), s.key(sessionID), s.ttl).Err()
	}
	return session, ok
}

func (s *SessionStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	_ = s.client.Del(context.Background(), s.key(sessionID)).Err()
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
		_ = s.client.Del(context.Background(), s.key(session.ID())).Err()
		ids = append(ids, session.ID())
	}
	return ids
}

func (s *SessionStore) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
