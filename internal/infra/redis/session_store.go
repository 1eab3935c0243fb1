package redis

import (
	"context"
	"sync"
	"time"

	"examship-quiz-service/internal/app"
	"examship-quiz-service/internal/domain"
	"examship-quiz-service/internal/logger"
	"github.com/redis/go-redis/v9"
)

// SessionStore is a Redis-aware implementation of app.SessionRepository.
// Sessions stay in a local map so their in-process timer and subscribers keep
// working; Redis holds a liveness marker (learner -> session id) with a TTL.
type SessionStore struct {
	client   *redis.Client
	ttl      time.Duration
	log      *logger.Logger
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore(client *redis.Client, ttl time.Duration, log *logger.Logger) *SessionStore {
	return &SessionStore{
		client:   client,
		ttl:      ttl,
		log:      logger.OrNop(log),
		sessions: make(map[string]*app.Session),
	}
}

func (s *SessionStore) Create(learnerID string, session *app.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.sessions[learnerID]; ok && !existing.Closed() {
		return domain.ErrSessionActive
	}
	s.sessions[learnerID] = session
	// best-effort liveness marker
	if err := s.client.Set(context.Background(), s.key(learnerID), session.ID(), s.ttl).Err(); err != nil {
		s.log.Warn("session marker not set", "learner", learnerID, "error", err)
	}
	return nil
}

func (s *SessionStore) Get(learnerID string) (*app.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[learnerID]
	return session, ok
}

func (s *SessionStore) Delete(learnerID, sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[learnerID]
	if !ok || session.ID() != sessionID {
		return
	}
	delete(s.sessions, learnerID)
	if err := s.client.Del(context.Background(), s.key(learnerID)).Err(); err != nil {
		s.log.Warn("session marker not cleared", "learner", learnerID, "error", err)
	}
}

func (s *SessionStore) key(learnerID string) string {
	return "quiz:session:" + learnerID
}
