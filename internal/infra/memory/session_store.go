package memory

import (
	"sync"

	"examship-quiz-service/internal/app"
	"examship-quiz-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionRepository.
// It holds at most one session per learner.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
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
}

// Len reports how many learners have a tracked session.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
