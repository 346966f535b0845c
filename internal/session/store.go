package session

import (
	"context"
	"errors"
	"sync"

	"github.com/atulram/Flashcard-App/internal/models"
)

// ErrSessionNotFound is returned when a session id is unknown or expired.
var ErrSessionNotFound = errors.New("study session not found")

// Store holds study sessions keyed by their opaque session id. The
// generation pipeline never touches a Store; only the request layer does.
type Store interface {
	Save(ctx context.Context, session *models.StudySession) error
	Get(ctx context.Context, id string) (*models.StudySession, error)
	Delete(ctx context.Context, id string) error
}

// MemoryStore keeps sessions in process memory. Sessions do not survive a
// restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.StudySession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.StudySession)}
}

func (s *MemoryStore) Save(ctx context.Context, session *models.StudySession) error {
	clone := cloneSession(session)
	s.mu.Lock()
	s.sessions[clone.ID] = clone
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.StudySession, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return cloneSession(session), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

// cloneSession copies the session so callers cannot mutate stored state
// behind the lock.
func cloneSession(session *models.StudySession) *models.StudySession {
	clone := *session
	clone.Cards = make([]models.Flashcard, len(session.Cards))
	copy(clone.Cards, session.Cards)
	return &clone
}
