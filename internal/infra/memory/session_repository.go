package memory

import (
	"context"
	"sync"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

// SessionRepository is an in-memory implementation of app.SessionRepository.
// A single mutex serializes every read-modify-write, which is all the
// atomicity the state machine requires for one process.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]*domain.LiveSession
}

var _ app.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[string]*domain.LiveSession)}
}

func (r *SessionRepository) Create(_ context.Context, session *domain.LiveSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.SessionCode]; ok {
		return domain.ErrSessionCodeInUse
	}
	r.sessions[session.SessionCode] = session.Clone()
	return nil
}

func (r *SessionRepository) Get(_ context.Context, code string) (*domain.LiveSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[code]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return session.Clone(), nil
}

func (r *SessionRepository) Update(_ context.Context, code string, mutate func(*domain.LiveSession) error) (*domain.LiveSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.sessions[code]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	// Mutate a copy so a failed transition leaves stored state untouched.
	next := stored.Clone()
	if err := mutate(next); err != nil {
		return nil, err
	}
	r.sessions[code] = next
	return next.Clone(), nil
}

func (r *SessionRepository) ListActive(_ context.Context) ([]*domain.LiveSession, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	active := make([]*domain.LiveSession, 0)
	for _, session := range r.sessions {
		if session.IsActive {
			active = append(active, session.Clone())
		}
	}
	return active, nil
}
