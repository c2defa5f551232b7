package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"live-quiz-service/internal/domain"
)

func TestSessionRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo, mr := newSessionRepo(t)

	if err := repo.Create(ctx, newSession("room-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if !mr.Exists("live:session:room-1") {
		t.Fatalf("expected session document in redis")
	}
	if err := repo.Create(ctx, newSession("room-1")); !errors.Is(err, domain.ErrSessionCodeInUse) {
		t.Fatalf("expected code conflict, got %v", err)
	}

	session, err := repo.Get(ctx, "room-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if session.QuizID != "quiz-1" || !session.IsActive {
		t.Fatalf("unexpected session %+v", session)
	}

	if _, err := repo.Get(ctx, "missing"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSessionRepositoryUpdatePersistsMutation(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSessionRepo(t)
	if err := repo.Create(ctx, newSession("room-1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := repo.Update(ctx, "room-1", func(s *domain.LiveSession) error {
		s.Participants = append(s.Participants, domain.Participant{UserID: "u1"})
		return nil
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(updated.Participants) != 1 {
		t.Fatalf("expected participant in returned state, got %+v", updated)
	}

	fresh, err := repo.Get(ctx, "room-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(fresh.Participants) != 1 || fresh.Participants[0].UserID != "u1" {
		t.Fatalf("expected participant persisted, got %+v", fresh.Participants)
	}
}

func TestSessionRepositoryUpdateAbortsOnMutateError(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSessionRepo(t)
	if err := repo.Create(ctx, newSession("room-1")); err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err := repo.Update(ctx, "room-1", func(s *domain.LiveSession) error {
		s.CurrentQuestionIndex = 9
		return domain.ErrAlreadyAnswered
	})
	if !errors.Is(err, domain.ErrAlreadyAnswered) {
		t.Fatalf("expected mutate error, got %v", err)
	}

	fresh, _ := repo.Get(ctx, "room-1")
	if fresh.CurrentQuestionIndex != 0 {
		t.Fatalf("aborted update must not persist, got %d", fresh.CurrentQuestionIndex)
	}
}

func TestSessionRepositoryActiveIndexFollowsLifecycle(t *testing.T) {
	ctx := context.Background()
	repo, _ := newSessionRepo(t)
	if err := repo.Create(ctx, newSession("room-1")); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, newSession("room-2")); err != nil {
		t.Fatalf("create: %v", err)
	}

	active, err := repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("expected 2 active, got %d", len(active))
	}

	now := time.Now()
	if _, err := repo.Update(ctx, "room-2", func(s *domain.LiveSession) error {
		s.IsActive = false
		s.EndedAt = &now
		return nil
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	active, err = repo.ListActive(ctx)
	if err != nil {
		t.Fatalf("list after end: %v", err)
	}
	if len(active) != 1 || active[0].SessionCode != "room-1" {
		t.Fatalf("expected only room-1 active, got %+v", active)
	}

	// The ended session stays queryable for results.
	ended, err := repo.Get(ctx, "room-2")
	if err != nil {
		t.Fatalf("get ended: %v", err)
	}
	if ended.IsActive || ended.EndedAt == nil {
		t.Fatalf("expected ended session, got %+v", ended)
	}
}

func newSessionRepo(t *testing.T) (*SessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewSessionRepository(client, 0), mr
}

func newSession(code string) *domain.LiveSession {
	return &domain.LiveSession{
		SessionCode:  code,
		QuizID:       "quiz-1",
		InstructorID: "instr",
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
}
