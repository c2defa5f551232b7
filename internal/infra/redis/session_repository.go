package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

const activeSetKey = "live:sessions:active"

// updateRetries bounds optimistic-lock retries under contention.
const updateRetries = 8

// SessionRepository stores sessions as JSON documents in Redis, one per
// session code. Mutations run as WATCH/MULTI compare-and-swap so concurrent
// submissions against one session serialize: the losing writer re-reads and
// re-validates, which is what turns a duplicate answer into a clean conflict
// instead of a double append.
type SessionRepository struct {
	client *redis.Client
	ttl    time.Duration // 0 keeps ended sessions queryable forever
}

var _ app.SessionRepository = (*SessionRepository)(nil)

func NewSessionRepository(client *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{client: client, ttl: ttl}
}

func (r *SessionRepository) Create(ctx context.Context, session *domain.LiveSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ok, err := r.client.SetNX(ctx, r.key(session.SessionCode), data, r.ttl).Result()
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return domain.ErrSessionCodeInUse
	}
	if err := r.client.SAdd(ctx, activeSetKey, session.SessionCode).Err(); err != nil {
		return fmt.Errorf("index session: %w", err)
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, code string) (*domain.LiveSession, error) {
	raw, err := r.client.Get(ctx, r.key(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return unmarshalSession(raw)
}

func (r *SessionRepository) Update(ctx context.Context, code string, mutate func(*domain.LiveSession) error) (*domain.LiveSession, error) {
	key := r.key(code)
	var updated *domain.LiveSession

	txn := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrSessionNotFound
		}
		if err != nil {
			return fmt.Errorf("load session: %w", err)
		}
		session, err := unmarshalSession(raw)
		if err != nil {
			return err
		}
		if err := mutate(session); err != nil {
			return err
		}
		data, err := json.Marshal(session)
		if err != nil {
			return fmt.Errorf("marshal session: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			if session.IsActive {
				pipe.SAdd(ctx, activeSetKey, code)
			} else {
				pipe.SRem(ctx, activeSetKey, code)
			}
			return nil
		})
		if err != nil {
			return err
		}
		updated = session
		return nil
	}

	for i := 0; i < updateRetries; i++ {
		err := r.client.Watch(ctx, txn, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("update session %s: too much contention", code)
}

func (r *SessionRepository) ListActive(ctx context.Context) ([]*domain.LiveSession, error) {
	codes, err := r.client.SMembers(ctx, activeSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("list active sessions: %w", err)
	}
	active := make([]*domain.LiveSession, 0, len(codes))
	for _, code := range codes {
		session, err := r.Get(ctx, code)
		if errors.Is(err, domain.ErrSessionNotFound) {
			// expired document; drop the stale index entry
			_ = r.client.SRem(ctx, activeSetKey, code).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		if session.IsActive {
			active = append(active, session)
		}
	}
	return active, nil
}

func (r *SessionRepository) key(code string) string {
	return "live:session:" + code
}

func unmarshalSession(raw []byte) (*domain.LiveSession, error) {
	var session domain.LiveSession
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}
