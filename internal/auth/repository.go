// AngelaMos | 2026
// repository.go

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/flashforge/internal/core"
)

const sessionKeyPrefix = "session:"

type Repository interface {
	Create(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// repository keeps sessions as Redis hashes that expire with the cookie.
type repository struct {
	rdb redis.Cmdable
}

func NewRepository(rdb redis.Cmdable) Repository {
	return &repository{rdb: rdb}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func (r *repository) Create(ctx context.Context, session *Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		return fmt.Errorf("create session: already expired: %w", core.ErrInvalidInput)
	}

	key := sessionKey(session.ID)

	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key,
			"user_id", session.UserID,
			"user_agent", session.UserAgent,
			"ip_address", session.IPAddress,
			"created_at", session.CreatedAt.Unix(),
			"expires_at", session.ExpiresAt.Unix(),
		)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

func (r *repository) FindByID(ctx context.Context, id string) (*Session, error) {
	var stored struct {
		UserID    string `redis:"user_id"`
		UserAgent string `redis:"user_agent"`
		IPAddress string `redis:"ip_address"`
		CreatedAt int64  `redis:"created_at"`
		ExpiresAt int64  `redis:"expires_at"`
	}

	res := r.rdb.HGetAll(ctx, sessionKey(id))
	if err := res.Err(); err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if len(res.Val()) == 0 {
		return nil, fmt.Errorf("find session: %w", core.ErrNotFound)
	}
	if err := res.Scan(&stored); err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}

	return &Session{
		ID:        id,
		UserID:    stored.UserID,
		UserAgent: stored.UserAgent,
		IPAddress: stored.IPAddress,
		CreatedAt: time.Unix(stored.CreatedAt, 0),
		ExpiresAt: time.Unix(stored.ExpiresAt, 0),
	}, nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	if err := r.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
