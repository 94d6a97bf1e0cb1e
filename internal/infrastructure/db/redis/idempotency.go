package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/biblioteca/library-system/internal/core/domain"
)

const defaultIdempotencyTTL = 24 * time.Hour

// IdempotencyStore maps a client Idempotency-Key to the loan it created.
// Key format: idem:loan:<actor_id>:<key>
type IdempotencyStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdempotencyStore wraps client; a non-positive ttl falls back to 24h.
func NewIdempotencyStore(client *redis.Client, ttl time.Duration) *IdempotencyStore {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	return &IdempotencyStore{client: client, ttl: ttl}
}

// Lookup reports the loan id stored for the key, if any.
func (s *IdempotencyStore) Lookup(ctx context.Context, actorID int64, key string) (int64, bool, error) {
	val, err := s.client.Get(ctx, s.key(actorID, key)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, domain.StorageError("idempotency lookup", err)
	}
	id, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("idempotency lookup: corrupt value %q: %w", val, err)
	}
	return id, true, nil
}

// Remember stores loanID only if the key is not already taken.
func (s *IdempotencyStore) Remember(ctx context.Context, actorID int64, key string, loanID int64) error {
	if err := s.client.SetNX(ctx, s.key(actorID, key), strconv.FormatInt(loanID, 10), s.ttl).Err(); err != nil {
		return domain.StorageError("idempotency remember", err)
	}
	return nil
}

func (s *IdempotencyStore) key(actorID int64, key string) string {
	return fmt.Sprintf("idem:loan:%d:%s", actorID, key)
}
