package blocklist

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "blocklist:"

// Store keeps revoked token ids (jti) in redis. Entries carry a TTL at least
// as long as the longest-lived token, so a revoked jti can never outlive its
// blocklist entry. Reads happen on every authenticated request; the guard
// treats a store error as revoked (fail closed).
type Store struct {
	rdb *redis.Client
	ttl time.Duration
}

func New(rdb *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 48 * time.Hour
	}
	return &Store{rdb: rdb, ttl: ttl}
}

// NewClient connects to redis and verifies the connection.
func NewClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connect error: %w", err)
	}

	return rdb, nil
}

func (s *Store) Revoke(ctx context.Context, jti string) error {
	if err := s.rdb.Set(ctx, keyPrefix+jti, "revoked", s.ttl).Err(); err != nil {
		return fmt.Errorf("blocklist revoke: %w", err)
	}
	return nil
}

func (s *Store) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, keyPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("blocklist lookup: %w", err)
	}
	return n > 0, nil
}
