package featurecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/redis/go-redis/v9"
)

// redisKeyPrefix namespaces feature cache keys in a shared Redis instance.
const redisKeyPrefix = "lexmatch:feature:"

// RedisStore is a Redis-backed feature cache shared across engine replicas.
// Entries are CBOR-encoded; expiry is delegated to Redis TTLs, so no
// janitor is needed.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store with the given TTL.
// A non-positive TTL falls back to DefaultTTL.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

// Get retrieves a live entry. A Redis miss maps to ErrNotFound; transport
// failures are returned as-is so callers can fall back to computing fresh.
func (s *RedisStore) Get(ctx context.Context, lawyerID, kind string) (Entry, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+Key(lawyerID, kind)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, fmt.Errorf("feature cache get: %w", err)
	}

	var entry Entry
	if err := cbor.Unmarshal(data, &entry); err != nil {
		// A corrupt entry behaves like a miss; it will be overwritten by
		// the fresh computation.
		return Entry{}, ErrNotFound
	}
	return entry, nil
}

// Set stores an entry with the store's TTL.
func (s *RedisStore) Set(ctx context.Context, lawyerID, kind string, entry Entry) error {
	data, err := cbor.Marshal(entry)
	if err != nil {
		return fmt.Errorf("feature cache encode: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+Key(lawyerID, kind), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("feature cache set: %w", err)
	}
	return nil
}

// Purge removes every entry for one lawyer via a prefix scan.
func (s *RedisStore) Purge(ctx context.Context, lawyerID string) error {
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+lawyerID+":*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("feature cache purge: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("feature cache purge scan: %w", err)
	}
	return nil
}
