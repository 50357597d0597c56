package session

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisSessionKey = "pollualert:session"

// RedisStore keeps the record in Redis with a TTL, for deployments where the
// shell runs on a host with shared infrastructure. Redis expiring the key is
// just a second line of defence; the Manager still checks expiry itself.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a Redis-backed session store. The optional suffix
// scopes the key when several shells share one Redis (e.g. a device id).
func NewRedisStore(client *redis.Client, suffix string) *RedisStore {
	key := redisSessionKey
	if suffix != "" {
		key = key + ":" + suffix
	}
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) Save(ctx context.Context, record string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("session ttl must be positive, got %v", ttl)
	}
	return r.client.Set(ctx, r.key, record, ttl).Err()
}

func (r *RedisStore) Load(ctx context.Context) (string, error) {
	val, err := r.client.Get(ctx, r.key).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (r *RedisStore) Delete(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
