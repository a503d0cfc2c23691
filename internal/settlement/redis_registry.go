package settlement

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const wagerKeyPrefix = "wager:v1:"

// RedisRegistry stores settled wager outcomes in Redis with a TTL, so replay
// protection survives restarts and is shared across instances.
type RedisRegistry struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRegistry builds a Redis-backed wager registry.
func NewRedisRegistry(client *redis.Client, ttl time.Duration) *RedisRegistry {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisRegistry{client: client, ttl: ttl}
}

func (r *RedisRegistry) Lookup(ctx context.Context, wagerID string) (Result, bool, error) {
	raw, err := r.client.Get(ctx, wagerKeyPrefix+wagerID).Result()
	if err == redis.Nil {
		return Result{}, false, nil
	}
	if err != nil {
		return Result{}, false, err
	}
	var result Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return Result{}, false, err
	}
	return result, true, nil
}

func (r *RedisRegistry) Store(ctx context.Context, wagerID string, result Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, wagerKeyPrefix+wagerID, payload, r.ttl).Err()
}
