package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Redis stores JSON encoded values in a shared Redis instance so every API
// replica sees the same counters.
type Redis[V any] struct {
	client redis.UniversalClient
	prefix string
	log    *zap.SugaredLogger
}

func NewRedis[V any](client redis.UniversalClient, prefix string, log *zap.SugaredLogger) *Redis[V] {
	return &Redis[V]{client: client, prefix: prefix, log: log}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, bool) {
	var zero V
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.log.Warnw("cache_get_failed", "key", key, "err", err)
		}
		return zero, false
	}
	var v V
	if err := json.Unmarshal(raw, &v); err != nil {
		r.log.Warnw("cache_decode_failed", "key", key, "err", err)
		return zero, false
	}
	return v, true
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) {
	raw, err := json.Marshal(value)
	if err != nil {
		r.log.Warnw("cache_encode_failed", "key", key, "err", err)
		return
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := r.client.Set(ctx, r.prefix+key, raw, ttl).Err(); err != nil {
		r.log.Warnw("cache_set_failed", "key", key, "err", err)
	}
}

func (r *Redis[V]) Delete(ctx context.Context, key string) {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		r.log.Warnw("cache_delete_failed", "key", key, "err", err)
	}
}
