package cache

import (
	"NestVault/internal/core/ports"
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis is the shared descriptor cache for multi-instance deployments.
// Every operation is best-effort: a down Redis degrades to RPC reads,
// never to request failures.
type Redis struct {
	client *redis.Client
	prefix string
	log    zerolog.Logger
}

var _ ports.DescriptorCache = (*Redis)(nil) // Ensure compliance

// NewRedis connects and verifies the Redis instance is reachable.
func NewRedis(ctx context.Context, url string, baseLogger *zerolog.Logger) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}
	return &Redis{
		client: client,
		prefix: "descriptor:",
		log:    baseLogger.With().Str("component", "redis_cache").Logger(),
	}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			r.log.Warn().Err(err).Str("key", key).Msg("Cache read failed")
		}
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) {
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

func (r *Redis) Close() error {
	return r.client.Close()
}
