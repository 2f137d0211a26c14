package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"smallbiznis-promotion/pkg/config"
	"smallbiznis-promotion/pkg/metrics"

	rcache "github.com/go-redis/cache/v9"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrCacheMiss is returned by Get when the key is absent.
var ErrCacheMiss = rcache.ErrCacheMiss

var Module = fx.Module("cache",
	fx.Provide(
		fx.Annotate(NewRedis, fx.As(new(Cache))),
	),
)

type Cache interface {
	Get(ctx context.Context, key string, target any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	TTL() time.Duration
}

// Redis is a Cache backed by go-redis/cache with an optional in-process TinyLFU tier.
type Redis struct {
	instance *rcache.Cache
	ttl      time.Duration
}

func NewRedis(client *redis.Client, cfg *config.Config) *Redis {
	var local rcache.LocalCache
	if cfg.Cache.Local {
		local = rcache.NewTinyLFU(10000, time.Minute)
	}

	return &Redis{
		instance: rcache.New(&rcache.Options{
			Redis:      client,
			LocalCache: local,
			Marshal:    json.Marshal,
			Unmarshal:  json.Unmarshal,
		}),
		ttl: cfg.Cache.TTL,
	}
}

func (c *Redis) Get(ctx context.Context, key string, target any) error {
	return c.instance.Get(ctx, key, target)
}

func (c *Redis) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	return c.instance.Set(&rcache.Item{
		Ctx:   ctx,
		Key:   key,
		Value: value,
		TTL:   ttl,
	})
}

func (c *Redis) Delete(ctx context.Context, key string) error {
	return c.instance.Delete(ctx, key)
}

func (c *Redis) TTL() time.Duration { return c.ttl }

// Noop never stores anything; every lookup goes to the loader.
type Noop struct{}

func (Noop) Get(context.Context, string, any) error                { return ErrCacheMiss }
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Delete(context.Context, string) error                  { return nil }
func (Noop) TTL() time.Duration                                    { return 0 }

var group singleflight.Group

// UseCache reads key through c, calling load on a miss. Concurrent misses for
// the same key share one load. Cache read and write failures are logged and
// fall back to load.
func UseCache[T any](ctx context.Context, c Cache, namespace, key string, load func(context.Context) (T, error)) (T, error) {
	if c == nil {
		return load(ctx)
	}

	var v T
	err := c.Get(ctx, key, &v)
	if err == nil {
		metrics.RecordCacheLookup(namespace, "hit")
		return v, nil
	}
	if !errors.Is(err, ErrCacheMiss) {
		zap.L().Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}
	metrics.RecordCacheLookup(namespace, "miss")

	res, err, _ := group.Do(key, func() (any, error) {
		loaded, err := load(ctx)
		if err != nil {
			return loaded, err
		}
		if err := c.Set(ctx, key, loaded, c.TTL()); err != nil {
			zap.L().Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
		return loaded, nil
	})
	if err != nil {
		return v, err
	}

	out, ok := res.(T)
	if !ok {
		return v, fmt.Errorf("cache: unexpected value type %T for key %s", res, key)
	}
	return out, nil
}

// Invalidate removes key, logging failures.
func Invalidate(ctx context.Context, c Cache, key string) {
	if c == nil {
		return
	}
	if err := c.Delete(ctx, key); err != nil && !errors.Is(err, ErrCacheMiss) {
		zap.L().Warn("cache invalidate failed", zap.String("key", key), zap.Error(err))
	}
}
