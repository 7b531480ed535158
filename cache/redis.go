package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/andrewpaige1/workbook-api/logger"
	"github.com/andrewpaige1/workbook-api/models"
)

// Redis stores listings as JSON under "<prefix>listing:<owner>:<parent>".
// Redis failures are logged and reported as misses.
type Redis struct {
	rdb    *goredis.Client
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedis(ctx context.Context, addr, prefix string, c Config, log *logger.Logger) (*Redis, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis address")
	}
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Redis{
		rdb:    rdb,
		prefix: prefix,
		ttl:    c.TTL,
		log:    log.With("service", "RedisListingCache"),
	}, nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

func (r *Redis) Get(ctx context.Context, key Key) ([]models.Item, bool) {
	raw, err := r.rdb.Get(ctx, r.prefix+key.String()).Bytes()
	if err != nil {
		if err != goredis.Nil {
			r.log.Warn("listing cache get failed", "key", key.String(), "error", err)
		}
		return nil, false
	}
	var items []models.Item
	if err := json.Unmarshal(raw, &items); err != nil {
		r.log.Warn("listing cache entry unreadable", "key", key.String(), "error", err)
		return nil, false
	}
	return items, true
}

func (r *Redis) Set(ctx context.Context, key Key, items []models.Item) {
	raw, err := json.Marshal(items)
	if err != nil {
		r.log.Warn("listing cache encode failed", "key", key.String(), "error", err)
		return
	}
	if err := r.rdb.Set(ctx, r.prefix+key.String(), raw, r.ttl).Err(); err != nil {
		r.log.Warn("listing cache set failed", "key", key.String(), "error", err)
	}
}

func (r *Redis) Invalidate(ctx context.Context, keys ...Key) {
	if len(keys) == 0 {
		return
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, r.prefix+k.String())
	}
	if err := r.rdb.Del(ctx, names...).Err(); err != nil {
		r.log.Warn("listing cache invalidate failed", "keys", names, "error", err)
	}
}

func (r *Redis) InvalidateOwner(ctx context.Context, ownerID string) {
	pattern := r.prefix + ownerPrefix(ownerID) + "*"
	iter := r.rdb.Scan(ctx, 0, pattern, 100).Iterator()
	var names []string
	for iter.Next(ctx) {
		names = append(names, iter.Val())
	}
	if err := iter.Err(); err != nil {
		r.log.Warn("listing cache scan failed", "pattern", pattern, "error", err)
		return
	}
	if len(names) == 0 {
		return
	}
	if err := r.rdb.Del(ctx, names...).Err(); err != nil {
		r.log.Warn("listing cache invalidate failed", "pattern", pattern, "error", err)
	}
}
