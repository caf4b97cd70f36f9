// Package rendercache caches rendered map output in an in-process LRU and,
// optionally, a shared Redis tier.
package rendercache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/mohammed-shakir/maply/internal/core/observability"
)

const (
	tierLRU   = "lru"
	tierRedis = "redis"
)

// Remote is the shared tier; *redisstore.Client satisfies it.
type Remote interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

type Config struct {
	Size      int
	TTL       time.Duration
	OpTimeout time.Duration
}

type Cache struct {
	local  *lru.Cache[string, []byte]
	remote Remote
	cfg    Config
	log    *slog.Logger
}

// New builds a cache; remote may be nil to run with the LRU tier only.
func New(cfg Config, remote Remote, logger *slog.Logger) (*Cache, error) {
	if cfg.Size <= 0 {
		cfg.Size = 1024
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	if cfg.OpTimeout <= 0 {
		cfg.OpTimeout = 250 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	local, err := lru.New[string, []byte](cfg.Size)
	if err != nil {
		return nil, fmt.Errorf("render cache lru: %w", err)
	}
	return &Cache{local: local, remote: remote, cfg: cfg, log: logger}, nil
}

// Get looks in the LRU first, then the remote tier, back-filling the LRU
// on a remote hit. Remote failures count as misses.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool) {
	if v, ok := c.local.Get(key); ok {
		observability.IncRenderCache(tierLRU, "hit")
		return v, true
	}
	observability.IncRenderCache(tierLRU, "miss")

	if c.remote == nil {
		return nil, false
	}
	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()

	v, found, err := c.remote.Get(opCtx, key)
	switch {
	case err != nil:
		observability.IncRenderCache(tierRedis, "error")
		c.log.WarnContext(ctx, "render cache remote get failed", "key", key, "err", err)
		return nil, false
	case !found:
		observability.IncRenderCache(tierRedis, "miss")
		return nil, false
	}
	observability.IncRenderCache(tierRedis, "hit")
	c.local.Add(key, v)
	return v, true
}

// Set stores val in both tiers. A remote failure is logged, not returned.
func (c *Cache) Set(ctx context.Context, key string, val []byte) {
	c.local.Add(key, val)
	if c.remote == nil {
		return
	}
	opCtx, cancel := context.WithTimeout(ctx, c.cfg.OpTimeout)
	defer cancel()
	if err := c.remote.Set(opCtx, key, val, c.cfg.TTL); err != nil {
		observability.IncRenderCache(tierRedis, "error")
		c.log.WarnContext(ctx, "render cache remote set failed", "key", key, "err", err)
	}
}

func (c *Cache) Len() int { return c.local.Len() }

// Purge empties the LRU tier only.
func (c *Cache) Purge() { c.local.Purge() }
