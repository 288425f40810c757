// Package cache is a two tier byte cache: an in-process L1 map backed by an
// optional Redis L2 that survives restarts.
package cache

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultTTL             = 24 * time.Hour
	defaultCleanupInterval = 5 * time.Minute
	pingTimeout            = 3 * time.Second
)

// Options configures a Tiered cache. An empty RedisURL disables L2.
type Options struct {
	RedisURL        string
	TTL             time.Duration
	MaxEntries      int
	CleanupInterval time.Duration
}

// Tiered implements L1 (memory) + L2 (Redis) caching.
type Tiered struct {
	l1         sync.Map // key -> *entry
	rdb        *redis.Client
	ttl        time.Duration
	maxEntries int
	logger     *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64

	stop     chan struct{}
	stopOnce sync.Once
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// New builds the cache. An unreachable or invalid Redis only disables L2.
func New(ctx context.Context, opts Options, logger *zap.Logger) *Tiered {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}

	c := &Tiered{
		ttl:        opts.TTL,
		maxEntries: opts.MaxEntries,
		logger:     logger,
		stop:       make(chan struct{}),
	}

	if url := strings.TrimSpace(opts.RedisURL); url != "" {
		c.rdb = connect(ctx, url, logger)
	}

	logger.Debug("cache initialized",
		zap.Duration("ttl", c.ttl),
		zap.Bool("redis", c.rdb != nil),
		zap.Int("max_entries", c.maxEntries),
	)

	go c.cleanupLoop(opts.CleanupInterval)

	return c
}

func connect(ctx context.Context, url string, logger *zap.Logger) *redis.Client {
	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn("invalid redis url, L2 cache disabled", zap.Error(err))
		return nil
	}

	rdb := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, L2 cache disabled", zap.String("addr", opts.Addr), zap.Error(err))
		_ = rdb.Close()
		return nil
	}

	logger.Info("L2 redis cache connected", zap.String("addr", opts.Addr))
	return rdb
}

// Key builds a deterministic cache key from parts.
func Key(parts ...string) string {
	hash := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return fmt.Sprintf("rf:%x", hash[:12])
}

// Get tries L1, then L2. An L2 hit populates L1.
func (c *Tiered) Get(ctx context.Context, key string) ([]byte, bool) {
	if val, ok := c.l1.Load(key); ok {
		e := val.(*entry)
		if time.Now().Before(e.expiresAt) {
			c.hits.Add(1)
			return e.data, true
		}
		c.l1.Delete(key)
	}

	if c.rdb != nil {
		data, err := c.rdb.Get(ctx, key).Bytes()
		if err == nil {
			c.hits.Add(1)
			c.l1.Store(key, &entry{data: data, expiresAt: time.Now().Add(c.ttl)})
			return data, true
		}
		if !errors.Is(err, redis.Nil) {
			c.logger.Debug("L2 cache get failed", zap.Error(err))
		}
	}

	c.misses.Add(1)
	return nil, false
}

// Set stores data in both tiers.
func (c *Tiered) Set(ctx context.Context, key string, data []byte) {
	c.evictIfNeeded()
	c.l1.Store(key, &entry{data: data, expiresAt: time.Now().Add(c.ttl)})

	if c.rdb != nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Debug("L2 cache set failed", zap.Error(err))
		}
	}
}

// Stats returns hit and miss counters.
func (c *Tiered) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// HasL2 reports whether Redis is in use.
func (c *Tiered) HasL2() bool { return c.rdb != nil }

// Close stops the cleanup loop and releases the Redis connection.
func (c *Tiered) Close() error {
	c.stopOnce.Do(func() { close(c.stop) })
	if c.rdb != nil {
		return c.rdb.Close()
	}
	return nil
}

// evictIfNeeded drops expired entries first and then the entries closest to
// expiry until L1 is below maxEntries.
func (c *Tiered) evictIfNeeded() {
	if c.maxEntries <= 0 {
		return
	}

	count := 0
	c.l1.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count < c.maxEntries {
		return
	}

	now := time.Now()
	c.l1.Range(func(key, val any) bool {
		if e, ok := val.(*entry); ok && now.After(e.expiresAt) {
			c.l1.Delete(key)
			count--
		}
		return count >= c.maxEntries
	})

	for count >= c.maxEntries {
		var oldestKey any
		var oldestAt time.Time
		c.l1.Range(func(key, val any) bool {
			e, ok := val.(*entry)
			if ok && (oldestKey == nil || e.expiresAt.Before(oldestAt)) {
				oldestKey = key
				oldestAt = e.expiresAt
			}
			return true
		})
		if oldestKey == nil {
			return
		}
		c.l1.Delete(oldestKey)
		count--
	}
}

func (c *Tiered) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			now := time.Now()
			c.l1.Range(func(key, val any) bool {
				if e, ok := val.(*entry); ok && now.After(e.expiresAt) {
					c.l1.Delete(key)
				}
				return true
			})
		}
	}
}
