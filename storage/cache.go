package storage

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const cacheKeyPrefix = "swr:"

// Fetcher loads the authoritative value for a key.
type Fetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, key string) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, key string) ([]byte, error) {
	return f(ctx, key)
}

// Cache is a keyed read-through cache backed by Redis. Every subscriber of a
// key observes the value fetched after an invalidation.
type Cache struct {
	base   Fetcher
	redis  *redis.Client
	ttl    time.Duration
	logger *log.Logger

	mu   sync.Mutex
	subs map[string]map[chan []byte]struct{}
}

// NewCache creates a cache in front of base. Values are only memoized in
// Redis: with a nil client or a zero ttl every Fetch goes to base, while
// Invalidate still refetches and notifies subscribers.
func NewCache(base Fetcher, client *redis.Client, ttl time.Duration, logger *log.Logger) *Cache {
	if base == nil {
		panic("storage.NewCache: base fetcher is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	return &Cache{
		base:   base,
		redis:  client,
		ttl:    ttl,
		logger: logger,
		subs:   make(map[string]map[chan []byte]struct{}),
	}
}

// Fetch returns the cached value for key, loading it from the base fetcher on
// a miss.
func (c *Cache) Fetch(ctx context.Context, key string) ([]byte, error) {
	if data, ok := c.load(ctx, key); ok {
		return data, nil
	}
	return c.refresh(ctx, key)
}

// Invalidate drops the cached value for key and fetches it again. Subscribers
// of key receive the new value.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	c.Evict(ctx, key)
	data, err := c.refresh(ctx, key)
	if err != nil {
		return err
	}
	c.publish(key, data)
	return nil
}

// Evict removes the given keys without refetching them.
func (c *Cache) Evict(ctx context.Context, keys ...string) {
	if c.redis == nil || len(keys) == 0 {
		return
	}
	stored := make([]string, len(keys))
	for i, k := range keys {
		stored[i] = storedKey(k)
	}
	if err := c.redis.Del(ctx, stored...).Err(); err != nil {
		c.logger.WithError(err).WithField("keys", keys).Warn("cache evict failed")
	}
}

// Subscribe returns a channel receiving every value refetched for key. The
// channel holds only the latest value; call cancel to stop receiving.
func (c *Cache) Subscribe(key string) (<-chan []byte, func()) {
	ch := make(chan []byte, 1)
	c.mu.Lock()
	set, ok := c.subs[key]
	if !ok {
		set = make(map[chan []byte]struct{})
		c.subs[key] = set
	}
	set[ch] = struct{}{}
	c.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			delete(c.subs[key], ch)
			if len(c.subs[key]) == 0 {
				delete(c.subs, key)
			}
			close(ch)
		})
	}
	return ch, cancel
}

func (c *Cache) publish(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for ch := range c.subs[key] {
		select {
		case <-ch:
		default:
		}
		ch <- data
	}
}

func (c *Cache) refresh(ctx context.Context, key string) ([]byte, error) {
	data, err := c.base.Fetch(ctx, key)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, data)
	return data, nil
}

func (c *Cache) load(ctx context.Context, key string) ([]byte, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, storedKey(key)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// On redis errors fall back to the base fetcher without failing.
			c.logger.WithError(err).WithField("key", key).Debug("cache read failed")
			_ = c.redis.Del(ctx, storedKey(key)).Err()
		}
		return nil, false
	}
	return data, true
}

func (c *Cache) store(ctx context.Context, key string, data []byte) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	if err := c.redis.Set(ctx, storedKey(key), data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("key", key).Warn("cache write failed")
	}
}

func storedKey(key string) string {
	return cacheKeyPrefix + key
}
