package crud

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"quill/domain"
)

// feedCacheSize caps how many resolved feed pages are kept around.
const feedCacheSize = 512

// feedCacheItem wraps a resolved feed with its expiry time.
type feedCacheItem struct {
	feed      *domain.Feed
	expiresAt time.Time
}

// feedCache is a short-TTL LRU in front of the feed resolver. It is an
// optimization only: entries expire after the TTL, and every cache key
// embeds the context's version token, so bumping a version orphans all
// of its cached pages at once. A TTL of zero disables caching entirely,
// the resolver then always computes fresh results.
type feedCache struct {
	ttl      time.Duration
	lruCache *lru.Cache[string, feedCacheItem]

	mu       sync.Mutex
	epoch    int64
	versions map[string]int64
}

func newFeedCache(ttl time.Duration) (*feedCache, error) {
	l, err := lru.New[string, feedCacheItem](feedCacheSize)
	if err != nil {
		return nil, err
	}
	return &feedCache{
		ttl:      ttl,
		lruCache: l,
		versions: make(map[string]int64),
	}, nil
}

// version returns the staleness token of a feed context key. It is the
// sum of the key's own counter and the global epoch, so it moves when
// either the context or the whole post set changes.
func (c *feedCache) version(key string) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[key] + c.epoch
}

// bump increments the counters of the given keys. With no keys it
// increments the global epoch instead, staling every context.
func (c *feedCache) bump(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(keys) == 0 {
		c.epoch++
		return
	}
	for _, key := range keys {
		c.versions[key]++
	}
}

func (c *feedCache) cacheKey(key string, page int) string {
	return fmt.Sprintf("%s:p%d:v%d", key, page, c.version(key))
}

// get returns the cached feed for a context key and page, if a fresh one exists.
func (c *feedCache) get(key string, page int) (*domain.Feed, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	item, ok := c.lruCache.Get(c.cacheKey(key, page))
	if !ok {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		c.lruCache.Remove(c.cacheKey(key, page))
		return nil, false
	}
	return item.feed, true
}

// set stores a resolved feed page under the context's current version.
func (c *feedCache) set(key string, page int, feed *domain.Feed) {
	if c.ttl <= 0 {
		return
	}
	c.lruCache.Add(c.cacheKey(key, page), feedCacheItem{
		feed:      feed,
		expiresAt: time.Now().Add(c.ttl),
	})
}
