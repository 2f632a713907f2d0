package apiclient

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultCacheSize = 256
	defaultCacheTTL  = 30 * time.Second
	keySep           = "\x1f"
)

// Key identifies a cached query, e.g. {"rfps", id, "vendors"}.
type Key []string

func (k Key) String() string {
	return strings.Join(k, keySep)
}

// hasPrefix reports whether encoded key s starts with all parts of p.
func hasPrefix(s string, p Key) bool {
	ps := p.String()
	return s == ps || strings.HasPrefix(s, ps+keySep)
}

// Cache stores successful query results. Invalidate drops every key under a
// prefix, so {"rfps"} also clears {"rfps", id}.
type Cache struct {
	lru *expirable.LRU[string, any]
}

func NewCache(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{lru: expirable.NewLRU[string, any](size, nil, ttl)}
}

func (c *Cache) Get(k Key) (any, bool) {
	return c.lru.Get(k.String())
}

func (c *Cache) Set(k Key, v any) {
	c.lru.Add(k.String(), v)
}

func (c *Cache) Invalidate(prefixes ...Key) {
	for _, s := range c.lru.Keys() {
		for _, p := range prefixes {
			if hasPrefix(s, p) {
				c.lru.Remove(s)
				break
			}
		}
	}
}

func (c *Cache) Len() int {
	return c.lru.Len()
}

func (c *Cache) Purge() {
	c.lru.Purge()
}
