package fetchers

import (
	"encoding/json"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	DevelopmentCacheTTL = 300 * time.Second
	ProductionCacheTTL  = 86400 * time.Second
)

// ResponseCache keeps decoded upstream responses for a revalidation window. A zero
// or negative ttl disables caching. Cached values are shared between callers and
// must be treated as read-only.
type ResponseCache struct {
	cache *gocache.Cache
}

func NewResponseCache(ttl time.Duration) *ResponseCache {
	if ttl <= 0 {
		return &ResponseCache{}
	}

	cleanupInterval := ttl
	if cleanupInterval < time.Minute {
		cleanupInterval = time.Minute
	}

	return &ResponseCache{
		cache: gocache.New(ttl, cleanupInterval),
	}
}

func CacheTTL(developmentMode bool) time.Duration {
	if developmentMode {
		return DevelopmentCacheTTL
	}
	return ProductionCacheTTL
}

func (c *ResponseCache) Key(source string, query string, variables map[string]interface{}) string {
	vars, err := json.Marshal(variables)
	if err != nil {
		vars = []byte(fmt.Sprint(variables))
	}
	return fmt.Sprintf("%s|%s|%s", source, query, vars)
}

func (c *ResponseCache) Get(key string) (interface{}, bool) {
	if c == nil || c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

func (c *ResponseCache) Set(key string, value interface{}) {
	if c == nil || c.cache == nil {
		return
	}
	c.cache.Set(key, value, gocache.DefaultExpiration)
}

func (c *ResponseCache) Flush() {
	if c == nil || c.cache == nil {
		return
	}
	c.cache.Flush()
}
