package tiles

import (
	"image"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Nxllpointer/ziplocator/internal/metrics"
)

// Cache holds decoded tile images keyed by Tile.Key.
type Cache interface {
	Get(key string) (image.Image, bool)
	Set(key string, img image.Image)
	Len() int
	Clear()
}

// MemoryCache is a bounded LRU image cache, safe for concurrent use.
type MemoryCache struct {
	lru *lru.Cache[string, image.Image]
}

func NewMemoryCache(capacity int) *MemoryCache {
	if capacity <= 0 {
		capacity = 256
	}
	// New only fails for a non-positive size.
	c, _ := lru.New[string, image.Image](capacity)
	return &MemoryCache{lru: c}
}

func (c *MemoryCache) Get(key string) (image.Image, bool) {
	img, ok := c.lru.Get(key)
	if !ok {
		metrics.TileCacheMissesTotal.Inc()
		return nil, false
	}
	metrics.TileCacheHitsTotal.Inc()
	return img, true
}

func (c *MemoryCache) Set(key string, img image.Image) {
	c.lru.Add(key, img)
}

func (c *MemoryCache) Len() int { return c.lru.Len() }

func (c *MemoryCache) Clear() { c.lru.Purge() }
