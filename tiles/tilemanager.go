package tiles

import (
	"image"

	"golang.org/x/sync/singleflight"
)

type Provider interface {
	GetTile(tile Tile) (image.Image, error)
}

// TileManager puts a Cache in front of a Provider. Concurrent requests
// for the same tile share one provider call.
type TileManager struct {
	cache    Cache
	provider Provider
	group    singleflight.Group
}

func NewTileManager(provider Provider, cache Cache) *TileManager {
	if cache == nil {
		cache = NewMemoryCache(0)
	}
	return &TileManager{
		cache:    cache,
		provider: provider,
	}
}

func (tm *TileManager) Cache() Cache {
	return tm.cache
}

// Cached returns the tile only if it is already in memory.
func (tm *TileManager) Cached(tile Tile) (image.Image, bool) {
	return tm.cache.Get(tile.Key())
}

func (tm *TileManager) GetTile(tile Tile) (image.Image, error) {
	key := tile.Key()
	if img, ok := tm.cache.Get(key); ok {
		return img, nil
	}

	v, err, _ := tm.group.Do(key, func() (interface{}, error) {
		img, err := tm.provider.GetTile(tile)
		if err != nil {
			return nil, err
		}
		tm.cache.Set(key, img)
		return img, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(image.Image), nil
}
