package tiles

import (
	"context"
	"fmt"
	"image"
	"sync"

	"github.com/Nxllpointer/ziplocator/internal/logger"
	"github.com/Nxllpointer/ziplocator/tiles/worker"
)

// CombinedTileProvider never blocks on the network. It answers from the
// primary's cache when it can, otherwise returns the fallback tile and
// loads the primary one in the background, calling the onLoad callback
// once it is available.
type CombinedTileProvider struct {
	primary  *TileManager
	fallback Provider
	pool     *worker.Pool

	loading   map[string]bool
	loadingMu sync.Mutex

	onLoadMu sync.RWMutex
	onLoad   func()
}

func NewCombinedTileProvider(primary *TileManager, fallback Provider, pool *worker.Pool) *CombinedTileProvider {
	return &CombinedTileProvider{
		primary:  primary,
		fallback: fallback,
		pool:     pool,
		loading:  make(map[string]bool),
	}
}

func (p *CombinedTileProvider) SetOnLoadCallback(callback func()) {
	p.onLoadMu.Lock()
	p.onLoad = callback
	p.onLoadMu.Unlock()
}

func (p *CombinedTileProvider) GetTile(tile Tile) (image.Image, error) {
	if img, ok := p.primary.Cached(tile); ok {
		return img, nil
	}
	p.load(tile)

	img, err := p.fallback.GetTile(tile)
	if err != nil {
		return nil, fmt.Errorf("tiles: fallback for %s: %w", tile.Key(), err)
	}
	return img, nil
}

// Loading reports how many background loads are in flight.
func (p *CombinedTileProvider) Loading() int {
	p.loadingMu.Lock()
	defer p.loadingMu.Unlock()
	return len(p.loading)
}

func (p *CombinedTileProvider) load(tile Tile) {
	key := tile.Key()

	p.loadingMu.Lock()
	if p.loading[key] {
		p.loadingMu.Unlock()
		return
	}
	p.loading[key] = true
	p.loadingMu.Unlock()

	submitted := p.pool.Submit(worker.Task{
		Work: func(ctx context.Context) error {
			_, err := p.primary.GetTile(tile)
			return err
		},
		Done: func(err error) {
			p.loadingMu.Lock()
			delete(p.loading, key)
			p.loadingMu.Unlock()

			if err != nil {
				logger.L().Warn("tile_load_error", "tile", key, "err", err)
				return
			}
			p.onLoadMu.RLock()
			cb := p.onLoad
			p.onLoadMu.RUnlock()
			if cb != nil {
				cb()
			}
		},
	})
	if !submitted {
		// Queue full; the next Prepare asks again.
		p.loadingMu.Lock()
		delete(p.loading, key)
		p.loadingMu.Unlock()
	}
}
