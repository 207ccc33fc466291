package tiles

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Nxllpointer/ziplocator/internal/logger"
	"github.com/Nxllpointer/ziplocator/internal/metrics"
	"golang.org/x/time/rate"
)

// HTTPProvider fetches raster tiles from a {z}/{x}/{y} URL template.
// Requests are rate limited to respect the tile server usage policy.
type HTTPProvider struct {
	client    *http.Client
	template  string
	userAgent string
	limiter   *rate.Limiter
	store     BlobStore
	timeout   time.Duration
}

type HTTPOption func(*HTTPProvider)

func WithClient(c *http.Client) HTTPOption { return func(p *HTTPProvider) { p.client = c } }

// WithStore puts a second-level byte cache in front of the network.
func WithStore(s BlobStore) HTTPOption { return func(p *HTTPProvider) { p.store = s } }

func WithUserAgent(ua string) HTTPOption { return func(p *HTTPProvider) { p.userAgent = ua } }

// WithRate limits requests per second. Zero disables limiting.
func WithRate(perSec float64) HTTPOption {
	return func(p *HTTPProvider) {
		if perSec <= 0 {
			p.limiter = nil
			return
		}
		p.limiter = rate.NewLimiter(rate.Limit(perSec), 1)
	}
}

func NewHTTPProvider(template string, opts ...HTTPOption) *HTTPProvider {
	p := &HTTPProvider{
		client:    &http.Client{},
		template:  template,
		userAgent: "ziplocator/1.0",
		limiter:   rate.NewLimiter(2, 1),
		timeout:   10 * time.Second,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// URL returns the URL for downloading the map tile
func (p *HTTPProvider) URL(tile Tile) string {
	return strings.NewReplacer(
		"{z}", strconv.Itoa(tile.Zoom),
		"{x}", strconv.Itoa(tile.X),
		"{y}", strconv.Itoa(tile.Y),
	).Replace(p.template)
}

func (p *HTTPProvider) GetTile(tile Tile) (image.Image, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	return p.FetchTile(ctx, tile)
}

// FetchTile loads the tile from the blob store or the network.
func (p *HTTPProvider) FetchTile(ctx context.Context, tile Tile) (image.Image, error) {
	key := tile.Key()
	if p.store != nil {
		data, ok, err := p.store.Get(ctx, key)
		if err != nil {
			logger.L().Warn("tile_store_get_error", "tile", key, "err", err)
		} else if ok {
			if img, _, err := image.Decode(bytes.NewReader(data)); err == nil {
				metrics.TileFetchTotal.WithLabelValues("store").Inc()
				return img, nil
			}
		}
	}

	data, err := p.download(ctx, tile)
	if err != nil {
		metrics.TileFetchTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		metrics.TileFetchTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("tiles: decode %s: %w", key, err)
	}
	metrics.TileFetchTotal.WithLabelValues("network").Inc()

	if p.store != nil {
		if err := p.store.Put(ctx, key, data); err != nil {
			logger.L().Warn("tile_store_put_error", "tile", key, "err", err)
		}
	}
	return img, nil
}

func (p *HTTPProvider) download(ctx context.Context, tile Tile) ([]byte, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	url := p.URL(tile)
	logger.L().Debug("tile_request", "url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("tiles: request %s: %w", url, err)
	}
	req.Header.Set("User-Agent", p.userAgent)
	req.Header.Set("Accept", "image/png,image/*;q=0.8")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tiles: fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tiles: fetch %s: unexpected status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
