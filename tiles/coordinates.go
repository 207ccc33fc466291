package tiles

import (
	"fmt"
	"math"

	"github.com/Nxllpointer/ziplocator/view"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/maptile"
)

const (
	TileSize = 256
	// MaxZoom is the deepest level the tile servers are asked for.
	MaxZoom = 18
)

// TopResolution is the resolution of the single level-0 tile.
const TopResolution = 2 * view.Extent / TileSize

// Tile represents a map tile coordinates
type Tile struct {
	X, Y, Zoom int
}

// Key returns a unique string key for a tile
func (t Tile) Key() string {
	return fmt.Sprintf("%d/%d/%d", t.Zoom, t.X, t.Y)
}

func (t Tile) MapTile() maptile.Tile {
	return maptile.New(uint32(t.X), uint32(t.Y), maptile.Zoom(t.Zoom))
}

// Valid reports whether the indices exist at the tile's zoom level.
func (t Tile) Valid() bool {
	n := 1 << t.Zoom
	return t.Zoom >= 0 && t.Zoom <= MaxZoom && t.X >= 0 && t.Y >= 0 && t.X < n && t.Y < n
}

// LatLngToTile returns the tile containing ll.
func LatLngToTile(ll view.LatLng, zoom int) Tile {
	mt := maptile.At(orb.Point{ll.Lng, ll.Lat}, maptile.Zoom(zoom))
	return Tile{X: int(mt.X), Y: int(mt.Y), Zoom: zoom}
}

// TileToLatLng returns the geographic centre of a tile.
func TileToLatLng(t Tile) view.LatLng {
	c := t.MapTile().Center()
	return view.LatLng{Lat: c[1], Lng: c[0]}
}

// Resolution is the metres per pixel of tiles at zoom.
func Resolution(zoom int) float64 {
	return TopResolution / math.Pow(2, float64(zoom))
}

// ZoomForResolution picks the tile level whose resolution is closest to
// res, clamped to [0, maxZoom].
func ZoomForResolution(res float64, maxZoom int) int {
	z := int(math.Round(math.Log2(TopResolution / res)))
	return max(0, min(z, maxZoom))
}

// ProjectedBound is the tile's extent in Web-Mercator metres.
func ProjectedBound(t Tile) orb.Bound {
	span := 2 * view.Extent / math.Pow(2, float64(t.Zoom))
	minX := -view.Extent + float64(t.X)*span
	maxY := view.Extent - float64(t.Y)*span
	return orb.Bound{Min: orb.Point{minX, maxY - span}, Max: orb.Point{minX + span, maxY}}
}

// VisibleTiles lists the tiles at zoom covering the projected bound b.
// Indices outside the world are skipped.
func VisibleTiles(b orb.Bound, zoom int) []Tile {
	span := 2 * view.Extent / math.Pow(2, float64(zoom))
	x0 := int(math.Floor((b.Min[0] + view.Extent) / span))
	x1 := int(math.Ceil((b.Max[0]+view.Extent)/span)) - 1
	y0 := int(math.Floor((view.Extent - b.Max[1]) / span))
	y1 := int(math.Ceil((view.Extent-b.Min[1])/span)) - 1

	n := 1 << zoom
	x0, y0 = max(0, x0), max(0, y0)
	x1, y1 = min(n-1, x1), min(n-1, y1)
	if x1 < x0 || y1 < y0 {
		return nil
	}

	visible := make([]Tile, 0, (x1-x0+1)*(y1-y0+1))
	for x := x0; x <= x1; x++ {
		for y := y0; y <= y1; y++ {
			visible = append(visible, Tile{X: x, Y: y, Zoom: zoom})
		}
	}
	return visible
}
