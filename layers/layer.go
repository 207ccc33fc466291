// Package layers defines what the renderer draws: one base tile layer and
// up to two pin overlays, plus the flag that marks the scene stale.
package layers

import (
	"image"
	"image/color"

	"github.com/Nxllpointer/ziplocator/tiles"
	"github.com/Nxllpointer/ziplocator/view"
)

// Layer is either *BaseTileLayer or PinOverlay.
type Layer interface {
	isLayer()
}

type PinKind int

const (
	Prediction PinKind = iota
	Dataset
)

func (k PinKind) String() string {
	switch k {
	case Prediction:
		return "prediction"
	case Dataset:
		return "dataset"
	}
	return "unknown"
}

func (k PinKind) Color() color.NRGBA {
	if k == Dataset {
		return color.NRGBA{R: 0x1E, G: 0x5A, B: 0xFF, A: 0xFF}
	}
	return color.NRGBA{R: 0xFF, A: 0xFF}
}

type PinOverlay struct {
	Location view.LatLng
	Kind     PinKind
}

func (PinOverlay) isLayer() {}

// TileImage is a tile ready to be composited.
type TileImage struct {
	Tile  tiles.Tile
	Image image.Image
}

// BaseTileLayer is the raster map underneath the pins.
type BaseTileLayer struct {
	source  tiles.Provider
	maxZoom int
	visible []TileImage
}

// NewBaseTileLayer draws tiles from source. source must not block on the
// network; see tiles.CombinedTileProvider.
func NewBaseTileLayer(source tiles.Provider, maxZoom int) *BaseTileLayer {
	return &BaseTileLayer{source: source, maxZoom: maxZoom}
}

func (*BaseTileLayer) isLayer() {}

// Prepare collects the tiles covering v. Tiles the source cannot supply
// yet are skipped; the source raises the redraw flag when they arrive.
func (l *BaseTileLayer) Prepare(v view.View) {
	zoom := tiles.ZoomForResolution(v.Resolution(), l.maxZoom)
	visible := tiles.VisibleTiles(v.Bound(), zoom)

	l.visible = l.visible[:0]
	for _, t := range visible {
		img, err := l.source.GetTile(t)
		if err != nil || img == nil {
			continue
		}
		l.visible = append(l.visible, TileImage{Tile: t, Image: img})
	}
}

// Tiles returns the result of the last Prepare.
func (l *BaseTileLayer) Tiles() []TileImage { return l.visible }
