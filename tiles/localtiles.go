package tiles

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var (
	placeholderBackground = color.RGBA{226, 232, 240, 255}
	placeholderBorder     = color.RGBA{190, 198, 210, 255}
	placeholderText       = color.RGBA{120, 128, 140, 255}
)

// PlaceholderProvider draws a neutral tile labelled with its index. It is
// shown while the real tile is still downloading.
type PlaceholderProvider struct{}

func NewPlaceholderProvider() *PlaceholderProvider {
	return &PlaceholderProvider{}
}

func (p *PlaceholderProvider) GetTile(tile Tile) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, TileSize, TileSize))
	draw.Draw(img, img.Bounds(), &image.Uniform{placeholderBackground}, image.Point{}, draw.Src)

	borders := []image.Rectangle{
		image.Rect(0, 0, TileSize, 1),
		image.Rect(0, TileSize-1, TileSize, TileSize),
		image.Rect(0, 0, 1, TileSize),
		image.Rect(TileSize-1, 0, TileSize, TileSize),
	}
	for _, r := range borders {
		draw.Draw(img, r, &image.Uniform{placeholderBorder}, image.Point{}, draw.Src)
	}

	drawLabel(img, tile.Key())
	return img, nil
}

func drawLabel(img *image.RGBA, text string) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(placeholderText),
		Face: face,
	}
	width := d.MeasureString(text).Round()
	height := face.Metrics().Height.Round()
	d.Dot = fixed.Point26_6{
		X: fixed.I((TileSize - width) / 2),
		Y: fixed.I((TileSize + height) / 2),
	}
	d.DrawString(text)
}
