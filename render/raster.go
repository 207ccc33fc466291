// Package render rasterises a view and its layers into an RGBA surface.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/Nxllpointer/ziplocator/layers"
	"github.com/Nxllpointer/ziplocator/tiles"
	"github.com/Nxllpointer/ziplocator/view"
	"github.com/fogleman/gg"
	"github.com/paulmach/orb"
	xdraw "golang.org/x/image/draw"
)

// RowAlignment is the granularity of surface sizes. Readback buffers must
// have rows that are a multiple of it.
const RowAlignment = 256

var (
	ErrInvalidSize  = errors.New("render: invalid surface size")
	ErrSizeMismatch = errors.New("render: view size does not match surface")
	ErrNotRendered  = errors.New("render: nothing rendered yet")
)

// Align rounds length up to the next multiple of RowAlignment, never
// returning less than one row.
func Align(length float64) uint32 {
	if length <= 0 || math.IsNaN(length) {
		return RowAlignment
	}
	return uint32(math.Ceil(length/RowAlignment)) * RowAlignment
}

func AlignSize(s view.Size) view.Size {
	return view.Size{W: float64(Align(s.W)), H: float64(Align(s.H))}
}

var background = color.RGBA{170, 211, 223, 255}

const pinRadius = 7

// Raster is an offscreen renderer. Render and Image must not be called
// concurrently.
type Raster struct {
	surface  *image.RGBA
	size     view.Size
	rendered bool
}

func NewRaster(size view.Size) (*Raster, error) {
	r := &Raster{}
	if err := r.Resize(size); err != nil {
		return nil, err
	}
	return r, nil
}

// Resize replaces the surface. size must already be aligned.
func (r *Raster) Resize(size view.Size) error {
	w, h := int(size.W), int(size.H)
	if w <= 0 || h <= 0 || w%RowAlignment != 0 || h%RowAlignment != 0 || float64(w) != size.W || float64(h) != size.H {
		return fmt.Errorf("%w: %vx%v", ErrInvalidSize, size.W, size.H)
	}
	if r.surface != nil && r.size == size {
		return nil
	}
	r.surface = image.NewRGBA(image.Rect(0, 0, w, h))
	r.size = size
	r.rendered = false
	return nil
}

func (r *Raster) Size() view.Size { return r.size }

// Render draws ls in order over a plain background.
func (r *Raster) Render(v view.View, ls []layers.Layer) error {
	if r.surface == nil {
		return ErrNotRendered
	}
	if v.Size() != r.size {
		return fmt.Errorf("%w: view %vx%v, surface %vx%v", ErrSizeMismatch, v.Size().W, v.Size().H, r.size.W, r.size.H)
	}
	if !(v.Resolution() > 0) {
		return fmt.Errorf("render: invalid resolution %v", v.Resolution())
	}

	xdraw.Draw(r.surface, r.surface.Bounds(), &image.Uniform{background}, image.Point{}, xdraw.Src)

	dc := gg.NewContextForRGBA(r.surface)
	for _, l := range ls {
		switch l := l.(type) {
		case *layers.BaseTileLayer:
			r.drawTiles(v, l.Tiles())
		case layers.PinOverlay:
			drawPin(dc, v.LatLngToPixel(l.Location), l.Kind.Color())
		default:
			return fmt.Errorf("render: unknown layer %T", l)
		}
	}
	r.rendered = true
	return nil
}

func (r *Raster) drawTiles(v view.View, ts []layers.TileImage) {
	for _, t := range ts {
		b := tiles.ProjectedBound(t.Tile)
		tl := v.FromProjected(orb.Point{b.Min[0], b.Max[1]})
		br := v.FromProjected(orb.Point{b.Max[0], b.Min[1]})
		dr := image.Rect(
			int(math.Floor(tl.X)), int(math.Floor(tl.Y)),
			int(math.Ceil(br.X)), int(math.Ceil(br.Y)),
		)
		if !dr.Overlaps(r.surface.Bounds()) {
			continue
		}
		xdraw.ApproxBiLinear.Scale(r.surface, dr, t.Image, t.Image.Bounds(), xdraw.Over, nil)
	}
}

func drawPin(dc *gg.Context, p view.Point, c color.Color) {
	dc.DrawCircle(p.X, p.Y, pinRadius)
	dc.SetColor(c)
	dc.FillPreserve()
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(2)
	dc.Stroke()
	dc.DrawCircle(p.X, p.Y, 2)
	dc.SetRGB(1, 1, 1)
	dc.Fill()
}

// Image copies the last rendered surface out as tightly packed RGBA.
func (r *Raster) Image(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !r.rendered {
		return nil, ErrNotRendered
	}
	out := make([]byte, len(r.surface.Pix))
	copy(out, r.surface.Pix)
	return out, nil
}
