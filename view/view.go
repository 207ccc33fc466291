// Package view holds the map camera: centre, resolution and pixel size,
// with projection between screen pixels and geographic coordinates.
//
// Coordinates are projected with spherical Web-Mercator (EPSG:3857).
// Resolution is Mercator metres per screen pixel.
package view

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// Extent is half the width of the Web-Mercator plane in metres.
const Extent = 20037508.342789244

// LatLng is a WGS84 coordinate in degrees.
type LatLng struct {
	Lat, Lng float64
}

// Size is a pixel size.
type Size struct {
	W, H float64
}

// Point is a pixel position, origin top-left, y growing downwards.
type Point struct {
	X, Y float64
}

func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Projected returns ll in Web-Mercator metres.
func (ll LatLng) Projected() orb.Point {
	return project.WGS84.ToMercator(orb.Point{ll.Lng, ll.Lat})
}

// Unproject converts Web-Mercator metres back to WGS84.
func Unproject(p orb.Point) LatLng {
	g := project.Mercator.ToWGS84(p)
	return LatLng{Lat: g[1], Lng: g[0]}
}

// View is an immutable camera. The With* methods return modified copies.
type View struct {
	center     orb.Point
	resolution float64
	size       Size
}

func New(center LatLng, resolution float64) View {
	return View{center: center.Projected(), resolution: resolution}
}

func (v View) Center() LatLng             { return Unproject(v.center) }
func (v View) ProjectedCenter() orb.Point { return v.center }
func (v View) Resolution() float64        { return v.resolution }
func (v View) Size() Size                 { return v.size }

func (v View) WithSize(s Size) View {
	v.size = s
	return v
}

func (v View) WithResolution(r float64) View {
	v.resolution = r
	return v
}

func (v View) WithCenter(ll LatLng) View {
	v.center = ll.Projected()
	return v
}

// ToProjected maps a pixel to Web-Mercator metres. The result may lie
// outside the projectable plane.
func (v View) ToProjected(p Point) orb.Point {
	return orb.Point{
		v.center[0] + (p.X-v.size.W/2)*v.resolution,
		v.center[1] - (p.Y-v.size.H/2)*v.resolution,
	}
}

// FromProjected maps Web-Mercator metres to a pixel.
func (v View) FromProjected(m orb.Point) Point {
	return Point{
		X: v.size.W/2 + (m[0]-v.center[0])/v.resolution,
		Y: v.size.H/2 - (m[1]-v.center[1])/v.resolution,
	}
}

// PixelToLatLng reverse-geocodes a pixel. It reports false when the pixel
// falls outside the Web-Mercator plane, e.g. beyond the poles when zoomed out.
func (v View) PixelToLatLng(p Point) (LatLng, bool) {
	m := v.ToProjected(p)
	if math.Abs(m[0]) > Extent || math.Abs(m[1]) > Extent || math.IsNaN(m[0]) || math.IsNaN(m[1]) {
		return LatLng{}, false
	}
	return Unproject(m), true
}

func (v View) LatLngToPixel(ll LatLng) Point {
	return v.FromProjected(ll.Projected())
}

// TranslateByPixels moves the view so that the point under from ends up
// under to. The shift is done in projected space, so it stays exact at
// any latitude.
func (v View) TranslateByPixels(from, to Point) View {
	a := v.ToProjected(from)
	b := v.ToProjected(to)
	v.center = orb.Point{v.center[0] + a[0] - b[0], v.center[1] + a[1] - b[1]}
	return v
}

// Bound is the projected rectangle covered by the view.
func (v View) Bound() orb.Bound {
	tl := v.ToProjected(Point{})
	br := v.ToProjected(Point{X: v.size.W, Y: v.size.H})
	return orb.Bound{Min: orb.Point{tl[0], br[1]}, Max: orb.Point{br[0], tl[1]}}
}

// Lerp interpolates centre and resolution linearly. The size is taken
// from b unchanged since a surface cannot be half resized.
func Lerp(a, b View, t float64) View {
	if t <= 0 {
		return a.WithSize(b.size)
	}
	if t >= 1 {
		return b
	}
	return View{
		center: orb.Point{
			a.center[0] + (b.center[0]-a.center[0])*t,
			a.center[1] + (b.center[1]-a.center[1])*t,
		},
		resolution: a.resolution + (b.resolution-a.resolution)*t,
		size:       b.size,
	}
}
