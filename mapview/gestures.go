package mapview

import (
	"time"

	"github.com/Nxllpointer/ziplocator/internal/metrics"
	"github.com/Nxllpointer/ziplocator/mapworker"
	"github.com/Nxllpointer/ziplocator/view"
)

// Button is the pointer button of a press.
type Button int

const (
	Primary Button = iota
	Secondary
)

// Key is a keyboard shortcut understood by the map.
type Key int

const (
	KeyLeft Key = iota
	KeyRight
	KeyUp
	KeyDown
	KeyZoomIn
	KeyZoomOut
)

const (
	zoomStep = 0.1
	keyPanPx = 64

	// QueryTimeout bounds how long an unanswered query is polled. The
	// worker answers within one loop iteration unless the pixel is off
	// the map, in which case it never answers.
	QueryTimeout = 500 * time.Millisecond
)

// Gestures turns input into map commands. It holds no view state; the
// worker owns the camera. All sends are non-blocking and a full queue
// drops the gesture.
type Gestures struct {
	commands chan<- mapworker.Command

	size     view.Size
	dragging bool
	last     view.Point
	pending  <-chan view.LatLng
	deadline time.Time

	now func() time.Time
}

func NewGestures(commands chan<- mapworker.Command) *Gestures {
	return &Gestures{commands: commands, now: time.Now}
}

// Layout records the widget size and asks for a resize when it changed.
func (g *Gestures) Layout(size view.Size) {
	if size == g.size || size.W <= 0 || size.H <= 0 {
		return
	}
	if g.send(mapworker.Resize{Size: size}) {
		g.size = size
	}
}

func (g *Gestures) Size() view.Size { return g.size }

func (g *Gestures) inside(p view.Point) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.size.W && p.Y < g.size.H
}

// Press starts a drag (primary) or a location query (secondary). Presses
// outside the widget are ignored.
func (g *Gestures) Press(p view.Point, b Button) {
	if !g.inside(p) {
		return
	}
	switch b {
	case Primary:
		g.dragging = true
		g.last = p
	case Secondary:
		q, reply := mapworker.NewQuery(p)
		if g.send(q) {
			g.pending = reply
			g.deadline = g.now().Add(QueryTimeout)
		}
	}
}

func (g *Gestures) Release() { g.dragging = false }

// Move pans by the distance since the previous drag position.
func (g *Gestures) Move(p view.Point) {
	if !g.dragging || p == g.last {
		return
	}
	g.send(mapworker.Pan{From: g.last, To: p})
	g.last = p
}

// Scroll zooms out for positive dy and in for negative dy.
func (g *Gestures) Scroll(dy float64) {
	switch {
	case dy > 0:
		g.send(mapworker.Zoom{Multiplier: 1 + zoomStep})
	case dy < 0:
		g.send(mapworker.Zoom{Multiplier: 1 - zoomStep})
	}
}

func (g *Gestures) Key(k Key) {
	c := view.Point{X: g.size.W / 2, Y: g.size.H / 2}
	switch k {
	case KeyLeft:
		g.send(mapworker.Pan{From: c, To: c.Add(view.Point{X: keyPanPx})})
	case KeyRight:
		g.send(mapworker.Pan{From: c, To: c.Add(view.Point{X: -keyPanPx})})
	case KeyUp:
		g.send(mapworker.Pan{From: c, To: c.Add(view.Point{Y: keyPanPx})})
	case KeyDown:
		g.send(mapworker.Pan{From: c, To: c.Add(view.Point{Y: -keyPanPx})})
	case KeyZoomIn:
		g.Scroll(-1)
	case KeyZoomOut:
		g.Scroll(1)
	}
}

// Poll returns the answer to the last query once it has arrived. A query
// still unanswered after QueryTimeout is given up: its pixel was off the
// map.
func (g *Gestures) Poll() (view.LatLng, bool) {
	if g.pending == nil {
		return view.LatLng{}, false
	}
	select {
	case ll := <-g.pending:
		g.pending = nil
		return ll, true
	default:
	}
	if !g.now().Before(g.deadline) {
		g.pending = nil
	}
	return view.LatLng{}, false
}

func (g *Gestures) Pending() bool  { return g.pending != nil }
func (g *Gestures) Dragging() bool { return g.dragging }

func (g *Gestures) send(cmd mapworker.Command) bool {
	if mapworker.TrySend(g.commands, cmd) {
		return true
	}
	metrics.GesturesDroppedTotal.Inc()
	return false
}
