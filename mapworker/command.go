package mapworker

import "github.com/Nxllpointer/ziplocator/view"

// Command is one of Resize, Zoom, Pan, SetOverlays or QueryLocation.
type Command interface {
	kind() string
}

// Resize asks for a new viewport size. The worker rounds it up to the
// renderer's row alignment.
type Resize struct {
	Size view.Size
}

// Zoom multiplies the resolution. Values above 1 zoom out.
type Zoom struct {
	Multiplier float64
}

// Pan moves the map so the point under From ends up under To.
type Pan struct {
	From, To view.Point
}

// SetOverlays replaces both pins. A nil location removes the pin.
type SetOverlays struct {
	Prediction *view.LatLng
	Dataset    *view.LatLng
}

// QueryLocation resolves Pixel against the view current when the command
// is processed. Reply receives at most one value and is never closed; no
// value is sent when the pixel is off the map.
type QueryLocation struct {
	Pixel view.Point
	Reply chan<- view.LatLng
}

// NewQuery builds a QueryLocation with a fresh one-shot reply channel.
func NewQuery(p view.Point) (QueryLocation, <-chan view.LatLng) {
	reply := make(chan view.LatLng, 1)
	return QueryLocation{Pixel: p, Reply: reply}, reply
}

func (Resize) kind() string        { return "resize" }
func (Zoom) kind() string          { return "zoom" }
func (Pan) kind() string           { return "pan" }
func (SetOverlays) kind() string   { return "set_overlays" }
func (QueryLocation) kind() string { return "query_location" }

// TrySend enqueues cmd without blocking and reports whether it was
// accepted.
func TrySend(commands chan<- Command, cmd Command) bool {
	select {
	case commands <- cmd:
		return true
	default:
		return false
	}
}
