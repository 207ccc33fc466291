package layers

import "github.com/Nxllpointer/ziplocator/view"

// Set is the ordered layer list: base first, then prediction, then
// dataset pin.
type Set struct {
	base       *BaseTileLayer
	prediction *PinOverlay
	dataset    *PinOverlay
}

// NewSet builds a set over base; base may be nil.
func NewSet(base *BaseTileLayer) *Set {
	return &Set{base: base}
}

func (s *Set) Base() *BaseTileLayer { return s.base }

// SetOverlays replaces both pins at once. A nil location removes that pin.
// It reports whether anything changed.
func (s *Set) SetOverlays(prediction, dataset *view.LatLng) bool {
	p := pin(prediction, Prediction)
	d := pin(dataset, Dataset)
	changed := !samePin(s.prediction, p) || !samePin(s.dataset, d)
	s.prediction, s.dataset = p, d
	return changed
}

func (s *Set) Overlays() []PinOverlay {
	var out []PinOverlay
	if s.prediction != nil {
		out = append(out, *s.prediction)
	}
	if s.dataset != nil {
		out = append(out, *s.dataset)
	}
	return out
}

func (s *Set) Layers() []Layer {
	out := make([]Layer, 0, 3)
	if s.base != nil {
		out = append(out, s.base)
	}
	for _, o := range s.Overlays() {
		out = append(out, o)
	}
	return out
}

func pin(ll *view.LatLng, kind PinKind) *PinOverlay {
	if ll == nil {
		return nil
	}
	return &PinOverlay{Location: *ll, Kind: kind}
}

func samePin(a, b *PinOverlay) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
