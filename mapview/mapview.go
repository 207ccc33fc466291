// Package mapview is the interactive map widget. It forwards input to the
// map worker as commands and paints whatever frame the worker produced
// last.
package mapview

import (
	"image/color"

	"gioui.org/io/event"
	"gioui.org/io/key"
	"gioui.org/io/pointer"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"github.com/Nxllpointer/ziplocator/mapworker"
	"github.com/Nxllpointer/ziplocator/view"
)

var placeholder = color.NRGBA{R: 0xE5, G: 0xE3, B: 0xDF, A: 0xFF}

type MapView struct {
	gestures *Gestures
	frame    paint.ImageOp
	hasFrame bool
}

func New(commands chan<- mapworker.Command) *MapView {
	return &MapView{gestures: NewGestures(commands)}
}

// SetFrame replaces the painted image. The frame's pixels are kept, not
// copied.
func (mv *MapView) SetFrame(f mapworker.Frame) {
	mv.frame = paint.NewImageOp(f.Image())
	mv.hasFrame = true
}

// Update processes pending input. It returns a location when a query
// started by a secondary click has been answered.
func (mv *MapView) Update(gtx layout.Context) (view.LatLng, bool) {
	tag := mv
	for {
		ev, ok := gtx.Event(pointer.Filter{
			Target:  tag,
			Kinds:   pointer.Press | pointer.Drag | pointer.Release | pointer.Cancel | pointer.Scroll,
			ScrollY: pointer.ScrollRange{Min: -100, Max: 100},
		})
		if !ok {
			break
		}
		x, ok := ev.(pointer.Event)
		if !ok {
			continue
		}
		p := view.Point{X: float64(x.Position.X), Y: float64(x.Position.Y)}
		switch x.Kind {
		case pointer.Press:
			switch {
			case x.Buttons.Contain(pointer.ButtonPrimary):
				mv.gestures.Press(p, Primary)
			case x.Buttons.Contain(pointer.ButtonSecondary):
				mv.gestures.Press(p, Secondary)
			}
		case pointer.Drag:
			mv.gestures.Move(p)
		case pointer.Release, pointer.Cancel:
			mv.gestures.Release()
		case pointer.Scroll:
			mv.gestures.Scroll(float64(x.Scroll.Y))
		}
	}

	for {
		ev, ok := gtx.Event(
			key.Filter{Name: key.NameLeftArrow},
			key.Filter{Name: key.NameRightArrow},
			key.Filter{Name: key.NameUpArrow},
			key.Filter{Name: key.NameDownArrow},
			key.Filter{Name: "+"},
			key.Filter{Name: "-"},
		)
		if !ok {
			break
		}
		e, ok := ev.(key.Event)
		if !ok || e.State != key.Press {
			continue
		}
		if k, ok := keyFor(e.Name); ok {
			mv.gestures.Key(k)
		}
	}

	ll, ok := mv.gestures.Poll()
	if mv.gestures.Pending() {
		// Poll again next frame until the answer or the timeout.
		gtx.Execute(op.InvalidateCmd{})
	}
	return ll, ok
}

func keyFor(name key.Name) (Key, bool) {
	switch name {
	case key.NameLeftArrow:
		return KeyLeft, true
	case key.NameRightArrow:
		return KeyRight, true
	case key.NameUpArrow:
		return KeyUp, true
	case key.NameDownArrow:
		return KeyDown, true
	case "+":
		return KeyZoomIn, true
	case "-":
		return KeyZoomOut, true
	}
	return 0, false
}

// Layout fills the available space. The frame is drawn at the top-left
// corner and clipped, since the worker renders at an aligned size.
func (mv *MapView) Layout(gtx layout.Context) layout.Dimensions {
	size := gtx.Constraints.Max
	mv.gestures.Layout(view.Size{W: float64(size.X), H: float64(size.Y)})

	defer clip.Rect{Max: size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, mv)

	if !mv.hasFrame {
		paint.Fill(gtx.Ops, placeholder)
		return layout.Dimensions{Size: size}
	}
	mv.frame.Add(gtx.Ops)
	paint.PaintOp{}.Add(gtx.Ops)

	return layout.Dimensions{Size: size}
}
