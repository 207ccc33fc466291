package ui

import (
	"image"
	"image/color"
	"sync"

	"gioui.org/app"
	"gioui.org/font/gofont"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	"gioui.org/widget"
	"gioui.org/widget/material"
	"github.com/Nxllpointer/ziplocator/layers"
	"github.com/Nxllpointer/ziplocator/mapworker"
)

var (
	danger     = color.NRGBA{R: 0xD3, G: 0x2F, B: 0x2F, A: 0xFF}
	boxBg      = color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xE6}
	borderGrey = color.NRGBA{R: 0x9E, G: 0x9E, B: 0x9E, A: 0xFF}
)

// Window lays out State and feeds it input. Layout runs on the window's
// event goroutine; Deliver may be called from any goroutine.
type Window struct {
	state *State
	theme *material.Theme

	zip         widget.Editor
	predictBtn  widget.Clickable
	clearBtn    widget.Clickable
	attribution widget.Clickable

	mu         sync.Mutex
	next       *mapworker.Frame
	invalidate func()
}

func NewWindow(state *State) *Window {
	th := material.NewTheme()
	th.Shaper = text.NewShaper(text.WithCollection(gofont.Collection()))
	win := &Window{state: state, theme: th, invalidate: func() {}}
	win.zip.SingleLine = true
	win.zip.Submit = true
	return win
}

// Deliver hands over a frame from the map worker. Only the newest
// undisplayed frame is kept.
func (win *Window) Deliver(f mapworker.Frame) {
	win.mu.Lock()
	win.next = &f
	invalidate := win.invalidate
	win.mu.Unlock()
	invalidate()
}

func (win *Window) takeFrame() (mapworker.Frame, bool) {
	win.mu.Lock()
	defer win.mu.Unlock()
	if win.next == nil {
		return mapworker.Frame{}, false
	}
	f := *win.next
	win.next = nil
	return f, true
}

// Run processes window events until the window is closed.
func (win *Window) Run(w *app.Window) error {
	win.mu.Lock()
	win.invalidate = w.Invalidate
	win.mu.Unlock()

	var ops op.Ops
	for {
		switch e := w.Event().(type) {
		case app.DestroyEvent:
			return e.Err
		case app.FrameEvent:
			gtx := app.NewContext(&ops, e)
			win.Layout(gtx)
			e.Frame(gtx.Ops)
		}
	}
}

func (win *Window) update(gtx layout.Context) {
	if f, ok := win.takeFrame(); ok {
		win.state.Update(UpdateMapFrame{Frame: f})
	}
	for {
		ev, ok := win.zip.Update(gtx)
		if !ok {
			break
		}
		switch ev.(type) {
		case widget.ChangeEvent:
			win.state.Update(ZipCodeChanged{Text: win.zip.Text()})
		case widget.SubmitEvent:
			win.state.Update(RunPrediction{})
		}
	}
	if win.predictBtn.Clicked(gtx) {
		win.state.Update(RunPrediction{})
	}
	if win.clearBtn.Clicked(gtx) {
		win.state.Update(ClearPrediction{})
	}
	if win.attribution.Clicked(gtx) {
		win.state.Update(OpenLink{URL: FixTheMapURL})
	}
	if mv := win.state.MapView(); mv != nil {
		if ll, ok := mv.Update(gtx); ok {
			win.state.Update(LocationPicked{At: ll})
		}
	}
	// A picked location rewrites the input.
	if win.zip.Text() != win.state.ZipCode() {
		win.zip.SetText(win.state.ZipCode())
	}
}

func (win *Window) Layout(gtx layout.Context) layout.Dimensions {
	win.update(gtx)
	return layout.Flex{Axis: layout.Vertical}.Layout(gtx,
		layout.Rigid(win.layoutControls),
		layout.Flexed(1, win.layoutMap),
	)
}

func (win *Window) layoutControls(gtx layout.Context) layout.Dimensions {
	th := win.theme
	return layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Flex{Alignment: layout.Middle}.Layout(gtx,
			layout.Rigid(func(gtx layout.Context) layout.Dimensions {
				border := widget.Border{Color: borderGrey, Width: unit.Dp(1), CornerRadius: unit.Dp(4)}
				if !win.state.ZipValid() {
					border.Color = danger
				}
				gtx.Constraints.Min.X = gtx.Dp(unit.Dp(200))
				gtx.Constraints.Max.X = gtx.Constraints.Min.X
				return border.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
					return layout.UniformInset(unit.Dp(8)).Layout(gtx,
						material.Editor(th, &win.zip, "Enter zip code...").Layout)
				})
			}),
			layout.Rigid(layout.Spacer{Width: unit.Dp(10)}.Layout),
			layout.Rigid(material.Button(th, &win.predictBtn, "Predict!").Layout),
			layout.Rigid(layout.Spacer{Width: unit.Dp(10)}.Layout),
			layout.Rigid(material.Button(th, &win.clearBtn, "Clear").Layout),
		)
	})
}

func (win *Window) layoutMap(gtx layout.Context) layout.Dimensions {
	mv := win.state.MapView()
	if mv == nil {
		return layout.Dimensions{Size: gtx.Constraints.Max}
	}
	return layout.Stack{}.Layout(gtx,
		layout.Expanded(mv.Layout),
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			if !win.state.LegendVisible() {
				return layout.Dimensions{}
			}
			return layout.NE.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				return layout.UniformInset(unit.Dp(5)).Layout(gtx, win.layoutLegend)
			})
		}),
		layout.Expanded(func(gtx layout.Context) layout.Dimensions {
			return layout.SE.Layout(gtx, win.layoutAttribution)
		}),
	)
}

func (win *Window) layoutLegend(gtx layout.Context) layout.Dimensions {
	var rows []layout.FlexChild
	for _, kind := range []layers.PinKind{layers.Prediction, layers.Dataset} {
		if kind == layers.Dataset && win.state.DatasetPin() == nil {
			continue
		}
		label := material.Body1(win.theme, "ʘ "+legendName(kind))
		label.Color = kind.Color()
		rows = append(rows, layout.Rigid(label.Layout))
	}
	return layout.Background{}.Layout(gtx, roundedFill(boxBg), func(gtx layout.Context) layout.Dimensions {
		return layout.UniformInset(unit.Dp(10)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			return layout.Flex{Axis: layout.Vertical}.Layout(gtx, rows...)
		})
	})
}

func legendName(k layers.PinKind) string {
	if k == layers.Dataset {
		return "Dataset"
	}
	return "Prediction"
}

func (win *Window) layoutAttribution(gtx layout.Context) layout.Dimensions {
	return material.Clickable(gtx, &win.attribution, func(gtx layout.Context) layout.Dimensions {
		return layout.Background{}.Layout(gtx, roundedFill(boxBg), func(gtx layout.Context) layout.Dimensions {
			return layout.UniformInset(unit.Dp(4)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				label := material.Caption(win.theme, "Data from OpenStreetMap")
				label.Color = color.NRGBA{A: 0xFF}
				return label.Layout(gtx)
			})
		})
	})
}

func roundedFill(c color.NRGBA) layout.Widget {
	return func(gtx layout.Context) layout.Dimensions {
		rect := image.Rectangle{Max: gtx.Constraints.Min}
		defer clip.UniformRRect(rect, gtx.Dp(unit.Dp(4))).Push(gtx.Ops).Pop()
		paint.Fill(gtx.Ops, c)
		return layout.Dimensions{Size: rect.Max}
	}
}
