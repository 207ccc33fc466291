// Package mapworker runs the map render loop. The worker owns the view,
// the layer set and the renderer; the UI talks to it only through a
// command channel and a FrameChannel.
package mapworker

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Nxllpointer/ziplocator/internal/logger"
	"github.com/Nxllpointer/ziplocator/internal/metrics"
	"github.com/Nxllpointer/ziplocator/layers"
	"github.com/Nxllpointer/ziplocator/render"
	"github.com/Nxllpointer/ziplocator/tiles"
	"github.com/Nxllpointer/ziplocator/view"
)

// Renderer draws a view into an offscreen surface. Calls are sequential.
type Renderer interface {
	Resize(size view.Size) error
	Render(v view.View, ls []layers.Layer) error
	Image(ctx context.Context) ([]byte, error)
}

var defaultCenter = view.LatLng{Lat: 52.0, Lng: 0.0}

// DefaultView is the start-up camera: southern England at tile level 17,
// one alignment unit square.
func DefaultView() view.View {
	return view.New(defaultCenter, tiles.Resolution(17)).
		WithSize(view.Size{W: render.RowAlignment, H: render.RowAlignment})
}

type Worker struct {
	commands <-chan Command
	frames   *FrameChannel
	renderer Renderer
	layers   *layers.Set
	redraw   *layers.Flag
	animator *view.Animator

	interval   time.Duration
	transition time.Duration
	now        func() time.Time
	log        *slog.Logger
}

type Option func(*Worker)

// WithInterval sets the pause between loop iterations.
func WithInterval(d time.Duration) Option { return func(w *Worker) { w.interval = d } }

// WithTransition sets the duration of view transitions. Zero jumps.
func WithTransition(d time.Duration) Option { return func(w *Worker) { w.transition = d } }

func WithInitialView(v view.View) Option {
	return func(w *Worker) { w.animator = view.NewAnimator(v) }
}

func WithClock(now func() time.Time) Option { return func(w *Worker) { w.now = now } }

func WithLogger(l *slog.Logger) Option { return func(w *Worker) { w.log = l } }

// New wires a worker. redraw is shared with whatever loads tiles for the
// base layer in set.
func New(commands <-chan Command, frames *FrameChannel, renderer Renderer, set *layers.Set, redraw *layers.Flag, opts ...Option) *Worker {
	w := &Worker{
		commands: commands,
		frames:   frames,
		renderer: renderer,
		layers:   set,
		redraw:   redraw,
		animator: view.NewAnimator(DefaultView()),
		interval: 16 * time.Millisecond,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.log == nil {
		w.log = logger.L()
	}
	if w.redraw == nil {
		w.redraw = &layers.Flag{}
	}
	if w.layers == nil {
		w.layers = layers.NewSet(nil)
	}
	return w
}

// Run loops until the frame consumer hangs up or ctx is cancelled, both of
// which return nil. A renderer failure ends the loop with an error.
func (w *Worker) Run(ctx context.Context) error {
	if err := w.renderer.Resize(w.animator.View().Size()); err != nil {
		return fmt.Errorf("mapworker: init renderer: %w", err)
	}
	w.redraw.Set()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		if w.frames.Closed() {
			w.log.Info("map_worker_stopped", "reason", "frames_closed")
			return nil
		}

		if err := w.drain(); err != nil {
			return err
		}

		if _, changed := w.animator.Tick(w.now()); changed {
			w.redraw.Set()
		}

		if w.redraw.Take() {
			frame, err := w.renderFrame(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
			if !w.frames.send(ctx, frame) {
				continue
			}
			metrics.FramesTotal.Inc()
		}

		select {
		case <-ctx.Done():
			w.log.Info("map_worker_stopped", "reason", "context")
			return nil
		case <-w.frames.Done():
		case <-ticker.C:
		}
	}
}

// drain applies every queued command without waiting for more.
func (w *Worker) drain() error {
	for {
		select {
		case cmd, ok := <-w.commands:
			if !ok {
				w.commands = nil
				return nil
			}
			if err := w.apply(cmd); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

func (w *Worker) apply(cmd Command) error {
	metrics.CommandsTotal.WithLabelValues(cmd.kind()).Inc()
	target := w.animator.Target()

	switch c := cmd.(type) {
	case Resize:
		size := render.AlignSize(c.Size)
		if size == target.Size() {
			return nil
		}
		if err := w.renderer.Resize(size); err != nil {
			return fmt.Errorf("mapworker: resize renderer: %w", err)
		}
		w.animator.AnimateTo(target.WithSize(size), 0)

	case Zoom:
		res := target.Resolution() * c.Multiplier
		if !(res > 0) || math.IsInf(res, 0) {
			w.log.Warn("zoom_ignored", "multiplier", c.Multiplier)
			return nil
		}
		w.animator.AnimateTo(target.WithResolution(res), w.transition)

	case Pan:
		w.animator.AnimateTo(target.TranslateByPixels(c.From, c.To), w.transition)

	case SetOverlays:
		if w.layers.SetOverlays(c.Prediction, c.Dataset) {
			w.redraw.Set()
		}

	case QueryLocation:
		// Resolve against what is on screen, not where a transition ends.
		ll, ok := w.animator.View().PixelToLatLng(c.Pixel)
		if !ok {
			w.log.Debug("query_off_map", "x", c.Pixel.X, "y", c.Pixel.Y)
			return nil
		}
		select {
		case c.Reply <- ll:
		default:
		}
	}
	return nil
}

func (w *Worker) renderFrame(ctx context.Context) (Frame, error) {
	start := time.Now()
	v := w.animator.View()

	if base := w.layers.Base(); base != nil {
		base.Prepare(v)
	}
	if err := w.renderer.Render(v, w.layers.Layers()); err != nil {
		return Frame{}, fmt.Errorf("mapworker: render: %w", err)
	}
	pixels, err := w.renderer.Image(ctx)
	if err != nil {
		return Frame{}, fmt.Errorf("mapworker: read image: %w", err)
	}

	metrics.RenderDurationMs.Observe(float64(time.Since(start).Milliseconds()))
	size := v.Size()
	return Frame{Pixels: pixels, Width: uint32(size.W), Height: uint32(size.H)}, nil
}
