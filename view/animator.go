package view

import "time"

// Animator moves the current view towards a target over a duration.
// A zero duration is a jump, applied on the next Tick.
type Animator struct {
	current View
	start   View
	target  View

	begin    time.Time
	duration time.Duration
	active   bool
	dirty    bool
}

func NewAnimator(v View) *Animator {
	return &Animator{current: v, start: v, target: v}
}

// View is the view as of the last Tick (or jump).
func (a *Animator) View() View { return a.current }

// Target is the view the animator is heading to. New transitions
// should be derived from it so queued commands compose.
func (a *Animator) Target() View { return a.target }

// Animating reports whether a timed transition is in flight.
func (a *Animator) Animating() bool { return a.active }

// AnimateTo starts a transition from the current view. It replaces any
// transition in flight.
func (a *Animator) AnimateTo(target View, d time.Duration) {
	a.start = a.current
	a.target = target
	if d <= 0 {
		a.current = target
		a.active = false
		a.dirty = true
		return
	}
	a.duration = d
	a.begin = time.Time{}
	a.active = true
}

// Tick advances the transition to now and reports whether the view changed
// since the previous Tick.
func (a *Animator) Tick(now time.Time) (View, bool) {
	changed := a.dirty
	a.dirty = false
	if !a.active {
		return a.current, changed
	}
	if a.begin.IsZero() {
		a.begin = now
	}
	t := float64(now.Sub(a.begin)) / float64(a.duration)
	a.current = Lerp(a.start, a.target, t)
	if t >= 1 {
		a.current = a.target
		a.active = false
	}
	return a.current, true
}
