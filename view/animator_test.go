package view

import (
	"math"
	"testing"
	"time"
)

func TestAnimatorJump(t *testing.T) {
	start := testView()
	a := NewAnimator(start)

	if _, changed := a.Tick(time.Now()); changed {
		t.Fatal("idle animator reported a change")
	}

	target := start.WithResolution(2)
	a.AnimateTo(target, 0)
	if a.Target() != target || a.View() != target {
		t.Fatal("zero duration should jump immediately")
	}
	v, changed := a.Tick(time.Now())
	if !changed || v != target {
		t.Errorf("tick after jump = %+v, %v", v, changed)
	}
	if _, changed := a.Tick(time.Now()); changed {
		t.Error("jump reported twice")
	}
}

func TestAnimatorInterpolates(t *testing.T) {
	start := New(LatLng{}, 100).WithSize(Size{W: 256, H: 256})
	target := start.WithResolution(300)
	a := NewAnimator(start)
	a.AnimateTo(target, time.Second)

	t0 := time.Unix(1000, 0)
	v, changed := a.Tick(t0)
	if !changed || v.Resolution() != 100 {
		t.Fatalf("first tick = %v, %v", v.Resolution(), changed)
	}
	v, _ = a.Tick(t0.Add(500 * time.Millisecond))
	if math.Abs(v.Resolution()-200) > 1e-9 {
		t.Errorf("halfway resolution = %v", v.Resolution())
	}
	if !a.Animating() {
		t.Error("should still be animating")
	}
	v, _ = a.Tick(t0.Add(2 * time.Second))
	if v != target || a.Animating() {
		t.Errorf("finished view = %+v animating=%v", v, a.Animating())
	}
}

func TestAnimatorTargetsCompose(t *testing.T) {
	a := NewAnimator(testView())
	for i := 0; i < 3; i++ {
		a.AnimateTo(a.Target().WithResolution(a.Target().Resolution()*2), 0)
	}
	if got := a.View().Resolution(); math.Abs(got-1.194*8) > 1e-9 {
		t.Errorf("resolution = %v", got)
	}
}
