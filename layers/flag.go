package layers

import "sync/atomic"

// Flag is the redraw invalidation signal. Any goroutine may Set it; the
// render loop consumes it with Take. A Set that races a Take is never
// lost: either Take observes it, or the flag stays raised for the next
// pass.
type Flag struct {
	v atomic.Bool
}

func (f *Flag) Set() { f.v.Store(true) }

// Take clears the flag and reports whether it was set.
func (f *Flag) Take() bool { return f.v.Swap(false) }

func (f *Flag) IsSet() bool { return f.v.Load() }
