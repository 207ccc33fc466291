// Package predict estimates a zip code's location: a local feed-forward
// model and a bridge to a remote model service.
package predict

import (
	"github.com/Nxllpointer/ziplocator/internal/logger"
	"github.com/Nxllpointer/ziplocator/view"
)

// Inferrer predicts where a zip code lies. ok is false when no prediction
// could be made.
type Inferrer interface {
	Infer(zip uint32) (view.LatLng, bool)
}

type fallback struct {
	primary, secondary Inferrer
}

// WithFallback asks primary first and secondary when primary fails.
func WithFallback(primary, secondary Inferrer) Inferrer {
	if primary == nil {
		return secondary
	}
	if secondary == nil {
		return primary
	}
	return fallback{primary: primary, secondary: secondary}
}

func (f fallback) Infer(zip uint32) (view.LatLng, bool) {
	if ll, ok := f.primary.Infer(zip); ok {
		return ll, true
	}
	logger.L().Warn("prediction_fallback", "zip", zip)
	return f.secondary.Infer(zip)
}
