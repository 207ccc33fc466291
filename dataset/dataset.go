// Package dataset holds the reference zip code locations: a CSV reader,
// an in-memory index with nearest-zip search, and a Postgres store.
package dataset

import (
	"errors"

	"github.com/Nxllpointer/ziplocator/view"
)

// Dataset answers location questions about zip codes.
type Dataset interface {
	ZipLocation(zip uint32) (view.LatLng, bool)
	NearestZip(ll view.LatLng) (uint32, bool)
}

type Record struct {
	Zip      uint32
	Location view.LatLng
}

var (
	ErrMissingColumn = errors.New("dataset: missing column")
	ErrEmpty         = errors.New("dataset: no records")
)
