package dataset

import (
	"math"

	"github.com/Nxllpointer/ziplocator/view"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

const earthRadiusKm = orb.EarthRadius / 1000

// Index is an immutable in-memory Dataset. The first record wins when a
// zip appears twice.
type Index struct {
	byZip map[uint32]view.LatLng
	root  *kdNode
}

func NewIndex(recs []Record) (*Index, error) {
	if len(recs) == 0 {
		return nil, ErrEmpty
	}
	idx := &Index{byZip: make(map[uint32]view.LatLng, len(recs))}
	uniq := make([]Record, 0, len(recs))
	for _, r := range recs {
		if _, dup := idx.byZip[r.Zip]; dup {
			continue
		}
		idx.byZip[r.Zip] = r.Location
		uniq = append(uniq, r)
	}
	idx.root = buildKD(uniq, 0)
	return idx, nil
}

func (x *Index) Len() int { return len(x.byZip) }

func (x *Index) ZipLocation(zip uint32) (view.LatLng, bool) {
	ll, ok := x.byZip[zip]
	return ll, ok
}

// NearestZip returns the zip whose location has the smallest great-circle
// distance to ll.
func (x *Index) NearestZip(ll view.LatLng) (uint32, bool) {
	if x.root == nil || math.IsNaN(ll.Lat) || math.IsNaN(ll.Lng) {
		return 0, false
	}
	best, _ := nearest(x.root, ll)
	return best.Zip, true
}

// kd-tree alternating lng / lat, split at the median.
type kdNode struct {
	r    Record
	axis int
	l, h *kdNode
}

func buildKD(rs []Record, depth int) *kdNode {
	if len(rs) == 0 {
		return nil
	}
	axis := depth % 2
	mid := len(rs) / 2
	selectNth(rs, mid, axis)
	return &kdNode{
		r:    rs[mid],
		axis: axis,
		l:    buildKD(rs[:mid], depth+1),
		h:    buildKD(rs[mid+1:], depth+1),
	}
}

func coord(r Record, axis int) float64 {
	if axis == 0 {
		return r.Location.Lng
	}
	return r.Location.Lat
}

func selectNth(a []Record, n, axis int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := partition(a, lo, hi, (lo+hi)/2, axis)
		switch {
		case p == n:
			return
		case n < p:
			hi = p - 1
		default:
			lo = p + 1
		}
	}
}

func partition(a []Record, lo, hi, pivot, axis int) int {
	pv := coord(a[pivot], axis)
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if coord(a[j], axis) < pv {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

func distanceKm(a, b view.LatLng) float64 {
	return geo.DistanceHaversine(orb.Point{a.Lng, a.Lat}, orb.Point{b.Lng, b.Lat}) / 1000
}

func nearest(root *kdNode, q view.LatLng) (Record, float64) {
	var best Record
	bestD := math.MaxFloat64

	var visit func(n *kdNode)
	visit = func(n *kdNode) {
		if n == nil {
			return
		}
		if d := distanceKm(q, n.r.Location); d < bestD {
			bestD, best = d, n.r
		}
		var key, split float64
		if n.axis == 0 {
			key, split = q.Lng, n.r.Location.Lng
		} else {
			key, split = q.Lat, n.r.Location.Lat
		}
		first, second := n.l, n.h
		if key > split {
			first, second = n.h, n.l
		}
		visit(first)
		if splitDistanceKm(q, key, split, n.axis) < bestD {
			visit(second)
		}
	}
	visit(root)
	return best, bestD
}

// splitDistanceKm is a lower bound on the distance from q to any point on
// the far side of a split line.
func splitDistanceKm(q view.LatLng, key, split float64, axis int) float64 {
	gap := math.Abs(key - split)
	if axis == 1 {
		return gap * math.Pi / 180 * earthRadiusKm
	}
	// The far side of a longitude split also reaches the antimeridian.
	if key > split {
		gap = math.Min(gap, 180-key)
	} else {
		gap = math.Min(gap, 180+key)
	}
	gap = math.Min(gap, 90) * math.Pi / 180
	return math.Asin(math.Sin(gap)*math.Cos(q.Lat*math.Pi/180)) * earthRadiusKm
}
