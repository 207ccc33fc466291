package layers

import (
	"errors"
	"image"
	"sync"
	"testing"

	"github.com/Nxllpointer/ziplocator/tiles"
	"github.com/Nxllpointer/ziplocator/view"
)

func TestFlagSetManyTimesTakesOnce(t *testing.T) {
	var f Flag
	for i := 0; i < 10; i++ {
		f.Set()
	}
	if !f.Take() {
		t.Fatal("first Take should see the flag")
	}
	if f.Take() {
		t.Error("second Take should find it cleared")
	}
}

func TestFlagConcurrentSetIsNotLost(t *testing.T) {
	var f Flag
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				f.Set()
			}
		}()
	}
	taken := 0
	for i := 0; i < 1000; i++ {
		if f.Take() {
			taken++
		}
	}
	wg.Wait()
	if f.Take() {
		taken++
	}
	if taken == 0 {
		t.Fatal("no set was observed")
	}
	if f.IsSet() {
		t.Error("flag should be clear after the final Take")
	}
}

func TestSetOverlaysClearIsIdempotent(t *testing.T) {
	s := NewSet(nil)
	a := view.LatLng{Lat: 40, Lng: -100}
	b := view.LatLng{Lat: 41, Lng: -99}

	if !s.SetOverlays(&a, &b) {
		t.Fatal("adding pins should report a change")
	}
	if got := s.Overlays(); len(got) != 2 || got[0].Kind != Prediction || got[1].Kind != Dataset {
		t.Fatalf("overlays = %+v", got)
	}
	if s.SetOverlays(&a, &b) {
		t.Error("same pins should not report a change")
	}
	if !s.SetOverlays(nil, nil) {
		t.Error("clearing should report a change")
	}
	if len(s.Overlays()) != 0 {
		t.Error("clear left pins behind")
	}
	if s.SetOverlays(nil, nil) || len(s.Overlays()) != 0 {
		t.Error("second clear should be a no-op")
	}
}

func TestSetOverlaysReplacesWholeSet(t *testing.T) {
	s := NewSet(nil)
	a := view.LatLng{Lat: 1, Lng: 2}
	s.SetOverlays(&a, &a)
	s.SetOverlays(nil, &a)
	got := s.Overlays()
	if len(got) != 1 || got[0].Kind != Dataset {
		t.Errorf("overlays = %+v", got)
	}
}

type stubSource struct {
	missing map[tiles.Tile]bool
}

func (s stubSource) GetTile(t tiles.Tile) (image.Image, error) {
	if s.missing[t] {
		return nil, errors.New("missing")
	}
	return image.NewRGBA(image.Rect(0, 0, tiles.TileSize, tiles.TileSize)), nil
}

func TestLayersOrderAndPrepare(t *testing.T) {
	v := view.New(view.LatLng{}, tiles.Resolution(2)).WithSize(view.Size{W: 500, H: 500})
	base := NewBaseTileLayer(stubSource{missing: map[tiles.Tile]bool{{X: 1, Y: 1, Zoom: 2}: true}}, tiles.MaxZoom)
	s := NewSet(base)
	p := view.LatLng{Lat: 10, Lng: 10}
	s.SetOverlays(&p, nil)

	ls := s.Layers()
	if len(ls) != 2 {
		t.Fatalf("layers = %d", len(ls))
	}
	if _, ok := ls[0].(*BaseTileLayer); !ok {
		t.Errorf("first layer should be the base, got %T", ls[0])
	}
	if pin, ok := ls[1].(PinOverlay); !ok || pin.Kind != Prediction {
		t.Errorf("second layer = %#v", ls[1])
	}

	base.Prepare(v)
	if n := len(base.Tiles()); n != 3 {
		t.Errorf("prepared %d tiles, want 3 (one missing)", n)
	}
}
