package ui

import (
	"errors"
	"testing"

	"github.com/Nxllpointer/ziplocator/mapworker"
	"github.com/Nxllpointer/ziplocator/view"
)

type fixedInferrer struct {
	ll   view.LatLng
	ok   bool
	zips []uint32
}

func (f *fixedInferrer) Infer(zip uint32) (view.LatLng, bool) {
	f.zips = append(f.zips, zip)
	return f.ll, f.ok
}

type mapDataset map[uint32]view.LatLng

func (d mapDataset) ZipLocation(zip uint32) (view.LatLng, bool) {
	ll, ok := d[zip]
	return ll, ok
}

func (d mapDataset) NearestZip(view.LatLng) (uint32, bool) {
	for zip := range d {
		return zip, true
	}
	return 0, false
}

func newState(inf *fixedInferrer, ds mapDataset) (*State, chan mapworker.Command) {
	commands := make(chan mapworker.Command, 8)
	s := NewState(inf, ds)
	s.Update(SetMapController{Commands: commands})
	return s, commands
}

func overlays(t *testing.T, commands chan mapworker.Command) mapworker.SetOverlays {
	t.Helper()
	select {
	case c := <-commands:
		o, ok := c.(mapworker.SetOverlays)
		if !ok {
			t.Fatalf("command = %#v, want SetOverlays", c)
		}
		return o
	default:
		t.Fatal("no command sent")
	}
	return mapworker.SetOverlays{}
}

func TestRunPrediction(t *testing.T) {
	inf := &fixedInferrer{ll: view.LatLng{Lat: 40, Lng: -100}, ok: true}
	s, commands := newState(inf, mapDataset{601: {Lat: 18.18, Lng: -66.75}})

	s.Update(ZipCodeChanged{Text: "00601"})
	s.Update(RunPrediction{})

	o := overlays(t, commands)
	if o.Prediction == nil || *o.Prediction != inf.ll {
		t.Errorf("prediction pin = %v", o.Prediction)
	}
	if o.Dataset == nil || *o.Dataset != (view.LatLng{Lat: 18.18, Lng: -66.75}) {
		t.Errorf("dataset pin = %v", o.Dataset)
	}
	if len(inf.zips) != 1 || inf.zips[0] != 601 {
		t.Errorf("inferred zips = %v", inf.zips)
	}
	if !s.LegendVisible() {
		t.Error("legend hidden after prediction")
	}
}

func TestRunPredictionInvalidZip(t *testing.T) {
	inf := &fixedInferrer{ok: true}
	s, commands := newState(inf, nil)

	s.Update(ZipCodeChanged{Text: "12a45"})
	if s.ZipValid() {
		t.Fatal("non-numeric zip reported valid")
	}
	s.Update(RunPrediction{})

	if len(commands) != 0 || len(inf.zips) != 0 || s.LegendVisible() {
		t.Error("invalid zip triggered a prediction")
	}
}

func TestRunPredictionWithoutController(t *testing.T) {
	inf := &fixedInferrer{ok: true}
	s := NewState(inf, nil)
	s.Update(ZipCodeChanged{Text: "10001"})
	s.Update(RunPrediction{})

	if len(inf.zips) != 0 || s.LegendVisible() {
		t.Error("prediction ran before the map was ready")
	}
}

func TestClearPrediction(t *testing.T) {
	inf := &fixedInferrer{ll: view.LatLng{Lat: 1, Lng: 2}, ok: true}
	s, commands := newState(inf, nil)
	s.Update(ZipCodeChanged{Text: "10001"})
	s.Update(RunPrediction{})
	overlays(t, commands)

	s.Update(ClearPrediction{})
	o := overlays(t, commands)
	if o.Prediction != nil || o.Dataset != nil {
		t.Errorf("clear sent %+v", o)
	}
	if s.LegendVisible() || s.Prediction() != nil {
		t.Error("state still shows a prediction")
	}
}

func TestLocationPicked(t *testing.T) {
	inf := &fixedInferrer{ll: view.LatLng{Lat: 5, Lng: 5}, ok: true}
	s, commands := newState(inf, mapDataset{501: {Lat: 40.8, Lng: -73.0}})

	s.Update(LocationPicked{At: view.LatLng{Lat: 40.7, Lng: -73.1}})

	if s.ZipCode() != "00501" {
		t.Errorf("zip code = %q, want 00501", s.ZipCode())
	}
	o := overlays(t, commands)
	if o.Prediction == nil || o.Dataset == nil {
		t.Errorf("pins = %+v", o)
	}
}

func TestOpenLink(t *testing.T) {
	s := NewState(&fixedInferrer{}, nil)
	var opened []string
	s.open = func(url string) error {
		opened = append(opened, url)
		return errors.New("no browser")
	}

	s.Update(OpenLink{URL: FixTheMapURL})
	if len(opened) != 1 || opened[0] != FixTheMapURL {
		t.Errorf("opened = %v", opened)
	}
}

func TestUpdateMapFrame(t *testing.T) {
	s := NewState(&fixedInferrer{}, nil)
	s.Update(UpdateMapFrame{Frame: mapworker.Frame{Pixels: make([]byte, 4), Width: 1, Height: 1}})
	if s.HasFrame() {
		t.Fatal("frame accepted before the map controller")
	}

	s.Update(SetMapController{Commands: make(chan mapworker.Command, 1)})
	s.Update(UpdateMapFrame{Frame: mapworker.Frame{Pixels: make([]byte, 4), Width: 1, Height: 1}})
	if !s.HasFrame() {
		t.Error("frame not kept")
	}
}

func TestRunPredictionWithoutResultHidesLegend(t *testing.T) {
	inf := &fixedInferrer{ok: false}
	s, commands := newState(inf, mapDataset{})

	s.Update(ZipCodeChanged{Text: "10001"})
	s.Update(RunPrediction{})

	o := overlays(t, commands)
	if o.Prediction != nil || o.Dataset != nil {
		t.Errorf("pins = %+v, want none", o)
	}
	if s.LegendVisible() {
		t.Error("legend shown with no pins")
	}
}
