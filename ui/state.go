// Package ui is the ziplocator window: a zip code input, the map, and the
// legend for the pins placed on it.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Nxllpointer/ziplocator/dataset"
	"github.com/Nxllpointer/ziplocator/internal/logger"
	"github.com/Nxllpointer/ziplocator/internal/metrics"
	"github.com/Nxllpointer/ziplocator/mapview"
	"github.com/Nxllpointer/ziplocator/mapworker"
	"github.com/Nxllpointer/ziplocator/predict"
	"github.com/Nxllpointer/ziplocator/view"
)

// FixTheMapURL is where the map attribution links to.
const FixTheMapURL = "https://www.openstreetmap.org/fixthemap"

// Message is one of the types below. Update applies them in order.
type Message interface {
	isMessage()
}

type (
	SetMapController struct{ Commands chan<- mapworker.Command }
	UpdateMapFrame   struct{ Frame mapworker.Frame }
	ZipCodeChanged   struct{ Text string }
	RunPrediction    struct{}
	ClearPrediction  struct{}
	LocationPicked   struct{ At view.LatLng }
	OpenLink         struct{ URL string }
)

func (SetMapController) isMessage() {}
func (UpdateMapFrame) isMessage()   {}
func (ZipCodeChanged) isMessage()   {}
func (RunPrediction) isMessage()    {}
func (ClearPrediction) isMessage()  {}
func (LocationPicked) isMessage()   {}
func (OpenLink) isMessage()         {}

// State is owned by the UI goroutine.
type State struct {
	inferrer predict.Inferrer
	dataset  dataset.Dataset
	open     func(url string) error

	controller chan<- mapworker.Command
	mapView    *mapview.MapView
	hasFrame   bool

	zipCode       string
	legendVisible bool
	prediction    *view.LatLng
	datasetPin    *view.LatLng
}

// NewState wires the capabilities. Either may be nil: without a dataset
// no dataset pin is shown and picking a location does nothing.
func NewState(inferrer predict.Inferrer, ds dataset.Dataset) *State {
	return &State{inferrer: inferrer, dataset: ds, open: OpenURL}
}

func (s *State) ZipCode() string           { return s.zipCode }
func (s *State) LegendVisible() bool       { return s.legendVisible }
func (s *State) MapView() *mapview.MapView { return s.mapView }
func (s *State) HasFrame() bool            { return s.hasFrame }

// Prediction and DatasetPin are the pins last sent to the map.
func (s *State) Prediction() *view.LatLng { return s.prediction }
func (s *State) DatasetPin() *view.LatLng { return s.datasetPin }

// ZipValid reports whether the input parses as a zip code.
func (s *State) ZipValid() bool {
	_, err := parseZip(s.zipCode)
	return err == nil
}

func parseZip(text string) (uint32, error) {
	zip, err := strconv.ParseUint(strings.TrimSpace(text), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("ui: invalid zip code %q", text)
	}
	return uint32(zip), nil
}

func (s *State) Update(msg Message) {
	switch m := msg.(type) {
	case SetMapController:
		s.controller = m.Commands
		s.mapView = mapview.New(m.Commands)
	case UpdateMapFrame:
		if s.mapView != nil {
			s.mapView.SetFrame(m.Frame)
			s.hasFrame = true
		}
	case ZipCodeChanged:
		s.zipCode = m.Text
	case RunPrediction:
		s.runPrediction()
	case ClearPrediction:
		s.setPins(nil, nil)
		s.legendVisible = false
	case LocationPicked:
		if s.dataset == nil {
			return
		}
		zip, ok := s.dataset.NearestZip(m.At)
		if !ok {
			return
		}
		s.zipCode = fmt.Sprintf("%05d", zip)
		s.runPrediction()
	case OpenLink:
		if err := s.open(m.URL); err != nil {
			logger.L().Warn("open_link_error", "url", m.URL, "err", err)
		}
	}
}

func (s *State) runPrediction() {
	if s.controller == nil {
		return
	}
	zip, err := parseZip(s.zipCode)
	if err != nil {
		return
	}

	var pred, actual *view.LatLng
	if s.inferrer != nil {
		if ll, ok := s.inferrer.Infer(zip); ok {
			pred = &ll
			metrics.PredictionsTotal.WithLabelValues("ok").Inc()
		} else {
			metrics.PredictionsTotal.WithLabelValues("failed").Inc()
		}
	}
	if s.dataset != nil {
		if ll, ok := s.dataset.ZipLocation(zip); ok {
			actual = &ll
		}
	}
	logger.L().Debug("prediction", "zip", zip, "prediction", pred, "dataset", actual)

	if s.setPins(pred, actual) {
		s.legendVisible = pred != nil || actual != nil
	}
}

func (s *State) setPins(pred, actual *view.LatLng) bool {
	if s.controller == nil {
		return false
	}
	if !mapworker.TrySend(s.controller, mapworker.SetOverlays{Prediction: pred, Dataset: actual}) {
		metrics.GesturesDroppedTotal.Inc()
		return false
	}
	s.prediction, s.datasetPin = pred, actual
	return true
}
