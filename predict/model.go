package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/Nxllpointer/ziplocator/view"
)

const (
	HiddenSize = 30
	zipScale   = 10_000.0
)

var ErrShape = errors.New("predict: bad layer shape")

// Linear is a dense layer. Weight is indexed [input][output].
type Linear struct {
	Weight [][]float64 `json:"weight"`
	Bias   []float64   `json:"bias"`
}

func (l Linear) check(in, out int) error {
	if len(l.Weight) != in || len(l.Bias) != out {
		return fmt.Errorf("%w: want %dx%d, have %d rows and %d biases", ErrShape, in, out, len(l.Weight), len(l.Bias))
	}
	for _, row := range l.Weight {
		if len(row) != out {
			return fmt.Errorf("%w: want %d outputs, row has %d", ErrShape, out, len(row))
		}
	}
	return nil
}

func (l Linear) forward(x []float64) []float64 {
	y := make([]float64, len(l.Bias))
	copy(y, l.Bias)
	for i, xi := range x {
		for j, w := range l.Weight[i] {
			y[j] += xi * w
		}
	}
	return y
}

// Model is the zip regression network: one input, two outputs (lat, lng).
type Model struct {
	Lin1 Linear `json:"lin1"`
	Lin2 Linear `json:"lin2"`
	Lin3 Linear `json:"lin3"`
	Lin4 Linear `json:"lin4"`
	Lin5 Linear `json:"lin5"`
	Lin6 Linear `json:"lin6"`
}

func ParseModel(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("predict: decode model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

func LoadModel(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	defer f.Close()
	return ParseModel(f)
}

func (m *Model) Validate() error {
	checks := []struct {
		name    string
		l       Linear
		in, out int
	}{
		{"lin1", m.Lin1, 1, HiddenSize},
		{"lin2", m.Lin2, HiddenSize, HiddenSize},
		{"lin3", m.Lin3, HiddenSize, HiddenSize},
		{"lin4", m.Lin4, HiddenSize, HiddenSize},
		{"lin5", m.Lin5, HiddenSize, HiddenSize},
		{"lin6", m.Lin6, HiddenSize, 2},
	}
	for _, c := range checks {
		if err := c.l.check(c.in, c.out); err != nil {
			return fmt.Errorf("%s: %w", c.name, err)
		}
	}
	return nil
}

// Forward runs the network. The layer order is not the field order: lin5
// runs before lin4.
func (m *Model) Forward(zip uint32) (lat, lng float64) {
	x := []float64{float64(zip) / zipScale}

	x = apply(m.Lin1.forward(x), math.Tanh)
	x = m.Lin2.forward(x)
	x = m.Lin3.forward(x)
	x = apply(m.Lin5.forward(x), relu)
	x = apply(m.Lin4.forward(x), sigmoid)
	x = m.Lin6.forward(x)

	return math.Tanh(x[0]) * 180, math.Tanh(x[1]) * 180
}

func (m *Model) Infer(zip uint32) (view.LatLng, bool) {
	lat, lng := m.Forward(zip)
	if math.IsNaN(lat) || math.IsNaN(lng) {
		return view.LatLng{}, false
	}
	return view.LatLng{Lat: lat, Lng: lng}, true
}

func apply(x []float64, f func(float64) float64) []float64 {
	for i := range x {
		x[i] = f(x[i])
	}
	return x
}

func relu(v float64) float64 { return math.Max(v, 0) }

func sigmoid(v float64) float64 { return 1 / (1 + math.Exp(-v)) }
