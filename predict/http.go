package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Nxllpointer/ziplocator/internal/logger"
	"github.com/Nxllpointer/ziplocator/view"
)

// HTTPInferrer asks a model service: POST {base}/predict {"zip": N}
// answered by {"lat": .., "lon": ..}.
type HTTPInferrer struct {
	serviceURL string
	httpClient *http.Client
	timeout    time.Duration
}

func NewHTTPInferrer(serviceURL string) *HTTPInferrer {
	return &HTTPInferrer{
		serviceURL: strings.TrimRight(serviceURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		timeout:    5 * time.Second,
	}
}

type predictRequest struct {
	Zip uint32 `json:"zip"`
}

type predictResponse struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Predict calls the service.
func (h *HTTPInferrer) Predict(ctx context.Context, zip uint32) (view.LatLng, error) {
	body, err := json.Marshal(predictRequest{Zip: zip})
	if err != nil {
		return view.LatLng{}, fmt.Errorf("predict: failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/predict", h.serviceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return view.LatLng{}, fmt.Errorf("predict: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return view.LatLng{}, fmt.Errorf("predict: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return view.LatLng{}, fmt.Errorf("predict: service returned status %d", resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return view.LatLng{}, fmt.Errorf("predict: failed to decode response: %w", err)
	}
	return view.LatLng{Lat: out.Lat, Lng: out.Lon}, nil
}

func (h *HTTPInferrer) Infer(zip uint32) (view.LatLng, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	ll, err := h.Predict(ctx, zip)
	if err != nil {
		logger.L().Warn("prediction_error", "zip", zip, "err", err)
		return view.LatLng{}, false
	}
	return ll, true
}

// Health checks that the service answers.
func (h *HTTPInferrer) Health(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", h.serviceURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("predict: failed to create health request: %w", err)
	}
	resp, err := h.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("predict: health check failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("predict: health check returned status %d", resp.StatusCode)
	}
	return nil
}
