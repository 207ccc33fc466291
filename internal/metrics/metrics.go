package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CommandsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ziplocator_map_commands_total",
		Help: "Map commands applied by the worker",
	}, []string{"kind"})
	FramesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ziplocator_map_frames_total",
		Help: "Frames rendered and published",
	})
	RenderDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ziplocator_map_render_duration_ms",
		Help:    "Render plus readback duration in milliseconds",
		Buckets: []float64{1, 2, 5, 10, 20, 50, 100, 200, 500},
	})
	GesturesDroppedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ziplocator_map_gestures_dropped_total",
		Help: "Commands dropped because the command queue was full",
	})
	TileFetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ziplocator_tile_fetch_total",
		Help: "Tile fetches by result",
	}, []string{"result"})
	TileCacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ziplocator_tile_cache_hits_total",
		Help: "Tile cache hits",
	})
	TileCacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ziplocator_tile_cache_misses_total",
		Help: "Tile cache misses",
	})
	PredictionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ziplocator_predictions_total",
		Help: "Prediction requests by result",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(CommandsTotal)
	prometheus.MustRegister(FramesTotal)
	prometheus.MustRegister(RenderDurationMs)
	prometheus.MustRegister(GesturesDroppedTotal)
	prometheus.MustRegister(TileFetchTotal)
	prometheus.MustRegister(TileCacheHitsTotal)
	prometheus.MustRegister(TileCacheMissesTotal)
	prometheus.MustRegister(PredictionsTotal)
}

// Handler exposes the registered collectors for scraping.
func Handler() http.Handler { return promhttp.Handler() }
