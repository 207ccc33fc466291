package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gioui.org/app"
	"gioui.org/io/system"
	"gioui.org/unit"
	"github.com/Nxllpointer/ziplocator/dataset"
	"github.com/Nxllpointer/ziplocator/internal/config"
	"github.com/Nxllpointer/ziplocator/internal/logger"
	"github.com/Nxllpointer/ziplocator/internal/metrics"
	"github.com/Nxllpointer/ziplocator/layers"
	"github.com/Nxllpointer/ziplocator/mapworker"
	"github.com/Nxllpointer/ziplocator/predict"
	"github.com/Nxllpointer/ziplocator/render"
	"github.com/Nxllpointer/ziplocator/tiles"
	"github.com/Nxllpointer/ziplocator/tiles/worker"
	"github.com/Nxllpointer/ziplocator/ui"
	"golang.org/x/sync/errgroup"
)

const tileStoreTTL = 7 * 24 * time.Hour

func main() {
	log := logger.Setup()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	go func() {
		err := run(ctx, cfg)
		stop()
		if err != nil {
			log.Error("ziplocator_failed", "err", err)
			os.Exit(1)
		}
		os.Exit(0)
	}()
	app.Main()
}

func run(ctx context.Context, cfg config.Config) error {
	log := logger.L()

	redraw := &layers.Flag{}
	source, pool := tileSource(ctx, cfg, redraw)
	defer pool.Shutdown()

	set := layers.NewSet(layers.NewBaseTileLayer(source, tiles.MaxZoom))
	raster, err := render.NewRaster(mapworker.DefaultView().Size())
	if err != nil {
		return err
	}

	commands := make(chan mapworker.Command, cfg.CommandBuffer)
	frames := mapworker.NewFrameChannel(cfg.FrameBuffer)
	mapWorker := mapworker.New(commands, frames, raster, set, redraw,
		mapworker.WithInterval(cfg.FrameInterval))

	state := ui.NewState(loadInferrer(cfg), loadDataset(ctx, cfg))
	state.Update(ui.SetMapController{Commands: commands})
	win := ui.NewWindow(state)

	w := new(app.Window)
	w.Option(app.Title("Ziplocator"), app.Size(unit.Dp(1024), unit.Dp(768)))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return mapWorker.Run(gctx)
	})
	g.Go(func() error {
		for {
			select {
			case f := <-frames.Frames():
				win.Deliver(f)
			case <-frames.Done():
				return nil
			case <-gctx.Done():
				return nil
			}
		}
	})
	g.Go(func() error {
		defer frames.Close()
		return win.Run(w)
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
			w.Perform(system.ActionClose)
		case <-frames.Done():
		}
		return nil
	})
	if cfg.MetricsAddr != "" {
		g.Go(func() error {
			return serveMetrics(gctx, cfg.MetricsAddr, frames.Done())
		})
	}

	err = g.Wait()
	log.Info("ziplocator_stopped", "err", err)
	return err
}

// tileSource builds the non-blocking base layer source. Loaded tiles
// raise redraw.
func tileSource(ctx context.Context, cfg config.Config, redraw *layers.Flag) (*tiles.CombinedTileProvider, *worker.Pool) {
	log := logger.L()

	opts := []tiles.HTTPOption{
		tiles.WithUserAgent(cfg.TileUserAgent),
		tiles.WithRate(cfg.TileRate),
	}
	if client := tiles.OpenRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB); client != nil {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warn("redis_unavailable", "addr", cfg.RedisAddr, "err", err)
		} else {
			opts = append(opts, tiles.WithStore(tiles.NewRedisStore(client, tileStoreTTL)))
			log.Info("tile_store_enabled", "addr", cfg.RedisAddr)
		}
	}

	manager := tiles.NewTileManager(
		tiles.NewHTTPProvider(cfg.TileURL, opts...),
		tiles.NewMemoryCache(cfg.TileCacheSize),
	)
	pool := worker.NewPool(cfg.TileWorkers, 256, 15*time.Second)
	source := tiles.NewCombinedTileProvider(manager, tiles.NewPlaceholderProvider(), pool)
	source.SetOnLoadCallback(redraw.Set)
	return source, pool
}

func loadInferrer(cfg config.Config) predict.Inferrer {
	log := logger.L()

	var local, remote predict.Inferrer
	if m, err := predict.LoadModel(cfg.ModelFile); err != nil {
		log.Warn("model_unavailable", "file", cfg.ModelFile, "err", err)
	} else {
		local = m
	}
	if cfg.InferURL != "" {
		remote = predict.NewHTTPInferrer(cfg.InferURL)
	}
	inf := predict.WithFallback(remote, local)
	if inf == nil {
		log.Warn("no_inferrer", "hint", "set MODEL_FILE or INFER_URL")
	}
	return inf
}

// loadDataset prefers Postgres, seeding it from the CSV on first use. It
// returns nil when neither source is usable.
func loadDataset(ctx context.Context, cfg config.Config) dataset.Dataset {
	log := logger.L()
	seed := func() ([]dataset.Record, error) {
		f, err := os.Open(cfg.DatasetCSV)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		recs, skipped, err := dataset.ReadCSV(f)
		if skipped > 0 {
			log.Warn("dataset_rows_skipped", "file", cfg.DatasetCSV, "count", skipped)
		}
		return recs, err
	}

	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		idx, err := loadPostgres(ctx, cfg.DatabaseURL, seed)
		if err == nil {
			log.Info("dataset_loaded", "source", "postgres", "zips", idx.Len())
			return idx
		}
		log.Warn("dataset_postgres_unavailable", "err", err)
	}

	recs, err := seed()
	if err != nil {
		log.Warn("dataset_unavailable", "file", cfg.DatasetCSV, "err", err)
		return nil
	}
	idx, err := dataset.NewIndex(recs)
	if err != nil {
		log.Warn("dataset_unavailable", "file", cfg.DatasetCSV, "err", err)
		return nil
	}
	log.Info("dataset_loaded", "source", "csv", "zips", idx.Len())
	return idx
}

func loadPostgres(ctx context.Context, url string, seed func() ([]dataset.Record, error)) (*dataset.Index, error) {
	pool, err := dataset.Connect(ctx, url)
	if err != nil {
		return nil, err
	}
	defer pool.Close()
	return dataset.NewPostgresStore(pool).LoadIndex(ctx, seed)
}

func serveMetrics(ctx context.Context, addr string, done <-chan struct{}) error {
	srv := &http.Server{Addr: addr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		select {
		case <-ctx.Done():
		case <-done:
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.L().Warn("metrics_shutdown_error", "err", err)
		}
	}()
	logger.L().Info("metrics_listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
