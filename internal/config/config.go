// Package config reads runtime settings from the environment, after
// loading an optional .env file.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const DefaultTileURL = "https://tile.openstreetmap.org/{z}/{x}/{y}.png"

type Config struct {
	TileURL       string
	TileUserAgent string
	TileRate      float64
	TileWorkers   int
	TileCacheSize int

	RedisAddr string
	RedisPass string
	RedisDB   int

	DatasetCSV  string
	DatabaseURL string
	ModelFile   string
	InferURL    string

	MetricsAddr string

	CommandBuffer int
	FrameBuffer   int
	FrameInterval time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads the process environment only.
func FromEnv() Config {
	return Config{
		TileURL:       getEnv("TILE_URL", DefaultTileURL),
		TileUserAgent: getEnv("TILE_USER_AGENT", "ziplocator/1.0 (+https://github.com/Nxllpointer/ziplocator)"),
		TileRate:      getFloat("TILE_RATE", 2),
		TileWorkers:   getInt("TILE_WORKERS", 4),
		TileCacheSize: getInt("TILE_CACHE_SIZE", 512),

		RedisAddr: os.Getenv("REDIS_ADDR"),
		RedisPass: os.Getenv("REDIS_PASS"),
		RedisDB:   getInt("REDIS_DB", 0),

		DatasetCSV:  getEnv("DATASET_CSV", "uszips.csv"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		ModelFile:   getEnv("MODEL_FILE", "learn/model.json"),
		InferURL:    os.Getenv("INFER_URL"),

		MetricsAddr: os.Getenv("METRICS_ADDR"),

		CommandBuffer: getInt("COMMAND_BUFFER", 999),
		FrameBuffer:   getInt("FRAME_BUFFER", 10),
		FrameInterval: getDuration("FRAME_INTERVAL", 16*time.Millisecond),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Malformed or negative numbers fall back to the default.
func getInt(key string, fallback int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil && n >= 0 {
		return n
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil && f > 0 {
		return f
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}
