package config

import (
	"testing"
	"time"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"TILE_URL", "TILE_RATE", "COMMAND_BUFFER", "FRAME_BUFFER", "FRAME_INTERVAL", "REDIS_DB"} {
		t.Setenv(k, "")
	}
	c := FromEnv()
	if c.TileURL != DefaultTileURL {
		t.Errorf("TileURL = %q", c.TileURL)
	}
	if c.CommandBuffer != 999 || c.FrameBuffer != 10 {
		t.Errorf("buffers = %d/%d", c.CommandBuffer, c.FrameBuffer)
	}
	if c.FrameInterval != 16*time.Millisecond {
		t.Errorf("FrameInterval = %v", c.FrameInterval)
	}
	if c.TileRate != 2 {
		t.Errorf("TileRate = %v", c.TileRate)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TILE_URL", "http://localhost/{z}/{x}/{y}.png")
	t.Setenv("TILE_RATE", "0.5")
	t.Setenv("COMMAND_BUFFER", "5")
	t.Setenv("FRAME_INTERVAL", "40ms")
	t.Setenv("REDIS_DB", "nope")

	c := FromEnv()
	if c.TileURL != "http://localhost/{z}/{x}/{y}.png" {
		t.Errorf("TileURL = %q", c.TileURL)
	}
	if c.TileRate != 0.5 {
		t.Errorf("TileRate = %v", c.TileRate)
	}
	if c.CommandBuffer != 5 {
		t.Errorf("CommandBuffer = %d", c.CommandBuffer)
	}
	if c.FrameInterval != 40*time.Millisecond {
		t.Errorf("FrameInterval = %v", c.FrameInterval)
	}
	if c.RedisDB != 0 {
		t.Errorf("malformed REDIS_DB should fall back to 0, got %d", c.RedisDB)
	}
}
