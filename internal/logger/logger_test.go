package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestSetupWriterHonoursLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "")

	var buf bytes.Buffer
	l := SetupWriter(&buf)
	l.Info("hidden")
	l.Warn("shown", "k", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "k=1") {
		t.Errorf("warn line missing: %q", out)
	}
	if L() != l {
		t.Error("L should return the logger built by SetupWriter")
	}
}

func TestSetupWriterJSON(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("LOG_FORMAT", "json")

	var buf bytes.Buffer
	SetupWriter(&buf).Info("tile_loaded", "key", "1/2/3")

	if !strings.HasPrefix(buf.String(), "{") || !strings.Contains(buf.String(), `"key":"1/2/3"`) {
		t.Errorf("expected json output, got %q", buf.String())
	}
}
