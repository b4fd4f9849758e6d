package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"":      zerolog.WarnLevel,
		"debug": zerolog.DebugLevel,
		"INFO":  zerolog.InfoLevel,
		"error": zerolog.ErrorLevel,
		"bogus": zerolog.WarnLevel,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "warn", false)

	log.Info("hidden", map[string]interface{}{"k": "v"})
	log.Warn("shown", map[string]interface{}{"address": "a.example:8000"})
	log.Error("failed", errors.New("boom"), nil)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line should be filtered at warn level: %s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "a.example:8000") {
		t.Fatalf("warn line missing: %s", out)
	}
	if !strings.Contains(out, "boom") {
		t.Fatalf("error cause missing: %s", out)
	}
}

func TestVerboseForcesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, "error", true)
	log.Debug("probe", nil)
	if !strings.Contains(buf.String(), "probe") {
		t.Fatalf("expected debug output, got %q", buf.String())
	}
}
