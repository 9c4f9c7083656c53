package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"video2sub/internal/config"
	"video2sub/internal/logging"
	"video2sub/internal/services"
)

func TestConsoleLoggerWritesComponentAndFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logging.NewComponentLogger(logger, "ytdlp").Info("downloading audio", logging.String("title", "My Talk"))

	line := buf.String()
	if !strings.Contains(line, "INFO") || !strings.Contains(line, "ytdlp: downloading audio") {
		t.Fatalf("unexpected console line %q", line)
	}
	if !strings.Contains(line, `title="My Talk"`) {
		t.Fatalf("expected quoted field, got %q", line)
	}
	if strings.Contains(line, "\033[") {
		t.Fatalf("expected no color codes, got %q", line)
	}
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information, got %q", line)
	}
}

func TestConsoleLoggerColorsLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Writer: &buf, Color: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Error("boom")
	if !strings.Contains(buf.String(), "\033[31mERROR\033[0m") {
		t.Fatalf("expected red error label, got %q", buf.String())
	}
}

func TestConsoleLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Level: "warn", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("hidden")
	logger.Debug("hidden too")
	if buf.Len() != 0 {
		t.Fatalf("expected no output below warn, got %q", buf.String())
	}
	logging.WarnWithContext(logger, "subtitle missing", "subtitle_fallback")
	out := buf.String()
	for _, want := range []string{"event_type=subtitle_fallback", "error_hint=", "impact="} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in %q", want, out)
		}
	}
}

func TestJSONLoggerIncludesContextFields(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "json", Level: "debug", Writer: &buf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx := services.WithRunID(context.Background(), "run-1")
	ctx = services.WithStage(ctx, "extract")
	ctx = services.WithInputKind(ctx, "video")
	logging.WithContext(ctx, logger).Debug("ffmpeg start", logging.Error(errors.New("nope")))

	var payload map[string]any
	if err := json.Unmarshal(buf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log: %v (%q)", err, buf.String())
	}
	if payload["level"] != "debug" || payload["msg"] != "ffmpeg start" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if payload[logging.FieldRunID] != "run-1" || payload[logging.FieldStage] != "extract" || payload[logging.FieldInputKind] != "video" {
		t.Fatalf("missing context fields in %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("expected ts key in %v", payload)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestNewFromConfigVerboseForcesDebug(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Level = "error"
	logger, err := logging.NewFromConfig(&cfg, true, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	if !logger.Enabled(context.Background(), -4) {
		t.Fatal("expected debug level to be enabled when verbose")
	}
}

func TestNopLogger(t *testing.T) {
	logger := logging.NewComponentLogger(nil, "test")
	logger.Error("discarded")
	if logger.Enabled(context.Background(), 8) {
		t.Fatal("expected no-op logger to be disabled")
	}
}

func TestDurationsRenderPerFormat(t *testing.T) {
	var console bytes.Buffer
	logger, err := logging.New(logging.Options{Format: "console", Writer: &console})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("extracted", logging.Duration("elapsed", 1234567*time.Microsecond), logging.Duration("duration", 3723400*time.Millisecond))
	if !strings.Contains(console.String(), "elapsed=1.23s") || !strings.Contains(console.String(), "duration=1h2m3s") {
		t.Fatalf("unexpected console durations %q", console.String())
	}

	var jsonBuf bytes.Buffer
	logger, err = logging.New(logging.Options{Format: "json", Writer: &jsonBuf})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	logger.Info("extracted", logging.Duration("elapsed", 1500*time.Millisecond))
	var payload map[string]any
	if err := json.Unmarshal(jsonBuf.Bytes(), &payload); err != nil {
		t.Fatalf("decode json log: %v", err)
	}
	if payload["elapsed"] != 1.5 {
		t.Fatalf("expected elapsed seconds, got %v", payload["elapsed"])
	}
}
