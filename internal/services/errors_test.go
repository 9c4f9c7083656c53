package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"video2sub/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "extract", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"extract", "ffmpeg", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarkerAndDetail(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, services.ExitOK},
		{"unsupported", services.Wrap(services.ErrUnsupportedInput, "classify", "", "notes.pdf", nil), services.ExitUsage},
		{"validation", services.Wrap(services.ErrValidation, "options", "", "bad format", nil), services.ExitUsage},
		{"tool", services.Wrap(services.ErrExternalTool, "transcribe", "whisper", "failed", errors.New("exit 1")), services.ExitFailure},
		{"canceled", fmt.Errorf("download: %w", context.Canceled), services.ExitInterrupted},
		{"plain", errors.New("io"), services.ExitFailure},
	}
	for _, tt := range tests {
		if got := services.ExitCode(tt.err); got != tt.want {
			t.Fatalf("%s: ExitCode = %d, want %d", tt.name, got, tt.want)
		}
	}
}
