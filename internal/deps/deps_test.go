package deps

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Path != present {
		t.Fatalf("expected resolved path %q, got %q", present, results[0].Path)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}

	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
}

func TestCheckBinariesUnconfigured(t *testing.T) {
	results := CheckBinaries([]Requirement{{Name: "yt-dlp", Command: "  "}})
	if results[0].Available || results[0].Detail != "command not configured" {
		t.Fatalf("unexpected status %#v", results[0])
	}
}

func TestMissingIgnoresOptional(t *testing.T) {
	statuses := []Status{
		{Name: "FFmpeg", Available: true},
		{Name: "yt-dlp", Detail: `binary "yt-dlp" not found`},
		{Name: "uvx", Optional: true, Detail: `binary "uvx" not found`},
	}
	missing := Missing(statuses)
	if len(missing) != 1 || missing[0].Name != "yt-dlp" {
		t.Fatalf("unexpected missing list %#v", missing)
	}
	if got := Describe(missing); !strings.Contains(got, `yt-dlp (binary "yt-dlp" not found)`) {
		t.Fatalf("unexpected description %q", got)
	}
}
