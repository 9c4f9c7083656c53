package services_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"video2sub/internal/services"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tool")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestExecRunnerCapturesOutput(t *testing.T) {
	script := writeScript(t, `echo "out $1"; echo "err" >&2`)
	var live bytes.Buffer

	result, err := services.ExecRunner{}.Run(context.Background(), services.Command{
		Name:   script,
		Args:   []string{"hello"},
		Stdout: &live,
	})
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := strings.TrimSpace(string(result.Stdout)); got != "out hello" {
		t.Fatalf("unexpected stdout %q", got)
	}
	if got := strings.TrimSpace(string(result.Stderr)); got != "err" {
		t.Fatalf("unexpected stderr %q", got)
	}
	if !strings.Contains(live.String(), "out hello") {
		t.Fatalf("expected live writer to receive stdout, got %q", live.String())
	}
}

func TestExecRunnerReportsExitCodeAndStderr(t *testing.T) {
	script := writeScript(t, `echo "bad things" >&2; exit 3`)

	result, err := services.ExecRunner{}.Run(context.Background(), services.Command{Name: script})
	if err == nil {
		t.Fatal("expected error for non-zero exit")
	}
	if result.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", result.ExitCode)
	}
	if !strings.Contains(err.Error(), "bad things") {
		t.Fatalf("expected stderr in error, got %v", err)
	}
}

func TestCommandString(t *testing.T) {
	cmd := services.Command{Name: "ffmpeg", Args: []string{"-i", "clip.mp4"}}
	if cmd.String() != "ffmpeg -i clip.mp4" {
		t.Fatalf("unexpected command string %q", cmd.String())
	}
}

func TestExecRunnerTimeout(t *testing.T) {
	script := writeScript(t, `exec sleep 5`)

	runner := services.ExecRunner{Timeout: 100 * time.Millisecond}
	_, err := runner.Run(context.Background(), services.Command{Name: script})
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
}

func TestExecRunnerCancelled(t *testing.T) {
	script := writeScript(t, `exec sleep 5`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := services.ExecRunner{}.Run(ctx, services.Command{Name: script})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if services.ExitCode(err) != services.ExitInterrupted {
		t.Fatalf("unexpected exit code %d", services.ExitCode(err))
	}
}
