package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"video2sub/internal/testsupport"
)

type cliTestEnv struct {
	dir        string
	configPath string
	tools      *testsupport.FakeTools
}

const testConfig = `[defaults]
language = "en"
model = "tiny"
output = "txt"

[download]
min_free_mib = 0

[logging]
level = "error"
`

// setupCLITestEnv writes a settings file, puts stub tools on PATH for the
// preflight lookups, and runs every external tool through FakeTools.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.toml")
	if err := os.WriteFile(configPath, []byte(testConfig), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	binDir := filepath.Join(dir, "bin")
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		t.Fatalf("mkdir bin: %v", err)
	}
	for _, name := range []string{"ffmpeg", "ffprobe", "whisper", "uvx", "yt-dlp"} {
		if err := os.WriteFile(filepath.Join(binDir, name), []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
			t.Fatalf("write stub %s: %v", name, err)
		}
	}
	t.Setenv("PATH", binDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	t.Setenv("VIDEO2SUB_PROXY", "")
	t.Chdir(dir)

	return &cliTestEnv{dir: dir, configPath: configPath, tools: testsupport.NewFakeTools()}
}

func runCLI(t *testing.T, env *cliTestEnv, args ...string) (string, string, error) {
	t.Helper()
	ctx := newCommandContext()
	ctx.runner = env.tools
	cmd := newRootCommandWithContext(ctx)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if env.configPath != "" {
		flags = append(flags, "--config", env.configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
