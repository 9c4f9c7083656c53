package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"video2sub/internal/services"
	"video2sub/internal/testsupport"
)

func TestConvertAudioThenSkip(t *testing.T) {
	env := setupCLITestEnv(t)
	audio := filepath.Join(env.dir, "talk.wav")
	testsupport.WriteMedia(t, audio, 32)

	out, _, err := runCLI(t, env, audio, "--output", "srt")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	requireContains(t, out, "talk.srt has been generated.")
	calls := env.tools.Calls("whisper")
	if len(calls) != 1 {
		t.Fatalf("expected one whisper call, got %d", len(calls))
	}
	if !slices.Contains(calls[0].Args, "tiny") {
		t.Fatalf("expected configured model in %v", calls[0].Args)
	}

	out, _, err = runCLI(t, env, audio, "--output", "srt")
	if err != nil {
		t.Fatalf("second convert: %v", err)
	}
	requireContains(t, out, "already exists (use --force to regenerate)")
	if len(env.tools.Calls("whisper")) != 1 {
		t.Fatal("expected existing subtitle to be reused")
	}

	if _, _, err := runCLI(t, env, audio, "--output", "srt", "--force", "--model", "base"); err != nil {
		t.Fatalf("forced convert: %v", err)
	}
	if len(env.tools.Calls("whisper")) != 2 {
		t.Fatal("expected --force to transcribe again")
	}
}

func TestConvertVideoIntoOutputDir(t *testing.T) {
	env := setupCLITestEnv(t)
	video := filepath.Join(env.dir, "clip.mp4")
	testsupport.WriteMedia(t, video, 64)
	outDir := filepath.Join(env.dir, "subs")

	if _, _, err := runCLI(t, env, video, "-d", outDir, "-o", "vtt"); err != nil {
		t.Fatalf("convert: %v", err)
	}
	for _, name := range []string{"clip.mp3", "clip.vtt"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Fatalf("expected %s in output dir: %v", name, err)
		}
	}
}

func TestConvertURLUsesNativeSubtitle(t *testing.T) {
	env := setupCLITestEnv(t)
	env.tools.VideoInfoJSON = `{"id":"vid","title":"Demo","_filename":"Demo.mp4","requested_subtitles":{"en":{"ext":"vtt"}},"subtitles":{"en":[{"ext":"vtt"}]}}`
	env.tools.SubtitleSRT = "1\n00:00:00,000 --> 00:00:01,000\nHi there\n"

	out, _, err := runCLI(t, env, "https://example.com/watch?v=vid")
	if err != nil {
		t.Fatalf("convert url: %v", err)
	}
	requireContains(t, out, "Demo.txt has been generated from the published subtitle.")
	requireContains(t, testsupport.ReadText(t, filepath.Join(env.dir, "Demo.txt")), "Hi there")
}

func TestConvertURLFailureExitsNonZero(t *testing.T) {
	env := setupCLITestEnv(t)
	env.tools.Fail["yt-dlp"] = errors.New("ERROR: Video unavailable")

	_, _, err := runCLI(t, env, "https://example.com/watch?v=gone")
	if err == nil {
		t.Fatal("expected url failure")
	}
	if services.ExitCode(err) != services.ExitFailure {
		t.Fatalf("expected exit code 1, got %d (%v)", services.ExitCode(err), err)
	}
}

func TestConvertRejectsUnsupportedInput(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env, "notes.pdf")
	if !errors.Is(err, services.ErrUnsupportedInput) || services.ExitCode(err) != services.ExitUsage {
		t.Fatalf("expected unsupported input usage error, got %v", err)
	}
	if len(env.tools.Calls("")) != 0 {
		t.Fatal("expected no tool calls")
	}
}

func TestConvertRequiresOneArgument(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env)
	if services.ExitCode(err) != services.ExitUsage {
		t.Fatalf("expected usage error without input, got %v", err)
	}
	_, _, err = runCLI(t, env, "a.mp4", "b.mp4")
	if services.ExitCode(err) != services.ExitUsage {
		t.Fatalf("expected usage error with two inputs, got %v", err)
	}
}

func TestConvertRejectsBadFlags(t *testing.T) {
	env := setupCLITestEnv(t)
	audio := filepath.Join(env.dir, "talk.mp3")
	testsupport.WriteMedia(t, audio, 32)

	tests := [][]string{
		{audio, "--output", "docx"},
		{audio, "--lang", "12"},
		{audio, "--proxy", "not a url"},
		{audio, "--no-such-flag"},
	}
	for _, args := range tests {
		_, _, err := runCLI(t, env, args...)
		if services.ExitCode(err) != services.ExitUsage {
			t.Fatalf("args %v: expected usage error, got %v", args, err)
		}
	}
	if len(env.tools.Calls("")) != 0 {
		t.Fatal("expected no tool calls for invalid options")
	}
}

func TestExplicitConfigMustLoad(t *testing.T) {
	env := setupCLITestEnv(t)
	env.configPath = filepath.Join(env.dir, "missing.toml")
	_, _, err := runCLI(t, env, "talk.mp3")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}

func TestBrokenDiscoveredConfigFallsBack(t *testing.T) {
	env := setupCLITestEnv(t)
	testsupport.WriteText(t, filepath.Join(env.dir, "video2sub.toml"), "[defaults\n")
	env.configPath = ""
	t.Setenv("HOME", env.dir)

	out, stderr, err := runCLI(t, env, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, stderr, "settings file unusable")
	requireContains(t, out, "defaults.model")
}

func TestProbeJSON(t *testing.T) {
	env := setupCLITestEnv(t)
	env.tools.VideoInfoJSON = `{"id":"vid","title":"Demo","_filename":"Demo.mp4",
	  "requested_subtitles":{"en":{"ext":"vtt"}},
	  "subtitles":{"en":[{"ext":"vtt","name":"English"}],"de":[{"ext":"srt"}]},
	  "automatic_captions":{"fr":[{"ext":"vtt"}]}}`

	out, _, err := runCLI(t, env, "probe", "https://example.com/watch?v=vid", "--json")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	var report probeReport
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode probe json: %v (%q)", err, out)
	}
	if report.Title != "Demo" || report.Match != "en" || report.FileBase != "Demo" {
		t.Fatalf("unexpected report %+v", report)
	}
	if len(report.Tracks) != 3 || !report.Tracks[2].Automatic || report.Tracks[0].Language != "German" {
		t.Fatalf("unexpected tracks %+v", report.Tracks)
	}
}

func TestProbeTable(t *testing.T) {
	env := setupCLITestEnv(t)
	env.tools.VideoInfoJSON = `{"id":"vid","title":"Demo","subtitles":{}}`

	out, _, err := runCLI(t, env, "probe", "https://example.com/watch?v=vid", "--lang", "de")
	if err != nil {
		t.Fatalf("probe: %v", err)
	}
	requireContains(t, out, "No subtitle tracks published")
	requireContains(t, out, "No subtitle matches --lang de")
}

func TestProbeRejectsLocalPath(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, env, "probe", "clip.mp4")
	if !errors.Is(err, services.ErrUnsupportedInput) {
		t.Fatalf("expected unsupported input, got %v", err)
	}
}
