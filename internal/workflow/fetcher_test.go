package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"video2sub/internal/config"
	"video2sub/internal/services"
	"video2sub/internal/testsupport"
	"video2sub/internal/workflow"
	"video2sub/internal/ytdlp"
)

const talkURL = "https://www.example.com/watch?v=vid"

const infoWithoutSubs = `{"id":"vid","title":"My Talk","_filename":"My Talk.webm","subtitles":{},"automatic_captions":{"en":[{"ext":"vtt"}]}}`

const infoWithEnglish = `{"id":"vid","title":"My Talk","_filename":"My Talk.webm",
  "requested_subtitles":{"en":{"ext":"vtt","url":"https://example.com/en.vtt"}},
  "subtitles":{"en":[{"ext":"vtt"}]}}`

const nativeSRT = "1\n00:00:01,000 --> 00:00:02,500\nNative line\n\n2\n00:00:03,000 --> 00:00:04,000\nSecond line\n"

func urlOptions(t *testing.T, cfg *config.Config, format string, force bool) config.JobOptions {
	t.Helper()
	outDir := t.TempDir()
	return jobOptions(t, cfg, config.Overrides{Format: ptr(format), OutputDir: &outDir, Force: force})
}

func ytdlpModes(tools *testsupport.FakeTools) []string {
	var modes []string
	for _, cmd := range tools.Calls("yt-dlp") {
		switch {
		case slices.Contains(cmd.Args, "--dump-single-json"):
			modes = append(modes, "probe")
		case slices.Contains(cmd.Args, "--convert-subs"):
			modes = append(modes, "subtitle")
		case slices.Contains(cmd.Args, "-x"):
			modes = append(modes, "audio")
		}
	}
	return modes
}

func TestFetchWithoutSubtitleDownloadsAudioAndTranscribes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tools := testsupport.NewFakeTools()
	tools.VideoInfoJSON = infoWithoutSubs
	tools.AudioTitle = "raw download"
	runner := newRunner(t, cfg, tools)
	opts := urlOptions(t, cfg, "txt", false)

	result, err := runner.Run(context.Background(), talkURL, opts)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	wantAudio := filepath.Join(opts.OutputDir, "My Talk.mp3")
	if result.AudioPath != wantAudio || result.Source != workflow.SourceTranscribed {
		t.Fatalf("unexpected result %+v", result)
	}
	if _, err := os.Stat(wantAudio); err != nil {
		t.Fatalf("expected downloaded audio: %v", err)
	}
	if result.Outputs[0] != filepath.Join(opts.OutputDir, "My Talk.txt") {
		t.Fatalf("unexpected output %v", result.Outputs)
	}
	if got := strings.Join(ytdlpModes(tools), ","); got != "probe,audio" {
		t.Fatalf("unexpected yt-dlp sequence %s", got)
	}
	if len(tools.Calls("whisper")) != 1 {
		t.Fatal("expected one transcription")
	}
	entries, _ := os.ReadDir(opts.OutputDir)
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".video2sub-") {
			t.Fatalf("scratch directory left behind: %s", entry.Name())
		}
	}
}

func TestFetchReusesDownloadedAudio(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tools := testsupport.NewFakeTools()
	tools.VideoInfoJSON = infoWithoutSubs
	runner := newRunner(t, cfg, tools)
	opts := urlOptions(t, cfg, "srt", false)
	testsupport.WriteMedia(t, filepath.Join(opts.OutputDir, "My Talk.mp3"), 16)

	result, err := runner.Run(context.Background(), talkURL, opts)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := strings.Join(ytdlpModes(tools), ","); got != "probe" {
		t.Fatalf("expected audio download to be skipped, got %s", got)
	}
	if result.Source != workflow.SourceTranscribed {
		t.Fatalf("unexpected source %s", result.Source)
	}
}

func TestFetchNativeSubtitleConvertsFormat(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tools := testsupport.NewFakeTools()
	tools.VideoInfoJSON = infoWithEnglish
	tools.SubtitleSRT = nativeSRT
	runner := newRunner(t, cfg, tools)
	opts := urlOptions(t, cfg, "vtt", false)

	result, err := runner.Run(context.Background(), talkURL, opts)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Source != workflow.SourceNativeSubtitle || result.AudioPath != "" {
		t.Fatalf("unexpected result %+v", result)
	}
	out := testsupport.ReadText(t, filepath.Join(opts.OutputDir, "My Talk.vtt"))
	if !strings.HasPrefix(out, "WEBVTT") || !strings.Contains(out, "00:01.000 --> 00:02.500") || !strings.Contains(out, "Native line") {
		t.Fatalf("unexpected vtt %q", out)
	}
	if got := strings.Join(ytdlpModes(tools), ","); got != "probe,subtitle" {
		t.Fatalf("unexpected yt-dlp sequence %s", got)
	}
	if len(tools.Calls("whisper")) != 0 {
		t.Fatal("expected no transcription when a native subtitle exists")
	}

	// second run finds the output and does not download again
	result, err = runner.Run(context.Background(), talkURL, opts)
	if err != nil {
		t.Fatalf("second Run returned error: %v", err)
	}
	if !result.Skipped || result.Source != workflow.SourceExisting {
		t.Fatalf("expected skip, got %+v", result)
	}
	if got := strings.Join(ytdlpModes(tools), ","); got != "probe,subtitle,probe" {
		t.Fatalf("unexpected yt-dlp sequence %s", got)
	}
}

func TestFetchFallsBackWhenSubtitleDownloadIsEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tools := testsupport.NewFakeTools()
	tools.VideoInfoJSON = infoWithEnglish
	runner := newRunner(t, cfg, tools)
	opts := urlOptions(t, cfg, "txt", false)

	result, err := runner.Run(context.Background(), talkURL, opts)
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Source != workflow.SourceTranscribed {
		t.Fatalf("expected transcription fallback, got %+v", result)
	}
	if got := strings.Join(ytdlpModes(tools), ","); got != "probe,subtitle,audio" {
		t.Fatalf("unexpected yt-dlp sequence %s", got)
	}
}

func TestFetchAutoLanguageTranscribes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tools := testsupport.NewFakeTools()
	tools.VideoInfoJSON = infoWithEnglish
	runner := newRunner(t, cfg, tools)
	outDir := t.TempDir()
	opts := jobOptions(t, cfg, config.Overrides{Language: ptr("auto"), OutputDir: &outDir})

	if _, err := runner.Run(context.Background(), talkURL, opts); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if got := strings.Join(ytdlpModes(tools), ","); got != "probe,audio" {
		t.Fatalf("unexpected yt-dlp sequence %s", got)
	}
	if slices.Contains(tools.Calls("whisper")[0].Args, "--language") {
		t.Fatal("expected auto language to let whisper detect")
	}
}

func TestFetchErrorsAreReturned(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tools := testsupport.NewFakeTools()
	tools.Fail["yt-dlp"] = errors.New("ERROR: Unsupported URL")
	runner := newRunner(t, cfg, tools)

	_, err := runner.Run(context.Background(), talkURL, urlOptions(t, cfg, "txt", false))
	var fetchErr *workflow.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fetchErr.Stage != workflow.FetchStageProbe || fetchErr.URL != talkURL {
		t.Fatalf("unexpected fetch error %+v", fetchErr)
	}
	if services.ExitCode(err) != services.ExitFailure {
		t.Fatalf("expected failure exit code, got %d", services.ExitCode(err))
	}
}

func TestFetchErrorsSwallowedWhenConfigured(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Behavior.SwallowURLErrors = true
	tools := testsupport.NewFakeTools()
	tools.VideoInfoJSON = infoWithoutSubs
	tools.Fail["whisper"] = errors.New("CUDA out of memory")
	runner := newRunner(t, cfg, tools)

	result, err := runner.Run(context.Background(), talkURL, urlOptions(t, cfg, "txt", false))
	if err != nil {
		t.Fatalf("expected swallowed error, got %v", err)
	}
	var fetchErr *workflow.FetchError
	if !errors.As(result.URLError, &fetchErr) || fetchErr.Stage != workflow.FetchStageTranscribe {
		t.Fatalf("expected recorded transcribe failure, got %v", result.URLError)
	}
}

func TestFetchCancellationIsNeverSwallowed(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Behavior.SwallowURLErrors = true
	runner := newRunner(t, cfg, testsupport.NewFakeTools())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, talkURL, urlOptions(t, cfg, "txt", false))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if services.ExitCode(err) != services.ExitInterrupted {
		t.Fatalf("expected interrupted exit code, got %d", services.ExitCode(err))
	}
}

func TestFetchReportsDownloadProgress(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	tools := testsupport.NewFakeTools()
	tools.VideoInfoJSON = infoWithoutSubs
	runner := newRunner(t, cfg, tools)
	runner.Progress = func(ytdlp.Progress) {}

	if _, err := runner.Run(context.Background(), talkURL, urlOptions(t, cfg, "txt", false)); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	for _, cmd := range tools.Calls("yt-dlp") {
		if slices.Contains(cmd.Args, "-x") && cmd.Stdout == nil {
			t.Fatal("expected progress tracking on the audio download")
		}
	}
}

func TestFetchWritesToWorkingDirectoryByDefault(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	cfg := testsupport.NewConfig(t)
	tools := testsupport.NewFakeTools()
	tools.VideoInfoJSON = infoWithoutSubs
	runner := newRunner(t, cfg, tools)

	result, err := runner.Run(context.Background(), talkURL, jobOptions(t, cfg, config.Overrides{}))
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if result.Outputs[0] != "My Talk.txt" {
		t.Fatalf("unexpected output %q", result.Outputs[0])
	}
	if _, err := os.Stat(filepath.Join(dir, "My Talk.txt")); err != nil {
		t.Fatalf("expected subtitle in working directory: %v", err)
	}
}
