package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"video2sub/internal/services"
)

type fakeRunner struct {
	probeJSON string
	ffmpegErr error
	calls     []services.Command
}

func (f *fakeRunner) Run(_ context.Context, cmd services.Command) (services.CommandResult, error) {
	f.calls = append(f.calls, cmd)
	switch cmd.Name {
	case "ffprobe":
		return services.CommandResult{Stdout: []byte(f.probeJSON)}, nil
	case "ffmpeg":
		if f.ffmpegErr != nil {
			return services.CommandResult{ExitCode: 1}, f.ffmpegErr
		}
		out := cmd.Args[len(cmd.Args)-1]
		return services.CommandResult{}, os.WriteFile(out, []byte("mp3 data"), 0o644)
	}
	return services.CommandResult{}, errors.New("unexpected command " + cmd.Name)
}

func (f *fakeRunner) names() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Name)
	}
	return out
}

const oneAudioStream = `{"streams":[{"index":0,"codec_type":"video"},{"index":1,"codec_type":"audio","codec_name":"aac","channels":2}],"format":{"duration":"12.0"}}`

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestExtractWritesSiblingMP3(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	touch(t, video)
	runner := &fakeRunner{probeJSON: oneAudioStream}
	extractor := NewExtractor("ffmpeg", "ffprobe", runner, nil)

	outcome, err := extractor.Extract(context.Background(), Request{VideoPath: video, Language: "en"})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	want := filepath.Join(dir, "clip.mp3")
	if outcome.AudioPath != want || outcome.Skipped {
		t.Fatalf("unexpected outcome %+v", outcome)
	}
	data, err := os.ReadFile(want)
	if err != nil || string(data) != "mp3 data" {
		t.Fatalf("expected extracted mp3, got %q (%v)", data, err)
	}
	if _, err := os.Stat(want + ".part"); !os.IsNotExist(err) {
		t.Fatal("expected partial file to be gone")
	}

	ffmpegArgs := runner.calls[1].Args
	for _, want := range []string{"-vn", "libmp3lame", "-q:a"} {
		if !slices.Contains(ffmpegArgs, want) {
			t.Fatalf("ffmpeg args %v missing %q", ffmpegArgs, want)
		}
	}
	if slices.Contains(ffmpegArgs, "-map") {
		t.Fatalf("single audio stream should not be mapped: %v", ffmpegArgs)
	}
}

func TestExtractSkipsExistingUnlessForced(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	touch(t, video)
	touch(t, filepath.Join(dir, "clip.mp3"))

	runner := &fakeRunner{probeJSON: oneAudioStream}
	extractor := NewExtractor("ffmpeg", "ffprobe", runner, nil)
	outcome, err := extractor.Extract(context.Background(), Request{VideoPath: video})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if !outcome.Skipped || len(runner.calls) != 0 {
		t.Fatalf("expected skip without tool calls, got %+v calls=%v", outcome, runner.names())
	}
	if outcome.String() != filepath.Join(dir, "clip.mp3")+" (existing)" {
		t.Fatalf("unexpected skipped outcome label %q", outcome.String())
	}

	outcome, err = extractor.Extract(context.Background(), Request{VideoPath: video, Force: true})
	if err != nil {
		t.Fatalf("forced Extract returned error: %v", err)
	}
	if outcome.Skipped || !slices.Equal(runner.names(), []string{"ffprobe", "ffmpeg"}) {
		t.Fatalf("expected forced extraction, got %+v calls=%v", outcome, runner.names())
	}
	if outcome.String() != filepath.Join(dir, "clip.mp3") {
		t.Fatalf("unexpected outcome label %q", outcome.String())
	}
}

func TestExtractOutputDir(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	video := filepath.Join(dir, "talk.MOV")
	touch(t, video)
	extractor := NewExtractor("ffmpeg", "ffprobe", &fakeRunner{probeJSON: oneAudioStream}, nil)

	outcome, err := extractor.Extract(context.Background(), Request{VideoPath: video, OutputDir: outDir})
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if outcome.AudioPath != filepath.Join(outDir, "talk.mp3") {
		t.Fatalf("unexpected audio path %q", outcome.AudioPath)
	}
}

func TestExtractMapsSelectedTrack(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mkv")
	touch(t, video)
	runner := &fakeRunner{probeJSON: `{"streams":[
		{"index":0,"codec_type":"video"},
		{"index":1,"codec_type":"audio","tags":{"language":"fre"}},
		{"index":2,"codec_type":"audio","tags":{"language":"eng"}}]}`}
	extractor := NewExtractor("ffmpeg", "ffprobe", runner, nil)

	if _, err := extractor.Extract(context.Background(), Request{VideoPath: video, Language: "en"}); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	args := runner.calls[1].Args
	idx := slices.Index(args, "-map")
	if idx < 0 || args[idx+1] != "0:a:1" {
		t.Fatalf("expected -map 0:a:1, got %v", args)
	}
}

func TestExtractRejectsVideoWithoutAudio(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "silent.mp4")
	touch(t, video)
	runner := &fakeRunner{probeJSON: `{"streams":[{"index":0,"codec_type":"video"}]}`}
	extractor := NewExtractor("ffmpeg", "ffprobe", runner, nil)

	_, err := extractor.Extract(context.Background(), Request{VideoPath: video})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if slices.Contains(runner.names(), "ffmpeg") {
		t.Fatal("ffmpeg must not run for a video without audio")
	}
}

func TestExtractFailures(t *testing.T) {
	dir := t.TempDir()
	extractor := NewExtractor("ffmpeg", "ffprobe", &fakeRunner{probeJSON: oneAudioStream}, nil)
	if _, err := extractor.Extract(context.Background(), Request{VideoPath: filepath.Join(dir, "missing.mp4")}); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found error, got %v", err)
	}

	video := filepath.Join(dir, "clip.mp4")
	touch(t, video)
	failing := NewExtractor("ffmpeg", "ffprobe", &fakeRunner{probeJSON: oneAudioStream, ffmpegErr: errors.New("exit status 1")}, nil)
	_, err := failing.Extract(context.Background(), Request{VideoPath: video})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(dir, "clip.mp3")); !os.IsNotExist(statErr) {
		t.Fatal("failed extraction must not leave clip.mp3 behind")
	}
}
