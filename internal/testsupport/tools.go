package testsupport

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"video2sub/internal/services"
)

// DefaultTranscriptJSON is the whisper-style JSON FakeTools writes by default.
const DefaultTranscriptJSON = `{"text":"Hello world.","language":"en","segments":[` +
	`{"id":0,"start":0.0,"end":1.5,"text":" Hello"},` +
	`{"id":1,"start":1.5,"end":3.0,"text":" world."}]}`

// FakeTools imitates ffprobe, ffmpeg, whisper, uvx whisperx and yt-dlp by
// writing the files each tool would produce. Tools are recognized by the base
// name of the command.
type FakeTools struct {
	// AudioStreams is the number of audio streams ffprobe reports.
	AudioStreams int
	// TranscriptJSON is written by the transcription engine.
	TranscriptJSON string
	// VideoInfoJSON is printed by yt-dlp --dump-single-json.
	VideoInfoJSON string
	// SubtitleSRT is written for native subtitle downloads; empty writes nothing.
	SubtitleSRT string
	// AudioTitle names the file yt-dlp writes for audio downloads.
	AudioTitle string
	// Fail makes the named tool return the error.
	Fail map[string]error

	mu    sync.Mutex
	calls []services.Command
}

// NewFakeTools returns tools that succeed with one audio stream and the
// default transcript.
func NewFakeTools() *FakeTools {
	return &FakeTools{
		AudioStreams:   1,
		TranscriptJSON: DefaultTranscriptJSON,
		AudioTitle:     "untitled",
		Fail:           map[string]error{},
	}
}

// Calls returns the commands run so far, optionally filtered by tool name.
func (f *FakeTools) Calls(tool string) []services.Command {
	f.mu.Lock()
	defer f.mu.Unlock()
	if tool == "" {
		return slices.Clone(f.calls)
	}
	var out []services.Command
	for _, cmd := range f.calls {
		if toolName(cmd) == tool {
			out = append(out, cmd)
		}
	}
	return out
}

// Run implements services.CommandRunner.
func (f *FakeTools) Run(ctx context.Context, cmd services.Command) (services.CommandResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, cmd)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return services.CommandResult{ExitCode: -1}, err
	}
	tool := toolName(cmd)
	if err := f.Fail[tool]; err != nil {
		return services.CommandResult{ExitCode: 1}, err
	}
	if slices.Contains(cmd.Args, "-version") {
		return services.CommandResult{Stdout: []byte(tool + " version 7.1-fake Copyright (c) the FFmpeg developers\n")}, nil
	}
	switch tool {
	case "ffprobe":
		return services.CommandResult{Stdout: []byte(f.ffprobeJSON())}, nil
	case "ffmpeg":
		return services.CommandResult{}, writeToolOutput(cmd.Args[len(cmd.Args)-1], "ID3fake-mp3")
	case "whisper", "whisperx":
		return services.CommandResult{}, f.writeTranscript(cmd.Args)
	case "yt-dlp":
		return f.runYtDlp(cmd.Args)
	default:
		return services.CommandResult{ExitCode: 127}, fmt.Errorf("%s: command not found", cmd.Name)
	}
}

// toolName maps "uvx ... whisperx" to whisperx; everything else uses the
// command's base name.
func toolName(cmd services.Command) string {
	name := filepath.Base(cmd.Name)
	if name == "uvx" && slices.Contains(cmd.Args, "whisperx") {
		return "whisperx"
	}
	return name
}

func (f *FakeTools) ffprobeJSON() string {
	streams := []string{`{"index":0,"codec_type":"video","codec_name":"h264"}`}
	for i := 0; i < f.AudioStreams; i++ {
		streams = append(streams, fmt.Sprintf(`{"index":%d,"codec_type":"audio","codec_name":"aac","channels":2}`, i+1))
	}
	return `{"streams":[` + strings.Join(streams, ",") + `],"format":{"duration":"12.5"}}`
}

func (f *FakeTools) writeTranscript(args []string) error {
	outDir := flagValue(args, "--output_dir")
	if outDir == "" {
		return fmt.Errorf("whisper: missing --output_dir")
	}
	var audio string
	for _, arg := range args {
		ext := strings.ToLower(filepath.Ext(arg))
		if ext == ".mp3" || ext == ".wav" || ext == ".m4a" || ext == ".flac" || ext == ".aac" || ext == ".ogg" || ext == ".opus" {
			audio = arg
			break
		}
	}
	if audio == "" {
		return fmt.Errorf("whisper: no audio argument")
	}
	base := strings.TrimSuffix(filepath.Base(audio), filepath.Ext(audio))
	return writeToolOutput(filepath.Join(outDir, base+".json"), f.TranscriptJSON)
}

func (f *FakeTools) runYtDlp(args []string) (services.CommandResult, error) {
	template := flagValue(args, "-o")
	switch {
	case slices.Contains(args, "--dump-single-json"):
		return services.CommandResult{Stdout: []byte(f.VideoInfoJSON)}, nil
	case slices.Contains(args, "--convert-subs"):
		if f.SubtitleSRT == "" {
			return services.CommandResult{}, nil
		}
		key := flagValue(args, "--sub-langs")
		return services.CommandResult{}, writeToolOutput(filepath.Join(filepath.Dir(template), "vid."+key+".srt"), f.SubtitleSRT)
	case slices.Contains(args, "-x"):
		format := flagValue(args, "--audio-format")
		return services.CommandResult{}, writeToolOutput(filepath.Join(filepath.Dir(template), f.AudioTitle+"."+format), "ID3fake-download")
	default:
		return services.CommandResult{Stdout: []byte("2025.01.15\n")}, nil
	}
}

func flagValue(args []string, flag string) string {
	idx := slices.Index(args, flag)
	if idx < 0 || idx+1 >= len(args) {
		return ""
	}
	return args[idx+1]
}

func writeToolOutput(path, body string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(body), 0o644)
}
