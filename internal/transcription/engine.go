package transcription

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"video2sub/internal/config"
	"video2sub/internal/services"
	"video2sub/internal/subtitles"
)

// EngineRequest is one engine invocation.
type EngineRequest struct {
	AudioPath string
	// Language is an ISO 639-1 code or "auto".
	Language string
	Model    string
	// WorkDir is a private scratch directory the engine may write into.
	WorkDir string
	// Output, when set, receives the engine's live console output.
	Output io.Writer
}

// Engine produces a transcript from an audio file.
type Engine interface {
	Name() string
	Transcribe(ctx context.Context, req EngineRequest) (subtitles.Transcript, error)
}

// NewEngine returns the engine selected by transcriber.engine.
func NewEngine(cfg *config.Config, runner services.CommandRunner) (Engine, error) {
	if runner == nil {
		runner = services.ExecRunner{Timeout: cfg.ToolTimeout()}
	}
	switch cfg.Transcriber.Engine {
	case config.EngineWhisper, "":
		return &WhisperEngine{
			Binary:  cfg.Tools.Whisper,
			Device:  cfg.Transcriber.Device,
			Threads: cfg.Transcriber.Threads,
			Runner:  runner,
		}, nil
	case config.EngineWhisperX:
		return &WhisperXEngine{
			UVX:       cfg.Tools.UVX,
			Device:    cfg.Transcriber.Device,
			VADMethod: cfg.Transcriber.VADMethod,
			HFToken:   cfg.Transcriber.HFToken,
			Runner:    runner,
		}, nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "transcribe", "engine",
			fmt.Sprintf("unknown transcription engine %q", cfg.Transcriber.Engine), nil)
	}
}

// enginePayload is the JSON document both whisper and whisperx write.
type enginePayload struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		ID    int     `json:"id"`
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

// ParseEngineJSON decodes whisper/whisperx JSON output into a Transcript.
func ParseEngineJSON(data []byte) (subtitles.Transcript, error) {
	var payload enginePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return subtitles.Transcript{}, fmt.Errorf("parse transcript json: %w", err)
	}
	transcript := subtitles.Transcript{
		Language: strings.TrimSpace(payload.Language),
		Text:     strings.TrimSpace(payload.Text),
		Segments: make([]subtitles.Segment, 0, len(payload.Segments)),
	}
	for i, seg := range payload.Segments {
		transcript.Segments = append(transcript.Segments, subtitles.Segment{
			ID:    i,
			Start: subtitles.SecondsToDuration(seg.Start),
			End:   subtitles.SecondsToDuration(seg.End),
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	return transcript, nil
}

// loadEngineOutput reads <workDir>/<audio base>.json.
func loadEngineOutput(workDir, audioPath string) (subtitles.Transcript, error) {
	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonPath := filepath.Join(workDir, base+".json")
	data, err := os.ReadFile(jsonPath)
	if err != nil {
		return subtitles.Transcript{}, fmt.Errorf("read engine output: %w", err)
	}
	return ParseEngineJSON(data)
}
