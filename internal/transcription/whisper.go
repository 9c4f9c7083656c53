package transcription

import (
	"context"
	"strconv"
	"strings"

	"video2sub/internal/language"
	"video2sub/internal/services"
	"video2sub/internal/subtitles"
)

// WhisperEngine runs the openai-whisper command-line tool.
type WhisperEngine struct {
	Binary  string
	Device  string
	Threads int
	Runner  services.CommandRunner
}

func (e *WhisperEngine) Name() string { return "whisper" }

// Transcribe runs whisper with JSON output into the work directory and parses it.
func (e *WhisperEngine) Transcribe(ctx context.Context, req EngineRequest) (subtitles.Transcript, error) {
	cmd := services.Command{
		Name:   e.binary(),
		Args:   e.buildArgs(req),
		Stdout: req.Output,
		Stderr: req.Output,
	}
	if _, err := e.Runner.Run(ctx, cmd); err != nil {
		return subtitles.Transcript{}, err
	}
	return loadEngineOutput(req.WorkDir, req.AudioPath)
}

func (e *WhisperEngine) binary() string {
	if name := strings.TrimSpace(e.Binary); name != "" {
		return name
	}
	return "whisper"
}

func (e *WhisperEngine) buildArgs(req EngineRequest) []string {
	args := []string{
		req.AudioPath,
		"--model", req.Model,
		"--task", "transcribe",
		"--output_format", "json",
		"--output_dir", req.WorkDir,
	}
	if lang := language.ToISO2(req.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	verbose := "False"
	if req.Output != nil {
		verbose = "True"
	}
	args = append(args, "--verbose", verbose)
	if e.Device != "" {
		args = append(args, "--device", e.Device)
	}
	// half precision only works on GPU; whisper warns and falls back otherwise
	if e.Device != "cuda" {
		args = append(args, "--fp16", "False")
	}
	if e.Threads > 0 {
		args = append(args, "--threads", strconv.Itoa(e.Threads))
	}
	return args
}
