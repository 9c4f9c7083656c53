package transcription

import (
	"context"
	"os"
	"strings"

	"video2sub/internal/language"
	"video2sub/internal/services"
	"video2sub/internal/subtitles"
)

// WhisperX runtime constants.
const (
	CUDAIndexURL      = "https://download.pytorch.org/whl/cu128"
	PypiIndexURL      = "https://pypi.org/simple"
	BatchSize         = "4"
	ChunkSize         = "15"
	VADOnset          = "0.08"
	VADOffset         = "0.07"
	BeamSize          = "10"
	BestOf            = "10"
	Temperature       = "0.0"
	Patience          = "1.0"
	SegmentResolution = "sentence"
	CPUComputeType    = "float32"
	VADMethodPyannote = "pyannote"
	VADMethodSilero   = "silero"
)

// WhisperXEngine runs whisperx through uvx so no Python environment has to be
// managed by hand.
type WhisperXEngine struct {
	UVX       string
	Device    string
	VADMethod string
	HFToken   string
	Runner    services.CommandRunner
}

func (e *WhisperXEngine) Name() string { return "whisperx" }

// Transcribe runs whisperx with JSON output into the work directory and parses it.
func (e *WhisperXEngine) Transcribe(ctx context.Context, req EngineRequest) (subtitles.Transcript, error) {
	cmd := services.Command{
		Name:   e.binary(),
		Args:   e.buildArgs(req),
		Stdout: req.Output,
		Stderr: req.Output,
	}
	// Torch 2.6 changed torch.load default to weights_only=true, breaking WhisperX/pyannote.
	if os.Getenv("TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD") == "" {
		cmd.Env = append(os.Environ(), "TORCH_FORCE_NO_WEIGHTS_ONLY_LOAD=1")
	}
	if _, err := e.Runner.Run(ctx, cmd); err != nil {
		return subtitles.Transcript{}, err
	}
	transcript, err := loadEngineOutput(req.WorkDir, req.AudioPath)
	if err != nil {
		return subtitles.Transcript{}, err
	}
	if transcript.Language == "" && req.Language != language.Auto {
		transcript.Language = req.Language
	}
	return transcript, nil
}

func (e *WhisperXEngine) binary() string {
	if name := strings.TrimSpace(e.UVX); name != "" {
		return name
	}
	return "uvx"
}

func (e *WhisperXEngine) cuda() bool {
	return e.Device == "cuda"
}

func (e *WhisperXEngine) buildArgs(req EngineRequest) []string {
	args := make([]string, 0, 40)

	if e.cuda() {
		args = append(args,
			"--index-url", CUDAIndexURL,
			"--extra-index-url", PypiIndexURL,
		)
	} else {
		args = append(args, "--index-url", PypiIndexURL)
	}

	args = append(args,
		"whisperx",
		req.AudioPath,
		"--model", req.Model,
		"--batch_size", BatchSize,
		"--output_dir", req.WorkDir,
		"--output_format", "json",
		"--segment_resolution", SegmentResolution,
		"--chunk_size", ChunkSize,
		"--vad_onset", VADOnset,
		"--vad_offset", VADOffset,
		"--beam_size", BeamSize,
		"--best_of", BestOf,
		"--temperature", Temperature,
		"--patience", Patience,
	)

	vadMethod := e.VADMethod
	if vadMethod == "" {
		vadMethod = VADMethodSilero
	}
	args = append(args, "--vad_method", vadMethod)
	if vadMethod == VADMethodPyannote && e.HFToken != "" {
		args = append(args, "--hf_token", e.HFToken)
	}

	if lang := language.ToISO2(req.Language); lang != "" {
		args = append(args, "--language", lang)
	}

	if e.cuda() {
		args = append(args, "--device", "cuda")
	} else {
		args = append(args, "--device", "cpu", "--compute_type", CPUComputeType)
	}

	return args
}
