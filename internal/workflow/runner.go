package workflow

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"video2sub/internal/config"
	"video2sub/internal/input"
	"video2sub/internal/logging"
	"video2sub/internal/media/ffmpeg"
	"video2sub/internal/preflight"
	"video2sub/internal/services"
	"video2sub/internal/transcription"
	"video2sub/internal/ytdlp"
)

// Source says where the final subtitle came from.
type Source string

const (
	SourceTranscribed    Source = "transcribed"
	SourceNativeSubtitle Source = "native-subtitle"
	SourceExisting       Source = "existing"
)

// Result summarizes one run.
type Result struct {
	Input     input.Classified
	AudioPath string
	Outputs   []string
	Skipped   bool
	Source    Source
	// URLError holds a URL failure that was reported instead of returned
	// because behavior.swallow_url_errors is set.
	URLError error
}

// Extractor converts a video to audio.
type Extractor interface {
	Extract(ctx context.Context, req ffmpeg.Request) (ffmpeg.Outcome, error)
}

// Transcriber converts audio to a subtitle file.
type Transcriber interface {
	Transcribe(ctx context.Context, req transcription.Request) (transcription.Outcome, error)
}

// PreflightFunc verifies the environment before a job of the given kind runs.
// outputDir is the directory the job writes into; empty means the working
// directory.
type PreflightFunc func(ctx context.Context, kind input.Kind, outputDir string) error

// Runner dispatches classified inputs to the extraction, transcription and
// download components.
type Runner struct {
	Extractor   Extractor
	Transcriber Transcriber
	// NewDownloader builds the yt-dlp client for a job's proxy setting.
	NewDownloader func(proxy string) Downloader
	Preflight     PreflightFunc
	Logger        *slog.Logger

	// ToolOutput receives external tool output when a job is verbose.
	ToolOutput io.Writer
	// Progress, when set, receives audio download progress for non-verbose jobs.
	Progress func(ytdlp.Progress)

	AudioFormat      string
	TitleMaxBytes    int
	SwallowURLErrors bool
}

// NewRunner wires the production components from cfg. All external tools run
// through runner.
func NewRunner(cfg *config.Config, runner services.CommandRunner, logger *slog.Logger) (*Runner, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "config", "configuration unavailable", nil)
	}
	if runner == nil {
		runner = services.ExecRunner{Timeout: cfg.ToolTimeout()}
	}
	engine, err := transcription.NewEngine(cfg, runner)
	if err != nil {
		return nil, err
	}
	return &Runner{
		Extractor:   ffmpeg.NewExtractor(cfg.Tools.FFmpeg, cfg.Tools.FFprobe, runner, logger),
		Transcriber: transcription.NewTranscriber(engine, logger),
		NewDownloader: func(proxy string) Downloader {
			return ytdlp.NewClient(cfg.Tools.YtDlp, runner, logger,
				ytdlp.WithProxy(proxy),
				ytdlp.WithFFmpeg(cfg.Tools.FFmpeg),
				ytdlp.WithAudio(cfg.Download.AudioFormat, cfg.Download.AudioQuality),
				ytdlp.WithTitleMaxBytes(cfg.Download.TitleMaxBytes),
			)
		},
		Preflight: func(ctx context.Context, kind input.Kind, outputDir string) error {
			return preflight.Ensure(ctx, cfg, kind, outputDir)
		},
		Logger:           logging.NewComponentLogger(logger, "workflow"),
		AudioFormat:      cfg.Download.AudioFormat,
		TitleMaxBytes:    cfg.Download.TitleMaxBytes,
		SwallowURLErrors: cfg.Behavior.SwallowURLErrors,
	}, nil
}

// Run classifies raw and produces its subtitle. Unsupported inputs fail with
// services.ErrUnsupportedInput before any tool runs.
func (r *Runner) Run(ctx context.Context, raw string, opts config.JobOptions) (Result, error) {
	classified, err := input.Classify(raw)
	if err != nil {
		return Result{}, err
	}
	ctx = services.WithInputKind(ctx, string(classified.Kind))
	logger := logging.WithContext(ctx, r.logger())
	logger.Debug("job options", logging.String("options", opts.Describe()))

	if r.Preflight != nil {
		if err := r.Preflight(ctx, classified.Kind, targetDir(classified, opts)); err != nil {
			return Result{Input: classified}, err
		}
	}

	started := time.Now()
	logger.Info("job started",
		logging.String(logging.FieldEventType, "job_start"),
		logging.String("input", classified.Path),
	)

	var result Result
	switch classified.Kind {
	case input.KindVideo:
		result, err = r.runVideo(ctx, classified, opts)
	case input.KindAudio:
		result, err = r.runAudio(ctx, classified, classified.Path, opts)
	case input.KindURL:
		result, err = r.runURL(ctx, classified, opts)
	default:
		err = services.Wrap(services.ErrUnsupportedInput, "workflow", "dispatch", "no pipeline for "+string(classified.Kind), nil)
	}
	if err != nil {
		return result, err
	}

	logger.Info("job finished",
		logging.String(logging.FieldEventType, "job_complete"),
		logging.String("source", string(result.Source)),
		logging.Bool("skipped", result.Skipped),
		logging.Any("outputs", result.Outputs),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	)
	return result, nil
}

func (r *Runner) runVideo(ctx context.Context, classified input.Classified, opts config.JobOptions) (Result, error) {
	if r.Extractor == nil {
		return Result{Input: classified}, services.Wrap(services.ErrConfiguration, "workflow", "extract", "no extractor configured", nil)
	}
	extracted, err := r.Extractor.Extract(ctx, ffmpeg.Request{
		VideoPath: classified.Path,
		OutputDir: opts.OutputDir,
		Language:  opts.Language,
		Force:     opts.Force,
		Output:    r.toolOutput(opts),
	})
	if err != nil {
		return Result{Input: classified}, err
	}
	logging.WithContext(ctx, r.logger()).Info("audio ready",
		logging.String("audio", extracted.String()),
		logging.String("track", extracted.Track),
	)
	return r.runAudio(ctx, classified, extracted.AudioPath, opts)
}

func (r *Runner) runAudio(ctx context.Context, classified input.Classified, audioPath string, opts config.JobOptions) (Result, error) {
	result := Result{Input: classified, AudioPath: audioPath}
	if r.Transcriber == nil {
		return result, services.Wrap(services.ErrConfiguration, "workflow", "transcribe", "no transcriber configured", nil)
	}
	outcome, err := r.Transcriber.Transcribe(ctx, transcriptionRequest(audioPath, opts, r.toolOutput(opts)))
	if err != nil {
		return result, err
	}
	result.Outputs = []string{outcome.OutputPath}
	result.Skipped = outcome.Skipped
	result.Source = SourceTranscribed
	if outcome.Skipped {
		result.Source = SourceExisting
	}
	return result, nil
}

func (r *Runner) runURL(ctx context.Context, classified input.Classified, opts config.JobOptions) (Result, error) {
	if r.NewDownloader == nil {
		return Result{Input: classified}, services.Wrap(services.ErrConfiguration, "workflow", "fetch", "no downloader configured", nil)
	}
	fetcher := &Fetcher{
		Client:        r.NewDownloader(opts.Proxy),
		Transcriber:   r.Transcriber,
		Logger:        r.logger(),
		AudioFormat:   r.AudioFormat,
		TitleMaxBytes: r.TitleMaxBytes,
		Output:        r.toolOutput(opts),
	}
	if !opts.Verbose {
		fetcher.Progress = r.Progress
	}
	result, err := fetcher.Fetch(ctx, classified.Path, opts)
	result.Input = classified
	if err == nil {
		return result, nil
	}

	var fetchErr *FetchError
	if r.SwallowURLErrors && errors.As(err, &fetchErr) && !errors.Is(err, context.Canceled) {
		logging.WarnWithContext(logging.WithContext(ctx, r.logger()), "url processing failed", "url_failure",
			logging.String(logging.FieldErrorHint, "behavior.swallow_url_errors is set; the run reports success"),
			logging.String(logging.FieldImpact, "no subtitle was produced for this url"),
			logging.Error(err),
		)
		result.URLError = err
		return result, nil
	}
	return result, err
}

func (r *Runner) toolOutput(opts config.JobOptions) io.Writer {
	if !opts.Verbose {
		return nil
	}
	return r.ToolOutput
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return logging.NewNop()
	}
	return r.Logger
}

func transcriptionRequest(audioPath string, opts config.JobOptions, output io.Writer) transcription.Request {
	return transcription.Request{
		AudioPath: audioPath,
		Format:    opts.Format,
		Language:  opts.Language,
		Model:     opts.Model,
		OutputDir: opts.OutputDir,
		Force:     opts.Force,
		Output:    output,
	}
}

// targetDir returns the directory outputs of the job land in. Local inputs
// write next to themselves unless an output directory is configured; URL jobs
// write to the working directory.
func targetDir(classified input.Classified, opts config.JobOptions) string {
	if opts.OutputDir != "" || classified.Kind == input.KindURL {
		return opts.OutputDir
	}
	return filepath.Dir(classified.Path)
}
