package transcription

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"video2sub/internal/fileutil"
	"video2sub/internal/input"
	"video2sub/internal/logging"
	"video2sub/internal/services"
	"video2sub/internal/subtitles"
)

const stage = "transcribe"

// Request describes one audio-to-subtitle conversion.
type Request struct {
	AudioPath string
	Format    subtitles.Format
	Language  string
	Model     string
	OutputDir string
	Force     bool
	// Output, when set, receives the engine's live console output.
	Output io.Writer
}

// Outcome reports the subtitle path and whether the engine ran.
type Outcome struct {
	OutputPath string
	Skipped    bool
	Segments   int
	Language   string
	Elapsed    time.Duration
}

// Transcriber runs an Engine and writes its transcript in the requested format.
type Transcriber struct {
	Engine Engine
	Logger *slog.Logger
	// TempDir is the parent for engine scratch directories; empty uses os.TempDir.
	TempDir string
}

// NewTranscriber wraps engine with output bookkeeping.
func NewTranscriber(engine Engine, logger *slog.Logger) *Transcriber {
	return &Transcriber{
		Engine: engine,
		Logger: logging.NewComponentLogger(logger, "transcriber"),
	}
}

// OutputPath returns the subtitle path for audioPath in format.
func OutputPath(audioPath string, format subtitles.Format, outputDir string) (string, error) {
	return input.DeriveInDir(audioPath, format.Ext(), outputDir)
}

// Transcribe converts req.AudioPath to <base>.<format>. When the target exists
// and Force is unset, the engine is not invoked.
func (t *Transcriber) Transcribe(ctx context.Context, req Request) (Outcome, error) {
	ctx = services.WithStage(ctx, stage)
	logger := logging.WithContext(ctx, t.Logger)

	target, err := OutputPath(req.AudioPath, req.Format, req.OutputDir)
	if err != nil {
		return Outcome{}, err
	}
	if !req.Force && fileutil.Exists(target) {
		logger.Info("subtitle already exists, skipping", logging.String("output", target))
		return Outcome{OutputPath: target, Skipped: true}, nil
	}
	if t.Engine == nil {
		return Outcome{}, services.Wrap(services.ErrConfiguration, stage, "engine", "no transcription engine configured", nil)
	}
	if _, err := os.Stat(req.AudioPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Outcome{}, services.Wrap(services.ErrNotFound, stage, "stat", "audio not found: "+req.AudioPath, err)
		}
		return Outcome{}, services.Wrap(services.ErrValidation, stage, "stat", "cannot read audio", err)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Outcome{}, services.Wrap(services.ErrValidation, stage, "output dir", "cannot create output directory", err)
	}

	lock, err := fileutil.LockTarget(target)
	if err != nil {
		if errors.Is(err, fileutil.ErrLocked) {
			return Outcome{}, services.Wrap(services.ErrBusy, stage, "lock", "another video2sub run is writing "+target, err)
		}
		return Outcome{}, services.Wrap(services.ErrExternalTool, stage, "lock", "cannot lock output", err)
	}
	logger.Debug("output locked", logging.String("lock", lock.Path()))
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release output lock", logging.String("lock", lock.Path()), logging.Error(err))
		}
	}()
	// a concurrent run may have finished between the check and the lock
	if !req.Force && fileutil.Exists(target) {
		logger.Info("subtitle appeared while waiting, skipping", logging.String("output", target))
		return Outcome{OutputPath: target, Skipped: true}, nil
	}

	workDir, err := os.MkdirTemp(t.TempDir, "video2sub-"+t.Engine.Name()+"-*")
	if err != nil {
		return Outcome{}, services.Wrap(services.ErrExternalTool, stage, "workdir", "cannot create scratch directory", err)
	}
	defer os.RemoveAll(workDir)

	logger.Info("transcribing audio",
		logging.String("engine", t.Engine.Name()),
		logging.String("audio", req.AudioPath),
		logging.String("model", req.Model),
		logging.String("language", req.Language),
		logging.String("format", string(req.Format)),
	)
	started := time.Now()
	transcript, err := t.Engine.Transcribe(ctx, EngineRequest{
		AudioPath: req.AudioPath,
		Language:  req.Language,
		Model:     req.Model,
		WorkDir:   workDir,
		Output:    req.Output,
	})
	if err != nil {
		return Outcome{}, services.Wrap(services.ErrExternalTool, stage, t.Engine.Name(), "transcription failed", err)
	}

	if err := WriteTranscript(target, req.Format, transcript); err != nil {
		return Outcome{}, services.Wrap(services.ErrExternalTool, stage, "write", "cannot write subtitle", err)
	}
	outcome := Outcome{
		OutputPath: target,
		Segments:   len(transcript.Segments),
		Language:   transcript.Language,
		Elapsed:    time.Since(started).Round(time.Millisecond),
	}
	logger.Info("subtitle written",
		logging.String("output", target),
		logging.Int("segments", outcome.Segments),
		logging.String("detected_language", outcome.Language),
		logging.Duration("elapsed", outcome.Elapsed),
	)
	return outcome, nil
}

// WriteTranscript renders transcript in format and writes it atomically to path.
func WriteTranscript(path string, format subtitles.Format, transcript subtitles.Transcript) error {
	data, err := subtitles.Render(format, transcript)
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	return fileutil.WriteFileAtomic(path, data, 0o644)
}
