package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"video2sub/internal/fileutil"
	"video2sub/internal/input"
	"video2sub/internal/logging"
	"video2sub/internal/media/audio"
	"video2sub/internal/media/ffprobe"
	"video2sub/internal/services"
)

const stage = "extract"

// Request describes one extraction.
type Request struct {
	VideoPath string
	OutputDir string
	// Language steers audio track selection on multi-track sources.
	Language string
	Force    bool
	// Output, when set, receives ffmpeg's live stderr.
	Output io.Writer
}

// Outcome reports where the audio landed and whether work was done.
type Outcome struct {
	AudioPath string
	Skipped   bool
	Duration  time.Duration
	Track     string
}

// Extractor runs ffprobe and ffmpeg through a CommandRunner.
type Extractor struct {
	FFmpeg  string
	FFprobe string
	Runner  services.CommandRunner
	Logger  *slog.Logger
}

// NewExtractor builds an extractor with the given binaries.
func NewExtractor(ffmpegBinary, ffprobeBinary string, runner services.CommandRunner, logger *slog.Logger) *Extractor {
	if runner == nil {
		runner = services.ExecRunner{}
	}
	return &Extractor{
		FFmpeg:  ffmpegBinary,
		FFprobe: ffprobeBinary,
		Runner:  runner,
		Logger:  logging.NewComponentLogger(logger, "ffmpeg"),
	}
}

// AudioPath returns the MP3 path Extract would produce for videoPath.
func AudioPath(videoPath, outputDir string) (string, error) {
	return input.DeriveInDir(videoPath, ".mp3", outputDir)
}

// Extract converts the video's audio to MP3. An existing MP3 is reused unless
// Force is set.
func (e *Extractor) Extract(ctx context.Context, req Request) (Outcome, error) {
	ctx = services.WithStage(ctx, stage)
	logger := logging.WithContext(ctx, e.Logger)

	target, err := AudioPath(req.VideoPath, req.OutputDir)
	if err != nil {
		return Outcome{}, err
	}
	if !req.Force && fileutil.Exists(target) {
		logger.Info("audio already extracted, skipping", logging.String("audio", target))
		return Outcome{AudioPath: target, Skipped: true}, nil
	}

	if _, err := os.Stat(req.VideoPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Outcome{}, services.Wrap(services.ErrNotFound, stage, "stat", "video not found: "+req.VideoPath, err)
		}
		return Outcome{}, services.Wrap(services.ErrValidation, stage, "stat", "cannot read video", err)
	}

	probe, err := ffprobe.Inspect(ctx, e.Runner, e.FFprobe, req.VideoPath)
	if err != nil {
		return Outcome{}, services.Wrap(services.ErrExternalTool, stage, "ffprobe", "cannot inspect "+req.VideoPath, err)
	}
	selection := audio.Select(probe.Streams, req.Language)
	if !selection.Found() {
		return Outcome{}, services.Wrap(services.ErrValidation, stage, "ffprobe", req.VideoPath+" has no audio stream", nil)
	}
	outcome := Outcome{AudioPath: target, Track: selection.Label()}
	outcome.Duration = probe.Duration().Round(time.Second)
	logger.Info("extracting audio",
		logging.String("video", req.VideoPath),
		logging.String("audio", target),
		logging.String("track", outcome.Track),
		logging.Int("audio_streams", selection.Total),
		logging.Duration("duration", outcome.Duration),
	)

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return Outcome{}, services.Wrap(services.ErrValidation, stage, "output dir", "cannot create output directory", err)
	}
	partial := target + ".part"
	cmd := services.Command{
		Name:   e.binary(),
		Args:   buildArgs(req.VideoPath, partial, selection),
		Stderr: req.Output,
	}
	logger.Debug("ffmpeg command", logging.String("command", cmd.String()))

	started := time.Now()
	if _, err := e.Runner.Run(ctx, cmd); err != nil {
		_ = os.Remove(partial)
		return Outcome{}, services.Wrap(services.ErrExternalTool, stage, "ffmpeg", "audio extraction failed", err)
	}
	if !fileutil.NonEmptyFile(partial) {
		_ = os.Remove(partial)
		return Outcome{}, services.Wrap(services.ErrExternalTool, stage, "ffmpeg", "ffmpeg produced no audio", nil)
	}
	if err := fileutil.MoveFile(partial, target); err != nil {
		_ = os.Remove(partial)
		return Outcome{}, services.Wrap(services.ErrExternalTool, stage, "finalize", "cannot move audio into place", err)
	}
	logger.Info("audio extracted",
		logging.String("audio", target),
		logging.Duration("elapsed", time.Since(started).Round(time.Millisecond)),
	)
	return outcome, nil
}

func (e *Extractor) binary() string {
	if name := strings.TrimSpace(e.FFmpeg); name != "" {
		return name
	}
	return "ffmpeg"
}

func buildArgs(videoPath, outputPath string, selection audio.Selection) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error", "-i", videoPath}
	if selection.NeedsMap() {
		args = append(args, "-map", "0:a:"+strconv.Itoa(selection.Ordinal))
	}
	// the .part suffix hides the container type from ffmpeg, so name it
	args = append(args, "-vn", "-c:a", "libmp3lame", "-q:a", "2", "-f", "mp3", outputPath)
	return args
}

// String renders an outcome for logs.
func (o Outcome) String() string {
	if o.Skipped {
		return fmt.Sprintf("%s (existing)", o.AudioPath)
	}
	return o.AudioPath
}
