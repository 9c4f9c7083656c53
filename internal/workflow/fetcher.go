package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"video2sub/internal/config"
	"video2sub/internal/fileutil"
	"video2sub/internal/language"
	"video2sub/internal/logging"
	"video2sub/internal/services"
	"video2sub/internal/subtitles"
	"video2sub/internal/textutil"
	"video2sub/internal/transcription"
	"video2sub/internal/ytdlp"
)

// Downloader is the yt-dlp surface the Fetcher needs.
type Downloader interface {
	Probe(ctx context.Context, url, lang string) (ytdlp.Info, error)
	DownloadSubtitle(ctx context.Context, url, key, dir string, output io.Writer) (string, error)
	DownloadAudio(ctx context.Context, url, dir string, output io.Writer, progress func(ytdlp.Progress)) (string, error)
}

// Fetcher turns a URL into a subtitle file, preferring a native subtitle
// track over downloading and transcribing audio.
type Fetcher struct {
	Client      Downloader
	Transcriber Transcriber
	Logger      *slog.Logger
	// Output receives yt-dlp and engine output for verbose jobs.
	Output   io.Writer
	Progress func(ytdlp.Progress)

	AudioFormat   string
	TitleMaxBytes int
}

// Fetch resolves url into a subtitle in opts.Format. Outputs land in
// opts.OutputDir, or the working directory when unset. Failures are returned
// as *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string, opts config.JobOptions) (Result, error) {
	ctx = services.WithStage(ctx, "fetch")
	logger := logging.WithContext(ctx, f.logger())

	info, err := f.Client.Probe(ctx, url, opts.Language)
	if err != nil {
		return Result{}, &FetchError{Stage: FetchStageProbe, URL: url, Err: err}
	}
	dir := textutil.FirstNonBlank(opts.OutputDir, ".")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Result{}, &FetchError{Stage: FetchStageProbe, URL: url, Err: fmt.Errorf("create output dir: %w", err)}
	}
	base := f.fileBase(info)
	logger.Debug("url metadata",
		logging.String("title", info.Title),
		logging.String("id", info.ID),
		logging.String("extractor", info.Extractor),
		logging.String("file_base", base),
	)

	key, ok := ytdlp.MatchSubtitle(info, opts.Language)
	logger.Debug("subtitle source decision",
		logging.String("decision_type", "subtitle_source"),
		logging.String("decision_result", textutil.Ternary(ok, "native_subtitle", "transcribe")),
		logging.String("decision_reason", textutil.Ternary(ok, "track_"+key, "no_matching_track")),
	)
	if ok {
		result, err := f.fetchNative(ctx, url, key, filepath.Join(dir, base+opts.Format.Ext()), opts)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, services.ErrBusy) {
			return Result{}, &FetchError{Stage: FetchStageSubtitle, URL: url, Err: err}
		}
		logging.WarnWithContext(logger, "native subtitle unusable, transcribing audio instead", "subtitle_fallback",
			logging.String("subtitle", key),
			logging.String(logging.FieldImpact, "audio will be downloaded and transcribed"),
			logging.Error(err),
		)
	} else {
		notice := fmt.Sprintf("No %s subtitle found, downloading %s...", opts.Language, f.audioFormat())
		if opts.Language == language.Auto {
			notice = fmt.Sprintf("Language is auto, downloading %s for transcription...", f.audioFormat())
		}
		logger.Info(notice, logging.String(logging.FieldEventType, "subtitle_missing"))
	}

	audioPath := filepath.Join(dir, base+"."+f.audioFormat())
	if err := f.downloadAudio(ctx, url, audioPath, opts); err != nil {
		return Result{}, &FetchError{Stage: FetchStageDownload, URL: url, Err: err}
	}
	if f.Transcriber == nil {
		return Result{}, &FetchError{Stage: FetchStageTranscribe, URL: url, Err: services.Wrap(services.ErrConfiguration, "fetch", "transcribe", "no transcriber configured", nil)}
	}
	outcome, err := f.Transcriber.Transcribe(ctx, transcriptionRequest(audioPath, opts, f.Output))
	if err != nil {
		return Result{AudioPath: audioPath}, &FetchError{Stage: FetchStageTranscribe, URL: url, Err: err}
	}
	result := Result{
		AudioPath: audioPath,
		Outputs:   []string{outcome.OutputPath},
		Skipped:   outcome.Skipped,
		Source:    SourceTranscribed,
	}
	if outcome.Skipped {
		result.Source = SourceExisting
	}
	return result, nil
}

// fetchNative downloads subtitle key and renders it to target in the
// requested format.
func (f *Fetcher) fetchNative(ctx context.Context, url, key, target string, opts config.JobOptions) (Result, error) {
	logger := logging.WithContext(ctx, f.logger())
	if !opts.Force && fileutil.Exists(target) {
		logger.Info("subtitle already exists, skipping", logging.String("output", target))
		return Result{Outputs: []string{target}, Skipped: true, Source: SourceExisting}, nil
	}

	lock, err := fileutil.LockTarget(target)
	if err != nil {
		if errors.Is(err, fileutil.ErrLocked) {
			return Result{}, services.Wrap(services.ErrBusy, "fetch", "lock", "another video2sub run is writing "+target, err)
		}
		return Result{}, err
	}
	logger.Debug("output locked", logging.String("lock", lock.Path()))
	defer func() {
		if err := lock.Release(); err != nil {
			logger.Warn("failed to release output lock", logging.String("lock", lock.Path()), logging.Error(err))
		}
	}()

	workDir, err := os.MkdirTemp(filepath.Dir(target), ".video2sub-sub-*")
	if err != nil {
		return Result{}, fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	logger.Info("downloading native subtitle", logging.String("subtitle", key))
	path, err := f.Client.DownloadSubtitle(ctx, url, key, workDir, f.Output)
	if err != nil {
		return Result{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read subtitle: %w", err)
	}
	transcript, err := subtitles.ParseCues(data)
	if err != nil {
		return Result{}, err
	}
	if len(transcript.Segments) == 0 {
		return Result{}, fmt.Errorf("subtitle %s has no cues", key)
	}
	transcript.Language = key
	if err := transcription.WriteTranscript(target, opts.Format, transcript); err != nil {
		return Result{}, err
	}
	logger.Info("subtitle written",
		logging.String("output", target),
		logging.Int("segments", len(transcript.Segments)),
	)
	return Result{Outputs: []string{target}, Source: SourceNativeSubtitle}, nil
}

// downloadAudio places the URL's audio at audioPath unless it already exists.
func (f *Fetcher) downloadAudio(ctx context.Context, url, audioPath string, opts config.JobOptions) error {
	logger := logging.WithContext(ctx, f.logger())
	if !opts.Force && fileutil.Exists(audioPath) {
		logger.Info("audio already downloaded, skipping", logging.String("audio", audioPath))
		return nil
	}
	workDir, err := os.MkdirTemp(filepath.Dir(audioPath), ".video2sub-dl-*")
	if err != nil {
		return fmt.Errorf("create scratch dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	downloaded, err := f.Client.DownloadAudio(ctx, url, workDir, f.Output, f.Progress)
	if err != nil {
		return err
	}
	if err := fileutil.MoveFile(downloaded, audioPath); err != nil {
		return fmt.Errorf("move downloaded audio: %w", err)
	}
	logger.Info(filepath.Base(audioPath)+" has been downloaded", logging.String("audio", audioPath))
	return nil
}

func (f *Fetcher) fileBase(info ytdlp.Info) string {
	if base, ok := info.FileBase(); ok {
		return base
	}
	maxBytes := f.TitleMaxBytes
	if maxBytes <= 0 {
		maxBytes = 150
	}
	return textutil.TitleFileBase(textutil.FirstNonBlank(info.Title, info.ID), maxBytes)
}

func (f *Fetcher) audioFormat() string {
	return textutil.FirstNonBlank(f.AudioFormat, "mp3")
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger == nil {
		return logging.NewNop()
	}
	return f.Logger
}
