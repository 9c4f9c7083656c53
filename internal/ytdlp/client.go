package ytdlp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"video2sub/internal/language"
	"video2sub/internal/logging"
	"video2sub/internal/services"
)

const (
	defaultBinary        = "yt-dlp"
	defaultAudioFormat   = "mp3"
	defaultAudioQuality  = "192K"
	defaultTitleMaxBytes = 150
)

// Client runs yt-dlp through a CommandRunner.
type Client struct {
	Binary string
	// FFmpeg is forwarded as --ffmpeg-location when it names a path.
	FFmpeg        string
	Proxy         string
	AudioFormat   string
	AudioQuality  string
	TitleMaxBytes int
	Runner        services.CommandRunner
	Logger        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithProxy routes every request through proxy.
func WithProxy(proxy string) Option {
	return func(c *Client) { c.Proxy = strings.TrimSpace(proxy) }
}

// WithFFmpeg sets the ffmpeg binary used for post-processing.
func WithFFmpeg(path string) Option {
	return func(c *Client) { c.FFmpeg = strings.TrimSpace(path) }
}

// WithAudio sets the extracted audio codec and quality.
func WithAudio(format, quality string) Option {
	return func(c *Client) {
		if format = strings.TrimSpace(format); format != "" {
			c.AudioFormat = format
		}
		if quality = strings.TrimSpace(quality); quality != "" {
			c.AudioQuality = quality
		}
	}
}

// WithTitleMaxBytes caps the title portion of output filenames.
func WithTitleMaxBytes(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.TitleMaxBytes = n
		}
	}
}

// NewClient builds a client for the given binary.
func NewClient(binary string, runner services.CommandRunner, logger *slog.Logger, opts ...Option) *Client {
	if runner == nil {
		runner = services.ExecRunner{}
	}
	c := &Client{
		Binary:        strings.TrimSpace(binary),
		AudioFormat:   defaultAudioFormat,
		AudioQuality:  defaultAudioQuality,
		TitleMaxBytes: defaultTitleMaxBytes,
		Runner:        runner,
		Logger:        logging.NewComponentLogger(logger, "ytdlp"),
	}
	if c.Binary == "" {
		c.Binary = defaultBinary
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OutputTemplate is the yt-dlp filename template for downloads.
func (c *Client) OutputTemplate() string {
	n := c.TitleMaxBytes
	if n <= 0 {
		n = defaultTitleMaxBytes
	}
	return "%(title)." + strconv.Itoa(n) + "B.%(ext)s"
}

// Probe fetches metadata for url without downloading media. When lang is a
// concrete language the matching manual subtitles are listed under
// RequestedSubtitles.
func (c *Client) Probe(ctx context.Context, url, lang string) (Info, error) {
	args := []string{
		"--dump-single-json",
		"--skip-download",
		"--no-playlist",
		"--no-warnings",
		"-o", c.OutputTemplate(),
	}
	if lang = strings.TrimSpace(lang); lang != "" && !strings.EqualFold(lang, language.Auto) {
		args = append(args, "--write-subs", "--sub-langs", lang)
	}
	args = append(c.commonArgs(args), "--", url)

	c.Logger.Debug("probing url", logging.String("url", url), logging.String("language", lang))
	result, err := c.Runner.Run(ctx, services.Command{Name: c.Binary, Args: args})
	if err != nil {
		return Info{}, err
	}
	info, err := ParseInfo(result.Stdout)
	if err != nil {
		return Info{}, err
	}
	if strings.TrimSpace(info.ID) == "" && strings.TrimSpace(info.Title) == "" {
		return Info{}, fmt.Errorf("yt-dlp returned no metadata for %s", url)
	}
	return info, nil
}

// DownloadSubtitle fetches the subtitle track key into dir, converted to SRT
// where yt-dlp can, and returns the downloaded file.
func (c *Client) DownloadSubtitle(ctx context.Context, url, key, dir string, output io.Writer) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("subtitle key is empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create subtitle dir: %w", err)
	}
	args := c.commonArgs([]string{
		"--skip-download",
		"--no-playlist",
		"--no-warnings",
		"--write-subs",
		"--sub-langs", key,
		"--sub-format", "srt/vtt/best",
		"--convert-subs", "srt",
		"-o", filepath.Join(dir, "%(id)s.%(ext)s"),
	})
	args = append(args, "--", url)

	if _, err := c.Runner.Run(ctx, services.Command{Name: c.Binary, Args: args, Stdout: output, Stderr: output}); err != nil {
		return "", err
	}
	path, err := latestFile(dir, ".srt", ".vtt")
	if err != nil {
		return "", fmt.Errorf("locate downloaded subtitle %s: %w", key, err)
	}
	return path, nil
}

// DownloadAudio fetches the best audio stream of url into dir, converted to
// the configured audio format, and returns the resulting file. progress, when
// non-nil, receives download updates parsed from yt-dlp's output; calls are
// never concurrent.
func (c *Client) DownloadAudio(ctx context.Context, url, dir string, output io.Writer, progress func(Progress)) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}
	format := c.AudioFormat
	if format == "" {
		format = defaultAudioFormat
	}
	quality := c.AudioQuality
	if quality == "" {
		quality = defaultAudioQuality
	}
	args := c.commonArgs([]string{
		"-f", "bestaudio/best",
		"-x",
		"--audio-format", format,
		"--audio-quality", quality,
		"--no-playlist",
		"--no-warnings",
		"--newline",
		"--progress-template", progressTemplate,
		"-o", filepath.Join(dir, c.OutputTemplate()),
	})
	args = append(args, "--", url)

	cmd := services.Command{Name: c.Binary, Args: args, Stdout: output, Stderr: output}
	// yt-dlp may report progress on either stream; each gets its own splitter.
	var trackers []*progressWriter
	if progress != nil {
		var mu sync.Mutex
		stdout := newProgressWriter(progress, output, &mu)
		stderr := newProgressWriter(progress, output, &mu)
		trackers = append(trackers, stdout, stderr)
		cmd.Stdout, cmd.Stderr = stdout, stderr
	}
	_, err := c.Runner.Run(ctx, cmd)
	for _, tracker := range trackers {
		tracker.Flush()
	}
	if err != nil {
		return "", err
	}
	path, err := latestFile(dir, "."+format)
	if err != nil {
		return "", fmt.Errorf("locate downloaded audio: %w", err)
	}
	c.Logger.Debug("audio downloaded", logging.String("path", path))
	return path, nil
}

// Version reports the installed yt-dlp version string.
func (c *Client) Version(ctx context.Context) (string, error) {
	result, err := c.Runner.Run(ctx, services.Command{Name: c.Binary, Args: []string{"--version"}})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(result.Stdout)), nil
}

func (c *Client) commonArgs(args []string) []string {
	if c.Proxy != "" {
		args = append(args, "--proxy", c.Proxy)
	}
	if strings.ContainsRune(c.FFmpeg, filepath.Separator) {
		args = append(args, "--ffmpeg-location", c.FFmpeg)
	}
	return args
}

// latestFile returns the most recently modified regular file in dir whose
// extension is one of exts, preferring earlier extensions on ties.
func latestFile(dir string, exts ...string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	type candidate struct {
		path string
		rank int
		mod  int64
	}
	var found []candidate
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		rank := slices.Index(exts, strings.ToLower(filepath.Ext(entry.Name())))
		if rank < 0 {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		found = append(found, candidate{path: filepath.Join(dir, entry.Name()), rank: rank, mod: info.ModTime().UnixNano()})
	}
	if len(found) == 0 {
		return "", fmt.Errorf("no %s file in %s: %w", strings.Join(exts, "/"), dir, os.ErrNotExist)
	}
	slices.SortFunc(found, func(a, b candidate) int {
		if a.mod != b.mod {
			if a.mod > b.mod {
				return -1
			}
			return 1
		}
		return a.rank - b.rank
	})
	return found[0].path, nil
}
