package preflight

import (
	"context"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"video2sub/internal/config"
	"video2sub/internal/deps"
	"video2sub/internal/input"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// FreeBytes reports the space available to unprivileged users on the
// filesystem holding path.
func FreeBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil //nolint:gosec
}

// CheckFreeSpace verifies that at least minBytes are free under path.
func CheckFreeSpace(name, path string, minBytes uint64) Result {
	free, err := FreeBytes(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	if free < minBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s free, need %s", humanize.IBytes(free), humanize.IBytes(minBytes))}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s free", humanize.IBytes(free))}
}

// Requirements lists the tools a run needs for the given input kinds. With no
// kinds every pipeline is assumed. The engine not selected in config is
// reported as optional so doctor output still shows it.
func Requirements(cfg *config.Config, kinds ...input.Kind) []deps.Requirement {
	all := len(kinds) == 0
	if all {
		kinds = []input.Kind{input.KindVideo, input.KindAudio, input.KindURL}
	}
	var needVideo, needURL bool
	for _, kind := range kinds {
		switch kind {
		case input.KindVideo:
			needVideo = true
		case input.KindURL:
			needURL = true
		}
	}

	var requirements []deps.Requirement
	if needVideo || needURL {
		requirements = append(requirements, deps.Requirement{
			Name:        "FFmpeg",
			Command:     cfg.Tools.FFmpeg,
			Description: "Required for audio extraction and conversion",
		})
	}
	if needVideo {
		requirements = append(requirements, deps.Requirement{
			Name:        "FFprobe",
			Command:     cfg.Tools.FFprobe,
			Description: "Required for audio stream inspection",
		})
	}
	if needURL {
		requirements = append(requirements, deps.Requirement{
			Name:        "yt-dlp",
			Command:     cfg.Tools.YtDlp,
			Description: "Required for URL downloads",
		})
	}

	whisper := deps.Requirement{
		Name:        "whisper",
		Command:     cfg.Tools.Whisper,
		Description: "Transcription engine (openai-whisper)",
	}
	uvx := deps.Requirement{
		Name:        "uvx",
		Command:     cfg.Tools.UVX,
		Description: "Transcription engine (whisperx via uvx)",
	}
	if cfg.Transcriber.Engine == config.EngineWhisperX {
		whisper.Optional = true
	} else {
		uvx.Optional = true
	}
	// doctor lists both engines; a run only needs the selected one
	if all {
		return append(requirements, whisper, uvx)
	}
	if whisper.Optional {
		return append(requirements, uvx)
	}
	return append(requirements, whisper)
}

// CheckSystemDeps evaluates the tool requirements for the given input kinds.
// Both the runner and the doctor command use this to avoid duplicating the
// requirements list.
func CheckSystemDeps(_ context.Context, cfg *config.Config, kinds ...input.Kind) []deps.Status {
	return deps.CheckBinaries(Requirements(cfg, kinds...))
}
