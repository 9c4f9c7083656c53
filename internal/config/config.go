package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Defaults holds the per-run option defaults that command-line flags override.
type Defaults struct {
	Language  string `toml:"language"`
	Model     string `toml:"model"`
	Proxy     string `toml:"proxy"`
	Output    string `toml:"output"`
	OutputDir string `toml:"output_dir"`
}

// Tools names the external executables and bounds how long each may run.
type Tools struct {
	FFmpeg         string `toml:"ffmpeg"`
	FFprobe        string `toml:"ffprobe"`
	Whisper        string `toml:"whisper"`
	UVX            string `toml:"uvx"`
	YtDlp          string `toml:"ytdlp"`
	TimeoutMinutes int    `toml:"timeout_minutes"`
}

// Transcriber selects the speech-to-text engine and its runtime knobs.
type Transcriber struct {
	Engine string `toml:"engine"`
	// Device is passed to the engine as-is ("cpu", "cuda"); empty lets the engine decide.
	Device  string `toml:"device"`
	Threads int    `toml:"threads"`
	// VADMethod and HFToken only apply to the whisperx engine.
	VADMethod string `toml:"vad_method"`
	HFToken   string `toml:"hf_token"`
}

// Download controls yt-dlp audio downloads.
type Download struct {
	AudioFormat   string `toml:"audio_format"`
	AudioQuality  string `toml:"audio_quality"`
	TitleMaxBytes int    `toml:"title_max_bytes"`
	MinFreeMiB    int    `toml:"min_free_mib"`
}

// Behavior holds compatibility switches.
type Behavior struct {
	// SwallowURLErrors reports URL failures without a failing exit status.
	SwallowURLErrors bool `toml:"swallow_url_errors"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for video2sub.
//
// Configuration sections:
//   - Defaults: language, model, proxy, output format and directory
//   - Tools: external executable names and the per-tool timeout
//   - Transcriber: engine selection (whisper or whisperx)
//   - Download: yt-dlp audio settings and the free-space floor
//   - Behavior: compatibility switches
//   - Logging: log format and level
type Config struct {
	Defaults    Defaults    `toml:"defaults"`
	Tools       Tools       `toml:"tools"`
	Transcriber Transcriber `toml:"transcriber"`
	Download    Download    `toml:"download"`
	Behavior    Behavior    `toml:"behavior"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigLocation)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, resolvedPath, true, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, resolvedPath, true, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, resolvedPath, exists, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, resolvedPath, exists, err
	}

	return &cfg, resolvedPath, exists, nil
}

// Builtin returns the normalized built-in defaults. Callers use it when a
// discovered settings file cannot be read.
func Builtin() (*Config, error) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigLocation)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs(projectConfigName)
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// ToolTimeout returns the per-invocation limit for external tools, zero when unbounded.
func (c *Config) ToolTimeout() time.Duration {
	if c.Tools.TimeoutMinutes <= 0 {
		return 0
	}
	return time.Duration(c.Tools.TimeoutMinutes) * time.Minute
}

// MinFreeBytes returns the free-space floor for working directories.
func (c *Config) MinFreeBytes() uint64 {
	if c.Download.MinFreeMiB <= 0 {
		return 0
	}
	return uint64(c.Download.MinFreeMiB) * 1024 * 1024
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
