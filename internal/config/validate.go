package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"video2sub/internal/language"
	"video2sub/internal/subtitles"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateDefaults(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateTranscriber(); err != nil {
		return err
	}
	if err := c.validateDownload(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateDefaults() error {
	if _, err := language.Normalize(c.Defaults.Language); err != nil {
		return fmt.Errorf("defaults.language: %w", err)
	}
	if err := validateModel(c.Defaults.Model); err != nil {
		return fmt.Errorf("defaults.model: %w", err)
	}
	if _, err := subtitles.ParseFormat(c.Defaults.Output); err != nil {
		return fmt.Errorf("defaults.output: %w", err)
	}
	if err := validateProxy(c.Defaults.Proxy); err != nil {
		return fmt.Errorf("defaults.proxy: %w", err)
	}
	return nil
}

func (c *Config) validateTools() error {
	if c.Tools.TimeoutMinutes < 0 {
		return errors.New("tools.timeout_minutes must be zero (no limit) or positive")
	}
	return nil
}

func (c *Config) validateTranscriber() error {
	switch c.Transcriber.Engine {
	case EngineWhisper, EngineWhisperX:
	default:
		return fmt.Errorf("transcriber.engine must be %q or %q, got %q", EngineWhisper, EngineWhisperX, c.Transcriber.Engine)
	}
	switch c.Transcriber.Device {
	case "", "cpu", "cuda":
	default:
		return fmt.Errorf("transcriber.device must be cpu or cuda, got %q", c.Transcriber.Device)
	}
	if c.Transcriber.Threads < 0 {
		return errors.New("transcriber.threads must be zero (engine default) or positive")
	}
	switch c.Transcriber.VADMethod {
	case "silero", "pyannote":
	default:
		return fmt.Errorf("transcriber.vad_method must be silero or pyannote, got %q", c.Transcriber.VADMethod)
	}
	if c.Transcriber.Engine == EngineWhisperX && c.Transcriber.VADMethod == "pyannote" && c.Transcriber.HFToken == "" {
		return errors.New("transcriber.hf_token is required when vad_method is pyannote (or set HF_TOKEN)")
	}
	return nil
}

func (c *Config) validateDownload() error {
	switch c.Download.AudioFormat {
	case "mp3", "m4a", "wav", "flac", "opus":
	default:
		return fmt.Errorf("download.audio_format must be one of mp3|m4a|wav|flac|opus, got %q", c.Download.AudioFormat)
	}
	if c.Download.MinFreeMiB < 0 {
		return errors.New("download.min_free_mib must be zero (disabled) or positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	return nil
}

func validateModel(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return errors.New("model must not be empty")
	}
	if strings.ContainsAny(model, " \t\r\n") {
		return fmt.Errorf("model %q must not contain whitespace", model)
	}
	return nil
}

func validateProxy(proxy string) error {
	if proxy == "" {
		return nil
	}
	parsed, err := url.Parse(proxy)
	if err != nil {
		return fmt.Errorf("invalid proxy url %q: %w", proxy, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("proxy %q must include a scheme and host (for example socks5://127.0.0.1:1080)", proxy)
	}
	return nil
}
