package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeDefaults(); err != nil {
		return err
	}
	c.normalizeTools()
	c.normalizeTranscriber()
	c.normalizeDownload()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeDefaults() error {
	c.Defaults.Language = strings.ToLower(strings.TrimSpace(c.Defaults.Language))
	if c.Defaults.Language == "" {
		c.Defaults.Language = defaultLanguage
	}
	c.Defaults.Model = strings.TrimSpace(c.Defaults.Model)
	if c.Defaults.Model == "" {
		c.Defaults.Model = defaultModel
	}
	c.Defaults.Output = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Defaults.Output)), ".")
	if c.Defaults.Output == "" {
		c.Defaults.Output = defaultOutputFormat
	}
	c.Defaults.Proxy = strings.TrimSpace(c.Defaults.Proxy)
	if c.Defaults.Proxy == "" {
		if value, ok := os.LookupEnv(proxyEnvVar); ok {
			c.Defaults.Proxy = strings.TrimSpace(value)
		}
	}
	var err error
	if c.Defaults.OutputDir, err = expandPath(strings.TrimSpace(c.Defaults.OutputDir)); err != nil {
		return fmt.Errorf("defaults.output_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() {
	c.Tools.FFmpeg = binaryOrDefault(c.Tools.FFmpeg, defaultFFmpegBinary)
	c.Tools.FFprobe = binaryOrDefault(c.Tools.FFprobe, defaultFFprobeBinary)
	c.Tools.Whisper = binaryOrDefault(c.Tools.Whisper, defaultWhisperBinary)
	c.Tools.UVX = binaryOrDefault(c.Tools.UVX, defaultUVXBinary)
	c.Tools.YtDlp = binaryOrDefault(c.Tools.YtDlp, defaultYtDlpBinary)
}

func binaryOrDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	if strings.HasPrefix(value, "~") {
		if expanded, err := expandPath(value); err == nil {
			return expanded
		}
	}
	return value
}

func (c *Config) normalizeTranscriber() {
	c.Transcriber.Engine = strings.ToLower(strings.TrimSpace(c.Transcriber.Engine))
	if c.Transcriber.Engine == "" {
		c.Transcriber.Engine = defaultEngine
	}
	c.Transcriber.Device = strings.ToLower(strings.TrimSpace(c.Transcriber.Device))
	c.Transcriber.VADMethod = strings.ToLower(strings.TrimSpace(c.Transcriber.VADMethod))
	if c.Transcriber.VADMethod == "" {
		c.Transcriber.VADMethod = defaultVADMethod
	}
	c.Transcriber.HFToken = strings.TrimSpace(c.Transcriber.HFToken)
	if c.Transcriber.HFToken == "" {
		if value, ok := os.LookupEnv("HUGGING_FACE_HUB_TOKEN"); ok {
			c.Transcriber.HFToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("HF_TOKEN"); ok {
			c.Transcriber.HFToken = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalizeDownload() {
	c.Download.AudioFormat = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(c.Download.AudioFormat)), ".")
	if c.Download.AudioFormat == "" {
		c.Download.AudioFormat = defaultAudioFormat
	}
	c.Download.AudioQuality = strings.TrimSpace(c.Download.AudioQuality)
	if c.Download.AudioQuality == "" {
		c.Download.AudioQuality = defaultAudioQuality
	}
	if c.Download.TitleMaxBytes <= 0 {
		c.Download.TitleMaxBytes = defaultTitleMaxBytes
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level
}
