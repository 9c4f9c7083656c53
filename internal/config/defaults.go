package config

const (
	defaultLanguage       = "en"
	defaultModel          = "small"
	defaultOutputFormat   = "txt"
	defaultFFmpegBinary   = "ffmpeg"
	defaultFFprobeBinary  = "ffprobe"
	defaultWhisperBinary  = "whisper"
	defaultUVXBinary      = "uvx"
	defaultYtDlpBinary    = "yt-dlp"
	defaultEngine         = EngineWhisper
	defaultVADMethod      = "silero"
	defaultAudioFormat    = "mp3"
	defaultAudioQuality   = "192K"
	defaultTitleMaxBytes  = 150
	defaultMinFreeMiB     = 512
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultConfigLocation = "~/.config/video2sub/config.toml"
	projectConfigName     = "video2sub.toml"
	proxyEnvVar           = "VIDEO2SUB_PROXY"
)

// Engine names accepted by transcriber.engine.
const (
	EngineWhisper  = "whisper"
	EngineWhisperX = "whisperx"
)

// Default returns a Config populated with built-in defaults.
func Default() Config {
	return Config{
		Defaults: Defaults{
			Language: defaultLanguage,
			Model:    defaultModel,
			Output:   defaultOutputFormat,
		},
		Tools: Tools{
			FFmpeg:  defaultFFmpegBinary,
			FFprobe: defaultFFprobeBinary,
			Whisper: defaultWhisperBinary,
			UVX:     defaultUVXBinary,
			YtDlp:   defaultYtDlpBinary,
		},
		Transcriber: Transcriber{
			Engine:    defaultEngine,
			VADMethod: defaultVADMethod,
		},
		Download: Download{
			AudioFormat:   defaultAudioFormat,
			AudioQuality:  defaultAudioQuality,
			TitleMaxBytes: defaultTitleMaxBytes,
			MinFreeMiB:    defaultMinFreeMiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
