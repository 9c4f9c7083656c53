package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"video2sub/internal/config"
	"video2sub/internal/services"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
		Args:  cobra.NoArgs,
	}

	configCmd.AddCommand(newConfigInitCommand())
	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigShowCommand(ctx))

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a sample configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			target := strings.TrimSpace(targetPath)
			if target == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("determine default config path: %w", err)
				}
				target = defaultPath
			} else {
				expanded, err := config.ExpandPath(target)
				if err != nil {
					return fmt.Errorf("resolve config path: %w", err)
				}
				target = expanded
			}

			dir := filepath.Dir(target)
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("create config directory %q: %w", dir, err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return services.Wrap(services.ErrValidation, "config", "init",
						fmt.Sprintf("config file already exists at %s (use --overwrite to replace it)", target), nil)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit [defaults] to change the language, model, or output format used when no flag is given.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:         "validate",
		Short:       "Validate configuration file",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, path, exists, err := config.Load(strings.TrimSpace(*ctx.configFlag))
			if err != nil {
				return services.Wrap(services.ErrConfiguration, "config", "validate", path, err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			source := ctx.configPath
			if !ctx.configExists {
				source += " (not found, built-in defaults)"
			}
			fmt.Fprintf(out, "Config path: %s\n", source)
			fmt.Fprintln(out, renderTable([]string{"Setting", "Value"}, configRows(cfg)))
			return nil
		},
	}
}

func configRows(cfg *config.Config) [][]string {
	orNone := func(value string) string {
		if strings.TrimSpace(value) == "" {
			return "-"
		}
		return value
	}
	secret := "-"
	if cfg.Transcriber.HFToken != "" {
		secret = "(set)"
	}
	return [][]string{
		{"defaults.language", cfg.Defaults.Language},
		{"defaults.model", cfg.Defaults.Model},
		{"defaults.proxy", orNone(cfg.Defaults.Proxy)},
		{"defaults.output", cfg.Defaults.Output},
		{"defaults.output_dir", orNone(cfg.Defaults.OutputDir)},
		{"tools.ffmpeg", cfg.Tools.FFmpeg},
		{"tools.ffprobe", cfg.Tools.FFprobe},
		{"tools.whisper", cfg.Tools.Whisper},
		{"tools.uvx", cfg.Tools.UVX},
		{"tools.ytdlp", cfg.Tools.YtDlp},
		{"tools.timeout_minutes", strconv.Itoa(cfg.Tools.TimeoutMinutes)},
		{"transcriber.engine", cfg.Transcriber.Engine},
		{"transcriber.device", orNone(cfg.Transcriber.Device)},
		{"transcriber.threads", strconv.Itoa(cfg.Transcriber.Threads)},
		{"transcriber.vad_method", cfg.Transcriber.VADMethod},
		{"transcriber.hf_token", secret},
		{"download.audio_format", cfg.Download.AudioFormat},
		{"download.audio_quality", cfg.Download.AudioQuality},
		{"download.title_max_bytes", strconv.Itoa(cfg.Download.TitleMaxBytes)},
		{"download.min_free_mib", strconv.Itoa(cfg.Download.MinFreeMiB)},
		{"behavior.swallow_url_errors", yesNo(cfg.Behavior.SwallowURLErrors)},
		{"logging.format", cfg.Logging.Format},
		{"logging.level", cfg.Logging.Level},
	}
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
