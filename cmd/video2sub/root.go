package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"video2sub/internal/services"
)

type runFlags struct {
	language  string
	model     string
	proxy     string
	output    string
	outputDir string
	verbose   bool
	force     bool
}

func newRootCommand() *cobra.Command {
	return newRootCommandWithContext(newCommandContext())
}

func newRootCommandWithContext(ctx *commandContext) *cobra.Command {
	flags := &runFlags{}

	rootCmd := &cobra.Command{
		Use:   "video2sub <video_url_or_path>",
		Short: "Turn a video, audio file, or URL into subtitles",
		Long: "video2sub extracts audio with ffmpeg, downloads online videos with yt-dlp,\n" +
			"and transcribes speech with whisper. Existing outputs are reused unless --force is set.",
		Example: "  video2sub lecture.mp4\n" +
			"  video2sub interview.wav --output srt --lang de\n" +
			"  video2sub https://www.youtube.com/watch?v=... --model medium",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          exactlyOneInput,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, ctx, flags, args[0])
		},
	}
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return services.Wrap(services.ErrValidation, "cli", "flags", err.Error(), nil)
	})

	rootCmd.PersistentFlags().StringVarP(ctx.configFlag, "config", "c", "", "Configuration file path")

	rootCmd.Flags().StringVarP(&flags.language, "lang", "l", "", "Spoken language (ISO code, name, or auto)")
	rootCmd.Flags().StringVarP(&flags.model, "model", "m", "", "Whisper model name")
	rootCmd.Flags().StringVar(&flags.proxy, "proxy", "", "Proxy URL for yt-dlp")
	rootCmd.Flags().StringVarP(&flags.output, "output", "o", "", "Subtitle format: txt, vtt, srt, tsv, json")
	rootCmd.Flags().StringVarP(&flags.outputDir, "output-dir", "d", "", "Directory for outputs (default: next to the input)")
	rootCmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "Show external tool output and debug logs")
	rootCmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Regenerate outputs that already exist")

	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newDoctorCommand(ctx))
	rootCmd.AddCommand(newProbeCommand(ctx))

	return rootCmd
}

func exactlyOneInput(cmd *cobra.Command, args []string) error {
	if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
		return nil
	}
	return services.Wrap(services.ErrValidation, "cli", "args",
		fmt.Sprintf("expected one video path, audio path, or URL (got %d arguments); see %s --help", len(args), cmd.CommandPath()), nil)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
