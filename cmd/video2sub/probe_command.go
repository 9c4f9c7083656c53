package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"video2sub/internal/input"
	"video2sub/internal/language"
	"video2sub/internal/services"
	"video2sub/internal/ytdlp"
)

type probeTrack struct {
	Key       string   `json:"key"`
	Language  string   `json:"language"`
	Name      string   `json:"name,omitempty"`
	Formats   []string `json:"formats"`
	Automatic bool     `json:"automatic"`
}

type probeReport struct {
	URL      string       `json:"url"`
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	FileBase string       `json:"file_base,omitempty"`
	Duration float64      `json:"duration_seconds,omitempty"`
	Match    string       `json:"match,omitempty"`
	Tracks   []probeTrack `json:"tracks"`
}

func newProbeCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool
	var lang string
	var proxy string

	cmd := &cobra.Command{
		Use:   "probe <url>",
		Short: "List the subtitle tracks published for a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := strings.TrimSpace(args[0])
			if !input.IsURL(url) {
				return services.Wrap(services.ErrUnsupportedInput, "probe", "url", "expected an http(s) URL, got "+url, nil)
			}
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("lang") {
				lang = cfg.Defaults.Language
			}
			if lang, err = language.Normalize(lang); err != nil {
				return services.Wrap(services.ErrValidation, "probe", "language", "invalid --lang", err)
			}
			if !cmd.Flags().Changed("proxy") {
				proxy = cfg.Defaults.Proxy
			}
			logger, err := ctx.newLogger(cmd, false)
			if err != nil {
				return err
			}

			client := ytdlp.NewClient(cfg.Tools.YtDlp, ctx.commandRunner(cfg), logger, ytdlp.WithProxy(proxy))
			info, err := client.Probe(cmd.Context(), url, lang)
			if err != nil {
				return services.Wrap(services.ErrExternalTool, "probe", "yt-dlp", "cannot read "+url, err)
			}
			report := buildProbeReport(url, lang, info)
			if jsonOutput {
				return writeProbeJSON(cmd.OutOrStdout(), report)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Title: %s\n", report.Title)
			if report.FileBase != "" {
				fmt.Fprintf(out, "File name: %s\n", report.FileBase)
			}
			if len(report.Tracks) == 0 {
				fmt.Fprintln(out, "No subtitle tracks published")
			} else {
				rows := make([][]string, 0, len(report.Tracks))
				for _, track := range report.Tracks {
					kind := "manual"
					if track.Automatic {
						kind = "automatic"
					}
					marker := ""
					if track.Key == report.Match {
						marker = "*"
					}
					rows = append(rows, []string{marker, track.Key, track.Language, kind, strings.Join(track.Formats, ", ")})
				}
				fmt.Fprintln(out, renderTable([]string{"", "Key", "Language", "Kind", "Formats"}, rows))
			}
			if report.Match != "" {
				fmt.Fprintf(out, "Subtitle %s matches --lang %s and will be used instead of transcription\n", report.Match, lang)
			} else {
				fmt.Fprintf(out, "No subtitle matches --lang %s; audio will be downloaded and transcribed\n", lang)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	cmd.Flags().StringVarP(&lang, "lang", "l", "", "Language to match against published subtitles")
	cmd.Flags().StringVar(&proxy, "proxy", "", "Proxy URL for yt-dlp")
	return cmd
}

func buildProbeReport(url, lang string, info ytdlp.Info) probeReport {
	report := probeReport{
		URL:      url,
		ID:       info.ID,
		Title:    info.Title,
		Duration: info.Duration,
		Tracks:   []probeTrack{},
	}
	report.FileBase, _ = info.FileBase()
	report.Match, _ = ytdlp.MatchSubtitle(info, lang)
	for _, track := range info.Tracks() {
		report.Tracks = append(report.Tracks, probeTrack{
			Key:       track.Key,
			Language:  language.DisplayName(track.Key),
			Name:      track.Name,
			Formats:   track.Formats,
			Automatic: track.Automatic,
		})
	}
	return report
}

// writeProbeJSON keeps stdout machine-readable; logs go to stderr.
func writeProbeJSON(w io.Writer, report probeReport) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(report)
}
