package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"video2sub/internal/config"
	"video2sub/internal/deps"
	"video2sub/internal/preflight"
	"video2sub/internal/services"
	"video2sub/internal/textutil"
	"video2sub/internal/ytdlp"
)

// versionArgs lists how to ask each tool for its version; tools missing here
// are only located, not run.
var versionArgs = map[string][]string{
	"FFmpeg":  {"-version"},
	"FFprobe": {"-version"},
}

func newDoctorCommand(ctx *commandContext) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools and the output directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig(cmd)
			if err != nil {
				return err
			}
			outputDir = textutil.FirstNonBlank(outputDir, cfg.Defaults.OutputDir)
			report := newDoctorReport(cmd.OutOrStdout())

			statuses := preflight.CheckSystemDeps(cmd.Context(), cfg)
			rows := make([][]string, 0, len(statuses))
			for _, status := range statuses {
				rows = append(rows, []string{
					status.Name,
					status.Command,
					dependencyState(status),
					toolDetail(cmd.Context(), ctx, cfg, status),
				})
			}
			report.section("External tools")
			report.table([]string{"Tool", "Command", "Status", "Detail"}, rows)

			report.section("Filesystem")
			settingsCheck(report, ctx)
			for _, check := range preflight.RunAll(cmd.Context(), cfg, outputDir) {
				report.check(check.Name, textutil.Ternary(check.Passed, checkOK, checkFail), check.Detail)
			}

			missing := deps.Missing(statuses)
			if len(missing) == 0 && report.failures == 0 {
				fmt.Fprintln(report.out)
				fmt.Fprintln(report.out, "All checks passed")
				return nil
			}
			if len(missing) > 0 {
				return services.Wrap(services.ErrExternalTool, "doctor", "tools", "missing "+deps.Describe(missing), nil)
			}
			return services.Wrap(services.ErrValidation, "doctor", "filesystem", fmt.Sprintf("%d filesystem check(s) failed", report.failures), nil)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output-dir", "d", "", "Directory to check instead of the configured output directory")
	return cmd
}

func settingsCheck(report *doctorReport, ctx *commandContext) {
	switch {
	case !ctx.configExists:
		report.check("Settings file", checkInfo, ctx.configPath+" (not found, built-in defaults)")
	case ctx.configFallback:
		report.check("Settings file", checkWarn, ctx.configPath+" (unusable, built-in defaults)")
	default:
		report.check("Settings file", checkOK, ctx.configPath)
	}
}

func dependencyState(status deps.Status) string {
	switch {
	case status.Available:
		return "OK"
	case status.Optional:
		return "optional"
	default:
		return "MISSING"
	}
}

func toolDetail(parent context.Context, ctx *commandContext, cfg *config.Config, status deps.Status) string {
	if !status.Available {
		return status.Detail
	}
	runCtx, cancel := context.WithTimeout(parent, 10*time.Second)
	defer cancel()
	runner := ctx.commandRunner(cfg)

	if status.Name == "yt-dlp" {
		version, err := ytdlp.NewClient(status.Command, runner, nil).Version(runCtx)
		if err == nil && version != "" {
			return "version " + version
		}
		return status.Path
	}
	args, ok := versionArgs[status.Name]
	if !ok {
		return status.Path
	}
	result, err := runner.Run(runCtx, services.Command{Name: status.Command, Args: args})
	if err != nil {
		return status.Path
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(result.Stdout)), "\n")
	if first == "" {
		return status.Path
	}
	return first
}
