package main

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"video2sub/internal/config"
	"video2sub/internal/logging"
	"video2sub/internal/services"
	"video2sub/internal/workflow"
)

// overrides keeps only the flags the user actually set so the settings file
// supplies everything else.
func (f *runFlags) overrides(cmd *cobra.Command) config.Overrides {
	o := config.Overrides{Force: f.force, Verbose: f.verbose}
	set := func(name string, value *string) *string {
		if cmd.Flags().Changed(name) {
			return value
		}
		return nil
	}
	o.Language = set("lang", &f.language)
	o.Model = set("model", &f.model)
	o.Proxy = set("proxy", &f.proxy)
	o.Format = set("output", &f.output)
	o.OutputDir = set("output-dir", &f.outputDir)
	return o
}

func runConvert(cmd *cobra.Command, ctx *commandContext, flags *runFlags, raw string) error {
	cfg, err := ctx.ensureConfig(cmd)
	if err != nil {
		return err
	}
	opts, err := cfg.JobOptions(flags.overrides(cmd))
	if err != nil {
		return err
	}
	logger, err := ctx.newLogger(cmd, opts.Verbose)
	if err != nil {
		return err
	}

	runCtx := services.WithRunID(cmd.Context(), uuid.NewString())
	runner, err := workflow.NewRunner(cfg, ctx.commandRunner(cfg), logger)
	if err != nil {
		return err
	}
	stderr := cmd.ErrOrStderr()
	runner.ToolOutput = stderr

	var progress *downloadProgress
	if !opts.Verbose && logging.IsTerminal(stderr) {
		progress = newDownloadProgress(stderr)
		runner.Progress = progress.Update
	}
	result, err := runner.Run(runCtx, raw, opts)
	if progress != nil {
		progress.Finish()
	}
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), result)
	return nil
}

func printResult(out io.Writer, result workflow.Result) {
	if result.URLError != nil {
		fmt.Fprintf(out, "Failed to process %s: %v\n", result.Input.Path, result.URLError)
		return
	}
	for _, path := range result.Outputs {
		switch result.Source {
		case workflow.SourceExisting:
			fmt.Fprintf(out, "%s already exists (use --force to regenerate)\n", path)
		case workflow.SourceNativeSubtitle:
			fmt.Fprintf(out, "%s has been generated from the published subtitle.\n", path)
		default:
			fmt.Fprintf(out, "%s has been generated.\n", path)
		}
	}
}
