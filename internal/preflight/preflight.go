package preflight

import (
	"context"
	"fmt"
	"os"

	"video2sub/internal/config"
	"video2sub/internal/deps"
	"video2sub/internal/input"
	"video2sub/internal/services"
)

const stage = "preflight"

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the filesystem checks for the directory outputs land in.
// An empty outputDir means the working directory.
func RunAll(_ context.Context, cfg *config.Config, outputDir string) []Result {
	if cfg == nil {
		return nil
	}
	dir, err := resolveDir(outputDir)
	if err != nil {
		return []Result{{Name: "Output directory", Detail: err.Error()}}
	}

	results := []Result{CheckDirectoryAccess("Output directory", dir)}
	if min := cfg.MinFreeBytes(); min > 0 {
		results = append(results, CheckFreeSpace("Free space", dir, min))
	}
	return results
}

// Ensure fails when a tool required for kind is missing or the output
// directory cannot take new files. Missing tools are reported as
// services.ErrExternalTool; directory problems as services.ErrValidation.
func Ensure(ctx context.Context, cfg *config.Config, kind input.Kind, outputDir string) error {
	if cfg == nil {
		return services.Wrap(services.ErrConfiguration, stage, "config", "configuration unavailable", nil)
	}
	if missing := deps.Missing(CheckSystemDeps(ctx, cfg, kind)); len(missing) > 0 {
		return services.Wrap(services.ErrExternalTool, stage, "tools", "missing "+deps.Describe(missing), nil)
	}
	// the output directory may not exist yet; it is created on demand
	dir, err := resolveDir(outputDir)
	if err != nil {
		return services.Wrap(services.ErrValidation, stage, "output dir", "cannot resolve output directory", err)
	}
	if _, statErr := os.Stat(dir); statErr != nil {
		return nil
	}
	for _, result := range RunAll(ctx, cfg, dir) {
		if !result.Passed {
			return services.Wrap(services.ErrValidation, stage, result.Name, result.Detail, nil)
		}
	}
	return nil
}

func resolveDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("working directory: %w", err)
	}
	return wd, nil
}
