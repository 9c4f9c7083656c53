package config

import (
	"fmt"
	"strings"

	"video2sub/internal/language"
	"video2sub/internal/services"
	"video2sub/internal/subtitles"
)

// JobOptions is the fully merged option set for one run. It is built once and
// passed explicitly to every component.
type JobOptions struct {
	Language  string
	Model     string
	Format    subtitles.Format
	Proxy     string
	OutputDir string
	Force     bool
	Verbose   bool
}

// Overrides carries command-line values. Nil pointers leave the configured
// value in place.
type Overrides struct {
	Language  *string
	Model     *string
	Format    *string
	Proxy     *string
	OutputDir *string
	Force     bool
	Verbose   bool
}

// JobOptions merges defaults, the settings file, environment, and overrides
// (in that order of increasing priority) and validates the result.
func (c *Config) JobOptions(o Overrides) (JobOptions, error) {
	lang := pick(c.Defaults.Language, o.Language)
	model := pick(c.Defaults.Model, o.Model)
	format := pick(c.Defaults.Output, o.Format)
	proxy := pick(c.Defaults.Proxy, o.Proxy)
	outputDir := c.Defaults.OutputDir
	if o.OutputDir != nil {
		outputDir = strings.TrimSpace(*o.OutputDir)
		if outputDir != "" {
			expanded, err := expandPath(outputDir)
			if err != nil {
				return JobOptions{}, services.Wrap(services.ErrValidation, "options", "output dir", "cannot resolve output directory", err)
			}
			outputDir = expanded
		}
	}

	normalizedLang, err := language.Normalize(lang)
	if err != nil {
		return JobOptions{}, services.Wrap(services.ErrValidation, "options", "language", "invalid --lang", err)
	}
	if err := validateModel(model); err != nil {
		return JobOptions{}, services.Wrap(services.ErrValidation, "options", "model", "invalid --model", err)
	}
	parsedFormat, err := subtitles.ParseFormat(format)
	if err != nil {
		return JobOptions{}, services.Wrap(services.ErrValidation, "options", "format", "invalid --output", err)
	}
	if err := validateProxy(proxy); err != nil {
		return JobOptions{}, services.Wrap(services.ErrValidation, "options", "proxy", "invalid --proxy", err)
	}

	return JobOptions{
		Language:  normalizedLang,
		Model:     model,
		Format:    parsedFormat,
		Proxy:     proxy,
		OutputDir: outputDir,
		Force:     o.Force,
		Verbose:   o.Verbose,
	}, nil
}

// Describe renders the options for debug logging.
func (o JobOptions) Describe() string {
	proxy := "none"
	if o.Proxy != "" {
		proxy = o.Proxy
	}
	return fmt.Sprintf("lang=%s model=%s format=%s proxy=%s force=%t", o.Language, o.Model, o.Format, proxy, o.Force)
}

func pick(configured string, override *string) string {
	if override == nil {
		return strings.TrimSpace(configured)
	}
	return strings.TrimSpace(*override)
}
