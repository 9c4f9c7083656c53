package main

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"video2sub/internal/config"
	"video2sub/internal/logging"
	"video2sub/internal/services"
)

type commandContext struct {
	configFlag *string

	// runner replaces the process runner for every external tool; tests
	// inject fakes here.
	runner services.CommandRunner

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
	// configFallback is set when a discovered settings file was unusable.
	configFallback bool
}

func newCommandContext() *commandContext {
	return &commandContext{configFlag: new(string)}
}

// ensureConfig loads the settings file once. An explicit --config that is
// missing or fails to load is an error; a broken discovered file falls back to
// built-in defaults with a warning.
func (c *commandContext) ensureConfig(cmd *cobra.Command) (*config.Config, error) {
	c.configOnce.Do(func() {
		explicit := strings.TrimSpace(*c.configFlag)
		cfg, path, exists, err := config.Load(explicit)
		c.configPath, c.configExists = path, exists
		if err == nil && explicit != "" && !exists {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "config file not found: "+path, nil)
			return
		}
		if err == nil {
			c.config = cfg
			return
		}
		if explicit != "" || !exists {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", path, err)
			return
		}
		fallback, builtinErr := config.Builtin()
		if builtinErr != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "builtin", "built-in defaults rejected", errors.Join(err, builtinErr))
			return
		}
		logging.WarnWithContext(bootstrapLogger(cmd.ErrOrStderr()), "settings file unusable, using built-in defaults", "config_fallback",
			logging.String("path", path),
			logging.String(logging.FieldErrorHint, "run `video2sub config validate` for details"),
			logging.String(logging.FieldImpact, "settings file ignored for this run"),
			logging.Error(err),
		)
		c.config = fallback
		c.configFallback = true
	})
	return c.config, c.configErr
}

func (c *commandContext) newLogger(cmd *cobra.Command, verbose bool) (*slog.Logger, error) {
	cfg, err := c.ensureConfig(cmd)
	if err != nil {
		return nil, err
	}
	return logging.NewFromConfig(cfg, verbose, cmd.ErrOrStderr())
}

func (c *commandContext) commandRunner(cfg *config.Config) services.CommandRunner {
	if c.runner != nil {
		return c.runner
	}
	return services.ExecRunner{Timeout: cfg.ToolTimeout()}
}

func bootstrapLogger(w io.Writer) *slog.Logger {
	logger, err := logging.New(logging.Options{Format: "console", Level: "warn", Writer: w, Color: logging.IsTerminal(w)})
	if err != nil {
		return logging.NewNop()
	}
	return logger
}
