package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"fifoq/internal/config"
	"fifoq/internal/itemfile"
	"fifoq/internal/logging"
)

type globalFlags struct {
	config   string
	items    string
	json     bool
	logLevel string
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	correlationID string
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{
		flags:         flags,
		correlationID: uuid.NewString(),
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		if items := strings.TrimSpace(c.flags.items); items != "" {
			expanded, err := config.ExpandPath(items)
			if err != nil {
				c.configErr = fmt.Errorf("resolve items path: %w", err)
				return
			}
			cfg.Queue.ItemsPath = expanded
		}
		if level := strings.TrimSpace(c.flags.logLevel); level != "" {
			cfg.Logging.Level = strings.ToLower(level)
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cmd *cobra.Command) *slog.Logger {
	cfg, err := c.ensureConfig()
	if err != nil {
		return logging.NewNop()
	}
	logger, err := logging.NewFromConfig(cfg, cmd.ErrOrStderr(), c.correlationID)
	if err != nil {
		return logging.NewNop()
	}
	return logger
}

// withStore opens the configured item file and runs fn with a context
// carrying this invocation's correlation id.
func (c *commandContext) withStore(cmd *cobra.Command, fn func(context.Context, *itemfile.Store, *slog.Logger) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger := c.logger(cmd)
	store, err := itemfile.OpenConfig(cfg, logger)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logging.WithRequestID(ctx, c.correlationID)

	if err := fn(ctx, store, logger); err != nil {
		logging.ErrorWithContext(ctx, logger, "command failed", "command_failed",
			logging.String("command", cmd.CommandPath()),
			logging.ItemsPath(store.Path()),
			logging.Error(err),
		)
		return err
	}
	return nil
}

// outputFormat resolves --json against output.format.
func (c *commandContext) outputFormat() string {
	if c.flags.json {
		return "json"
	}
	cfg, err := c.ensureConfig()
	if err != nil || cfg == nil {
		return "table"
	}
	return cfg.Output.Format
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
