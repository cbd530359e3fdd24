package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"fifoq/internal/queue"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateOutput(); err != nil {
		return err
	}
	if err := c.validatePrune(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateQueue() error {
	if strings.TrimSpace(c.Queue.ItemsPath) == "" {
		return errors.New("queue.items_path must be set")
	}
	if c.Queue.LockTimeoutSeconds <= 0 {
		return errors.New("queue.lock_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if err := ensureOneOf("logging.format", c.Logging.Format, logFormats); err != nil {
		return err
	}
	return ensureOneOf("logging.level", c.Logging.Level, logLevels)
}

func (c *Config) validateOutput() error {
	return ensureOneOf("output.format", c.Output.Format, outputFormats)
}

func (c *Config) validatePrune() error {
	if c.Prune.RetryLimit < 0 {
		return errors.New("prune.retry_limit must not be negative")
	}
	for _, name := range c.RuleNames() {
		if _, err := queue.ParseFilter([]byte(c.Prune.Rules[name])); err != nil {
			return fmt.Errorf("prune.rules.%s: %w", name, err)
		}
	}
	return nil
}

func ensureOneOf(key, value string, allowed []string) error {
	if slices.Contains(allowed, value) {
		return nil
	}
	return fmt.Errorf("%s: unsupported value %q (expected one of %s)", key, value, strings.Join(allowed, ", "))
}
