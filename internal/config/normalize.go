package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizeQueue(); err != nil {
		return err
	}
	c.normalizeLogging()
	c.normalizeOutput()
	c.normalizePrune()
	return nil
}

func (c *Config) normalizeQueue() error {
	c.Queue.ItemsPath = strings.TrimSpace(c.Queue.ItemsPath)
	if c.Queue.ItemsPath == "" {
		if value, ok := os.LookupEnv(itemsPathEnv); ok && strings.TrimSpace(value) != "" {
			c.Queue.ItemsPath = strings.TrimSpace(value)
		} else {
			c.Queue.ItemsPath = defaultItemsPath
		}
	}
	var err error
	if c.Queue.ItemsPath, err = expandPath(c.Queue.ItemsPath); err != nil {
		return fmt.Errorf("queue.items_path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeOutput() {
	c.Output.Format = strings.ToLower(strings.TrimSpace(c.Output.Format))
	if c.Output.Format == "" {
		c.Output.Format = defaultOutputFormat
	}
}

func (c *Config) normalizePrune() {
	if len(c.Prune.Rules) == 0 {
		return
	}
	rules := make(map[string]string, len(c.Prune.Rules))
	for name, spec := range c.Prune.Rules {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		rules[name] = strings.TrimSpace(spec)
	}
	c.Prune.Rules = rules
}
