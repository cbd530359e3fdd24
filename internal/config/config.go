package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"fifoq/internal/queue"
)

//go:embed sample_config.toml
var sampleConfig string

// ErrUnknownRule is returned by Rule when no prune rule has the given name.
var ErrUnknownRule = errors.New("unknown prune rule")

// Queue contains item file settings.
type Queue struct {
	ItemsPath          string `toml:"items_path"`
	LockTimeoutSeconds int    `toml:"lock_timeout_seconds"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Output controls how commands render queue contents.
type Output struct {
	Format string `toml:"format"`
}

// Prune contains named filters usable with `fifoq prune --rule`.
type Prune struct {
	// Rules maps a rule name to the JSON form of a filter.
	Rules map[string]string `toml:"rules"`
	// RetryLimit is the default for `fifoq prune --retry-limit` without a value.
	RetryLimit int `toml:"retry_limit"`
}

// Config encapsulates all configuration values for fifoq.
type Config struct {
	Queue   Queue   `toml:"queue"`
	Logging Logging `toml:"logging"`
	Output  Output  `toml:"output"`
	Prune   Prune   `toml:"prune"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("fifoq.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the directory holding the item file.
func (c *Config) EnsureDirectories() error {
	if strings.TrimSpace(c.Queue.ItemsPath) == "" {
		return nil
	}
	dir := filepath.Dir(c.Queue.ItemsPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	return nil
}

// LockTimeout returns how long commands wait for the item file lock.
func (c *Config) LockTimeout() time.Duration {
	return time.Duration(c.Queue.LockTimeoutSeconds) * time.Second
}

// Rule returns the parsed filter registered under name.
func (c *Config) Rule(name string) (*queue.Filter, error) {
	spec, ok := c.Prune.Rules[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w %q (known: %s)", ErrUnknownRule, name, strings.Join(c.RuleNames(), ", "))
	}
	f, err := queue.ParseFilter([]byte(spec))
	if err != nil {
		return nil, fmt.Errorf("prune.rules.%s: %w", name, err)
	}
	return f, nil
}

// RuleNames returns the configured prune rule names in sorted order.
func (c *Config) RuleNames() []string {
	names := make([]string, 0, len(c.Prune.Rules))
	for name := range c.Prune.Rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
