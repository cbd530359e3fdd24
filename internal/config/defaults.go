package config

const (
	defaultConfigPath         = "~/.config/fifoq/config.toml"
	defaultItemsPath          = "~/.local/share/fifoq/items.json"
	defaultLockTimeoutSeconds = 5
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultOutputFormat       = "table"
	defaultRetryLimit         = 10

	// itemsPathEnv overrides queue.items_path when the file leaves it unset.
	itemsPathEnv = "FIFOQ_ITEMS"
)

var (
	logFormats    = []string{"console", "json"}
	logLevels     = []string{"debug", "info", "warn", "error"}
	outputFormats = []string{"table", "text", "json"}
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Queue: Queue{
			LockTimeoutSeconds: defaultLockTimeoutSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Output: Output{
			Format: defaultOutputFormat,
		},
		Prune: Prune{
			Rules: map[string]string{
				"completed": `{"status":"completed"}`,
				"failed":    `{"status":"failed"}`,
			},
			RetryLimit: defaultRetryLimit,
		},
	}
}
