package testsupport

import (
	"path/filepath"
	"testing"

	"fifoq/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose item file lives in a per-test temp directory.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Queue.ItemsPath = filepath.Join(base, "items.json")
	cfgVal.Queue.LockTimeoutSeconds = 1

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.Validate(); err != nil {
		t.Fatalf("test config invalid: %v", err)
	}
	return builder.cfg
}

// WithItemsFile places the item file under the temp directory using name, so
// the extension selects the storage format.
func WithItemsFile(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Queue.ItemsPath = filepath.Join(b.baseDir, name)
	}
}

// WithRule registers a named prune rule in its JSON filter form.
func WithRule(name, filter string) ConfigOption {
	return func(b *configBuilder) {
		if b.cfg.Prune.Rules == nil {
			b.cfg.Prune.Rules = map[string]string{}
		}
		b.cfg.Prune.Rules[name] = filter
	}
}

// WithOutputFormat overrides the default render format.
func WithOutputFormat(format string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Output.Format = format
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Queue.ItemsPath)
}
