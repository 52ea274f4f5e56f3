package testsupport

import (
	"path/filepath"
	"testing"

	"rive2d/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.LibraryDir = filepath.Join(base, "models")
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Logging.Dir = ""

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithMakeCurrent toggles whether imports select the new model.
func WithMakeCurrent(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Import.MakeCurrent = enabled
	}
}

// WithSidecarName overrides the sidecar file name on the test config.
func WithSidecarName(name string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Import.SidecarName = name
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LibraryDir)
}
