package testsupport

import (
	"path/filepath"
	"testing"

	"gearboy/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Box art is disabled unless WithBoxArtURL is applied, so tests never reach
// the real thumbnail server.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = filepath.Join(base, "roms")
	cfgVal.Paths.DatabaseDir = filepath.Join(base, "roms", "database")
	cfgVal.Paths.LogDir = ""
	cfgVal.BoxArt.Enabled = false
	cfgVal.Library.WatchDebounceMS = 50

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

// WithBoxArtURL enables box art and points it at url, typically an
// httptest server.
func WithBoxArtURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.BoxArt.Enabled = true
		b.cfg.BoxArt.BaseURL = url
	}
}

// WithGameDB points the title database at path.
func WithGameDB(path string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.GameDB.Path = path
	}
}

// WithExtensions overrides the recognized ROM extensions.
func WithExtensions(exts ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Library.Extensions = exts
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.DataDir)
}
