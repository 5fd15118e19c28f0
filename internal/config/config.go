package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir     string `toml:"data_dir"`
	DatabaseDir string `toml:"database_dir"`
	LogDir      string `toml:"log_dir"`
}

// GameDB selects the checksum-to-title reference data.
type GameDB struct {
	// Path overrides the bundled database. Files ending in .db or .sqlite are
	// opened as an index; anything else is read as JSON.
	Path string `toml:"path"`
}

// BoxArt contains configuration for the libretro thumbnail service.
type BoxArt struct {
	Enabled        bool   `toml:"enabled"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`
}

// Library contains configuration for the managed ROM folder.
type Library struct {
	Extensions      []string `toml:"extensions"`
	WatchDebounceMS int      `toml:"watch_debounce_ms"`
	RecentDays      int      `toml:"recent_days"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for Gearboy.
//
// Configuration sections by subsystem:
//   - Paths: ROM folder, catalog database directory, logs
//   - GameDB: checksum to title reference data
//   - BoxArt: thumbnail downloads
//   - Library: recognized extensions and watch timing
//   - Logging: log format, level, and retention
type Config struct {
	Paths   Paths   `toml:"paths"`
	GameDB  GameDB  `toml:"gamedb"`
	BoxArt  BoxArt  `toml:"boxart"`
	Library Library `toml:"library"`
	Logging Logging `toml:"logging"`
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
		decoder.DisallowUnknownFields()
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

	projectPath, err := filepath.Abs("gearboy.toml")
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

// EnsureDirectories creates the ROM folder and the catalog database directory.
// The log directory is created by the logger when a file sink is configured.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.DatabaseDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// CatalogPath returns the location of the persisted catalog.
func (c *Config) CatalogPath() string {
	return filepath.Join(c.Paths.DatabaseDir, CatalogFileName)
}

// BoxArtTimeout returns the HTTP timeout for thumbnail downloads.
func (c *Config) BoxArtTimeout() time.Duration {
	return time.Duration(c.BoxArt.TimeoutSeconds) * time.Second
}

// WatchDebounce returns the quiet period the watcher waits before reconciling.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.Library.WatchDebounceMS) * time.Millisecond
}

// RecentWindow returns how far back the recents view reaches.
func (c *Config) RecentWindow() time.Duration {
	return time.Duration(c.Library.RecentDays) * 24 * time.Hour
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

// SampleConfig returns the embedded sample configuration.
func SampleConfig() string {
	return sampleConfig
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
