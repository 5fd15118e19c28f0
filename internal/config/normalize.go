package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeGameDB(); err != nil {
		return err
	}
	c.normalizeBoxArt()
	c.normalizeLibrary()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("GEARBOY_DATA_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.DataDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	var err error
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.DatabaseDir) == "" {
		c.Paths.DatabaseDir = filepath.Join(c.Paths.DataDir, defaultDatabaseSubdir)
	}
	if c.Paths.DatabaseDir, err = expandPath(strings.TrimSpace(c.Paths.DatabaseDir)); err != nil {
		return fmt.Errorf("paths.database_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeGameDB() error {
	path := strings.TrimSpace(c.GameDB.Path)
	if path == "" {
		c.GameDB.Path = ""
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("gamedb.path: %w", err)
	}
	c.GameDB.Path = expanded
	return nil
}

func (c *Config) normalizeBoxArt() {
	c.BoxArt.BaseURL = strings.TrimRight(strings.TrimSpace(c.BoxArt.BaseURL), "/")
	if c.BoxArt.BaseURL == "" {
		c.BoxArt.BaseURL = defaultBoxArtBaseURL
	}
	c.BoxArt.UserAgent = strings.TrimSpace(c.BoxArt.UserAgent)
	if c.BoxArt.UserAgent == "" {
		c.BoxArt.UserAgent = defaultBoxArtUserAgent
	}
}

func (c *Config) normalizeLibrary() {
	exts := make([]string, 0, len(c.Library.Extensions))
	seen := make(map[string]struct{}, len(c.Library.Extensions))
	for _, ext := range c.Library.Extensions {
		normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
		if normalized == "" {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		exts = append(exts, normalized)
	}
	c.Library.Extensions = exts
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	if value, ok := os.LookupEnv("GEARBOY_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
