package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateBoxArt(); err != nil {
		return err
	}
	if err := c.validateLibrary(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.DatabaseDir) == "" {
		return errors.New("paths.database_dir must be set")
	}
	return nil
}

func (c *Config) validateBoxArt() error {
	if c.BoxArt.TimeoutSeconds <= 0 {
		return errors.New("boxart.timeout_seconds must be positive")
	}
	parsed, err := url.Parse(c.BoxArt.BaseURL)
	if err != nil {
		return fmt.Errorf("boxart.base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("boxart.base_url must use http or https, got %q", c.BoxArt.BaseURL)
	}
	if parsed.Host == "" {
		return fmt.Errorf("boxart.base_url must include a host, got %q", c.BoxArt.BaseURL)
	}
	return nil
}

func (c *Config) validateLibrary() error {
	if len(c.Library.Extensions) == 0 {
		return errors.New("library.extensions must list at least one extension")
	}
	if c.Library.WatchDebounceMS <= 0 {
		return errors.New("library.watch_debounce_ms must be positive")
	}
	if c.Library.RecentDays <= 0 {
		return errors.New("library.recent_days must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error, got %q", c.Logging.Level)
	}
	return nil
}
