package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"gearboy/internal/boxart"
	"gearboy/internal/catalog"
	"gearboy/internal/config"
	"gearboy/internal/gamedb"
	"gearboy/internal/library"
	"gearboy/internal/logging"
	"gearboy/internal/services"
	"gearboy/internal/services/libretro"
)

// commandContext builds the shared services once per invocation, on first use.
type commandContext struct {
	configFlag   string
	jsonFlag     bool
	logLevelFlag string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error

	logger  *slog.Logger
	titles  gamedb.Source
	store   *catalog.Store
	images  *boxart.Fetcher
	manager *library.Manager
}

func newCommandContext() *commandContext {
	return &commandContext{}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, path, exists, err := config.Load(strings.TrimSpace(c.configFlag))
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", path, err)
			return
		}
		if level := strings.ToLower(strings.TrimSpace(c.logLevelFlag)); level != "" {
			cfg.Logging.Level = level
			if err := cfg.Validate(); err != nil {
				c.configErr = services.Wrap(services.ErrConfiguration, "config", "log level", "", err)
				return
			}
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = path
		c.configExists = exists
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	if c.logger != nil {
		return c.logger, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	c.logger = logging.WithSession(logger, uuid.NewString())
	return c.logger, nil
}

func (c *commandContext) ensureTitles() (gamedb.Source, error) {
	if c.titles != nil {
		return c.titles, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	titles, err := gamedb.Open(cfg.GameDB.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("load game database: %w", err)
	}
	c.titles = titles
	return titles, nil
}

func (c *commandContext) ensureStore() (*catalog.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	titles, err := c.ensureTitles()
	if err != nil {
		return nil, err
	}
	store, err := catalog.Open(cfg.CatalogPath(), cfg.Paths.DataDir, titles, catalog.WithLogger(c.logger))
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	c.store = store
	return store, nil
}

func (c *commandContext) ensureImages() (*boxart.Fetcher, error) {
	if c.images != nil {
		return c.images, nil
	}
	store, err := c.ensureStore()
	if err != nil {
		return nil, err
	}
	cfg := c.config

	var client libretro.Fetcher
	if cfg.BoxArt.Enabled {
		lc, err := libretro.New(cfg.BoxArt.BaseURL,
			libretro.WithTimeout(cfg.BoxArtTimeout()),
			libretro.WithUserAgent(cfg.BoxArt.UserAgent),
		)
		if err != nil {
			return nil, services.Wrap(services.ErrConfiguration, "boxart", "client", "", err)
		}
		client = lc
	}
	c.images = boxart.New(cfg.Paths.DatabaseDir, client, store, boxart.WithLogger(c.logger))
	return c.images, nil
}

func (c *commandContext) ensureManager() (*library.Manager, error) {
	if c.manager != nil {
		return c.manager, nil
	}
	images, err := c.ensureImages()
	if err != nil {
		return nil, err
	}
	cfg := c.config
	c.manager = library.New(c.store,
		library.WithLogger(c.logger),
		library.WithImages(images),
		library.WithExtensions(cfg.Library.Extensions),
		library.WithDebounce(cfg.WatchDebounce()),
	)
	return c.manager, nil
}

// close waits for background downloads and releases the title database.
func (c *commandContext) close() {
	if c.images != nil {
		c.images.Wait()
	}
	if c.titles != nil {
		_ = c.titles.Close()
	}
}

func (c *commandContext) lookupRom(arg string) (catalog.Rom, error) {
	id, err := parseRomID(arg)
	if err != nil {
		return catalog.Rom{}, err
	}
	store, err := c.ensureStore()
	if err != nil {
		return catalog.Rom{}, err
	}
	rom, ok := store.ByID(id)
	if !ok {
		return catalog.Rom{}, fmt.Errorf("%w: no rom with id %d", catalog.ErrNotFound, id)
	}
	return rom, nil
}

func parseRomID(arg string) (int, error) {
	id, err := strconv.Atoi(strings.TrimPrefix(strings.TrimSpace(arg), "#"))
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid rom id %q", arg)
	}
	return id, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
