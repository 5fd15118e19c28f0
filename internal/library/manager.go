package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"gearboy/internal/catalog"
	"gearboy/internal/config"
	"gearboy/internal/fileutil"
	"gearboy/internal/logging"
	"gearboy/internal/romfile"
	"gearboy/internal/services"
)

var (
	// ErrScanInProgress is returned when a reconciliation is already running.
	ErrScanInProgress = errors.New("library scan already in progress")
	// ErrUnsupportedFile is returned when an imported file has no ROM extension.
	ErrUnsupportedFile = errors.New("not a recognized rom file")
)

// Catalog is the subset of the catalog store the manager mutates.
type Catalog interface {
	DataDir() string
	List() []catalog.Rom
	ByFile(file string) (catalog.Rom, bool)
	Add(file string) (catalog.Rom, error)
	Delete(rom catalog.Rom) (bool, error)
}

// ImageFetcher supplies box art for catalog entries.
type ImageFetcher interface {
	EnsureImage(ctx context.Context, rom catalog.Rom, blocking bool) bool
}

// Manager keeps the catalog in step with the managed ROM directory.
type Manager struct {
	store    Catalog
	images   ImageFetcher
	matcher  romfile.Matcher
	logger   *slog.Logger
	debounce time.Duration
	running  atomic.Bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithImages enables box-art fetching for imported and discovered ROMs.
func WithImages(images ImageFetcher) Option {
	return func(m *Manager) {
		m.images = images
	}
}

// WithExtensions overrides the recognized ROM extensions.
func WithExtensions(extensions []string) Option {
	return func(m *Manager) {
		if len(extensions) > 0 {
			m.matcher = romfile.NewMatcher(extensions)
		}
	}
}

// WithDebounce sets the quiet period Watch waits for before reconciling.
func WithDebounce(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.debounce = d
		}
	}
}

// New constructs a Manager for store.
func New(store Catalog, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		matcher:  romfile.NewMatcher(config.DefaultExtensions),
		logger:   logging.NewNop(),
		debounce: 2 * time.Second,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = logging.NewComponentLogger(m.logger, "library")
	return m
}

// Running reports whether a reconciliation is in progress.
func (m *Manager) Running() bool {
	return m.running.Load()
}

// ImportFile brings the file at path into the library. Files outside the
// managed directory are copied in first, replacing a same-named ROM. The file
// is cataloged unless an entry with its name already exists, and box art is
// requested in the background.
func (m *Manager) ImportFile(ctx context.Context, path string) (catalog.Rom, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return catalog.Rom{}, errors.New("import path required")
	}
	src, err := filepath.Abs(path)
	if err != nil {
		return catalog.Rom{}, fmt.Errorf("resolve import path: %w", err)
	}
	logger := logging.WithContext(services.WithRomFile(ctx, filepath.Base(src)), m.logger)

	if !m.matcher.Match(src) {
		return catalog.Rom{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Base(src))
	}

	dir := m.store.DataDir()
	rel, inside := fileutil.Within(dir, src)
	if !inside {
		rel = filepath.Base(src)
		if err := fileutil.CopyFile(src, filepath.Join(dir, rel)); err != nil {
			logging.WarnWithContext(logger, "rom import copy failed", "import_copy_failed",
				logging.String("source", src),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check the source file is readable and the data directory is writable"),
				logging.String(logging.FieldImpact, "rom was not imported"),
			)
			return catalog.Rom{}, fmt.Errorf("copy %s into library: %w", src, err)
		}
		logger.Debug("rom copied into library", logging.String("source", src))
	}

	rom, err := m.store.Add(rel)
	if err != nil {
		logging.WarnWithContext(logger, "rom import failed", "import_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "rom was not cataloged"),
		)
		return catalog.Rom{}, err
	}
	if m.images != nil {
		m.images.EnsureImage(ctx, rom, false)
	}
	return rom, nil
}
