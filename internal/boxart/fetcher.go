package boxart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gearboy/internal/catalog"
	"gearboy/internal/logging"
	"gearboy/internal/romfile"
	"gearboy/internal/services"
	"gearboy/internal/services/libretro"
	"gearboy/internal/textutil"
)

// ImageExt is the extension of cached box-art files.
const ImageExt = ".png"

// Catalog records image names on catalog entries.
type Catalog interface {
	SetImage(id int, image string) (catalog.Rom, error)
}

// Fetcher downloads box art into the database directory and keeps decoded
// images in memory.
type Fetcher struct {
	dir    string
	client libretro.Fetcher
	store  Catalog
	logger *slog.Logger

	bgCtx    context.Context
	bgCancel context.CancelFunc
	wg       sync.WaitGroup

	mu       sync.RWMutex
	cache    map[string]image.Image
	inflight map[string]*pending
}

// pending tracks one in-flight download and the entries waiting on it.
type pending struct {
	roms []catalog.Rom
	done chan struct{}
	ok   bool
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithLogger sets the fetcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// New creates a fetcher storing images in dir. A nil client disables network
// fetches; images already on disk are still linked to their entries.
func New(dir string, client libretro.Fetcher, store Catalog, opts ...Option) *Fetcher {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Fetcher{
		dir:      dir,
		client:   client,
		store:    store,
		logger:   logging.NewNop(),
		bgCtx:    ctx,
		bgCancel: cancel,
		cache:    make(map[string]image.Image),
		inflight: make(map[string]*pending),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.logger = logging.NewComponentLogger(f.logger, "boxart")
	return f
}

// ImageName returns the cache file name for a title, or "" for an empty title.
func ImageName(title string) string {
	name := textutil.ThumbnailName(title)
	if name == "" {
		return ""
	}
	return name + ImageExt
}

// EnsureImage makes sure rom has box art. ROMs without a title are skipped.
// When the image is already on disk no request is made and the entry is only
// updated if it lacks an image reference. Otherwise the image is downloaded,
// inline when blocking is set or in a background goroutine tracked by Wait.
//
// Entries sharing a title share one download. Every entry that asked for the
// image while it was in flight is linked once it lands, and a blocking caller
// joining a running download waits for it.
//
// Failures are logged at debug level and never returned; the entry simply
// keeps no image. EnsureImage reports whether the image is on disk when it
// returns, so background downloads always report false.
func (f *Fetcher) EnsureImage(ctx context.Context, rom catalog.Rom, blocking bool) bool {
	name := ImageName(rom.Title)
	if name == "" {
		return false
	}
	if f.exists(name) {
		if rom.Image != name {
			f.link(ctx, rom, name)
		}
		return true
	}
	if f.client == nil {
		return false
	}

	p, owner := f.claim(name, rom)
	if !owner {
		if !blocking {
			return false
		}
		select {
		case <-p.done:
			return p.ok
		case <-ctx.Done():
			return false
		}
	}
	// A download may have finished between the exists check and the claim.
	if f.exists(name) {
		f.finish(ctx, name, true)
		return true
	}
	if !blocking {
		f.wg.Go(func() {
			f.finish(f.bgCtx, name, f.download(f.bgCtx, rom, name))
		})
		return false
	}
	ok := f.download(ctx, rom, name)
	f.finish(ctx, name, ok)
	return ok
}

// Image returns the decoded box art for name, loading it from disk on first use.
func (f *Fetcher) Image(name string) (image.Image, bool) {
	if name == "" {
		return nil, false
	}
	f.mu.RLock()
	img, ok := f.cache[name]
	f.mu.RUnlock()
	if ok {
		return img, true
	}

	data, err := os.ReadFile(f.Path(name))
	if err != nil {
		return nil, false
	}
	img, _, err = image.Decode(bytes.NewReader(data))
	if err != nil {
		f.logger.Debug("cached box art unreadable",
			logging.String("image", name),
			logging.Error(err),
		)
		return nil, false
	}
	f.remember(name, img)
	return img, true
}

// Path returns the on-disk location of an image name.
func (f *Fetcher) Path(name string) string {
	return filepath.Join(f.dir, name)
}

// Wait blocks until background downloads finish.
func (f *Fetcher) Wait() {
	f.wg.Wait()
}

// Close cancels background downloads and waits for them to stop.
func (f *Fetcher) Close() {
	f.bgCancel()
	f.wg.Wait()
}

func (f *Fetcher) download(ctx context.Context, rom catalog.Rom, name string) bool {
	logger := logging.WithContext(services.WithRomFile(services.WithRomID(ctx, rom.ID), rom.File), f.logger)

	data, system, err := f.fetch(ctx, rom)
	if err != nil {
		logger.Debug("box art unavailable",
			logging.String("title", rom.Title),
			logging.Error(err),
		)
		return false
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		logger.Debug("box art decode failed",
			logging.String("title", rom.Title),
			logging.String("system", system),
			logging.Error(err),
		)
		return false
	}
	if err := f.write(name, data); err != nil {
		logger.Debug("box art write failed",
			logging.String("image", name),
			logging.Error(err),
		)
		return false
	}
	f.remember(name, img)
	logger.Info("box art downloaded",
		logging.String("image", name),
		logging.String("system", system),
		logging.String("format", format),
		logging.String(logging.FieldEventType, "boxart_downloaded"),
	)
	return true
}

// fetch tries each thumbnail system in preference order, moving on only when
// the service has no art for the title.
func (f *Fetcher) fetch(ctx context.Context, rom catalog.Rom) ([]byte, string, error) {
	var lastErr error
	for _, system := range libretro.Systems(romfile.IsColor(rom.File)) {
		data, err := f.client.FetchBoxArt(ctx, system, rom.Title)
		if err == nil {
			return data, system, nil
		}
		lastErr = err
		if !errors.Is(err, libretro.ErrNotFound) {
			break
		}
	}
	return nil, "", lastErr
}

func (f *Fetcher) write(name string, data []byte) error {
	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("create image dir: %w", err)
	}
	tmp, err := os.CreateTemp(f.dir, "."+strings.TrimSuffix(name, ImageExt)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp image: %w", err)
	}
	if err := os.Rename(tmpPath, f.Path(name)); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename image: %w", err)
	}
	return nil
}

func (f *Fetcher) link(ctx context.Context, rom catalog.Rom, name string) {
	if f.store == nil || rom.ID == 0 {
		return
	}
	if _, err := f.store.SetImage(rom.ID, name); err != nil {
		logging.WarnWithContext(logging.WithContext(services.WithRomID(ctx, rom.ID), f.logger),
			"failed to record box art on catalog entry", "boxart_link_failed",
			logging.String("image", name),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run gearboy boxart <id> to retry"),
			logging.String(logging.FieldImpact, "entry shows no cover image"),
		)
	}
}

func (f *Fetcher) exists(name string) bool {
	info, err := os.Stat(f.Path(name))
	return err == nil && info.Mode().IsRegular()
}

func (f *Fetcher) remember(name string, img image.Image) {
	f.mu.Lock()
	f.cache[name] = img
	f.mu.Unlock()
}

// claim registers rom as waiting on name. It reports whether the caller owns
// the download; otherwise the running download is returned.
func (f *Fetcher) claim(name string, rom catalog.Rom) (*pending, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, busy := f.inflight[name]; busy {
		p.roms = append(p.roms, rom)
		return p, false
	}
	p := &pending{roms: []catalog.Rom{rom}, done: make(chan struct{})}
	f.inflight[name] = p
	return p, true
}

// finish ends the download of name, links every waiting entry when it
// succeeded, and wakes blocked callers.
func (f *Fetcher) finish(ctx context.Context, name string, ok bool) {
	f.mu.Lock()
	p := f.inflight[name]
	delete(f.inflight, name)
	f.mu.Unlock()
	if p == nil {
		return
	}
	if ok {
		for _, rom := range p.roms {
			if rom.Image != name {
				f.link(ctx, rom, name)
			}
		}
	}
	p.ok = ok
	close(p.done)
}
