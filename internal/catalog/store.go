package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"gearboy/internal/gamedb"
	"gearboy/internal/logging"
	"gearboy/internal/romfile"
)

var (
	// ErrUnreadable marks a ROM file whose bytes could not be checksummed.
	ErrUnreadable = errors.New("rom file unreadable")
	// ErrPersist marks a failed catalog write. The in-memory catalog is left
	// unchanged when it is returned.
	ErrPersist = errors.New("catalog persist failed")
	// ErrNotFound is returned when no entry matches the requested key.
	ErrNotFound = errors.New("catalog entry not found")
	// ErrDuplicateFile is returned when an update would give two entries the
	// same file name.
	ErrDuplicateFile = errors.New("file already cataloged")
)

// Store is the in-memory catalog of ROM entries, persisted to a JSON file
// after every mutation.
type Store struct {
	path     string
	dataDir  string
	resolver gamedb.Resolver
	logger   *slog.Logger
	feed     *Feed
	lock     *flock.Flock
	now      func() time.Time

	mu       sync.RWMutex
	roms     []Rom
	collator *collate.Collator
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithFeed publishes committed mutations to feed.
func WithFeed(feed *Feed) Option {
	return func(s *Store) {
		if feed != nil {
			s.feed = feed
		}
	}
}

// WithClock overrides the time source used for usedOn stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open loads the catalog persisted at path. ROM file names are resolved
// relative to dataDir. A missing or corrupt catalog file yields an empty
// catalog and a warning rather than an error.
func Open(path, dataDir string, resolver gamedb.Resolver, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("catalog path required")
	}
	if strings.TrimSpace(dataDir) == "" {
		return nil, errors.New("catalog data directory required")
	}
	if resolver == nil {
		return nil, errors.New("catalog title resolver required")
	}
	s := &Store{
		path:     path,
		dataDir:  dataDir,
		resolver: resolver,
		logger:   logging.NewNop(),
		feed:     NewFeed(0),
		lock:     flock.New(path + ".lock"),
		now:      time.Now,
		collator: collate.New(language.Und, collate.IgnoreCase),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = logging.NewComponentLogger(s.logger, "catalog")

	roms, err := s.load()
	if err != nil {
		logging.WarnWithContext(s.logger, "catalog unreadable; starting empty", "catalog_load_failed",
			logging.String("path", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "run gearboy sync to rebuild the catalog from the ROM folder"),
			logging.String(logging.FieldImpact, "favorites and play history are reset"),
		)
		roms = nil
	}
	s.roms = s.dedupe(roms)
	s.sortLocked(s.roms)
	return s, nil
}

// Path returns the catalog file location.
func (s *Store) Path() string { return s.path }

// DataDir returns the directory ROM file names are relative to.
func (s *Store) DataDir() string { return s.dataDir }

// Feed returns the change feed mutations are published to.
func (s *Store) Feed() *Feed { return s.feed }

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.roms)
}

// List returns a snapshot of the catalog in display order.
func (s *Store) List() []Rom {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.roms)
}

// View returns the entries selected by view.
func (s *Store) View(view View, window time.Duration) []Rom {
	return Filter(s.List(), view, s.now(), window)
}

// ByID returns the entry with the given id.
func (s *Store) ByID(id int) (Rom, bool) {
	return s.find(Rom{ID: id})
}

// ByFile returns the entry whose file name equals file.
func (s *Store) ByFile(file string) (Rom, bool) {
	if file == "" {
		return Rom{}, false
	}
	return s.find(Rom{File: file})
}

func (s *Store) find(key Rom) (Rom, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(key); i >= 0 {
		return s.roms[i], true
	}
	return Rom{}, false
}

// Add catalogs file, a name relative to the data directory. The checksum is
// computed from the file contents and the title resolved from it. When file is
// already cataloged the existing entry is returned unchanged. A file that
// cannot be read leaves the catalog untouched and returns ErrUnreadable.
func (s *Store) Add(file string) (Rom, error) {
	file = filepath.ToSlash(strings.TrimSpace(file))
	if file == "" {
		return Rom{}, errors.New("rom file name required")
	}
	if existing, ok := s.ByFile(file); ok {
		return existing, nil
	}

	sum, err := romfile.Checksum(filepath.Join(s.dataDir, filepath.FromSlash(file)))
	if err != nil {
		return Rom{}, fmt.Errorf("%w: %s: %w", ErrUnreadable, file, err)
	}
	title := s.resolver.TitleFor(sum)

	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexLocked(Rom{File: file}); i >= 0 {
		return s.roms[i], nil
	}
	rom := Rom{
		ID:       s.nextIDLocked(),
		File:     file,
		Title:    title,
		Checksum: sum,
	}
	next := append(slices.Clone(s.roms), rom)
	if err := s.commitLocked(next); err != nil {
		return Rom{}, err
	}
	s.feed.Publish(EventAdded, rom)
	s.logger.Info("rom cataloged",
		logging.String(logging.FieldRomFile, rom.File),
		logging.Int(logging.FieldRomID, rom.ID),
		logging.String(logging.FieldChecksum, rom.Checksum),
		logging.String("title", rom.Title),
		logging.String(logging.FieldEventType, "rom_added"),
	)
	return rom, nil
}

// Delete removes the entry matching rom (by ID when set, otherwise by file).
// It reports whether an entry was removed and only persists when one was.
func (s *Store) Delete(rom Rom) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(rom)
	if i < 0 {
		return false, nil
	}
	removed := s.roms[i]
	next := slices.Delete(slices.Clone(s.roms), i, i+1)
	if err := s.commitLocked(next); err != nil {
		return false, err
	}
	s.feed.Publish(EventRemoved, removed)
	s.logger.Info("rom removed from catalog",
		logging.String(logging.FieldRomFile, removed.File),
		logging.Int(logging.FieldRomID, removed.ID),
		logging.String(logging.FieldEventType, "rom_removed"),
	)
	return true, nil
}

// Update replaces the entry matching rom (by ID when set, otherwise by file)
// and persists. Empty file and checksum fields keep their current values. It
// reports false when no entry matches.
func (s *Store) Update(rom Rom) (Rom, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(rom)
	if i < 0 {
		return Rom{}, false, nil
	}
	current := s.roms[i]
	rom.ID = current.ID
	if strings.TrimSpace(rom.File) == "" {
		rom.File = current.File
	}
	if strings.TrimSpace(rom.Checksum) == "" {
		rom.Checksum = current.Checksum
	}
	if rom.File != current.File {
		if j := s.indexLocked(Rom{File: rom.File}); j >= 0 {
			return Rom{}, true, fmt.Errorf("%w: %s", ErrDuplicateFile, rom.File)
		}
	}
	if !rom.UsedOn.IsZero() {
		rom.UsedOn = rom.UsedOn.UTC().Truncate(time.Second)
	}
	if rom == current {
		return current, true, nil
	}
	if err := s.replaceLocked(i, rom); err != nil {
		return Rom{}, true, err
	}
	return rom, true, nil
}

// MarkUsed stamps the entry's usedOn with at, feeding the recents view.
func (s *Store) MarkUsed(id int, at time.Time) (Rom, error) {
	if at.IsZero() {
		at = s.now()
	}
	return s.modify(id, func(r *Rom) { r.UsedOn = at.UTC().Truncate(time.Second) })
}

// SetFavorite sets the favorite flag on the entry.
func (s *Store) SetFavorite(id int, favorite bool) (Rom, error) {
	return s.modify(id, func(r *Rom) { r.IsFavorite = favorite })
}

// SetImage records the box-art file name on the entry. Only the image field is
// touched so concurrent edits to other fields are preserved.
func (s *Store) SetImage(id int, image string) (Rom, error) {
	return s.modify(id, func(r *Rom) { r.Image = image })
}

func (s *Store) modify(id int, fn func(*Rom)) (Rom, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexLocked(Rom{ID: id})
	if i < 0 {
		return Rom{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	rom := s.roms[i]
	fn(&rom)
	if rom == s.roms[i] {
		return rom, nil
	}
	if err := s.replaceLocked(i, rom); err != nil {
		return Rom{}, err
	}
	return rom, nil
}

func (s *Store) replaceLocked(i int, rom Rom) error {
	next := slices.Clone(s.roms)
	next[i] = rom
	if err := s.commitLocked(next); err != nil {
		return err
	}
	s.feed.Publish(EventUpdated, rom)
	s.logger.Debug("rom updated",
		logging.String(logging.FieldRomFile, rom.File),
		logging.Int(logging.FieldRomID, rom.ID),
		logging.String(logging.FieldEventType, "rom_updated"),
	)
	return nil
}

// commitLocked sorts next, writes it, and only then swaps it in.
func (s *Store) commitLocked(next []Rom) error {
	s.sortLocked(next)
	if err := s.save(next); err != nil {
		logging.ErrorWithContext(s.logger, "catalog write failed", "catalog_persist_failed",
			logging.String("path", s.path),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions on the database directory"),
		)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	s.roms = next
	return nil
}

func (s *Store) indexLocked(key Rom) int {
	if key.ID == 0 && key.File == "" {
		return -1
	}
	return slices.IndexFunc(s.roms, func(r Rom) bool { return r.matches(key) })
}

func (s *Store) nextIDLocked() int {
	maxID := 0
	for _, r := range s.roms {
		maxID = max(maxID, r.ID)
	}
	return maxID + 1
}

// sortLocked orders entries by file name using case-insensitive collation.
// Callers hold s.mu for writing because the collator is not goroutine safe.
func (s *Store) sortLocked(roms []Rom) {
	slices.SortStableFunc(roms, func(a, b Rom) int {
		if c := s.collator.CompareString(a.File, b.File); c != 0 {
			return c
		}
		if c := strings.Compare(a.File, b.File); c != 0 {
			return c
		}
		return a.ID - b.ID
	})
}

// dedupe drops entries that repeat an earlier id or file name, and assigns
// fresh ids to entries without one.
func (s *Store) dedupe(roms []Rom) []Rom {
	out := make([]Rom, 0, len(roms))
	ids := make(map[int]struct{}, len(roms))
	files := make(map[string]struct{}, len(roms))
	maxID := 0
	for _, r := range roms {
		maxID = max(maxID, r.ID)
	}
	for _, r := range roms {
		if r.File == "" {
			continue
		}
		if _, dup := files[r.File]; dup {
			logging.WarnWithContext(s.logger, "duplicate catalog entry dropped", "catalog_duplicate_dropped",
				logging.String(logging.FieldRomFile, r.File),
				logging.Int(logging.FieldRomID, r.ID),
				logging.String(logging.FieldImpact, "the first entry for this file is kept"),
			)
			continue
		}
		if _, dup := ids[r.ID]; dup || r.ID <= 0 {
			maxID++
			r.ID = maxID
		}
		ids[r.ID] = struct{}{}
		files[r.File] = struct{}{}
		out = append(out, r)
	}
	return out
}
