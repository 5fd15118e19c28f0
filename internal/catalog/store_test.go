package catalog_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearboy/internal/catalog"
	"gearboy/internal/gamedb"
	"gearboy/internal/romfile"
)

type fixture struct {
	dataDir string
	path    string
	titles  *gamedb.DB
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	dataDir := t.TempDir()
	return fixture{
		dataDir: dataDir,
		path:    filepath.Join(dataDir, "database", "db.json"),
		titles:  gamedb.New([]gamedb.Game{{Title: "Known Game", CRC: crcOf("known rom")}}),
	}
}

func (f fixture) open(t *testing.T, opts ...catalog.Option) *catalog.Store {
	t.Helper()
	store, err := catalog.Open(f.path, f.dataDir, f.titles, opts...)
	require.NoError(t, err)
	return store
}

func (f fixture) writeROM(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(f.dataDir, name), []byte(content), 0o644))
}

func crcOf(content string) string {
	sum, _ := romfile.ChecksumReader(strings.NewReader(content))
	return sum
}

func TestOpenMissingCatalogStartsEmpty(t *testing.T) {
	store := newFixture(t).open(t)
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.List())
}

func TestOpenCorruptCatalogStartsEmpty(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(f.path), 0o755))
	require.NoError(t, os.WriteFile(f.path, []byte("{not json"), 0o644))

	store := f.open(t)
	assert.Equal(t, 0, store.Len())
}

func TestAddAssignsIncreasingIDsAndChecksum(t *testing.T) {
	f := newFixture(t)
	f.writeROM(t, "game.gb", "game bytes")
	f.writeROM(t, "other.gb", "other bytes")
	store := f.open(t)

	first, err := store.Add("game.gb")
	require.NoError(t, err)
	assert.Equal(t, 1, first.ID)
	assert.Equal(t, "game.gb", first.File)
	assert.Equal(t, crcOf("game bytes"), first.Checksum)
	assert.Empty(t, first.Title)

	second, err := store.Add("other.gb")
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	got, ok := store.ByID(second.ID)
	require.True(t, ok)
	assert.Equal(t, "other.gb", got.File)
}

func TestAddUsesMaxIDPlusOne(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(f.path), 0o755))
	seed, _ := json.Marshal([]catalog.Rom{{ID: 7, File: "seven.gb", Checksum: "00000007"}})
	require.NoError(t, os.WriteFile(f.path, seed, 0o644))
	f.writeROM(t, "new.gb", "new")

	store := f.open(t)
	rom, err := store.Add("new.gb")
	require.NoError(t, err)
	assert.Equal(t, 8, rom.ID)
}

func TestAddResolvesTitle(t *testing.T) {
	f := newFixture(t)
	f.writeROM(t, "known.gb", "known rom")
	store := f.open(t)

	rom, err := store.Add("known.gb")
	require.NoError(t, err)
	assert.Equal(t, "Known Game", rom.Title)
}

func TestAddExistingFileReturnsExistingEntry(t *testing.T) {
	f := newFixture(t)
	f.writeROM(t, "game.gb", "game bytes")
	store := f.open(t)

	first, err := store.Add("game.gb")
	require.NoError(t, err)
	again, err := store.Add("game.gb")
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, 1, store.Len())
}

func TestAddUnreadableFileLeavesCatalogUnchanged(t *testing.T) {
	store := newFixture(t).open(t)

	_, err := store.Add("missing.gb")
	require.ErrorIs(t, err, catalog.ErrUnreadable)
	assert.Equal(t, 0, store.Len())
	_, seq := store.Feed().Tail(10)
	assert.Zero(t, seq)
}

func TestDeleteThenLookupNotFound(t *testing.T) {
	f := newFixture(t)
	f.writeROM(t, "game.gb", "game bytes")
	store := f.open(t)
	rom, err := store.Add("game.gb")
	require.NoError(t, err)

	removed, err := store.Delete(rom)
	require.NoError(t, err)
	assert.True(t, removed)

	_, ok := store.ByID(rom.ID)
	assert.False(t, ok)
	_, ok = store.ByFile(rom.File)
	assert.False(t, ok)

	removed, err = store.Delete(rom)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestDeleteByFileWhenIDUnset(t *testing.T) {
	f := newFixture(t)
	f.writeROM(t, "game.gb", "game bytes")
	store := f.open(t)
	_, err := store.Add("game.gb")
	require.NoError(t, err)

	removed, err := store.Delete(catalog.Rom{File: "game.gb"})
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, 0, store.Len())
}

func TestUpdateReplacesInPlace(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"a.gb", "b.gb", "c.gb"} {
		f.writeROM(t, name, name)
	}
	store := f.open(t)
	for _, name := range []string{"a.gb", "b.gb", "c.gb"} {
		_, err := store.Add(name)
		require.NoError(t, err)
	}

	b, _ := store.ByFile("b.gb")
	b.Title = "Renamed"
	b.IsFavorite = true
	updated, found, err := store.Update(b)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Renamed", updated.Title)

	list := store.List()
	require.Len(t, list, 3)
	assert.Equal(t, "b.gb", list[1].File)
	assert.Equal(t, "Renamed", list[1].Title)
	assert.True(t, list[1].IsFavorite)
}

func TestUpdateMissingEntry(t *testing.T) {
	store := newFixture(t).open(t)
	_, found, err := store.Update(catalog.Rom{ID: 42, Title: "x"})
	require.NoError(t, err)
	assert.False(t, found)
}

func TestUpdateRejectsDuplicateFile(t *testing.T) {
	f := newFixture(t)
	f.writeROM(t, "a.gb", "a")
	f.writeROM(t, "b.gb", "b")
	store := f.open(t)
	a, err := store.Add("a.gb")
	require.NoError(t, err)
	_, err = store.Add("b.gb")
	require.NoError(t, err)

	a.File = "b.gb"
	_, found, err := store.Update(a)
	assert.True(t, found)
	assert.ErrorIs(t, err, catalog.ErrDuplicateFile)
}

func TestCatalogSortedCaseInsensitively(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"zelda.gb", "Asteroids.gb", "mario.gb", "Batman.gb"} {
		f.writeROM(t, name, name)
	}
	store := f.open(t)
	for _, name := range []string{"zelda.gb", "Asteroids.gb", "mario.gb", "Batman.gb"} {
		_, err := store.Add(name)
		require.NoError(t, err)
	}

	var files []string
	for _, r := range store.List() {
		files = append(files, r.File)
	}
	assert.Equal(t, []string{"Asteroids.gb", "Batman.gb", "mario.gb", "zelda.gb"}, files)
}

func TestPersistedFormatReloads(t *testing.T) {
	f := newFixture(t)
	f.writeROM(t, "known.gb", "known rom")
	now := time.Date(2026, 3, 4, 5, 6, 7, 890, time.UTC)
	store := f.open(t, catalog.WithClock(func() time.Time { return now }))

	rom, err := store.Add("known.gb")
	require.NoError(t, err)
	_, err = store.MarkUsed(rom.ID, time.Time{})
	require.NoError(t, err)
	_, err = store.SetFavorite(rom.ID, true)
	require.NoError(t, err)
	_, err = store.SetImage(rom.ID, "Known Game.png")
	require.NoError(t, err)

	raw, err := os.ReadFile(f.path)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "known.gb", decoded[0]["file"])
	assert.Equal(t, "Known Game", decoded[0]["title"])
	assert.Equal(t, crcOf("known rom"), decoded[0]["crc"])
	assert.Equal(t, true, decoded[0]["isFavorite"])
	assert.Equal(t, "2026-03-04T05:06:07Z", decoded[0]["usedOn"])
	assert.Equal(t, "Known Game.png", decoded[0]["image"])

	reopened := f.open(t)
	got, ok := reopened.ByID(rom.ID)
	require.True(t, ok)
	assert.Equal(t, "Known Game.png", got.Image)
	assert.True(t, got.IsFavorite)
	assert.True(t, got.UsedOn.Equal(now.Truncate(time.Second)))
}

func TestOpenDropsDuplicateEntries(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.MkdirAll(filepath.Dir(f.path), 0o755))
	seed, _ := json.Marshal([]catalog.Rom{
		{ID: 1, File: "a.gb"},
		{ID: 1, File: "b.gb"},
		{ID: 2, File: "a.gb"},
	})
	require.NoError(t, os.WriteFile(f.path, seed, 0o644))

	store := f.open(t)
	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].ID)
	assert.Equal(t, "b.gb", list[1].File)
	assert.Equal(t, 3, list[1].ID, "a repeated id is reassigned past the highest id")
}

func TestPersistFailureLeavesMemoryUnchanged(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "game.gb"), []byte("x"), 0o644))
	blocker := filepath.Join(dataDir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("file, not dir"), 0o644))

	store, err := catalog.Open(filepath.Join(blocker, "db.json"), dataDir, gamedb.New(nil))
	require.NoError(t, err)

	_, err = store.Add("game.gb")
	require.ErrorIs(t, err, catalog.ErrPersist)
	assert.Equal(t, 0, store.Len())
	assert.Zero(t, store.Feed().Sequence())
}

func TestViews(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"a.gb", "b.gb", "c.gb"} {
		f.writeROM(t, name, name)
	}
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	store := f.open(t, catalog.WithClock(func() time.Time { return now }))
	ids := map[string]int{}
	for _, name := range []string{"a.gb", "b.gb", "c.gb"} {
		rom, err := store.Add(name)
		require.NoError(t, err)
		ids[name] = rom.ID
	}
	_, err := store.SetFavorite(ids["b.gb"], true)
	require.NoError(t, err)
	_, err = store.MarkUsed(ids["a.gb"], now.Add(-2*time.Hour))
	require.NoError(t, err)
	_, err = store.MarkUsed(ids["c.gb"], now.Add(-time.Hour))
	require.NoError(t, err)
	_, err = store.MarkUsed(ids["b.gb"], now.AddDate(0, 0, -45))
	require.NoError(t, err)

	window := 30 * 24 * time.Hour
	assert.Len(t, store.View(catalog.ViewAll, window), 3)

	favs := store.View(catalog.ViewFavorites, window)
	require.Len(t, favs, 1)
	assert.Equal(t, "b.gb", favs[0].File)

	recents := store.View(catalog.ViewRecents, window)
	require.Len(t, recents, 2)
	assert.Equal(t, "c.gb", recents[0].File)
	assert.Equal(t, "a.gb", recents[1].File)
}

func TestModifyUnknownID(t *testing.T) {
	store := newFixture(t).open(t)
	_, err := store.SetFavorite(99, true)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestConcurrentAddsKeepIDsUnique(t *testing.T) {
	f := newFixture(t)
	names := []string{"a.gb", "b.gb", "c.gb", "d.gb", "e.gb", "f.gb", "g.gb", "h.gb"}
	for _, name := range names {
		f.writeROM(t, name, name)
	}
	store := f.open(t)

	var wg sync.WaitGroup
	for _, name := range names {
		for range 2 {
			wg.Go(func() {
				_, err := store.Add(name)
				assert.NoError(t, err)
			})
		}
	}
	wg.Wait()

	list := store.List()
	require.Len(t, list, len(names))
	seen := map[int]bool{}
	for _, r := range list {
		assert.False(t, seen[r.ID], "duplicate id %d", r.ID)
		seen[r.ID] = true
	}

	reopened := f.open(t)
	assert.Equal(t, len(names), reopened.Len())
}

func TestParseView(t *testing.T) {
	v, err := catalog.ParseView("")
	require.NoError(t, err)
	assert.Equal(t, catalog.ViewAll, v)
	v, err = catalog.ParseView("Favorites")
	require.NoError(t, err)
	assert.Equal(t, catalog.ViewFavorites, v)
	_, err = catalog.ParseView("played")
	assert.Error(t, err)
}

func TestMutationsPublishEvents(t *testing.T) {
	f := newFixture(t)
	f.writeROM(t, "game.gb", "game bytes")
	feed := catalog.NewFeed(16)
	store := f.open(t, catalog.WithFeed(feed))

	rom, err := store.Add("game.gb")
	require.NoError(t, err)
	_, err = store.Add("game.gb")
	require.NoError(t, err)
	_, err = store.SetFavorite(rom.ID, true)
	require.NoError(t, err)
	_, err = store.SetFavorite(rom.ID, true)
	require.NoError(t, err)
	_, err = store.Delete(rom)
	require.NoError(t, err)

	events, seq := feed.Tail(0)
	require.Len(t, events, 3, "no-op mutations must not publish")
	assert.Equal(t, uint64(3), seq)
	assert.Equal(t, catalog.EventAdded, events[0].Kind)
	assert.Equal(t, catalog.EventUpdated, events[1].Kind)
	assert.True(t, events[1].Rom.IsFavorite)
	assert.Equal(t, catalog.EventRemoved, events[2].Kind)
}
