package testsupport

import (
	"testing"

	"gearboy/internal/catalog"
	"gearboy/internal/config"
	"gearboy/internal/gamedb"
)

// MustOpenStore opens the catalog described by cfg for tests, resolving titles
// through games.
func MustOpenStore(t testing.TB, cfg *config.Config, games ...gamedb.Game) *catalog.Store {
	t.Helper()

	store, err := catalog.Open(cfg.CatalogPath(), cfg.Paths.DataDir, gamedb.New(games))
	if err != nil {
		t.Fatalf("catalog.Open: %v", err)
	}
	return store
}
