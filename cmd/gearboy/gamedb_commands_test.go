package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gearboy/internal/services"
)

const testDAT = `clrmamepro (
	name "Nintendo - Game Boy"
)

game (
	name "Tetris (World) (Rev 1)"
	rom ( name "Tetris (World) (Rev 1).gb" size 65536 crc 46df91ad )
)

game (
	name "Alleyway (World)"
	rom ( name "Alleyway (World).gb" size 32768 crc 0AB2A5B7 )
)
`

func writeDAT(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gb.dat")
	if err := os.WriteFile(path, []byte(testDAT), 0o644); err != nil {
		t.Fatalf("write dat: %v", err)
	}
	return path
}

func TestGameDBBuildJSONToStdout(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "gamedb", "build", writeDAT(t))
	if err != nil {
		t.Fatalf("gamedb build: %v", err)
	}
	requireContains(t, out, `"crc": "46DF91AD"`)
	requireContains(t, out, `"title": "Alleyway (World)"`)
}

func TestGameDBBuildIndexAndLookup(t *testing.T) {
	env := setupCLITestEnv(t)
	indexPath := filepath.Join(t.TempDir(), "nointro.db")

	out, _, err := runCLI(t, env, "gamedb", "build", writeDAT(t), "--out", indexPath)
	if err != nil {
		t.Fatalf("gamedb build: %v", err)
	}
	requireContains(t, out, "Indexed 2 titles (2 new)")

	env.cfg.GameDB.Path = indexPath
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err = runCLI(t, env, "gamedb", "lookup", "0ab2a5b7")
	if err != nil {
		t.Fatalf("gamedb lookup: %v", err)
	}
	if strings.TrimSpace(out) != "Alleyway (World)" {
		t.Fatalf("unexpected lookup output %q", out)
	}

	if _, _, err := runCLI(t, env, "gamedb", "search", "alley"); err == nil {
		t.Fatal("expected search to be unsupported on a sqlite index")
	}
}

func TestGameDBBuildJSONFileIsLoadable(t *testing.T) {
	env := setupCLITestEnv(t)
	jsonPath := filepath.Join(t.TempDir(), "titles.json")

	if _, _, err := runCLI(t, env, "gamedb", "build", writeDAT(t), "-o", jsonPath); err != nil {
		t.Fatalf("gamedb build: %v", err)
	}
	env.cfg.GameDB.Path = jsonPath
	writeTestConfig(t, env.configPath, env.cfg)

	out, _, err := runCLI(t, env, "gamedb", "search", "tetris")
	if err != nil {
		t.Fatalf("gamedb search: %v", err)
	}
	requireContains(t, out, "46DF91AD  Tetris (World) (Rev 1)")
}

func TestGameDBLookupBundled(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "gamedb", "lookup", "46DF91AD")
	if err != nil {
		t.Fatalf("gamedb lookup: %v", err)
	}
	requireContains(t, out, "Tetris")

	_, _, err = runCLI(t, env, "gamedb", "lookup", "00000000")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown checksum, got %v", err)
	}
}

func TestGameDBSearchSuggests(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, env, "gamedb", "search", "crystal", "version")
	if err != nil {
		t.Fatalf("gamedb search: %v", err)
	}
	requireContains(t, out, "Pokemon - Crystal Version")

	out, _, err = runCLI(t, env, "gamedb", "search", "crystal", "pokemon")
	if err != nil {
		t.Fatalf("gamedb search: %v", err)
	}
	requireContains(t, out, "closest titles")
	requireContains(t, out, "3358E30A")
}
