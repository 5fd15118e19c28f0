package romfile_test

import (
	"archive/zip"
	"hash/crc32"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearboy/internal/config"
	"gearboy/internal/romfile"
)

func TestChecksumMatchesIEEE(t *testing.T) {
	data := []byte("NINTENDO GAME BOY test cartridge")
	path := filepath.Join(t.TempDir(), "game.gb")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	sum, err := romfile.Checksum(path)
	require.NoError(t, err)
	assert.Equal(t, romfile.FormatChecksum(crc32.ChecksumIEEE(data)), sum)
	assert.Len(t, sum, 8)

	again, err := romfile.Checksum(path)
	require.NoError(t, err)
	assert.Equal(t, sum, again, "checksum must be deterministic")
}

func TestChecksumKnownValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "check.gb")
	require.NoError(t, os.WriteFile(path, []byte("123456789"), 0o644))

	sum, err := romfile.Checksum(path)
	require.NoError(t, err)
	assert.Equal(t, "CBF43926", sum)
}

func TestChecksumEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gb")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	sum, err := romfile.Checksum(path)
	require.NoError(t, err)
	assert.Equal(t, "00000000", sum)
}

func TestChecksumMissingFile(t *testing.T) {
	_, err := romfile.Checksum(filepath.Join(t.TempDir(), "missing.gb"))
	assert.Error(t, err)
}

func TestChecksumZipUsesFirstEntry(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("123456789")
	path := filepath.Join(dir, "game.zip")

	file, err := os.Create(path)
	require.NoError(t, err)
	zw := zip.NewWriter(file)
	_, err = zw.Create("folder/")
	require.NoError(t, err)
	w, err := zw.Create("game.gb")
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	w, err = zw.Create("readme.txt")
	require.NoError(t, err)
	_, err = w.Write([]byte("ignored"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	require.NoError(t, file.Close())

	sum, err := romfile.Checksum(path)
	require.NoError(t, err)
	assert.Equal(t, "CBF43926", sum)
}

func TestChecksumEmptyZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.zip")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, zip.NewWriter(file).Close())
	require.NoError(t, file.Close())

	_, err = romfile.Checksum(path)
	assert.ErrorIs(t, err, romfile.ErrEmptyArchive)
}

func TestMatcher(t *testing.T) {
	m := romfile.NewMatcher(config.DefaultExtensions)
	for _, name := range []string{"tetris.gb", "Zelda.GBC", "x.cgb", "sgb.sgb", "a.rom", "b.dmg", "c.zip", "dir/d.gb"} {
		assert.True(t, m.Match(name), name)
	}
	for _, name := range []string{"notes.txt", "gb", ".hidden.gb", "boxart.png", "db.json"} {
		assert.False(t, m.Match(name), name)
	}

	custom := romfile.NewMatcher([]string{".GB", " "})
	assert.True(t, custom.Match("x.gb"))
	assert.False(t, custom.Match("x.gbc"))
}

func TestIsColor(t *testing.T) {
	assert.True(t, romfile.IsColor("zelda.gbc"))
	assert.True(t, romfile.IsColor("zelda.CGB"))
	assert.False(t, romfile.IsColor("tetris.gb"))
	assert.False(t, romfile.IsColor("pack.zip"))
}
