package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gearboy/internal/romfile"
)

// WriteROM writes content to name inside dir and returns its checksum.
func WriteROM(t testing.TB, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return Checksum(content)
}

// Checksum returns the catalog checksum of content.
func Checksum(content string) string {
	sum, err := romfile.ChecksumReader(strings.NewReader(content))
	if err != nil {
		panic(err)
	}
	return sum
}

// RemoveROM deletes name from dir.
func RemoveROM(t testing.TB, dir, name string) {
	t.Helper()

	if err := os.Remove(filepath.Join(dir, filepath.FromSlash(name))); err != nil {
		t.Fatalf("remove %s: %v", name, err)
	}
}
