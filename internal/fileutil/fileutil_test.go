package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.gb")
	dst := filepath.Join(dir, "library", "dst.gb")

	content := []byte("nintendo logo")
	if err := os.WriteFile(src, content, 0o600); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}

	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(content) {
		t.Fatalf("content mismatch: got %q, want %q", got, content)
	}
	info, err := os.Stat(dst)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Fatalf("expected mode 0644, got %o", info.Mode().Perm())
	}
}

func TestCopyFileOverwrites(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "new.gb")
	dst := filepath.Join(dir, "old.gb")

	if err := os.WriteFile(src, []byte("v2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(dst, []byte("version one"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := CopyFile(src, dst); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "v2" {
		t.Fatalf("expected destination replaced, got %q", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected no temp files left behind, got %d entries", len(entries))
	}
}

func TestCopyFile_MissingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFile(filepath.Join(dir, "nope"), filepath.Join(dir, "dst"))
	if err == nil {
		t.Fatal("expected error for missing source")
	}
}

func TestCopyFile_DirectorySource(t *testing.T) {
	dir := t.TempDir()
	if err := CopyFile(dir, filepath.Join(t.TempDir(), "dst")); err == nil {
		t.Fatal("expected error when copying a directory")
	}
}

func TestWithin(t *testing.T) {
	root := t.TempDir()
	tests := []struct {
		path    string
		wantRel string
		wantOK  bool
	}{
		{filepath.Join(root, "tetris.gb"), "tetris.gb", true},
		{filepath.Join(root, "sub", "red.gb"), "sub/red.gb", true},
		{root, "", false},
		{filepath.Join(root, "..", "elsewhere.gb"), "", false},
		{filepath.Join(root+"-sibling", "x.gb"), "", false},
	}
	for _, tt := range tests {
		rel, ok := Within(root, tt.path)
		if ok != tt.wantOK || rel != tt.wantRel {
			t.Errorf("Within(%q) = %q, %v; want %q, %v", tt.path, rel, ok, tt.wantRel, tt.wantOK)
		}
	}
}

func TestIsRegular(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.gb")
	if err := os.WriteFile(file, []byte{1}, 0o644); err != nil {
		t.Fatal(err)
	}
	if !IsRegular(file) {
		t.Fatal("expected regular file")
	}
	if IsRegular(dir) {
		t.Fatal("directory reported as regular file")
	}
	if IsRegular(filepath.Join(dir, "missing")) {
		t.Fatal("missing file reported as regular file")
	}
}
