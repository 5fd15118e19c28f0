package fileutil

import (
	"fmt"
	"hash/crc32"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// CopyFile copies src to dst, replacing any existing dst. The data is written
// to a temp file beside dst and renamed into place only after its size and
// CRC32 match the source, so a failed copy never leaves a truncated ROM.
func CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("copy %s: not a regular file", src)
	}

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create destination dir: %w", err)
	}
	out, err := os.CreateTemp(dir, "."+filepath.Base(dst)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := out.Name()
	cleanup := func() {
		_ = out.Close()
		_ = os.Remove(tmpPath)
	}

	srcHash := crc32.NewIEEE()
	written, err := io.Copy(out, io.TeeReader(in, srcHash))
	if err != nil {
		cleanup()
		return err
	}
	if written != info.Size() {
		cleanup()
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", info.Size(), written)
	}
	if err := out.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}

	dstSum, err := fileCRC(tmpPath)
	if err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if dstSum != srcHash.Sum32() {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("copy checksum mismatch: file corrupted during copy")
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace destination: %w", err)
	}
	return nil
}

// Within reports whether path lies inside root and returns its slash-separated
// path relative to root.
func Within(root, path string) (string, bool) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", false
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// IsRegular reports whether path exists and is a regular file.
func IsRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func fileCRC(path string) (uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	h := crc32.NewIEEE()
	if _, err := io.Copy(h, f); err != nil {
		return 0, fmt.Errorf("verify copy: %w", err)
	}
	return h.Sum32(), nil
}
