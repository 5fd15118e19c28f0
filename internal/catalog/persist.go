package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gearboy/internal/logging"
)

// load reads the persisted catalog under a shared file lock. A missing or
// empty file is a fresh start.
func (s *Store) load() ([]Rom, error) {
	if err := s.lock.RLock(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("lock catalog: %w", err)
		}
	} else {
		defer s.lock.Unlock()
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var roms []Rom
	if err := json.Unmarshal(data, &roms); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	s.logger.Debug("catalog loaded",
		logging.Int("entry_count", len(roms)),
		logging.String("path", s.path),
	)
	return roms, nil
}

// save writes roms atomically: a synced temp file in the same directory is
// renamed over the catalog while holding an exclusive file lock, so readers
// in other processes never observe a partial write.
func (s *Store) save(roms []Rom) error {
	if roms == nil {
		roms = []Rom{}
	}
	data, err := json.MarshalIndent(roms, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal catalog: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create catalog directory: %w", err)
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock catalog: %w", err)
	}
	defer s.lock.Unlock()

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpPath) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		cleanup()
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
