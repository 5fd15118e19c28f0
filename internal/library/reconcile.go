package library

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"

	"gearboy/internal/catalog"
	"gearboy/internal/fileutil"
	"gearboy/internal/logging"
	"gearboy/internal/services"
)

// Result summarizes one reconciliation run.
type Result struct {
	ScanID   string
	Added    []catalog.Rom
	Removed  []catalog.Rom
	Skipped  []string
	Duration time.Duration
}

// Changed reports whether the run mutated the catalog.
func (r Result) Changed() bool {
	return len(r.Added) > 0 || len(r.Removed) > 0
}

// Outcome carries the result of an asynchronous reconciliation.
type Outcome struct {
	Result Result
	Err    error
}

// Reconcile syncs the catalog with the managed directory: entries whose file
// is gone are removed, and ROM files without an entry are added. Box art for
// added entries is fetched before returning. Only one run may be active; a
// concurrent call fails with ErrScanInProgress. Cancelling ctx stops the run
// between files and returns the partial result with the context error.
func (m *Manager) Reconcile(ctx context.Context) (Result, error) {
	if !m.running.CompareAndSwap(false, true) {
		return Result{}, ErrScanInProgress
	}
	defer m.running.Store(false)

	start := time.Now()
	res := Result{ScanID: uuid.NewString()}
	ctx = services.WithScanID(ctx, res.ScanID)
	logger := logging.WithContext(ctx, m.logger)

	dir := m.store.DataDir()
	names, err := m.scan(dir)
	if err != nil {
		return res, err
	}
	logger.Debug("library scan started",
		logging.String("dir", dir),
		logging.Int("files", len(names)),
	)

	for _, rom := range m.store.List() {
		if err := ctx.Err(); err != nil {
			return m.finish(logger, res, start), err
		}
		if fileutil.IsRegular(filepath.Join(dir, filepath.FromSlash(rom.File))) {
			continue
		}
		removed, err := m.store.Delete(rom)
		if err != nil {
			return m.finish(logger, res, start), err
		}
		if removed {
			res.Removed = append(res.Removed, rom)
		}
	}

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return m.finish(logger, res, start), err
		}
		if _, ok := m.store.ByFile(name); ok {
			continue
		}
		rom, err := m.store.Add(name)
		switch {
		case err == nil:
			res.Added = append(res.Added, rom)
		case errors.Is(err, catalog.ErrUnreadable):
			res.Skipped = append(res.Skipped, name)
			logging.WarnWithContext(logger, "rom skipped during scan", "scan_file_skipped",
				logging.String(logging.FieldRomFile, name),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check file permissions or remove the damaged file"),
				logging.String(logging.FieldImpact, "rom is not listed until the next scan"),
			)
		default:
			return m.finish(logger, res, start), err
		}
	}

	if m.images != nil {
		for _, rom := range res.Added {
			if err := ctx.Err(); err != nil {
				return m.finish(logger, res, start), err
			}
			m.images.EnsureImage(ctx, rom, true)
		}
	}
	return m.finish(logger, res, start), nil
}

// ReconcileAsync runs Reconcile in a goroutine. The returned channel receives
// exactly one Outcome and is then closed.
func (m *Manager) ReconcileAsync(ctx context.Context) <-chan Outcome {
	out := make(chan Outcome, 1)
	go func() {
		defer close(out)
		res, err := m.Reconcile(ctx)
		out <- Outcome{Result: res, Err: err}
	}()
	return out
}

func (m *Manager) finish(logger *slog.Logger, res Result, start time.Time) Result {
	res.Duration = time.Since(start)
	logger.Info("library scan completed",
		logging.Int("added", len(res.Added)),
		logging.Int("removed", len(res.Removed)),
		logging.Int("skipped", len(res.Skipped)),
		logging.Duration("duration", res.Duration),
		logging.String(logging.FieldEventType, "scan_completed"),
	)
	return res
}

// scan lists the ROM files directly inside dir, sorted by name.
func (m *Manager) scan(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read library dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || !m.matcher.Match(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	slices.Sort(names)
	return names, nil
}
