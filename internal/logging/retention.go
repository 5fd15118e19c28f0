package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const logFilePattern = "gearboy-*.log"

// LogFilePath returns the daily JSON log file inside dir for the given day.
func LogFilePath(dir string, day time.Time) string {
	return filepath.Join(dir, "gearboy-"+day.Format("20060102")+".log")
}

// CleanupOldLogs removes daily log files in dir whose modification time is
// older than retentionDays. A retentionDays value of 0 disables pruning and
// the file named by keep is never removed.
func CleanupOldLogs(logger *slog.Logger, dir string, retentionDays int, keep string) int {
	if retentionDays <= 0 || dir == "" {
		return 0
	}
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	matches, err := filepath.Glob(filepath.Join(dir, logFilePattern))
	if err != nil {
		return 0
	}
	removed := 0
	for _, path := range matches {
		if path == keep {
			continue
		}
		info, err := os.Stat(path)
		if err != nil || info.IsDir() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check file permissions and log_dir ownership"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed++
		if logger != nil {
			logger.Debug("log pruned",
				String("path", path),
				String(FieldEventType, "log_pruned"),
			)
		}
	}
	return removed
}
