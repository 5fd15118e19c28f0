package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gearboy/internal/config"
	"gearboy/internal/logging"
	"gearboy/internal/services"
)

func TestNewFromConfigWritesDailyJSONFile(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()

	logger, err := logging.NewFromConfig(&cfg)
	if err != nil {
		t.Fatalf("NewFromConfig returned error: %v", err)
	}
	logger.Debug("debug detail", logging.String(logging.FieldRomFile, "tetris.gb"))

	content, err := os.ReadFile(logging.LogFilePath(cfg.Paths.LogDir, time.Now()))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	var record map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(content), &record); err != nil {
		t.Fatalf("log file is not JSON lines: %v (%q)", err, content)
	}
	if record["msg"] != "debug detail" || record["level"] != "debug" {
		t.Fatalf("unexpected record: %v", record)
	}
	if record["rom_file"] != "tetris.gb" {
		t.Fatalf("expected rom_file attribute, got %v", record)
	}
}

func TestConsoleLoggerOmitsCallerForInfo(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-info.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "info", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logging.NewComponentLogger(logger, "library").Info("rom added",
		logging.String(logging.FieldRomFile, "tetris.gb"),
		logging.Int(logging.FieldRomID, 3),
	)

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	line := string(content)
	if strings.Contains(line, ".go:") {
		t.Fatalf("expected no caller information in info logs, got %q", line)
	}
	if !strings.Contains(line, "INFO library: tetris.gb rom added rom_id=3") {
		t.Fatalf("unexpected console line %q", line)
	}
}

func TestConsoleLoggerIncludesCallerForDebug(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "console-debug.log")
	logger, err := logging.New(logging.Options{Format: "console", Level: "debug", OutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	logger.Info("message with caller")

	content, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), ".go:") {
		t.Fatalf("expected caller information in debug logs, got %q", content)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "xml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsFields(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithRomID(ctx, 7)
	ctx = services.WithScanID(ctx, "scan-xyz")

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WithContext(ctx, logger).Info("contextual log")

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record[logging.FieldRomID] != float64(7) {
		t.Fatalf("expected rom_id 7, got %v", record[logging.FieldRomID])
	}
	if record[logging.FieldScanID] != "scan-xyz" {
		t.Fatalf("expected scan_id, got %v", record[logging.FieldScanID])
	}
}

func TestWarnWithContextInjectsDefaults(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logging.WarnWithContext(logger, "copy failed", "rom_copy_failed",
		logging.String(logging.FieldImpact, "rom not imported"),
	)

	var record map[string]any
	if err := json.Unmarshal(buf.Bytes(), &record); err != nil {
		t.Fatalf("decode record: %v", err)
	}
	if record[logging.FieldEventType] != "rom_copy_failed" {
		t.Fatalf("expected event_type, got %v", record)
	}
	if record[logging.FieldErrorHint] == nil {
		t.Fatalf("expected default error_hint, got %v", record)
	}
	if record[logging.FieldImpact] != "rom not imported" {
		t.Fatalf("expected caller impact preserved, got %v", record)
	}
}

func TestCleanupOldLogs(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "gearboy-20200101.log")
	recent := filepath.Join(dir, "gearboy-20990101.log")
	other := filepath.Join(dir, "notes.txt")
	for _, path := range []string{old, recent, other} {
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}
	past := time.Now().AddDate(0, 0, -90)
	for _, path := range []string{old, other} {
		if err := os.Chtimes(path, past, past); err != nil {
			t.Fatalf("chtimes: %v", err)
		}
	}

	if removed := logging.CleanupOldLogs(logging.NewNop(), dir, 30, recent); removed != 1 {
		t.Fatalf("expected one file pruned, got %d", removed)
	}
	if _, err := os.Stat(old); !os.IsNotExist(err) {
		t.Fatalf("expected old log removed, err=%v", err)
	}
	for _, path := range []string{recent, other} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s kept: %v", path, err)
		}
	}
}
