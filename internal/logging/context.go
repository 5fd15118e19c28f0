package logging

import (
	"context"
	"log/slog"

	"gearboy/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldEventType classifies a log line for filtering (rom_added, scan_completed, ...).
	FieldEventType = "event_type"
	// FieldErrorHint suggests the next step an operator should take.
	FieldErrorHint = "error_hint"
	// FieldImpact is the standardized key for user-facing consequence of a warning.
	FieldImpact = "impact"
	// FieldRomID is the catalog entry identifier.
	FieldRomID = "rom_id"
	// FieldRomFile is the ROM file name relative to the data directory.
	FieldRomFile = "rom_file"
	// FieldChecksum is the CRC32 checksum of the ROM contents.
	FieldChecksum = "crc"
	// FieldScanID identifies a single directory reconciliation run.
	FieldScanID = "scan_id"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 4)
	if id, ok := services.RomIDFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldRomID, id))
	}
	if file, ok := services.RomFileFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldRomFile, file))
	}
	if scan, ok := services.ScanIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldScanID, scan))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(Args(fields...)...)
}
