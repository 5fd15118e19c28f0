package services

import "context"

type contextKey string

const (
	romIDKey     contextKey = "rom_id"
	romFileKey   contextKey = "rom_file"
	scanIDKey    contextKey = "scan_id"
	requestIDKey contextKey = "request_id"
)

// WithRomID annotates context with the catalog entry identifier.
func WithRomID(ctx context.Context, id int) context.Context {
	if id <= 0 {
		return ctx
	}
	return context.WithValue(ctx, romIDKey, id)
}

// RomIDFromContext extracts the catalog entry identifier if present.
func RomIDFromContext(ctx context.Context) (int, bool) {
	switch val := ctx.Value(romIDKey).(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	default:
		return 0, false
	}
}

// WithRomFile annotates context with the ROM file name being processed.
func WithRomFile(ctx context.Context, file string) context.Context {
	if file == "" {
		return ctx
	}
	return context.WithValue(ctx, romFileKey, file)
}

// RomFileFromContext returns the ROM file name if present.
func RomFileFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(romFileKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithScanID annotates context with the directory reconciliation run identifier.
func WithScanID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, scanIDKey, id)
}

// ScanIDFromContext returns the reconciliation run identifier if present.
func ScanIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(scanIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
